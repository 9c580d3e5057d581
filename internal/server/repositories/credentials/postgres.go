package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, c *models.Credential) (*models.Credential, error) {

	query :=
		`INSERT INTO credentials (subject_id, username, email, password_hash, password_salt)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		c.SubjectID, c.UserName, c.Email, c.PasswordHash, c.PasswordSalt).Scan(&c.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrDuplicateRegistration
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return c, nil
}

const (
	fetchByEmailQuery = `SELECT subject_id, username, email, password_hash, password_salt, created_at
		 FROM credentials
		 WHERE email = $1
		 `
	fetchByUserNameQuery = `SELECT subject_id, username, email, password_hash, password_salt, created_at
		 FROM credentials
		 WHERE username = $1
		 `
)

// FetchByIdentifier looks the identifier up as an email when it contains '@'
// and as a username otherwise, so one row's email can never shadow another
// row's username.
func (r *PostgresRepository) FetchByIdentifier(ctx context.Context, identifier string) (*models.Credential, error) {
	query := fetchByUserNameQuery
	if strings.Contains(identifier, "@") {
		query = fetchByEmailQuery
	}

	c := &models.Credential{}
	err := r.db.QueryRowContext(ctx, query, identifier).
		Scan(&c.SubjectID, &c.UserName, &c.Email, &c.PasswordHash, &c.PasswordSalt, &c.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return c, nil
}

func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, subjectID, hash, salt string) error {
	query :=
		`UPDATE credentials SET password_hash = $2, password_salt = $3
		 WHERE subject_id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, subjectID, hash, salt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
