package revocations

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Revoke inserts a revocation mark. An empty TokenID is stored as NULL so
// it never matches a token.
func (r *PostgresRepository) Revoke(ctx context.Context, mark models.Revocation) error {
	query := `
		INSERT INTO session_revocations (subject_id, token_id, revoked_before, expires_at)
		VALUES ($1, $2, $3, $4)
	`
	tokenID := sql.NullString{String: mark.TokenID, Valid: mark.TokenID != ""}
	if _, err := r.db.ExecContext(ctx, query, mark.SubjectID, tokenID, mark.RevokedBefore, mark.ExpiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// IsRevoked looks for an unexpired mark newer than issuedAt or naming tokenID.
func (r *PostgresRepository) IsRevoked(ctx context.Context, subjectID, tokenID string, issuedAt, now time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM session_revocations
			WHERE subject_id = $1 AND expires_at > $2
			  AND (revoked_before > $3 OR token_id = $4)
		)
	`
	id := sql.NullString{String: tokenID, Valid: tokenID != ""}
	var revoked bool
	if err := r.db.QueryRowContext(ctx, query, subjectID, now, issuedAt, id).Scan(&revoked); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return revoked, nil
}

// Purge removes marks whose tokens have all expired.
func (r *PostgresRepository) Purge(ctx context.Context, now time.Time) (int64, error) {
	query := `
		DELETE FROM session_revocations
		WHERE expires_at <= $1
	`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
