package repomanager

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/revocations"
)

// RepositoryManager vends repositories bound to a connection or transaction
// and runs schema maintenance.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Credentials(db dbx.DBTX) credentials.Repository
	Revocations(db dbx.DBTX) revocations.Repository

	// PurgeRevocations removes revocation marks that expired before now.
	PurgeRevocations(ctx context.Context, db *sql.DB, now time.Time) (int64, error)
}
