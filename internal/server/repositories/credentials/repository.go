// Package credentials declares the credential store used by authentication
// and its PostgreSQL implementation.
package credentials

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository persists credentials. Uniqueness of username and email is
// enforced here, not by callers.
type Repository interface {
	// FetchByIdentifier finds a credential by email or username.
	// Implementations return common.ErrorNotFound on a miss.
	FetchByIdentifier(ctx context.Context, identifier string) (*models.Credential, error)

	// Insert stores a new credential. A username or email clash returns
	// common.ErrDuplicateRegistration.
	Insert(ctx context.Context, c *models.Credential) (*models.Credential, error)

	// UpdatePasswordHash replaces hash and salt of an existing credential.
	UpdatePasswordHash(ctx context.Context, subjectID, hash, salt string) error
}
