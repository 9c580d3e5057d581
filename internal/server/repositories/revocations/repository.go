// Package revocations declares the denylist consulted when resolving a
// session, and its PostgreSQL implementation.
package revocations

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository stores per-subject revocation marks. A mark invalidates tokens
// issued strictly before it and the one token it names, and can be dropped
// once its ExpiresAt passes.
type Repository interface {
	// Revoke records mark.
	Revoke(ctx context.Context, mark models.Revocation) error

	// IsRevoked reports whether an unexpired mark of subjectID covers the
	// token tokenID issued at issuedAt.
	IsRevoked(ctx context.Context, subjectID, tokenID string, issuedAt, now time.Time) (bool, error)

	// Purge deletes marks that expired before now and returns how many.
	Purge(ctx context.Context, now time.Time) (int64, error)
}
