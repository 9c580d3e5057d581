package auth

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidClaims is returned by Encode for claims that could never be valid.
var ErrInvalidClaims = errors.New("invalid session claims")

// SessionClaims is what a session token asserts. Times have second precision,
// so ID is what tells apart two tokens issued to a subject in the same second.
type SessionClaims struct {
	ID        string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// NewSessionClaims issues claims for subject valid for ttl from now,
// truncated to whole seconds, under a fresh random ID.
func NewSessionClaims(subject string, now time.Time, ttl time.Duration) SessionClaims {
	iat := now.Truncate(time.Second)
	return SessionClaims{ID: uuid.NewString(), Subject: subject, IssuedAt: iat, ExpiresAt: iat.Add(ttl)}
}

// Valid checks the structural invariants: a subject and exp after iat.
func (c SessionClaims) Valid() error {
	if c.Subject == "" {
		return errors.Join(ErrInvalidClaims, errors.New("empty subject"))
	}
	if !c.ExpiresAt.After(c.IssuedAt) {
		return errors.Join(ErrInvalidClaims, errors.New("expiry must be after issue time"))
	}
	return nil
}

// TTL is the validity window of the token.
func (c SessionClaims) TTL() time.Duration {
	return c.ExpiresAt.Sub(c.IssuedAt)
}

type payload struct {
	ID        string `json:"jti"`
	Subject   string `json:"sub"`
	IssuedAt  *int64 `json:"iat"`
	ExpiresAt *int64 `json:"exp"`
}
