package models

import "time"

// Revocation invalidates every token of SubjectID issued strictly before
// RevokedBefore, plus the token TokenID itself. It is only needed until
// ExpiresAt, when those tokens would have expired anyway.
type Revocation struct {
	SubjectID     string
	TokenID       string
	RevokedBefore time.Time
	ExpiresAt     time.Time
	CreatedAt     time.Time
}
