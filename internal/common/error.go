// Package common defines shared constants and sentinel errors used across
// the gophauth server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal      = errors.New("internal error")
	ErrUnauthenticated = errors.New("not authenticated")

	// Validation errors.
	ErrValidation      = errors.New("validation error")
	ErrInvalidPassword = errors.New("invalid password")

	// Credential errors. Unknown identifier and wrong password share
	// ErrInvalidCredentials.
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrMalformedStoredHash   = errors.New("malformed stored password hash")
	ErrDuplicateRegistration = errors.New("an item with the following data already exists")

	// Session token errors.
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenInvalidSignature = errors.New("token signature invalid")
	ErrTokenMalformed        = errors.New("token malformed")
	ErrAlgorithmMismatch     = errors.New("token algorithm mismatch")
	ErrTokenRevoked          = errors.New("token revoked")

	// Startup errors.
	ErrConfiguration = errors.New("configuration error")
)

// IsSessionError reports whether err is one of the session token failures.
func IsSessionError(err error) bool {
	return errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrTokenInvalidSignature) ||
		errors.Is(err, ErrTokenMalformed) ||
		errors.Is(err, ErrAlgorithmMismatch) ||
		errors.Is(err, ErrTokenRevoked) ||
		errors.Is(err, ErrUnauthenticated)
}
