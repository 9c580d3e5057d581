package cryptox

import "errors"

var (
	ErrEmptyPassword   = errors.New("password cannot be empty")
	ErrPasswordTooLong = errors.New("password too long")
	ErrInvalidSalt     = errors.New("invalid salt")
	ErrMalformedHash   = errors.New("malformed password hash")
	ErrUnknownScheme   = errors.New("unknown hashing scheme")
)
