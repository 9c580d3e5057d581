// Package cryptox implements password hashing for stored credentials: salt
// generation, the argon2id and scrypt schemes, a router that verifies hashes
// of either scheme, and a bounded pool for running the expensive work off the
// request goroutines.
package cryptox

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxPasswordLength bounds the password size accepted for hashing, in bytes.
const MaxPasswordLength = 1024

const (
	SchemeArgon2id = "argon2id"
	SchemeScrypt   = "scrypt"
)

// Hasher derives and checks one-way salted password hashes.
type Hasher interface {
	// Scheme returns the identifier written at the start of encoded hashes.
	Scheme() string

	// Hash returns the encoded hash of password with salt. The result is
	// deterministic for the same inputs and embeds salt and parameters.
	Hash(password string, salt Salt) (string, error)

	// Verify checks password against an encoded hash.
	// Returns (true, nil) on match, (false, nil) on mismatch, or an error
	// wrapping ErrMalformedHash when the encoding is broken.
	Verify(password, encodedHash string) (bool, error)
}

// ValidatePassword rejects empty and oversized passwords.
func ValidatePassword(password string) error {
	if password == "" {
		return ErrEmptyPassword
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}

// NewHasher returns the hasher for scheme with production parameters.
func NewHasher(scheme string) (Hasher, error) {
	switch scheme {
	case SchemeArgon2id:
		return NewArgon2idHasher(), nil
	case SchemeScrypt:
		return NewScryptHasher(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)
	}
}

func saltBytes(salt Salt) ([]byte, error) {
	b, err := salt.Bytes()
	if err != nil {
		return nil, err
	}
	if len(b) < MinSaltBytes {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrInvalidSalt, len(b), MinSaltBytes)
	}
	return b, nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedHash, fmt.Sprintf(format, args...))
}

// parseParams reads a "k1=v1,k2=v2" segment whose keys appear exactly as
// listed. Values must be plain decimal with no sign, padding or suffix.
func parseParams(segment string, keys ...string) ([]uint32, error) {
	fields := strings.Split(segment, ",")
	if len(fields) != len(keys) {
		return nil, fmt.Errorf("want %d fields in %q", len(keys), segment)
	}
	vals := make([]uint32, len(keys))
	for i, f := range fields {
		k, v, ok := strings.Cut(f, "=")
		if !ok || k != keys[i] {
			return nil, fmt.Errorf("want %s= in %q", keys[i], f)
		}
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil || strconv.FormatUint(n, 10) != v {
			return nil, fmt.Errorf("bad %s value %q", k, v)
		}
		vals[i] = uint32(n)
	}
	return vals, nil
}

// schemeOf extracts "argon2id" from "$argon2id$...".
func schemeOf(encodedHash string) string {
	if !strings.HasPrefix(encodedHash, "$") {
		return ""
	}
	rest := encodedHash[1:]
	if i := strings.IndexByte(rest, '$'); i >= 0 {
		return rest[:i]
	}
	return ""
}
