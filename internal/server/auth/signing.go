// Package auth issues and validates the signed session tokens handed to
// clients after login. Tokens use the compact three-segment JWT layout,
// header.payload.signature, MACed with a process-wide secret.
package auth

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Algorithm names a supported MAC algorithm as written in the token header.
type Algorithm string

const (
	HS256 Algorithm = "HS256"
	HS384 Algorithm = "HS384"
	HS512 Algorithm = "HS512"

	DefaultAlgorithm = HS512
)

var signingMethods = map[Algorithm]*jwt.SigningMethodHMAC{
	HS256: jwt.SigningMethodHS256,
	HS384: jwt.SigningMethodHS384,
	HS512: jwt.SigningMethodHS512,
}

var (
	ErrMissingSecret        = fmt.Errorf("%w: signing secret is required", common.ErrConfiguration)
	ErrUnsupportedAlgorithm = fmt.Errorf("%w: unsupported signing algorithm", common.ErrConfiguration)
)

// ParseAlgorithm accepts algorithm names case-insensitively.
func ParseAlgorithm(s string) (Algorithm, error) {
	alg := Algorithm(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := signingMethods[alg]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, s)
	}
	return alg, nil
}

// SigningConfig holds the token secret and algorithm. Build it once at
// startup with NewSigningConfig and share it; it is never mutated.
type SigningConfig struct {
	secret    []byte
	algorithm Algorithm
}

// NewSigningConfig validates and copies its inputs.
func NewSigningConfig(secret []byte, algorithm Algorithm) (SigningConfig, error) {
	if len(secret) == 0 {
		return SigningConfig{}, ErrMissingSecret
	}
	if _, ok := signingMethods[algorithm]; !ok {
		return SigningConfig{}, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, algorithm)
	}
	s := make([]byte, len(secret))
	copy(s, secret)
	return SigningConfig{secret: s, algorithm: algorithm}, nil
}

func (c SigningConfig) Algorithm() Algorithm { return c.algorithm }

// String keeps the secret out of fmt output.
func (c SigningConfig) String() string {
	return fmt.Sprintf("SigningConfig{algorithm: %s, secret: [REDACTED]}", c.algorithm)
}

// GoString keeps the secret out of %#v output.
func (c SigningConfig) GoString() string { return c.String() }

// LogValue keeps the secret out of slog output.
func (c SigningConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("algorithm", string(c.algorithm)),
		slog.String("secret", "[REDACTED]"),
	)
}
