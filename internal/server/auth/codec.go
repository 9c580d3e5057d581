package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed         = errors.New("token malformed")
	ErrBadSignature      = errors.New("token signature invalid")
	ErrExpired           = errors.New("token expired")
	ErrAlgorithmMismatch = errors.New("token algorithm does not match configuration")
)

// segments are decoded strictly so that altered padding bits cannot yield
// the same bytes
var segmentEncoding = base64.RawURLEncoding.Strict()

// Codec encodes and verifies session tokens for one SigningConfig. It holds
// no mutable state and is safe for concurrent use.
type Codec struct {
	cfg    SigningConfig
	method *jwt.SigningMethodHMAC
	now    func() time.Time
}

type CodecOption func(*Codec)

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) { c.now = now }
}

func NewCodec(cfg SigningConfig, opts ...CodecOption) (*Codec, error) {
	if len(cfg.secret) == 0 {
		return nil, ErrMissingSecret
	}
	method, ok := signingMethods[cfg.algorithm]
	if !ok {
		return nil, ErrUnsupportedAlgorithm
	}
	c := &Codec{cfg: cfg, method: method, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Codec) Algorithm() Algorithm { return c.cfg.algorithm }

// Encode signs claims into header.payload.signature.
func (c *Codec) Encode(claims SessionClaims) (string, error) {
	if err := claims.Valid(); err != nil {
		return "", err
	}

	token := jwt.NewWithClaims(c.method, jwt.RegisteredClaims{
		ID:        claims.ID,
		Subject:   claims.Subject,
		IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
		ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
	})

	return token.SignedString(c.cfg.secret)
}

// Decode verifies token and returns its claims. The header algorithm must
// equal the configured one, the signature is checked before the payload is
// parsed, and expiry is checked last against a single clock read. Any
// failure returns zero claims.
func (c *Codec) Decode(token string) (SessionClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return SessionClaims{}, ErrMalformed
	}

	rawHeader, err := segmentEncoding.DecodeString(parts[0])
	if err != nil {
		return SessionClaims{}, ErrMalformed
	}
	var header struct {
		Alg string `json:"alg"`
	}
	if err := json.Unmarshal(rawHeader, &header); err != nil || header.Alg == "" {
		return SessionClaims{}, ErrMalformed
	}
	if header.Alg != string(c.cfg.algorithm) {
		return SessionClaims{}, ErrAlgorithmMismatch
	}

	sig, err := segmentEncoding.DecodeString(parts[2])
	if err != nil {
		return SessionClaims{}, ErrBadSignature
	}
	// HMAC verification compares with hmac.Equal
	if err := c.method.Verify(parts[0]+"."+parts[1], sig, c.cfg.secret); err != nil {
		return SessionClaims{}, ErrBadSignature
	}

	rawPayload, err := segmentEncoding.DecodeString(parts[1])
	if err != nil {
		return SessionClaims{}, ErrMalformed
	}
	var p payload
	if err := json.Unmarshal(rawPayload, &p); err != nil || p.IssuedAt == nil || p.ExpiresAt == nil {
		return SessionClaims{}, ErrMalformed
	}
	claims := SessionClaims{
		ID:        p.ID,
		Subject:   p.Subject,
		IssuedAt:  time.Unix(*p.IssuedAt, 0),
		ExpiresAt: time.Unix(*p.ExpiresAt, 0),
	}
	if claims.Valid() != nil {
		return SessionClaims{}, ErrMalformed
	}

	if !c.now().Before(claims.ExpiresAt) {
		return SessionClaims{}, ErrExpired
	}

	return claims, nil
}
