package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"golang.org/x/crypto/scrypt"
)

const (
	scryptLogN   = 15 // N = 32768
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32

	// upper bounds accepted when parsing stored hashes
	scryptMaxLogN = 20
	scryptMaxR    = 32
	scryptMaxP    = 16
)

// ScryptHasher produces
//
//	$scrypt$ln=15,r=8,p=1$<salt>$<hash>
//
// Credentials hashed with it also keep the salt in their own column.
type ScryptHasher struct {
	logN   uint8
	r      int
	p      int
	keyLen int
}

// ScryptOption tunes the cost parameters of new hashes.
type ScryptOption func(*ScryptHasher)

// WithScryptParams overrides log2(N), r and p.
func WithScryptParams(logN uint8, r, p int) ScryptOption {
	return func(h *ScryptHasher) {
		h.logN = logN
		h.r = r
		h.p = p
	}
}

func NewScryptHasher(opts ...ScryptOption) *ScryptHasher {
	h := &ScryptHasher{logN: scryptLogN, r: scryptR, p: scryptP, keyLen: scryptKeyLen}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *ScryptHasher) Scheme() string { return SchemeScrypt }

func (h *ScryptHasher) Hash(password string, salt Salt) (string, error) {
	if err := ValidatePassword(password); err != nil {
		return "", err
	}
	raw, err := saltBytes(salt)
	if err != nil {
		return "", err
	}

	pw := []byte(password)
	defer common.WipeByteArray(pw)

	key, err := scrypt.Key(pw, raw, 1<<h.logN, h.r, h.p, h.keyLen)
	if err != nil {
		return "", fmt.Errorf("scrypt: %w", err)
	}

	return fmt.Sprintf(
		"$scrypt$ln=%d,r=%d,p=%d$%s$%s",
		h.logN,
		h.r,
		h.p,
		base64.RawStdEncoding.EncodeToString(raw),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (h *ScryptHasher) Verify(password, encodedHash string) (bool, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 5 || parts[0] != "" {
		return false, malformed("invalid hash format")
	}
	if parts[1] != SchemeScrypt {
		return false, malformed("unsupported hash algorithm: %s", parts[1])
	}

	params, err := parseParams(parts[2], "ln", "r", "p")
	if err != nil {
		return false, malformed("parameters: %v", err)
	}
	logN, r, p := int(params[0]), int(params[1]), int(params[2])
	if logN < 1 || logN > scryptMaxLogN || r < 1 || p < 1 || r > scryptMaxR || p > scryptMaxP {
		return false, malformed("invalid cost parameters ln=%d r=%d p=%d", logN, r, p)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil {
		return false, malformed("salt: %v", err)
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, malformed("hash: %v", err)
	}
	if len(expected) == 0 || len(expected) > 1<<10 {
		return false, malformed("invalid hash key length: %d", len(expected))
	}

	if ValidatePassword(password) != nil {
		return false, nil
	}

	pw := []byte(password)
	defer common.WipeByteArray(pw)

	computed, err := scrypt.Key(pw, salt, 1<<logN, r, p, len(expected))
	if err != nil {
		return false, malformed("scrypt: %v", err)
	}

	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}
