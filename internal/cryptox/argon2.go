package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"golang.org/x/crypto/argon2"
)

// OWASP-recommended argon2id parameters.
const (
	argon2Time    = 1         // iterations
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4         // parallelism
	argon2KeyLen  = 32        // output length in bytes

	// upper bounds accepted when parsing stored hashes
	argon2MaxTime   = 64
	argon2MaxMemory = 4 * 1024 * 1024 // 4 GB
)

// Argon2idHasher produces self-contained PHC strings:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
type Argon2idHasher struct {
	time    uint32
	memory  uint32
	threads uint8
	keyLen  uint32
}

// Argon2Option tunes the cost parameters of new hashes.
type Argon2Option func(*Argon2idHasher)

// WithArgon2Params overrides iterations, memory (KiB) and parallelism.
func WithArgon2Params(time, memory uint32, threads uint8) Argon2Option {
	return func(h *Argon2idHasher) {
		h.time = time
		h.memory = memory
		h.threads = threads
	}
}

func NewArgon2idHasher(opts ...Argon2Option) *Argon2idHasher {
	h := &Argon2idHasher{
		time:    argon2Time,
		memory:  argon2Memory,
		threads: argon2Threads,
		keyLen:  argon2KeyLen,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Argon2idHasher) Scheme() string { return SchemeArgon2id }

// Hash produces an argon2id hash of the password.
func (h *Argon2idHasher) Hash(password string, salt Salt) (string, error) {
	if err := ValidatePassword(password); err != nil {
		return "", err
	}
	raw, err := saltBytes(salt)
	if err != nil {
		return "", err
	}

	pw := []byte(password)
	defer common.WipeByteArray(pw)

	key := argon2.IDKey(pw, raw, h.time, h.memory, h.threads, h.keyLen)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.memory,
		h.time,
		h.threads,
		base64.RawStdEncoding.EncodeToString(raw),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify checks if the password matches the hash.
func (h *Argon2idHasher) Verify(password, encodedHash string) (bool, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[0] != "" {
		return false, malformed("invalid hash format")
	}

	if parts[1] != SchemeArgon2id {
		return false, malformed("unsupported hash algorithm: %s", parts[1])
	}

	v, err := parseParams(parts[2], "v")
	if err != nil {
		return false, malformed("version: %v", err)
	}
	if v[0] != argon2.Version {
		return false, malformed("unsupported argon2 version %d", v[0])
	}

	params, err := parseParams(parts[3], "m", "t", "p")
	if err != nil {
		return false, malformed("parameters: %v", err)
	}
	memory, time, threads := params[0], params[1], params[2]
	if time < 1 || memory < 1 || time > argon2MaxTime || memory > argon2MaxMemory {
		return false, malformed("invalid cost parameters m=%d t=%d", memory, time)
	}
	// threads must fit in uint8 without silent truncation
	if threads < 1 || threads > 255 {
		return false, malformed("threads value %d out of range", threads)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, malformed("salt: %v", err)
	}

	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, malformed("hash: %v", err)
	}

	keyLen := len(expected)
	if keyLen <= 0 || keyLen > 1<<10 {
		return false, malformed("invalid hash key length: %d", keyLen)
	}

	if ValidatePassword(password) != nil {
		return false, nil
	}

	pw := []byte(password)
	defer common.WipeByteArray(pw)

	computed := argon2.IDKey(pw, salt, time, memory, uint8(threads), uint32(keyLen))

	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}
