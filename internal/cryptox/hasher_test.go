package cryptox

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheap parameters keep the suite fast; Verify reads them from the encoding
func testHashers() []Hasher {
	return []Hasher{
		NewArgon2idHasher(WithArgon2Params(1, 1024, 1)),
		NewScryptHasher(WithScryptParams(4, 8, 1)),
	}
}

func TestHash(t *testing.T) {
	salts := NewSaltGenerator()

	for _, h := range testHashers() {
		t.Run(h.Scheme(), func(t *testing.T) {
			t.Run("produces encoded hash with scheme prefix", func(t *testing.T) {
				hash, err := h.Hash("password123", salts.Generate())
				require.NoError(t, err)
				assert.True(t, strings.HasPrefix(hash, "$"+h.Scheme()+"$"))
			})

			t.Run("deterministic for same password and salt", func(t *testing.T) {
				salt := salts.Generate()
				h1, err := h.Hash("correct horse", salt)
				require.NoError(t, err)
				h2, err := h.Hash("correct horse", salt)
				require.NoError(t, err)
				assert.Equal(t, h1, h2)
			})

			t.Run("different salts produce different hashes", func(t *testing.T) {
				s1, s2 := salts.Generate(), salts.Generate()
				require.NotEqual(t, s1, s2)
				h1, err := h.Hash("samepassword", s1)
				require.NoError(t, err)
				h2, err := h.Hash("samepassword", s2)
				require.NoError(t, err)
				assert.NotEqual(t, h1, h2)
			})

			t.Run("embeds the salt", func(t *testing.T) {
				salt := salts.Generate()
				hash, err := h.Hash("pw", salt)
				require.NoError(t, err)
				assert.Contains(t, hash, "$"+string(salt)+"$")
			})

			t.Run("rejects empty password", func(t *testing.T) {
				_, err := h.Hash("", salts.Generate())
				assert.ErrorIs(t, err, ErrEmptyPassword)
			})

			t.Run("rejects oversized password", func(t *testing.T) {
				_, err := h.Hash(strings.Repeat("a", MaxPasswordLength+1), salts.Generate())
				assert.ErrorIs(t, err, ErrPasswordTooLong)
			})

			t.Run("accepts password at the limit", func(t *testing.T) {
				_, err := h.Hash(strings.Repeat("a", MaxPasswordLength), salts.Generate())
				assert.NoError(t, err)
			})

			t.Run("rejects short salt", func(t *testing.T) {
				_, err := h.Hash("pw", Salt("c2FsdA"))
				assert.ErrorIs(t, err, ErrInvalidSalt)
			})

			t.Run("rejects undecodable salt", func(t *testing.T) {
				_, err := h.Hash("pw", Salt("!!!not-base64!!!"))
				assert.ErrorIs(t, err, ErrInvalidSalt)
			})
		})
	}
}

func TestVerify(t *testing.T) {
	salts := NewSaltGenerator()

	for _, h := range testHashers() {
		t.Run(h.Scheme(), func(t *testing.T) {
			hash, err := h.Hash("correctpassword", salts.Generate())
			require.NoError(t, err)

			t.Run("correct password verifies", func(t *testing.T) {
				ok, err := h.Verify("correctpassword", hash)
				require.NoError(t, err)
				assert.True(t, ok)
			})

			t.Run("incorrect password fails without error", func(t *testing.T) {
				for _, wrong := range []string{"wrongpassword", "correctpassworD", "correctpasswor", "correctpassword ", ""} {
					ok, err := h.Verify(wrong, hash)
					require.NoError(t, err)
					assert.False(t, ok, wrong)
				}
			})

			t.Run("oversized password fails without error", func(t *testing.T) {
				ok, err := h.Verify(strings.Repeat("x", MaxPasswordLength+1), hash)
				require.NoError(t, err)
				assert.False(t, ok)
			})

			t.Run("tampered hash fails", func(t *testing.T) {
				i := strings.LastIndexByte(hash, '$')
				body := []byte(hash[i+1:])
				if body[0] == 'A' {
					body[0] = 'B'
				} else {
					body[0] = 'A'
				}
				ok, err := h.Verify("correctpassword", hash[:i+1]+string(body))
				require.NoError(t, err)
				assert.False(t, ok)
			})
		})
	}
}

func TestArgon2idVerify_Malformed(t *testing.T) {
	h := NewArgon2idHasher()

	cases := map[string]string{
		"not a hash":        "not-a-valid-hash",
		"wrong algorithm":   "$argon2i$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"bad version":       "$argon2id$vXX$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"unknown version":   "$argon2id$v=16$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"bad parameters":    "$argon2id$v=19$invalid$c2FsdA$aGFzaA",
		"zero iterations":   "$argon2id$v=19$m=65536,t=0,p=4$c2FsdA$aGFzaA",
		"huge memory":       "$argon2id$v=19$m=4294967295,t=1,p=4$c2FsdA$aGFzaA",
		"threads overflow":  "$argon2id$v=19$m=65536,t=1,p=256$c2FsdA$aGFzaA",
		"zero threads":      "$argon2id$v=19$m=65536,t=1,p=0$c2FsdA$aGFzaA",
		"invalid salt b64":  "$argon2id$v=19$m=65536,t=1,p=4$!!!invalid!!!$aGFzaA",
		"invalid hash b64":  "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$!!!invalid!!!",
		"empty hash":        "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$",
		"leading garbage":   "x$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"empty stored hash": "",
		"version suffix":    "$argon2id$v=19junk$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"parameter suffix":  "$argon2id$v=19$m=65536,t=1,p=4x$c2FsdA$aGFzaA",
		"extra parameter":   "$argon2id$v=19$m=65536,t=1,p=4,k=1$c2FsdA$aGFzaA",
		"reordered params":  "$argon2id$v=19$t=1,m=65536,p=4$c2FsdA$aGFzaA",
		"padded value":      "$argon2id$v=19$m=065536,t=1,p=4$c2FsdA$aGFzaA",
		"signed value":      "$argon2id$v=19$m=+65536,t=1,p=4$c2FsdA$aGFzaA",
	}
	for name, enc := range cases {
		t.Run(name, func(t *testing.T) {
			ok, err := h.Verify("password", enc)
			assert.False(t, ok)
			assert.ErrorIs(t, err, ErrMalformedHash)
		})
	}
}

func TestScryptVerify_Malformed(t *testing.T) {
	h := NewScryptHasher()

	cases := map[string]string{
		"not a hash":       "plain",
		"wrong algorithm":  "$argon2id$ln=15,r=8,p=1$c2FsdA$aGFzaA",
		"bad parameters":   "$scrypt$n=15$c2FsdA$aGFzaA",
		"huge cost":        "$scrypt$ln=40,r=8,p=1$c2FsdA$aGFzaA",
		"zero r":           "$scrypt$ln=15,r=0,p=1$c2FsdA$aGFzaA",
		"invalid salt b64": "$scrypt$ln=15,r=8,p=1$!!!$aGFzaA",
		"invalid hash b64": "$scrypt$ln=15,r=8,p=1$c2FsdA$!!!",
		"too many parts":   "$scrypt$ln=15,r=8,p=1$c2FsdA$aGFzaA$x",
		"parameter suffix": "$scrypt$ln=15,r=8,p=1junk$c2FsdA$aGFzaA",
		"spaced parameter": "$scrypt$ln=15, r=8,p=1$c2FsdA$aGFzaA",
	}
	for name, enc := range cases {
		t.Run(name, func(t *testing.T) {
			ok, err := h.Verify("password", enc)
			assert.False(t, ok)
			assert.ErrorIs(t, err, ErrMalformedHash)
		})
	}
}

func TestNewHasher(t *testing.T) {
	h, err := NewHasher(SchemeArgon2id)
	require.NoError(t, err)
	assert.Equal(t, SchemeArgon2id, h.Scheme())

	h, err = NewHasher(SchemeScrypt)
	require.NoError(t, err)
	assert.Equal(t, SchemeScrypt, h.Scheme())

	_, err = NewHasher("md5")
	assert.True(t, errors.Is(err, ErrUnknownScheme))
}

func TestValidatePassword(t *testing.T) {
	assert.ErrorIs(t, ValidatePassword(""), ErrEmptyPassword)
	assert.ErrorIs(t, ValidatePassword(strings.Repeat("p", 2000)), ErrPasswordTooLong)
	assert.NoError(t, ValidatePassword("p"))
}
