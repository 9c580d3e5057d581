package cryptox

import (
	"encoding/base64"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// MinSaltBytes is the smallest amount of salt entropy accepted for hashing.
const MinSaltBytes = 16

// Salt is printable salt material: unpadded standard base64 of random bytes,
// the same alphabet PHC hash strings use.
type Salt string

// Bytes decodes the salt back to its raw bytes.
func (s Salt) Bytes() ([]byte, error) {
	b, err := base64.RawStdEncoding.DecodeString(string(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSalt, err)
	}
	return b, nil
}

// SaltGenerator produces a fresh salt for every credential.
type SaltGenerator interface {
	Generate() Salt
}

// RandomSaltGenerator draws salts from crypto/rand.
type RandomSaltGenerator struct {
	Size int
}

// NewSaltGenerator returns a generator producing MinSaltBytes of entropy.
func NewSaltGenerator() RandomSaltGenerator {
	return RandomSaltGenerator{Size: MinSaltBytes}
}

// Generate returns a new random salt. Sizes below MinSaltBytes are raised.
func (g RandomSaltGenerator) Generate() Salt {
	size := g.Size
	if size < MinSaltBytes {
		size = MinSaltBytes
	}
	return Salt(base64.RawStdEncoding.EncodeToString(common.GenerateRandByteArray(size)))
}
