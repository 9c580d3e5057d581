package common

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeRandHexString(t *testing.T) {
	for _, n := range []int{0, 1, 16, 64} {
		s, err := MakeRandHexString(n)
		require.NoError(t, err)
		assert.Len(t, s, 2*n)

		raw, err := hex.DecodeString(s)
		require.NoError(t, err)
		assert.Len(t, raw, n)
	}

	a, _ := MakeRandHexString(32)
	b, _ := MakeRandHexString(32)
	assert.NotEqual(t, a, b, "two 32-byte secrets collided")
}

func TestGenerateRandByteArray(t *testing.T) {
	a := GenerateRandByteArray(24)
	b := GenerateRandByteArray(24)
	assert.Len(t, a, 24)
	assert.NotEqual(t, a, b)
	assert.Empty(t, GenerateRandByteArray(0))
}

func TestWipeByteArray(t *testing.T) {
	pw := []byte("hunter2")
	WipeByteArray(pw)
	assert.Equal(t, make([]byte, 7), pw)

	assert.NotPanics(t, func() { WipeByteArray(nil) })
}
