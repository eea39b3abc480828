package service

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestDerive(t *testing.T) {
	t.Run("rfc 5869 test case 1", func(t *testing.T) {
		ikm := mustHex(t, "0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b")
		salt := mustHex(t, "000102030405060708090a0b0c")
		info := mustHex(t, "f0f1f2f3f4f5f6f7f8f9")

		okm, err := Derive(ikm, salt, info, 42)
		require.NoError(t, err)
		assert.Equal(
			t,
			"3cb25f25faacd57a90434f64d0362f2a2d2d0a90cf1a5a4c5db02d56ecc4c5bf34007208d5b887185865",
			hex.EncodeToString(okm),
		)
	})

	t.Run("info separates purposes", func(t *testing.T) {
		ikm := make([]byte, 32)
		a, err := Derive(ikm, nil, []byte("purpose-a"), 32)
		require.NoError(t, err)
		b, err := Derive(ikm, nil, []byte("purpose-b"), 32)
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("deterministic", func(t *testing.T) {
		ikm := []byte("input keying material")
		a, err := Derive(ikm, []byte("salt"), []byte("info"), 32)
		require.NoError(t, err)
		b, err := Derive(ikm, []byte("salt"), []byte("info"), 32)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("invalid length", func(t *testing.T) {
		_, err := Derive([]byte("k"), nil, nil, 0)
		assert.Error(t, err)

		_, err = Derive([]byte("k"), nil, nil, 255*32+1)
		assert.Error(t, err)
	})
}
