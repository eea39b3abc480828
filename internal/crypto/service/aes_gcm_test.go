package service

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/tradejournal/internal/crypto/domain"
)

func randomKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, cryptoDomain.KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestNewAESGCM(t *testing.T) {
	tests := []struct {
		name    string
		key     []byte
		wantErr bool
	}{
		{"valid key", make([]byte, 32), false},
		{"short key", make([]byte, 16), true},
		{"long key", make([]byte, 64), true},
		{"nil key", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewAESGCM(tt.key)
			if tt.wantErr {
				assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, c)
		})
	}
}

func TestAESGCMCipher_SealLayout(t *testing.T) {
	c, err := NewAESGCM(randomKey(t))
	require.NoError(t, err)

	plaintext := []byte("sk-test-1234567890")
	sealed, err := c.Seal(plaintext)
	require.NoError(t, err)
	assert.Len(t, sealed, cryptoDomain.MinBlobSize+len(plaintext))

	opened, err := c.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

func TestAESGCMCipher_FreshNonce(t *testing.T) {
	c, err := NewAESGCM(randomKey(t))
	require.NoError(t, err)

	first, err := c.Seal([]byte("same"))
	require.NoError(t, err)
	second, err := c.Seal([]byte("same"))
	require.NoError(t, err)

	assert.False(t, bytes.Equal(first[:cryptoDomain.NonceSize], second[:cryptoDomain.NonceSize]))
	assert.NotEqual(t, first, second)
}

func TestAESGCMCipher_OpenFailsClosed(t *testing.T) {
	c, err := NewAESGCM(randomKey(t))
	require.NoError(t, err)

	sealed, err := c.Seal([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"shorter than nonce and tag", sealed[:cryptoDomain.MinBlobSize-1]},
		{"truncated ciphertext", sealed[:len(sealed)-1]},
		{"tag flipped", flipBit(sealed, cryptoDomain.NonceSize)},
		{"nonce flipped", flipBit(sealed, 0)},
		{"ciphertext flipped", flipBit(sealed, len(sealed)-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plaintext, err := c.Open(tt.data)
			assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
			assert.Nil(t, plaintext)
		})
	}
}

func TestEncryptDecrypt(t *testing.T) {
	key := randomKey(t)

	t.Run("round trip", func(t *testing.T) {
		blob, err := Encrypt("sk-live-abcdef", key)
		require.NoError(t, err)

		_, prefixed := blob.KeyID()
		assert.False(t, prefixed)

		plaintext, err := Decrypt(blob, key)
		require.NoError(t, err)
		assert.Equal(t, "sk-live-abcdef", plaintext)
	})

	t.Run("empty plaintext maps to empty blob", func(t *testing.T) {
		blob, err := Encrypt("", key)
		require.NoError(t, err)
		assert.True(t, blob.IsEmpty())

		plaintext, err := Decrypt(blob, key)
		require.NoError(t, err)
		assert.Equal(t, "", plaintext)
	})

	t.Run("invalid base64", func(t *testing.T) {
		plaintext, err := Decrypt("not*base64", key)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
		assert.Equal(t, "", plaintext)
	})

	t.Run("decoded blob too short", func(t *testing.T) {
		blob := cryptoDomain.EncryptedSecret(base64.StdEncoding.EncodeToString(make([]byte, 27)))
		plaintext, err := Decrypt(blob, key)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
		assert.Equal(t, "", plaintext)
	})

	t.Run("wrong key", func(t *testing.T) {
		blob, err := Encrypt("sk-live-abcdef", key)
		require.NoError(t, err)

		plaintext, err := Decrypt(blob, randomKey(t))
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
		assert.Equal(t, "", plaintext)
	})

	t.Run("invalid key size", func(t *testing.T) {
		_, err := Encrypt("x", make([]byte, 10))
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
	})
}

func flipBit(data []byte, idx int) []byte {
	out := make([]byte, len(data))
	copy(out, data)
	out[idx] ^= 0x01
	return out
}
