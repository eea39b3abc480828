package service

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/tradejournal/internal/crypto/domain"
)

func newRegistry(t *testing.T, activeID, legacyID string, ids ...string) *cryptoDomain.MasterKeyRegistry {
	t.Helper()
	keys := make([]*cryptoDomain.MasterKey, 0, len(ids))
	for i, id := range ids {
		keys = append(keys, &cryptoDomain.MasterKey{
			ID:  id,
			Key: bytes.Repeat([]byte{byte(i + 1)}, cryptoDomain.KeySize),
		})
	}
	registry, err := cryptoDomain.NewMasterKeyRegistry(activeID, legacyID, keys)
	require.NoError(t, err)
	return registry
}

func TestSecretCipher_RoundTrip(t *testing.T) {
	c, err := NewSecretCipher(newRegistry(t, "k1", "", "k1"))
	require.NoError(t, err)

	blob, err := c.Encrypt("sk-live-0123456789")
	require.NoError(t, err)

	kid, prefixed := blob.KeyID()
	assert.True(t, prefixed)
	assert.Equal(t, "k1", kid)

	plaintext, err := c.Decrypt(blob)
	require.NoError(t, err)
	assert.Equal(t, "sk-live-0123456789", plaintext)
}

func TestSecretCipher_EmptySentinel(t *testing.T) {
	c, err := NewSecretCipher(newRegistry(t, "k1", "", "k1"))
	require.NoError(t, err)

	blob, err := c.Encrypt("")
	require.NoError(t, err)
	assert.True(t, blob.IsEmpty())

	plaintext, err := c.Decrypt("")
	require.NoError(t, err)
	assert.Equal(t, "", plaintext)
	assert.False(t, c.NeedsRewrap(""))
}

func TestSecretCipher_UsesDerivedSubkey(t *testing.T) {
	registry := newRegistry(t, "k1", "", "k1")
	mk, _ := registry.Get("k1")
	rawKey := append([]byte(nil), mk.Key...)

	c, err := NewSecretCipher(registry)
	require.NoError(t, err)

	blob, err := c.Encrypt("secret")
	require.NoError(t, err)

	_, err = Decrypt(blob, rawKey)
	assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
}

func TestSecretCipher_Rotation(t *testing.T) {
	oldCipher, err := NewSecretCipher(newRegistry(t, "k1", "", "k1"))
	require.NoError(t, err)
	oldBlob, err := oldCipher.Encrypt("rotated-secret")
	require.NoError(t, err)

	rotated, err := NewSecretCipher(newRegistry(t, "k2", "k1", "k1", "k2"))
	require.NoError(t, err)

	t.Run("old blobs remain readable", func(t *testing.T) {
		plaintext, err := rotated.Decrypt(oldBlob)
		require.NoError(t, err)
		assert.Equal(t, "rotated-secret", plaintext)
		assert.True(t, rotated.NeedsRewrap(oldBlob))
	})

	t.Run("new blobs use the active key", func(t *testing.T) {
		blob, err := rotated.Encrypt("fresh")
		require.NoError(t, err)
		kid, _ := blob.KeyID()
		assert.Equal(t, "k2", kid)
		assert.Equal(t, "k2", rotated.ActiveKeyID())
		assert.False(t, rotated.NeedsRewrap(blob))
	})

	t.Run("retired key is unknown", func(t *testing.T) {
		retired, err := NewSecretCipher(newRegistry(t, "k2", "", "k2"))
		require.NoError(t, err)

		plaintext, err := retired.Decrypt(oldBlob)
		assert.ErrorIs(t, err, cryptoDomain.ErrUnknownKeyID)
		assert.NotErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
		assert.Equal(t, "", plaintext)
	})
}

func TestSecretCipher_LegacyBlobs(t *testing.T) {
	registry := newRegistry(t, "k1", "", "k1")
	mk, _ := registry.Get("k1")
	legacyBlob, err := Encrypt("legacy-secret", mk.Key)
	require.NoError(t, err)

	t.Run("single key registry opens legacy blobs", func(t *testing.T) {
		c, err := NewSecretCipher(registry)
		require.NoError(t, err)

		plaintext, err := c.Decrypt(legacyBlob)
		require.NoError(t, err)
		assert.Equal(t, "legacy-secret", plaintext)
		assert.True(t, c.NeedsRewrap(legacyBlob))
	})

	t.Run("explicit legacy key", func(t *testing.T) {
		c, err := NewSecretCipher(newRegistry(t, "k2", "k1", "k1", "k2"))
		require.NoError(t, err)

		plaintext, err := c.Decrypt(legacyBlob)
		require.NoError(t, err)
		assert.Equal(t, "legacy-secret", plaintext)
	})

	t.Run("ambiguous registry refuses legacy blobs", func(t *testing.T) {
		c, err := NewSecretCipher(newRegistry(t, "k2", "", "k1", "k2"))
		require.NoError(t, err)

		plaintext, err := c.Decrypt(legacyBlob)
		assert.ErrorIs(t, err, cryptoDomain.ErrUnknownKeyID)
		assert.Equal(t, "", plaintext)
	})
}

func TestSecretCipher_TamperedPrefixedBlob(t *testing.T) {
	c, err := NewSecretCipher(newRegistry(t, "k1", "", "k1"))
	require.NoError(t, err)

	blob, err := c.Encrypt("secret")
	require.NoError(t, err)

	tampered := blob[:len(blob)-2] + "AA"
	if tampered == blob {
		tampered = blob[:len(blob)-2] + "BB"
	}

	plaintext, err := c.Decrypt(tampered)
	assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	assert.Equal(t, "", plaintext)
}
