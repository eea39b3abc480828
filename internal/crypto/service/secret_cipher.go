package service

import (
	cryptoDomain "github.com/allisson/tradejournal/internal/crypto/domain"
)

// credentialKeyInfo is the HKDF info string for credential subkeys. Changing it makes
// every prefixed blob unreadable.
var credentialKeyInfo = []byte("tradejournal/credential/v1")

// registryCipher implements SecretCipher on top of a MasterKeyRegistry.
//
// Prefixed blobs are sealed under a per-kid subkey derived with HKDF. Legacy blobs
// (no prefix) were written with the raw master key and are opened with the registry's
// legacy key.
type registryCipher struct {
	activeID string
	subkeys  map[string]*AESGCMCipher
	legacy   *AESGCMCipher
}

// NewSecretCipher derives a subkey for every key in registry. The registry may be
// closed once this returns.
func NewSecretCipher(registry *cryptoDomain.MasterKeyRegistry) (SecretCipher, error) {
	c := &registryCipher{
		activeID: registry.ActiveKeyID(),
		subkeys:  make(map[string]*AESGCMCipher),
	}

	for _, kid := range registry.KeyIDs() {
		mk, _ := registry.Get(kid)

		subkey, err := Derive(mk.Key, nil, credentialKeyInfo, cryptoDomain.KeySize)
		if err != nil {
			return nil, err
		}
		aead, err := NewAESGCM(subkey)
		cryptoDomain.Zero(subkey)
		if err != nil {
			return nil, err
		}
		c.subkeys[kid] = aead
	}

	if mk, ok := registry.LegacyKey(); ok {
		aead, err := NewAESGCM(mk.Key)
		if err != nil {
			return nil, err
		}
		c.legacy = aead
	}

	return c, nil
}

// ActiveKeyID returns the key id new blobs are written under.
func (c *registryCipher) ActiveKeyID() string {
	return c.activeID
}

// Encrypt seals plaintext under the active subkey and prefixes the active key id.
func (c *registryCipher) Encrypt(plaintext string) (cryptoDomain.EncryptedSecret, error) {
	if plaintext == "" {
		return "", nil
	}
	return sealToBlob(c.subkeys[c.activeID], c.activeID, plaintext)
}

// Decrypt opens blob with the key its prefix names, or the legacy key.
func (c *registryCipher) Decrypt(blob cryptoDomain.EncryptedSecret) (string, error) {
	if blob.IsEmpty() {
		return "", nil
	}

	kid, prefixed := blob.KeyID()
	if !prefixed {
		if c.legacy == nil {
			return "", cryptoDomain.ErrUnknownKeyID
		}
		return openBlob(c.legacy, blob)
	}

	aead, ok := c.subkeys[kid]
	if !ok {
		return "", cryptoDomain.ErrUnknownKeyID
	}
	return openBlob(aead, blob)
}

// NeedsRewrap reports whether blob should be re-encrypted under the active key.
func (c *registryCipher) NeedsRewrap(blob cryptoDomain.EncryptedSecret) bool {
	if blob.IsEmpty() {
		return false
	}
	kid, prefixed := blob.KeyID()
	return !prefixed || kid != c.activeID
}
