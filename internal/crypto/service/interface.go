// Package service provides the AES-256-GCM blob format, HKDF subkey derivation and the
// registry aware cipher used to protect stored provider credentials.
package service

import (
	"context"

	cryptoDomain "github.com/allisson/tradejournal/internal/crypto/domain"
)

// SecretCipher encrypts and decrypts credential secrets under the key registry.
type SecretCipher interface {
	// Encrypt seals plaintext under the active key. Empty plaintext yields an empty blob.
	Encrypt(plaintext string) (cryptoDomain.EncryptedSecret, error)

	// Decrypt opens a blob written under any key in the registry, or a legacy blob.
	// Returns cryptoDomain.ErrUnknownKeyID when the blob's key is not loaded and
	// cryptoDomain.ErrDecryptionFailed for any other failure.
	Decrypt(blob cryptoDomain.EncryptedSecret) (string, error)

	// NeedsRewrap reports whether blob was not written under the active key.
	NeedsRewrap(blob cryptoDomain.EncryptedSecret) bool

	// ActiveKeyID returns the key id new blobs are written under.
	ActiveKeyID() string
}

// KMSService opens KMS keepers used to wrap and unwrap registry entries.
type KMSService interface {
	// OpenKeeper opens a keeper for the given gocloud secrets URI.
	OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error)
}
