package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	cryptoDomain "github.com/allisson/tradejournal/internal/crypto/domain"
)

// AESGCMCipher seals data with AES-256-GCM using the nonce || tag || ciphertext layout.
//
// A fresh random 12-byte nonce is generated for every Seal call. The cipher holds no
// mutable state and is safe for concurrent use.
type AESGCMCipher struct {
	aead cipher.AEAD
}

// NewAESGCM creates a cipher for a 32-byte key.
func NewAESGCM(key []byte) (*AESGCMCipher, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AESGCMCipher{aead: aead}, nil
}

// Seal encrypts plaintext and returns nonce || tag || ciphertext.
func (a *AESGCMCipher) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, cryptoDomain.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	// Seal appends the tag after the ciphertext.
	sealed := a.aead.Seal(nil, nonce, plaintext, nil)
	ctLen := len(sealed) - cryptoDomain.TagSize

	out := make([]byte, 0, cryptoDomain.MinBlobSize+ctLen)
	out = append(out, nonce...)
	out = append(out, sealed[ctLen:]...)
	out = append(out, sealed[:ctLen]...)
	return out, nil
}

// Open verifies and decrypts a nonce || tag || ciphertext buffer. Any failure returns
// cryptoDomain.ErrDecryptionFailed and no plaintext.
func (a *AESGCMCipher) Open(data []byte) ([]byte, error) {
	if len(data) < cryptoDomain.MinBlobSize {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	nonce := data[:cryptoDomain.NonceSize]
	tag := data[cryptoDomain.NonceSize:cryptoDomain.MinBlobSize]
	ciphertext := data[cryptoDomain.MinBlobSize:]

	sealed := make([]byte, 0, len(ciphertext)+cryptoDomain.TagSize)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := a.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	return plaintext, nil
}

// Encrypt seals plaintext directly under key and returns the base64 blob without a
// key id prefix. Empty plaintext maps to the empty blob.
func Encrypt(plaintext string, key []byte) (cryptoDomain.EncryptedSecret, error) {
	if plaintext == "" {
		return "", nil
	}

	c, err := NewAESGCM(key)
	if err != nil {
		return "", err
	}
	return sealToBlob(c, "", plaintext)
}

// Decrypt opens a blob produced by Encrypt. The empty blob decrypts to the empty
// string. A key id prefix, if present, is ignored.
func Decrypt(blob cryptoDomain.EncryptedSecret, key []byte) (string, error) {
	if blob.IsEmpty() {
		return "", nil
	}

	c, err := NewAESGCM(key)
	if err != nil {
		return "", err
	}
	return openBlob(c, blob)
}

func sealToBlob(c *AESGCMCipher, kid, plaintext string) (cryptoDomain.EncryptedSecret, error) {
	data, err := c.Seal([]byte(plaintext))
	if err != nil {
		return "", err
	}
	return cryptoDomain.NewEncryptedSecret(kid, base64.StdEncoding.EncodeToString(data)), nil
}

func openBlob(c *AESGCMCipher, blob cryptoDomain.EncryptedSecret) (string, error) {
	data, err := base64.StdEncoding.DecodeString(blob.Payload())
	if err != nil {
		return "", cryptoDomain.ErrDecryptionFailed
	}

	plaintext, err := c.Open(data)
	if err != nil {
		return "", err
	}
	defer cryptoDomain.Zero(plaintext)

	return string(plaintext), nil
}
