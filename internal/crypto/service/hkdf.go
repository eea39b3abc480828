package service

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// maxDeriveLength is the HKDF-SHA256 output limit (255 * hash size).
const maxDeriveLength = 255 * sha256.Size

// Derive expands ikm into a length byte subkey with HKDF-SHA256. info binds the
// subkey to a purpose so the same master key is never used for two purposes.
func Derive(ikm, salt, info []byte, length int) ([]byte, error) {
	if length <= 0 || length > maxDeriveLength {
		return nil, fmt.Errorf("invalid derived key length %d", length)
	}

	out := make([]byte, length)
	if _, err := io.ReadFull(hkdf.New(sha256.New, ikm, salt, info), out); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return out, nil
}
