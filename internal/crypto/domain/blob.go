package domain

import "strings"

// Blob layout constants. A decoded blob is nonce || tag || ciphertext.
const (
	NonceSize   = 12
	TagSize     = 16
	MinBlobSize = NonceSize + TagSize
)

// EncryptedSecret is the textual ciphertext stored in a credential row. It is either
// a bare base64 payload (legacy form) or "<kid>:<base64 payload>". The base64 alphabet
// has no ':' so the first colon always separates the key id.
type EncryptedSecret string

// KeyID returns the embedded key id, or "" and false for the legacy form.
func (e EncryptedSecret) KeyID() (string, bool) {
	kid, _, ok := strings.Cut(string(e), ":")
	if !ok {
		return "", false
	}
	return kid, true
}

// Payload returns the base64 part of the blob.
func (e EncryptedSecret) Payload() string {
	if _, payload, ok := strings.Cut(string(e), ":"); ok {
		return payload
	}
	return string(e)
}

// IsEmpty reports whether e is the empty-plaintext sentinel.
func (e EncryptedSecret) IsEmpty() bool {
	return e == ""
}

// NewEncryptedSecret joins kid and payload. An empty kid yields the legacy form.
func NewEncryptedSecret(kid, payload string) EncryptedSecret {
	if kid == "" || payload == "" {
		return EncryptedSecret(payload)
	}
	return EncryptedSecret(kid + ":" + payload)
}
