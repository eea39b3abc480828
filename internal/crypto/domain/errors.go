package domain

import (
	"github.com/allisson/tradejournal/internal/errors"
)

// ErrRegistry is the root of every key registry failure. A process that cannot load
// its registry must not serve any request that touches encrypted data.
var ErrRegistry = errors.Wrap(errors.ErrUnavailable, "key registry error")

// Key registry error definitions.
var (
	// ErrRegistryFileNotFound indicates the registry file is missing or unreadable.
	ErrRegistryFileNotFound = errors.Wrap(ErrRegistry, "registry file not readable")

	// ErrRegistryMalformed indicates the registry file is not valid JSON of the expected shape.
	ErrRegistryMalformed = errors.Wrap(ErrRegistry, "registry file malformed")

	// ErrActiveKeyNotFound indicates active_kid does not name a key in the registry.
	ErrActiveKeyNotFound = errors.Wrap(ErrRegistry, "active key id not found")

	// ErrLegacyKeyNotFound indicates legacy_kid does not name a key in the registry.
	ErrLegacyKeyNotFound = errors.Wrap(ErrRegistry, "legacy key id not found")

	// ErrInvalidKeyID indicates a key id that cannot be embedded in a blob prefix.
	ErrInvalidKeyID = errors.Wrap(ErrRegistry, "invalid key id")

	// ErrInvalidKeyEncoding indicates a registry entry is neither "base64:" nor "kms:".
	ErrInvalidKeyEncoding = errors.Wrap(ErrRegistry, "invalid key encoding")

	// ErrKMSKeeperRequired indicates a "kms:" entry was found but no keeper is configured.
	ErrKMSKeeperRequired = errors.Wrap(ErrRegistry, "kms keeper required")

	// ErrUnsupportedKMSScheme indicates a KMS key URI whose scheme has no registered driver.
	ErrUnsupportedKMSScheme = errors.Wrap(ErrRegistry, "unsupported kms scheme")

	// ErrInvalidKeySize indicates key material that is not exactly 32 bytes.
	ErrInvalidKeySize = errors.Wrap(ErrRegistry, "invalid key size")
)

// Encryption error definitions.
var (
	// ErrDecryptionFailed covers truncated blobs, bad base64, tag mismatch and wrong keys.
	// The cause is deliberately not distinguished.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")

	// ErrUnknownKeyID indicates a blob references a key id the registry does not hold,
	// or a legacy blob cannot be matched to a single key.
	ErrUnknownKeyID = errors.Wrap(errors.ErrUnavailable, "unknown key id")
)
