package domain

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/allisson/tradejournal/internal/errors"
)

// Credential-specific error definitions.
var (
	// ErrCredentialNotFound indicates there is no usable credential for the scope.
	// Rows in status error or revoked are reported as not found.
	ErrCredentialNotFound = errors.Wrap(errors.ErrNotFound, "credential not found")

	// ErrInvalidCategory indicates a provider category outside ai, data, news and trade.
	ErrInvalidCategory = errors.Wrap(errors.ErrInvalidInput, "invalid provider category")

	// ErrInvalidEnvironment indicates an environment other than live or test.
	ErrInvalidEnvironment = errors.Wrap(errors.ErrInvalidInput, "invalid environment")

	// ErrEmptySecret indicates an attempt to store an empty API key.
	ErrEmptySecret = errors.Wrap(errors.ErrInvalidInput, "api key must not be empty")

	// ErrCategoryMismatch indicates the provider belongs to a different category than requested.
	ErrCategoryMismatch = errors.Wrap(errors.ErrInvalidInput, "provider does not belong to this category")

	// ErrCredentialUnreadable indicates a stored credential exists but cannot be decrypted.
	ErrCredentialUnreadable = errors.Wrap(errors.ErrUnavailable, "credential unreadable")
)

// UnreadableError reports a credential whose ciphertext could not be opened, usually
// because the key it was written under has been retired from the registry.
type UnreadableError struct {
	CredentialID uuid.UUID
	Category     Category
	Cause        error
}

func (e *UnreadableError) Error() string {
	return fmt.Sprintf("credential %s (%s) unreadable: %v", e.CredentialID, e.Category, e.Cause)
}

// Unwrap exposes both ErrCredentialUnreadable and the underlying crypto error.
func (e *UnreadableError) Unwrap() []error {
	return []error{ErrCredentialUnreadable, e.Cause}
}

// IsNotFound reports whether err means no usable credential exists.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCredentialNotFound)
}

// IsUnreadable reports whether err means a credential exists but cannot be decrypted.
func IsUnreadable(err error) bool {
	return errors.Is(err, ErrCredentialUnreadable)
}
