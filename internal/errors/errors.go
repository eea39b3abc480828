// Package errors provides the shared sentinel errors used by every domain package.
// Domain packages wrap these sentinels so handlers can map them to HTTP status codes
// without knowing about storage or transport details.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across domain modules.
var (
	// ErrNotFound indicates the requested resource does not exist or is not visible to the caller.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates the write collides with existing data.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the input data failed validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the request lacks valid authentication.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the authenticated user may not touch the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrUnavailable indicates a dependency required to serve the request is not usable.
	ErrUnavailable = errors.New("unavailable")
)

// New creates a new error with the given message.
func New(message string) error {
	return errors.New(message)
}

// Wrap adds context to err while keeping it matchable with Is and As.
// Returns nil when err is nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Join returns an error that wraps the given errors, discarding nils.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
