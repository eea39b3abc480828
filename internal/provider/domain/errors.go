package domain

import (
	"fmt"
	"strings"

	"github.com/allisson/tradejournal/internal/errors"
)

// Provider-specific error definitions.
var (
	// ErrProviderNotFound indicates the provider id does not exist.
	ErrProviderNotFound = errors.Wrap(errors.ErrNotFound, "provider not found")

	// ErrOperationNotFound indicates the provider catalog has no operation with that name.
	ErrOperationNotFound = errors.Wrap(errors.ErrNotFound, "operation not found")

	// ErrInvalidCatalog indicates a catalog document failed schema or lint checks.
	ErrInvalidCatalog = errors.Wrap(errors.ErrInvalidInput, "invalid operation catalog")
)

// Issue is a single catalog problem. Operation and Field are empty when the problem is
// not tied to one descriptor.
type Issue struct {
	Operation string `json:"operation,omitempty"`
	Field     string `json:"field,omitempty"`
	Message   string `json:"message"`
}

func (i Issue) String() string {
	var b strings.Builder
	if i.Operation != "" {
		b.WriteString(i.Operation)
		b.WriteString(": ")
	}
	if i.Field != "" {
		b.WriteString(i.Field)
		b.WriteString(": ")
	}
	b.WriteString(i.Message)
	return b.String()
}

// CatalogError carries every issue found in a catalog.
type CatalogError struct {
	Issues []Issue
}

func (e *CatalogError) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		msgs = append(msgs, issue.String())
	}
	return fmt.Sprintf("%d catalog issue(s): %s", len(e.Issues), strings.Join(msgs, "; "))
}

// Unwrap makes CatalogError match ErrInvalidCatalog.
func (e *CatalogError) Unwrap() error {
	return ErrInvalidCatalog
}
