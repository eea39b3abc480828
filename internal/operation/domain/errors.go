package domain

import (
	"fmt"
	"strings"

	"github.com/allisson/tradejournal/internal/errors"
)

// Kind classifies why an operation failed. The set is closed; callers branch on it.
type Kind string

const (
	KindOperationNotFound       Kind = "operation_not_found"
	KindMissingField            Kind = "missing_field"
	KindInvalidField            Kind = "invalid_field"
	KindTemplateError           Kind = "template_error"
	KindCredentialMissing       Kind = "credential_missing"
	KindCredentialUnreadable    Kind = "credential_unreadable"
	KindTransportError          Kind = "transport_error"
	KindUnexpectedStatus        Kind = "unexpected_status"
	KindUnexpectedResponseShape Kind = "unexpected_response_shape"
)

// One sentinel per kind so errors.Is works on any *Error.
var (
	ErrOperationNotFound       = errors.Wrap(errors.ErrNotFound, "operation not found")
	ErrMissingField            = errors.Wrap(errors.ErrInvalidInput, "missing required field")
	ErrInvalidField            = errors.Wrap(errors.ErrInvalidInput, "invalid field value")
	ErrTemplate                = errors.New("operation template error")
	ErrCredentialMissing       = errors.New("credential missing")
	ErrCredentialUnreadable    = errors.New("credential unreadable")
	ErrTransport               = errors.New("provider transport error")
	ErrUnexpectedStatus        = errors.New("unexpected provider status")
	ErrUnexpectedResponseShape = errors.New("unexpected provider response")
)

var kindSentinels = map[Kind]error{
	KindOperationNotFound:       ErrOperationNotFound,
	KindMissingField:            ErrMissingField,
	KindInvalidField:            ErrInvalidField,
	KindTemplateError:           ErrTemplate,
	KindCredentialMissing:       ErrCredentialMissing,
	KindCredentialUnreadable:    ErrCredentialUnreadable,
	KindTransportError:          ErrTransport,
	KindUnexpectedStatus:        ErrUnexpectedStatus,
	KindUnexpectedResponseShape: ErrUnexpectedResponseShape,
}

// Sentinel returns the sentinel error for k.
func (k Kind) Sentinel() error {
	return kindSentinels[k]
}

// Retryable reports whether a caller may retry an operation that failed with k.
// Only transport failures qualify, and only for idempotent methods.
func (k Kind) Retryable() bool {
	return k == KindTransportError
}

// Error is the structured failure returned by the operation engine. It never carries
// secret material: BodySnippet is redacted before it is stored here.
type Error struct {
	Kind       Kind
	ProviderID int64
	Operation  string
	// Fields names the params involved in a missing_field, invalid_field or
	// template_error failure.
	Fields         []string
	Status         int
	ExpectedStatus int
	BodySnippet    string
	// Timeout is set for transport errors caused by the call deadline.
	Timeout bool
	Detail  string
	Cause   error
}

// NewError creates an Error of kind k with a short detail message.
func NewError(k Kind, detail string) *Error {
	return &Error{Kind: k, Detail: detail}
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Operation != "" {
		fmt.Fprintf(&b, ": provider %d operation %s", e.ProviderID, e.Operation)
	}
	switch {
	case len(e.Fields) > 0:
		fmt.Fprintf(&b, ": %s", strings.Join(e.Fields, ", "))
	case e.Kind == KindUnexpectedStatus:
		fmt.Fprintf(&b, ": got %d, expected %d", e.Status, e.ExpectedStatus)
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, ": %s", e.Detail)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap exposes the kind sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.Sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// Message is the text shown to API callers.
func (e *Error) Message() string {
	switch e.Kind {
	case KindOperationNotFound:
		return "The provider or operation does not exist"
	case KindMissingField:
		return "Missing required field: " + strings.Join(e.Fields, ", ")
	case KindInvalidField:
		return "Invalid value for field: " + strings.Join(e.Fields, ", ")
	case KindTemplateError:
		return "The provider operation is misconfigured"
	case KindCredentialMissing, KindCredentialUnreadable:
		return "Configure your API key for this provider"
	case KindTransportError:
		if e.Timeout {
			return "The provider did not respond in time"
		}
		return "The provider could not be reached"
	case KindUnexpectedStatus:
		return fmt.Sprintf("The provider returned status %d", e.Status)
	case KindUnexpectedResponseShape:
		return "The provider returned an unexpected response"
	}
	return "The operation failed"
}

// AsError returns the *Error in err's chain.
func AsError(err error) (*Error, bool) {
	var opErr *Error
	if errors.As(err, &opErr) {
		return opErr, true
	}
	return nil, false
}

// KindOf returns the kind of err, or "" when err is not an operation error.
func KindOf(err error) Kind {
	if opErr, ok := AsError(err); ok {
		return opErr.Kind
	}
	return ""
}
