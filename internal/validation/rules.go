// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"
	"unicode"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/tradejournal/internal/errors"
)

var (
	// operationNameRegex matches dot-namespaced operation names such as "vs.files" or "thing.get".
	operationNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*(\.[a-z0-9_-]+)*$`)

	// fieldNameRegex matches template token names such as "THING_ID".
	fieldNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// NoControlChars rejects strings containing control characters such as CR, LF or NUL.
var NoControlChars = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.IndexFunc(s, unicode.IsControl) < 0
	},
	validation.NewError("validation_no_control_chars", "must not contain control characters"),
)

// OperationName validates a dot-namespaced operation name.
var OperationName = validation.NewStringRuleWithError(
	operationNameRegex.MatchString,
	validation.NewError("validation_operation_name", "must be a dot-namespaced lowercase operation name"),
)

// FieldName validates a template field name.
var FieldName = validation.NewStringRuleWithError(
	fieldNameRegex.MatchString,
	validation.NewError("validation_field_name", "must contain only letters, digits and underscores"),
)
