package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/tradejournal/internal/errors"
)

func TestError_Is(t *testing.T) {
	kinds := []Kind{
		KindOperationNotFound,
		KindMissingField,
		KindInvalidField,
		KindTemplateError,
		KindCredentialMissing,
		KindCredentialUnreadable,
		KindTransportError,
		KindUnexpectedStatus,
		KindUnexpectedResponseShape,
	}

	for _, k := range kinds {
		t.Run(string(k), func(t *testing.T) {
			err := fmt.Errorf("execute: %w", NewError(k, ""))
			require.NotNil(t, k.Sentinel())
			assert.ErrorIs(t, err, k.Sentinel())
			assert.Equal(t, k, KindOf(err))

			for _, other := range kinds {
				if other != k {
					assert.NotErrorIs(t, err, other.Sentinel())
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := &Error{Kind: KindTransportError, Cause: cause}

	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, cause)
	assert.True(t, KindTransportError.Retryable())
	assert.False(t, KindUnexpectedStatus.Retryable())

	missing := &Error{Kind: KindMissingField, Fields: []string{"THING_ID"}}
	assert.ErrorIs(t, missing, apperrors.ErrInvalidInput)
	assert.ErrorIs(t, NewError(KindOperationNotFound, ""), apperrors.ErrNotFound)
}

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "missing field",
			err:  &Error{Kind: KindMissingField, ProviderID: 1, Operation: "thing.get", Fields: []string{"THING_ID"}},
			want: "missing_field: provider 1 operation thing.get: THING_ID",
		},
		{
			name: "unexpected status",
			err:  &Error{Kind: KindUnexpectedStatus, ProviderID: 1, Operation: "thing.get", Status: 404, ExpectedStatus: 200},
			want: "unexpected_status: provider 1 operation thing.get: got 404, expected 200",
		},
		{
			name: "detail and cause",
			err:  &Error{Kind: KindTransportError, Detail: "timeout", Cause: errors.New("deadline")},
			want: "transport_error: timeout: deadline",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_Message(t *testing.T) {
	missing := &Error{Kind: KindCredentialMissing}
	unreadable := &Error{Kind: KindCredentialUnreadable}
	assert.Equal(t, missing.Message(), unreadable.Message())

	timeout := &Error{Kind: KindTransportError, Timeout: true}
	refused := &Error{Kind: KindTransportError}
	assert.NotEqual(t, timeout.Message(), refused.Message())

	status := &Error{Kind: KindUnexpectedStatus, Status: 404}
	assert.Equal(t, "The provider returned status 404", status.Message())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.Equal(t, Kind(""), KindOf(nil))

	_, ok := AsError(apperrors.ErrNotFound)
	assert.False(t, ok)
}

func TestSnippet(t *testing.T) {
	t.Run("redacts secrets", func(t *testing.T) {
		got := Snippet([]byte(`{"error":"invalid key sk-live-123"}`), "sk-live-123", "")
		assert.Equal(t, `{"error":"invalid key [REDACTED]"}`, got)
	})

	t.Run("truncates", func(t *testing.T) {
		body := make([]byte, 2*MaxSnippetBytes)
		for i := range body {
			body[i] = 'a'
		}
		assert.Len(t, Snippet(body), MaxSnippetBytes)
	})

	t.Run("redacts before truncating", func(t *testing.T) {
		prefix := make([]byte, MaxSnippetBytes-4)
		for i := range prefix {
			prefix[i] = 'a'
		}
		body := append(prefix, []byte("sk-live-secret-value")...)
		got := Snippet(body, "sk-live-secret-value")
		assert.NotContains(t, got, "sk-l")
	})

	t.Run("drops a rune cut in half", func(t *testing.T) {
		prefix := make([]byte, MaxSnippetBytes-1)
		for i := range prefix {
			prefix[i] = 'a'
		}
		got := Snippet(append(prefix, []byte("é")...))
		assert.Len(t, got, MaxSnippetBytes-1)
	})
}
