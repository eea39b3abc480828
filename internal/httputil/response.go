// Package httputil provides the JSON error envelope and request helpers shared by
// every HTTP handler.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/tradejournal/internal/errors"
)

// ErrorResponse is the body of every failed request. RequestID lets support staff
// find the matching log lines.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// WriteError writes an ErrorResponse carrying the current request id.
func WriteError(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error:     code,
		Message:   message,
		RequestID: requestid.Get(c),
	})
}

// HandleErrorGin maps domain errors to HTTP status codes and writes a JSON response.
// Internal details are logged, never returned.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	var statusCode int
	var code, message string

	switch {
	case apperrors.Is(err, apperrors.ErrNotFound):
		statusCode = http.StatusNotFound
		code = "not_found"
		message = "The requested resource was not found"

	case apperrors.Is(err, apperrors.ErrConflict):
		statusCode = http.StatusConflict
		code = "conflict"
		message = "A conflict occurred with existing data"

	case apperrors.Is(err, apperrors.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		code = "invalid_input"
		message = err.Error()

	case apperrors.Is(err, apperrors.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		code = "unauthorized"
		message = "Authentication is required"

	case apperrors.Is(err, apperrors.ErrForbidden):
		statusCode = http.StatusForbidden
		code = "forbidden"
		message = "You don't have permission to access this resource"

	case apperrors.Is(err, apperrors.ErrUnavailable):
		statusCode = http.StatusServiceUnavailable
		code = "unavailable"
		message = "The service is temporarily unavailable"

	default:
		statusCode = http.StatusInternalServerError
		code = "internal_error"
		message = "An internal error occurred"
	}

	if logger != nil {
		logger.Error("request failed",
			slog.Int("status_code", statusCode),
			slog.String("error_code", code),
			slog.String("request_id", requestid.Get(c)),
			slog.Any("error", err),
		)
	}

	WriteError(c, statusCode, code, message)
}

// HandleBadRequestGin writes a 400 response for malformed JSON or parameters.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("bad request", slog.Any("error", err))
	}
	WriteError(c, http.StatusBadRequest, "bad_request", err.Error())
}

// HandleValidationErrorGin writes a 400 response for request validation failures.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("validation failed", slog.Any("error", err))
	}
	WriteError(c, http.StatusBadRequest, "validation_error", err.Error())
}
