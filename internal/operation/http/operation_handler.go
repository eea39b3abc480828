// Package http provides the HTTP handler that runs provider operations for the caller.
package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	authHTTP "github.com/allisson/tradejournal/internal/auth/http"
	apperrors "github.com/allisson/tradejournal/internal/errors"
	"github.com/allisson/tradejournal/internal/httputil"
	operationDomain "github.com/allisson/tradejournal/internal/operation/domain"
	"github.com/allisson/tradejournal/internal/operation/http/dto"
	operationUseCase "github.com/allisson/tradejournal/internal/operation/usecase"
	customValidation "github.com/allisson/tradejournal/internal/validation"
)

// OperationHandler handles HTTP requests that execute provider operations.
type OperationHandler struct {
	operationUseCase operationUseCase.OperationUseCase
	logger           *slog.Logger
}

// NewOperationHandler creates a new operation handler with required dependencies.
func NewOperationHandler(operationUseCase operationUseCase.OperationUseCase, logger *slog.Logger) *OperationHandler {
	return &OperationHandler{
		operationUseCase: operationUseCase,
		logger:           logger,
	}
}

// ExecuteHandler runs one operation with the caller's stored credential.
// POST /v1/providers/:provider_id/operations/:operation
// An empty body is allowed for operations without required fields.
func (h *OperationHandler) ExecuteHandler(c *gin.Context) {
	userID, ok := authHTTP.GetUserID(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	providerID, err := strconv.ParseInt(c.Param("provider_id"), 10, 64)
	if err != nil || providerID < 1 {
		httputil.HandleValidationErrorGin(c, errors.New("invalid provider id"), h.logger)
		return
	}

	operation := c.Param("operation")
	if err := customValidation.OperationName.Validate(operation); err != nil || operation == "" {
		httputil.HandleValidationErrorGin(c, errors.New("invalid operation name"), h.logger)
		return
	}

	var req dto.ExecuteOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	result, err := h.operationUseCase.Execute(c.Request.Context(), req.ToInput(userID, providerID, operation))
	if err != nil {
		opErr, ok := operationDomain.AsError(err)
		if !ok {
			httputil.HandleErrorGin(c, err, h.logger)
			return
		}
		h.writeOperationError(c, userID, opErr)
		return
	}

	c.JSON(http.StatusOK, dto.MapResultToResponse(result))
}

func (h *OperationHandler) writeOperationError(c *gin.Context, userID int64, opErr *operationDomain.Error) {
	statusCode := StatusCode(opErr)

	level := slog.LevelWarn
	if statusCode >= http.StatusInternalServerError && statusCode != http.StatusBadGateway &&
		statusCode != http.StatusGatewayTimeout {
		level = slog.LevelError
	}
	h.logger.Log(c.Request.Context(), level, "operation failed",
		slog.String("request_id", requestid.Get(c)),
		slog.Int64("user_id", userID),
		slog.Int64("provider_id", opErr.ProviderID),
		slog.String("operation", opErr.Operation),
		slog.String("kind", string(opErr.Kind)),
		slog.Any("fields", opErr.Fields),
		slog.Int("upstream_status", opErr.Status),
		slog.String("body_snippet", opErr.BodySnippet),
		slog.Any("error", opErr),
	)

	c.JSON(statusCode, dto.MapErrorToResponse(opErr, requestid.Get(c)))
}

// StatusCode maps an operation failure to the HTTP status returned to the caller.
func StatusCode(opErr *operationDomain.Error) int {
	switch opErr.Kind {
	case operationDomain.KindOperationNotFound:
		return http.StatusNotFound
	case operationDomain.KindMissingField,
		operationDomain.KindInvalidField,
		operationDomain.KindCredentialMissing,
		operationDomain.KindCredentialUnreadable:
		return http.StatusBadRequest
	case operationDomain.KindTransportError:
		if opErr.Timeout {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	case operationDomain.KindUnexpectedStatus, operationDomain.KindUnexpectedResponseShape:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
