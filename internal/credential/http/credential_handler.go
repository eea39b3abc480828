// Package http provides HTTP handlers for managing a user's stored provider API keys.
// Keys are accepted on write only; responses carry last4 and status, never the key.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/allisson/tradejournal/internal/auth/http"
	credentialDomain "github.com/allisson/tradejournal/internal/credential/domain"
	"github.com/allisson/tradejournal/internal/credential/http/dto"
	credentialUseCase "github.com/allisson/tradejournal/internal/credential/usecase"
	apperrors "github.com/allisson/tradejournal/internal/errors"
	"github.com/allisson/tradejournal/internal/httputil"
	customValidation "github.com/allisson/tradejournal/internal/validation"
)

// CredentialHandler handles HTTP requests for credential management.
type CredentialHandler struct {
	credentialUseCase credentialUseCase.CredentialUseCase
	logger            *slog.Logger
}

// NewCredentialHandler creates a new credential handler with required dependencies.
func NewCredentialHandler(
	credentialUseCase credentialUseCase.CredentialUseCase,
	logger *slog.Logger,
) *CredentialHandler {
	return &CredentialHandler{
		credentialUseCase: credentialUseCase,
		logger:            logger,
	}
}

// PutHandler stores or replaces the caller's key for a provider.
// POST /v1/credentials/:category
// Returns 201 Created for a new credential and 200 OK when an existing one was replaced.
func (h *CredentialHandler) PutHandler(c *gin.Context) {
	userID, category, ok := h.scope(c)
	if !ok {
		return
	}

	var req dto.PutCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	result, err := h.credentialUseCase.Put(c.Request.Context(), req.ToInput(userID, category))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	c.JSON(status, dto.MapSummaryToResponse(result.Credential))
}

// ListHandler lists the caller's credentials in a category.
// GET /v1/credentials/:category?offset=0&limit=50
func (h *CredentialHandler) ListHandler(c *gin.Context) {
	userID, category, ok := h.scope(c)
	if !ok {
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	summaries, err := h.credentialUseCase.ListForUser(c.Request.Context(), userID, category, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSummariesToListResponse(summaries))
}

// RevokeHandler revokes a credential. Revoking twice succeeds.
// POST /v1/credentials/:category/:id/revoke
func (h *CredentialHandler) RevokeHandler(c *gin.Context) {
	h.lifecycle(c, h.credentialUseCase.Revoke)
}

// ActivateHandler returns a revoked or quarantined credential to service.
// POST /v1/credentials/:category/:id/activate
func (h *CredentialHandler) ActivateHandler(c *gin.Context) {
	h.lifecycle(c, h.credentialUseCase.Activate)
}

// DeleteHandler permanently removes a credential.
// DELETE /v1/credentials/:category/:id
func (h *CredentialHandler) DeleteHandler(c *gin.Context) {
	h.lifecycle(c, h.credentialUseCase.Delete)
}

type lifecycleFunc func(
	ctx context.Context,
	userID int64,
	category credentialDomain.Category,
	id uuid.UUID,
) error

func (h *CredentialHandler) lifecycle(c *gin.Context, fn lifecycleFunc) {
	userID, category, ok := h.scope(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid credential id format"), h.logger)
		return
	}

	if err := fn(c.Request.Context(), userID, category, id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// scope extracts the authenticated user and the category path parameter, writing the
// error response itself when either is missing.
func (h *CredentialHandler) scope(c *gin.Context) (int64, credentialDomain.Category, bool) {
	userID, ok := authHTTP.GetUserID(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return 0, "", false
	}

	category, err := credentialDomain.ParseCategory(c.Param("category"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return 0, "", false
	}

	return userID, category, true
}
