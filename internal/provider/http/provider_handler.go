// Package http provides HTTP handlers for the provider catalog.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	credentialDomain "github.com/allisson/tradejournal/internal/credential/domain"
	"github.com/allisson/tradejournal/internal/httputil"
	"github.com/allisson/tradejournal/internal/provider/http/dto"
	providerUseCase "github.com/allisson/tradejournal/internal/provider/usecase"
)

// ProviderHandler handles HTTP requests for the provider catalog.
type ProviderHandler struct {
	providerUseCase providerUseCase.ProviderUseCase
	logger          *slog.Logger
}

// NewProviderHandler creates a new provider handler with required dependencies.
func NewProviderHandler(providerUseCase providerUseCase.ProviderUseCase, logger *slog.Logger) *ProviderHandler {
	return &ProviderHandler{
		providerUseCase: providerUseCase,
		logger:          logger,
	}
}

// ListHandler lists providers and the operations each one supports.
// GET /v1/providers?category=ai&offset=0&limit=50
func (h *ProviderHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var category credentialDomain.Category
	if raw := c.Query("category"); raw != "" {
		category, err = credentialDomain.ParseCategory(raw)
		if err != nil {
			httputil.HandleValidationErrorGin(c, err, h.logger)
			return
		}
	}

	providers, err := h.providerUseCase.List(c.Request.Context(), category, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapProvidersToListResponse(providers))
}
