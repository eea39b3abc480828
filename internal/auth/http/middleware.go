package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authService "github.com/allisson/tradejournal/internal/auth/service"
	apperrors "github.com/allisson/tradejournal/internal/errors"
	"github.com/allisson/tradejournal/internal/httputil"
)

// UserIDContextKey is the gin context key holding the authenticated user id, read by
// the request logger.
const UserIDContextKey = "user_id"

// AuthenticationMiddleware verifies the Bearer token in the Authorization header and
// stores the user id in the request context.
//
// Error handling:
//   - Missing or malformed Authorization header → 401 Unauthorized
//   - Invalid, expired or foreign token → 401 Unauthorized
func AuthenticationMiddleware(tokenService authService.TokenService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("authentication failed: missing authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		// Scheme is case-insensitive
		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		token := strings.TrimSpace(authHeader[len(bearerPrefix):])
		principal, err := tokenService.Verify(token)
		if err != nil {
			logger.Debug("authentication failed", slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithUserID(c.Request.Context(), principal.UserID))
		c.Set(UserIDContextKey, principal.UserID)

		c.Next()
	}
}
