// Package http provides the HTTP server, router and shared middleware.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/allisson/tradejournal/internal/auth/http"
	authService "github.com/allisson/tradejournal/internal/auth/service"
	"github.com/allisson/tradejournal/internal/config"
	credentialHTTP "github.com/allisson/tradejournal/internal/credential/http"
	"github.com/allisson/tradejournal/internal/metrics"
	operationHTTP "github.com/allisson/tradejournal/internal/operation/http"
	providerHTTP "github.com/allisson/tradejournal/internal/provider/http"
)

// readinessTimeout bounds the database ping done by /ready.
const readinessTimeout = 2 * time.Second

// Server represents the HTTP server.
type Server struct {
	db     *sql.DB
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
}

// NewServer creates a new HTTP server. Call SetupRouter before Start.
func NewServer(db *sql.DB, host string, port int, logger *slog.Logger) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:        fmt.Sprintf("%s:%d", host, port),
			ReadTimeout: 15 * time.Second,
			// Operation calls may take up to the configured upstream timeout.
			WriteTimeout: 150 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter builds the gin router with every route and middleware.
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	tokenService authService.TokenService,
	credentialHandler *credentialHTTP.CredentialHandler,
	providerHandler *providerHTTP.ProviderHandler,
	operationHandler *operationHTTP.OperationHandler,
	metricsProvider *metrics.Provider,
) {
	gin.SetMode(cfg.GetGinMode())

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}
	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}
	router.Use(CustomLoggerMiddleware(s.logger))

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	v1.Use(authHTTP.AuthenticationMiddleware(tokenService, s.logger))
	if cfg.RateLimitEnabled {
		v1.Use(authHTTP.RateLimitMiddleware(ctx, cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}

	credentials := v1.Group("/credentials/:category")
	{
		credentials.POST("", credentialHandler.PutHandler)
		credentials.GET("", credentialHandler.ListHandler)
		credentials.POST("/:id/revoke", credentialHandler.RevokeHandler)
		credentials.POST("/:id/activate", credentialHandler.ActivateHandler)
		credentials.DELETE("/:id", credentialHandler.DeleteHandler)
	}

	v1.GET("/providers", providerHandler.ListHandler)
	v1.POST("/providers/:provider_id/operations/:operation", operationHandler.ExecuteHandler)

	s.router = router
	s.server.Handler = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	if s.server.Handler == nil {
		s.server.Handler = s.router
	}

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports ready only when the database answers a ping.
func (s *Server) readinessHandler(c *gin.Context) {
	dbStatus := "ok"
	if s.db == nil {
		dbStatus = "error"
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Warn("readiness check failed", slog.Any("error", err))
			dbStatus = "error"
		}
	}

	status, code := "ready", http.StatusOK
	if dbStatus != "ok" {
		status, code = "not_ready", http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":     status,
		"components": gin.H{"database": dbStatus},
	})
}
