package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/allisson/tradejournal/internal/app"
)

// shutdownTimeout bounds the graceful shutdown of both servers. It is longer than the
// longest outbound provider call so in-flight operations can finish.
const shutdownTimeout = 150 * time.Second

// Runnable is a server that can be started and gracefully shut down.
type Runnable interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// RunServer starts the API server and, when metrics are enabled, the metrics server.
// Every dependency is built before the first listener opens so configuration errors
// (missing key registry, bad JWT secret, unreachable database) fail the start.
// Blocks until SIGINT/SIGTERM or a server error, then shuts both servers down.
func RunServer(ctx context.Context, container *app.Container, version string) error {
	cfg := container.Config()
	gin.SetMode(cfg.GetGinMode())

	logger := container.Logger()
	logger.Info("starting server", slog.String("version", version))

	server, err := container.HTTPServer()
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	servers := []Runnable{server}
	if metricsServer != nil {
		servers = append(servers, metricsServer)
	}

	return serve(ctx, logger, servers, shutdownTimeout)
}

// serve runs every server until ctx is done or one of them fails, then shuts all of
// them down within timeout.
func serve(ctx context.Context, logger *slog.Logger, servers []Runnable, timeout time.Duration) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, s := range servers {
		g.Go(func() error {
			if err := s.Start(gctx); err != nil {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		var shutdownErrors []error
		for _, s := range servers {
			if err := s.Shutdown(shutdownCtx); err != nil {
				shutdownErrors = append(shutdownErrors, err)
			}
		}
		return errors.Join(shutdownErrors...)
	})

	return g.Wait()
}
