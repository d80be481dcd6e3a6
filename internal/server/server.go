// Package server provides the relay's HTTP server lifecycle.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gamebridge/kick-relay/internal/config"
	"github.com/gamebridge/kick-relay/internal/logger"
	"github.com/gamebridge/kick-relay/internal/server/handler"
	"github.com/gamebridge/kick-relay/internal/server/middleware"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	// shutdownTimeout is the maximum time to wait for server shutdown
	shutdownTimeout = 5 * time.Second
)

// Server owns the HTTP listener and the middleware stack around the relay
// routes. It holds no per-request state.
type Server struct {
	config  *config.Config
	handler *handler.Handler
	metrics *middleware.Metrics
}

// NewServer creates a new relay server instance with the provided
// configuration and handler.
func NewServer(cfg *config.Config, h *handler.Handler) *Server {
	if cfg == nil {
		logger.Fatal("Config cannot be nil")
	}
	if h == nil {
		logger.Fatal("Handler cannot be nil")
	}

	return &Server{
		config:  cfg,
		handler: h,
		metrics: middleware.NewMetrics(),
	}
}

// buildHandler assembles the route table and wraps it with the middleware
// stack: CORS outermost, then request logging, then metrics.
func (s *Server) buildHandler() http.Handler {
	var root http.Handler = s.handler.Routes(s.metrics.Handler())
	root = s.metrics.Middleware(root)
	root = middleware.RequestLogger()(root)
	root = middleware.CORSWithOrigins(s.config.CORS.AllowOrigins)(root)
	return root
}

// Start runs the server until the context is cancelled, then shuts down
// gracefully. It returns an error if the server fails to start or
// encounters an error during operation.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: s.buildHandler(),
	}

	// Channel for server errors
	errChan := make(chan error, 1)

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server",
			zap.String("address", addr),
			zap.Strings("allow_origins", s.config.CORS.AllowOrigins),
		)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	// Wait for context cancellation or server error
	select {
	case <-ctx.Done():
		logger.Info("Shutting down server",
			zap.Duration("timeout", shutdownTimeout),
		)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		return nil

	case err := <-errChan:
		return err
	}
}

// Module provides the relay server dependencies
var Module = fx.Module("relay_server",
	fx.Provide(
		handler.NewHandler,
		NewServer,
	),
)
