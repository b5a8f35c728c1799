package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/custodia-labs/unleashed-sync/internal/core/ports/driven"
	"github.com/custodia-labs/unleashed-sync/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server exposes health, run history and an on-demand trigger while the
// scheduler runs the import in the background.
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string
	logger     *zerolog.Logger

	// Services
	syncService driving.SyncService
	scheduler   driving.SchedulerService

	// Infrastructure
	tokens driven.TokenAdapter // nil disables authentication
	db     Pinger
}

// Config holds server configuration
type Config struct {
	Addr    string
	Version string
	Logger  *zerolog.Logger
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Addr:    ":8080",
		Version: "dev",
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	syncService driving.SyncService,
	scheduler driving.SchedulerService,
	tokens driven.TokenAdapter, // can be nil
	db Pinger,
) *Server {
	logger := cfg.Logger
	if logger == nil {
		l := log.Logger
		logger = &l
	}

	s := &Server{
		router:      http.NewServeMux(),
		version:     cfg.Version,
		logger:      logger,
		syncService: syncService,
		scheduler:   scheduler,
		tokens:      tokens,
		db:          db,
	}

	handler := NewRecoveryMiddleware(logger).Handler(
		NewLoggingMiddleware(logger).Handler(s.router))

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	authMiddleware := NewAuthMiddleware(s.tokens)

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)
	s.router.HandleFunc("GET /swagger/doc.json", s.handleSwagger)

	// Sync endpoints
	s.router.Handle("GET /api/v1/status",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleStatus)))
	s.router.Handle("GET /api/v1/runs",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleListRuns)))
	s.router.Handle("POST /api/v1/sync",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleTriggerSync)))
	s.router.Handle("POST /api/v1/check",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleCheck)))
}

// Handler returns the root handler, middleware included.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("starting server")
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info().Msg("server stopped")
	return nil
}
