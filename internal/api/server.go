// Package api serves the burnout and recommendation engine over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/huangsam/courseload/core"
	"github.com/huangsam/courseload/internal/contract"
)

// Server timeouts.
const (
	readTimeout     = 15 * time.Second
	writeTimeout    = 15 * time.Second
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 10 * time.Second
	maxHeaderBytes  = 1 << 20
	maxBodyBytes    = 1 << 20
)

// APIKeyHeader carries the client key when the server is configured with a key hash.
const APIKeyHeader = "X-API-Key"

// Server wraps the HTTP routes around a core.Service.
type Server struct {
	svc        *core.Service
	logger     *slog.Logger
	apiKeyHash string
	router     *http.ServeMux
	httpServer *http.Server
}

// NewServer builds the router and the underlying http.Server. A nil logger uses slog.Default.
func NewServer(cfg *contract.Config, svc *core.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		svc:        svc,
		logger:     logger,
		apiKeyHash: cfg.APIKeyHash,
		router:     http.NewServeMux(),
	}
	s.setupRoutes()

	addr := cfg.Addr
	if addr == "" {
		addr = contract.DefaultAddr
	}
	s.httpServer = &http.Server{
		Addr:           addr,
		Handler:        s.Handler(),
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,
		IdleTimeout:    idleTimeout,
		MaxHeaderBytes: maxHeaderBytes,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /healthz", s.handleHealth)
	s.router.Handle("POST /api/burnout-scores", s.requireAPIKey(http.HandlerFunc(s.handleBurnoutScores)))
	s.router.Handle("POST /api/recommendations", s.requireAPIKey(http.HandlerFunc(s.handleRecommendations)))
	s.router.Handle("POST /api/schedule", s.requireAPIKey(http.HandlerFunc(s.handleSchedule)))
}

// Handler returns the router wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.router
	// Applied in reverse: recovery is innermost, request id outermost
	h = s.recoveryMiddleware(h)
	h = s.loggingMiddleware(h)
	h = requestIDMiddleware(h)
	return h
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "address", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

// NewLogger builds the server logger from the log format and level settings and installs
// it as the slog default.
func NewLogger(w io.Writer, format, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
