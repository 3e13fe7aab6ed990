// Package service hosts the entity repository behind a small HTTP surface.
// It is glue between the read path and whatever presentation layer calls
// it; the repository itself never depends on this package.
package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/illmade-knight/go-entitystore/pkg/entitystore"
	"github.com/rs/zerolog"
)

// Config holds configuration for the entity service.
type Config struct {
	// HTTPPort is the listen address, e.g. ":8080". ":0" picks a free port.
	HTTPPort string
}

// Server serves the entity read API and a health endpoint.
type Server struct {
	logger     zerolog.Logger
	httpPort   string
	httpServer *http.Server
	mux        *http.ServeMux
	actualAddr string
	mu         sync.RWMutex
}

// NewServer creates a Server exposing the repository at GET /entities/{id}
// alongside /healthz.
func NewServer(cfg *Config, repo *entitystore.Repository, logger zerolog.Logger) (*Server, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository cannot be nil")
	}

	serverLogger := logger.With().Str("component", "EntityServer").Logger()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", HealthzHandler)
	mux.Handle("GET /entities/{id}", NewGetEntityHandler(repo, serverLogger))

	return &Server{
		logger:   serverLogger,
		httpPort: cfg.HTTPPort,
		mux:      mux,
		httpServer: &http.Server{
			Addr:    cfg.HTTPPort,
			Handler: mux,
		},
	}, nil
}

// Start initiates the HTTP server in a background goroutine.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.httpPort)
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", s.httpPort, err)
	}

	s.mu.Lock()
	s.actualAddr = listener.Addr().String()
	s.mu.Unlock()

	s.logger.Info().Str("address", s.actualAddr).Msg("HTTP server starting to listen")

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("HTTP server failed")
		}
	}()

	return nil
}

// Shutdown gracefully stops the HTTP server, respecting the provided
// context's deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down HTTP server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Error during HTTP server shutdown.")
		return err
	}
	s.logger.Info().Msg("HTTP server stopped.")
	return nil
}

// GetHTTPPort returns the actual port the server is listening on.
func (s *Server) GetHTTPPort() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, port, err := net.SplitHostPort(s.actualAddr)
	if err != nil {
		return s.httpPort
	}
	return ":" + port
}

// Mux returns the underlying ServeMux so callers can add routes.
func (s *Server) Mux() *http.ServeMux {
	return s.mux
}

// HealthzHandler responds to health check probes.
func HealthzHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
