// Package server exposes topology extraction over HTTP.
//
// Routes:
//
//	GET    /healthz
//	POST   /v1/topology                 extract a topology from an inline inventory
//	POST   /v1/containers               list the containers of an inline inventory
//	GET    /v1/snapshots                list stored snapshots, newest first
//	GET    /v1/snapshots/{id}           fetch one snapshot
//	DELETE /v1/snapshots/{id}           remove a snapshot
//	GET    /v1/snapshots/{id}/diagram   render a snapshot as dot or svg
//
// Errors are written as {"code": ..., "message": ...} with the status from
// [errors.HTTPStatus].
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8080"

// Server wraps an http.Server with logging and graceful shutdown.
type Server struct {
	httpServer *http.Server
	logger     *log.Logger
}

// New creates a server listening on addr.
func New(addr string, handler http.Handler, logger *log.Logger) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.httpServer.Addr }

// Start blocks serving requests until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("starting API server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("stopping API server")
	return s.httpServer.Shutdown(ctx)
}
