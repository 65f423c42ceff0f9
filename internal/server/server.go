// Package server exposes the analysis pipeline and the snapshot store over
// HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/composeviz/pkg/pipeline"
	"github.com/matzehuels/composeviz/pkg/store"
)

// Config configures the HTTP API.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string
	// MaxDocumentBytes bounds request documents.
	MaxDocumentBytes int
	// ShareBaseURL, when set, is used to build share links in responses.
	ShareBaseURL string
	// SnapshotTTL is the lifetime of stored snapshots; <= 0 keeps them
	// forever.
	SnapshotTTL time.Duration
	// RequestTimeout bounds each analysis.
	RequestTimeout time.Duration
	// Version is reported by /health.
	Version string
}

// Server is an HTTP server around a [Handler] with graceful shutdown.
type Server struct {
	handler *Handler
	srv     *http.Server
	logger  *log.Logger
}

// New creates a server. A nil store disables the snapshot endpoints.
func New(cfg Config, runner *pipeline.Runner, st store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	h := NewHandler(cfg, runner, st, logger)
	return &Server{
		handler: h,
		logger:  logger,
		srv: &http.Server{
			Addr:              cfg.Addr,
			Handler:           h.Routes(),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}
}

// Run serves until ctx is cancelled, then shuts down, giving in-flight
// requests up to ten seconds to finish.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.srv.Addr)
		errc <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
