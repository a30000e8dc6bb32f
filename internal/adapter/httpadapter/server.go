// Package httpadapter serves the ops endpoints shared by both processes and
// the dashboard's pages and downloads.
package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server wraps an http.Server with /healthz, /readyz, and /metrics, plus any
// routes registered by the caller.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// RouteRegistrar mounts additional routes on the server's router.
type RouteRegistrar func(r chi.Router)

// NewServer creates an HTTP server. Each registrar adds its routes after the
// ops endpoints.
func NewServer(addr string, ready sharedobs.ReadinessChecker, logger *slog.Logger, registrars ...RouteRegistrar) *Server {
	r := chi.NewRouter()
	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(ready))
	r.Handle("/metrics", promhttp.Handler())
	for _, register := range registrars {
		register(r)
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
