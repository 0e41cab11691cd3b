// Package httpapi implements the HTTP ingress (C9): chi routing for
// POST /translate_and_speak, GET /health, and GET /. Grounded on
// JohnPitter-concord's internal/api/server.go chi wiring, adapted to the
// sidecar's single public endpoint.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/voxbridge/voxbridge/internal/config"
	"github.com/voxbridge/voxbridge/internal/dedup"
	"github.com/voxbridge/voxbridge/internal/pipeline"
)

const version = "0.1.0"

// Server wraps the chi router and HTTP listener for the sidecar's ingress.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	supervisor *pipeline.Supervisor
	dedup      *dedup.Deduplicator
	cfg        *config.Config
}

// New builds a Server wired to an already-constructed Supervisor.
func New(cfg *config.Config, sup *pipeline.Supervisor) *Server {
	s := &Server{
		supervisor: sup,
		dedup:      dedup.New(),
		cfg:        cfg,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Post("/translate_and_speak", s.handleTranslateAndSpeak)
	r.Handle("/metrics", promhttp.Handler())

	s.router = r
	return s
}

// Handler exposes the router directly, for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start begins serving HTTP connections. It blocks until the listener
// errors or is shut down.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP listener. It does not touch the
// pipeline supervisor — callers stop that separately.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func newRequestID() string {
	return uuid.NewString()[:8]
}
