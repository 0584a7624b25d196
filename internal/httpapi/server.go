// Package httpapi exposes the same four operations cmd/dbjson drives —
// dump, preview, sync, reset — as a thin REST surface over one
// sync.Orchestrator, for CI pipelines and other callers without a
// terminal.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"dbjson/internal/logger"
	"dbjson/internal/sync"
)

// Server wires an Orchestrator into a chi router.
type Server struct {
	Orchestrator *sync.Orchestrator
	Log          *logger.Logger

	router chi.Router
}

// New builds a Server and mounts its routes.
func New(o *sync.Orchestrator, log *logger.Logger) *Server {
	s := &Server{Orchestrator: o, Log: log}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if log != nil {
		r.Use(log.RequestLogger)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/dump", s.handleDump)
		r.Post("/preview", s.handlePreview)
		r.Post("/sync", s.handleSync)
		r.Post("/reset", s.handleReset)
	})

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
