// Package httpserver exposes the trigger/status surface: start a run,
// query health, status, and the last run's results.
package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/skoom21/zocdoc-scraper/internal/logger"
	"github.com/skoom21/zocdoc-scraper/internal/runner"
)

// Server wraps the HTTP server and its routes.
type Server struct {
	http *http.Server
	log  logger.Logger
}

// New builds the trigger server. start is invoked through the
// supervisor for each accepted trigger request.
func New(addr string, log logger.Logger, sup *runner.Supervisor, start runner.RunFunc) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	h := &handlers{log: log, sup: sup, start: start}
	r.Get("/", h.trigger)
	r.Post("/", h.trigger)
	r.Get("/health", h.health)
	r.Get("/status", h.status)
	r.Get("/results", h.results)
	r.Get("/appointments", h.appointments)

	s := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return &Server{http: s, log: log}
}

// Handler exposes the router, for tests.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// Start runs the HTTP server and blocks until error or shutdown.
func (s *Server) Start() error {
	s.log.Infof("HTTP server listening on %s", s.http.Addr)
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("HTTP server shutting down...")
	return s.http.Shutdown(ctx)
}
