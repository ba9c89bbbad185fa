// Package server exposes AI versus AI matches and position analysis over HTTP.
// Match events are streamed to websocket subscribers as they are played.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewServer wires the routes and returns an http.Handler
func NewServer(s *Service, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if logger != nil {
		r.Use(requestLogger(logger))
	}

	h := &handlers{svc: s}
	r.Post("/analyze", h.analyze)
	r.Route("/matches", func(r chi.Router) {
		r.Get("/", h.listMatches)
		r.Post("/", h.createMatch)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getMatch)
			r.Delete("/", h.cancelMatch)
			r.Get("/events", h.events)
		})
	})
	return r
}

// Logs every request with its status and duration
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("http",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"dur", time.Since(start).Round(time.Millisecond),
			)
		})
	}
}
