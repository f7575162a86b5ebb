// Package server wires the HTTP surface: auth endpoints, the thumbnail
// generation endpoint, and read paths for generation records.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v2"
	"github.com/google/uuid"

	"github.com/clipcast/thumbgen/internal/auth"
	"github.com/clipcast/thumbgen/internal/pipeline"
	"github.com/clipcast/thumbgen/internal/store"
)

// Runner is the generation pipeline as the handlers see it.
type Runner interface {
	Run(ctx context.Context, ownerID uuid.UUID, req pipeline.Request) (*store.Thumbnail, error)
}

type Server struct {
	users      store.UserStore
	thumbnails store.ThumbnailStore
	sessions   *auth.SessionStore
	runner     Runner
	logger     *slog.Logger
}

func New(users store.UserStore, thumbnails store.ThumbnailStore, sessions *auth.SessionStore, runner Runner, logger *slog.Logger) *Server {
	return &Server{
		users:      users,
		thumbnails: thumbnails,
		sessions:   sessions,
		runner:     runner,
		logger:     logger,
	}
}

func (s *Server) Handler() http.Handler {
	requestLogger := httplog.NewLogger("thumbgen", httplog.Options{
		LogLevel: slog.LevelInfo,
		Concise:  true,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(httplog.RequestLogger(requestLogger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireSession(s.sessions))
			r.Get("/auth/me", s.handleMe)
			r.Post("/thumbnails", s.handleGenerateThumbnail)
			r.Get("/thumbnails", s.handleListThumbnails)
			r.Get("/thumbnails/{id}", s.handleGetThumbnail)
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
