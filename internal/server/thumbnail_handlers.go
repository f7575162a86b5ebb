package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/clipcast/thumbgen/internal/auth"
	"github.com/clipcast/thumbgen/internal/pipeline"
	"github.com/clipcast/thumbgen/internal/prompt"
	"github.com/clipcast/thumbgen/internal/store"
)

type generateThumbnailRequest struct {
	Title       string `json:"title"`
	Prompt      string `json:"prompt"`
	Style       string `json:"style"`
	AspectRatio string `json:"aspect_ratio"`
	ColorScheme string `json:"color_scheme"`
	TextOverlay string `json:"text_overlay"`
}

func (s *Server) handleGenerateThumbnail(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFrom(r.Context())

	var req generateThumbnailRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	// Style and color scheme are closed enums; unknown tags are rejected
	// here, before any record exists.
	style, err := prompt.ParseStyle(req.Style)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Unknown style.")
		return
	}
	var colorScheme prompt.ColorScheme
	if req.ColorScheme != "" {
		colorScheme, err = prompt.ParseColorScheme(req.ColorScheme)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Unknown color scheme.")
			return
		}
	}

	// An accepted request runs to a terminal state even if the client
	// disconnects before the image is ready.
	rec, err := s.runner.Run(context.WithoutCancel(r.Context()), identity.UserID, pipeline.Request{
		Title:       req.Title,
		Style:       style,
		ColorScheme: colorScheme,
		UserPrompt:  req.Prompt,
		AspectRatio: req.AspectRatio,
		TextOverlay: req.TextOverlay,
	})
	if err != nil {
		if errors.Is(err, pipeline.ErrValidation) {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		// The record, when present, is already finalized as failed; return
		// it so the caller can inspect the outcome.
		s.logger.Error("thumbnail generation failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"message":   "Thumbnail generation failed.",
			"thumbnail": rec,
		})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":   "Thumbnail generated.",
		"thumbnail": rec,
	})
}

func (s *Server) handleListThumbnails(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFrom(r.Context())

	list, err := s.thumbnails.ListThumbnailsByOwner(r.Context(), identity.UserID)
	if err != nil {
		s.logger.Error("list thumbnails", "err", err)
		writeMessage(w, http.StatusInternalServerError, "Internal Server Error.")
		return
	}
	if list == nil {
		list = []*store.Thumbnail{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"thumbnails": list})
}

func (s *Server) handleGetThumbnail(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFrom(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Thumbnail not found.")
		return
	}

	rec, err := s.thumbnails.GetThumbnail(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Thumbnail not found.")
			return
		}
		s.logger.Error("get thumbnail", "err", err)
		writeMessage(w, http.StatusInternalServerError, "Internal Server Error.")
		return
	}

	// Records of other owners read as missing rather than forbidden.
	if rec.OwnerID != identity.UserID {
		writeMessage(w, http.StatusNotFound, "Thumbnail not found.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"thumbnail": rec})
}
