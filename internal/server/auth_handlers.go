package server

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/clipcast/thumbgen/internal/auth"
	"github.com/clipcast/thumbgen/internal/store"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const minPasswordLen = 6

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "All fields are required.")
		return
	}
	if !emailRegex.MatchString(req.Email) {
		writeMessage(w, http.StatusBadRequest, "Invalid email format.")
		return
	}
	if len(req.Password) < minPasswordLen {
		writeMessage(w, http.StatusBadRequest, "Password must be at least 6 characters long.")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("hash password", "err", err)
		writeMessage(w, http.StatusInternalServerError, "Internal Server Error.")
		return
	}

	user := &store.User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			writeMessage(w, http.StatusBadRequest, "This email is already in use. Try another one.")
			return
		}
		s.logger.Error("create user", "err", err)
		writeMessage(w, http.StatusInternalServerError, "Internal Server Error.")
		return
	}

	s.issueSession(w, user.ID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Account created successfully.",
		"user":    userResponse{ID: user.ID, Name: user.Name, Email: user.Email},
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user, err := s.users.GetUserByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusBadRequest, "Invalid credentials.")
			return
		}
		s.logger.Error("lookup user", "err", err)
		writeMessage(w, http.StatusInternalServerError, "Internal Server Error.")
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		writeMessage(w, http.StatusBadRequest, "Invalid credentials.")
		return
	}

	s.issueSession(w, user.ID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Login successful.",
		"user":    userResponse{ID: user.ID, Name: user.Name, Email: user.Email},
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.SessionCookie); err == nil {
		s.sessions.Destroy(cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeMessage(w, http.StatusCreated, "Logout successful.")
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFrom(r.Context())

	user, err := s.users.GetUserByID(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "User not found.")
			return
		}
		s.logger.Error("lookup user", "err", err)
		writeMessage(w, http.StatusInternalServerError, "Internal Server Error.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user": userResponse{ID: user.ID, Name: user.Name, Email: user.Email},
	})
}

func (s *Server) issueSession(w http.ResponseWriter, userID uuid.UUID) {
	token := s.sessions.Create(userID)
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.sessions.TTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
