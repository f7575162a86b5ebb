// Package store persists user accounts and thumbnail generation records.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrEmailTaken = errors.New("email already registered")
)

// User is an account record. PasswordHash never leaves the server.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Thumbnail is one generation attempt and its outcome. IsGenerating is true
// from creation until the pipeline reaches a terminal state; ImageURL is set
// at most once, only when the record succeeds.
type Thumbnail struct {
	ID            uuid.UUID `json:"id"`
	OwnerID       uuid.UUID `json:"owner_id"`
	Title         string    `json:"title"`
	Style         string    `json:"style"`
	ColorScheme   string    `json:"color_scheme,omitempty"`
	UserPrompt    string    `json:"user_prompt,omitempty"`
	AspectRatio   string    `json:"aspect_ratio"`
	TextOverlay   string    `json:"text_overlay,omitempty"`
	ImageURL      string    `json:"image_url,omitempty"`
	Width         int       `json:"width,omitempty"`
	Height        int       `json:"height,omitempty"`
	IsGenerating  bool      `json:"is_generating"`
	FailureReason string    `json:"failure_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// UserStore manages account records.
type UserStore interface {
	CreateUser(ctx context.Context, u *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
}

// ThumbnailStore manages generation records. A record is written exactly
// twice: once at creation (pending) and once by MarkSucceeded or MarkFailed.
// Both Mark calls refuse to touch a record that already reached a terminal
// state.
type ThumbnailStore interface {
	CreateThumbnail(ctx context.Context, t *Thumbnail) error
	MarkSucceeded(ctx context.Context, id uuid.UUID, imageURL string, width, height int) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	GetThumbnail(ctx context.Context, id uuid.UUID) (*Thumbnail, error)
	ListThumbnailsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Thumbnail, error)
}
