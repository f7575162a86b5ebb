package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process store used by tests and DATABASE_URL-less dev runs.
// Safe for concurrent use; every record is owned and finalized by a single
// pipeline invocation, so per-record locking beyond the map mutex is not
// needed.
type Memory struct {
	mu         sync.RWMutex
	users      map[uuid.UUID]User
	emails     map[string]uuid.UUID
	thumbnails map[uuid.UUID]Thumbnail
}

func NewMemory() *Memory {
	return &Memory{
		users:      make(map[uuid.UUID]User),
		emails:     make(map[string]uuid.UUID),
		thumbnails: make(map[uuid.UUID]Thumbnail),
	}
}

func (m *Memory) CreateUser(ctx context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(u.Email)
	if _, ok := m.emails[key]; ok {
		return ErrEmailTaken
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	m.users[u.ID] = *u
	m.emails[key] = u.ID
	return nil
}

func (m *Memory) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.emails[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	u := m.users[id]
	return &u, nil
}

func (m *Memory) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *Memory) CreateThumbnail(ctx context.Context, t *Thumbnail) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	m.thumbnails[t.ID] = *t
	return nil
}

func (m *Memory) MarkSucceeded(ctx context.Context, id uuid.UUID, imageURL string, width, height int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.thumbnails[id]
	if !ok || !t.IsGenerating {
		return ErrNotFound
	}
	t.ImageURL = imageURL
	t.Width = width
	t.Height = height
	t.IsGenerating = false
	t.UpdatedAt = time.Now()
	m.thumbnails[id] = t
	return nil
}

func (m *Memory) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.thumbnails[id]
	if !ok || !t.IsGenerating {
		return ErrNotFound
	}
	t.FailureReason = reason
	t.IsGenerating = false
	t.UpdatedAt = time.Now()
	m.thumbnails[id] = t
	return nil
}

func (m *Memory) GetThumbnail(ctx context.Context, id uuid.UUID) (*Thumbnail, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.thumbnails[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (m *Memory) ListThumbnailsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Thumbnail, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Thumbnail
	for _, t := range m.thumbnails {
		if t.OwnerID == ownerID {
			t := t
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
