package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestMemoryUserLifecycle(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	u := &User{ID: uuid.New(), Name: "Ada", Email: "ada@example.com", PasswordHash: "hash"}
	if err := m.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	dup := &User{ID: uuid.New(), Name: "Other", Email: "ADA@example.com", PasswordHash: "hash"}
	if err := m.CreateUser(ctx, dup); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	byEmail, err := m.GetUserByEmail(ctx, "Ada@Example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail returned error: %v", err)
	}
	if byEmail.ID != u.ID {
		t.Fatalf("GetUserByEmail returned wrong user: %s", byEmail.ID)
	}

	if _, err := m.GetUserByID(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryThumbnailTerminalStates(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	owner := uuid.New()

	rec := &Thumbnail{ID: uuid.New(), OwnerID: owner, Title: "t", Style: "Minimalist", AspectRatio: "16:9", IsGenerating: true}
	if err := m.CreateThumbnail(ctx, rec); err != nil {
		t.Fatalf("CreateThumbnail returned error: %v", err)
	}

	if err := m.MarkSucceeded(ctx, rec.ID, "https://cdn.example.com/a.png", 1280, 720); err != nil {
		t.Fatalf("MarkSucceeded returned error: %v", err)
	}

	got, err := m.GetThumbnail(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetThumbnail returned error: %v", err)
	}
	if got.IsGenerating || got.ImageURL == "" || got.Width != 1280 {
		t.Fatalf("unexpected record after success: %+v", got)
	}

	// Terminal states are immutable.
	if err := m.MarkFailed(ctx, rec.ID, "late failure"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound when failing a terminal record, got %v", err)
	}
	if err := m.MarkSucceeded(ctx, rec.ID, "https://cdn.example.com/b.png", 1, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound when re-finalizing, got %v", err)
	}
}

func TestMemoryMarkFailed(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	rec := &Thumbnail{ID: uuid.New(), OwnerID: uuid.New(), Title: "t", Style: "Illustrated", AspectRatio: "16:9", IsGenerating: true}
	if err := m.CreateThumbnail(ctx, rec); err != nil {
		t.Fatalf("CreateThumbnail returned error: %v", err)
	}
	if err := m.MarkFailed(ctx, rec.ID, "upstream unavailable"); err != nil {
		t.Fatalf("MarkFailed returned error: %v", err)
	}

	got, _ := m.GetThumbnail(ctx, rec.ID)
	if got.IsGenerating || got.ImageURL != "" || got.FailureReason == "" {
		t.Fatalf("unexpected record after failure: %+v", got)
	}
}

func TestMemoryListThumbnailsByOwner(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	owner := uuid.New()

	for i := 0; i < 3; i++ {
		rec := &Thumbnail{ID: uuid.New(), OwnerID: owner, Title: "t", Style: "Minimalist", AspectRatio: "16:9", IsGenerating: true}
		if err := m.CreateThumbnail(ctx, rec); err != nil {
			t.Fatalf("CreateThumbnail returned error: %v", err)
		}
	}
	other := &Thumbnail{ID: uuid.New(), OwnerID: uuid.New(), Title: "x", Style: "Minimalist", AspectRatio: "16:9", IsGenerating: true}
	if err := m.CreateThumbnail(ctx, other); err != nil {
		t.Fatalf("CreateThumbnail returned error: %v", err)
	}

	list, err := m.ListThumbnailsByOwner(ctx, owner)
	if err != nil {
		t.Fatalf("ListThumbnailsByOwner returned error: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 records, got %d", len(list))
	}
	for _, rec := range list {
		if rec.OwnerID != owner {
			t.Fatalf("record %s has wrong owner %s", rec.ID, rec.OwnerID)
		}
	}
}
