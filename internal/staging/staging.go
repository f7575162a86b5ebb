// Package staging writes generated image bytes to a local staging directory,
// uploads them to object storage, and guarantees the staged file never
// outlives the call.
package staging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrUpload wraps object storage failures. The staged file is removed even
// on this path.
var ErrUpload = errors.New("thumbnail upload failed")

// Uploader stores a local file and returns its public URL.
type Uploader interface {
	UploadFile(ctx context.Context, path, key string) (string, error)
}

// Manager stages image bytes under dir before handing them to the uploader.
// The directory is shared across concurrent requests; filenames carry a
// random component so a retry of the same record never collides with an
// in-flight file.
type Manager struct {
	dir      string
	uploader Uploader
}

func NewManager(dir string, uploader Uploader) *Manager {
	return &Manager{dir: dir, uploader: uploader}
}

// Persist writes data to a uniquely named staging file, uploads it, and
// returns the public URL. The staged file is removed on every exit path.
func (m *Manager) Persist(ctx context.Context, data []byte) (string, error) {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure staging directory: %w", err)
	}

	key := fmt.Sprintf("thumb-%s.png", uuid.NewString())
	path := filepath.Join(m.dir, key)

	// Cleanup is registered before the write: os.WriteFile creates the file
	// before writing, so even a failed write can leave one behind.
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			slog.Warn("remove staged file", "path", path, "err", err)
		}
	}()

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("stage image: %w", err)
	}

	url, err := m.uploader.UploadFile(ctx, path, key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}

	return url, nil
}
