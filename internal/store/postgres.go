package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the Postgres error code for unique constraint failures.
const uniqueViolation = "23505"

// Postgres implements UserStore and ThumbnailStore on a pgx pool.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	p := &Postgres{pool: pool}
	if err := p.createTables(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return p, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

// Pool exposes the underlying pool for maintenance tooling.
func (p *Postgres) Pool() *pgxpool.Pool {
	return p.pool
}

func (p *Postgres) createTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS thumbnails (
			id UUID PRIMARY KEY,
			owner_id UUID NOT NULL REFERENCES users(id),
			title TEXT NOT NULL,
			style TEXT NOT NULL,
			color_scheme TEXT NOT NULL DEFAULT '',
			user_prompt TEXT NOT NULL DEFAULT '',
			aspect_ratio TEXT NOT NULL,
			text_overlay TEXT NOT NULL DEFAULT '',
			image_url TEXT NOT NULL DEFAULT '',
			width INT NOT NULL DEFAULT 0,
			height INT NOT NULL DEFAULT 0,
			is_generating BOOLEAN NOT NULL DEFAULT TRUE,
			failure_reason TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_thumbnails_owner ON thumbnails (owner_id, created_at DESC);`,
	}

	for _, q := range queries {
		if _, err := p.pool.Exec(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (p *Postgres) CreateUser(ctx context.Context, u *User) error {
	query := `
	INSERT INTO users (id, name, email, password_hash)
	VALUES ($1, $2, $3, $4)
	RETURNING created_at
	`

	err := p.pool.QueryRow(ctx, query, u.ID, u.Name, u.Email, u.PasswordHash).Scan(&u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (p *Postgres) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `
	SELECT id, name, email, password_hash, created_at
	FROM users
	WHERE lower(email) = lower($1)
	`

	var u User
	err := p.pool.QueryRow(ctx, query, email).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select user by email: %w", err)
	}
	return &u, nil
}

func (p *Postgres) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `
	SELECT id, name, email, password_hash, created_at
	FROM users
	WHERE id = $1
	`

	var u User
	err := p.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select user by id: %w", err)
	}
	return &u, nil
}

func (p *Postgres) CreateThumbnail(ctx context.Context, t *Thumbnail) error {
	query := `
	INSERT INTO thumbnails (id, owner_id, title, style, color_scheme, user_prompt, aspect_ratio, text_overlay, is_generating)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING created_at, updated_at
	`

	err := p.pool.QueryRow(ctx, query,
		t.ID, t.OwnerID, t.Title, t.Style, t.ColorScheme, t.UserPrompt, t.AspectRatio, t.TextOverlay, t.IsGenerating,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert thumbnail: %w", err)
	}
	return nil
}

// MarkSucceeded finalizes a pending record with its image URL. The
// is_generating guard makes terminal states immutable.
func (p *Postgres) MarkSucceeded(ctx context.Context, id uuid.UUID, imageURL string, width, height int) error {
	query := `
	UPDATE thumbnails
	SET image_url = $2, width = $3, height = $4, is_generating = FALSE, updated_at = now()
	WHERE id = $1 AND is_generating
	`

	tag, err := p.pool.Exec(ctx, query, id, imageURL, width, height)
	if err != nil {
		return fmt.Errorf("mark thumbnail succeeded: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkFailed finalizes a pending record as failed with no image URL.
func (p *Postgres) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	query := `
	UPDATE thumbnails
	SET failure_reason = $2, is_generating = FALSE, updated_at = now()
	WHERE id = $1 AND is_generating
	`

	tag, err := p.pool.Exec(ctx, query, id, reason)
	if err != nil {
		return fmt.Errorf("mark thumbnail failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) GetThumbnail(ctx context.Context, id uuid.UUID) (*Thumbnail, error) {
	query := `
	SELECT id, owner_id, title, style, color_scheme, user_prompt, aspect_ratio, text_overlay,
	       image_url, width, height, is_generating, failure_reason, created_at, updated_at
	FROM thumbnails
	WHERE id = $1
	`

	var t Thumbnail
	err := p.pool.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.OwnerID, &t.Title, &t.Style, &t.ColorScheme, &t.UserPrompt, &t.AspectRatio, &t.TextOverlay,
		&t.ImageURL, &t.Width, &t.Height, &t.IsGenerating, &t.FailureReason, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select thumbnail: %w", err)
	}
	return &t, nil
}

func (p *Postgres) ListThumbnailsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Thumbnail, error) {
	query := `
	SELECT id, owner_id, title, style, color_scheme, user_prompt, aspect_ratio, text_overlay,
	       image_url, width, height, is_generating, failure_reason, created_at, updated_at
	FROM thumbnails
	WHERE owner_id = $1
	ORDER BY created_at DESC
	`

	rows, err := p.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("select thumbnails: %w", err)
	}
	defer rows.Close()

	var out []*Thumbnail
	for rows.Next() {
		var t Thumbnail
		if err := rows.Scan(
			&t.ID, &t.OwnerID, &t.Title, &t.Style, &t.ColorScheme, &t.UserPrompt, &t.AspectRatio, &t.TextOverlay,
			&t.ImageURL, &t.Width, &t.Height, &t.IsGenerating, &t.FailureReason, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan thumbnail: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}
