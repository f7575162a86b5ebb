// Package pipeline runs one thumbnail generation end to end: record
// creation, prompt composition, image generation, staging and upload, and
// the final lifecycle write. Each request runs in its own goroutine with no
// shared state beyond the record store.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clipcast/thumbgen/internal/genimg"
	"github.com/clipcast/thumbgen/internal/prompt"
	"github.com/clipcast/thumbgen/internal/store"
	"github.com/clipcast/thumbgen/pkg/schema"
)

// ErrValidation means required fields are missing; no record is created.
var ErrValidation = errors.New("invalid generation request")

// Generator produces image bytes from a prompt.
type Generator interface {
	Generate(ctx context.Context, promptText, aspectRatio string) (*genimg.Image, error)
}

// Stager persists image bytes to durable storage and returns the public URL.
type Stager interface {
	Persist(ctx context.Context, data []byte) (string, error)
}

// Publisher emits lifecycle events. Publishing is best effort; failures are
// logged, never surfaced to the caller.
type Publisher interface {
	PublishJSON(subject string, v any) error
}

// Request carries the validated inbound fields. Style and ColorScheme are
// already parsed at the HTTP boundary; ColorScheme, UserPrompt, AspectRatio
// and TextOverlay may be empty.
type Request struct {
	Title       string
	Style       prompt.Style
	ColorScheme prompt.ColorScheme
	UserPrompt  string
	AspectRatio string
	TextOverlay string
}

// Pipeline wires the stages together.
type Pipeline struct {
	thumbnails store.ThumbnailStore
	generator  Generator
	stager     Stager
	events     Publisher
	subject    string
	logger     *slog.Logger
}

func New(thumbnails store.ThumbnailStore, generator Generator, stager Stager, events Publisher, subject string, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		thumbnails: thumbnails,
		generator:  generator,
		stager:     stager,
		events:     events,
		subject:    subject,
		logger:     logger,
	}
}

// Run executes the pipeline for one request. The record is created before
// any external call and always reaches exactly one terminal state. On a
// stage failure Run returns the finalized failed record together with the
// stage's error so callers can report both. No stage is retried.
func (p *Pipeline) Run(ctx context.Context, ownerID uuid.UUID, req Request) (*store.Thumbnail, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if req.Style == "" {
		return nil, fmt.Errorf("%w: style is required", ErrValidation)
	}

	aspectRatio := req.AspectRatio
	if aspectRatio == "" {
		aspectRatio = genimg.DefaultAspectRatio
	}

	rec := &store.Thumbnail{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		Title:        req.Title,
		Style:        string(req.Style),
		ColorScheme:  string(req.ColorScheme),
		UserPrompt:   req.UserPrompt,
		AspectRatio:  aspectRatio,
		TextOverlay:  req.TextOverlay,
		IsGenerating: true,
	}
	if err := p.thumbnails.CreateThumbnail(ctx, rec); err != nil {
		return nil, fmt.Errorf("create thumbnail record: %w", err)
	}

	logger := p.logger.With("thumbnail_id", rec.ID, "owner_id", ownerID)
	logger.Info("generation started", "title", req.Title, "style", req.Style, "aspect_ratio", aspectRatio)
	start := time.Now()

	promptText, err := prompt.Compose(req.Title, req.Style, req.ColorScheme, req.UserPrompt, aspectRatio)
	if err != nil {
		return p.fail(ctx, logger, rec, start, fmt.Errorf("compose prompt: %w", err))
	}

	img, err := p.generator.Generate(ctx, promptText, aspectRatio)
	if err != nil {
		return p.fail(ctx, logger, rec, start, fmt.Errorf("generate image: %w", err))
	}
	logger.Info("image generated", "mime_type", img.MIMEType, "width", img.Width, "height", img.Height)

	imageURL, err := p.stager.Persist(ctx, img.Data)
	if err != nil {
		return p.fail(ctx, logger, rec, start, fmt.Errorf("persist image: %w", err))
	}

	if err := p.thumbnails.MarkSucceeded(context.WithoutCancel(ctx), rec.ID, imageURL, img.Width, img.Height); err != nil {
		return p.fail(ctx, logger, rec, start, fmt.Errorf("finalize record: %w", err))
	}
	rec.ImageURL = imageURL
	rec.Width = img.Width
	rec.Height = img.Height
	rec.IsGenerating = false

	p.publish(logger, rec, "", time.Since(start))
	logger.Info("generation succeeded", "image_url", imageURL, "duration_ms", time.Since(start).Milliseconds())
	return rec, nil
}

// fail finalizes the record and surfaces the stage error alongside it. A
// finalize failure is logged but never masks the stage error.
func (p *Pipeline) fail(ctx context.Context, logger *slog.Logger, rec *store.Thumbnail, start time.Time, cause error) (*store.Thumbnail, error) {
	logger.Error("generation failed", "err", cause)

	// The stage may have failed because the caller's context was canceled;
	// the terminal write must still land or the record stays pending forever.
	ctx = context.WithoutCancel(ctx)

	if err := p.thumbnails.MarkFailed(ctx, rec.ID, cause.Error()); err != nil {
		logger.Error("mark thumbnail failed", "err", err)
	}
	rec.IsGenerating = false
	rec.FailureReason = cause.Error()

	p.publish(logger, rec, cause.Error(), time.Since(start))
	return rec, cause
}

func (p *Pipeline) publish(logger *slog.Logger, rec *store.Thumbnail, failure string, elapsed time.Duration) {
	status := schema.GenerationSucceeded
	if failure != "" {
		status = schema.GenerationFailed
	}

	event := schema.GenerationDone{
		ID:         rec.ID.String(),
		OwnerID:    rec.OwnerID.String(),
		Title:      rec.Title,
		Style:      rec.Style,
		Status:     status,
		ImageURL:   rec.ImageURL,
		Error:      failure,
		DurationMs: elapsed.Milliseconds(),
		HappenedAt: time.Now().Unix(),
	}
	if err := p.events.PublishJSON(p.subject, event); err != nil {
		logger.Error("publish generation event", "subject", p.subject, "err", err)
	}
}
