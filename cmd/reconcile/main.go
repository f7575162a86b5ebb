// cmd/reconcile marks generation records that never reached a terminal
// state as failed. The pipeline finalizes every record it starts, so stuck
// records only appear after a crash or hard kill mid-generation; this tool
// restores the invariant that no record stays pending forever.
//
// Usage:
//
//	./reconcile -older 15m
//	./reconcile -older 1h -limit 100 -dry-run
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/clipcast/thumbgen/internal/bus"
	"github.com/clipcast/thumbgen/internal/store"
	"github.com/clipcast/thumbgen/pkg/schema"
)

const stuckReason = "reconciled: generation never completed"

type stuckRecord struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Title     string
	Style     string
	CreatedAt time.Time
}

func main() {
	_ = godotenv.Load()

	older := flag.Duration("older", 15*time.Minute, "only touch records pending for at least this long")
	limit := flag.Int("limit", 500, "maximum number of records to reconcile")
	dryRun := flag.Bool("dry-run", false, "report stuck records without updating them")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		fatal(logger, "DATABASE_URL is required", nil)
	}

	ctx := context.Background()
	pg, err := store.NewPostgres(ctx, databaseURL)
	if err != nil {
		fatal(logger, "connect to database", err)
	}
	defer pg.Close()
	pool := pg.Pool()

	var events *bus.Client
	if natsURL := os.Getenv("NATS_URL"); natsURL != "" && !*dryRun {
		events, err = bus.Connect(natsURL)
		if err != nil {
			fatal(logger, "connect to NATS", err, "nats_url", natsURL)
		}
		defer events.Close()
	}
	subject := os.Getenv("RESULT_SUBJECT")
	if subject == "" {
		subject = "thumbnails.generation.done"
	}

	cutoff := time.Now().Add(-*older)
	logger.Info("reconcile starting", "cutoff", cutoff, "limit", *limit, "dry_run", *dryRun)

	stuck, err := findStuck(ctx, pool, cutoff, *limit)
	if err != nil {
		fatal(logger, "find stuck records", err)
	}
	if len(stuck) == 0 {
		logger.Info("no stuck records")
		return
	}

	reconciled := 0
	for _, rec := range stuck {
		recLogger := logger.With("thumbnail_id", rec.ID, "created_at", rec.CreatedAt)
		if *dryRun {
			recLogger.Info("would reconcile")
			continue
		}

		tag, err := pool.Exec(ctx, `
			UPDATE thumbnails
			SET is_generating = FALSE, failure_reason = $2, updated_at = now()
			WHERE id = $1 AND is_generating
		`, rec.ID, stuckReason)
		if err != nil {
			recLogger.Error("reconcile record", "err", err)
			continue
		}
		if tag.RowsAffected() == 0 {
			// Finalized between the scan and the update; nothing to do.
			continue
		}
		reconciled++
		recLogger.Info("reconciled")

		if events != nil {
			event := schema.GenerationDone{
				ID:         rec.ID.String(),
				OwnerID:    rec.OwnerID.String(),
				Title:      rec.Title,
				Style:      rec.Style,
				Status:     schema.GenerationFailed,
				Error:      stuckReason,
				HappenedAt: time.Now().Unix(),
			}
			if err := events.PublishJSON(subject, event); err != nil {
				recLogger.Error("publish reconcile event", "err", err)
			}
		}
	}

	logger.Info("reconcile finished", "found", len(stuck), "reconciled", reconciled)
}

func findStuck(ctx context.Context, pool *pgxpool.Pool, cutoff time.Time, limit int) ([]stuckRecord, error) {
	rows, err := pool.Query(ctx, `
		SELECT id, owner_id, title, style, created_at
		FROM thumbnails
		WHERE is_generating AND created_at < $1
		ORDER BY created_at
		LIMIT $2
	`, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []stuckRecord
	for rows.Next() {
		var rec stuckRecord
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &rec.Title, &rec.Style, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func fatal(logger *slog.Logger, msg string, err error, attrs ...any) {
	if err != nil {
		attrs = append(attrs, "err", err)
	}
	logger.Error(msg, attrs...)
	os.Exit(1)
}
