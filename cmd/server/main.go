// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"github.com/clipcast/thumbgen/internal/auth"
	"github.com/clipcast/thumbgen/internal/bus"
	"github.com/clipcast/thumbgen/internal/genimg"
	"github.com/clipcast/thumbgen/internal/pipeline"
	"github.com/clipcast/thumbgen/internal/server"
	"github.com/clipcast/thumbgen/internal/staging"
	"github.com/clipcast/thumbgen/internal/storage"
	"github.com/clipcast/thumbgen/internal/store"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := loadConfig()
	if err != nil {
		fatal(logger, "load config", err)
	}
	logger.Info("server starting", "addr", cfg.Addr, "model", cfg.GeminiModel, "bucket", cfg.S3Bucket, "staging_dir", cfg.StagingDir)

	ctx := context.Background()

	var users store.UserStore
	var thumbnails store.ThumbnailStore
	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			fatal(logger, "connect to database", err)
		}
		defer pg.Close()
		users, thumbnails = pg, pg
		logger.Info("connected to postgres")
	} else {
		mem := store.NewMemory()
		users, thumbnails = mem, mem
		logger.Warn("DATABASE_URL not set, records will not survive restarts")
	}

	if err := os.MkdirAll(cfg.StagingDir, 0o755); err != nil {
		fatal(logger, "ensure staging directory", err, "staging_dir", cfg.StagingDir)
	}

	uploader, err := storage.New(ctx, storage.Config{
		Bucket:        cfg.S3Bucket,
		Region:        cfg.S3Region,
		Endpoint:      cfg.S3Endpoint,
		PublicBaseURL: cfg.S3PublicBaseURL,
		UsePathStyle:  cfg.S3UsePathStyle,
	})
	if err != nil {
		fatal(logger, "build storage client", err)
	}
	stager := staging.NewManager(cfg.StagingDir, uploader)

	generator, err := genimg.NewClient(ctx, genimg.Config{
		APIKey:    cfg.GeminiAPIKey,
		Model:     cfg.GeminiModel,
		RateEvery: cfg.GeminiRateEvery,
	})
	if err != nil {
		fatal(logger, "build image generation client", err)
	}

	var events pipeline.Publisher = bus.Noop{}
	if cfg.NATSURL != "" {
		nc, err := bus.Connect(cfg.NATSURL)
		if err != nil {
			fatal(logger, "connect to NATS", err, "nats_url", cfg.NATSURL)
		}
		defer nc.Close()
		events = nc
		logger.Info("connected to NATS", "nats_url", cfg.NATSURL, "result_subject", cfg.ResultSubject)
	}

	pipe := pipeline.New(thumbnails, generator, stager, events, cfg.ResultSubject, logger)
	sessions := auth.NewSessionStore(cfg.SessionTTL)
	srv := server.New(users, thumbnails, sessions, pipe, logger)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("listening", "addr", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(logger, "serve", err)
		}
	}()

	<-shutdownCtx.Done()
	logger.Info("shutting down")

	timeoutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(timeoutCtx); err != nil {
		logger.Error("graceful shutdown", "err", err)
	}
}

func fatal(logger *slog.Logger, msg string, err error, attrs ...any) {
	attrs = append(attrs, "err", err)
	logger.Error(msg, attrs...)
	os.Exit(1)
}
