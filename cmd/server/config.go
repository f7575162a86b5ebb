// cmd/server/config.go
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type config struct {
	Addr        string
	DatabaseURL string
	SessionTTL  time.Duration
	StagingDir  string

	GeminiAPIKey    string
	GeminiModel     string
	GeminiRateEvery time.Duration

	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3PublicBaseURL string
	S3UsePathStyle  bool

	NATSURL       string
	ResultSubject string
}

func loadConfig() (config, error) {
	cfg := config{
		Addr:            getenv("ADDR", ":3000"),
		DatabaseURL:     getenv("DATABASE_URL", ""),
		StagingDir:      getenv("STAGING_DIR", "./data/staging"),
		GeminiAPIKey:    getenv("GEMINI_API_KEY", ""),
		GeminiModel:     getenv("GEMINI_MODEL", "gemini-3-pro-image-preview"),
		S3Bucket:        getenv("S3_BUCKET", ""),
		S3Region:        getenv("S3_REGION", "us-east-1"),
		S3Endpoint:      getenv("S3_ENDPOINT", ""),
		S3PublicBaseURL: getenv("S3_PUBLIC_BASE_URL", ""),
		S3UsePathStyle:  getenvBool("S3_USE_PATH_STYLE", false),
		NATSURL:         getenv("NATS_URL", ""),
		ResultSubject:   getenv("RESULT_SUBJECT", "thumbnails.generation.done"),
	}

	if cfg.GeminiAPIKey == "" {
		return config{}, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if cfg.S3Bucket == "" {
		return config{}, fmt.Errorf("S3_BUCKET is required")
	}

	ttl, err := parseDuration(getenv("SESSION_TTL", "24h"), "SESSION_TTL")
	if err != nil {
		return config{}, err
	}
	cfg.SessionTTL = ttl

	rateEvery, err := parseDuration(getenv("GEMINI_RATE_EVERY", "2s"), "GEMINI_RATE_EVERY")
	if err != nil {
		return config{}, err
	}
	cfg.GeminiRateEvery = rateEvery

	return cfg, nil
}

func parseDuration(value, name string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be greater than zero (got %s)", name, d)
	}
	return d, nil
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvBool(key string, defaultValue bool) bool {
	val := getenv(key, "")
	if val == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultValue
	}
	return b
}
