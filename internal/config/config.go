package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config keeps runtime settings for the sync client.
type Config struct {
	DatabaseURL       string
	RemoteURL         string
	RemoteAPIKey      string
	RemoteAccessToken string
	SyncInterval      time.Duration
	QueueGCTime       string
	MaxPushAttempts   int
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		DatabaseURL:       strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RemoteURL:         strings.TrimSpace(os.Getenv("REMOTE_URL")),
		RemoteAPIKey:      strings.TrimSpace(os.Getenv("REMOTE_API_KEY")),
		RemoteAccessToken: strings.TrimSpace(os.Getenv("REMOTE_ACCESS_TOKEN")),
		SyncInterval:      parseMinutes(strings.TrimSpace(os.Getenv("SYNC_INTERVAL_MINUTES"))),
		QueueGCTime:       strings.TrimSpace(os.Getenv("QUEUE_GC_TIME")),
		MaxPushAttempts:   parseCount(strings.TrimSpace(os.Getenv("MAX_PUSH_ATTEMPTS"))),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "teamtasks.db"
	}

	if cfg.SyncInterval == 0 {
		cfg.SyncInterval = 15 * time.Minute
	}

	if cfg.QueueGCTime == "" {
		cfg.QueueGCTime = "03:30"
	}

	if cfg.MaxPushAttempts == 0 {
		cfg.MaxPushAttempts = 5
	}

	if cfg.RemoteURL == "" {
		return cfg, fmt.Errorf("REMOTE_URL is required")
	}
	if cfg.RemoteAPIKey == "" {
		return cfg, fmt.Errorf("REMOTE_API_KEY is required")
	}

	return cfg, nil
}

func parseMinutes(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	minutes, err := time.ParseDuration(raw + "m")
	if err != nil || minutes <= 0 {
		return 0
	}
	return minutes
}

func parseCount(raw string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
