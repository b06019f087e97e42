package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// MemoryDB selects the in-memory high-score store.
const MemoryDB = ":memory:"

type Config struct {
	HTTPAddr      string
	LogLevel      slog.Level
	DBPath        string
	NATSURL       string
	ContentDir    string
	TimeLimit     time.Duration
	Countdown     time.Duration
	MatchDelay    time.Duration
	MismatchDelay time.Duration
	ToastTTL      time.Duration
	SessionTTL    time.Duration
}

// Load reads the configuration from the environment. A .env file in the
// working directory, if present, is applied first without overriding
// variables that are already set.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	c := Config{
		HTTPAddr:   envOr("HTTP_ADDR", ":8080"),
		DBPath:     envOr("DB_PATH", "memory.db"),
		NATSURL:    os.Getenv("NATS_URL"),
		ContentDir: os.Getenv("CONTENT_DIR"),
	}

	durations := []struct {
		key      string
		fallback time.Duration
		dst      *time.Duration
	}{
		{"TIME_LIMIT", 300 * time.Second, &c.TimeLimit},
		{"COUNTDOWN", 4 * time.Second, &c.Countdown},
		{"MATCH_DELAY", 500 * time.Millisecond, &c.MatchDelay},
		{"MISMATCH_DELAY", time.Second, &c.MismatchDelay},
		{"TOAST_TTL", 3 * time.Second, &c.ToastTTL},
		{"SESSION_TTL", 30 * time.Minute, &c.SessionTTL},
	}
	for _, d := range durations {
		v, err := durationOr(d.key, d.fallback)
		if err != nil {
			return Config{}, err
		}
		*d.dst = v
	}

	if c.TimeLimit < time.Second {
		return Config{}, fmt.Errorf("TIME_LIMIT must be at least 1s, got %s", c.TimeLimit)
	}

	level, err := parseLogLevel(envOr("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}
	c.LogLevel = level

	return c, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s %q: negative duration", key, v)
	}
	return d, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
}
