package cli

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/randomtoy/memory-match/internal/adapters/content"
	"github.com/randomtoy/memory-match/internal/adapters/events"
	"github.com/randomtoy/memory-match/internal/adapters/events/natsbus"
	"github.com/randomtoy/memory-match/internal/adapters/kv/memory"
	"github.com/randomtoy/memory-match/internal/adapters/kv/sqlite"
	"github.com/randomtoy/memory-match/internal/config"
	"github.com/randomtoy/memory-match/internal/ports"
)

// stdRNG delegates to math/rand/v2 (auto-seeded).
type stdRNG struct{}

func (stdRNG) Intn(n int) int { return rand.IntN(n) }

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// openStore returns the high-score store selected by cfg.DBPath and a func
// that releases it.
func openStore(cfg config.Config, logger *slog.Logger) (ports.KeyValueStore, func(), error) {
	if cfg.DBPath == "" || cfg.DBPath == config.MemoryDB {
		logger.Info("using in-memory high-score store")
		return memory.NewStore(), func() {}, nil
	}

	st, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database %s: %w", cfg.DBPath, err)
	}
	logger.Info("database ready", "path", cfg.DBPath)
	return st, func() {
		if err := st.Close(); err != nil {
			logger.Error("error closing database", "error", err)
		}
	}, nil
}

func contentFS(cfg config.Config) fs.FS {
	if cfg.ContentDir != "" {
		return os.DirFS(cfg.ContentDir)
	}
	return content.Embedded()
}

// openPublisher connects to NATS when configured. Without NATS_URL outcomes
// are only logged.
func openPublisher(cfg config.Config, logger *slog.Logger) (ports.EventPublisher, func(), error) {
	if cfg.NATSURL == "" {
		return events.Nop{}, func() {}, nil
	}

	pub, err := natsbus.Connect(cfg.NATSURL, "memoryd")
	if err != nil {
		return nil, nil, fmt.Errorf("connect nats: %w", err)
	}
	logger.Info("connected to nats", "url", cfg.NATSURL, "subject", natsbus.SubjectFinished)
	return pub, func() {
		if err := pub.Close(); err != nil {
			logger.Error("error draining nats", "error", err)
		}
	}, nil
}
