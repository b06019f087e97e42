package score

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/randomtoy/memory-match/internal/domain"
	"github.com/randomtoy/memory-match/internal/ports"
)

// HighScoreKey is the storage key of the best-score record.
const HighScoreKey = "memoryGameHighScore"

// Keeper implements ports.HighScores on top of a key-value store. It is safe
// for concurrent use; WriteBest compares and stores under one lock.
type Keeper struct {
	store  ports.KeyValueStore
	clock  clock.Clock
	logger *slog.Logger

	mu sync.Mutex
}

func NewKeeper(store ports.KeyValueStore, clk clock.Clock, logger *slog.Logger) *Keeper {
	return &Keeper{store: store, clock: clk, logger: logger}
}

// ReadBest returns the stored record, or nil when there is none or it cannot
// be read.
func (k *Keeper) ReadBest(ctx context.Context) *domain.HighScore {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.readBest(ctx)
}

func (k *Keeper) readBest(ctx context.Context) *domain.HighScore {
	raw, ok, err := k.store.Get(ctx, HighScoreKey)
	if err != nil {
		k.logger.ErrorContext(ctx, "error reading high score", "error", err)
		return nil
	}
	if !ok {
		return nil
	}

	// a stored JSON null means no record
	var hs *domain.HighScore
	if err := json.Unmarshal([]byte(raw), &hs); err != nil {
		k.logger.ErrorContext(ctx, "error reading high score", "error", fmt.Errorf("decode record: %w", err))
		return nil
	}
	return hs
}

// WriteBest stores the result if it beats the current record, or if there is
// none. It reports whether the record was written.
func (k *Keeper) WriteBest(ctx context.Context, seconds, moves int) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	s := Calculate(seconds, moves)
	if current := k.readBest(ctx); current != nil && s >= current.Score {
		return false
	}

	raw, err := json.Marshal(domain.HighScore{
		Time:  seconds,
		Moves: moves,
		Score: s,
		Date:  k.clock.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		k.logger.ErrorContext(ctx, "error saving high score", "error", err)
		return false
	}
	if err := k.store.Set(ctx, HighScoreKey, string(raw)); err != nil {
		k.logger.ErrorContext(ctx, "error saving high score", "error", err)
		return false
	}

	k.logger.InfoContext(ctx, "new high score", "time", seconds, "moves", moves, "score", s)
	return true
}

// ClearBest removes the stored record.
func (k *Keeper) ClearBest(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if err := k.store.Delete(ctx, HighScoreKey); err != nil {
		return fmt.Errorf("clear high score: %w", err)
	}
	return nil
}
