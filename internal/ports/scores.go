package ports

import (
	"context"

	"github.com/randomtoy/memory-match/internal/domain"
)

// HighScores reads and writes the single best-score record.
// Reads and writes never fail: storage problems are reported as
// "no record" and "not written".
type HighScores interface {
	ReadBest(ctx context.Context) *domain.HighScore
	WriteBest(ctx context.Context, seconds, moves int) bool
	ClearBest(ctx context.Context) error
}
