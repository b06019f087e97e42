package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/randomtoy/memory-match/internal/domain"
	"github.com/randomtoy/memory-match/internal/game"
	"github.com/randomtoy/memory-match/internal/ports"
	"github.com/randomtoy/memory-match/internal/score"
)

// DefaultPoolsID names the pools every session is dealt from.
const DefaultPoolsID = "default"

// GameSettings configures GameService.
type GameSettings struct {
	PoolsID    string
	SessionTTL time.Duration // idle time after which a session is torn down
	Session    game.Config
}

// GameService owns the live game sessions and wires their outcomes to the
// high-score record and the event publisher.
type GameService struct {
	pools    ports.PoolStore
	scores   ports.HighScores
	events   ports.EventPublisher
	rng      domain.RNG
	clock    clock.Clock
	settings GameSettings
	logger   *slog.Logger
	newID    func() string

	mu       sync.Mutex
	sessions map[string]*game.Session
}

func NewGameService(ps ports.PoolStore, hs ports.HighScores, pub ports.EventPublisher, rng domain.RNG, clk clock.Clock, settings GameSettings, logger *slog.Logger) *GameService {
	if settings.PoolsID == "" {
		settings.PoolsID = DefaultPoolsID
	}
	return &GameService{
		pools:    ps,
		scores:   hs,
		events:   pub,
		rng:      rng,
		clock:    clk,
		settings: settings,
		logger:   logger,
		newID:    func() string { return uuid.Must(uuid.NewV7()).String() },
		sessions: make(map[string]*game.Session),
	}
}

// StartSession deals a new board and returns its first snapshot.
func (s *GameService) StartSession(ctx context.Context) (game.Snapshot, error) {
	pools, err := s.pools.GetPools(ctx, s.settings.PoolsID)
	if err != nil {
		return game.Snapshot{}, fmt.Errorf("get pools: %w", err)
	}

	id := s.newID()
	sess, err := game.NewSession(id, pools, s.rng, s.clock, s.settings.Session,
		game.WithFinishFunc(s.finished))
	if err != nil {
		return game.Snapshot{}, fmt.Errorf("new session: %w", err)
	}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "session started", "session_id", id, "pairs", pools.PairCount())
	return sess.Snapshot(), nil
}

// Session returns the current state of session id.
func (s *GameService) Session(_ context.Context, id string) (game.Snapshot, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return game.Snapshot{}, err
	}
	return sess.Snapshot(), nil
}

// Flip turns a tile face-up in session id.
func (s *GameService) Flip(_ context.Context, id string, tile int) (game.Snapshot, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return game.Snapshot{}, err
	}
	return sess.Flip(tile)
}

// Reset restarts session id with a new board.
func (s *GameService) Reset(ctx context.Context, id string) (game.Snapshot, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return game.Snapshot{}, err
	}
	snap, err := sess.Reset()
	if err != nil {
		return game.Snapshot{}, err
	}
	s.logger.InfoContext(ctx, "session reset", "session_id", id)
	return snap, nil
}

// End tears session id down and forgets it.
func (s *GameService) End(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}

	sess.Close()
	s.logger.InfoContext(ctx, "session ended", "session_id", id)
	return nil
}

// HighScore returns the best result so far, or nil.
func (s *GameService) HighScore(ctx context.Context) *domain.HighScore {
	return s.scores.ReadBest(ctx)
}

func (s *GameService) ClearHighScore(ctx context.Context) error {
	return s.scores.ClearBest(ctx)
}

// Live reports the number of sessions currently held.
func (s *GameService) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Run advances every session once per second until ctx is done, so wins and
// timeouts are recorded even when no client is polling. On return all
// sessions are torn down.
func (s *GameService) Run(ctx context.Context) error {
	ticker := s.clock.Ticker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			return nil
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep advances every session and evicts those idle for longer than the
// configured session TTL.
func (s *GameService) Sweep(ctx context.Context) {
	s.mu.Lock()
	all := make(map[string]*game.Session, len(s.sessions))
	for id, sess := range s.sessions {
		all[id] = sess
	}
	s.mu.Unlock()

	now := s.clock.Now()
	for id, sess := range all {
		sess.Advance()
		if s.settings.SessionTTL <= 0 || now.Sub(sess.LastUsed()) < s.settings.SessionTTL {
			continue
		}
		s.mu.Lock()
		if s.sessions[id] == sess {
			delete(s.sessions, id)
		}
		s.mu.Unlock()
		sess.Close()
		s.logger.InfoContext(ctx, "session evicted", "session_id", id)
	}
}

func (s *GameService) closeAll() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[string]*game.Session)
	s.mu.Unlock()

	for _, sess := range all {
		sess.Close()
	}
}

func (s *GameService) lookup(id string) (*game.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	return sess, nil
}

// finished records a win as a high-score candidate and publishes the result.
// Timeouts are published but never scored.
func (s *GameService) finished(res domain.Result) {
	ctx := context.Background()
	res.Score = score.Calculate(res.Elapsed, res.Moves)
	if res.Phase == domain.PhaseWon {
		res.NewBest = s.scores.WriteBest(ctx, res.Elapsed, res.Moves)
	}

	s.logger.InfoContext(ctx, "session finished",
		"session_id", res.SessionID,
		"outcome", res.Phase,
		"elapsed", res.Elapsed,
		"moves", res.Moves,
		"matched_pairs", res.MatchedPairs,
		"score", res.Score,
		"new_best", res.NewBest,
	)

	if err := s.events.PublishFinished(ctx, res); err != nil {
		s.logger.WarnContext(ctx, "publish session result failed", "session_id", res.SessionID, "error", err)
	}
}
