package app_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/randomtoy/memory-match/internal/app"
	"github.com/randomtoy/memory-match/internal/domain"
	"github.com/randomtoy/memory-match/internal/game"
)

type mockPoolStore struct {
	pools domain.Pools
	err   error
}

func (m *mockPoolStore) GetPools(_ context.Context, _ string) (domain.Pools, error) {
	return m.pools, m.err
}

type writeCall struct{ seconds, moves int }

type spyScores struct {
	mu     sync.Mutex
	writes []writeCall
	best   *domain.HighScore
}

func (s *spyScores) ReadBest(context.Context) *domain.HighScore { return s.best }

func (s *spyScores) WriteBest(_ context.Context, seconds, moves int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes = append(s.writes, writeCall{seconds, moves})
	return true
}

func (s *spyScores) ClearBest(context.Context) error { s.best = nil; return nil }

type recordingPublisher struct {
	mu      sync.Mutex
	results []domain.Result
	err     error
}

func (p *recordingPublisher) PublishFinished(_ context.Context, res domain.Result) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results = append(p.results, res)
	return p.err
}

// identityRNG leaves the pool layout unshuffled.
type identityRNG struct{}

func (identityRNG) Intn(n int) int { return n - 1 }

func testPools() domain.Pools {
	return domain.Pools{
		Special: []domain.PoolEntry{
			{Value: "assets/senthi.jpg", Kind: domain.KindImage, Description: "Senthil"},
			{Value: "assets/ten.jpg", Kind: domain.KindImage, Description: "Ten"},
		},
		Generic: []domain.PoolEntry{
			{Value: "🎮", Kind: domain.KindSymbol},
			{Value: "🎲", Kind: domain.KindSymbol},
			{Value: "🎯", Kind: domain.KindSymbol},
			{Value: "🎪", Kind: domain.KindSymbol},
			{Value: "🎨", Kind: domain.KindSymbol},
			{Value: "🎭", Kind: domain.KindSymbol},
		},
	}
}

var pairPositions = [][2]int{{0, 2}, {1, 3}, {4, 10}, {5, 11}, {6, 12}, {7, 13}, {8, 14}, {9, 15}}

type fixture struct {
	svc    *app.GameService
	clock  *clock.Mock
	scores *spyScores
	pub    *recordingPublisher
}

func newFixture(ttl time.Duration) fixture {
	clk := clock.NewMock()
	scores := &spyScores{}
	pub := &recordingPublisher{}
	svc := app.NewGameService(
		&mockPoolStore{pools: testPools()},
		scores,
		pub,
		identityRNG{},
		clk,
		app.GameSettings{SessionTTL: ttl, Session: game.DefaultConfig()},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return fixture{svc: svc, clock: clk, scores: scores, pub: pub}
}

func TestStartSession_Success(t *testing.T) {
	f := newFixture(time.Hour)

	snap, err := f.svc.StartSession(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.SessionID == "" {
		t.Error("expected a session ID")
	}
	if snap.Phase != domain.PhaseCountdown {
		t.Errorf("expected countdown phase, got %s", snap.Phase)
	}
	if len(snap.Tiles) != 16 {
		t.Errorf("expected 16 tiles, got %d", len(snap.Tiles))
	}
	if f.svc.Live() != 1 {
		t.Errorf("expected 1 live session, got %d", f.svc.Live())
	}
}

func TestStartSession_PoolsError(t *testing.T) {
	svc := app.NewGameService(
		&mockPoolStore{err: domain.ErrPoolsNotFound},
		&spyScores{}, &recordingPublisher{}, identityRNG{}, clock.NewMock(),
		app.GameSettings{Session: game.DefaultConfig()},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)

	_, err := svc.StartSession(context.Background())
	if !errors.Is(err, domain.ErrPoolsNotFound) {
		t.Fatalf("expected ErrPoolsNotFound, got %v", err)
	}
}

func TestWin_WritesBestExactlyOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(time.Hour)
	snap, err := f.svc.StartSession(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id := snap.SessionID
	f.clock.Add(4 * time.Second)

	for _, pair := range pairPositions {
		if _, err := f.svc.Flip(ctx, id, pair[0]); err != nil {
			t.Fatalf("flip %d: %v", pair[0], err)
		}
		if _, err := f.svc.Flip(ctx, id, pair[1]); err != nil {
			t.Fatalf("flip %d: %v", pair[1], err)
		}
		f.clock.Add(500 * time.Millisecond)
	}

	snap, err = f.svc.Session(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Phase != domain.PhaseWon {
		t.Fatalf("expected win, got %s", snap.Phase)
	}
	f.svc.Sweep(ctx)
	_, _ = f.svc.Session(ctx, id)

	if len(f.scores.writes) != 1 {
		t.Fatalf("expected exactly one high-score write, got %d", len(f.scores.writes))
	}
	if f.scores.writes[0] != (writeCall{seconds: 4, moves: 8}) {
		t.Errorf("unexpected write: %+v", f.scores.writes[0])
	}

	if len(f.pub.results) != 1 {
		t.Fatalf("expected one published result, got %d", len(f.pub.results))
	}
	res := f.pub.results[0]
	if res.Score != 20 || !res.NewBest || res.Phase != domain.PhaseWon {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestTimeout_NoHighScoreWrite(t *testing.T) {
	ctx := context.Background()
	f := newFixture(time.Hour)
	if _, err := f.svc.StartSession(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f.clock.Add(304 * time.Second)
	f.svc.Sweep(ctx)

	if len(f.scores.writes) != 0 {
		t.Errorf("timeout must not write a high score, got %d writes", len(f.scores.writes))
	}
	if len(f.pub.results) != 1 || f.pub.results[0].Phase != domain.PhaseTimeout {
		t.Fatalf("expected one timeout result, got %+v", f.pub.results)
	}
}

func TestPublishFailure_IsNotFatal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(time.Hour)
	f.pub.err = errors.New("broker down")
	snap, _ := f.svc.StartSession(ctx)

	f.clock.Add(304 * time.Second)
	got, err := f.svc.Session(ctx, snap.SessionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Phase != domain.PhaseTimeout {
		t.Errorf("expected timeout, got %s", got.Phase)
	}
}

func TestUnknownSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(time.Hour)

	if _, err := f.svc.Session(ctx, "missing"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("Session: expected ErrSessionNotFound, got %v", err)
	}
	if _, err := f.svc.Flip(ctx, "missing", 0); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("Flip: expected ErrSessionNotFound, got %v", err)
	}
	if _, err := f.svc.Reset(ctx, "missing"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("Reset: expected ErrSessionNotFound, got %v", err)
	}
	if err := f.svc.End(ctx, "missing"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("End: expected ErrSessionNotFound, got %v", err)
	}
}

func TestEnd_TearsDownSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(time.Hour)
	snap, _ := f.svc.StartSession(ctx)

	if err := f.svc.End(ctx, snap.SessionID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.svc.Live() != 0 {
		t.Errorf("expected no live sessions, got %d", f.svc.Live())
	}

	f.clock.Add(10 * time.Minute)
	f.svc.Sweep(ctx)
	if len(f.pub.results) != 0 {
		t.Errorf("an ended session must not report a result, got %+v", f.pub.results)
	}
}

func TestReset_KeepsSessionID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(time.Hour)
	snap, _ := f.svc.StartSession(ctx)
	f.clock.Add(10 * time.Second)

	reset, err := f.svc.Reset(ctx, snap.SessionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reset.SessionID != snap.SessionID || reset.Phase != domain.PhaseCountdown || reset.Remaining != 300 {
		t.Errorf("unexpected snapshot after reset: %+v", reset)
	}
}

func TestSweep_EvictsIdleSessions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(10 * time.Minute)
	idle, _ := f.svc.StartSession(ctx)
	busy, _ := f.svc.StartSession(ctx)

	f.clock.Add(9 * time.Minute)
	if _, err := f.svc.Session(ctx, busy.SessionID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.clock.Add(2 * time.Minute)
	f.svc.Sweep(ctx)

	if _, err := f.svc.Session(ctx, idle.SessionID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("idle session should be evicted, got %v", err)
	}
	if _, err := f.svc.Session(ctx, busy.SessionID); err != nil {
		t.Errorf("recently used session should survive, got %v", err)
	}
	if len(f.pub.results) != 2 {
		t.Errorf("both sessions timed out before eviction, got %d results", len(f.pub.results))
	}
}

func TestRun_ClosesSessionsOnShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := newFixture(time.Hour)
	if _, err := f.svc.StartSession(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- f.svc.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if f.svc.Live() != 0 {
		t.Errorf("expected sessions to be closed, got %d", f.svc.Live())
	}
}
