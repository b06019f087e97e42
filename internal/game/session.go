// Package game runs a single memory-match play-through: the memorization
// countdown, flip/match resolution, the session clock and notifications.
//
// A Session starts no goroutines and registers no timers. Scheduled work is
// queued with its due time and runs when the session is advanced to the
// clock's current time, which every exported method does first. Reset and
// Close drop everything still queued.
package game

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/randomtoy/memory-match/internal/domain"
)

// Config holds the timing rules of a session.
type Config struct {
	Countdown     time.Duration // memorization phase, whole seconds
	TimeLimit     time.Duration // session budget, whole seconds
	MatchDelay    time.Duration
	MismatchDelay time.Duration
	ToastTTL      time.Duration
}

func DefaultConfig() Config {
	return Config{
		Countdown:     4 * time.Second,
		TimeLimit:     300 * time.Second,
		MatchDelay:    500 * time.Millisecond,
		MismatchDelay: time.Second,
		ToastTTL:      3 * time.Second,
	}
}

// FinishFunc receives the result of a play-through that ended in a win or a
// timeout. It is called once per play-through, without the session lock held.
type FinishFunc func(domain.Result)

type Option func(*Session)

func WithFinishFunc(fn FinishFunc) Option {
	return func(s *Session) { s.onFinish = fn }
}

// WithIDGenerator replaces the UUIDv7 generator used for toast IDs.
func WithIDGenerator(fn func() string) Option {
	return func(s *Session) { s.newID = fn }
}

// Snapshot is a copy of the session state at one instant.
type Snapshot struct {
	SessionID    string
	Phase        domain.Phase
	Tiles        []domain.Tile
	Countdown    *int
	Remaining    int
	Elapsed      int
	Moves        int
	MatchedPairs int
	TotalPairs   int
	Checking     bool
	Toasts       []domain.Toast
}

// Session is one game screen's state. It is safe for concurrent use.
type Session struct {
	id       string
	cfg      Config
	pools    domain.Pools
	rng      domain.RNG
	clock    clock.Clock
	newID    func() string
	onFinish FinishFunc

	mu        sync.Mutex
	sched     scheduler
	toasts    toastQueue
	tiles     []domain.Tile
	flipped   []int
	checking  bool
	countdown *int
	remaining int
	moves     int
	matched   int
	phase     domain.Phase
	lastUsed  time.Time
	finished  *domain.Result
}

// NewSession deals a fresh board and enters the memorization countdown.
func NewSession(id string, pools domain.Pools, rng domain.RNG, clk clock.Clock, cfg Config, opts ...Option) (*Session, error) {
	if err := domain.ValidatePools(pools); err != nil {
		return nil, err
	}
	s := &Session{
		id:    id,
		cfg:   cfg,
		pools: pools,
		rng:   rng,
		clock: clk,
		newID: func() string { return uuid.Must(uuid.NewV7()).String() },
	}
	for _, opt := range opts {
		opt(s)
	}

	now := clk.Now()
	s.lastUsed = now
	if err := s.resetLocked(now); err != nil {
		return nil, err
	}
	s.advanceLocked(now)
	return s, nil
}

func (s *Session) ID() string { return s.id }

// LastUsed is the time of the last client operation on the session.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// Snapshot advances the session and returns its state.
func (s *Session) Snapshot() Snapshot {
	snap, _ := s.do(true, nil)
	return snap
}

// Advance runs every callback that is due without counting as client
// activity.
func (s *Session) Advance() Snapshot {
	snap, _ := s.do(false, nil)
	return snap
}

// Flip turns tile tileID face-up. A second flip starts the pair check, which
// resolves after MatchDelay on a match or MismatchDelay otherwise.
func (s *Session) Flip(tileID int) (Snapshot, error) {
	return s.do(true, func(now time.Time) error {
		return s.flipLocked(tileID, now)
	})
}

// Reset deals a new board and restarts the countdown ("play again").
func (s *Session) Reset() (Snapshot, error) {
	return s.do(true, func(now time.Time) error {
		if s.phase == domain.PhaseClosed {
			return domain.ErrSessionClosed
		}
		return s.resetLocked(now)
	})
}

// Close tears the session down. Pending callbacks are discarded and every
// later operation fails with domain.ErrSessionClosed. Close is idempotent.
func (s *Session) Close() {
	_, _ = s.do(true, func(time.Time) error {
		s.phase = domain.PhaseClosed
		s.sched.clear()
		s.toasts.clear()
		s.flipped = nil
		s.checking = false
		s.countdown = nil
		return nil
	})
}

// do advances the session to now, runs fn and delivers a pending finish
// notification once the lock is released.
func (s *Session) do(touch bool, fn func(now time.Time) error) (Snapshot, error) {
	s.mu.Lock()
	now := s.clock.Now()
	s.advanceLocked(now)
	if touch {
		s.lastUsed = now
	}
	var err error
	if fn != nil {
		err = fn(now)
	}
	snap := s.snapshotLocked()
	res := s.finished
	s.finished = nil
	s.mu.Unlock()

	if res != nil && s.onFinish != nil {
		s.onFinish(*res)
	}
	return snap, err
}

func (s *Session) resetLocked(now time.Time) error {
	tiles, err := domain.BuildTiles(s.pools, s.rng)
	if err != nil {
		return fmt.Errorf("build tiles: %w", err)
	}

	s.sched.clear()
	s.toasts.clear()
	s.tiles = tiles
	s.flipped = nil
	s.checking = false
	s.moves = 0
	s.matched = 0
	s.remaining = wholeSeconds(s.cfg.TimeLimit)
	s.phase = domain.PhaseCountdown
	s.countdown = nil

	secs := wholeSeconds(s.cfg.Countdown)
	if secs > 0 {
		s.countdown = &secs
	}
	for i := 1; i < secs; i++ {
		s.sched.schedule(event{due: now.Add(time.Duration(i) * time.Second), kind: evCountdownTick})
	}
	s.sched.schedule(event{due: now.Add(s.cfg.Countdown), kind: evReveal})
	return nil
}

func (s *Session) advanceLocked(now time.Time) {
	if s.phase == domain.PhaseClosed {
		return
	}
	for {
		ev, ok := s.sched.next(now)
		if !ok {
			return
		}
		switch ev.kind {
		case evCountdownTick:
			if s.countdown != nil && *s.countdown > 1 {
				n := *s.countdown - 1
				s.countdown = &n
			}
		case evReveal:
			s.revealLocked(ev.due)
		case evClockTick:
			s.tickLocked(ev.due)
		case evResolve:
			s.resolveLocked(ev)
		case evToastExpire:
			s.toasts.remove(ev.toastID)
		}
	}
}

func (s *Session) revealLocked(at time.Time) {
	s.countdown = nil
	for i := range s.tiles {
		s.tiles[i].Flipped = false
	}
	s.phase = domain.PhaseActive
	if s.remaining <= 0 {
		s.timeoutLocked(at)
		return
	}
	s.sched.schedule(event{due: at.Add(time.Second), kind: evClockTick})
}

func (s *Session) tickLocked(at time.Time) {
	if s.phase != domain.PhaseActive {
		return
	}
	s.remaining--
	if s.remaining <= 0 {
		s.remaining = 0
		s.timeoutLocked(at)
		return
	}
	s.sched.schedule(event{due: at.Add(time.Second), kind: evClockTick})
}

func (s *Session) timeoutLocked(at time.Time) {
	s.phase = domain.PhaseTimeout
	s.sched.cancel(evResolve, evClockTick)
	for _, id := range s.flipped {
		s.tiles[id].Flipped = false
	}
	s.flipped = nil
	s.checking = false
	s.finishLocked(at)
}

func (s *Session) flipLocked(tileID int, now time.Time) error {
	if s.phase == domain.PhaseClosed {
		return domain.ErrSessionClosed
	}
	if tileID < 0 || tileID >= len(s.tiles) {
		return fmt.Errorf("%w: %d", domain.ErrTileNotFound, tileID)
	}

	tile := &s.tiles[tileID]
	switch {
	case s.phase != domain.PhaseActive:
		return fmt.Errorf("%w: game is %s", domain.ErrFlipRejected, s.phase)
	case s.checking:
		return fmt.Errorf("%w: pair check in progress", domain.ErrFlipRejected)
	case tile.Matched:
		return fmt.Errorf("%w: tile %d already matched", domain.ErrFlipRejected, tileID)
	case tile.Flipped:
		return fmt.Errorf("%w: tile %d already face-up", domain.ErrFlipRejected, tileID)
	case len(s.flipped) >= 2:
		return fmt.Errorf("%w: two tiles already face-up", domain.ErrFlipRejected)
	}

	tile.Flipped = true
	s.flipped = append(s.flipped, tileID)
	if len(s.flipped) < 2 {
		return nil
	}

	s.moves++
	s.checking = true
	first, second := s.flipped[0], s.flipped[1]
	match := s.tiles[first].Value == s.tiles[second].Value
	delay := s.cfg.MismatchDelay
	if match {
		delay = s.cfg.MatchDelay
	}
	s.sched.schedule(event{
		due:   now.Add(delay),
		kind:  evResolve,
		pair:  [2]int{first, second},
		match: match,
	})
	return nil
}

func (s *Session) resolveLocked(ev event) {
	if s.phase != domain.PhaseActive {
		return
	}
	a, b := ev.pair[0], ev.pair[1]
	s.flipped = nil
	s.checking = false

	if !ev.match {
		s.tiles[a].Flipped = false
		s.tiles[b].Flipped = false
		return
	}

	s.tiles[a].Matched = true
	s.tiles[b].Matched = true
	s.matched++
	s.raiseMatchToastLocked(s.tiles[a], ev.due)

	if s.matched == s.pools.PairCount() {
		s.phase = domain.PhaseWon
		s.sched.cancel(evClockTick)
		s.finishLocked(ev.due)
	}
}

func (s *Session) raiseMatchToastLocked(tile domain.Tile, at time.Time) {
	msg, emoji := matchMessage(tile, s.rng.Intn(len(robotMessages)))
	t := domain.Toast{
		ID:        s.newID(),
		Message:   msg,
		Emoji:     emoji,
		Kind:      domain.ToastSuccess,
		ExpiresAt: at.Add(s.cfg.ToastTTL),
	}
	s.toasts.push(t)
	s.sched.schedule(event{due: t.ExpiresAt, kind: evToastExpire, toastID: t.ID})
}

func (s *Session) finishLocked(at time.Time) {
	s.finished = &domain.Result{
		SessionID:    s.id,
		Phase:        s.phase,
		Elapsed:      s.elapsedLocked(),
		Moves:        s.moves,
		MatchedPairs: s.matched,
		TotalPairs:   s.pools.PairCount(),
		FinishedAt:   at,
	}
}

func (s *Session) elapsedLocked() int {
	return wholeSeconds(s.cfg.TimeLimit) - s.remaining
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		SessionID:    s.id,
		Phase:        s.phase,
		Tiles:        slices.Clone(s.tiles),
		Remaining:    s.remaining,
		Elapsed:      s.elapsedLocked(),
		Moves:        s.moves,
		MatchedPairs: s.matched,
		TotalPairs:   s.pools.PairCount(),
		Checking:     s.checking,
		Toasts:       s.toasts.list(),
	}
	if s.countdown != nil {
		n := *s.countdown
		snap.Countdown = &n
	}
	return snap
}

func wholeSeconds(d time.Duration) int {
	return int(d / time.Second)
}
