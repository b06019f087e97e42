package domain

import "time"

// RNG abstracts random number generation for deterministic testing.
type RNG interface {
	// Intn returns a non-negative random int in [0, n).
	Intn(n int) int
}

// TileKind discriminates the two pair types a board is built from.
type TileKind string

const (
	KindImage  TileKind = "image"
	KindSymbol TileKind = "symbol"
)

// PoolEntry is one distinct tile face. Every entry yields exactly one pair.
type PoolEntry struct {
	Value       string   `json:"value" yaml:"value"`
	Kind        TileKind `json:"kind" yaml:"kind"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// Pools holds the two source pools a board is built from.
type Pools struct {
	Special []PoolEntry `json:"special" yaml:"special"`
	Generic []PoolEntry `json:"generic" yaml:"generic"`
}

// PairCount is the number of pairs a board built from p contains.
func (p Pools) PairCount() int {
	return len(p.Special) + len(p.Generic)
}

// Tile is a single card on the board. ID is the tile's position.
type Tile struct {
	ID          int
	Value       string
	Kind        TileKind
	Description string
	Flipped     bool
	Matched     bool
}

// Revealed reports whether the tile's face is visible.
func (t Tile) Revealed() bool {
	return t.Flipped || t.Matched
}

// ToastKind categorizes a transient notification.
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
)

// Toast is a self-expiring notification.
type Toast struct {
	ID        string
	Message   string
	Emoji     string
	Kind      ToastKind
	ExpiresAt time.Time
}

// HighScore is the single persisted best result. Lower Score is better.
type HighScore struct {
	Time  int    `json:"time"`
	Moves int    `json:"moves"`
	Score int    `json:"score"`
	Date  string `json:"date"`
}

// Phase is the lifecycle stage of a game session.
type Phase string

const (
	PhaseCountdown Phase = "countdown"
	PhaseActive    Phase = "active"
	PhaseWon       Phase = "won"
	PhaseTimeout   Phase = "timeout"
	PhaseClosed    Phase = "closed"
)

// Over reports whether the play-through has ended.
func (p Phase) Over() bool {
	return p == PhaseWon || p == PhaseTimeout || p == PhaseClosed
}

// Result describes how a finished session ended.
type Result struct {
	SessionID    string
	Phase        Phase
	Elapsed      int
	Moves        int
	MatchedPairs int
	TotalPairs   int
	Score        int
	NewBest      bool
	FinishedAt   time.Time
}

// GameEntry is one tile on the home screen.
type GameEntry struct {
	ID     string `json:"id" yaml:"id"`
	Title  string `json:"title" yaml:"title"`
	Route  string `json:"route,omitempty" yaml:"route,omitempty"`
	Locked bool   `json:"locked" yaml:"locked"`
	Notice string `json:"notice,omitempty" yaml:"notice,omitempty"`
}
