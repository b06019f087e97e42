package http

import (
	"github.com/randomtoy/memory-match/internal/domain"
	"github.com/randomtoy/memory-match/internal/game"
	"github.com/randomtoy/memory-match/internal/score"
)

// SessionResponse is the JSON shape of a game session.
type SessionResponse struct {
	ID            string          `json:"id"`
	Phase         domain.Phase    `json:"phase"`
	Countdown     *int            `json:"countdown"`
	Remaining     int             `json:"remaining"`
	RemainingText string          `json:"remaining_text"`
	Elapsed       int             `json:"elapsed"`
	Moves         int             `json:"moves"`
	MatchedPairs  int             `json:"matched_pairs"`
	TotalPairs    int             `json:"total_pairs"`
	Checking      bool            `json:"checking"`
	Tiles         []TileResponse  `json:"tiles"`
	Toasts        []ToastResponse `json:"toasts"`
	Result        *ResultResponse `json:"result,omitempty"`
}

// TileResponse carries a tile's face only while it is revealed.
type TileResponse struct {
	ID          int             `json:"id"`
	Value       string          `json:"value,omitempty"`
	Kind        domain.TileKind `json:"kind,omitempty"`
	Description string          `json:"description,omitempty"`
	Flipped     bool            `json:"flipped"`
	Matched     bool            `json:"matched"`
}

type ToastResponse struct {
	ID        string           `json:"id"`
	Message   string           `json:"message"`
	Emoji     string           `json:"emoji"`
	Kind      domain.ToastKind `json:"kind"`
	ExpiresAt string           `json:"expires_at"`
}

// ResultResponse is present once a session was won.
type ResultResponse struct {
	Time  string `json:"time"`
	Moves int    `json:"moves"`
	Score int    `json:"score"`
}

type HomeResponse struct {
	Entries   []domain.GameEntry `json:"entries"`
	HighScore *domain.HighScore  `json:"high_score"`
}

// SelectResponse is either a navigation or a notice.
type SelectResponse struct {
	Navigate string         `json:"navigate,omitempty"`
	Notice   *ToastResponse `json:"notice,omitempty"`
}

// GameScreenResponse is returned by GET /game.
type GameScreenResponse struct {
	Start     Link              `json:"start"`
	HighScore *domain.HighScore `json:"high_score"`
}

type Link struct {
	Method string `json:"method"`
	Href   string `json:"href"`
}

type FlipRequest struct {
	Tile *int `json:"tile"`
}

type HighScoreResponse struct {
	HighScore *domain.HighScore `json:"high_score"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func toSessionResponse(s game.Snapshot) SessionResponse {
	tiles := make([]TileResponse, len(s.Tiles))
	for i, t := range s.Tiles {
		tiles[i] = TileResponse{ID: t.ID, Flipped: t.Flipped, Matched: t.Matched}
		if t.Revealed() {
			tiles[i].Value = t.Value
			tiles[i].Kind = t.Kind
			tiles[i].Description = t.Description
		}
	}

	toasts := make([]ToastResponse, len(s.Toasts))
	for i, t := range s.Toasts {
		toasts[i] = toToastResponse(t)
	}

	resp := SessionResponse{
		ID:            s.SessionID,
		Phase:         s.Phase,
		Countdown:     s.Countdown,
		Remaining:     s.Remaining,
		RemainingText: score.FormatDuration(s.Remaining),
		Elapsed:       s.Elapsed,
		Moves:         s.Moves,
		MatchedPairs:  s.MatchedPairs,
		TotalPairs:    s.TotalPairs,
		Checking:      s.Checking,
		Tiles:         tiles,
		Toasts:        toasts,
	}
	if s.Phase == domain.PhaseWon {
		resp.Result = &ResultResponse{
			Time:  score.FormatDuration(s.Elapsed),
			Moves: s.Moves,
			Score: score.Calculate(s.Elapsed, s.Moves),
		}
	}
	return resp
}

func toToastResponse(t domain.Toast) ToastResponse {
	return ToastResponse{
		ID:        t.ID,
		Message:   t.Message,
		Emoji:     t.Emoji,
		Kind:      t.Kind,
		ExpiresAt: t.ExpiresAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
}
