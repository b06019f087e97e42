// Package render draws the home screen and the game board as plain text.
package render

import (
	"fmt"
	"path"
	"strings"

	"github.com/randomtoy/memory-match/internal/domain"
	"github.com/randomtoy/memory-match/internal/game"
	"github.com/randomtoy/memory-match/internal/score"
)

// Board renders a session snapshot. Hidden tiles show "?", matched tiles are
// prefixed with "=".
func Board(snap game.Snapshot, best *domain.HighScore) string {
	var b strings.Builder
	b.WriteString("Memory Match Game\n")
	fmt.Fprintf(&b, "Time: %s | Moves: %d | Matches: %d / %d\n",
		score.FormatDuration(snap.Remaining), snap.Moves, snap.MatchedPairs, snap.TotalPairs)
	if snap.Countdown != nil {
		fmt.Fprintf(&b, "Memorize: %ds\n", *snap.Countdown)
	}

	b.WriteString("\n")
	cols := columns(len(snap.Tiles))
	for i, t := range snap.Tiles {
		if i%cols != 0 {
			b.WriteString("  ")
		}
		fmt.Fprintf(&b, "%2d [%s]", t.ID, Label(t))
		if i%cols == cols-1 || i == len(snap.Tiles)-1 {
			b.WriteString("\n")
		}
	}

	var tail []string
	for _, t := range snap.Toasts {
		tail = append(tail, t.Emoji+" "+strings.ReplaceAll(t.Message, "\n", " "))
	}
	switch snap.Phase {
	case domain.PhaseWon:
		tail = append(tail,
			"🎉 Congratulations! 🎉",
			fmt.Sprintf("Time: %s | Moves: %d | Score: %d",
				score.FormatDuration(snap.Elapsed), snap.Moves, score.Calculate(snap.Elapsed, snap.Moves)))
	case domain.PhaseTimeout:
		tail = append(tail, fmt.Sprintf("Time's up! Matched %d / %d pairs.", snap.MatchedPairs, snap.TotalPairs))
	case domain.PhaseClosed:
		tail = append(tail, "Session closed.")
	}
	if best != nil {
		tail = append(tail, bestLine(best))
	}
	if len(tail) > 0 {
		b.WriteString("\n" + strings.Join(tail, "\n") + "\n")
	}
	return b.String()
}

// Home renders the home screen entries.
func Home(entries []domain.GameEntry, best *domain.HighScore) string {
	var b strings.Builder
	b.WriteString("Memory Arcade\n\n")
	for i, e := range entries {
		status := "PLAY"
		if e.Locked {
			status = "LOCKED"
		}
		fmt.Fprintf(&b, "%2d. %-16s [%s]\n", i+1, e.Title, status)
	}
	b.WriteString("\n")
	if best != nil {
		b.WriteString(bestLine(best) + "\n")
	} else {
		b.WriteString("No high score yet.\n")
	}
	return b.String()
}

// Label is the text shown on a tile's face.
func Label(t domain.Tile) string {
	if !t.Revealed() {
		return "?"
	}
	l := t.Value
	if t.Kind == domain.KindImage {
		l = strings.TrimSuffix(path.Base(l), path.Ext(l))
	}
	if t.Matched {
		return "=" + l
	}
	return l
}

func bestLine(hs *domain.HighScore) string {
	return fmt.Sprintf("Best: %d (%s, %d moves)", hs.Score, score.FormatDuration(hs.Time), hs.Moves)
}

// columns returns the width of the smallest square grid holding n tiles.
func columns(n int) int {
	c := 1
	for c*c < n {
		c++
	}
	return c
}
