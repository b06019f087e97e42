// Package score computes, formats and persists game scores.
package score

import "fmt"

// Calculate returns the score for a finished game. Lower is better.
func Calculate(seconds, moves int) int {
	return seconds + moves*2
}

// FormatDuration renders seconds as M:SS. Negative input renders as 0:00.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
