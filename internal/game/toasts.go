package game

import (
	"slices"

	"github.com/randomtoy/memory-match/internal/domain"
)

// toastQueue holds the active notifications in the order they were raised.
type toastQueue struct {
	items []domain.Toast
}

func (q *toastQueue) push(t domain.Toast) {
	q.items = append(q.items, t)
}

func (q *toastQueue) remove(id string) bool {
	i := slices.IndexFunc(q.items, func(t domain.Toast) bool { return t.ID == id })
	if i < 0 {
		return false
	}
	q.items = slices.Delete(q.items, i, i+1)
	return true
}

func (q *toastQueue) list() []domain.Toast {
	return slices.Clone(q.items)
}

func (q *toastQueue) clear() {
	q.items = nil
}

var robotMessages = []struct {
	message string
	emoji   string
}{
	{"ANALYZING MATCH...", "🤖"},
	{"PROCESSING DATA...", "⚡"},
	{"MATCH DETECTED!", "✨"},
}

// matchMessage builds the text and emoji of the toast raised for a matched
// pair. pick selects the robot line.
func matchMessage(t domain.Tile, pick int) (string, string) {
	r := robotMessages[pick%len(robotMessages)]
	emoji := r.emoji
	if t.Kind == domain.KindImage {
		emoji = "🤖"
	}
	if t.Kind == domain.KindImage && t.Description != "" {
		return r.message + "\n>> " + t.Description, emoji
	}
	return r.message + "\n>> MATCH_TYPE: " + t.Value, emoji
}
