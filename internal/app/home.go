package app

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/randomtoy/memory-match/internal/domain"
	"github.com/randomtoy/memory-match/internal/ports"
)

// Selection is the home screen's answer to picking an entry: either a route
// to navigate to or a transient notice.
type Selection struct {
	Navigate string
	Notice   *domain.Toast
}

// HomeService serves the home screen.
type HomeService struct {
	catalog   ports.CatalogStore
	clock     clock.Clock
	noticeTTL time.Duration
}

func NewHomeService(cs ports.CatalogStore, clk clock.Clock, noticeTTL time.Duration) *HomeService {
	return &HomeService{catalog: cs, clock: clk, noticeTTL: noticeTTL}
}

func (h *HomeService) Entries(ctx context.Context) ([]domain.GameEntry, error) {
	entries, err := h.catalog.ListEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

// Select resolves a click on entry id.
func (h *HomeService) Select(ctx context.Context, id string) (Selection, error) {
	entries, err := h.Entries(ctx)
	if err != nil {
		return Selection{}, err
	}

	for _, e := range entries {
		if e.ID != id {
			continue
		}
		if !e.Locked {
			return Selection{Navigate: e.Route}, nil
		}
		msg := e.Notice
		if msg == "" {
			msg = e.Title + " is locked. Coming soon!"
		}
		return Selection{Notice: &domain.Toast{
			ID:        uuid.Must(uuid.NewV7()).String(),
			Message:   msg,
			Emoji:     "🔒",
			Kind:      domain.ToastError,
			ExpiresAt: h.clock.Now().Add(h.noticeTTL),
		}}, nil
	}
	return Selection{}, fmt.Errorf("%w: %s", domain.ErrEntryNotFound, id)
}
