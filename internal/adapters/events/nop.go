// Package events holds the publishers of session outcome events.
package events

import (
	"context"

	"github.com/randomtoy/memory-match/internal/domain"
)

// Nop discards every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) PublishFinished(context.Context, domain.Result) error { return nil }
