package ports

import (
	"context"

	"github.com/randomtoy/memory-match/internal/domain"
)

// EventPublisher announces finished sessions to interested consumers.
type EventPublisher interface {
	PublishFinished(ctx context.Context, res domain.Result) error
}
