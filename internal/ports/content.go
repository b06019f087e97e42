package ports

import (
	"context"

	"github.com/randomtoy/memory-match/internal/domain"
)

// PoolStore provides the tile pools a board is built from.
type PoolStore interface {
	GetPools(ctx context.Context, id string) (domain.Pools, error)
}

// CatalogStore provides the entries shown on the home screen.
type CatalogStore interface {
	ListEntries(ctx context.Context) ([]domain.GameEntry, error)
}
