package ports

import "context"

// KeyValueStore persists small string records under fixed keys.
// A missing key is reported with ok == false and a nil error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
