package domain

import "fmt"

// ValidatePools checks that p yields a playable board: at least one pair and
// no value shared between two entries.
func ValidatePools(p Pools) error {
	if p.PairCount() == 0 {
		return ErrEmptyPools
	}
	seen := make(map[string]struct{}, p.PairCount())
	for _, group := range [][]PoolEntry{p.Special, p.Generic} {
		for _, e := range group {
			if _, dup := seen[e.Value]; dup {
				return fmt.Errorf("%w: %q", ErrDuplicateValue, e.Value)
			}
			seen[e.Value] = struct{}{}
		}
	}
	return nil
}

// BuildTiles lays out two copies of the special pool followed by two copies of
// the generic pool, face-up, and shuffles them with rng.
// IDs are assigned by position after the shuffle.
func BuildTiles(p Pools, rng RNG) ([]Tile, error) {
	if err := ValidatePools(p); err != nil {
		return nil, err
	}

	entries := make([]PoolEntry, 0, 2*p.PairCount())
	entries = append(entries, p.Special...)
	entries = append(entries, p.Special...)
	entries = append(entries, p.Generic...)
	entries = append(entries, p.Generic...)

	tiles := make([]Tile, len(entries))
	for i, e := range entries {
		tiles[i] = Tile{
			ID:          i,
			Value:       e.Value,
			Kind:        e.Kind,
			Description: e.Description,
			Flipped:     true,
		}
	}

	Shuffle(tiles, rng)
	for i := range tiles {
		tiles[i].ID = i
	}
	return tiles, nil
}

// Shuffle permutes s in place with Fisher-Yates.
func Shuffle[T any](s []T, rng RNG) {
	for i := len(s) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}
