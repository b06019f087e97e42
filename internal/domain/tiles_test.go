package domain_test

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/randomtoy/memory-match/internal/domain"
)

// deterministicRNG returns values from a pre-set sequence.
type deterministicRNG struct {
	values []int
	idx    int
}

func (r *deterministicRNG) Intn(n int) int {
	v := r.values[r.idx%len(r.values)] % n
	r.idx++
	return v
}

// identityRNG always picks the last index, so Shuffle leaves order unchanged.
type identityRNG struct{}

func (identityRNG) Intn(n int) int { return n - 1 }

type seededRNG struct{ r *rand.Rand }

func (s seededRNG) Intn(n int) int { return s.r.IntN(n) }

func testPools() domain.Pools {
	return domain.Pools{
		Special: []domain.PoolEntry{
			{Value: "assets/senthi.jpg", Kind: domain.KindImage, Description: "Meet Senthil!"},
			{Value: "assets/ten.jpg", Kind: domain.KindImage, Description: "This is Ten!"},
		},
		Generic: []domain.PoolEntry{
			{Value: "🎮", Kind: domain.KindSymbol},
			{Value: "🎲", Kind: domain.KindSymbol},
			{Value: "🎯", Kind: domain.KindSymbol},
			{Value: "🎪", Kind: domain.KindSymbol},
			{Value: "🎨", Kind: domain.KindSymbol},
			{Value: "🎭", Kind: domain.KindSymbol},
		},
	}
}

func TestBuildTiles_EveryValueAppearsTwice(t *testing.T) {
	for seed := uint64(0); seed < 50; seed++ {
		rng := seededRNG{r: rand.New(rand.NewPCG(seed, seed+1))}
		tiles, err := domain.BuildTiles(testPools(), rng)
		if err != nil {
			t.Fatalf("seed %d: unexpected error: %v", seed, err)
		}
		if len(tiles) != 16 {
			t.Fatalf("seed %d: expected 16 tiles, got %d", seed, len(tiles))
		}

		counts := make(map[string]int)
		for i, tile := range tiles {
			counts[tile.Value]++
			if tile.ID != i {
				t.Errorf("seed %d: tile at %d has ID %d", seed, i, tile.ID)
			}
			if !tile.Flipped || tile.Matched {
				t.Errorf("seed %d: tile %d should start face-up and unmatched", seed, i)
			}
		}
		for value, n := range counts {
			if n != 2 {
				t.Errorf("seed %d: value %q appears %d times", seed, value, n)
			}
		}
	}
}

func TestBuildTiles_LayoutBeforeShuffle(t *testing.T) {
	tiles, err := domain.BuildTiles(testPools(), identityRNG{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"assets/senthi.jpg", "assets/ten.jpg", "assets/senthi.jpg", "assets/ten.jpg",
		"🎮", "🎲", "🎯", "🎪", "🎨", "🎭",
		"🎮", "🎲", "🎯", "🎪", "🎨", "🎭",
	}
	for i, tile := range tiles {
		if tile.Value != want[i] {
			t.Errorf("tile %d: expected %q, got %q", i, want[i], tile.Value)
		}
	}
	if tiles[0].Kind != domain.KindImage || tiles[0].Description != "Meet Senthil!" {
		t.Errorf("image tile lost its kind or description: %+v", tiles[0])
	}
	if tiles[4].Description != "" {
		t.Errorf("symbol tile should have no description, got %q", tiles[4].Description)
	}
}

func TestBuildTiles_InvalidPools(t *testing.T) {
	if _, err := domain.BuildTiles(domain.Pools{}, identityRNG{}); !errors.Is(err, domain.ErrEmptyPools) {
		t.Errorf("expected ErrEmptyPools, got %v", err)
	}

	dup := testPools()
	dup.Special = append(dup.Special, domain.PoolEntry{Value: "🎮", Kind: domain.KindSymbol})
	if _, err := domain.BuildTiles(dup, identityRNG{}); !errors.Is(err, domain.ErrDuplicateValue) {
		t.Errorf("expected ErrDuplicateValue, got %v", err)
	}
}

func TestShuffle_IsPermutation(t *testing.T) {
	values := make([]int, 40)
	for i := range values {
		values[i] = i % 10
	}
	shuffled := slices.Clone(values)
	domain.Shuffle(shuffled, &deterministicRNG{values: []int{7, 3, 11, 0, 5, 2}})

	slices.Sort(shuffled)
	slices.Sort(values)
	if !slices.Equal(values, shuffled) {
		t.Errorf("shuffle changed the multiset: %v", shuffled)
	}
}

func TestShuffle_UniformOverPermutations(t *testing.T) {
	const runs = 60000
	rng := seededRNG{r: rand.New(rand.NewPCG(42, 7))}
	counts := make(map[[3]int]int)

	for range runs {
		s := []int{0, 1, 2}
		domain.Shuffle(s, rng)
		counts[[3]int{s[0], s[1], s[2]}]++
	}

	if len(counts) != 6 {
		t.Fatalf("expected all 6 orderings, got %d", len(counts))
	}
	expected := runs / 6
	for perm, n := range counts {
		if n < expected-600 || n > expected+600 {
			t.Errorf("ordering %v drawn %d times, expected about %d", perm, n, expected)
		}
	}
}
