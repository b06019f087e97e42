// Package content loads tile pools and the home-screen catalog from YAML.
//
// Files are validated against an embedded CUE schema and tile values are
// normalized to NFC, so two tiles compare equal exactly when they render the
// same.
package content

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/randomtoy/memory-match/internal/domain"
)

//go:embed data/*.yaml
var dataFS embed.FS

//go:embed schema.cue
var schemaCUE string

const (
	poolsFile   = "pools.yaml"
	catalogFile = "catalog.yaml"
)

// Embedded returns the built-in content files.
func Embedded() fs.FS {
	sub, err := fs.Sub(dataFS, "data")
	if err != nil {
		panic(err)
	}
	return sub
}

type poolsDoc struct {
	Pools map[string]domain.Pools `json:"pools" yaml:"pools"`
}

type catalogDoc struct {
	Entries []domain.GameEntry `json:"entries" yaml:"entries"`
}

// Store implements ports.PoolStore and ports.CatalogStore. Files are read
// once, on first use.
type Store struct {
	fsys fs.FS

	once    sync.Once
	pools   map[string]domain.Pools
	catalog []domain.GameEntry
	err     error
}

// NewStore reads pools.yaml and catalog.yaml from fsys.
func NewStore(fsys fs.FS) *Store {
	return &Store{fsys: fsys}
}

func (s *Store) init() {
	schema := cuecontext.New().CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		s.err = fmt.Errorf("compile content schema: %w", err)
		return
	}

	var pd poolsDoc
	if err := s.load(schema, poolsFile, "#PoolsFile", &pd); err != nil {
		s.err = err
		return
	}
	var cd catalogDoc
	if err := s.load(schema, catalogFile, "#CatalogFile", &cd); err != nil {
		s.err = err
		return
	}

	s.pools = make(map[string]domain.Pools, len(pd.Pools))
	for id, p := range pd.Pools {
		p = normalizePools(p)
		if err := domain.ValidatePools(p); err != nil {
			s.err = fmt.Errorf("pools %q: %w", id, err)
			return
		}
		s.pools[id] = p
	}
	s.catalog = cd.Entries
}

// load decodes name into out and checks it against the schema definition def.
func (s *Store) load(schema cue.Value, name, def string, out any) error {
	raw, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}

	if pd, ok := out.(*poolsDoc); ok {
		for id, p := range pd.Pools {
			pd.Pools[id] = withEmptyLists(p)
		}
	}

	v := schema.Context().Encode(out)
	if err := schema.LookupPath(cue.ParsePath(def)).Unify(v).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("validate %s: %w", name, err)
	}
	return nil
}

func (s *Store) GetPools(_ context.Context, id string) (domain.Pools, error) {
	s.once.Do(s.init)
	if s.err != nil {
		return domain.Pools{}, s.err
	}
	p, ok := s.pools[id]
	if !ok {
		return domain.Pools{}, fmt.Errorf("%w: %q", domain.ErrPoolsNotFound, id)
	}
	return p, nil
}

func (s *Store) ListEntries(_ context.Context) ([]domain.GameEntry, error) {
	s.once.Do(s.init)
	if s.err != nil {
		return nil, s.err
	}
	out := make([]domain.GameEntry, len(s.catalog))
	copy(out, s.catalog)
	return out, nil
}

// withEmptyLists replaces missing pool lists so they encode as [] rather
// than null.
func withEmptyLists(p domain.Pools) domain.Pools {
	if p.Special == nil {
		p.Special = []domain.PoolEntry{}
	}
	if p.Generic == nil {
		p.Generic = []domain.PoolEntry{}
	}
	return p
}

func normalizePools(p domain.Pools) domain.Pools {
	apply := func(in []domain.PoolEntry) []domain.PoolEntry {
		out := make([]domain.PoolEntry, len(in))
		for i, e := range in {
			e.Value = norm.NFC.String(e.Value)
			out[i] = e
		}
		return out
	}
	return domain.Pools{Special: apply(p.Special), Generic: apply(p.Generic)}
}
