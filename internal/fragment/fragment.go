package fragment

import (
	"context"
	"errors"
	"sync/atomic"
)

// ErrNotMigratable is returned by Migrate when the store cannot create tables.
var ErrNotMigratable = errors.New("store does not support migrations")

// Fragment is one independently addressable partition of the dataset.
type Fragment struct {
	ID    int    // Fragment index in [0, N)
	Store Store  // SQL backend for this fragment
	Stats *Stats // Operation counters
}

// Stats tracks operation counts for a fragment
type Stats struct {
	Execs    uint64 `json:"execs"`    // Statements executed
	Queries  uint64 `json:"queries"`  // Result-set queries
	Failures uint64 `json:"failures"` // Execs or queries that returned an error
}

// Info contains metadata about a fragment
type Info struct {
	ID    int   `json:"id"`
	Stats Stats `json:"stats"`
}

// New creates a fragment over an opened store
func New(id int, store Store) *Fragment {
	return &Fragment{
		ID:    id,
		Store: store,
		Stats: &Stats{},
	}
}

// Exec runs a statement on the fragment
// Increments exec counter for statistics
func (f *Fragment) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	atomic.AddUint64(&f.Stats.Execs, 1)
	n, err := f.Store.Exec(ctx, query, args...)
	if err != nil {
		atomic.AddUint64(&f.Stats.Failures, 1)
	}
	return n, err
}

// Query runs a query on the fragment and scans into dest
// Increments query counter for statistics
func (f *Fragment) Query(ctx context.Context, dest any, query string, args ...any) error {
	atomic.AddUint64(&f.Stats.Queries, 1)
	err := f.Store.Query(ctx, dest, query, args...)
	if err != nil {
		atomic.AddUint64(&f.Stats.Failures, 1)
	}
	return err
}

// Upsert inserts or overwrites a row on the fragment
// Counts as an exec
func (f *Fragment) Upsert(ctx context.Context, value any, keys []string, updates []string) error {
	atomic.AddUint64(&f.Stats.Execs, 1)
	err := f.Store.Upsert(ctx, value, keys, updates)
	if err != nil {
		atomic.AddUint64(&f.Stats.Failures, 1)
	}
	return err
}

// Ping checks the fragment is reachable
func (f *Fragment) Ping(ctx context.Context) error {
	return f.Store.Ping(ctx)
}

// Migrate creates the fragment schema when the store supports it
func (f *Fragment) Migrate(ctx context.Context) error {
	m, ok := f.Store.(interface {
		Migrate(ctx context.Context) error
	})
	if !ok {
		return ErrNotMigratable
	}
	return m.Migrate(ctx)
}

// GetStats returns a snapshot of the counters
func (f *Fragment) GetStats() Stats {
	return Stats{
		Execs:    atomic.LoadUint64(&f.Stats.Execs),
		Queries:  atomic.LoadUint64(&f.Stats.Queries),
		Failures: atomic.LoadUint64(&f.Stats.Failures),
	}
}

// Info returns metadata about the fragment
func (f *Fragment) Info() Info {
	return Info{
		ID:    f.ID,
		Stats: f.GetStats(),
	}
}
