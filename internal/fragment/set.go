package fragment

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// ErrNoFragment is returned when a fragment index has no handle.
var ErrNoFragment = errors.New("no such fragment")

// Config describes how to reach one fragment.
type Config struct {
	ID     int    `json:"id"`
	Driver string `json:"driver"`
	DSN    string `json:"-"`
}

// Set owns one handle per fragment, indexed by fragment ID.
//
// A Set is built once, before the first request, and never mutated
// afterwards, so lookups need no locking.
type Set struct {
	fragments []*Fragment
}

// NewSet builds a set from fragments whose IDs must be exactly 0..n-1.
//
// Parameters:
//   - fragments: One fragment per index, in any order
//
// Returns:
//   - Set indexed by fragment ID
//   - Error if the slice is empty, has gaps or duplicates, or nil stores
func NewSet(fragments []*Fragment) (*Set, error) {
	if len(fragments) == 0 {
		return nil, errors.New("fragment set cannot be empty")
	}

	ordered := make([]*Fragment, len(fragments))
	for _, f := range fragments {
		if f == nil || f.Store == nil {
			return nil, errors.New("fragment has no store")
		}
		if f.ID < 0 || f.ID >= len(fragments) {
			return nil, fmt.Errorf("invalid fragment ID %d, must be in range [0, %d)", f.ID, len(fragments))
		}
		if ordered[f.ID] != nil {
			return nil, fmt.Errorf("duplicate fragment ID %d", f.ID)
		}
		ordered[f.ID] = f
	}

	return &Set{fragments: ordered}, nil
}

// OpenSet connects to every configured fragment and verifies each one
// answers a ping. If any fragment fails, the ones already opened are closed.
//
// The configs must carry IDs 0..n-1; the set is fully initialized before
// it is returned.
func OpenSet(ctx context.Context, cfgs []Config) (*Set, error) {
	fragments := make([]*Fragment, 0, len(cfgs))
	closeOpened := func() {
		for _, f := range fragments {
			_ = f.Store.Close()
		}
	}

	for _, cfg := range cfgs {
		store, err := Open(cfg.Driver, cfg.DSN)
		if err != nil {
			closeOpened()
			return nil, fmt.Errorf("open fragment %d: %w", cfg.ID, err)
		}
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			closeOpened()
			return nil, fmt.Errorf("ping fragment %d: %w", cfg.ID, err)
		}
		log.Printf("connected to fragment %d (%s)", cfg.ID, cfg.Driver)
		fragments = append(fragments, New(cfg.ID, store))
	}

	set, err := NewSet(fragments)
	if err != nil {
		closeOpened()
		return nil, err
	}
	return set, nil
}

// Get returns the fragment with the given ID
func (s *Set) Get(id int) (*Fragment, error) {
	if id < 0 || id >= len(s.fragments) {
		return nil, fmt.Errorf("fragment %d: %w", id, ErrNoFragment)
	}
	return s.fragments[id], nil
}

// Len returns the number of fragments
func (s *Set) Len() int {
	return len(s.fragments)
}

// All returns the fragments ordered by ID.
// The slice is a copy; the fragments are shared.
func (s *Set) All() []*Fragment {
	out := make([]*Fragment, len(s.fragments))
	copy(out, s.fragments)
	return out
}

// Infos returns metadata for every fragment ordered by ID
func (s *Set) Infos() []Info {
	infos := make([]Info, 0, len(s.fragments))
	for _, f := range s.fragments {
		infos = append(infos, f.Info())
	}
	return infos
}

// Migrate creates the schema on every fragment
func (s *Set) Migrate(ctx context.Context) error {
	for _, f := range s.fragments {
		if err := f.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate fragment %d: %w", f.ID, err)
		}
	}
	return nil
}

// Close closes every fragment handle and reports all failures
func (s *Set) Close() error {
	var errs []error
	for _, f := range s.fragments {
		if err := f.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close fragment %d: %w", f.ID, err))
		}
	}
	if len(errs) == 0 {
		log.Println("all fragment connections closed")
	}
	return errors.Join(errs...)
}
