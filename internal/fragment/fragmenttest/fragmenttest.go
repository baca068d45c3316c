// Package fragmenttest provides fragment sets backed by SQLite files for
// tests, plus a store that fails on demand.
package fragmenttest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/dreamware/gradeshard/internal/fragment"
)

// ErrInjected is the default error returned by FailingStore.
var ErrInjected = errors.New("injected fragment failure")

// OpenStore opens a migrated SQLite store in the test's temp directory.
func OpenStore(t testing.TB, name string) *fragment.GormStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), name+".db")
	store, err := fragment.Open(fragment.DriverSQLite, path)
	if err != nil {
		t.Fatalf("open sqlite fragment %s: %v", name, err)
	}
	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("migrate sqlite fragment %s: %v", name, err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// NewSet returns a set of n migrated SQLite fragments.
func NewSet(t testing.TB, n int) *fragment.Set {
	t.Helper()

	stores := make([]fragment.Store, n)
	for i := 0; i < n; i++ {
		stores[i] = OpenStore(t, fmt.Sprintf("frag_%d", i))
	}
	return NewSetWithStores(t, stores...)
}

// NewSetWithStores builds a set whose fragment i uses stores[i].
func NewSetWithStores(t testing.TB, stores ...fragment.Store) *fragment.Set {
	t.Helper()

	frags := make([]*fragment.Fragment, len(stores))
	for i, s := range stores {
		frags[i] = fragment.New(i, s)
	}
	set, err := fragment.NewSet(frags)
	if err != nil {
		t.Fatalf("build fragment set: %v", err)
	}
	return set
}

// FailingStore wraps a store and fails every call while Fail is set.
type FailingStore struct {
	fragment.Store
	Err  error
	fail atomic.Bool
}

// NewFailingStore wraps inner; it starts out failing.
func NewFailingStore(inner fragment.Store, err error) *FailingStore {
	if err == nil {
		err = ErrInjected
	}
	s := &FailingStore{Store: inner, Err: err}
	s.fail.Store(true)
	return s
}

// SetFailing toggles failure injection
func (s *FailingStore) SetFailing(fail bool) {
	s.fail.Store(fail)
}

func (s *FailingStore) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	if s.fail.Load() {
		return 0, s.Err
	}
	return s.Store.Exec(ctx, query, args...)
}

func (s *FailingStore) Query(ctx context.Context, dest any, query string, args ...any) error {
	if s.fail.Load() {
		return s.Err
	}
	return s.Store.Query(ctx, dest, query, args...)
}

func (s *FailingStore) Upsert(ctx context.Context, value any, keys []string, updates []string) error {
	if s.fail.Load() {
		return s.Err
	}
	return s.Store.Upsert(ctx, value, keys, updates)
}

func (s *FailingStore) Ping(ctx context.Context) error {
	if s.fail.Load() {
		return s.Err
	}
	return s.Store.Ping(ctx)
}

// Close closes the wrapped store if there is one
func (s *FailingStore) Close() error {
	if s.Store == nil {
		return nil
	}
	return s.Store.Close()
}
