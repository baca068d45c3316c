package fragment_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/gradeshard/internal/fragment"
	"github.com/dreamware/gradeshard/internal/fragment/fragmenttest"
)

// TestNewSet tests building sets from fragments
func TestNewSet(t *testing.T) {
	s0 := fragmenttest.OpenStore(t, "a")
	s1 := fragmenttest.OpenStore(t, "b")

	t.Run("orders fragments by ID", func(t *testing.T) {
		set, err := fragment.NewSet([]*fragment.Fragment{fragment.New(1, s1), fragment.New(0, s0)})
		require.NoError(t, err)
		assert.Equal(t, 2, set.Len())

		all := set.All()
		require.Len(t, all, 2)
		assert.Equal(t, 0, all[0].ID)
		assert.Equal(t, 1, all[1].ID)
	})

	t.Run("rejects invalid layouts", func(t *testing.T) {
		tests := []struct {
			name  string
			frags []*fragment.Fragment
		}{
			{name: "empty", frags: nil},
			{name: "gap", frags: []*fragment.Fragment{fragment.New(0, s0), fragment.New(2, s1)}},
			{name: "duplicate", frags: []*fragment.Fragment{fragment.New(0, s0), fragment.New(0, s1)}},
			{name: "negative", frags: []*fragment.Fragment{fragment.New(-1, s0)}},
			{name: "nil store", frags: []*fragment.Fragment{fragment.New(0, nil)}},
			{name: "nil fragment", frags: []*fragment.Fragment{nil}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				set, err := fragment.NewSet(tt.frags)
				assert.Error(t, err)
				assert.Nil(t, set)
			})
		}
	})
}

// TestSetGet tests lookups by fragment ID
func TestSetGet(t *testing.T) {
	set := fragmenttest.NewSet(t, 3)

	for id := 0; id < 3; id++ {
		f, err := set.Get(id)
		require.NoError(t, err)
		assert.Equal(t, id, f.ID)
	}

	_, err := set.Get(3)
	assert.ErrorIs(t, err, fragment.ErrNoFragment)
	_, err = set.Get(-1)
	assert.ErrorIs(t, err, fragment.ErrNoFragment)
}

// TestSetAllIsCopy tests that callers cannot reorder the set
func TestSetAllIsCopy(t *testing.T) {
	set := fragmenttest.NewSet(t, 2)

	all := set.All()
	all[0], all[1] = all[1], all[0]

	f, err := set.Get(0)
	require.NoError(t, err)
	assert.Equal(t, 0, f.ID)
}

// TestSetInfos tests metadata reporting
func TestSetInfos(t *testing.T) {
	ctx := context.Background()
	set := fragmenttest.NewSet(t, 2)

	f, err := set.Get(1)
	require.NoError(t, err)
	_, err = f.Exec(ctx, "INSERT INTO course (course_id, department) VALUES (?, ?)", "CS101", "CS")
	require.NoError(t, err)

	infos := set.Infos()
	require.Len(t, infos, 2)
	assert.Equal(t, uint64(0), infos[0].Stats.Execs)
	assert.Equal(t, uint64(1), infos[1].Stats.Execs)
}

// TestOpenSet tests connecting to configured fragments
func TestOpenSet(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	t.Run("opens and migrates every fragment", func(t *testing.T) {
		set, err := fragment.OpenSet(ctx, []fragment.Config{
			{ID: 0, Driver: fragment.DriverSQLite, DSN: filepath.Join(dir, "frag_0.db")},
			{ID: 1, Driver: fragment.DriverSQLite, DSN: filepath.Join(dir, "frag_1.db")},
		})
		require.NoError(t, err)
		defer set.Close()

		assert.Equal(t, 2, set.Len())
		require.NoError(t, set.Migrate(ctx))

		for _, f := range set.All() {
			_, err := f.Exec(ctx, "INSERT INTO course (course_id, department) VALUES (?, ?)", "CS101", "CS")
			assert.NoError(t, err, "fragment %d", f.ID)
		}
	})

	t.Run("unknown driver fails", func(t *testing.T) {
		set, err := fragment.OpenSet(ctx, []fragment.Config{
			{ID: 0, Driver: fragment.DriverSQLite, DSN: filepath.Join(dir, "ok.db")},
			{ID: 1, Driver: "oracle", DSN: "x"},
		})
		assert.Error(t, err)
		assert.Nil(t, set)
	})

	t.Run("misnumbered configs fail", func(t *testing.T) {
		set, err := fragment.OpenSet(ctx, []fragment.Config{
			{ID: 1, Driver: fragment.DriverSQLite, DSN: filepath.Join(dir, "one.db")},
		})
		assert.Error(t, err)
		assert.Nil(t, set)
	})
}

// TestSetClose tests closing every handle
func TestSetClose(t *testing.T) {
	ctx := context.Background()
	set := fragmenttest.NewSet(t, 2)

	require.NoError(t, set.Close())
	for _, f := range set.All() {
		assert.Error(t, f.Ping(ctx), "fragment %d still open", f.ID)
	}
}
