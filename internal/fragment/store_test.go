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

// TestDialector tests driver name resolution
func TestDialector(t *testing.T) {
	tests := []struct {
		driver  string
		wantErr bool
	}{
		{driver: fragment.DriverPostgres},
		{driver: fragment.DriverMySQL},
		{driver: fragment.DriverSQLite},
		{driver: "oracle", wantErr: true},
		{driver: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			d, err := fragment.Dialector(tt.driver, "dsn")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.driver, d.Name())
		})
	}
}

// TestGormStore tests statements against a real SQLite fragment
func TestGormStore(t *testing.T) {
	ctx := context.Background()

	t.Run("exec reports affected rows", func(t *testing.T) {
		store := fragmenttest.OpenStore(t, "exec")

		n, err := store.Exec(ctx, "INSERT INTO student (student_id, name, age, email) VALUES (?, ?, ?, ?)",
			"S1", "Alice", 20, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = store.Exec(ctx, "UPDATE student SET age = ? WHERE student_id = ?", 21, "missing")
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
	})

	t.Run("query scans rows into structs", func(t *testing.T) {
		store := fragmenttest.OpenStore(t, "query")

		_, err := store.Exec(ctx, "INSERT INTO grade (student_id, course_id, score) VALUES (?, ?, ?)", "S1", "CS101", 90)
		require.NoError(t, err)
		_, err = store.Exec(ctx, "INSERT INTO grade (student_id, course_id, score) VALUES (?, ?, ?)", "S1", "MA101", 70)
		require.NoError(t, err)

		var grades []fragment.Grade
		err = store.Query(ctx, &grades, "SELECT student_id, course_id, score FROM grade WHERE student_id = ? ORDER BY course_id", "S1")
		require.NoError(t, err)
		require.Len(t, grades, 2)
		assert.Equal(t, fragment.Grade{StudentID: "S1", CourseID: "CS101", Score: 90}, grades[0])
		assert.Equal(t, fragment.Grade{StudentID: "S1", CourseID: "MA101", Score: 70}, grades[1])
	})

	t.Run("primary key violation is an error", func(t *testing.T) {
		store := fragmenttest.OpenStore(t, "dup")

		_, err := store.Exec(ctx, "INSERT INTO course (course_id, department) VALUES (?, ?)", "CS101", "CS")
		require.NoError(t, err)
		_, err = store.Exec(ctx, "INSERT INTO course (course_id, department) VALUES (?, ?)", "CS101", "MATH")
		assert.Error(t, err)
	})

	t.Run("upsert inserts then overwrites", func(t *testing.T) {
		store := fragmenttest.OpenStore(t, "upsert")
		keys, updates := []string{"course_id"}, []string{"department"}

		require.NoError(t, store.Upsert(ctx, &fragment.Course{CourseID: "CS101", Department: "CS"}, keys, updates))
		require.NoError(t, store.Upsert(ctx, &fragment.Course{CourseID: "CS101", Department: "MATH"}, keys, updates))
		require.NoError(t, store.Upsert(ctx, &fragment.Course{CourseID: "CS101", Department: "MATH"}, keys, updates))

		var courses []fragment.Course
		require.NoError(t, store.Query(ctx, &courses, "SELECT course_id, department FROM course"))
		assert.Equal(t, []fragment.Course{{CourseID: "CS101", Department: "MATH"}}, courses)
	})

	t.Run("ping and close", func(t *testing.T) {
		store, err := fragment.Open(fragment.DriverSQLite, filepath.Join(t.TempDir(), "ping.db"))
		require.NoError(t, err)

		require.NoError(t, store.Ping(ctx))
		require.NoError(t, store.Close())
		assert.Error(t, store.Ping(ctx))
	})

	t.Run("unsupported driver", func(t *testing.T) {
		_, err := fragment.Open("oracle", "whatever")
		assert.Error(t, err)
	})
}

// TestFragmentStats tests the per-fragment counters
func TestFragmentStats(t *testing.T) {
	ctx := context.Background()
	inner := fragmenttest.OpenStore(t, "stats")
	failing := fragmenttest.NewFailingStore(inner, nil)
	failing.SetFailing(false)

	f := fragment.New(2, failing)

	_, err := f.Exec(ctx, "INSERT INTO course (course_id, department) VALUES (?, ?)", "CS101", "CS")
	require.NoError(t, err)

	var courses []fragment.Course
	require.NoError(t, f.Query(ctx, &courses, "SELECT course_id, department FROM course"))
	assert.Len(t, courses, 1)

	failing.SetFailing(true)
	_, err = f.Exec(ctx, "DELETE FROM course")
	assert.ErrorIs(t, err, fragmenttest.ErrInjected)
	assert.ErrorIs(t, f.Ping(ctx), fragmenttest.ErrInjected)

	stats := f.GetStats()
	assert.Equal(t, uint64(2), stats.Execs)
	assert.Equal(t, uint64(1), stats.Queries)
	assert.Equal(t, uint64(1), stats.Failures)

	info := f.Info()
	assert.Equal(t, 2, info.ID)
	assert.Equal(t, stats, info.Stats)
}

// TestFragmentMigrate tests schema creation through the fragment
func TestFragmentMigrate(t *testing.T) {
	ctx := context.Background()

	store, err := fragment.Open(fragment.DriverSQLite, filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	defer store.Close()

	f := fragment.New(0, store)
	require.NoError(t, f.Migrate(ctx))
	// Running twice is harmless
	require.NoError(t, f.Migrate(ctx))

	_, err = f.Exec(ctx, "INSERT INTO student (student_id, name, age, email) VALUES (?, ?, ?, ?)", "S1", "A", 1, "a@x")
	require.NoError(t, err)

	plain := fragment.New(1, fragmenttest.NewFailingStore(nil, nil))
	assert.ErrorIs(t, plain.Migrate(ctx), fragment.ErrNotMigratable)
}
