package workload

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCompare tests line-by-line comparison
func TestCompare(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		actual   string
		want     Report
	}{
		{
			name: "both empty",
			want: Report{},
		},
		{
			name:     "identical",
			expected: "a\nb\nc\n",
			actual:   "a\nb\nc\n",
			want:     Report{Total: 3, Matching: 3, Accuracy: 100},
		},
		{
			name:     "one differing",
			expected: "a\nb\nc\nd\n",
			actual:   "a\nX\nc\nd\n",
			want:     Report{Total: 4, Differing: 1, Matching: 3, Accuracy: 75},
		},
		{
			name:     "actual shorter",
			expected: "a\nb\n",
			actual:   "a\n",
			want:     Report{Total: 2, Differing: 1, Matching: 1, Accuracy: 50},
		},
		{
			name:     "missing line compares as empty",
			expected: "a\n\n",
			actual:   "a\n",
			want:     Report{Total: 2, Differing: 0, Matching: 2, Accuracy: 100},
		},
		{
			name:     "no trailing newline",
			expected: "a\nb",
			actual:   "a\nb\n",
			want:     Report{Total: 2, Matching: 2, Accuracy: 100},
		},
		{
			name:     "crlf endings",
			expected: "a\r\nb\r\n",
			actual:   "a\nb\n",
			want:     Report{Total: 2, Matching: 2, Accuracy: 100},
		},
		{
			name:     "trailing spaces matter",
			expected: "a \n",
			actual:   "a\n",
			want:     Report{Total: 1, Differing: 1, Accuracy: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compare(strings.NewReader(tt.expected), strings.NewReader(tt.actual))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestReportString tests the printed format
func TestReportString(t *testing.T) {
	r := Report{Total: 3, Differing: 1, Matching: 2, Accuracy: 200.0 / 3}
	assert.Equal(t, "Total lines: 3\nDiffering lines: 1\nMatching lines: 2\nAccuracy: 66.67%\n", r.String())
	assert.Equal(t, "Total lines: 0\nDiffering lines: 0\nMatching lines: 0\nAccuracy: 0.00%\n", Report{}.String())
}

// TestCompareFiles tests comparison of files on disk
func TestCompareFiles(t *testing.T) {
	dir := t.TempDir()
	exp := filepath.Join(dir, "expected_output.txt")
	act := filepath.Join(dir, "output.txt")
	require.NoError(t, os.WriteFile(exp, []byte("S1\nCS:80.0\n"), 0o600))
	require.NoError(t, os.WriteFile(act, []byte("S1\nCS:80.1\n"), 0o600))

	r, err := CompareFiles(exp, act)
	require.NoError(t, err)
	assert.Equal(t, 50.0, r.Accuracy)

	_, err = CompareFiles(filepath.Join(dir, "absent.txt"), act)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// TestLoadCourses tests course seeding from CSV
func TestLoadCourses(t *testing.T) {
	ops := &recordingOps{}
	n, err := LoadCourses(context.Background(), ops, strings.NewReader("course_id,department\nC1, CS\n\nC2,\"MATH, APPLIED\"\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"upsert_course C1 CS", "upsert_course C2 MATH, APPLIED"}, ops.calls)

	n, err = LoadCourses(context.Background(), &recordingOps{}, strings.NewReader("C9,ART\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, n, "no header")

	_, err = LoadCourses(context.Background(), &recordingOps{}, strings.NewReader("C1\n"))
	assert.Error(t, err)

	failing := &recordingOps{writeErr: errors.New("down")}
	n, err = LoadCourses(context.Background(), failing, strings.NewReader("C1,CS\nC2,CS\n"))
	assert.Error(t, err)
	assert.Zero(t, n)
}
