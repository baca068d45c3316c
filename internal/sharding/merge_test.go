package sharding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestFormatTenths tests rounding and formatting of averages
func TestFormatTenths(t *testing.T) {
	tests := []struct {
		name  string
		sum   int64
		count int64
		want  string
	}{
		{name: "whole number", sum: 160, count: 2, want: "80.0"},
		{name: "repeating third rounds up", sum: 260, count: 3, want: "86.7"},
		{name: "repeating third rounds down", sum: 100, count: 3, want: "33.3"},
		{name: "exact tie rounds up", sum: 329, count: 4, want: "82.3"},   // 82.25
		{name: "tie below odd digit", sum: 1733, count: 20, want: "86.7"}, // 86.65
		{name: "tie at .x5 with even digit", sum: 1, count: 20, want: "0.1"},
		{name: "just below tie", sum: 3289, count: 40, want: "82.2"}, // 82.225
		{name: "zero sum", sum: 0, count: 5, want: "0.0"},
		{name: "zero count", sum: 0, count: 0, want: "0.0"},
		{name: "single grade", sum: 7, count: 1, want: "7.0"},
		{name: "large values", sum: 9_999_999_999, count: 1, want: "9999999999.0"},
		{name: "carry into units", sum: 1999, count: 20, want: "100.0"}, // 99.95
		{name: "negative tie away from zero", sum: -329, count: 4, want: "-82.3"},
		{name: "small negative keeps sign", sum: -1, count: 30, want: "-0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTenths(tt.sum, tt.count))
		})
	}
}

// TestMergeDeptAverages tests the department merge
func TestMergeDeptAverages(t *testing.T) {
	tests := []struct {
		name     string
		partials [][]DeptPartial
		want     string
	}{
		{
			name:     "no fragments",
			partials: nil,
			want:     "",
		},
		{
			name:     "fragments with no grades",
			partials: [][]DeptPartial{nil, {}, nil},
			want:     "",
		},
		{
			name: "two departments across two fragments",
			partials: [][]DeptPartial{
				{{Department: "CS", Sum: 90, Count: 1}},
				{{Department: "CS", Sum: 70, Count: 1}, {Department: "MATH", Sum: 80, Count: 1}},
			},
			want: "CS:80.0;MATH:80.0",
		},
		{
			name: "unequal counts use global sum over global count",
			partials: [][]DeptPartial{
				{{Department: "CS", Sum: 190, Count: 2}},
				{{Department: "CS", Sum: 70, Count: 1}, {Department: "MATH", Sum: 80, Count: 1}},
			},
			// Not (95+70)/2 = 82.5
			want: "CS:86.7;MATH:80.0",
		},
		{
			name: "departments sorted regardless of fragment order",
			partials: [][]DeptPartial{
				{{Department: "PHYS", Sum: 50, Count: 1}},
				{{Department: "ART", Sum: 60, Count: 1}},
				{{Department: "BIO", Sum: 70, Count: 1}},
			},
			want: "ART:60.0;BIO:70.0;PHYS:50.0",
		},
		{
			name: "byte order puts uppercase first",
			partials: [][]DeptPartial{
				{{Department: "math", Sum: 1, Count: 1}, {Department: "MATH", Sum: 2, Count: 1}},
			},
			want: "MATH:2.0;math:1.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MergeDeptAverages(tt.partials))
		})
	}
}

// TestMergeDeptAveragesPartitionInvariant tests that splitting the same
// grades differently yields the same output
func TestMergeDeptAveragesPartitionInvariant(t *testing.T) {
	grades := []DeptPartial{
		{Department: "CS", Sum: 90, Count: 1},
		{Department: "CS", Sum: 100, Count: 1},
		{Department: "CS", Sum: 70, Count: 1},
		{Department: "MATH", Sum: 80, Count: 1},
		{Department: "MATH", Sum: 55, Count: 1},
		{Department: "ART", Sum: 99, Count: 1},
	}

	split := func(n int) [][]DeptPartial {
		out := make([][]DeptPartial, n)
		for i, g := range grades {
			out[i%n] = append(out[i%n], g)
		}
		return out
	}

	want := MergeDeptAverages(split(1))
	assert.Equal(t, "ART:99.0;CS:86.7;MATH:67.5", want)
	for _, n := range []int{2, 3, 5, 6} {
		assert.Equal(t, want, MergeDeptAverages(split(n)), "split across %d fragments", n)
	}
}

// TestMergeMostCourses tests the most-courses merge
func TestMergeMostCourses(t *testing.T) {
	tests := []struct {
		name     string
		partials [][]CourseCount
		want     string
	}{
		{
			name:     "no grades anywhere",
			partials: [][]CourseCount{nil, nil},
			want:     "",
		},
		{
			name: "single leader",
			partials: [][]CourseCount{
				{{StudentID: "S1", Courses: 2}},
				{{StudentID: "S2", Courses: 3}},
			},
			want: "S2",
		},
		{
			name: "tie across fragments",
			partials: [][]CourseCount{
				{{StudentID: "S1", Courses: 3}, {StudentID: "S3", Courses: 1}},
				{{StudentID: "S2", Courses: 3}},
			},
			want: "S1,S2",
		},
		{
			name: "ties sorted lexicographically not numerically",
			partials: [][]CourseCount{
				{{StudentID: "S10", Courses: 2}},
				{{StudentID: "S9", Courses: 2}},
				{{StudentID: "S100", Courses: 2}},
			},
			want: "S10,S100,S9",
		},
		{
			name: "zero counts are excluded",
			partials: [][]CourseCount{
				{{StudentID: "S1", Courses: 0}},
			},
			want: "",
		},
		{
			name: "same student on two fragments is summed",
			partials: [][]CourseCount{
				{{StudentID: "S1", Courses: 2}},
				{{StudentID: "S1", Courses: 2}, {StudentID: "S2", Courses: 3}},
			},
			want: "S1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MergeMostCourses(tt.partials))
		})
	}
}
