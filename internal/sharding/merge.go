package sharding

import (
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

// DeptPartial is one fragment's score total for one department.
type DeptPartial struct {
	Department string `gorm:"column:department"`
	Sum        int64  `gorm:"column:score_sum"`
	Count      int64  `gorm:"column:score_count"`
}

// CourseCount is the number of grades one fragment holds for a student.
type CourseCount struct {
	StudentID string `gorm:"column:student_id"`
	Courses   int64  `gorm:"column:course_count"`
}

type deptTotal struct {
	sum   int64
	count int64
}

// MergeDeptAverages combines per-fragment department totals into the
// formatted "dept:avg;dept:avg" string.
//
// Sums and counts are accumulated across all fragments first and divided
// once per department. Departments are sorted ascending.
func MergeDeptAverages(partials [][]DeptPartial) string {
	totals := make(map[string]*deptTotal)
	for _, rows := range partials {
		for _, p := range rows {
			t := totals[p.Department]
			if t == nil {
				t = &deptTotal{}
				totals[p.Department] = t
			}
			t.sum += p.Sum
			t.count += p.Count
		}
	}

	if len(totals) == 0 {
		return ""
	}

	depts := make([]string, 0, len(totals))
	for dept := range totals {
		depts = append(depts, dept)
	}
	slices.Sort(depts)

	var b strings.Builder
	for i, dept := range depts {
		if i > 0 {
			b.WriteByte(';')
		}
		t := totals[dept]
		b.WriteString(dept)
		b.WriteByte(':')
		b.WriteString(FormatTenths(t.sum, t.count))
	}
	return b.String()
}

// MergeMostCourses returns every student holding the global maximum number
// of grades, sorted ascending and comma-joined. Students are expected on one
// fragment only; counts for the same ID are still added together.
func MergeMostCourses(partials [][]CourseCount) string {
	counts := make(map[string]int64)
	for _, rows := range partials {
		for _, c := range rows {
			counts[c.StudentID] += c.Courses
		}
	}

	var maxCount int64
	var top []string
	for id, n := range counts {
		switch {
		case n > maxCount:
			maxCount = n
			top = append(top[:0], id)
		case n == maxCount && n > 0:
			top = append(top, id)
		}
	}

	if maxCount == 0 || len(top) == 0 {
		return ""
	}

	slices.Sort(top)
	return strings.Join(top, ",")
}

// FormatTenths renders sum/count with one decimal, rounding half away from
// zero on the exact quotient. A zero count renders as "0.0".
func FormatTenths(sum, count int64) string {
	if count == 0 {
		return "0.0"
	}

	num := sum * 10
	den := count
	neg := (num < 0) != (den < 0)
	if num < 0 {
		num = -num
	}
	if den < 0 {
		den = -den
	}

	tenths := (2*num + den) / (2 * den)

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(strconv.FormatInt(tenths/10, 10))
	b.WriteByte('.')
	b.WriteString(strconv.FormatInt(tenths%10, 10))
	return b.String()
}
