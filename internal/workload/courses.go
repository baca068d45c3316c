package workload

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dreamware/gradeshard/internal/sharding"
)

// LoadCourses reads "course_id,department" rows and upserts each course.
// A header row starting with "course_id" is skipped. It returns the number
// of courses written.
func LoadCourses(ctx context.Context, ops sharding.Operations, r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	n := 0
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("courses row %d: %w", row, err)
		}
		if row == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "course_id") {
			continue
		}
		if len(rec) < 2 {
			return n, fmt.Errorf("courses row %d: want course_id,department, got %d fields", row, len(rec))
		}
		if err := ops.UpsertCourse(ctx, strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1])); err != nil {
			return n, fmt.Errorf("courses row %d: %w", row, err)
		}
		n++
	}
}
