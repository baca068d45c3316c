package workload

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Report is a line-by-line comparison of two output files.
type Report struct {
	Total     int     // Lines in the longer file
	Differing int     // Positions where the files differ
	Matching  int     // Total - Differing
	Accuracy  float64 // Matching as a percentage of Total; 0 when both are empty
}

// String renders the report in the fixed four-line format
func (r Report) String() string {
	return fmt.Sprintf("Total lines: %d\nDiffering lines: %d\nMatching lines: %d\nAccuracy: %.2f%%\n",
		r.Total, r.Differing, r.Matching, r.Accuracy)
}

// Compare compares expected and actual line by line. A missing line on
// either side counts as an empty line.
func Compare(expected, actual io.Reader) (Report, error) {
	exp, err := readLines(expected)
	if err != nil {
		return Report{}, fmt.Errorf("read expected: %w", err)
	}
	act, err := readLines(actual)
	if err != nil {
		return Report{}, fmt.Errorf("read actual: %w", err)
	}

	var r Report
	r.Total = max(len(exp), len(act))
	for i := 0; i < r.Total; i++ {
		if lineAt(exp, i) != lineAt(act, i) {
			r.Differing++
		}
	}
	r.Matching = r.Total - r.Differing
	if r.Total > 0 {
		r.Accuracy = float64(r.Matching) / float64(r.Total) * 100
	}
	return r, nil
}

// CompareFiles opens both paths and compares them
func CompareFiles(expectedPath, actualPath string) (Report, error) {
	exp, err := os.Open(expectedPath)
	if err != nil {
		return Report{}, err
	}
	defer exp.Close()

	act, err := os.Open(actualPath)
	if err != nil {
		return Report{}, err
	}
	defer act.Close()

	return Compare(exp, act)
}

// readLines splits on any newline convention; a final newline does not
// start another line
func readLines(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	s := strings.ReplaceAll(string(data), "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n"), nil
}

func lineAt(lines []string, i int) string {
	if i < len(lines) {
		return lines[i]
	}
	return ""
}
