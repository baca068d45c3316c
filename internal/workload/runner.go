package workload

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/dreamware/gradeshard/internal/sharding"
)

// maxLineSize bounds a single trace line
const maxLineSize = 1 << 20

// Summary describes one replay.
type Summary struct {
	Lines   int           // Non-blank lines processed
	Writes  int           // Write commands executed
	Reads   int           // Read commands executed
	Errors  int           // Failed or malformed lines
	Elapsed time.Duration // Wall time of the replay
}

// Runner replays traces against an operation set.
type Runner struct {
	ops sharding.Operations
}

// NewRunner creates a runner for ops
func NewRunner(ops sharding.Operations) *Runner {
	return &Runner{ops: ops}
}

// Run executes every line of in, in order, and writes read results to out.
//
// Commands run sequentially; ordering between writes and later reads is
// exactly the trace order. Failures of single commands never stop the
// replay. Only I/O errors on in or out, or ctx being done, end it early.
func (r *Runner) Run(ctx context.Context, in io.Reader, out io.Writer) (sum Summary, err error) {
	start := time.Now()
	defer func() { sum.Elapsed = time.Since(start) }()

	w := bufio.NewWriter(out)
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)

	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		line := CleanLine(sc.Text())
		if line == "" {
			continue
		}
		sum.Lines++

		result, ok := r.exec(ctx, line, &sum)
		if !ok {
			continue
		}
		if _, err := fmt.Fprintln(w, result); err != nil {
			return sum, fmt.Errorf("write output: %w", err)
		}
	}
	if err := sc.Err(); err != nil {
		return sum, fmt.Errorf("read workload: %w", err)
	}
	if err := w.Flush(); err != nil {
		return sum, fmt.Errorf("write output: %w", err)
	}
	return sum, nil
}

// exec runs one line and returns the output line, if any
func (r *Runner) exec(ctx context.Context, line string, sum *Summary) (string, bool) {
	cmd, err := ParseCommand(line)
	if err != nil {
		sum.Errors++
		return "ERROR: " + err.Error(), true
	}

	if cmd.IsRead() {
		sum.Reads++
		result, err := r.read(ctx, cmd)
		switch {
		case errors.Is(err, sharding.ErrNotFound):
			return OutputNull, true
		case err != nil:
			sum.Errors++
			log.Printf("%s: %v", cmd.Name, err)
			return OutputError, true
		}
		return result, true
	}

	sum.Writes++
	if err := r.write(ctx, cmd); err != nil {
		sum.Errors++
		var perr *parseError
		if errors.As(err, &perr) {
			return "ERROR: " + perr.Error(), true
		}
		log.Printf("%s: %v", cmd.Name, err)
	}
	return "", false
}

func (r *Runner) read(ctx context.Context, cmd Command) (string, error) {
	switch cmd.Name {
	case CmdReadProfile:
		return r.ops.GetStudentProfile(ctx, cmd.Fields[1])
	case CmdReadScore:
		return r.ops.GetAvgScoreByDept(ctx)
	default:
		return r.ops.GetAllStudentsWithMostCourses(ctx)
	}
}

// parseError marks a malformed numeric field found while executing a write
type parseError struct {
	err error
}

func (e *parseError) Error() string { return e.err.Error() }

func (r *Runner) write(ctx context.Context, cmd Command) error {
	f := cmd.Fields
	switch cmd.Name {
	case CmdInsertStudent:
		age, err := cmd.Int(3)
		if err != nil {
			return &parseError{err}
		}
		return r.ops.InsertStudent(ctx, f[1], f[2], age, f[4])
	case CmdInsertGrade:
		score, err := cmd.Int(3)
		if err != nil {
			return &parseError{err}
		}
		return r.ops.InsertGrade(ctx, f[1], f[2], score)
	case CmdUpdateGrade:
		score, err := cmd.Int(3)
		if err != nil {
			return &parseError{err}
		}
		return r.ops.UpdateGrade(ctx, f[1], f[2], score)
	default:
		return r.ops.DeleteGrade(ctx, f[1], f[2])
	}
}
