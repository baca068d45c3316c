// Package workload replays operation traces against any implementation of
// sharding.Operations and compares the resulting output files.
//
// A trace has one command per line:
//
//	INSERT_STUDENT,<student_id>,<name>,<age>,<email>
//	INSERT_GRADE,<student_id>,<course_id>,<score>
//	UPDATE_GRADE,<student_id>,<course_id>,<score>
//	DELETE_STUDENT_COURSE,<student_id>,<course_id>
//	READ_PROFILE,<student_id>
//	READ_SCORE
//	READ_ALL
//
// Reads write one output line each; writes write nothing unless the line is
// malformed. Running the same trace against the sharded client and against a
// single database must produce identical output.
package workload

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Trace command names
const (
	CmdInsertStudent = "INSERT_STUDENT"
	CmdInsertGrade   = "INSERT_GRADE"
	CmdUpdateGrade   = "UPDATE_GRADE"
	CmdDeleteGrade   = "DELETE_STUDENT_COURSE"
	CmdReadProfile   = "READ_PROFILE"
	CmdReadScore     = "READ_SCORE"
	CmdReadAll       = "READ_ALL"
)

// Output markers for reads
const (
	OutputNull  = "NULL"
	OutputError = "ERROR"
)

var errEmptyCommand = errors.New("empty command")

// arity is the number of fields each command needs, including its name.
// Extra fields are ignored.
var arity = map[string]int{
	CmdInsertStudent: 5,
	CmdInsertGrade:   4,
	CmdUpdateGrade:   4,
	CmdDeleteGrade:   3,
	CmdReadProfile:   2,
	CmdReadScore:     1,
	CmdReadAll:       1,
}

// Command is one parsed trace line.
type Command struct {
	Name   string
	Fields []string // Fields[0] is Name
}

// IsRead reports whether the command produces an output line on success
func (c Command) IsRead() bool {
	switch c.Name {
	case CmdReadProfile, CmdReadScore, CmdReadAll:
		return true
	}
	return false
}

// CleanLine trims control characters and spaces from both ends of a line.
func CleanLine(line string) string {
	return strings.TrimFunc(line, func(r rune) bool {
		return r <= ' '
	})
}

// SplitFields splits a line on commas and drops trailing empty fields.
// Inner empty fields are kept.
func SplitFields(line string) []string {
	fields := strings.Split(line, ",")
	for len(fields) > 0 && fields[len(fields)-1] == "" {
		fields = fields[:len(fields)-1]
	}
	return fields
}

// ParseCommand parses a cleaned, non-empty trace line.
func ParseCommand(line string) (Command, error) {
	fields := SplitFields(line)
	if len(fields) == 0 {
		return Command{}, errEmptyCommand
	}

	cmd := Command{Name: fields[0], Fields: fields}
	need, ok := arity[cmd.Name]
	if !ok {
		return cmd, &UnknownCommandError{Name: cmd.Name}
	}
	if len(fields) < need {
		return cmd, fmt.Errorf("%s expects %d fields, got %d", cmd.Name, need-1, len(fields)-1)
	}
	return cmd, nil
}

// UnknownCommandError is returned for command names outside the trace format
type UnknownCommandError struct {
	Name string
}

func (e *UnknownCommandError) Error() string {
	return "Unknown command " + e.Name
}

// Int parses field i as a base-10 integer
func (c Command) Int(i int) (int, error) {
	n, err := strconv.Atoi(c.Fields[i])
	if err != nil {
		return 0, fmt.Errorf("%s: invalid number %q", c.Name, c.Fields[i])
	}
	return n, nil
}
