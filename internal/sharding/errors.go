package sharding

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/dreamware/gradeshard/internal/fragment"
)

// ErrNotFound is returned by point reads when the student does not exist.
// It is a valid empty outcome, not a failure.
var ErrNotFound = errors.New("student not found")

// Kind classifies a failure.
type Kind string

const (
	// KindConnection means a fragment handle was missing or unusable
	KindConnection Kind = "CONNECTION_FAILURE"
	// KindRouting means the student ID could not be mapped to a fragment
	KindRouting Kind = "ROUTING_FAILURE"
	// KindQuery means the fragment executed the statement and reported an error
	KindQuery Kind = "QUERY_FAILURE"
)

// NoFragment marks an Error that is not tied to a single fragment.
const NoFragment = -1

// Error is the typed failure returned by every Client operation.
type Error struct {
	Kind     Kind   // Failure class
	Op       string // Operation name, e.g. "insert_grade"
	Fragment int    // Fragment index, or NoFragment
	Err      error  // Underlying cause
}

// NewError builds a typed failure
func NewError(kind Kind, op string, fragmentID int, err error) *Error {
	return &Error{Kind: kind, Op: op, Fragment: fragmentID, Err: err}
}

func (e *Error) Error() string {
	if e.Fragment == NoFragment {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s on fragment %d: %v", e.Op, e.Kind, e.Fragment, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the failure kind of err, or "" if err is not a typed failure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is a typed failure of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// classify decides whether a fragment error means the handle is unusable
// or the statement itself failed.
func classify(err error) Kind {
	var netErr net.Error
	switch {
	case errors.Is(err, fragment.ErrNoFragment),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.As(err, &netErr):
		return KindConnection
	}
	// database/sql does not export its closed-pool error
	if strings.Contains(err.Error(), "database is closed") {
		return KindConnection
	}
	return KindQuery
}
