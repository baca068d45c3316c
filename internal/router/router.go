package router

import (
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
)

// ErrUnroutable is returned for student IDs that cannot be mapped to a
// fragment (empty or whitespace-only).
var ErrUnroutable = errors.New("student id cannot be routed")

// Router maps student identifiers onto a fixed number of fragments.
type Router struct {
	// numFragments is the number of fragments in the deployment.
	// Fixed at construction; changing it would move existing students.
	numFragments int
}

// New creates a router over numFragments fragments.
//
// Parameters:
//   - numFragments: Total number of fragments (must be > 0)
//
// Returns:
//   - Router ready for lookups
//   - Error if numFragments is not positive
//
// Example:
//
//	r, err := router.New(3)
//	if err != nil {
//	    log.Fatalf("router: %v", err)
//	}
func New(numFragments int) (*Router, error) {
	if numFragments <= 0 {
		return nil, fmt.Errorf("invalid fragment count %d, must be > 0", numFragments)
	}
	return &Router{numFragments: numFragments}, nil
}

// FragmentOf determines which fragment owns a student, enabling
// deterministic placement of the student row and all of its grades.
//
// Hashing algorithm:
//   - FNV-1a 32-bit over the raw bytes of the ID
//   - Reduced modulo the fragment count
//   - No seed or process state: stable across restarts
//
// The same function routes every write and every point read, so a grade
// always lands next to its student.
//
// Parameters:
//   - studentID: The student identifier (used verbatim, not trimmed)
//
// Returns:
//   - Fragment index in range [0, NumFragments())
//   - ErrUnroutable if the ID is empty or only whitespace
//
// Thread Safety:
// Pure computation with no shared state; safe for concurrent use.
//
// Example:
//
//	idx, err := r.FragmentOf("S1")
//	// idx is the same for "S1" on every call and every process
func (r *Router) FragmentOf(studentID string) (int, error) {
	if strings.TrimSpace(studentID) == "" {
		return 0, ErrUnroutable
	}

	h := fnv.New32a()
	h.Write([]byte(studentID))

	return int(h.Sum32() % uint32(r.numFragments)), nil
}

// NumFragments returns the fragment count fixed at construction.
func (r *Router) NumFragments() int {
	return r.numFragments
}
