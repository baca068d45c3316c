// Package router maps student identifiers to the fragment that owns them.
//
// # Overview
//
// Every student row, and every grade row belonging to that student, lives on
// exactly one fragment. The Router is the single place that decides which one.
// It holds no state beyond the fragment count, so the assignment is derived
// rather than stored: any process that knows N can recompute it.
//
// # Placement
//
//	student_id ──► FNV-1a (32-bit) ──► hash % N ──► fragment index
//
//	"S1"   → 0x........ → 1
//	"S2"   → 0x........ → 0
//	"S100" → 0x........ → 2
//
// Properties relied on by the rest of the system:
//   - Total: every non-blank ID maps to some index in [0, N)
//   - Deterministic: no seed, no map iteration, no clock
//   - Shared: writes and point reads use the same function
//
// # Co-location
//
// Grades are routed by student_id, never by course_id. A student's grades are
// therefore always on the student's fragment, which lets per-student course
// counts be computed locally on each fragment without a cross-fragment merge.
//
// # Limits
//
// N is fixed for the lifetime of a Router. Changing N would move students
// between fragments; re-partitioning is not supported.
package router
