// Package sharding implements the fragment client: the unsharded operation
// set executed over N fragments with results identical to a single database.
//
// # Overview
//
//	            ┌──────────────────────────┐
//	request ──► │          Client          │
//	            │  router   ─ FNV-1a % N   │
//	            │  scatter  ─ errgroup     │
//	            │  merge    ─ pure reduce  │
//	            └────┬──────────┬──────────┘
//	                 │          │
//	        ┌────────▼─┐  ┌─────▼────┐  ┌──────────┐
//	        │ frag_0   │  │ frag_1   │  │ frag_N-1 │
//	        └──────────┘  └──────────┘  └──────────┘
//
// # Write path
//
// InsertStudent, InsertGrade, UpdateGrade and DeleteGrade route on the
// student ID and run exactly one statement on the owning fragment. No other
// fragment is touched and there is no cross-fragment transaction.
//
// # Reports
//
// GetAvgScoreByDept asks every fragment for per-department SUM and COUNT,
// adds them up, and divides once. Averaging per-fragment averages would be
// wrong whenever fragments hold different numbers of grades for a
// department:
//
//	frag A: CS {90, 100}   frag B: CS {70}
//	correct: (90+100+70)/3 = 86.7
//	wrong:   (95+70)/2     = 82.5
//
// GetAllStudentsWithMostCourses counts grades per student on each fragment.
// Because grades are routed by student, each count is already complete; the
// merge only takes the global maximum and collects the ties.
//
// Averages are printed with one decimal, rounded half away from zero on the
// exact quotient (86.65 → 86.7), with '.' as the separator.
//
// # Failures
//
// Every failure is an *Error carrying a Kind:
//   - CONNECTION_FAILURE: handle missing, closed, timed out or unreachable
//   - ROUTING_FAILURE: blank student ID
//   - QUERY_FAILURE: the fragment rejected the statement
//
// A missing student is ErrNotFound, which is not a failure. The reports never
// return partial results: any fragment failing turns the whole report into a
// QUERY_FAILURE.
package sharding
