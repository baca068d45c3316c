// Package fragment manages the database handles behind each partition of the
// student/grade dataset.
//
// # Overview
//
// A fragment is one independently addressable database holding the rows of
// the students routed to it, plus a full copy of the course table. Each
// fragment has the same schema as the single unsharded database:
//
//	student(student_id PK, name, age, email)
//	grade(student_id, course_id, score, PK(student_id, course_id))
//	course(course_id PK, department)
//
// # Architecture
//
//	┌─────────────────────────────────────┐
//	│              Set                    │
//	│   fragments[0..N-1], fixed at start │
//	└─────────────────────────────────────┘
//	                 │
//	    ┌────────────┼────────────┐
//	    ▼            ▼            ▼
//	┌────────┐  ┌────────┐  ┌────────┐
//	│Fragment│  │Fragment│  │Fragment│
//	│ 0      │  │ 1      │  │ N-1    │
//	│ Stats  │  │ Stats  │  │ Stats  │
//	└────────┘  └────────┘  └────────┘
//	    │            │            │
//	    ▼            ▼            ▼
//	┌─────────────────────────────────────┐
//	│         Store (GormStore)           │
//	│   postgres │ mysql │ sqlite         │
//	└─────────────────────────────────────┘
//
// # Store
//
// Store is the only surface the rest of the system needs:
//   - Exec(query, args) - run a statement, return rows affected
//   - Query(dest, query, args) - run a query, scan rows into a slice
//   - Ping() - check reachability
//   - Close() - release connections
//
// GormStore implements it with gorm and one of three dialects. Statements
// use "?" placeholders; gorm rewrites them for PostgreSQL.
//
// # Thread Safety
//
// A Set never changes after it is built, so lookups take no locks. Fragment
// counters use atomic operations. GormStore is safe for concurrent use; the
// SQLite dialect is limited to one open connection.
//
// # Testing
//
// Package fragmenttest builds sets of SQLite fragments in a temp directory
// and offers a Store wrapper that fails on demand.
package fragment
