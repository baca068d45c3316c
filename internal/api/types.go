package api

import (
	"github.com/dreamware/gradeshard/internal/fragment"
	"github.com/dreamware/gradeshard/internal/health"
)

// StudentRequest is the body of POST /students
type StudentRequest struct {
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Age       int    `json:"age"`
}

// GradeRequest is the body of POST /grades
type GradeRequest struct {
	StudentID string `json:"student_id"`
	CourseID  string `json:"course_id"`
	Score     int    `json:"score"`
}

// ScoreRequest is the body of PUT /grades/:student_id/:course_id
type ScoreRequest struct {
	Score int `json:"score"`
}

// CourseRequest is the body of PUT /courses/:course_id
type CourseRequest struct {
	Department string `json:"department"`
}

// ProfileResponse is returned by GET /students/:student_id/profile
type ProfileResponse struct {
	Profile string `json:"profile"`
}

// ResultResponse is returned by the report endpoints
type ResultResponse struct {
	Result string `json:"result"`
}

// ErrorResponse describes a failed request.
// Kind is empty for malformed requests and missing students.
type ErrorResponse struct {
	Error    string `json:"error"`
	Kind     string `json:"kind,omitempty"`
	Op       string `json:"op,omitempty"`
	Fragment int    `json:"fragment"`
}

// FragmentStatus is one entry of GET /fragments
type FragmentStatus struct {
	fragment.Info
	Health *health.FragmentHealth `json:"health,omitempty"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status    string `json:"status"`
	Fragments int    `json:"fragments"`
}
