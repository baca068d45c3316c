package sharding

import "context"

// Operations is the unsharded operation set. *Client implements it over
// local fragment handles; the HTTP client in package api implements it
// against a remote server.
type Operations interface {
	InsertStudent(ctx context.Context, studentID, name string, age int, email string) error
	InsertGrade(ctx context.Context, studentID, courseID string, score int) error
	UpdateGrade(ctx context.Context, studentID, courseID string, newScore int) error
	DeleteGrade(ctx context.Context, studentID, courseID string) error
	UpsertCourse(ctx context.Context, courseID, department string) error
	GetStudentProfile(ctx context.Context, studentID string) (string, error)
	GetAvgScoreByDept(ctx context.Context) (string, error)
	GetAllStudentsWithMostCourses(ctx context.Context) (string, error)
}

var _ Operations = (*Client)(nil)
