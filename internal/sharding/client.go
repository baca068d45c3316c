package sharding

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dreamware/gradeshard/internal/fragment"
	"github.com/dreamware/gradeshard/internal/router"
)

// Operation names used in typed failures and logs.
const (
	OpInsertStudent  = "insert_student"
	OpInsertGrade    = "insert_grade"
	OpUpdateGrade    = "update_grade"
	OpDeleteGrade    = "delete_grade"
	OpUpsertCourse   = "upsert_course"
	OpStudentProfile = "student_profile"
	OpAvgScoreByDept = "avg_score_by_dept"
	OpMostCourses    = "most_courses"
)

const (
	insertStudentSQL = "INSERT INTO student (student_id, name, age, email) VALUES (?, ?, ?, ?)"
	insertGradeSQL   = "INSERT INTO grade (student_id, course_id, score) VALUES (?, ?, ?)"
	updateGradeSQL   = "UPDATE grade SET score = ? WHERE student_id = ? AND course_id = ?"
	deleteGradeSQL   = "DELETE FROM grade WHERE student_id = ? AND course_id = ?"
	profileSQL       = "SELECT name, email FROM student WHERE student_id = ?"

	deptPartialSQL = "SELECT c.department AS department, SUM(g.score) AS score_sum, COUNT(g.score) AS score_count " +
		"FROM grade g JOIN course c ON g.course_id = c.course_id " +
		"GROUP BY c.department"
	courseCountSQL = "SELECT student_id, COUNT(*) AS course_count FROM grade GROUP BY student_id"
)

// ErrEmptyCourseID is returned when a course write has no course ID.
var ErrEmptyCourseID = errors.New("course id cannot be empty")

type profileRow struct {
	Name  string `gorm:"column:name"`
	Email string `gorm:"column:email"`
}

// Client exposes the unsharded operation set over a fixed set of fragments.
// Writes and point reads go to the fragment that owns the student; the two
// reports fan out to every fragment and merge.
type Client struct {
	router    *router.Router
	fragments *fragment.Set
	timeout   time.Duration
}

// Option configures a Client
type Option func(*Client)

// WithTimeout bounds every operation; zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// New creates a client routing over every fragment in set.
func New(set *fragment.Set, opts ...Option) (*Client, error) {
	r, err := router.New(set.Len())
	if err != nil {
		return nil, err
	}

	c := &Client{
		router:    r,
		fragments: set,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NumFragments returns the number of fragments the client routes over
func (c *Client) NumFragments() int {
	return c.router.NumFragments()
}

// Fragments returns the underlying fragment set
func (c *Client) Fragments() *fragment.Set {
	return c.fragments
}

// FragmentFor returns the fragment index that owns a student.
func (c *Client) FragmentFor(studentID string) (int, error) {
	return c.route("route", studentID)
}

// InsertStudent stores a new student on its owning fragment.
func (c *Client) InsertStudent(ctx context.Context, studentID, name string, age int, email string) error {
	return c.exec(ctx, OpInsertStudent, studentID, insertStudentSQL, studentID, name, age, email)
}

// InsertGrade stores a grade on the fragment that owns the student.
func (c *Client) InsertGrade(ctx context.Context, studentID, courseID string, score int) error {
	return c.execGrade(ctx, OpInsertGrade, studentID, courseID, insertGradeSQL, studentID, courseID, score)
}

// UpdateGrade changes a score. Updating a missing grade is not an error.
func (c *Client) UpdateGrade(ctx context.Context, studentID, courseID string, newScore int) error {
	return c.execGrade(ctx, OpUpdateGrade, studentID, courseID, updateGradeSQL, newScore, studentID, courseID)
}

// DeleteGrade removes a student from a course. Deleting a missing grade is
// not an error.
func (c *Client) DeleteGrade(ctx context.Context, studentID, courseID string) error {
	return c.execGrade(ctx, OpDeleteGrade, studentID, courseID, deleteGradeSQL, studentID, courseID)
}

// GetStudentProfile returns "name,email" for a student, or ErrNotFound.
func (c *Client) GetStudentProfile(ctx context.Context, studentID string) (string, error) {
	f, err := c.owner(OpStudentProfile, studentID)
	if err != nil {
		return "", err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var rows []profileRow
	if err := f.Query(ctx, &rows, profileSQL, studentID); err != nil {
		return "", c.fail(OpStudentProfile, f.ID, err)
	}
	if len(rows) == 0 {
		return "", ErrNotFound
	}
	return rows[0].Name + "," + rows[0].Email, nil
}

// GetAvgScoreByDept returns the average score per department across all
// fragments, formatted as "dept:avg;dept:avg".
func (c *Client) GetAvgScoreByDept(ctx context.Context) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	partials := make([][]DeptPartial, c.fragments.Len())
	err := c.scatter(ctx, OpAvgScoreByDept, func(ctx context.Context, f *fragment.Fragment) error {
		var rows []DeptPartial
		if err := f.Query(ctx, &rows, deptPartialSQL); err != nil {
			return err
		}
		partials[f.ID] = rows
		return nil
	})
	if err != nil {
		return "", err
	}

	return MergeDeptAverages(partials), nil
}

// GetAllStudentsWithMostCourses returns the students holding the most
// grades across all fragments, sorted and comma-joined.
func (c *Client) GetAllStudentsWithMostCourses(ctx context.Context) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	partials := make([][]CourseCount, c.fragments.Len())
	err := c.scatter(ctx, OpMostCourses, func(ctx context.Context, f *fragment.Fragment) error {
		var rows []CourseCount
		if err := f.Query(ctx, &rows, courseCountSQL); err != nil {
			return err
		}
		partials[f.ID] = rows
		return nil
	})
	if err != nil {
		return "", err
	}

	return MergeMostCourses(partials), nil
}

// UpsertCourse writes a course to every fragment so each one can resolve
// departments for the grades it holds.
func (c *Client) UpsertCourse(ctx context.Context, courseID, department string) error {
	if err := CheckCourseID(OpUpsertCourse, courseID); err != nil {
		return err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	return c.scatter(ctx, OpUpsertCourse, func(ctx context.Context, f *fragment.Fragment) error {
		return upsertCourse(ctx, f, courseID, department)
	})
}

// Close closes every fragment handle
func (c *Client) Close() error {
	return c.fragments.Close()
}

// upsertCourse writes the course in one statement so that concurrent
// upserts of the same course cannot race on the primary key
func upsertCourse(ctx context.Context, f *fragment.Fragment, courseID, department string) error {
	course := &fragment.Course{CourseID: courseID, Department: department}
	return f.Upsert(ctx, course, []string{"course_id"}, []string{"department"})
}

// CheckCourseID rejects blank course IDs with a routing failure. Grade and
// course writes apply it before touching any fragment.
func CheckCourseID(op, courseID string) error {
	if strings.TrimSpace(courseID) == "" {
		return NewError(KindRouting, op, NoFragment, ErrEmptyCourseID)
	}
	return nil
}

// execGrade checks the course ID, then routes the write by student
func (c *Client) execGrade(ctx context.Context, op, studentID, courseID, query string, args ...any) error {
	if err := CheckCourseID(op, courseID); err != nil {
		return err
	}
	return c.exec(ctx, op, studentID, query, args...)
}

// exec routes a single-statement write to the owning fragment
func (c *Client) exec(ctx context.Context, op, studentID, query string, args ...any) error {
	f, err := c.owner(op, studentID)
	if err != nil {
		return err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if _, err := f.Exec(ctx, query, args...); err != nil {
		return c.fail(op, f.ID, err)
	}
	return nil
}

// owner resolves the fragment handle for a student
func (c *Client) owner(op, studentID string) (*fragment.Fragment, error) {
	id, err := c.route(op, studentID)
	if err != nil {
		return nil, err
	}

	f, err := c.fragments.Get(id)
	if err != nil {
		return nil, c.fail(op, id, err)
	}
	return f, nil
}

func (c *Client) route(op, studentID string) (int, error) {
	id, err := c.router.FragmentOf(studentID)
	if err != nil {
		log.Printf("%s: cannot route student %q: %v", op, studentID, err)
		return 0, NewError(KindRouting, op, NoFragment, err)
	}
	return id, nil
}

// fail converts a fragment error into a typed failure
func (c *Client) fail(op string, fragmentID int, err error) error {
	kind := classify(err)
	log.Printf("%s: fragment %d: %s: %v", op, fragmentID, kind, err)
	return NewError(kind, op, fragmentID, err)
}

// scatter runs fn once per fragment concurrently and waits for all of them.
// The first failure cancels the others and is returned as a query failure
// for the whole operation.
func (c *Client) scatter(ctx context.Context, op string, fn func(ctx context.Context, f *fragment.Fragment) error) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, f := range c.fragments.All() {
		f := f
		g.Go(func() error {
			if err := fn(gctx, f); err != nil {
				log.Printf("%s: fragment %d: %v", op, f.ID, err)
				return NewError(KindQuery, op, f.ID, err)
			}
			return nil
		})
	}

	return g.Wait()
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}
