// Package api exposes the fragment client over HTTP with gin, and provides
// a matching HTTP client.
//
// Routes:
//
//	GET    /health
//	GET    /fragments
//	POST   /students
//	GET    /students/:student_id/profile
//	POST   /grades
//	PUT    /grades/:student_id/:course_id
//	DELETE /grades/:student_id/:course_id
//	PUT    /courses/:course_id
//	GET    /reports/avg-score-by-dept
//	GET    /reports/most-courses
//
// Failures are returned as ErrorResponse with a status derived from the
// failure kind: 400 routing, 503 connection, 500 query, 404 not found.
package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dreamware/gradeshard/internal/health"
	"github.com/dreamware/gradeshard/internal/sharding"
)

// Server serves the operation set of one fragment client.
type Server struct {
	client  *sharding.Client
	monitor *health.Monitor
	engine  *gin.Engine
}

// NewServer builds the router. monitor may be nil.
func NewServer(client *sharding.Client, monitor *health.Monitor) *Server {
	s := &Server{
		client:  client,
		monitor: monitor,
		engine:  gin.Default(),
	}

	// Student IDs may contain escaped slashes
	s.engine.UseRawPath = true

	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/fragments", s.handleFragments)
	s.engine.POST("/students", s.handleInsertStudent)
	s.engine.GET("/students/:student_id/profile", s.handleProfile)
	s.engine.POST("/grades", s.handleInsertGrade)
	s.engine.PUT("/grades/:student_id/:course_id", s.handleUpdateGrade)
	s.engine.DELETE("/grades/:student_id/:course_id", s.handleDeleteGrade)
	s.engine.PUT("/courses/:course_id", s.handleUpsertCourse)
	s.engine.GET("/reports/avg-score-by-dept", s.handleAvgScoreByDept)
	s.engine.GET("/reports/most-courses", s.handleMostCourses)

	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Fragments: s.client.NumFragments()})
}

func (s *Server) handleFragments(c *gin.Context) {
	infos := s.client.Fragments().Infos()
	out := make([]FragmentStatus, 0, len(infos))
	for _, info := range infos {
		st := FragmentStatus{Info: info}
		if s.monitor != nil {
			st.Health = s.monitor.Get(info.ID)
		}
		out = append(out, st)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleInsertStudent(c *gin.Context) {
	var req StudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := s.client.InsertStudent(c.Request.Context(), req.StudentID, req.Name, req.Age, req.Email); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleProfile(c *gin.Context) {
	profile, err := s.client.GetStudentProfile(c.Request.Context(), c.Param("student_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ProfileResponse{Profile: profile})
}

func (s *Server) handleInsertGrade(c *gin.Context) {
	var req GradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := s.client.InsertGrade(c.Request.Context(), req.StudentID, req.CourseID, req.Score); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleUpdateGrade(c *gin.Context) {
	var req ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	err := s.client.UpdateGrade(c.Request.Context(), c.Param("student_id"), c.Param("course_id"), req.Score)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleDeleteGrade(c *gin.Context) {
	if err := s.client.DeleteGrade(c.Request.Context(), c.Param("student_id"), c.Param("course_id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleUpsertCourse(c *gin.Context) {
	var req CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := s.client.UpsertCourse(c.Request.Context(), c.Param("course_id"), req.Department); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleAvgScoreByDept(c *gin.Context) {
	result, err := s.client.GetAvgScoreByDept(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ResultResponse{Result: result})
}

func (s *Server) handleMostCourses(c *gin.Context) {
	result, err := s.client.GetAllStudentsWithMostCourses(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ResultResponse{Result: result})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Fragment: sharding.NoFragment})
}

// writeError maps a client error to a status code and body
func writeError(c *gin.Context, err error) {
	if errors.Is(err, sharding.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Fragment: sharding.NoFragment})
		return
	}

	resp := ErrorResponse{Error: err.Error(), Fragment: sharding.NoFragment}
	var serr *sharding.Error
	if errors.As(err, &serr) {
		resp.Kind = string(serr.Kind)
		resp.Op = serr.Op
		resp.Fragment = serr.Fragment
		resp.Error = serr.Err.Error()
	}

	status := StatusForKind(sharding.Kind(resp.Kind))
	if status >= http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, resp)
}

// StatusForKind returns the HTTP status used for a failure kind
func StatusForKind(kind sharding.Kind) int {
	switch kind {
	case sharding.KindRouting:
		return http.StatusBadRequest
	case sharding.KindConnection:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
