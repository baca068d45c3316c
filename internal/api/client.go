package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dreamware/gradeshard/internal/router"
	"github.com/dreamware/gradeshard/internal/sharding"
)

var _ sharding.Operations = (*Client)(nil)

// Client calls a remote Server. Failures come back as the same
// *sharding.Error values the server produced.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a client for a server at baseURL, e.g. "http://localhost:8080"
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// NewClientWithHTTP uses a caller-supplied http.Client
func NewClientWithHTTP(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: hc}
}

// Health reports the server status
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, "health", http.MethodGet, "/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Fragments lists fragment stats and health
func (c *Client) Fragments(ctx context.Context) ([]FragmentStatus, error) {
	var out []FragmentStatus
	if err := c.do(ctx, "fragments", http.MethodGet, "/fragments", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) InsertStudent(ctx context.Context, studentID, name string, age int, email string) error {
	body := StudentRequest{StudentID: studentID, Name: name, Age: age, Email: email}
	return c.do(ctx, sharding.OpInsertStudent, http.MethodPost, "/students", body, nil)
}

func (c *Client) InsertGrade(ctx context.Context, studentID, courseID string, score int) error {
	if err := sharding.CheckCourseID(sharding.OpInsertGrade, courseID); err != nil {
		return err
	}
	body := GradeRequest{StudentID: studentID, CourseID: courseID, Score: score}
	return c.do(ctx, sharding.OpInsertGrade, http.MethodPost, "/grades", body, nil)
}

func (c *Client) UpdateGrade(ctx context.Context, studentID, courseID string, newScore int) error {
	if err := sharding.CheckCourseID(sharding.OpUpdateGrade, courseID); err != nil {
		return err
	}
	if err := checkRoutable(sharding.OpUpdateGrade, studentID); err != nil {
		return err
	}
	return c.do(ctx, sharding.OpUpdateGrade, http.MethodPut, gradePath(studentID, courseID), ScoreRequest{Score: newScore}, nil)
}

func (c *Client) DeleteGrade(ctx context.Context, studentID, courseID string) error {
	if err := sharding.CheckCourseID(sharding.OpDeleteGrade, courseID); err != nil {
		return err
	}
	if err := checkRoutable(sharding.OpDeleteGrade, studentID); err != nil {
		return err
	}
	return c.do(ctx, sharding.OpDeleteGrade, http.MethodDelete, gradePath(studentID, courseID), nil, nil)
}

func (c *Client) UpsertCourse(ctx context.Context, courseID, department string) error {
	if err := sharding.CheckCourseID(sharding.OpUpsertCourse, courseID); err != nil {
		return err
	}
	path := "/courses/" + url.PathEscape(courseID)
	return c.do(ctx, sharding.OpUpsertCourse, http.MethodPut, path, CourseRequest{Department: department}, nil)
}

func (c *Client) GetStudentProfile(ctx context.Context, studentID string) (string, error) {
	if err := checkRoutable(sharding.OpStudentProfile, studentID); err != nil {
		return "", err
	}
	var out ProfileResponse
	path := "/students/" + url.PathEscape(studentID) + "/profile"
	if err := c.do(ctx, sharding.OpStudentProfile, http.MethodGet, path, nil, &out); err != nil {
		return "", err
	}
	return out.Profile, nil
}

func (c *Client) GetAvgScoreByDept(ctx context.Context) (string, error) {
	var out ResultResponse
	if err := c.do(ctx, sharding.OpAvgScoreByDept, http.MethodGet, "/reports/avg-score-by-dept", nil, &out); err != nil {
		return "", err
	}
	return out.Result, nil
}

func (c *Client) GetAllStudentsWithMostCourses(ctx context.Context) (string, error) {
	var out ResultResponse
	if err := c.do(ctx, sharding.OpMostCourses, http.MethodGet, "/reports/most-courses", nil, &out); err != nil {
		return "", err
	}
	return out.Result, nil
}

func gradePath(studentID, courseID string) string {
	return "/grades/" + url.PathEscape(studentID) + "/" + url.PathEscape(courseID)
}

// checkRoutable rejects IDs that cannot appear as a path segment
func checkRoutable(op, studentID string) error {
	if strings.TrimSpace(studentID) == "" {
		return sharding.NewError(sharding.KindRouting, op, sharding.NoFragment, router.ErrUnroutable)
	}
	return nil
}

// do sends a JSON request and decodes the JSON response into out.
// Transport failures are connection failures; error bodies are turned back
// into typed failures.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		reqBody, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(reqBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return sharding.NewError(sharding.KindConnection, op, sharding.NoFragment, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(op, resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(op string, resp *http.Response) error {
	var er ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("http %s %s: %d", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode)
	}

	if er.Kind != "" {
		if er.Op != "" {
			op = er.Op
		}
		return sharding.NewError(sharding.Kind(er.Kind), op, er.Fragment, errors.New(er.Error))
	}
	if resp.StatusCode == http.StatusNotFound {
		return sharding.ErrNotFound
	}
	return fmt.Errorf("http %s %s: %d: %s", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, er.Error)
}
