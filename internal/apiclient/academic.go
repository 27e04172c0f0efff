package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/me/uniportal/pkg/model"
)

// CreateAcademicSession adds an academic session and returns its id.
func (c *Client) CreateAcademicSession(ctx context.Context, s model.AcademicSession) (string, error) {
	if err := validateStruct(s); err != nil {
		return "", err
	}
	if err := validatePeriod(s.StartDate, s.EndDate); err != nil {
		return "", err
	}
	created, err := call[Created](ctx, c, model.Request{Method: http.MethodPost, Path: PathSessionsCreate, Body: s})
	if err != nil {
		return "", annotateServerError(err)
	}
	return created.ID, nil
}

// ListAcademicSessions lists every academic session.
func (c *Client) ListAcademicSessions(ctx context.Context) ([]model.AcademicSession, error) {
	items, err := callList[model.AcademicSession](ctx, c, model.Request{Method: http.MethodGet, Path: PathSessionsList})
	return items, annotateServerError(err)
}

// ActivateAcademicSession makes the session with id the current one.
func (c *Client) ActivateAcademicSession(ctx context.Context, id string) error {
	if id == "" {
		return &ValidationError{Field: "session_id", Message: "is required"}
	}
	_, err := exec(ctx, c, model.Request{
		Method: http.MethodPost,
		Path:   PathSessionsActivate,
		Body:   map[string]string{"session_id": id},
	})
	return annotateServerError(err)
}

// CreateSemester adds a semester to an academic session and returns its id.
func (c *Client) CreateSemester(ctx context.Context, s model.Semester) (string, error) {
	if err := validateStruct(s); err != nil {
		return "", err
	}
	if err := validatePeriod(s.StartDate, s.EndDate); err != nil {
		return "", err
	}
	created, err := call[Created](ctx, c, model.Request{Method: http.MethodPost, Path: PathSemestersCreate, Body: s})
	if err != nil {
		return "", annotateServerError(err)
	}
	return created.ID, nil
}

// ListSemesters lists semesters. A non-empty sessionID narrows the list to
// one academic session.
func (c *Client) ListSemesters(ctx context.Context, sessionID string) ([]model.Semester, error) {
	req := model.Request{Method: http.MethodGet, Path: PathSemestersList}
	if sessionID != "" {
		req.Query = url.Values{"session_id": {sessionID}}
	}
	items, err := callList[model.Semester](ctx, c, req)
	return items, annotateServerError(err)
}

// ActivateSemester makes the semester with id the current one.
func (c *Client) ActivateSemester(ctx context.Context, id string) error {
	if id == "" {
		return &ValidationError{Field: "semester_id", Message: "is required"}
	}
	_, err := exec(ctx, c, model.Request{
		Method: http.MethodPost,
		Path:   PathSemestersActivate,
		Body:   map[string]string{"semester_id": id},
	})
	return annotateServerError(err)
}

// validatePeriod requires a date range that ends strictly after it starts.
func validatePeriod(start, end string) error {
	if err := validateRange("start_date", start, "end_date", end, true); err != nil {
		return err
	}
	if start == end {
		return &ValidationError{Field: "end_date", Message: "must be after start_date"}
	}
	return nil
}
