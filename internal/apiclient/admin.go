package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/me/uniportal/pkg/model"
)

// Created is the payload returned by create endpoints.
type Created struct {
	ID string `json:"id"`
}

func adminList[T any](ctx context.Context, c *Client, resource string) ([]T, error) {
	return callList[T](ctx, c, model.Request{Method: http.MethodGet, Path: AdminPath(resource, "list")})
}

func adminCreate(ctx context.Context, c *Client, resource string, record any) (string, error) {
	if err := validateStruct(record); err != nil {
		return "", err
	}
	created, err := call[Created](ctx, c, model.Request{
		Method: http.MethodPost,
		Path:   AdminPath(resource, "create"),
		Body:   record,
	})
	if err != nil {
		return "", annotateServerError(err)
	}
	return created.ID, nil
}

func adminUpdate(ctx context.Context, c *Client, resource, id string, record any) error {
	if id == "" {
		return &ValidationError{Field: "id", Message: "is required"}
	}
	if err := validateStruct(record); err != nil {
		return err
	}
	_, err := exec(ctx, c, model.Request{Method: http.MethodPut, Path: AdminPath(resource, "update"), Body: record})
	return annotateServerError(err)
}

func adminDelete(ctx context.Context, c *Client, resource, id string) error {
	if id == "" {
		return &ValidationError{Field: "id", Message: "is required"}
	}
	_, err := exec(ctx, c, model.Request{
		Method: http.MethodDelete,
		Path:   AdminPath(resource, "delete"),
		Query:  url.Values{"id": {id}},
	})
	return annotateServerError(err)
}

// ListStudents lists every student.
func (c *Client) ListStudents(ctx context.Context) ([]model.Student, error) {
	return adminList[model.Student](ctx, c, ResourceStudents)
}

// CreateStudent adds a student and returns the new record's id.
func (c *Client) CreateStudent(ctx context.Context, s model.Student) (string, error) {
	return adminCreate(ctx, c, ResourceStudents, s)
}

// UpdateStudent saves changes to the student identified by s.ID.
func (c *Client) UpdateStudent(ctx context.Context, s model.Student) error {
	return adminUpdate(ctx, c, ResourceStudents, s.ID, s)
}

// DeleteStudent removes a student.
func (c *Client) DeleteStudent(ctx context.Context, id string) error {
	return adminDelete(ctx, c, ResourceStudents, id)
}

// ListTeachers lists every teacher.
func (c *Client) ListTeachers(ctx context.Context) ([]model.Teacher, error) {
	return adminList[model.Teacher](ctx, c, ResourceTeachers)
}

// CreateTeacher adds a teacher and returns the new record's id.
func (c *Client) CreateTeacher(ctx context.Context, t model.Teacher) (string, error) {
	return adminCreate(ctx, c, ResourceTeachers, t)
}

// UpdateTeacher saves changes to the teacher identified by t.ID.
func (c *Client) UpdateTeacher(ctx context.Context, t model.Teacher) error {
	return adminUpdate(ctx, c, ResourceTeachers, t.ID, t)
}

// DeleteTeacher removes a teacher.
func (c *Client) DeleteTeacher(ctx context.Context, id string) error {
	return adminDelete(ctx, c, ResourceTeachers, id)
}

// ListFees lists every fee.
func (c *Client) ListFees(ctx context.Context) ([]model.Fee, error) {
	return adminList[model.Fee](ctx, c, ResourceFees)
}

// CreateFee charges a fee and returns the new record's id.
func (c *Client) CreateFee(ctx context.Context, f model.Fee) (string, error) {
	return adminCreate(ctx, c, ResourceFees, f)
}

// UpdateFee saves changes to the fee identified by f.ID.
func (c *Client) UpdateFee(ctx context.Context, f model.Fee) error {
	return adminUpdate(ctx, c, ResourceFees, f.ID, f)
}

// DeleteFee removes a fee.
func (c *Client) DeleteFee(ctx context.Context, id string) error {
	return adminDelete(ctx, c, ResourceFees, id)
}

// ListSubjects lists every subject.
func (c *Client) ListSubjects(ctx context.Context) ([]model.Subject, error) {
	return adminList[model.Subject](ctx, c, ResourceSubjects)
}

// CreateSubject adds a subject and returns the new record's id.
func (c *Client) CreateSubject(ctx context.Context, s model.Subject) (string, error) {
	return adminCreate(ctx, c, ResourceSubjects, s)
}

// UpdateSubject saves changes to the subject identified by s.ID.
func (c *Client) UpdateSubject(ctx context.Context, s model.Subject) error {
	return adminUpdate(ctx, c, ResourceSubjects, s.ID, s)
}

// DeleteSubject removes a subject.
func (c *Client) DeleteSubject(ctx context.Context, id string) error {
	return adminDelete(ctx, c, ResourceSubjects, id)
}

// ListNotices lists every notice, including expired ones.
func (c *Client) ListNotices(ctx context.Context) ([]model.Notice, error) {
	return adminList[model.Notice](ctx, c, ResourceNotices)
}

// CreateNotice posts a notice and returns the new record's id.
func (c *Client) CreateNotice(ctx context.Context, n model.Notice) (string, error) {
	return adminCreate(ctx, c, ResourceNotices, n)
}

// UpdateNotice saves changes to the notice identified by n.ID.
func (c *Client) UpdateNotice(ctx context.Context, n model.Notice) error {
	return adminUpdate(ctx, c, ResourceNotices, n.ID, n)
}

// DeleteNotice removes a notice.
func (c *Client) DeleteNotice(ctx context.Context, id string) error {
	return adminDelete(ctx, c, ResourceNotices, id)
}
