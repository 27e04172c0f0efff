package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/me/uniportal/pkg/model"
)

// StudentMarks returns the signed-in student's marks. A positive semester
// narrows the result to that semester.
func (c *Client) StudentMarks(ctx context.Context, semester int) ([]model.Mark, error) {
	return callList[model.Mark](ctx, c, model.Request{
		Method: http.MethodGet,
		Path:   PathStudentMarks,
		Query:  semesterQuery(semester),
	})
}

// StudentAttendance returns the signed-in student's attendance entries.
func (c *Client) StudentAttendance(ctx context.Context, semester int) ([]model.AttendanceRecord, error) {
	return callList[model.AttendanceRecord](ctx, c, model.Request{
		Method: http.MethodGet,
		Path:   PathStudentAttendance,
		Query:  semesterQuery(semester),
	})
}

// StudentFees returns the fees charged to the signed-in student.
func (c *Client) StudentFees(ctx context.Context) ([]model.Fee, error) {
	return callList[model.Fee](ctx, c, model.Request{Method: http.MethodGet, Path: PathStudentFees})
}

// StudentPayments returns the payments made by the signed-in student.
func (c *Client) StudentPayments(ctx context.Context) ([]model.Payment, error) {
	return callList[model.Payment](ctx, c, model.Request{Method: http.MethodGet, Path: PathStudentPayments})
}

// StudentProfile returns the signed-in student's profile.
func (c *Client) StudentProfile(ctx context.Context) (*model.StudentProfile, error) {
	p, err := call[model.StudentProfile](ctx, c, model.Request{Method: http.MethodGet, Path: PathStudentProfile})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ProfileUpdate carries the profile fields a student may change. Nil
// fields are left untouched.
type ProfileUpdate struct {
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}

// UpdateStudentProfile saves changes to the signed-in student's profile.
func (c *Client) UpdateStudentProfile(ctx context.Context, upd ProfileUpdate) error {
	if upd.Email == nil && upd.Phone == nil && upd.Address == nil {
		return &ValidationError{Message: "nothing to update"}
	}
	if err := validateStruct(upd); err != nil {
		return err
	}
	_, err := exec(ctx, c, model.Request{Method: http.MethodPut, Path: PathStudentProfile, Body: upd})
	return err
}

func semesterQuery(semester int) url.Values {
	if semester <= 0 {
		return nil
	}
	return url.Values{"semester": {strconv.Itoa(semester)}}
}
