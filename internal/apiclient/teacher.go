package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/me/uniportal/pkg/model"
)

// StudentFilter narrows the teacher's student list.
type StudentFilter struct {
	SubjectID  string
	Department string
	Semester   int
}

func (f StudentFilter) values() url.Values {
	v := url.Values{}
	if f.SubjectID != "" {
		v.Set("subject_id", f.SubjectID)
	}
	if f.Department != "" {
		v.Set("department", f.Department)
	}
	if f.Semester > 0 {
		v.Set("semester", strconv.Itoa(f.Semester))
	}
	return v
}

// TeacherStudents lists the students taught by the signed-in teacher.
func (c *Client) TeacherStudents(ctx context.Context, filter StudentFilter) ([]model.Student, error) {
	return callList[model.Student](ctx, c, model.Request{
		Method: http.MethodGet,
		Path:   PathTeacherStudents,
		Query:  filter.values(),
	})
}

// TeacherSubjects lists the subjects assigned to the signed-in teacher.
func (c *Client) TeacherSubjects(ctx context.Context) ([]model.Subject, error) {
	return callList[model.Subject](ctx, c, model.Request{Method: http.MethodGet, Path: PathTeacherSubjects})
}

// MarkAttendance submits one class's attendance sheet.
func (c *Client) MarkAttendance(ctx context.Context, sheet model.AttendanceSheet) error {
	if err := validateStruct(sheet); err != nil {
		return err
	}
	_, err := exec(ctx, c, model.Request{Method: http.MethodPost, Path: PathTeacherAttendance, Body: sheet})
	return annotateServerError(err)
}

// EnterMarks records marks for a subject and exam.
func (c *Client) EnterMarks(ctx context.Context, entry model.MarksEntry) error {
	if err := validateStruct(entry); err != nil {
		return err
	}
	_, err := exec(ctx, c, model.Request{Method: http.MethodPost, Path: PathTeacherMarks, Body: entry})
	return annotateServerError(err)
}

// UpdateMarks corrects marks already recorded for a subject and exam.
func (c *Client) UpdateMarks(ctx context.Context, entry model.MarksEntry) error {
	if err := validateStruct(entry); err != nil {
		return err
	}
	_, err := exec(ctx, c, model.Request{Method: http.MethodPut, Path: PathTeacherMarks, Body: entry})
	return annotateServerError(err)
}
