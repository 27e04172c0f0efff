package apiclient

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/me/uniportal/pkg/model"
)

func TestDoHeaders(t *testing.T) {
	var got http.Header
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		writeEnvelope(w, http.StatusOK, okData(nil))
	})
	env.login(t)

	_, err := env.client.Do(context.Background(), model.Request{
		Method: http.MethodPost,
		Path:   "/anything.php",
		Body:   map[string]string{"a": "b"},
		Header: http.Header{"Accept": {"text/plain"}, "X-Extra": {"1"}},
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}

	if ct := got.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if auth := got.Get("Authorization"); auth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want Bearer tok-123", auth)
	}
	if got.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID not set")
	}
	if a := got.Get("Accept"); a != "text/plain" {
		t.Errorf("Accept = %q, caller header should override", a)
	}
	if got.Get("X-Extra") != "1" {
		t.Error("caller header X-Extra not forwarded")
	}
}

func TestDoWithoutSessionSendsNoAuthorization(t *testing.T) {
	var auth string
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		writeEnvelope(w, http.StatusOK, okData(nil))
	})

	if _, err := env.client.Do(context.Background(), model.Request{Method: http.MethodGet, Path: PathNotices}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if auth != "" {
		t.Errorf("Authorization = %q, want none", auth)
	}
}

func TestDoQueryString(t *testing.T) {
	var rawQuery string
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		writeEnvelope(w, http.StatusOK, okData([]any{}))
	})
	env.login(t)

	if _, err := env.client.StudentMarks(context.Background(), 3); err != nil {
		t.Fatalf("StudentMarks: %v", err)
	}
	if rawQuery != "semester=3" {
		t.Errorf("query = %q, want semester=3", rawQuery)
	}
}

func TestDoUnauthorizedClearsSessionFirst(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "token expired"})
	})
	env.login(t)

	var sawSession bool
	env.client.onExpired = func() {
		env.expired.Add(1)
		sess, _ := env.store.Get(context.Background())
		sawSession = sess != nil
	}

	_, err := env.client.Do(context.Background(), model.Request{Method: http.MethodGet, Path: PathStudentMarks})
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("err = %v, want ErrSessionExpired", err)
	}
	if err.Error() != "session expired, please log in again" {
		t.Errorf("message = %q", err.Error())
	}
	if sawSession {
		t.Error("session still present when the expiry handler ran")
	}
	if env.expired.Load() != 1 {
		t.Errorf("expiry handler ran %d times, want 1", env.expired.Load())
	}
	if env.client.IsAuthenticated(context.Background()) {
		t.Error("still authenticated after 401")
	}
	if StatusCode(err) != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", StatusCode(err))
	}
}

func TestDoErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantMsg  string
		wantCode model.ErrorCode
	}{
		{"message field", 400, `{"success":false,"message":"bad input","code":"VALIDATION_ERROR"}`, "bad input", model.ErrValidation},
		{"error field", 500, `{"success":false,"error":"database down"}`, "database down", ""},
		{"message wins over error", 409, `{"message":"first","error":"second"}`, "first", ""},
		{"no body", 502, ``, "request failed", ""},
		{"html body", 503, `<html>down</html>`, "request failed", ""},
		{"forbidden", 403, `{"success":false,"message":"access denied"}`, "access denied", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			env.login(t)

			_, err := env.client.Do(context.Background(), model.Request{Method: http.MethodGet, Path: "/x.php"})
			var re *RequestError
			if !errors.As(err, &re) {
				t.Fatalf("err = %v (%T), want *RequestError", err, err)
			}
			if re.Message != tt.wantMsg || err.Error() != tt.wantMsg {
				t.Errorf("message = %q, want %q", re.Message, tt.wantMsg)
			}
			if re.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", re.StatusCode, tt.status)
			}
			if re.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", re.Code, tt.wantCode)
			}
			if !env.client.IsAuthenticated(context.Background()) {
				t.Error("non-401 failure must not clear the session")
			}
			if env.expired.Load() != 0 {
				t.Error("expiry handler ran on a non-401 failure")
			}
		})
	}
}

func TestDoMalformedSuccessBody(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("not json"))
	})

	_, err := env.client.Do(context.Background(), model.Request{Method: http.MethodGet, Path: "/x.php"})
	if !IsTransport(err) {
		t.Fatalf("err = %v, want transport error", err)
	}
}

func TestDoTransportFailure(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {})
	env.server.Close()

	_, err := env.client.Do(context.Background(), model.Request{Method: http.MethodGet, Path: "/x.php"})
	if !IsTransport(err) {
		t.Fatalf("err = %v, want transport error", err)
	}
	if StatusCode(err) != 0 {
		t.Errorf("StatusCode = %d, want 0", StatusCode(err))
	}
}

func TestDoCanceledContext(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, okData(nil))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := env.client.Do(ctx, model.Request{Method: http.MethodGet, Path: "/x.php"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestEnvelopeFailureOn2xx(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{"success": false, "message": "nothing to show"})
	})
	env.login(t)

	_, err := env.client.StudentFees(context.Background())
	var re *RequestError
	if !errors.As(err, &re) || re.Message != "nothing to show" {
		t.Fatalf("err = %v, want RequestError 'nothing to show'", err)
	}
}

func TestListWrappersNeverReturnNil(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{"success": true})
	})
	env.login(t)

	fees, err := env.client.StudentFees(context.Background())
	if err != nil {
		t.Fatalf("StudentFees: %v", err)
	}
	if fees == nil {
		t.Error("fees = nil, want empty slice")
	}
}

// Every endpoint wrapper must route a 401 through the same expiry path.
func TestUnauthorizedIsUniversal(t *testing.T) {
	ctx := context.Background()
	validSession := model.AcademicSession{Name: "2025-2026", StartDate: "2025-08-01", EndDate: "2026-07-31"}
	validSemester := model.Semester{SessionID: "ses-1", Name: "Fall", StartDate: "2025-08-01", EndDate: "2025-12-20"}
	png := []byte("\x89PNG\r\n\x1a\n0000")

	calls := map[string]func(c *Client) error{
		"StudentMarks":      func(c *Client) error { _, err := c.StudentMarks(ctx, 0); return err },
		"StudentAttendance": func(c *Client) error { _, err := c.StudentAttendance(ctx, 0); return err },
		"StudentFees":       func(c *Client) error { _, err := c.StudentFees(ctx); return err },
		"StudentPayments":   func(c *Client) error { _, err := c.StudentPayments(ctx); return err },
		"StudentProfile":    func(c *Client) error { _, err := c.StudentProfile(ctx); return err },
		"UpdateStudentProfile": func(c *Client) error {
			phone := "555"
			return c.UpdateStudentProfile(ctx, ProfileUpdate{Phone: &phone})
		},
		"UploadProfileImage": func(c *Client) error { _, err := c.UploadProfileImage(ctx, "me.png", png); return err },
		"TeacherStudents":    func(c *Client) error { _, err := c.TeacherStudents(ctx, StudentFilter{}); return err },
		"TeacherSubjects":    func(c *Client) error { _, err := c.TeacherSubjects(ctx); return err },
		"MarkAttendance": func(c *Client) error {
			return c.MarkAttendance(ctx, model.AttendanceSheet{SubjectID: "sub-1", Date: "2024-03-01",
				Records: []model.AttendanceRecord{{StudentID: "stu-1", Status: "present"}}})
		},
		"EnterMarks": func(c *Client) error {
			return c.EnterMarks(ctx, model.MarksEntry{SubjectID: "sub-1", ExamType: "mid",
				Marks: []model.Mark{{StudentID: "stu-1", MarksObtained: 10, TotalMarks: 20}}})
		},
		"UpdateMarks": func(c *Client) error {
			return c.UpdateMarks(ctx, model.MarksEntry{SubjectID: "sub-1", ExamType: "mid",
				Marks: []model.Mark{{StudentID: "stu-1", MarksObtained: 10, TotalMarks: 20}}})
		},
		"ListStudents":  func(c *Client) error { _, err := c.ListStudents(ctx); return err },
		"CreateStudent": func(c *Client) error { _, err := c.CreateStudent(ctx, model.Student{Username: "u", FullName: "U"}); return err },
		"UpdateStudent": func(c *Client) error { return c.UpdateStudent(ctx, model.Student{ID: "1", Username: "u", FullName: "U"}) },
		"DeleteStudent": func(c *Client) error { return c.DeleteStudent(ctx, "1") },
		"ListTeachers":  func(c *Client) error { _, err := c.ListTeachers(ctx); return err },
		"CreateTeacher": func(c *Client) error { _, err := c.CreateTeacher(ctx, model.Teacher{Username: "u", FullName: "U"}); return err },
		"UpdateTeacher": func(c *Client) error { return c.UpdateTeacher(ctx, model.Teacher{ID: "1", Username: "u", FullName: "U"}) },
		"DeleteTeacher": func(c *Client) error { return c.DeleteTeacher(ctx, "1") },
		"ListFees":      func(c *Client) error { _, err := c.ListFees(ctx); return err },
		"CreateFee": func(c *Client) error {
			_, err := c.CreateFee(ctx, model.Fee{StudentID: "stu-1", FeeType: "lab", Amount: 10})
			return err
		},
		"UpdateFee":     func(c *Client) error { return c.UpdateFee(ctx, model.Fee{ID: "1", StudentID: "stu-1", FeeType: "lab", Amount: 10}) },
		"DeleteFee":     func(c *Client) error { return c.DeleteFee(ctx, "1") },
		"ListSubjects":  func(c *Client) error { _, err := c.ListSubjects(ctx); return err },
		"CreateSubject": func(c *Client) error { _, err := c.CreateSubject(ctx, model.Subject{Code: "C", Name: "N"}); return err },
		"UpdateSubject": func(c *Client) error { return c.UpdateSubject(ctx, model.Subject{ID: "1", Code: "C", Name: "N"}) },
		"DeleteSubject": func(c *Client) error { return c.DeleteSubject(ctx, "1") },
		"ListNotices":   func(c *Client) error { _, err := c.ListNotices(ctx); return err },
		"CreateNotice":  func(c *Client) error { _, err := c.CreateNotice(ctx, model.Notice{Title: "T", Content: "C"}); return err },
		"UpdateNotice":  func(c *Client) error { return c.UpdateNotice(ctx, model.Notice{ID: "1", Title: "T", Content: "C"}) },
		"DeleteNotice":  func(c *Client) error { return c.DeleteNotice(ctx, "1") },
		"CreateAcademicSession": func(c *Client) error {
			_, err := c.CreateAcademicSession(ctx, validSession)
			return err
		},
		"ListAcademicSessions":    func(c *Client) error { _, err := c.ListAcademicSessions(ctx); return err },
		"ActivateAcademicSession": func(c *Client) error { return c.ActivateAcademicSession(ctx, "ses-1") },
		"CreateSemester":          func(c *Client) error { _, err := c.CreateSemester(ctx, validSemester); return err },
		"ListSemesters":           func(c *Client) error { _, err := c.ListSemesters(ctx, ""); return err },
		"ActivateSemester":        func(c *Client) error { return c.ActivateSemester(ctx, "sem-1") },
		"PerformanceReport": func(c *Client) error {
			_, err := c.PerformanceReport(ctx, model.ReportFilter{})
			return err
		},
		"FinancialReport": func(c *Client) error { _, err := c.FinancialReport(ctx, model.ReportFilter{}); return err },
		"TrendsReport": func(c *Client) error {
			_, err := c.TrendsReport(ctx, model.MetricAttendance, model.PeriodMonthly, model.ReportFilter{})
			return err
		},
		"Notices":                   func(c *Client) error { _, err := c.Notices(ctx); return err },
		"DownloadIDCard":            func(c *Client) error { _, err := c.DownloadIDCard(ctx); return err },
		"DownloadReceipt":           func(c *Client) error { _, err := c.DownloadReceipt(ctx, "pay-1"); return err },
		"DownloadPerformanceReport": func(c *Client) error { _, err := c.DownloadPerformanceReport(ctx); return err },
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "expired"})
			})
			env.login(t)

			err := call(env.client)
			if !IsSessionExpired(err) {
				t.Fatalf("err = %v, want ErrSessionExpired", err)
			}
			if env.hits.Load() != 1 {
				t.Errorf("server hit %d times, want 1", env.hits.Load())
			}
			if sess, _ := env.store.Get(ctx); sess != nil {
				t.Error("session not cleared")
			}
			if env.client.CurrentUser(ctx) != nil {
				t.Error("CurrentUser not nil after 401")
			}
			if env.expired.Load() != 1 {
				t.Errorf("expiry handler ran %d times, want 1", env.expired.Load())
			}
		})
	}
}

func TestAnnotateServerError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantPrefix string
	}{
		{"structured validation", &RequestError{Message: "name taken", Code: model.ErrValidation}, "server rejected the data: "},
		{"structured transaction", &RequestError{Message: "rolled back", Code: model.ErrTransaction}, "server could not save the change: "},
		{"validation text", &RequestError{Message: "Validation failed: bad date"}, "server rejected the data: "},
		{"transaction text", &RequestError{Message: "TRANSACTION aborted"}, "server could not save the change: "},
		{"code beats text", &RequestError{Message: "validation of transaction", Code: model.ErrTransaction}, "server could not save the change: "},
		{"unrelated", &RequestError{Message: "not found"}, ""},
		{"expired", ErrSessionExpired, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := annotateServerError(tt.err)
			if !errors.Is(got, tt.err) {
				t.Errorf("annotated error does not wrap the original")
			}
			if tt.wantPrefix == "" {
				if got != tt.err {
					t.Errorf("got %v, want unchanged", got)
				}
				return
			}
			if !strings.HasPrefix(got.Error(), tt.wantPrefix) {
				t.Errorf("got %q, want prefix %q", got.Error(), tt.wantPrefix)
			}
		})
	}
	if annotateServerError(nil) != nil {
		t.Error("annotateServerError(nil) != nil")
	}
}
