package apiclient_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/me/uniportal/internal/apiclient"
	"github.com/me/uniportal/internal/mockapi"
	"github.com/me/uniportal/internal/session"
	"github.com/me/uniportal/pkg/model"
)

func newMockClient(t *testing.T) (*apiclient.Client, *mockapi.Server, string) {
	t.Helper()
	backend := mockapi.New(nil)
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	store, err := session.Open(session.BackendSQLite, filepath.Join(dir, "session.db"), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	c := apiclient.New(apiclient.Config{BaseURL: srv.URL, Timeout: 5 * time.Second, DownloadDir: dir}, store, nil)
	return c, backend, dir
}

func TestStudentScenario(t *testing.T) {
	ctx := context.Background()
	c, backend, dir := newMockClient(t)

	res := c.Login(ctx, mockapi.StudentUsername, mockapi.StudentPassword, model.RoleStudent)
	if !res.Success {
		t.Fatalf("login: %s", res.Message)
	}
	if !c.VerifyToken(ctx) {
		t.Error("fresh token rejected")
	}

	marks, err := c.StudentMarks(ctx, 0)
	if err != nil {
		t.Fatalf("StudentMarks: %v", err)
	}
	if len(marks) == 0 {
		t.Error("no marks returned")
	}
	sem3, err := c.StudentMarks(ctx, 3)
	if err != nil {
		t.Fatalf("StudentMarks(3): %v", err)
	}
	if len(sem3) >= len(marks) {
		t.Errorf("semester filter returned %d of %d marks", len(sem3), len(marks))
	}

	dash, err := c.StudentDashboard(ctx)
	if err != nil {
		t.Fatalf("StudentDashboard: %v", err)
	}
	if len(dash.Errors) != 0 {
		t.Errorf("dashboard errors: %v", dash.Errors)
	}
	if dash.GPA == 0 || dash.Outstanding != 400 {
		t.Errorf("dashboard = GPA %v outstanding %v", dash.GPA, dash.Outstanding)
	}

	path, err := c.DownloadIDCard(ctx)
	if err != nil {
		t.Fatalf("DownloadIDCard: %v", err)
	}
	if path != filepath.Join(dir, "ID_Card_jdoe.pdf") {
		t.Errorf("saved to %s", path)
	}
	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), "%PDF-") {
		t.Error("downloaded file is not a PDF")
	}

	// Wrong role: 403 is an ordinary failure and keeps the session.
	_, err = c.ListStudents(ctx)
	if apiclient.StatusCode(err) != http.StatusForbidden {
		t.Fatalf("admin call as student: err = %v, want 403", err)
	}
	if !c.IsAuthenticated(ctx) {
		t.Fatal("403 cleared the session")
	}

	// Server-side expiry: 401 ends the session.
	backend.RevokeAll()
	_, err = c.StudentFees(ctx)
	if !errors.Is(err, apiclient.ErrSessionExpired) {
		t.Fatalf("after revoke: err = %v, want ErrSessionExpired", err)
	}
	if c.IsAuthenticated(ctx) || c.CurrentUser(ctx) != nil {
		t.Error("session survived server-side expiry")
	}

	// Logging in again recovers.
	if res := c.Login(ctx, mockapi.StudentUsername, mockapi.StudentPassword, model.RoleStudent); !res.Success {
		t.Fatalf("re-login: %s", res.Message)
	}
	if _, err := c.StudentFees(ctx); err != nil {
		t.Errorf("StudentFees after re-login: %v", err)
	}
}

func TestLoginWrongPasswordAgainstBackend(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newMockClient(t)

	res := c.Login(ctx, mockapi.StudentUsername, "wrong", model.RoleStudent)
	if res.Success || res.Message != "Invalid username or password" {
		t.Errorf("result = %+v", res)
	}
	if c.IsAuthenticated(ctx) {
		t.Error("authenticated after failed login")
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newMockClient(t)

	if res := c.Login(ctx, mockapi.TeacherUsername, mockapi.TeacherPassword, model.RoleTeacher); !res.Success {
		t.Fatalf("login: %s", res.Message)
	}
	token := c.Token(ctx)
	if err := c.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	// Reusing the old token is rejected by the server.
	other := apiclient.New(apiclient.Config{BaseURL: c.BaseURL()}, nil, nil)
	_, err := other.Do(ctx, model.Request{
		Method: http.MethodGet,
		Path:   apiclient.PathVerify,
		Header: http.Header{"Authorization": {"Bearer " + token}},
	})
	if !apiclient.IsSessionExpired(err) {
		t.Errorf("old token: err = %v, want ErrSessionExpired", err)
	}
}

func TestTeacherScenario(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newMockClient(t)
	if res := c.Login(ctx, mockapi.TeacherUsername, mockapi.TeacherPassword, model.RoleTeacher); !res.Success {
		t.Fatalf("login: %s", res.Message)
	}

	subjects, err := c.TeacherSubjects(ctx)
	if err != nil || len(subjects) == 0 {
		t.Fatalf("TeacherSubjects = %v, %v", subjects, err)
	}
	students, err := c.TeacherStudents(ctx, apiclient.StudentFilter{SubjectID: subjects[0].ID})
	if err != nil || len(students) == 0 {
		t.Fatalf("TeacherStudents = %v, %v", students, err)
	}

	sheet := model.AttendanceSheet{SubjectID: subjects[0].ID, Date: "2024-10-07"}
	for _, st := range students {
		sheet.Records = append(sheet.Records, model.AttendanceRecord{StudentID: st.ID, Status: "present"})
	}
	if err := c.MarkAttendance(ctx, sheet); err != nil {
		t.Fatalf("MarkAttendance: %v", err)
	}

	entry := model.MarksEntry{SubjectID: subjects[0].ID, ExamType: "midterm",
		Marks: []model.Mark{{StudentID: students[0].ID, MarksObtained: 18, TotalMarks: 25}}}
	if err := c.EnterMarks(ctx, entry); err != nil {
		t.Fatalf("EnterMarks: %v", err)
	}
	err = c.EnterMarks(ctx, entry)
	if err == nil || !strings.HasPrefix(err.Error(), "server could not save the change: ") {
		t.Errorf("duplicate EnterMarks: err = %v", err)
	}

	entry.Marks[0].MarksObtained = 20
	if err := c.UpdateMarks(ctx, entry); err != nil {
		t.Errorf("UpdateMarks: %v", err)
	}
}

func TestAdminScenario(t *testing.T) {
	ctx := context.Background()
	c, backend, _ := newMockClient(t)
	if res := c.Login(ctx, mockapi.AdminUsername, mockapi.AdminPassword, model.RoleAdmin); !res.Success {
		t.Fatalf("login: %s", res.Message)
	}

	id, err := c.CreateNotice(ctx, model.Notice{Title: "Exams", Content: "Finals start Dec 1", Audience: "students"})
	if err != nil || id == "" {
		t.Fatalf("CreateNotice = %q, %v", id, err)
	}
	if err := c.UpdateNotice(ctx, model.Notice{ID: id, Title: "Exams", Content: "Finals start Dec 2"}); err != nil {
		t.Errorf("UpdateNotice: %v", err)
	}
	if err := c.DeleteNotice(ctx, id); err != nil {
		t.Errorf("DeleteNotice: %v", err)
	}
	if err := c.DeleteNotice(ctx, id); apiclient.StatusCode(err) != http.StatusNotFound {
		t.Errorf("second DeleteNotice: err = %v, want 404", err)
	}

	sessID, err := c.CreateAcademicSession(ctx, model.AcademicSession{Name: "2025-2026", StartDate: "2025-08-01", EndDate: "2026-07-31"})
	if err != nil {
		t.Fatalf("CreateAcademicSession: %v", err)
	}
	_, err = c.CreateAcademicSession(ctx, model.AcademicSession{Name: "2025-2026", StartDate: "2025-08-01", EndDate: "2026-07-31"})
	if err == nil || !strings.HasPrefix(err.Error(), "server could not save the change: ") {
		t.Errorf("duplicate session: err = %v", err)
	}
	if err := c.ActivateAcademicSession(ctx, sessID); err != nil {
		t.Fatalf("ActivateAcademicSession: %v", err)
	}

	_, err = c.CreateSemester(ctx, model.Semester{SessionID: sessID, Name: "Spring", StartDate: "2024-01-01", EndDate: "2024-05-01"})
	if err == nil || !strings.HasPrefix(err.Error(), "server rejected the data: ") {
		t.Errorf("semester outside session: err = %v", err)
	}

	dash, err := c.AdminDashboard(ctx)
	if err != nil {
		t.Fatalf("AdminDashboard: %v", err)
	}
	if dash.Stats.TotalStudents != 2 || dash.Stats.ActiveSession != "2025-2026" {
		t.Errorf("dashboard stats = %+v", dash.Stats)
	}

	trends, err := c.TrendsReport(ctx, model.MetricPayments, model.PeriodMonthly, model.ReportFilter{})
	if err != nil {
		t.Fatalf("TrendsReport: %v", err)
	}
	if len(trends.Points) == 0 {
		t.Error("trends report has no points")
	}
	fin, err := c.FinancialReport(ctx, model.ReportFilter{FeeType: "tuition"})
	if err != nil {
		t.Fatalf("FinancialReport: %v", err)
	}
	if fin.Summary.TotalBilled != 2000 {
		t.Errorf("tuition billed = %v, want 2000", fin.Summary.TotalBilled)
	}

	backend.Fail(apiclient.PathReportPerformance, mockapi.Failure{Status: http.StatusInternalServerError, Message: "report engine crashed"})
	_, err = c.PerformanceReport(ctx, model.ReportFilter{})
	if err == nil || err.Error() != "report engine crashed" {
		t.Errorf("forced failure: err = %v", err)
	}
}

func TestForcedEmptyDownload(t *testing.T) {
	ctx := context.Background()
	c, backend, _ := newMockClient(t)
	if res := c.Login(ctx, mockapi.StudentUsername, mockapi.StudentPassword, model.RoleStudent); !res.Success {
		t.Fatalf("login: %s", res.Message)
	}

	backend.Fail(apiclient.PathStudentReport, mockapi.Failure{EmptyBody: true})
	if _, err := c.DownloadPerformanceReport(ctx); !errors.Is(err, apiclient.ErrEmptyDownload) {
		t.Errorf("err = %v, want ErrEmptyDownload", err)
	}
}
