package mockapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/me/uniportal/internal/apiclient"
	"github.com/me/uniportal/pkg/model"
)

func testServer(opts ...Option) *Server {
	return New(nil, opts...)
}

// response is used to decode the standard envelope.
type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Code    model.ErrorCode `json:"code"`
}

func do(t *testing.T, srv *Server, method, path, token string, body any) (*httptest.ResponseRecorder, response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	var resp response
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s %s: invalid JSON: %v", method, path, err)
		}
	}
	return w, resp
}

func login(t *testing.T, srv *Server, username, password string, role model.Role) string {
	t.Helper()
	w, resp := do(t, srv, http.MethodPost, apiclient.PathLogin, "", model.LoginRequest{Username: username, Password: password, Role: role})
	if w.Code != http.StatusOK || !resp.Success {
		t.Fatalf("login %s: status=%d body=%s", username, w.Code, w.Body.String())
	}
	var data model.LoginData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("decode login data: %v", err)
	}
	if data.User.Username != username || data.User.Role != role {
		t.Fatalf("login user = %+v", data.User)
	}
	return data.Token
}

func TestLogin(t *testing.T) {
	srv := testServer()
	tests := []struct {
		name       string
		req        model.LoginRequest
		wantStatus int
	}{
		{"student", model.LoginRequest{Username: StudentUsername, Password: StudentPassword, Role: model.RoleStudent}, http.StatusOK},
		{"role omitted", model.LoginRequest{Username: AdminUsername, Password: AdminPassword}, http.StatusOK},
		{"wrong password", model.LoginRequest{Username: StudentUsername, Password: "x", Role: model.RoleStudent}, http.StatusUnauthorized},
		{"unknown user", model.LoginRequest{Username: "ghost", Password: "x", Role: model.RoleStudent}, http.StatusUnauthorized},
		{"wrong role", model.LoginRequest{Username: StudentUsername, Password: StudentPassword, Role: model.RoleAdmin}, http.StatusUnauthorized},
		{"missing fields", model.LoginRequest{Username: StudentUsername}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := do(t, srv, http.MethodPost, apiclient.PathLogin, "", tt.req)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if resp.Success != (tt.wantStatus == http.StatusOK) {
				t.Errorf("success = %v", resp.Success)
			}
			if tt.wantStatus != http.StatusOK && resp.Message == "" {
				t.Error("failure without message")
			}
		})
	}
}

func TestAuthRequired(t *testing.T) {
	srv := testServer()
	paths := []string{
		apiclient.PathVerify,
		apiclient.PathNotices,
		apiclient.PathStudentMarks,
		apiclient.PathTeacherSubjects,
		apiclient.AdminPath(apiclient.ResourceStudents, "list"),
		apiclient.PathReportTrends,
	}
	for _, p := range paths {
		for _, token := range []string{"", "garbage"} {
			w, resp := do(t, srv, http.MethodGet, p, token, nil)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("GET %s token=%q: status = %d, want 401", p, token, w.Code)
			}
			if resp.Code != model.ErrUnauthorized {
				t.Errorf("GET %s: code = %q", p, resp.Code)
			}
		}
	}
}

func TestRoleChecks(t *testing.T) {
	srv := testServer()
	student := login(t, srv, StudentUsername, StudentPassword, model.RoleStudent)
	teacher := login(t, srv, TeacherUsername, TeacherPassword, model.RoleTeacher)
	admin := login(t, srv, AdminUsername, AdminPassword, model.RoleAdmin)

	tests := []struct {
		token string
		path  string
		want  int
	}{
		{student, apiclient.PathStudentMarks, http.StatusOK},
		{teacher, apiclient.PathStudentMarks, http.StatusForbidden},
		{admin, apiclient.PathStudentMarks, http.StatusForbidden},
		{teacher, apiclient.PathTeacherSubjects, http.StatusOK},
		{student, apiclient.PathTeacherSubjects, http.StatusForbidden},
		{admin, apiclient.PathSessionsList, http.StatusOK},
		{student, apiclient.PathSessionsList, http.StatusForbidden},
		{teacher, apiclient.AdminPath(apiclient.ResourceFees, "list"), http.StatusForbidden},
		{student, apiclient.PathNotices, http.StatusOK},
		{teacher, apiclient.PathVerify, http.StatusOK},
	}
	for _, tt := range tests {
		w, resp := do(t, srv, http.MethodGet, tt.path, tt.token, nil)
		if w.Code != tt.want {
			t.Errorf("GET %s: status = %d, want %d", tt.path, w.Code, tt.want)
		}
		if tt.want == http.StatusForbidden && resp.Code != model.ErrForbidden {
			t.Errorf("GET %s: code = %q, want FORBIDDEN", tt.path, resp.Code)
		}
	}
}

func TestAdminListEndpoints(t *testing.T) {
	srv := testServer()
	admin := login(t, srv, AdminUsername, AdminPassword, model.RoleAdmin)
	student := login(t, srv, StudentUsername, StudentPassword, model.RoleStudent)

	resources := []string{
		apiclient.ResourceStudents,
		apiclient.ResourceTeachers,
		apiclient.ResourceFees,
		apiclient.ResourceSubjects,
		apiclient.ResourceNotices,
	}
	for _, res := range resources {
		t.Run(res, func(t *testing.T) {
			path := apiclient.AdminPath(res, "list")
			w, resp := do(t, srv, http.MethodGet, path, admin, nil)
			if w.Code != http.StatusOK || !resp.Success {
				t.Fatalf("admin GET %s: status=%d body=%s", path, w.Code, w.Body.String())
			}
			var items []json.RawMessage
			if err := json.Unmarshal(resp.Data, &items); err != nil {
				t.Fatalf("decode %s list: %v", res, err)
			}
			if len(items) == 0 {
				t.Errorf("%s list is empty, want seeded records", res)
			}
			if w, _ := do(t, srv, http.MethodGet, path, student, nil); w.Code != http.StatusForbidden {
				t.Errorf("student GET %s: status = %d, want 403", path, w.Code)
			}
		})
	}
}

func TestLogoutAndRevokeAll(t *testing.T) {
	srv := testServer()
	a := login(t, srv, StudentUsername, StudentPassword, model.RoleStudent)
	b := login(t, srv, TeacherUsername, TeacherPassword, model.RoleTeacher)

	if w, _ := do(t, srv, http.MethodPost, apiclient.PathLogout, a, nil); w.Code != http.StatusOK {
		t.Fatalf("logout status = %d", w.Code)
	}
	if w, _ := do(t, srv, http.MethodGet, apiclient.PathVerify, a, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("logged-out token: status = %d, want 401", w.Code)
	}
	if w, _ := do(t, srv, http.MethodGet, apiclient.PathVerify, b, nil); w.Code != http.StatusOK {
		t.Errorf("other token: status = %d, want 200", w.Code)
	}

	srv.RevokeAll()
	if w, _ := do(t, srv, http.MethodGet, apiclient.PathVerify, b, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("after RevokeAll: status = %d, want 401", w.Code)
	}
	c := login(t, srv, TeacherUsername, TeacherPassword, model.RoleTeacher)
	if w, _ := do(t, srv, http.MethodGet, apiclient.PathVerify, c, nil); w.Code != http.StatusOK {
		t.Errorf("token issued after RevokeAll: status = %d, want 200", w.Code)
	}
}

func TestTokenExpiry(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	srv := testServer(WithTokenTTL(time.Minute), WithClock(func() time.Time { return now }))
	token := login(t, srv, StudentUsername, StudentPassword, model.RoleStudent)

	if w, _ := do(t, srv, http.MethodGet, apiclient.PathVerify, token, nil); w.Code != http.StatusOK {
		t.Fatalf("fresh token: status = %d", w.Code)
	}
	now = now.Add(2 * time.Minute)
	if w, _ := do(t, srv, http.MethodGet, apiclient.PathVerify, token, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("expired token: status = %d, want 401", w.Code)
	}
}

func TestNoticesAudience(t *testing.T) {
	srv := testServer(WithClock(func() time.Time { return time.Date(2024, 10, 15, 0, 0, 0, 0, time.UTC) }))
	student := login(t, srv, StudentUsername, StudentPassword, model.RoleStudent)
	teacher := login(t, srv, TeacherUsername, TeacherPassword, model.RoleTeacher)

	count := func(token string) int {
		_, resp := do(t, srv, http.MethodGet, apiclient.PathNotices, token, nil)
		var notices []model.Notice
		json.Unmarshal(resp.Data, &notices)
		return len(notices)
	}
	if n := count(student); n != 1 {
		t.Errorf("student sees %d notices, want 1", n)
	}
	if n := count(teacher); n != 2 {
		t.Errorf("teacher sees %d notices, want 2", n)
	}
}

func TestPDFEndpoints(t *testing.T) {
	srv := testServer()
	token := login(t, srv, StudentUsername, StudentPassword, model.RoleStudent)

	for _, p := range []string{apiclient.PathStudentIDCard, apiclient.PathStudentReport, apiclient.PathStudentReceipt + "?payment_id=pay-1"} {
		w, _ := do(t, srv, http.MethodGet, p, token, nil)
		if w.Code != http.StatusOK {
			t.Errorf("GET %s: status = %d", p, w.Code)
			continue
		}
		if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
			t.Errorf("GET %s: Content-Type = %q", p, ct)
		}
		body := w.Body.String()
		if !strings.HasPrefix(body, "%PDF-1.4") || !strings.HasSuffix(body, "%%EOF\n") {
			t.Errorf("GET %s: body is not a PDF", p)
		}
	}

	// Another student's payment is not visible.
	if w, _ := do(t, srv, http.MethodGet, apiclient.PathStudentReceipt+"?payment_id=nope", token, nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown receipt: status = %d, want 404", w.Code)
	}
}

func TestFailureInjection(t *testing.T) {
	srv := testServer()
	token := login(t, srv, StudentUsername, StudentPassword, model.RoleStudent)

	srv.Fail(apiclient.PathStudentIDCard, Failure{EmptyBody: true})
	w, _ := do(t, srv, http.MethodGet, apiclient.PathStudentIDCard, token, nil)
	if w.Code != http.StatusOK || w.Body.Len() != 0 {
		t.Errorf("empty body failure: status=%d len=%d", w.Code, w.Body.Len())
	}

	srv.Fail(apiclient.PathStudentFees, Failure{Status: http.StatusUnauthorized, Code: model.ErrUnauthorized, Message: "forced"})
	w, resp := do(t, srv, http.MethodGet, apiclient.PathStudentFees, token, nil)
	if w.Code != http.StatusUnauthorized || resp.Message != "forced" {
		t.Errorf("forced 401: status=%d message=%q", w.Code, resp.Message)
	}

	if srv.Hits(apiclient.PathStudentFees) != 1 {
		t.Errorf("hits = %d, want 1", srv.Hits(apiclient.PathStudentFees))
	}

	srv.Reset()
	if w, _ := do(t, srv, http.MethodGet, apiclient.PathStudentFees, token, nil); w.Code != http.StatusOK {
		t.Errorf("after Reset: status = %d", w.Code)
	}
	if srv.TotalHits() != 1 {
		t.Errorf("TotalHits after Reset = %d, want 1", srv.TotalHits())
	}
}

func TestAdminCRUD(t *testing.T) {
	srv := testServer()
	token := login(t, srv, AdminUsername, AdminPassword, model.RoleAdmin)

	w, resp := do(t, srv, http.MethodPost, apiclient.AdminPath(apiclient.ResourceSubjects, "create"), token,
		model.Subject{Code: "CS999", Name: "Compilers", Semester: 5})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		ID string `json:"id"`
	}
	json.Unmarshal(resp.Data, &created)
	if created.ID == "" {
		t.Fatal("create returned no id")
	}

	w, resp = do(t, srv, http.MethodPost, apiclient.AdminPath(apiclient.ResourceSubjects, "create"), token, model.Subject{Code: "X"})
	if w.Code != http.StatusBadRequest || resp.Code != model.ErrValidation {
		t.Errorf("invalid create: status=%d code=%q", w.Code, resp.Code)
	}

	w, _ = do(t, srv, http.MethodPut, apiclient.AdminPath(apiclient.ResourceSubjects, "update"), token,
		model.Subject{ID: created.ID, Code: "CS999", Name: "Compiler Design"})
	if w.Code != http.StatusOK {
		t.Errorf("update status = %d", w.Code)
	}

	_, resp = do(t, srv, http.MethodGet, apiclient.AdminPath(apiclient.ResourceSubjects, "list"), token, nil)
	var subjects []model.Subject
	json.Unmarshal(resp.Data, &subjects)
	found := false
	for _, s := range subjects {
		if s.ID == created.ID && s.Name == "Compiler Design" {
			found = true
		}
	}
	if !found {
		t.Error("updated subject not listed")
	}

	w, _ = do(t, srv, http.MethodDelete, apiclient.AdminPath(apiclient.ResourceSubjects, "delete")+"?id="+created.ID, token, nil)
	if w.Code != http.StatusOK {
		t.Errorf("delete status = %d", w.Code)
	}
	w, _ = do(t, srv, http.MethodDelete, apiclient.AdminPath(apiclient.ResourceSubjects, "delete")+"?id="+created.ID, token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}
}

func TestTrendsValidation(t *testing.T) {
	srv := testServer()
	token := login(t, srv, AdminUsername, AdminPassword, model.RoleAdmin)

	w, resp := do(t, srv, http.MethodGet, apiclient.PathReportTrends+"?metric=grades&period=monthly", token, nil)
	if w.Code != http.StatusBadRequest || resp.Code != model.ErrValidation {
		t.Errorf("bad metric: status=%d code=%q", w.Code, resp.Code)
	}

	_, resp = do(t, srv, http.MethodGet, apiclient.PathReportTrends+"?metric=attendance&period=semester", token, nil)
	var report model.TrendsReport
	json.Unmarshal(resp.Data, &report)
	if report.Metric != model.MetricAttendance || len(report.Points) == 0 {
		t.Errorf("report = %+v", report)
	}
}

func TestUploadProfileImage(t *testing.T) {
	srv := testServer()
	token := login(t, srv, StudentUsername, StudentPassword, model.RoleStudent)

	upload := func(data []byte) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, _ := mw.CreateFormFile("profile_image", "me.png")
		part.Write(data)
		mw.Close()

		req := httptest.NewRequest(http.MethodPost, apiclient.PathUploadProfileImage, &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, req)
		return w
	}

	if w := upload([]byte("\x89PNG\r\n\x1a\nrest")); w.Code != http.StatusOK {
		t.Errorf("png upload: status = %d: %s", w.Code, w.Body.String())
	}
	if w := upload([]byte("plain text")); w.Code != http.StatusBadRequest {
		t.Errorf("text upload: status = %d, want 400", w.Code)
	}
}

func TestRenderPDFOffsets(t *testing.T) {
	pdf := string(renderPDF("Title (draft)", "line"))
	idx := strings.Index(pdf, "startxref\n")
	if idx < 0 {
		t.Fatal("no startxref")
	}
	var xref int
	if _, err := fmt.Sscan(pdf[idx+len("startxref\n"):], &xref); err != nil {
		t.Fatalf("parse startxref: %v", err)
	}
	if !strings.HasPrefix(pdf[xref:], "xref\n") {
		t.Errorf("startxref %d does not point at the xref table", xref)
	}
	if !strings.Contains(pdf, `Title \(draft\)`) {
		t.Error("title parentheses not escaped")
	}
}
