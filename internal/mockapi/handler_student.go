package mockapi

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/me/uniportal/internal/stats"
	"github.com/me/uniportal/pkg/model"
)

const maxImageSize = 5 << 20

// currentStudent resolves the signed-in student's record, answering 404
// when the account has none.
func (s *Server) currentStudent(w http.ResponseWriter, r *http.Request) (model.Student, bool) {
	user := userFromContext(r.Context())
	st, ok := s.data.studentByUsername(user.Username)
	if !ok {
		respondError(w, http.StatusNotFound, model.ErrNotFound, "student record not found")
	}
	return st, ok
}

func semesterParam(r *http.Request) int {
	n, _ := strconv.Atoi(r.URL.Query().Get("semester"))
	return n
}

func (s *Server) handleStudentMarks(w http.ResponseWriter, r *http.Request) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()
	st, ok := s.currentStudent(w, r)
	if !ok {
		return
	}
	marks := s.data.marks.filter(func(m model.Mark) bool { return m.StudentID == st.ID })
	respondOK(w, stats.FilterBySemester(marks, semesterParam(r)))
}

func (s *Server) handleStudentAttendance(w http.ResponseWriter, r *http.Request) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()
	st, ok := s.currentStudent(w, r)
	if !ok {
		return
	}
	semester := semesterParam(r)
	subjectSemester := make(map[string]int)
	for _, sub := range s.data.subjects.rows {
		subjectSemester[sub.ID] = sub.Semester
	}
	respondOK(w, s.data.attendance.filter(func(a model.AttendanceRecord) bool {
		return a.StudentID == st.ID && (semester <= 0 || subjectSemester[a.SubjectID] == semester)
	}))
}

func (s *Server) handleStudentFees(w http.ResponseWriter, r *http.Request) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()
	st, ok := s.currentStudent(w, r)
	if !ok {
		return
	}
	respondOK(w, s.data.fees.filter(func(f model.Fee) bool { return f.StudentID == st.ID }))
}

func (s *Server) handleStudentPayments(w http.ResponseWriter, r *http.Request) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()
	st, ok := s.currentStudent(w, r)
	if !ok {
		return
	}
	ids := s.data.feeIDs(st.ID)
	respondOK(w, s.data.payments.filter(func(p model.Payment) bool { return ids[p.FeeID] }))
}

func (s *Server) handleStudentProfile(w http.ResponseWriter, r *http.Request) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()
	st, ok := s.currentStudent(w, r)
	if !ok {
		return
	}
	p, ok := s.data.profiles[st.ID]
	if !ok {
		p = model.StudentProfile{}
	}
	p.Student = st
	respondOK(w, p)
}

func (s *Server) handleUpdateStudentProfile(w http.ResponseWriter, r *http.Request) {
	var upd struct {
		Email   *string `json:"email"`
		Phone   *string `json:"phone"`
		Address *string `json:"address"`
	}
	if !decodeBody(w, r, &upd) {
		return
	}
	if upd.Email != nil && !strings.Contains(*upd.Email, "@") {
		respondError(w, http.StatusBadRequest, model.ErrValidation, "Validation failed: invalid email")
		return
	}

	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	st, ok := s.currentStudent(w, r)
	if !ok {
		return
	}
	p := s.data.profiles[st.ID]
	if upd.Email != nil {
		st.Email = *upd.Email
	}
	if upd.Phone != nil {
		st.Phone = *upd.Phone
	}
	if upd.Address != nil {
		p.Address = *upd.Address
	}
	s.data.students.update(st)
	p.Student = st
	s.data.profiles[st.ID] = p
	respondMessage(w, "Profile updated")
}

func (s *Server) handleUploadProfileImage(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize+1<<10)
	file, header, err := r.FormFile("profile_image")
	if err != nil {
		respondError(w, http.StatusBadRequest, model.ErrValidation, "Validation failed: profile_image is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageSize+1))
	if err != nil {
		respondError(w, http.StatusBadRequest, model.ErrValidation, "Validation failed: unreadable upload")
		return
	}
	if len(data) > maxImageSize {
		respondError(w, http.StatusBadRequest, model.ErrValidation, "Validation failed: image larger than 5MB")
		return
	}
	if ct := http.DetectContentType(data); !strings.HasPrefix(ct, "image/") {
		respondError(w, http.StatusBadRequest, model.ErrValidation, "Validation failed: file is not an image")
		return
	}

	path := fmt.Sprintf("uploads/profiles/%s_%s%s", user.Username, uuid.NewString()[:8], filepath.Ext(header.Filename))

	s.data.mu.Lock()
	if st, ok := s.data.studentByUsername(user.Username); ok {
		st.ProfileImage = path
		s.data.students.update(st)
	}
	if acct, ok := s.data.accounts[user.Username]; ok {
		acct.user.ProfileImage = path
		s.data.accounts[user.Username] = acct
	}
	s.data.mu.Unlock()

	respondOK(w, map[string]string{"profile_image": path, "url": "/" + path})
}

func (s *Server) handleIDCard(w http.ResponseWriter, r *http.Request) {
	s.data.mu.RLock()
	st, ok := s.currentStudent(w, r)
	s.data.mu.RUnlock()
	if !ok {
		return
	}
	respondPDF(w, "ID_Card_"+st.Username+".pdf", renderPDF("Student ID Card",
		"Name: "+st.FullName,
		"Student ID: "+st.StudentID,
		"Department: "+st.Department,
		"Semester: "+strconv.Itoa(st.Semester),
	))
}

func (s *Server) handleReceipt(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("payment_id")
	if id == "" {
		respondError(w, http.StatusBadRequest, model.ErrValidation, "payment_id is required")
		return
	}

	s.data.mu.RLock()
	defer s.data.mu.RUnlock()
	st, ok := s.currentStudent(w, r)
	if !ok {
		return
	}
	p, found := s.data.payments.get(id)
	if !found || !s.data.feeIDs(st.ID)[p.FeeID] {
		respondError(w, http.StatusNotFound, model.ErrNotFound, "payment not found")
		return
	}
	respondPDF(w, "Receipt_"+p.ID+".pdf", renderPDF("Payment Receipt",
		"Student: "+st.FullName,
		"Payment: "+p.ID,
		"Reference: "+p.Reference,
		fmt.Sprintf("Amount: %.2f", p.Amount),
		"Date: "+p.PaymentDate,
	))
}

func (s *Server) handlePerformanceReportPDF(w http.ResponseWriter, r *http.Request) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()
	st, ok := s.currentStudent(w, r)
	if !ok {
		return
	}
	marks := s.data.marks.filter(func(m model.Mark) bool { return m.StudentID == st.ID })
	lines := []string{"Student: " + st.FullName, fmt.Sprintf("GPA: %.2f", stats.AverageGPA(marks))}
	for _, m := range marks {
		lines = append(lines, fmt.Sprintf("%s: %.0f/%.0f (%s)", m.SubjectName, m.MarksObtained, m.TotalMarks, m.Grade))
	}
	respondPDF(w, "Performance_Report_"+st.Username+".pdf", renderPDF("Performance Report", lines...))
}
