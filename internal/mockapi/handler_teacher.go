package mockapi

import (
	"net/http"
	"strconv"

	"github.com/me/uniportal/pkg/model"
)

// taughtSubjects returns the subjects assigned to the signed-in teacher.
func (s *Server) taughtSubjects(r *http.Request) map[string]model.Subject {
	user := userFromContext(r.Context())
	out := make(map[string]model.Subject)
	for _, sub := range s.data.subjects.rows {
		if sub.TeacherID == user.ID {
			out[sub.ID] = sub
		}
	}
	return out
}

func (s *Server) handleTeacherSubjects(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()
	respondOK(w, s.data.subjects.filter(func(sub model.Subject) bool { return sub.TeacherID == user.ID }))
}

func (s *Server) handleTeacherStudents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	department := q.Get("department")
	semester, _ := strconv.Atoi(q.Get("semester"))

	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	taught := s.taughtSubjects(r)
	if id := q.Get("subject_id"); id != "" {
		sub, ok := taught[id]
		if !ok {
			respondError(w, http.StatusForbidden, model.ErrForbidden, "subject is not assigned to you")
			return
		}
		taught = map[string]model.Subject{id: sub}
	}

	respondOK(w, s.data.students.filter(func(st model.Student) bool {
		if department != "" && st.Department != department {
			return false
		}
		if semester > 0 && st.Semester != semester {
			return false
		}
		for _, sub := range taught {
			if sub.Department == st.Department && sub.Semester == st.Semester {
				return true
			}
		}
		return false
	}))
}

func (s *Server) handleMarkAttendance(w http.ResponseWriter, r *http.Request) {
	var sheet model.AttendanceSheet
	if !decodeBody(w, r, &sheet) {
		return
	}
	if sheet.SubjectID == "" || sheet.Date == "" || len(sheet.Records) == 0 {
		respondError(w, http.StatusBadRequest, model.ErrValidation, "Validation failed: subject_id, date and attendance are required")
		return
	}

	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	sub, ok := s.taughtSubjects(r)[sheet.SubjectID]
	if !ok {
		respondError(w, http.StatusForbidden, model.ErrForbidden, "subject is not assigned to you")
		return
	}
	for _, rec := range sheet.Records {
		rec.SubjectID = sub.ID
		rec.SubjectName = sub.Name
		rec.Date = sheet.Date
		replaced := s.data.attendance.modify(func(a *model.AttendanceRecord) bool {
			if a.StudentID != rec.StudentID || a.SubjectID != rec.SubjectID || a.Date != rec.Date {
				return false
			}
			a.Status = rec.Status
			return true
		})
		if replaced == 0 {
			s.data.attendance.insert(rec)
		}
	}
	respondMessage(w, "Attendance saved for "+strconv.Itoa(len(sheet.Records))+" students")
}

func (s *Server) handleEnterMarks(w http.ResponseWriter, r *http.Request) {
	var entry model.MarksEntry
	if !decodeBody(w, r, &entry) {
		return
	}
	if entry.SubjectID == "" || entry.ExamType == "" || len(entry.Marks) == 0 {
		respondError(w, http.StatusBadRequest, model.ErrValidation, "Validation failed: subject_id, exam_type and marks are required")
		return
	}

	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	sub, ok := s.taughtSubjects(r)[entry.SubjectID]
	if !ok {
		respondError(w, http.StatusForbidden, model.ErrForbidden, "subject is not assigned to you")
		return
	}
	for _, m := range entry.Marks {
		exists := len(s.data.marks.filter(func(x model.Mark) bool {
			return x.StudentID == m.StudentID && x.SubjectID == sub.ID && x.ExamType == entry.ExamType
		})) > 0
		if exists {
			respondError(w, http.StatusConflict, model.ErrTransaction,
				"Transaction failed: marks already recorded for student "+m.StudentID)
			return
		}
	}
	for _, m := range entry.Marks {
		m.SubjectID = sub.ID
		m.SubjectName = sub.Name
		m.Semester = sub.Semester
		m.ExamType = entry.ExamType
		m.CreditHours = sub.CreditHours
		s.data.marks.insert(m)
	}
	respondMessage(w, "Marks saved")
}

func (s *Server) handleUpdateMarks(w http.ResponseWriter, r *http.Request) {
	var entry model.MarksEntry
	if !decodeBody(w, r, &entry) {
		return
	}

	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	if _, ok := s.taughtSubjects(r)[entry.SubjectID]; !ok {
		respondError(w, http.StatusForbidden, model.ErrForbidden, "subject is not assigned to you")
		return
	}
	updated := 0
	for _, m := range entry.Marks {
		updated += s.data.marks.modify(func(x *model.Mark) bool {
			if x.StudentID != m.StudentID || x.SubjectID != entry.SubjectID || x.ExamType != entry.ExamType {
				return false
			}
			x.MarksObtained = m.MarksObtained
			x.TotalMarks = m.TotalMarks
			if m.Grade != "" {
				x.Grade = m.Grade
				x.GradePoint = m.GradePoint
			}
			return true
		})
	}
	if updated == 0 {
		respondError(w, http.StatusNotFound, model.ErrNotFound, "no marks found to update")
		return
	}
	respondMessage(w, "Marks updated")
}
