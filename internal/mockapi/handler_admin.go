package mockapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/me/uniportal/internal/apiclient"
	"github.com/me/uniportal/pkg/model"
)

// mountCRUD registers list, create, update and delete for one admin
// resource. check returns a validation message, or "" when row is acceptable.
func mountCRUD[T any](r chi.Router, s *Server, resource string, tbl *table[T], check func(T) string) {
	r.Get(apiclient.AdminPath(resource, "list"), func(w http.ResponseWriter, r *http.Request) {
		s.data.mu.RLock()
		rows := tbl.list()
		s.data.mu.RUnlock()
		respondOK(w, rows)
	})

	r.Post(apiclient.AdminPath(resource, "create"), func(w http.ResponseWriter, r *http.Request) {
		var row T
		if !decodeBody(w, r, &row) {
			return
		}
		if msg := check(row); msg != "" {
			respondError(w, http.StatusBadRequest, model.ErrValidation, "Validation failed: "+msg)
			return
		}
		s.data.mu.Lock()
		id := tbl.insert(row)
		s.data.mu.Unlock()
		s.logger.Info("record created", "resource", resource, "id", id)
		respondCreated(w, id)
	})

	r.Put(apiclient.AdminPath(resource, "update"), func(w http.ResponseWriter, r *http.Request) {
		var row T
		if !decodeBody(w, r, &row) {
			return
		}
		if *tbl.id(&row) == "" {
			respondError(w, http.StatusBadRequest, model.ErrValidation, "Validation failed: id is required")
			return
		}
		if msg := check(row); msg != "" {
			respondError(w, http.StatusBadRequest, model.ErrValidation, "Validation failed: "+msg)
			return
		}
		s.data.mu.Lock()
		ok := tbl.update(row)
		s.data.mu.Unlock()
		if !ok {
			respondError(w, http.StatusNotFound, model.ErrNotFound, resource+" record not found")
			return
		}
		respondMessage(w, "updated")
	})

	r.Delete(apiclient.AdminPath(resource, "delete"), func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		s.data.mu.Lock()
		ok := tbl.delete(id)
		s.data.mu.Unlock()
		if !ok {
			respondError(w, http.StatusNotFound, model.ErrNotFound, resource+" record not found")
			return
		}
		s.logger.Info("record deleted", "resource", resource, "id", id)
		respondMessage(w, "deleted")
	})
}

func required(fields map[string]string) string {
	var missing []string
	for name, v := range fields {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return ""
	}
	if len(missing) > 1 {
		return "missing required fields"
	}
	return missing[0] + " is required"
}

func checkStudent(st model.Student) string {
	return required(map[string]string{"username": st.Username, "full_name": st.FullName})
}

func checkTeacher(t model.Teacher) string {
	return required(map[string]string{"username": t.Username, "full_name": t.FullName})
}

func checkSubject(sub model.Subject) string {
	return required(map[string]string{"subject_code": sub.Code, "subject_name": sub.Name})
}

func checkNotice(n model.Notice) string {
	return required(map[string]string{"title": n.Title, "content": n.Content})
}

func checkFee(f model.Fee) string {
	if msg := required(map[string]string{"student_id": f.StudentID, "fee_type": f.FeeType}); msg != "" {
		return msg
	}
	if f.Amount <= 0 {
		return "amount must be positive"
	}
	return ""
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()
	respondOK(w, s.data.sessions.list())
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var sess model.AcademicSession
	if !decodeBody(w, r, &sess) {
		return
	}
	if msg := checkDates(sess.Name, sess.StartDate, sess.EndDate); msg != "" {
		respondError(w, http.StatusBadRequest, model.ErrValidation, "Validation failed: "+msg)
		return
	}

	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	if len(s.data.sessions.filter(func(x model.AcademicSession) bool { return x.Name == sess.Name })) > 0 {
		respondError(w, http.StatusConflict, model.ErrTransaction, "Transaction failed: session "+sess.Name+" already exists")
		return
	}
	sess.IsActive = false
	respondCreated(w, s.data.sessions.insert(sess))
}

func (s *Server) handleActivateSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"session_id"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	if _, ok := s.data.sessions.get(body.ID); !ok {
		respondError(w, http.StatusNotFound, model.ErrNotFound, "session not found")
		return
	}
	s.data.sessions.modify(func(x *model.AcademicSession) bool {
		x.IsActive = x.ID == body.ID
		return true
	})
	respondMessage(w, "Session activated")
}

func (s *Server) handleListSemesters(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()
	respondOK(w, s.data.semesters.filter(func(x model.Semester) bool {
		return sessionID == "" || x.SessionID == sessionID
	}))
}

func (s *Server) handleCreateSemester(w http.ResponseWriter, r *http.Request) {
	var sem model.Semester
	if !decodeBody(w, r, &sem) {
		return
	}
	if msg := checkDates(sem.Name, sem.StartDate, sem.EndDate); msg != "" {
		respondError(w, http.StatusBadRequest, model.ErrValidation, "Validation failed: "+msg)
		return
	}

	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	parent, ok := s.data.sessions.get(sem.SessionID)
	if !ok {
		respondError(w, http.StatusBadRequest, model.ErrValidation, "Validation failed: unknown session_id")
		return
	}
	if sem.StartDate < parent.StartDate || sem.EndDate > parent.EndDate {
		respondError(w, http.StatusBadRequest, model.ErrValidation, "Validation failed: semester must fall within its session")
		return
	}
	sem.IsActive = false
	respondCreated(w, s.data.semesters.insert(sem))
}

func (s *Server) handleActivateSemester(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"semester_id"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	if _, ok := s.data.semesters.get(body.ID); !ok {
		respondError(w, http.StatusNotFound, model.ErrNotFound, "semester not found")
		return
	}
	s.data.semesters.modify(func(x *model.Semester) bool {
		x.IsActive = x.ID == body.ID
		return true
	})
	respondMessage(w, "Semester activated")
}

// checkDates validates a named date range with the client's own rules.
func checkDates(name, start, end string) string {
	if strings.TrimSpace(name) == "" {
		return "name is required"
	}
	if !apiclient.IsValidDate(start) || !apiclient.IsValidDate(end) {
		return "dates must be valid YYYY-MM-DD"
	}
	if start >= end {
		return "end_date must be after start_date"
	}
	return ""
}
