// Package mockapi is an in-memory stand-in for the portal backend. It
// serves every endpoint the client calls with the same envelopes, status
// codes and bearer-token rules, and can be told to fail on purpose.
package mockapi

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/me/uniportal/internal/apiclient"
	"github.com/me/uniportal/internal/logging"
	"github.com/me/uniportal/pkg/model"
)

// Failure describes an injected failure for one path.
type Failure struct {
	// Status is the HTTP status to answer with; 0 means 500.
	Status int
	// Code and Message fill the error envelope.
	Code    model.ErrorCode
	Message string
	// EmptyBody answers 200 with no content instead of an error.
	EmptyBody bool
}

// Server is the fake portal backend.
type Server struct {
	router chi.Router
	logger *slog.Logger
	data   *Data
	tokens *tokenManager
	now    func() time.Time

	secret []byte
	ttl    time.Duration

	mu       sync.Mutex
	hits     map[string]int
	failures map[string]Failure
}

// Option configures optional Server settings.
type Option func(*Server)

// WithSecret sets the key tokens are signed with.
func WithSecret(secret []byte) Option {
	return func(s *Server) {
		s.secret = secret
	}
}

// WithTokenTTL sets the lifetime of issued tokens.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Server) {
		s.ttl = ttl
	}
}

// WithClock overrides the time source for tokens and dated output.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// WithData replaces the seeded state.
func WithData(d *Data) Option {
	return func(s *Server) {
		s.data = d
	}
}

// New creates a server with all routes registered.
func New(logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		logger:   logging.OrDiscard(logger).With("component", "mockapi"),
		now:      time.Now,
		secret:   []byte("uniportal-mock-secret"),
		ttl:      time.Hour,
		hits:     make(map[string]int),
		failures: make(map[string]Failure),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.data == nil {
		s.data = NewData()
	}
	s.tokens = newTokenManager(s.secret, s.ttl, s.now)

	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Fail makes every request to path answer with f until Reset.
func (s *Server) Fail(path string, f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = f
}

// Reset clears injected failures and hit counters.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]Failure)
	s.hits = make(map[string]int)
}

// Hits returns how many requests reached path.
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// TotalHits returns how many requests reached the server.
func (s *Server) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, h := range s.hits {
		n += h
	}
	return n
}

// RevokeAll invalidates every token issued so far, as if the server had
// expired all sessions.
func (s *Server) RevokeAll() {
	s.tokens.revokeAll()
}

func (s *Server) routes() {
	r := s.router

	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))
	r.Use(s.faultMiddleware)

	r.Post(apiclient.PathLogin, s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Post(apiclient.PathLogout, s.handleLogout)
		r.Get(apiclient.PathVerify, s.handleVerify)
		r.Get(apiclient.PathNotices, s.handleNotices)
		r.Post(apiclient.PathUploadProfileImage, s.handleUploadProfileImage)

		r.Group(func(r chi.Router) {
			r.Use(requireRole(model.RoleStudent))
			r.Get(apiclient.PathStudentMarks, s.handleStudentMarks)
			r.Get(apiclient.PathStudentAttendance, s.handleStudentAttendance)
			r.Get(apiclient.PathStudentFees, s.handleStudentFees)
			r.Get(apiclient.PathStudentPayments, s.handleStudentPayments)
			r.Get(apiclient.PathStudentProfile, s.handleStudentProfile)
			r.Put(apiclient.PathStudentProfile, s.handleUpdateStudentProfile)
			r.Get(apiclient.PathStudentIDCard, s.handleIDCard)
			r.Get(apiclient.PathStudentReceipt, s.handleReceipt)
			r.Get(apiclient.PathStudentReport, s.handlePerformanceReportPDF)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireRole(model.RoleTeacher))
			r.Get(apiclient.PathTeacherStudents, s.handleTeacherStudents)
			r.Get(apiclient.PathTeacherSubjects, s.handleTeacherSubjects)
			r.Post(apiclient.PathTeacherAttendance, s.handleMarkAttendance)
			r.Post(apiclient.PathTeacherMarks, s.handleEnterMarks)
			r.Put(apiclient.PathTeacherMarks, s.handleUpdateMarks)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireRole(model.RoleAdmin))
			mountCRUD(r, s, apiclient.ResourceStudents, s.data.students, checkStudent)
			mountCRUD(r, s, apiclient.ResourceTeachers, s.data.teachers, checkTeacher)
			mountCRUD(r, s, apiclient.ResourceFees, s.data.fees, checkFee)
			mountCRUD(r, s, apiclient.ResourceSubjects, s.data.subjects, checkSubject)
			mountCRUD(r, s, apiclient.ResourceNotices, s.data.notices, checkNotice)

			r.Get(apiclient.PathSessionsList, s.handleListSessions)
			r.Post(apiclient.PathSessionsCreate, s.handleCreateSession)
			r.Post(apiclient.PathSessionsActivate, s.handleActivateSession)
			r.Get(apiclient.PathSemestersList, s.handleListSemesters)
			r.Post(apiclient.PathSemestersCreate, s.handleCreateSemester)
			r.Post(apiclient.PathSemestersActivate, s.handleActivateSemester)

			r.Get(apiclient.PathReportPerformance, s.handlePerformanceReport)
			r.Get(apiclient.PathReportFinancial, s.handleFinancialReport)
			r.Get(apiclient.PathReportTrends, s.handleTrendsReport)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, model.ErrNotFound, "endpoint not found: "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "", "method not allowed")
	})
}
