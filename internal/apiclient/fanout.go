package apiclient

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/me/uniportal/internal/stats"
	"github.com/me/uniportal/pkg/model"
)

// Task is one independent unit of a fan-out.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Result is the outcome of one task.
type Result struct {
	Name string
	Err  error
}

// FanOut runs tasks concurrently, at most limit at a time (no limit when
// limit <= 0), and returns one result per task in input order. A failing
// task does not stop the others, except that an expired session cancels
// the tasks that have not finished: they would all be rejected anyway.
func FanOut(ctx context.Context, limit int, tasks ...Task) []Result {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]Result, len(tasks))
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, task := range tasks {
		g.Go(func() error {
			err := task.Run(ctx)
			if IsSessionExpired(err) {
				cancel()
			}
			results[i] = Result{Name: task.Name, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Errors collects the failures of results keyed by task name, or nil when
// every task succeeded.
func Errors(results []Result) map[string]error {
	var errs map[string]error
	for _, r := range results {
		if r.Err == nil {
			continue
		}
		if errs == nil {
			errs = make(map[string]error)
		}
		errs[r.Name] = r.Err
	}
	return errs
}

// firstExpired returns ErrSessionExpired if any task hit it.
func firstExpired(results []Result) error {
	for _, r := range results {
		if IsSessionExpired(r.Err) {
			return r.Err
		}
	}
	return nil
}

const dashboardConcurrency = 4

// StudentDashboard is the signed-in student's overview. Sections that
// failed to load stay empty and are listed in Errors.
type StudentDashboard struct {
	Marks          []model.Mark
	Attendance     []model.AttendanceRecord
	Fees           []model.Fee
	Notices        []model.Notice
	GPA            float64
	AttendanceRate float64
	Outstanding    float64
	Errors         map[string]error
}

// StudentDashboard loads every section of the student overview at once.
// Only an expired session fails the whole call.
func (c *Client) StudentDashboard(ctx context.Context) (*StudentDashboard, error) {
	d := &StudentDashboard{}
	results := FanOut(ctx, dashboardConcurrency,
		Task{Name: "marks", Run: func(ctx context.Context) (err error) {
			d.Marks, err = c.StudentMarks(ctx, 0)
			return err
		}},
		Task{Name: "attendance", Run: func(ctx context.Context) (err error) {
			d.Attendance, err = c.StudentAttendance(ctx, 0)
			return err
		}},
		Task{Name: "fees", Run: func(ctx context.Context) (err error) {
			d.Fees, err = c.StudentFees(ctx)
			return err
		}},
		Task{Name: "notices", Run: func(ctx context.Context) (err error) {
			d.Notices, err = c.Notices(ctx)
			return err
		}},
	)
	if err := firstExpired(results); err != nil {
		return nil, err
	}

	d.Errors = Errors(results)
	d.GPA = stats.AverageGPA(d.Marks)
	d.AttendanceRate = stats.AttendanceRate(d.Attendance)
	d.Outstanding = stats.TotalOutstanding(d.Fees)
	return d, nil
}

// AdminDashboard is the administrator's overview, assembled from the list
// endpoints. Counters whose source failed stay zero and are listed in Errors.
type AdminDashboard struct {
	Stats  model.DashboardStats
	Errors map[string]error
}

// AdminDashboard loads the admin counters concurrently.
func (c *Client) AdminDashboard(ctx context.Context) (*AdminDashboard, error) {
	var (
		students  []model.Student
		teachers  []model.Teacher
		subjects  []model.Subject
		notices   []model.Notice
		fees      []model.Fee
		sessions  []model.AcademicSession
		semesters []model.Semester
	)
	results := FanOut(ctx, dashboardConcurrency,
		Task{Name: ResourceStudents, Run: func(ctx context.Context) (err error) {
			students, err = c.ListStudents(ctx)
			return err
		}},
		Task{Name: ResourceTeachers, Run: func(ctx context.Context) (err error) {
			teachers, err = c.ListTeachers(ctx)
			return err
		}},
		Task{Name: ResourceSubjects, Run: func(ctx context.Context) (err error) {
			subjects, err = c.ListSubjects(ctx)
			return err
		}},
		Task{Name: ResourceNotices, Run: func(ctx context.Context) (err error) {
			notices, err = c.ListNotices(ctx)
			return err
		}},
		Task{Name: ResourceFees, Run: func(ctx context.Context) (err error) {
			fees, err = c.ListFees(ctx)
			return err
		}},
		Task{Name: "sessions", Run: func(ctx context.Context) (err error) {
			sessions, err = c.ListAcademicSessions(ctx)
			return err
		}},
		Task{Name: "semesters", Run: func(ctx context.Context) (err error) {
			semesters, err = c.ListSemesters(ctx, "")
			return err
		}},
	)
	if err := firstExpired(results); err != nil {
		return nil, err
	}

	d := &AdminDashboard{Errors: Errors(results)}
	d.Stats.TotalStudents = len(students)
	d.Stats.TotalTeachers = len(teachers)
	d.Stats.TotalSubjects = len(subjects)
	today := c.now().Format(dateLayout)
	for _, n := range notices {
		if n.ExpiryDate == "" || n.ExpiryDate >= today {
			d.Stats.ActiveNotices++
		}
	}
	for _, f := range fees {
		d.Stats.FeesCollected += f.Paid
		d.Stats.FeesPending += f.Outstanding()
	}
	d.Stats.FeesCollected = stats.Round2(d.Stats.FeesCollected)
	d.Stats.FeesPending = stats.Round2(d.Stats.FeesPending)
	for _, s := range sessions {
		if s.IsActive {
			d.Stats.ActiveSession = s.Name
			break
		}
	}
	for _, s := range semesters {
		if s.IsActive {
			d.Stats.ActiveSemester = s.Name
			break
		}
	}
	return d, nil
}
