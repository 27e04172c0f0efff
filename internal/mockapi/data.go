package mockapi

import (
	"sync"

	"github.com/google/uuid"

	"github.com/me/uniportal/pkg/model"
)

// table is an in-memory list of records addressed by id. It is not
// synchronized; Data.mu guards every table.
type table[T any] struct {
	rows []T
	id   func(*T) *string
}

func newTable[T any](id func(*T) *string, rows ...T) *table[T] {
	return &table[T]{rows: rows, id: id}
}

func (t *table[T]) list() []T {
	out := make([]T, len(t.rows))
	copy(out, t.rows)
	return out
}

func (t *table[T]) filter(keep func(T) bool) []T {
	out := []T{}
	for _, row := range t.rows {
		if keep(row) {
			out = append(out, row)
		}
	}
	return out
}

func (t *table[T]) get(id string) (T, bool) {
	for _, row := range t.rows {
		if *t.id(&row) == id {
			return row, true
		}
	}
	var zero T
	return zero, false
}

func (t *table[T]) insert(row T) string {
	id := uuid.NewString()
	*t.id(&row) = id
	t.rows = append(t.rows, row)
	return id
}

func (t *table[T]) update(row T) bool {
	id := *t.id(&row)
	for i := range t.rows {
		if *t.id(&t.rows[i]) == id {
			t.rows[i] = row
			return true
		}
	}
	return false
}

// modify applies fn to every row and reports how many it changed.
func (t *table[T]) modify(fn func(*T) bool) int {
	n := 0
	for i := range t.rows {
		if fn(&t.rows[i]) {
			n++
		}
	}
	return n
}

func (t *table[T]) delete(id string) bool {
	for i := range t.rows {
		if *t.id(&t.rows[i]) == id {
			t.rows = append(t.rows[:i], t.rows[i+1:]...)
			return true
		}
	}
	return false
}

// account is a user that can sign in.
type account struct {
	password string
	user     model.CurrentUser
}

// Data is the backend's in-memory state.
type Data struct {
	mu sync.RWMutex

	accounts   map[string]account
	students   *table[model.Student]
	teachers   *table[model.Teacher]
	subjects   *table[model.Subject]
	fees       *table[model.Fee]
	payments   *table[model.Payment]
	notices    *table[model.Notice]
	marks      *table[model.Mark]
	attendance *table[model.AttendanceRecord]
	sessions   *table[model.AcademicSession]
	semesters  *table[model.Semester]
	profiles   map[string]model.StudentProfile
}

// Seeded credentials, one account per role.
const (
	StudentUsername = "jdoe"
	StudentPassword = "student123"
	TeacherUsername = "teacher1"
	TeacherPassword = "teacher123"
	AdminUsername   = "admin"
	AdminPassword   = "admin123"
)

// NewData returns a backend seeded with one account per role and enough
// records to exercise every endpoint.
func NewData() *Data {
	jdoe := model.Student{ID: "stu-1", StudentID: "CS-2022-001", Username: StudentUsername, FullName: "Jane Doe",
		Email: "jdoe@uni.example", Department: "Computer Science", Semester: 3}
	asmith := model.Student{ID: "stu-2", StudentID: "CS-2022-002", Username: "asmith", FullName: "Alex Smith",
		Email: "asmith@uni.example", Department: "Computer Science", Semester: 3}
	teacher := model.Teacher{ID: "tch-1", TeacherID: "T-001", Username: TeacherUsername, FullName: "Grace Hopper",
		Email: "ghopper@uni.example", Department: "Computer Science", Qualification: "PhD"}

	d := &Data{
		accounts: map[string]account{
			StudentUsername: {password: StudentPassword, user: model.CurrentUser{
				ID: jdoe.ID, Role: model.RoleStudent, FullName: jdoe.FullName, Username: jdoe.Username,
				Email: jdoe.Email, Department: jdoe.Department, Semester: jdoe.Semester,
			}},
			TeacherUsername: {password: TeacherPassword, user: model.CurrentUser{
				ID: teacher.ID, Role: model.RoleTeacher, FullName: teacher.FullName, Username: teacher.Username,
				Email: teacher.Email, Department: teacher.Department,
			}},
			AdminUsername: {password: AdminPassword, user: model.CurrentUser{
				ID: "adm-1", Role: model.RoleAdmin, FullName: "Portal Administrator", Username: AdminUsername,
			}},
		},
		students: newTable(func(s *model.Student) *string { return &s.ID }, jdoe, asmith),
		teachers: newTable(func(t *model.Teacher) *string { return &t.ID }, teacher),
		subjects: newTable(func(s *model.Subject) *string { return &s.ID },
			model.Subject{ID: "sub-1", Code: "CS301", Name: "Data Structures", Department: "Computer Science", Semester: 3, CreditHours: 3, TeacherID: teacher.ID},
			model.Subject{ID: "sub-2", Code: "CS302", Name: "Databases", Department: "Computer Science", Semester: 3, CreditHours: 4, TeacherID: teacher.ID},
			model.Subject{ID: "sub-3", Code: "CS201", Name: "Discrete Mathematics", Department: "Computer Science", Semester: 2, CreditHours: 3},
		),
		fees: newTable(func(f *model.Fee) *string { return &f.ID },
			model.Fee{ID: "fee-1", StudentID: jdoe.ID, FeeType: "tuition", Amount: 1000, Paid: 600, DueDate: "2024-09-30", Status: "partial", Semester: 3},
			model.Fee{ID: "fee-2", StudentID: jdoe.ID, FeeType: "library", Amount: 50, Paid: 50, DueDate: "2024-09-30", Status: "paid", Semester: 3},
			model.Fee{ID: "fee-3", StudentID: asmith.ID, FeeType: "tuition", Amount: 1000, DueDate: "2024-09-30", Status: "pending", Semester: 3},
		),
		payments: newTable(func(p *model.Payment) *string { return &p.ID },
			model.Payment{ID: "pay-1", FeeID: "fee-1", Amount: 600, Method: "card", PaymentDate: "2024-08-15", Reference: "TXN-1001"},
			model.Payment{ID: "pay-2", FeeID: "fee-2", Amount: 50, Method: "cash", PaymentDate: "2024-09-02", Reference: "TXN-1002"},
		),
		notices: newTable(func(n *model.Notice) *string { return &n.ID },
			model.Notice{ID: "ntc-1", Title: "Semester starts", Content: "Classes begin on Monday.", Audience: "all", Priority: "high", PostedBy: AdminUsername, CreatedAt: "2024-08-20"},
			model.Notice{ID: "ntc-2", Title: "Marks deadline", Content: "Submit midterm marks by Friday.", Audience: "teachers", Priority: "normal", PostedBy: AdminUsername, CreatedAt: "2024-10-01"},
		),
		marks: newTable(func(m *model.Mark) *string { return &m.ID },
			model.Mark{ID: "mrk-1", StudentID: jdoe.ID, SubjectID: "sub-1", SubjectName: "Data Structures", Semester: 3, ExamType: "final", MarksObtained: 85, TotalMarks: 100, Grade: "A", GradePoint: 4.0, CreditHours: 3},
			model.Mark{ID: "mrk-2", StudentID: jdoe.ID, SubjectID: "sub-2", SubjectName: "Databases", Semester: 3, ExamType: "final", MarksObtained: 70, TotalMarks: 100, Grade: "B", GradePoint: 3.0, CreditHours: 4},
			model.Mark{ID: "mrk-3", StudentID: jdoe.ID, SubjectID: "sub-3", SubjectName: "Discrete Mathematics", Semester: 2, ExamType: "final", MarksObtained: 78, TotalMarks: 100, Grade: "B+", GradePoint: 3.5, CreditHours: 3},
			model.Mark{ID: "mrk-4", StudentID: asmith.ID, SubjectID: "sub-1", SubjectName: "Data Structures", Semester: 3, ExamType: "final", MarksObtained: 45, TotalMarks: 100, Grade: "D", GradePoint: 1.0, CreditHours: 3},
		),
		attendance: newTable(func(a *model.AttendanceRecord) *string { return &a.ID },
			model.AttendanceRecord{ID: "att-1", StudentID: jdoe.ID, SubjectID: "sub-1", SubjectName: "Data Structures", Date: "2024-09-02", Status: "present"},
			model.AttendanceRecord{ID: "att-2", StudentID: jdoe.ID, SubjectID: "sub-1", SubjectName: "Data Structures", Date: "2024-09-09", Status: "late"},
			model.AttendanceRecord{ID: "att-3", StudentID: jdoe.ID, SubjectID: "sub-2", SubjectName: "Databases", Date: "2024-09-03", Status: "absent"},
			model.AttendanceRecord{ID: "att-4", StudentID: jdoe.ID, SubjectID: "sub-2", SubjectName: "Databases", Date: "2024-10-01", Status: "present"},
		),
		sessions: newTable(func(s *model.AcademicSession) *string { return &s.ID },
			model.AcademicSession{ID: "ses-1", Name: "2024-2025", StartDate: "2024-08-01", EndDate: "2025-07-31", IsActive: true},
		),
		semesters: newTable(func(s *model.Semester) *string { return &s.ID },
			model.Semester{ID: "sem-1", SessionID: "ses-1", Name: "Fall 2024", Number: 1, StartDate: "2024-08-01", EndDate: "2024-12-20", IsActive: true},
		),
		profiles: map[string]model.StudentProfile{
			jdoe.ID: {Student: jdoe, DateOfBirth: "2003-05-14", Address: "12 College Road", Guardian: "John Doe", EnrolledAt: "2022-08-01"},
		},
	}
	return d
}

// studentByUsername returns the student record of a signed-in student.
func (d *Data) studentByUsername(username string) (model.Student, bool) {
	for _, s := range d.students.rows {
		if s.Username == username {
			return s, true
		}
	}
	return model.Student{}, false
}

// feeIDs returns the ids of the fees charged to a student.
func (d *Data) feeIDs(studentID string) map[string]bool {
	ids := make(map[string]bool)
	for _, f := range d.fees.rows {
		if f.StudentID == studentID {
			ids[f.ID] = true
		}
	}
	return ids
}
