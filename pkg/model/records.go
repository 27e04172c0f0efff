package model

// Student is a student record as listed by the admin endpoints.
type Student struct {
	ID           string `json:"id,omitempty"`
	StudentID    string `json:"student_id,omitempty"`
	Username     string `json:"username" validate:"required"`
	FullName     string `json:"full_name" validate:"required"`
	Email        string `json:"email,omitempty" validate:"omitempty,email"`
	Phone        string `json:"phone,omitempty"`
	Department   string `json:"department,omitempty"`
	Semester     int    `json:"semester,omitempty"`
	Password     string `json:"password,omitempty"`
	ProfileImage string `json:"profile_image,omitempty"`
}

// Teacher is a teacher record as listed by the admin endpoints.
type Teacher struct {
	ID            string `json:"id,omitempty"`
	TeacherID     string `json:"teacher_id,omitempty"`
	Username      string `json:"username" validate:"required"`
	FullName      string `json:"full_name" validate:"required"`
	Email         string `json:"email,omitempty" validate:"omitempty,email"`
	Phone         string `json:"phone,omitempty"`
	Department    string `json:"department,omitempty"`
	Qualification string `json:"qualification,omitempty"`
	Password      string `json:"password,omitempty"`
}

// Subject is a course offered in a department and semester.
type Subject struct {
	ID          string `json:"id,omitempty"`
	Code        string `json:"subject_code" validate:"required"`
	Name        string `json:"subject_name" validate:"required"`
	Department  string `json:"department,omitempty"`
	Semester    int    `json:"semester,omitempty"`
	CreditHours int    `json:"credit_hours,omitempty"`
	TeacherID   string `json:"teacher_id,omitempty"`
}

// Fee is a fee charged to a student.
type Fee struct {
	ID        string  `json:"id,omitempty"`
	StudentID string  `json:"student_id" validate:"required"`
	FeeType   string  `json:"fee_type" validate:"required"`
	Amount    float64 `json:"amount" validate:"gt=0"`
	Paid      float64 `json:"paid_amount,omitempty" validate:"gte=0"`
	DueDate   string  `json:"due_date,omitempty" validate:"omitempty,ymd"`
	Status    string  `json:"status,omitempty"`
	Semester  int     `json:"semester,omitempty"`
}

// Outstanding returns the unpaid part of the fee, never negative.
func (f Fee) Outstanding() float64 {
	if f.Paid >= f.Amount {
		return 0
	}
	return f.Amount - f.Paid
}

// Payment is a recorded payment against a fee.
type Payment struct {
	ID          string  `json:"id"`
	FeeID       string  `json:"fee_id,omitempty"`
	Amount      float64 `json:"amount"`
	Method      string  `json:"payment_method,omitempty"`
	PaymentDate string  `json:"payment_date,omitempty"`
	Reference   string  `json:"transaction_id,omitempty"`
}

// Notice is an announcement shown on dashboards.
type Notice struct {
	ID         string `json:"id,omitempty"`
	Title      string `json:"title" validate:"required"`
	Content    string `json:"content" validate:"required"`
	Audience   string `json:"target_audience,omitempty"`
	Priority   string `json:"priority,omitempty"`
	PostedBy   string `json:"posted_by,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
	ExpiryDate string `json:"expiry_date,omitempty" validate:"omitempty,ymd"`
}

// Mark is a subject result for a student.
type Mark struct {
	ID            string  `json:"id,omitempty"`
	StudentID     string  `json:"student_id,omitempty" validate:"required"`
	SubjectID     string  `json:"subject_id"`
	SubjectName   string  `json:"subject_name,omitempty"`
	Semester      int     `json:"semester,omitempty"`
	ExamType      string  `json:"exam_type,omitempty"`
	MarksObtained float64 `json:"marks_obtained" validate:"gte=0,ltefield=TotalMarks"`
	TotalMarks    float64 `json:"total_marks" validate:"gt=0"`
	Grade         string  `json:"grade,omitempty"`
	GradePoint    float64 `json:"grade_point,omitempty"`
	CreditHours   int     `json:"credit_hours,omitempty"`
}

// AttendanceRecord is one attendance entry for a student in a subject.
type AttendanceRecord struct {
	ID          string `json:"id,omitempty"`
	StudentID   string `json:"student_id" validate:"required"`
	SubjectID   string `json:"subject_id"`
	SubjectName string `json:"subject_name,omitempty"`
	Date        string `json:"date"`
	Status      string `json:"status" validate:"oneof=present absent late"`
}

// Present reports whether the entry counts towards attendance.
func (a AttendanceRecord) Present() bool {
	return a.Status == "present" || a.Status == "late"
}

// AttendanceSheet is a batch of attendance entries a teacher submits for one class.
type AttendanceSheet struct {
	SubjectID string             `json:"subject_id" validate:"required"`
	Date      string             `json:"date" validate:"required,ymd"`
	Records   []AttendanceRecord `json:"attendance" validate:"required,min=1,dive"`
}

// MarksEntry is a batch of marks a teacher submits for one subject and exam.
type MarksEntry struct {
	SubjectID string `json:"subject_id" validate:"required"`
	ExamType  string `json:"exam_type" validate:"required"`
	Marks     []Mark `json:"marks" validate:"required,min=1,dive"`
}

// StudentProfile is the self-service profile of the signed-in student.
type StudentProfile struct {
	Student
	DateOfBirth string `json:"date_of_birth,omitempty"`
	Address     string `json:"address,omitempty"`
	Guardian    string `json:"guardian_name,omitempty"`
	EnrolledAt  string `json:"enrollment_date,omitempty"`
}

// AcademicSession is an academic year such as "2024-2025".
type AcademicSession struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"session_name" validate:"required"`
	StartDate string `json:"start_date" validate:"required,ymd"`
	EndDate   string `json:"end_date" validate:"required,ymd"`
	IsActive  bool   `json:"is_active,omitempty"`
}

// Semester is a term within an academic session.
type Semester struct {
	ID        string `json:"id,omitempty"`
	SessionID string `json:"session_id" validate:"required"`
	Name      string `json:"semester_name" validate:"required"`
	Number    int    `json:"semester_number,omitempty" validate:"omitempty,min=1,max=12"`
	StartDate string `json:"start_date" validate:"required,ymd"`
	EndDate   string `json:"end_date" validate:"required,ymd"`
	IsActive  bool   `json:"is_active,omitempty"`
}

// DashboardStats are the headline counters of the admin dashboard.
type DashboardStats struct {
	TotalStudents  int     `json:"total_students"`
	TotalTeachers  int     `json:"total_teachers"`
	TotalSubjects  int     `json:"total_subjects"`
	ActiveNotices  int     `json:"active_notices"`
	FeesCollected  float64 `json:"fees_collected"`
	FeesPending    float64 `json:"fees_pending"`
	ActiveSession  string  `json:"active_session,omitempty"`
	ActiveSemester string  `json:"active_semester,omitempty"`
}
