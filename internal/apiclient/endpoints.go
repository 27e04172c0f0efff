package apiclient

// Backend endpoint paths, relative to the configured base URL.
const (
	PathLogin  = "/auth/login.php"
	PathLogout = "/auth/logout.php"
	PathVerify = "/auth/verify.php"

	PathStudentMarks      = "/student/marks.php"
	PathStudentAttendance = "/student/attendance.php"
	PathStudentFees       = "/student/fees.php"
	PathStudentPayments   = "/student/payments.php"
	PathStudentProfile    = "/student/profile.php"
	PathStudentIDCard     = "/student/id-card.php"
	PathStudentReceipt    = "/student/receipt.php"
	PathStudentReport     = "/student/performance-report.php"

	PathTeacherStudents   = "/teacher/students.php"
	PathTeacherSubjects   = "/teacher/subjects.php"
	PathTeacherAttendance = "/teacher/attendance.php"
	PathTeacherMarks      = "/teacher/marks.php"

	PathSessionsList     = "/admin/sessions/list.php"
	PathSessionsCreate   = "/admin/sessions/create.php"
	PathSessionsActivate = "/admin/sessions/activate.php"

	PathSemestersList     = "/admin/semesters/list.php"
	PathSemestersCreate   = "/admin/semesters/create.php"
	PathSemestersActivate = "/admin/semesters/activate.php"

	PathReportPerformance = "/admin/reports/performance.php"
	PathReportFinancial   = "/admin/reports/financial.php"
	PathReportTrends      = "/admin/reports/trends.php"

	PathUploadProfileImage = "/upload/profile-image.php"
	PathNotices            = "/notices/list.php"
)

// Admin CRUD resources. Each is served under /admin/<resource>/ with
// list.php, create.php, update.php and delete.php.
const (
	ResourceStudents = "students"
	ResourceTeachers = "teachers"
	ResourceFees     = "fees"
	ResourceSubjects = "subjects"
	ResourceNotices  = "notices"
)

// AdminPath returns the path of an admin CRUD action, e.g.
// AdminPath("students", "list") == "/admin/students/list.php".
func AdminPath(resource, action string) string {
	return "/admin/" + resource + "/" + action + ".php"
}
