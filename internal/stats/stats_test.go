package stats

import (
	"testing"

	"github.com/me/uniportal/pkg/model"
)

func TestPercentage(t *testing.T) {
	tests := []struct {
		part, whole, want float64
	}{
		{50, 100, 50},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{5, 0, 0},
		{5, -1, 0},
		{0, 10, 0},
	}
	for _, tt := range tests {
		if got := Percentage(tt.part, tt.whole); got != tt.want {
			t.Errorf("Percentage(%v, %v) = %v, want %v", tt.part, tt.whole, got, tt.want)
		}
	}
}

func TestAverageGPA(t *testing.T) {
	marks := []model.Mark{
		{GradePoint: 4.0, CreditHours: 3},
		{GradePoint: 3.0, CreditHours: 1},
	}
	if got := AverageGPA(marks); got != 3.75 {
		t.Errorf("AverageGPA = %v, want 3.75", got)
	}

	unweighted := []model.Mark{{GradePoint: 3.0}, {GradePoint: 2.0}}
	if got := AverageGPA(unweighted); got != 2.5 {
		t.Errorf("AverageGPA without credits = %v, want 2.5", got)
	}

	if got := AverageGPA(nil); got != 0 {
		t.Errorf("AverageGPA(nil) = %v, want 0", got)
	}
}

func TestMarksPercentage(t *testing.T) {
	marks := []model.Mark{
		{MarksObtained: 40, TotalMarks: 50},
		{MarksObtained: 35, TotalMarks: 50},
	}
	if got := MarksPercentage(marks); got != 75 {
		t.Errorf("MarksPercentage = %v, want 75", got)
	}
}

func TestAttendanceRate(t *testing.T) {
	records := []model.AttendanceRecord{
		{Status: "present"},
		{Status: "late"},
		{Status: "absent"},
		{Status: "absent"},
	}
	if got := AttendanceRate(records); got != 50 {
		t.Errorf("AttendanceRate = %v, want 50", got)
	}
	if got := AttendanceRate(nil); got != 0 {
		t.Errorf("AttendanceRate(nil) = %v, want 0", got)
	}
}

func TestAttendanceBySubject(t *testing.T) {
	records := []model.AttendanceRecord{
		{SubjectID: "s2", SubjectName: "Physics", Status: "present"},
		{SubjectID: "s1", SubjectName: "Maths", Status: "absent"},
		{SubjectID: "s2", SubjectName: "Physics", Status: "absent"},
		{SubjectID: "s1", SubjectName: "Maths", Status: "present"},
		{SubjectID: "s1", SubjectName: "Maths", Status: "present"},
	}
	got := AttendanceBySubject(records)
	if len(got) != 2 {
		t.Fatalf("got %d subjects, want 2", len(got))
	}
	if got[0].SubjectID != "s1" || got[0].Present != 2 || got[0].Total != 3 || got[0].Rate != 66.67 {
		t.Errorf("s1 = %+v", got[0])
	}
	if got[1].SubjectID != "s2" || got[1].Rate != 50 {
		t.Errorf("s2 = %+v", got[1])
	}
}

func TestFilterBySemester(t *testing.T) {
	marks := []model.Mark{{SubjectID: "a", Semester: 1}, {SubjectID: "b", Semester: 2}, {SubjectID: "c", Semester: 1}}

	got := FilterBySemester(marks, 1)
	if len(got) != 2 || got[0].SubjectID != "a" || got[1].SubjectID != "c" {
		t.Errorf("FilterBySemester(1) = %+v", got)
	}
	if got := FilterBySemester(marks, 0); len(got) != 3 {
		t.Errorf("FilterBySemester(0) kept %d, want 3", len(got))
	}
	if got := FilterBySemester(marks, 5); len(got) != 0 {
		t.Errorf("FilterBySemester(5) kept %d, want 0", len(got))
	}
}

func TestTotals(t *testing.T) {
	fees := []model.Fee{
		{Amount: 1000, Paid: 250.5},
		{Amount: 500, Paid: 600},
		{Amount: 200},
	}
	if got := TotalOutstanding(fees); got != 949.5 {
		t.Errorf("TotalOutstanding = %v, want 949.5", got)
	}

	payments := []model.Payment{{Amount: 100.25}, {Amount: 50}}
	if got := TotalPaid(payments); got != 150.25 {
		t.Errorf("TotalPaid = %v, want 150.25", got)
	}
}
