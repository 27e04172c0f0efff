// Package stats derives display figures from records fetched from the
// portal. All functions are pure and treat empty input as zero.
package stats

import (
	"math"
	"sort"

	"github.com/me/uniportal/pkg/model"
)

// Percentage returns part as a percentage of whole, rounded to two decimals.
// A non-positive whole yields 0.
func Percentage(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return Round2(part / whole * 100)
}

// Round2 rounds v to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// AverageGPA returns the credit-weighted mean grade point of marks. Marks
// without credit hours count once.
func AverageGPA(marks []model.Mark) float64 {
	var points, weight float64
	for _, m := range marks {
		w := float64(m.CreditHours)
		if w <= 0 {
			w = 1
		}
		points += m.GradePoint * w
		weight += w
	}
	if weight == 0 {
		return 0
	}
	return Round2(points / weight)
}

// MarksPercentage returns obtained over total marks across all entries.
func MarksPercentage(marks []model.Mark) float64 {
	var obtained, total float64
	for _, m := range marks {
		obtained += m.MarksObtained
		total += m.TotalMarks
	}
	return Percentage(obtained, total)
}

// AttendanceRate returns the share of records counted as present.
func AttendanceRate(records []model.AttendanceRecord) float64 {
	present := 0
	for _, r := range records {
		if r.Present() {
			present++
		}
	}
	return Percentage(float64(present), float64(len(records)))
}

// SubjectAttendance is the attendance rate of one subject.
type SubjectAttendance struct {
	SubjectID   string
	SubjectName string
	Present     int
	Total       int
	Rate        float64
}

// AttendanceBySubject groups records per subject, ordered by subject id.
func AttendanceBySubject(records []model.AttendanceRecord) []SubjectAttendance {
	bySubject := make(map[string]*SubjectAttendance)
	for _, r := range records {
		s, ok := bySubject[r.SubjectID]
		if !ok {
			s = &SubjectAttendance{SubjectID: r.SubjectID, SubjectName: r.SubjectName}
			bySubject[r.SubjectID] = s
		}
		s.Total++
		if r.Present() {
			s.Present++
		}
	}

	out := make([]SubjectAttendance, 0, len(bySubject))
	for _, s := range bySubject {
		s.Rate = Percentage(float64(s.Present), float64(s.Total))
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubjectID < out[j].SubjectID })
	return out
}

// FilterBySemester keeps the marks of one semester. A non-positive
// semester keeps everything.
func FilterBySemester(marks []model.Mark, semester int) []model.Mark {
	if semester <= 0 {
		return marks
	}
	out := make([]model.Mark, 0, len(marks))
	for _, m := range marks {
		if m.Semester == semester {
			out = append(out, m)
		}
	}
	return out
}

// TotalOutstanding sums the unpaid part of every fee.
func TotalOutstanding(fees []model.Fee) float64 {
	var total float64
	for _, f := range fees {
		total += f.Outstanding()
	}
	return Round2(total)
}

// TotalPaid sums payment amounts.
func TotalPaid(payments []model.Payment) float64 {
	var total float64
	for _, p := range payments {
		total += p.Amount
	}
	return Round2(total)
}
