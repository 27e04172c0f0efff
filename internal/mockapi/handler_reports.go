package mockapi

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/me/uniportal/internal/apiclient"
	"github.com/me/uniportal/internal/stats"
	"github.com/me/uniportal/pkg/model"
)

const passPercentage = 50

// reportFilter reads the filter query parameters shared by all reports.
func reportFilter(r *http.Request) (model.ReportFilter, string) {
	q := r.URL.Query()
	f := model.ReportFilter{
		Department: q.Get("department"),
		SubjectID:  q.Get("subject_id"),
		StartDate:  q.Get("start_date"),
		EndDate:    q.Get("end_date"),
		FeeType:    q.Get("fee_type"),
	}
	f.Semester, _ = strconv.Atoi(q.Get("semester"))
	for _, d := range []string{f.StartDate, f.EndDate} {
		if d != "" && !apiclient.IsValidDate(d) {
			return f, "invalid date " + d
		}
	}
	return f, ""
}

func inRange(date string, f model.ReportFilter) bool {
	if f.StartDate != "" && date < f.StartDate {
		return false
	}
	if f.EndDate != "" && date > f.EndDate {
		return false
	}
	return true
}

func (s *Server) handlePerformanceReport(w http.ResponseWriter, r *http.Request) {
	f, msg := reportFilter(r)
	if msg != "" {
		respondError(w, http.StatusBadRequest, model.ErrValidation, "Validation failed: "+msg)
		return
	}

	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	students := s.data.students.filter(func(st model.Student) bool {
		return (f.Department == "" || st.Department == f.Department) && (f.Semester <= 0 || st.Semester == f.Semester)
	})
	marks := s.data.marks.filter(func(m model.Mark) bool {
		return (f.SubjectID == "" || m.SubjectID == f.SubjectID) && (f.Semester <= 0 || m.Semester == f.Semester)
	})

	var report model.PerformanceReport
	report.Subjects = []model.SubjectPerformance{}
	report.Students = []model.StudentPerformance{}

	bySubject := make(map[string][]model.Mark)
	byStudent := make(map[string][]model.Mark)
	for _, m := range marks {
		bySubject[m.SubjectID] = append(bySubject[m.SubjectID], m)
		byStudent[m.StudentID] = append(byStudent[m.StudentID], m)
	}

	var best float64
	for _, st := range students {
		gpa := stats.AverageGPA(byStudent[st.ID])
		att := stats.AttendanceRate(s.data.attendance.filter(func(a model.AttendanceRecord) bool { return a.StudentID == st.ID }))
		report.Students = append(report.Students, model.StudentPerformance{StudentID: st.ID, FullName: st.FullName, GPA: gpa, Attendance: att})
		if gpa > best {
			best = gpa
			report.Summary.TopPerformer = st.FullName
		}
	}

	passed := 0
	for id, ms := range bySubject {
		sub, _ := s.data.subjects.get(id)
		row := model.SubjectPerformance{SubjectID: id, SubjectName: sub.Name, Students: len(ms)}
		subPassed := 0
		var total float64
		for _, m := range ms {
			pct := stats.Percentage(m.MarksObtained, m.TotalMarks)
			total += pct
			if pct >= passPercentage {
				subPassed++
			}
		}
		passed += subPassed
		row.AverageMarks = stats.Round2(total / float64(len(ms)))
		row.PassRate = stats.Percentage(float64(subPassed), float64(len(ms)))
		report.Subjects = append(report.Subjects, row)
	}
	sort.Slice(report.Subjects, func(i, j int) bool { return report.Subjects[i].SubjectID < report.Subjects[j].SubjectID })

	report.Summary.TotalStudents = len(students)
	report.Summary.AverageGPA = stats.AverageGPA(marks)
	report.Summary.PassRate = stats.Percentage(float64(passed), float64(len(marks)))
	respondOK(w, report)
}

func (s *Server) handleFinancialReport(w http.ResponseWriter, r *http.Request) {
	f, msg := reportFilter(r)
	if msg != "" {
		respondError(w, http.StatusBadRequest, model.ErrValidation, "Validation failed: "+msg)
		return
	}

	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	fees := s.data.fees.filter(func(fee model.Fee) bool {
		return (f.FeeType == "" || fee.FeeType == f.FeeType) && (f.Semester <= 0 || fee.Semester == f.Semester)
	})
	feeIDs := make(map[string]bool)
	byType := make(map[string]*model.FeeTypeTotal)
	var report model.FinancialReport
	for _, fee := range fees {
		feeIDs[fee.ID] = true
		t, ok := byType[fee.FeeType]
		if !ok {
			t = &model.FeeTypeTotal{FeeType: fee.FeeType}
			byType[fee.FeeType] = t
		}
		t.Billed += fee.Amount
		t.Collected += fee.Paid
		report.Summary.TotalBilled += fee.Amount
		report.Summary.TotalCollected += fee.Paid
	}
	report.Summary.TotalPending = stats.TotalOutstanding(fees)
	report.Summary.CollectionRate = stats.Percentage(report.Summary.TotalCollected, report.Summary.TotalBilled)

	report.ByFeeType = []model.FeeTypeTotal{}
	for _, t := range byType {
		report.ByFeeType = append(report.ByFeeType, *t)
	}
	sort.Slice(report.ByFeeType, func(i, j int) bool { return report.ByFeeType[i].FeeType < report.ByFeeType[j].FeeType })

	report.Payments = s.data.payments.filter(func(p model.Payment) bool {
		return feeIDs[p.FeeID] && inRange(p.PaymentDate, f)
	})
	respondOK(w, report)
}

func (s *Server) handleTrendsReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	metric := model.TrendMetric(q.Get("metric"))
	period := model.TrendPeriod(q.Get("period"))
	if err := apiclient.ValidateTrendMetric(metric); err != nil {
		respondError(w, http.StatusBadRequest, model.ErrValidation, "Validation failed: invalid metric")
		return
	}
	if err := apiclient.ValidateTrendPeriod(period); err != nil {
		respondError(w, http.StatusBadRequest, model.ErrValidation, "Validation failed: invalid period")
		return
	}
	f, msg := reportFilter(r)
	if msg != "" {
		respondError(w, http.StatusBadRequest, model.ErrValidation, "Validation failed: "+msg)
		return
	}

	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	subjectSemester := make(map[string]int)
	for _, sub := range s.data.subjects.rows {
		subjectSemester[sub.ID] = sub.Semester
	}
	bucket := func(date string, semester int) string {
		if period == model.PeriodSemester {
			return "Semester " + strconv.Itoa(semester)
		}
		if len(date) >= 7 {
			return date[:7]
		}
		return "unknown"
	}

	values := make(map[string][]float64)
	switch metric {
	case model.MetricAttendance:
		for _, a := range s.data.attendance.rows {
			if !inRange(a.Date, f) {
				continue
			}
			v := 0.0
			if a.Present() {
				v = 100
			}
			key := bucket(a.Date, subjectSemester[a.SubjectID])
			values[key] = append(values[key], v)
		}
	case model.MetricPerformance:
		for _, m := range s.data.marks.rows {
			key := bucket("", m.Semester)
			values[key] = append(values[key], stats.Percentage(m.MarksObtained, m.TotalMarks))
		}
	case model.MetricPayments:
		feeSemester := make(map[string]int)
		for _, fee := range s.data.fees.rows {
			feeSemester[fee.ID] = fee.Semester
		}
		for _, p := range s.data.payments.rows {
			if !inRange(p.PaymentDate, f) {
				continue
			}
			key := bucket(p.PaymentDate, feeSemester[p.FeeID])
			values[key] = append(values[key], p.Amount)
		}
	}

	report := model.TrendsReport{Metric: metric, Period: period, Points: []model.TrendPoint{}}
	for label, vs := range values {
		var sum float64
		for _, v := range vs {
			sum += v
		}
		if metric != model.MetricPayments {
			sum /= float64(len(vs))
		}
		report.Points = append(report.Points, model.TrendPoint{Label: label, Value: stats.Round2(sum)})
	}
	sort.Slice(report.Points, func(i, j int) bool { return report.Points[i].Label < report.Points[j].Label })
	respondOK(w, report)
}
