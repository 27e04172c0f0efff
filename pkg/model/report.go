package model

import (
	"net/url"
	"strconv"
)

// ReportFilter narrows a reporting query. Zero fields are omitted from the
// query string.
type ReportFilter struct {
	Semester   int
	Department string
	SubjectID  string
	StartDate  string
	EndDate    string
	FeeType    string
}

// Values serializes the filter into query parameters.
func (f ReportFilter) Values() url.Values {
	v := url.Values{}
	if f.Semester > 0 {
		v.Set("semester", strconv.Itoa(f.Semester))
	}
	if f.Department != "" {
		v.Set("department", f.Department)
	}
	if f.SubjectID != "" {
		v.Set("subject_id", f.SubjectID)
	}
	if f.StartDate != "" {
		v.Set("start_date", f.StartDate)
	}
	if f.EndDate != "" {
		v.Set("end_date", f.EndDate)
	}
	if f.FeeType != "" {
		v.Set("fee_type", f.FeeType)
	}
	return v
}

// TrendMetric selects what the trends report measures.
type TrendMetric string

const (
	MetricAttendance  TrendMetric = "attendance"
	MetricPerformance TrendMetric = "performance"
	MetricPayments    TrendMetric = "payments"
)

// TrendPeriod selects the bucket size of the trends report.
type TrendPeriod string

const (
	PeriodMonthly  TrendPeriod = "monthly"
	PeriodSemester TrendPeriod = "semester"
)

// PerformanceReport is the payload of the performance report endpoint.
type PerformanceReport struct {
	Summary struct {
		TotalStudents int     `json:"total_students"`
		AverageGPA    float64 `json:"average_gpa"`
		PassRate      float64 `json:"pass_rate"`
		TopPerformer  string  `json:"top_performer,omitempty"`
	} `json:"summary"`
	Subjects []SubjectPerformance `json:"subjects"`
	Students []StudentPerformance `json:"students"`
}

// SubjectPerformance is one row of the per-subject breakdown.
type SubjectPerformance struct {
	SubjectID    string  `json:"subject_id"`
	SubjectName  string  `json:"subject_name"`
	AverageMarks float64 `json:"average_marks"`
	PassRate     float64 `json:"pass_rate"`
	Students     int     `json:"student_count"`
}

// StudentPerformance is one row of the per-student breakdown.
type StudentPerformance struct {
	StudentID  string  `json:"student_id"`
	FullName   string  `json:"full_name"`
	GPA        float64 `json:"gpa"`
	Attendance float64 `json:"attendance_rate"`
}

// FinancialReport is the payload of the financial report endpoint.
type FinancialReport struct {
	Summary struct {
		TotalBilled    float64 `json:"total_billed"`
		TotalCollected float64 `json:"total_collected"`
		TotalPending   float64 `json:"total_pending"`
		CollectionRate float64 `json:"collection_rate"`
	} `json:"summary"`
	ByFeeType []FeeTypeTotal `json:"by_fee_type"`
	Payments  []Payment      `json:"recent_payments"`
}

// FeeTypeTotal aggregates billing for one fee type.
type FeeTypeTotal struct {
	FeeType   string  `json:"fee_type"`
	Billed    float64 `json:"billed"`
	Collected float64 `json:"collected"`
}

// TrendsReport is the payload of the trends report endpoint.
type TrendsReport struct {
	Metric TrendMetric  `json:"metric"`
	Period TrendPeriod  `json:"period"`
	Points []TrendPoint `json:"points"`
}

// TrendPoint is one bucket of a trend series.
type TrendPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}
