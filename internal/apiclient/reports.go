package apiclient

import (
	"context"
	"net/http"

	"github.com/me/uniportal/pkg/model"
)

// PerformanceReport fetches academic performance for the filter. Missing
// sections of the payload come back as empty lists, never nil.
func (c *Client) PerformanceReport(ctx context.Context, filter model.ReportFilter) (*model.PerformanceReport, error) {
	if err := ValidateReportFilter(filter); err != nil {
		return nil, err
	}
	r, err := call[model.PerformanceReport](ctx, c, model.Request{
		Method: http.MethodGet,
		Path:   PathReportPerformance,
		Query:  filter.Values(),
	})
	if err != nil {
		return nil, annotateServerError(err)
	}
	if r.Subjects == nil {
		r.Subjects = []model.SubjectPerformance{}
	}
	if r.Students == nil {
		r.Students = []model.StudentPerformance{}
	}
	return &r, nil
}

// FinancialReport fetches billing and collection totals for the filter.
func (c *Client) FinancialReport(ctx context.Context, filter model.ReportFilter) (*model.FinancialReport, error) {
	if err := ValidateReportFilter(filter); err != nil {
		return nil, err
	}
	r, err := call[model.FinancialReport](ctx, c, model.Request{
		Method: http.MethodGet,
		Path:   PathReportFinancial,
		Query:  filter.Values(),
	})
	if err != nil {
		return nil, annotateServerError(err)
	}
	if r.ByFeeType == nil {
		r.ByFeeType = []model.FeeTypeTotal{}
	}
	if r.Payments == nil {
		r.Payments = []model.Payment{}
	}
	return &r, nil
}

// TrendsReport fetches a time series of metric bucketed by period. Unknown
// metrics and periods are rejected without contacting the server.
func (c *Client) TrendsReport(ctx context.Context, metric model.TrendMetric, period model.TrendPeriod, filter model.ReportFilter) (*model.TrendsReport, error) {
	if err := ValidateTrendMetric(metric); err != nil {
		return nil, err
	}
	if err := ValidateTrendPeriod(period); err != nil {
		return nil, err
	}
	if err := ValidateReportFilter(filter); err != nil {
		return nil, err
	}

	q := filter.Values()
	q.Set("metric", string(metric))
	q.Set("period", string(period))
	r, err := call[model.TrendsReport](ctx, c, model.Request{Method: http.MethodGet, Path: PathReportTrends, Query: q})
	if err != nil {
		return nil, annotateServerError(err)
	}
	if r.Metric == "" {
		r.Metric = metric
	}
	if r.Period == "" {
		r.Period = period
	}
	if r.Points == nil {
		r.Points = []model.TrendPoint{}
	}
	return &r, nil
}
