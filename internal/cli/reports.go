package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/me/uniportal/pkg/model"
)

func newReportsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Performance, financial and trend reports",
	}
	cmd.AddCommand(newPerformanceReportCmd(), newFinancialReportCmd(), newTrendsReportCmd())
	return cmd
}

func addFilterFlags(fs *pflag.FlagSet, f *model.ReportFilter) {
	fs.IntVar(&f.Semester, "semester", 0, "Only this semester")
	fs.StringVar(&f.Department, "department", "", "Only this department")
	fs.StringVar(&f.SubjectID, "subject", "", "Only this subject")
	fs.StringVar(&f.StartDate, "from", "", "Start date, YYYY-MM-DD")
	fs.StringVar(&f.EndDate, "to", "", "End date, YYYY-MM-DD")
}

func newPerformanceReportCmd() *cobra.Command {
	var filter model.ReportFilter

	cmd := &cobra.Command{
		Use:   "performance",
		Short: "Academic performance summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := client.PerformanceReport(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("performance report: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Students:      %d\n", rep.Summary.TotalStudents)
			fmt.Fprintf(out, "Average GPA:   %.2f\n", rep.Summary.AverageGPA)
			fmt.Fprintf(out, "Pass rate:     %s\n", percent(rep.Summary.PassRate))
			fmt.Fprintf(out, "Top performer: %s\n", orDash(rep.Summary.TopPerformer))

			if len(rep.Subjects) > 0 {
				fmt.Fprintln(out)
				t := newTable(out, "SUBJECT", "STUDENTS", "AVERAGE", "PASS RATE")
				for _, s := range rep.Subjects {
					t.row(s.SubjectName, s.Students, fmt.Sprintf("%.1f", s.AverageMarks), percent(s.PassRate))
				}
				if err := t.flush(); err != nil {
					return err
				}
			}
			if len(rep.Students) > 0 {
				fmt.Fprintln(out)
				t := newTable(out, "STUDENT", "GPA", "ATTENDANCE")
				for _, s := range rep.Students {
					t.row(s.FullName, fmt.Sprintf("%.2f", s.GPA), percent(s.Attendance))
				}
				return t.flush()
			}
			return nil
		},
	}

	addFilterFlags(cmd.Flags(), &filter)
	return cmd
}

func newFinancialReportCmd() *cobra.Command {
	var filter model.ReportFilter

	cmd := &cobra.Command{
		Use:   "financial",
		Short: "Fee billing and collection summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := client.FinancialReport(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("financial report: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Billed:          %s\n", money(rep.Summary.TotalBilled))
			fmt.Fprintf(out, "Collected:       %s\n", money(rep.Summary.TotalCollected))
			fmt.Fprintf(out, "Pending:         %s\n", money(rep.Summary.TotalPending))
			fmt.Fprintf(out, "Collection rate: %s\n", percent(rep.Summary.CollectionRate))

			if len(rep.ByFeeType) > 0 {
				fmt.Fprintln(out)
				t := newTable(out, "FEE TYPE", "BILLED", "COLLECTED")
				for _, f := range rep.ByFeeType {
					t.row(f.FeeType, money(f.Billed), money(f.Collected))
				}
				return t.flush()
			}
			return nil
		},
	}

	addFilterFlags(cmd.Flags(), &filter)
	cmd.Flags().StringVar(&filter.FeeType, "fee-type", "", "Only this fee type")
	return cmd
}

func newTrendsReportCmd() *cobra.Command {
	var (
		filter model.ReportFilter
		metric string
		period string
	)

	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Attendance, performance or payment trends over time",
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := client.TrendsReport(cmd.Context(), model.TrendMetric(metric), model.TrendPeriod(period), filter)
			if err != nil {
				return fmt.Errorf("trends report: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s trend (%s)\n\n", rep.Metric, rep.Period)
			if len(rep.Points) == 0 {
				fmt.Fprintln(out, "No data.")
				return nil
			}
			t := newTable(out, "PERIOD", "VALUE")
			for _, p := range rep.Points {
				t.row(p.Label, fmt.Sprintf("%.2f", p.Value))
			}
			return t.flush()
		},
	}

	cmd.Flags().StringVar(&metric, "metric", string(model.MetricAttendance), "attendance, performance or payments")
	cmd.Flags().StringVar(&period, "period", string(model.PeriodMonthly), "monthly or semester")
	addFilterFlags(cmd.Flags(), &filter)
	return cmd
}
