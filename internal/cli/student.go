package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/me/uniportal/internal/apiclient"
	"github.com/me/uniportal/internal/stats"
	"github.com/me/uniportal/pkg/model"
)

func newStudentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "student",
		Short:             "Student self-service",
		PersistentPreRunE: requireRole(model.RoleStudent),
	}
	cmd.AddCommand(
		newStudentMarksCmd(),
		newStudentAttendanceCmd(),
		newStudentFeesCmd(),
		newStudentPaymentsCmd(),
		newStudentProfileCmd(),
		newStudentDashboardCmd(),
		newIDCardCmd(),
		newReceiptCmd(),
		newReportPDFCmd(),
		newUploadPhotoCmd(),
	)
	return cmd
}

func newStudentMarksCmd() *cobra.Command {
	var semester int

	cmd := &cobra.Command{
		Use:   "marks",
		Short: "Show your marks",
		RunE: func(cmd *cobra.Command, args []string) error {
			marks, err := client.StudentMarks(cmd.Context(), semester)
			if err != nil {
				return fmt.Errorf("get marks: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(marks) == 0 {
				fmt.Fprintln(out, "No marks recorded.")
				return nil
			}

			t := newTable(out, "SUBJECT", "SEM", "EXAM", "MARKS", "GRADE")
			for _, m := range marks {
				t.row(m.SubjectName, m.Semester, orDash(m.ExamType),
					fmt.Sprintf("%g/%g", m.MarksObtained, m.TotalMarks), orDash(m.Grade))
			}
			if err := t.flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nGPA: %.2f  Overall: %s\n", stats.AverageGPA(marks), percent(stats.MarksPercentage(marks)))
			return nil
		},
	}

	cmd.Flags().IntVar(&semester, "semester", 0, "Only show this semester")
	return cmd
}

func newStudentAttendanceCmd() *cobra.Command {
	var (
		semester int
		detail   bool
	)

	cmd := &cobra.Command{
		Use:   "attendance",
		Short: "Show your attendance per subject",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := client.StudentAttendance(cmd.Context(), semester)
			if err != nil {
				return fmt.Errorf("get attendance: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No attendance recorded.")
				return nil
			}

			if detail {
				t := newTable(out, "DATE", "SUBJECT", "STATUS")
				for _, r := range records {
					t.row(r.Date, r.SubjectName, r.Status)
				}
				if err := t.flush(); err != nil {
					return err
				}
				fmt.Fprintln(out)
			}

			t := newTable(out, "SUBJECT", "PRESENT", "TOTAL", "RATE")
			for _, s := range stats.AttendanceBySubject(records) {
				t.row(orDash(s.SubjectName), s.Present, s.Total, percent(s.Rate))
			}
			if err := t.flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nOverall attendance: %s\n", percent(stats.AttendanceRate(records)))
			return nil
		},
	}

	cmd.Flags().IntVar(&semester, "semester", 0, "Only show this semester")
	cmd.Flags().BoolVar(&detail, "detail", false, "List every attendance entry")
	return cmd
}

func newStudentFeesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fees",
		Short: "Show your fees",
		RunE: func(cmd *cobra.Command, args []string) error {
			fees, err := client.StudentFees(cmd.Context())
			if err != nil {
				return fmt.Errorf("get fees: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(fees) == 0 {
				fmt.Fprintln(out, "No fees charged.")
				return nil
			}

			t := newTable(out, "ID", "TYPE", "AMOUNT", "PAID", "OUTSTANDING", "DUE", "STATUS")
			for _, f := range fees {
				t.row(f.ID, f.FeeType, money(f.Amount), money(f.Paid), money(f.Outstanding()), orDash(f.DueDate), orDash(f.Status))
			}
			if err := t.flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nTotal outstanding: %s\n", money(stats.TotalOutstanding(fees)))
			return nil
		},
	}
}

func newStudentPaymentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "payments",
		Short: "Show your payments",
		RunE: func(cmd *cobra.Command, args []string) error {
			payments, err := client.StudentPayments(cmd.Context())
			if err != nil {
				return fmt.Errorf("get payments: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(payments) == 0 {
				fmt.Fprintln(out, "No payments recorded.")
				return nil
			}

			t := newTable(out, "ID", "DATE", "AMOUNT", "METHOD", "REFERENCE")
			for _, p := range payments {
				t.row(p.ID, orDash(p.PaymentDate), money(p.Amount), orDash(p.Method), orDash(p.Reference))
			}
			if err := t.flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nTotal paid: %s\n", money(stats.TotalPaid(payments)))
			return nil
		},
	}
}

func newStudentProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := client.StudentProfile(cmd.Context())
			if err != nil {
				return fmt.Errorf("get profile: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:        %s\n", p.FullName)
			fmt.Fprintf(out, "Username:    %s\n", p.Username)
			fmt.Fprintf(out, "Student ID:  %s\n", orDash(p.StudentID))
			fmt.Fprintf(out, "Email:       %s\n", orDash(p.Email))
			fmt.Fprintf(out, "Phone:       %s\n", orDash(p.Phone))
			fmt.Fprintf(out, "Address:     %s\n", orDash(p.Address))
			fmt.Fprintf(out, "Department:  %s\n", orDash(p.Department))
			fmt.Fprintf(out, "Semester:    %d\n", p.Semester)
			if p.EnrolledAt != "" {
				fmt.Fprintf(out, "Enrolled:    %s\n", p.EnrolledAt)
			}
			return nil
		},
	}
	cmd.AddCommand(newProfileUpdateCmd())
	return cmd
}

func newProfileUpdateCmd() *cobra.Command {
	var email, phone, address string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change your contact details",
		RunE: func(cmd *cobra.Command, args []string) error {
			var upd apiclient.ProfileUpdate
			if cmd.Flags().Changed("email") {
				upd.Email = &email
			}
			if cmd.Flags().Changed("phone") {
				upd.Phone = &phone
			}
			if cmd.Flags().Changed("address") {
				upd.Address = &address
			}
			if err := client.UpdateStudentProfile(cmd.Context(), upd); err != nil {
				return fmt.Errorf("update profile: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Profile updated.")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "New email address")
	cmd.Flags().StringVar(&phone, "phone", "", "New phone number")
	cmd.Flags().StringVar(&address, "address", "", "New postal address")
	return cmd
}

func newStudentDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show your overview",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := client.StudentDashboard(cmd.Context())
			if err != nil {
				return fmt.Errorf("load dashboard: %w", err)
			}
			out := cmd.OutOrStdout()
			if user := client.CurrentUser(cmd.Context()); user != nil {
				fmt.Fprintf(out, "Welcome, %s\n\n", user.DisplayName())
			}
			fmt.Fprintf(out, "GPA:          %.2f\n", d.GPA)
			fmt.Fprintf(out, "Attendance:   %s\n", percent(d.AttendanceRate))
			fmt.Fprintf(out, "Outstanding:  %s\n", money(d.Outstanding))
			fmt.Fprintf(out, "Subjects:     %d\n", len(d.Marks))
			fmt.Fprintf(out, "Notices:      %d\n", len(d.Notices))
			for _, n := range d.Notices {
				fmt.Fprintf(out, "  - %s\n", n.Title)
			}
			printSectionErrors(cmd.ErrOrStderr(), d.Errors)
			return nil
		},
	}
}

func newIDCardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "id-card",
		Short: "Download your ID card",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := client.DownloadIDCard(cmd.Context())
			if err != nil {
				return fmt.Errorf("download ID card: %w", err)
			}
			printSaved(cmd.OutOrStdout(), "ID card", path)
			return nil
		},
	}
}

func newReceiptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "receipt <payment-id>",
		Short: "Download a payment receipt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := client.DownloadReceipt(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("download receipt: %w", err)
			}
			printSaved(cmd.OutOrStdout(), "receipt", path)
			return nil
		},
	}
}

func newReportPDFCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Download your performance report",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := client.DownloadPerformanceReport(cmd.Context())
			if err != nil {
				return fmt.Errorf("download performance report: %w", err)
			}
			printSaved(cmd.OutOrStdout(), "performance report", path)
			return nil
		},
	}
}

func newUploadPhotoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload-photo <file>",
		Short: "Upload a profile picture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}
			res, err := client.UploadProfileImage(cmd.Context(), filepath.Base(args[0]), data)
			if err != nil {
				return fmt.Errorf("upload photo: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s (%s) as %s\n",
				filepath.Base(args[0]), humanize.Bytes(uint64(len(data))), orDash(res.Path))
			return nil
		},
	}
}
