package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/me/uniportal/internal/apiclient"
	"github.com/me/uniportal/pkg/model"
)

func newTeacherCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "teacher",
		Short:             "Teaching tasks",
		PersistentPreRunE: requireRole(model.RoleTeacher),
	}
	cmd.AddCommand(
		newTeacherStudentsCmd(),
		newTeacherSubjectsCmd(),
		newTeacherAttendanceCmd(),
		newTeacherMarksCmd(),
	)
	return cmd
}

func newTeacherStudentsCmd() *cobra.Command {
	var filter apiclient.StudentFilter

	cmd := &cobra.Command{
		Use:   "students",
		Short: "List the students you teach",
		RunE: func(cmd *cobra.Command, args []string) error {
			students, err := client.TeacherStudents(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("list students: %w", err)
			}
			return printStudents(cmd, students)
		},
	}

	cmd.Flags().StringVar(&filter.SubjectID, "subject", "", "Only students taking this subject")
	cmd.Flags().StringVar(&filter.Department, "department", "", "Only students of this department")
	cmd.Flags().IntVar(&filter.Semester, "semester", 0, "Only students in this semester")
	return cmd
}

func printStudents(cmd *cobra.Command, students []model.Student) error {
	out := cmd.OutOrStdout()
	if len(students) == 0 {
		fmt.Fprintln(out, "No students found.")
		return nil
	}
	t := newTable(out, "ID", "STUDENT ID", "USERNAME", "NAME", "DEPARTMENT", "SEM")
	for _, s := range students {
		t.row(s.ID, orDash(s.StudentID), s.Username, s.FullName, orDash(s.Department), s.Semester)
	}
	return t.flush()
}

func newTeacherSubjectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "subjects",
		Short: "List the subjects you teach",
		RunE: func(cmd *cobra.Command, args []string) error {
			subjects, err := client.TeacherSubjects(cmd.Context())
			if err != nil {
				return fmt.Errorf("list subjects: %w", err)
			}
			return printSubjects(cmd, subjects)
		},
	}
}

func printSubjects(cmd *cobra.Command, subjects []model.Subject) error {
	out := cmd.OutOrStdout()
	if len(subjects) == 0 {
		fmt.Fprintln(out, "No subjects found.")
		return nil
	}
	t := newTable(out, "ID", "CODE", "NAME", "DEPARTMENT", "SEM", "CREDITS")
	for _, s := range subjects {
		t.row(s.ID, s.Code, s.Name, orDash(s.Department), s.Semester, s.CreditHours)
	}
	return t.flush()
}

func newTeacherAttendanceCmd() *cobra.Command {
	var (
		subject string
		date    string
		present []string
		absent  []string
		late    []string
	)

	cmd := &cobra.Command{
		Use:   "attendance",
		Short: "Record attendance for a class",
		Example: "  portal teacher attendance --subject sub-1 --date 2024-10-07 \\\n" +
			"    --present stu-1,stu-2 --absent stu-3",
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" {
				date = time.Now().Format("2006-01-02")
			}
			sheet := model.AttendanceSheet{SubjectID: subject, Date: date}
			seen := make(map[string]string)
			for _, group := range []struct {
				status string
				ids    []string
			}{{"present", present}, {"absent", absent}, {"late", late}} {
				for _, id := range group.ids {
					if prev, ok := seen[id]; ok {
						return fmt.Errorf("student %s is marked both %s and %s", id, prev, group.status)
					}
					seen[id] = group.status
					sheet.Records = append(sheet.Records, model.AttendanceRecord{
						StudentID: id,
						SubjectID: subject,
						Date:      date,
						Status:    group.status,
					})
				}
			}

			if err := client.MarkAttendance(cmd.Context(), sheet); err != nil {
				return fmt.Errorf("record attendance: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded attendance for %d students on %s.\n", len(sheet.Records), date)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "Subject id")
	cmd.Flags().StringVar(&date, "date", "", "Class date, YYYY-MM-DD (default today)")
	cmd.Flags().StringSliceVar(&present, "present", nil, "Students present")
	cmd.Flags().StringSliceVar(&absent, "absent", nil, "Students absent")
	cmd.Flags().StringSliceVar(&late, "late", nil, "Students late")
	return cmd
}

func newTeacherMarksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "marks",
		Short: "Enter or correct marks",
	}
	cmd.AddCommand(
		newMarksSubmitCmd("enter", "Enter marks for an exam", "entered", func(ctx context.Context, e model.MarksEntry) error {
			return client.EnterMarks(ctx, e)
		}),
		newMarksSubmitCmd("update", "Correct previously entered marks", "updated", func(ctx context.Context, e model.MarksEntry) error {
			return client.UpdateMarks(ctx, e)
		}),
	)
	return cmd
}

func newMarksSubmitCmd(use, short, verb string, submit func(context.Context, model.MarksEntry) error) *cobra.Command {
	var (
		subject string
		exam    string
		total   float64
		marks   []string
		file    string
	)

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long: "Marks are given as --mark STUDENT=OBTAINED or STUDENT=OBTAINED/TOTAL, or read from a\n" +
			"YAML or JSON file holding a list of marks records.",
		RunE: func(cmd *cobra.Command, args []string) error {
			entry := model.MarksEntry{SubjectID: subject, ExamType: exam}
			if file != "" {
				if err := decodeRecordFile(cmd, file, &entry.Marks); err != nil {
					return err
				}
			}
			for _, arg := range marks {
				m, err := parseMark(arg, total)
				if err != nil {
					return err
				}
				entry.Marks = append(entry.Marks, m)
			}
			for i := range entry.Marks {
				m := &entry.Marks[i]
				m.SubjectID = subject
				m.ExamType = exam
				if m.TotalMarks == 0 {
					m.TotalMarks = total
				}
			}

			if err := submit(cmd.Context(), entry); err != nil {
				return fmt.Errorf("%s marks: %w", use, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marks %s for %d students.\n", verb, len(entry.Marks))
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "Subject id")
	cmd.Flags().StringVar(&exam, "exam", "", "Exam type, e.g. midterm or final")
	cmd.Flags().Float64Var(&total, "total", 100, "Total marks when not given per student")
	cmd.Flags().StringArrayVar(&marks, "mark", nil, "STUDENT=OBTAINED[/TOTAL] (repeatable)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML or JSON file with marks records (- for stdin)")
	return cmd
}

// parseMark reads "stu-1=18" or "stu-1=18/25".
func parseMark(arg string, total float64) (model.Mark, error) {
	id, score, ok := strings.Cut(arg, "=")
	if !ok || strings.TrimSpace(id) == "" {
		return model.Mark{}, fmt.Errorf("invalid --mark %q: want STUDENT=OBTAINED[/TOTAL]", arg)
	}
	obtained, outOf, hasTotal := strings.Cut(score, "/")
	m := model.Mark{StudentID: strings.TrimSpace(id), TotalMarks: total}

	var err error
	if m.MarksObtained, err = strconv.ParseFloat(strings.TrimSpace(obtained), 64); err != nil {
		return model.Mark{}, fmt.Errorf("invalid --mark %q: %w", arg, err)
	}
	if hasTotal {
		if m.TotalMarks, err = strconv.ParseFloat(strings.TrimSpace(outOf), 64); err != nil {
			return model.Mark{}, fmt.Errorf("invalid --mark %q: %w", arg, err)
		}
	}
	return m, nil
}
