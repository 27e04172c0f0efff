package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/uniportal/internal/apiclient"
	"github.com/me/uniportal/pkg/model"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "admin",
		Short:             "Portal administration",
		PersistentPreRunE: requireRole(model.RoleAdmin),
	}
	cmd.AddCommand(
		newResourceCmd(resource[model.Student]{
			name:     apiclient.ResourceStudents,
			singular: "student",
			list:     func(ctx context.Context) ([]model.Student, error) { return client.ListStudents(ctx) },
			create:   func(ctx context.Context, s model.Student) (string, error) { return client.CreateStudent(ctx, s) },
			update:   func(ctx context.Context, s model.Student) error { return client.UpdateStudent(ctx, s) },
			remove:   func(ctx context.Context, id string) error { return client.DeleteStudent(ctx, id) },
			setID:    func(s *model.Student, id string) { s.ID = id },
			print:    printStudents,
		}),
		newResourceCmd(resource[model.Teacher]{
			name:     apiclient.ResourceTeachers,
			singular: "teacher",
			list:     func(ctx context.Context) ([]model.Teacher, error) { return client.ListTeachers(ctx) },
			create:   func(ctx context.Context, t model.Teacher) (string, error) { return client.CreateTeacher(ctx, t) },
			update:   func(ctx context.Context, t model.Teacher) error { return client.UpdateTeacher(ctx, t) },
			remove:   func(ctx context.Context, id string) error { return client.DeleteTeacher(ctx, id) },
			setID:    func(t *model.Teacher, id string) { t.ID = id },
			print:    printTeachers,
		}),
		newResourceCmd(resource[model.Fee]{
			name:     apiclient.ResourceFees,
			singular: "fee",
			list:     func(ctx context.Context) ([]model.Fee, error) { return client.ListFees(ctx) },
			create:   func(ctx context.Context, f model.Fee) (string, error) { return client.CreateFee(ctx, f) },
			update:   func(ctx context.Context, f model.Fee) error { return client.UpdateFee(ctx, f) },
			remove:   func(ctx context.Context, id string) error { return client.DeleteFee(ctx, id) },
			setID:    func(f *model.Fee, id string) { f.ID = id },
			print:    printFees,
		}),
		newResourceCmd(resource[model.Subject]{
			name:     apiclient.ResourceSubjects,
			singular: "subject",
			list:     func(ctx context.Context) ([]model.Subject, error) { return client.ListSubjects(ctx) },
			create:   func(ctx context.Context, s model.Subject) (string, error) { return client.CreateSubject(ctx, s) },
			update:   func(ctx context.Context, s model.Subject) error { return client.UpdateSubject(ctx, s) },
			remove:   func(ctx context.Context, id string) error { return client.DeleteSubject(ctx, id) },
			setID:    func(s *model.Subject, id string) { s.ID = id },
			print:    printSubjects,
		}),
		newResourceCmd(resource[model.Notice]{
			name:     apiclient.ResourceNotices,
			singular: "notice",
			list:     func(ctx context.Context) ([]model.Notice, error) { return client.ListNotices(ctx) },
			create:   func(ctx context.Context, n model.Notice) (string, error) { return client.CreateNotice(ctx, n) },
			update:   func(ctx context.Context, n model.Notice) error { return client.UpdateNotice(ctx, n) },
			remove:   func(ctx context.Context, id string) error { return client.DeleteNotice(ctx, id) },
			setID:    func(n *model.Notice, id string) { n.ID = id },
			print:    printNotices,
		}),
		newSessionsCmd(),
		newSemestersCmd(),
		newReportsCmd(),
		newAdminDashboardCmd(),
	)
	return cmd
}

// resource describes one admin CRUD collection.
type resource[T any] struct {
	name     string
	singular string
	list     func(context.Context) ([]T, error)
	create   func(context.Context, T) (string, error)
	update   func(context.Context, T) error
	remove   func(context.Context, string) error
	setID    func(*T, string)
	print    func(*cobra.Command, []T) error
}

// newResourceCmd builds the list/create/update/delete commands of r.
// Records for create and update come from --file, --set, or both; --set
// wins over the file.
func newResourceCmd[T any](r resource[T]) *cobra.Command {
	cmd := &cobra.Command{
		Use:   r.name,
		Short: "Manage " + r.name,
	}

	readRecord := func(cmd *cobra.Command, file string, sets []string) (T, error) {
		var rec T
		if file == "" && len(sets) == 0 {
			return rec, fmt.Errorf("give the %s with --file or --set", r.singular)
		}
		if file != "" {
			if err := decodeRecordFile(cmd, file, &rec); err != nil {
				return rec, err
			}
		}
		if err := applySets(&rec, sets); err != nil {
			return rec, err
		}
		return rec, nil
	}

	var (
		createFile, updateFile string
		createSets, updateSets []string
	)

	list := &cobra.Command{
		Use:   "list",
		Short: "List " + r.name,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := r.list(cmd.Context())
			if err != nil {
				return fmt.Errorf("list %s: %w", r.name, err)
			}
			return r.print(cmd, items)
		},
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Create a " + r.singular,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := readRecord(cmd, createFile, createSets)
			if err != nil {
				return err
			}
			id, err := r.create(cmd.Context(), rec)
			if err != nil {
				return fmt.Errorf("create %s: %w", r.singular, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s\n", r.singular, id)
			return nil
		},
	}
	create.Flags().StringVarP(&createFile, "file", "f", "", "YAML or JSON record (- for stdin)")
	create.Flags().StringArrayVar(&createSets, "set", nil, "FIELD=VALUE using API field names (repeatable)")

	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a " + r.singular,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := readRecord(cmd, updateFile, updateSets)
			if err != nil {
				return err
			}
			r.setID(&rec, args[0])
			if err := r.update(cmd.Context(), rec); err != nil {
				return fmt.Errorf("update %s: %w", r.singular, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s %s\n", r.singular, args[0])
			return nil
		},
	}
	update.Flags().StringVarP(&updateFile, "file", "f", "", "YAML or JSON record (- for stdin)")
	update.Flags().StringArrayVar(&updateSets, "set", nil, "FIELD=VALUE using API field names (repeatable)")

	remove := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a " + r.singular,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := r.remove(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("delete %s: %w", r.singular, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %s\n", r.singular, args[0])
			return nil
		},
	}

	cmd.AddCommand(list, create, update, remove)
	return cmd
}

func printTeachers(cmd *cobra.Command, teachers []model.Teacher) error {
	out := cmd.OutOrStdout()
	if len(teachers) == 0 {
		fmt.Fprintln(out, "No teachers found.")
		return nil
	}
	t := newTable(out, "ID", "TEACHER ID", "USERNAME", "NAME", "DEPARTMENT")
	for _, tc := range teachers {
		t.row(tc.ID, orDash(tc.TeacherID), tc.Username, tc.FullName, orDash(tc.Department))
	}
	return t.flush()
}

func printFees(cmd *cobra.Command, fees []model.Fee) error {
	out := cmd.OutOrStdout()
	if len(fees) == 0 {
		fmt.Fprintln(out, "No fees found.")
		return nil
	}
	t := newTable(out, "ID", "STUDENT", "TYPE", "AMOUNT", "PAID", "DUE", "STATUS")
	for _, f := range fees {
		t.row(f.ID, f.StudentID, f.FeeType, money(f.Amount), money(f.Paid), orDash(f.DueDate), orDash(f.Status))
	}
	return t.flush()
}

func printNotices(cmd *cobra.Command, notices []model.Notice) error {
	out := cmd.OutOrStdout()
	if len(notices) == 0 {
		fmt.Fprintln(out, "No notices found.")
		return nil
	}
	t := newTable(out, "ID", "TITLE", "AUDIENCE", "PRIORITY", "EXPIRES")
	for _, n := range notices {
		t.row(n.ID, n.Title, orDash(n.Audience), orDash(n.Priority), orDash(n.ExpiryDate))
	}
	return t.flush()
}

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage academic sessions",
	}

	var s model.AcademicSession
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an academic session",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := client.CreateAcademicSession(cmd.Context(), s)
			if err != nil {
				return fmt.Errorf("create session: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created session %s\n", id)
			return nil
		},
	}
	create.Flags().StringVar(&s.Name, "name", "", "Session name, e.g. 2025-2026")
	create.Flags().StringVar(&s.StartDate, "start", "", "Start date, YYYY-MM-DD")
	create.Flags().StringVar(&s.EndDate, "end", "", "End date, YYYY-MM-DD")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List academic sessions",
			RunE: func(cmd *cobra.Command, args []string) error {
				sessions, err := client.ListAcademicSessions(cmd.Context())
				if err != nil {
					return fmt.Errorf("list sessions: %w", err)
				}
				out := cmd.OutOrStdout()
				if len(sessions) == 0 {
					fmt.Fprintln(out, "No sessions found.")
					return nil
				}
				t := newTable(out, "ID", "NAME", "START", "END", "ACTIVE")
				for _, s := range sessions {
					t.row(s.ID, s.Name, s.StartDate, s.EndDate, yesNo(s.IsActive))
				}
				return t.flush()
			},
		},
		create,
		&cobra.Command{
			Use:   "activate <id>",
			Short: "Make a session the current one",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := client.ActivateAcademicSession(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("activate session: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Session %s is now active.\n", args[0])
				return nil
			},
		},
	)
	return cmd
}

func newSemestersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "semesters",
		Short: "Manage semesters",
	}

	var sessionID string
	list := &cobra.Command{
		Use:   "list",
		Short: "List semesters",
		RunE: func(cmd *cobra.Command, args []string) error {
			semesters, err := client.ListSemesters(cmd.Context(), sessionID)
			if err != nil {
				return fmt.Errorf("list semesters: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(semesters) == 0 {
				fmt.Fprintln(out, "No semesters found.")
				return nil
			}
			t := newTable(out, "ID", "SESSION", "NAME", "NO", "START", "END", "ACTIVE")
			for _, s := range semesters {
				t.row(s.ID, s.SessionID, s.Name, s.Number, s.StartDate, s.EndDate, yesNo(s.IsActive))
			}
			return t.flush()
		},
	}
	list.Flags().StringVar(&sessionID, "session", "", "Only semesters of this session")

	var s model.Semester
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a semester",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := client.CreateSemester(cmd.Context(), s)
			if err != nil {
				return fmt.Errorf("create semester: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created semester %s\n", id)
			return nil
		},
	}
	create.Flags().StringVar(&s.SessionID, "session", "", "Academic session id")
	create.Flags().StringVar(&s.Name, "name", "", "Semester name, e.g. Spring 2025")
	create.Flags().IntVar(&s.Number, "number", 0, "Semester number")
	create.Flags().StringVar(&s.StartDate, "start", "", "Start date, YYYY-MM-DD")
	create.Flags().StringVar(&s.EndDate, "end", "", "End date, YYYY-MM-DD")

	cmd.AddCommand(list, create, &cobra.Command{
		Use:   "activate <id>",
		Short: "Make a semester the current one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.ActivateSemester(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("activate semester: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Semester %s is now active.\n", args[0])
			return nil
		},
	})
	return cmd
}

func newAdminDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show portal-wide counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := client.AdminDashboard(cmd.Context())
			if err != nil {
				return fmt.Errorf("load dashboard: %w", err)
			}
			st := d.Stats
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Students:         %d\n", st.TotalStudents)
			fmt.Fprintf(out, "Teachers:         %d\n", st.TotalTeachers)
			fmt.Fprintf(out, "Subjects:         %d\n", st.TotalSubjects)
			fmt.Fprintf(out, "Active notices:   %d\n", st.ActiveNotices)
			fmt.Fprintf(out, "Fees collected:   %s\n", money(st.FeesCollected))
			fmt.Fprintf(out, "Fees pending:     %s\n", money(st.FeesPending))
			fmt.Fprintf(out, "Active session:   %s\n", orDash(st.ActiveSession))
			fmt.Fprintf(out, "Active semester:  %s\n", orDash(st.ActiveSemester))
			printSectionErrors(cmd.ErrOrStderr(), d.Errors)
			return nil
		},
	}
}
