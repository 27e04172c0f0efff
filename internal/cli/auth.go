package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/me/uniportal/internal/apiclient"
	"github.com/me/uniportal/pkg/model"
)

func newLoginCmd() *cobra.Command {
	var username, password, role string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the portal",
		Long:  "Sign in with a username, password and role. Missing credentials are read from standard input.",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := model.ParseRole(role)
			if err != nil {
				return err
			}

			in := bufio.NewReader(cmd.InOrStdin())
			if username == "" {
				if username, err = prompt(cmd.OutOrStdout(), in, "Username: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = promptSecret(cmd, in, "Password: "); err != nil {
					return err
				}
			}

			res := client.Login(cmd.Context(), username, password, r)
			if !res.Success {
				return fmt.Errorf("login failed: %s", res.Message)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", res.User.DisplayName(), res.User.Role)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password")
	cmd.Flags().StringVarP(&role, "role", "r", string(model.RoleStudent), "Role to sign in with (student, teacher, admin)")
	return cmd
}

func prompt(out io.Writer, in *bufio.Reader, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(strings.TrimSuffix(label, ": ")), err)
	}
	return strings.TrimSpace(line), nil
}

// promptSecret reads a line without echo when stdin is a terminal.
func promptSecret(cmd *cobra.Command, in *bufio.Reader, label string) (string, error) {
	f, ok := cmd.InOrStdin().(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return prompt(cmd.OutOrStdout(), in, label)
	}
	fmt.Fprint(cmd.OutOrStdout(), label)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			user := client.CurrentUser(cmd.Context())
			if user == nil {
				fmt.Fprintln(out, "Not logged in. Run 'portal login' to sign in.")
				return nil
			}

			fmt.Fprintf(out, "User:       %s\n", user.Username)
			fmt.Fprintf(out, "Name:       %s\n", orDash(user.FullName))
			fmt.Fprintf(out, "Role:       %s\n", user.Role)
			if user.Email != "" {
				fmt.Fprintf(out, "Email:      %s\n", user.Email)
			}
			if user.Department != "" {
				fmt.Fprintf(out, "Department: %s\n", user.Department)
			}
			if user.Semester > 0 {
				fmt.Fprintf(out, "Semester:   %d\n", user.Semester)
			}

			if sess, err := store.Get(cmd.Context()); err == nil && sess != nil && !sess.CreatedAt.IsZero() {
				fmt.Fprintf(out, "Signed in:  %s\n", humanize.Time(sess.CreatedAt))
			}
			if exp, ok := tokenExpiry(client.Token(cmd.Context())); ok {
				if exp.After(time.Now()) {
					fmt.Fprintf(out, "Expires:    %s\n", humanize.Time(exp))
				} else {
					fmt.Fprintf(out, "Expired:    %s\n", humanize.Time(exp))
				}
			}
			return nil
		},
	}
}

// tokenExpiry reads the exp claim of a JWT bearer token without verifying
// it. Opaque tokens report false.
func tokenExpiry(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the stored session with the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !client.IsAuthenticated(ctx) {
				return fmt.Errorf("%w: run 'portal login'", apiclient.ErrNotAuthenticated)
			}
			if !client.VerifyToken(ctx) {
				return fmt.Errorf("session is no longer valid: run 'portal login'")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Session is valid.")
			return nil
		},
	}
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect client configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := cfg.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	})
	return cmd
}

func newNoticesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notices",
		Short: "List notices addressed to you",
		RunE: func(cmd *cobra.Command, args []string) error {
			notices, err := client.Notices(cmd.Context())
			if err != nil {
				return fmt.Errorf("list notices: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(notices) == 0 {
				fmt.Fprintln(out, "No notices.")
				return nil
			}
			for i, n := range notices {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "[%s] %s\n", orDash(n.Priority), n.Title)
				fmt.Fprintf(out, "  %s\n", n.Content)
				if n.ExpiryDate != "" {
					fmt.Fprintf(out, "  Expires %s\n", n.ExpiryDate)
				}
			}
			return nil
		},
	}
}
