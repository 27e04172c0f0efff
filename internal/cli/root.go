// Package cli implements the portal command-line client: a thin view layer
// over apiclient with role-scoped command groups.
package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/me/uniportal/internal/apiclient"
	"github.com/me/uniportal/internal/config"
	"github.com/me/uniportal/internal/logging"
	"github.com/me/uniportal/internal/session"
	"github.com/me/uniportal/pkg/model"
)

var (
	flagConfig string
	flagDebug  bool

	cfg     config.Config
	logger  *slog.Logger
	store   session.Store
	client  *apiclient.Client
	metrics *apiclient.Metrics
)

// expiredMessage is printed whenever the server rejects the stored session.
const expiredMessage = "Your session has expired. Run 'portal login' to sign in again."

// Post-run hooks are skipped when a command fails; finalizers are not.
func init() {
	cobra.OnFinalize(closeStore)
}

// NewRootCmd creates the root cobra command for the portal CLI.
func NewRootCmd() *cobra.Command {
	def := config.DefaultConfig()

	root := &cobra.Command{
		Use:                "portal",
		Short:              "University portal client",
		Long:               "portal signs in to the university portal and works with marks, attendance, fees, notices and reports.",
		PersistentPreRunE:  setup,
		PersistentPostRunE: teardown,
		SilenceUsage:       true,
	}

	pf := root.PersistentFlags()
	pf.String("server", def.BaseURL, "Portal API root (or PORTAL_BASE_URL env)")
	pf.StringVar(&flagConfig, "config", "", "Config file (default ~/.portal/config.yaml)")
	pf.Duration("timeout", def.Timeout, "Per-request timeout (0 waits for the transport)")
	pf.String("session-backend", def.SessionBackend, "Session store: file, sqlite or memory")
	pf.String("session-path", "", "Session file or database path (default under ~/.portal)")
	pf.String("download-dir", def.DownloadDir, "Directory for downloaded documents")
	pf.BoolVar(&flagDebug, "debug", false, "Shorthand for --log-level=debug")
	pf.String("log-level", def.LogLevel, "Log level (debug, info, warn, error)")
	pf.String("log-format", def.LogFormat, "Log format (text, json)")
	pf.Bool("metrics", def.Metrics, "Print request metrics to stderr on exit")

	root.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newVerifyCmd(),
		newConfigCmd(),
		newNoticesCmd(),
		newStudentCmd(),
		newTeacherCmd(),
		newAdminCmd(),
	)

	return root
}

// setup resolves the configuration and builds the logger, session store and
// API client shared by every command.
func setup(cmd *cobra.Command, _ []string) error {
	closeStore()

	var err error
	cfg, err = config.Load(config.LoadOptions{
		ConfigFile: flagConfig,
		EnvFile:    ".env",
		Flags:      cmd.Flags(),
	})
	if err != nil {
		return err
	}
	if flagDebug {
		cfg.LogLevel = "debug"
	}

	logger = logging.NewLoggerWithWriter(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat, cmd.ErrOrStderr())

	store, err = session.Open(cfg.SessionBackend, cfg.SessionPath, logger)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}

	errOut := cmd.ErrOrStderr()
	opts := []apiclient.Option{
		apiclient.WithSessionExpiredHandler(func() {
			fmt.Fprintln(errOut, expiredMessage)
		}),
	}
	metrics = nil
	if cfg.Metrics {
		metrics = apiclient.NewMetrics()
		opts = append(opts, apiclient.WithMetrics(metrics))
	}

	client = apiclient.New(apiclient.Config{
		BaseURL:     cfg.BaseURL,
		Timeout:     cfg.Timeout,
		DownloadDir: cfg.DownloadDir,
	}, store, logger, opts...)

	logger.Debug("client ready", "server", cfg.BaseURL, "session_backend", cfg.SessionBackend)
	return nil
}

func teardown(cmd *cobra.Command, _ []string) error {
	defer closeStore()
	if metrics == nil {
		return nil
	}
	return metrics.WriteText(cmd.ErrOrStderr())
}

func closeStore() {
	if c, ok := store.(io.Closer); ok {
		c.Close()
	}
	store = nil
}

// requireRole returns a pre-run hook for a role-scoped command group. It runs
// the shared setup and then refuses to continue unless the stored session
// belongs to the given role.
func requireRole(role model.Role) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := setup(cmd, args); err != nil {
			return err
		}
		user := client.CurrentUser(cmd.Context())
		if user == nil {
			return fmt.Errorf("%w: run 'portal login --role %s'", apiclient.ErrNotAuthenticated, role)
		}
		if !user.HasRole(role) {
			return fmt.Errorf("%s commands need a %s session but you are signed in as %s (%s): run 'portal login --role %s'",
				role, role, user.Username, user.Role, role)
		}
		return nil
	}
}
