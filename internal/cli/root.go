package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"expenses/internal/config"
	applog "expenses/internal/log"
	"expenses/internal/session"
)

// app carries flag values and the state shared by all commands.
type app struct {
	envFile       string
	debug         bool
	dataDir       string
	backend       string
	skipMalformed bool

	clock  session.Clock
	in     io.Reader
	cfg    *config.Config
	logger *applog.Logger
}

type Option func(*app)

// WithClock fixes the notion of "today" used by tracking and default dates.
func WithClock(c session.Clock) Option {
	return func(a *app) { a.clock = c }
}

// WithInput replaces stdin as the source of interactive input.
func WithInput(r io.Reader) Option {
	return func(a *app) { a.in = r }
}

// NewRootCmd builds the command tree.
func NewRootCmd(opts ...Option) *cobra.Command {
	a := &app{clock: session.SystemClock{}, in: os.Stdin}
	for _, opt := range opts {
		opt(a)
	}

	rootCmd := &cobra.Command{
		Use:   "expenses",
		Short: "Track personal expenses against a monthly budget",
		Long: `expenses keeps a log of dated expenses and a monthly budget in local
files, and compares this month's spending with the budget.

Run without a subcommand for the interactive menu.

Example:
  expenses
  expenses add --category Food --amount 12.50 --description lunch
  expenses budget set 500
  expenses track`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		RunE:              a.runInteractive,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.envFile, "env-file", "", "env file to load (default is ./.env if present)")
	flags.BoolVar(&a.debug, "debug", false, "enable debug logging")
	flags.StringVar(&a.dataDir, "data-dir", "", "directory holding the data files (default is the executable's directory)")
	flags.StringVar(&a.backend, "backend", "", "storage backend: csv, sqlite or memory")
	flags.BoolVar(&a.skipMalformed, "skip-malformed", false, "skip malformed stored rows instead of failing")

	rootCmd.AddCommand(a.newAddCmd())
	rootCmd.AddCommand(a.newListCmd())
	rootCmd.AddCommand(a.newTrackCmd())
	rootCmd.AddCommand(a.newBudgetCmd())

	return rootCmd
}

// Execute runs the command tree against the process arguments.
// This is called by main.main().
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := LoadEnvFile(a.envFile); err != nil {
		return err
	}

	cfg, err := LoadAndValidateConfig(func(c *config.Config) {
		if a.dataDir != "" {
			c.DataDir = a.dataDir
		}
		if a.backend != "" {
			c.DataBackend = a.backend
		}
		if a.skipMalformed {
			c.SkipMalformed = true
		}
	})
	if err != nil {
		return err
	}

	logger, err := SetupLogger(cmd.ErrOrStderr(), cfg.LogLevel, a.debug)
	if err != nil {
		return err
	}
	logger.Debug("Configuration loaded",
		"data_dir", cfg.DataDir,
		applog.FieldBackend, cfg.DataBackend,
		"skip_malformed", cfg.SkipMalformed)

	a.cfg, a.logger = cfg, logger
	return nil
}

// withSession opens a session, runs fn and releases the backend.
func (a *app) withSession(ctx context.Context, fn func(*session.Session) error) error {
	s, cleanup, err := OpenSession(ctx, a.cfg, a.logger, session.WithClock(a.clock))
	if err != nil {
		return err
	}
	defer func() {
		if err := cleanup(); err != nil {
			a.logger.Warn("Backend cleanup failed", applog.FieldError, err)
		}
	}()
	return fn(s)
}

func (a *app) runInteractive(cmd *cobra.Command, _ []string) error {
	return a.withSession(cmd.Context(), func(s *session.Session) error {
		return NewMenu(s, a.in, cmd.OutOrStdout()).Run(cmd.Context())
	})
}
