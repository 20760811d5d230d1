package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/taitai9847/prechecker/internal/config"
	"github.com/taitai9847/prechecker/internal/logging"
	"github.com/taitai9847/prechecker/internal/reporter"
)

// Process exit codes.
const (
	ExitOK       = 0
	ExitFailures = 1
	ExitFatal    = 2
)

// exitError carries the exit code of a finished command. A nil Err means
// the command already reported everything it had to say.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func fatal(err error) error {
	return &exitError{code: ExitFatal, err: err}
}

var errFailuresFound = &exitError{code: ExitFailures}

// app is the state shared by every subcommand of one invocation.
type app struct {
	configPath string
	verbose    bool
	noColor    bool

	cfg    config.Config
	log    *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "prechecker",
		Short: "Check CSV data against a table definition before importing it",
		Long: `prechecker reads a CREATE TABLE statement (from a file or a live database)
and reports every value in a CSV or XLSX file that the table would reject:
NOT NULL violations, integer ranges, decimal precision and scale, string
lengths, dates, times and booleans.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default "+config.DefaultFile+")")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging and schema listing")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newCheckCmd(a),
		newSchemaCmd(a),
		newGenerateCmd(a),
		newUICmd(a),
		newVersionCmd(a),
	)
	return root
}

// setup loads the configuration and builds the logger. Command flags are
// applied later by each command.
func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fatal(err)
	}
	a.cfg = cfg

	reporter.NoColor = a.noColor || os.Getenv("NO_COLOR") != ""
	reporter.Out = a.stderr

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	if a.verbose {
		level = slog.LevelDebug
	}
	a.log = logging.NewWriter(a.stderr, level)
	return nil
}

// checkConfig reports config issues. Any error-severity issue is fatal.
func (a *app) checkConfig() error {
	issues := config.Validate(a.cfg)
	for _, is := range issues {
		if is.Severity == config.SeverityWarning {
			reporter.Warn(is.Error())
		}
	}
	if config.HasErrors(issues) {
		var errs []error
		for _, is := range issues {
			if is.Severity == config.SeverityError {
				errs = append(errs, is)
			}
		}
		return fatal(fmt.Errorf("invalid configuration: %w", errors.Join(errs...)))
	}
	return nil
}

// Run executes the command line and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr, log: logging.NewNop()}
	root := newRootCmd(a)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", ee.err)
		}
		return ee.code
	}
	// flag and argument errors from cobra itself
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return ExitFatal
}

// Execute runs the command line of the current process and exits.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
