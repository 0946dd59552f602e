// Package cli wires configuration, storage and the menu into the
// weighttracker command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"weighttracker/internal/menu"
)

// ExitInterrupted is the exit code used when the menu is stopped by a signal.
const ExitInterrupted = 130

// ExitError carries a process exit code alongside the error.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode returns the process exit code.
func (e *ExitError) ExitCode() int { return e.Code }

// NewRootCmd creates the root command for weighttracker.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "weighttracker",
		Short: "Record and review your weight from the terminal",
		Long: `weighttracker keeps a timestamped log of weight measurements.

Run without arguments to start the interactive menu:
  1  record a new weight
  2  show all records
  anything else exits`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.configPath, "config", "", "path to a YAML config file (default $WEIGHT_CONFIG)")
	f.StringVar(&opts.driver, "store", "", "record backend: csv, sqlite, postgres or memory")
	f.StringVar(&opts.path, "file", "", "data file for the csv and sqlite backends")
	f.StringVar(&opts.dsn, "dsn", "", "PostgreSQL connection string")
	f.StringVar(&opts.logLevel, "log-level", "", "diagnostic log level: debug, info, warn or error")
	f.StringVar(&opts.unit, "unit", "", "unit label shown next to weights")

	cmd.AddCommand(newAddCmd(opts))
	cmd.AddCommand(newListCmd(opts))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// Execute runs the root command with provided args.
func Execute(args []string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}

func runInteractive(cmd *cobra.Command, opts *options) error {
	s, err := openSession(cmd, opts)
	if err != nil {
		return err
	}
	defer s.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runMenu(ctx, s, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// runMenu drives the menu until it exits or ctx is cancelled, then makes one
// more attempt to save anything still pending. Cancellation is reported as
// an ExitError with ExitInterrupted.
func runMenu(ctx context.Context, s *session, in io.Reader, out, errOut io.Writer) error {
	runErr := menu.New(s.store, in, out,
		menu.WithLogger(s.log),
		menu.WithUnit(s.cfg.Unit),
	).Run(ctx)

	// The menu context may already be cancelled; the flush gets its own.
	if err := s.store.Flush(context.Background()); err != nil {
		s.log.Error("final flush", zap.Error(err), zap.Int("pending", s.store.Pending()))
		_, _ = fmt.Fprintf(errOut, "warning: %d record(s) could not be saved: %v\n", s.store.Pending(), err)
	}

	if errors.Is(runErr, context.Canceled) {
		return &ExitError{Code: ExitInterrupted, Err: errors.New("interrupted")}
	}
	return runErr
}
