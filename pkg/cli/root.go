// Package cli implements the athena-query command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"athena-query/internal/app"
	"athena-query/internal/config"
	"athena-query/internal/domain"
	"athena-query/internal/service/query"
)

var (
	version = "dev"
	commit  = "none"
)

// Runner runs one query to completion.
type Runner interface {
	Run(ctx context.Context, req domain.QueryRequest) (*query.Outcome, error)
}

// RunnerFactory builds a Runner once flags are parsed.
type RunnerFactory func(ctx context.Context, logger *slog.Logger) (Runner, error)

// Execute runs the CLI.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd(newAppRunner, term.IsTerminal(int(os.Stdout.Fd()))) //nolint:gosec // fd fits in int
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd(newRunner RunnerFactory, stdoutIsTerminal bool) *cobra.Command {
	var (
		output  string
		verbose bool
	)

	rootCmd := &cobra.Command{
		Use:           "athena-query",
		Short:         "Run SQL on Amazon Athena",
		Long:          "Submit SQL to Amazon Athena, wait for it to finish, and print the result table.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("output") {
				output = defaultOutputFormat(stdoutIsTerminal)
			}
			return validateOutputFormat(output)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "", "Output format (table, csv, json, yaml); defaults to table on a terminal, csv otherwise")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log polling progress to stderr")

	newLogger := func(w io.Writer) *slog.Logger {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	}

	rootCmd.AddCommand(newQueryCmd(newRunner, newLogger))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// newAppRunner wires the real Athena-backed service from the environment.
func newAppRunner(ctx context.Context, logger *slog.Logger) (Runner, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}
	a, err := app.New(ctx, app.Deps{Cfg: cfg, Logger: logger})
	if err != nil {
		return nil, err
	}
	return a, nil
}
