package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"athena-query/internal/domain"
)

func newQueryCmd(newRunner RunnerFactory, newLogger func(io.Writer) *slog.Logger) *cobra.Command {
	var req domain.QueryRequest

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a SQL query and print its result",
		Long: "Run a SQL query on Athena and wait for it to finish. SQL is taken from --sql " +
			"or, when the flag is absent, from standard input.",
		Example: `  athena-query query --sql "SELECT * FROM events LIMIT 10" --database analytics
  echo "SELECT 1" | athena-query query --database analytics -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if req.QueryText == "" {
				sql, err := readSQL(cmd.InOrStdin())
				if err != nil {
					return err
				}
				req.QueryText = sql
			}
			if req.QueryText == "" {
				return fmt.Errorf("provide SQL via --sql flag or stdin pipe")
			}

			runner, err := newRunner(cmd.Context(), newLogger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}

			out, err := runner.Run(cmd.Context(), req)
			if err != nil {
				return err
			}
			if out.Failure != nil {
				return fmt.Errorf("execution %s: %w", out.Record.Handle, out.Failure)
			}
			return writeOutcome(cmd.OutOrStdout(), cmd.ErrOrStderr(), getOutputFormat(cmd), out)
		},
	}

	cmd.Flags().StringVar(&req.QueryText, "sql", "", "SQL text to run (reads stdin when omitted)")
	cmd.Flags().StringVar(&req.Database, "database", "", "Database to run against (default $ATHENA_DATABASE)")
	cmd.Flags().StringVar(&req.WorkGroup, "workgroup", "", "Athena workgroup (default $ATHENA_WORKGROUP)")
	cmd.Flags().StringVar(&req.Catalog, "catalog", "", "Data catalog (default $ATHENA_CATALOG)")

	return cmd
}

// readSQL reads SQL from in unless in is an interactive terminal.
func readSQL(in io.Reader) (string, error) {
	if f, ok := in.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil || stat.Mode()&os.ModeCharDevice != 0 {
			return "", nil
		}
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
