package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			info := map[string]string{"version": version, "commit": commit}
			switch getOutputFormat(cmd) {
			case outputJSON:
				return printJSON(out, info)
			case outputYAML:
				return printYAML(out, info)
			}
			_, err := fmt.Fprintf(out, "athena-query version %s (commit: %s)\n", version, commit)
			return err
		},
	}
}
