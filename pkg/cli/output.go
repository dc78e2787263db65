package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"athena-query/internal/service/query"
)

const (
	outputTable = "table"
	outputCSV   = "csv"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

// getOutputFormat returns the effective output format from the root command's persistent flags.
func getOutputFormat(cmd *cobra.Command) string {
	v, _ := cmd.Root().PersistentFlags().GetString("output")
	return v
}

func defaultOutputFormat(stdoutIsTerminal bool) string {
	if stdoutIsTerminal {
		return outputTable
	}
	return outputCSV
}

func validateOutputFormat(output string) error {
	switch output {
	case outputTable, outputCSV, outputJSON, outputYAML:
		return nil
	}
	return fmt.Errorf("unsupported output format %q: use 'table', 'csv', 'json' or 'yaml'", output)
}

// resultDocument is the structured (json/yaml) rendering of a query outcome.
type resultDocument struct {
	ExecutionID      string     `json:"execution_id" yaml:"execution_id"`
	State            string     `json:"state" yaml:"state"`
	Columns          []string   `json:"columns" yaml:"columns"`
	Rows             [][]string `json:"rows" yaml:"rows"`
	RowCount         int        `json:"row_count" yaml:"row_count"`
	DataScannedBytes int64      `json:"data_scanned_bytes" yaml:"data_scanned_bytes"`
}

func newResultDocument(out *query.Outcome) resultDocument {
	return resultDocument{
		ExecutionID:      string(out.Record.Handle),
		State:            string(out.Record.State),
		Columns:          out.Result.Columns,
		Rows:             out.Result.Rows,
		RowCount:         out.Result.RowCount(),
		DataScannedBytes: out.Record.Stats.DataScannedBytes,
	}
}

// writeOutcome renders a successful outcome to w. The table format also
// prints a row count to status.
func writeOutcome(w, status io.Writer, format string, out *query.Outcome) error {
	switch format {
	case outputJSON:
		return printJSON(w, newResultDocument(out))
	case outputYAML:
		return printYAML(w, newResultDocument(out))
	case outputCSV:
		return printCSV(w, out.Result.Columns, out.Result.Rows)
	default:
		if err := printTable(w, out.Result.Columns, out.Result.Rows); err != nil {
			return err
		}
		_, err := fmt.Fprintf(status, "\n(%d rows)\n", out.Result.RowCount())
		return err
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func printCSV(w io.Writer, columns []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

func printTable(w io.Writer, columns []string, rows [][]string) error {
	data := make(pterm.TableData, 0, len(rows)+1)
	data = append(data, columns)
	data = append(data, rows...)
	rendered, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	_, err = fmt.Fprintln(w, rendered)
	return err
}
