package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"student-records/imports"
)

type importOptions struct {
	file  string
	group string
}

func newImportCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a CSV, JSON, NDJSON or XLSX file into a new group",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "File to import (required)")
	cmd.Flags().StringVar(&opts.group, "group", "", "Name of the group to create (required)")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("group")

	return cmd
}

func runImport(cmd *cobra.Command, opts importOptions) error {
	data, err := os.ReadFile(opts.file)
	if err != nil {
		return err
	}

	store, cfg, err := openStore()
	if err != nil {
		return err
	}

	ingestor := imports.NewIngestor(store, cfg.KeepUnmapped)
	report, err := ingestor.ImportBatch(cmd.Context(), data, filepath.Ext(opts.file), opts.group)
	if err != nil {
		return err
	}

	printReport(cmd.OutOrStdout(), report)
	return nil
}

func printReport(w io.Writer, report *imports.Report) {
	color.New(color.FgGreen).Fprintf(w, "Imported %d of %d rows into group %d (%s)\n",
		report.CreatedCount(), report.Total, report.GroupID, report.Format)

	problems := report.Problems()
	if len(problems) == 0 {
		return
	}

	color.New(color.FgYellow).Fprintf(w, "%d skipped, %d failed\n", len(report.Skipped), len(report.Failed))
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Row", "Outcome", "National ID", "Reason"})
	for _, p := range problems {
		var reasons []string
		for _, e := range p.Errors {
			reasons = append(reasons, e.Message)
		}
		table.Append([]string{
			strconv.Itoa(p.RowNumber),
			p.Outcome,
			p.RecordID,
			strings.Join(reasons, "; "),
		})
	}
	table.Render()
	fmt.Fprintln(w)
}
