package main

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"student-records/imports"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		file string
		rows int
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Show how the columns of a file would be mapped, without importing",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}

			result, err := imports.Preview(data, filepath.Ext(file), rows)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			color.New(color.FgCyan).Fprintf(out, "%s: %d rows (%s)\n", filepath.Base(file), result.TotalRows, result.Format)

			table := tablewriter.NewWriter(out)
			table.SetHeader([]string{"#", "Header", "Key", "Field"})
			for i, col := range result.Columns {
				field := string(col.Field)
				if field == "" {
					field = "-"
				}
				table.Append([]string{strconv.Itoa(i), col.Header, col.Key, field})
			}
			table.Render()

			if len(result.Rows) > 0 {
				color.New(color.FgYellow).Fprintln(out, "First row:")
				first := tablewriter.NewWriter(out)
				first.SetHeader([]string{"Header", "Value"})
				for _, col := range result.Columns {
					first.Append([]string{col.Header, result.Rows[0][col.Header]})
				}
				first.Render()
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "File to analyze (required)")
	cmd.Flags().IntVar(&rows, "rows", imports.DefaultPreviewRows, "Rows to read for the preview")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
