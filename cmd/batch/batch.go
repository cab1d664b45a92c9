// Package batch handles directory-level import commands.
package batch

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rgriggs0072/fliptrack-ai/cmd/root"
	"github.com/rgriggs0072/fliptrack-ai/internal/batch"
	"github.com/rgriggs0072/fliptrack-ai/internal/reader"
)

// Cmd represents the batch command.
var Cmd = &cobra.Command{
	Use:   "batch",
	Short: "Import every spreadsheet in a directory",
	Long: `Import all CSV and XLSX files in a directory, one session per file,
and print a per-property summary.`,
	RunE: batchFunc,
}

func init() {
	Cmd.Flags().StringVarP(&root.InputDir, "dir", "d", "", "Directory containing spreadsheet files (required)")
	Cmd.Flags().IntVar(&root.HeaderRow, "header-row", 0, "Zero-based row holding the column headers")
	_ = Cmd.MarkFlagRequired("dir")
}

func batchFunc(cmd *cobra.Command, args []string) error {
	app, err := root.App()
	if err != nil {
		return err
	}

	importer := batch.NewImporter(app.GetImportService(), app.GetLogger())
	results, err := importer.ImportDirectory(cmd.Context(), root.InputDir, reader.Options{
		HeaderRow: root.HeaderRow,
	})
	if err != nil {
		return err
	}

	for property, group := range batch.GroupByProperty(results) {
		if property == "" {
			property = "(unknown property)"
		}
		fmt.Printf("%s:\n", property)
		for _, result := range group {
			if result.Err != nil {
				fmt.Printf("  %s: error: %v\n", result.File, result.Err)
				continue
			}
			fmt.Printf("  %s: session %s, %d accepted, %d rejected\n",
				result.File, result.SessionID, result.Summary.Accepted, result.Summary.Rejected)
		}
	}
	return nil
}
