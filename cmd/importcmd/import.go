// Package importcmd handles spreadsheet import commands.
package importcmd

import (
	"github.com/spf13/cobra"

	"github.com/rgriggs0072/fliptrack-ai/cmd/root"
	"github.com/rgriggs0072/fliptrack-ai/internal/export"
	"github.com/rgriggs0072/fliptrack-ai/internal/logging"
	"github.com/rgriggs0072/fliptrack-ai/internal/models"
	"github.com/rgriggs0072/fliptrack-ai/internal/reader"
	"github.com/rgriggs0072/fliptrack-ai/internal/validation"
)

// Cmd represents the import command.
var Cmd = &cobra.Command{
	Use:   "import",
	Short: "Import and categorize an expense spreadsheet",
	Long: `Import a CSV or XLSX expense spreadsheet, discover its column layout,
categorize every row, and report the session summary. Accepted records can
be exported to CSV and persisted to the expense database.`,
	RunE: importFunc,
}

func init() {
	Cmd.Flags().IntVar(&root.HeaderRow, "header-row", 0, "Zero-based row holding the column headers")
	Cmd.Flags().StringVar(&root.Sheet, "sheet", "", "Worksheet name for XLSX files (default: first sheet)")
	Cmd.Flags().StringVar(&root.SummaryFile, "summary", "", "Write the session summary to this file")
	Cmd.Flags().StringVar(&root.SummaryFormat, "summary-format", "json", "Summary format: json or xml")
	Cmd.Flags().BoolVar(&root.Persist, "persist", false, "Persist accepted records to the expense database")
	Cmd.Flags().StringVar(&root.TenantID, "tenant", "", "Tenant the records belong to (default: from config)")
}

func importFunc(cmd *cobra.Command, args []string) error {
	app, err := root.App()
	if err != nil {
		return err
	}
	logger := app.GetLogger()
	ctx := cmd.Context()

	if root.SharedFlags.Input == "" {
		return cmd.Help()
	}
	if err := validation.IsValidInputPath(root.SharedFlags.Input); err != nil {
		return err
	}
	if root.SummaryFile != "" {
		if err := validation.IsValidSummaryFormat(root.SummaryFormat); err != nil {
			return err
		}
	}

	headerRow := root.HeaderRow
	if headerRow == 0 {
		headerRow = app.GetConfig().Import.HeaderRow
	}
	records, err := reader.Read(root.SharedFlags.Input, reader.Options{
		HeaderRow: headerRow,
		Sheet:     root.Sheet,
	}, logger)
	if err != nil {
		return err
	}

	imports := app.GetImportService()
	sessionID := imports.BeginImport(ctx, records, models.SourceSpreadsheet)

	sess, err := imports.Session(sessionID)
	if err != nil {
		return err
	}
	summary := sess.Summary()

	logger.Info("Import complete",
		logging.Field{Key: "session", Value: sessionID},
		logging.Field{Key: "accepted", Value: summary.Accepted},
		logging.Field{Key: "rejected", Value: summary.Rejected},
		logging.Field{Key: "low_confidence", Value: summary.LowConfidence},
	)

	if root.SharedFlags.Output != "" {
		if err := export.WriteCSV(sess, root.SharedFlags.Output, logger); err != nil {
			return err
		}
	}

	if root.SummaryFile != "" {
		if err := export.WriteSummary(summary, root.SummaryFile, root.SummaryFormat, logger); err != nil {
			return err
		}
	}

	if root.Persist {
		tenant := root.TenantID
		if tenant == "" {
			tenant = app.GetConfig().Data.TenantID
		}
		persisted, err := imports.PersistSession(ctx, sessionID, tenant)
		if err != nil {
			return err
		}
		logger.Info("Records persisted", logging.Field{Key: "count", Value: persisted})
	}

	return nil
}
