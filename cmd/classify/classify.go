// Package classify handles one-off expense classification commands.
package classify

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rgriggs0072/fliptrack-ai/cmd/root"
	"github.com/rgriggs0072/fliptrack-ai/internal/models"
)

// Cmd represents the classify command.
var Cmd = &cobra.Command{
	Use:   "classify",
	Short: "Categorize a single expense description",
	Long: `Categorize one free-text expense, the way a voice transcript or a
receipt extract is processed, and print the resulting record.`,
	RunE: classifyFunc,
}

func init() {
	Cmd.Flags().StringVarP(&root.Text, "text", "t", "", "Expense description to classify")
	Cmd.Flags().StringVarP(&root.Source, "source", "s", "voice", "Source kind: voice or receipt")
	_ = Cmd.MarkFlagRequired("text")
}

func classifyFunc(cmd *cobra.Command, args []string) error {
	app, err := root.App()
	if err != nil {
		return err
	}

	var kind models.SourceKind
	switch root.Source {
	case "voice":
		kind = models.SourceVoice
	case "receipt":
		kind = models.SourceReceipt
	default:
		return fmt.Errorf("unknown source kind %q (must be voice or receipt)", root.Source)
	}

	records := []models.RawRecord{models.NewFreeTextRecord(root.Text, kind)}
	eng := app.GetEngine()
	sess := eng.Process(cmd.Context(), records, kind)
	eng.AdoptLearnedVendors(sess)

	outcomes := sess.Outcomes()
	if len(outcomes) == 0 {
		return fmt.Errorf("no outcome produced")
	}
	outcome := outcomes[0]
	if outcome.Status == models.OutcomeRejected {
		return fmt.Errorf("expense rejected: %s", outcome.Reason)
	}

	record := outcome.Record
	fmt.Printf("Category:   %s\n", record.Category)
	fmt.Printf("Vendor:     %s\n", record.Vendor)
	if !record.Amount.IsZero() {
		fmt.Printf("Amount:     %s\n", record.Amount.StringFixed(2))
	}
	if !record.Date.IsZero() {
		fmt.Printf("Date:       %s\n", record.Date.Format("2006-01-02"))
	}
	if code := record.Funding.Code(); code != "" {
		fmt.Printf("Funding:    %s\n", code)
	}
	fmt.Printf("Confidence: %.2f\n", record.Confidence)
	return nil
}
