// Package export writes import session results to files: accepted records
// as CSV and session summaries as JSON.
package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/rgriggs0072/fliptrack-ai/internal/logging"
	"github.com/rgriggs0072/fliptrack-ai/internal/models"
	"github.com/rgriggs0072/fliptrack-ai/internal/report"
	"github.com/rgriggs0072/fliptrack-ai/internal/session"
)

// expenseRow is the CSV shape of an accepted record.
type expenseRow struct {
	Date        string `csv:"Date"`
	Amount      string `csv:"Amount"`
	Description string `csv:"Description"`
	Vendor      string `csv:"Vendor"`
	Category    string `csv:"Category"`
	Funding     string `csv:"Funding"`
	Confidence  string `csv:"Confidence"`
	Row         int    `csv:"Row"`
}

// WriteCSV writes the session's accepted records to csvFile in row order.
func WriteCSV(sess *session.Session, csvFile string, logger logging.Logger) error {
	if logger == nil {
		logger = logging.GetLogger()
	}

	records := sess.AcceptedRecords()
	rows := make([]expenseRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, toRow(record))
	}

	file, err := os.Create(csvFile)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close file")
		}
	}()

	writer := csv.NewWriter(file)
	if err := gocsv.MarshalCSV(&rows, gocsv.NewSafeCSVWriter(writer)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}

	logger.Info("Accepted records written to CSV",
		logging.Field{Key: "file", Value: csvFile},
		logging.Field{Key: "count", Value: len(rows)},
	)
	return nil
}

func toRow(record models.TransactionRecord) expenseRow {
	date := ""
	if !record.Date.IsZero() {
		date = record.Date.Format("2006-01-02")
	}
	return expenseRow{
		Date:        date,
		Amount:      record.Amount.StringFixed(2),
		Description: record.Description,
		Vendor:      record.Vendor,
		Category:    record.Category,
		Funding:     record.Funding.Code(),
		Confidence:  fmt.Sprintf("%.2f", record.Confidence),
		Row:         record.Provenance.RowIndex,
	}
}

// WriteSummary renders the session summary in the requested format (json or
// xml) and writes it to outFile.
func WriteSummary(summary session.Summary, outFile, format string, logger logging.Logger) error {
	if logger == nil {
		logger = logging.GetLogger()
	}

	data, err := report.NewGenerator(logger).Generate(summary, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write summary file: %w", err)
	}

	logger.Info("Session summary written",
		logging.Field{Key: "file", Value: outFile},
		logging.Field{Key: "format", Value: format},
	)
	return nil
}
