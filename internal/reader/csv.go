// Package reader loads spreadsheet files into raw records for the import
// pipeline. Readers make no assumptions about column layout; schema
// discovery is the normalizer's job.
package reader

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/rgriggs0072/fliptrack-ai/internal/flterror"
	"github.com/rgriggs0072/fliptrack-ai/internal/logging"
	"github.com/rgriggs0072/fliptrack-ai/internal/models"
)

// Options control how spreadsheet files are read.
type Options struct {
	// HeaderRow is the zero-based row holding the column headers. Rows
	// above it are skipped, which covers ledgers with title banners.
	HeaderRow int

	// Sheet selects the worksheet by name for XLSX files. Empty means the
	// first sheet.
	Sheet string
}

// ReadCSV loads a delimiter-separated file into raw spreadsheet records.
func ReadCSV(filePath string, opts Options, logger logging.Logger) ([]models.RawRecord, error) {
	if logger == nil {
		logger = logging.GetLogger()
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1 // ragged rows are padded later
	rows, err := r.ReadAll()
	if err != nil {
		return nil, &flterror.FormatError{
			FilePath: filePath,
			Expected: "CSV",
			Msg:      err.Error(),
		}
	}

	if opts.HeaderRow < 0 || len(rows) <= opts.HeaderRow {
		return nil, &flterror.FormatError{
			FilePath: filePath,
			Expected: "CSV",
			Msg:      fmt.Sprintf("no header row at offset %d", opts.HeaderRow),
		}
	}

	headers := rows[opts.HeaderRow]
	records := models.NewTable(headers, rows[opts.HeaderRow+1:], models.SourceSpreadsheet)

	logger.Info("CSV file loaded",
		logging.Field{Key: "file", Value: filePath},
		logging.Field{Key: "rows", Value: len(records)},
	)
	return records, nil
}
