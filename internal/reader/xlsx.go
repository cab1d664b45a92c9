package reader

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/rgriggs0072/fliptrack-ai/internal/flterror"
	"github.com/rgriggs0072/fliptrack-ai/internal/logging"
	"github.com/rgriggs0072/fliptrack-ai/internal/models"
)

// ReadXLSX loads one worksheet into raw spreadsheet records.
func ReadXLSX(filePath string, opts Options, logger logging.Logger) ([]models.RawRecord, error) {
	if logger == nil {
		logger = logging.GetLogger()
	}

	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, &flterror.FormatError{
			FilePath: filePath,
			Expected: "XLSX",
			Msg:      err.Error(),
		}
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &flterror.FormatError{
			FilePath: filePath,
			Expected: "XLSX",
			Msg:      fmt.Sprintf("sheet %q: %v", sheet, err),
		}
	}

	if opts.HeaderRow < 0 || len(rows) <= opts.HeaderRow {
		return nil, &flterror.FormatError{
			FilePath: filePath,
			Expected: "XLSX",
			Msg:      fmt.Sprintf("no header row at offset %d in sheet %q", opts.HeaderRow, sheet),
		}
	}

	headers := rows[opts.HeaderRow]
	records := models.NewTable(headers, rows[opts.HeaderRow+1:], models.SourceSpreadsheet)

	logger.Info("XLSX file loaded",
		logging.Field{Key: "file", Value: filePath},
		logging.Field{Key: "sheet", Value: sheet},
		logging.Field{Key: "rows", Value: len(records)},
	)
	return records, nil
}
