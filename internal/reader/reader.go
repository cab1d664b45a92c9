package reader

import (
	"path/filepath"
	"strings"

	"github.com/rgriggs0072/fliptrack-ai/internal/flterror"
	"github.com/rgriggs0072/fliptrack-ai/internal/logging"
	"github.com/rgriggs0072/fliptrack-ai/internal/models"
)

// Read dispatches on file extension.
func Read(filePath string, opts Options, logger logging.Logger) ([]models.RawRecord, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".csv":
		return ReadCSV(filePath, opts, logger)
	case ".xlsx", ".xlsm":
		return ReadXLSX(filePath, opts, logger)
	default:
		return nil, &flterror.FormatError{
			FilePath: filePath,
			Expected: "CSV or XLSX",
			Msg:      "unsupported file extension",
		}
	}
}
