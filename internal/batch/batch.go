// Package batch imports whole directories of expense spreadsheets and
// groups the resulting sessions by property.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rgriggs0072/fliptrack-ai/internal/logging"
	"github.com/rgriggs0072/fliptrack-ai/internal/models"
	"github.com/rgriggs0072/fliptrack-ai/internal/reader"
	"github.com/rgriggs0072/fliptrack-ai/internal/service"
	"github.com/rgriggs0072/fliptrack-ai/internal/session"
)

// FileResult is the outcome of importing one file.
type FileResult struct {
	File      string
	Property  string
	SessionID string
	Summary   session.Summary
	Err       error
}

// Importer runs batch imports over directories.
type Importer struct {
	imports *service.ImportService
	logger  logging.Logger
}

// NewImporter creates an Importer.
func NewImporter(imports *service.ImportService, logger logging.Logger) *Importer {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Importer{imports: imports, logger: logger}
}

// ImportDirectory imports every spreadsheet file in dir, in filename order.
// Per-file failures are recorded on the result, not returned; the batch
// continues with the remaining files.
func (b *Importer) ImportDirectory(ctx context.Context, dir string, opts reader.Options) ([]FileResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".csv", ".xlsx", ".xlsm":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)

	results := make([]FileResult, 0, len(files))
	for _, file := range files {
		result := FileResult{
			File:     file,
			Property: PropertyFromFilename(file),
		}

		records, err := reader.Read(file, opts, b.logger)
		if err != nil {
			result.Err = err
			b.logger.WithError(err).WithFields(
				logging.Field{Key: "file", Value: file},
			).Error("Failed to read file, skipping")
			results = append(results, result)
			continue
		}

		result.SessionID = b.imports.BeginImport(ctx, records, models.SourceSpreadsheet)
		if summary, err := b.imports.SessionSummary(result.SessionID); err == nil {
			result.Summary = summary
		}
		results = append(results, result)

		if ctx.Err() != nil {
			break
		}
	}

	b.logger.Info("Batch import completed",
		logging.Field{Key: "dir", Value: dir},
		logging.Field{Key: "files", Value: len(results)},
	)
	return results, nil
}

// GroupByProperty buckets file results by their property identifier.
// Results with no recognizable property land under "".
func GroupByProperty(results []FileResult) map[string][]FileResult {
	groups := make(map[string][]FileResult)
	for _, result := range results {
		groups[result.Property] = append(groups[result.Property], result)
	}
	return groups
}

var propertySuffix = regexp.MustCompile(`[-_ ](expenses?|budget|rehab|ledger|costs?)$`)

// PropertyFromFilename derives a property identifier from a spreadsheet
// filename. The extension and common trailing words like "expenses" or
// "budget" are stripped, so "124-maple-st_expenses.xlsx" maps to
// "124-maple-st".
func PropertyFromFilename(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.ToLower(strings.TrimSpace(name))
	name = propertySuffix.ReplaceAllString(name, "")
	return strings.Trim(name, "-_ ")
}
