// Package validation checks user-supplied paths and formats before they
// reach the import pipeline.
package validation

import (
	"fmt"
	"os"
)

// IsValidInputPath checks that a given path exists and is a regular file.
func IsValidInputPath(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("path does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("error checking path %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("path %s is not a regular file", path)
	}
	return nil
}

// IsValidSummaryFormat checks if the given report format is supported.
func IsValidSummaryFormat(format string) error {
	switch format {
	case "json", "xml":
		return nil
	default:
		return fmt.Errorf("unsupported summary format: %s. Supported formats are 'json', 'xml'", format)
	}
}
