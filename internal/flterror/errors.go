// Package flterror defines the typed errors used across the import engine.
package flterror

import "fmt"

// NormalizationError reports a raw record that could not be normalized onto
// the canonical schema. It is recorded as a rejected outcome, never
// propagated as a process-level failure.
type NormalizationError struct {
	RowIndex int
	Field    string
	Reason   string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("row %d: cannot normalize %s: %s", e.RowIndex, e.Field, e.Reason)
}

// LabelingError reports a failed call to the external labeling capability
// after retries were exhausted.
type LabelingError struct {
	Description string
	Attempts    int
	Err         error
}

func (e *LabelingError) Error() string {
	return fmt.Sprintf("labeling failed after %d attempts for %q: %v",
		e.Attempts, e.Description, e.Err)
}

func (e *LabelingError) Unwrap() error {
	return e.Err
}

// FormatError reports an input file that does not conform to the expected
// table format.
type FormatError struct {
	FilePath string
	Expected string
	Msg      string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid format in file '%s': %s. Expected: %s",
		e.FilePath, e.Msg, e.Expected)
}
