// Package labeling is the engine's sole point of contact with the external
// classification capability. Everything that crosses this boundary is treated
// as untrusted: category strings are validated against the taxonomy,
// confidences are clamped, and malformed fields degrade to conservative
// defaults instead of failing the batch.
package labeling

import (
	"context"

	"github.com/rgriggs0072/fliptrack-ai/internal/models"
)

// Result is the raw answer from a labeling capability, before any
// validation. Field values must not be trusted until sanitized.
type Result struct {
	Category           string
	CategoryConfidence float64
	Vendor             string
	Funding            string
	FundingConfidence  float64

	// Amount and Date are extracted for free-text sources (voice, receipt)
	// where no spreadsheet column carries them. Optional.
	Amount string
	Date   string
}

// Adapter is the capability interface to the external classification and
// extraction service. Calls are idempotent from the engine's perspective; no
// retry state is held across calls.
type Adapter interface {
	// Classify labels a description string, optionally using the record's
	// surrounding field bindings as context.
	Classify(ctx context.Context, description string, bindings models.BindingSet) (Result, error)

	// Name identifies this adapter for logging.
	Name() string
}
