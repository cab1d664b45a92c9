package labeling

import (
	"math"
	"regexp"
	"strings"

	"github.com/rgriggs0072/fliptrack-ai/internal/logging"
	"github.com/rgriggs0072/fliptrack-ai/internal/models"
	"github.com/rgriggs0072/fliptrack-ai/internal/taxonomy"
)

// Label is a sanitized labeling result. Every field has been validated and
// clamped at the trust boundary, so downstream code can use it directly.
type Label struct {
	Category           string
	CategoryConfidence float64
	Vendor             string
	Funding            models.FundingClass
	FundingConfidence  float64
	Amount             string
	Date               string

	// Coerced reports that the category was outside the taxonomy and had to
	// be mapped to Uncategorized. Logged as a data-quality signal.
	Coerced bool
}

// ConservativeDefault is the label substituted when the labeling capability
// is unreachable or returns nothing usable.
func ConservativeDefault() Label {
	return Label{
		Category:           taxonomy.Uncategorized,
		CategoryConfidence: 0,
		Funding:            models.FundingUnknown,
		FundingConfidence:  0,
	}
}

// Sanitize validates a raw adapter result. Out-of-taxonomy categories are
// coerced to Uncategorized with confidence capped at 0.5; confidences are
// clamped into [0,1]; funding spellings are normalized, with Unknown funding
// scored zero. An empty vendor falls back to a heuristic extraction from the
// description.
func Sanitize(res Result, description string, logger logging.Logger) Label {
	if logger == nil {
		logger = logging.GetLogger()
	}

	label := Label{
		CategoryConfidence: clamp01(res.CategoryConfidence),
		FundingConfidence:  clamp01(res.FundingConfidence),
		Vendor:             strings.TrimSpace(res.Vendor),
		Amount:             strings.TrimSpace(res.Amount),
		Date:               strings.TrimSpace(res.Date),
	}

	label.Category, label.Coerced = taxonomy.Coerce(res.Category)
	if label.Coerced {
		if label.CategoryConfidence > taxonomy.CoercedConfidenceCap {
			label.CategoryConfidence = taxonomy.CoercedConfidenceCap
		}
		logger.WithFields(
			logging.Field{Key: "returned_category", Value: res.Category},
			logging.Field{Key: "coerced_to", Value: label.Category},
		).Warn("Labeling service returned out-of-taxonomy category")
	}
	if res.Category == "" {
		label.CategoryConfidence = 0
	}

	label.Funding = models.ParseFunding(res.Funding)
	if label.Funding == models.FundingUnknown {
		label.FundingConfidence = 0
	}

	if label.Vendor == "" {
		label.Vendor = HeuristicVendor(description)
	}

	return label
}

var vendorBeforeParen = regexp.MustCompile(`^([^(]+)\(`)

// HeuristicVendor extracts a vendor name from a description without any
// model help: the text before a parenthesis if present ("Ray Tallant
// (plumbing)" -> "Ray Tallant"), otherwise the first few words.
func HeuristicVendor(description string) string {
	description = strings.TrimSpace(description)
	if description == "" {
		return ""
	}

	if m := vendorBeforeParen.FindStringSubmatch(description); m != nil {
		return strings.TrimSpace(m[1])
	}

	words := strings.Fields(description)
	if len(words) > 3 {
		words = words[:3]
	}
	return strings.Join(words, " ")
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
