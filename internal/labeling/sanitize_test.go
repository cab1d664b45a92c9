package labeling

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rgriggs0072/fliptrack-ai/internal/models"
	"github.com/rgriggs0072/fliptrack-ai/internal/taxonomy"
)

func TestSanitizeValidResult(t *testing.T) {
	label := Sanitize(Result{
		Category:           "Plumbing",
		CategoryConfidence: 0.9,
		Vendor:             "Ray Tallant",
		Funding:            "CI",
		FundingConfidence:  0.8,
	}, "Ray Tallant (plumbing)", nil)

	assert.Equal(t, taxonomy.Plumbing, label.Category)
	assert.Equal(t, 0.9, label.CategoryConfidence)
	assert.Equal(t, "Ray Tallant", label.Vendor)
	assert.Equal(t, models.FundingCash, label.Funding)
	assert.Equal(t, 0.8, label.FundingConfidence)
	assert.False(t, label.Coerced)
}

func TestSanitizeCoercesOutOfTaxonomy(t *testing.T) {
	label := Sanitize(Result{
		Category:           "Miscellaneous Fees",
		CategoryConfidence: 0.95,
	}, "misc", nil)

	assert.Equal(t, taxonomy.Uncategorized, label.Category)
	assert.True(t, label.Coerced)
	assert.LessOrEqual(t, label.CategoryConfidence, taxonomy.CoercedConfidenceCap)
}

func TestSanitizeEmptyCategoryScoresZero(t *testing.T) {
	label := Sanitize(Result{CategoryConfidence: 0.7}, "something", nil)

	assert.Equal(t, taxonomy.Uncategorized, label.Category)
	assert.Equal(t, 0.0, label.CategoryConfidence)
}

func TestSanitizeClampsConfidences(t *testing.T) {
	label := Sanitize(Result{
		Category:           "Roofing",
		CategoryConfidence: 1.7,
		Funding:            "MI",
		FundingConfidence:  -0.3,
	}, "roof", nil)

	assert.Equal(t, 1.0, label.CategoryConfidence)
	assert.Equal(t, 0.0, label.FundingConfidence)
}

func TestSanitizeUnknownFundingScoresZero(t *testing.T) {
	label := Sanitize(Result{
		Category:           "Roofing",
		CategoryConfidence: 0.9,
		Funding:            "maybe",
		FundingConfidence:  0.8,
	}, "roof", nil)

	assert.Equal(t, models.FundingUnknown, label.Funding)
	assert.Equal(t, 0.0, label.FundingConfidence)
}

func TestSanitizeFallsBackToHeuristicVendor(t *testing.T) {
	label := Sanitize(Result{
		Category:           "Plumbing",
		CategoryConfidence: 0.9,
	}, "Ray Tallant (plumbing repair)", nil)

	assert.Equal(t, "Ray Tallant", label.Vendor)
}

func TestHeuristicVendor(t *testing.T) {
	tests := []struct {
		description string
		expected    string
	}{
		{"Ray Tallant (plumbing)", "Ray Tallant"},
		{"The Title Company (survey)", "The Title Company"},
		{"Home Depot lumber run today", "Home Depot lumber"},
		{"Sod", "Sod"},
		{"", ""},
	}

	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			assert.Equal(t, tc.expected, HeuristicVendor(tc.description))
		})
	}
}

func TestConservativeDefault(t *testing.T) {
	label := ConservativeDefault()
	assert.Equal(t, taxonomy.Uncategorized, label.Category)
	assert.Equal(t, 0.0, label.CategoryConfidence)
	assert.Equal(t, models.FundingUnknown, label.Funding)
	assert.Equal(t, 0.0, label.FundingConfidence)
}
