package labeling

import (
	"context"
	"strings"

	"github.com/rgriggs0072/fliptrack-ai/internal/models"
	"github.com/rgriggs0072/fliptrack-ai/internal/taxonomy"
	"github.com/rgriggs0072/fliptrack-ai/internal/textutils"
)

// keywordRule binds trigger substrings to a category. Rules are ordered from
// most specific to most general; the first hit wins.
type keywordRule struct {
	keywords []string
	category string
}

// keywordRules are the built-in trade and merchant patterns for rehab
// expenses.
var keywordRules = []keywordRule{
	{[]string{"DOWN PAYMENT", "EARNEST", "PURCHASE"}, taxonomy.Acquisition},
	{[]string{"TITLE", "SURVEY", "ESCROW", "CLOSING"}, taxonomy.ClosingCosts},
	{[]string{"DEMO", "TEARDOWN", "TEAR DOWN"}, taxonomy.Demo},
	{[]string{"DEBRIS", "CLEANUP", "CLEAN UP", "HAUL", "MOW"}, taxonomy.Cleanup},
	{[]string{"GRADING", "EXCAVAT", "FILL DIRT", "SILT FENCE", "EROSION"}, taxonomy.SiteWork},
	{[]string{"PERMIT", "INSPECTION"}, taxonomy.PermitsInspections},
	{[]string{"BLUEPRINT", "ARCHITECT", "ENGINEER", "PLANS"}, taxonomy.PlansEngineering},
	{[]string{"FOUNDATION", "PIER", "FOOTING"}, taxonomy.Foundation},
	{[]string{"CONCRETE", "FLATWORK", "SLAB", "DRIVEWAY"}, taxonomy.Concrete},
	{[]string{"FRAMING", "LUMBER", "STUD"}, taxonomy.Framing},
	{[]string{"PLUMB", "PIPE", "SEWER"}, taxonomy.Plumbing},
	{[]string{"ELECTRIC", "WIRING", "PANEL", "TEMP POLE"}, taxonomy.Electrical},
	{[]string{"HVAC", "FURNACE", "A/C", "AIR CONDITION", "DUCT"}, taxonomy.HVAC},
	{[]string{"ROOF", "SHINGLE", "GUTTER"}, taxonomy.Roofing},
	{[]string{"SIDING", "HARDIE"}, taxonomy.Siding},
	{[]string{"WINDOW", "DOOR"}, taxonomy.WindowsDoors},
	{[]string{"DRYWALL", "SHEETROCK", "TAPING", "MUDDING"}, taxonomy.Drywall},
	{[]string{"PAINT", "PRIMER"}, taxonomy.Painting},
	{[]string{"FLOORING", "TILE", "CARPET", "HARDWOOD"}, taxonomy.Flooring},
	{[]string{"CABINET", "COUNTERTOP", "VANITY"}, taxonomy.CabinetsCountertops},
	{[]string{"APPLIANCE", "FRIDGE", "REFRIGERATOR", "STOVE", "WASHER", "DRYER"}, taxonomy.Appliances},
	{[]string{"LANDSCAP", "SOD", "MULCH", "GRASS", "TREE"}, taxonomy.Landscaping},
	{[]string{"WATER BILL", "ELECTRIC BILL", "GAS BILL", "TXU", "UTILIT"}, taxonomy.Utilities},
	{[]string{"HOME DEPOT", "LOWE'S", "LOWES", "LUMBER YARD", "MATERIALS"}, taxonomy.Materials},
	{[]string{"ATTORNEY", "ACCOUNTANT", "APPRAISER", "CPA"}, taxonomy.ProfessionalServices},
}

// keywordConfidence is the fixed confidence of a keyword hit: better than a
// guess, worse than a model answer.
const keywordConfidence = 0.6

// fallbackConfidence scores the Other bucket when nothing matched.
const fallbackConfidence = 0.4

// KeywordClient is a deterministic, offline labeling adapter built on
// substring rules. It is the default when no AI capability is configured and
// never returns an error.
type KeywordClient struct{}

// NewKeywordClient creates a KeywordClient.
func NewKeywordClient() *KeywordClient {
	return &KeywordClient{}
}

// Name identifies this adapter for logging.
func (c *KeywordClient) Name() string {
	return "keyword"
}

// Classify matches the description against the built-in rules. Funding is
// inferred from explicit cash/financed wording; amounts are lifted from
// dollar figures in free text.
func (c *KeywordClient) Classify(ctx context.Context, description string, bindings models.BindingSet) (Result, error) {
	upper := strings.ToUpper(description)

	result := Result{
		Category:           taxonomy.Other,
		CategoryConfidence: fallbackConfidence,
	}
	for _, rule := range keywordRules {
		if containsAny(upper, rule.keywords) {
			result.Category = rule.category
			result.CategoryConfidence = keywordConfidence
			break
		}
	}

	if funding := textutils.ExtractFunding(description); funding != "" {
		result.Funding = funding
		result.FundingConfidence = 0.9
	}
	result.Amount = textutils.ExtractAmount(description)
	result.Date = textutils.ExtractDate(description)

	return result, nil
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
