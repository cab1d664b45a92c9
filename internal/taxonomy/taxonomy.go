// Package taxonomy holds the fixed set of 26 rehab expense categories. The
// set is immutable after process start; labels returned by the labeling
// adapter that are not members are coerced to Uncategorized.
package taxonomy

import "strings"

// The 26 expense categories, in presentation order.
const (
	Acquisition          = "Acquisition"
	ClosingCosts         = "Closing Costs"
	Demo                 = "Demo"
	Cleanup              = "Cleanup"
	SiteWork             = "Site Work"
	PermitsInspections   = "Permits & Inspections"
	PlansEngineering     = "Plans & Engineering"
	Foundation           = "Foundation"
	Concrete             = "Concrete"
	Framing              = "Framing"
	Plumbing             = "Plumbing"
	Electrical           = "Electrical"
	HVAC                 = "HVAC"
	Roofing              = "Roofing"
	Siding               = "Siding"
	WindowsDoors         = "Windows & Doors"
	Drywall              = "Drywall"
	Painting             = "Painting"
	Flooring             = "Flooring"
	CabinetsCountertops  = "Cabinets & Countertops"
	Appliances           = "Appliances"
	Landscaping          = "Landscaping"
	Utilities            = "Utilities"
	Materials            = "Materials"
	ProfessionalServices = "Professional Services"
	Other                = "Other"
)

// Uncategorized is the reserved label for records the engine could not place
// in the taxonomy. It is not one of the 26 categories.
const Uncategorized = "Uncategorized"

// CoercedConfidenceCap bounds the confidence of any record whose category had
// to be coerced into the taxonomy, reflecting distrust of an out-of-taxonomy
// answer.
const CoercedConfidenceCap = 0.5

var all = []string{
	Acquisition, ClosingCosts, Demo, Cleanup, SiteWork,
	PermitsInspections, PlansEngineering, Foundation, Concrete, Framing,
	Plumbing, Electrical, HVAC, Roofing, Siding,
	WindowsDoors, Drywall, Painting, Flooring, CabinetsCountertops,
	Appliances, Landscaping, Utilities, Materials, ProfessionalServices,
	Other,
}

// aliases tolerates common alternative spellings seen in model output and
// legacy spreadsheets.
var aliases = map[string]string{
	"demolition":            Demo,
	"permits":               PermitsInspections,
	"inspections":           PermitsInspections,
	"plans":                 PlansEngineering,
	"engineering":           PlansEngineering,
	"windows and doors":     WindowsDoors,
	"cabinets":              CabinetsCountertops,
	"countertops":           CabinetsCountertops,
	"closing":               ClosingCosts,
	"professional services": ProfessionalServices,
}

var byKey = func() map[string]string {
	m := make(map[string]string, len(all)+len(aliases))
	for _, c := range all {
		m[key(c)] = c
	}
	for a, c := range aliases {
		m[key(a)] = c
	}
	return m
}()

func key(label string) string {
	k := strings.ToLower(strings.TrimSpace(label))
	k = strings.ReplaceAll(k, " and ", " & ")
	return strings.Join(strings.Fields(k), " ")
}

// All returns the ordered sequence of the 26 category labels. Callers must
// not mutate the returned slice.
func All() []string {
	return all
}

// IsValid reports whether label is exactly one of the 26 categories.
func IsValid(label string) bool {
	for _, c := range all {
		if c == label {
			return true
		}
	}
	return false
}

// Normalize resolves a label case-insensitively, tolerating extra whitespace
// and known aliases. The second return is false when the label is not in the
// taxonomy.
func Normalize(label string) (string, bool) {
	c, ok := byKey[key(label)]
	return c, ok
}

// Coerce maps an arbitrary label onto the taxonomy. Out-of-taxonomy labels
// become Uncategorized and the second return reports that a coercion
// happened, so the caller can cap confidence and log a data-quality signal.
func Coerce(label string) (string, bool) {
	if c, ok := Normalize(label); ok {
		return c, false
	}
	return Uncategorized, true
}
