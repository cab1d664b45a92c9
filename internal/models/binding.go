package models

// CanonicalField identifies a field of the canonical transaction schema that
// source columns are bound against.
type CanonicalField string

const (
	FieldDate        CanonicalField = "date"
	FieldAmount      CanonicalField = "amount"
	FieldDescription CanonicalField = "description"
	FieldVendorHint  CanonicalField = "vendor-hint"
	FieldFundingHint CanonicalField = "funding-hint"
)

// CanonicalFields lists every canonical field in schema order.
var CanonicalFields = []CanonicalField{
	FieldDate,
	FieldAmount,
	FieldDescription,
	FieldVendorHint,
	FieldFundingHint,
}

// FieldBinding maps a canonical schema field to one source field, with a
// binding confidence in [0,1]. Multiple candidates may exist per canonical
// field; exactly one is marked active before categorization proceeds.
// Bindings are immutable once the normalizer has produced them.
type FieldBinding struct {
	Canonical   CanonicalField
	SourceName  string
	SourceIndex int
	Value       string
	Confidence  float64
	Active      bool
}

// BindingSet is the set of binding candidates proposed for one raw record.
type BindingSet []FieldBinding

// Active returns the active binding for the given canonical field, if any.
func (bs BindingSet) Active(field CanonicalField) (FieldBinding, bool) {
	for _, b := range bs {
		if b.Canonical == field && b.Active {
			return b, true
		}
	}
	return FieldBinding{}, false
}

// Candidates returns every candidate binding for the given canonical field in
// proposal order.
func (bs BindingSet) Candidates(field CanonicalField) []FieldBinding {
	var out []FieldBinding
	for _, b := range bs {
		if b.Canonical == field {
			out = append(out, b)
		}
	}
	return out
}
