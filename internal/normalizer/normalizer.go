// Package normalizer converts raw spreadsheet rows and free-form records into
// candidate bindings against the canonical transaction schema. Column
// discovery is deterministic: a static synonym table plus string-similarity
// ranking, so identical input always yields identical bindings.
package normalizer

import (
	"strings"

	"github.com/rgriggs0072/fliptrack-ai/internal/logging"
	"github.com/rgriggs0072/fliptrack-ai/internal/models"
)

// SynonymTable maps each canonical field to the column-name synonyms that
// bind to it. The table is data, extensible without code changes.
type SynonymTable map[models.CanonicalField][]string

// DefaultSynonyms returns the built-in synonym table, derived from the column
// names seen in real rehab expense spreadsheets.
func DefaultSynonyms() SynonymTable {
	return SynonymTable{
		models.FieldDate: {
			"date", "when", "day", "paid on", "expense date",
		},
		models.FieldAmount: {
			"amount", "amt", "cost", "price", "total", "total cost",
			"$", "paid", "spent",
		},
		models.FieldDescription: {
			"description", "desc", "detail", "details", "note", "notes",
			"memo", "what", "item", "expense",
		},
		models.FieldVendorHint: {
			"vendor", "payee", "paid to", "who", "supplier", "company",
		},
		models.FieldFundingHint: {
			"ci/m", "ci m", "cim", "cash/financed", "funding",
			"investment type", "type",
		},
	}
}

// Normalizer proposes FieldBinding candidates for raw records. It is a pure
// transformation with no side effects.
type Normalizer struct {
	table  SynonymTable
	logger logging.Logger
}

// New creates a Normalizer. A nil table falls back to the defaults.
func New(table SynonymTable, logger logging.Logger) *Normalizer {
	if table == nil {
		table = DefaultSynonyms()
	}
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Normalizer{table: table, logger: logger}
}

// Normalize produces the binding candidates for one raw record.
//
// Spreadsheet rows are matched column-by-column against the synonym table;
// the highest-scoring candidate per canonical field is marked active, with
// the left-most column winning ties so results are reproducible across runs.
// Voice and receipt records bind their whole text to the description field at
// confidence 1.0, deferring extraction to the labeling adapter.
//
// A spreadsheet row with no plausible amount and no plausible description
// yields an empty set, signalling "unnormalizable" to the orchestrator.
func (n *Normalizer) Normalize(rec models.RawRecord) models.BindingSet {
	if rec.Kind != models.SourceSpreadsheet {
		return models.BindingSet{{
			Canonical:  models.FieldDescription,
			SourceName: "text",
			Value:      rec.FreeText(),
			Confidence: 1.0,
			Active:     true,
		}}
	}

	var bindings models.BindingSet
	for _, field := range models.CanonicalFields {
		bindings = append(bindings, n.bindField(field, rec)...)
	}

	if !hasCandidate(bindings, models.FieldAmount) && !hasCandidate(bindings, models.FieldDescription) {
		n.logger.Debug("Row has no amount or description column, unnormalizable")
		return nil
	}
	return bindings
}

// bindField collects every column matching the field's synonyms and marks the
// best-scoring one provisional-active.
func (n *Normalizer) bindField(field models.CanonicalField, rec models.RawRecord) []models.FieldBinding {
	synonyms := n.table[field]
	if len(synonyms) == 0 {
		return nil
	}

	var candidates []models.FieldBinding
	best := -1
	for i, sf := range rec.Fields {
		score := matchScore(sf.Name, synonyms)
		if score <= 0 {
			continue
		}
		candidates = append(candidates, models.FieldBinding{
			Canonical:   field,
			SourceName:  sf.Name,
			SourceIndex: i,
			Value:       sf.Value,
			Confidence:  score,
		})
		// Strictly-greater comparison keeps the left-most column on ties.
		if best < 0 || score > candidates[best].Confidence {
			best = len(candidates) - 1
		}
	}
	if best >= 0 {
		candidates[best].Active = true
	}
	return candidates
}

// matchScore rates how well a column header matches a synonym set. An exact
// (case-insensitive) match scores 1.0; a substring match scores proportional
// to how much of the header the synonym covers.
func matchScore(header string, synonyms []string) float64 {
	h := strings.ToLower(strings.TrimSpace(header))
	if h == "" {
		return 0
	}

	score := 0.0
	for _, syn := range synonyms {
		s := strings.ToLower(strings.TrimSpace(syn))
		if s == "" {
			continue
		}
		if h == s {
			return 1.0
		}
		if strings.Contains(h, s) {
			if ratio := float64(len(s)) / float64(len(h)); ratio > score {
				score = ratio
			}
		}
	}
	return score
}

func hasCandidate(bindings models.BindingSet, field models.CanonicalField) bool {
	for _, b := range bindings {
		if b.Canonical == field {
			return true
		}
	}
	return false
}
