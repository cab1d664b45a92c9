// Package models provides the data structures used throughout the application.
package models

import "strings"

// SourceKind tags where a raw record came from. It controls how the schema
// normalizer treats the record.
type SourceKind string

const (
	SourceSpreadsheet SourceKind = "spreadsheet-row"
	SourceVoice       SourceKind = "voice-transcript"
	SourceReceipt     SourceKind = "receipt-extract"
)

// SourceField is one named value of a raw record. Names come straight from
// the input (spreadsheet headers) and may be blank or duplicated.
type SourceField struct {
	Name  string
	Value string
}

// RawRecord is one input unit before normalization: an ordered list of source
// fields plus the kind of source it was taken from. RawRecords are ephemeral
// and discarded after normalization.
type RawRecord struct {
	Fields []SourceField
	Kind   SourceKind
}

// FreeText joins all field values into a single description string. Used for
// voice and receipt sources where the whole record is one utterance.
func (r RawRecord) FreeText() string {
	parts := make([]string, 0, len(r.Fields))
	for _, f := range r.Fields {
		if v := strings.TrimSpace(f.Value); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

// NewTable builds spreadsheet RawRecords from a header row and data rows,
// preserving column order and duplicate headers. Rows shorter than the header
// are padded with empty values.
func NewTable(headers []string, rows [][]string, kind SourceKind) []RawRecord {
	records := make([]RawRecord, 0, len(rows))
	for _, row := range rows {
		fields := make([]SourceField, len(headers))
		for i, h := range headers {
			value := ""
			if i < len(row) {
				value = row[i]
			}
			fields[i] = SourceField{Name: h, Value: value}
		}
		records = append(records, RawRecord{Fields: fields, Kind: kind})
	}
	return records
}

// NewFreeTextRecord wraps a single free-form utterance (voice transcript or
// OCR receipt text) as a RawRecord.
func NewFreeTextRecord(text string, kind SourceKind) RawRecord {
	return RawRecord{
		Fields: []SourceField{{Name: "text", Value: text}},
		Kind:   kind,
	}
}
