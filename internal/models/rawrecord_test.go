package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTablePadsShortRows(t *testing.T) {
	headers := []string{"Date", "Desc", "Amt"}
	rows := [][]string{
		{"2024-05-01", "Lumber", "120"},
		{"2024-05-02", "Permit"},
	}

	records := NewTable(headers, rows, SourceSpreadsheet)
	require.Len(t, records, 2)

	assert.Equal(t, SourceSpreadsheet, records[0].Kind)
	require.Len(t, records[1].Fields, 3)
	assert.Equal(t, "Amt", records[1].Fields[2].Name)
	assert.Equal(t, "", records[1].Fields[2].Value)
}

func TestFreeText(t *testing.T) {
	rec := RawRecord{
		Fields: []SourceField{
			{Name: "a", Value: "paid Ray"},
			{Name: "b", Value: "  "},
			{Name: "c", Value: "$450 cash"},
		},
		Kind: SourceVoice,
	}
	assert.Equal(t, "paid Ray $450 cash", rec.FreeText())
}

func TestBindingSetActive(t *testing.T) {
	bs := BindingSet{
		{Canonical: FieldAmount, SourceName: "Cost", Confidence: 1.0, Active: true},
		{Canonical: FieldAmount, SourceName: "Total Cost", Confidence: 1.0},
	}

	active, ok := bs.Active(FieldAmount)
	assert.True(t, ok)
	assert.Equal(t, "Cost", active.SourceName)

	_, ok = bs.Active(FieldDescription)
	assert.False(t, ok)

	assert.Len(t, bs.Candidates(FieldAmount), 2)
}
