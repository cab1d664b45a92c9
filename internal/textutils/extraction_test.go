package textutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractAmount(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"paid $450 to Ray for plumbing", "450"},
		{"$ 1,250.50 for the roof", "1,250.50"},
		{"spent 300 bucks on paint", "300"},
		{"about 1,200 dollars for flooring", "1,200"},
		{"no figure in here", ""},
		{"call 555-1234 tomorrow", ""},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractAmount(tc.text))
		})
	}
}

func TestExtractFunding(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"paid cash for the shingles", "CI"},
		{"this one was FINANCED", "MI"},
		{"will finance the HVAC unit", "MI"},
		{"paid Ray for plumbing", ""},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractFunding(tc.text))
		})
	}
}

func TestExtractDate(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"invoice dated 2024-05-01 from Ray", "2024-05-01"},
		{"paid on 5/1/2024 in cash", "5/1/2024"},
		{"receipt from 5/1/24", "5/1/24"},
		{"sometime last week", ""},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractDate(tc.text))
		})
	}
}
