package models

import "strings"

// FundingClass is the cash-vs-financed classification of an expense. The
// source spreadsheets use the shorthand CI (cash investment) and MI
// (financed/mortgage investment).
type FundingClass string

const (
	FundingCash     FundingClass = "Cash"
	FundingFinanced FundingClass = "Financed"
	FundingUnknown  FundingClass = "Unknown"
)

// ParseFunding normalizes the many spellings seen in spreadsheet columns and
// model output into a FundingClass. Unrecognized values map to Unknown.
func ParseFunding(s string) FundingClass {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CI", "C", "CASH":
		return FundingCash
	case "MI", "M", "FINANCED", "FINANCE", "MORTGAGE":
		return FundingFinanced
	default:
		return FundingUnknown
	}
}

// Code returns the CI/MI shorthand used in exports, or empty for Unknown.
func (f FundingClass) Code() string {
	switch f {
	case FundingCash:
		return "CI"
	case FundingFinanced:
		return "MI"
	default:
		return ""
	}
}
