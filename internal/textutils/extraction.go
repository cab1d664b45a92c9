// Package textutils provides text extraction utilities for free-form
// expense descriptions.
package textutils

import (
	"regexp"
	"strings"
)

var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$\s*([\d,]+(?:\.\d{1,2})?)`),
	regexp.MustCompile(`\b([\d,]+(?:\.\d{1,2})?)\s*(?:dollars|bucks)\b`),
}

// ExtractAmount lifts a dollar figure out of free text. It returns the bare
// numeric string, or "" when no figure is present.
func ExtractAmount(text string) string {
	for _, pattern := range amountPatterns {
		matches := pattern.FindStringSubmatch(text)
		if len(matches) > 1 {
			return matches[1]
		}
	}
	return ""
}

// ExtractFunding detects explicit cash/financed wording. It returns the
// funding code ("CI" or "MI") or "" when the text says nothing about funding.
func ExtractFunding(text string) string {
	upper := strings.ToUpper(text)
	switch {
	case strings.Contains(upper, "CASH"):
		return "CI"
	case strings.Contains(upper, "FINANCED") || strings.Contains(upper, "FINANCE"):
		return "MI"
	}
	return ""
}

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`),
	regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{4})\b`),
	regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{2})\b`),
}

// ExtractDate lifts a literal date out of free text. It returns the matched
// date string, or "" when none is present.
func ExtractDate(text string) string {
	for _, pattern := range datePatterns {
		matches := pattern.FindStringSubmatch(text)
		if len(matches) > 1 {
			return matches[1]
		}
	}
	return ""
}
