// Package dateutils provides date parsing for the loosely formatted dates
// found in expense spreadsheets.
package dateutils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Common date layout constants.
const (
	LayoutISO  = "2006-01-02"
	LayoutUS   = "01/02/2006"
	LayoutFull = "2006-01-02 15:04:05"
)

// CommonFormats is the list of layouts tried when parsing, ordered by how
// often they appear in the source spreadsheets (US-first).
var CommonFormats = []string{
	LayoutISO,
	LayoutUS,
	"1/2/2006",
	"1/2/06",
	"01-02-2006",
	LayoutFull,
	"2006-01-02T15:04:05Z",
	"Jan 2, 2006",
	"January 2, 2006",
	"2-Jan-2006",
	"2006/01/02",
}

// excelEpoch is day zero of the 1900 date system used by xlsx files.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// ParseDate parses a date cell using multiple common layouts. Bare numbers
// are interpreted as Excel serial dates, which is how unformatted xlsx date
// cells surface.
func ParseDate(dateStr string) (time.Time, error) {
	cleaned := strings.TrimSpace(dateStr)
	if cleaned == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	for _, format := range CommonFormats {
		if t, err := time.Parse(format, cleaned); err == nil {
			return t, nil
		}
	}

	// Excel serial date (e.g. 45352 for 2024-03-01). Plausible serials fall
	// between 1950 and 2100.
	if serial, err := strconv.ParseFloat(cleaned, 64); err == nil {
		if serial > 18264 && serial < 73050 {
			return excelEpoch.Add(time.Duration(serial * 24 * float64(time.Hour))), nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}

// ToISODate formats a time as YYYY-MM-DD.
func ToISODate(date time.Time) string {
	return date.Format(LayoutISO)
}
