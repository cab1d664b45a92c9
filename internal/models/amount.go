package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a raw amount cell to a decimal. It strips currency
// symbols, thousand separators and whitespace before parsing, so values like
// "$4,500.00" or "1'200" parse cleanly. Parenthesized amounts are treated as
// negative, as accounting spreadsheets write them.
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	amount := strings.TrimSpace(amountStr)
	if amount == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	negative := false
	if strings.HasPrefix(amount, "(") && strings.HasSuffix(amount, ")") {
		negative = true
		amount = amount[1 : len(amount)-1]
	}

	replacer := strings.NewReplacer(
		"$", "",
		"USD", "",
		",", "",
		"'", "",
		" ", "",
	)
	amount = replacer.Replace(amount)

	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unparseable amount %q: %w", amountStr, err)
	}
	if negative {
		dec = dec.Neg()
	}
	return dec, nil
}
