package pricing

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Display prices in the catalog are strings like "63r", "+15r", "+30%" or
// prose like "基础价x2". Pricing only ever reads the numeric prefix; a string
// with no numeric prefix is "complex" and contributes zero.

// cleanPrice strips the currency decorations: r, R, +, ¥ and spaces.
func cleanPrice(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case 'r', 'R', '+', '¥', ' ':
			return -1
		}
		return r
	}, s)
}

// numericPrefix parses the leading number of a cleaned price string;
// trailing junk like "%" is ignored.
func numericPrefix(s string) (float64, bool) {
	end := 0
	seenDot := false
	for end < len(s) {
		c := s[end]
		if c >= '0' && c <= '9' {
			end++
			continue
		}
		if c == '.' && !seenDot {
			seenDot = true
			end++
			continue
		}
		if c == '-' && end == 0 {
			end++
			continue
		}
		break
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParsePrice returns the numeric value of a display price, or zero when the
// string carries no number. It never fails: a malformed price degrades to a
// zero contribution and is surfaced via IsComplexPrice instead.
func ParsePrice(priceStr string) decimal.Decimal {
	if priceStr == "" {
		return decimal.Zero
	}
	v, ok := numericPrefix(cleanPrice(priceStr))
	if !ok {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

// IsComplexPrice reports whether a display price has no numeric value
// (e.g. "基础价x2"). Such items make the whole estimate non-final.
func IsComplexPrice(priceStr string) bool {
	if priceStr == "" {
		return false
	}
	_, ok := numericPrefix(cleanPrice(priceStr))
	return !ok
}
