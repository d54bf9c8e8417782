// Package core provides the banking domain types and money handling
// shared by the storage and reporting layers.
//
// Monetary amounts are held as integer cents; calculations never go
// through floating point except at the display boundary.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseDecimalToCents converts a decimal amount string to cents with
// half-up rounding on the third decimal place.
//
// It accepts both dot (12.34) and comma (12,34) separators. Transaction
// amounts are unsigned by schema (the sign lives in the transaction
// type), so explicit signs are rejected. Zero is a valid amount.
//
// Examples:
//
//	ParseDecimalToCents("312.70") -> 31270, nil
//	ParseDecimalToCents("0")      -> 0, nil
//	ParseDecimalToCents("12.346") -> 1235, nil (rounds up)
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrNegativeAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrNegativeAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrNegativeAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrNegativeAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrNegativeAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrNegativeAmount
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrNegativeAmount
	}
	// Take first two fractional digits; then half-up rounding on third
	var fracCents int64
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracCents = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracCents += d2
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	return iv*100 + fracCents, nil
}

// Amount returns the value in currency units as a float64 for display
// purposes. Use cents for calculations to avoid floating-point drift.
func (m Money) Amount() float64 {
	return float64(m.Cents) / 100.0
}
