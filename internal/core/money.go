// Package core holds the domain types of the finance calendar plus the
// amount parsing and formatting helpers shared by every component.
//
// Amounts are plain float64 values. Display formatting is fixed at two
// fraction digits; internal sums carry ordinary floating-point error,
// which is an accepted tolerance at this domain's scale.
package core

import (
	"math"
	"strconv"
	"strings"
)

// ParseAmount converts user input into a positive amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Empty input, non-numeric input, non-finite values and values <= 0
// all yield ErrInvalidAmount.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// FormatAmount renders an amount with exactly two fraction digits.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
