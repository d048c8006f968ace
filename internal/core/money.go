// Package core provides the ledger records, amount parsing and the summary
// arithmetic shared by the client and the server.
//
// Amounts are whole yen held in int64. Input may use full-width digits and
// thousands separators, both of which are normalised before parsing.
package core

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// YenSuffix is appended to every formatted amount.
const YenSuffix = "円"

// NormalizeDigits narrows full-width characters (０-９, ，) and drops
// thousands separators.
func NormalizeDigits(s string) string {
	s = width.Narrow.String(s)
	return strings.ReplaceAll(s, ",", "")
}

// ParseYen converts a user-supplied amount to whole yen.
//
// It accepts ASCII or full-width digits, optional comma separators and an
// optional trailing 円. Signs, decimals and anything else are rejected.
//
// Examples:
//   ParseYen("300")    -> 300, nil
//   ParseYen("2,500円") -> 2500, nil
//   ParseYen("３００")   -> 300, nil
//   ParseYen("-1")     -> 0, ErrInvalidAmount
func ParseYen(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, YenSuffix)
	s = NormalizeDigits(strings.TrimSpace(s))
	if s == "" {
		return 0, ErrInvalidAmount
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// FormatYen renders an amount for display, e.g. "300 円" or "-1200 円".
func FormatYen(amount int64) string {
	return strconv.FormatInt(amount, 10) + " " + YenSuffix
}
