// Package core provides money parsing and handling utilities.
//
// Amounts are whole Rupiah held in int64; there is no subunit.
package core

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var idPrinter = message.NewPrinter(language.Indonesian)

// ParseAmount reads the leading integer of s, the way a form field is read.
//
// Surrounding spaces and an optional "Rp" prefix are ignored. Parsing stops at
// the first non-digit, so "1500abc" is 1500. Anything without a leading digit,
// and any negative value, yields 0.
//
// Examples:
//   ParseAmount("150000")    -> 150000
//   ParseAmount("Rp 25000")  -> 25000
//   ParseAmount("abc")       -> 0
//   ParseAmount("-500")      -> 0
func ParseAmount(s string) int64 {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimPrefix(s, "Rp"))
	s = strings.TrimPrefix(s, "+")

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	v, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// FormatNumber groups digits the Indonesian way ("2.125.000").
func FormatNumber(v int64) string {
	return idPrinter.Sprintf("%d", v)
}

// FormatRupiah formats an amount as "Rp 2.125.000".
func FormatRupiah(v int64) string {
	return "Rp " + FormatNumber(v)
}
