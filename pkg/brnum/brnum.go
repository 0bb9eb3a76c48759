// Package brnum converts between pt-BR formatted numeric strings and float64
// values: "." groups thousands and "," marks the decimal place.
package brnum

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const currencyPrefix = "R$ "

// replacer drops thousands separators and normalizes the decimal comma.
var replacer = strings.NewReplacer(".", "", ",", ".")

// printer renders numbers with pt-BR separators. Safe for concurrent use.
var printer = message.NewPrinter(language.BrazilianPortuguese)

// ParseNumber converts a pt-BR formatted numeric string into a float64.
// Blank or malformed input yields 0. Callers cannot distinguish an explicit
// zero from malformed input; use ParseNumberStrict when that matters.
func ParseNumber(raw string) float64 {
	value, _ := ParseNumberStrict(raw)
	return value
}

// ParseNumberStrict converts a pt-BR formatted numeric string into a float64
// and reports whether the input was a well-formed non-empty number.
func ParseNumberStrict(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(replacer.Replace(s), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// FormatCurrency renders a value as Brazilian Real, e.g. "R$ 1.234,50".
// Non-finite values render as the zero amount.
func FormatCurrency(value float64) string {
	return currencyPrefix + FormatNumber(value)
}

// FormatNumber renders a value with two decimals and pt-BR separators,
// e.g. "1.234,50". Non-finite values render as "0,00".
func FormatNumber(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		value = 0
	}
	return printer.Sprintf("%.2f", value)
}

// FormatPercent renders a percentage with two decimals and pt-BR separators,
// e.g. "4,00%".
func FormatPercent(value float64) string {
	return FormatNumber(value) + "%"
}
