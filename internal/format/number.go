// Package format renders the headline numbers shown on the dashboard.
package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	thousand = decimal.NewFromInt(1000)
	units    = []string{"", "mil"}
)

// Number scales value into units, thousands ("mil") or millions
// ("Milhões") and prints it with two decimals, e.g. Number(1234.5, "R$")
// is "R$ 1.23 mil".
func Number(value float64, prefix string) string {
	return Decimal(decimal.NewFromFloat(value), prefix)
}

func Decimal(value decimal.Decimal, prefix string) string {
	for _, unit := range units {
		if value.LessThan(thousand) {
			return join(prefix, value.StringFixed(2), unit)
		}
		value = value.Div(thousand)
	}
	return join(prefix, value.StringFixed(2), "Milhões")
}

func join(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

// Currency is Number with the Brazilian real prefix.
func Currency(value float64) string {
	return Number(value, "R$")
}
