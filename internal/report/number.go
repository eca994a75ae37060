// Package report renders ledger aggregates into chat replies.
//
// All output is deterministic: numbers use Indonesian grouping ("1.500.000",
// decimal comma, at most three fraction digits) regardless of host locale.
package report

import (
	"strings"

	"github.com/shopspring/decimal"
)

const maxFractionDigits = 3

// FormatNumber renders d with "." thousands separators and "," decimals.
func FormatNumber(d decimal.Decimal) string {
	r := d.Round(maxFractionDigits)
	if r.IsZero() {
		return "0"
	}

	abs := r.Abs()
	whole := abs.Truncate(0)
	frac := abs.Sub(whole)

	var b strings.Builder
	if r.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteString(group(whole.String()))
	if !frac.IsZero() {
		// frac.String() is "0.xyz" with trailing zeros trimmed
		b.WriteByte(',')
		b.WriteString(strings.TrimPrefix(frac.String(), "0."))
	}
	return b.String()
}

// Rupiah prefixes FormatNumber with the currency symbol.
func Rupiah(d decimal.Decimal) string {
	return "Rp " + FormatNumber(d)
}

func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
