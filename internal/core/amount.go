// Package core holds the ledger model and the pure functions over it.
//
// This file parses Indonesian shorthand amounts such as "10rb", "1,5jt" and
// "100k" into exact decimal values.
package core

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

type magnitude struct {
	markers []string
	factor  int64
}

// Order matters: "ribu" is stripped before "rb" and "juta" before "jt".
var magnitudes = []magnitude{
	{markers: []string{"ribu", "rb"}, factor: 1_000},
	{markers: []string{"k"}, factor: 1_000},
	{markers: []string{"juta", "jt"}, factor: 1_000_000},
}

var (
	plainNumber   = regexp.MustCompile(`^\d+(\.\d+)?$`)
	groupedNumber = regexp.MustCompile(`^\d{1,3}(\.\d{3})+(,\d+)?$`)
)

// ParseAmount converts shorthand like "10rb", "100k", "1,5jt" or "50000" to a
// decimal value.
//
// A comma is the decimal separator. With a magnitude marker a dot is one too
// ("1.5jt", "1.500rb" = 1500). Without a marker, dots in fully grouped form
// ("1.500.000") are thousands separators. Text carrying markers of more than
// one magnitude ("1rbk", "2jt500rb") is rejected rather than guessed at, as is
// anything negative.
func ParseAmount(text string) (decimal.Decimal, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}

	factor := int64(1)
	kinds := 0
	for _, m := range magnitudes {
		hit := false
		for _, tok := range m.markers {
			if strings.Contains(s, tok) {
				s = strings.ReplaceAll(s, tok, "")
				hit = true
			}
		}
		if hit {
			kinds++
			factor = m.factor
		}
	}
	if kinds > 1 {
		return decimal.Zero, fmt.Errorf("%w: ambiguous magnitude in %q", ErrInvalidAmount, text)
	}

	s = normalizeNumber(strings.TrimSpace(s), kinds == 0)
	if !plainNumber.MatchString(s) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, text)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, text)
	}
	return d.Mul(decimal.NewFromInt(factor)), nil
}

func normalizeNumber(s string, grouped bool) string {
	if grouped && groupedNumber.MatchString(s) {
		s = strings.ReplaceAll(s, ".", "")
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	return s
}
