// Package rules is a deterministic oracle backend driven by keyword tables.
package rules

import (
	"context"
	"strings"
	"time"
	"unicode"

	"dompet/internal/core"
	"dompet/internal/oracle"
)

type keywordSet struct {
	category string
	words    []string
}

// Tables are scanned in order; the first category with a hit wins.
var (
	expenseKeywords = []keywordSet{
		{"Makanan & Minuman", []string{"makan", "minum", "kopi", "nasi", "bakso", "sate", "mie", "resto", "warung", "jajan", "snack", "gofood", "grabfood", "sarapan", "lunch", "dinner", "cafe"}},
		{"Transportasi", []string{"bensin", "bbm", "grab", "gojek", "ojek", "ojol", "taksi", "taxi", "parkir", "tol", "kereta", "krl", "mrt", "busway", "bus", "pesawat", "angkot"}},
		{"Tagihan", []string{"listrik", "pln", "pdam", "internet", "wifi", "pulsa", "kuota", "tagihan", "cicilan", "kos", "kost", "sewa", "bpjs", "asuransi"}},
		{"Kesehatan", []string{"obat", "dokter", "apotek", "rumah sakit", "klinik", "vitamin", "gigi"}},
		{"Hiburan", []string{"nonton", "bioskop", "film", "game", "netflix", "spotify", "liburan", "konser", "karaoke"}},
		{"Pendidikan", []string{"buku", "kursus", "sekolah", "kuliah", "spp", "les", "seminar"}},
		{"Investasi", []string{"saham", "reksadana", "emas", "crypto", "kripto", "deposito", "investasi"}},
		{"Belanja", []string{"belanja", "baju", "sepatu", "celana", "shopee", "tokopedia", "lazada", "supermarket", "indomaret", "alfamart", "pasar"}},
	}
	incomeKeywords = []keywordSet{
		{"Gaji", []string{"gaji", "salary", "payroll", "thr"}},
		{"Freelance", []string{"freelance", "project", "proyek", "honor", "fee"}},
		{"Bisnis", []string{"jualan", "dagang", "bisnis", "usaha", "omzet", "penjualan"}},
		{"Investasi", []string{"dividen", "bunga", "saham", "reksadana", "profit", "investasi"}},
		{"Bonus", []string{"bonus", "insentif", "komisi"}},
		{"Hadiah", []string{"hadiah", "kado", "angpao", "angpau", "gift"}},
	}
)

// Backend classifies with keyword tables and resolves periods against a clock.
type Backend struct {
	now func() time.Time
}

var _ oracle.Backend = (*Backend)(nil)

// New returns a backend reading the time from now. A nil now uses time.Now.
func New(now func() time.Time) *Backend {
	if now == nil {
		now = time.Now
	}
	return &Backend{now: now}
}

func (b *Backend) Categorize(_ context.Context, description string, typ core.TxType) (string, error) {
	table := expenseKeywords
	if typ == core.Income {
		table = incomeKeywords
	}
	lower := strings.ToLower(description)
	tokens := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, set := range table {
		for _, w := range set.words {
			if matches(lower, tokens, w) {
				return set.category, nil
			}
		}
	}
	return core.DefaultCategory, nil
}

// Phrases match as substrings; single words match a token prefix so
// "makanan" hits "makan" but "repair" does not hit "air".
func matches(lower string, tokens []string, word string) bool {
	if strings.Contains(word, " ") {
		return strings.Contains(lower, word)
	}
	for _, t := range tokens {
		if strings.HasPrefix(t, word) {
			return true
		}
	}
	return false
}

func (b *Backend) InterpretQuery(_ context.Context, text string) (*core.QueryIntent, error) {
	label, start, end, ok := oracle.ResolvePeriod(text, b.now())
	if !ok {
		return nil, nil
	}
	lower := strings.ToLower(text)
	return &core.QueryIntent{
		Period:    label,
		StartDate: start.String(),
		EndDate:   end.String(),
		DataType:  dataType(lower),
		Intent:    intent(lower),
	}, nil
}

func dataType(lower string) string {
	expense := strings.Contains(lower, "pengeluaran")
	income := strings.Contains(lower, "pemasukan")
	switch {
	case expense && !income:
		return "expense"
	case income && !expense:
		return "income"
	}
	return "both"
}

func intent(lower string) string {
	switch {
	case strings.Contains(lower, "saldo"), strings.Contains(lower, "balance"):
		return "balance"
	case strings.Contains(lower, "berapa"), strings.Contains(lower, "total"), strings.Contains(lower, "jumlah"):
		return "total"
	}
	return "summary"
}
