package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PocketBalance is a derived pocket and its folded balance.
type PocketBalance struct {
	Name    string
	Balance decimal.Decimal
}

// FilterByPocket keeps transactions whose pocket matches name case-insensitively.
func FilterByPocket(txs []Transaction, name string) []Transaction {
	var out []Transaction
	for _, t := range txs {
		if SamePocket(t.PocketName(), name) {
			out = append(out, t)
		}
	}
	return out
}

// FilterByDateRange keeps transactions dated within [start, end], both days
// inclusive. Rows whose date does not parse are dropped.
func FilterByDateRange(txs []Transaction, start, end Date) []Transaction {
	var out []Transaction
	for _, t := range txs {
		d, ok := t.Day()
		if !ok {
			continue
		}
		if d.Before(start.Time) || d.After(end.Time) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// PocketTransactionsInRange keeps one pocket's transactions dated within
// [start, end], both days inclusive.
func PocketTransactionsInRange(txs []Transaction, name string, start, end Date) []Transaction {
	return FilterByPocket(FilterByDateRange(txs, start, end), name)
}

func FilterByType(txs []Transaction, typ TxType) []Transaction {
	var out []Transaction
	for _, t := range txs {
		if t.Type == typ {
			out = append(out, t)
		}
	}
	return out
}

// FilterByCategory keeps transactions whose category contains needle, ignoring case.
func FilterByCategory(txs []Transaction, needle string) []Transaction {
	needle = strings.ToLower(strings.TrimSpace(needle))
	var out []Transaction
	for _, t := range txs {
		if strings.Contains(strings.ToLower(t.CategoryName()), needle) {
			out = append(out, t)
		}
	}
	return out
}

// BalanceOf folds income minus expense.
func BalanceOf(txs []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		total = total.Add(t.Signed())
	}
	return total
}

// PocketBalanceOf is BalanceOf restricted to one pocket.
func PocketBalanceOf(txs []Transaction, name string) decimal.Decimal {
	return BalanceOf(FilterByPocket(txs, name))
}

// AllPocketBalances groups by pocket in order of first appearance. The first
// spelling seen names the group.
func AllPocketBalances(txs []Transaction) []PocketBalance {
	index := make(map[string]int)
	var out []PocketBalance
	for _, t := range txs {
		name := t.PocketName()
		key := strings.ToLower(name)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, PocketBalance{Name: name, Balance: decimal.Zero})
		}
		out[i].Balance = out[i].Balance.Add(t.Signed())
	}
	return out
}

// GroupByCategory sums amounts per category in order of first appearance.
func GroupByCategory(txs []Transaction) []CategoryAmount {
	index := make(map[string]int)
	var out []CategoryAmount
	for _, t := range txs {
		name := t.CategoryName()
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, CategoryAmount{Name: name, Amount: decimal.Zero})
		}
		out[i].Amount = out[i].Amount.Add(t.Amount)
	}
	return out
}

// RecentForPocket returns up to limit of the pocket's latest transactions,
// most recent first. Ledger order is taken as chronological.
func RecentForPocket(txs []Transaction, name string, limit int) []Transaction {
	own := FilterByPocket(txs, name)
	if limit < 0 {
		limit = 0
	}
	if len(own) > limit {
		own = own[len(own)-limit:]
	}
	out := make([]Transaction, 0, len(own))
	for i := len(own) - 1; i >= 0; i-- {
		out = append(out, own[i])
	}
	return out
}

// TotalsByTypeAndPeriod sums the amounts of one type inside [start, end].
func TotalsByTypeAndPeriod(txs []Transaction, typ TxType, start, end Date) decimal.Decimal {
	total := decimal.Zero
	for _, t := range FilterByType(FilterByDateRange(txs, start, end), typ) {
		total = total.Add(t.Amount)
	}
	return total
}
