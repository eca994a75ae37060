package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount decimal.Decimal
}

// RangeSummary is the aggregate behind a period report.
type RangeSummary struct {
	Income            decimal.Decimal
	Expense           decimal.Decimal
	ExpenseByCategory []CategoryAmount // descending by amount
	IncomeByCategory  []CategoryAmount // first appearance order
	Count             int
}

// Net is income minus expense.
func (s RangeSummary) Net() decimal.Decimal {
	return s.Income.Sub(s.Expense)
}

// Summarize aggregates an already range-filtered slice.
func Summarize(txs []Transaction) RangeSummary {
	income := FilterByType(txs, Income)
	expense := FilterByType(txs, Expense)

	s := RangeSummary{
		Income:            sumAmounts(income),
		Expense:           sumAmounts(expense),
		ExpenseByCategory: GroupByCategory(expense),
		IncomeByCategory:  GroupByCategory(income),
		Count:             len(txs),
	}
	SortByAmountDesc(s.ExpenseByCategory)
	return s
}

// SortByAmountDesc orders categories by amount, ties broken by name.
func SortByAmountDesc(cats []CategoryAmount) {
	sort.SliceStable(cats, func(i, j int) bool {
		if c := cats[i].Amount.Cmp(cats[j].Amount); c != 0 {
			return c > 0
		}
		return cats[i].Name < cats[j].Name
	})
}

func sumAmounts(txs []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		total = total.Add(t.Amount)
	}
	return total
}
