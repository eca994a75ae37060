package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"dompet/internal/core"
)

// TopExpenseCategories caps the expense breakdown in a range report.
const TopExpenseCategories = 5

// RecentTransactions is how many rows a pocket detail shows.
const RecentTransactions = 5

// RangeReport renders a period summary. s must be built from the same
// transactions the intent's range selected.
func RangeReport(intent core.QueryIntent, s core.RangeSummary) string {
	var b strings.Builder
	if s.Count == 0 {
		fmt.Fprintf(&b, "📊 Laporan %s\n\nTidak ada transaksi ditemukan untuk periode ini.", intent.Period)
		return b.String()
	}

	fmt.Fprintf(&b, "📊 Laporan %s\n", intent.Period)
	fmt.Fprintf(&b, "📅 Periode: %s - %s\n\n", intent.StartDate, intent.EndDate)

	net := s.Net()
	b.WriteString("💰 RINGKASAN:\n")
	fmt.Fprintf(&b, "📈 Total Pemasukan: %s\n", Rupiah(s.Income))
	fmt.Fprintf(&b, "📉 Total Pengeluaran: %s\n", Rupiah(s.Expense))
	fmt.Fprintf(&b, "💳 Saldo: %s %s\n", Rupiah(net), signMarker(net))

	if len(s.ExpenseByCategory) > 0 {
		b.WriteString("\n📉 TOP PENGELUARAN:\n")
		top := s.ExpenseByCategory
		if len(top) > TopExpenseCategories {
			top = top[:TopExpenseCategories]
		}
		for _, c := range top {
			fmt.Fprintf(&b, "• %s: %s\n", c.Name, Rupiah(c.Amount))
		}
	}

	if len(s.IncomeByCategory) > 0 {
		b.WriteString("\n📈 PEMASUKAN:\n")
		for _, c := range s.IncomeByCategory {
			fmt.Fprintf(&b, "• %s: %s\n", c.Name, Rupiah(c.Amount))
		}
	}

	fmt.Fprintf(&b, "\n📊 Total Transaksi: %d", s.Count)
	return b.String()
}

// PocketDetail renders one pocket with its latest transactions.
func PocketDetail(name string, balance decimal.Decimal, recent []core.Transaction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "👝 POCKET: %s\n", strings.ToUpper(name))
	fmt.Fprintf(&b, "💰 Saldo: %s\n", Rupiah(balance))

	if len(recent) > 0 {
		b.WriteString("\n📋 TRANSAKSI TERAKHIR:\n")
		for _, t := range recent {
			fmt.Fprintf(&b, "%s %s - %s (%s)\n", typeIcon(t.Type), t.Date, Rupiah(t.Amount), t.Description)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// AllPockets renders every pocket balance with a grand total.
func AllPockets(balances []core.PocketBalance) string {
	var b strings.Builder
	b.WriteString("👝 SALDO SEMUA POCKET:\n\n")

	total := decimal.Zero
	for _, p := range balances {
		fmt.Fprintf(&b, "💰 %s: %s\n", p.Name, Rupiah(p.Balance))
		total = total.Add(p.Balance)
	}
	if len(balances) == 0 {
		b.WriteString("Belum ada pocket.\n")
	}

	fmt.Fprintf(&b, "\n💎 Total Keseluruhan: %s", Rupiah(total))
	b.WriteString("\n\n💡 Tip: Ketik \"saldo pocket [nama]\" untuk detail pocket tertentu")
	return b.String()
}

// PocketList renders pockets with a status marker for positive, zero and
// negative balances.
func PocketList(balances []core.PocketBalance) string {
	var b strings.Builder
	b.WriteString("📝 DAFTAR POCKET:\n\n")
	for _, p := range balances {
		fmt.Fprintf(&b, "%s %s: %s\n", statusMarker(p.Balance), p.Name, Rupiah(p.Balance))
	}
	if len(balances) == 0 {
		b.WriteString("Belum ada pocket.\n")
	}

	b.WriteString("\n💡 Tips:\n")
	b.WriteString("• Ketik \"saldo pocket [nama]\" untuk detail\n")
	b.WriteString("• Pocket otomatis dibuat saat transaksi pertama\n")
	b.WriteString("• Gunakan nama pocket yang mudah diingat")
	return b.String()
}

// RecordConfirmation acknowledges a written income or expense.
func RecordConfirmation(tx core.Transaction, pocketBalance decimal.Decimal) string {
	var b strings.Builder
	b.WriteString("✅ Transaksi berhasil dicatat!\n")
	fmt.Fprintf(&b, "📅 Tanggal: %s %s\n", tx.Date, tx.Time)
	fmt.Fprintf(&b, "💰 Jenis: %s\n", tx.Type)
	fmt.Fprintf(&b, "💵 Jumlah: %s\n", Rupiah(tx.Amount))
	fmt.Fprintf(&b, "📝 Deskripsi: %s\n", tx.Description)
	fmt.Fprintf(&b, "🏷️ Kategori: %s\n", tx.Category)
	fmt.Fprintf(&b, "👝 Pocket: %s\n", tx.Pocket)
	fmt.Fprintf(&b, "💳 Saldo pocket \"%s\": %s", tx.Pocket, Rupiah(pocketBalance))
	return b.String()
}

// TransferConfirmation acknowledges both legs of a transfer.
type TransferConfirmation struct {
	From, To               string
	FromBalance, ToBalance decimal.Decimal
	Amount                 decimal.Decimal
	Date, Time             string
}

func (c TransferConfirmation) String() string {
	var b strings.Builder
	b.WriteString("✅ Transfer berhasil!\n")
	fmt.Fprintf(&b, "💸 Dari: %s → %s\n", c.From, Rupiah(c.FromBalance))
	fmt.Fprintf(&b, "💰 Ke: %s → %s\n", c.To, Rupiah(c.ToBalance))
	fmt.Fprintf(&b, "💵 Jumlah: %s\n", Rupiah(c.Amount))
	fmt.Fprintf(&b, "📅 Waktu: %s %s", c.Date, c.Time)
	return b.String()
}

// InsufficientExpense rejects an expense larger than the pocket balance.
func InsufficientExpense(e *core.InsufficientFundsError) string {
	var b strings.Builder
	fmt.Fprintf(&b, "❌ Saldo pocket \"%s\" tidak mencukupi!\n", e.Pocket)
	fmt.Fprintf(&b, "💰 Saldo saat ini: %s\n", Rupiah(e.Balance))
	fmt.Fprintf(&b, "💸 Yang dibutuhkan: %s\n", Rupiah(e.Required))
	fmt.Fprintf(&b, "📊 Ketik \"saldo pocket %s\" untuk melihat detail", e.Pocket)
	return b.String()
}

// InsufficientTransfer rejects a transfer larger than the source balance.
func InsufficientTransfer(e *core.InsufficientFundsError) string {
	var b strings.Builder
	b.WriteString("❌ Transfer gagal!\n")
	fmt.Fprintf(&b, "Saldo pocket \"%s\" tidak mencukupi.\n", e.Pocket)
	fmt.Fprintf(&b, "💰 Saldo: %s\n", Rupiah(e.Balance))
	fmt.Fprintf(&b, "💸 Dibutuhkan: %s", Rupiah(e.Required))
	return b.String()
}

func signMarker(d decimal.Decimal) string {
	if d.IsNegative() {
		return "❌"
	}
	return "✅"
}

func statusMarker(d decimal.Decimal) string {
	switch d.Sign() {
	case 1:
		return "✅"
	case 0:
		return "⚪"
	default:
		return "❌"
	}
}

func typeIcon(t core.TxType) string {
	if t == core.Income {
		return "📈"
	}
	return "📉"
}
