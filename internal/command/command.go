// Package command turns raw chat text into a routed command.
package command

import (
	"errors"
	"regexp"
	"strings"

	"dompet/internal/core"
)

// Kind identifies what an inbound message asks for.
type Kind int

const (
	Ignore Kind = iota
	RecordIncome
	RecordExpense
	PocketBalanceQuery
	PocketListQuery
	PocketTransfer
	GenericDataQuery
	Help
)

func (k Kind) String() string {
	switch k {
	case RecordIncome:
		return "record_income"
	case RecordExpense:
		return "record_expense"
	case PocketBalanceQuery:
		return "pocket_balance"
	case PocketListQuery:
		return "pocket_list"
	case PocketTransfer:
		return "pocket_transfer"
	case GenericDataQuery:
		return "data_query"
	case Help:
		return "help"
	default:
		return "ignore"
	}
}

// Command is the classifier output. Only the fields relevant to Kind are set.
type Command struct {
	Kind Kind
	Raw  string

	// PocketBalanceQuery; empty means every pocket.
	Pocket string

	// PocketTransfer
	AmountText string
	From       string
	To         string
}

const (
	incomeMarker  = "/pemasukan"
	expenseMarker = "/pengeluaran"
	pocketWord    = "pocket"
	transferWord  = "transfer"
)

var (
	balanceWords = []string{"saldo", "balance"}
	listWords    = []string{"list", "daftar"}
	helpMarkers  = []string{"/help", "/bantuan"}

	financialWords = []string{
		"berapa", "total", "jumlah", "pengeluaran", "pemasukan",
		"minggu", "bulan", "tahun", "hari", "kemarin", "laporan",
		"ringkasan", "summary", "saldo", "balance", "pocket",
	}

	pocketNamePattern = regexp.MustCompile(`(?i)pocket\s+(.+)$`)
	transferPattern   = regexp.MustCompile(`(?i)transfer\s+(\S+)\s+dari\s+pocket\s+(.+?)\s+ke\s+pocket\s+(.+)$`)
)

// Classify routes a message. Rules are tried from most to least specific and
// the first match wins.
func Classify(raw string) Command {
	text := strings.TrimSpace(raw)
	lower := strings.ToLower(text)
	cmd := Command{Raw: text}

	switch {
	case strings.HasPrefix(lower, incomeMarker):
		cmd.Kind = RecordIncome
	case strings.HasPrefix(lower, expenseMarker):
		cmd.Kind = RecordExpense
	case containsAny(lower, balanceWords) && strings.Contains(lower, pocketWord):
		cmd.Kind = PocketBalanceQuery
		cmd.Pocket = ExtractPocketName(text)
	case containsAny(lower, listWords) && strings.Contains(lower, pocketWord):
		cmd.Kind = PocketListQuery
	case strings.Contains(lower, transferWord) && strings.Contains(lower, pocketWord) && transferPattern.MatchString(text):
		m := transferPattern.FindStringSubmatch(text)
		cmd.Kind = PocketTransfer
		cmd.AmountText = m[1]
		cmd.From = strings.TrimSpace(m[2])
		cmd.To = strings.TrimSpace(m[3])
	case isHelp(lower):
		cmd.Kind = Help
	case containsAny(lower, financialWords):
		cmd.Kind = GenericDataQuery
	default:
		cmd.Kind = Ignore
	}
	return cmd
}

// ExtractPocketName returns the text after the last "pocket " if any.
func ExtractPocketName(text string) string {
	m := pocketNamePattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func isHelp(lower string) bool {
	for _, h := range helpMarkers {
		if lower == h {
			return true
		}
	}
	return false
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// ErrFormat is returned when a record command lacks an amount and description.
var ErrFormat = errors.New("invalid command format")

// RecordRequest is the parsed remainder of a /pemasukan or /pengeluaran message.
type RecordRequest struct {
	Type        core.TxType
	AmountText  string
	Description string
	Pocket      string
}

var (
	incomeConnector  = regexp.MustCompile(`(?i) ke pocket `)
	expenseConnector = regexp.MustCompile(`(?i) dari pocket `)
)

// ParseRecord splits a record command into amount text, description and
// pocket. Income names its pocket with "ke pocket <name>", expense with
// "dari pocket <name>"; without the connector the default pocket is used.
func ParseRecord(cmd Command) (RecordRequest, error) {
	req := RecordRequest{Pocket: core.DefaultPocket}
	var connector *regexp.Regexp
	switch cmd.Kind {
	case RecordIncome:
		req.Type = core.Income
		connector = incomeConnector
	case RecordExpense:
		req.Type = core.Expense
		connector = expenseConnector
	default:
		return RecordRequest{}, ErrFormat
	}

	words := strings.Fields(cmd.Raw)
	if len(words) < 3 {
		return RecordRequest{}, ErrFormat
	}
	req.AmountText = words[1]

	body := strings.Join(words, " ")
	if parts := connector.Split(body, -1); len(parts) == 2 && strings.TrimSpace(parts[1]) != "" {
		head := strings.Fields(parts[0])
		if len(head) > 2 {
			req.Description = strings.Join(head[2:], " ")
		}
		req.Pocket = strings.TrimSpace(parts[1])
		return req, nil
	}
	req.Description = strings.Join(words[2:], " ")
	return req, nil
}
