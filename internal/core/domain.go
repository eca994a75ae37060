package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TxType = "Income"
	Expense TxType = "Expense"
)

const (
	DateLayout = "02/01/2006"
	TimeLayout = "15:04:05"

	DefaultPocket   = "default"
	DefaultCategory = "Lainnya"
	DefaultSender   = "anonymous"

	SourceTag        = "WhatsApp Bot"
	TransferSource   = "WhatsApp Bot - Transfer"
	TransferCategory = "Transfer"
)

type (
	TxType string

	Date struct {
		time.Time
	}

	// Transaction is one ledger row. Date and Time keep the stored text so a
	// row with a malformed date can still be read and then excluded by range
	// filters.
	Transaction struct {
		Date        string
		Time        string
		Type        TxType
		Amount      decimal.Decimal
		Description string
		Category    string
		Pocket      string
		Source      string
		Sender      string
	}

	// QueryIntent is the structured form of a free-text data question.
	QueryIntent struct {
		Period    string `json:"period"`
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
		DataType  string `json:"type"`
		Intent    string `json:"intent"`
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidType   = errors.New("invalid transaction type")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidTime   = errors.New("invalid time")
	ErrEmptyPocket   = errors.New("empty pocket")
)

// InsufficientFundsError reports an expense or transfer larger than the
// source pocket balance.
type InsufficientFundsError struct {
	Pocket   string
	Balance  decimal.Decimal
	Required decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds in pocket %q: balance %s, required %s",
		e.Pocket, e.Balance.String(), e.Required.String())
}

// CheckFunds returns an *InsufficientFundsError when balance < required.
func CheckFunds(pocket string, balance, required decimal.Decimal) error {
	if balance.LessThan(required) {
		return &InsufficientFundsError{Pocket: pocket, Balance: balance, Required: required}
	}
	return nil
}

// ParseTxType accepts the stored spelling in any case.
func ParseTxType(s string) (TxType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return Income, nil
	case "expense":
		return Expense, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses DD/MM/YYYY.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// NewTransaction stamps a record with the date and time of now.
func NewTransaction(now time.Time, typ TxType, amount decimal.Decimal, description, category, pocket, source, sender string) Transaction {
	return Transaction{
		Date:        now.Format(DateLayout),
		Time:        now.Format(TimeLayout),
		Type:        typ,
		Amount:      amount,
		Description: description,
		Category:    category,
		Pocket:      pocket,
		Source:      source,
		Sender:      sender,
	}
}

// Day returns the parsed date and whether it was well formed.
func (t Transaction) Day() (Date, bool) {
	d, err := ParseDate(t.Date)
	if err != nil {
		return Date{}, false
	}
	return d, true
}

// PocketName returns the pocket, falling back to the default bucket.
func (t Transaction) PocketName() string {
	if p := strings.TrimSpace(t.Pocket); p != "" {
		return p
	}
	return DefaultPocket
}

// CategoryName returns the category, falling back to the catch-all label.
func (t Transaction) CategoryName() string {
	if c := strings.TrimSpace(t.Category); c != "" {
		return c
	}
	return DefaultCategory
}

// Signed returns the amount with the sign it contributes to a balance.
// Rows of unknown type contribute nothing.
func (t Transaction) Signed() decimal.Decimal {
	switch t.Type {
	case Income:
		return t.Amount
	case Expense:
		return t.Amount.Neg()
	}
	return decimal.Zero
}

// Validate is applied before a record is written. Reads are lenient.
func (t Transaction) Validate() error {
	if _, err := ParseDate(t.Date); err != nil {
		return err
	}
	if _, err := time.Parse(TimeLayout, t.Time); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTime, t.Time)
	}
	if t.Type != Income && t.Type != Expense {
		return fmt.Errorf("%w: %q", ErrInvalidType, t.Type)
	}
	if t.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(t.Pocket) == "" {
		return ErrEmptyPocket
	}
	return nil
}

// SamePocket compares pocket names the way the ledger identifies them.
func SamePocket(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
