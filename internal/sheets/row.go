package sheets

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"dompet/internal/core"
)

// Columns is the fixed ledger layout, A through I.
var Columns = []string{"Date", "Time", "Type", "Amount", "Description", "Category", "Pocket", "Source", "Sender"}

const (
	colDate = iota
	colTime
	colType
	colAmount
	colDescription
	colCategory
	colPocket
	colSource
	colSender
)

// spreadsheet serial day 0
var serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// EncodeRow lays a transaction out in column order. The amount is written as
// a number so the sheet can sum it.
func EncodeRow(tx core.Transaction) []any {
	return []any{
		tx.Date,
		tx.Time,
		string(tx.Type),
		tx.Amount.InexactFloat64(),
		tx.Description,
		tx.Category,
		tx.Pocket,
		tx.Source,
		tx.Sender,
	}
}

// HeaderRow returns Columns as a row.
func HeaderRow() []any {
	row := make([]any, len(Columns))
	for i, c := range Columns {
		row[i] = c
	}
	return row
}

// DecodeRow turns a sparse raw row into a transaction, applying the read
// defaults: missing amount is zero, missing pocket is "default", missing
// category is "Lainnya", missing sender is "anonymous". Malformed values are
// kept or zeroed, never rejected.
func DecodeRow(row []any) core.Transaction {
	cell := func(i int) any {
		if i < len(row) {
			return row[i]
		}
		return nil
	}

	tx := core.Transaction{
		Date:        dateCell(cell(colDate)),
		Time:        timeCell(cell(colTime)),
		Amount:      amountCell(cell(colAmount)),
		Description: textCell(cell(colDescription)),
		Category:    textCell(cell(colCategory)),
		Pocket:      textCell(cell(colPocket)),
		Source:      textCell(cell(colSource)),
		Sender:      textCell(cell(colSender)),
	}

	rawType := textCell(cell(colType))
	if typ, err := core.ParseTxType(rawType); err == nil {
		tx.Type = typ
	} else {
		tx.Type = core.TxType(rawType)
	}

	if tx.Pocket == "" {
		tx.Pocket = core.DefaultPocket
	}
	if tx.Category == "" {
		tx.Category = core.DefaultCategory
	}
	if tx.Sender == "" {
		tx.Sender = core.DefaultSender
	}
	return tx
}

// DecodeStrings is DecodeRow for rows that are already text.
func DecodeStrings(fields []string) core.Transaction {
	row := make([]any, len(fields))
	for i, f := range fields {
		row[i] = f
	}
	return DecodeRow(row)
}

// EncodeStrings is the text form of EncodeRow.
func EncodeStrings(tx core.Transaction) []string {
	return []string{
		tx.Date, tx.Time, string(tx.Type), tx.Amount.String(),
		tx.Description, tx.Category, tx.Pocket, tx.Source, tx.Sender,
	}
}

func textCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

func dateCell(v any) string {
	if serial, ok := v.(float64); ok {
		days := int(serial)
		return serialEpoch.AddDate(0, 0, days).Format(core.DateLayout)
	}
	return textCell(v)
}

// timeCell reads the fraction of a serial date-time as a time of day.
func timeCell(v any) string {
	if serial, ok := v.(float64); ok {
		_, frac := math.Modf(serial)
		secs := time.Duration(math.Round(frac*86400)) * time.Second
		return serialEpoch.Add(secs).Format(core.TimeLayout)
	}
	return textCell(v)
}

func amountCell(v any) decimal.Decimal {
	switch x := v.(type) {
	case nil:
		return decimal.Zero
	case float64:
		return decimal.NewFromFloat(x)
	case int:
		return decimal.NewFromInt(int64(x))
	case int64:
		return decimal.NewFromInt(x)
	}
	s := textCell(v)
	s = strings.TrimSpace(strings.TrimPrefix(s, "Rp"))
	if s == "" {
		return decimal.Zero
	}
	if d, err := decimal.NewFromString(s); err == nil {
		return d
	}
	if d, err := core.ParseAmount(s); err == nil {
		return d
	}
	return decimal.Zero
}
