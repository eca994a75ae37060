package sheets

import (
	"context"

	"dompet/internal/core"
)

// Ports for outbound ledger adapters. Row numbers are 1-based data rows; the
// header row is never counted.
type (
	LedgerWriter interface {
		Append(ctx context.Context, tx core.Transaction) (rowRef string, err error)
	}

	// LedgerReader returns rows first..last inclusive in ledger order. A range
	// past the end returns what exists.
	LedgerReader interface {
		ReadRange(ctx context.Context, first, last int) ([]core.Transaction, error)
	}

	Ledger interface {
		LedgerWriter
		LedgerReader
	}
)

// ReadAll reads up to maxRows data rows from the start of the ledger.
func ReadAll(ctx context.Context, r LedgerReader, maxRows int) ([]core.Transaction, error) {
	if maxRows < 1 {
		return nil, nil
	}
	return r.ReadRange(ctx, 1, maxRows)
}
