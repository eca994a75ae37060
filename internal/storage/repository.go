package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"dompet/internal/core"
	"dompet/internal/log"
	"dompet/internal/sheets"

	_ "modernc.org/sqlite"
)

var _ sheets.Ledger = (*SQLiteRepository)(nil)

// SQLiteRepository keeps the ledger in a local SQLite file. Row order is
// insertion order, as in the spreadsheet.
type SQLiteRepository struct {
	db     *sql.DB
	logger *log.Logger
}

func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, logger: logger.WithComponent(log.ComponentStorage)}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Append implements sheets.LedgerWriter
func (r *SQLiteRepository) Append(ctx context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}

	fields := sheets.EncodeStrings(tx)
	args := make([]any, len(fields))
	for i, f := range fields {
		args[i] = f
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (date, time, type, amount, description, category, pocket, source, sender)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		return "", fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("last insert id: %w", err)
	}

	r.logger.DebugContext(ctx, "Transaction saved to SQLite",
		"id", id,
		log.FieldPocket, tx.Pocket,
		log.FieldAmount, tx.Amount.String())

	return strconv.FormatInt(id, 10), nil
}

// ReadRange implements sheets.LedgerReader
func (r *SQLiteRepository) ReadRange(ctx context.Context, first, last int) ([]core.Transaction, error) {
	if first < 1 || last < first {
		return nil, fmt.Errorf("invalid row range %d..%d", first, last)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT date, time, type, amount, description, category, pocket, source, sender
		FROM transactions
		ORDER BY id
		LIMIT ? OFFSET ?`, last-first+1, first-1)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		fields := make([]string, len(sheets.Columns))
		ptrs := make([]any, len(fields))
		for i := range fields {
			ptrs[i] = &fields[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, sheets.DecodeStrings(fields))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}
