// Package backend builds the ledger store selected by DATA_BACKEND.
package backend

import (
	"context"

	"dompet/internal/sheets"
	gsheet "dompet/internal/sheets/google"
)

type CleanupFunc func() error

// BackendResult holds the ledger plus its readiness probe and cleanup.
type BackendResult struct {
	Ledger  sheets.Ledger
	Ready   func(ctx context.Context) error
	Cleanup CleanupFunc
}

type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Google Sheets specific
	Sheets gsheet.Options

	// Memory backend seed file, optional
	MemorySeedFile string
}

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
