package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"dompet/internal/config"
	"dompet/internal/core"
	"dompet/internal/log"
	"dompet/internal/sheets"
)

func TestCreateBackendValidation(t *testing.T) {
	f := NewFactory(log.Discard())
	tests := []struct {
		name string
		cfg  Config
	}{
		{"unknown type", Config{Type: "postgres"}},
		{"sqlite without path", Config{Type: SQLiteBackend}},
		{"sheets without id", Config{Type: SheetsBackend}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.CreateBackend(context.Background(), tt.cfg); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestCreateMemoryBackend(t *testing.T) {
	seed := filepath.Join(t.TempDir(), "seed.txt")
	content := "Date|Time|Type|Amount|Description|Category|Pocket|Source|Sender\n" +
		"01/06/2025|08:00:00|Income|500000|gaji|Gaji|utama|WhatsApp Bot|628111\n"
	if err := os.WriteFile(seed, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	res, err := NewFactory(log.Discard()).CreateBackend(context.Background(), Config{Type: MemoryBackend, MemorySeedFile: seed})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	defer res.Cleanup()

	txs, err := sheets.ReadAll(context.Background(), res.Ledger, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 1 || txs[0].Pocket != "utama" {
		t.Errorf("seeded ledger = %+v", txs)
	}
	if err := res.Ready(context.Background()); err != nil {
		t.Errorf("Ready() = %v", err)
	}
}

func TestCreateMemoryBackendUnreadableSeed(t *testing.T) {
	_, err := NewFactory(log.Discard()).CreateBackend(context.Background(), Config{Type: MemoryBackend, MemorySeedFile: t.TempDir()})
	if err == nil {
		t.Fatal("CreateBackend() should fail when the seed file cannot be read")
	}
}

func TestCreateSQLiteBackend(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "dompet.db")

	res, err := NewFactory(log.Discard()).CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: path})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	defer res.Cleanup()

	if err := res.Ready(ctx); err != nil {
		t.Fatalf("Ready() on empty ledger = %v", err)
	}
	tx := core.NewTransaction(time.Date(2025, 6, 11, 9, 30, 0, 0, time.UTC), core.Expense,
		decimal.NewFromInt(25000), "kopi", "Makanan & Minuman", "utama", core.SourceTag, "628111")
	if _, err := res.Ledger.Append(ctx, tx); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	txs, err := sheets.ReadAll(ctx, res.Ledger, 10)
	if err != nil || len(txs) != 1 {
		t.Fatalf("ReadAll() = %v, %v", txs, err)
	}
}

func TestFromAppConfig(t *testing.T) {
	app := config.Defaults()
	app.GoogleSpreadsheetID = "sheet-1"
	app.GoogleSheetsClientEmail = "bot@example.iam.gserviceaccount.com"

	cfg, err := FromAppConfig(&app)
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if cfg.Type != SheetsBackend || cfg.Sheets.SpreadsheetID != "sheet-1" || cfg.Sheets.SheetName != "Transaksi" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Sheets.ClientEmail != app.GoogleSheetsClientEmail {
		t.Error("client email not carried over")
	}

	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
	app.DataBackend = "csv"
	if _, err := FromAppConfig(&app); err == nil {
		t.Error("expected error for unknown backend")
	}
}
