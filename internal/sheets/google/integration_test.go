//go:build integration

package google

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"dompet/internal/core"
	"dompet/internal/log"
)

// Integration tests require a real spreadsheet shared with a service account.
// Run with: go test -tags=integration ./internal/sheets/google

func TestIntegration_LedgerRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	opts := Options{
		SpreadsheetID:   os.Getenv("GOOGLE_SPREADSHEET_ID"),
		SheetName:       os.Getenv("GOOGLE_SHEET_NAME"),
		CredentialsJSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
		CredentialsFile: os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"),
		ClientEmail:     os.Getenv("GOOGLE_SHEETS_CLIENT_EMAIL"),
		PrivateKey:      os.Getenv("GOOGLE_SHEETS_PRIVATE_KEY"),
	}
	if opts.SpreadsheetID == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}
	if opts.SheetName == "" {
		opts.SheetName = "Transaksi"
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client, err := New(ctx, opts, log.New(log.DefaultConfig()))
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	if err := client.EnsureHeaders(ctx); err != nil {
		t.Fatalf("EnsureHeaders: %v", err)
	}

	before, err := client.ReadRange(ctx, 1, 1000)
	if err != nil {
		t.Fatalf("ReadRange: %v", err)
	}

	tx := core.NewTransaction(time.Now(), core.Income, decimal.NewFromInt(1), "integration test", "Lainnya", "integration", core.SourceTag, "test")
	ref, err := client.Append(ctx, tx)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	t.Logf("Appended row %s", ref)

	after, err := client.ReadRange(ctx, 1, 1000)
	if err != nil {
		t.Fatalf("ReadRange: %v", err)
	}
	if len(after) != len(before)+1 && len(before) < 1000 {
		t.Errorf("expected %d rows after append, got %d", len(before)+1, len(after))
	}
}
