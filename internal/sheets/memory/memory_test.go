package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"dompet/internal/core"
)

func validTx(pocket string, amount int64) core.Transaction {
	return core.Transaction{
		Date:   "01/06/2025",
		Time:   "08:00:00",
		Type:   core.Income,
		Amount: decimal.NewFromInt(amount),
		Pocket: pocket,
	}
}

func TestMemoryStoreAppendAndReadRange(t *testing.T) {
	s := New()
	ctx := context.Background()

	for i, p := range []string{"a", "b", "c"} {
		ref, err := s.Append(ctx, validTx(p, int64(i+1)))
		if err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		if want := "mem:" + string(rune('1'+i)); ref != want {
			t.Errorf("Append() ref = %q, want %q", ref, want)
		}
	}

	got, err := s.ReadRange(ctx, 2, 10)
	if err != nil {
		t.Fatalf("ReadRange() error = %v", err)
	}
	if len(got) != 2 || got[0].Pocket != "b" || got[1].Pocket != "c" {
		t.Errorf("ReadRange(2,10) = %+v", got)
	}

	past, err := s.ReadRange(ctx, 5, 10)
	if err != nil || len(past) != 0 {
		t.Errorf("ReadRange past end = %v, %v", past, err)
	}
	if _, err := s.ReadRange(ctx, 0, 1); err == nil {
		t.Errorf("ReadRange(0,1) should fail")
	}
}

func TestMemoryStoreRejectsInvalid(t *testing.T) {
	s := New()
	bad := validTx("", 1)
	if _, err := s.Append(context.Background(), bad); err == nil {
		t.Fatalf("expected validation error")
	}
	if s.Len() != 0 {
		t.Errorf("invalid row was stored")
	}
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed_ledger.txt")
	content := "# seed\nDate|Time|Type|Amount|Description|Category|Pocket|Source|Sender\n" +
		"01/06/2025|08:00:00|Income|500000|gaji|Gaji|utama|seed|me\n" +
		"\n" +
		"02/06/2025|09:00:00|Expense|25000|makan\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	s, err := NewFromFile(path)
	if err != nil {
		t.Fatalf("NewFromFile() error = %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("seeded %d rows, want 2", s.Len())
	}
	rows, _ := s.ReadRange(context.Background(), 1, 10)
	if rows[1].Pocket != core.DefaultPocket || rows[1].Category != core.DefaultCategory {
		t.Errorf("sparse seed row not defaulted: %+v", rows[1])
	}

	missing, err := NewFromFile(filepath.Join(dir, "missing"))
	if err != nil || missing.Len() != 0 {
		t.Errorf("missing seed file should give an empty ledger, got err = %v", err)
	}
}

func TestNewFromFileUnreadable(t *testing.T) {
	if _, err := NewFromFile(t.TempDir()); err == nil {
		t.Error("reading a directory as a seed file should fail")
	}
}
