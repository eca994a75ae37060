package oracle

import (
	"context"
	"errors"
	"testing"
	"time"

	"dompet/internal/cache"
	"dompet/internal/core"
	"dompet/internal/log"
)

type fakeBackend struct {
	label  string
	err    error
	intent *core.QueryIntent
	calls  int
}

func (f *fakeBackend) Categorize(context.Context, string, core.TxType) (string, error) {
	f.calls++
	return f.label, f.err
}

func (f *fakeBackend) InterpretQuery(context.Context, string) (*core.QueryIntent, error) {
	return f.intent, f.err
}

func TestCategorizeMemoizes(t *testing.T) {
	backend := &fakeBackend{label: "belanja"}
	o := New(backend, cache.NewLRUCache[string](8, time.Hour), log.Discard())
	ctx := context.Background()

	for _, desc := range []string{"Sepatu", "sepatu ", "SEPATU"} {
		if got := o.Categorize(ctx, desc, core.Expense); got != "Belanja" {
			t.Errorf("Categorize(%q) = %q, want Belanja", desc, got)
		}
	}
	if backend.calls != 1 {
		t.Errorf("backend called %d times, want 1", backend.calls)
	}

	// same description, other type, is a separate entry
	o.Categorize(ctx, "sepatu", core.Income)
	if backend.calls != 2 {
		t.Errorf("backend called %d times, want 2", backend.calls)
	}
}

func TestCategorizeFailureFallsBackUncached(t *testing.T) {
	backend := &fakeBackend{err: errors.New("quota exceeded")}
	o := New(backend, cache.NewLRUCache[string](8, time.Hour), log.Discard())
	ctx := context.Background()

	if got := o.Categorize(ctx, "kopi", core.Expense); got != core.DefaultCategory {
		t.Errorf("Categorize() = %q, want %q", got, core.DefaultCategory)
	}
	backend.err = nil
	backend.label = "Makanan & Minuman"
	if got := o.Categorize(ctx, "kopi", core.Expense); got != "Makanan & Minuman" {
		t.Errorf("Categorize() after recovery = %q", got)
	}
}

func TestCategorizeWithoutCache(t *testing.T) {
	backend := &fakeBackend{label: "Gaji"}
	o := New(backend, nil, log.Discard())
	o.Categorize(context.Background(), "gaji", core.Income)
	o.Categorize(context.Background(), "gaji", core.Income)
	if backend.calls != 2 {
		t.Errorf("backend called %d times, want 2", backend.calls)
	}
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		label string
		typ   core.TxType
		want  string
	}{
		{"Investasi", core.Income, "Investasi"},
		{"investasi", core.Expense, "Investasi"},
		{`"Tagihan"`, core.Expense, "Tagihan"},
		{"Bonus", core.Expense, core.DefaultCategory},
		{"", core.Income, core.DefaultCategory},
	}
	for _, tt := range tests {
		if got := Canonical(tt.label, tt.typ); got != tt.want {
			t.Errorf("Canonical(%q, %s) = %q, want %q", tt.label, tt.typ, got, tt.want)
		}
	}
}

func TestInterpretQuery(t *testing.T) {
	ctx := context.Background()
	valid := &core.QueryIntent{Period: "hari ini", StartDate: "11/06/2025", EndDate: "11/06/2025"}

	tests := []struct {
		name    string
		backend *fakeBackend
		want    *core.QueryIntent
		wantErr bool
	}{
		{"valid", &fakeBackend{intent: valid}, valid, false},
		{"none", &fakeBackend{}, nil, false},
		{"bad date", &fakeBackend{intent: &core.QueryIntent{StartDate: "2025-06-11", EndDate: "11/06/2025"}}, nil, false},
		{"reversed", &fakeBackend{intent: &core.QueryIntent{StartDate: "12/06/2025", EndDate: "11/06/2025"}}, nil, false},
		{"backend error", &fakeBackend{err: errors.New("timeout")}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(tt.backend, nil, log.Discard()).InterpretQuery(ctx, "q")
			if (err != nil) != tt.wantErr {
				t.Fatalf("InterpretQuery() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("InterpretQuery() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolvePeriodNoMatch(t *testing.T) {
	if _, _, _, ok := ResolvePeriod("saldo pocket harian", time.Now()); ok {
		t.Error("ResolvePeriod() matched text without a period")
	}
}
