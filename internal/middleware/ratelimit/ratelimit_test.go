package ratelimit

import (
	"testing"
	"time"
)

func newTestLimiter(limit int, clock *time.Time) *Limiter {
	rl := NewLimiter(Config{RequestsPerMinute: limit})
	rl.now = func() time.Time { return *clock }
	return rl
}

func TestAllowPerKey(t *testing.T) {
	now := time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC)
	rl := newTestLimiter(2, &now)

	for i, want := range []bool{true, true, false} {
		if got := rl.Allow("628111"); got != want {
			t.Errorf("request %d: Allow() = %v, want %v", i+1, got, want)
		}
	}
	if !rl.Allow("628222") {
		t.Error("other sender should have its own budget")
	}

	now = now.Add(61 * time.Second)
	if !rl.Allow("628111") {
		t.Error("budget should reset after a quiet minute")
	}
}

func TestCleanupStaleEntries(t *testing.T) {
	now := time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC)
	rl := newTestLimiter(5, &now)
	rl.Allow("a")
	now = now.Add(5 * time.Minute)
	rl.Allow("b")
	now = now.Add(6 * time.Minute)

	if n := rl.cleanupStaleEntries(); n != 1 {
		t.Errorf("cleanupStaleEntries() = %d, want 1", n)
	}
	if len(rl.clients) != 1 {
		t.Errorf("tracked keys = %d, want 1", len(rl.clients))
	}
}
