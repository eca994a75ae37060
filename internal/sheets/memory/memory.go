package memory

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"dompet/internal/core"
	"dompet/internal/sheets"
)

var _ sheets.Ledger = (*Store)(nil)

// Store is an in-process ledger used for local runs and tests.
type Store struct {
	mu    sync.Mutex
	items []core.Transaction
}

func New(seed ...core.Transaction) *Store {
	return &Store{items: append([]core.Transaction(nil), seed...)}
}

// NewFromFile seeds the ledger from a pipe-separated file, one row per line
// in column order. A missing file yields an empty ledger; any other read
// failure is returned.
func NewFromFile(path string) (*Store, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file %s: %w", path, err)
	}
	var seed []core.Transaction
	for _, line := range lines {
		fields := strings.Split(line, "|")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		if strings.EqualFold(fields[0], sheets.Columns[0]) {
			continue
		}
		seed = append(seed, sheets.DecodeStrings(fields))
	}
	return New(seed...), nil
}

// Append stores the transaction and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, tx)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

func (s *Store) ReadRange(_ context.Context, first, last int) ([]core.Transaction, error) {
	if first < 1 || last < first {
		return nil, fmt.Errorf("invalid row range %d..%d", first, last)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if first > len(s.items) {
		return nil, nil
	}
	if last > len(s.items) {
		last = len(s.items)
	}
	return append([]core.Transaction(nil), s.items[first-1:last]...), nil
}

// Len reports how many rows have been written.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}
