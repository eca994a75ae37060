// Package oracle wraps the text-classification backends that assign
// categories to new transactions and turn free-text questions into date
// ranges.
//
// Backends may fail; the Oracle facade never lets a categorization failure
// reach the caller and memoizes successful answers.
package oracle

import (
	"context"
	"fmt"
	"strings"

	"dompet/internal/cache"
	"dompet/internal/core"
	"dompet/internal/log"
)

// Backend is implemented by the rules and gemini classifiers.
type Backend interface {
	Categorize(ctx context.Context, description string, typ core.TxType) (string, error)
	// InterpretQuery returns nil when the text carries no financial question.
	InterpretQuery(ctx context.Context, text string) (*core.QueryIntent, error)
}

var (
	IncomeCategories = []string{
		"Gaji", "Freelance", "Bisnis", "Investasi", "Bonus", "Hadiah", core.DefaultCategory,
	}
	ExpenseCategories = []string{
		"Makanan & Minuman", "Transportasi", "Belanja", "Tagihan", "Kesehatan",
		"Hiburan", "Pendidikan", "Investasi", core.DefaultCategory,
	}
)

// CategoriesFor lists the labels allowed for typ.
func CategoriesFor(typ core.TxType) []string {
	if typ == core.Income {
		return IncomeCategories
	}
	return ExpenseCategories
}

// Canonical maps a backend answer onto the allowed label list. Unknown
// answers become the catch-all category.
func Canonical(label string, typ core.TxType) string {
	label = strings.Trim(strings.TrimSpace(label), `"'.`)
	for _, c := range CategoriesFor(typ) {
		if strings.EqualFold(c, label) {
			return c
		}
	}
	return core.DefaultCategory
}

// ValidateIntent checks that both bounds are DD/MM/YYYY and ordered.
func ValidateIntent(in *core.QueryIntent) error {
	start, err := core.ParseDate(in.StartDate)
	if err != nil {
		return fmt.Errorf("start date: %w", err)
	}
	end, err := core.ParseDate(in.EndDate)
	if err != nil {
		return fmt.Errorf("end date: %w", err)
	}
	if end.Before(start.Time) {
		return fmt.Errorf("%w: end %s before start %s", core.ErrInvalidDate, in.EndDate, in.StartDate)
	}
	return nil
}

type Oracle struct {
	backend Backend
	cache   cache.Cache[string]
	logger  *log.Logger
}

// New builds the facade. categories may be nil to disable memoization.
func New(backend Backend, categories cache.Cache[string], logger *log.Logger) *Oracle {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Oracle{
		backend: backend,
		cache:   categories,
		logger:  logger.WithComponent(log.ComponentOracle),
	}
}

func cacheKey(description string, typ core.TxType) string {
	return string(typ) + "|" + strings.ToLower(strings.TrimSpace(description))
}

// Categorize always yields a label. Backend errors fall back to the
// catch-all category and are not memoized.
func (o *Oracle) Categorize(ctx context.Context, description string, typ core.TxType) string {
	key := cacheKey(description, typ)
	if o.cache != nil {
		if label, ok := o.cache.Get(key); ok {
			return label
		}
	}

	label, err := o.backend.Categorize(ctx, description, typ)
	if err != nil {
		o.logger.WarnContext(ctx, "Categorization failed, using default category",
			log.FieldOperation, log.OpCategory,
			log.FieldTxType, string(typ),
			log.FieldError, err.Error())
		return core.DefaultCategory
	}

	label = Canonical(label, typ)
	if o.cache != nil {
		o.cache.Set(key, label)
	}
	return label
}

// InterpretQuery returns nil, nil when the backend found no usable intent.
func (o *Oracle) InterpretQuery(ctx context.Context, text string) (*core.QueryIntent, error) {
	intent, err := o.backend.InterpretQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("interpret query: %w", err)
	}
	if intent == nil {
		return nil, nil
	}
	if err := ValidateIntent(intent); err != nil {
		o.logger.WarnContext(ctx, "Discarding query intent with bad dates",
			log.FieldOperation, log.OpInterpret,
			log.FieldError, err.Error())
		return nil, nil
	}
	return intent, nil
}
