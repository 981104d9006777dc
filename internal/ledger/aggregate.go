package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/mtlprog/tinkreport/internal/domain"
)

// RateSource returns the central-bank rate of currency on date.
type RateSource interface {
	Rate(ctx context.Context, date time.Time, currency string) (decimal.Decimal, error)
}

// Totals are per-category sums in the reporting currency. Canceled and Unconverted hold
// native-currency sums of the operations left out, keyed by currency.
type Totals struct {
	ByCategory  map[domain.Category]decimal.Decimal
	Canceled    map[string]decimal.Decimal
	Unconverted map[string]decimal.Decimal
}

// Get returns the sum of one category, zero when absent.
func (t Totals) Get(c domain.Category) decimal.Decimal {
	return t.ByCategory[c]
}

// Service classifies operations and converts their payments.
type Service struct {
	classifier *Classifier
	rates      RateSource
}

// NewService creates a ledger Service. All dependencies are required.
func NewService(classifier *Classifier, rates RateSource) *Service {
	if classifier == nil {
		panic("ledger.NewService: classifier is nil")
	}
	if rates == nil {
		panic("ledger.NewService: rates is nil")
	}
	return &Service{classifier: classifier, rates: rates}
}

// Convert classifies each operation and converts its payment at the rate of the operation's own date.
// Canceled operations are classified but never converted. Rate gaps are returned as warnings.
func (s *Service) Convert(ctx context.Context, ops []domain.Operation) ([]domain.LedgerEntry, []string) {
	entries := make([]domain.LedgerEntry, 0, len(ops))
	var warnings []string

	for _, op := range ops {
		e := domain.LedgerEntry{Operation: op, Category: s.classifier.Category(op)}

		switch {
		case op.Canceled():
		case op.Payment.IsZero():
			e.Converted = true
		case !domain.IsSupportedCurrency(op.Currency):
			w := fmt.Sprintf("unsupported currency %s in operation %s (%s), excluded from sums", op.Currency, op.ID, e.Category)
			slog.Warn(w)
			warnings = append(warnings, w)
		default:
			rate, err := s.rates.Rate(ctx, op.Date, op.Currency)
			if err != nil {
				w := fmt.Sprintf("no %s rate for %s, operation %s excluded from sums: %v", op.Currency, op.Date.Format(time.DateOnly), op.ID, err)
				slog.Warn(w)
				warnings = append(warnings, w)
				break
			}
			e.PaymentRUB = op.Payment.Mul(rate)
			e.Converted = true
		}

		entries = append(entries, e)
	}

	return entries, warnings
}

// Sum totals converted entries per category.
func Sum(entries []domain.LedgerEntry) Totals {
	t := Totals{
		ByCategory:  make(map[domain.Category]decimal.Decimal),
		Canceled:    make(map[string]decimal.Decimal),
		Unconverted: make(map[string]decimal.Decimal),
	}

	for _, e := range entries {
		switch {
		case e.Canceled():
			t.Canceled[e.Currency] = t.Canceled[e.Currency].Add(e.Payment)
		case !e.Converted:
			t.Unconverted[e.Currency] = t.Unconverted[e.Currency].Add(e.Payment)
		case e.Payment.IsZero():
		default:
			t.ByCategory[e.Category] = t.ByCategory[e.Category].Add(e.PaymentRUB)
		}
	}

	return t
}

// Active returns entries that count towards sums: not canceled and converted.
func Active(entries []domain.LedgerEntry) []domain.LedgerEntry {
	return lo.Filter(entries, func(e domain.LedgerEntry, _ int) bool {
		return !e.Canceled() && e.Converted
	})
}

// OfCategory returns active entries in any of the given categories.
func OfCategory(entries []domain.LedgerEntry, cats ...domain.Category) []domain.LedgerEntry {
	return lo.Filter(Active(entries), func(e domain.LedgerEntry, _ int) bool {
		return lo.Contains(cats, e.Category)
	})
}
