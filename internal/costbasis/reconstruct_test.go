package costbasis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/tinkreport/internal/domain"
)

type mockRates struct {
	byCurrency map[string]decimal.Decimal
	byDate     map[time.Time]decimal.Decimal
	err        error
}

func (m *mockRates) Rate(_ context.Context, date time.Time, currency string) (decimal.Decimal, error) {
	if m.err != nil {
		return decimal.Zero, m.err
	}
	if currency == domain.ReportingCurrency {
		return decimal.NewFromInt(1), nil
	}
	if r, ok := m.byDate[domain.DateOnly(date)]; ok {
		return r, nil
	}
	return m.byCurrency[currency], nil
}

type mockHistory struct {
	prices map[string]decimal.Decimal
}

func (m *mockHistory) HistoricalPrice(_ context.Context, figi string, _ time.Time) (decimal.Decimal, error) {
	p, ok := m.prices[figi]
	if !ok {
		return decimal.Zero, errors.New("no candles")
	}
	return p, nil
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func at(day int) time.Time {
	return time.Date(2022, 3, 1, 12, 0, 0, 0, time.UTC).AddDate(0, 0, day)
}

func entry(id string, cat domain.Category, figi, currency string, payment string, qty int64, day int) domain.LedgerEntry {
	return domain.LedgerEntry{
		Operation: domain.Operation{
			ID:       id,
			FIGI:     figi,
			Currency: currency,
			Payment:  d(payment),
			Quantity: qty,
			Date:     at(day),
			State:    domain.OperationStateDone,
		},
		Category: cat,
	}
}

// newestFirst reverses a chronological list into ledger order.
func newestFirst(chrono ...domain.LedgerEntry) []domain.LedgerEntry {
	out := make([]domain.LedgerEntry, len(chrono))
	for i, e := range chrono {
		out[len(chrono)-1-i] = e
	}
	return out
}

func TestReconstructFIFOConservation(t *testing.T) {
	tests := []struct {
		name      string
		sell      int64
		wantAvg   string
		wantUnits int64
	}{
		{"no sell", 0, "150", 4},
		{"sell one", 1, "166.6666666666666667", 3},
		{"sell two", 2, "200", 2},
		{"sell three", 3, "200", 1},
		{"sell all", 4, "0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chrono := []domain.LedgerEntry{
				entry("b1", domain.CategoryBuy, "FIGI1", "RUB", "-200", 2, 0),
				entry("b2", domain.CategoryBuy, "FIGI1", "RUB", "-400", 2, 1),
			}
			if tt.sell > 0 {
				chrono = append(chrono, entry("s1", domain.CategorySell, "FIGI1", "RUB", "999", tt.sell, 2))
			}

			r := NewReconstructor(&mockRates{}, nil, nil)
			res, err := r.Reconstruct(context.Background(), Target{FIGI: "FIGI1", Currency: "RUB"}, newestFirst(chrono...))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !res.AvgPriceRUB.Round(10).Equal(d(tt.wantAvg).Round(10)) {
				t.Errorf("AvgPriceRUB = %s, want %s", res.AvgPriceRUB, tt.wantAvg)
			}
			if res.Units != tt.wantUnits {
				t.Errorf("Units = %d, want %d", res.Units, tt.wantUnits)
			}
		})
	}
}

func TestReconstructConvertsAtOperationDateRate(t *testing.T) {
	rates := &mockRates{byDate: map[time.Time]decimal.Decimal{
		domain.DateOnly(at(0)): d("70"),
		domain.DateOnly(at(5)): d("80"),
	}}
	chrono := []domain.LedgerEntry{
		entry("b1", domain.CategoryBuy, "AAPL", "USD", "-100", 1, 0),
		entry("b2", domain.CategoryBuy, "AAPL", "USD", "-100", 1, 5),
	}

	r := NewReconstructor(rates, nil, nil)
	res, err := r.Reconstruct(context.Background(), Target{FIGI: "AAPL", Currency: "USD"}, newestFirst(chrono...))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// (100*70 + 100*80) / 2
	if !res.AvgPriceRUB.Equal(d("7500")) {
		t.Errorf("AvgPriceRUB = %s, want 7500", res.AvgPriceRUB)
	}
}

func TestReconstructSplitDetection(t *testing.T) {
	chrono := []domain.LedgerEntry{
		entry("b1", domain.CategoryBuy, "FIGI1", "RUB", "-200", 1, 0),
	}

	tests := []struct {
		name      string
		hist      map[string]decimal.Decimal
		wantUnits int64
		wantAvg   string
	}{
		{"no history", nil, 1, "200"},
		{"same price", map[string]decimal.Decimal{"FIGI1": d("200")}, 1, "200"},
		{"forward split x2", map[string]decimal.Decimal{"FIGI1": d("100")}, 2, "100"},
		{"forward split x10", map[string]decimal.Decimal{"FIGI1": d("20.5")}, 10, "20"},
		{"small deviation", map[string]decimal.Decimal{"FIGI1": d("190")}, 1, "200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReconstructor(&mockRates{}, &mockHistory{prices: tt.hist}, nil)
			res, err := r.Reconstruct(context.Background(), Target{FIGI: "FIGI1", Currency: "RUB"}, newestFirst(chrono...))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Units != tt.wantUnits {
				t.Errorf("Units = %d, want %d", res.Units, tt.wantUnits)
			}
			if !res.AvgPriceRUB.Equal(d(tt.wantAvg)) {
				t.Errorf("AvgPriceRUB = %s, want %s", res.AvgPriceRUB, tt.wantAvg)
			}
		})
	}
}

func TestReconstructReverseSplit(t *testing.T) {
	chrono := []domain.LedgerEntry{
		entry("b1", domain.CategoryBuy, "FIGI1", "RUB", "-1000", 100, 0),
	}
	// paid 10 per unit, market says 100: ten old units became one
	r := NewReconstructor(&mockRates{}, &mockHistory{prices: map[string]decimal.Decimal{"FIGI1": d("100")}}, nil)
	res, err := r.Reconstruct(context.Background(), Target{FIGI: "FIGI1", Currency: "RUB"}, chrono)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Units != 10 {
		t.Errorf("Units = %d, want 10", res.Units)
	}
	if !res.AvgPriceRUB.Equal(d("100")) {
		t.Errorf("AvgPriceRUB = %s, want 100", res.AvgPriceRUB)
	}
}

func TestReconstructSkipsSplitCheckOnCurrencyMismatch(t *testing.T) {
	chrono := []domain.LedgerEntry{
		entry("b1", domain.CategoryBuy, "FIGI1", "USD", "-200", 1, 0),
	}
	rates := &mockRates{byCurrency: map[string]decimal.Decimal{"USD": d("1")}}
	r := NewReconstructor(rates, &mockHistory{prices: map[string]decimal.Decimal{"FIGI1": d("100")}}, nil)
	res, err := r.Reconstruct(context.Background(), Target{FIGI: "FIGI1", Currency: "RUB"}, chrono)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Units != 1 {
		t.Errorf("Units = %d, want 1 (split check must be skipped)", res.Units)
	}
}

func TestReconstructAliases(t *testing.T) {
	chrono := []domain.LedgerEntry{
		entry("b1", domain.CategoryBuy, "OLD", "RUB", "-100", 1, 0),
		entry("b2", domain.CategoryBuy, "NEW", "RUB", "-300", 1, 1),
		entry("b3", domain.CategoryBuy, "OTHER", "RUB", "-999", 1, 2),
	}
	aliases := Aliases{"NEW": {"OLD"}}

	r := NewReconstructor(&mockRates{}, nil, aliases)
	res, err := r.Reconstruct(context.Background(), Target{FIGI: "NEW", Currency: "RUB"}, newestFirst(chrono...))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Units != 2 || !res.AvgPriceRUB.Equal(d("200")) {
		t.Errorf("Result = %d units @ %s, want 2 @ 200", res.Units, res.AvgPriceRUB)
	}

	res, err = r.Reconstruct(context.Background(), Target{FIGI: "OLD", Currency: "RUB"}, newestFirst(chrono...))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Units != 2 {
		t.Errorf("reverse alias lookup Units = %d, want 2", res.Units)
	}
}

func TestReconstructIgnoresCanceledAndZeroPayment(t *testing.T) {
	canceled := entry("b2", domain.CategoryBuy, "FIGI1", "RUB", "-999", 5, 1)
	canceled.State = domain.OperationStateCanceled
	chrono := []domain.LedgerEntry{
		entry("b1", domain.CategoryBuy, "FIGI1", "RUB", "-100", 1, 0),
		canceled,
		entry("b3", domain.CategoryBuy, "FIGI1", "RUB", "0", 3, 2),
	}

	r := NewReconstructor(&mockRates{}, nil, nil)
	res, err := r.Reconstruct(context.Background(), Target{FIGI: "FIGI1", Currency: "RUB"}, newestFirst(chrono...))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Units != 1 || !res.AvgPriceRUB.Equal(d("100")) {
		t.Errorf("Result = %d units @ %s, want 1 @ 100", res.Units, res.AvgPriceRUB)
	}
}

func TestReconstructUnsupportedCurrencyWarns(t *testing.T) {
	chrono := []domain.LedgerEntry{
		entry("b1", domain.CategoryBuy, "FIGI1", "RUB", "-100", 1, 0),
		entry("b2", domain.CategoryBuy, "FIGI1", "JPY", "-5000", 1, 1),
	}

	r := NewReconstructor(&mockRates{}, nil, nil)
	res, err := r.Reconstruct(context.Background(), Target{FIGI: "FIGI1", Currency: "RUB"}, newestFirst(chrono...))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Warnings) != 1 {
		t.Errorf("Warnings = %v, want 1", res.Warnings)
	}
	if res.Units != 1 {
		t.Errorf("Units = %d, want 1", res.Units)
	}
}

func TestReconstructErrors(t *testing.T) {
	t.Run("malformed quantity", func(t *testing.T) {
		chrono := []domain.LedgerEntry{entry("b1", domain.CategoryBuy, "FIGI1", "RUB", "-100", 0, 0)}
		r := NewReconstructor(&mockRates{}, nil, nil)
		_, err := r.Reconstruct(context.Background(), Target{FIGI: "FIGI1", Currency: "RUB"}, chrono)
		if !errors.Is(err, ErrMalformedOperation) {
			t.Errorf("err = %v, want ErrMalformedOperation", err)
		}
	})

	t.Run("rate failure", func(t *testing.T) {
		chrono := []domain.LedgerEntry{entry("b1", domain.CategoryBuy, "FIGI1", "USD", "-100", 1, 0)}
		r := NewReconstructor(&mockRates{err: errors.New("cbr down")}, nil, nil)
		if _, err := r.Reconstruct(context.Background(), Target{FIGI: "FIGI1", Currency: "USD"}, chrono); err == nil {
			t.Error("expected error on rate failure")
		}
	})
}

func TestReconstructEmptyLedger(t *testing.T) {
	r := NewReconstructor(&mockRates{}, nil, nil)
	res, err := r.Reconstruct(context.Background(), Target{FIGI: "FIGI1", Currency: "RUB"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.AvgPriceRUB.IsZero() || res.Units != 0 {
		t.Errorf("Result = %+v, want zero", res)
	}
}
