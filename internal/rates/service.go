// Package rates resolves date-stamped central-bank and current market exchange rates.
package rates

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/tinkreport/internal/cache"
	"github.com/mtlprog/tinkreport/internal/domain"
)

var (
	// ErrUnsupportedCurrency is returned for currencies outside the registry.
	ErrUnsupportedCurrency = errors.New("rates: unsupported currency")
	// ErrNoRate is returned when the rate sheet for a date lacks the currency.
	ErrNoRate = errors.New("rates: no rate published")
)

// Fetcher returns every published rate for a date.
type Fetcher interface {
	FetchRates(ctx context.Context, date time.Time) (map[string]decimal.Decimal, error)
}

// Store is the subset of the cache repository used for rates.
type Store interface {
	GetRate(ctx context.Context, date time.Time, currency string) (decimal.Decimal, error)
	SaveRates(ctx context.Context, rates []domain.ExchangeRate) error
}

// Service looks rates up in the cache and fetches a whole sheet per missing date.
type Service struct {
	store   Store
	fetcher Fetcher
	memo    *cache.Memo[decimal.Decimal]
	mu      sync.Mutex
}

// NewService creates a rates Service. All dependencies are required.
func NewService(store Store, fetcher Fetcher) *Service {
	if store == nil {
		panic("rates.NewService: store is nil")
	}
	if fetcher == nil {
		panic("rates.NewService: fetcher is nil")
	}
	return &Service{store: store, fetcher: fetcher, memo: cache.NewMemo[decimal.Decimal](0)}
}

// Rate returns the central-bank rate of currency on the calendar day of date in Moscow time.
// The reporting currency is always 1.
func (s *Service) Rate(ctx context.Context, date time.Time, currency string) (decimal.Decimal, error) {
	if currency == domain.ReportingCurrency {
		return decimal.NewFromInt(1), nil
	}
	if !domain.IsSupportedCurrency(currency) {
		return decimal.Zero, fmt.Errorf("%s: %w", currency, ErrUnsupportedCurrency)
	}

	day := domain.DateOnly(date.In(domain.MSK))
	key := memoKey(day, currency)
	if r, ok := s.memo.Get(key); ok {
		return r, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.memo.Get(key); ok {
		return r, nil
	}

	r, err := s.store.GetRate(ctx, day, currency)
	if err == nil {
		s.memo.Set(key, r)
		return r, nil
	}
	if !errors.Is(err, cache.ErrNotFound) {
		return decimal.Zero, fmt.Errorf("reading cached rate: %w", err)
	}

	if err := s.refresh(ctx, day); err != nil {
		return decimal.Zero, err
	}
	if r, ok := s.memo.Get(key); ok {
		return r, nil
	}
	return decimal.Zero, fmt.Errorf("%s on %s: %w", currency, day.Format(time.DateOnly), ErrNoRate)
}

// Rates returns the rates of all supported currencies on date, the reporting currency included.
func (s *Service) Rates(ctx context.Context, date time.Time) (map[string]decimal.Decimal, error) {
	result := make(map[string]decimal.Decimal, len(domain.Currencies))
	for _, code := range domain.SupportedCurrencies() {
		r, err := s.Rate(ctx, date, code)
		if err != nil {
			return nil, fmt.Errorf("resolving %s rate: %w", code, err)
		}
		result[code] = r
	}
	return result, nil
}

// Refresh fetches the sheet for date and stores every supported currency in it.
func (s *Service) Refresh(ctx context.Context, date time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh(ctx, domain.DateOnly(date.In(domain.MSK)))
}

func (s *Service) refresh(ctx context.Context, day time.Time) error {
	sheet, err := s.fetcher.FetchRates(ctx, day)
	if err != nil {
		return fmt.Errorf("fetching rates for %s: %w", day.Format(time.DateOnly), err)
	}

	var batch []domain.ExchangeRate
	for _, code := range domain.ForeignCurrencies() {
		r, ok := sheet[code]
		if !ok {
			continue
		}
		batch = append(batch, domain.ExchangeRate{Date: day, Currency: code, Rate: r})
	}

	if err := s.store.SaveRates(ctx, batch); err != nil {
		return fmt.Errorf("storing rates for %s: %w", day.Format(time.DateOnly), err)
	}
	for _, r := range batch {
		s.memo.Set(memoKey(day, r.Currency), r.Rate)
	}

	slog.Debug("RateService: stored rates", "date", day.Format(time.DateOnly), "count", len(batch))
	return nil
}

func memoKey(day time.Time, currency string) string {
	return day.Format(time.DateOnly) + ":" + currency
}
