// Package cache stores slow-changing reference data: exchange rates, instruments and market prices.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/tinkreport/internal/domain"
)

// ErrNotFound is returned for missing entries and for entries older than the requested max age.
var ErrNotFound = errors.New("cache: not found")

// Repository defines persistent storage for reference data. A maxAge of zero or less never expires.
// Writes are upserts; the last writer wins.
type Repository interface {
	GetRate(ctx context.Context, date time.Time, currency string) (decimal.Decimal, error)
	SaveRates(ctx context.Context, rates []domain.ExchangeRate) error
	GetInstrument(ctx context.Context, figi string, maxAge time.Duration) (domain.Instrument, error)
	SaveInstrument(ctx context.Context, inst domain.Instrument) error
	GetMarketPrice(ctx context.Context, figi string, maxAge time.Duration) (decimal.Decimal, error)
	SaveMarketPrice(ctx context.Context, figi string, price decimal.Decimal) error
}

func expired(updatedAt, now time.Time, maxAge time.Duration) bool {
	return maxAge > 0 && now.Sub(updatedAt) > maxAge
}
