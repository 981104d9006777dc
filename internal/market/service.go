// Package market resolves instruments and prices through the cache, falling back to the gateway.
package market

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/tinkreport/internal/cache"
	"github.com/mtlprog/tinkreport/internal/domain"
)

// Gateway is the subset of the broker client used for reference data.
type Gateway interface {
	Instrument(ctx context.Context, figi string) (domain.Instrument, error)
	LastPrice(ctx context.Context, figi string) (decimal.Decimal, error)
	DayPrice(ctx context.Context, figi string, date time.Time) (decimal.Decimal, error)
}

// Store is the subset of the cache repository used here. Historical prices share the rates
// table, keyed by FIGI instead of a currency code.
type Store interface {
	GetInstrument(ctx context.Context, figi string, maxAge time.Duration) (domain.Instrument, error)
	SaveInstrument(ctx context.Context, inst domain.Instrument) error
	GetMarketPrice(ctx context.Context, figi string, maxAge time.Duration) (decimal.Decimal, error)
	SaveMarketPrice(ctx context.Context, figi string, price decimal.Decimal) error
	GetRate(ctx context.Context, date time.Time, key string) (decimal.Decimal, error)
	SaveRates(ctx context.Context, rates []domain.ExchangeRate) error
}

// Service resolves reference data with per-kind max ages.
type Service struct {
	gateway          Gateway
	store            Store
	instrumentMaxAge time.Duration
	priceMaxAge      time.Duration
	now              func() time.Time
}

// NewService creates a market Service. All dependencies are required.
func NewService(gateway Gateway, store Store, instrumentMaxAge, priceMaxAge time.Duration) *Service {
	if gateway == nil {
		panic("market.NewService: gateway is nil")
	}
	if store == nil {
		panic("market.NewService: store is nil")
	}
	return &Service{
		gateway:          gateway,
		store:            store,
		instrumentMaxAge: instrumentMaxAge,
		priceMaxAge:      priceMaxAge,
		now:              time.Now,
	}
}

// Instrument returns instrument metadata, refreshing it when older than the instrument max age.
func (s *Service) Instrument(ctx context.Context, figi string) (domain.Instrument, error) {
	inst, err := s.store.GetInstrument(ctx, figi, s.instrumentMaxAge)
	if err == nil {
		return inst, nil
	}
	if !errors.Is(err, cache.ErrNotFound) {
		slog.Warn("MarketService: instrument cache read failed", "figi", figi, "error", err)
	}

	inst, err = s.gateway.Instrument(ctx, figi)
	if err != nil {
		return domain.Instrument{}, fmt.Errorf("resolving instrument %s: %w", figi, err)
	}
	if err := s.store.SaveInstrument(ctx, inst); err != nil {
		slog.Warn("MarketService: caching instrument failed", "figi", figi, "error", err)
	}
	return inst, nil
}

// CurrentPrice returns the last price in the instrument currency, normalized for bonds and futures.
func (s *Service) CurrentPrice(ctx context.Context, figi string) (decimal.Decimal, error) {
	price, err := s.store.GetMarketPrice(ctx, figi, s.priceMaxAge)
	if err == nil {
		return price, nil
	}
	if !errors.Is(err, cache.ErrNotFound) {
		slog.Warn("MarketService: price cache read failed", "figi", figi, "error", err)
	}

	inst, err := s.Instrument(ctx, figi)
	if err != nil {
		return decimal.Zero, err
	}
	raw, err := s.gateway.LastPrice(ctx, figi)
	if err != nil {
		return decimal.Zero, fmt.Errorf("resolving current price of %s: %w", figi, err)
	}

	price = inst.NormalizePrice(raw)
	if err := s.store.SaveMarketPrice(ctx, figi, price); err != nil {
		slog.Warn("MarketService: caching price failed", "figi", figi, "error", err)
	}
	return price, nil
}

// HistoricalPrice returns the mid price of the daily candle on the Moscow calendar day of date.
// Today's price is the current price. Historical prices never expire.
func (s *Service) HistoricalPrice(ctx context.Context, figi string, date time.Time) (decimal.Decimal, error) {
	day := domain.DateOnly(date.In(domain.MSK))
	if day.Equal(domain.DateOnly(s.now().In(domain.MSK))) {
		return s.CurrentPrice(ctx, figi)
	}

	price, err := s.store.GetRate(ctx, day, figi)
	if err == nil {
		return price, nil
	}
	if !errors.Is(err, cache.ErrNotFound) {
		slog.Warn("MarketService: history cache read failed", "figi", figi, "error", err)
	}

	inst, err := s.Instrument(ctx, figi)
	if err != nil {
		return decimal.Zero, err
	}
	raw, err := s.gateway.DayPrice(ctx, figi, day)
	if err != nil {
		return decimal.Zero, fmt.Errorf("resolving %s price of %s: %w", day.Format(time.DateOnly), figi, err)
	}

	price = inst.NormalizePrice(raw)
	if err := s.store.SaveRates(ctx, []domain.ExchangeRate{{Date: day, Currency: figi, Rate: price}}); err != nil {
		slog.Warn("MarketService: caching history failed", "figi", figi, "error", err)
	}
	return price, nil
}
