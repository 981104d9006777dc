package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mtlprog/tinkreport/internal/domain"
)

// PgRepository implements Repository with PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a new PostgreSQL cache repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) GetRate(ctx context.Context, date time.Time, currency string) (decimal.Decimal, error) {
	var rate decimal.Decimal
	err := r.pool.QueryRow(ctx,
		`SELECT rate FROM rates WHERE date = $1 AND currency = $2`,
		domain.DateOnly(date), currency).Scan(&rate)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, ErrNotFound
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("getting %s rate for %s: %w", currency, date.Format(time.DateOnly), err)
	}
	return rate, nil
}

func (r *PgRepository) SaveRates(ctx context.Context, rates []domain.ExchangeRate) error {
	batch := &pgx.Batch{}
	for _, rate := range rates {
		batch.Queue(
			`INSERT INTO rates (date, currency, rate) VALUES ($1, $2, $3)
			 ON CONFLICT (date, currency) DO UPDATE SET rate = $3`,
			domain.DateOnly(rate.Date), rate.Currency, rate.Rate)
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("saving %d rates: %w", len(rates), err)
	}
	return nil
}

func (r *PgRepository) GetInstrument(ctx context.Context, figi string, maxAge time.Duration) (domain.Instrument, error) {
	var (
		inst      domain.Instrument
		typ       string
		updatedAt time.Time
	)
	err := r.pool.QueryRow(ctx,
		`SELECT figi, ticker, name, type, currency, lot, min_price_increment, isin, nominal,
		        min_price_increment_amount, updated_at
		 FROM instruments WHERE figi = $1`, figi).Scan(
		&inst.FIGI, &inst.Ticker, &inst.Name, &typ, &inst.Currency, &inst.Lot, &inst.MinPriceIncrement,
		&inst.ISIN, &inst.Nominal, &inst.MinPriceIncrementAmount, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Instrument{}, ErrNotFound
	}
	if err != nil {
		return domain.Instrument{}, fmt.Errorf("getting instrument %s: %w", figi, err)
	}
	if expired(updatedAt, time.Now(), maxAge) {
		return domain.Instrument{}, ErrNotFound
	}
	inst.Type = domain.InstrumentType(typ)
	return inst, nil
}

func (r *PgRepository) SaveInstrument(ctx context.Context, inst domain.Instrument) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO instruments (figi, ticker, name, type, currency, lot, min_price_increment, isin, nominal,
		                          min_price_increment_amount, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		 ON CONFLICT (figi) DO UPDATE SET
		     ticker = $2, name = $3, type = $4, currency = $5, lot = $6, min_price_increment = $7,
		     isin = $8, nominal = $9, min_price_increment_amount = $10, updated_at = NOW()`,
		inst.FIGI, inst.Ticker, inst.Name, string(inst.Type), inst.Currency, inst.Lot,
		inst.MinPriceIncrement, inst.ISIN, inst.Nominal, inst.MinPriceIncrementAmount)
	if err != nil {
		return fmt.Errorf("saving instrument %s: %w", inst.FIGI, err)
	}
	return nil
}

func (r *PgRepository) GetMarketPrice(ctx context.Context, figi string, maxAge time.Duration) (decimal.Decimal, error) {
	var (
		price     decimal.Decimal
		updatedAt time.Time
	)
	err := r.pool.QueryRow(ctx,
		`SELECT price, updated_at FROM market_prices WHERE figi = $1`, figi).Scan(&price, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, ErrNotFound
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("getting market price for %s: %w", figi, err)
	}
	if expired(updatedAt, time.Now(), maxAge) {
		return decimal.Zero, ErrNotFound
	}
	return price, nil
}

func (r *PgRepository) SaveMarketPrice(ctx context.Context, figi string, price decimal.Decimal) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO market_prices (figi, price, updated_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (figi) DO UPDATE SET price = $2, updated_at = NOW()`,
		figi, price)
	if err != nil {
		return fmt.Errorf("saving market price for %s: %w", figi, err)
	}
	return nil
}
