package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/tinkreport/internal/domain"
)

// SQLiteRepository implements Repository with a local SQLite file.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteRepository creates a SQLite-backed repository. Migrations must already be applied.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

func (r *SQLiteRepository) GetRate(ctx context.Context, date time.Time, currency string) (decimal.Decimal, error) {
	var rate decimal.Decimal
	err := r.db.QueryRowContext(ctx,
		`SELECT rate FROM rates WHERE date = ? AND currency = ?`,
		date.Format(time.DateOnly), currency).Scan(&rate)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, ErrNotFound
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("getting %s rate for %s: %w", currency, date.Format(time.DateOnly), err)
	}
	return rate, nil
}

func (r *SQLiteRepository) SaveRates(ctx context.Context, rates []domain.ExchangeRate) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning rates transaction: %w", err)
	}
	defer tx.Rollback()

	for _, rate := range rates {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO rates (date, currency, rate) VALUES (?, ?, ?)
			 ON CONFLICT (date, currency) DO UPDATE SET rate = excluded.rate`,
			rate.Date.Format(time.DateOnly), rate.Currency, rate.Rate.String())
		if err != nil {
			return fmt.Errorf("saving %s rate for %s: %w", rate.Currency, rate.Date.Format(time.DateOnly), err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRepository) GetInstrument(ctx context.Context, figi string, maxAge time.Duration) (domain.Instrument, error) {
	var (
		inst      domain.Instrument
		typ       string
		updatedAt int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT figi, ticker, name, type, currency, lot, min_price_increment, isin, nominal,
		        min_price_increment_amount, updated_at
		 FROM instruments WHERE figi = ?`, figi).Scan(
		&inst.FIGI, &inst.Ticker, &inst.Name, &typ, &inst.Currency, &inst.Lot, &inst.MinPriceIncrement,
		&inst.ISIN, &inst.Nominal, &inst.MinPriceIncrementAmount, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Instrument{}, ErrNotFound
	}
	if err != nil {
		return domain.Instrument{}, fmt.Errorf("getting instrument %s: %w", figi, err)
	}
	if expired(time.Unix(updatedAt, 0), r.now(), maxAge) {
		return domain.Instrument{}, ErrNotFound
	}
	inst.Type = domain.InstrumentType(typ)
	return inst, nil
}

func (r *SQLiteRepository) SaveInstrument(ctx context.Context, inst domain.Instrument) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO instruments (figi, ticker, name, type, currency, lot, min_price_increment, isin, nominal,
		                          min_price_increment_amount, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (figi) DO UPDATE SET
		     ticker = excluded.ticker, name = excluded.name, type = excluded.type, currency = excluded.currency,
		     lot = excluded.lot, min_price_increment = excluded.min_price_increment, isin = excluded.isin,
		     nominal = excluded.nominal, min_price_increment_amount = excluded.min_price_increment_amount,
		     updated_at = excluded.updated_at`,
		inst.FIGI, inst.Ticker, inst.Name, string(inst.Type), inst.Currency, inst.Lot,
		inst.MinPriceIncrement.String(), inst.ISIN, inst.Nominal.String(), inst.MinPriceIncrementAmount.String(),
		r.now().Unix())
	if err != nil {
		return fmt.Errorf("saving instrument %s: %w", inst.FIGI, err)
	}
	return nil
}

func (r *SQLiteRepository) GetMarketPrice(ctx context.Context, figi string, maxAge time.Duration) (decimal.Decimal, error) {
	var (
		price     decimal.Decimal
		updatedAt int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT price, updated_at FROM market_prices WHERE figi = ?`, figi).Scan(&price, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, ErrNotFound
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("getting market price for %s: %w", figi, err)
	}
	if expired(time.Unix(updatedAt, 0), r.now(), maxAge) {
		return decimal.Zero, ErrNotFound
	}
	return price, nil
}

func (r *SQLiteRepository) SaveMarketPrice(ctx context.Context, figi string, price decimal.Decimal) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO market_prices (figi, price, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (figi) DO UPDATE SET price = excluded.price, updated_at = excluded.updated_at`,
		figi, price.String(), r.now().Unix())
	if err != nil {
		return fmt.Errorf("saving market price for %s: %w", figi, err)
	}
	return nil
}
