// Package costbasis rebuilds the average acquisition price of a position from the operation ledger.
package costbasis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/tinkreport/internal/domain"
)

// ErrMalformedOperation is returned for a buy or sell without a positive executed quantity.
var ErrMalformedOperation = errors.New("malformed operation")

var (
	splitMinRatio   = decimal.NewFromInt(2)
	reverseMaxRatio = decimal.RequireFromString("0.95")
)

// RateSource returns the central-bank rate of currency on date.
type RateSource interface {
	Rate(ctx context.Context, date time.Time, currency string) (decimal.Decimal, error)
}

// PriceHistory returns an independently observed market price of an instrument on a date.
type PriceHistory interface {
	HistoricalPrice(ctx context.Context, figi string, date time.Time) (decimal.Decimal, error)
}

// Target identifies the position being reconstructed.
type Target struct {
	FIGI     string
	Currency string
}

// Result is the reconstructed cost basis.
type Result struct {
	AvgPriceRUB decimal.Decimal
	Units       int64
	Warnings    []string
}

// Reconstructor replays ledger operations into a lot list.
type Reconstructor struct {
	rates   RateSource
	history PriceHistory
	aliases Aliases
}

// NewReconstructor creates a Reconstructor. history may be nil, which disables split detection.
func NewReconstructor(rates RateSource, history PriceHistory, aliases Aliases) *Reconstructor {
	if rates == nil {
		panic("costbasis.NewReconstructor: rates is nil")
	}
	return &Reconstructor{rates: rates, history: history, aliases: aliases}
}

// Reconstruct computes the average acquisition price per unit in the reporting currency.
// entries must be in ledger order, newest first, as the broker delivers them; the replay walks
// them from the back so that sells consume the earliest remaining buys.
func (r *Reconstructor) Reconstruct(ctx context.Context, target Target, entries []domain.LedgerEntry) (Result, error) {
	var (
		list     lots
		warnings []string
	)

	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.Canceled() || e.Payment.IsZero() || !r.aliases.Same(target.FIGI, e.FIGI) {
			continue
		}
		if !e.Category.IsBuy() && !e.Category.IsSell() {
			continue
		}
		if e.Quantity <= 0 {
			return Result{}, fmt.Errorf("operation %s for %s: %w", e.ID, e.FIGI, ErrMalformedOperation)
		}

		if e.Category.IsSell() {
			list.removeFront(e.Quantity)
			continue
		}

		if !domain.IsSupportedCurrency(e.Currency) {
			w := fmt.Sprintf("unknown currency %s in operation %s for %s, skipped in cost basis", e.Currency, e.ID, target.FIGI)
			slog.Warn(w)
			warnings = append(warnings, w)
			continue
		}

		units := e.Quantity
		if e.Currency == target.Currency {
			units = r.splitAdjusted(ctx, e.Operation, units)
		}

		rate, err := r.rates.Rate(ctx, e.Date, e.Currency)
		if err != nil {
			return Result{}, fmt.Errorf("rate for operation %s: %w", e.ID, err)
		}

		unit := e.Payment.Div(decimal.NewFromInt(units))
		list.push(unit.Mul(rate), units)
	}

	return Result{
		AvgPriceRUB: list.average().Abs(),
		Units:       list.units(),
		Warnings:    warnings,
	}, nil
}

// splitAdjusted compares the operation's per-unit price with the market price of that day.
// A price at least twice the market means a forward split happened since; a price well below
// it means a reverse split. Missing history leaves the quantity unchanged.
func (r *Reconstructor) splitAdjusted(ctx context.Context, op domain.Operation, units int64) int64 {
	if r.history == nil {
		return units
	}
	hist, err := r.history.HistoricalPrice(ctx, op.FIGI, op.Date)
	if err != nil || !hist.IsPositive() {
		slog.Debug("costbasis: no historical price, split check skipped", "figi", op.FIGI, "date", op.Date, "error", err)
		return units
	}

	unit := op.Payment.Abs().Div(decimal.NewFromInt(units))
	ratio := unit.Div(hist)

	if factor := ratio.Round(0); factor.GreaterThanOrEqual(splitMinRatio) {
		slog.Info("costbasis: split detected", "figi", op.FIGI, "date", op.Date, "factor", factor)
		return units * factor.IntPart()
	}

	if ratio.LessThanOrEqual(reverseMaxRatio) && ratio.IsPositive() {
		inverse := hist.Div(unit).Round(0)
		if inverse.GreaterThanOrEqual(splitMinRatio) {
			slog.Info("costbasis: reverse split detected", "figi", op.FIGI, "date", op.Date, "factor", inverse)
			return max(units/inverse.IntPart(), 1)
		}
	}

	return units
}
