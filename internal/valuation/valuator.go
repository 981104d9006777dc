// Package valuation derives market value, percent change and tax figures for a single position.
package valuation

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/tinkreport/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Input is everything needed to value one position. Prices are in the position currency.
// CBRateKnown is false when the central bank publishes no rate for the currency.
// BasisKnown is false when AvgBuyPriceRUB could not be reconstructed; the ruble basis and tax are then zero.
type Input struct {
	Position       domain.Position
	Instrument     domain.Instrument
	CurrentPrice   decimal.Decimal
	MarketRate     decimal.Decimal
	CBRate         decimal.Decimal
	CBRateKnown    bool
	AvgBuyPriceRUB decimal.Decimal
	BasisKnown     bool
}

// Valuator turns raw positions into fully derived records. It holds no state besides the tax rate,
// so repeated calls with the same input give identical output.
type Valuator struct {
	taxRate decimal.Decimal
}

// NewValuator creates a Valuator applying taxRate (0.13 for 13%) to the tax base.
func NewValuator(taxRate decimal.Decimal) *Valuator {
	return &Valuator{taxRate: taxRate}
}

// TaxRate returns the flat rate the valuator applies.
func (v *Valuator) TaxRate() decimal.Decimal {
	return v.taxRate
}

// Value derives all position figures. Recoverable data gaps are reported as warnings.
func (v *Valuator) Value(in Input) (domain.ValuedPosition, []string) {
	pos := in.Position
	out := domain.ValuedPosition{
		Position:   pos,
		Instrument: in.Instrument,
		MarketRate: in.MarketRate,
		CBRate:     in.CBRate,
	}
	var warnings []string

	out.MarketPrice, out.MarketCost = marketFigures(pos, in.Instrument.Type, in.CurrentPrice)
	out.MarketValueRUB = out.MarketCost.Mul(in.MarketRate)

	if in.CBRateKnown {
		out.CBValueRUB = out.MarketCost.Mul(in.CBRate)
	} else {
		out.UnknownCurrency = true
		w := fmt.Sprintf("unknown currency %s for %s, excluded from totals", pos.Currency, label(in))
		slog.Warn(w)
		warnings = append(warnings, w)
	}

	if !pos.AveragePrice.IsPositive() {
		w := fmt.Sprintf("no purchase price for %s, cost basis and tax set to zero", label(in))
		slog.Warn(w)
		warnings = append(warnings, w)
		return out, warnings
	}

	out.PercentChange = out.MarketPrice.Div(pos.AveragePrice).Mul(hundred).Sub(hundred)
	out.SumBuy = pos.AveragePrice.Mul(pos.Quantity)

	if !in.BasisKnown {
		w := fmt.Sprintf("no ruble cost basis for %s, cost basis and tax set to zero", label(in))
		slog.Warn(w)
		warnings = append(warnings, w)
		return out, warnings
	}

	out.AvgBuyPriceRUB = in.AvgBuyPriceRUB
	out.SumBuyRUB = in.AvgBuyPriceRUB.Mul(pos.Quantity)

	if out.UnknownCurrency {
		return out, warnings
	}

	out.Gain = out.CBValueRUB.Sub(out.SumBuyRUB)
	out.TaxBase = decimal.Max(decimal.Zero, out.Gain)
	out.ExpectedTax = out.TaxBase.Mul(v.taxRate)

	return out, warnings
}

// marketFigures returns the per-unit market price and the total market cost.
// Bond quotes are replaced by the yield-inclusive total when a purchase price is known.
func marketFigures(pos domain.Position, typ domain.InstrumentType, current decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if typ == domain.InstrumentBond && pos.AveragePrice.IsPositive() {
		cost := domain.RoundMoney(pos.ExpectedYield.Add(pos.AveragePrice.Mul(pos.Quantity)))
		return domain.RoundMoney(domain.DivOrZero(cost, pos.Quantity)), cost
	}
	return current, current.Mul(pos.Quantity)
}

func label(in Input) string {
	if in.Instrument.Ticker != "" {
		return in.Instrument.Ticker
	}
	return in.Position.FIGI
}
