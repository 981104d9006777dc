package portfolio

import (
	"github.com/shopspring/decimal"

	"github.com/mtlprog/tinkreport/internal/domain"
)

// ProfitLoss splits position gains into gross profit and gross loss. Gains are taken before the
// tax-base floor so losses stay visible. Positions in an unknown currency have no gain.
func (a *Aggregator) ProfitLoss(positions []domain.ValuedPosition) domain.ProfitLoss {
	var pl domain.ProfitLoss
	for _, p := range positions {
		switch p.Gain.Sign() {
		case 1:
			pl.Profit = pl.Profit.Add(p.Gain)
		case -1:
			pl.Loss = pl.Loss.Add(p.Gain)
		}
	}
	pl.ProfitTax = pl.Profit.Mul(a.taxRate)
	pl.LossTax = pl.Loss.Mul(a.taxRate)
	return pl
}

// TaxRate returns the flat rate used for notional tax figures.
func (a *Aggregator) TaxRate() decimal.Decimal {
	return a.taxRate
}
