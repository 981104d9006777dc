package portfolio

import (
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"github.com/mtlprog/tinkreport/internal/domain"
	"github.com/mtlprog/tinkreport/internal/ledger"
	"github.com/mtlprog/tinkreport/internal/xirr"
)

// StatisticsInput carries the figures the headline block is computed from.
type StatisticsInput struct {
	StartDate time.Time
	Date      time.Time
	Positions []domain.ValuedPosition
	Entries   []domain.LedgerEntry
	Totals    ledger.Totals
	RUBCash   decimal.Decimal
	Dividends []domain.DividendYear
}

// Statistics computes the headline block of a report.
func (a *Aggregator) Statistics(in StatisticsInput) domain.Statistics {
	t := in.Totals
	s := domain.Statistics{
		InvestingPeriod: Period(in.StartDate, in.Date),
		PayInPayOut:     t.Get(domain.CategoryPayIn).Sub(t.Get(domain.CategoryPayOut).Abs()),
		Commissions: t.Get(domain.CategoryBrokerCommission).
			Add(t.Get(domain.CategoryServiceCommission)).Neg(),
		Taxes: t.Get(domain.CategoryTax).
			Add(t.Get(domain.CategoryTaxCoupon)).
			Add(t.Get(domain.CategoryTaxDividend)).Neg(),
		CashRUB:        in.RUBCash,
		DividendSalary: MonthlySalary(in.Dividends, in.Date),
	}

	for _, p := range in.Positions {
		s.MarketValueRUB = s.MarketValueRUB.Add(p.MarketValueRUB)
		if !p.UnknownCurrency {
			s.CBValueRUB = s.CBValueRUB.Add(p.CBValueRUB)
		}
		s.SumBuyRUB = s.SumBuyRUB.Add(p.SumBuyRUB)
		s.ExpectedTax = s.ExpectedTax.Add(p.ExpectedTax)
	}

	s.CleanPortfolio = s.MarketValueRUB.Add(s.CashRUB).Sub(s.ExpectedTax)
	s.Profit = s.CleanPortfolio.Sub(s.PayInPayOut)
	s.AveragePercent = AveragePercent(in.Positions)

	// infinite rates are reported as undefined; they cannot be stored or rendered as numbers
	if res := xirr.Solve(Flows(in.Entries, in.Date, s.CleanPortfolio)); res.Status == xirr.Defined {
		s.XIRR = &res.Rate
	}

	return s
}

// AveragePercent is the mean percent change of positions with a known average price.
func AveragePercent(positions []domain.ValuedPosition) decimal.Decimal {
	changes := lo.FilterMap(positions, func(p domain.ValuedPosition, _ int) (float64, bool) {
		return p.PercentChange.InexactFloat64(), p.AveragePrice.IsPositive()
	})
	if len(changes) == 0 {
		return decimal.Zero
	}
	return domain.RoundMoney(decimal.NewFromFloat(stat.Mean(changes, nil)))
}

// Flows builds the XIRR cash flows: pay-ins negative, pay-outs positive and the terminal
// portfolio value on the report date.
func Flows(entries []domain.LedgerEntry, date time.Time, terminal decimal.Decimal) []xirr.Flow {
	moves := ledger.OfCategory(entries, domain.CategoryPayIn, domain.CategoryPayOut)
	flows := lo.Map(moves, func(e domain.LedgerEntry, _ int) xirr.Flow {
		return xirr.Flow{Date: e.Date, Amount: e.PaymentRUB.Neg().InexactFloat64()}
	})
	return append(flows, xirr.Flow{Date: date, Amount: terminal.InexactFloat64()})
}
