// Package portfolio rolls valued positions and ledger entries into report-level aggregates.
package portfolio

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/tinkreport/internal/domain"
	"github.com/mtlprog/tinkreport/internal/ledger"
)

// Input is everything the aggregator needs for one account on one report date.
type Input struct {
	Account     domain.Account
	StartDate   time.Time
	Date        time.Time
	Positions   []domain.ValuedPosition
	Entries     []domain.LedgerEntry
	Totals      ledger.Totals
	Cash        []domain.CashBalance
	MarketRates map[string]decimal.Decimal
}

// Summary holds the aggregates derived from an Input.
type Summary struct {
	Parts      domain.Parts
	ProfitLoss domain.ProfitLoss
	IIS        domain.IISDeduction
	Dividends  []domain.DividendYear
	Statistics domain.Statistics
}

// Aggregator computes portfolio-level figures. It holds no per-run state.
type Aggregator struct {
	taxRate        decimal.Decimal
	tickerCurrency map[string]string
}

// NewAggregator creates an Aggregator. tickerCurrency maps currency instrument tickers
// to the currency they represent.
func NewAggregator(taxRate decimal.Decimal, tickerCurrency map[string]string) *Aggregator {
	if tickerCurrency == nil {
		tickerCurrency = map[string]string{}
	}
	return &Aggregator{taxRate: taxRate, tickerCurrency: tickerCurrency}
}

// Summarize computes every aggregate for in. Recovered conditions are returned as warnings.
func (a *Aggregator) Summarize(in Input) (Summary, []string) {
	var warnings []string

	rubCash := RUBCash(in.Cash)

	parts := a.Parts(in.Positions, rubCash)

	iis, iisWarnings := IIS(in.Account.Type, in.Entries)
	warnings = append(warnings, iisWarnings...)

	dividends := Dividends(in.Entries)

	stats := a.Statistics(StatisticsInput{
		StartDate: in.StartDate,
		Date:      in.Date,
		Positions: in.Positions,
		Entries:   in.Entries,
		Totals:    in.Totals,
		RUBCash:   rubCash,
		Dividends: dividends,
	})

	return Summary{
		Parts:      parts,
		ProfitLoss: a.ProfitLoss(in.Positions),
		IIS:        iis,
		Dividends:  dividends,
		Statistics: stats,
	}, warnings
}

// RUBCash returns the reporting-currency cash balance, zero when absent.
func RUBCash(cash []domain.CashBalance) decimal.Decimal {
	total := decimal.Zero
	for _, c := range cash {
		if c.Currency == domain.ReportingCurrency {
			total = total.Add(c.Amount)
		}
	}
	return total
}
