// Package report runs the per-account pipeline from gateway data to a fully derived report.
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/mtlprog/tinkreport/internal/costbasis"
	"github.com/mtlprog/tinkreport/internal/domain"
	"github.com/mtlprog/tinkreport/internal/ledger"
	"github.com/mtlprog/tinkreport/internal/portfolio"
	"github.com/mtlprog/tinkreport/internal/rates"
	"github.com/mtlprog/tinkreport/internal/valuation"
)

// Gateway is the broker data source.
type Gateway interface {
	Accounts(ctx context.Context) ([]domain.Account, error)
	Portfolio(ctx context.Context, accountID string) ([]domain.Position, error)
	Cash(ctx context.Context, accountID string) ([]domain.CashBalance, error)
	Operations(ctx context.Context, accountID string, from, to time.Time) ([]domain.Operation, error)
}

// MarketService resolves instrument metadata and current prices.
type MarketService interface {
	Instrument(ctx context.Context, figi string) (domain.Instrument, error)
	CurrentPrice(ctx context.Context, figi string) (decimal.Decimal, error)
}

// RateService returns central-bank rates.
type RateService interface {
	Rate(ctx context.Context, date time.Time, currency string) (decimal.Decimal, error)
}

// CostBasis reconstructs the average acquisition price of a position.
type CostBasis interface {
	Reconstruct(ctx context.Context, target costbasis.Target, entries []domain.LedgerEntry) (costbasis.Result, error)
}

// Options select what one report covers. Zero StartDate means the account opening date,
// zero Date means now.
type Options struct {
	Title     string
	StartDate time.Time
	Date      time.Time
}

// Service orchestrates the report pipeline for one account at a time.
type Service struct {
	gateway    Gateway
	market     MarketService
	rates      RateService
	costBasis  CostBasis
	ledger     *ledger.Service
	valuator   *valuation.Valuator
	aggregator *portfolio.Aggregator
	now        func() time.Time
}

// NewService creates a report Service. All dependencies are required.
func NewService(gateway Gateway, market MarketService, rateSvc RateService, costBasis CostBasis,
	ledgerSvc *ledger.Service, valuator *valuation.Valuator, aggregator *portfolio.Aggregator,
) *Service {
	if gateway == nil {
		panic("report.NewService: gateway is nil")
	}
	if market == nil {
		panic("report.NewService: market is nil")
	}
	if rateSvc == nil {
		panic("report.NewService: rates is nil")
	}
	if costBasis == nil {
		panic("report.NewService: costBasis is nil")
	}
	if ledgerSvc == nil {
		panic("report.NewService: ledger is nil")
	}
	if valuator == nil {
		panic("report.NewService: valuator is nil")
	}
	if aggregator == nil {
		panic("report.NewService: aggregator is nil")
	}
	return &Service{
		gateway:    gateway,
		market:     market,
		rates:      rateSvc,
		costBasis:  costBasis,
		ledger:     ledgerSvc,
		valuator:   valuator,
		aggregator: aggregator,
		now:        time.Now,
	}
}

// Accounts lists the broker accounts.
func (s *Service) Accounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.gateway.Accounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching accounts: %w", err)
	}
	return accounts, nil
}

// Build produces the report of one account. Data gaps degrade to warnings in the report;
// a *ContractError or a gateway failure aborts it.
func (s *Service) Build(ctx context.Context, account domain.Account, opts Options) (domain.Report, error) {
	date := opts.Date
	if date.IsZero() {
		date = s.now()
	}
	start := opts.StartDate
	if start.IsZero() {
		start = account.OpenedDate
	}

	var warnings []string
	warn := func(ws ...string) { warnings = append(warnings, ws...) }

	positions, err := s.gateway.Portfolio(ctx, account.ID)
	if err != nil {
		return domain.Report{}, fmt.Errorf("fetching portfolio of %s: %w", account.ID, err)
	}
	cash, err := s.gateway.Cash(ctx, account.ID)
	if err != nil {
		return domain.Report{}, fmt.Errorf("fetching cash of %s: %w", account.ID, err)
	}
	ops, err := s.gateway.Operations(ctx, account.ID, start, date)
	if err != nil {
		return domain.Report{}, fmt.Errorf("fetching operations of %s: %w", account.ID, err)
	}
	slog.Info("ReportService: fetched account data", "account", account.ID,
		"positions", len(positions), "operations", len(ops))

	ops, tickerWarnings := s.fillTickers(ctx, ops)
	warn(tickerWarnings...)

	entries, convWarnings := s.ledger.Convert(ctx, ops)
	warn(convWarnings...)
	totals := ledger.Sum(entries)

	cbRates, rateWarnings := s.cbRates(ctx, date)
	warn(rateWarnings...)
	marketRates, marketWarnings := rates.MarketRates(ctx, s.market, cbRates)
	warn(marketWarnings...)

	valued := make([]domain.ValuedPosition, 0, len(positions))
	for _, pos := range positions {
		vp, posWarnings, err := s.valuePosition(ctx, account.ID, pos, entries, cbRates, marketRates)
		if err != nil {
			return domain.Report{}, err
		}
		warn(posWarnings...)
		valued = append(valued, vp)
	}

	summary, summaryWarnings := s.aggregator.Summarize(portfolio.Input{
		Account:     account,
		StartDate:   start,
		Date:        date,
		Positions:   valued,
		Entries:     entries,
		Totals:      totals,
		Cash:        cash,
		MarketRates: marketRates,
	})
	warn(summaryWarnings...)

	title := opts.Title
	if title == "" {
		title = account.Name
	}

	return domain.Report{
		Account:        account,
		Title:          title,
		Date:           date,
		StartDate:      start,
		Positions:      valued,
		Entries:        entries,
		CategoryTotals: totals.ByCategory,
		Cash:           cash,
		CBRates:        cbRates,
		MarketRates:    marketRates,
		Parts:          summary.Parts,
		ProfitLoss:     summary.ProfitLoss,
		IIS:            summary.IIS,
		Dividends:      summary.Dividends,
		Statistics:     summary.Statistics,
		Warnings:       warnings,
	}, nil
}

func (s *Service) valuePosition(ctx context.Context, accountID string, pos domain.Position, entries []domain.LedgerEntry,
	cbRates, marketRates map[string]decimal.Decimal,
) (domain.ValuedPosition, []string, error) {
	var warnings []string

	instr, err := s.market.Instrument(ctx, pos.FIGI)
	if err != nil {
		return domain.ValuedPosition{}, nil, &ContractError{AccountID: accountID, Subject: "position " + pos.FIGI, Err: err}
	}

	price, err := s.market.CurrentPrice(ctx, pos.FIGI)
	if err != nil {
		w := fmt.Sprintf("no current price for %s, valued at zero: %v", instr.Ticker, err)
		slog.Warn(w)
		warnings = append(warnings, w)
		price = decimal.Zero
	}

	basisKnown := true
	basis, err := s.costBasis.Reconstruct(ctx, costbasis.Target{FIGI: pos.FIGI, Currency: pos.Currency}, entries)
	switch {
	case errors.Is(err, costbasis.ErrMalformedOperation):
		return domain.ValuedPosition{}, nil, &ContractError{AccountID: accountID, Subject: "position " + pos.FIGI, Err: err}
	case err != nil:
		w := fmt.Sprintf("cost basis of %s unavailable: %v", instr.Ticker, err)
		slog.Warn(w)
		warnings = append(warnings, w)
		basisKnown = false
	default:
		warnings = append(warnings, basis.Warnings...)
	}

	cbRate, cbKnown := cbRates[pos.Currency]
	marketRate, ok := marketRates[pos.Currency]
	if !ok {
		marketRate = cbRate
	}

	vp, valWarnings := s.valuator.Value(valuation.Input{
		Position:       pos,
		Instrument:     instr,
		CurrentPrice:   price,
		MarketRate:     marketRate,
		CBRate:         cbRate,
		CBRateKnown:    cbKnown,
		AvgBuyPriceRUB: basis.AvgPriceRUB,
		BasisKnown:     basisKnown,
	})
	return vp, append(warnings, valWarnings...), nil
}

// cbRates resolves each supported currency separately so that one missing rate
// only affects positions in that currency.
func (s *Service) cbRates(ctx context.Context, date time.Time) (map[string]decimal.Decimal, []string) {
	result := make(map[string]decimal.Decimal, len(domain.Currencies))
	var warnings []string
	for _, code := range domain.SupportedCurrencies() {
		r, err := s.rates.Rate(ctx, date, code)
		if err != nil {
			w := fmt.Sprintf("no central bank rate for %s on %s: %v", code, date.Format(time.DateOnly), err)
			slog.Warn(w)
			warnings = append(warnings, w)
			continue
		}
		result[code] = r
	}
	return result, warnings
}

// fillTickers sets the ticker and instrument type of operations from instrument metadata.
func (s *Service) fillTickers(ctx context.Context, ops []domain.Operation) ([]domain.Operation, []string) {
	figis := lo.Uniq(lo.FilterMap(ops, func(op domain.Operation, _ int) (string, bool) {
		return op.FIGI, op.FIGI != "" && op.Ticker == ""
	}))

	instruments := make(map[string]domain.Instrument, len(figis))
	var warnings []string
	for _, figi := range figis {
		instr, err := s.market.Instrument(ctx, figi)
		if err != nil {
			w := fmt.Sprintf("no instrument for operation figi %s, ticker left empty: %v", figi, err)
			slog.Warn(w)
			warnings = append(warnings, w)
			continue
		}
		instruments[figi] = instr
	}

	out := make([]domain.Operation, len(ops))
	for i, op := range ops {
		if instr, ok := instruments[op.FIGI]; ok {
			op.Ticker = instr.Ticker
			if op.InstrumentType == "" {
				op.InstrumentType = instr.Type
			}
		}
		out[i] = op
	}
	return out, warnings
}
