package export

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/mtlprog/tinkreport/internal/domain"
)

const (
	portfolioCol       = 2
	portfolioHeaderRow = 7
)

var portfolioColumns = []struct {
	title string
	width float64
}{
	{"name", 28}, {"ticker", 14}, {"balance", 12}, {"currency", 8}, {"ave.price", 12},
	{"sum.buy", 14}, {"exp.yield", 14}, {"market price", 12}, {"% change", 10}, {"market value", 14},
	{"market value RUB", 16}, {"", 4}, {"CB value RUB", 16}, {"ave.buy in RUB", 16},
	{"sum.buy in RUB", 16}, {"tax base", 16}, {"expected tax", 16},
}

func (r *XLSXRenderer) writePortfolio(f *excelize.File, st *styles, rep domain.Report) error {
	s := newSheet(f, sheetPortfolio)
	c := portfolioCol

	s.width(1, 1, 16)
	s.set(1, 1, rep.Date.In(domain.MSK).Format("2006 Jan 02  15:04"), st.boldCenter)
	s.set(c, 1, rep.Title, st.boldLeft)

	s.set(c+9, 2, "Market", st.boldCenter)
	s.set(c+10, 2, "last price:", st.boldCenter)
	s.set(c+12, 2, "Central Bank", st.boldCenter)
	s.set(c+13, 2, "today rates:", st.boldCenter)
	for i, code := range domain.ForeignCurrencies() {
		row := 3 + i/2
		s.set(c+9+i%2, row, rateText(code, rep.MarketRates), st.center)
		s.set(c+12+i%2, row, rateText(code, rep.CBRates), st.center)
	}

	for i, col := range portfolioColumns {
		s.set(c+i, portfolioHeaderRow, col.title, st.boldCenter)
		s.width(c+i, c+i, col.width)
	}

	row := portfolioHeaderRow + 1
	for _, typ := range domain.InstrumentTypes {
		positions := lo.Filter(rep.Positions, func(p domain.ValuedPosition, _ int) bool {
			return p.Instrument.Type == typ
		})
		if len(positions) == 0 {
			continue
		}
		s.set(c, row, string(typ), st.boldLeft)
		row++
		for _, p := range positions {
			writePosition(s, st, row, p)
			row++
		}
	}
	s.autoFilter(c, portfolioHeaderRow, c+len(portfolioColumns)-1, row-1)

	stats := rep.Statistics
	rub := st.rub()

	s.set(c, row, "RUB cash", st.left)
	for _, off := range []int{2, 10, 12} {
		s.set(c+off, row, toFloat(stats.CashRUB), rub)
	}

	t := row + 2
	s.set(c+7, t, "ave. %", st.boldRight)
	s.set(c+8, t, toFloat(stats.AveragePercent), st.change(stats.AveragePercent.Sign()))
	s.set(c+9, t, "total value:", st.boldRight)
	s.set(c+10, t, toFloat(stats.MarketValueRUB), rub)
	s.set(c+12, t, toFloat(stats.CBValueRUB), rub)
	s.set(c+14, t, toFloat(stats.SumBuyRUB), rub)
	s.set(c+14, t+1, "profit:", st.boldRight)
	s.set(c+15, t+1, toFloat(rep.ProfitLoss.Profit), rub)
	s.set(c+16, t+1, toFloat(rep.ProfitLoss.ProfitTax), rub)
	s.set(c+14, t+2, "loss:", st.boldRight)
	s.set(c+15, t+2, toFloat(rep.ProfitLoss.Loss), rub)
	s.set(c+16, t+2, toFloat(rep.ProfitLoss.LossTax), rub)
	s.set(c+16, t+3, toFloat(stats.ExpectedTax), st.moneyTotal[domain.ReportingCurrency])

	row = writeStatistics(s, st, t+5, stats)
	row = r.writeClarification(s, st, row+2)
	writeWarnings(s, st, row+2, rep.Warnings)

	return s.err
}

func writePosition(s *sheet, st *styles, row int, p domain.ValuedPosition) {
	c := portfolioCol
	s.set(c, row, p.Instrument.Name, st.left)
	s.set(c+1, row, p.Instrument.Ticker, st.left)

	if p.Instrument.Type == domain.InstrumentCurrency {
		s.set(c+2, row, toFloat(p.Quantity), st.number)
		s.set(c+3, row, heldCurrency(p), st.left)
	} else {
		s.set(c+2, row, toFloat(p.Quantity), st.right)
		s.set(c+3, row, p.Currency, st.left)
	}

	if p.UnknownCurrency {
		for _, off := range []int{4, 5, 6, 7, 9, 10, 12} {
			s.set(c+off, row, domain.UnknownCurrency, st.right)
		}
	} else {
		money := st.moneyStyle(p.Currency)
		s.set(c+4, row, toFloat(p.AveragePrice), money)
		s.set(c+5, row, toFloat(p.SumBuy), money)
		s.set(c+6, row, toFloat(p.ExpectedYield), money)
		s.set(c+7, row, toFloat(p.MarketPrice), money)
		s.set(c+9, row, toFloat(p.MarketCost), money)
		s.set(c+10, row, toFloat(p.MarketValueRUB), st.rub())
		s.set(c+12, row, toFloat(p.CBValueRUB), st.rub())
	}

	s.set(c+8, row, toFloat(p.PercentChange.Round(2)), st.change(p.PercentChange.Sign()))
	s.set(c+13, row, toFloat(p.AvgBuyPriceRUB), st.rub())
	s.set(c+14, row, toFloat(p.SumBuyRUB), st.rub())
	s.set(c+15, row, toFloat(p.TaxBase), st.rub())
	s.set(c+16, row, toFloat(p.ExpectedTax), st.rub())
}

// writeStatistics prints the headline block and returns the last row used.
func writeStatistics(s *sheet, st *styles, row int, stats domain.Statistics) int {
	c := portfolioCol
	rub := st.rub()

	xirr := any("undefined")
	xirrStyle := st.boldRight
	if stats.XIRR != nil {
		xirr = *stats.XIRR
		xirrStyle = st.percentBold
	}

	lines := []struct {
		label string
		value any
		style int
	}{
		{"Investing period", stats.InvestingPeriod.String(), st.right},
		{"PayIn - PayOut", toFloat(stats.PayInPayOut), rub},
		{"", nil, 0},
		{"Commissions paid", toFloat(stats.Commissions), rub},
		{"Taxes paid", toFloat(stats.Taxes), rub},
		{"", nil, 0},
		{"RUB cash", toFloat(stats.CashRUB), rub},
		{"Clean portfolio", toFloat(stats.CleanPortfolio), rub},
		{"Profit", toFloat(stats.Profit), rub},
		{"", nil, 0},
		{"XIRR", xirr, xirrStyle},
		{"Average % change", toFloat(stats.AveragePercent), st.change(stats.AveragePercent.Sign())},
		{"Dividend salary", toFloat(stats.DividendSalary), rub},
	}

	for i, l := range lines {
		if l.label == "" {
			continue
		}
		s.set(c, row+i, l.label, st.boldRight)
		s.set(c+1, row+i, l.value, l.style)
	}
	return row + len(lines) - 1
}

func (r *XLSXRenderer) writeClarification(s *sheet, st *styles, row int) int {
	c := portfolioCol
	lines := []struct {
		label, text string
		gap         int
	}{
		{"name", "instrument name", 0},
		{"ticker", "instrument ticker", 0},
		{"balance", "number of units held", 0},
		{"currency", "instrument currency", 0},
		{"ave.price", "average purchase price of one unit reported by the broker", 0},
		{"sum.buy", "purchase cost = ave.price * balance", 0},
		{"exp.yield", "expected yield when the position is closed", 0},
		{"market price", "market price of one unit; for bonds = market value / balance", 0},
		{"% change", "change of market price relative to ave.price", 0},
		{"market value", "market value of the whole position", 0},
		{"market value RUB", "market value in RUB at the market rate", 1},
		{"CB value RUB", "market value in RUB at today's central bank rate", 0},
		{"ave.buy in RUB", "average purchase price in RUB at the central bank rate of each purchase date", 0},
		{"sum.buy in RUB", "= ave.buy in RUB * balance", 0},
		{"tax base", "= CB value RUB - sum.buy in RUB, not below zero", 0},
		{"expected tax", fmt.Sprintf("= tax base * %s%%; ignores tax benefits and taxes already due on closed positions",
			r.taxRate.Mul(decimal.NewFromInt(100)).String()), 1},
		{"Investing period", "years, months and days since the account start date", 0},
		{"PayIn - PayOut", "money paid in minus money paid out", 0},
		{"Commissions paid", "broker and service commissions", 0},
		{"Taxes paid", "taxes on closed positions, coupons and dividends", 0},
		{"Clean portfolio", "market value RUB plus RUB cash minus expected tax", 0},
		{"Profit", "= Clean portfolio - (PayIn - PayOut)", 0},
		{"XIRR", "irregular internal rate of return over all pay-ins and pay-outs", 0},
	}

	for _, l := range lines {
		s.set(c, row, l.label, st.boldRight)
		s.merge(c+1, row, c+16, row, "  "+l.text, st.left)
		row += 1 + l.gap
	}
	return row
}

func writeWarnings(s *sheet, st *styles, row int, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	c := portfolioCol
	s.set(c, row, "Warnings", st.boldLeft)
	for i, w := range warnings {
		s.merge(c+1, row+1+i, c+16, row+1+i, w, st.small)
	}
}

func rateText(code string, rates map[string]decimal.Decimal) string {
	if r, ok := rates[code]; ok {
		return fmt.Sprintf("%s = %s", code, r.Round(4).String())
	}
	return code + " = n/a"
}

// heldCurrency returns the currency a currency instrument represents.
func heldCurrency(p domain.ValuedPosition) string {
	if c, ok := domain.CurrencyByFIGI(p.FIGI); ok {
		return c.Code
	}
	return p.Currency
}
