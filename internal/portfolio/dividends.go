package portfolio

import (
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/mtlprog/tinkreport/internal/domain"
	"github.com/mtlprog/tinkreport/internal/ledger"
)

var withholdingFor = map[domain.Category]domain.Category{
	domain.CategoryCoupon:   domain.CategoryTaxCoupon,
	domain.CategoryDividend: domain.CategoryTaxDividend,
}

// Dividends groups coupon and dividend payments by calendar year, newest year first.
// Each payment is matched with a withholding of the same ticker on the same day; a withholding
// is matched at most once.
func Dividends(entries []domain.LedgerEntry) []domain.DividendYear {
	income := ledger.OfCategory(entries, domain.CategoryCoupon, domain.CategoryDividend)
	taxes := ledger.OfCategory(entries, domain.CategoryTaxCoupon, domain.CategoryTaxDividend)
	used := make([]bool, len(taxes))

	byYear := make(map[int]*domain.DividendYear)
	for _, e := range income {
		row := domain.DividendRow{
			Ticker:   e.Ticker,
			Date:     e.Date,
			Category: e.Category,
			Currency: e.Currency,
			Value:    e.Payment,
			NetRUB:   e.PaymentRUB,
		}

		day := calendarDay(e.Date)
		for i, t := range taxes {
			if used[i] || t.Category != withholdingFor[e.Category] || t.Ticker != e.Ticker || !calendarDay(t.Date).Equal(day) {
				continue
			}
			used[i] = true
			tax := t.Payment
			row.Tax = &tax
			row.NetRUB = row.NetRUB.Add(t.PaymentRUB)
			break
		}

		year := day.Year()
		y, ok := byYear[year]
		if !ok {
			y = &domain.DividendYear{Year: year}
			byYear[year] = y
		}
		y.Rows = append(y.Rows, row)
		y.Total = y.Total.Add(row.NetRUB)
	}

	years := lo.MapToSlice(byYear, func(_ int, y *domain.DividendYear) domain.DividendYear {
		sort.SliceStable(y.Rows, func(i, j int) bool { return y.Rows[i].Date.After(y.Rows[j].Date) })
		return *y
	})
	sort.Slice(years, func(i, j int) bool { return years[i].Year > years[j].Year })
	return years
}

// MonthlySalary is the net coupon and dividend income of the 365 days before now, per month.
func MonthlySalary(years []domain.DividendYear, now time.Time) decimal.Decimal {
	since := now.AddDate(0, 0, -365)
	total := decimal.Zero
	for _, y := range years {
		for _, r := range y.Rows {
			if r.Date.After(since) && !r.Date.After(now) {
				total = total.Add(r.NetRUB)
			}
		}
	}
	return domain.RoundMoney(total.Div(decimal.NewFromInt(12)))
}

func calendarDay(t time.Time) time.Time {
	return domain.DateOnly(t.In(domain.MSK))
}
