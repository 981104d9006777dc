package export

import (
	"time"

	"github.com/mtlprog/tinkreport/internal/domain"
)

// summaryColumn describes one column of the SUMMARY and HISTORY sheets.
type summaryColumn struct {
	header string
	value  func(domain.Report) any
}

var summaryColumns = []summaryColumn{
	{"Account", func(r domain.Report) any { return r.Account.ID }},
	{"Name", func(r domain.Report) any { return r.Title }},
	{"Type", func(r domain.Report) any { return string(r.Account.Type) }},
	{"Investing period", func(r domain.Report) any { return r.Statistics.InvestingPeriod.String() }},
	{"PayIn - PayOut", func(r domain.Report) any { return toFloat(r.Statistics.PayInPayOut) }},
	{"Commissions", func(r domain.Report) any { return toFloat(r.Statistics.Commissions) }},
	{"Taxes", func(r domain.Report) any { return toFloat(r.Statistics.Taxes) }},
	{"RUB cash", func(r domain.Report) any { return toFloat(r.Statistics.CashRUB) }},
	{"Market value RUB", func(r domain.Report) any { return toFloat(r.Statistics.MarketValueRUB) }},
	{"CB value RUB", func(r domain.Report) any { return toFloat(r.Statistics.CBValueRUB) }},
	{"Sum buy RUB", func(r domain.Report) any { return toFloat(r.Statistics.SumBuyRUB) }},
	{"Expected tax", func(r domain.Report) any { return toFloat(r.Statistics.ExpectedTax) }},
	{"Clean portfolio", func(r domain.Report) any { return toFloat(r.Statistics.CleanPortfolio) }},
	{"Profit", func(r domain.Report) any { return toFloat(r.Statistics.Profit) }},
	{"XIRR", func(r domain.Report) any {
		if r.Statistics.XIRR == nil {
			return nil
		}
		return *r.Statistics.XIRR
	}},
	{"Average %", func(r domain.Report) any { return toFloat(r.Statistics.AveragePercent) }},
	{"Dividend salary", func(r domain.Report) any { return toFloat(r.Statistics.DividendSalary) }},
	{"Warnings", func(r domain.Report) any { return float64(len(r.Warnings)) }},
}

// buildSummaryRows builds the SUMMARY sheet: a header and one row per account.
func buildSummaryRows(reports []domain.Report) [][]any {
	data := make([][]any, 0, len(reports)+1)

	header := make([]any, len(summaryColumns))
	for i, col := range summaryColumns {
		header[i] = col.header
	}
	data = append(data, header)

	for _, rep := range reports {
		row := make([]any, len(summaryColumns))
		for i, col := range summaryColumns {
			row[i] = col.value(rep)
		}
		data = append(data, row)
	}
	return data
}

// buildHistoryRows builds the HISTORY header and the rows appended for one run.
// The run date is prepended to every row.
func buildHistoryRows(reports []domain.Report, at time.Time) (header []any, rows [][]any) {
	summary := buildSummaryRows(reports)

	header = append([]any{"Date"}, summary[0]...)
	date := at.In(domain.MSK).Format("02.01.2006")
	for _, r := range summary[1:] {
		rows = append(rows, append([]any{date}, r...))
	}
	return header, rows
}
