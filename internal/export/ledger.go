package export

import (
	"fmt"
	"slices"

	"github.com/xuri/excelize/v2"

	"github.com/mtlprog/tinkreport/internal/domain"
)

const (
	operationsCol       = 2
	operationsHeaderRow = 5
	dividendsStartRow   = 7
	iisCol              = 2
	iisHeaderRow        = 4
)

var operationColumns = []struct {
	title string
	width float64
}{
	{"Date", 20}, {"Type", 38}, {"Category", 18}, {"Ticker", 15}, {"FIGI", 18},
	{"Payment", 15}, {"Currency", 9}, {"Payment RUB", 15}, {"Status", 10},
}

func writeOperations(f *excelize.File, st *styles, rep domain.Report) error {
	s := newSheet(f, sheetOperations)
	c := operationsCol

	for i, col := range operationColumns {
		s.set(c+i, operationsHeaderRow, col.title, st.boldCenter)
		s.width(c+i, c+i, col.width)
	}

	row := operationsHeaderRow
	for _, e := range rep.Entries {
		row++
		s.set(c, row, e.Date.In(domain.MSK), st.dateTime)
		s.set(c+1, row, e.Type, 0)
		s.set(c+2, row, string(e.Category), 0)
		s.set(c+3, row, e.Ticker, 0)
		s.set(c+4, row, e.FIGI, 0)
		s.set(c+5, row, moneyCell(e.Payment, e.Currency), st.moneyStyle(e.Currency))
		s.set(c+6, row, e.Currency, 0)
		if e.Converted {
			s.set(c+7, row, toFloat(e.PaymentRUB), st.rub())
		}
		if e.Canceled() {
			s.set(c+8, row, string(e.State), st.canceled)
		} else {
			s.set(c+8, row, string(e.State), 0)
		}
	}
	s.autoFilter(c, operationsHeaderRow, c+len(operationColumns)-1, max(row, operationsHeaderRow+1))

	// SUBTOTAL follows the autofilter, so the totals track the visible rows.
	last := max(row, operationsHeaderRow+1)
	s.set(c+4, 3, "TOTAL:", st.boldRight)
	s.formula(c+5, 3, fmt.Sprintf("SUBTOTAL(9,%s:%s)", cellName(c+5, operationsHeaderRow+1, false), cellName(c+5, last, false)), st.number)
	s.formula(c+7, 3, fmt.Sprintf("SUBTOTAL(9,%s:%s)", cellName(c+7, operationsHeaderRow+1, false), cellName(c+7, last, false)), st.rub())

	return s.err
}

func writeDividends(f *excelize.File, st *styles, rep domain.Report) error {
	s := newSheet(f, sheetDividends)

	s.merge(2, 3, 4, 3, "average monthly salary for the last 12 months:", st.boldRight)
	s.set(5, 3, toFloat(rep.Statistics.DividendSalary), st.rub())
	s.merge(2, 5, 6, 5, "* - no tax withheld by the issuer was found for the payment", st.small)

	col := 2
	for _, year := range rep.Dividends {
		row := dividendsStartRow
		s.merge(col, row, col+4, row, year.Year, st.boldCenter)
		row++
		for i, title := range []string{"Ticker", "Date", "Value", "Tax", "Value RUB"} {
			s.set(col+i, row, title, st.boldCenter)
			s.width(col+i, col+i, 14)
		}
		for _, r := range year.Rows {
			row++
			s.set(col, row, r.Ticker, st.left)
			s.set(col+1, row, r.Date.In(domain.MSK).Format("2006 Jan 02"), st.center)
			s.set(col+2, row, moneyCell(r.Value, r.Currency), st.moneyStyle(r.Currency))
			if r.Tax != nil {
				s.set(col+3, row, toFloat(*r.Tax), st.moneyStyle(r.Currency))
			} else {
				s.set(col+3, row, "*", st.right)
			}
			s.set(col+4, row, toFloat(r.NetRUB), st.rub())
		}
		s.set(col+4, row+2, toFloat(year.Total), st.moneyTotal[domain.ReportingCurrency])
		col += 6
	}

	return s.err
}

// writeIIS hides the sheet for accounts without the deduction schedule.
func writeIIS(f *excelize.File, st *styles, rep domain.Report) error {
	if !rep.IIS.Applicable {
		if err := f.SetSheetVisible(sheetIIS, false); err != nil {
			return fmt.Errorf("hiding sheet: %w", err)
		}
		return nil
	}

	s := newSheet(f, sheetIIS)
	c := iisCol
	s.merge(c, 2, c+3, 2, "IIS tax deduction", st.boldCenter)
	s.width(c+1, c+3, 14)
	s.set(c, iisHeaderRow, "Year", st.boldCenter)
	s.set(c+1, iisHeaderRow, "PayIns", st.boldCenter)
	s.set(c+2, iisHeaderRow, "Tax Base", st.boldCenter)
	s.set(c+3, iisHeaderRow, "Deduction", st.boldCenter)

	years := slices.Clone(rep.IIS.Years)
	slices.SortFunc(years, func(a, b domain.IISYear) int { return b.Year - a.Year })

	row := iisHeaderRow
	rub := st.rub()
	for _, y := range years {
		row++
		s.set(c, row, y.Year, st.boldCenter)
		s.set(c+1, row, toFloat(y.PayIn), rub)
		s.set(c+2, row, toFloat(y.Base), rub)
		s.set(c+3, row, toFloat(y.Deduction), rub)
	}

	total := st.moneyTotal[domain.ReportingCurrency]
	s.set(c+1, row+1, "", total)
	s.set(c+2, row+1, "", total)
	s.set(c+3, row+1, toFloat(rep.IIS.Total), total)

	return s.err
}
