package export

import (
	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"

	"github.com/mtlprog/tinkreport/internal/domain"
)

const (
	partsCol      = 2
	partsStartRow = 7
	sharesCol     = 11
)

func writeParts(f *excelize.File, st *styles, rep domain.Report) error {
	s := newSheet(f, sheetParts)
	parts := rep.Parts

	s.merge(2, 3, 7, 3, "Asset structure", st.boldCenter)
	s.merge(2, 5, 7, 5, "* - valued at today's central bank rate", st.small)

	c := partsCol
	for i, title := range []string{"Value", "Value RUB", "Currency %", "Total %"} {
		s.set(c+2+i, partsStartRow, title, st.boldCenter)
	}
	s.width(c+2, c+5, 14)

	row := partsStartRow + 1
	for _, cp := range parts.Currencies {
		s.set(c, row, cp.Currency, st.boldCenter)
		s.set(c, row+1, toFloat(cp.TotalShare), st.percentBold)
		for _, e := range cp.Entries {
			s.set(c+1, row, string(e.Type), st.boldCenter)
			s.set(c+2, row, toFloat(e.Value), st.moneyStyle(e.Currency))
			s.set(c+3, row, toFloat(e.ValueRUB), st.rub())
			s.set(c+4, row, toFloat(e.CurrencyShare), st.percent)
			s.set(c+5, row, toFloat(e.TotalShare), st.percent)
			row++
		}
		s.set(c+2, row, toFloat(cp.Value), st.moneyTotal[cp.Currency])
		s.set(c+3, row, toFloat(cp.ValueRUB), st.moneyTotal[domain.ReportingCurrency])
		row += 3
	}

	writeShareTable(s, st, parts)

	return s.err
}

// writeShareTable prints the currency by asset class share matrix and charts built on it.
func writeShareTable(s *sheet, st *styles, parts domain.Parts) {
	c := sharesCol
	types := domain.InstrumentTypes
	totalCol := c + len(types) + 1

	for i, typ := range types {
		s.set(c+1+i, partsStartRow, string(typ), st.boldCenter)
	}
	s.set(totalCol, partsStartRow, "Total", st.boldCenter)

	row := partsStartRow + 1
	for _, cp := range parts.Currencies {
		s.set(c, row, cp.Currency, st.boldCenter)
		for i, typ := range types {
			if e, ok := lo.Find(cp.Entries, func(e domain.PartEntry) bool { return e.Type == typ }); ok {
				s.set(c+1+i, row, toFloat(e.TotalShare), st.percent)
			}
		}
		s.set(totalCol, row, toFloat(cp.TotalShare), st.percentBold)
		row++
	}

	s.set(c, row, "Total", st.boldCenter)
	for i, typ := range types {
		if tp, ok := lo.Find(parts.Types, func(tp domain.TypePart) bool { return tp.Type == typ }); ok {
			s.set(c+1+i, row, toFloat(tp.TotalShare), st.percentBold)
		}
	}
	if parts.TotalRUB.IsPositive() {
		s.set(totalCol, row, 1.0, st.percentBold)
	}

	n := len(parts.Currencies)
	if n == 0 || s.err != nil {
		return
	}
	first, last := partsStartRow+1, partsStartRow+n

	s.err = s.f.AddChart(s.name, cellName(c, row+2, false), &excelize.Chart{
		Type: excelize.Pie,
		Series: []excelize.ChartSeries{{
			Name:       s.ref(totalCol, partsStartRow, totalCol, partsStartRow),
			Categories: s.ref(c, first, c, last),
			Values:     s.ref(totalCol, first, totalCol, last),
		}},
		Title:    []excelize.RichTextRun{{Text: "Assets by currency"}},
		PlotArea: excelize.ChartPlotArea{ShowCatName: true, ShowVal: true},
	})
	if s.err != nil {
		return
	}

	series := make([]excelize.ChartSeries, 0, n)
	for r := first; r <= last; r++ {
		series = append(series, excelize.ChartSeries{
			Name:       s.ref(c, r, c, r),
			Categories: s.ref(c+1, partsStartRow, c+len(types), partsStartRow),
			Values:     s.ref(c+1, r, c+len(types), r),
		})
	}
	s.err = s.f.AddChart(s.name, cellName(c, row+18, false), &excelize.Chart{
		Type:   excelize.ColStacked,
		Series: series,
		Title:  []excelize.RichTextRun{{Text: "Assets by class and currency"}},
	})
}
