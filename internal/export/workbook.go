// Package export renders reports into XLSX workbooks and publishes summaries to Google Sheets.
package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/mtlprog/tinkreport/internal/domain"
)

const (
	sheetPortfolio  = "Portfolio"
	sheetOperations = "Operations"
	sheetDividends  = "Coupons and Dividends"
	sheetIIS        = "IIS Deduction"
	sheetParts      = "Parts"
)

// XLSXRenderer writes a report as a workbook with one sheet per report section.
type XLSXRenderer struct {
	taxRate decimal.Decimal
}

// NewXLSXRenderer creates a renderer. taxRate is only used in the column explanations.
func NewXLSXRenderer(taxRate decimal.Decimal) *XLSXRenderer {
	return &XLSXRenderer{taxRate: taxRate}
}

// Render writes rep to path, creating the parent directory when needed.
func (r *XLSXRenderer) Render(rep domain.Report, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	st, err := newStyles(f)
	if err != nil {
		return fmt.Errorf("creating styles: %w", err)
	}

	if err := f.SetSheetName("Sheet1", sheetPortfolio); err != nil {
		return fmt.Errorf("naming portfolio sheet: %w", err)
	}
	for _, name := range []string{sheetOperations, sheetDividends, sheetIIS, sheetParts} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("adding sheet %s: %w", name, err)
		}
	}

	writers := []struct {
		name  string
		write func(*excelize.File, *styles, domain.Report) error
	}{
		{sheetPortfolio, r.writePortfolio},
		{sheetOperations, writeOperations},
		{sheetDividends, writeDividends},
		{sheetIIS, writeIIS},
		{sheetParts, writeParts},
	}
	for _, w := range writers {
		if err := w.write(f, st, rep); err != nil {
			return fmt.Errorf("writing %s sheet: %w", w.name, err)
		}
	}
	f.SetActiveSheet(0)

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}

	slog.Debug("XLSXRenderer: workbook saved", "path", path, "account", rep.Account.ID)
	return nil
}

// sheet writes cells by 1-based column and row and keeps the first error.
type sheet struct {
	f    *excelize.File
	name string
	err  error
}

func newSheet(f *excelize.File, name string) *sheet {
	return &sheet{f: f, name: name}
}

func (s *sheet) set(col, row int, value any, style int) {
	if s.err != nil {
		return
	}
	cell := cellName(col, row, false)
	if s.err = s.f.SetCellValue(s.name, cell, value); s.err != nil {
		return
	}
	if style != 0 {
		s.err = s.f.SetCellStyle(s.name, cell, cell, style)
	}
}

func (s *sheet) formula(col, row int, formula string, style int) {
	if s.err != nil {
		return
	}
	cell := cellName(col, row, false)
	if s.err = s.f.SetCellFormula(s.name, cell, formula); s.err != nil {
		return
	}
	if style != 0 {
		s.err = s.f.SetCellStyle(s.name, cell, cell, style)
	}
}

func (s *sheet) merge(col1, row1, col2, row2 int, value any, style int) {
	s.set(col1, row1, value, style)
	if s.err != nil {
		return
	}
	s.err = s.f.MergeCell(s.name, cellName(col1, row1, false), cellName(col2, row2, false))
}

func (s *sheet) width(col1, col2 int, w float64) {
	if s.err != nil {
		return
	}
	s.err = s.f.SetColWidth(s.name, columnName(col1), columnName(col2), w)
}

func (s *sheet) autoFilter(col1, row1, col2, row2 int) {
	if s.err != nil || row2 < row1 {
		return
	}
	s.err = s.f.AutoFilter(s.name, cellName(col1, row1, false)+":"+cellName(col2, row2, false), nil)
}

// ref returns an absolute range reference like Parts!$J$8:$J$10.
func (s *sheet) ref(col1, row1, col2, row2 int) string {
	return fmt.Sprintf("'%s'!%s:%s", s.name, cellName(col1, row1, true), cellName(col2, row2, true))
}

func cellName(col, row int, abs bool) string {
	name, err := excelize.CoordinatesToCellName(col, row, abs)
	if err != nil {
		return "A1"
	}
	return name
}

func columnName(col int) string {
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return "A"
	}
	return name
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// moneyCell returns the value to print for an amount in currency; unsupported currencies
// get the unknown currency marker instead of a number.
func moneyCell(d decimal.Decimal, currency string) any {
	if !domain.IsSupportedCurrency(currency) {
		return domain.UnknownCurrency
	}
	return toFloat(d)
}
