package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/mtlprog/tinkreport/internal/domain"
)

const (
	fmtPercent  = 10 // 0.00%
	fmtDateTime = "yyyy-mm-dd hh:mm:ss"
	fmtNumber   = "# ### ##0.00"
	fmtChange   = "0.00"
)

type styles struct {
	center      int
	right       int
	left        int
	boldCenter  int
	boldRight   int
	boldLeft    int
	small       int
	number      int
	dateTime    int
	percent     int
	percentBold int
	gain        int
	loss        int
	flat        int
	canceled    int
	money       map[string]int
	moneyBold   map[string]int
	moneyTotal  map[string]int
}

func newStyles(f *excelize.File) (*styles, error) {
	var firstErr error
	add := func(s *excelize.Style) int {
		if firstErr != nil {
			return 0
		}
		id, err := f.NewStyle(s)
		if err != nil {
			firstErr = err
		}
		return id
	}
	custom := func(format string) *string { return &format }
	align := func(h string) *excelize.Alignment {
		return &excelize.Alignment{Horizontal: h, Vertical: "center"}
	}
	bold := &excelize.Font{Bold: true}
	topBorder := []excelize.Border{{Type: "top", Color: "#000000", Style: 1}}

	st := &styles{
		center:      add(&excelize.Style{Alignment: align("center")}),
		right:       add(&excelize.Style{Alignment: align("right")}),
		left:        add(&excelize.Style{Alignment: align("left")}),
		boldCenter:  add(&excelize.Style{Alignment: align("center"), Font: bold}),
		boldRight:   add(&excelize.Style{Alignment: align("right"), Font: bold}),
		boldLeft:    add(&excelize.Style{Alignment: align("left"), Font: bold}),
		small:       add(&excelize.Style{Alignment: align("left"), Font: &excelize.Font{Size: 9}}),
		number:      add(&excelize.Style{Alignment: align("right"), CustomNumFmt: custom(fmtNumber)}),
		dateTime:    add(&excelize.Style{Alignment: align("center"), CustomNumFmt: custom(fmtDateTime)}),
		percent:     add(&excelize.Style{NumFmt: fmtPercent, Font: &excelize.Font{Color: "#008000"}}),
		percentBold: add(&excelize.Style{NumFmt: fmtPercent, Alignment: align("center"), Font: &excelize.Font{Bold: true, Color: "#008000"}}),
		gain:        add(&excelize.Style{CustomNumFmt: custom(fmtChange), Font: &excelize.Font{Color: "#008000"}}),
		loss:        add(&excelize.Style{CustomNumFmt: custom(fmtChange), Font: &excelize.Font{Color: "#FF0000"}}),
		flat:        add(&excelize.Style{CustomNumFmt: custom(fmtChange)}),
		canceled:    add(&excelize.Style{Font: &excelize.Font{Italic: true, Color: "#808080"}}),
		money:       map[string]int{},
		moneyBold:   map[string]int{},
		moneyTotal:  map[string]int{},
	}

	for _, c := range domain.Currencies {
		st.money[c.Code] = add(&excelize.Style{Alignment: align("right"), CustomNumFmt: custom(c.NumFormat)})
		st.moneyBold[c.Code] = add(&excelize.Style{Alignment: align("right"), Font: bold, CustomNumFmt: custom(c.NumFormat)})
		st.moneyTotal[c.Code] = add(&excelize.Style{
			Alignment: align("right"), Font: bold, CustomNumFmt: custom(c.NumFormat), Border: topBorder,
		})
	}

	if firstErr != nil {
		return nil, fmt.Errorf("adding style: %w", firstErr)
	}
	return st, nil
}

// moneyStyle returns the number format of currency, falling back to a plain right alignment.
func (st *styles) moneyStyle(currency string) int {
	if id, ok := st.money[currency]; ok {
		return id
	}
	return st.right
}

func (st *styles) rub() int {
	return st.money[domain.ReportingCurrency]
}

// change picks a colored format by the sign of a percent change.
func (st *styles) change(sign int) int {
	switch {
	case sign > 0:
		return st.gain
	case sign < 0:
		return st.loss
	default:
		return st.flat
	}
}
