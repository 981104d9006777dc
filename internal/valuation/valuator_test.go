package valuation

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/tinkreport/internal/domain"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var taxRate = d("0.13")

func shareInput(avg, current, avgRUB string) Input {
	return Input{
		Position: domain.Position{
			FIGI:           "BBG004730N88",
			InstrumentType: domain.InstrumentShare,
			Quantity:       d("10"),
			AveragePrice:   d(avg),
			Currency:       "RUB",
		},
		Instrument:     domain.Instrument{FIGI: "BBG004730N88", Ticker: "SBER", Type: domain.InstrumentShare, Currency: "RUB"},
		CurrentPrice:   d(current),
		MarketRate:     d("1"),
		CBRate:         d("1"),
		CBRateKnown:    true,
		AvgBuyPriceRUB: d(avgRUB),
		BasisKnown:     true,
	}
}

func TestValueShare(t *testing.T) {
	v := NewValuator(taxRate)
	got, warnings := v.Value(shareInput("200", "250", "200"))
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}

	checks := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"MarketPrice", got.MarketPrice, "250"},
		{"MarketCost", got.MarketCost, "2500"},
		{"PercentChange", got.PercentChange, "25"},
		{"MarketValueRUB", got.MarketValueRUB, "2500"},
		{"CBValueRUB", got.CBValueRUB, "2500"},
		{"SumBuy", got.SumBuy, "2000"},
		{"SumBuyRUB", got.SumBuyRUB, "2000"},
		{"Gain", got.Gain, "500"},
		{"TaxBase", got.TaxBase, "500"},
		{"ExpectedTax", got.ExpectedTax, "65"},
	}
	for _, c := range checks {
		if !c.got.Equal(d(c.want)) {
			t.Errorf("%s = %s, want %s", c.name, c.got, c.want)
		}
	}
}

func TestValueBond(t *testing.T) {
	in := Input{
		Position: domain.Position{
			FIGI:          "RU000A0JX0J2",
			Quantity:      d("3"),
			AveragePrice:  d("1001.5"),
			ExpectedYield: d("12.344"),
			Currency:      "RUB",
		},
		Instrument:   domain.Instrument{Ticker: "SU26238RMFS4", Type: domain.InstrumentBond},
		CurrentPrice: d("97.3"),
		MarketRate:   d("1"),
		CBRate:       d("1"),
		CBRateKnown:  true,
		BasisKnown:   true,
	}

	got, _ := NewValuator(taxRate).Value(in)
	// 12.344 + 1001.5*3 = 3016.844 -> 3016.84
	if !got.MarketCost.Equal(d("3016.84")) {
		t.Errorf("MarketCost = %s, want 3016.84", got.MarketCost)
	}
	// 3016.84 / 3 = 1005.6133 -> 1005.61
	if !got.MarketPrice.Equal(d("1005.61")) {
		t.Errorf("MarketPrice = %s, want 1005.61", got.MarketPrice)
	}
}

func TestValueForeignCurrency(t *testing.T) {
	in := shareInput("100", "110", "6500")
	in.Position.Currency = "USD"
	in.MarketRate = d("75.5")
	in.CBRate = d("75")

	got, _ := NewValuator(taxRate).Value(in)
	if !got.MarketValueRUB.Equal(d("83050")) {
		t.Errorf("MarketValueRUB = %s, want 83050", got.MarketValueRUB)
	}
	if !got.CBValueRUB.Equal(d("82500")) {
		t.Errorf("CBValueRUB = %s, want 82500", got.CBValueRUB)
	}
	// 82500 - 65000
	if !got.TaxBase.Equal(d("17500")) {
		t.Errorf("TaxBase = %s, want 17500", got.TaxBase)
	}
}

func TestValueZeroCostBasis(t *testing.T) {
	for _, avg := range []string{"0", "-1"} {
		t.Run(avg, func(t *testing.T) {
			got, warnings := NewValuator(taxRate).Value(shareInput(avg, "250", "999"))
			if len(warnings) == 0 {
				t.Error("expected a warning for missing purchase price")
			}
			for name, v := range map[string]decimal.Decimal{
				"AvgBuyPriceRUB": got.AvgBuyPriceRUB,
				"SumBuyRUB":      got.SumBuyRUB,
				"TaxBase":        got.TaxBase,
				"ExpectedTax":    got.ExpectedTax,
				"PercentChange":  got.PercentChange,
			} {
				if !v.IsZero() {
					t.Errorf("%s = %s, want 0", name, v)
				}
			}
		})
	}
}

func TestValueUnknownCostBasis(t *testing.T) {
	in := shareInput("200", "250", "999")
	in.BasisKnown = false

	got, warnings := NewValuator(taxRate).Value(in)
	if len(warnings) != 1 {
		t.Errorf("warnings = %v, want 1", warnings)
	}
	if !got.CBValueRUB.Equal(d("2500")) {
		t.Errorf("CBValueRUB = %s, want 2500", got.CBValueRUB)
	}
	for name, v := range map[string]decimal.Decimal{
		"AvgBuyPriceRUB": got.AvgBuyPriceRUB,
		"SumBuyRUB":      got.SumBuyRUB,
		"Gain":           got.Gain,
		"TaxBase":        got.TaxBase,
		"ExpectedTax":    got.ExpectedTax,
	} {
		if !v.IsZero() {
			t.Errorf("%s = %s, want 0", name, v)
		}
	}
}

func TestValueTaxBaseNeverNegative(t *testing.T) {
	got, _ := NewValuator(taxRate).Value(shareInput("200", "50", "200"))
	if got.TaxBase.IsNegative() {
		t.Errorf("TaxBase = %s, must not be negative", got.TaxBase)
	}
	if !got.Gain.Equal(d("-1500")) {
		t.Errorf("Gain = %s, want -1500", got.Gain)
	}
	if !got.ExpectedTax.IsZero() {
		t.Errorf("ExpectedTax = %s, want 0", got.ExpectedTax)
	}
}

func TestValueUnknownCurrency(t *testing.T) {
	in := shareInput("100", "110", "100")
	in.Position.Currency = "JPY"
	in.CBRateKnown = false
	in.CBRate = decimal.Zero

	got, warnings := NewValuator(taxRate).Value(in)
	if !got.UnknownCurrency {
		t.Error("UnknownCurrency = false, want true")
	}
	if len(warnings) != 1 {
		t.Errorf("warnings = %v, want 1", warnings)
	}
	if !got.TaxBase.IsZero() || !got.ExpectedTax.IsZero() {
		t.Errorf("tax figures = %s / %s, want zero", got.TaxBase, got.ExpectedTax)
	}
}

func TestValueIdempotent(t *testing.T) {
	v := NewValuator(taxRate)
	in := shareInput("123.45", "150.01", "120.5")
	a, _ := v.Value(in)
	b, _ := v.Value(in)

	pairs := [][2]decimal.Decimal{
		{a.MarketPrice, b.MarketPrice},
		{a.MarketCost, b.MarketCost},
		{a.PercentChange, b.PercentChange},
		{a.CBValueRUB, b.CBValueRUB},
		{a.TaxBase, b.TaxBase},
		{a.ExpectedTax, b.ExpectedTax},
	}
	for i, p := range pairs {
		if p[0].String() != p[1].String() {
			t.Errorf("field %d differs between runs: %s vs %s", i, p[0], p[1])
		}
	}
}
