package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseInstrumentType(t *testing.T) {
	tests := []struct {
		in   string
		want InstrumentType
	}{
		{"share", InstrumentShare},
		{"bond", InstrumentBond},
		{"etf", InstrumentEtf},
		{"currency", InstrumentCurrency},
		{"futures", InstrumentFuture},
		{"Share", InstrumentShare},
		{"option", InstrumentOther},
		{"", InstrumentOther},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseInstrumentType(tt.in); got != tt.want {
				t.Errorf("ParseInstrumentType(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizePrice(t *testing.T) {
	tests := []struct {
		name  string
		instr Instrument
		raw   string
		want  string
	}{
		{
			name:  "bond percent of nominal",
			instr: Instrument{Type: InstrumentBond, Nominal: decimal.NewFromInt(1000)},
			raw:   "98.5",
			want:  "985",
		},
		{
			name:  "bond without nominal",
			instr: Instrument{Type: InstrumentBond},
			raw:   "98.5",
			want:  "98.5",
		},
		{
			name: "futures points",
			instr: Instrument{
				Type:                    InstrumentFuture,
				MinPriceIncrement:       decimal.RequireFromString("0.01"),
				MinPriceIncrementAmount: decimal.RequireFromString("7.5"),
			},
			raw:  "1.2",
			want: "900",
		},
		{
			name:  "share unchanged",
			instr: Instrument{Type: InstrumentShare},
			raw:   "250.4",
			want:  "250.4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.instr.NormalizePrice(decimal.RequireFromString(tt.raw))
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("NormalizePrice(%s) = %s, want %s", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCurrencyByFIGI(t *testing.T) {
	tests := []struct {
		figi   string
		want   string
		wantOK bool
	}{
		{"BBG0013HGFT4", "USD", true},
		{"USD000UTSTOM", "USD", true},
		{"BBG0013HJJ31", "EUR", true},
		{"TCS0013HSW87", "HKD", true},
		{"BBG004730N88", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.figi, func(t *testing.T) {
			c, ok := CurrencyByFIGI(tt.figi)
			if ok != tt.wantOK {
				t.Fatalf("CurrencyByFIGI(%q) ok = %v, want %v", tt.figi, ok, tt.wantOK)
			}
			if ok && c.Code != tt.want {
				t.Errorf("CurrencyByFIGI(%q) = %q, want %q", tt.figi, c.Code, tt.want)
			}
		})
	}
}

func TestForeignCurrenciesExcludeReporting(t *testing.T) {
	for _, c := range ForeignCurrencies() {
		if c == ReportingCurrency {
			t.Errorf("ForeignCurrencies() contains %s", ReportingCurrency)
		}
	}
	if !IsSupportedCurrency("TRY") {
		t.Error("TRY should be supported")
	}
	if IsSupportedCurrency("JPY") {
		t.Error("JPY should not be supported")
	}
}

func TestInvestingPeriodString(t *testing.T) {
	p := InvestingPeriod{Years: 2, Months: 3, Days: 14}
	if got := p.String(); got != "2y 3m 14d" {
		t.Errorf("String() = %q, want %q", got, "2y 3m 14d")
	}
}
