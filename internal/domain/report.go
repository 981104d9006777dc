package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PartEntry is the value held in one (currency, asset class) cell.
type PartEntry struct {
	Currency      string          `json:"currency"`
	Type          InstrumentType  `json:"type"`
	Value         decimal.Decimal `json:"value"`
	ValueRUB      decimal.Decimal `json:"valueRub"`
	CurrencyShare decimal.Decimal `json:"currencyShare"`
	TotalShare    decimal.Decimal `json:"totalShare"`
}

// CurrencyPart groups part entries of one currency.
type CurrencyPart struct {
	Currency   string          `json:"currency"`
	Value      decimal.Decimal `json:"value"`
	ValueRUB   decimal.Decimal `json:"valueRub"`
	TotalShare decimal.Decimal `json:"totalShare"`
	Entries    []PartEntry     `json:"entries"`
}

// TypePart is the subtotal of one asset class across currencies.
type TypePart struct {
	Type       InstrumentType  `json:"type"`
	ValueRUB   decimal.Decimal `json:"valueRub"`
	TotalShare decimal.Decimal `json:"totalShare"`
}

// Parts is the currency / asset-class composition of a portfolio. Shares are fractions of 1.
type Parts struct {
	Currencies []CurrencyPart  `json:"currencies"`
	Types      []TypePart      `json:"types"`
	TotalRUB   decimal.Decimal `json:"totalRub"`
}

// ProfitLoss splits position gains into gross profit and gross loss before netting.
type ProfitLoss struct {
	Profit    decimal.Decimal `json:"profit"`
	ProfitTax decimal.Decimal `json:"profitTax"`
	Loss      decimal.Decimal `json:"loss"`
	LossTax   decimal.Decimal `json:"lossTax"`
}

// InvestingPeriod is a calendar difference between two dates.
type InvestingPeriod struct {
	Years  int `json:"years"`
	Months int `json:"months"`
	Days   int `json:"days"`
}

func (p InvestingPeriod) String() string {
	return fmt.Sprintf("%dy %dm %dd", p.Years, p.Months, p.Days)
}

// IISYear is one calendar year of the tax-advantaged deduction schedule.
type IISYear struct {
	Year      int             `json:"year"`
	PayIn     decimal.Decimal `json:"payIn"`
	Base      decimal.Decimal `json:"base"`
	Deduction decimal.Decimal `json:"deduction"`
}

// IISDeduction is the deduction schedule. Applicable is false for ordinary accounts.
type IISDeduction struct {
	Applicable bool            `json:"applicable"`
	Years      []IISYear       `json:"years"`
	Total      decimal.Decimal `json:"total"`
}

// DividendRow is one coupon or dividend payment with the tax withheld on the same day.
// Tax is nil when no withholding was found.
type DividendRow struct {
	Ticker   string           `json:"ticker"`
	Date     time.Time        `json:"date"`
	Category Category         `json:"category"`
	Currency string           `json:"currency"`
	Value    decimal.Decimal  `json:"value"`
	Tax      *decimal.Decimal `json:"tax,omitempty"`
	NetRUB   decimal.Decimal  `json:"netRub"`
}

// DividendYear groups coupon and dividend rows of one calendar year.
type DividendYear struct {
	Year  int             `json:"year"`
	Rows  []DividendRow   `json:"rows"`
	Total decimal.Decimal `json:"total"`
}

// Statistics is the headline block of a report. XIRR is a fraction; nil means undefined.
type Statistics struct {
	InvestingPeriod InvestingPeriod `json:"investingPeriod"`
	PayInPayOut     decimal.Decimal `json:"payInPayOut"`
	Commissions     decimal.Decimal `json:"commissions"`
	Taxes           decimal.Decimal `json:"taxes"`
	CashRUB         decimal.Decimal `json:"cashRub"`
	MarketValueRUB  decimal.Decimal `json:"marketValueRub"`
	CBValueRUB      decimal.Decimal `json:"cbValueRub"`
	SumBuyRUB       decimal.Decimal `json:"sumBuyRub"`
	ExpectedTax     decimal.Decimal `json:"expectedTax"`
	CleanPortfolio  decimal.Decimal `json:"cleanPortfolio"`
	Profit          decimal.Decimal `json:"profit"`
	AveragePercent  decimal.Decimal `json:"averagePercent"`
	DividendSalary  decimal.Decimal `json:"dividendSalary"`
	XIRR            *float64        `json:"xirr,omitempty"`
}

// Report is the complete derived result for one account on one date.
type Report struct {
	Account        Account                      `json:"account"`
	Title          string                       `json:"title"`
	Date           time.Time                    `json:"date"`
	StartDate      time.Time                    `json:"startDate"`
	Positions      []ValuedPosition             `json:"positions"`
	Entries        []LedgerEntry                `json:"entries"`
	CategoryTotals map[Category]decimal.Decimal `json:"categoryTotals"`
	Cash           []CashBalance                `json:"cash"`
	CBRates        map[string]decimal.Decimal   `json:"cbRates"`
	MarketRates    map[string]decimal.Decimal   `json:"marketRates"`
	Parts          Parts                        `json:"parts"`
	ProfitLoss     ProfitLoss                   `json:"profitLoss"`
	IIS            IISDeduction                 `json:"iis"`
	Dividends      []DividendYear               `json:"dividends"`
	Statistics     Statistics                   `json:"statistics"`
	Warnings       []string                     `json:"warnings,omitempty"`
}
