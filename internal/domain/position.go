package domain

import (
	"github.com/shopspring/decimal"
)

// Position is a holding as reported by the gateway.
// AveragePrice is in Currency and may be zero when the broker has no purchase data.
type Position struct {
	FIGI           string          `json:"figi"`
	InstrumentType InstrumentType  `json:"instrumentType"`
	Quantity       decimal.Decimal `json:"quantity"`
	AveragePrice   decimal.Decimal `json:"averagePrice"`
	Currency       string          `json:"currency"`
	ExpectedYield  decimal.Decimal `json:"expectedYield"`
	CurrentNKD     decimal.Decimal `json:"currentNkd"`
}

// CashBalance is free money on the account in one currency.
type CashBalance struct {
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

// ValuedPosition is a position with all derived figures.
// CBValueRUB is meaningful only when UnknownCurrency is false.
type ValuedPosition struct {
	Position
	Instrument      Instrument      `json:"instrument"`
	MarketPrice     decimal.Decimal `json:"marketPrice"`
	MarketCost      decimal.Decimal `json:"marketCost"`
	PercentChange   decimal.Decimal `json:"percentChange"`
	MarketRate      decimal.Decimal `json:"marketRate"`
	CBRate          decimal.Decimal `json:"cbRate"`
	MarketValueRUB  decimal.Decimal `json:"marketValueRub"`
	CBValueRUB      decimal.Decimal `json:"cbValueRub"`
	UnknownCurrency bool            `json:"unknownCurrency"`
	SumBuy          decimal.Decimal `json:"sumBuy"`
	AvgBuyPriceRUB  decimal.Decimal `json:"avgBuyPriceRub"`
	SumBuyRUB       decimal.Decimal `json:"sumBuyRub"`
	Gain            decimal.Decimal `json:"gain"`
	TaxBase         decimal.Decimal `json:"taxBase"`
	ExpectedTax     decimal.Decimal `json:"expectedTax"`
}
