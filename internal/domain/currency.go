package domain

import (
	"github.com/samber/lo"
)

// ReportingCurrency is the currency all derived figures are expressed in.
const ReportingCurrency = "RUB"

// UnknownCurrency marks a value that could not be converted to the reporting currency.
const UnknownCurrency = "unknown currency"

// Currency describes a supported currency and the exchange instrument that trades it.
type Currency struct {
	Code      string
	Name      string
	NumFormat string
	FIGI      string
	AltFIGIs  []string
}

// Currencies is the registry of supported currencies. RUB has no exchange instrument.
var Currencies = []Currency{
	{Code: "RUB", Name: "Российский рубль", NumFormat: `#,##0.00 [$₽-ru-RU]`},
	{Code: "USD", Name: "Доллар США", NumFormat: `#,##0.00 [$$-409]`, FIGI: "BBG0013HGFT4", AltFIGIs: []string{"USD000UTSTOM"}},
	{Code: "EUR", Name: "Евро", NumFormat: `#,##0.00 [$€-x-euro1]`, FIGI: "BBG0013HJJ31"},
	{Code: "CHF", Name: "Швейцарский франк", NumFormat: `#,##0.00 [$CHF-fr-CH]`, FIGI: "BBG0013HQ5K4"},
	{Code: "HKD", Name: "Гонконгский доллар", NumFormat: `#,##0.00 [$HKD]`, FIGI: "TCS0013HSW87"},
	{Code: "TRY", Name: "Турецкая лира", NumFormat: `#,##0.00 [$TRY]`, FIGI: "BBG0013J12N1"},
}

// SupportedCurrencies returns the codes of all registered currencies.
func SupportedCurrencies() []string {
	return lo.Map(Currencies, func(c Currency, _ int) string { return c.Code })
}

// ForeignCurrencies returns supported currencies other than the reporting currency.
func ForeignCurrencies() []string {
	return lo.Without(SupportedCurrencies(), ReportingCurrency)
}

// IsSupportedCurrency reports whether code is in the registry.
func IsSupportedCurrency(code string) bool {
	_, ok := CurrencyByCode(code)
	return ok
}

// CurrencyByCode looks up a currency by its ISO code.
func CurrencyByCode(code string) (Currency, bool) {
	return lo.Find(Currencies, func(c Currency) bool { return c.Code == code })
}

// CurrencyByFIGI resolves the currency traded by an exchange instrument, including alternative identifiers.
func CurrencyByFIGI(figi string) (Currency, bool) {
	return lo.Find(Currencies, func(c Currency) bool {
		return c.FIGI != "" && (c.FIGI == figi || lo.Contains(c.AltFIGIs, figi))
	})
}
