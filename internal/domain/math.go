package domain

import (
	"github.com/shopspring/decimal"
)

const (
	moneyPrecision = 2
	nanoPerUnit    = 1_000_000_000
)

// SafeParse parses a string into a decimal, returning zero for invalid or empty input.
func SafeParse(value string) decimal.Decimal {
	if value == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FromQuotation builds a decimal from the broker's units + nano representation.
func FromQuotation(units int64, nano int32) decimal.Decimal {
	return decimal.NewFromInt(units).Add(decimal.New(int64(nano), 0).Div(decimal.NewFromInt(nanoPerUnit)))
}

// RoundMoney rounds to two decimal places.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPrecision)
}

// DivOrZero divides a by b, returning zero when b is zero.
func DivOrZero(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.Div(b)
}
