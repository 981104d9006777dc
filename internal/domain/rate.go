package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is the central-bank rate of one currency to the reporting currency on a date.
type ExchangeRate struct {
	Date     time.Time       `json:"date"`
	Currency string          `json:"currency"`
	Rate     decimal.Decimal `json:"rate"`
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MSK is the exchange time zone; operation dates are bucketed into calendar days in it.
var MSK = time.FixedZone("MSK", 3*60*60)
