package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// InstrumentType is the asset class of a tradable instrument.
type InstrumentType string

const (
	InstrumentShare    InstrumentType = "Share"
	InstrumentBond     InstrumentType = "Bond"
	InstrumentEtf      InstrumentType = "Etf"
	InstrumentCurrency InstrumentType = "Currency"
	InstrumentFuture   InstrumentType = "Future"
	InstrumentOther    InstrumentType = "Other"
)

// InstrumentTypes lists asset classes in report order.
var InstrumentTypes = []InstrumentType{
	InstrumentShare, InstrumentBond, InstrumentEtf, InstrumentCurrency, InstrumentFuture, InstrumentOther,
}

// ParseInstrumentType maps a gateway instrument type string ("share", "futures", ...) to an InstrumentType.
func ParseInstrumentType(s string) InstrumentType {
	switch strings.ToLower(s) {
	case "share":
		return InstrumentShare
	case "bond":
		return InstrumentBond
	case "etf":
		return InstrumentEtf
	case "currency":
		return InstrumentCurrency
	case "futures", "future":
		return InstrumentFuture
	default:
		return InstrumentOther
	}
}

// Instrument holds slow-changing instrument metadata.
// Nominal is set for bonds, MinPriceIncrementAmount for futures.
type Instrument struct {
	FIGI                    string          `json:"figi"`
	Ticker                  string          `json:"ticker"`
	Name                    string          `json:"name"`
	Type                    InstrumentType  `json:"type"`
	Currency                string          `json:"currency"`
	Lot                     int64           `json:"lot"`
	MinPriceIncrement       decimal.Decimal `json:"minPriceIncrement"`
	ISIN                    string          `json:"isin"`
	Nominal                 decimal.Decimal `json:"nominal"`
	MinPriceIncrementAmount decimal.Decimal `json:"minPriceIncrementAmount"`
}

// NormalizePrice converts a raw exchange quote into a price in the instrument currency.
// Bond quotes are percent of nominal, futures quotes are in price points.
func (i Instrument) NormalizePrice(raw decimal.Decimal) decimal.Decimal {
	switch i.Type {
	case InstrumentBond:
		if i.Nominal.IsZero() {
			return raw
		}
		return raw.Div(decimal.NewFromInt(100)).Mul(i.Nominal)
	case InstrumentFuture:
		if i.MinPriceIncrement.IsZero() || i.MinPriceIncrementAmount.IsZero() {
			return raw
		}
		return raw.Div(i.MinPriceIncrement).Mul(i.MinPriceIncrementAmount)
	default:
		return raw
	}
}
