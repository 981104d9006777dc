package tinvest

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/tinkreport/internal/domain"
)

// Quotation is the gateway's fixed-point number. Units are int64 and travel as JSON strings.
type Quotation struct {
	Units int64 `json:"units,string"`
	Nano  int32 `json:"nano"`
}

// Decimal converts the quotation.
func (q Quotation) Decimal() decimal.Decimal {
	return domain.FromQuotation(q.Units, q.Nano)
}

// MoneyValue is a quotation with a lowercase currency code.
type MoneyValue struct {
	Currency string `json:"currency"`
	Units    int64  `json:"units,string"`
	Nano     int32  `json:"nano"`
}

// Decimal converts the amount.
func (m MoneyValue) Decimal() decimal.Decimal {
	return domain.FromQuotation(m.Units, m.Nano)
}

// Code returns the upper-case currency code.
func (m MoneyValue) Code() string {
	return strings.ToUpper(m.Currency)
}

type accountsResponse struct {
	Accounts []account `json:"accounts"`
}

type account struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Name       string    `json:"name"`
	Status     string    `json:"status"`
	OpenedDate time.Time `json:"openedDate"`
	ClosedDate time.Time `json:"closedDate"`
}

type accountRequest struct {
	AccountID string `json:"accountId"`
	Currency  string `json:"currency,omitempty"`
}

type portfolioResponse struct {
	Positions []portfolioPosition `json:"positions"`
}

type portfolioPosition struct {
	FIGI                 string     `json:"figi"`
	InstrumentType       string     `json:"instrumentType"`
	Quantity             Quotation  `json:"quantity"`
	AveragePositionPrice MoneyValue `json:"averagePositionPrice"`
	ExpectedYield        Quotation  `json:"expectedYield"`
	CurrentNKD           MoneyValue `json:"currentNkd"`
	CurrentPrice         MoneyValue `json:"currentPrice"`
}

type positionsResponse struct {
	Money   []MoneyValue `json:"money"`
	Blocked []MoneyValue `json:"blocked"`
}

type operationsRequest struct {
	AccountID          string    `json:"accountId"`
	From               time.Time `json:"from"`
	To                 time.Time `json:"to"`
	Cursor             string    `json:"cursor,omitempty"`
	Limit              int       `json:"limit"`
	WithoutCommissions bool      `json:"withoutCommissions"`
	WithoutTrades      bool      `json:"withoutTrades"`
	WithoutOvernights  bool      `json:"withoutOvernights"`
}

type operationsResponse struct {
	HasNext    bool            `json:"hasNext"`
	NextCursor string          `json:"nextCursor"`
	Items      []operationItem `json:"items"`
}

type operationItem struct {
	ID                string     `json:"id"`
	ParentOperationID string     `json:"parentOperationId"`
	Name              string     `json:"name"`
	Date              time.Time  `json:"date"`
	Type              string     `json:"type"`
	Description       string     `json:"description"`
	State             string     `json:"state"`
	FIGI              string     `json:"figi"`
	InstrumentType    string     `json:"instrumentType"`
	Payment           MoneyValue `json:"payment"`
	Price             MoneyValue `json:"price"`
	Quantity          int64      `json:"quantity,string"`
	QuantityRest      int64      `json:"quantityRest,string"`
}

type instrumentRequest struct {
	IDType string `json:"idType"`
	ID     string `json:"id"`
}

type instrumentResponse struct {
	Instrument instrument `json:"instrument"`
}

type instrument struct {
	FIGI              string    `json:"figi"`
	Ticker            string    `json:"ticker"`
	ISIN              string    `json:"isin"`
	Lot               int64     `json:"lot"`
	Currency          string    `json:"currency"`
	Name              string    `json:"name"`
	InstrumentType    string    `json:"instrumentType"`
	MinPriceIncrement Quotation `json:"minPriceIncrement"`
}

type bondResponse struct {
	Instrument struct {
		Nominal MoneyValue `json:"nominal"`
	} `json:"instrument"`
}

type futuresMarginRequest struct {
	FIGI string `json:"figi"`
}

type futuresMarginResponse struct {
	MinPriceIncrement       Quotation `json:"minPriceIncrement"`
	MinPriceIncrementAmount Quotation `json:"minPriceIncrementAmount"`
}

type lastPricesRequest struct {
	FIGI []string `json:"figi"`
}

type lastPricesResponse struct {
	LastPrices []struct {
		FIGI  string    `json:"figi"`
		Price Quotation `json:"price"`
		Time  time.Time `json:"time"`
	} `json:"lastPrices"`
}

type candlesRequest struct {
	FIGI     string    `json:"figi"`
	From     time.Time `json:"from"`
	To       time.Time `json:"to"`
	Interval string    `json:"interval"`
}

type candlesResponse struct {
	Candles []struct {
		High Quotation `json:"high"`
		Low  Quotation `json:"low"`
		Time time.Time `json:"time"`
	} `json:"candles"`
}
