package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OperationState is the execution status of a ledger entry.
type OperationState string

const (
	OperationStateNA       OperationState = "NA"
	OperationStateDone     OperationState = "Done"
	OperationStateCanceled OperationState = "Canceled"
)

// Category is the semantic class of a ledger operation.
type Category string

const (
	CategoryBuy               Category = "Buy"
	CategoryBuyCard           Category = "BuyCard"
	CategorySell              Category = "Sell"
	CategoryPayIn             Category = "PayIn"
	CategoryPayOut            Category = "PayOut"
	CategoryCoupon            Category = "Coupon"
	CategoryDividend          Category = "Dividend"
	CategoryTax               Category = "Tax"
	CategoryTaxCoupon         Category = "TaxCoupon"
	CategoryTaxDividend       Category = "TaxDividend"
	CategoryBrokerCommission  Category = "BrokerCommission"
	CategoryServiceCommission Category = "ServiceCommission"
	CategoryRepayment         Category = "Repayment"
	CategoryOther             Category = "Other"
	CategoryUnknown           Category = "Unknown"
)

// Categories lists every category in report order.
var Categories = []Category{
	CategoryPayIn, CategoryPayOut, CategoryBuy, CategoryBuyCard, CategorySell,
	CategoryCoupon, CategoryDividend, CategoryTax, CategoryTaxCoupon, CategoryTaxDividend,
	CategoryBrokerCommission, CategoryServiceCommission, CategoryRepayment, CategoryOther, CategoryUnknown,
}

// IsBuy reports whether the category adds units to a position.
func (c Category) IsBuy() bool {
	return c == CategoryBuy || c == CategoryBuyCard
}

// IsSell reports whether the category removes units from a position.
func (c Category) IsSell() bool {
	return c == CategorySell
}

// Operation is one immutable ledger entry.
// Type holds the gateway's native operation type code.
type Operation struct {
	ID             string          `json:"id"`
	ParentID       string          `json:"parentId,omitempty"`
	Type           string          `json:"type"`
	Description    string          `json:"description"`
	Date           time.Time       `json:"date"`
	Currency       string          `json:"currency"`
	Payment        decimal.Decimal `json:"payment"`
	Price          decimal.Decimal `json:"price"`
	Quantity       int64           `json:"quantity"`
	FIGI           string          `json:"figi,omitempty"`
	Ticker         string          `json:"ticker,omitempty"`
	InstrumentType InstrumentType  `json:"instrumentType,omitempty"`
	State          OperationState  `json:"state"`
}

// Canceled reports whether the operation was canceled and must be excluded from sums.
func (o Operation) Canceled() bool {
	return o.State == OperationStateCanceled
}

// LedgerEntry is a classified operation with its payment converted at the rate of its own date.
// Converted is false when the currency is unsupported; PaymentRUB is then zero.
type LedgerEntry struct {
	Operation
	Category   Category        `json:"category"`
	PaymentRUB decimal.Decimal `json:"paymentRub"`
	Converted  bool            `json:"converted"`
}
