// Package ledger classifies broker operations and totals them in the reporting currency.
package ledger

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/mtlprog/tinkreport/internal/domain"
)

// operationCategories maps broker operation type codes to categories.
// Codes that are known but carry no reporting meaning map to CategoryOther.
var operationCategories = map[string]domain.Category{
	"OPERATION_TYPE_INPUT":             domain.CategoryPayIn,
	"OPERATION_TYPE_INPUT_SECURITIES":  domain.CategoryPayIn,
	"OPERATION_TYPE_OUTPUT":            domain.CategoryPayOut,
	"OPERATION_TYPE_DIV_EXT":           domain.CategoryPayOut,
	"OPERATION_TYPE_OUTPUT_SECURITIES": domain.CategoryOther,

	"OPERATION_TYPE_BUY":          domain.CategoryBuy,
	"OPERATION_TYPE_BUY_MARGIN":   domain.CategoryBuy,
	"OPERATION_TYPE_DELIVERY_BUY": domain.CategoryBuy,
	"OPERATION_TYPE_BUY_CARD":     domain.CategoryBuyCard,

	"OPERATION_TYPE_SELL":          domain.CategorySell,
	"OPERATION_TYPE_SELL_CARD":     domain.CategorySell,
	"OPERATION_TYPE_SELL_MARGIN":   domain.CategorySell,
	"OPERATION_TYPE_DELIVERY_SELL": domain.CategorySell,

	"OPERATION_TYPE_COUPON":   domain.CategoryCoupon,
	"OPERATION_TYPE_DIVIDEND": domain.CategoryDividend,

	"OPERATION_TYPE_BOND_TAX":                 domain.CategoryTaxCoupon,
	"OPERATION_TYPE_BOND_TAX_PROGRESSIVE":     domain.CategoryTaxCoupon,
	"OPERATION_TYPE_TAX_CORRECTION_COUPON":    domain.CategoryTaxCoupon,
	"OPERATION_TYPE_DIVIDEND_TAX":             domain.CategoryTaxDividend,
	"OPERATION_TYPE_DIVIDEND_TAX_PROGRESSIVE": domain.CategoryTaxDividend,

	"OPERATION_TYPE_TAX":                         domain.CategoryTax,
	"OPERATION_TYPE_TAX_PROGRESSIVE":             domain.CategoryTax,
	"OPERATION_TYPE_TAX_CORRECTION":              domain.CategoryTax,
	"OPERATION_TYPE_TAX_CORRECTION_PROGRESSIVE":  domain.CategoryTax,
	"OPERATION_TYPE_BENEFIT_TAX":                 domain.CategoryTax,
	"OPERATION_TYPE_BENEFIT_TAX_PROGRESSIVE":     domain.CategoryTax,
	"OPERATION_TYPE_TAX_REPO":                    domain.CategoryTax,
	"OPERATION_TYPE_TAX_REPO_PROGRESSIVE":        domain.CategoryTax,
	"OPERATION_TYPE_TAX_REPO_HOLD":               domain.CategoryTax,
	"OPERATION_TYPE_TAX_REPO_HOLD_PROGRESSIVE":   domain.CategoryTax,
	"OPERATION_TYPE_TAX_REPO_REFUND":             domain.CategoryTax,
	"OPERATION_TYPE_TAX_REPO_REFUND_PROGRESSIVE": domain.CategoryTax,

	"OPERATION_TYPE_BROKER_FEE":  domain.CategoryBrokerCommission,
	"OPERATION_TYPE_SERVICE_FEE": domain.CategoryServiceCommission,
	"OPERATION_TYPE_MARGIN_FEE":  domain.CategoryServiceCommission,
	"OPERATION_TYPE_SUCCESS_FEE": domain.CategoryServiceCommission,
	"OPERATION_TYPE_TRACK_MFEE":  domain.CategoryServiceCommission,
	"OPERATION_TYPE_TRACK_PFEE":  domain.CategoryServiceCommission,

	"OPERATION_TYPE_BOND_REPAYMENT":      domain.CategoryRepayment,
	"OPERATION_TYPE_BOND_REPAYMENT_FULL": domain.CategoryRepayment,

	"OPERATION_TYPE_OVERNIGHT":             domain.CategoryOther,
	"OPERATION_TYPE_DIVIDEND_TRANSFER":     domain.CategoryOther,
	"OPERATION_TYPE_ACCRUING_VARMARGIN":    domain.CategoryOther,
	"OPERATION_TYPE_WRITING_OFF_VARMARGIN": domain.CategoryOther,
}

// descriptionCategories classifies operations the broker delivers without a type code,
// keyed by the broker's description text.
var descriptionCategories = map[string]domain.Category{
	"Пополнение брокерского счёта": domain.CategoryPayIn,
	"Завод денежных средств":       domain.CategoryPayIn,
	"Вывод денежных средств":       domain.CategoryPayOut,
	"Покупка ЦБ":                   domain.CategoryBuy,
	"Покупка ЦБ с карты":           domain.CategoryBuyCard,
	"Продажа ЦБ":                   domain.CategorySell,
	"Продажа ЦБ с карты":           domain.CategorySell,
	"Выплата купонов":              domain.CategoryCoupon,
	"Выплата дивидендов":           domain.CategoryDividend,
	"Выплата дивидендов на карту":  domain.CategoryDividend,

	"Удержание налога по купонам":    domain.CategoryTaxCoupon,
	"Удержание налога по дивидендам": domain.CategoryTaxDividend,
	"Удержание налога":               domain.CategoryTax,
	"Корректировка налога":           domain.CategoryTax,

	"Удержание комиссии за операцию":                       domain.CategoryBrokerCommission,
	"Удержание комиссии за обслуживание брокерского счёта": domain.CategoryServiceCommission,
	"Удержание комиссии за непокрытую позицию":             domain.CategoryServiceCommission,

	"Частичное погашение облигаций": domain.CategoryRepayment,
	"Полное погашение облигаций":    domain.CategoryRepayment,
}

// Classifier maps operations to categories by type code, falling back to the description
// text when the code is unspecified. Unknown operations are logged once each.
type Classifier struct {
	mu     sync.Mutex
	warned map[string]bool
}

// NewClassifier creates a Classifier.
func NewClassifier() *Classifier {
	return &Classifier{warned: make(map[string]bool)}
}

// Category returns the category of op, or CategoryUnknown.
func (c *Classifier) Category(op domain.Operation) domain.Category {
	if cat, ok := operationCategories[op.Type]; ok {
		return cat
	}
	if cat, ok := descriptionCategories[strings.TrimSpace(op.Description)]; ok {
		return cat
	}

	key := op.Type + "|" + op.Description
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.warned[key] {
		c.warned[key] = true
		slog.Warn("unknown operation type", "type", op.Type, "description", op.Description)
	}
	return domain.CategoryUnknown
}
