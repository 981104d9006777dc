package rates

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/tinkreport/internal/domain"
)

// PriceSource returns the current price of an exchange instrument.
type PriceSource interface {
	CurrentPrice(ctx context.Context, figi string) (decimal.Decimal, error)
}

// MarketRates returns today's trading rate of every supported currency from its exchange
// instrument. A currency without a price falls back to its central-bank rate with a warning.
func MarketRates(ctx context.Context, prices PriceSource, cbRates map[string]decimal.Decimal) (map[string]decimal.Decimal, []string) {
	result := map[string]decimal.Decimal{domain.ReportingCurrency: decimal.NewFromInt(1)}
	var warnings []string

	for _, c := range domain.Currencies {
		if c.FIGI == "" {
			continue
		}
		price, err := prices.CurrentPrice(ctx, c.FIGI)
		if err == nil && price.IsPositive() {
			result[c.Code] = price
			continue
		}

		fallback, ok := cbRates[c.Code]
		if !ok {
			continue
		}
		w := fmt.Sprintf("no market rate for %s, using central bank rate %s", c.Code, fallback)
		if err != nil {
			w = fmt.Sprintf("%s: %v", w, err)
		}
		slog.Warn(w)
		warnings = append(warnings, w)
		result[c.Code] = fallback
	}

	return result, warnings
}
