package tinvest

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LastPrice returns the raw last trade quote. Bond and futures quotes are not normalized.
func (c *Client) LastPrice(ctx context.Context, figi string) (decimal.Decimal, error) {
	var resp lastPricesResponse
	if err := c.postJSON(ctx, "MarketDataService/GetLastPrices", lastPricesRequest{FIGI: []string{figi}}, &resp); err != nil {
		return decimal.Zero, fmt.Errorf("fetching last price for %s: %w", figi, err)
	}
	for _, p := range resp.LastPrices {
		if p.FIGI == figi && !p.Time.IsZero() {
			return p.Price.Decimal(), nil
		}
	}
	return decimal.Zero, fmt.Errorf("last price for %s: %w", figi, ErrNotFound)
}

// DayPrice returns the raw mid price (high + low) / 2 of the daily candle starting at date.
// It returns ErrNotFound when the instrument did not trade that day.
func (c *Client) DayPrice(ctx context.Context, figi string, date time.Time) (decimal.Decimal, error) {
	from := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	req := candlesRequest{
		FIGI:     figi,
		From:     from,
		To:       from.AddDate(0, 0, 1),
		Interval: "CANDLE_INTERVAL_DAY",
	}

	var resp candlesResponse
	if err := c.postJSON(ctx, "MarketDataService/GetCandles", req, &resp); err != nil {
		return decimal.Zero, fmt.Errorf("fetching candles for %s on %s: %w", figi, from.Format(time.DateOnly), err)
	}
	if len(resp.Candles) == 0 {
		return decimal.Zero, fmt.Errorf("candle for %s on %s: %w", figi, from.Format(time.DateOnly), ErrNotFound)
	}

	first := resp.Candles[0]
	return first.High.Decimal().Add(first.Low.Decimal()).Div(decimal.NewFromInt(2)), nil
}
