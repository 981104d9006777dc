package tinvest

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/mtlprog/tinkreport/internal/domain"
)

// rubPositionFIGI is the pseudo-instrument the portfolio reports ruble cash under.
// Ruble cash is taken from Cash instead.
const rubPositionFIGI = "RUB000UTSTOM"

// Portfolio returns the account positions. Currency positions stand for foreign cash.
func (c *Client) Portfolio(ctx context.Context, accountID string) ([]domain.Position, error) {
	var resp portfolioResponse
	req := accountRequest{AccountID: accountID, Currency: "RUB"}
	if err := c.postJSON(ctx, "OperationsService/GetPortfolio", req, &resp); err != nil {
		return nil, fmt.Errorf("fetching portfolio for %s: %w", accountID, err)
	}

	return lo.FilterMap(resp.Positions, func(p portfolioPosition, _ int) (domain.Position, bool) {
		if p.FIGI == rubPositionFIGI {
			return domain.Position{}, false
		}
		currency := p.AveragePositionPrice.Code()
		if currency == "" {
			currency = p.CurrentPrice.Code()
		}
		return domain.Position{
			FIGI:           p.FIGI,
			InstrumentType: domain.ParseInstrumentType(p.InstrumentType),
			Quantity:       p.Quantity.Decimal(),
			AveragePrice:   p.AveragePositionPrice.Decimal(),
			Currency:       currency,
			ExpectedYield:  p.ExpectedYield.Decimal(),
			CurrentNKD:     p.CurrentNKD.Decimal(),
		}, true
	}), nil
}

// Cash returns free money per currency. Blocked amounts are added to free ones.
func (c *Client) Cash(ctx context.Context, accountID string) ([]domain.CashBalance, error) {
	var resp positionsResponse
	if err := c.postJSON(ctx, "OperationsService/GetPositions", accountRequest{AccountID: accountID}, &resp); err != nil {
		return nil, fmt.Errorf("fetching cash for %s: %w", accountID, err)
	}

	blocked := lo.SliceToMap(resp.Blocked, func(m MoneyValue) (string, MoneyValue) { return m.Code(), m })

	return lo.Map(resp.Money, func(m MoneyValue, _ int) domain.CashBalance {
		amount := m.Decimal()
		if b, ok := blocked[m.Code()]; ok {
			amount = amount.Add(b.Decimal())
		}
		return domain.CashBalance{Currency: m.Code(), Amount: amount}
	}), nil
}
