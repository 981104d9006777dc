package tinvest

import (
	"context"
	"fmt"
	"strings"

	"github.com/mtlprog/tinkreport/internal/domain"
)

// Instrument fetches instrument metadata by FIGI. Bonds get their nominal and futures their
// price increment amount from the type-specific methods.
func (c *Client) Instrument(ctx context.Context, figi string) (domain.Instrument, error) {
	req := instrumentRequest{IDType: "INSTRUMENT_ID_TYPE_FIGI", ID: figi}

	var resp instrumentResponse
	if err := c.postJSON(ctx, "InstrumentsService/GetInstrumentBy", req, &resp); err != nil {
		return domain.Instrument{}, fmt.Errorf("fetching instrument %s: %w", figi, err)
	}

	in := resp.Instrument
	inst := domain.Instrument{
		FIGI:              in.FIGI,
		Ticker:            in.Ticker,
		Name:              in.Name,
		Type:              domain.ParseInstrumentType(in.InstrumentType),
		Currency:          strings.ToUpper(in.Currency),
		Lot:               in.Lot,
		MinPriceIncrement: in.MinPriceIncrement.Decimal(),
		ISIN:              in.ISIN,
	}

	switch inst.Type {
	case domain.InstrumentBond:
		var bond bondResponse
		if err := c.postJSON(ctx, "InstrumentsService/BondBy", req, &bond); err != nil {
			return domain.Instrument{}, fmt.Errorf("fetching bond %s: %w", figi, err)
		}
		inst.Nominal = bond.Instrument.Nominal.Decimal()
	case domain.InstrumentFuture:
		var margin futuresMarginResponse
		if err := c.postJSON(ctx, "InstrumentsService/GetFuturesMargin", futuresMarginRequest{FIGI: figi}, &margin); err != nil {
			return domain.Instrument{}, fmt.Errorf("fetching futures margin %s: %w", figi, err)
		}
		inst.MinPriceIncrement = margin.MinPriceIncrement.Decimal()
		inst.MinPriceIncrementAmount = margin.MinPriceIncrementAmount.Decimal()
	}

	return inst, nil
}
