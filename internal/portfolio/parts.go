package portfolio

import (
	"sort"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/mtlprog/tinkreport/internal/domain"
)

type partKey struct {
	currency string
	typ      domain.InstrumentType
}

// Parts builds the currency / asset-class composition. Positions with an unknown currency
// still count at their market value. RUB cash is attributed to (RUB, Currency).
func (a *Aggregator) Parts(positions []domain.ValuedPosition, rubCash decimal.Decimal) domain.Parts {
	cells := make(map[partKey]*domain.PartEntry)
	add := func(currency string, typ domain.InstrumentType, value, valueRUB decimal.Decimal) {
		k := partKey{currency: currency, typ: typ}
		e, ok := cells[k]
		if !ok {
			e = &domain.PartEntry{Currency: currency, Type: typ}
			cells[k] = e
		}
		e.Value = e.Value.Add(value)
		e.ValueRUB = e.ValueRUB.Add(valueRUB)
	}

	for _, p := range positions {
		currency, value := a.representedCurrency(p)
		add(currency, p.Instrument.Type, value, p.MarketValueRUB)
	}
	if !rubCash.IsZero() {
		add(domain.ReportingCurrency, domain.InstrumentCurrency, rubCash, rubCash)
	}

	total := lo.Reduce(lo.Values(cells), func(acc decimal.Decimal, e *domain.PartEntry, _ int) decimal.Decimal {
		return acc.Add(e.ValueRUB)
	}, decimal.Zero)

	byCurrency := lo.GroupBy(lo.Values(cells), func(e *domain.PartEntry) string { return e.Currency })
	currencies := lo.Keys(byCurrency)
	sort.Slice(currencies, func(i, j int) bool {
		return currencyOrder(currencies[i]) < currencyOrder(currencies[j]) ||
			(currencyOrder(currencies[i]) == currencyOrder(currencies[j]) && currencies[i] < currencies[j])
	})

	parts := domain.Parts{TotalRUB: total}
	for _, cur := range currencies {
		group := byCurrency[cur]
		sort.Slice(group, func(i, j int) bool { return typeOrder(group[i].Type) < typeOrder(group[j].Type) })

		cp := domain.CurrencyPart{Currency: cur}
		for _, e := range group {
			cp.Value = cp.Value.Add(e.Value)
			cp.ValueRUB = cp.ValueRUB.Add(e.ValueRUB)
		}
		cp.TotalShare = domain.DivOrZero(cp.ValueRUB, total)
		for _, e := range group {
			e.CurrencyShare = domain.DivOrZero(e.ValueRUB, cp.ValueRUB)
			e.TotalShare = domain.DivOrZero(e.ValueRUB, total)
			cp.Entries = append(cp.Entries, *e)
		}
		parts.Currencies = append(parts.Currencies, cp)
	}

	for _, typ := range domain.InstrumentTypes {
		sum := decimal.Zero
		found := false
		for k, e := range cells {
			if k.typ == typ {
				sum = sum.Add(e.ValueRUB)
				found = true
			}
		}
		if found {
			parts.Types = append(parts.Types, domain.TypePart{Type: typ, ValueRUB: sum, TotalShare: domain.DivOrZero(sum, total)})
		}
	}

	return parts
}

// representedCurrency resolves the currency a position stands for and its value in that currency.
// Currency instruments are quoted in RUB but represent the currency they trade.
func (a *Aggregator) representedCurrency(p domain.ValuedPosition) (string, decimal.Decimal) {
	if p.Instrument.Type != domain.InstrumentCurrency {
		return p.Currency, p.MarketCost
	}

	code, ok := a.tickerCurrency[p.Instrument.Ticker]
	if !ok {
		if c, found := domain.CurrencyByFIGI(p.FIGI); found {
			code, ok = c.Code, true
		}
	}
	if !ok || code == p.Currency {
		return p.Currency, p.MarketCost
	}
	return code, p.Quantity
}

func currencyOrder(code string) int {
	_, idx, ok := lo.FindIndexOf(domain.Currencies, func(c domain.Currency) bool { return c.Code == code })
	if !ok {
		return len(domain.Currencies)
	}
	return idx
}

func typeOrder(t domain.InstrumentType) int {
	idx := lo.IndexOf(domain.InstrumentTypes, t)
	if idx < 0 {
		return len(domain.InstrumentTypes)
	}
	return idx
}
