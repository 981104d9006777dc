package costbasis

import (
	"github.com/shopspring/decimal"
)

// lot is a run of units bought at the same per-unit price.
type lot struct {
	price decimal.Decimal
	units int64
}

// lots is the reconstructed multiset of per-unit acquisition prices.
// Units are appended at the back and consumed from the front.
type lots []lot

func (l *lots) push(price decimal.Decimal, units int64) {
	if units <= 0 {
		return
	}
	*l = append(*l, lot{price: price, units: units})
}

func (l *lots) removeFront(units int64) {
	for units > 0 && len(*l) > 0 {
		head := &(*l)[0]
		if head.units > units {
			head.units -= units
			return
		}
		units -= head.units
		*l = (*l)[1:]
	}
}

func (l lots) units() int64 {
	var n int64
	for _, x := range l {
		n += x.units
	}
	return n
}

// average returns the mean per-unit price, or zero for an empty list.
func (l lots) average() decimal.Decimal {
	n := l.units()
	if n == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, x := range l {
		sum = sum.Add(x.price.Mul(decimal.NewFromInt(x.units)))
	}
	return sum.Div(decimal.NewFromInt(n))
}
