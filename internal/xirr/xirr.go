// Package xirr computes the annualized internal rate of return of irregular cash flows.
package xirr

import (
	"math"
	"sort"
	"time"
)

const (
	daysInYear = 365.0

	newtonGuess     = 0.1
	newtonMaxIter   = 100
	newtonTolerance = 1e-10

	bisectLow       = -0.999999999999999
	bisectHigh      = 1e20
	bisectMaxIter   = 10_000
	bisectTolerance = 1e-12
)

// Status tells how a Result should be read.
type Status int

const (
	Defined Status = iota
	PositiveInfinity
	NegativeInfinity
	Undefined
)

func (s Status) String() string {
	switch s {
	case Defined:
		return "defined"
	case PositiveInfinity:
		return "+inf"
	case NegativeInfinity:
		return "-inf"
	default:
		return "undefined"
	}
}

// Flow is one dated signed cash amount. Money put into the account is negative.
type Flow struct {
	Date   time.Time
	Amount float64
}

// Result is the solved annual rate as a fraction (0.1 = 10%).
type Result struct {
	Rate   float64
	Status Status
}

// Value returns the rate including infinities, and false when the rate is undefined.
func (r Result) Value() (float64, bool) {
	if r.Status == Undefined {
		return 0, false
	}
	return r.Rate, true
}

// Solve finds r such that Σ amount_i / (1+r)^(days_i/365) = 0, days counted from the earliest flow.
// Flows sharing a date are summed. Degenerate inputs never fail: empty input is Undefined,
// all non-negative flows give +Inf, all non-positive flows give -Inf.
func Solve(flows []Flow) Result {
	merged := merge(flows)
	if len(merged) == 0 {
		return Result{Status: Undefined}
	}

	if allFlows(merged, func(a float64) bool { return a >= 0 }) {
		return Result{Rate: math.Inf(1), Status: PositiveInfinity}
	}
	if allFlows(merged, func(a float64) bool { return a <= 0 }) {
		return Result{Rate: math.Inf(-1), Status: NegativeInfinity}
	}

	years := yearFractions(merged)
	amounts := make([]float64, len(merged))
	for i, f := range merged {
		amounts[i] = f.Amount
	}

	if r, ok := newton(amounts, years); ok {
		return Result{Rate: r, Status: Defined}
	}
	if r, ok := bisect(amounts, years); ok {
		return Result{Rate: r, Status: Defined}
	}
	return Result{Status: Undefined}
}

func merge(flows []Flow) []Flow {
	byDate := make(map[time.Time]float64, len(flows))
	for _, f := range flows {
		d := time.Date(f.Date.Year(), f.Date.Month(), f.Date.Day(), 0, 0, 0, 0, time.UTC)
		byDate[d] += f.Amount
	}

	out := make([]Flow, 0, len(byDate))
	for d, a := range byDate {
		out = append(out, Flow{Date: d, Amount: a})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func allFlows(flows []Flow, pred func(float64) bool) bool {
	for _, f := range flows {
		if !pred(f.Amount) {
			return false
		}
	}
	return true
}

// yearFractions expects flows sorted by date.
func yearFractions(flows []Flow) []float64 {
	start := flows[0].Date
	out := make([]float64, len(flows))
	for i, f := range flows {
		out[i] = f.Date.Sub(start).Hours() / 24 / daysInYear
	}
	return out
}

func npv(rate float64, amounts, years []float64) float64 {
	var sum float64
	for i, a := range amounts {
		sum += a / math.Pow(1+rate, years[i])
	}
	return sum
}

func npvDerivative(rate float64, amounts, years []float64) float64 {
	var sum float64
	for i, a := range amounts {
		sum -= years[i] * a / math.Pow(1+rate, years[i]+1)
	}
	return sum
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func newton(amounts, years []float64) (float64, bool) {
	rate := newtonGuess
	for range newtonMaxIter {
		f := npv(rate, amounts, years)
		df := npvDerivative(rate, amounts, years)
		if !finite(f) || !finite(df) || df == 0 {
			return 0, false
		}

		next := rate - f/df
		if !finite(next) || next <= -1 {
			return 0, false
		}
		if math.Abs(next-rate) < newtonTolerance {
			return next, true
		}
		rate = next
	}
	return 0, false
}

func bisect(amounts, years []float64) (float64, bool) {
	lo, hi := bisectLow, bisectHigh
	fLo := npv(lo, amounts, years)
	fHi := npv(hi, amounts, years)
	if math.IsNaN(fLo) || math.IsNaN(fHi) || fLo*fHi > 0 {
		return 0, false
	}

	for range bisectMaxIter {
		mid := lo + (hi-lo)/2
		fMid := npv(mid, amounts, years)
		if math.IsNaN(fMid) {
			return 0, false
		}
		if fMid == 0 || (hi-lo)/2 < bisectTolerance*math.Max(1, math.Abs(mid)) {
			return mid, true
		}
		if (fMid < 0) == (fLo < 0) {
			lo, fLo = mid, fMid
		} else {
			hi = mid
		}
	}
	return 0, false
}
