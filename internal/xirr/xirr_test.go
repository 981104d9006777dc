package xirr

import (
	"math"
	"testing"
	"time"
)

func day(n int) time.Time {
	return time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestSolveOneYearTenPercent(t *testing.T) {
	res := Solve([]Flow{
		{Date: day(0), Amount: -1000},
		{Date: day(365), Amount: 1100},
	})
	if res.Status != Defined {
		t.Fatalf("Status = %v, want defined", res.Status)
	}
	if math.Abs(res.Rate-0.10) > 0.001 {
		t.Errorf("Rate = %v, want ~0.10", res.Rate)
	}
}

func TestSolveDegenerate(t *testing.T) {
	tests := []struct {
		name  string
		flows []Flow
		want  Status
		rate  float64
	}{
		{"empty", nil, Undefined, 0},
		{"all positive", []Flow{{day(0), 100}, {day(10), 50}}, PositiveInfinity, math.Inf(1)},
		{"all negative", []Flow{{day(0), -100}, {day(10), -50}}, NegativeInfinity, math.Inf(-1)},
		{"all zero", []Flow{{day(0), 0}}, PositiveInfinity, math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Solve(tt.flows)
			if res.Status != tt.want {
				t.Fatalf("Status = %v, want %v", res.Status, tt.want)
			}
			if tt.want != Undefined && res.Rate != tt.rate {
				t.Errorf("Rate = %v, want %v", res.Rate, tt.rate)
			}
		})
	}
}

func TestSolveMergesSameDay(t *testing.T) {
	res := Solve([]Flow{
		{Date: day(0), Amount: -400},
		{Date: day(0).Add(5 * time.Hour), Amount: -600},
		{Date: day(365), Amount: 1100},
	})
	if res.Status != Defined || math.Abs(res.Rate-0.10) > 0.001 {
		t.Errorf("Solve = %+v, want ~0.10", res)
	}
}

func TestSolveOrderIndependent(t *testing.T) {
	a := Solve([]Flow{
		{Date: day(0), Amount: -1000},
		{Date: day(100), Amount: -500},
		{Date: day(200), Amount: 300},
		{Date: day(500), Amount: 1400},
	})
	b := Solve([]Flow{
		{Date: day(500), Amount: 1400},
		{Date: day(200), Amount: 300},
		{Date: day(0), Amount: -1000},
		{Date: day(100), Amount: -500},
	})
	if a.Status != Defined || b.Status != Defined {
		t.Fatalf("statuses = %v, %v, want defined", a.Status, b.Status)
	}
	if math.Abs(a.Rate-b.Rate) > 1e-9 {
		t.Errorf("rates differ: %v vs %v", a.Rate, b.Rate)
	}
}

func TestSolveLoss(t *testing.T) {
	res := Solve([]Flow{
		{Date: day(0), Amount: -1000},
		{Date: day(365), Amount: 800},
	})
	if res.Status != Defined {
		t.Fatalf("Status = %v, want defined", res.Status)
	}
	if math.Abs(res.Rate-(-0.2)) > 0.001 {
		t.Errorf("Rate = %v, want ~-0.2", res.Rate)
	}
}

func TestBisectFallback(t *testing.T) {
	amounts := []float64{-1000, 1100}
	years := []float64{0, 1}
	r, ok := bisect(amounts, years)
	if !ok {
		t.Fatal("bisect did not converge")
	}
	if math.Abs(r-0.10) > 1e-6 {
		t.Errorf("bisect = %v, want 0.10", r)
	}
}

func TestResultValue(t *testing.T) {
	if _, ok := (Result{Status: Undefined}).Value(); ok {
		t.Error("undefined result should not report a value")
	}
	v, ok := Result{Rate: math.Inf(1), Status: PositiveInfinity}.Value()
	if !ok || !math.IsInf(v, 1) {
		t.Errorf("Value() = %v, %v, want +Inf, true", v, ok)
	}
}
