package portfolio

import (
	"time"

	"github.com/mtlprog/tinkreport/internal/domain"
)

// Period returns the calendar difference between start and end in years, months and days.
// Month arithmetic clamps to the last day of shorter months. An end before start yields zero.
func Period(start, end time.Time) domain.InvestingPeriod {
	start, end = domain.DateOnly(start), domain.DateOnly(end)
	if end.Before(start) {
		return domain.InvestingPeriod{}
	}

	months := (end.Year()-start.Year())*12 + int(end.Month()-start.Month())
	anchor := addMonths(start, months)
	if anchor.After(end) {
		months--
		anchor = addMonths(start, months)
	}
	days := int(end.Sub(anchor).Hours() / 24)

	return domain.InvestingPeriod{Years: months / 12, Months: months % 12, Days: days}
}

func addMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	day := min(t.Day(), last)
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}
