package portfolio

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/tinkreport/internal/domain"
	"github.com/mtlprog/tinkreport/internal/ledger"
)

var (
	// iisContributionCap is the yearly contribution limit. Exceeding it is reported, not clipped.
	iisContributionCap = decimal.NewFromInt(1_000_000)
	// iisBaseCap is the yearly limit of the deduction base.
	iisBaseCap = decimal.NewFromInt(400_000)
	iisRate    = decimal.NewFromFloat(0.13)
)

// IIS computes the yearly deduction schedule for tax-advantaged accounts.
// Other account types get a non-applicable result. Pay-ins outside the reporting currency are
// rejected with a warning and do not create a year entry.
func IIS(accountType domain.AccountType, entries []domain.LedgerEntry) (domain.IISDeduction, []string) {
	if !accountType.TaxAdvantaged() {
		return domain.IISDeduction{}, nil
	}

	var warnings []string
	warn := func(msg string) {
		slog.Warn(msg)
		warnings = append(warnings, msg)
	}

	payIns := make(map[int]decimal.Decimal)
	for _, e := range ledger.OfCategory(entries, domain.CategoryPayIn) {
		if e.Currency != domain.ReportingCurrency {
			warn(fmt.Sprintf("IIS: pay-in %s of %s %s rejected, only %s contributions are deductible",
				e.ID, e.Payment, e.Currency, domain.ReportingCurrency))
			continue
		}
		year := e.Date.In(domain.MSK).Year()
		payIns[year] = payIns[year].Add(e.Payment)
	}

	result := domain.IISDeduction{Applicable: true}
	for year, payIn := range payIns {
		if payIn.GreaterThan(iisContributionCap) {
			warn(fmt.Sprintf("IIS: %d pay-in %s exceeds the contribution limit of %s", year, payIn, iisContributionCap))
		}
		base := payIn
		if payIn.GreaterThan(iisBaseCap) {
			warn(fmt.Sprintf("IIS: %d pay-in %s exceeds the deduction base limit, base capped at %s", year, payIn, iisBaseCap))
			base = iisBaseCap
		}
		deduction := base.Mul(iisRate)

		result.Years = append(result.Years, domain.IISYear{Year: year, PayIn: payIn, Base: base, Deduction: deduction})
		result.Total = result.Total.Add(deduction)
	}

	sort.Slice(result.Years, func(i, j int) bool { return result.Years[i].Year < result.Years[j].Year })
	return result, warnings
}
