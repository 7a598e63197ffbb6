package coverage

import "sort"

// =============================================================================
// COVERAGE REPORT - All four components against one rental
// =============================================================================

// CoverageReport is what UI tables, alert banners and printed reports read.
type CoverageReport struct {
	RentalID      RentalID
	AsOf          Date
	Gaps          GapAnalysis
	Financial     FinancialSummary
	PaymentStatus []PeriodPaymentStatus
	Alerts        []Alert
}

// BuildReport validates the rental and runs the gap detector, the financial
// aggregator, the payment status resolver and the alert scheduler.
//
// Periods may arrive in any order; eligible periods are sorted by start
// date for the gap detector. Overlaps are still rejected.
func BuildReport(r Rental, asOf Date) (CoverageReport, error) {
	if err := r.Validate(); err != nil {
		return CoverageReport{}, err
	}

	ordered := SortedPeriods(r.Periods)

	gaps, err := DetectGaps(r.StartDate, r.EndDate, ordered)
	if err != nil {
		return CoverageReport{}, err
	}

	financial, err := Summarize(FinancialInputFor(r))
	if err != nil {
		return CoverageReport{}, err
	}

	return CoverageReport{
		RentalID:      r.ID,
		AsOf:          asOf,
		Gaps:          gaps,
		Financial:     financial,
		PaymentStatus: ResolveAll(ordered),
		Alerts:        ScheduleAlerts(r.Bonds, r.EndDate, asOf),
	}, nil
}

// SortedPeriods returns a copy of periods ordered by start date, then end
// date. The input slice is left untouched.
func SortedPeriods(periods []RentalPeriod) []RentalPeriod {
	out := make([]RentalPeriod, len(periods))
	copy(out, periods)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].EndDate.Before(out[j].EndDate)
	})
	return out
}
