/*
gaps.go - Uncovered interval detection

PURPOSE:
  Finds the calendar intervals of a rental that no realised billing period
  covers, estimates what they would have cost, and grades them.

ALGORITHM:
  Eligible periods are the non-gap periods (recorded gap periods already
  represent known holes; counting them again would double count).

  1. No rental end date, or no eligible period -> no analysis.
  2. Leading gap:  first.Start is more than LeadingGapTolerance after the
                   rental start. days = DaysBetween(rentalStart, first.Start)
  3. Internal gap: next.Start - prev.End exceeds BoundaryTolerance.
                   days = DaysBetween(prev.End, next.Start) - 1, kept if > 0.
                   Prorated from the NEXT period: that rate would have applied
                   had coverage continued.
  4. Trailing gap: rentalEnd - last.End exceeds BoundaryTolerance.
                   days = DaysBetween(last.End, rentalEnd)

PRORATION:
  amount = period.Amount / ProrationDays * days

  ProrationDays is a flat 30-day month. Existing data was computed this
  way; exact day-count division would change displayed totals.

THRESHOLDS:
  The 1 hour (leading) and 25 hour (internal, trailing) tolerances differ
  in magnitude. Both are kept as observed; with date-only values the 25 h
  tolerance means a single missing trailing day is not reported.

EXAMPLE:
  Rental 2024-01-01..2024-03-31
  Periods [01-01..01-31 CNAM 300] [02-15..03-31 CASH 450]
  -> one gap 02-01..02-14, 14 days, critical, amount 450/30*14 = 210
*/
package coverage

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// LeadingGapTolerance is how far the first period may start after the
	// rental before the difference counts as a gap.
	LeadingGapTolerance = time.Hour

	// BoundaryTolerance absorbs same-day and next-day boundary rounding
	// between consecutive periods and before the rental end.
	BoundaryTolerance = 25 * time.Hour

	// ProrationDays converts a period amount into a daily rate.
	ProrationDays = 30

	// Severity thresholds, in gap days.
	CriticalGapDays = 7
	HighGapDays     = 3
)

// Severity grades a gap.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
)

// ClassifyGap grades a gap by its length.
func ClassifyGap(days int) Severity {
	switch {
	case days > CriticalGapDays:
		return SeverityCritical
	case days > HighGapDays:
		return SeverityHigh
	default:
		return SeverityMedium
	}
}

// GapPosition tells where in the rental a gap was found.
type GapPosition string

const (
	GapLeading  GapPosition = "leading"
	GapInternal GapPosition = "internal"
	GapTrailing GapPosition = "trailing"
)

// Gap is one uncovered interval.
type Gap struct {
	StartDate Date
	EndDate   Date
	Days      int
	Amount    Money
	Severity  Severity
	Position  GapPosition

	// RatePeriodID is the period whose amount was used for proration.
	RatePeriodID PeriodID
}

// GapAnalysis is the detector output plus its aggregates.
type GapAnalysis struct {
	Gaps         []Gap
	TotalGaps    int
	CriticalGaps int
	GapDays      int
	GapAmount    Money
}

// ProrateAmount estimates the cost of days at the period's daily rate.
func ProrateAmount(periodAmount Money, days int) Money {
	return periodAmount.
		Div(decimal.NewFromInt(ProrationDays)).
		Mul(decimal.NewFromInt(int64(days)))
}

// DetectGaps computes the uncovered intervals of a rental.
//
// periods may contain gap periods; they are skipped. The remaining periods
// must be valid, sorted by StartDate and non-overlapping. Violations are a
// caller error and fail fast.
func DetectGaps(rentalStart Date, rentalEnd *Date, periods []RentalPeriod) (GapAnalysis, error) {
	analysis := GapAnalysis{GapAmount: ZeroMoney()}

	if rentalStart.IsZero() {
		return analysis, invalid("start_date", "is required")
	}
	if rentalEnd != nil && rentalEnd.Before(rentalStart) {
		return analysis, &ValidationError{Field: "end_date", Reason: "rental ends before it starts", Err: ErrInvalidPeriod}
	}

	eligible := make([]RentalPeriod, 0, len(periods))
	for _, p := range periods {
		if p.IsGapPeriod {
			continue
		}
		if err := p.Validate(); err != nil {
			return analysis, err
		}
		eligible = append(eligible, p)
	}
	if err := checkOrdering(eligible); err != nil {
		return analysis, err
	}

	if rentalEnd == nil || len(eligible) == 0 {
		return analysis, nil
	}

	first := eligible[0]
	if first.StartDate.Sub(rentalStart) > LeadingGapTolerance {
		days := DaysBetween(rentalStart, first.StartDate)
		analysis.add(newGap(GapLeading, rentalStart, first.StartDate.AddDays(-1), days, first))
	}

	for i := 1; i < len(eligible); i++ {
		prev, next := eligible[i-1], eligible[i]
		if next.StartDate.Sub(prev.EndDate) <= BoundaryTolerance {
			continue
		}
		days := DaysBetween(prev.EndDate, next.StartDate) - 1
		if days > 0 {
			analysis.add(newGap(GapInternal, prev.EndDate.AddDays(1), next.StartDate.AddDays(-1), days, next))
		}
	}

	last := eligible[len(eligible)-1]
	if rentalEnd.Sub(last.EndDate) > BoundaryTolerance {
		days := DaysBetween(last.EndDate, *rentalEnd)
		analysis.add(newGap(GapTrailing, last.EndDate.AddDays(1), *rentalEnd, days, last))
	}

	return analysis, nil
}

func newGap(pos GapPosition, start, end Date, days int, rate RentalPeriod) Gap {
	return Gap{
		StartDate:    start,
		EndDate:      end,
		Days:         days,
		Amount:       ProrateAmount(rate.Amount, days),
		Severity:     ClassifyGap(days),
		Position:     pos,
		RatePeriodID: rate.ID,
	}
}

func (a *GapAnalysis) add(g Gap) {
	a.Gaps = append(a.Gaps, g)
	a.TotalGaps++
	if g.Severity == SeverityCritical {
		a.CriticalGaps++
	}
	a.GapDays += g.Days
	a.GapAmount = a.GapAmount.Add(g.Amount)
}

// checkOrdering enforces ascending, non-overlapping periods.
func checkOrdering(periods []RentalPeriod) error {
	for i := 1; i < len(periods); i++ {
		prev, next := periods[i-1].Interval(), periods[i].Interval()
		if next.Start.Before(prev.Start) {
			return &OrderingError{Previous: prev, Next: next, Err: ErrUnsortedPeriods}
		}
		if prev.Overlaps(next) {
			return &OrderingError{Previous: prev, Next: next, Err: ErrOverlappingPeriods}
		}
	}
	return nil
}
