package coverage

import "time"

// =============================================================================
// RENTAL PERIOD - Contiguous billing interval
// =============================================================================

// RentalPeriod is a contiguous billing interval attached to a rental.
//
// CNAMPaid and PatientPaid are running totals accumulated from payment
// records; the period does not own those records (see MaterializePaid).
type RentalPeriod struct {
	ID            PeriodID
	RentalID      RentalID
	StartDate     Date
	EndDate       Date
	Amount        Money
	PaymentMethod PaymentMethod

	// IsGapPeriod marks a period recorded to represent a known uncovered
	// interval. Such periods are never CNAM coverage and never count as
	// billing for gap detection.
	IsGapPeriod bool

	// Optional split of Amount between payers, when known ahead of collection.
	CNAMExpectedAmount    *Money
	PatientExpectedAmount *Money

	CNAMPaid    Money
	PatientPaid Money

	Notes string
}

// Interval returns the period's calendar span.
func (p RentalPeriod) Interval() Period {
	return Period{Start: p.StartDate, End: p.EndDate}
}

// Days returns the inclusive day count of the period.
func (p RentalPeriod) Days() int {
	return DaysBetweenInclusive(p.StartDate, p.EndDate)
}

// IsCNAMCovered reports whether the period counts as realised CNAM coverage.
func (p RentalPeriod) IsCNAMCovered() bool {
	return p.PaymentMethod.IsCNAM() && !p.IsGapPeriod
}

// =============================================================================
// INSURANCE BOND - Coverage declaration, independent of periods
// =============================================================================

// InsuranceBond is a CNAM coverage declaration. It is informational: the
// authoritative CNAM amount comes from realised billing periods.
type InsuranceBond struct {
	ID          BondID
	RentalID    RentalID
	BondType    string
	BondNumber  string
	TotalAmount Money
	StartDate   *Date
	EndDate     *Date
}

// =============================================================================
// PAYMENT - External record, read-only input to the engine
// =============================================================================

type Payment struct {
	ID             PaymentID
	RentalID       RentalID
	PeriodID       PeriodID // empty for deposits not tied to a period
	Payer          Payer
	Method         PaymentMethod
	Amount         Money
	PaidAt         Date
	IsDeposit      bool
	Reference      string
	IdempotencyKey string
	CreatedAt      time.Time
}

// =============================================================================
// RENTAL - Owns periods and bonds
// =============================================================================

type Rental struct {
	ID            RentalID
	PatientName   string
	EquipmentName string
	StartDate     Date

	// EndDate nil means open-ended; trailing gap detection is skipped.
	EndDate *Date

	Periods []RentalPeriod
	Bonds   []InsuranceBond

	// ConfiguredDeposit is the deposit from the rental configuration.
	ConfiguredDeposit *Money

	// LinkedPayment is the payment attached to the rental, consulted for
	// the deposit when the configuration has none.
	LinkedPayment *Payment
}

// Span returns the rental's lifetime when it has a concrete end date.
func (r Rental) Span() (Period, bool) {
	if r.EndDate == nil {
		return Period{}, false
	}
	return Period{Start: r.StartDate, End: *r.EndDate}, true
}

// PeriodByID finds a period of the rental.
func (r Rental) PeriodByID(id PeriodID) (RentalPeriod, bool) {
	for _, p := range r.Periods {
		if p.ID == id {
			return p, true
		}
	}
	return RentalPeriod{}, false
}
