package coverage

import "github.com/shopspring/decimal"

// =============================================================================
// PAYMENT STATUS - Expected vs paid, per payer, per period
// =============================================================================

// PaymentEpsilon absorbs rounding when deciding a payer side is settled.
// Exact zero comparison is never used.
var PaymentEpsilon = decimal.New(1, -2)

// PaymentStatus is the period-level collection state.
type PaymentStatus string

const (
	StatusPending  PaymentStatus = "PENDING"
	StatusPartial  PaymentStatus = "PARTIAL"
	StatusComplete PaymentStatus = "COMPLETE"
)

// PayerSideStatus describes one payer's side of a period.
type PayerSideStatus struct {
	Payer    Payer
	Expected Money
	Paid     Money

	// Remaining is Expected - Paid before clamping; it may be negative
	// after an overpayment. Display layers use Due.
	Remaining Money
	Due       Money

	FullyPaid bool

	// CanRecordPayment is true while the side expects money and is not
	// fully paid. Once false, callers show a "paid" indicator instead of
	// a payment action.
	CanRecordPayment bool
}

// PeriodPaymentStatus is the resolver output for one period.
type PeriodPaymentStatus struct {
	PeriodID            PeriodID
	Status              PaymentStatus
	CNAM                PayerSideStatus
	Patient             PayerSideStatus
	RemainingBalanceDue Money
}

// Side returns the status of the given payer.
func (s PeriodPaymentStatus) Side(p Payer) PayerSideStatus {
	if p == PayerCNAM {
		return s.CNAM
	}
	return s.Patient
}

// ExpectedAmounts returns what each payer owes for the period.
//
// When neither split is recorded, the whole amount is expected from the
// payer the period is billed to.
func ExpectedAmounts(p RentalPeriod) (cnam, patient Money) {
	if p.CNAMExpectedAmount == nil && p.PatientExpectedAmount == nil {
		if p.PaymentMethod.IsCNAM() {
			return p.Amount, ZeroMoney()
		}
		return ZeroMoney(), p.Amount
	}
	cnam, patient = ZeroMoney(), ZeroMoney()
	if p.CNAMExpectedAmount != nil {
		cnam = *p.CNAMExpectedAmount
	}
	if p.PatientExpectedAmount != nil {
		patient = *p.PatientExpectedAmount
	}
	return cnam, patient
}

func resolveSide(payer Payer, expected, paid Money) PayerSideStatus {
	remaining := expected.Sub(paid)
	fully := expected.IsPositive() && remaining.Value.LessThanOrEqual(PaymentEpsilon)
	return PayerSideStatus{
		Payer:            payer,
		Expected:         expected,
		Paid:             paid,
		Remaining:        remaining,
		Due:              remaining.ClampZero(),
		FullyPaid:        fully,
		CanRecordPayment: expected.IsPositive() && !fully,
	}
}

// ResolvePaymentStatus derives the collection state of a period.
//
//	COMPLETE - every side with expected > 0 is fully paid
//	PARTIAL  - not complete, and some side has received money
//	PENDING  - otherwise
func ResolvePaymentStatus(p RentalPeriod) PeriodPaymentStatus {
	expCNAM, expPatient := ExpectedAmounts(p)
	cnam := resolveSide(PayerCNAM, expCNAM, p.CNAMPaid)
	patient := resolveSide(PayerPatient, expPatient, p.PatientPaid)

	status := StatusPending
	switch {
	case sideSatisfied(cnam) && sideSatisfied(patient):
		status = StatusComplete
	case cnam.Paid.IsPositive() || patient.Paid.IsPositive():
		status = StatusPartial
	}

	return PeriodPaymentStatus{
		PeriodID:            p.ID,
		Status:              status,
		CNAM:                cnam,
		Patient:             patient,
		RemainingBalanceDue: cnam.Due.Add(patient.Due),
	}
}

// sideSatisfied treats a side that expects nothing as vacuously satisfied.
func sideSatisfied(s PayerSideStatus) bool {
	return !s.Expected.IsPositive() || s.FullyPaid
}

// ResolveAll resolves every period, preserving order.
func ResolveAll(periods []RentalPeriod) []PeriodPaymentStatus {
	out := make([]PeriodPaymentStatus, len(periods))
	for i, p := range periods {
		out[i] = ResolvePaymentStatus(p)
	}
	return out
}
