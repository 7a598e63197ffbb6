package coverage

import (
	"errors"
	"fmt"
)

// =============================================================================
// BOUNDARY VALIDATION
// =============================================================================
// Records are validated once when they enter the engine. Missing optional
// fields (open-ended rental, absent bond end date, absent deposit source)
// are valid states; everything else that is malformed is rejected.

// Validate checks a single period.
func (p RentalPeriod) Validate() error {
	if p.StartDate.IsZero() {
		return invalid("start_date", "is required")
	}
	if p.EndDate.IsZero() {
		return invalid("end_date", "is required")
	}
	if p.EndDate.Before(p.StartDate) {
		return &ValidationError{
			Field:  "end_date",
			Reason: fmt.Sprintf("%s is before start %s", p.EndDate, p.StartDate),
			Err:    ErrInvalidPeriod,
		}
	}
	if p.Amount.IsNegative() {
		return invalid("amount", "must not be negative")
	}
	if !p.PaymentMethod.IsRegistered() {
		return &ValidationError{
			Field:  "payment_method",
			Reason: fmt.Sprintf("%q is not a known payment method", p.PaymentMethod),
			Err:    ErrUnknownPaymentMethod,
		}
	}
	if p.CNAMExpectedAmount != nil && p.CNAMExpectedAmount.IsNegative() {
		return invalid("cnam_expected_amount", "must not be negative")
	}
	if p.PatientExpectedAmount != nil && p.PatientExpectedAmount.IsNegative() {
		return invalid("patient_expected_amount", "must not be negative")
	}
	if p.CNAMPaid.IsNegative() || p.PatientPaid.IsNegative() {
		return invalid("paid", "must not be negative")
	}
	return nil
}

// Validate checks a bond. A nil end date is allowed.
func (b InsuranceBond) Validate() error {
	if b.TotalAmount.IsNegative() {
		return invalid("total_amount", "must not be negative")
	}
	if b.StartDate != nil && b.EndDate != nil && b.EndDate.Before(*b.StartDate) {
		return &ValidationError{Field: "end_date", Reason: "bond ends before it starts", Err: ErrInvalidPeriod}
	}
	return nil
}

// Validate checks a payment record.
func (p Payment) Validate() error {
	if !p.Payer.IsValid() {
		return invalid("payer", fmt.Sprintf("%q must be cnam or patient", p.Payer))
	}
	if !p.Amount.IsPositive() {
		return invalid("amount", "must be positive")
	}
	if p.PaidAt.IsZero() {
		return invalid("paid_at", "is required")
	}
	return nil
}

// Validate checks the rental and everything it owns.
func (r Rental) Validate() error {
	if r.StartDate.IsZero() {
		return invalid("start_date", "is required")
	}
	if r.EndDate != nil && r.EndDate.Before(r.StartDate) {
		return &ValidationError{
			Field:  "end_date",
			Reason: fmt.Sprintf("rental ends %s before it starts %s", r.EndDate, r.StartDate),
			Err:    ErrInvalidPeriod,
		}
	}
	if r.ConfiguredDeposit != nil && r.ConfiguredDeposit.IsNegative() {
		return invalid("deposit_amount", "must not be negative")
	}
	for i, p := range r.Periods {
		if err := p.Validate(); err != nil {
			return prefixField(fmt.Sprintf("periods[%d]", i), err)
		}
	}
	for i, b := range r.Bonds {
		if err := b.Validate(); err != nil {
			return prefixField(fmt.Sprintf("bonds[%d]", i), err)
		}
	}
	if r.LinkedPayment != nil && r.LinkedPayment.Amount.IsNegative() {
		return invalid("linked_payment.amount", "must not be negative")
	}
	return nil
}

func prefixField(prefix string, err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return &ValidationError{Field: prefix + "." + ve.Field, Reason: ve.Reason, Err: ve.Err}
	}
	return err
}
