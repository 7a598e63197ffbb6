/*
ledger.go - Append-only payment log and paid-total materialisation

PURPOSE:
  Periods carry CNAMPaid/PatientPaid running totals, but the source of truth
  is the list of payment rows. MaterializePaid is the thin adapter that sums
  rows onto periods before the engine runs. PaymentLedger records new rows
  and refuses money for a payer side that is already settled.

CRITICAL INVARIANTS:
  1. APPEND-ONLY: payments are never edited or deleted
  2. IDEMPOTENT: the same idempotency key is recorded once
  3. SETTLED SIDES: a side that is fully paid accepts no further payment,
     using the same epsilon rule as the status resolver
  4. SERIALISED: the settled check and the append run under one lock, so
     concurrent payments see each other

EXAMPLE FLOW:
  Period 100 CNAM expected, 60 paid -> PARTIAL, CNAM side can record
  Record 40 CNAM                    -> COMPLETE, CNAM side shows "paid"
  Record 10 CNAM                    -> ErrPayerSideSettled
*/
package coverage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MaterializePaid returns a copy of periods whose paid totals are the sums
// of the matching payment rows. Deposits and rows without a period are
// ignored. Existing totals on the periods are replaced.
func MaterializePaid(periods []RentalPeriod, payments []Payment) []RentalPeriod {
	type key struct {
		period PeriodID
		payer  Payer
	}
	sums := make(map[key]Money)
	for _, p := range payments {
		if p.IsDeposit || p.PeriodID == "" {
			continue
		}
		k := key{period: p.PeriodID, payer: p.Payer}
		sums[k] = sums[k].Add(p.Amount)
	}

	out := make([]RentalPeriod, len(periods))
	for i, p := range periods {
		p.CNAMPaid = sums[key{period: p.ID, payer: PayerCNAM}]
		p.PatientPaid = sums[key{period: p.ID, payer: PayerPatient}]
		out[i] = p
	}
	return out
}

// LatestDeposit returns the most recent deposit payment, if any.
func LatestDeposit(payments []Payment) *Payment {
	var latest *Payment
	for i := range payments {
		p := payments[i]
		if !p.IsDeposit {
			continue
		}
		if latest == nil || p.PaidAt.AfterOrEqual(latest.PaidAt) {
			latest = &p
		}
	}
	return latest
}

// =============================================================================
// PAYMENT LEDGER
// =============================================================================

// PaymentLedger records payments. Share one ledger per store.
type PaymentLedger struct {
	Rentals  RentalRepository
	Payments PaymentRepository
	Now      func() time.Time

	mu sync.Mutex
}

func NewPaymentLedger(rentals RentalRepository, payments PaymentRepository) *PaymentLedger {
	return &PaymentLedger{Rentals: rentals, Payments: payments, Now: time.Now}
}

// Record validates and appends a payment, returning the period status after
// the payment. Deposit payments return a zero status.
func (l *PaymentLedger) Record(ctx context.Context, p Payment) (PeriodPaymentStatus, error) {
	if err := p.Validate(); err != nil {
		return PeriodPaymentStatus{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if p.IdempotencyKey != "" {
		exists, err := l.Payments.PaymentExists(ctx, p.IdempotencyKey)
		if err != nil {
			return PeriodPaymentStatus{}, err
		}
		if exists {
			return PeriodPaymentStatus{}, ErrDuplicateIdempotencyKey
		}
	}

	rental, err := l.Rentals.GetRental(ctx, p.RentalID)
	if err != nil {
		return PeriodPaymentStatus{}, err
	}
	existing, err := l.Payments.PaymentsForRental(ctx, rental.ID)
	if err != nil {
		return PeriodPaymentStatus{}, fmt.Errorf("load payments: %w", err)
	}

	var period RentalPeriod
	if !p.IsDeposit {
		found, ok := rental.PeriodByID(p.PeriodID)
		if !ok {
			return PeriodPaymentStatus{}, fmt.Errorf("%w: %s", ErrPeriodNotFound, p.PeriodID)
		}
		period = MaterializePaid([]RentalPeriod{found}, existing)[0]
		side := ResolvePaymentStatus(period).Side(p.Payer)
		if !side.CanRecordPayment {
			return PeriodPaymentStatus{}, &SettledError{PeriodID: period.ID, Payer: p.Payer}
		}
		if p.Method == "" {
			p.Method = period.PaymentMethod
		}
	}

	if p.ID == "" {
		p.ID = PaymentID(uuid.NewString())
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = l.Now().UTC()
	}
	if err := l.Payments.AppendPayment(ctx, p); err != nil {
		return PeriodPaymentStatus{}, err
	}

	if p.IsDeposit {
		return PeriodPaymentStatus{}, nil
	}
	period = MaterializePaid([]RentalPeriod{period}, append(existing, p))[0]
	return ResolvePaymentStatus(period), nil
}
