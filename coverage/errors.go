/*
errors.go - Centralized error types for the coverage engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Stores and the HTTP layer wrap these errors with additional context.

ERROR CATEGORIES:
  1. Validation errors - malformed records rejected at the boundary
  2. Contract errors - unsorted or overlapping periods passed to the gap detector
  3. Ledger errors - payment persistence failures
  4. Lookup errors - missing rentals or periods

USAGE:
  if errors.Is(err, coverage.ErrInvalidPeriod) {
      // 400 Bad Request
  }

SEE ALSO:
  - validate.go: Produces ValidationError values
  - ledger.go: Produces ErrPayerSideSettled
*/
package coverage

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInput is returned when a record fails boundary validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidPeriod is returned when an interval ends before it starts.
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrUnsortedPeriods is returned when the gap detector receives periods
	// that are not in ascending start-date order.
	ErrUnsortedPeriods = errors.New("periods are not sorted by start date")

	// ErrOverlappingPeriods is returned when two non-gap periods share a day.
	ErrOverlappingPeriods = errors.New("periods overlap")

	// ErrUnknownPaymentMethod is returned for payment tags nobody registered.
	ErrUnknownPaymentMethod = errors.New("unknown payment method")

	// ErrRentalNotFound is returned when a referenced rental doesn't exist.
	ErrRentalNotFound = errors.New("rental not found")

	// ErrPeriodNotFound is returned when a referenced period doesn't exist.
	ErrPeriodNotFound = errors.New("period not found")

	// ErrDuplicateIdempotencyKey is returned when a payment with the same
	// idempotency key was already recorded. Expected behavior for retries.
	ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")

	// ErrPayerSideSettled is returned when recording a payment on a payer
	// side that is already fully paid.
	ErrPayerSideSettled = errors.New("payer side already fully paid")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError names the offending field of a rejected record.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	if e.Err == nil {
		return ErrInvalidInput
	}
	return e.Err
}

func invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// OrderingError describes the first pair of periods violating the gap
// detector's ordering contract.
type OrderingError struct {
	Previous Period
	Next     Period
	Err      error
}

func (e *OrderingError) Error() string {
	return fmt.Sprintf("%v: %s then %s", e.Err, e.Previous, e.Next)
}

func (e *OrderingError) Unwrap() error { return e.Err }

// SettledError provides details about a refused payment.
type SettledError struct {
	PeriodID PeriodID
	Payer    Payer
}

func (e *SettledError) Error() string {
	return fmt.Sprintf("period %s: %s side already fully paid", e.PeriodID, e.Payer)
}

func (e *SettledError) Unwrap() error { return ErrPayerSideSettled }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrUnsortedPeriods) ||
		errors.Is(err, ErrOverlappingPeriods) ||
		errors.Is(err, ErrUnknownPaymentMethod)
}

// IsConflict returns true if the request conflicts with recorded state.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateIdempotencyKey) ||
		errors.Is(err, ErrPayerSideSettled)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRentalNotFound) ||
		errors.Is(err, ErrPeriodNotFound)
}
