/*
Package coverage provides the rental coverage and financial reconciliation engine.

PURPOSE:
  Given a rental's lifetime, its billing periods and its insurance bonds,
  the engine answers four questions:
    - Which calendar days are not covered by any billing period? (gaps.go)
    - How is the money split between CNAM and the patient? (financial.go)
    - Is each period paid, and what is still due? (payment.go)
    - What expires soon? (alerts.go)

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: a non-negative monetary value backed by decimal.Decimal
  - Identifiers: type-safe IDs for rentals, periods, bonds and payments
  - Payer: which side of a period a payment belongs to (CNAM or patient)

DESIGN PRINCIPLES:
  1. Purity: every engine function is a deterministic transformation of
     an input snapshot. No clock, no I/O, no shared state.
  2. Precision: money uses decimal.Decimal, never float64.
  3. Validation at the boundary: malformed records are rejected, not
     defaulted (see validate.go).

USAGE:
  report, err := coverage.BuildReport(rental, coverage.NewDate(2024, time.March, 1))

SEE ALSO:
  - model.go: Rental, RentalPeriod, InsuranceBond, Payment
  - report.go: Assembles all components into one report
*/
package coverage

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY
// =============================================================================

type Money struct {
	Value decimal.Decimal
}

func NewMoney(value float64) Money { return Money{Value: decimal.NewFromFloat(value)} }
func NewMoneyFromInt(value int64) Money { return Money{Value: decimal.NewFromInt(value)} }
func NewMoneyFromDecimal(d decimal.Decimal) Money { return Money{Value: d} }
func ZeroMoney() Money { return Money{Value: decimal.Zero} }

// ParseMoney parses a decimal string such as "450.00".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Value: d}, nil
}

func (m Money) Add(o Money) Money { return Money{Value: m.Value.Add(o.Value)} }
func (m Money) Sub(o Money) Money { return Money{Value: m.Value.Sub(o.Value)} }
func (m Money) Mul(s decimal.Decimal) Money { return Money{Value: m.Value.Mul(s)} }
func (m Money) Div(s decimal.Decimal) Money { return Money{Value: m.Value.Div(s)} }
func (m Money) IsZero() bool { return m.Value.IsZero() }
func (m Money) IsPositive() bool { return m.Value.IsPositive() }
func (m Money) IsNegative() bool { return m.Value.IsNegative() }
func (m Money) GreaterThan(o Money) bool { return m.Value.GreaterThan(o.Value) }
func (m Money) LessThanOrEqual(o Money) bool { return m.Value.LessThanOrEqual(o.Value) }
func (m Money) Equal(o Money) bool { return m.Value.Equal(o.Value) }
func (m Money) String() string { return m.Value.StringFixed(2) }

// Float64 returns the value for display layers (JSON, logs).
func (m Money) Float64() float64 {
	f, _ := m.Value.Float64()
	return f
}

// ClampZero floors negative values at zero.
func (m Money) ClampZero() Money {
	if m.Value.IsNegative() {
		return ZeroMoney()
	}
	return m
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type RentalID string
type PeriodID string
type BondID string
type PaymentID string

// =============================================================================
// PAYER
// =============================================================================

// Payer identifies one side of a period's expected/paid split.
type Payer string

const (
	PayerCNAM    Payer = "cnam"
	PayerPatient Payer = "patient"
)

func (p Payer) IsValid() bool { return p == PayerCNAM || p == PayerPatient }
