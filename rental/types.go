// Package rental implements equipment-rental specifics on top of the coverage engine.
// It registers the patient-side payment methods and provides billing schedule presets.
package rental

import "github.com/warp/coverage-engine/coverage"

// =============================================================================
// PATIENT-SIDE PAYMENT METHODS
// =============================================================================

// Everything that is not CNAM is paid by the patient. The engine only needs
// to know the tag exists.
const (
	MethodCash     coverage.PaymentMethod = "CASH"
	MethodCheque   coverage.PaymentMethod = "CHEQUE"
	MethodTransfer coverage.PaymentMethod = "TRANSFER"
	MethodTraite   coverage.PaymentMethod = "TRAITE" // bill of exchange
	MethodCard     coverage.PaymentMethod = "CARD"
)

// Register all patient-side methods with the engine registry
func init() {
	coverage.RegisterPaymentMethod(MethodCash)
	coverage.RegisterPaymentMethod(MethodCheque)
	coverage.RegisterPaymentMethod(MethodTransfer)
	coverage.RegisterPaymentMethod(MethodTraite)
	coverage.RegisterPaymentMethod(MethodCard)
}

// =============================================================================
// BOND TYPES
// =============================================================================

// Common CNAM bond categories. BondType is free text in the engine; these
// are the values the back office uses.
const (
	// long-term illness
	BondALD = "ALD"
	// heavy chronic condition
	BondAPCI = "APCI"

	BondHospitalization = "HOSPITALIZATION"
	BondOther           = "OTHER"
)

// BondTypes lists the known bond categories.
func BondTypes() []string {
	return []string{BondALD, BondAPCI, BondHospitalization, BondOther}
}
