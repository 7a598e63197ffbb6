/*
method.go - Payment method registration and lookup

PURPOSE:
  For reconciliation the only distinction that matters is CNAM versus
  everything else. The engine therefore knows exactly one method (CNAM);
  domain packages register the patient-side methods they accept (cash,
  cheque, transfer...) so that unknown tags can be rejected at the boundary
  instead of being silently counted as patient money.

USAGE:
  // In rental/types.go
  func init() {
      coverage.RegisterPaymentMethod(MethodCash)
  }

  method, err := coverage.ParsePaymentMethod("CASH")

SEE ALSO:
  - rental/types.go: Concrete patient-side methods
  - validate.go: Rejects unregistered methods
*/
package coverage

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// PaymentMethod is the payer tag carried by a billing period.
type PaymentMethod string

// MethodCNAM is the national health-insurance payer.
const MethodCNAM PaymentMethod = "CNAM"

// Tags are case-insensitive; "cnam" and "CNAM" are the same method.
func (m PaymentMethod) normalized() PaymentMethod {
	return PaymentMethod(strings.ToUpper(strings.TrimSpace(string(m))))
}

// IsCNAM reports whether the method is the insurance payer.
func (m PaymentMethod) IsCNAM() bool { return m.normalized() == MethodCNAM }

// Payer maps the method onto the side of the expected/paid split it feeds.
func (m PaymentMethod) Payer() Payer {
	if m.IsCNAM() {
		return PayerCNAM
	}
	return PayerPatient
}

// =============================================================================
// METHOD REGISTRY
// =============================================================================

var (
	methodRegistry = map[PaymentMethod]bool{MethodCNAM: true}
	methodMu       sync.RWMutex
)

// RegisterPaymentMethod adds a method to the global registry.
// Call this from domain package init() functions.
func RegisterPaymentMethod(m PaymentMethod) {
	methodMu.Lock()
	defer methodMu.Unlock()
	methodRegistry[m.normalized()] = true
}

// IsRegistered reports whether the method is known.
func (m PaymentMethod) IsRegistered() bool {
	methodMu.RLock()
	defer methodMu.RUnlock()
	return methodRegistry[m.normalized()]
}

// ParsePaymentMethod normalises case and rejects unregistered tags.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(s).normalized()
	if !m.IsRegistered() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPaymentMethod, s)
	}
	return m, nil
}

// ListPaymentMethods returns all registered methods, sorted.
func ListPaymentMethods() []PaymentMethod {
	methodMu.RLock()
	defer methodMu.RUnlock()
	result := make([]PaymentMethod, 0, len(methodRegistry))
	for m := range methodRegistry {
		result = append(result, m)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}
