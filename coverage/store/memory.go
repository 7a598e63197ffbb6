// Package store provides in-memory repository implementations.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/warp/coverage-engine/coverage"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu          sync.RWMutex
	rentals     map[coverage.RentalID]coverage.Rental
	order       []coverage.RentalID
	payments    map[coverage.RentalID][]coverage.Payment
	idempotency map[string]bool
}

var (
	_ coverage.RentalStore       = (*Memory)(nil)
	_ coverage.PaymentRepository = (*Memory)(nil)
)

func NewMemory() *Memory {
	return &Memory{
		rentals:     make(map[coverage.RentalID]coverage.Rental),
		payments:    make(map[coverage.RentalID][]coverage.Payment),
		idempotency: make(map[string]bool),
	}
}

// SaveRental inserts or replaces a rental, including its periods and bonds.
func (m *Memory) SaveRental(_ context.Context, r coverage.Rental) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rentals[r.ID]; !ok {
		m.order = append(m.order, r.ID)
	}
	m.rentals[r.ID] = cloneRental(r)
	return nil
}

// SavePeriod inserts or replaces a period of an existing rental.
func (m *Memory) SavePeriod(_ context.Context, p coverage.RentalPeriod) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rentals[p.RentalID]
	if !ok {
		return fmt.Errorf("%w: %s", coverage.ErrRentalNotFound, p.RentalID)
	}
	r.Periods = upsertPeriod(r.Periods, p)
	m.rentals[r.ID] = r
	return nil
}

// SavePeriods inserts or replaces periods of an existing rental.
func (m *Memory) SavePeriods(_ context.Context, rentalID coverage.RentalID, periods []coverage.RentalPeriod) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rentals[rentalID]
	if !ok {
		return fmt.Errorf("%w: %s", coverage.ErrRentalNotFound, rentalID)
	}
	r.Periods = append([]coverage.RentalPeriod(nil), r.Periods...)
	for _, p := range periods {
		p.RentalID = rentalID
		r.Periods = upsertPeriod(r.Periods, p)
	}
	m.rentals[rentalID] = r
	return nil
}

func upsertPeriod(periods []coverage.RentalPeriod, p coverage.RentalPeriod) []coverage.RentalPeriod {
	for i := range periods {
		if periods[i].ID == p.ID {
			periods[i] = p
			return periods
		}
	}
	return append(periods, p)
}

// SaveBond inserts or replaces a bond of an existing rental.
func (m *Memory) SaveBond(_ context.Context, b coverage.InsuranceBond) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rentals[b.RentalID]
	if !ok {
		return fmt.Errorf("%w: %s", coverage.ErrRentalNotFound, b.RentalID)
	}
	replaced := false
	for i := range r.Bonds {
		if r.Bonds[i].ID == b.ID {
			r.Bonds[i] = b
			replaced = true
		}
	}
	if !replaced {
		r.Bonds = append(r.Bonds, b)
	}
	m.rentals[r.ID] = r
	return nil
}

func (m *Memory) GetRental(_ context.Context, id coverage.RentalID) (coverage.Rental, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.rentals[id]
	if !ok {
		return coverage.Rental{}, fmt.Errorf("%w: %s", coverage.ErrRentalNotFound, id)
	}
	return cloneRental(r), nil
}

func (m *Memory) ListRentals(_ context.Context) ([]coverage.Rental, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]coverage.Rental, 0, len(m.order))
	for _, id := range m.order {
		result = append(result, cloneRental(m.rentals[id]))
	}
	return result, nil
}

func (m *Memory) FindPeriod(_ context.Context, id coverage.PeriodID) (coverage.RentalPeriod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.rentals {
		if p, ok := r.PeriodByID(id); ok {
			return p, nil
		}
	}
	return coverage.RentalPeriod{}, fmt.Errorf("%w: %s", coverage.ErrPeriodNotFound, id)
}

// AppendPayment adds a payment. Append-only.
func (m *Memory) AppendPayment(_ context.Context, p coverage.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.IdempotencyKey != "" && m.idempotency[p.IdempotencyKey] {
		return coverage.ErrDuplicateIdempotencyKey
	}

	txs := m.payments[p.RentalID]
	// Binary search for insertion point keeps rows ordered by PaidAt.
	i := sort.Search(len(txs), func(i int) bool {
		return txs[i].PaidAt.After(p.PaidAt)
	})
	txs = append(txs, coverage.Payment{})
	copy(txs[i+1:], txs[i:])
	txs[i] = p
	m.payments[p.RentalID] = txs

	if p.IdempotencyKey != "" {
		m.idempotency[p.IdempotencyKey] = true
	}
	return nil
}

func (m *Memory) PaymentsForRental(_ context.Context, id coverage.RentalID) ([]coverage.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]coverage.Payment, len(m.payments[id]))
	copy(result, m.payments[id])
	return result, nil
}

func (m *Memory) PaymentExists(_ context.Context, idempotencyKey string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.idempotency[idempotencyKey], nil
}

// Reset drops all data.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rentals = make(map[coverage.RentalID]coverage.Rental)
	m.order = nil
	m.payments = make(map[coverage.RentalID][]coverage.Payment)
	m.idempotency = make(map[string]bool)
	return nil
}

// cloneRental copies the slices so callers never share state with the store.
func cloneRental(r coverage.Rental) coverage.Rental {
	r.Periods = append([]coverage.RentalPeriod(nil), r.Periods...)
	r.Bonds = append([]coverage.InsuranceBond(nil), r.Bonds...)
	return r
}
