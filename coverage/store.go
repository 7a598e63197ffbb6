/*
store.go - Repository interfaces the engine is fed through

PURPOSE:
  The engine itself never touches a database. These interfaces describe the
  collaborators that load a rental snapshot and its payment rows. Different
  implementations can use SQLite or in-memory storage.

KEY INTERFACES:
  RentalRepository:  Rentals with their periods and bonds (read side)
  RentalStore:       RentalRepository plus the writes the API needs
  PaymentRepository: Append-only payment rows

APPEND-ONLY CONTRACT:
  Payments are never updated or deleted. A wrong payment is corrected by a
  compensating entry recorded by the surrounding back office.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - coverage/store/memory.go: In-memory for testing

SEE ALSO:
  - ledger.go: PaymentLedger, MaterializePaid
  - service.go: ReportService
*/
package coverage

import "context"

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks -source=store.go

// RentalRepository supplies rental snapshots.
type RentalRepository interface {
	// GetRental returns the rental with its periods and bonds.
	// Returns ErrRentalNotFound when the ID is unknown.
	GetRental(ctx context.Context, id RentalID) (Rental, error)

	// ListRentals returns every rental with its periods and bonds.
	ListRentals(ctx context.Context) ([]Rental, error)
}

// RentalStore adds the writes used by the HTTP layer and demo scenarios.
type RentalStore interface {
	RentalRepository

	SaveRental(ctx context.Context, r Rental) error
	SavePeriod(ctx context.Context, p RentalPeriod) error

	// SavePeriods saves several periods of one rental. Either all are
	// saved or none is.
	SavePeriods(ctx context.Context, rentalID RentalID, periods []RentalPeriod) error
	SaveBond(ctx context.Context, b InsuranceBond) error

	// FindPeriod locates a period by ID across rentals.
	// Returns ErrPeriodNotFound when the ID is unknown.
	FindPeriod(ctx context.Context, id PeriodID) (RentalPeriod, error)
}

// PaymentRepository stores payment rows. Append-only.
type PaymentRepository interface {
	// AppendPayment persists a payment. Returns ErrDuplicateIdempotencyKey
	// if the key already exists.
	AppendPayment(ctx context.Context, p Payment) error

	// PaymentsForRental returns all payments of a rental ordered by PaidAt.
	PaymentsForRental(ctx context.Context, id RentalID) ([]Payment, error)

	// PaymentExists checks whether an idempotency key was already used.
	PaymentExists(ctx context.Context, idempotencyKey string) (bool, error)
}
