/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements the repository interfaces of the coverage engine using SQLite.
  In production, the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

INTERFACES IMPLEMENTED:
  coverage.RentalStore:       Rentals, billing periods, insurance bonds
  coverage.PaymentRepository: Append-only payment rows

APPEND-ONLY ENFORCEMENT:
  - No UPDATE statements on the payments table
  - No DELETE statements on the payments table (except Reset for demos)
  - Corrections via compensating payments only

KEY TABLES:
  rentals:         Rental lifetime, deposit configuration, linked payment
  rental_periods:  Billing periods (FK rentals, cascade on delete)
  insurance_bonds: CNAM coverage declarations (FK rentals)
  payments:        Immutable payment log, unique idempotency key

STORAGE FORMAT:
  Dates are stored as YYYY-MM-DD text, money as decimal text. Nothing is
  stored as REAL, so amounts round-trip exactly.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/coverage.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := coverage.NewReportService(store, store, logger)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - coverage/store.go: Interface definitions
  - coverage/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/coverage-engine/coverage"
)

// Store implements the coverage repositories using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	_ coverage.RentalStore       = (*Store)(nil)
	_ coverage.PaymentRepository = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	store, err := NewWithDB(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewWithDB wraps an already opened database and migrates it.
func NewWithDB(db *sql.DB) (*Store, error) {
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS rentals (
		id TEXT PRIMARY KEY,
		patient_name TEXT NOT NULL DEFAULT '',
		equipment_name TEXT NOT NULL DEFAULT '',
		start_date TEXT NOT NULL,
		end_date TEXT,
		deposit_amount TEXT,
		linked_payment_id TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS rental_periods (
		id TEXT PRIMARY KEY,
		rental_id TEXT NOT NULL REFERENCES rentals(id) ON DELETE CASCADE,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		amount TEXT NOT NULL,
		payment_method TEXT NOT NULL,
		is_gap_period BOOLEAN NOT NULL DEFAULT FALSE,
		cnam_expected_amount TEXT,
		patient_expected_amount TEXT,
		cnam_paid TEXT NOT NULL DEFAULT '0',
		patient_paid TEXT NOT NULL DEFAULT '0',
		notes TEXT
	);

	-- Periods are always read per rental, in date order
	CREATE INDEX IF NOT EXISTS idx_periods_rental_start
		ON rental_periods(rental_id, start_date, end_date);

	CREATE TABLE IF NOT EXISTS insurance_bonds (
		id TEXT PRIMARY KEY,
		rental_id TEXT NOT NULL REFERENCES rentals(id) ON DELETE CASCADE,
		bond_type TEXT NOT NULL DEFAULT '',
		bond_number TEXT,
		total_amount TEXT NOT NULL,
		start_date TEXT,
		end_date TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_bonds_rental
		ON insurance_bonds(rental_id);

	-- Bond expiry scans
	CREATE INDEX IF NOT EXISTS idx_bonds_end_date
		ON insurance_bonds(end_date) WHERE end_date IS NOT NULL;

	-- Payments (append-only)
	CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		rental_id TEXT NOT NULL,
		period_id TEXT,
		payer TEXT NOT NULL,
		method TEXT NOT NULL,
		amount TEXT NOT NULL,
		paid_at TEXT NOT NULL,
		is_deposit BOOLEAN NOT NULL DEFAULT FALSE,
		reference TEXT,
		idempotency_key TEXT UNIQUE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_payments_rental_paid_at
		ON payments(rental_id, paid_at);
	CREATE INDEX IF NOT EXISTS idx_payments_period
		ON payments(period_id) WHERE period_id IS NOT NULL;
	`

	_, err := s.db.Exec(schema)
	return err
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// =============================================================================
// RENTAL STORE (coverage.RentalStore interface)
// =============================================================================

// SaveRental upserts a rental and replaces its periods and bonds atomically.
func (s *Store) SaveRental(ctx context.Context, r coverage.Rental) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	var linkedID sql.NullString
	if r.LinkedPayment != nil {
		linkedID = nullString(string(r.LinkedPayment.ID))
	}

	_, err = sqlTx.ExecContext(ctx, `
		INSERT INTO rentals (id, patient_name, equipment_name, start_date, end_date,
		                     deposit_amount, linked_payment_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			patient_name = excluded.patient_name,
			equipment_name = excluded.equipment_name,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			deposit_amount = excluded.deposit_amount,
			linked_payment_id = excluded.linked_payment_id,
			updated_at = excluded.updated_at
	`,
		r.ID, r.PatientName, r.EquipmentName, r.StartDate.String(), nullDate(r.EndDate),
		nullMoney(r.ConfiguredDeposit), linkedID, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save rental: %w", err)
	}

	if _, err := sqlTx.ExecContext(ctx, "DELETE FROM rental_periods WHERE rental_id = ?", r.ID); err != nil {
		return fmt.Errorf("failed to clear periods: %w", err)
	}
	if _, err := sqlTx.ExecContext(ctx, "DELETE FROM insurance_bonds WHERE rental_id = ?", r.ID); err != nil {
		return fmt.Errorf("failed to clear bonds: %w", err)
	}
	for _, p := range r.Periods {
		p.RentalID = r.ID
		if err := upsertPeriod(ctx, sqlTx, p); err != nil {
			return err
		}
	}
	for _, b := range r.Bonds {
		b.RentalID = r.ID
		if err := upsertBond(ctx, sqlTx, b); err != nil {
			return err
		}
	}

	return sqlTx.Commit()
}

// SavePeriod inserts or replaces a single period of an existing rental.
func (s *Store) SavePeriod(ctx context.Context, p coverage.RentalPeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireRental(ctx, p.RentalID); err != nil {
		return err
	}
	return upsertPeriod(ctx, s.db, p)
}

// SavePeriods inserts or replaces periods of an existing rental in one transaction.
func (s *Store) SavePeriods(ctx context.Context, rentalID coverage.RentalID, periods []coverage.RentalPeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireRental(ctx, rentalID); err != nil {
		return err
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	for _, p := range periods {
		p.RentalID = rentalID
		if err := upsertPeriod(ctx, sqlTx, p); err != nil {
			return err
		}
	}
	return sqlTx.Commit()
}

// SaveBond inserts or replaces a single bond of an existing rental.
func (s *Store) SaveBond(ctx context.Context, b coverage.InsuranceBond) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireRental(ctx, b.RentalID); err != nil {
		return err
	}
	return upsertBond(ctx, s.db, b)
}

func (s *Store) requireRental(ctx context.Context, id coverage.RentalID) error {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM rentals WHERE id = ?", id).Scan(&count); err != nil {
		return fmt.Errorf("failed to look up rental: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("%w: %s", coverage.ErrRentalNotFound, id)
	}
	return nil
}

func upsertPeriod(ctx context.Context, db execer, p coverage.RentalPeriod) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO rental_periods (id, rental_id, start_date, end_date, amount, payment_method,
		                            is_gap_period, cnam_expected_amount, patient_expected_amount,
		                            cnam_paid, patient_paid, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			amount = excluded.amount,
			payment_method = excluded.payment_method,
			is_gap_period = excluded.is_gap_period,
			cnam_expected_amount = excluded.cnam_expected_amount,
			patient_expected_amount = excluded.patient_expected_amount,
			cnam_paid = excluded.cnam_paid,
			patient_paid = excluded.patient_paid,
			notes = excluded.notes
	`,
		p.ID, p.RentalID, p.StartDate.String(), p.EndDate.String(), p.Amount.Value.String(),
		string(p.PaymentMethod), p.IsGapPeriod,
		nullMoney(p.CNAMExpectedAmount), nullMoney(p.PatientExpectedAmount),
		p.CNAMPaid.Value.String(), p.PatientPaid.Value.String(), nullString(p.Notes),
	)
	if err != nil {
		return fmt.Errorf("failed to save period %s: %w", p.ID, err)
	}
	return nil
}

func upsertBond(ctx context.Context, db execer, b coverage.InsuranceBond) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO insurance_bonds (id, rental_id, bond_type, bond_number, total_amount, start_date, end_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			bond_type = excluded.bond_type,
			bond_number = excluded.bond_number,
			total_amount = excluded.total_amount,
			start_date = excluded.start_date,
			end_date = excluded.end_date
	`,
		b.ID, b.RentalID, b.BondType, nullString(b.BondNumber), b.TotalAmount.Value.String(),
		nullDate(b.StartDate), nullDate(b.EndDate),
	)
	if err != nil {
		return fmt.Errorf("failed to save bond %s: %w", b.ID, err)
	}
	return nil
}

// GetRental returns a rental with its periods, bonds and linked payment.
func (s *Store) GetRental(ctx context.Context, id coverage.RentalID) (coverage.Rental, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rentals, links, err := s.queryRentals(ctx, `
		SELECT id, patient_name, equipment_name, start_date, end_date, deposit_amount, linked_payment_id
		FROM rentals WHERE id = ?
	`, id)
	if err != nil {
		return coverage.Rental{}, err
	}
	if len(rentals) == 0 {
		return coverage.Rental{}, fmt.Errorf("%w: %s", coverage.ErrRentalNotFound, id)
	}
	if err := s.loadChildren(ctx, &rentals[0], links[0]); err != nil {
		return coverage.Rental{}, err
	}
	return rentals[0], nil
}

// ListRentals returns every rental, oldest first.
func (s *Store) ListRentals(ctx context.Context) ([]coverage.Rental, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rentals, links, err := s.queryRentals(ctx, `
		SELECT id, patient_name, equipment_name, start_date, end_date, deposit_amount, linked_payment_id
		FROM rentals ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	// Children are loaded after the rental cursor is closed; in-memory
	// databases run on a single connection.
	for i := range rentals {
		if err := s.loadChildren(ctx, &rentals[i], links[i]); err != nil {
			return nil, err
		}
	}
	return rentals, nil
}

func (s *Store) queryRentals(ctx context.Context, query string, args ...any) ([]coverage.Rental, []string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query rentals: %w", err)
	}
	defer rows.Close()

	var (
		rentals []coverage.Rental
		links   []string
	)
	for rows.Next() {
		var (
			r                coverage.Rental
			startDate        string
			endDate, deposit sql.NullString
			linkedPaymentID  sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.PatientName, &r.EquipmentName, &startDate, &endDate, &deposit, &linkedPaymentID); err != nil {
			return nil, nil, fmt.Errorf("failed to scan rental: %w", err)
		}
		if r.StartDate, err = coverage.ParseDate(startDate); err != nil {
			return nil, nil, fmt.Errorf("rental %s: %w", r.ID, err)
		}
		if r.EndDate, err = parseNullDate(endDate); err != nil {
			return nil, nil, fmt.Errorf("rental %s: %w", r.ID, err)
		}
		if r.ConfiguredDeposit, err = parseNullMoney(deposit); err != nil {
			return nil, nil, fmt.Errorf("rental %s: %w", r.ID, err)
		}
		rentals = append(rentals, r)
		links = append(links, linkedPaymentID.String)
	}
	return rentals, links, rows.Err()
}

func (s *Store) loadChildren(ctx context.Context, r *coverage.Rental, linkedPaymentID string) error {
	periods, err := s.queryPeriods(ctx, `
		SELECT id, rental_id, start_date, end_date, amount, payment_method, is_gap_period,
		       cnam_expected_amount, patient_expected_amount, cnam_paid, patient_paid, notes
		FROM rental_periods WHERE rental_id = ?
		ORDER BY start_date ASC, end_date ASC
	`, r.ID)
	if err != nil {
		return err
	}
	r.Periods = periods

	bonds, err := s.queryBonds(ctx, r.ID)
	if err != nil {
		return err
	}
	r.Bonds = bonds

	if linkedPaymentID != "" {
		payments, err := s.queryPayments(ctx, paymentColumns+" WHERE id = ?", linkedPaymentID)
		if err != nil {
			return err
		}
		if len(payments) == 1 {
			r.LinkedPayment = &payments[0]
		}
	}
	return nil
}

// FindPeriod locates a period by ID.
func (s *Store) FindPeriod(ctx context.Context, id coverage.PeriodID) (coverage.RentalPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	periods, err := s.queryPeriods(ctx, `
		SELECT id, rental_id, start_date, end_date, amount, payment_method, is_gap_period,
		       cnam_expected_amount, patient_expected_amount, cnam_paid, patient_paid, notes
		FROM rental_periods WHERE id = ?
	`, id)
	if err != nil {
		return coverage.RentalPeriod{}, err
	}
	if len(periods) == 0 {
		return coverage.RentalPeriod{}, fmt.Errorf("%w: %s", coverage.ErrPeriodNotFound, id)
	}
	return periods[0], nil
}

func (s *Store) queryPeriods(ctx context.Context, query string, args ...any) ([]coverage.RentalPeriod, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query periods: %w", err)
	}
	defer rows.Close()

	var periods []coverage.RentalPeriod
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

func scanPeriod(rows *sql.Rows) (coverage.RentalPeriod, error) {
	var (
		p                           coverage.RentalPeriod
		startDate, endDate          string
		amount, method              string
		cnamExpected, patientExpect sql.NullString
		cnamPaid, patientPaid       string
		notes                       sql.NullString
	)
	err := rows.Scan(
		&p.ID, &p.RentalID, &startDate, &endDate, &amount, &method, &p.IsGapPeriod,
		&cnamExpected, &patientExpect, &cnamPaid, &patientPaid, &notes,
	)
	if err != nil {
		return p, fmt.Errorf("failed to scan period: %w", err)
	}

	if p.StartDate, err = coverage.ParseDate(startDate); err != nil {
		return p, err
	}
	if p.EndDate, err = coverage.ParseDate(endDate); err != nil {
		return p, err
	}
	if p.Amount, err = coverage.ParseMoney(amount); err != nil {
		return p, fmt.Errorf("period %s amount: %w", p.ID, err)
	}
	if p.CNAMExpectedAmount, err = parseNullMoney(cnamExpected); err != nil {
		return p, err
	}
	if p.PatientExpectedAmount, err = parseNullMoney(patientExpect); err != nil {
		return p, err
	}
	if p.CNAMPaid, err = coverage.ParseMoney(cnamPaid); err != nil {
		return p, err
	}
	if p.PatientPaid, err = coverage.ParseMoney(patientPaid); err != nil {
		return p, err
	}
	// Stored tags are kept verbatim; validation rejects unknown ones later.
	p.PaymentMethod = coverage.PaymentMethod(method)
	p.Notes = notes.String
	return p, nil
}

func (s *Store) queryBonds(ctx context.Context, rentalID coverage.RentalID) ([]coverage.InsuranceBond, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, rental_id, bond_type, bond_number, total_amount, start_date, end_date
		FROM insurance_bonds WHERE rental_id = ?
		ORDER BY end_date ASC, id ASC
	`, rentalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bonds: %w", err)
	}
	defer rows.Close()

	var bonds []coverage.InsuranceBond
	for rows.Next() {
		var (
			b                  coverage.InsuranceBond
			number             sql.NullString
			amount             string
			startDate, endDate sql.NullString
		)
		if err := rows.Scan(&b.ID, &b.RentalID, &b.BondType, &number, &amount, &startDate, &endDate); err != nil {
			return nil, fmt.Errorf("failed to scan bond: %w", err)
		}
		b.BondNumber = number.String
		if b.TotalAmount, err = coverage.ParseMoney(amount); err != nil {
			return nil, fmt.Errorf("bond %s amount: %w", b.ID, err)
		}
		if b.StartDate, err = parseNullDate(startDate); err != nil {
			return nil, err
		}
		if b.EndDate, err = parseNullDate(endDate); err != nil {
			return nil, err
		}
		bonds = append(bonds, b)
	}
	return bonds, rows.Err()
}

// =============================================================================
// PAYMENT REPOSITORY (coverage.PaymentRepository interface)
// =============================================================================

const paymentColumns = `
	SELECT id, rental_id, period_id, payer, method, amount, paid_at, is_deposit,
	       reference, idempotency_key, created_at
	FROM payments`

// AppendPayment adds a payment. Append-only.
func (s *Store) AppendPayment(ctx context.Context, p coverage.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payments
		(id, rental_id, period_id, payer, method, amount, paid_at, is_deposit,
		 reference, idempotency_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.ID,
		p.RentalID,
		nullString(string(p.PeriodID)),
		string(p.Payer),
		string(p.Method),
		p.Amount.Value.String(),
		p.PaidAt.String(),
		p.IsDeposit,
		nullString(p.Reference),
		nullString(p.IdempotencyKey),
		createdAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return coverage.ErrDuplicateIdempotencyKey
		}
		return fmt.Errorf("failed to append payment: %w", err)
	}
	return nil
}

// PaymentsForRental returns all payments of a rental ordered by PaidAt.
func (s *Store) PaymentsForRental(ctx context.Context, id coverage.RentalID) ([]coverage.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryPayments(ctx, paymentColumns+`
		WHERE rental_id = ?
		ORDER BY paid_at ASC, created_at ASC
	`, id)
}

// PaymentExists checks if an idempotency key exists.
func (s *Store) PaymentExists(ctx context.Context, idempotencyKey string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM payments WHERE idempotency_key = ?",
		idempotencyKey,
	).Scan(&count)

	return count > 0, err
}

func (s *Store) queryPayments(ctx context.Context, query string, args ...any) ([]coverage.Payment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var payments []coverage.Payment
	for rows.Next() {
		var (
			p                         coverage.Payment
			periodID                  sql.NullString
			payer, method, amount     string
			paidAt, createdAt         string
			reference, idempotencyKey sql.NullString
		)
		err := rows.Scan(&p.ID, &p.RentalID, &periodID, &payer, &method, &amount, &paidAt,
			&p.IsDeposit, &reference, &idempotencyKey, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		p.PeriodID = coverage.PeriodID(periodID.String)
		p.Payer = coverage.Payer(payer)
		p.Method = coverage.PaymentMethod(method)
		if p.Amount, err = coverage.ParseMoney(amount); err != nil {
			return nil, fmt.Errorf("payment %s amount: %w", p.ID, err)
		}
		if p.PaidAt, err = coverage.ParseDate(paidAt); err != nil {
			return nil, err
		}
		p.Reference = reference.String
		p.IdempotencyKey = idempotencyKey.String
		p.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// =============================================================================
// ADMIN
// =============================================================================

// Reset clears all data. Used by the demo scenarios only.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"payments", "insurance_bonds", "rental_periods", "rentals"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullDate(d *coverage.Date) sql.NullString {
	if d == nil || d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func nullMoney(m *coverage.Money) sql.NullString {
	if m == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: m.Value.String(), Valid: true}
}

func parseNullDate(ns sql.NullString) (*coverage.Date, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	d, err := coverage.ParseDate(ns.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func parseNullMoney(ns sql.NullString) (*coverage.Money, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	m, err := coverage.ParseMoney(ns.String)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}
