package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/coverage-engine/coverage"
	"github.com/warp/coverage-engine/rental"
	"github.com/warp/coverage-engine/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRental() coverage.Rental {
	end := coverage.NewDate(2024, time.March, 31)
	bondEnd := coverage.NewDate(2024, time.April, 10)
	deposit := coverage.NewMoney(50)
	cnamSplit := coverage.NewMoney(240.5)
	patientSplit := coverage.NewMoney(59.5)

	return coverage.Rental{
		ID:                "r1",
		PatientName:       "Alice",
		EquipmentName:     "Oxygen concentrator",
		StartDate:         coverage.NewDate(2024, time.January, 1),
		EndDate:           &end,
		ConfiguredDeposit: &deposit,
		Periods: []coverage.RentalPeriod{
			{
				ID:            "p2",
				StartDate:     coverage.NewDate(2024, time.February, 15),
				EndDate:       coverage.NewDate(2024, time.March, 31),
				Amount:        coverage.NewMoney(450),
				PaymentMethod: rental.MethodCash,
				Notes:         "second",
			},
			{
				ID:                    "p1",
				StartDate:             coverage.NewDate(2024, time.January, 1),
				EndDate:               coverage.NewDate(2024, time.January, 31),
				Amount:                coverage.NewMoney(300),
				PaymentMethod:         coverage.MethodCNAM,
				CNAMExpectedAmount:    &cnamSplit,
				PatientExpectedAmount: &patientSplit,
			},
		},
		Bonds: []coverage.InsuranceBond{
			{ID: "b1", BondType: rental.BondALD, BondNumber: "ALD-7", TotalAmount: coverage.NewMoney(1200), EndDate: &bondEnd},
		},
	}
}

func TestStore_RentalRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.SaveRental(ctx, sampleRental()))

	got, err := store.GetRental(ctx, "r1")
	require.NoError(t, err)

	assert.Equal(t, "Alice", got.PatientName)
	require.NotNil(t, got.EndDate)
	assert.Equal(t, "2024-03-31", got.EndDate.String())
	require.NotNil(t, got.ConfiguredDeposit)
	assert.Equal(t, "50.00", got.ConfiguredDeposit.String())

	require.Len(t, got.Periods, 2)
	assert.Equal(t, coverage.PeriodID("p1"), got.Periods[0].ID, "periods come back in date order")
	assert.Equal(t, coverage.RentalID("r1"), got.Periods[0].RentalID)
	require.NotNil(t, got.Periods[0].CNAMExpectedAmount)
	assert.Equal(t, "240.50", got.Periods[0].CNAMExpectedAmount.String())
	assert.Nil(t, got.Periods[1].CNAMExpectedAmount)
	assert.Equal(t, "second", got.Periods[1].Notes)

	require.Len(t, got.Bonds, 1)
	assert.Equal(t, "ALD-7", got.Bonds[0].BondNumber)
	assert.Nil(t, got.Bonds[0].StartDate)
	require.NotNil(t, got.Bonds[0].EndDate)

	report, err := coverage.BuildReport(got, coverage.NewDate(2024, time.March, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Gaps.TotalGaps)
}

func TestStore_SaveRentalReplacesChildren(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	r := sampleRental()
	require.NoError(t, store.SaveRental(ctx, r))

	r.Periods = r.Periods[:1]
	r.Bonds = nil
	require.NoError(t, store.SaveRental(ctx, r))

	got, err := store.GetRental(ctx, "r1")
	require.NoError(t, err)
	assert.Len(t, got.Periods, 1)
	assert.Empty(t, got.Bonds)
}

func TestStore_SavePeriodAndBond(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.SaveRental(ctx, sampleRental()))

	gap := coverage.RentalPeriod{
		ID:            "g1",
		RentalID:      "r1",
		StartDate:     coverage.NewDate(2024, time.February, 1),
		EndDate:       coverage.NewDate(2024, time.February, 14),
		Amount:        coverage.NewMoney(140),
		PaymentMethod: rental.MethodCash,
		IsGapPeriod:   true,
	}
	require.NoError(t, store.SavePeriod(ctx, gap))

	found, err := store.FindPeriod(ctx, "g1")
	require.NoError(t, err)
	assert.True(t, found.IsGapPeriod)
	assert.Equal(t, "140.00", found.Amount.String())

	_, err = store.FindPeriod(ctx, "nope")
	assert.ErrorIs(t, err, coverage.ErrPeriodNotFound)

	orphan := gap
	orphan.ID = "g2"
	orphan.RentalID = "ghost"
	assert.ErrorIs(t, store.SavePeriod(ctx, orphan), coverage.ErrRentalNotFound)

	bond := coverage.InsuranceBond{ID: "b2", RentalID: "r1", BondType: rental.BondAPCI, TotalAmount: coverage.NewMoney(10)}
	require.NoError(t, store.SaveBond(ctx, bond))

	got, err := store.GetRental(ctx, "r1")
	require.NoError(t, err)
	assert.Len(t, got.Periods, 3)
	assert.Len(t, got.Bonds, 2)
}

func TestStore_GetRentalNotFound(t *testing.T) {
	store := newStore(t)
	_, err := store.GetRental(context.Background(), "missing")
	assert.ErrorIs(t, err, coverage.ErrRentalNotFound)
}

func TestStore_ListRentals(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	first := sampleRental()
	second := sampleRental()
	second.ID = "r2"
	second.EndDate = nil
	for i := range second.Periods {
		second.Periods[i].ID += "-r2"
	}
	second.Bonds[0].ID = "b1-r2"

	require.NoError(t, store.SaveRental(ctx, first))
	require.NoError(t, store.SaveRental(ctx, second))

	rentals, err := store.ListRentals(ctx)
	require.NoError(t, err)
	require.Len(t, rentals, 2)
	assert.Equal(t, coverage.RentalID("r1"), rentals[0].ID)
	assert.Nil(t, rentals[1].EndDate)
	assert.Len(t, rentals[1].Periods, 2)
}

func TestStore_PaymentsAppendOnly(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.SaveRental(ctx, sampleRental()))

	ledger := coverage.NewPaymentLedger(store, store)

	status, err := ledger.Record(ctx, coverage.Payment{
		RentalID:       "r1",
		PeriodID:       "p1",
		Payer:          coverage.PayerCNAM,
		Amount:         coverage.NewMoney(240.5),
		PaidAt:         coverage.NewDate(2024, time.February, 5),
		Reference:      "CNAM-2024-02",
		IdempotencyKey: "cnam-feb",
	})
	require.NoError(t, err)
	assert.False(t, status.CNAM.CanRecordPayment)
	assert.Equal(t, coverage.StatusPartial, status.Status, "patient side still owes 59.50")

	exists, err := store.PaymentExists(ctx, "cnam-feb")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = ledger.Record(ctx, coverage.Payment{
		RentalID:       "r1",
		PeriodID:       "p1",
		Payer:          coverage.PayerPatient,
		Amount:         coverage.NewMoney(10),
		PaidAt:         coverage.NewDate(2024, time.February, 6),
		IdempotencyKey: "cnam-feb",
	})
	assert.ErrorIs(t, err, coverage.ErrDuplicateIdempotencyKey)

	payments, err := store.PaymentsForRental(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, "240.50", payments[0].Amount.String())
	assert.Equal(t, coverage.MethodCNAM, payments[0].Method)
	assert.Equal(t, "CNAM-2024-02", payments[0].Reference)
	assert.False(t, payments[0].CreatedAt.IsZero())
}

func TestStore_DuplicateKeyFromDatabase(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	p := coverage.Payment{
		ID:             "pay-1",
		RentalID:       "r1",
		Payer:          coverage.PayerPatient,
		Method:         rental.MethodCash,
		Amount:         coverage.NewMoney(80),
		PaidAt:         coverage.NewDate(2024, time.January, 1),
		IsDeposit:      true,
		IdempotencyKey: "dep",
	}
	require.NoError(t, store.AppendPayment(ctx, p))

	p.ID = "pay-2"
	assert.ErrorIs(t, store.AppendPayment(ctx, p), coverage.ErrDuplicateIdempotencyKey)
}

func TestStore_LinkedPayment(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	deposit := coverage.Payment{
		ID:        "dep-1",
		RentalID:  "r1",
		Payer:     coverage.PayerPatient,
		Method:    rental.MethodCheque,
		Amount:    coverage.NewMoney(75),
		PaidAt:    coverage.NewDate(2024, time.January, 1),
		IsDeposit: true,
	}
	require.NoError(t, store.AppendPayment(ctx, deposit))

	r := sampleRental()
	r.ConfiguredDeposit = nil
	r.LinkedPayment = &deposit
	require.NoError(t, store.SaveRental(ctx, r))

	got, err := store.GetRental(ctx, "r1")
	require.NoError(t, err)
	require.NotNil(t, got.LinkedPayment)
	assert.True(t, got.LinkedPayment.IsDeposit)

	summary, err := coverage.Summarize(coverage.FinancialInputFor(got))
	require.NoError(t, err)
	assert.Equal(t, coverage.DepositFromPayment, summary.DepositSource)
	assert.Equal(t, "75.00", summary.DepositAmount.String())
}

func TestStore_Reset(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.SaveRental(ctx, sampleRental()))
	require.NoError(t, store.Reset(ctx))

	rentals, err := store.ListRentals(ctx)
	require.NoError(t, err)
	assert.Empty(t, rentals)
}

func TestStore_SavePeriods(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	r := sampleRental()
	r.Periods = nil
	require.NoError(t, store.SaveRental(ctx, r))

	periods := sampleRental().Periods
	require.NoError(t, store.SavePeriods(ctx, "r1", periods))

	got, err := store.GetRental(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, got.Periods, 2)
	assert.Equal(t, coverage.RentalID("r1"), got.Periods[0].RentalID)

	assert.ErrorIs(t, store.SavePeriods(ctx, "ghost", periods), coverage.ErrRentalNotFound)
}

// =============================================================================
// ERROR PATHS (sqlmock)
// =============================================================================

func newMockStore(t *testing.T) (*sqlite.Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS rentals").WillReturnResult(sqlmock.NewResult(0, 0))
	store, err := sqlite.NewWithDB(db)
	require.NoError(t, err)
	return store, mock
}

func TestStore_MigrationFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("read-only file system"))
	_, err = sqlite.NewWithDB(db)
	assert.ErrorContains(t, err, "failed to migrate database")
}

func TestStore_QueryFailureIsWrapped(t *testing.T) {
	store, mock := newMockStore(t)
	boom := errors.New("connection reset")

	mock.ExpectQuery("FROM rentals").WillReturnError(boom)
	_, err := store.ListRentals(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "failed to query rentals")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_AppendFailureIsWrapped(t *testing.T) {
	store, mock := newMockStore(t)
	boom := errors.New("disk I/O error")

	mock.ExpectExec("INSERT INTO payments").WillReturnError(boom)
	err := store.AppendPayment(context.Background(), coverage.Payment{
		ID:       "x",
		RentalID: "r1",
		Payer:    coverage.PayerCNAM,
		Amount:   coverage.NewMoney(1),
		PaidAt:   coverage.NewDate(2024, time.January, 1),
	})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, coverage.ErrDuplicateIdempotencyKey)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SaveRentalRollsBack(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO rentals").WillReturnError(errors.New("constraint"))
	mock.ExpectRollback()

	err := store.SaveRental(context.Background(), sampleRental())
	assert.ErrorContains(t, err, "failed to save rental")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SavePeriodsRollsBackOnFailure(t *testing.T) {
	// GIVEN: The second insert of a batch fails
	store, mock := newMockStore(t)
	boom := errors.New("disk full")

	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO rental_periods").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO rental_periods").WillReturnError(boom)
	mock.ExpectRollback()

	// WHEN: The batch is saved
	err := store.SavePeriods(context.Background(), "r1", sampleRental().Periods)

	// THEN: The transaction is rolled back, not committed
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}
