package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/coverage-engine/coverage"
	"github.com/warp/coverage-engine/coverage/store"
)

func newRental() coverage.Rental {
	end := coverage.NewDate(2024, time.March, 31)
	return coverage.Rental{
		ID:        "r1",
		StartDate: coverage.NewDate(2024, time.January, 1),
		EndDate:   &end,
		Periods: []coverage.RentalPeriod{{
			ID:            "p1",
			RentalID:      "r1",
			StartDate:     coverage.NewDate(2024, time.January, 1),
			EndDate:       coverage.NewDate(2024, time.January, 31),
			Amount:        coverage.NewMoney(300),
			PaymentMethod: coverage.MethodCNAM,
		}},
	}
}

func TestMemory_RentalRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	require.NoError(t, m.SaveRental(ctx, newRental()))

	got, err := m.GetRental(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, got.Periods, 1)

	// Mutating the returned copy does not leak into the store.
	got.Periods[0].Amount = coverage.NewMoney(1)
	again, _ := m.GetRental(ctx, "r1")
	assert.Equal(t, "300.00", again.Periods[0].Amount.String())

	_, err = m.GetRental(ctx, "missing")
	assert.ErrorIs(t, err, coverage.ErrRentalNotFound)
}

func TestMemory_SavePeriodAndBond(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	require.NoError(t, m.SaveRental(ctx, newRental()))

	p2 := coverage.RentalPeriod{
		ID:            "p2",
		RentalID:      "r1",
		StartDate:     coverage.NewDate(2024, time.February, 1),
		EndDate:       coverage.NewDate(2024, time.February, 29),
		Amount:        coverage.NewMoney(280),
		PaymentMethod: coverage.MethodCNAM,
	}
	require.NoError(t, m.SavePeriod(ctx, p2))
	require.NoError(t, m.SaveBond(ctx, coverage.InsuranceBond{ID: "b1", RentalID: "r1", TotalAmount: coverage.NewMoney(500)}))

	found, err := m.FindPeriod(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, coverage.RentalID("r1"), found.RentalID)

	r, _ := m.GetRental(ctx, "r1")
	assert.Len(t, r.Periods, 2)
	assert.Len(t, r.Bonds, 1)

	p2.RentalID = "ghost"
	assert.ErrorIs(t, m.SavePeriod(ctx, p2), coverage.ErrRentalNotFound)

	_, err = m.FindPeriod(ctx, "p9")
	assert.ErrorIs(t, err, coverage.ErrPeriodNotFound)
}

func TestMemory_SavePeriods(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	require.NoError(t, m.SaveRental(ctx, newRental()))

	batch := []coverage.RentalPeriod{
		{ID: "p2", StartDate: coverage.NewDate(2024, time.February, 1), EndDate: coverage.NewDate(2024, time.February, 29), Amount: coverage.NewMoney(280), PaymentMethod: coverage.MethodCNAM},
		{ID: "p3", StartDate: coverage.NewDate(2024, time.March, 1), EndDate: coverage.NewDate(2024, time.March, 31), Amount: coverage.NewMoney(300), PaymentMethod: coverage.MethodCNAM},
	}
	require.NoError(t, m.SavePeriods(ctx, "r1", batch))

	r, _ := m.GetRental(ctx, "r1")
	require.Len(t, r.Periods, 3)
	found, err := m.FindPeriod(ctx, "p3")
	require.NoError(t, err)
	assert.Equal(t, coverage.RentalID("r1"), found.RentalID)

	assert.ErrorIs(t, m.SavePeriods(ctx, "ghost", batch), coverage.ErrRentalNotFound)
}

func TestMemory_PaymentsOrderedAndIdempotent(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	later := coverage.Payment{ID: "a", RentalID: "r1", PaidAt: coverage.NewDate(2024, time.March, 1), IdempotencyKey: "k1"}
	earlier := coverage.Payment{ID: "b", RentalID: "r1", PaidAt: coverage.NewDate(2024, time.February, 1)}

	require.NoError(t, m.AppendPayment(ctx, later))
	require.NoError(t, m.AppendPayment(ctx, earlier))

	payments, err := m.PaymentsForRental(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, coverage.PaymentID("b"), payments[0].ID)

	exists, err := m.PaymentExists(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, exists)

	dup := later
	dup.ID = "c"
	assert.ErrorIs(t, m.AppendPayment(ctx, dup), coverage.ErrDuplicateIdempotencyKey)

	require.NoError(t, m.Reset(ctx))
	rentals, _ := m.ListRentals(ctx)
	assert.Empty(t, rentals)
}
