package coverage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/warp/coverage-engine/coverage"
	"github.com/warp/coverage-engine/coverage/mocks"
)

func TestReportService_MaterializesPayments(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	rentals := mocks.NewMockRentalRepository(ctrl)
	payments := mocks.NewMockPaymentRepository(ctrl)

	rentals.EXPECT().GetRental(gomock.Any(), coverage.RentalID("rental-1")).Return(rentalWithFebruaryHole(), nil)
	payments.EXPECT().PaymentsForRental(gomock.Any(), coverage.RentalID("rental-1")).Return([]coverage.Payment{
		{PeriodID: "p1", Payer: coverage.PayerCNAM, Amount: money(300), PaidAt: date(2024, time.February, 1)},
		{Payer: coverage.PayerPatient, Amount: money(50), PaidAt: date(2024, time.January, 1), IsDeposit: true},
	}, nil)

	svc := coverage.NewReportService(rentals, payments, nil)
	report, err := svc.Report(context.Background(), "rental-1", date(2024, time.March, 1))
	require.NoError(t, err)

	assert.Equal(t, coverage.StatusComplete, report.PaymentStatus[0].Status)
	assert.Equal(t, coverage.StatusPending, report.PaymentStatus[1].Status)
	assert.Equal(t, coverage.DepositFromPayment, report.Financial.DepositSource)
	assert.True(t, moneyEqual(money(800), report.Financial.TotalExpectedRevenue))
}

func TestReportService_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	rentals := mocks.NewMockRentalRepository(ctrl)
	payments := mocks.NewMockPaymentRepository(ctrl)
	rentals.EXPECT().GetRental(gomock.Any(), gomock.Any()).Return(coverage.Rental{}, coverage.ErrRentalNotFound)

	svc := coverage.NewReportService(rentals, payments, zap.NewNop())
	_, err := svc.Report(context.Background(), "ghost", date(2024, time.March, 1))
	assert.True(t, coverage.IsNotFound(err))
}

func TestReportService_PortfolioAlertsSkipsInvalid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	asOf := date(2024, time.March, 1)
	good := rentalWithFebruaryHole()
	good.PatientName = "Alice"
	good.Bonds = []coverage.InsuranceBond{bondEnding("b1", asOf, 12)}

	soon := rentalWithFebruaryHole()
	soon.ID = "rental-2"
	soon.EndDate = datePtr(2024, time.March, 3)
	soon.Periods = nil

	broken := rentalWithFebruaryHole()
	broken.ID = "rental-3"
	broken.Periods[0].PaymentMethod = "GOLD"
	broken.Bonds = []coverage.InsuranceBond{bondEnding("b3", asOf, 1)}

	rentals := mocks.NewMockRentalRepository(ctrl)
	rentals.EXPECT().ListRentals(gomock.Any()).Return([]coverage.Rental{good, soon, broken}, nil)

	core, logs := observer.New(zap.WarnLevel)
	svc := coverage.NewReportService(rentals, mocks.NewMockPaymentRepository(ctrl), zap.New(core))

	alerts, err := svc.PortfolioAlerts(context.Background(), asOf)
	require.NoError(t, err)
	require.Len(t, alerts, 2)

	assert.Equal(t, coverage.RentalID("rental-2"), alerts[0].RentalID)
	assert.Equal(t, coverage.AlertRentalEnd, alerts[0].Kind)
	assert.Equal(t, coverage.RentalID("rental-1"), alerts[1].RentalID)
	assert.Equal(t, "Alice", alerts[1].PatientName)

	assert.Equal(t, 1, logs.FilterMessage("skipping invalid rental").Len())
}

func TestReportService_ListFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	rentals := mocks.NewMockRentalRepository(ctrl)
	rentals.EXPECT().ListRentals(gomock.Any()).Return(nil, errors.New("db down"))

	svc := coverage.NewReportService(rentals, mocks.NewMockPaymentRepository(ctrl), nil)
	_, err := svc.PortfolioAlerts(context.Background(), date(2024, time.March, 1))
	assert.Error(t, err)
}
