package coverage

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// =============================================================================
// REPORT SERVICE - Repository-backed entry point
// =============================================================================

// ReportService loads rental snapshots through the repositories, folds the
// payment rows onto the periods and runs the engine.
type ReportService struct {
	Rentals  RentalRepository
	Payments PaymentRepository
	Logger   *zap.Logger
}

func NewReportService(rentals RentalRepository, payments PaymentRepository, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{Rentals: rentals, Payments: payments, Logger: logger}
}

// Snapshot returns the rental with paid totals materialised and, when the
// rental has no linked payment, its latest deposit payment linked.
func (s *ReportService) Snapshot(ctx context.Context, id RentalID) (Rental, error) {
	rental, err := s.Rentals.GetRental(ctx, id)
	if err != nil {
		return Rental{}, err
	}
	return s.attachPayments(ctx, rental)
}

func (s *ReportService) attachPayments(ctx context.Context, rental Rental) (Rental, error) {
	payments, err := s.Payments.PaymentsForRental(ctx, rental.ID)
	if err != nil {
		return Rental{}, fmt.Errorf("load payments for rental %s: %w", rental.ID, err)
	}
	rental.Periods = MaterializePaid(rental.Periods, payments)
	if rental.LinkedPayment == nil {
		rental.LinkedPayment = LatestDeposit(payments)
	}
	return rental, nil
}

// Report builds the coverage report of one rental as of the given date.
func (s *ReportService) Report(ctx context.Context, id RentalID, asOf Date) (CoverageReport, error) {
	rental, err := s.Snapshot(ctx, id)
	if err != nil {
		return CoverageReport{}, err
	}

	report, err := BuildReport(rental, asOf)
	if err != nil {
		s.Logger.Warn("coverage report rejected",
			zap.String("rental_id", string(id)),
			zap.Error(err),
		)
		return CoverageReport{}, err
	}

	s.Logger.Debug("coverage report built",
		zap.String("rental_id", string(id)),
		zap.String("as_of", asOf.String()),
		zap.Int("gaps", report.Gaps.TotalGaps),
		zap.Int("critical_gaps", report.Gaps.CriticalGaps),
		zap.String("cnam_coverage_pct", report.Financial.CNAMCoveragePercentage.StringFixed(2)),
		zap.Int("alerts", len(report.Alerts)),
	)
	return report, nil
}

// RentalAlert ties an alert to its rental for portfolio views.
type RentalAlert struct {
	RentalID    RentalID
	PatientName string
	Alert
}

// PortfolioAlerts schedules alerts for every rental, most urgent first.
// Rentals that fail validation are logged and skipped.
func (s *ReportService) PortfolioAlerts(ctx context.Context, asOf Date) ([]RentalAlert, error) {
	rentals, err := s.Rentals.ListRentals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rentals: %w", err)
	}

	var result []RentalAlert
	for _, r := range rentals {
		if err := r.Validate(); err != nil {
			s.Logger.Warn("skipping invalid rental", zap.String("rental_id", string(r.ID)), zap.Error(err))
			continue
		}
		for _, a := range ScheduleAlerts(r.Bonds, r.EndDate, asOf) {
			result = append(result, RentalAlert{RentalID: r.ID, PatientName: r.PatientName, Alert: a})
		}
	}

	sortRentalAlerts(result)
	return result, nil
}
