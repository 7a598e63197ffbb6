/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's model from the external API contract: dates travel as
  YYYY-MM-DD strings, money as JSON numbers, percentages as numbers with
  two decimals.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Rentals:   RentalDTO, CreateRentalRequest
  Periods:   PeriodDTO, CreatePeriodRequest
  Bonds:     BondDTO, CreateBondRequest
  Payments:  RecordPaymentRequest, PaymentStatusDTO, PayerSideDTO
  Report:    GapAnalysisDTO, FinancialSummaryDTO, AlertDTO, ReportDTO
  Scenarios: ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Request types carry go-playground/validator tags checked by decode() in
  handlers.go. Shape checks live here; domain checks (period ordering,
  registered payment methods, settled payer sides) stay in the engine.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/schedule.go: ScheduleJSON request body
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/coverage-engine/coverage"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// CreateRentalRequest is the body of POST /api/rentals.
type CreateRentalRequest struct {
	ID            string   `json:"id,omitempty"`
	PatientName   string   `json:"patient_name" validate:"required"`
	EquipmentName string   `json:"equipment_name"`
	StartDate     string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate       string   `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DepositAmount *float64 `json:"deposit_amount,omitempty" validate:"omitempty,gte=0"`
}

// CreatePeriodRequest is the body of POST /api/rentals/{id}/periods.
type CreatePeriodRequest struct {
	ID                    string   `json:"id,omitempty"`
	StartDate             string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate               string   `json:"end_date" validate:"required,datetime=2006-01-02"`
	Amount                float64  `json:"amount" validate:"gte=0"`
	PaymentMethod         string   `json:"payment_method" validate:"required"`
	IsGapPeriod           bool     `json:"is_gap_period"`
	CNAMExpectedAmount    *float64 `json:"cnam_expected_amount,omitempty" validate:"omitempty,gte=0"`
	PatientExpectedAmount *float64 `json:"patient_expected_amount,omitempty" validate:"omitempty,gte=0"`
	Notes                 string   `json:"notes,omitempty"`
}

// CreateBondRequest is the body of POST /api/rentals/{id}/bonds.
type CreateBondRequest struct {
	ID          string  `json:"id,omitempty"`
	BondType    string  `json:"bond_type" validate:"required"`
	BondNumber  string  `json:"bond_number,omitempty"`
	TotalAmount float64 `json:"total_amount" validate:"gte=0"`
	StartDate   string  `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate     string  `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// RecordPaymentRequest is the body of POST /api/periods/{id}/payments.
type RecordPaymentRequest struct {
	Payer          string  `json:"payer" validate:"required,oneof=cnam patient"`
	Amount         float64 `json:"amount" validate:"gt=0"`
	Method         string  `json:"method,omitempty"`
	PaidAt         string  `json:"paid_at" validate:"required,datetime=2006-01-02"`
	Reference      string  `json:"reference,omitempty"`
	IdempotencyKey string  `json:"idempotency_key,omitempty" validate:"omitempty,max=128"`
}

// LoadScenarioRequest is the body of POST /api/scenarios/load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// RentalDTO represents a rental in API responses.
type RentalDTO struct {
	ID            string      `json:"id"`
	PatientName   string      `json:"patient_name"`
	EquipmentName string      `json:"equipment_name"`
	StartDate     string      `json:"start_date"`
	EndDate       *string     `json:"end_date"`
	DepositAmount *float64    `json:"deposit_amount,omitempty"`
	Periods       []PeriodDTO `json:"periods"`
	Bonds         []BondDTO   `json:"bonds"`
}

// PeriodDTO represents a billing period.
type PeriodDTO struct {
	ID                    string   `json:"id"`
	RentalID              string   `json:"rental_id"`
	StartDate             string   `json:"start_date"`
	EndDate               string   `json:"end_date"`
	Days                  int      `json:"days"`
	Amount                float64  `json:"amount"`
	PaymentMethod         string   `json:"payment_method"`
	IsGapPeriod           bool     `json:"is_gap_period"`
	CNAMExpectedAmount    *float64 `json:"cnam_expected_amount,omitempty"`
	PatientExpectedAmount *float64 `json:"patient_expected_amount,omitempty"`
	CNAMPaid              float64  `json:"cnam_paid"`
	PatientPaid           float64  `json:"patient_paid"`
	Notes                 string   `json:"notes,omitempty"`
}

// BondDTO represents an insurance bond.
type BondDTO struct {
	ID          string  `json:"id"`
	RentalID    string  `json:"rental_id"`
	BondType    string  `json:"bond_type"`
	BondNumber  string  `json:"bond_number,omitempty"`
	TotalAmount float64 `json:"total_amount"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
}

// GapDTO represents one uncovered interval.
type GapDTO struct {
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	Days         int     `json:"days"`
	Amount       float64 `json:"amount"`
	Severity     string  `json:"severity"`
	Position     string  `json:"position"`
	RatePeriodID string  `json:"rate_period_id,omitempty"`
}

// GapAnalysisDTO is the gap detector output.
type GapAnalysisDTO struct {
	Gaps         []GapDTO `json:"gaps"`
	TotalGaps    int      `json:"total_gaps"`
	CriticalGaps int      `json:"critical_gaps"`
	GapDays      int      `json:"gap_days"`
	GapAmount    float64  `json:"gap_amount"`
}

// FinancialSummaryDTO is the aggregator output.
type FinancialSummaryDTO struct {
	CNAMPeriodsAmount      float64 `json:"cnam_periods_amount"`
	CNAMBondsAmount        float64 `json:"cnam_bonds_amount"`
	DepositAmount          float64 `json:"deposit_amount"`
	DepositSource          string  `json:"deposit_source"`
	PeriodsAmount          float64 `json:"periods_amount"`
	GapAmount              float64 `json:"gap_amount"`
	PatientPeriodsAmount   float64 `json:"patient_periods_amount"`
	PatientBilledAmount    float64 `json:"patient_billed_amount"`
	TotalPatientPayment    float64 `json:"total_patient_payment"`
	TotalExpectedRevenue   float64 `json:"total_expected_revenue"`
	CNAMCoveragePercentage float64 `json:"cnam_coverage_percentage"`
	TotalDays              int     `json:"total_days"`
	CNAMDays               int     `json:"cnam_days"`
	TimeCoveragePercentage float64 `json:"time_coverage_percentage"`
}

// PayerSideDTO is one payer's side of a period.
type PayerSideDTO struct {
	Expected         float64 `json:"expected"`
	Paid             float64 `json:"paid"`
	Remaining        float64 `json:"remaining"`
	FullyPaid        bool    `json:"fully_paid"`
	CanRecordPayment bool    `json:"can_record_payment"`
}

// PaymentStatusDTO is the resolver output for one period.
type PaymentStatusDTO struct {
	PeriodID            string       `json:"period_id"`
	Status              string       `json:"status"`
	CNAM                PayerSideDTO `json:"cnam"`
	Patient             PayerSideDTO `json:"patient"`
	RemainingBalanceDue float64      `json:"remaining_balance_due"`
}

// AlertDTO represents a scheduled alert.
type AlertDTO struct {
	RentalID    string  `json:"rental_id,omitempty"`
	PatientName string  `json:"patient_name,omitempty"`
	Kind        string  `json:"kind"`
	Priority    string  `json:"priority"`
	Date        string  `json:"date"`
	DaysUntil   int     `json:"days_until"`
	BondID      string  `json:"bond_id,omitempty"`
	BondType    string  `json:"bond_type,omitempty"`
	Amount      float64 `json:"amount,omitempty"`
	Message     string  `json:"message"`
}

// ReportDTO is the full coverage report of one rental.
type ReportDTO struct {
	RentalID      string              `json:"rental_id"`
	AsOf          string              `json:"as_of"`
	Gaps          GapAnalysisDTO      `json:"gaps"`
	Financial     FinancialSummaryDTO `json:"financial"`
	PaymentStatus []PaymentStatusDTO  `json:"payment_status"`
	Alerts        []AlertDTO          `json:"alerts"`
}

// RecordPaymentResponse is returned after a payment is recorded.
type RecordPaymentResponse struct {
	PeriodID string           `json:"period_id"`
	Status   PaymentStatusDTO `json:"status"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// FieldErrorDTO names one invalid request field.
type FieldErrorDTO struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toRentalDTO(r coverage.Rental) RentalDTO {
	dto := RentalDTO{
		ID:            string(r.ID),
		PatientName:   r.PatientName,
		EquipmentName: r.EquipmentName,
		StartDate:     r.StartDate.String(),
		EndDate:       dateString(r.EndDate),
		Periods:       make([]PeriodDTO, len(r.Periods)),
		Bonds:         make([]BondDTO, len(r.Bonds)),
	}
	if r.ConfiguredDeposit != nil {
		v := r.ConfiguredDeposit.Float64()
		dto.DepositAmount = &v
	}
	for i, p := range coverage.SortedPeriods(r.Periods) {
		dto.Periods[i] = toPeriodDTO(p)
	}
	for i, b := range r.Bonds {
		dto.Bonds[i] = toBondDTO(b)
	}
	return dto
}

func toPeriodDTO(p coverage.RentalPeriod) PeriodDTO {
	return PeriodDTO{
		ID:                    string(p.ID),
		RentalID:              string(p.RentalID),
		StartDate:             p.StartDate.String(),
		EndDate:               p.EndDate.String(),
		Days:                  p.Days(),
		Amount:                p.Amount.Float64(),
		PaymentMethod:         string(p.PaymentMethod),
		IsGapPeriod:           p.IsGapPeriod,
		CNAMExpectedAmount:    moneyFloat(p.CNAMExpectedAmount),
		PatientExpectedAmount: moneyFloat(p.PatientExpectedAmount),
		CNAMPaid:              p.CNAMPaid.Float64(),
		PatientPaid:           p.PatientPaid.Float64(),
		Notes:                 p.Notes,
	}
}

func toBondDTO(b coverage.InsuranceBond) BondDTO {
	return BondDTO{
		ID:          string(b.ID),
		RentalID:    string(b.RentalID),
		BondType:    b.BondType,
		BondNumber:  b.BondNumber,
		TotalAmount: b.TotalAmount.Float64(),
		StartDate:   dateString(b.StartDate),
		EndDate:     dateString(b.EndDate),
	}
}

func toGapAnalysisDTO(a coverage.GapAnalysis) GapAnalysisDTO {
	dto := GapAnalysisDTO{
		Gaps:         make([]GapDTO, len(a.Gaps)),
		TotalGaps:    a.TotalGaps,
		CriticalGaps: a.CriticalGaps,
		GapDays:      a.GapDays,
		GapAmount:    roundCents(a.GapAmount),
	}
	for i, g := range a.Gaps {
		dto.Gaps[i] = GapDTO{
			StartDate:    g.StartDate.String(),
			EndDate:      g.EndDate.String(),
			Days:         g.Days,
			Amount:       roundCents(g.Amount),
			Severity:     string(g.Severity),
			Position:     string(g.Position),
			RatePeriodID: string(g.RatePeriodID),
		}
	}
	return dto
}

func toFinancialDTO(f coverage.FinancialSummary) FinancialSummaryDTO {
	return FinancialSummaryDTO{
		CNAMPeriodsAmount:      roundCents(f.CNAMPeriodsAmount),
		CNAMBondsAmount:        roundCents(f.CNAMBondsAmount),
		DepositAmount:          roundCents(f.DepositAmount),
		DepositSource:          string(f.DepositSource),
		PeriodsAmount:          roundCents(f.PeriodsAmount),
		GapAmount:              roundCents(f.GapAmount),
		PatientPeriodsAmount:   roundCents(f.PatientPeriodsAmount),
		PatientBilledAmount:    roundCents(f.PatientBilledAmount),
		TotalPatientPayment:    roundCents(f.TotalPatientPayment),
		TotalExpectedRevenue:   roundCents(f.TotalExpectedRevenue),
		CNAMCoveragePercentage: percent(f.CNAMCoveragePercentage),
		TotalDays:              f.TotalDays,
		CNAMDays:               f.CNAMDays,
		TimeCoveragePercentage: percent(f.TimeCoveragePercentage),
	}
}

func toPaymentStatusDTO(s coverage.PeriodPaymentStatus) PaymentStatusDTO {
	return PaymentStatusDTO{
		PeriodID:            string(s.PeriodID),
		Status:              string(s.Status),
		CNAM:                toPayerSideDTO(s.CNAM),
		Patient:             toPayerSideDTO(s.Patient),
		RemainingBalanceDue: roundCents(s.RemainingBalanceDue),
	}
}

func toPaymentStatusDTOs(statuses []coverage.PeriodPaymentStatus) []PaymentStatusDTO {
	out := make([]PaymentStatusDTO, len(statuses))
	for i, s := range statuses {
		out[i] = toPaymentStatusDTO(s)
	}
	return out
}

// Remaining is shown clamped; the raw signed value stays in the engine.
func toPayerSideDTO(s coverage.PayerSideStatus) PayerSideDTO {
	return PayerSideDTO{
		Expected:         roundCents(s.Expected),
		Paid:             roundCents(s.Paid),
		Remaining:        roundCents(s.Due),
		FullyPaid:        s.FullyPaid,
		CanRecordPayment: s.CanRecordPayment,
	}
}

func toAlertDTO(a coverage.Alert) AlertDTO {
	return AlertDTO{
		Kind:      string(a.Kind),
		Priority:  string(a.Priority),
		Date:      a.Date.String(),
		DaysUntil: a.DaysUntil,
		BondID:    string(a.BondID),
		BondType:  a.BondType,
		Amount:    roundCents(a.Amount),
		Message:   a.Message,
	}
}

func toAlertDTOs(alerts []coverage.Alert) []AlertDTO {
	out := make([]AlertDTO, len(alerts))
	for i, a := range alerts {
		out[i] = toAlertDTO(a)
	}
	return out
}

// NewRentalAlertDTOs converts portfolio alerts for JSON output.
func NewRentalAlertDTOs(alerts []coverage.RentalAlert) []AlertDTO {
	out := make([]AlertDTO, len(alerts))
	for i, a := range alerts {
		dto := toAlertDTO(a.Alert)
		dto.RentalID = string(a.RentalID)
		dto.PatientName = a.PatientName
		out[i] = dto
	}
	return out
}

// NewReportDTO converts a coverage report for JSON output.
func NewReportDTO(r coverage.CoverageReport) ReportDTO {
	return ReportDTO{
		RentalID:      string(r.RentalID),
		AsOf:          r.AsOf.String(),
		Gaps:          toGapAnalysisDTO(r.Gaps),
		Financial:     toFinancialDTO(r.Financial),
		PaymentStatus: toPaymentStatusDTOs(r.PaymentStatus),
		Alerts:        toAlertDTOs(r.Alerts),
	}
}

func dateString(d *coverage.Date) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func moneyFloat(m *coverage.Money) *float64 {
	if m == nil {
		return nil
	}
	v := m.Float64()
	return &v
}

func roundCents(m coverage.Money) float64 {
	v, _ := m.Value.Round(2).Float64()
	return v
}

func percent(d decimal.Decimal) float64 {
	v, _ := d.Round(2).Float64()
	return v
}
