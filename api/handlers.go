/*
handlers.go - HTTP API handlers for the coverage engine

PURPOSE:
  Exposes the coverage engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the engine through ReportService
  and PaymentLedger.

ENDPOINTS:
  Rentals:
    GET    /api/rentals                       List all rentals
    POST   /api/rentals                       Create rental
    GET    /api/rentals/{id}                  Rental with periods, bonds, paid totals
    POST   /api/rentals/{id}/periods          Add a billing period
    POST   /api/rentals/{id}/schedule         Generate periods from a schedule
    POST   /api/rentals/{id}/bonds            Add an insurance bond

  Analysis:
    GET    /api/rentals/{id}/gaps             Gap analysis
    GET    /api/rentals/{id}/financial        Financial summary
    GET    /api/rentals/{id}/payment-status   Per-period payment status
    GET    /api/rentals/{id}/alerts?as_of=    Alerts for one rental
    GET    /api/rentals/{id}/report?as_of=    Full coverage report
    GET    /api/alerts?as_of=                 Alerts across all rentals

  Payments:
    POST   /api/periods/{id}/payments         Record a payment

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: rentals, periods, bonds and the payment log
  - Reports: snapshot loading and report building
  - Ledger: append-only payment recording
  - ScheduleFactory: JSON schedule to periods

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input (validator tags, then engine boundary validation)
  3. Call the engine
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, overlapping periods
  - 404: Rental or period not found
  - 409: Conflict (idempotency key reused, payer side already paid)
  - 500: Internal errors

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warp/coverage-engine/coverage"
	"github.com/warp/coverage-engine/factory"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is the persistence the handlers need. Both the SQLite store and the
// in-memory store satisfy it.
type Store interface {
	coverage.RentalStore
	coverage.PaymentRepository
	Reset(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store           Store
	Reports         *coverage.ReportService
	Ledger          *coverage.PaymentLedger
	ScheduleFactory *factory.ScheduleFactory
	Logger          *zap.Logger
	Metrics         *Metrics

	// Scanner is optional; nil when scheduled scans are disabled.
	Scanner *AlertScanner

	// Now supplies the default as_of date and the scenario anchor.
	Now func() time.Time

	validate *validator.Validate

	// periodsMu holds the overlap check and the write of new periods together.
	periodsMu sync.Mutex

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store Store, logger *zap.Logger, metrics *Metrics) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Handler{
		Store:           store,
		Reports:         coverage.NewReportService(store, store, logger),
		Ledger:          coverage.NewPaymentLedger(store, store),
		ScheduleFactory: factory.NewScheduleFactory(),
		Logger:          logger,
		Metrics:         metrics,
		Now:             time.Now,
		validate:        newValidator(),
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// =============================================================================
// RENTAL HANDLERS
// =============================================================================

// ListRentals returns all rentals.
func (h *Handler) ListRentals(w http.ResponseWriter, r *http.Request) {
	rentals, err := h.Store.ListRentals(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list rentals", err)
		return
	}

	dtos := make([]RentalDTO, len(rentals))
	for i, rental := range rentals {
		dtos[i] = toRentalDTO(rental)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateRental creates a new rental without periods.
func (h *Handler) CreateRental(w http.ResponseWriter, r *http.Request) {
	var req CreateRentalRequest
	if !h.decode(w, r, &req) {
		return
	}
	ctx := r.Context()

	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		h.writeDomainError(w, "Invalid rental", err)
		return
	}
	end, err := parseOptionalDate("end_date", req.EndDate)
	if err != nil {
		h.writeDomainError(w, "Invalid rental", err)
		return
	}

	rental := coverage.Rental{
		ID:            coverage.RentalID(req.ID),
		PatientName:   req.PatientName,
		EquipmentName: req.EquipmentName,
		StartDate:     start,
		EndDate:       end,
	}
	if rental.ID == "" {
		rental.ID = coverage.RentalID(uuid.NewString())
	} else if _, err := h.Store.GetRental(ctx, rental.ID); err == nil {
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: "Rental already exists", Code: "CONFLICT"})
		return
	}
	if req.DepositAmount != nil {
		deposit := coverage.NewMoney(*req.DepositAmount)
		rental.ConfiguredDeposit = &deposit
	}
	if err := rental.Validate(); err != nil {
		h.writeDomainError(w, "Invalid rental", err)
		return
	}

	if err := h.Store.SaveRental(ctx, rental); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create rental", err)
		return
	}

	h.Logger.Info("rental created",
		zap.String("rental_id", string(rental.ID)),
		zap.String("start_date", rental.StartDate.String()),
	)
	writeJSON(w, http.StatusCreated, toRentalDTO(rental))
}

// GetRental returns a rental with its paid totals materialised.
func (h *Handler) GetRental(w http.ResponseWriter, r *http.Request) {
	id := coverage.RentalID(chi.URLParam(r, "id"))

	rental, err := h.Reports.Snapshot(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to get rental", err)
		return
	}
	writeJSON(w, http.StatusOK, toRentalDTO(rental))
}

// AddPeriod attaches a billing period to a rental.
func (h *Handler) AddPeriod(w http.ResponseWriter, r *http.Request) {
	id := coverage.RentalID(chi.URLParam(r, "id"))

	var req CreatePeriodRequest
	if !h.decode(w, r, &req) {
		return
	}
	period, err := req.toPeriod(id)
	if err != nil {
		h.writeDomainError(w, "Invalid period", err)
		return
	}
	ctx := r.Context()

	h.periodsMu.Lock()
	defer h.periodsMu.Unlock()

	rental, err := h.Store.GetRental(ctx, id)
	if err != nil {
		h.writeDomainError(w, "Failed to get rental", err)
		return
	}
	if err := checkPeriods(rental, period); err != nil {
		h.writeDomainError(w, "Invalid period", err)
		return
	}

	if err := h.Store.SavePeriod(ctx, period); err != nil {
		h.writeDomainError(w, "Failed to save period", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPeriodDTO(period))
}

func (req CreatePeriodRequest) toPeriod(rentalID coverage.RentalID) (coverage.RentalPeriod, error) {
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		return coverage.RentalPeriod{}, err
	}
	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		return coverage.RentalPeriod{}, err
	}
	method, err := coverage.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return coverage.RentalPeriod{}, &coverage.ValidationError{Field: "payment_method", Reason: err.Error(), Err: coverage.ErrUnknownPaymentMethod}
	}

	p := coverage.RentalPeriod{
		ID:            coverage.PeriodID(req.ID),
		RentalID:      rentalID,
		StartDate:     start,
		EndDate:       end,
		Amount:        coverage.NewMoney(req.Amount),
		PaymentMethod: method,
		IsGapPeriod:   req.IsGapPeriod,
		Notes:         req.Notes,
	}
	if p.ID == "" {
		p.ID = coverage.PeriodID(uuid.NewString())
	}
	if req.CNAMExpectedAmount != nil {
		v := coverage.NewMoney(*req.CNAMExpectedAmount)
		p.CNAMExpectedAmount = &v
	}
	if req.PatientExpectedAmount != nil {
		v := coverage.NewMoney(*req.PatientExpectedAmount)
		p.PatientExpectedAmount = &v
	}
	return p, p.Validate()
}

// GenerateSchedule lays out periods from a JSON billing schedule. Generation
// starts the day after the last billed day, so a schedule can extend
// periods entered by hand.
func (h *Handler) GenerateSchedule(w http.ResponseWriter, r *http.Request) {
	id := coverage.RentalID(chi.URLParam(r, "id"))

	var sj factory.ScheduleJSON
	if err := json.NewDecoder(r.Body).Decode(&sj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	schedule, err := h.ScheduleFactory.FromJSON(sj)
	if err != nil {
		h.writeDomainError(w, "Invalid schedule", err)
		return
	}
	ctx := r.Context()

	h.periodsMu.Lock()
	defer h.periodsMu.Unlock()

	rental, err := h.Store.GetRental(ctx, id)
	if err != nil {
		h.writeDomainError(w, "Failed to get rental", err)
		return
	}

	start := nextUnbilledDay(rental)
	if rental.EndDate != nil && start.After(*rental.EndDate) {
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: "Rental is already fully billed", Code: "CONFLICT"})
		return
	}

	periods, err := h.ScheduleFactory.Generate(schedule, id, start, rental.EndDate)
	if err != nil {
		h.writeDomainError(w, "Failed to generate schedule", err)
		return
	}
	if err := checkPeriods(rental, periods...); err != nil {
		h.writeDomainError(w, "Generated periods conflict with the rental", err)
		return
	}

	if err := h.Store.SavePeriods(ctx, id, periods); err != nil {
		h.writeDomainError(w, "Failed to save periods", err)
		return
	}
	dtos := make([]PeriodDTO, len(periods))
	for i, p := range periods {
		dtos[i] = toPeriodDTO(p)
	}

	h.Logger.Info("schedule generated",
		zap.String("rental_id", string(id)),
		zap.String("schedule", schedule.Name),
		zap.String("frequency", string(schedule.Frequency)),
		zap.Int("periods", len(periods)),
	)
	writeJSON(w, http.StatusCreated, dtos)
}

// AddBond attaches an insurance bond to a rental.
func (h *Handler) AddBond(w http.ResponseWriter, r *http.Request) {
	id := coverage.RentalID(chi.URLParam(r, "id"))

	var req CreateBondRequest
	if !h.decode(w, r, &req) {
		return
	}

	start, err := parseOptionalDate("start_date", req.StartDate)
	if err != nil {
		h.writeDomainError(w, "Invalid bond", err)
		return
	}
	end, err := parseOptionalDate("end_date", req.EndDate)
	if err != nil {
		h.writeDomainError(w, "Invalid bond", err)
		return
	}

	bond := coverage.InsuranceBond{
		ID:          coverage.BondID(req.ID),
		RentalID:    id,
		BondType:    req.BondType,
		BondNumber:  req.BondNumber,
		TotalAmount: coverage.NewMoney(req.TotalAmount),
		StartDate:   start,
		EndDate:     end,
	}
	if bond.ID == "" {
		bond.ID = coverage.BondID(uuid.NewString())
	}
	if err := bond.Validate(); err != nil {
		h.writeDomainError(w, "Invalid bond", err)
		return
	}

	if err := h.Store.SaveBond(r.Context(), bond); err != nil {
		h.writeDomainError(w, "Failed to save bond", err)
		return
	}
	writeJSON(w, http.StatusCreated, toBondDTO(bond))
}

// =============================================================================
// ANALYSIS HANDLERS
// =============================================================================

// GetGaps returns the gap analysis of a rental.
func (h *Handler) GetGaps(w http.ResponseWriter, r *http.Request) {
	report, ok := h.report(w, r, "gaps")
	if !ok {
		return
	}
	h.Metrics.observeGaps(report.Gaps)
	writeJSON(w, http.StatusOK, toGapAnalysisDTO(report.Gaps))
}

// GetFinancial returns the financial summary of a rental.
func (h *Handler) GetFinancial(w http.ResponseWriter, r *http.Request) {
	report, ok := h.report(w, r, "financial")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toFinancialDTO(report.Financial))
}

// GetPaymentStatus returns the payment status of every period, in start
// date order.
func (h *Handler) GetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	report, ok := h.report(w, r, "payment_status")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toPaymentStatusDTOs(report.PaymentStatus))
}

// GetRentalAlerts returns the alerts of one rental as of ?as_of= (default
// today).
func (h *Handler) GetRentalAlerts(w http.ResponseWriter, r *http.Request) {
	report, ok := h.report(w, r, "alerts")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toAlertDTOs(report.Alerts))
}

// GetReport returns all four components for one rental.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, ok := h.report(w, r, "report")
	if !ok {
		return
	}
	h.Metrics.observeGaps(report.Gaps)
	writeJSON(w, http.StatusOK, NewReportDTO(report))
}

// ListAlerts returns alerts across all rentals, most urgent first.
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.asOf(r)
	if err != nil {
		h.writeDomainError(w, "Invalid as_of", err)
		return
	}

	alerts, err := h.Reports.PortfolioAlerts(r.Context(), asOf)
	h.Metrics.observeReport("portfolio_alerts", err)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list alerts", err)
		return
	}
	writeJSON(w, http.StatusOK, NewRentalAlertDTOs(alerts))
}

// report loads the rental named in the URL and builds its report. On
// failure the error response is already written.
func (h *Handler) report(w http.ResponseWriter, r *http.Request, kind string) (coverage.CoverageReport, bool) {
	id := coverage.RentalID(chi.URLParam(r, "id"))

	asOf, err := h.asOf(r)
	if err != nil {
		h.writeDomainError(w, "Invalid as_of", err)
		return coverage.CoverageReport{}, false
	}

	report, err := h.Reports.Report(r.Context(), id, asOf)
	h.Metrics.observeReport(kind, err)
	if err != nil {
		h.writeDomainError(w, "Failed to build coverage report", err)
		return coverage.CoverageReport{}, false
	}
	return report, true
}

func (h *Handler) asOf(r *http.Request) (coverage.Date, error) {
	raw := r.URL.Query().Get("as_of")
	if raw == "" {
		return coverage.DateOf(h.Now().UTC()), nil
	}
	return parseDate("as_of", raw)
}

// =============================================================================
// PAYMENT HANDLERS
// =============================================================================

// RecordPayment appends a payment to a period's ledger.
//
// Returns 409 when the idempotency key was already used or when the payer
// side is already fully paid.
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	periodID := coverage.PeriodID(chi.URLParam(r, "id"))

	var req RecordPaymentRequest
	if !h.decode(w, r, &req) {
		return
	}
	ctx := r.Context()

	period, err := h.Store.FindPeriod(ctx, periodID)
	if err != nil {
		h.writeDomainError(w, "Failed to find period", err)
		return
	}

	paidAt, err := parseDate("paid_at", req.PaidAt)
	if err != nil {
		h.writeDomainError(w, "Invalid payment", err)
		return
	}
	var method coverage.PaymentMethod
	if req.Method != "" {
		if method, err = coverage.ParsePaymentMethod(req.Method); err != nil {
			h.writeDomainError(w, "Invalid payment", &coverage.ValidationError{Field: "method", Reason: err.Error(), Err: coverage.ErrUnknownPaymentMethod})
			return
		}
	}

	payment := coverage.Payment{
		RentalID:       period.RentalID,
		PeriodID:       period.ID,
		Payer:          coverage.Payer(req.Payer),
		Method:         method,
		Amount:         coverage.NewMoney(req.Amount),
		PaidAt:         paidAt,
		Reference:      req.Reference,
		IdempotencyKey: req.IdempotencyKey,
	}

	status, err := h.Ledger.Record(ctx, payment)
	h.Metrics.observePayment(req.Payer, err)
	if err != nil {
		h.writeDomainError(w, "Failed to record payment", err)
		return
	}

	h.Logger.Info("payment recorded",
		zap.String("rental_id", string(period.RentalID)),
		zap.String("period_id", string(period.ID)),
		zap.String("payer", req.Payer),
		zap.String("amount", payment.Amount.String()),
		zap.String("status", string(status.Status)),
	)
	writeJSON(w, http.StatusCreated, RecordPaymentResponse{
		PeriodID: string(period.ID),
		Status:   toPaymentStatusDTO(status),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

// checkPeriods runs the gap detector's ordering contract over the rental's
// periods plus the candidates, so overlaps are refused on write instead of
// at report time.
func checkPeriods(rental coverage.Rental, candidates ...coverage.RentalPeriod) error {
	all := append(append([]coverage.RentalPeriod{}, rental.Periods...), candidates...)
	_, err := coverage.DetectGaps(rental.StartDate, rental.EndDate, coverage.SortedPeriods(all))
	return err
}

func nextUnbilledDay(rental coverage.Rental) coverage.Date {
	next := rental.StartDate
	for _, p := range rental.Periods {
		if p.IsGapPeriod {
			continue
		}
		if after := p.EndDate.AddDays(1); after.After(next) {
			next = after
		}
	}
	return next
}

func parseDate(field, s string) (coverage.Date, error) {
	d, err := coverage.ParseDate(s)
	if err != nil {
		return coverage.Date{}, &coverage.ValidationError{Field: field, Reason: fmt.Sprintf("%q is not a YYYY-MM-DD date", s)}
	}
	return d, nil
}

func parseOptionalDate(field, s string) (*coverage.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := parseDate(field, s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// decode reads a JSON body into dst and runs its validator tags. On
// failure the 400 response is already written.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:   "Request validation failed",
				Code:    "VALIDATION_ERROR",
				Details: fieldErrors(verrs),
			})
			return false
		}
		writeError(w, http.StatusBadRequest, "Request validation failed", err)
		return false
	}
	return true
}

func fieldErrors(verrs validator.ValidationErrors) []FieldErrorDTO {
	out := make([]FieldErrorDTO, len(verrs))
	for i, e := range verrs {
		out[i] = FieldErrorDTO{Field: e.Field(), Message: validationMessage(e)}
	}
	return out
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "datetime":
		return "Must be a date formatted YYYY-MM-DD"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "gte":
		return "Must be greater than or equal to " + e.Param()
	case "gt":
		return "Must be greater than " + e.Param()
	case "max":
		return "Must be at most " + e.Param() + " characters"
	default:
		return "Invalid value"
	}
}

// writeDomainError maps engine errors to HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case coverage.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: message, Code: "NOT_FOUND", Details: err.Error()})
	case coverage.IsConflict(err):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: message, Code: "CONFLICT", Details: err.Error()})
	case coverage.IsClientError(err):
		resp := ErrorResponse{Error: message, Code: "INVALID_INPUT", Details: err.Error()}
		var ve *coverage.ValidationError
		if errors.As(err, &ve) {
			resp.Details = []FieldErrorDTO{{Field: ve.Field, Message: ve.Reason}}
		}
		writeJSON(w, http.StatusBadRequest, resp)
	default:
		h.Logger.Error(message, zap.Error(err))
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
