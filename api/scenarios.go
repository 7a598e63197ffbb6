/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built rentals that populate the store with data showing
	one behaviour of the engine each. bond-alerts is anchored on the
	handler's clock so its alerts stay visible whenever it is loaded.

AVAILABLE SCENARIOS:

	gap-detection:   CNAM January, patient from Feb 15: one 14-day critical gap
	full-coverage:   One period covering the whole rental: no gaps
	open-ended:      No end date: trailing gap detection skipped
	payment-status:  One period fully paid by CNAM, one partially paid
	bond-alerts:     Bonds expiring in 10 and 40 days, rental ending in 5
	portfolio:       All of the above

HOW SCENARIOS WORK:
 1. Reset the store (clear all data)
 2. Create rentals with their periods and bonds
 3. Record payments through the ledger

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "gap-detection"}

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Handler
  - rental/factory.go: Schedule presets used by bond-alerts
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/warp/coverage-engine/coverage"
	"github.com/warp/coverage-engine/rental"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "gap-detection",
		Name:        "Gap Detection",
		Description: "CNAM January then patient from Feb 15: one 14-day critical gap worth 210",
	},
	{
		ID:          "full-coverage",
		Name:        "Full Coverage",
		Description: "A single CNAM period covering the whole rental",
	},
	{
		ID:          "open-ended",
		Name:        "Open-Ended Rental",
		Description: "Rental without end date: no trailing gap is reported",
	},
	{
		ID:          "payment-status",
		Name:        "Payment Status",
		Description: "One period fully paid by CNAM, one with 60 of 100 paid, plus a deposit",
	},
	{
		ID:          "bond-alerts",
		Name:        "Bond Alerts",
		Description: "Bonds expiring in 10 and 40 days, rental ending in 5 days",
	},
	{
		ID:          "portfolio",
		Name:        "Portfolio",
		Description: "Every scenario loaded together",
	},
}

// Scenarios returns the available demo scenarios.
func Scenarios() []ScenarioDTO {
	return append([]ScenarioDTO(nil), scenarios...)
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.ApplyScenario(r.Context(), req.ScenarioID); err != nil {
		if errors.Is(err, errUnknownScenario) {
			writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.mu.Lock()
	h.currentScenario = ""
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

var errUnknownScenario = errors.New("unknown scenario")

// ApplyScenario resets the store and loads the named scenario.
func (h *Handler) ApplyScenario(ctx context.Context, id string) error {
	loaders := map[string]func(context.Context) error{
		"gap-detection":  h.loadGapDetectionScenario,
		"full-coverage":  h.loadFullCoverageScenario,
		"open-ended":     h.loadOpenEndedScenario,
		"payment-status": h.loadPaymentStatusScenario,
		"bond-alerts":    h.loadBondAlertsScenario,
		"portfolio":      h.loadPortfolioScenario,
	}
	load, ok := loaders[id]
	if !ok {
		return errUnknownScenario
	}

	if err := h.Store.Reset(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	h.mu.Lock()
	h.currentScenario = ""
	h.mu.Unlock()

	if err := load(ctx); err != nil {
		return err
	}

	h.mu.Lock()
	h.currentScenario = id
	h.mu.Unlock()
	h.Logger.Info("scenario loaded", zap.String("scenario", id))
	return nil
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadGapDetectionScenario(ctx context.Context) error {
	end := coverage.NewDate(2024, time.March, 31)
	r := coverage.Rental{
		ID:            "rental-gap",
		PatientName:   "Amine Trabelsi",
		EquipmentName: "Oxygen concentrator",
		StartDate:     coverage.NewDate(2024, time.January, 1),
		EndDate:       &end,
		Periods: []coverage.RentalPeriod{
			{
				ID:            "gap-p1",
				RentalID:      "rental-gap",
				StartDate:     coverage.NewDate(2024, time.January, 1),
				EndDate:       coverage.NewDate(2024, time.January, 31),
				Amount:        coverage.NewMoney(300),
				PaymentMethod: coverage.MethodCNAM,
			},
			{
				ID:            "gap-p2",
				RentalID:      "rental-gap",
				StartDate:     coverage.NewDate(2024, time.February, 15),
				EndDate:       coverage.NewDate(2024, time.March, 31),
				Amount:        coverage.NewMoney(450),
				PaymentMethod: rental.MethodCash,
			},
		},
	}
	return h.Store.SaveRental(ctx, r)
}

func (h *Handler) loadFullCoverageScenario(ctx context.Context) error {
	end := coverage.NewDate(2024, time.March, 31)
	deposit := coverage.NewMoney(100)
	r := coverage.Rental{
		ID:                "rental-full",
		PatientName:       "Salma Ben Ali",
		EquipmentName:     "CPAP",
		StartDate:         coverage.NewDate(2024, time.January, 1),
		EndDate:           &end,
		ConfiguredDeposit: &deposit,
		Periods: []coverage.RentalPeriod{{
			ID:            "full-p1",
			RentalID:      "rental-full",
			StartDate:     coverage.NewDate(2024, time.January, 1),
			EndDate:       end,
			Amount:        coverage.NewMoney(900),
			PaymentMethod: coverage.MethodCNAM,
		}},
	}
	return h.Store.SaveRental(ctx, r)
}

func (h *Handler) loadOpenEndedScenario(ctx context.Context) error {
	r := coverage.Rental{
		ID:            "rental-open",
		PatientName:   "Youssef Gharbi",
		EquipmentName: "Hospital bed",
		StartDate:     coverage.NewDate(2024, time.January, 1),
		Periods: []coverage.RentalPeriod{{
			ID:            "open-p1",
			RentalID:      "rental-open",
			StartDate:     coverage.NewDate(2024, time.January, 1),
			EndDate:       coverage.NewDate(2024, time.January, 31),
			Amount:        coverage.NewMoney(300),
			PaymentMethod: coverage.MethodCNAM,
		}},
	}
	return h.Store.SaveRental(ctx, r)
}

func (h *Handler) loadPaymentStatusScenario(ctx context.Context) error {
	end := coverage.NewDate(2024, time.February, 29)
	cnam := coverage.NewMoney(100)
	patient := coverage.ZeroMoney()
	r := coverage.Rental{
		ID:            "rental-pay",
		PatientName:   "Nour Hammami",
		EquipmentName: "Wheelchair",
		StartDate:     coverage.NewDate(2024, time.January, 1),
		EndDate:       &end,
		Periods: []coverage.RentalPeriod{
			{
				ID:                    "pay-p1",
				RentalID:              "rental-pay",
				StartDate:             coverage.NewDate(2024, time.January, 1),
				EndDate:               coverage.NewDate(2024, time.January, 31),
				Amount:                coverage.NewMoney(100),
				PaymentMethod:         coverage.MethodCNAM,
				CNAMExpectedAmount:    &cnam,
				PatientExpectedAmount: &patient,
			},
			{
				ID:                    "pay-p2",
				RentalID:              "rental-pay",
				StartDate:             coverage.NewDate(2024, time.February, 1),
				EndDate:               end,
				Amount:                coverage.NewMoney(100),
				PaymentMethod:         coverage.MethodCNAM,
				CNAMExpectedAmount:    &cnam,
				PatientExpectedAmount: &patient,
			},
		},
	}
	if err := h.Store.SaveRental(ctx, r); err != nil {
		return err
	}

	payments := []coverage.Payment{
		{RentalID: r.ID, Payer: coverage.PayerPatient, Method: rental.MethodCash, Amount: coverage.NewMoney(50), PaidAt: coverage.NewDate(2023, time.December, 28), IsDeposit: true, IdempotencyKey: "pay-deposit"},
		{RentalID: r.ID, PeriodID: "pay-p1", Payer: coverage.PayerCNAM, Amount: coverage.NewMoney(100), PaidAt: coverage.NewDate(2024, time.February, 10), Reference: "CNAM-2024-0142", IdempotencyKey: "pay-p1-cnam"},
		{RentalID: r.ID, PeriodID: "pay-p2", Payer: coverage.PayerCNAM, Amount: coverage.NewMoney(60), PaidAt: coverage.NewDate(2024, time.March, 12), Reference: "CNAM-2024-0311", IdempotencyKey: "pay-p2-cnam"},
	}
	for _, p := range payments {
		if _, err := h.Ledger.Record(ctx, p); err != nil {
			return fmt.Errorf("record payment %s: %w", p.IdempotencyKey, err)
		}
	}
	return nil
}

func (h *Handler) loadBondAlertsScenario(ctx context.Context) error {
	today := coverage.DateOf(h.Now().UTC())
	start := today.AddDays(-60)
	end := today.AddDays(5)

	r := coverage.Rental{
		ID:            "rental-bonds",
		PatientName:   "Hedi Jaziri",
		EquipmentName: "Oxygen concentrator",
		StartDate:     start,
		EndDate:       &end,
	}

	schedule, err := h.ScheduleFactory.ParseSchedule(rental.SplitMonthlyScheduleJSON("bonds-split", "CNAM 80/20", 300, 80))
	if err != nil {
		return err
	}
	if r.Periods, err = h.ScheduleFactory.Generate(schedule, r.ID, start, &end); err != nil {
		return err
	}

	aldStart := start
	aldEnd := today.AddDays(10)
	apciStart := start
	apciEnd := today.AddDays(40)
	r.Bonds = []coverage.InsuranceBond{
		{
			ID:          "bond-ald",
			RentalID:    r.ID,
			BondType:    rental.BondALD,
			BondNumber:  "ALD-5521",
			TotalAmount: coverage.NewMoney(600),
			StartDate:   &aldStart,
			EndDate:     &aldEnd,
		},
		{
			ID:          "bond-apci",
			RentalID:    r.ID,
			BondType:    rental.BondAPCI,
			BondNumber:  "APCI-0907",
			TotalAmount: coverage.NewMoney(900),
			StartDate:   &apciStart,
			EndDate:     &apciEnd,
		},
	}
	return h.Store.SaveRental(ctx, r)
}

func (h *Handler) loadPortfolioScenario(ctx context.Context) error {
	loaders := []func(context.Context) error{
		h.loadGapDetectionScenario,
		h.loadFullCoverageScenario,
		h.loadOpenEndedScenario,
		h.loadPaymentStatusScenario,
		h.loadBondAlertsScenario,
	}
	for _, load := range loaders {
		if err := load(ctx); err != nil {
			return err
		}
	}
	return nil
}
