/*
Package factory provides JSON to Go billing schedule conversion.

PURPOSE:
  Converts JSON schedule definitions into Schedule objects and generates the
  billing periods of a rental from them. The back office describes how a
  rental is billed once; the factory lays out contiguous periods.

JSON SCHEMA:
  {
    "id": "cnam-monthly",
    "name": "CNAM monthly",
    "frequency": "monthly",          // monthly, weekly, custom_days
    "interval_days": 15,             // custom_days only
    "amount_per_period": 300,
    "payment_method": "CNAM",
    "cnam_share_percent": 80,        // optional expected split
    "max_periods": 6                 // required for open-ended rentals
  }

GENERATION:
  Periods are anchored on the rental start: period i covers
  [start + i*step, start + (i+1)*step - 1 day]. Monthly steps keep the
  start's day of month, clamped to short months. The last period is clipped
  to the rental end. A clipped monthly period is prorated with the 30-day
  rule used by gap detection; weekly and custom periods are prorated by
  their own length.

USAGE:
  f := NewScheduleFactory()
  schedule, err := f.ParseSchedule(rental.CNAMMonthlyScheduleJSON("cnam", "CNAM", 300))
  periods, err := f.Generate(schedule, rentalID, start, &end)

SEE ALSO:
  - rental/factory.go: Schedule presets
  - coverage/gaps.go: ProrateAmount
*/
package factory

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/coverage-engine/coverage"
	"github.com/warp/coverage-engine/rental"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ScheduleJSON is the JSON representation of a billing schedule.
type ScheduleJSON struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Frequency        string   `json:"frequency"`
	IntervalDays     int      `json:"interval_days,omitempty"`
	AmountPerPeriod  float64  `json:"amount_per_period"`
	PaymentMethod    string   `json:"payment_method"`
	CNAMSharePercent *float64 `json:"cnam_share_percent,omitempty"`
	MaxPeriods       int      `json:"max_periods,omitempty"`
}

// Frequency is the length of one generated period.
type Frequency string

const (
	FrequencyMonthly    Frequency = "monthly"
	FrequencyWeekly     Frequency = "weekly"
	FrequencyCustomDays Frequency = "custom_days"
)

// Schedule is a parsed billing schedule.
type Schedule struct {
	ID              string
	Name            string
	Frequency       Frequency
	IntervalDays    int
	AmountPerPeriod coverage.Money
	PaymentMethod   coverage.PaymentMethod

	// CNAMShare is the CNAM part of each period in percent. Nil means no
	// expected split is recorded on the periods.
	CNAMShare *decimal.Decimal

	// MaxPeriods caps generation. Required when the rental has no end date.
	MaxPeriods int
}

// =============================================================================
// SCHEDULE FACTORY
// =============================================================================

// ScheduleFactory converts JSON schedules and generates periods.
type ScheduleFactory struct {
	// NewID returns identifiers for generated periods.
	NewID func() string
}

// NewScheduleFactory creates a factory generating UUID period IDs.
func NewScheduleFactory() *ScheduleFactory {
	return &ScheduleFactory{NewID: uuid.NewString}
}

// ParseSchedule parses a JSON string into a Schedule.
func (f *ScheduleFactory) ParseSchedule(jsonStr string) (*Schedule, error) {
	var sj ScheduleJSON
	if err := json.Unmarshal([]byte(jsonStr), &sj); err != nil {
		return nil, fmt.Errorf("failed to parse schedule JSON: %w", err)
	}
	return f.FromJSON(sj)
}

// FromJSON validates ScheduleJSON and converts it to a Schedule.
func (f *ScheduleFactory) FromJSON(sj ScheduleJSON) (*Schedule, error) {
	freq, err := parseFrequency(sj.Frequency)
	if err != nil {
		return nil, err
	}
	if freq == FrequencyCustomDays && sj.IntervalDays <= 0 {
		return nil, &coverage.ValidationError{Field: "interval_days", Reason: "must be positive for custom_days"}
	}
	if sj.AmountPerPeriod < 0 {
		return nil, &coverage.ValidationError{Field: "amount_per_period", Reason: "must not be negative"}
	}
	if sj.MaxPeriods < 0 {
		return nil, &coverage.ValidationError{Field: "max_periods", Reason: "must not be negative"}
	}

	method := rental.MethodCash
	if sj.PaymentMethod != "" {
		method, err = coverage.ParsePaymentMethod(sj.PaymentMethod)
		if err != nil {
			return nil, err
		}
	}

	s := &Schedule{
		ID:              sj.ID,
		Name:            sj.Name,
		Frequency:       freq,
		IntervalDays:    sj.IntervalDays,
		AmountPerPeriod: coverage.NewMoney(sj.AmountPerPeriod),
		PaymentMethod:   method,
		MaxPeriods:      sj.MaxPeriods,
	}
	if sj.CNAMSharePercent != nil {
		pct := *sj.CNAMSharePercent
		if pct < 0 || pct > 100 {
			return nil, &coverage.ValidationError{Field: "cnam_share_percent", Reason: "must be between 0 and 100"}
		}
		share := decimal.NewFromFloat(pct)
		s.CNAMShare = &share
	}
	return s, nil
}

// ToJSON converts a Schedule back to ScheduleJSON.
func (f *ScheduleFactory) ToJSON(s *Schedule) ScheduleJSON {
	sj := ScheduleJSON{
		ID:              s.ID,
		Name:            s.Name,
		Frequency:       string(s.Frequency),
		AmountPerPeriod: s.AmountPerPeriod.Float64(),
		PaymentMethod:   string(s.PaymentMethod),
		MaxPeriods:      s.MaxPeriods,
	}
	if s.Frequency == FrequencyCustomDays {
		sj.IntervalDays = s.IntervalDays
	}
	if s.CNAMShare != nil {
		v, _ := s.CNAMShare.Float64()
		sj.CNAMSharePercent = &v
	}
	return sj
}

// =============================================================================
// PERIOD GENERATION
// =============================================================================

// Generate lays out contiguous periods from start to end. When end is nil
// the schedule must set MaxPeriods.
func (f *ScheduleFactory) Generate(s *Schedule, rentalID coverage.RentalID, start coverage.Date, end *coverage.Date) ([]coverage.RentalPeriod, error) {
	if start.IsZero() {
		return nil, &coverage.ValidationError{Field: "start_date", Reason: "is required"}
	}
	if end == nil && s.MaxPeriods == 0 {
		return nil, &coverage.ValidationError{Field: "max_periods", Reason: "is required for open-ended rentals"}
	}
	if end != nil && end.Before(start) {
		return nil, &coverage.ValidationError{Field: "end_date", Reason: "rental ends before it starts", Err: coverage.ErrInvalidPeriod}
	}

	var periods []coverage.RentalPeriod
	cursor := start
	for i := 0; ; i++ {
		if s.MaxPeriods > 0 && i >= s.MaxPeriods {
			break
		}
		if end != nil && cursor.After(*end) {
			break
		}

		fullEnd := s.boundary(start, i+1).AddDays(-1)
		periodEnd := fullEnd
		amount := s.AmountPerPeriod
		if end != nil && fullEnd.After(*end) {
			periodEnd = *end
			amount = s.prorate(coverage.DaysBetweenInclusive(cursor, periodEnd), coverage.DaysBetweenInclusive(cursor, fullEnd))
		}

		p := coverage.RentalPeriod{
			ID:            coverage.PeriodID(f.NewID()),
			RentalID:      rentalID,
			StartDate:     cursor,
			EndDate:       periodEnd,
			Amount:        amount,
			PaymentMethod: s.PaymentMethod,
			Notes:         s.Name,
		}
		if s.CNAMShare != nil {
			cnam, patient := split(amount, *s.CNAMShare)
			p.CNAMExpectedAmount = &cnam
			p.PatientExpectedAmount = &patient
		}
		periods = append(periods, p)
		cursor = periodEnd.AddDays(1)
	}
	return periods, nil
}

// boundary returns the start of period n, anchored on the first start.
// Monthly boundaries keep the start's day of month, clamped to the month's
// last day: a 31st start gives Feb 29, Mar 31, Apr 30...
func (s *Schedule) boundary(start coverage.Date, n int) coverage.Date {
	switch s.Frequency {
	case FrequencyMonthly:
		return addMonthsClamped(start, n)
	case FrequencyWeekly:
		return start.AddDays(7 * n)
	default:
		return start.AddDays(s.IntervalDays * n)
	}
}

func addMonthsClamped(d coverage.Date, n int) coverage.Date {
	first := time.Date(d.Time.Year(), d.Time.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	lastDay := first.AddDate(0, 1, -1).Day()
	return coverage.NewDate(first.Year(), first.Month(), min(d.Time.Day(), lastDay))
}

func (s *Schedule) prorate(days, fullDays int) coverage.Money {
	if s.Frequency == FrequencyMonthly {
		return coverage.ProrateAmount(s.AmountPerPeriod, days)
	}
	return s.AmountPerPeriod.
		Mul(decimal.NewFromInt(int64(days))).
		Div(decimal.NewFromInt(int64(fullDays)))
}

// split divides amount by the CNAM share, rounding the CNAM part to cents.
// The patient part is the exact remainder so both sum to amount.
func split(amount coverage.Money, sharePercent decimal.Decimal) (cnam, patient coverage.Money) {
	cnam = coverage.NewMoneyFromDecimal(amount.Value.Mul(sharePercent).Div(decimal.NewFromInt(100)).Round(2))
	return cnam, amount.Sub(cnam)
}

func parseFrequency(s string) (Frequency, error) {
	switch Frequency(strings.ToLower(strings.TrimSpace(s))) {
	case FrequencyMonthly, "":
		return FrequencyMonthly, nil
	case FrequencyWeekly:
		return FrequencyWeekly, nil
	case FrequencyCustomDays:
		return FrequencyCustomDays, nil
	default:
		return "", &coverage.ValidationError{Field: "frequency", Reason: fmt.Sprintf("unknown frequency %q", s)}
	}
}
