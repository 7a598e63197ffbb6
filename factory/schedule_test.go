package factory_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/coverage-engine/coverage"
	"github.com/warp/coverage-engine/factory"
	"github.com/warp/coverage-engine/rental"
)

func newFactory() *factory.ScheduleFactory {
	f := factory.NewScheduleFactory()
	n := 0
	f.NewID = func() string {
		n++
		return fmt.Sprintf("p%d", n)
	}
	return f
}

func TestGenerate_MonthlyWithClippedTail(t *testing.T) {
	// GIVEN: CNAM monthly 300, rental 2024-01-01..2024-03-15
	// THEN: Jan and Feb at 300, Mar 1..15 prorated to 150
	f := newFactory()
	schedule, err := f.ParseSchedule(rental.CNAMMonthlyScheduleJSON("cnam", "CNAM monthly", 300))
	require.NoError(t, err)

	start := coverage.NewDate(2024, time.January, 1)
	end := coverage.NewDate(2024, time.March, 15)
	periods, err := f.Generate(schedule, "r1", start, &end)
	require.NoError(t, err)
	require.Len(t, periods, 3)

	assert.Equal(t, "2024-01-31", periods[0].EndDate.String())
	assert.Equal(t, "2024-02-01", periods[1].StartDate.String())
	assert.Equal(t, "2024-02-29", periods[1].EndDate.String())
	assert.Equal(t, "2024-03-15", periods[2].EndDate.String())
	assert.Equal(t, "300.00", periods[1].Amount.String())
	assert.Equal(t, "150.00", periods[2].Amount.String())
	assert.Equal(t, coverage.PeriodID("p1"), periods[0].ID)
	assert.Equal(t, coverage.RentalID("r1"), periods[2].RentalID)

	// Generated schedules leave no gap.
	analysis, err := coverage.DetectGaps(start, &end, periods)
	require.NoError(t, err)
	assert.Equal(t, 0, analysis.TotalGaps)
}

func TestGenerate_MonthEndAnchor(t *testing.T) {
	f := newFactory()
	schedule, err := f.ParseSchedule(rental.CashMonthlyScheduleJSON("cash", "Cash", 100))
	require.NoError(t, err)

	start := coverage.NewDate(2024, time.January, 31)
	end := coverage.NewDate(2024, time.June, 30)
	periods, err := f.Generate(schedule, "r1", start, &end)
	require.NoError(t, err)

	for i := 1; i < len(periods); i++ {
		assert.Equal(t, periods[i-1].EndDate.AddDays(1), periods[i].StartDate, "period %d must follow period %d", i, i-1)
	}
	assert.Equal(t, rental.MethodCash, periods[0].PaymentMethod)
}

func TestGenerate_MonthEndStartClampsToShortMonths(t *testing.T) {
	// GIVEN: A monthly schedule starting on January 31st
	f := newFactory()
	schedule, err := f.ParseSchedule(rental.CNAMMonthlyScheduleJSON("cnam", "CNAM monthly", 300))
	require.NoError(t, err)

	start := coverage.NewDate(2024, time.January, 31)
	end := coverage.NewDate(2024, time.April, 29)
	periods, err := f.Generate(schedule, "r1", start, &end)
	require.NoError(t, err)

	// THEN: Boundaries fall on the 31st or the last day of shorter months
	require.Len(t, periods, 3)
	assert.Equal(t, "2024-02-28", periods[0].EndDate.String())
	assert.Equal(t, "2024-02-29", periods[1].StartDate.String())
	assert.Equal(t, "2024-03-30", periods[1].EndDate.String())
	assert.Equal(t, "2024-03-31", periods[2].StartDate.String())
	assert.Equal(t, "2024-04-29", periods[2].EndDate.String())
	for _, p := range periods {
		assert.Equal(t, "300.00", p.Amount.String())
	}
}

func TestGenerate_WeeklyProratesByWeek(t *testing.T) {
	f := newFactory()
	schedule, err := f.ParseSchedule(rental.WeeklyScheduleJSON("w", "Weekly", "cash", 70))
	require.NoError(t, err)

	start := coverage.NewDate(2024, time.January, 1)
	end := coverage.NewDate(2024, time.January, 10)
	periods, err := f.Generate(schedule, "r1", start, &end)
	require.NoError(t, err)
	require.Len(t, periods, 2)

	assert.Equal(t, "2024-01-07", periods[0].EndDate.String())
	assert.Equal(t, "70.00", periods[0].Amount.String())
	assert.Equal(t, "30.00", periods[1].Amount.String())
}

func TestGenerate_CustomDays(t *testing.T) {
	f := newFactory()
	schedule, err := f.ParseSchedule(rental.CustomDaysScheduleJSON("c", "Fortnight", "CHEQUE", 15, 150))
	require.NoError(t, err)

	start := coverage.NewDate(2024, time.January, 1)
	end := coverage.NewDate(2024, time.January, 30)
	periods, err := f.Generate(schedule, "r1", start, &end)
	require.NoError(t, err)
	require.Len(t, periods, 2)
	assert.Equal(t, "2024-01-15", periods[0].EndDate.String())
	assert.Equal(t, "2024-01-30", periods[1].EndDate.String())
	assert.Equal(t, rental.MethodCheque, periods[1].PaymentMethod)
}

func TestGenerate_SplitShare(t *testing.T) {
	f := newFactory()
	schedule, err := f.ParseSchedule(rental.SplitMonthlyScheduleJSON("split", "Split", 300, 80))
	require.NoError(t, err)

	start := coverage.NewDate(2024, time.January, 1)
	end := coverage.NewDate(2024, time.January, 31)
	periods, err := f.Generate(schedule, "r1", start, &end)
	require.NoError(t, err)
	require.Len(t, periods, 1)

	require.NotNil(t, periods[0].CNAMExpectedAmount)
	require.NotNil(t, periods[0].PatientExpectedAmount)
	assert.Equal(t, "240.00", periods[0].CNAMExpectedAmount.String())
	assert.Equal(t, "60.00", periods[0].PatientExpectedAmount.String())
}

func TestGenerate_OpenEndedNeedsMaxPeriods(t *testing.T) {
	f := newFactory()
	schedule, err := f.ParseSchedule(rental.CNAMMonthlyScheduleJSON("cnam", "CNAM", 300))
	require.NoError(t, err)

	start := coverage.NewDate(2024, time.January, 1)
	_, err = f.Generate(schedule, "r1", start, nil)
	assert.ErrorIs(t, err, coverage.ErrInvalidInput)

	schedule.MaxPeriods = 4
	periods, err := f.Generate(schedule, "r1", start, nil)
	require.NoError(t, err)
	assert.Len(t, periods, 4)
	assert.Equal(t, "2024-04-30", periods[3].EndDate.String())
}

func TestParseSchedule_Rejects(t *testing.T) {
	f := factory.NewScheduleFactory()
	tests := []struct {
		name string
		json string
	}{
		{"malformed", `{`},
		{"unknown frequency", `{"frequency":"yearly","amount_per_period":10}`},
		{"custom without interval", `{"frequency":"custom_days","amount_per_period":10}`},
		{"negative amount", `{"frequency":"monthly","amount_per_period":-1}`},
		{"unknown method", `{"frequency":"monthly","amount_per_period":10,"payment_method":"GOLD"}`},
		{"share over 100", `{"frequency":"monthly","amount_per_period":10,"cnam_share_percent":120}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ParseSchedule(tt.json)
			assert.Error(t, err)
		})
	}
}

func TestToJSON_RoundTrip(t *testing.T) {
	f := factory.NewScheduleFactory()
	schedule, err := f.ParseSchedule(rental.SplitMonthlyScheduleJSON("split", "Split", 300, 80))
	require.NoError(t, err)

	sj := f.ToJSON(schedule)
	assert.Equal(t, "monthly", sj.Frequency)
	assert.Equal(t, "CNAM", sj.PaymentMethod)
	require.NotNil(t, sj.CNAMSharePercent)
	assert.Equal(t, 80.0, *sj.CNAMSharePercent)
}
