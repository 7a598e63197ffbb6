package coverage_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/coverage-engine/coverage"
)

// =============================================================================
// ALERT SCHEDULER TESTS
// =============================================================================

func bondEnding(id string, asOf coverage.Date, inDays int) coverage.InsuranceBond {
	end := asOf.AddDays(inDays)
	return coverage.InsuranceBond{
		ID:          coverage.BondID(id),
		BondType:    "ALD",
		BondNumber:  "BN-" + id,
		TotalAmount: money(1000),
		EndDate:     &end,
	}
}

func TestScheduleAlerts_BondWindow(t *testing.T) {
	// GIVEN: A bond expiring in 10 days and one in 40 days
	// THEN: Only the first is reported, with high priority
	asOf := date(2024, time.March, 1)
	bonds := []coverage.InsuranceBond{
		bondEnding("near", asOf, 10),
		bondEnding("far", asOf, 40),
	}

	alerts := coverage.ScheduleAlerts(bonds, nil, asOf)
	require.Len(t, alerts, 1)
	assert.Equal(t, coverage.BondID("near"), alerts[0].BondID)
	assert.Equal(t, coverage.PriorityHigh, alerts[0].Priority)
	assert.Equal(t, 10, alerts[0].DaysUntil)
	assert.Equal(t, coverage.AlertBondExpiry, alerts[0].Kind)
	assert.Contains(t, alerts[0].Message, "BN-near")
}

func TestScheduleAlerts_ExpiredBondsDropped(t *testing.T) {
	asOf := date(2024, time.March, 1)
	alerts := coverage.ScheduleAlerts([]coverage.InsuranceBond{bondEnding("old", asOf, -1)}, nil, asOf)
	assert.Empty(t, alerts)
}

func TestScheduleAlerts_BondWithoutEndDate(t *testing.T) {
	asOf := date(2024, time.March, 1)
	alerts := coverage.ScheduleAlerts([]coverage.InsuranceBond{{ID: "open", TotalAmount: money(10)}}, nil, asOf)
	assert.Empty(t, alerts)
}

func TestScheduleAlerts_SortedByUrgency(t *testing.T) {
	asOf := date(2024, time.March, 1)
	bonds := []coverage.InsuranceBond{
		bondEnding("b20", asOf, 20),
		bondEnding("b0", asOf, 0),
		bondEnding("b30", asOf, 30),
		bondEnding("b15", asOf, 15),
	}
	rentalEnd := asOf.AddDays(3)

	alerts := coverage.ScheduleAlerts(bonds, &rentalEnd, asOf)
	require.Len(t, alerts, 5)

	wantDays := []int{0, 3, 15, 20, 30}
	wantPriority := []coverage.Priority{
		coverage.PriorityCritical,
		coverage.PriorityMedium,
		coverage.PriorityHigh,
		coverage.PriorityMedium,
		coverage.PriorityMedium,
	}
	for i, a := range alerts {
		assert.Equal(t, wantDays[i], a.DaysUntil, "alert %d", i)
		assert.Equal(t, wantPriority[i], a.Priority, "alert %d", i)
	}
	assert.Equal(t, coverage.AlertRentalEnd, alerts[1].Kind)
}

func TestScheduleAlerts_RentalEndWindow(t *testing.T) {
	asOf := date(2024, time.March, 1)
	tests := []struct {
		inDays int
		want   int
	}{
		{-1, 0},
		{0, 1},
		{7, 1},
		{8, 0},
	}
	for _, tt := range tests {
		end := asOf.AddDays(tt.inDays)
		alerts := coverage.ScheduleAlerts(nil, &end, asOf)
		if len(alerts) != tt.want {
			t.Errorf("rental ending in %d days: expected %d alerts, got %d", tt.inDays, tt.want, len(alerts))
		}
	}
}

func TestScheduleAlerts_DependsOnlyOnAsOf(t *testing.T) {
	bonds := []coverage.InsuranceBond{bondEnding("b", date(2024, time.March, 1), 10)}

	early := coverage.ScheduleAlerts(bonds, nil, date(2024, time.January, 1))
	onTime := coverage.ScheduleAlerts(bonds, nil, date(2024, time.March, 1))

	assert.Empty(t, early, "70 days out is outside the window")
	assert.Len(t, onTime, 1)
}

func TestBondPriority(t *testing.T) {
	tests := []struct {
		days int
		want coverage.Priority
	}{
		{0, coverage.PriorityCritical},
		{7, coverage.PriorityCritical},
		{8, coverage.PriorityHigh},
		{15, coverage.PriorityHigh},
		{16, coverage.PriorityMedium},
		{30, coverage.PriorityMedium},
	}
	for _, tt := range tests {
		if got := coverage.BondPriority(tt.days); got != tt.want {
			t.Errorf("BondPriority(%d) = %s, want %s", tt.days, got, tt.want)
		}
	}
}
