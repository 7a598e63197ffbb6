package coverage_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/coverage-engine/coverage"
)

// =============================================================================
// FINANCIAL AGGREGATOR TESTS
// =============================================================================

func TestSummarize_PayerSplit(t *testing.T) {
	// GIVEN: The gap-detection rental (CNAM 300 over 31 days, cash 450 over 46 days)
	// WHEN: Summarizing without deposit
	// THEN: CNAM share is 300/750, time share is 31/77

	summary, err := coverage.Summarize(coverage.FinancialInputFor(rentalWithFebruaryHole()))
	require.NoError(t, err)

	assert.True(t, moneyEqual(money(300), summary.CNAMPeriodsAmount))
	assert.True(t, moneyEqual(money(750), summary.PeriodsAmount))
	assert.True(t, moneyEqual(money(450), summary.PatientPeriodsAmount))
	assert.True(t, moneyEqual(money(450), summary.PatientBilledAmount))
	assert.True(t, summary.GapAmount.IsZero())
	assert.True(t, summary.DepositAmount.IsZero())
	assert.Equal(t, coverage.DepositNone, summary.DepositSource)
	assert.True(t, moneyEqual(money(750), summary.TotalExpectedRevenue))
	assert.True(t, moneyEqual(money(450), summary.TotalPatientPayment))

	assert.Equal(t, "40.00", summary.CNAMCoveragePercentage.StringFixed(2))
	assert.Equal(t, 77, summary.TotalDays)
	assert.Equal(t, 31, summary.CNAMDays)
	assert.Equal(t, "40.26", summary.TimeCoveragePercentage.StringFixed(2))
}

func TestSummarize_ConfiguredDeposit(t *testing.T) {
	in := coverage.FinancialInputFor(rentalWithFebruaryHole())
	in.ConfiguredDeposit = moneyPtr(50)

	summary, err := coverage.Summarize(in)
	require.NoError(t, err)

	assert.Equal(t, coverage.DepositFromConfiguration, summary.DepositSource)
	assert.True(t, moneyEqual(money(50), summary.DepositAmount))
	assert.True(t, moneyEqual(money(800), summary.TotalExpectedRevenue))
	assert.True(t, moneyEqual(money(500), summary.TotalPatientPayment))
	assert.Equal(t, "37.50", summary.CNAMCoveragePercentage.StringFixed(2))
}

func TestResolveDeposit_FallbackChain(t *testing.T) {
	deposit := &coverage.Payment{Amount: money(80), IsDeposit: true}
	regular := &coverage.Payment{Amount: money(80)}

	tests := []struct {
		name       string
		configured *coverage.Money
		linked     *coverage.Payment
		want       float64
		source     coverage.DepositSource
	}{
		{"configuration wins", moneyPtr(50), deposit, 50, coverage.DepositFromConfiguration},
		{"zero configuration falls back", moneyPtr(0), deposit, 80, coverage.DepositFromPayment},
		{"absent configuration falls back", nil, deposit, 80, coverage.DepositFromPayment},
		{"linked payment is not a deposit", nil, regular, 0, coverage.DepositNone},
		{"nothing", nil, nil, 0, coverage.DepositNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, source := coverage.ResolveDeposit(tt.configured, tt.linked)
			assert.True(t, moneyEqual(money(tt.want), got), "got %s", got)
			assert.Equal(t, tt.source, source)
		})
	}
}

func TestSummarize_GapPeriodsNeverCountAsCNAM(t *testing.T) {
	// GIVEN: A gap period tagged CNAM
	// THEN: It counts as gap and patient exposure, never as CNAM coverage
	r := rentalWithFebruaryHole()
	gap := gapPeriod("g1", date(2024, time.February, 1), date(2024, time.February, 14), 140)
	gap.PaymentMethod = coverage.MethodCNAM
	r.Periods = append(r.Periods, gap)

	summary, err := coverage.Summarize(coverage.FinancialInputFor(r))
	require.NoError(t, err)

	assert.True(t, moneyEqual(money(300), summary.CNAMPeriodsAmount))
	assert.True(t, moneyEqual(money(140), summary.GapAmount))
	assert.True(t, moneyEqual(money(890), summary.PeriodsAmount))
	assert.True(t, moneyEqual(money(590), summary.PatientPeriodsAmount))
	assert.True(t, moneyEqual(money(450), summary.PatientBilledAmount))
	assert.Equal(t, 31, summary.CNAMDays)
	assert.Equal(t, 91, summary.TotalDays)

	// No double counting: every period lands in exactly one of CNAM or patient exposure.
	assert.True(t, moneyEqual(summary.PeriodsAmount, summary.CNAMPeriodsAmount.Add(summary.PatientPeriodsAmount)))
}

func TestSummarize_BondsDoNotAffectRatios(t *testing.T) {
	r := rentalWithFebruaryHole()
	without, err := coverage.Summarize(coverage.FinancialInputFor(r))
	require.NoError(t, err)

	r.Bonds = []coverage.InsuranceBond{
		{ID: "b1", BondType: "ALD", TotalAmount: money(5000), EndDate: datePtr(2024, time.June, 30)},
	}
	with, err := coverage.Summarize(coverage.FinancialInputFor(r))
	require.NoError(t, err)

	assert.True(t, moneyEqual(money(5000), with.CNAMBondsAmount))
	assert.True(t, without.CNAMCoveragePercentage.Equal(with.CNAMCoveragePercentage))
	assert.True(t, moneyEqual(without.TotalExpectedRevenue, with.TotalExpectedRevenue))
}

func TestSummarize_EmptyInputHasZeroRatios(t *testing.T) {
	summary, err := coverage.Summarize(coverage.FinancialInput{})
	require.NoError(t, err)

	assert.True(t, summary.CNAMCoveragePercentage.IsZero())
	assert.True(t, summary.TimeCoveragePercentage.IsZero())
	assert.Equal(t, 0, summary.TotalDays)
}

func TestSummarize_IsPureAndBounded(t *testing.T) {
	in := coverage.FinancialInputFor(rentalWithFebruaryHole())
	before := append([]coverage.RentalPeriod(nil), in.Periods...)

	first, err := coverage.Summarize(in)
	require.NoError(t, err)
	second, err := coverage.Summarize(in)
	require.NoError(t, err)

	assert.True(t, first.CNAMCoveragePercentage.Equal(second.CNAMCoveragePercentage))
	assert.True(t, moneyEqual(first.TotalExpectedRevenue, second.TotalExpectedRevenue))
	assert.Equal(t, before, in.Periods, "input must not be modified")

	hundred := decimal.NewFromInt(100)
	for _, pct := range []decimal.Decimal{first.CNAMCoveragePercentage, first.TimeCoveragePercentage} {
		assert.False(t, pct.IsNegative())
		assert.True(t, pct.LessThanOrEqual(hundred))
	}
}

func TestSummarize_RejectsUnknownMethod(t *testing.T) {
	r := rentalWithFebruaryHole()
	r.Periods[1].PaymentMethod = "BITCOIN"

	_, err := coverage.Summarize(coverage.FinancialInputFor(r))
	assert.ErrorIs(t, err, coverage.ErrUnknownPaymentMethod)
}

func TestPercentage_ZeroDenominator(t *testing.T) {
	got := coverage.Percentage(decimal.NewFromInt(10), decimal.Zero)
	if !got.IsZero() {
		t.Errorf("expected 0, got %s", got)
	}
}
