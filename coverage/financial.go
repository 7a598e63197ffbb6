/*
financial.go - Payer split and coverage ratios

PURPOSE:
  Walks every billing period of a rental (gap periods included) and its
  insurance bonds to produce the payer-split totals and two coverage ratios.

KEY INSIGHT:
  The CNAM amount used for coverage comes from PERIODS, not bonds. Bonds
  are declarations; periods are realised billing. Bond totals are reported
  as a secondary figure and never enter a ratio.

COMPUTATION (in order):
   1. CNAMPeriodsAmount    = sum(amount) where CNAM and not gap
   2. CNAMBondsAmount      = sum(bond.TotalAmount)
   3. DepositAmount        = configured deposit if non-zero,
                             else linked payment amount if flagged deposit,
                             else 0
   4. PeriodsAmount        = sum(amount) over all periods
   5. GapAmount            = sum(amount) where gap
   6. PatientPeriodsAmount = sum(amount) where gap OR not CNAM
   7. TotalPatientPayment  = DepositAmount + PatientPeriodsAmount
   8. TotalExpectedRevenue = PeriodsAmount + DepositAmount
   9. CNAMCoveragePercentage = CNAMPeriodsAmount / TotalExpectedRevenue * 100
  10. TotalDays / CNAMDays (inclusive day counts, same filters as 4 and 1)
  11. TimeCoveragePercentage = CNAMDays / TotalDays * 100

  Ratios with a zero denominator are 0, never NaN or Inf.

PATIENT EXPOSURE:
  PatientPeriodsAmount counts gap periods as patient-owed even though they
  were never billed to the patient. It is the RISK the patient side carries,
  not a receivable. PatientBilledAmount is the receivable part.
*/
package coverage

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// FinancialInput is everything the aggregator reads.
type FinancialInput struct {
	Periods           []RentalPeriod
	Bonds             []InsuranceBond
	ConfiguredDeposit *Money
	LinkedPayment     *Payment
}

// FinancialInputFor extracts the aggregator input from a rental.
func FinancialInputFor(r Rental) FinancialInput {
	return FinancialInput{
		Periods:           r.Periods,
		Bonds:             r.Bonds,
		ConfiguredDeposit: r.ConfiguredDeposit,
		LinkedPayment:     r.LinkedPayment,
	}
}

// DepositSource tells which fallback produced the deposit amount.
type DepositSource string

const (
	DepositFromConfiguration DepositSource = "configuration"
	DepositFromPayment       DepositSource = "payment"
	DepositNone              DepositSource = "none"
)

// FinancialSummary is the aggregator output.
type FinancialSummary struct {
	CNAMPeriodsAmount Money
	CNAMBondsAmount   Money

	DepositAmount Money
	DepositSource DepositSource

	PeriodsAmount Money
	GapAmount     Money

	// PatientPeriodsAmount is patient-side exposure: non-CNAM periods plus
	// every gap period.
	PatientPeriodsAmount Money

	// PatientBilledAmount is the non-gap, non-CNAM part of PeriodsAmount.
	PatientBilledAmount Money

	TotalPatientPayment  Money
	TotalExpectedRevenue Money

	CNAMCoveragePercentage decimal.Decimal

	TotalDays int
	CNAMDays  int

	TimeCoveragePercentage decimal.Decimal
}

// ResolveDeposit applies the deposit fallback chain.
func ResolveDeposit(configured *Money, linked *Payment) (Money, DepositSource) {
	if configured != nil && !configured.IsZero() {
		return *configured, DepositFromConfiguration
	}
	if linked != nil && linked.IsDeposit {
		return linked.Amount, DepositFromPayment
	}
	return ZeroMoney(), DepositNone
}

// Percentage returns part/whole*100, or 0 when whole is zero.
func Percentage(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}

// Summarize computes the financial summary. It does not modify its input.
func Summarize(in FinancialInput) (FinancialSummary, error) {
	for _, p := range in.Periods {
		if err := p.Validate(); err != nil {
			return FinancialSummary{}, err
		}
	}
	for _, b := range in.Bonds {
		if err := b.Validate(); err != nil {
			return FinancialSummary{}, err
		}
	}

	var (
		cnamPeriods   = ZeroMoney()
		cnamBonds     = ZeroMoney()
		periodsAmount = ZeroMoney()
		gapAmount     = ZeroMoney()
		patientAmount = ZeroMoney()
		patientBilled = ZeroMoney()
		totalDays     int
		cnamDays      int
	)

	for _, p := range in.Periods {
		days := p.Days()
		periodsAmount = periodsAmount.Add(p.Amount)
		totalDays += days

		switch {
		case p.IsGapPeriod:
			gapAmount = gapAmount.Add(p.Amount)
			patientAmount = patientAmount.Add(p.Amount)
		case p.PaymentMethod.IsCNAM():
			cnamPeriods = cnamPeriods.Add(p.Amount)
			cnamDays += days
		default:
			patientAmount = patientAmount.Add(p.Amount)
			patientBilled = patientBilled.Add(p.Amount)
		}
	}

	for _, b := range in.Bonds {
		cnamBonds = cnamBonds.Add(b.TotalAmount)
	}

	deposit, source := ResolveDeposit(in.ConfiguredDeposit, in.LinkedPayment)
	deposit = deposit.ClampZero()
	totalExpected := periodsAmount.Add(deposit)

	return FinancialSummary{
		CNAMPeriodsAmount:      cnamPeriods,
		CNAMBondsAmount:        cnamBonds,
		DepositAmount:          deposit,
		DepositSource:          source,
		PeriodsAmount:          periodsAmount,
		GapAmount:              gapAmount,
		PatientPeriodsAmount:   patientAmount,
		PatientBilledAmount:    patientBilled,
		TotalPatientPayment:    deposit.Add(patientAmount),
		TotalExpectedRevenue:   totalExpected,
		CNAMCoveragePercentage: Percentage(cnamPeriods.Value, totalExpected.Value),
		TotalDays:              totalDays,
		CNAMDays:               cnamDays,
		TimeCoveragePercentage: Percentage(decimal.NewFromInt(int64(cnamDays)), decimal.NewFromInt(int64(totalDays))),
	}, nil
}
