package coverage_test

import (
	"time"

	"github.com/warp/coverage-engine/coverage"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

const methodCash coverage.PaymentMethod = "CASH"

func init() {
	coverage.RegisterPaymentMethod(methodCash)
}

func date(y int, m time.Month, d int) coverage.Date {
	return coverage.NewDate(y, m, d)
}

func datePtr(y int, m time.Month, d int) *coverage.Date {
	v := coverage.NewDate(y, m, d)
	return &v
}

func money(v float64) coverage.Money {
	return coverage.NewMoney(v)
}

func moneyPtr(v float64) *coverage.Money {
	m := coverage.NewMoney(v)
	return &m
}

func period(id string, start, end coverage.Date, amount float64, method coverage.PaymentMethod) coverage.RentalPeriod {
	return coverage.RentalPeriod{
		ID:            coverage.PeriodID(id),
		RentalID:      "rental-1",
		StartDate:     start,
		EndDate:       end,
		Amount:        money(amount),
		PaymentMethod: method,
	}
}

func gapPeriod(id string, start, end coverage.Date, amount float64) coverage.RentalPeriod {
	p := period(id, start, end, amount, methodCash)
	p.IsGapPeriod = true
	return p
}

// rentalWithFebruaryHole is a 90-day rental with a hole in February.
func rentalWithFebruaryHole() coverage.Rental {
	return coverage.Rental{
		ID:        "rental-1",
		StartDate: date(2024, time.January, 1),
		EndDate:   datePtr(2024, time.March, 31),
		Periods: []coverage.RentalPeriod{
			period("p1", date(2024, time.January, 1), date(2024, time.January, 31), 300, coverage.MethodCNAM),
			period("p2", date(2024, time.February, 15), date(2024, time.March, 31), 450, methodCash),
		},
	}
}

func moneyEqual(a, b coverage.Money) bool {
	return a.Value.Equal(b.Value)
}
