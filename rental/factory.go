/*
Package rental provides billing schedule presets.

These functions build JSON schedule definitions for the common ways a
rental is billed (CNAM monthly, cash monthly, split CNAM/patient, weekly).
They construct JSON strings directly to avoid import cycles with the
factory package.

USAGE:
  import "github.com/warp/coverage-engine/rental"

  jsonStr := rental.CNAMMonthlyScheduleJSON("cnam-monthly", "CNAM monthly", 300)
  schedule, err := factory.NewScheduleFactory().ParseSchedule(jsonStr)
*/
package rental

import (
	"encoding/json"
)

// CNAMMonthlyScheduleJSON returns JSON for a schedule fully billed to CNAM each month.
func CNAMMonthlyScheduleJSON(id, name string, monthlyAmount float64) string {
	sj := map[string]interface{}{
		"id":                id,
		"name":              name,
		"frequency":         "monthly",
		"amount_per_period": monthlyAmount,
		"payment_method":    "CNAM",
	}
	b, _ := json.MarshalIndent(sj, "", "  ")
	return string(b)
}

// CashMonthlyScheduleJSON returns JSON for a schedule paid by the patient in cash.
func CashMonthlyScheduleJSON(id, name string, monthlyAmount float64) string {
	sj := map[string]interface{}{
		"id":                id,
		"name":              name,
		"frequency":         "monthly",
		"amount_per_period": monthlyAmount,
		"payment_method":    string(MethodCash),
	}
	b, _ := json.MarshalIndent(sj, "", "  ")
	return string(b)
}

// SplitMonthlyScheduleJSON returns JSON for a CNAM schedule where the patient
// pays the part CNAM does not reimburse.
func SplitMonthlyScheduleJSON(id, name string, monthlyAmount, cnamSharePercent float64) string {
	sj := map[string]interface{}{
		"id":                 id,
		"name":               name,
		"frequency":          "monthly",
		"amount_per_period":  monthlyAmount,
		"payment_method":     "CNAM",
		"cnam_share_percent": cnamSharePercent,
	}
	b, _ := json.MarshalIndent(sj, "", "  ")
	return string(b)
}

// WeeklyScheduleJSON returns JSON for short rentals billed weekly.
func WeeklyScheduleJSON(id, name string, method string, weeklyAmount float64) string {
	sj := map[string]interface{}{
		"id":                id,
		"name":              name,
		"frequency":         "weekly",
		"amount_per_period": weeklyAmount,
		"payment_method":    method,
	}
	b, _ := json.MarshalIndent(sj, "", "  ")
	return string(b)
}

// CustomDaysScheduleJSON returns JSON for a schedule with a fixed period length.
func CustomDaysScheduleJSON(id, name string, method string, intervalDays int, amount float64) string {
	sj := map[string]interface{}{
		"id":                id,
		"name":              name,
		"frequency":         "custom_days",
		"interval_days":     intervalDays,
		"amount_per_period": amount,
		"payment_method":    method,
	}
	b, _ := json.MarshalIndent(sj, "", "  ")
	return string(b)
}
