package coverage

import (
	"fmt"
	"sort"
)

// =============================================================================
// ALERTS - Time-bounded reminders for bonds and rental end
// =============================================================================

const (
	// BondAlertWindowDays is how far ahead bond expiries are reported.
	BondAlertWindowDays = 30
	// RentalEndAlertWindowDays is how far ahead the rental end is reported.
	RentalEndAlertWindowDays = 7

	CriticalAlertDays = 7
	HighAlertDays     = 15
)

// AlertKind tells what an alert is about.
type AlertKind string

const (
	AlertBondExpiry AlertKind = "bond_expiry"
	AlertRentalEnd  AlertKind = "rental_end"
)

// Priority orders alerts for display.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
)

type Alert struct {
	Kind      AlertKind
	Priority  Priority
	Date      Date
	DaysUntil int
	BondID    BondID
	BondType  string
	Amount    Money
	Message   string
}

// BondPriority grades a bond expiry by days remaining.
func BondPriority(daysUntil int) Priority {
	switch {
	case daysUntil <= CriticalAlertDays:
		return PriorityCritical
	case daysUntil <= HighAlertDays:
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

// ScheduleAlerts returns the reminders due as of asOf, most urgent first.
//
// Already expired bonds (daysUntil < 0) produce no alert.
// TODO: confirm with product whether expired bonds should surface as overdue.
func ScheduleAlerts(bonds []InsuranceBond, rentalEnd *Date, asOf Date) []Alert {
	var alerts []Alert

	for _, b := range bonds {
		if b.EndDate == nil || b.EndDate.IsZero() {
			continue
		}
		days := DaysBetween(asOf, *b.EndDate)
		if days < 0 || days > BondAlertWindowDays {
			continue
		}
		alerts = append(alerts, Alert{
			Kind:      AlertBondExpiry,
			Priority:  BondPriority(days),
			Date:      *b.EndDate,
			DaysUntil: days,
			BondID:    b.ID,
			BondType:  b.BondType,
			Amount:    b.TotalAmount,
			Message:   fmt.Sprintf("Bond %s expires in %d day(s)", bondLabel(b), days),
		})
	}

	if rentalEnd != nil && !rentalEnd.IsZero() {
		days := DaysBetween(asOf, *rentalEnd)
		if days >= 0 && days <= RentalEndAlertWindowDays {
			alerts = append(alerts, Alert{
				Kind:      AlertRentalEnd,
				Priority:  PriorityMedium,
				Date:      *rentalEnd,
				DaysUntil: days,
				Amount:    ZeroMoney(),
				Message:   fmt.Sprintf("Rental ends in %d day(s)", days),
			})
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].DaysUntil < alerts[j].DaysUntil
	})
	return alerts
}

func bondLabel(b InsuranceBond) string {
	if b.BondNumber != "" {
		return b.BondNumber
	}
	if b.BondType != "" {
		return b.BondType
	}
	return string(b.ID)
}

func sortRentalAlerts(alerts []RentalAlert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].DaysUntil < alerts[j].DaysUntil
	})
}
