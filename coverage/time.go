package coverage

import (
	"encoding/json"
	"fmt"
	"time"
)

// =============================================================================
// DATE - Calendar date without time-of-day
// =============================================================================

const dateLayout = "2006-01-02"

// Date is a calendar date normalised to UTC midnight.
// The zero value means "absent".
type Date struct {
	Time time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the time-of-day of t, keeping its calendar day in its own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(o Date) bool        { return d.norm().Before(o.norm()) }
func (d Date) After(o Date) bool         { return d.norm().After(o.norm()) }
func (d Date) Equal(o Date) bool         { return d.norm().Equal(o.norm()) }
func (d Date) BeforeOrEqual(o Date) bool { return !d.After(o) }
func (d Date) AfterOrEqual(o Date) bool  { return !d.Before(o) }

// Sub returns the duration between two normalised dates.
func (d Date) Sub(o Date) time.Duration { return d.norm().Sub(o.norm()) }

func (d Date) norm() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{Time: d.norm().AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{Time: d.norm().AddDate(0, n, 0)} }

func (d Date) IsZero() bool   { return d.Time.IsZero() }
func (d Date) String() string { return d.Time.Format(dateLayout) }

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// INTERVAL UTILITIES
// =============================================================================

const secondsPerDay = 24 * 60 * 60

// dayNumber counts days since the Unix epoch. Exact for any year, unlike
// time.Duration which saturates after about 292 years.
func (d Date) dayNumber() int64 { return d.norm().Unix() / secondsPerDay }

// DaysBetween returns the calendar day difference to - from (may be negative).
func DaysBetween(from, to Date) int {
	return int(to.dayNumber() - from.dayNumber())
}

// DaysBetweenInclusive counts both endpoints.
// Returns 0 when b is before a; callers validate intervals first.
func DaysBetweenInclusive(a, b Date) int {
	if b.Before(a) {
		return 0
	}
	return DaysBetween(a, b) + 1
}

// Period is an inclusive calendar interval [Start, End].
type Period struct {
	Start Date
	End   Date
}

// Contains returns true if d is within [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Overlaps returns true if the two inclusive intervals share at least one day.
func (p Period) Overlaps(o Period) bool {
	return !(o.Start.After(p.End) || o.End.Before(p.Start))
}

// Days returns the inclusive day count of the period.
func (p Period) Days() int {
	return DaysBetweenInclusive(p.Start, p.End)
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}
