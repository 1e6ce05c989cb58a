/*
calendar.go - Date and pay-period arithmetic

PURPOSE:
  All calendar math used by the engine lives here: the Date value type,
  the Period (pay period) type, month-length lookups, and the weekly
  holiday calendar.

KEY CONCEPTS:
  - Date: a calendar day, normalized to UTC midnight. Persisted and
    serialized as ISO "2006-01-02" strings everywhere.
  - Period: an inclusive [Start, End] date range a payslip covers.
  - Weekly holiday: Friday is the fixed non-working day. It is excluded
    from absence calculations and eligible for a bonus when attended.

SEE ALSO:
  - attendance.go: Aggregates attendance records over periods
  - calculator.go: Uses DaysInMonth / period day counts for rates
*/
package payroll

import (
	"fmt"
	"time"
)

// WeeklyHoliday is the fixed non-working day of the week.
const WeeklyHoliday = time.Friday

// =============================================================================
// DATE - Calendar day, UTC midnight
// =============================================================================

type Date struct {
	Time time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{Time: t.UTC()}, nil
}

// MustParseDate is for literals in tests and seed data.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// Comparison
func (d Date) Before(other Date) bool        { return d.normalize().Before(other.normalize()) }
func (d Date) Equal(other Date) bool         { return d.normalize().Equal(other.normalize()) }
func (d Date) After(other Date) bool         { return d.normalize().After(other.normalize()) }
func (d Date) BeforeOrEqual(other Date) bool { return d.Before(other) || d.Equal(other) }
func (d Date) AfterOrEqual(other Date) bool  { return d.After(other) || d.Equal(other) }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{Time: d.normalize().AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{Time: d.normalize().AddDate(0, n, 0)} }

// Properties
func (d Date) Year() int             { return d.Time.Year() }
func (d Date) Month() time.Month     { return d.Time.Month() }
func (d Date) Day() int              { return d.Time.Day() }
func (d Date) Weekday() time.Weekday { return d.Time.Weekday() }
func (d Date) IsWeeklyHoliday() bool { return d.Weekday() == WeeklyHoliday }
func (d Date) IsZero() bool          { return d.Time.IsZero() }

func (d Date) String() string { return d.normalize().Format("2006-01-02") }

// =============================================================================
// MONTH HELPERS
// =============================================================================

// DaysInMonth returns the number of calendar days in the given month.
func DaysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func StartOfMonth(year int, month time.Month) Date { return NewDate(year, month, 1) }

func EndOfMonth(year int, month time.Month) Date {
	return NewDate(year, month, DaysInMonth(year, month))
}

// =============================================================================
// PERIOD - Inclusive pay-period range
// =============================================================================

type Period struct {
	Start Date
	End   Date
}

func NewPeriod(start, end Date) Period { return Period{Start: start, End: end} }

// FullMonth returns the period covering an entire calendar month.
func FullMonth(year int, month time.Month) Period {
	return Period{Start: StartOfMonth(year, month), End: EndOfMonth(year, month)}
}

// Valid reports whether the period is a usable range: both ends set and
// Start <= End. Callers must check this before any rate computation;
// DayCount on an invalid period would otherwise produce zero or negative
// divisors.
func (p Period) Valid() bool {
	return !p.Start.IsZero() && !p.End.IsZero() && p.Start.BeforeOrEqual(p.End)
}

// Contains returns true if the date is within [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// DayCount returns the inclusive number of calendar days in the period.
func (p Period) DayCount() int {
	return int(p.End.normalize().Sub(p.Start.normalize()).Hours()/24) + 1
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// =============================================================================
// WEEKLY HOLIDAY CALENDAR
// =============================================================================

// WeeklyHolidaysInRange returns every date in [start, end] that falls on
// the weekly holiday, in chronological order. Recomputed on each call.
func WeeklyHolidaysInRange(start, end Date) []Date {
	var holidays []Date
	current := start
	// Jump to the first holiday instead of walking day by day.
	offset := (int(WeeklyHoliday) - int(current.Weekday()) + 7) % 7
	current = current.AddDays(offset)
	for current.BeforeOrEqual(end) {
		holidays = append(holidays, current)
		current = current.AddDays(7)
	}
	return holidays
}

// CountWeeklyHolidays returns how many weekly holidays fall in [start, end].
func CountWeeklyHolidays(start, end Date) int {
	return len(WeeklyHolidaysInRange(start, end))
}
