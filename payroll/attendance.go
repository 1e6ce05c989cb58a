/*
attendance.go - Attendance aggregation for a pay period

PURPOSE:
  Derives the per-period quantities the calculator needs — day counts and
  hour totals — from raw attendance records. Aggregation is pure: the
  aggregator reads a record list and never writes anything.

THE NORMAL WINDOW:
  A working day is the fixed 9:00-17:00 window (8 hours). Minutes worked
  before 9:00 or after 17:00 count as overtime, with one preserved quirk:
  when the employee's time inside the window AND their total time are both
  under 8 hours, overtime is forced to zero. The day is a shortfall, not
  extra work, even if check-in/out nominally straddle the window. This rule
  is intentionally kept as-is pending product-owner confirmation.

ABSENCE:
  workingDays = daysInMonth - weeklyHolidaysInRange
  absentDays  = max(0, workingDays - nonHolidayAttendanceDays)
  Absence is never counted on a weekly holiday; attending one earns a bonus
  day instead of regular attendance.

SEE ALSO:
  - calendar.go: DaysInMonth, WeeklyHolidaysInRange
  - calculator.go: Consumes the Summary produced here
*/
package payroll

import "github.com/shopspring/decimal"

// =============================================================================
// NORMAL WORKING WINDOW
// =============================================================================

var (
	workdayStart = NewClockTime(9, 0)
	workdayEnd   = NewClockTime(17, 0)
)

const normalWindowMinutes = 8 * 60

// CalculateHours derives (hoursWorked, overtimeHours) from check-in/out
// times. Call it whenever either time is edited. Both results are zero
// unless both times are recorded: a lone check-out would otherwise read
// as a midnight check-in and produce hours out of nothing.
func CalculateHours(checkIn, checkOut ClockTime) (hours, overtime decimal.Decimal) {
	if checkIn.IsZero() || checkOut.IsZero() {
		return decimal.Zero, decimal.Zero
	}

	totalMinutes := int(checkOut) - int(checkIn)
	if totalMinutes < 0 {
		totalMinutes = 0
	}

	beforeWindow := 0
	if checkIn < workdayStart {
		beforeWindow = int(workdayStart) - int(checkIn)
	}
	afterWindow := 0
	if checkOut > workdayEnd {
		afterWindow = int(checkOut) - int(workdayEnd)
	}

	inWindowStart := max(int(checkIn), int(workdayStart))
	inWindowEnd := min(int(checkOut), int(workdayEnd))
	inWindow := inWindowEnd - inWindowStart
	if inWindow < 0 {
		inWindow = 0
	}

	overtime = MinutesToHours(beforeWindow + afterWindow)

	// Shortfall rule (preserved as-is): a partial day never earns overtime,
	// even when the times straddle the window boundary.
	if inWindow < normalWindowMinutes && totalMinutes < normalWindowMinutes {
		overtime = decimal.Zero
	}

	return MinutesToHours(totalMinutes), overtime
}

// =============================================================================
// SUMMARY - Per-period derived quantities
// =============================================================================

// Summary bundles every attendance-derived quantity the calculator needs
// for one employee and period. Produced by Aggregator.Summarize.
type Summary struct {
	AttendanceDays        int
	HolidayAttendanceDays int
	AbsentDays            int
	OvertimeHours         decimal.Decimal
	LateHours             decimal.Decimal
	EarlyLeaveHours       decimal.Decimal
}

// =============================================================================
// AGGREGATOR
// =============================================================================

// Aggregator derives day counts and hour totals from a raw record list.
type Aggregator struct {
	records []AttendanceRecord
}

func NewAggregator(records []AttendanceRecord) *Aggregator {
	return &Aggregator{records: records}
}

// inRange yields the employee's records within the period.
func (a *Aggregator) inRange(employeeID string, p Period) []AttendanceRecord {
	var out []AttendanceRecord
	for _, r := range a.records {
		if r.EmployeeID == employeeID && p.Contains(r.Date) {
			out = append(out, r)
		}
	}
	return out
}

// AttendanceDays counts present records in the period.
func (a *Aggregator) AttendanceDays(employeeID string, p Period) int {
	count := 0
	for _, r := range a.inRange(employeeID, p) {
		if r.Present {
			count++
		}
	}
	return count
}

// HolidayAttendanceDays counts present records falling on the weekly
// holiday. These earn a bonus; they are not regular attendance.
func (a *Aggregator) HolidayAttendanceDays(employeeID string, p Period) int {
	count := 0
	for _, r := range a.inRange(employeeID, p) {
		if r.Present && r.Date.IsWeeklyHoliday() {
			count++
		}
	}
	return count
}

// AbsentDays derives the number of working days with no attendance.
// The working-day base uses the calendar month containing the period
// start, minus the weekly holidays inside the period.
func (a *Aggregator) AbsentDays(employeeID string, p Period) int {
	totalDays := DaysInMonth(p.Start.Year(), p.Start.Month())
	workingDays := totalDays - CountWeeklyHolidays(p.Start, p.End)

	nonHoliday := a.AttendanceDays(employeeID, p) - a.HolidayAttendanceDays(employeeID, p)
	absent := workingDays - nonHoliday
	if absent < 0 {
		absent = 0
	}
	return absent
}

// OvertimeHours sums overtime over present records, rounded to 1 decimal.
func (a *Aggregator) OvertimeHours(employeeID string, p Period) decimal.Decimal {
	return a.sumHours(employeeID, p, func(r AttendanceRecord) decimal.Decimal { return r.OvertimeHours })
}

// LateHours sums late hours over present records, rounded to 1 decimal.
func (a *Aggregator) LateHours(employeeID string, p Period) decimal.Decimal {
	return a.sumHours(employeeID, p, func(r AttendanceRecord) decimal.Decimal { return r.LateHours })
}

// EarlyLeaveHours sums early-leave hours over present records.
func (a *Aggregator) EarlyLeaveHours(employeeID string, p Period) decimal.Decimal {
	return a.sumHours(employeeID, p, func(r AttendanceRecord) decimal.Decimal { return r.EarlyLeaveHours })
}

func (a *Aggregator) sumHours(employeeID string, p Period, field func(AttendanceRecord) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, r := range a.inRange(employeeID, p) {
		if r.Present {
			total = total.Add(field(r))
		}
	}
	return RoundHours(total)
}

// Summarize computes every derived quantity in one pass-per-field call.
// Returns ErrInvalidRange for an empty or reversed period.
func (a *Aggregator) Summarize(employeeID string, p Period) (Summary, error) {
	if !p.Valid() {
		return Summary{}, &InvalidRangeError{Start: p.Start, End: p.End}
	}
	return Summary{
		AttendanceDays:        a.AttendanceDays(employeeID, p),
		HolidayAttendanceDays: a.HolidayAttendanceDays(employeeID, p),
		AbsentDays:            a.AbsentDays(employeeID, p),
		OvertimeHours:         a.OvertimeHours(employeeID, p),
		LateHours:             a.LateHours(employeeID, p),
		EarlyLeaveHours:       a.EarlyLeaveHours(employeeID, p),
	}, nil
}
