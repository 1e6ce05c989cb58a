package payroll_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func march2025() payroll.Period {
	return payroll.FullMonth(2025, time.March)
}

func presentDay(employeeID string, date payroll.Date) payroll.AttendanceRecord {
	hours, overtime := payroll.CalculateHours(
		payroll.NewClockTime(9, 0), payroll.NewClockTime(17, 0))
	return payroll.AttendanceRecord{
		ID:            employeeID + "-" + date.String(),
		EmployeeID:    employeeID,
		Date:          date,
		CheckIn:       payroll.NewClockTime(9, 0),
		CheckOut:      payroll.NewClockTime(17, 0),
		HoursWorked:   hours,
		OvertimeHours: overtime,
		Present:       true,
	}
}

// everyWorkday returns one present record for each non-Friday in the period.
func everyWorkday(employeeID string, p payroll.Period) []payroll.AttendanceRecord {
	var out []payroll.AttendanceRecord
	for d := p.Start; d.BeforeOrEqual(p.End); d = d.AddDays(1) {
		if d.IsWeeklyHoliday() {
			continue
		}
		out = append(out, presentDay(employeeID, d))
	}
	return out
}

func dec(s string) decimal.Decimal {
	return payroll.MustParseDecimal(s)
}

// =============================================================================
// HOURS AND OVERTIME
// =============================================================================

func TestCalculateHours_NormalDay(t *testing.T) {
	// GIVEN: A 9:00-17:00 day
	hours, overtime := payroll.CalculateHours(
		payroll.NewClockTime(9, 0), payroll.NewClockTime(17, 0))

	// THEN: 8 hours, no overtime
	if !hours.Equal(dec("8")) {
		t.Errorf("expected 8 hours, got %v", hours)
	}
	if !overtime.IsZero() {
		t.Errorf("expected no overtime, got %v", overtime)
	}
}

func TestCalculateHours_OvertimeBothSides(t *testing.T) {
	// GIVEN: Check-in an hour early, check-out an hour late
	hours, overtime := payroll.CalculateHours(
		payroll.NewClockTime(8, 0), payroll.NewClockTime(18, 0))

	if !hours.Equal(dec("10")) {
		t.Errorf("expected 10 hours, got %v", hours)
	}
	if !overtime.Equal(dec("2")) {
		t.Errorf("expected 2 overtime hours, got %v", overtime)
	}
}

func TestCalculateHours_ShortfallSuppressesOvertime(t *testing.T) {
	// GIVEN: 8:00-12:00 straddles the window start but totals only 4 hours
	// THEN: The hour before 9:00 does NOT count as overtime
	hours, overtime := payroll.CalculateHours(
		payroll.NewClockTime(8, 0), payroll.NewClockTime(12, 0))

	if !hours.Equal(dec("4")) {
		t.Errorf("expected 4 hours, got %v", hours)
	}
	if !overtime.IsZero() {
		t.Errorf("expected suppressed overtime, got %v", overtime)
	}
}

func TestCalculateHours_FullWindowPlusEarlyStart(t *testing.T) {
	// GIVEN: 8:30-17:00 covers the whole window with an early start
	// THEN: The full day is worked, so the early half hour is overtime
	hours, overtime := payroll.CalculateHours(
		payroll.NewClockTime(8, 30), payroll.NewClockTime(17, 0))

	if !hours.Equal(dec("8.5")) {
		t.Errorf("expected 8.5 hours, got %v", hours)
	}
	if !overtime.Equal(dec("0.5")) {
		t.Errorf("expected 0.5 overtime hours, got %v", overtime)
	}
}

func TestCalculateHours_CheckOutBeforeCheckIn(t *testing.T) {
	hours, overtime := payroll.CalculateHours(
		payroll.NewClockTime(17, 0), payroll.NewClockTime(9, 0))

	if !hours.IsZero() || !overtime.IsZero() {
		t.Errorf("expected zeros for reversed times, got %v / %v", hours, overtime)
	}
}

func TestCalculateHours_MissingTime(t *testing.T) {
	// A lone check-out must not read as a midnight check-in.
	hours, overtime := payroll.CalculateHours(payroll.ClockTime(0), payroll.NewClockTime(18, 0))
	if !hours.IsZero() || !overtime.IsZero() {
		t.Errorf("expected zeros for missing check-in, got %v / %v", hours, overtime)
	}

	hours, overtime = payroll.CalculateHours(payroll.NewClockTime(9, 0), payroll.ClockTime(0))
	if !hours.IsZero() || !overtime.IsZero() {
		t.Errorf("expected zeros for missing check-out, got %v / %v", hours, overtime)
	}
}

// =============================================================================
// DAY COUNTS
// =============================================================================

func TestAggregator_FullAttendance_NoAbsence(t *testing.T) {
	// GIVEN: An employee present every non-Friday of March 2025
	p := march2025()
	agg := payroll.NewAggregator(everyWorkday("emp-1", p))

	s, err := agg.Summarize("emp-1", p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// March 2025: 31 days, 4 Fridays -> 27 working days
	if s.AttendanceDays != 27 {
		t.Errorf("expected 27 attendance days, got %d", s.AttendanceDays)
	}
	if s.AbsentDays != 0 {
		t.Errorf("expected 0 absent days, got %d", s.AbsentDays)
	}
	if s.HolidayAttendanceDays != 0 {
		t.Errorf("expected 0 holiday attendance days, got %d", s.HolidayAttendanceDays)
	}
}

func TestAggregator_MissedDays_CountAsAbsence(t *testing.T) {
	// GIVEN: Full attendance minus the first two workdays
	p := march2025()
	records := everyWorkday("emp-1", p)[2:]
	agg := payroll.NewAggregator(records)

	s, err := agg.Summarize("emp-1", p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.AbsentDays != 2 {
		t.Errorf("expected 2 absent days, got %d", s.AbsentDays)
	}
}

func TestAggregator_FridayAttendance_IsBonusNotRegular(t *testing.T) {
	// GIVEN: Full attendance plus one Friday worked
	p := march2025()
	records := everyWorkday("emp-1", p)
	friday := payroll.NewDate(2025, time.March, 7)
	records = append(records, presentDay("emp-1", friday))

	agg := payroll.NewAggregator(records)
	s, err := agg.Summarize("emp-1", p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The Friday counts in both totals, and never reduces absence below zero.
	if s.AttendanceDays != 28 {
		t.Errorf("expected 28 attendance days, got %d", s.AttendanceDays)
	}
	if s.HolidayAttendanceDays != 1 {
		t.Errorf("expected 1 holiday attendance day, got %d", s.HolidayAttendanceDays)
	}
	if s.AbsentDays != 0 {
		t.Errorf("expected 0 absent days, got %d", s.AbsentDays)
	}
}

func TestAggregator_OnlyFridayWorked_FullAbsence(t *testing.T) {
	// GIVEN: The only record in the period is a Friday
	p := march2025()
	agg := payroll.NewAggregator([]payroll.AttendanceRecord{
		presentDay("emp-1", payroll.NewDate(2025, time.March, 14)),
	})

	s, err := agg.Summarize("emp-1", p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Friday attendance does not offset regular absence.
	if s.AbsentDays != 27 {
		t.Errorf("expected 27 absent days, got %d", s.AbsentDays)
	}
}

func TestAggregator_IgnoresOtherEmployees(t *testing.T) {
	p := march2025()
	agg := payroll.NewAggregator(everyWorkday("emp-2", p))

	if got := agg.AttendanceDays("emp-1", p); got != 0 {
		t.Errorf("expected 0 days for emp-1, got %d", got)
	}
}

// =============================================================================
// HOUR TOTALS
// =============================================================================

func TestAggregator_SumsHoursOverPresentRecordsOnly(t *testing.T) {
	p := march2025()
	records := []payroll.AttendanceRecord{
		{
			ID: "a1", EmployeeID: "emp-1", Date: payroll.NewDate(2025, time.March, 3),
			OvertimeHours: dec("1.5"), LateHours: dec("0.25"), Present: true,
		},
		{
			ID: "a2", EmployeeID: "emp-1", Date: payroll.NewDate(2025, time.March, 4),
			OvertimeHours: dec("0.5"), EarlyLeaveHours: dec("1"), Present: true,
		},
		{
			// Absent record: its hours must not count.
			ID: "a3", EmployeeID: "emp-1", Date: payroll.NewDate(2025, time.March, 5),
			OvertimeHours: dec("99"), Present: false,
		},
	}
	agg := payroll.NewAggregator(records)

	if got := agg.OvertimeHours("emp-1", p); !got.Equal(dec("2")) {
		t.Errorf("expected 2 overtime hours, got %v", got)
	}
	// 0.25 rounds to 0.3 at one decimal (half up).
	if got := agg.LateHours("emp-1", p); !got.Equal(dec("0.3")) {
		t.Errorf("expected 0.3 late hours, got %v", got)
	}
	if got := agg.EarlyLeaveHours("emp-1", p); !got.Equal(dec("1")) {
		t.Errorf("expected 1 early-leave hour, got %v", got)
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestSummarize_ReversedPeriod_Rejected(t *testing.T) {
	agg := payroll.NewAggregator(nil)
	p := payroll.Period{
		Start: payroll.NewDate(2025, time.March, 31),
		End:   payroll.NewDate(2025, time.March, 1),
	}

	_, err := agg.Summarize("emp-1", p)
	if !errors.Is(err, payroll.ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange, got %v", err)
	}
	if !payroll.IsClientError(err) {
		t.Error("invalid range should classify as a client error")
	}
}
