package payroll_test

import (
	"testing"
	"time"

	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// DATE BASICS
// =============================================================================

func TestParseDate_RoundTrip(t *testing.T) {
	d, err := payroll.ParseDate("2025-03-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.String() != "2025-03-15" {
		t.Errorf("expected 2025-03-15, got %s", d.String())
	}
	if d.Weekday() != time.Saturday {
		t.Errorf("expected Saturday, got %v", d.Weekday())
	}
}

func TestParseDate_Invalid(t *testing.T) {
	if _, err := payroll.ParseDate("15/03/2025"); err == nil {
		t.Error("expected error for non-ISO date")
	}
}

func TestDate_Ordering(t *testing.T) {
	a := payroll.NewDate(2025, time.March, 1)
	b := payroll.NewDate(2025, time.March, 2)

	if !a.Before(b) || b.Before(a) {
		t.Error("expected a < b")
	}
	if !a.BeforeOrEqual(a) || !a.AfterOrEqual(a) {
		t.Error("expected a == a under BeforeOrEqual/AfterOrEqual")
	}
}

func TestDaysInMonth(t *testing.T) {
	cases := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2025, time.January, 31},
		{2025, time.February, 28},
		{2024, time.February, 29}, // leap year
		{2025, time.April, 30},
	}
	for _, c := range cases {
		got := payroll.DaysInMonth(c.year, c.month)
		if got != c.want {
			t.Errorf("DaysInMonth(%d, %v) = %d, want %d", c.year, c.month, got, c.want)
		}
	}
}

// =============================================================================
// PERIODS
// =============================================================================

func TestPeriod_DayCount_Inclusive(t *testing.T) {
	// GIVEN: A full 30-day month
	p := payroll.FullMonth(2025, time.April)

	// THEN: Both endpoints count
	if got := p.DayCount(); got != 30 {
		t.Errorf("expected 30 days, got %d", got)
	}
}

func TestPeriod_Valid(t *testing.T) {
	good := payroll.Period{
		Start: payroll.NewDate(2025, time.March, 1),
		End:   payroll.NewDate(2025, time.March, 31),
	}
	bad := payroll.Period{
		Start: payroll.NewDate(2025, time.March, 31),
		End:   payroll.NewDate(2025, time.March, 1),
	}
	if !good.Valid() {
		t.Error("expected forward period to be valid")
	}
	if bad.Valid() {
		t.Error("expected reversed period to be invalid")
	}
}

func TestPeriod_Contains(t *testing.T) {
	p := payroll.FullMonth(2025, time.March)

	if !p.Contains(payroll.NewDate(2025, time.March, 1)) {
		t.Error("start date should be contained")
	}
	if !p.Contains(payroll.NewDate(2025, time.March, 31)) {
		t.Error("end date should be contained")
	}
	if p.Contains(payroll.NewDate(2025, time.April, 1)) {
		t.Error("day after end should not be contained")
	}
}

// =============================================================================
// WEEKLY HOLIDAYS
// =============================================================================

func TestCountWeeklyHolidays_FullMonth(t *testing.T) {
	// March 2025 has Fridays on 7, 14, 21, 28.
	p := payroll.FullMonth(2025, time.March)
	if got := payroll.CountWeeklyHolidays(p.Start, p.End); got != 4 {
		t.Errorf("expected 4 Fridays in March 2025, got %d", got)
	}

	// August 2025 has five Fridays (1, 8, 15, 22, 29).
	p = payroll.FullMonth(2025, time.August)
	if got := payroll.CountWeeklyHolidays(p.Start, p.End); got != 5 {
		t.Errorf("expected 5 Fridays in August 2025, got %d", got)
	}
}

func TestCountWeeklyHolidays_PartialRange(t *testing.T) {
	// GIVEN: A range that starts on a Friday and ends the day before the next
	start := payroll.NewDate(2025, time.March, 7)
	end := payroll.NewDate(2025, time.March, 13)
	if got := payroll.CountWeeklyHolidays(start, end); got != 1 {
		t.Errorf("expected 1 Friday, got %d", got)
	}
}

func TestEndOfMonth(t *testing.T) {
	if got := payroll.EndOfMonth(2025, time.February); got.String() != "2025-02-28" {
		t.Errorf("expected 2025-02-28, got %s", got)
	}
}

// =============================================================================
// CLOCK TIMES
// =============================================================================

func TestParseClockTime(t *testing.T) {
	c, err := payroll.ParseClockTime("09:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Hour() != 9 || c.Minute() != 30 {
		t.Errorf("expected 09:30, got %d:%d", c.Hour(), c.Minute())
	}
	if c.String() != "09:30" {
		t.Errorf("expected string 09:30, got %s", c.String())
	}
}

func TestParseClockTime_Invalid(t *testing.T) {
	for _, s := range []string{"9h30", "25:00", "09:61", ""} {
		if _, err := payroll.ParseClockTime(s); err == nil {
			t.Errorf("expected error for %q", s)
		}
	}
}
