/*
Package payroll provides the payroll computation engine.

PURPOSE:
  This package contains the core types and pure algorithms that turn raw
  attendance records and loan-due amounts into a computed net-pay figure
  for a pay period: calendar math, attendance aggregation, the payslip
  calculator, and the tagged deduction ledger entries.

KEY CONCEPTS IN THIS FILE (types.go):
  - Employee: read-only input, owned by the HR module
  - AttendanceRecord: one record per employee per day, with derived hours
  - ClockTime: a wall-clock "HH:MM" check-in/check-out time
  - Payslip: the computed output, owning its ordered Deduction list

DESIGN PRINCIPLES:
  1. Purity: computation functions have no side effects and are idempotent
  2. Precision: decimal.Decimal everywhere, rounded at formula boundaries
  3. Explicitness: the caller owns when to re-run a computation; nothing
     recomputes reactively behind the scenes

SEE ALSO:
  - calendar.go: Date/Period arithmetic
  - attendance.go: Attendance aggregation
  - calculator.go: Net-pay formula
  - deduction.go: Tagged deduction variants
*/
package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// EMPLOYEE - Read-only input owned by the HR module
// =============================================================================

type Employee struct {
	ID         string
	Name       string
	BaseSalary decimal.Decimal // monthly
	Allowance  decimal.Decimal // fixed monthly
}

// =============================================================================
// CLOCK TIME - Wall-clock "HH:MM"
// =============================================================================

// ClockTime is minutes since midnight. The zero value means "not recorded".
type ClockTime int

// ParseClockTime parses "HH:MM" (24-hour).
func ParseClockTime(s string) (ClockTime, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid clock time %q: out of range", s)
	}
	return ClockTime(h*60 + m), nil
}

func NewClockTime(hour, minute int) ClockTime { return ClockTime(hour*60 + minute) }

func (c ClockTime) Hour() int      { return int(c) / 60 }
func (c ClockTime) Minute() int    { return int(c) % 60 }
func (c ClockTime) IsZero() bool   { return c == 0 }
func (c ClockTime) String() string { return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute()) }

// =============================================================================
// ATTENDANCE RECORD
// =============================================================================

// AttendanceRecord is one employee-day. At most one record may exist per
// (EmployeeID, Date); the stores enforce this.
//
// HoursWorked and OvertimeHours are derived from CheckIn/CheckOut via
// CalculateHours whenever the times change. LateHours and EarlyLeaveHours
// are optional per-record figures.
type AttendanceRecord struct {
	ID              string
	EmployeeID      string
	Date            Date
	CheckIn         ClockTime
	CheckOut        ClockTime
	HoursWorked     decimal.Decimal
	OvertimeHours   decimal.Decimal
	LateHours       decimal.Decimal
	EarlyLeaveHours decimal.Decimal
	Present         bool
}

// =============================================================================
// PAYSLIP - Computed output, owns its deduction ledger
// =============================================================================

// Payslip is created when a user finalizes a draft. It exclusively owns its
// Deductions list; loan-sourced entries hold a non-owning back-reference
// (loan ID + schedule index) into a loan's schedule, used only for lookup.
type Payslip struct {
	ID          string
	EmployeeID  string
	PeriodStart Date
	PeriodEnd   Date

	BasicSalary     decimal.Decimal
	Allowances      decimal.Decimal
	OvertimeHours   decimal.Decimal
	OvertimeRate    decimal.Decimal
	LateHours       decimal.Decimal
	EarlyLeaveHours decimal.Decimal
	Penalties       decimal.Decimal
	Rewards         decimal.Decimal
	Insurance       decimal.Decimal

	Deductions []Deduction
	NetPay     decimal.Decimal
}

// Period returns the inclusive pay period this payslip covers.
func (p Payslip) Period() Period { return Period{Start: p.PeriodStart, End: p.PeriodEnd} }

// LoanDeductions returns the subset of the ledger that references loans,
// in stored order. This is what the loan sync rolls back on edit/delete.
func (p Payslip) LoanDeductions() []Deduction {
	var out []Deduction
	for _, d := range p.Deductions {
		if d.Source() == SourceLoan {
			out = append(out, d)
		}
	}
	return out
}
