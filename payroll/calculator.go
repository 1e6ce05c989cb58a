/*
calculator.go - Net-pay computation

PURPOSE:
  Combines employee base pay, attendance-derived adjustments, and loan
  dues into a net-pay figure and an itemized deduction ledger. This is a
  pure function: same inputs, same output, no side effects. The caller
  owns when to re-run it (on employee selection, period change, attendance
  or loan edits) and what to do with the result.

FORMULA (each named sub-total rounded to 2 decimals as it is produced):
  dailyRate      = (basicSalary + allowances) / daysInPeriod
  hourlyRate     = dailyRate / 8
  overtimeRate   = (basicSalary + allowances) / daysInMonth / 8
  overtimePay    = overtimeHours x overtimeRate
  lateDeduction  = lateHours x hourlyRate
  earlyDeduction = earlyLeaveHours x hourlyRate
  fridayBonus    = dailyRate x holidayAttendanceDays
  absenceDeduct  = dailyRate x absentDays
  netPay = basicSalary + allowances + overtimePay + rewards + fridayBonus
           - loanDeduct - absenceDeduct - penalties - insurance
           - lateDeduction - earlyDeduction - manualDeduct

  daysInPeriod is the inclusive day count of the pay period; daysInMonth
  is always the calendar month containing the period start. The asymmetry
  is intentional and preserved from the original formulas.

LEDGER:
  Absence, loan, and manual deductions are materialized as tagged entries
  so the loan sync can later reverse exactly what was applied. The friday
  bonus and overtime pay affect netPay directly and are NOT ledger entries.

SEE ALSO:
  - attendance.go: Produces the Summary input
  - loans/scheduler.go: Produces the loan-due input
  - loans/sync.go: Applies/rolls back the loan-sourced ledger entries
*/
package payroll

import "github.com/shopspring/decimal"

// =============================================================================
// INPUT / OUTPUT
// =============================================================================

// ComputeInput carries everything the calculator needs. All fields are
// assumed validated; LoanDues must contain only loan-sourced variants
// (LoanScheduleDeduction / LoanManualDeduction) in due order.
type ComputeInput struct {
	Employee   Employee
	Period     Period
	Attendance Summary

	LoanDues []Deduction
	Manual   []ManualDeduction

	Penalties decimal.Decimal
	Rewards   decimal.Decimal
	Insurance decimal.Decimal
}

// Result is the computed payslip draft: the rates, each named sub-total,
// the materialized deduction ledger, and the final net pay.
type Result struct {
	DailyRate    decimal.Decimal
	HourlyRate   decimal.Decimal
	OvertimeRate decimal.Decimal

	OvertimePay         decimal.Decimal
	FridayBonus         decimal.Decimal
	LateDeduction       decimal.Decimal
	EarlyLeaveDeduction decimal.Decimal
	AbsenceDeduction    decimal.Decimal
	LoanDeduction       decimal.Decimal
	ManualDeduction     decimal.Decimal

	Deductions []Deduction
	NetPay     decimal.Decimal
}

// =============================================================================
// COMPUTE
// =============================================================================

// Compute runs the net-pay formula. It is idempotent: calling it twice
// with unchanged inputs yields an identical result and ledger.
func Compute(in ComputeInput) (Result, error) {
	if in.Employee.ID == "" {
		return Result{}, ErrEmployeeNotFound
	}
	if !in.Period.Valid() {
		return Result{}, &InvalidRangeError{Start: in.Period.Start, End: in.Period.End}
	}

	gross := in.Employee.BaseSalary.Add(in.Employee.Allowance)
	daysInPeriod := decimal.NewFromInt(int64(in.Period.DayCount()))
	daysInMonth := decimal.NewFromInt(int64(DaysInMonth(in.Period.Start.Year(), in.Period.Start.Month())))

	var r Result
	r.DailyRate = RoundMoney(gross.Div(daysInPeriod))
	r.HourlyRate = RoundMoney(r.DailyRate.Div(EightHours))
	r.OvertimeRate = RoundMoney(gross.Div(daysInMonth).Div(EightHours))

	r.OvertimePay = RoundMoney(ClampZero(in.Attendance.OvertimeHours).Mul(r.OvertimeRate))
	r.LateDeduction = RoundMoney(ClampZero(in.Attendance.LateHours).Mul(r.HourlyRate))
	r.EarlyLeaveDeduction = RoundMoney(ClampZero(in.Attendance.EarlyLeaveHours).Mul(r.HourlyRate))

	holidayDays := decimal.NewFromInt(int64(max(in.Attendance.HolidayAttendanceDays, 0)))
	r.FridayBonus = RoundMoney(r.DailyRate.Mul(holidayDays))

	absentDays := max(in.Attendance.AbsentDays, 0)
	r.AbsenceDeduction = RoundMoney(r.DailyRate.Mul(decimal.NewFromInt(int64(absentDays))))

	// Materialize the ledger: absence first, then loan dues in due order,
	// then manual entries in entry order.
	if absentDays > 0 {
		r.Deductions = append(r.Deductions, AttendanceDeduction{
			Value: r.AbsenceDeduction,
			Days:  absentDays,
		})
	}
	r.Deductions = append(r.Deductions, in.LoanDues...)
	for _, m := range in.Manual {
		r.Deductions = append(r.Deductions, m)
	}

	r.LoanDeduction = RoundMoney(SumDeductions(r.Deductions, SourceLoan))
	r.ManualDeduction = RoundMoney(SumDeductions(r.Deductions, SourceManual))

	r.NetPay = RoundMoney(gross.
		Add(r.OvertimePay).
		Add(ClampZero(in.Rewards)).
		Add(r.FridayBonus).
		Sub(r.LoanDeduction).
		Sub(r.AbsenceDeduction).
		Sub(ClampZero(in.Penalties)).
		Sub(ClampZero(in.Insurance)).
		Sub(r.LateDeduction).
		Sub(r.EarlyLeaveDeduction).
		Sub(r.ManualDeduction))

	return r, nil
}

// BuildPayslip assembles a Payslip entity from a computed result. The ID
// is left for the caller to assign.
func BuildPayslip(in ComputeInput, r Result) Payslip {
	return Payslip{
		EmployeeID:      in.Employee.ID,
		PeriodStart:     in.Period.Start,
		PeriodEnd:       in.Period.End,
		BasicSalary:     in.Employee.BaseSalary,
		Allowances:      in.Employee.Allowance,
		OvertimeHours:   in.Attendance.OvertimeHours,
		OvertimeRate:    r.OvertimeRate,
		LateHours:       in.Attendance.LateHours,
		EarlyLeaveHours: in.Attendance.EarlyLeaveHours,
		Penalties:       in.Penalties,
		Rewards:         in.Rewards,
		Insurance:       in.Insurance,
		Deductions:      r.Deductions,
		NetPay:          r.NetPay,
	}
}
