/*
errors.go - Centralized error types for the payroll engine

PURPOSE:
  All engine error types in one place. The calculator and aggregator assume
  validated inputs; the errors here cover structurally invalid input (bad
  ranges, missing referenced records), never arithmetic on valid numbers.

USAGE:
  Callers classify with errors.Is or the helpers below to map errors to
  HTTP statuses:

    if payroll.IsClientError(err) { ... 400 ... }
    if payroll.IsNotFound(err)    { ... 404 ... }
*/
package payroll

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidRange is returned when a pay period is empty or reversed.
	// Rates divide by the period's day count, so an invalid range must
	// fail loudly instead of silently computing Inf/NaN.
	ErrInvalidRange = errors.New("invalid period range")

	// ErrEmployeeNotFound is returned when a referenced employee is missing.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrPayslipNotFound is returned when a referenced payslip is missing.
	ErrPayslipNotFound = errors.New("payslip not found")

	// ErrAttendanceNotFound is returned when a referenced record is missing.
	ErrAttendanceNotFound = errors.New("attendance record not found")

	// ErrDuplicateAttendanceDay is returned when saving a second record for
	// the same (employee, date). One record per employee-day, enforced by
	// every store implementation.
	ErrDuplicateAttendanceDay = errors.New("attendance record already exists for day")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidRangeError reports the offending period.
type InvalidRangeError struct {
	Start Date
	End   Date
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid period range: [%s, %s]", e.Start, e.End)
}

func (e *InvalidRangeError) Unwrap() error { return ErrInvalidRange }

// DuplicateDayError reports which employee-day already has a record.
type DuplicateDayError struct {
	EmployeeID string
	Date       Date
	ExistingID string
}

func (e *DuplicateDayError) Error() string {
	return fmt.Sprintf("attendance already recorded: %s on %s (record: %s)",
		e.EmployeeID, e.Date, e.ExistingID)
}

func (e *DuplicateDayError) Unwrap() error { return ErrDuplicateAttendanceDay }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrDuplicateAttendanceDay)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrPayslipNotFound) ||
		errors.Is(err, ErrAttendanceNotFound)
}
