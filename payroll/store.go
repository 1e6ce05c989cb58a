/*
store.go - Persistence contracts for the engine's collaborators

PURPOSE:
  The engine computes; the stores persist. These interfaces are the only
  contracts between the core and its surrounding subsystems. The engine
  reads employees and attendance, reads and writes loans (via the loans
  package), and is invoked around payslip writes to keep loan state in
  sync.

IMPLEMENTATIONS:
  - payroll/store: in-memory, for tests and development
  - store/sqlite: production SQLite

NOTE ON ATOMICITY:
  The stores provide no transactions to callers. A payslip edit (roll back
  old loan deductions, apply new ones, write the payslip) is only atomic
  to the extent the steps are issued synchronously in sequence. The SQLite
  implementation wraps those sequences internally where it can.

SEE ALSO:
  - loans/sync.go: LoanStore consumer
  - api/handlers.go: Orchestrates the store calls around computations
*/
package payroll

import "context"

// =============================================================================
// EMPLOYEE STORE - Read-only from the engine's point of view
// =============================================================================

type EmployeeStore interface {
	ListEmployees(ctx context.Context) ([]Employee, error)
	// GetEmployee returns nil (no error) when the employee does not exist.
	GetEmployee(ctx context.Context, id string) (*Employee, error)
	SaveEmployee(ctx context.Context, e Employee) error
	DeleteEmployee(ctx context.Context, id string) error
}

// =============================================================================
// ATTENDANCE STORE - One record per employee-day
// =============================================================================

type AttendanceStore interface {
	// ListAttendance returns all records, ordered by date.
	ListAttendance(ctx context.Context) ([]AttendanceRecord, error)
	// ListEmployeeAttendance returns one employee's records in a period.
	ListEmployeeAttendance(ctx context.Context, employeeID string, p Period) ([]AttendanceRecord, error)
	// GetAttendanceDay returns nil when no record exists for the day.
	GetAttendanceDay(ctx context.Context, employeeID string, day Date) (*AttendanceRecord, error)
	// SaveAttendance inserts or updates a record. Inserting a second
	// record for an existing (employee, date) fails with
	// ErrDuplicateAttendanceDay.
	SaveAttendance(ctx context.Context, r AttendanceRecord) error
	DeleteAttendance(ctx context.Context, id string) error
}

// =============================================================================
// PAYSLIP STORE - Owned by the payslip-management surface
// =============================================================================

type PayslipStore interface {
	ListPayslips(ctx context.Context) ([]Payslip, error)
	// GetPayslip returns nil (no error) when the payslip does not exist.
	GetPayslip(ctx context.Context, id string) (*Payslip, error)
	SavePayslip(ctx context.Context, p Payslip) error
	UpdatePayslip(ctx context.Context, p Payslip) error
	DeletePayslip(ctx context.Context, id string) error
}
