/*
Package sqlite provides the SQLite-backed implementation of every store
contract in the system.

PURPOSE:
  One place for all persistence: employees, attendance, loans (with their
  installment schedules), payslips (with their deduction ledgers), and
  the purchasing entities. The same patterns apply to PostgreSQL - only
  minor SQL dialect differences.

INTERFACES IMPLEMENTED:
  payroll.EmployeeStore, payroll.AttendanceStore, payroll.PayslipStore,
  loans.LoanStore, purchasing.Store

REPRESENTATION:
  Dates:       ISO "YYYY-MM-DD" TEXT
  Clock times: "HH:MM" TEXT (empty = not recorded)
  Money/hours: decimal strings, already rounded at the formula boundaries

CHILD ROWS:
  Loan schedules and payslip deductions are ordered child tables keyed by
  (parent_id, idx). Writes replace the whole child set inside one SQL
  transaction so parent and children never diverge.

CONCURRENCY:
  sync.RWMutex on top of WAL mode, same as the rest of the system assumes:
  one writer, synchronous sequences.

USAGE:
  store, err := sqlite.New("./data/payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - payroll/store.go: Interface definitions
  - payroll/store/memory.go: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/payroll-engine/loans"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/purchasing"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		base_salary TEXT NOT NULL,
		allowance TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS attendance (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		date TEXT NOT NULL,
		check_in TEXT,
		check_out TEXT,
		hours_worked TEXT NOT NULL,
		overtime_hours TEXT NOT NULL,
		late_hours TEXT NOT NULL,
		early_leave_hours TEXT NOT NULL,
		present BOOLEAN NOT NULL DEFAULT TRUE
	);

	-- CRITICAL: at most one attendance record per employee per day.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_attendance_employee_day
		ON attendance(employee_id, date);
	CREATE INDEX IF NOT EXISTS idx_attendance_date
		ON attendance(date);

	CREATE TABLE IF NOT EXISTS loans (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		principal TEXT NOT NULL,
		issue_date TEXT NOT NULL,
		mode TEXT NOT NULL,
		installment_count INTEGER NOT NULL DEFAULT 0,
		installment_amount TEXT NOT NULL,
		remaining TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_loans_employee
		ON loans(employee_id);

	CREATE TABLE IF NOT EXISTS loan_schedule (
		loan_id TEXT NOT NULL,
		idx INTEGER NOT NULL,
		due_date TEXT NOT NULL,
		amount TEXT NOT NULL,
		paid BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (loan_id, idx)
	);

	CREATE INDEX IF NOT EXISTS idx_loan_schedule_due
		ON loan_schedule(due_date) WHERE paid = FALSE;

	CREATE TABLE IF NOT EXISTS payslips (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		basic_salary TEXT NOT NULL,
		allowances TEXT NOT NULL,
		overtime_hours TEXT NOT NULL,
		overtime_rate TEXT NOT NULL,
		late_hours TEXT NOT NULL,
		early_leave_hours TEXT NOT NULL,
		penalties TEXT NOT NULL,
		rewards TEXT NOT NULL,
		insurance TEXT NOT NULL,
		net_pay TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_payslips_employee
		ON payslips(employee_id, period_start);

	CREATE TABLE IF NOT EXISTS payslip_deductions (
		payslip_id TEXT NOT NULL,
		idx INTEGER NOT NULL,
		source TEXT NOT NULL,
		amount TEXT NOT NULL,
		label TEXT NOT NULL DEFAULT '',
		days INTEGER NOT NULL DEFAULT 0,
		loan_id TEXT NOT NULL DEFAULT '',
		schedule_index INTEGER NOT NULL DEFAULT 0,
		no_schedule BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (payslip_id, idx)
	);

	CREATE INDEX IF NOT EXISTS idx_deductions_loan
		ON payslip_deductions(loan_id) WHERE loan_id != '';

	CREATE TABLE IF NOT EXISTS suppliers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		supplier_id TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL,
		unit TEXT NOT NULL DEFAULT '',
		unit_price TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS purchase_orders (
		id TEXT PRIMARY KEY,
		supplier_id TEXT NOT NULL,
		date TEXT NOT NULL,
		total TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS purchase_order_lines (
		order_id TEXT NOT NULL,
		idx INTEGER NOT NULL,
		product_id TEXT NOT NULL,
		quantity TEXT NOT NULL,
		unit_price TEXT NOT NULL,
		PRIMARY KEY (order_id, idx)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EMPLOYEES (payroll.EmployeeStore)
// =============================================================================

func (s *Store) ListEmployees(ctx context.Context) ([]payroll.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, base_salary, allowance FROM employees ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var out []payroll.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) GetEmployee(ctx context.Context, id string) (*payroll.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, base_salary, allowance FROM employees WHERE id = ?`, id)
	e, err := scanEmployee(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) SaveEmployee(ctx context.Context, e payroll.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, name, base_salary, allowance)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			base_salary = excluded.base_salary,
			allowance = excluded.allowance`,
		e.ID, e.Name, e.BaseSalary.String(), e.Allowance.String())
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM employees WHERE id = ?`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(r rowScanner) (payroll.Employee, error) {
	var e payroll.Employee
	var salary, allowance string
	if err := r.Scan(&e.ID, &e.Name, &salary, &allowance); err != nil {
		return payroll.Employee{}, err
	}
	e.BaseSalary = payroll.MustParseDecimal(salary)
	e.Allowance = payroll.MustParseDecimal(allowance)
	return e, nil
}

// =============================================================================
// ATTENDANCE (payroll.AttendanceStore)
// =============================================================================

const attendanceColumns = `id, employee_id, date, check_in, check_out,
	hours_worked, overtime_hours, late_hours, early_leave_hours, present`

func (s *Store) ListAttendance(ctx context.Context) ([]payroll.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryAttendance(ctx,
		`SELECT `+attendanceColumns+` FROM attendance ORDER BY date, employee_id`)
}

func (s *Store) ListEmployeeAttendance(ctx context.Context, employeeID string, p payroll.Period) ([]payroll.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryAttendance(ctx,
		`SELECT `+attendanceColumns+` FROM attendance
		 WHERE employee_id = ? AND date >= ? AND date <= ?
		 ORDER BY date`,
		employeeID, p.Start.String(), p.End.String())
}

func (s *Store) GetAttendanceDay(ctx context.Context, employeeID string, day payroll.Date) (*payroll.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.queryAttendance(ctx,
		`SELECT `+attendanceColumns+` FROM attendance WHERE employee_id = ? AND date = ?`,
		employeeID, day.String())
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

func (s *Store) SaveAttendance(ctx context.Context, rec payroll.AttendanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// One record per employee-day; updating the same record is fine.
	var existingID string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM attendance WHERE employee_id = ? AND date = ? AND id != ?`,
		rec.EmployeeID, rec.Date.String(), rec.ID).Scan(&existingID)
	if err == nil {
		return &payroll.DuplicateDayError{
			EmployeeID: rec.EmployeeID,
			Date:       rec.Date,
			ExistingID: existingID,
		}
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("failed to check attendance day: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO attendance
		(id, employee_id, date, check_in, check_out, hours_worked,
		 overtime_hours, late_hours, early_leave_hours, present)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			check_in = excluded.check_in,
			check_out = excluded.check_out,
			hours_worked = excluded.hours_worked,
			overtime_hours = excluded.overtime_hours,
			late_hours = excluded.late_hours,
			early_leave_hours = excluded.early_leave_hours,
			present = excluded.present`,
		rec.ID, rec.EmployeeID, rec.Date.String(),
		clockString(rec.CheckIn), clockString(rec.CheckOut),
		rec.HoursWorked.String(), rec.OvertimeHours.String(),
		rec.LateHours.String(), rec.EarlyLeaveHours.String(), rec.Present)
	if err != nil {
		return fmt.Errorf("failed to save attendance: %w", err)
	}
	return nil
}

func (s *Store) DeleteAttendance(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM attendance WHERE id = ?`, id)
	return err
}

func (s *Store) queryAttendance(ctx context.Context, query string, args ...any) ([]payroll.AttendanceRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	var out []payroll.AttendanceRecord
	for rows.Next() {
		var rec payroll.AttendanceRecord
		var date, checkIn, checkOut string
		var hours, overtime, late, early string
		if err := rows.Scan(&rec.ID, &rec.EmployeeID, &date, &checkIn, &checkOut,
			&hours, &overtime, &late, &early, &rec.Present); err != nil {
			return nil, err
		}
		if rec.Date, err = payroll.ParseDate(date); err != nil {
			return nil, err
		}
		rec.CheckIn = parseClock(checkIn)
		rec.CheckOut = parseClock(checkOut)
		rec.HoursWorked = payroll.MustParseDecimal(hours)
		rec.OvertimeHours = payroll.MustParseDecimal(overtime)
		rec.LateHours = payroll.MustParseDecimal(late)
		rec.EarlyLeaveHours = payroll.MustParseDecimal(early)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func clockString(c payroll.ClockTime) string {
	if c.IsZero() {
		return ""
	}
	return c.String()
}

func parseClock(s string) payroll.ClockTime {
	if s == "" {
		return 0
	}
	c, err := payroll.ParseClockTime(s)
	if err != nil {
		return 0
	}
	return c
}

// =============================================================================
// LOANS (loans.LoanStore)
// =============================================================================

func (s *Store) ListLoans(ctx context.Context) ([]loans.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, principal, issue_date, mode,
		       installment_count, installment_amount, remaining
		FROM loans ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()

	var out []loans.Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, loan)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if out[i].Schedule, err = s.loadSchedule(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) GetLoan(ctx context.Context, id string) (*loans.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, employee_id, principal, issue_date, mode,
		       installment_count, installment_amount, remaining
		FROM loans WHERE id = ?`, id)
	loan, err := scanLoan(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if loan.Schedule, err = s.loadSchedule(ctx, loan.ID); err != nil {
		return nil, err
	}
	return &loan, nil
}

func (s *Store) SaveLoan(ctx context.Context, l loans.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLoan(ctx, l)
}

func (s *Store) UpdateLoan(ctx context.Context, l loans.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLoan(ctx, l)
}

func (s *Store) DeleteLoan(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM loan_schedule WHERE loan_id = ?`, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM loans WHERE id = ?`, id)
		return err
	})
}

// writeLoan replaces the loan row and its whole schedule in one SQL
// transaction.
func (s *Store) writeLoan(ctx context.Context, l loans.Loan) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO loans
			(id, employee_id, principal, issue_date, mode,
			 installment_count, installment_amount, remaining)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				employee_id = excluded.employee_id,
				principal = excluded.principal,
				issue_date = excluded.issue_date,
				mode = excluded.mode,
				installment_count = excluded.installment_count,
				installment_amount = excluded.installment_amount,
				remaining = excluded.remaining`,
			l.ID, l.EmployeeID, l.Principal.String(), l.IssueDate.String(),
			string(l.Mode), l.InstallmentCount, l.InstallmentAmount.String(),
			l.Remaining.String())
		if err != nil {
			return fmt.Errorf("failed to save loan: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM loan_schedule WHERE loan_id = ?`, l.ID); err != nil {
			return err
		}
		for i, e := range l.Schedule {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO loan_schedule (loan_id, idx, due_date, amount, paid)
				VALUES (?, ?, ?, ?, ?)`,
				l.ID, i, e.DueDate.String(), e.Amount.String(), e.Paid)
			if err != nil {
				return fmt.Errorf("failed to save schedule entry: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) loadSchedule(ctx context.Context, loanID string) ([]loans.ScheduleEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT due_date, amount, paid FROM loan_schedule WHERE loan_id = ? ORDER BY idx`, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}
	defer rows.Close()

	var schedule []loans.ScheduleEntry
	for rows.Next() {
		var e loans.ScheduleEntry
		var due, amount string
		if err := rows.Scan(&due, &amount, &e.Paid); err != nil {
			return nil, err
		}
		if e.DueDate, err = payroll.ParseDate(due); err != nil {
			return nil, err
		}
		e.Amount = payroll.MustParseDecimal(amount)
		schedule = append(schedule, e)
	}
	return schedule, rows.Err()
}

func scanLoan(r rowScanner) (loans.Loan, error) {
	var l loans.Loan
	var principal, issue, mode, installment, remaining string
	if err := r.Scan(&l.ID, &l.EmployeeID, &principal, &issue, &mode,
		&l.InstallmentCount, &installment, &remaining); err != nil {
		return loans.Loan{}, err
	}
	var err error
	if l.IssueDate, err = payroll.ParseDate(issue); err != nil {
		return loans.Loan{}, err
	}
	l.Principal = payroll.MustParseDecimal(principal)
	l.Mode = loans.RepaymentMode(mode)
	l.InstallmentAmount = payroll.MustParseDecimal(installment)
	l.Remaining = payroll.MustParseDecimal(remaining)
	return l, nil
}

// =============================================================================
// PAYSLIPS (payroll.PayslipStore)
// =============================================================================

const payslipColumns = `id, employee_id, period_start, period_end, basic_salary,
	allowances, overtime_hours, overtime_rate, late_hours, early_leave_hours,
	penalties, rewards, insurance, net_pay`

func (s *Store) ListPayslips(ctx context.Context) ([]payroll.Payslip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+payslipColumns+` FROM payslips ORDER BY period_start, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslips: %w", err)
	}
	defer rows.Close()

	var out []payroll.Payslip
	for rows.Next() {
		p, err := scanPayslip(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if out[i].Deductions, err = s.loadDeductions(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) GetPayslip(ctx context.Context, id string) (*payroll.Payslip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+payslipColumns+` FROM payslips WHERE id = ?`, id)
	p, err := scanPayslip(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if p.Deductions, err = s.loadDeductions(ctx, p.ID); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) SavePayslip(ctx context.Context, p payroll.Payslip) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writePayslip(ctx, p)
}

func (s *Store) UpdatePayslip(ctx context.Context, p payroll.Payslip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM payslips WHERE id = ?`, p.ID).Scan(&exists)
	if err == sql.ErrNoRows {
		return payroll.ErrPayslipNotFound
	}
	if err != nil {
		return err
	}
	return s.writePayslip(ctx, p)
}

func (s *Store) DeletePayslip(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM payslip_deductions WHERE payslip_id = ?`, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM payslips WHERE id = ?`, id)
		return err
	})
}

func (s *Store) writePayslip(ctx context.Context, p payroll.Payslip) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO payslips
			(id, employee_id, period_start, period_end, basic_salary, allowances,
			 overtime_hours, overtime_rate, late_hours, early_leave_hours,
			 penalties, rewards, insurance, net_pay)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				employee_id = excluded.employee_id,
				period_start = excluded.period_start,
				period_end = excluded.period_end,
				basic_salary = excluded.basic_salary,
				allowances = excluded.allowances,
				overtime_hours = excluded.overtime_hours,
				overtime_rate = excluded.overtime_rate,
				late_hours = excluded.late_hours,
				early_leave_hours = excluded.early_leave_hours,
				penalties = excluded.penalties,
				rewards = excluded.rewards,
				insurance = excluded.insurance,
				net_pay = excluded.net_pay`,
			p.ID, p.EmployeeID, p.PeriodStart.String(), p.PeriodEnd.String(),
			p.BasicSalary.String(), p.Allowances.String(),
			p.OvertimeHours.String(), p.OvertimeRate.String(),
			p.LateHours.String(), p.EarlyLeaveHours.String(),
			p.Penalties.String(), p.Rewards.String(), p.Insurance.String(),
			p.NetPay.String())
		if err != nil {
			return fmt.Errorf("failed to save payslip: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM payslip_deductions WHERE payslip_id = ?`, p.ID); err != nil {
			return err
		}
		for i, d := range p.Deductions {
			row := flattenDeduction(d)
			_, err := tx.ExecContext(ctx, `
				INSERT INTO payslip_deductions
				(payslip_id, idx, source, amount, label, days, loan_id, schedule_index, no_schedule)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				p.ID, i, row.source, row.amount, row.label, row.days,
				row.loanID, row.scheduleIndex, row.noSchedule)
			if err != nil {
				return fmt.Errorf("failed to save deduction: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) loadDeductions(ctx context.Context, payslipID string) ([]payroll.Deduction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source, amount, label, days, loan_id, schedule_index, no_schedule
		FROM payslip_deductions WHERE payslip_id = ? ORDER BY idx`, payslipID)
	if err != nil {
		return nil, fmt.Errorf("failed to load deductions: %w", err)
	}
	defer rows.Close()

	var out []payroll.Deduction
	for rows.Next() {
		var row deductionRow
		if err := rows.Scan(&row.source, &row.amount, &row.label, &row.days,
			&row.loanID, &row.scheduleIndex, &row.noSchedule); err != nil {
			return nil, err
		}
		out = append(out, row.deduction())
	}
	return out, rows.Err()
}

// deductionRow is the flattened persisted form of a tagged Deduction.
type deductionRow struct {
	source        string
	amount        string
	label         string
	days          int
	loanID        string
	scheduleIndex int
	noSchedule    bool
}

func flattenDeduction(d payroll.Deduction) deductionRow {
	row := deductionRow{
		source: string(d.Source()),
		amount: d.Amount().String(),
	}
	switch ded := d.(type) {
	case payroll.ManualDeduction:
		row.label = ded.Label
	case payroll.AttendanceDeduction:
		row.days = ded.Days
	case payroll.LoanScheduleDeduction:
		row.loanID = ded.LoanID
		row.scheduleIndex = ded.ScheduleIndex
	case payroll.LoanManualDeduction:
		row.loanID = ded.LoanID
		row.noSchedule = true
	case payroll.FridayCreditEntry:
		row.days = ded.Days
	}
	return row
}

func (r deductionRow) deduction() payroll.Deduction {
	amount := payroll.MustParseDecimal(r.amount)
	switch payroll.DeductionSource(r.source) {
	case payroll.SourceAttendance:
		return payroll.AttendanceDeduction{Value: amount, Days: r.days}
	case payroll.SourceLoan:
		if r.noSchedule {
			return payroll.LoanManualDeduction{LoanID: r.loanID, Value: amount}
		}
		return payroll.LoanScheduleDeduction{
			LoanID:        r.loanID,
			ScheduleIndex: r.scheduleIndex,
			Value:         amount,
		}
	case payroll.SourceFridayCredit:
		return payroll.FridayCreditEntry{Value: amount, Days: r.days}
	default:
		return payroll.ManualDeduction{Label: r.label, Value: amount}
	}
}

func scanPayslip(r rowScanner) (payroll.Payslip, error) {
	var p payroll.Payslip
	var start, end string
	var basic, allow, otHours, otRate, late, early, penalties, rewards, insurance, net string
	if err := r.Scan(&p.ID, &p.EmployeeID, &start, &end, &basic, &allow,
		&otHours, &otRate, &late, &early, &penalties, &rewards, &insurance, &net); err != nil {
		return payroll.Payslip{}, err
	}
	var err error
	if p.PeriodStart, err = payroll.ParseDate(start); err != nil {
		return payroll.Payslip{}, err
	}
	if p.PeriodEnd, err = payroll.ParseDate(end); err != nil {
		return payroll.Payslip{}, err
	}
	p.BasicSalary = payroll.MustParseDecimal(basic)
	p.Allowances = payroll.MustParseDecimal(allow)
	p.OvertimeHours = payroll.MustParseDecimal(otHours)
	p.OvertimeRate = payroll.MustParseDecimal(otRate)
	p.LateHours = payroll.MustParseDecimal(late)
	p.EarlyLeaveHours = payroll.MustParseDecimal(early)
	p.Penalties = payroll.MustParseDecimal(penalties)
	p.Rewards = payroll.MustParseDecimal(rewards)
	p.Insurance = payroll.MustParseDecimal(insurance)
	p.NetPay = payroll.MustParseDecimal(net)
	return p, nil
}

// =============================================================================
// PURCHASING (purchasing.Store)
// =============================================================================

func (s *Store) ListSuppliers(ctx context.Context) ([]purchasing.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, phone, address FROM suppliers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}
	defer rows.Close()

	var out []purchasing.Supplier
	for rows.Next() {
		var sup purchasing.Supplier
		if err := rows.Scan(&sup.ID, &sup.Name, &sup.Phone, &sup.Address); err != nil {
			return nil, err
		}
		out = append(out, sup)
	}
	return out, rows.Err()
}

func (s *Store) SaveSupplier(ctx context.Context, sup purchasing.Supplier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO suppliers (id, name, phone, address)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			phone = excluded.phone,
			address = excluded.address`,
		sup.ID, sup.Name, sup.Phone, sup.Address)
	return err
}

func (s *Store) DeleteSupplier(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM suppliers WHERE id = ?`, id)
	return err
}

func (s *Store) ListProducts(ctx context.Context) ([]purchasing.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, supplier_id, name, unit, unit_price FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var out []purchasing.Product
	for rows.Next() {
		var p purchasing.Product
		var price string
		if err := rows.Scan(&p.ID, &p.SupplierID, &p.Name, &p.Unit, &price); err != nil {
			return nil, err
		}
		p.UnitPrice = payroll.MustParseDecimal(price)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) SaveProduct(ctx context.Context, p purchasing.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, supplier_id, name, unit, unit_price)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			supplier_id = excluded.supplier_id,
			name = excluded.name,
			unit = excluded.unit,
			unit_price = excluded.unit_price`,
		p.ID, p.SupplierID, p.Name, p.Unit, p.UnitPrice.String())
	return err
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	return err
}

func (s *Store) ListOrders(ctx context.Context) ([]purchasing.PurchaseOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, supplier_id, date, total FROM purchase_orders ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var out []purchasing.PurchaseOrder
	for rows.Next() {
		var o purchasing.PurchaseOrder
		var date, total string
		if err := rows.Scan(&o.ID, &o.SupplierID, &date, &total); err != nil {
			return nil, err
		}
		if o.Date, err = payroll.ParseDate(date); err != nil {
			return nil, err
		}
		o.Total = payroll.MustParseDecimal(total)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if out[i].Lines, err = s.loadOrderLines(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) SaveOrder(ctx context.Context, o purchasing.PurchaseOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO purchase_orders (id, supplier_id, date, total)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				supplier_id = excluded.supplier_id,
				date = excluded.date,
				total = excluded.total`,
			o.ID, o.SupplierID, o.Date.String(), o.Total.String())
		if err != nil {
			return fmt.Errorf("failed to save order: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM purchase_order_lines WHERE order_id = ?`, o.ID); err != nil {
			return err
		}
		for i, l := range o.Lines {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO purchase_order_lines (order_id, idx, product_id, quantity, unit_price)
				VALUES (?, ?, ?, ?, ?)`,
				o.ID, i, l.ProductID, l.Quantity.String(), l.UnitPrice.String())
			if err != nil {
				return fmt.Errorf("failed to save order line: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) DeleteOrder(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM purchase_order_lines WHERE order_id = ?`, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM purchase_orders WHERE id = ?`, id)
		return err
	})
}

func (s *Store) loadOrderLines(ctx context.Context, orderID string) ([]purchasing.OrderLine, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT product_id, quantity, unit_price FROM purchase_order_lines
		 WHERE order_id = ? ORDER BY idx`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order lines: %w", err)
	}
	defer rows.Close()

	var out []purchasing.OrderLine
	for rows.Next() {
		var l purchasing.OrderLine
		var qty, price string
		if err := rows.Scan(&l.ProductID, &qty, &price); err != nil {
			return nil, err
		}
		l.Quantity = payroll.MustParseDecimal(qty)
		l.UnitPrice = payroll.MustParseDecimal(price)
		out = append(out, l)
	}
	return out, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

// withTx runs fn inside a SQL transaction, rolling back on error.
func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
