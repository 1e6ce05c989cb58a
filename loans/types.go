/*
Package loans provides salary-advance tracking: the installment
amortization scheduler and the deduction ledger that keeps loan repayment
state consistent with payslip lifecycle events.

KEY CONCEPTS IN THIS FILE (types.go):
  - Loan: principal, remaining balance, and an ordered installment schedule
  - ScheduleEntry: one due-date/amount/paid entry amortizing the principal
  - DueInstallment: an installment (real or synthesized) due in a period
  - LoanStore: the persistence contract this package reads and writes

REPAYMENT MODES:
  installments  schedule generated at issuance; dues come from the schedule
  manual        no schedule; payments are posted by hand, never synthesized

A KNOWN SOFT INVARIANT:
  The sum of unpaid schedule amounts should track Remaining, but manual
  balance edits and off-boundary payments can desynchronize them. The
  drift is preserved for compatibility and surfaced via ScheduleDrift.

SEE ALSO:
  - scheduler.go: Schedule generation, due lookup, payment posting
  - sync.go: Payslip-driven apply/rollback of deductions
*/
package loans

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// LOAN
// =============================================================================

type RepaymentMode string

const (
	ModeInstallments RepaymentMode = "installments"
	ModeManual       RepaymentMode = "manual"
)

// ScheduleEntry is one installment of a loan's amortization schedule.
type ScheduleEntry struct {
	DueDate payroll.Date
	Amount  decimal.Decimal
	Paid    bool
}

// Loan is a salary advance. Created at issuance with a generated schedule
// (installments mode) or none (manual mode); mutated by payment postings
// and payslip-driven deductions; never auto-deleted.
type Loan struct {
	ID                string
	EmployeeID        string
	Principal         decimal.Decimal
	IssueDate         payroll.Date
	Mode              RepaymentMode
	InstallmentCount  int
	InstallmentAmount decimal.Decimal
	Remaining         decimal.Decimal
	Schedule          []ScheduleEntry
}

// UnpaidScheduleSum returns the sum of unpaid schedule entry amounts.
func (l Loan) UnpaidScheduleSum() decimal.Decimal {
	total := decimal.Zero
	for _, e := range l.Schedule {
		if !e.Paid {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// ScheduleDrift returns unpaid-schedule-sum minus Remaining. Zero means
// the soft invariant holds; anything else is the documented inconsistency
// callers may want to log or reconcile.
func (l Loan) ScheduleDrift() decimal.Decimal {
	if len(l.Schedule) == 0 {
		return decimal.Zero
	}
	return l.UnpaidScheduleSum().Sub(l.Remaining)
}

// =============================================================================
// DUE INSTALLMENT - Output of the due lookup
// =============================================================================

// DueInstallment is an installment due within a pay period. NoSchedule
// marks a synthesized due for an installments-mode loan that has no
// persisted schedule.
type DueInstallment struct {
	LoanID        string
	ScheduleIndex int
	Amount        decimal.Decimal
	NoSchedule    bool
}

// Deduction converts the due item to the payslip ledger variant that
// references it.
func (d DueInstallment) Deduction() payroll.Deduction {
	if d.NoSchedule {
		return payroll.LoanManualDeduction{LoanID: d.LoanID, Value: d.Amount}
	}
	return payroll.LoanScheduleDeduction{
		LoanID:        d.LoanID,
		ScheduleIndex: d.ScheduleIndex,
		Value:         d.Amount,
	}
}

// Deductions converts a due list in order.
func Deductions(dues []DueInstallment) []payroll.Deduction {
	var out []payroll.Deduction
	for _, d := range dues {
		out = append(out, d.Deduction())
	}
	return out
}

// =============================================================================
// LOAN STORE
// =============================================================================

// LoanStore is the persistence contract. The engine both reads (due
// lookup) and writes (deduction sync, payment posting) loans.
type LoanStore interface {
	ListLoans(ctx context.Context) ([]Loan, error)
	// GetLoan returns nil (no error) when the loan does not exist.
	GetLoan(ctx context.Context, id string) (*Loan, error)
	SaveLoan(ctx context.Context, l Loan) error
	UpdateLoan(ctx context.Context, l Loan) error
}
