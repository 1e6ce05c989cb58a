/*
sync.go - Deduction ledger: payslip-driven loan state sync

PURPOSE:
  Keeps loan schedule/remaining state consistent with a payslip's
  lifecycle. When a payslip is saved its loan-sourced deductions are
  applied to the referenced loans; when it is edited or deleted they are
  rolled back first. Apply and Rollback are exact inverses.

TWO-PHASE EDIT:
  Reconcile(ctx, old, new) rolls back every loan deduction of the previous
  payslip version, then applies the deductions of the new version. Delete
  is Reconcile(ctx, old, nil). The steps are issued synchronously in
  sequence; the stores provide no transaction spanning them, so this is as
  atomic as the system gets.

FAILURE MODE:
  A deduction can reference a loan that no longer exists (deleted out from
  under the payslip). The sync logs a warning and no-ops - a recoverable
  inconsistency for the caller to reconcile, not a fatal error.

SEE ALSO:
  - types.go: LoanStore contract
  - payroll/deduction.go: The tagged variants handled here
*/
package loans

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// DEDUCTION LEDGER
// =============================================================================

// DeductionLedger applies and reverses the effect of payslip deductions
// on loan state.
type DeductionLedger struct {
	loans LoanStore
	log   *slog.Logger
}

func NewDeductionLedger(store LoanStore, logger *slog.Logger) *DeductionLedger {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeductionLedger{loans: store, log: logger}
}

// Apply posts one deduction to its referenced loan. Non-loan sources are
// ignored. Schedule-based deductions mark their entry paid; noSchedule
// deductions only reduce the remaining balance, clamped at zero.
func (dl *DeductionLedger) Apply(ctx context.Context, d payroll.Deduction) error {
	switch ded := d.(type) {
	case payroll.LoanScheduleDeduction:
		return dl.mutate(ctx, ded.LoanID, func(loan *Loan) {
			if ded.ScheduleIndex >= 0 && ded.ScheduleIndex < len(loan.Schedule) {
				loan.Schedule[ded.ScheduleIndex].Paid = true
			} else {
				dl.log.Warn("loan deduction references missing schedule entry",
					"loan_id", ded.LoanID, "schedule_index", ded.ScheduleIndex)
			}
			loan.Remaining = payroll.ClampZero(loan.Remaining.Sub(ded.Value))
		})
	case payroll.LoanManualDeduction:
		return dl.mutate(ctx, ded.LoanID, func(loan *Loan) {
			loan.Remaining = payroll.ClampZero(loan.Remaining.Sub(ded.Value))
		})
	default:
		return nil
	}
}

// Rollback reverses one previously applied deduction: the amount is added
// back to the remaining balance and, for schedule-based deductions, the
// entry is marked unpaid again.
func (dl *DeductionLedger) Rollback(ctx context.Context, d payroll.Deduction) error {
	switch ded := d.(type) {
	case payroll.LoanScheduleDeduction:
		return dl.mutate(ctx, ded.LoanID, func(loan *Loan) {
			if ded.ScheduleIndex >= 0 && ded.ScheduleIndex < len(loan.Schedule) {
				loan.Schedule[ded.ScheduleIndex].Paid = false
			} else {
				dl.log.Warn("loan rollback references missing schedule entry",
					"loan_id", ded.LoanID, "schedule_index", ded.ScheduleIndex)
			}
			loan.Remaining = loan.Remaining.Add(ded.Value)
		})
	case payroll.LoanManualDeduction:
		return dl.mutate(ctx, ded.LoanID, func(loan *Loan) {
			loan.Remaining = loan.Remaining.Add(ded.Value)
		})
	default:
		return nil
	}
}

// ApplyAll applies every loan-sourced deduction in ledger order.
func (dl *DeductionLedger) ApplyAll(ctx context.Context, deductions []payroll.Deduction) error {
	for _, d := range deductions {
		if err := dl.Apply(ctx, d); err != nil {
			return fmt.Errorf("apply loan deduction: %w", err)
		}
	}
	return nil
}

// RollbackAll reverses every loan-sourced deduction in ledger order.
func (dl *DeductionLedger) RollbackAll(ctx context.Context, deductions []payroll.Deduction) error {
	for _, d := range deductions {
		if err := dl.Rollback(ctx, d); err != nil {
			return fmt.Errorf("rollback loan deduction: %w", err)
		}
	}
	return nil
}

// Reconcile transitions loan state from one payslip version to the next:
// every loan deduction of the old version is rolled back, then every loan
// deduction of the new version is applied. Pass nil for newDeductions
// when the payslip is being deleted. Once started the sequence runs to
// completion; there is no cancellation point between the phases.
func (dl *DeductionLedger) Reconcile(ctx context.Context, oldDeductions, newDeductions []payroll.Deduction) error {
	if err := dl.RollbackAll(ctx, oldDeductions); err != nil {
		return err
	}
	return dl.ApplyAll(ctx, newDeductions)
}

// mutate loads, mutates, and updates one loan. A missing loan is the
// documented recoverable no-op.
func (dl *DeductionLedger) mutate(ctx context.Context, loanID string, fn func(*Loan)) error {
	loan, err := dl.loans.GetLoan(ctx, loanID)
	if err != nil {
		return fmt.Errorf("load loan %s: %w", loanID, err)
	}
	if loan == nil {
		dl.log.Warn("loan sync skipped: referenced loan no longer exists", "loan_id", loanID)
		return nil
	}
	fn(loan)
	if err := dl.loans.UpdateLoan(ctx, *loan); err != nil {
		return fmt.Errorf("update loan %s: %w", loanID, err)
	}
	return nil
}
