/*
scheduler.go - Amortization schedule generation and payment posting

PURPOSE:
  Builds installment schedules at loan issuance, finds installments due
  within a pay period, and posts manual payments against the schedule.

SCHEDULE SHAPE:
  count entries, due on the last calendar day of consecutive months
  starting the month AFTER the issue date. Every entry carries the rounded
  installment amount except the last, which absorbs the rounding remainder
  so the schedule sums exactly to the principal.

  principal=1000, count=3, issued 2024-01-15:
    2024-02-29  333.33
    2024-03-31  333.33
    2024-04-30  333.34

PAYMENT POSTING:
  Payments walk the schedule oldest-first, marking entries paid while the
  remaining payment covers them. Remaining balance is reduced by the FULL
  payment regardless of how many entries were marked - a payment that does
  not align to installment boundaries therefore leaves Remaining and the
  unpaid-schedule sum inconsistent. Preserved for compatibility; see
  Loan.ScheduleDrift.

SEE ALSO:
  - types.go: Loan and ScheduleEntry
  - sync.go: Payslip-driven deduction application
*/
package loans

import (
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// SCHEDULE GENERATION
// =============================================================================

// InstallmentAmount returns round(principal / count, 2). Zero for a
// non-positive count.
func InstallmentAmount(principal decimal.Decimal, count int) decimal.Decimal {
	if count <= 0 {
		return decimal.Zero
	}
	return payroll.RoundMoney(principal.Div(decimal.NewFromInt(int64(count))))
}

// GenerateSchedule builds the installment schedule for a loan issued on
// issueDate. All entries start unpaid.
func GenerateSchedule(principal decimal.Decimal, count int, issueDate payroll.Date) []ScheduleEntry {
	if count <= 0 {
		return nil
	}

	installment := InstallmentAmount(principal, count)
	schedule := make([]ScheduleEntry, 0, count)
	// Step months from the first of the issue month: AddMonths on a late
	// day-of-month would normalize past short months (Jan 31 + 1 month is
	// Mar 2) and skip or collide due dates.
	issueMonth := payroll.StartOfMonth(issueDate.Year(), issueDate.Month())
	for i := 0; i < count; i++ {
		due := issueMonth.AddMonths(i + 1)
		amount := installment
		if i == count-1 {
			// Last entry absorbs rounding drift: schedule sums to principal.
			amount = principal.Sub(installment.Mul(decimal.NewFromInt(int64(count - 1))))
		}
		schedule = append(schedule, ScheduleEntry{
			DueDate: payroll.EndOfMonth(due.Year(), due.Month()),
			Amount:  amount,
		})
	}
	return schedule
}

// NewLoan assembles a loan at issuance: installments mode gets a generated
// schedule, manual mode gets none. Remaining starts at the principal.
func NewLoan(id, employeeID string, principal decimal.Decimal, mode RepaymentMode, count int, issueDate payroll.Date) Loan {
	loan := Loan{
		ID:               id,
		EmployeeID:       employeeID,
		Principal:        principal,
		IssueDate:        issueDate,
		Mode:             mode,
		InstallmentCount: count,
		Remaining:        principal,
	}
	if mode == ModeInstallments {
		loan.InstallmentAmount = InstallmentAmount(principal, count)
		loan.Schedule = GenerateSchedule(principal, count, issueDate)
	}
	return loan
}

// =============================================================================
// DUE LOOKUP
// =============================================================================

// FindDueInstallments returns the installments due within the period.
//
// With a persisted schedule that still has unpaid entries, every unpaid
// entry whose due date falls inside the period is returned. Without a
// persisted schedule, a single virtual due of min(installment, remaining)
// is synthesized - but only for installments-mode loans with a positive
// installment amount and positive remaining balance. Manual-mode loans
// never produce automatic dues.
func FindDueInstallments(loan Loan, p payroll.Period) []DueInstallment {
	if len(loan.Schedule) > 0 {
		if loan.UnpaidScheduleSum().IsZero() {
			return nil
		}
		var dues []DueInstallment
		for i, e := range loan.Schedule {
			if e.Paid || !p.Contains(e.DueDate) {
				continue
			}
			dues = append(dues, DueInstallment{
				LoanID:        loan.ID,
				ScheduleIndex: i,
				Amount:        e.Amount,
			})
		}
		return dues
	}

	if loan.Mode != ModeInstallments {
		return nil
	}
	if !loan.InstallmentAmount.IsPositive() || !loan.Remaining.IsPositive() {
		return nil
	}
	amount := loan.InstallmentAmount
	if loan.Remaining.LessThan(amount) {
		amount = loan.Remaining
	}
	return []DueInstallment{{LoanID: loan.ID, Amount: amount, NoSchedule: true}}
}

// FindDueForEmployee collects due installments across all of an
// employee's loans, converted to payslip ledger entries in loan order.
func FindDueForEmployee(allLoans []Loan, employeeID string, p payroll.Period) []payroll.Deduction {
	var dues []payroll.Deduction
	for _, loan := range allLoans {
		if loan.EmployeeID != employeeID {
			continue
		}
		dues = append(dues, Deductions(FindDueInstallments(loan, p))...)
	}
	return dues
}

// =============================================================================
// PAYMENT POSTING
// =============================================================================

// PostPayment applies a manual payment to the loan. Schedule entries are
// marked paid oldest-first while the remaining payment fully covers them;
// Remaining is then unconditionally reduced by the whole payment, clamped
// at zero. The resulting drift, if any, is reported by Loan.ScheduleDrift.
func PostPayment(loan *Loan, amount decimal.Decimal) {
	if !amount.IsPositive() {
		return
	}

	left := amount
	for i := range loan.Schedule {
		e := &loan.Schedule[i]
		if e.Paid {
			continue
		}
		// Entries the remaining payment cannot fully cover stay unpaid;
		// the walk continues in stored order.
		if e.Amount.GreaterThan(left) {
			continue
		}
		e.Paid = true
		left = left.Sub(e.Amount)
		if left.IsZero() {
			break
		}
	}

	loan.Remaining = payroll.ClampZero(loan.Remaining.Sub(amount))
}
