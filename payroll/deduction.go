/*
deduction.go - Tagged deduction variants

PURPOSE:
  A payslip's deduction ledger is an ordered list of tagged entries. Each
  entry knows its originating source so the loan sync can later find and
  reverse exactly the entries it applied.

VARIANTS:
  ManualDeduction        user-entered, free-form
  AttendanceDeduction    absence deduction derived from attendance
  LoanScheduleDeduction  one due installment of a loan's schedule
  LoanManualDeduction    a loan due with no persisted schedule entry

OWNERSHIP:
  The payslip owns its deductions. Loan-sourced entries carry a loan ID
  (and, for schedule entries, an index) as a non-owning back-reference.

SEE ALSO:
  - calculator.go: Materializes these into the ledger
  - loans/sync.go: Applies and rolls back loan-sourced entries
*/
package payroll

import "github.com/shopspring/decimal"

// =============================================================================
// SOURCE TAGS
// =============================================================================

type DeductionSource string

const (
	SourceManual     DeductionSource = "manual"
	SourceAttendance DeductionSource = "attendance"
	SourceLoan       DeductionSource = "erp_loans"

	// SourceFridayCredit tags informational holiday-attendance credit
	// entries found in imported data. The calculator never emits these:
	// the friday bonus affects net pay directly without a ledger entry.
	SourceFridayCredit DeductionSource = "friday_attendance"
)

// =============================================================================
// DEDUCTION - Tagged variant interface
// =============================================================================

type Deduction interface {
	Source() DeductionSource
	Amount() decimal.Decimal
}

// ManualDeduction is a free-form deduction entered by the user.
type ManualDeduction struct {
	Label string
	Value decimal.Decimal
}

func (d ManualDeduction) Source() DeductionSource { return SourceManual }
func (d ManualDeduction) Amount() decimal.Decimal { return d.Value }

// AttendanceDeduction is the absence deduction for a period.
type AttendanceDeduction struct {
	Value decimal.Decimal
	Days  int
}

func (d AttendanceDeduction) Source() DeductionSource { return SourceAttendance }
func (d AttendanceDeduction) Amount() decimal.Decimal { return d.Value }

// LoanScheduleDeduction deducts one installment of a loan's persisted
// schedule. LoanID and ScheduleIndex are a non-owning back-reference.
type LoanScheduleDeduction struct {
	LoanID        string
	ScheduleIndex int
	Value         decimal.Decimal
}

func (d LoanScheduleDeduction) Source() DeductionSource { return SourceLoan }
func (d LoanScheduleDeduction) Amount() decimal.Decimal { return d.Value }

// LoanManualDeduction deducts a synthesized due amount for a loan without
// a persisted schedule (the noSchedule case).
type LoanManualDeduction struct {
	LoanID string
	Value  decimal.Decimal
}

func (d LoanManualDeduction) Source() DeductionSource { return SourceLoan }
func (d LoanManualDeduction) Amount() decimal.Decimal { return d.Value }

// FridayCreditEntry is an informational credit entry for holiday
// attendance, carried for compatibility with imported ledgers. It never
// reduces net pay.
type FridayCreditEntry struct {
	Value decimal.Decimal
	Days  int
}

func (d FridayCreditEntry) Source() DeductionSource { return SourceFridayCredit }
func (d FridayCreditEntry) Amount() decimal.Decimal { return d.Value }

// SumDeductions adds the amounts of all entries with the given source.
func SumDeductions(deductions []Deduction, source DeductionSource) decimal.Decimal {
	total := decimal.Zero
	for _, d := range deductions {
		if d.Source() == source {
			total = total.Add(d.Amount())
		}
	}
	return total
}
