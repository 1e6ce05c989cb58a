/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

CONVENTIONS:
  - Dates are ISO "YYYY-MM-DD" strings
  - Clock times are "HH:MM" strings, empty when not recorded
  - Money and hour quantities are decimal strings, never floats

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - payroll/deduction.go: The tagged variants DeductionDTO flattens
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/loans"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/purchasing"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

type EmployeeDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	BaseSalary string `json:"base_salary"`
	Allowance  string `json:"allowance"`
}

type SaveEmployeeRequest struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name"`
	BaseSalary string `json:"base_salary"`
	Allowance  string `json:"allowance"`
}

func toEmployeeDTO(e payroll.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:         e.ID,
		Name:       e.Name,
		BaseSalary: e.BaseSalary.String(),
		Allowance:  e.Allowance.String(),
	}
}

// =============================================================================
// ATTENDANCE
// =============================================================================

type AttendanceDTO struct {
	ID              string `json:"id"`
	EmployeeID      string `json:"employee_id"`
	Date            string `json:"date"`
	CheckIn         string `json:"check_in,omitempty"`
	CheckOut        string `json:"check_out,omitempty"`
	HoursWorked     string `json:"hours_worked"`
	OvertimeHours   string `json:"overtime_hours"`
	LateHours       string `json:"late_hours"`
	EarlyLeaveHours string `json:"early_leave_hours"`
	Present         bool   `json:"present"`
}

type SaveAttendanceRequest struct {
	ID              string `json:"id,omitempty"`
	EmployeeID      string `json:"employee_id"`
	Date            string `json:"date"`
	CheckIn         string `json:"check_in,omitempty"`
	CheckOut        string `json:"check_out,omitempty"`
	LateHours       string `json:"late_hours,omitempty"`
	EarlyLeaveHours string `json:"early_leave_hours,omitempty"`
	Present         *bool  `json:"present,omitempty"`
}

func toAttendanceDTO(rec payroll.AttendanceRecord) AttendanceDTO {
	dto := AttendanceDTO{
		ID:              rec.ID,
		EmployeeID:      rec.EmployeeID,
		Date:            rec.Date.String(),
		HoursWorked:     rec.HoursWorked.String(),
		OvertimeHours:   rec.OvertimeHours.String(),
		LateHours:       rec.LateHours.String(),
		EarlyLeaveHours: rec.EarlyLeaveHours.String(),
		Present:         rec.Present,
	}
	if !rec.CheckIn.IsZero() {
		dto.CheckIn = rec.CheckIn.String()
	}
	if !rec.CheckOut.IsZero() {
		dto.CheckOut = rec.CheckOut.String()
	}
	return dto
}

// AttendanceSummaryDTO is the aggregated view for one employee and period.
type AttendanceSummaryDTO struct {
	EmployeeID            string `json:"employee_id"`
	PeriodStart           string `json:"period_start"`
	PeriodEnd             string `json:"period_end"`
	AttendanceDays        int    `json:"attendance_days"`
	HolidayAttendanceDays int    `json:"holiday_attendance_days"`
	AbsentDays            int    `json:"absent_days"`
	OvertimeHours         string `json:"overtime_hours"`
	LateHours             string `json:"late_hours"`
	EarlyLeaveHours       string `json:"early_leave_hours"`
}

// =============================================================================
// LOANS
// =============================================================================

type ScheduleEntryDTO struct {
	DueDate string `json:"due_date"`
	Amount  string `json:"amount"`
	Paid    bool   `json:"paid"`
}

type LoanDTO struct {
	ID                string             `json:"id"`
	EmployeeID        string             `json:"employee_id"`
	Principal         string             `json:"principal"`
	IssueDate         string             `json:"issue_date"`
	Mode              string             `json:"mode"`
	InstallmentCount  int                `json:"installment_count"`
	InstallmentAmount string             `json:"installment_amount"`
	Remaining         string             `json:"remaining"`
	Schedule          []ScheduleEntryDTO `json:"schedule"`
	ScheduleDrift     string             `json:"schedule_drift,omitempty"`
}

type CreateLoanRequest struct {
	ID               string `json:"id,omitempty"`
	EmployeeID       string `json:"employee_id"`
	Principal        string `json:"principal"`
	IssueDate        string `json:"issue_date"`
	Mode             string `json:"mode"`
	InstallmentCount int    `json:"installment_count,omitempty"`
}

type PostPaymentRequest struct {
	Amount string `json:"amount"`
}

func toLoanDTO(l loans.Loan) LoanDTO {
	dto := LoanDTO{
		ID:                l.ID,
		EmployeeID:        l.EmployeeID,
		Principal:         l.Principal.String(),
		IssueDate:         l.IssueDate.String(),
		Mode:              string(l.Mode),
		InstallmentCount:  l.InstallmentCount,
		InstallmentAmount: l.InstallmentAmount.String(),
		Remaining:         l.Remaining.String(),
		Schedule:          make([]ScheduleEntryDTO, 0, len(l.Schedule)),
	}
	for _, e := range l.Schedule {
		dto.Schedule = append(dto.Schedule, ScheduleEntryDTO{
			DueDate: e.DueDate.String(),
			Amount:  e.Amount.String(),
			Paid:    e.Paid,
		})
	}
	if drift := l.ScheduleDrift(); !drift.IsZero() {
		dto.ScheduleDrift = drift.String()
	}
	return dto
}

// =============================================================================
// PAYSLIPS
// =============================================================================

// DeductionDTO is the flattened wire form of a tagged ledger entry. Only
// the fields relevant to the source are populated.
type DeductionDTO struct {
	Source        string `json:"source"`
	Amount        string `json:"amount"`
	Label         string `json:"label,omitempty"`
	Days          int    `json:"days,omitempty"`
	LoanID        string `json:"loan_id,omitempty"`
	ScheduleIndex *int   `json:"schedule_index,omitempty"`
	NoSchedule    bool   `json:"no_schedule,omitempty"`
}

func toDeductionDTO(d payroll.Deduction) DeductionDTO {
	dto := DeductionDTO{
		Source: string(d.Source()),
		Amount: d.Amount().String(),
	}
	switch ded := d.(type) {
	case payroll.ManualDeduction:
		dto.Label = ded.Label
	case payroll.AttendanceDeduction:
		dto.Days = ded.Days
	case payroll.LoanScheduleDeduction:
		dto.LoanID = ded.LoanID
		idx := ded.ScheduleIndex
		dto.ScheduleIndex = &idx
	case payroll.LoanManualDeduction:
		dto.LoanID = ded.LoanID
		dto.NoSchedule = true
	case payroll.FridayCreditEntry:
		dto.Days = ded.Days
	}
	return dto
}

func toDeductionDTOs(deductions []payroll.Deduction) []DeductionDTO {
	out := make([]DeductionDTO, 0, len(deductions))
	for _, d := range deductions {
		out = append(out, toDeductionDTO(d))
	}
	return out
}

type PayslipDTO struct {
	ID              string         `json:"id"`
	EmployeeID      string         `json:"employee_id"`
	PeriodStart     string         `json:"period_start"`
	PeriodEnd       string         `json:"period_end"`
	BasicSalary     string         `json:"basic_salary"`
	Allowances      string         `json:"allowances"`
	OvertimeHours   string         `json:"overtime_hours"`
	OvertimeRate    string         `json:"overtime_rate"`
	LateHours       string         `json:"late_hours"`
	EarlyLeaveHours string         `json:"early_leave_hours"`
	Penalties       string         `json:"penalties"`
	Rewards         string         `json:"rewards"`
	Insurance       string         `json:"insurance"`
	Deductions      []DeductionDTO `json:"deductions"`
	NetPay          string         `json:"net_pay"`
}

func toPayslipDTO(p payroll.Payslip) PayslipDTO {
	return PayslipDTO{
		ID:              p.ID,
		EmployeeID:      p.EmployeeID,
		PeriodStart:     p.PeriodStart.String(),
		PeriodEnd:       p.PeriodEnd.String(),
		BasicSalary:     p.BasicSalary.String(),
		Allowances:      p.Allowances.String(),
		OvertimeHours:   p.OvertimeHours.String(),
		OvertimeRate:    p.OvertimeRate.String(),
		LateHours:       p.LateHours.String(),
		EarlyLeaveHours: p.EarlyLeaveHours.String(),
		Penalties:       p.Penalties.String(),
		Rewards:         p.Rewards.String(),
		Insurance:       p.Insurance.String(),
		Deductions:      toDeductionDTOs(p.Deductions),
		NetPay:          p.NetPay.String(),
	}
}

// ManualDeductionRequest is one user-entered deduction line.
type ManualDeductionRequest struct {
	Label  string `json:"label"`
	Amount string `json:"amount"`
}

// ComputePayslipRequest drives preview, create, and update: the employee,
// the period, and the user-adjustable money knobs.
type ComputePayslipRequest struct {
	ID          string                   `json:"id,omitempty"`
	EmployeeID  string                   `json:"employee_id"`
	PeriodStart string                   `json:"period_start"`
	PeriodEnd   string                   `json:"period_end"`
	Penalties   string                   `json:"penalties,omitempty"`
	Rewards     string                   `json:"rewards,omitempty"`
	Insurance   string                   `json:"insurance,omitempty"`
	Manual      []ManualDeductionRequest `json:"manual_deductions,omitempty"`
}

// PayslipPreviewDTO is the computed draft: the rates, each named
// sub-total, the materialized ledger, and net pay. Nothing is persisted.
type PayslipPreviewDTO struct {
	EmployeeID  string `json:"employee_id"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`

	Attendance AttendanceSummaryDTO `json:"attendance"`

	DailyRate    string `json:"daily_rate"`
	HourlyRate   string `json:"hourly_rate"`
	OvertimeRate string `json:"overtime_rate"`

	OvertimePay         string `json:"overtime_pay"`
	FridayBonus         string `json:"friday_bonus"`
	LateDeduction       string `json:"late_deduction"`
	EarlyLeaveDeduction string `json:"early_leave_deduction"`
	AbsenceDeduction    string `json:"absence_deduction"`
	LoanDeduction       string `json:"loan_deduction"`
	ManualDeduction     string `json:"manual_deduction"`

	Deductions []DeductionDTO `json:"deductions"`
	NetPay     string         `json:"net_pay"`
}

func toPreviewDTO(in payroll.ComputeInput, r payroll.Result) PayslipPreviewDTO {
	return PayslipPreviewDTO{
		EmployeeID:  in.Employee.ID,
		PeriodStart: in.Period.Start.String(),
		PeriodEnd:   in.Period.End.String(),
		Attendance: AttendanceSummaryDTO{
			EmployeeID:            in.Employee.ID,
			PeriodStart:           in.Period.Start.String(),
			PeriodEnd:             in.Period.End.String(),
			AttendanceDays:        in.Attendance.AttendanceDays,
			HolidayAttendanceDays: in.Attendance.HolidayAttendanceDays,
			AbsentDays:            in.Attendance.AbsentDays,
			OvertimeHours:         in.Attendance.OvertimeHours.String(),
			LateHours:             in.Attendance.LateHours.String(),
			EarlyLeaveHours:       in.Attendance.EarlyLeaveHours.String(),
		},
		DailyRate:           r.DailyRate.String(),
		HourlyRate:          r.HourlyRate.String(),
		OvertimeRate:        r.OvertimeRate.String(),
		OvertimePay:         r.OvertimePay.String(),
		FridayBonus:         r.FridayBonus.String(),
		LateDeduction:       r.LateDeduction.String(),
		EarlyLeaveDeduction: r.EarlyLeaveDeduction.String(),
		AbsenceDeduction:    r.AbsenceDeduction.String(),
		LoanDeduction:       r.LoanDeduction.String(),
		ManualDeduction:     r.ManualDeduction.String(),
		Deductions:          toDeductionDTOs(r.Deductions),
		NetPay:              r.NetPay.String(),
	}
}

// =============================================================================
// PURCHASING
// =============================================================================

type SupplierDTO struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

type ProductDTO struct {
	ID         string `json:"id"`
	SupplierID string `json:"supplier_id,omitempty"`
	Name       string `json:"name"`
	Unit       string `json:"unit,omitempty"`
	UnitPrice  string `json:"unit_price"`
}

type OrderLineDTO struct {
	ProductID string `json:"product_id"`
	Quantity  string `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Amount    string `json:"amount,omitempty"`
}

type PurchaseOrderDTO struct {
	ID         string         `json:"id"`
	SupplierID string         `json:"supplier_id"`
	Date       string         `json:"date"`
	Lines      []OrderLineDTO `json:"lines"`
	Total      string         `json:"total"`
}

type PlaceOrderRequest struct {
	ID         string         `json:"id,omitempty"`
	SupplierID string         `json:"supplier_id"`
	Date       string         `json:"date"`
	Lines      []OrderLineDTO `json:"lines"`
}

func toOrderDTO(o purchasing.PurchaseOrder) PurchaseOrderDTO {
	dto := PurchaseOrderDTO{
		ID:         o.ID,
		SupplierID: o.SupplierID,
		Date:       o.Date.String(),
		Lines:      make([]OrderLineDTO, 0, len(o.Lines)),
		Total:      o.Total.String(),
	}
	for _, l := range o.Lines {
		dto.Lines = append(dto.Lines, OrderLineDTO{
			ProductID: l.ProductID,
			Quantity:  l.Quantity.String(),
			UnitPrice: l.UnitPrice.String(),
			Amount:    l.Amount().String(),
		})
	}
	return dto
}

// =============================================================================
// SCENARIOS
// =============================================================================

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ID string `json:"id"`
}

// =============================================================================
// ERRORS
// =============================================================================

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// parseMoney parses an optional decimal field, zero when absent.
func parseMoney(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	return payroll.MustParseDecimal(s)
}
