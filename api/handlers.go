/*
handlers.go - HTTP API handlers for the payroll administration system

PURPOSE:
  Exposes the payroll engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Employees:
    GET    /api/employees               List all employees
    POST   /api/employees               Create/update employee
    GET    /api/employees/{id}          Get employee details
    DELETE /api/employees/{id}          Delete employee
    GET    /api/employees/{id}/attendance/summary  Aggregated period view

  Attendance:
    GET    /api/attendance              List records (filterable)
    POST   /api/attendance              Record a day (hours derived)
    DELETE /api/attendance/{id}         Delete a record

  Loans:
    GET    /api/loans                   List loans with schedules
    POST   /api/loans                   Issue a loan
    GET    /api/loans/{id}              Get loan details
    POST   /api/loans/{id}/payments     Post a manual payment
    DELETE /api/loans/{id}              Delete a loan

  Payslips:
    POST   /api/payslips/preview        Compute a draft (nothing persisted)
    GET    /api/payslips                List saved payslips
    POST   /api/payslips                Finalize a draft (applies loan dues)
    GET    /api/payslips/{id}           Get payslip details
    PUT    /api/payslips/{id}           Recompute (rolls back old loan dues)
    DELETE /api/payslips/{id}           Delete (rolls back loan dues)

  Purchasing:
    CRUD under /api/purchasing/{suppliers,products,orders}

  Scenarios:
    GET    /api/scenarios               List demo scenarios
    POST   /api/scenarios/load          Load a demo scenario

PAYSLIP LIFECYCLE:
  Create, update, and delete all run the deduction-ledger sync: the loan
  deductions of the previous payslip version are rolled back before the
  new version's are applied. The sequence is synchronous; there is no
  background recomputation anywhere in this API.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Duplicate attendance day
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/warp/payroll-engine/loans"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/purchasing"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is everything the API persists through: one backend implements
// all of the domain store contracts.
type Store interface {
	payroll.EmployeeStore
	payroll.AttendanceStore
	payroll.PayslipStore
	loans.LoanStore
	purchasing.Store

	DeleteLoan(ctx context.Context, id string) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      Store
	Ledger     *loans.DeductionLedger
	Purchasing *purchasing.Service
	Log        *slog.Logger

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler over the given store.
func NewHandler(store Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Store:      store,
		Ledger:     loans.NewDeductionLedger(store, logger),
		Purchasing: purchasing.NewService(store),
		Log:        logger,
	}
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Store.GetEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// SaveEmployee creates or updates an employee.
func (h *Handler) SaveEmployee(w http.ResponseWriter, r *http.Request) {
	var req SaveEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	emp := payroll.Employee{
		ID:         req.ID,
		Name:       req.Name,
		BaseSalary: parseMoney(req.BaseSalary),
		Allowance:  parseMoney(req.Allowance),
	}
	if emp.ID == "" {
		emp.ID = uuid.NewString()
	}

	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// DeleteEmployee removes an employee. Attendance, loans, and payslips
// referencing it stay put; the engine tolerates the dangling references.
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteEmployee(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete employee", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetAttendanceSummary returns the aggregated attendance view for one
// employee over a ?start=...&end=... period.
func (h *Handler) GetAttendanceSummary(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")
	period, ok := parsePeriodQuery(w, r)
	if !ok {
		return
	}

	records, err := h.Store.ListEmployeeAttendance(r.Context(), employeeID, period)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list attendance", err)
		return
	}

	summary, err := payroll.NewAggregator(records).Summarize(employeeID, period)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AttendanceSummaryDTO{
		EmployeeID:            employeeID,
		PeriodStart:           period.Start.String(),
		PeriodEnd:             period.End.String(),
		AttendanceDays:        summary.AttendanceDays,
		HolidayAttendanceDays: summary.HolidayAttendanceDays,
		AbsentDays:            summary.AbsentDays,
		OvertimeHours:         summary.OvertimeHours.String(),
		LateHours:             summary.LateHours.String(),
		EarlyLeaveHours:       summary.EarlyLeaveHours.String(),
	})
}

// =============================================================================
// ATTENDANCE HANDLERS
// =============================================================================

// ListAttendance returns attendance records, optionally filtered with
// ?employee_id=...&start=...&end=...
func (h *Handler) ListAttendance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	employeeID := r.URL.Query().Get("employee_id")

	var records []payroll.AttendanceRecord
	var err error
	if employeeID != "" && r.URL.Query().Get("start") != "" {
		period, ok := parsePeriodQuery(w, r)
		if !ok {
			return
		}
		records, err = h.Store.ListEmployeeAttendance(ctx, employeeID, period)
	} else {
		records, err = h.Store.ListAttendance(ctx)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list attendance", err)
		return
	}

	dtos := make([]AttendanceDTO, len(records))
	for i, rec := range records {
		dtos[i] = toAttendanceDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveAttendance records one employee-day. Worked and overtime hours are
// derived from the check times whenever both are supplied.
func (h *Handler) SaveAttendance(w http.ResponseWriter, r *http.Request) {
	var req SaveAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.EmployeeID == "" {
		writeError(w, http.StatusBadRequest, "employee_id is required", nil)
		return
	}

	date, err := payroll.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	rec := payroll.AttendanceRecord{
		ID:              req.ID,
		EmployeeID:      req.EmployeeID,
		Date:            date,
		LateHours:       parseMoney(req.LateHours),
		EarlyLeaveHours: parseMoney(req.EarlyLeaveHours),
		Present:         true,
	}
	if req.Present != nil {
		rec.Present = *req.Present
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	if req.CheckIn != "" {
		if rec.CheckIn, err = payroll.ParseClockTime(req.CheckIn); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid check_in (use HH:MM)", err)
			return
		}
	}
	if req.CheckOut != "" {
		if rec.CheckOut, err = payroll.ParseClockTime(req.CheckOut); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid check_out (use HH:MM)", err)
			return
		}
	}
	if !rec.CheckIn.IsZero() && !rec.CheckOut.IsZero() {
		rec.HoursWorked, rec.OvertimeHours = payroll.CalculateHours(rec.CheckIn, rec.CheckOut)
	}

	if err := h.Store.SaveAttendance(r.Context(), rec); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAttendanceDTO(rec))
}

// DeleteAttendance removes one record.
func (h *Handler) DeleteAttendance(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteAttendance(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete attendance", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// LOAN HANDLERS
// =============================================================================

// ListLoans returns every loan with its schedule.
func (h *Handler) ListLoans(w http.ResponseWriter, r *http.Request) {
	all, err := h.Store.ListLoans(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list loans", err)
		return
	}

	dtos := make([]LoanDTO, len(all))
	for i, l := range all {
		dtos[i] = toLoanDTO(l)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetLoan returns one loan.
func (h *Handler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loan, err := h.Store.GetLoan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get loan", err)
		return
	}
	if loan == nil {
		writeError(w, http.StatusNotFound, "Loan not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toLoanDTO(*loan))
}

// CreateLoan issues a loan. Installments mode generates the amortization
// schedule; manual mode starts with none.
func (h *Handler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.EmployeeID == "" {
		writeError(w, http.StatusBadRequest, "employee_id is required", nil)
		return
	}

	principal := parseMoney(req.Principal)
	if !principal.IsPositive() {
		writeError(w, http.StatusBadRequest, "principal must be positive", nil)
		return
	}

	issueDate, err := payroll.ParseDate(req.IssueDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid issue_date format (use YYYY-MM-DD)", err)
		return
	}

	mode := loans.RepaymentMode(req.Mode)
	switch mode {
	case loans.ModeInstallments:
		if req.InstallmentCount <= 0 {
			writeError(w, http.StatusBadRequest, "installment_count must be positive", nil)
			return
		}
	case loans.ModeManual:
	default:
		writeError(w, http.StatusBadRequest, "mode must be installments or manual", nil)
		return
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	loan := loans.NewLoan(id, req.EmployeeID, principal, mode, req.InstallmentCount, issueDate)

	if err := h.Store.SaveLoan(r.Context(), loan); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save loan", err)
		return
	}
	writeJSON(w, http.StatusCreated, toLoanDTO(loan))
}

// PostPayment applies a manual payment against a loan's schedule.
func (h *Handler) PostPayment(w http.ResponseWriter, r *http.Request) {
	var req PostPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	amount := parseMoney(req.Amount)
	if !amount.IsPositive() {
		writeError(w, http.StatusBadRequest, "amount must be positive", nil)
		return
	}

	loan, err := h.Store.GetLoan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get loan", err)
		return
	}
	if loan == nil {
		writeError(w, http.StatusNotFound, "Loan not found", nil)
		return
	}

	loans.PostPayment(loan, amount)
	if drift := loan.ScheduleDrift(); !drift.IsZero() {
		h.Log.Warn("loan schedule and balance diverged after payment",
			"loan_id", loan.ID, "drift", drift.String())
	}

	if err := h.Store.UpdateLoan(r.Context(), *loan); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update loan", err)
		return
	}
	writeJSON(w, http.StatusOK, toLoanDTO(*loan))
}

// DeleteLoan removes a loan. Payslip deductions referencing it become
// dangling; the sync treats those as warn-and-skip.
func (h *Handler) DeleteLoan(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteLoan(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete loan", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PAYSLIP HANDLERS
// =============================================================================

// PreviewPayslip computes a draft and returns it without persisting
// anything or touching loan state.
func (h *Handler) PreviewPayslip(w http.ResponseWriter, r *http.Request) {
	var req ComputePayslipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	in, result, err := h.computeDraft(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPreviewDTO(in, result))
}

// ListPayslips returns all saved payslips.
func (h *Handler) ListPayslips(w http.ResponseWriter, r *http.Request) {
	all, err := h.Store.ListPayslips(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list payslips", err)
		return
	}

	dtos := make([]PayslipDTO, len(all))
	for i, p := range all {
		dtos[i] = toPayslipDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPayslip returns one payslip with its deduction ledger.
func (h *Handler) GetPayslip(w http.ResponseWriter, r *http.Request) {
	p, err := h.Store.GetPayslip(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get payslip", err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "Payslip not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toPayslipDTO(*p))
}

// CreatePayslip finalizes a draft: computes, persists, and applies the
// loan-sourced deductions to the referenced loans.
func (h *Handler) CreatePayslip(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ComputePayslipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	// A create must never overwrite: reusing an ID would re-apply loan
	// deductions without rolling back the stored version's. Edits go
	// through PUT.
	if req.ID != "" {
		existing, err := h.Store.GetPayslip(ctx, req.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to get payslip", err)
			return
		}
		if existing != nil {
			writeError(w, http.StatusConflict, "Payslip already exists", nil)
			return
		}
	}

	in, result, err := h.computeDraft(ctx, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	p := payroll.BuildPayslip(in, result)
	p.ID = req.ID
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	if err := h.Store.SavePayslip(ctx, p); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save payslip", err)
		return
	}
	if err := h.Ledger.ApplyAll(ctx, p.LoanDeductions()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to sync loans", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPayslipDTO(p))
}

// UpdatePayslip recomputes an existing payslip. The previous version's
// loan deductions are rolled back before the new ones are applied.
func (h *Handler) UpdatePayslip(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	old, err := h.Store.GetPayslip(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get payslip", err)
		return
	}
	if old == nil {
		writeError(w, http.StatusNotFound, "Payslip not found", nil)
		return
	}

	var req ComputePayslipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	// Rolling back old loan state FIRST so the due lookup of the
	// recompute sees unpaid entries again.
	if err := h.Ledger.RollbackAll(ctx, old.LoanDeductions()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to roll back loan state", err)
		return
	}

	in, result, err := h.computeDraft(ctx, req)
	if err != nil {
		// Restore what was rolled back; the payslip is left untouched.
		if applyErr := h.Ledger.ApplyAll(ctx, old.LoanDeductions()); applyErr != nil {
			h.Log.Error("failed to restore loan state after aborted update",
				"payslip_id", id, "error", applyErr)
		}
		writeDomainError(w, err)
		return
	}

	p := payroll.BuildPayslip(in, result)
	p.ID = id

	if err := h.Store.UpdatePayslip(ctx, p); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.Ledger.ApplyAll(ctx, p.LoanDeductions()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to sync loans", err)
		return
	}
	writeJSON(w, http.StatusOK, toPayslipDTO(p))
}

// DeletePayslip removes a payslip and rolls back its loan deductions.
func (h *Handler) DeletePayslip(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	old, err := h.Store.GetPayslip(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get payslip", err)
		return
	}
	if old == nil {
		writeError(w, http.StatusNotFound, "Payslip not found", nil)
		return
	}

	if err := h.Ledger.RollbackAll(ctx, old.LoanDeductions()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to roll back loan state", err)
		return
	}
	if err := h.Store.DeletePayslip(ctx, id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete payslip", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// computeDraft assembles the calculator input from the stores and runs
// the net-pay formula. Shared by preview, create, and update.
func (h *Handler) computeDraft(ctx context.Context, req ComputePayslipRequest) (payroll.ComputeInput, payroll.Result, error) {
	start, err := payroll.ParseDate(req.PeriodStart)
	if err != nil {
		return payroll.ComputeInput{}, payroll.Result{}, &payroll.InvalidRangeError{}
	}
	end, err := payroll.ParseDate(req.PeriodEnd)
	if err != nil {
		return payroll.ComputeInput{}, payroll.Result{}, &payroll.InvalidRangeError{Start: start}
	}
	period := payroll.NewPeriod(start, end)

	emp, err := h.Store.GetEmployee(ctx, req.EmployeeID)
	if err != nil {
		return payroll.ComputeInput{}, payroll.Result{}, fmt.Errorf("load employee: %w", err)
	}
	if emp == nil {
		return payroll.ComputeInput{}, payroll.Result{}, payroll.ErrEmployeeNotFound
	}

	records, err := h.Store.ListEmployeeAttendance(ctx, emp.ID, period)
	if err != nil {
		return payroll.ComputeInput{}, payroll.Result{}, fmt.Errorf("load attendance: %w", err)
	}
	summary, err := payroll.NewAggregator(records).Summarize(emp.ID, period)
	if err != nil {
		return payroll.ComputeInput{}, payroll.Result{}, err
	}

	allLoans, err := h.Store.ListLoans(ctx)
	if err != nil {
		return payroll.ComputeInput{}, payroll.Result{}, fmt.Errorf("load loans: %w", err)
	}

	manual := make([]payroll.ManualDeduction, 0, len(req.Manual))
	for _, m := range req.Manual {
		manual = append(manual, payroll.ManualDeduction{
			Label: m.Label,
			Value: parseMoney(m.Amount),
		})
	}

	in := payroll.ComputeInput{
		Employee:   *emp,
		Period:     period,
		Attendance: summary,
		LoanDues:   loans.FindDueForEmployee(allLoans, emp.ID, period),
		Manual:     manual,
		Penalties:  parseMoney(req.Penalties),
		Rewards:    parseMoney(req.Rewards),
		Insurance:  parseMoney(req.Insurance),
	}

	result, err := payroll.Compute(in)
	if err != nil {
		return payroll.ComputeInput{}, payroll.Result{}, err
	}
	return in, result, nil
}

// =============================================================================
// PURCHASING HANDLERS
// =============================================================================

func (h *Handler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.Store.ListSuppliers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list suppliers", err)
		return
	}
	dtos := make([]SupplierDTO, len(suppliers))
	for i, s := range suppliers {
		dtos[i] = SupplierDTO{ID: s.ID, Name: s.Name, Phone: s.Phone, Address: s.Address}
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) SaveSupplier(w http.ResponseWriter, r *http.Request) {
	var req SupplierDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	s := purchasing.Supplier{ID: req.ID, Name: req.Name, Phone: req.Phone, Address: req.Address}
	if err := h.Store.SaveSupplier(r.Context(), s); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save supplier", err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (h *Handler) DeleteSupplier(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteSupplier(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete supplier", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Store.ListProducts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list products", err)
		return
	}
	dtos := make([]ProductDTO, len(products))
	for i, p := range products {
		dtos[i] = ProductDTO{
			ID: p.ID, SupplierID: p.SupplierID, Name: p.Name,
			Unit: p.Unit, UnitPrice: p.UnitPrice.String(),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) SaveProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	p := purchasing.Product{
		ID: req.ID, SupplierID: req.SupplierID, Name: req.Name,
		Unit: req.Unit, UnitPrice: parseMoney(req.UnitPrice),
	}
	if err := h.Store.SaveProduct(r.Context(), p); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save product", err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete product", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Store.ListOrders(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list orders", err)
		return
	}
	dtos := make([]PurchaseOrderDTO, len(orders))
	for i, o := range orders {
		dtos[i] = toOrderDTO(o)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// PlaceOrder validates and persists a purchase order; the total is
// always recomputed server-side.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date, err := payroll.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	o := purchasing.PurchaseOrder{
		ID:         req.ID,
		SupplierID: req.SupplierID,
		Date:       date,
		Lines:      make([]purchasing.OrderLine, 0, len(req.Lines)),
	}
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	for _, l := range req.Lines {
		o.Lines = append(o.Lines, purchasing.OrderLine{
			ProductID: l.ProductID,
			Quantity:  parseMoney(l.Quantity),
			UnitPrice: parseMoney(l.UnitPrice),
		})
	}

	placed, err := h.Purchasing.PlaceOrder(r.Context(), o)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderDTO(placed))
}

func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteOrder(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete order", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps engine errors to HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, payroll.ErrDuplicateAttendanceDay):
		writeError(w, http.StatusConflict, "Attendance already recorded for this day", err)
	case errors.Is(err, purchasing.ErrEmptyOrder):
		writeError(w, http.StatusBadRequest, "Order has no lines", err)
	case payroll.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case payroll.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid input", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

// parsePeriodQuery reads ?start and ?end. Writes the 400 itself and
// returns ok=false when either is missing or malformed.
func parsePeriodQuery(w http.ResponseWriter, r *http.Request) (payroll.Period, bool) {
	start, err := payroll.ParseDate(r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid or missing start (use YYYY-MM-DD)", err)
		return payroll.Period{}, false
	}
	end, err := payroll.ParseDate(r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid or missing end (use YYYY-MM-DD)", err)
		return payroll.Period{}, false
	}
	return payroll.NewPeriod(start, end), true
}
