package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/api"
	"github.com/warp/payroll-engine/loans"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/payroll/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type testServer struct {
	handler *api.Handler
	router  http.Handler
	store   *store.Memory
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	mem := store.NewMemory()
	h := api.NewHandler(mem, nil)
	return &testServer{
		handler: h,
		router:  api.NewRouter(h, nil),
		store:   mem,
	}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	return out
}

func (ts *testServer) seedEmployee(t *testing.T, id, salary string) {
	t.Helper()
	require.NoError(t, ts.store.SaveEmployee(context.Background(), payroll.Employee{
		ID: id, Name: "Test " + id,
		BaseSalary: payroll.MustParseDecimal(salary),
	}))
}

// seedFullAttendance inserts a 9:00-17:00 record for every non-Friday of
// the month, skipping the given days of month.
func (ts *testServer) seedFullAttendance(t *testing.T, employeeID string, year int, month time.Month, skipDays ...int) {
	t.Helper()
	skip := make(map[int]bool, len(skipDays))
	for _, d := range skipDays {
		skip[d] = true
	}

	p := payroll.FullMonth(year, month)
	for d := p.Start; d.BeforeOrEqual(p.End); d = d.AddDays(1) {
		if d.IsWeeklyHoliday() || skip[d.Day()] {
			continue
		}
		rec := payroll.AttendanceRecord{
			ID:         employeeID + "-" + d.String(),
			EmployeeID: employeeID,
			Date:       d,
			CheckIn:    payroll.NewClockTime(9, 0),
			CheckOut:   payroll.NewClockTime(17, 0),
			Present:    true,
		}
		rec.HoursWorked, rec.OvertimeHours = payroll.CalculateHours(rec.CheckIn, rec.CheckOut)
		require.NoError(t, ts.store.SaveAttendance(context.Background(), rec))
	}
}

func (ts *testServer) seedLoan(t *testing.T, loan loans.Loan) {
	t.Helper()
	require.NoError(t, ts.store.SaveLoan(context.Background(), loan))
}

func (ts *testServer) getLoan(t *testing.T, id string) loans.Loan {
	t.Helper()
	loan, err := ts.store.GetLoan(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, loan)
	return *loan
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func TestAPI_Employees_CRUD(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, "POST", "/api/employees", api.SaveEmployeeRequest{
		ID: "emp-1", Name: "Alice", BaseSalary: "6000", Allowance: "250",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.do(t, "GET", "/api/employees/emp-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[api.EmployeeDTO](t, w)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, "6000", got.BaseSalary)

	w = ts.do(t, "DELETE", "/api/employees/emp-1", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, "GET", "/api/employees/emp-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_Employees_MissingName_Rejected(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, "POST", "/api/employees", api.SaveEmployeeRequest{BaseSalary: "6000"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// =============================================================================
// ATTENDANCE
// =============================================================================

func TestAPI_Attendance_HoursDerivedFromClockTimes(t *testing.T) {
	ts := newTestServer(t)
	ts.seedEmployee(t, "emp-1", "6000")

	w := ts.do(t, "POST", "/api/attendance", api.SaveAttendanceRequest{
		EmployeeID: "emp-1", Date: "2025-03-10",
		CheckIn: "08:00", CheckOut: "18:00",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	got := decode[api.AttendanceDTO](t, w)
	assert.Equal(t, "10", got.HoursWorked)
	assert.Equal(t, "2", got.OvertimeHours)
	assert.True(t, got.Present)
}

func TestAPI_Attendance_DuplicateDay_Conflict(t *testing.T) {
	ts := newTestServer(t)
	ts.seedEmployee(t, "emp-1", "6000")

	first := api.SaveAttendanceRequest{
		EmployeeID: "emp-1", Date: "2025-03-10", CheckIn: "09:00", CheckOut: "17:00",
	}
	require.Equal(t, http.StatusCreated, ts.do(t, "POST", "/api/attendance", first).Code)

	w := ts.do(t, "POST", "/api/attendance", first)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAPI_AttendanceSummary(t *testing.T) {
	ts := newTestServer(t)
	ts.seedEmployee(t, "emp-1", "6000")
	ts.seedFullAttendance(t, "emp-1", 2025, time.April, 7, 8)

	w := ts.do(t, "GET",
		"/api/employees/emp-1/attendance/summary?start=2025-04-01&end=2025-04-30", nil)
	require.Equal(t, http.StatusOK, w.Code)

	got := decode[api.AttendanceSummaryDTO](t, w)
	// April 2025: 30 days, 4 Fridays, 26 working days, 2 skipped.
	assert.Equal(t, 24, got.AttendanceDays)
	assert.Equal(t, 2, got.AbsentDays)
}

// =============================================================================
// LOANS
// =============================================================================

func TestAPI_CreateLoan_GeneratesSchedule(t *testing.T) {
	ts := newTestServer(t)
	ts.seedEmployee(t, "emp-1", "6000")

	w := ts.do(t, "POST", "/api/loans", api.CreateLoanRequest{
		EmployeeID: "emp-1", Principal: "1000",
		IssueDate: "2024-01-15", Mode: "installments", InstallmentCount: 3,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	got := decode[api.LoanDTO](t, w)
	require.Len(t, got.Schedule, 3)
	assert.Equal(t, "333.33", got.Schedule[0].Amount)
	assert.Equal(t, "333.34", got.Schedule[2].Amount)
	assert.Equal(t, "1000", got.Remaining)
	assert.Empty(t, got.ScheduleDrift)
}

func TestAPI_CreateLoan_InvalidMode_Rejected(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, "POST", "/api/loans", api.CreateLoanRequest{
		EmployeeID: "emp-1", Principal: "1000", IssueDate: "2024-01-15", Mode: "weekly",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_PostPayment_ReportsDrift(t *testing.T) {
	ts := newTestServer(t)
	ts.seedEmployee(t, "emp-1", "6000")
	ts.seedLoan(t, loans.NewLoan("loan-1", "emp-1", payroll.MustParseDecimal("1000"),
		loans.ModeInstallments, 3, payroll.MustParseDate("2024-01-15")))

	w := ts.do(t, "POST", "/api/loans/loan-1/payments", api.PostPaymentRequest{Amount: "500"})
	require.Equal(t, http.StatusOK, w.Code)

	got := decode[api.LoanDTO](t, w)
	assert.Equal(t, "500", got.Remaining)
	assert.True(t, got.Schedule[0].Paid)
	assert.False(t, got.Schedule[1].Paid)
	assert.Equal(t, "166.67", got.ScheduleDrift)
}

// =============================================================================
// PAYSLIPS - Preview
// =============================================================================

func TestAPI_PreviewPayslip_SimpleAbsence(t *testing.T) {
	// GIVEN: 6000 salary, April fully attended except two workdays
	ts := newTestServer(t)
	ts.seedEmployee(t, "emp-1", "6000")
	ts.seedFullAttendance(t, "emp-1", 2025, time.April, 7, 8)

	w := ts.do(t, "POST", "/api/payslips/preview", api.ComputePayslipRequest{
		EmployeeID: "emp-1", PeriodStart: "2025-04-01", PeriodEnd: "2025-04-30",
	})
	require.Equal(t, http.StatusOK, w.Code)

	got := decode[api.PayslipPreviewDTO](t, w)
	assert.Equal(t, "200", got.DailyRate)
	assert.Equal(t, 2, got.Attendance.AbsentDays)
	assert.Equal(t, "400", got.AbsenceDeduction)
	assert.Equal(t, "5600", got.NetPay)

	// Preview persists nothing.
	all := decode[[]api.PayslipDTO](t, ts.do(t, "GET", "/api/payslips", nil))
	assert.Empty(t, all)
}

func TestAPI_PreviewPayslip_UnknownEmployee_NotFound(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, "POST", "/api/payslips/preview", api.ComputePayslipRequest{
		EmployeeID: "ghost", PeriodStart: "2025-04-01", PeriodEnd: "2025-04-30",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_PreviewPayslip_ReversedPeriod_Rejected(t *testing.T) {
	ts := newTestServer(t)
	ts.seedEmployee(t, "emp-1", "6000")
	w := ts.do(t, "POST", "/api/payslips/preview", api.ComputePayslipRequest{
		EmployeeID: "emp-1", PeriodStart: "2025-04-30", PeriodEnd: "2025-04-01",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// =============================================================================
// PAYSLIPS - Lifecycle and loan sync
// =============================================================================

func TestAPI_CreatePayslip_AppliesLoanDues(t *testing.T) {
	// GIVEN: A 1000/3 loan with its first installment due in February
	ts := newTestServer(t)
	ts.seedEmployee(t, "emp-1", "6000")
	ts.seedFullAttendance(t, "emp-1", 2025, time.February)
	ts.seedLoan(t, loans.NewLoan("loan-1", "emp-1", payroll.MustParseDecimal("1000"),
		loans.ModeInstallments, 3, payroll.MustParseDate("2025-01-15")))

	// WHEN: Finalizing the February payslip
	w := ts.do(t, "POST", "/api/payslips", api.ComputePayslipRequest{
		ID: "slip-feb", EmployeeID: "emp-1",
		PeriodStart: "2025-02-01", PeriodEnd: "2025-02-28",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	got := decode[api.PayslipDTO](t, w)
	require.Len(t, got.Deductions, 1)
	assert.Equal(t, "erp_loans", got.Deductions[0].Source)
	assert.Equal(t, "333.33", got.Deductions[0].Amount)

	// THEN: The loan reflects the applied deduction
	loan := ts.getLoan(t, "loan-1")
	assert.True(t, loan.Schedule[0].Paid)
	assert.True(t, loan.Remaining.Equal(payroll.MustParseDecimal("666.67")))
}

func TestAPI_CreatePayslip_ExistingID_Conflict(t *testing.T) {
	// GIVEN: An installments loan with no persisted schedule, whose
	// synthesized due would be deducted again on every recompute
	ts := newTestServer(t)
	ts.seedEmployee(t, "emp-1", "6000")
	ts.seedFullAttendance(t, "emp-1", 2025, time.February)
	ts.seedLoan(t, loans.Loan{
		ID:                "loan-1",
		EmployeeID:        "emp-1",
		Principal:         payroll.MustParseDecimal("1000"),
		IssueDate:         payroll.MustParseDate("2025-01-15"),
		Mode:              loans.ModeInstallments,
		InstallmentCount:  4,
		InstallmentAmount: payroll.MustParseDecimal("250"),
		Remaining:         payroll.MustParseDecimal("1000"),
	})

	req := api.ComputePayslipRequest{
		ID: "slip-1", EmployeeID: "emp-1",
		PeriodStart: "2025-02-01", PeriodEnd: "2025-02-28",
	}
	require.Equal(t, http.StatusCreated, ts.do(t, "POST", "/api/payslips", req).Code)

	// WHEN: Posting the same payslip ID again
	w := ts.do(t, "POST", "/api/payslips", req)

	// THEN: The create is rejected and the loan is deducted only once
	assert.Equal(t, http.StatusConflict, w.Code)
	loan := ts.getLoan(t, "loan-1")
	assert.True(t, loan.Remaining.Equal(payroll.MustParseDecimal("750")),
		"remaining = %v", loan.Remaining)
}

func TestAPI_UpdatePayslip_RollsBackThenReapplies(t *testing.T) {
	// GIVEN: A finalized February payslip holding installment 0
	ts := newTestServer(t)
	ts.seedEmployee(t, "emp-1", "6000")
	ts.seedFullAttendance(t, "emp-1", 2025, time.February)
	ts.seedFullAttendance(t, "emp-1", 2025, time.March)
	ts.seedLoan(t, loans.NewLoan("loan-1", "emp-1", payroll.MustParseDecimal("1000"),
		loans.ModeInstallments, 3, payroll.MustParseDate("2025-01-15")))

	require.Equal(t, http.StatusCreated, ts.do(t, "POST", "/api/payslips", api.ComputePayslipRequest{
		ID: "slip-1", EmployeeID: "emp-1",
		PeriodStart: "2025-02-01", PeriodEnd: "2025-02-28",
	}).Code)

	// WHEN: Editing the payslip to cover March instead
	w := ts.do(t, "PUT", "/api/payslips/slip-1", api.ComputePayslipRequest{
		EmployeeID: "emp-1", PeriodStart: "2025-03-01", PeriodEnd: "2025-03-31",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// THEN: Installment 0 is unpaid again; installment 1 is now held
	loan := ts.getLoan(t, "loan-1")
	assert.False(t, loan.Schedule[0].Paid)
	assert.True(t, loan.Schedule[1].Paid)
	assert.True(t, loan.Remaining.Equal(payroll.MustParseDecimal("666.67")))
	assert.True(t, loan.ScheduleDrift().IsZero())
}

func TestAPI_DeletePayslip_RestoresLoanState(t *testing.T) {
	ts := newTestServer(t)
	ts.seedEmployee(t, "emp-1", "6000")
	ts.seedFullAttendance(t, "emp-1", 2025, time.February)
	ts.seedLoan(t, loans.NewLoan("loan-1", "emp-1", payroll.MustParseDecimal("1000"),
		loans.ModeInstallments, 3, payroll.MustParseDate("2025-01-15")))

	require.Equal(t, http.StatusCreated, ts.do(t, "POST", "/api/payslips", api.ComputePayslipRequest{
		ID: "slip-1", EmployeeID: "emp-1",
		PeriodStart: "2025-02-01", PeriodEnd: "2025-02-28",
	}).Code)

	w := ts.do(t, "DELETE", "/api/payslips/slip-1", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	loan := ts.getLoan(t, "loan-1")
	assert.False(t, loan.Schedule[0].Paid)
	assert.True(t, loan.Remaining.Equal(payroll.MustParseDecimal("1000")))

	assert.Equal(t, http.StatusNotFound, ts.do(t, "GET", "/api/payslips/slip-1", nil).Code)
}

func TestAPI_DeletePayslip_LoanAlreadyGone_StillDeletes(t *testing.T) {
	// GIVEN: The referenced loan was deleted after the payslip was saved
	ts := newTestServer(t)
	ts.seedEmployee(t, "emp-1", "6000")
	ts.seedFullAttendance(t, "emp-1", 2025, time.February)
	ts.seedLoan(t, loans.NewLoan("loan-1", "emp-1", payroll.MustParseDecimal("1000"),
		loans.ModeInstallments, 3, payroll.MustParseDate("2025-01-15")))

	require.Equal(t, http.StatusCreated, ts.do(t, "POST", "/api/payslips", api.ComputePayslipRequest{
		ID: "slip-1", EmployeeID: "emp-1",
		PeriodStart: "2025-02-01", PeriodEnd: "2025-02-28",
	}).Code)
	require.Equal(t, http.StatusNoContent, ts.do(t, "DELETE", "/api/loans/loan-1", nil).Code)

	// THEN: The delete still succeeds; the dangling sync is a warn-and-skip
	assert.Equal(t, http.StatusNoContent, ts.do(t, "DELETE", "/api/payslips/slip-1", nil).Code)
}

// =============================================================================
// PURCHASING
// =============================================================================

func TestAPI_PlaceOrder_RecomputesTotal(t *testing.T) {
	ts := newTestServer(t)

	require.Equal(t, http.StatusCreated, ts.do(t, "POST", "/api/purchasing/suppliers",
		api.SupplierDTO{ID: "sup-1", Name: "Acme"}).Code)

	w := ts.do(t, "POST", "/api/purchasing/orders", api.PlaceOrderRequest{
		SupplierID: "sup-1", Date: "2025-03-10",
		Lines: []api.OrderLineDTO{
			{ProductID: "p1", Quantity: "4", UnitPrice: "25"},
			{ProductID: "p2", Quantity: "1.5", UnitPrice: "10"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	got := decode[api.PurchaseOrderDTO](t, w)
	assert.Equal(t, "115", got.Total)
	require.Len(t, got.Lines, 2)
	assert.Equal(t, "100", got.Lines[0].Amount)
}

func TestAPI_PlaceOrder_Empty_Rejected(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, "POST", "/api/purchasing/orders", api.PlaceOrderRequest{
		SupplierID: "sup-1", Date: "2025-03-10",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestAPI_LoadScenario_SeedsData(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, "POST", "/api/scenarios/load", api.LoadScenarioRequest{ID: "loan-lifecycle"})
	require.Equal(t, http.StatusOK, w.Code)

	all := decode[[]api.LoanDTO](t, ts.do(t, "GET", "/api/loans", nil))
	require.Len(t, all, 3)

	// The drifted demo loan carries its documented inconsistency.
	w = ts.do(t, "GET", "/api/loans/loan-drifted", nil)
	require.Equal(t, http.StatusOK, w.Code)
	drifted := decode[api.LoanDTO](t, w)
	assert.Equal(t, "166.67", drifted.ScheduleDrift)

	current := decode[api.ScenarioDTO](t, ts.do(t, "GET", "/api/scenarios/current", nil))
	assert.Equal(t, "loan-lifecycle", current.ID)
}

func TestAPI_LoadScenario_Unknown_Rejected(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, "POST", "/api/scenarios/load", api.LoadScenarioRequest{ID: "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
