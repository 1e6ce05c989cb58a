/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with realistic
	data for testing and demos. Each scenario creates employees and the
	records that demonstrate a specific engine behavior.

AVAILABLE SCENARIOS:

	small-team:       Three employees with a month of mixed attendance
	loan-lifecycle:   An installment loan mid-repayment, drift included
	full-payroll:     Employees, attendance, loans, and purchasing data

HOW SCENARIOS WORK:
 1. Seed employees
 2. Seed attendance records (hours derived from check times)
 3. Seed loans, optionally with payments posted
 4. Optionally seed purchasing data

Scenarios only insert; they never clear existing data. Use a fresh
store (or the in-memory one) for a clean slate.

USAGE VIA API:

	POST /api/scenarios/load
	{"id": "loan-lifecycle"}

SEE ALSO:
  - handlers.go: The CRUD endpoints the seeded data is visible through
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/warp/payroll-engine/loans"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/purchasing"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "small-team",
		Name:        "Small Team",
		Description: "Three employees with a month of attendance: overtime, lateness, a Friday worked, and absences",
	},
	{
		ID:          "loan-lifecycle",
		Name:        "Loan Lifecycle",
		Description: "A 1000/3 installment loan with one off-boundary payment posted (shows schedule drift)",
	},
	{
		ID:          "full-payroll",
		Name:        "Full Payroll",
		Description: "Employees, attendance, loans, and purchasing data for an end-to-end walkthrough",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: h.currentScenario, Name: h.currentScenario})
}

// LoadScenario seeds the store with one of the demo scenarios.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	var err error
	switch req.ID {
	case "small-team":
		err = h.loadSmallTeamScenario(ctx)
	case "loan-lifecycle":
		err = h.loadLoanLifecycleScenario(ctx)
	case "full-payroll":
		err = h.loadFullPayrollScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown scenario: %s", req.ID), nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.currentScenario = req.ID
	writeJSON(w, http.StatusOK, map[string]string{"loaded": req.ID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadSmallTeamScenario(ctx context.Context) error {
	employees := []payroll.Employee{
		{ID: "emp-ana", Name: "Ana Haddad", BaseSalary: parseMoney("6000"), Allowance: parseMoney("0")},
		{ID: "emp-omar", Name: "Omar Khalil", BaseSalary: parseMoney("7500"), Allowance: parseMoney("500")},
		{ID: "emp-lina", Name: "Lina Farouk", BaseSalary: parseMoney("5200"), Allowance: parseMoney("300")},
	}
	for _, e := range employees {
		if err := h.Store.SaveEmployee(ctx, e); err != nil {
			return err
		}
	}

	// A month of attendance for Ana: normal days, one overtime day, one
	// late day, one Friday worked, and two missing workdays.
	month := payroll.FullMonth(2025, time.March)
	for d := month.Start; d.BeforeOrEqual(month.End); d = d.AddDays(1) {
		checkIn := payroll.NewClockTime(9, 0)
		checkOut := payroll.NewClockTime(17, 0)

		switch {
		case d.IsWeeklyHoliday():
			if d.Day() != 14 {
				continue // Only March 14 is worked.
			}
		case d.Day() == 10:
			checkOut = payroll.NewClockTime(19, 0) // overtime
		case d.Day() == 18:
			checkIn = payroll.NewClockTime(10, 30) // late
		case d.Day() == 24 || d.Day() == 25:
			continue // absences
		}

		rec := payroll.AttendanceRecord{
			ID:         fmt.Sprintf("att-ana-%s", d),
			EmployeeID: "emp-ana",
			Date:       d,
			CheckIn:    checkIn,
			CheckOut:   checkOut,
			Present:    true,
		}
		rec.HoursWorked, rec.OvertimeHours = payroll.CalculateHours(checkIn, checkOut)
		if d.Day() == 18 {
			rec.LateHours = parseMoney("1.5")
		}
		if err := h.Store.SaveAttendance(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadLoanLifecycleScenario(ctx context.Context) error {
	if err := h.Store.SaveEmployee(ctx, payroll.Employee{
		ID: "emp-loan", Name: "Samir Aoun",
		BaseSalary: parseMoney("6000"), Allowance: parseMoney("0"),
	}); err != nil {
		return err
	}

	// Fresh installment loan.
	clean := loans.NewLoan("loan-clean", "emp-loan", parseMoney("1000"),
		loans.ModeInstallments, 3, payroll.MustParseDate("2025-01-15"))
	if err := h.Store.SaveLoan(ctx, clean); err != nil {
		return err
	}

	// The same shape with an off-boundary 500 payment posted: one entry
	// paid, remaining 500, unpaid schedule sum 666.67.
	drifted := loans.NewLoan("loan-drifted", "emp-loan", parseMoney("1000"),
		loans.ModeInstallments, 3, payroll.MustParseDate("2025-01-15"))
	loans.PostPayment(&drifted, parseMoney("500"))
	if err := h.Store.SaveLoan(ctx, drifted); err != nil {
		return err
	}

	// A manual-mode loan: no schedule, never auto-deducted.
	manual := loans.NewLoan("loan-manual", "emp-loan", parseMoney("750"),
		loans.ModeManual, 0, payroll.MustParseDate("2025-02-01"))
	return h.Store.SaveLoan(ctx, manual)
}

func (h *Handler) loadFullPayrollScenario(ctx context.Context) error {
	if err := h.loadSmallTeamScenario(ctx); err != nil {
		return err
	}
	if err := h.loadLoanLifecycleScenario(ctx); err != nil {
		return err
	}

	if err := h.Store.SaveSupplier(ctx, purchasing.Supplier{
		ID: "sup-office", Name: "Office Essentials Co", Phone: "555-0100",
	}); err != nil {
		return err
	}
	products := []purchasing.Product{
		{ID: "prod-paper", SupplierID: "sup-office", Name: "Printer Paper", Unit: "ream", UnitPrice: parseMoney("6.50")},
		{ID: "prod-toner", SupplierID: "sup-office", Name: "Toner Cartridge", Unit: "unit", UnitPrice: parseMoney("42")},
	}
	for _, p := range products {
		if err := h.Store.SaveProduct(ctx, p); err != nil {
			return err
		}
	}

	order := purchasing.PurchaseOrder{
		ID:         "po-demo",
		SupplierID: "sup-office",
		Date:       payroll.MustParseDate("2025-03-05"),
		Lines: []purchasing.OrderLine{
			{ProductID: "prod-paper", Quantity: parseMoney("10"), UnitPrice: parseMoney("6.50")},
			{ProductID: "prod-toner", Quantity: parseMoney("2"), UnitPrice: parseMoney("42")},
		},
	}
	_, err := h.Purchasing.PlaceOrder(ctx, order)
	return err
}
