// Package store provides the in-memory Store implementation used by
// tests and development runs.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/payroll-engine/loans"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/purchasing"
)

// =============================================================================
// MEMORY STORE - Implements every store contract with guarded maps
// =============================================================================

type Memory struct {
	mu         sync.RWMutex
	employees  map[string]payroll.Employee
	attendance map[string]payroll.AttendanceRecord
	loans      map[string]loans.Loan
	payslips   map[string]payroll.Payslip
	suppliers  map[string]purchasing.Supplier
	products   map[string]purchasing.Product
	orders     map[string]purchasing.PurchaseOrder
}

func NewMemory() *Memory {
	return &Memory{
		employees:  make(map[string]payroll.Employee),
		attendance: make(map[string]payroll.AttendanceRecord),
		loans:      make(map[string]loans.Loan),
		payslips:   make(map[string]payroll.Payslip),
		suppliers:  make(map[string]purchasing.Supplier),
		products:   make(map[string]purchasing.Product),
		orders:     make(map[string]purchasing.PurchaseOrder),
	}
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (m *Memory) ListEmployees(_ context.Context) ([]payroll.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]payroll.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetEmployee(_ context.Context, id string) (*payroll.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.employees[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *Memory) SaveEmployee(_ context.Context, e payroll.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[e.ID] = e
	return nil
}

func (m *Memory) DeleteEmployee(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.employees, id)
	return nil
}

// =============================================================================
// ATTENDANCE
// =============================================================================

func (m *Memory) ListAttendance(_ context.Context) ([]payroll.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]payroll.AttendanceRecord, 0, len(m.attendance))
	for _, r := range m.attendance {
		out = append(out, r)
	}
	sortAttendance(out)
	return out, nil
}

func (m *Memory) ListEmployeeAttendance(_ context.Context, employeeID string, p payroll.Period) ([]payroll.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []payroll.AttendanceRecord
	for _, r := range m.attendance {
		if r.EmployeeID == employeeID && p.Contains(r.Date) {
			out = append(out, r)
		}
	}
	sortAttendance(out)
	return out, nil
}

func (m *Memory) GetAttendanceDay(_ context.Context, employeeID string, day payroll.Date) (*payroll.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.attendance {
		if r.EmployeeID == employeeID && r.Date.Equal(day) {
			rec := r
			return &rec, nil
		}
	}
	return nil, nil
}

func (m *Memory) SaveAttendance(_ context.Context, rec payroll.AttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// One record per employee-day. Updating the same record is fine.
	for _, existing := range m.attendance {
		if existing.EmployeeID == rec.EmployeeID && existing.Date.Equal(rec.Date) && existing.ID != rec.ID {
			return &payroll.DuplicateDayError{
				EmployeeID: rec.EmployeeID,
				Date:       rec.Date,
				ExistingID: existing.ID,
			}
		}
	}
	m.attendance[rec.ID] = rec
	return nil
}

func (m *Memory) DeleteAttendance(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.attendance, id)
	return nil
}

func sortAttendance(records []payroll.AttendanceRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].Date.Equal(records[j].Date) {
			return records[i].EmployeeID < records[j].EmployeeID
		}
		return records[i].Date.Before(records[j].Date)
	})
}

// =============================================================================
// LOANS
// =============================================================================

func (m *Memory) ListLoans(_ context.Context) ([]loans.Loan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]loans.Loan, 0, len(m.loans))
	for _, l := range m.loans {
		out = append(out, copyLoan(l))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetLoan(_ context.Context, id string) (*loans.Loan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.loans[id]
	if !ok {
		return nil, nil
	}
	cp := copyLoan(l)
	return &cp, nil
}

func (m *Memory) SaveLoan(_ context.Context, l loans.Loan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loans[l.ID] = copyLoan(l)
	return nil
}

func (m *Memory) UpdateLoan(_ context.Context, l loans.Loan) error {
	return m.SaveLoan(context.Background(), l)
}

func (m *Memory) DeleteLoan(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.loans, id)
	return nil
}

// copyLoan detaches the schedule slice so callers never alias the map's
// backing array.
func copyLoan(l loans.Loan) loans.Loan {
	cp := l
	cp.Schedule = append([]loans.ScheduleEntry(nil), l.Schedule...)
	return cp
}

// =============================================================================
// PAYSLIPS
// =============================================================================

func (m *Memory) ListPayslips(_ context.Context) ([]payroll.Payslip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]payroll.Payslip, 0, len(m.payslips))
	for _, p := range m.payslips {
		out = append(out, copyPayslip(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetPayslip(_ context.Context, id string) (*payroll.Payslip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.payslips[id]
	if !ok {
		return nil, nil
	}
	cp := copyPayslip(p)
	return &cp, nil
}

func (m *Memory) SavePayslip(_ context.Context, p payroll.Payslip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payslips[p.ID] = copyPayslip(p)
	return nil
}

func (m *Memory) UpdatePayslip(_ context.Context, p payroll.Payslip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.payslips[p.ID]; !ok {
		return payroll.ErrPayslipNotFound
	}
	m.payslips[p.ID] = copyPayslip(p)
	return nil
}

func (m *Memory) DeletePayslip(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.payslips, id)
	return nil
}

func copyPayslip(p payroll.Payslip) payroll.Payslip {
	cp := p
	cp.Deductions = append([]payroll.Deduction(nil), p.Deductions...)
	return cp
}

// =============================================================================
// PURCHASING
// =============================================================================

func (m *Memory) ListSuppliers(_ context.Context) ([]purchasing.Supplier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]purchasing.Supplier, 0, len(m.suppliers))
	for _, s := range m.suppliers {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) SaveSupplier(_ context.Context, s purchasing.Supplier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suppliers[s.ID] = s
	return nil
}

func (m *Memory) DeleteSupplier(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.suppliers, id)
	return nil
}

func (m *Memory) ListProducts(_ context.Context) ([]purchasing.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]purchasing.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) SaveProduct(_ context.Context, p purchasing.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
	return nil
}

func (m *Memory) DeleteProduct(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.products, id)
	return nil
}

func (m *Memory) ListOrders(_ context.Context) ([]purchasing.PurchaseOrder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]purchasing.PurchaseOrder, 0, len(m.orders))
	for _, o := range m.orders {
		cp := o
		cp.Lines = append([]purchasing.OrderLine(nil), o.Lines...)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) SaveOrder(_ context.Context, o purchasing.PurchaseOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.Lines = append([]purchasing.OrderLine(nil), o.Lines...)
	m.orders[o.ID] = o
	return nil
}

func (m *Memory) DeleteOrder(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.orders, id)
	return nil
}
