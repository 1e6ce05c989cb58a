package payroll_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func testEmployee(salary, allowance string) payroll.Employee {
	return payroll.Employee{
		ID:         "emp-1",
		Name:       "Test Employee",
		BaseSalary: dec(salary),
		Allowance:  dec(allowance),
	}
}

// =============================================================================
// BASELINE SCENARIOS
// =============================================================================

func TestCompute_SimpleAbsence(t *testing.T) {
	// GIVEN: 6000 salary, full 30-day month, 2 absent days, nothing else
	in := payroll.ComputeInput{
		Employee:   testEmployee("6000", "0"),
		Period:     payroll.FullMonth(2025, time.April),
		Attendance: payroll.Summary{AbsentDays: 2},
	}

	r, err := payroll.Compute(in)
	require.NoError(t, err)

	// dailyRate = 6000/30 = 200; absence = 400; net = 5600
	assert.True(t, r.DailyRate.Equal(dec("200")), "dailyRate = %v", r.DailyRate)
	assert.True(t, r.AbsenceDeduction.Equal(dec("400")), "absence = %v", r.AbsenceDeduction)
	assert.True(t, r.NetPay.Equal(dec("5600")), "netPay = %v", r.NetPay)

	// The absence materializes as exactly one ledger entry.
	require.Len(t, r.Deductions, 1)
	att, ok := r.Deductions[0].(payroll.AttendanceDeduction)
	require.True(t, ok)
	assert.Equal(t, 2, att.Days)
	assert.True(t, att.Value.Equal(dec("400")))
}

func TestCompute_PerfectMonth_NetEqualsGross(t *testing.T) {
	in := payroll.ComputeInput{
		Employee: testEmployee("5000", "500"),
		Period:   payroll.FullMonth(2025, time.April),
	}

	r, err := payroll.Compute(in)
	require.NoError(t, err)
	assert.True(t, r.NetPay.Equal(dec("5500")), "netPay = %v", r.NetPay)
	assert.Empty(t, r.Deductions)
}

func TestCompute_Rates(t *testing.T) {
	// GIVEN: A half-month period inside a 31-day month
	in := payroll.ComputeInput{
		Employee: testEmployee("6200", "0"),
		Period: payroll.NewPeriod(
			payroll.NewDate(2025, time.March, 1),
			payroll.NewDate(2025, time.March, 15)),
	}

	r, err := payroll.Compute(in)
	require.NoError(t, err)

	// dailyRate uses the 15-day period; overtimeRate uses the 31-day month.
	assert.True(t, r.DailyRate.Equal(dec("413.33")), "dailyRate = %v", r.DailyRate)
	assert.True(t, r.HourlyRate.Equal(dec("51.67")), "hourlyRate = %v", r.HourlyRate)
	assert.True(t, r.OvertimeRate.Equal(dec("25")), "overtimeRate = %v", r.OvertimeRate)
}

func TestCompute_AllAdjustments(t *testing.T) {
	// GIVEN: Overtime, a Friday worked, lateness, and all money knobs set
	in := payroll.ComputeInput{
		Employee: testEmployee("6000", "0"),
		Period:   payroll.FullMonth(2025, time.April),
		Attendance: payroll.Summary{
			HolidayAttendanceDays: 1,
			OvertimeHours:         dec("2"),
			LateHours:             dec("1"),
		},
		Manual:    []payroll.ManualDeduction{{Label: "uniform", Value: dec("50")}},
		Penalties: dec("100"),
		Rewards:   dec("250"),
		Insurance: dec("75"),
	}

	r, err := payroll.Compute(in)
	require.NoError(t, err)

	// dailyRate 200, hourlyRate 25, overtimeRate 25
	// + 50 overtime + 250 rewards + 200 friday bonus
	// - 100 penalties - 75 insurance - 25 late - 50 manual
	assert.True(t, r.OvertimePay.Equal(dec("50")), "overtimePay = %v", r.OvertimePay)
	assert.True(t, r.FridayBonus.Equal(dec("200")), "fridayBonus = %v", r.FridayBonus)
	assert.True(t, r.LateDeduction.Equal(dec("25")), "late = %v", r.LateDeduction)
	assert.True(t, r.ManualDeduction.Equal(dec("50")), "manual = %v", r.ManualDeduction)
	assert.True(t, r.NetPay.Equal(dec("6250")), "netPay = %v", r.NetPay)
}

// =============================================================================
// LEDGER ORDERING AND LOAN DUES
// =============================================================================

func TestCompute_LedgerOrder_AbsenceThenLoansThenManual(t *testing.T) {
	in := payroll.ComputeInput{
		Employee:   testEmployee("6000", "0"),
		Period:     payroll.FullMonth(2025, time.April),
		Attendance: payroll.Summary{AbsentDays: 1},
		LoanDues: []payroll.Deduction{
			payroll.LoanScheduleDeduction{LoanID: "loan-1", ScheduleIndex: 0, Value: dec("333.33")},
		},
		Manual: []payroll.ManualDeduction{{Label: "canteen", Value: dec("20")}},
	}

	r, err := payroll.Compute(in)
	require.NoError(t, err)
	require.Len(t, r.Deductions, 3)

	assert.Equal(t, payroll.SourceAttendance, r.Deductions[0].Source())
	assert.Equal(t, payroll.SourceLoan, r.Deductions[1].Source())
	assert.Equal(t, payroll.SourceManual, r.Deductions[2].Source())

	assert.True(t, r.LoanDeduction.Equal(dec("333.33")))
	// 6000 - 200 absence - 333.33 loan - 20 manual
	assert.True(t, r.NetPay.Equal(dec("5446.67")), "netPay = %v", r.NetPay)
}

// =============================================================================
// SANITIZATION AND VALIDATION
// =============================================================================

func TestCompute_NegativeInputs_ClampedToZero(t *testing.T) {
	base := payroll.ComputeInput{
		Employee: testEmployee("6000", "0"),
		Period:   payroll.FullMonth(2025, time.April),
	}

	withNegatives := base
	withNegatives.Attendance = payroll.Summary{
		AbsentDays:    -3,
		OvertimeHours: dec("-2"),
		LateHours:     dec("-1"),
	}
	withNegatives.Penalties = dec("-100")
	withNegatives.Rewards = dec("-250")
	withNegatives.Insurance = dec("-75")

	clean, err := payroll.Compute(base)
	require.NoError(t, err)
	dirty, err := payroll.Compute(withNegatives)
	require.NoError(t, err)

	assert.True(t, dirty.NetPay.Equal(clean.NetPay),
		"negative inputs must behave as zero: %v vs %v", dirty.NetPay, clean.NetPay)
	assert.Empty(t, dirty.Deductions)
}

func TestCompute_MissingEmployee_Rejected(t *testing.T) {
	_, err := payroll.Compute(payroll.ComputeInput{
		Period: payroll.FullMonth(2025, time.April),
	})
	assert.ErrorIs(t, err, payroll.ErrEmployeeNotFound)
}

func TestCompute_InvalidPeriod_Rejected(t *testing.T) {
	_, err := payroll.Compute(payroll.ComputeInput{
		Employee: testEmployee("6000", "0"),
		Period: payroll.NewPeriod(
			payroll.NewDate(2025, time.April, 30),
			payroll.NewDate(2025, time.April, 1)),
	})
	assert.ErrorIs(t, err, payroll.ErrInvalidRange)
	assert.True(t, payroll.IsClientError(err))
}

// =============================================================================
// IDEMPOTENCE
// =============================================================================

func TestCompute_Idempotent(t *testing.T) {
	// GIVEN: A fully loaded input
	in := payroll.ComputeInput{
		Employee: testEmployee("7321.45", "250.10"),
		Period:   payroll.FullMonth(2025, time.March),
		Attendance: payroll.Summary{
			AttendanceDays:        20,
			HolidayAttendanceDays: 2,
			AbsentDays:            5,
			OvertimeHours:         dec("3.5"),
			LateHours:             dec("1.2"),
			EarlyLeaveHours:       dec("0.8"),
		},
		LoanDues: []payroll.Deduction{
			payroll.LoanScheduleDeduction{LoanID: "loan-1", ScheduleIndex: 2, Value: dec("100")},
			payroll.LoanManualDeduction{LoanID: "loan-2", Value: dec("55.50")},
		},
		Manual:    []payroll.ManualDeduction{{Label: "gym", Value: dec("30")}},
		Penalties: dec("12.34"),
		Rewards:   dec("80"),
		Insurance: dec("45.67"),
	}

	// WHEN: Computing twice with unchanged inputs
	first, err := payroll.Compute(in)
	require.NoError(t, err)
	second, err := payroll.Compute(in)
	require.NoError(t, err)

	// THEN: Results are deeply identical, ledger included
	if !reflect.DeepEqual(first, second) {
		t.Errorf("compute is not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestBuildPayslip_CarriesInputsAndResult(t *testing.T) {
	in := payroll.ComputeInput{
		Employee:   testEmployee("6000", "300"),
		Period:     payroll.FullMonth(2025, time.April),
		Attendance: payroll.Summary{AbsentDays: 1, OvertimeHours: dec("2")},
		Insurance:  dec("50"),
	}
	r, err := payroll.Compute(in)
	require.NoError(t, err)

	p := payroll.BuildPayslip(in, r)
	assert.Equal(t, "emp-1", p.EmployeeID)
	assert.True(t, p.BasicSalary.Equal(dec("6000")))
	assert.True(t, p.Allowances.Equal(dec("300")))
	assert.True(t, p.OvertimeRate.Equal(r.OvertimeRate))
	assert.True(t, p.NetPay.Equal(r.NetPay))
	assert.Equal(t, r.Deductions, p.Deductions)
	assert.Equal(t, payroll.FullMonth(2025, time.April), p.Period())
}
