package payroll

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/compensation"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/loan"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/statutory"
	"github.com/cmlabs-hris/hris-payroll-go/internal/fixtures"
	statutorysvc "github.com/cmlabs-hris/hris-payroll-go/internal/service/statutory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rp(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func assertRp(t *testing.T, want int64, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, rp(want).Equal(got), append([]interface{}{"want %d, got %s", want, got.String()}, msgAndArgs...)...)
}

func newTestEngine(t *testing.T, workers int) *Engine {
	t.Helper()
	book, err := statutory.NewRulesetBook(fixtures.DefaultRuleset())
	require.NoError(t, err)
	return NewEngine(statutorysvc.NewCalculator(book), workers)
}

func payProfile(id string, base int64, bpjs statutory.BPJSEnrollment) employee.PayProfile {
	return employee.PayProfile{
		ID:               id,
		CompanyID:        "company-1",
		EmployeeCode:     "EMP-" + id,
		FullName:         "Employee " + id,
		HireDate:         time.Date(2022, time.March, 1, 0, 0, 0, 0, time.UTC),
		EmploymentType:   employee.EmploymentTypePermanent,
		EmploymentStatus: employee.EmploymentStatusActive,
		BaseSalary:       rp(base),
		Tax: statutory.TaxProfile{
			PTKP:             statutory.PTKPTK0,
			TaxConfig:        statutory.TaxConfigGross,
			EmploymentStatus: statutory.EmploymentPermanent,
			BPJS:             bpjs,
		},
		BankName:              "BCA",
		BankAccountHolderName: "Employee " + id,
		BankAccountNumber:     "123456789",
	}
}

func activeLoan(id, employeeID string, principal int64) loan.Account {
	start := time.Date(2024, time.January, 25, 0, 0, 0, 0, time.UTC)
	return loan.Account{
		ID:               id,
		CompanyID:        "company-1",
		EmployeeID:       employeeID,
		Principal:        rp(principal),
		AnnualRate:       decimal.Zero,
		InterestType:     loan.InterestFlat,
		TermMonths:       12,
		StartDate:        &start,
		RemainingBalance: rp(principal),
		Status:           loan.StatusActive,
	}
}

func juneInput(roster ...employee.PayProfile) payroll.RunInput {
	return payroll.RunInput{
		CompanyID:      "company-1",
		PeriodID:       "period-1",
		Month:          6,
		Year:           2024,
		Roster:         roster,
		Attendance:     map[string]attendance.Summary{},
		Loans:          map[string][]loan.Account{},
		Reimbursements: map[string][]payroll.Reimbursement{},
		YearToDate:     map[string]statutory.YearToDate{},
		Settings:       payroll.DefaultSettings("company-1"),
	}
}

func assertNetIdentity(t *testing.T, p payroll.Payslip) {
	t.Helper()
	want := p.GrossEarnings.Sub(p.EmployeeBPJS).Sub(p.Pph21).Sub(p.LoanDeduction)
	assert.True(t, want.Equal(p.NetSalary), "net identity for %s: want %s, got %s", p.EmployeeID, want, p.NetSalary)
	assert.False(t, p.NetSalary.IsNegative(), "net of %s is negative", p.EmployeeID)
	assert.False(t, p.GrossEarnings.IsNegative(), "gross of %s is negative", p.EmployeeID)
}

func TestEngineRun_JuneExample(t *testing.T) {
	engine := newTestEngine(t, 2)

	result, err := engine.Run(context.Background(), juneInput(payProfile("e1", 12000000, statutory.FullEnrollment())))
	require.NoError(t, err)
	require.Len(t, result.Payslips, 1)

	p := result.Payslips[0]
	assertRp(t, 12000000, p.GrossEarnings)
	assertRp(t, 12000000, p.TaxableGross)
	assertRp(t, 460423, p.EmployeeBPJS)
	assertRp(t, 1189646, p.CompanyBPJS)
	assertRp(t, 403885, p.Pph21)
	assertRp(t, 11135692, p.NetSalary)
	assert.Equal(t, statutory.TERCategoryA, p.TERCategory)
	assert.Equal(t, statutory.PTKPTK0, p.PTKPCode)
	assert.Equal(t, "period-1", p.PeriodID)
	assert.Equal(t, time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC), p.PeriodEnd)
	assertNetIdentity(t, p)

	assert.Equal(t, 1, result.Totals.EmployeeCount)
	assertRp(t, 11135692, result.Totals.NetSalary)
}

func TestEngineRun_Components(t *testing.T) {
	emp := payProfile("e1", 10000000, statutory.BPJSEnrollment{})
	emp.Components = []compensation.PayComponent{
		{ID: "c1", Name: "Tunjangan Transport", Strategy: compensation.StrategyFixed, Amount: rp(500000)},
		{ID: "c2", Name: "Tunjangan Jabatan", Strategy: compensation.StrategyPercentageOfBase, Rate: rp(10)},
		{ID: "c3", Name: "Uang Makan", Strategy: compensation.StrategyPerDiem, Amount: rp(50000)},
	}
	in := juneInput(emp)
	in.Attendance["e1"] = attendance.Summary{EmployeeID: "e1", DaysPresent: 20}

	result, err := newTestEngine(t, 1).Run(context.Background(), in)
	require.NoError(t, err)

	p := result.Payslips[0]
	assertRp(t, 1500000, p.FixedAllowances)
	assertRp(t, 1000000, p.DailyAllowances)
	assertRp(t, 12500000, p.GrossEarnings)
	require.Len(t, p.Components, 3)
	assertRp(t, 1000000, p.Components[1].Amount)
	assert.Equal(t, 20, p.DaysPresent)
	assertNetIdentity(t, p)
}

func TestEngineRun_Overtime(t *testing.T) {
	in := juneInput(payProfile("e1", 17300000, statutory.BPJSEnrollment{}))
	in.Attendance["e1"] = attendance.Summary{
		EmployeeID:    "e1",
		DaysPresent:   21,
		OvertimeDays:  []attendance.OvertimeDay{{Date: time.Date(2024, time.June, 5, 0, 0, 0, 0, time.UTC), Hours: rp(3)}},
		OvertimeHours: rp(3),
	}

	result, err := newTestEngine(t, 1).Run(context.Background(), in)
	require.NoError(t, err)
	assertRp(t, 550000, result.Payslips[0].OvertimePay)
	assertRp(t, 17850000, result.Payslips[0].GrossEarnings)

	in.Settings.OvertimeEnabled = false
	result, err = newTestEngine(t, 1).Run(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, result.Payslips[0].OvertimePay.IsZero())
	assertRp(t, 17300000, result.Payslips[0].GrossEarnings)
}

func TestEngineRun_Reimbursements(t *testing.T) {
	in := juneInput(payProfile("e1", 8000000, statutory.FullEnrollment()))
	in.Reimbursements["e1"] = []payroll.Reimbursement{
		{ID: "r1", EmployeeID: "e1", Amount: rp(500000)},
		{ID: "r2", EmployeeID: "e1", Amount: rp(250000)},
	}

	bundled, err := newTestEngine(t, 1).Run(context.Background(), in)
	require.NoError(t, err)

	in.Settings.ReimbursementsInPayroll = false
	separate, err := newTestEngine(t, 1).Run(context.Background(), in)
	require.NoError(t, err)

	b, s := bundled.Payslips[0], separate.Payslips[0]
	assertRp(t, 750000, b.ReimbursementTotal)
	assertRp(t, 750000, s.ReimbursementTotal)
	assertRp(t, 8750000, b.GrossEarnings)
	assertRp(t, 8000000, s.GrossEarnings)
	assertRp(t, 8000000, b.TaxableGross)
	assert.True(t, b.Pph21.Equal(s.Pph21), "reimbursements are not taxed")
	assert.True(t, b.EmployeeBPJS.Equal(s.EmployeeBPJS))
	assertNetIdentity(t, b)
	assertNetIdentity(t, s)
}

func TestEngineRun_LoanDeductions(t *testing.T) {
	in := juneInput(payProfile("e1", 5000000, statutory.BPJSEnrollment{}))
	in.Loans["e1"] = []loan.Account{
		activeLoan("loan-old", "e1", 12000000),
		activeLoan("loan-new", "e1", 60000000),
	}

	result, err := newTestEngine(t, 1).Run(context.Background(), in)
	require.NoError(t, err)

	p := result.Payslips[0]
	require.Len(t, p.LoanDeductions, 2)

	first, second := p.LoanDeductions[0], p.LoanDeductions[1]
	assert.Equal(t, "loan-old", first.LoanID)
	assert.Equal(t, payroll.LoanFullyDeducted, first.Status)
	assertRp(t, 1000000, first.Deducted)
	assert.True(t, first.Shortfall.IsZero())

	assert.Equal(t, payroll.LoanPartiallyDeducted, second.Status)
	assertRp(t, 5000000, second.Due)
	assertRp(t, 4000000, second.Deducted)
	assertRp(t, 1000000, second.Shortfall)

	assertRp(t, 5000000, p.LoanDeduction)
	assertRp(t, 1000000, p.LoanShortfall)
	assert.True(t, p.NetSalary.IsZero())
	assertNetIdentity(t, p)
}

func TestEngineRun_DecemberShortfall(t *testing.T) {
	in := juneInput(payProfile("e1", 5000000, statutory.BPJSEnrollment{}))
	in.Month = 12
	in.YearToDate["e1"] = statutory.YearToDate{Gross: rp(200000000), EmployeeBPJS: decimal.Zero, Pph21Withheld: decimal.Zero}

	result, err := newTestEngine(t, 1).Run(context.Background(), in)
	require.NoError(t, err)

	p := result.Payslips[0]
	assertRp(t, 16650000, p.PPh21.Tax)
	assertRp(t, 5000000, p.Pph21)
	assertRp(t, 11650000, p.Pph21Shortfall)
	assert.True(t, p.NetSalary.IsZero())
	assertNetIdentity(t, p)
}

func TestEngineRun_OrderAndTotalsAreDeterministic(t *testing.T) {
	var roster []employee.PayProfile
	for i := 0; i < 40; i++ {
		emp := payProfile(fmt.Sprintf("e%02d", i), int64(4000000+i*350000), statutory.FullEnrollment())
		if i%3 == 0 {
			emp.Tax.PTKP = statutory.PTKPK2
		}
		if i%5 == 0 {
			emp.Tax.TaxConfig = statutory.TaxConfigGrossUp
		}
		if i%7 == 0 {
			emp.Tax.TaxConfig = statutory.TaxConfigNett
		}
		roster = append(roster, emp)
	}
	in := juneInput(roster...)
	in.Loans["e03"] = []loan.Account{activeLoan("loan-1", "e03", 24000000)}

	first, err := newTestEngine(t, 8).Run(context.Background(), in)
	require.NoError(t, err)
	second, err := newTestEngine(t, 3).Run(context.Background(), in)
	require.NoError(t, err)

	require.Len(t, first.Payslips, len(roster))
	var sum payroll.Totals
	for i, p := range first.Payslips {
		assert.Equal(t, roster[i].ID, p.EmployeeID)
		assertNetIdentity(t, p)
		sum.Add(p)
	}
	assert.Equal(t, first.Totals, second.Totals)
	assert.True(t, sum.NetSalary.Equal(first.Totals.NetSalary))
	assert.True(t, sum.GrossEarnings.Equal(first.Totals.GrossEarnings))
	assert.Equal(t, len(roster), first.Totals.EmployeeCount)
}

func TestEngineRun_EmployeeErrorAbortsRun(t *testing.T) {
	bad := payProfile("e2", 9000000, statutory.FullEnrollment())
	bad.Tax.PTKP = "K/9"

	_, err := newTestEngine(t, 2).Run(context.Background(), juneInput(
		payProfile("e1", 9000000, statutory.FullEnrollment()),
		bad,
	))

	var calcErr *payroll.EmployeeCalculationError
	require.True(t, errors.As(err, &calcErr))
	assert.Equal(t, "e2", calcErr.EmployeeID)
	assert.ErrorIs(t, err, statutory.ErrInvalidTaxProfile)
}

func TestEngineRun_EmptyRoster(t *testing.T) {
	result, err := newTestEngine(t, 2).Run(context.Background(), juneInput())
	require.NoError(t, err)
	assert.Empty(t, result.Payslips)
	assert.Equal(t, 0, result.Totals.EmployeeCount)
}
