package payroll

import (
	"context"
	"fmt"
	"runtime"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/statutory"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/money"
	attendancesvc "github.com/cmlabs-hris/hris-payroll-go/internal/service/attendance"
	loansvc "github.com/cmlabs-hris/hris-payroll-go/internal/service/loan"
	statutorysvc "github.com/cmlabs-hris/hris-payroll-go/internal/service/statutory"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Engine turns a payroll snapshot into payslips. It has no side effects.
type Engine struct {
	calc    *statutorysvc.Calculator
	workers int
}

func NewEngine(calc *statutorysvc.Calculator, workers int) *Engine {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Engine{calc: calc, workers: workers}
}

// Run computes one payslip per roster entry. Any failure aborts the whole run with an
// EmployeeCalculationError.
func (e *Engine) Run(ctx context.Context, in payroll.RunInput) (payroll.RunResult, error) {
	if in.Month < 1 || in.Month > 12 {
		return payroll.RunResult{}, fmt.Errorf("%w: month must be between 1 and 12", payroll.ErrInvalidPeriod)
	}

	payslips := make([]payroll.Payslip, len(in.Roster))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, emp := range in.Roster {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			slip, err := e.payslip(in, emp)
			if err != nil {
				return &payroll.EmployeeCalculationError{EmployeeID: emp.ID, Err: err}
			}
			payslips[i] = slip
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return payroll.RunResult{}, err
	}

	// Reduce in roster order so totals do not depend on scheduling.
	var totals payroll.Totals
	for _, p := range payslips {
		totals.Add(p)
	}

	return payroll.RunResult{Payslips: payslips, Totals: totals}, nil
}

func (e *Engine) payslip(in payroll.RunInput, emp employee.PayProfile) (payroll.Payslip, error) {
	if emp.BaseSalary.IsNegative() {
		return payroll.Payslip{}, employee.ErrInvalidBaseSalary
	}

	rs, err := e.calc.Ruleset(in.Year, in.Month)
	if err != nil {
		return payroll.Payslip{}, err
	}

	start, end := payroll.Bounds(in.Year, in.Month)
	summary := in.Attendance[emp.ID]
	base := money.Rupiah(emp.BaseSalary)

	slip := payroll.Payslip{
		PeriodID:          in.PeriodID,
		CompanyID:         in.CompanyID,
		EmployeeID:        emp.ID,
		EmployeeCode:      emp.EmployeeCode,
		EmployeeName:      emp.FullName,
		PeriodStart:       start,
		PeriodEnd:         end,
		BasicSalary:       base,
		FixedAllowances:   decimal.Zero,
		DailyAllowances:   decimal.Zero,
		Components:        make([]payroll.ComponentLine, 0, len(emp.Components)),
		DaysPresent:       summary.DaysPresent,
		OvertimeHours:     summary.OvertimeHours,
		OvertimePay:       decimal.Zero,
		LoanDeductions:    []payroll.LoanDeduction{},
		LoanDeduction:     decimal.Zero,
		LoanShortfall:     decimal.Zero,
		Pph21Shortfall:    decimal.Zero,
		BankName:          emp.BankName,
		BankAccountHolder: emp.BankAccountHolderName,
		BankAccountNumber: emp.BankAccountNumber,
	}
	if slip.OvertimeHours.IsZero() {
		slip.OvertimeHours = decimal.Zero
	}

	// Earnings
	for _, c := range emp.Components {
		amount, err := c.MonthlyAmount(base, summary.DaysPresent)
		if err != nil {
			return payroll.Payslip{}, err
		}
		if c.Daily() {
			slip.DailyAllowances = slip.DailyAllowances.Add(amount)
		} else {
			slip.FixedAllowances = slip.FixedAllowances.Add(amount)
		}
		slip.Components = append(slip.Components, payroll.ComponentLine{
			ComponentID: c.ID,
			Name:        c.Name,
			Strategy:    c.Strategy,
			Amount:      amount,
		})
	}

	if in.Settings.OvertimeEnabled {
		slip.OvertimePay, err = attendancesvc.PeriodOvertimePay(summary, base, rs.Overtime)
		if err != nil {
			return payroll.Payslip{}, err
		}
	}

	slip.ReimbursementTotal = payroll.SumReimbursements(in.Reimbursements[emp.ID])
	slip.ReimbursementsInPayroll = in.Settings.ReimbursementsInPayroll

	earned := money.Sum(base, slip.FixedAllowances, slip.DailyAllowances, slip.OvertimePay)

	// Statutory deductions
	breakdown, err := e.calc.Calculate(statutory.Input{
		GrossIncome: earned,
		Profile:     emp.Tax,
		Month:       in.Month,
		Year:        in.Year,
		YearToDate:  in.YearToDate[emp.ID],
	})
	if err != nil {
		return payroll.Payslip{}, err
	}

	pph := breakdown.PPh21
	slip.BPJS = breakdown.BPJS
	slip.EmployeeBPJS = breakdown.BPJS.EmployeeTotal
	slip.CompanyBPJS = breakdown.BPJS.CompanyTotal
	slip.PTKPCode = pph.PTKP
	slip.TERCategory = pph.Category
	slip.PPh21 = pph
	slip.TaxAllowance = pph.TaxAllowance
	slip.Pph21 = pph.Withheld
	slip.Pph21CompanyBorne = pph.CompanyBorne
	slip.Pph21Refund = pph.Refund

	slip.TaxableGross = earned.Add(slip.TaxAllowance)
	slip.GrossEarnings = slip.TaxableGross
	if slip.ReimbursementsInPayroll {
		slip.GrossEarnings = slip.GrossEarnings.Add(slip.ReimbursementTotal)
	}

	// Withholding cannot take pay below zero; the uncollected part is carried as a shortfall.
	available := money.NonNegative(slip.GrossEarnings.Sub(slip.EmployeeBPJS))
	if slip.Pph21.GreaterThan(available) {
		slip.Pph21Shortfall = slip.Pph21.Sub(available)
		slip.Pph21 = available
	}

	// Loan installments, oldest loan first
	remaining := slip.GrossEarnings.Sub(slip.EmployeeBPJS).Sub(slip.Pph21)
	for _, acct := range in.Loans[emp.ID] {
		due, err := loansvc.NextDue(acct)
		if err != nil {
			return payroll.Payslip{}, fmt.Errorf("loan %s: %w", acct.ID, err)
		}
		if !due.Total.IsPositive() {
			continue
		}

		deducted := decimal.Min(due.Total, money.NonNegative(remaining))
		line := payroll.LoanDeduction{
			LoanID:      acct.ID,
			Installment: due.Installment,
			Due:         due.Total,
			Deducted:    deducted,
			Shortfall:   due.Total.Sub(deducted),
			Status:      payroll.LoanFullyDeducted,
		}
		if line.Shortfall.IsPositive() {
			line.Status = payroll.LoanPartiallyDeducted
		}

		slip.LoanDeductions = append(slip.LoanDeductions, line)
		slip.LoanDeduction = slip.LoanDeduction.Add(deducted)
		slip.LoanShortfall = slip.LoanShortfall.Add(line.Shortfall)
		remaining = remaining.Sub(deducted)
	}

	slip.NetSalary = slip.GrossEarnings.Sub(slip.EmployeeBPJS).Sub(slip.Pph21).Sub(slip.LoanDeduction)

	return slip, nil
}
