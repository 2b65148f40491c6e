package payroll

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/compensation"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/loan"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/statutory"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/money"
	"github.com/shopspring/decimal"
)

// Settings - Company payroll policy
type Settings struct {
	ID                         string
	CompanyID                  string
	OvertimeEnabled            bool
	ReimbursementsInPayroll    bool
	ThrIncludesFixedAllowances bool
	CreatedAt                  time.Time
	UpdatedAt                  time.Time
}

// DefaultSettings is used until a company saves its own.
func DefaultSettings(companyID string) Settings {
	return Settings{
		CompanyID:                  companyID,
		OvertimeEnabled:            true,
		ReimbursementsInPayroll:    true,
		ThrIncludesFixedAllowances: true,
	}
}

// PeriodStatus enum
type PeriodStatus string

const (
	PeriodStatusDraft PeriodStatus = "draft"
	PeriodStatusPaid  PeriodStatus = "paid"
)

// Totals are the element-wise sums of a period's payslips.
type Totals struct {
	EmployeeCount     int             `json:"employee_count"`
	BasicSalary       decimal.Decimal `json:"basic_salary"`
	FixedAllowances   decimal.Decimal `json:"fixed_allowances"`
	DailyAllowances   decimal.Decimal `json:"daily_allowances"`
	OvertimePay       decimal.Decimal `json:"overtime_pay"`
	Reimbursements    decimal.Decimal `json:"reimbursements"`
	TaxAllowance      decimal.Decimal `json:"tax_allowance"`
	GrossEarnings     decimal.Decimal `json:"gross_earnings"`
	EmployeeBPJS      decimal.Decimal `json:"employee_bpjs"`
	CompanyBPJS       decimal.Decimal `json:"company_bpjs"`
	Pph21             decimal.Decimal `json:"pph21"`
	Pph21CompanyBorne decimal.Decimal `json:"pph21_company_borne"`
	LoanDeduction     decimal.Decimal `json:"loan_deduction"`
	NetSalary         decimal.Decimal `json:"net_salary"`
}

// Add folds one payslip into the totals.
func (t *Totals) Add(p Payslip) {
	t.EmployeeCount++
	t.BasicSalary = t.BasicSalary.Add(p.BasicSalary)
	t.FixedAllowances = t.FixedAllowances.Add(p.FixedAllowances)
	t.DailyAllowances = t.DailyAllowances.Add(p.DailyAllowances)
	t.OvertimePay = t.OvertimePay.Add(p.OvertimePay)
	t.Reimbursements = t.Reimbursements.Add(p.ReimbursementTotal)
	t.TaxAllowance = t.TaxAllowance.Add(p.TaxAllowance)
	t.GrossEarnings = t.GrossEarnings.Add(p.GrossEarnings)
	t.EmployeeBPJS = t.EmployeeBPJS.Add(p.EmployeeBPJS)
	t.CompanyBPJS = t.CompanyBPJS.Add(p.CompanyBPJS)
	t.Pph21 = t.Pph21.Add(p.Pph21)
	t.Pph21CompanyBorne = t.Pph21CompanyBorne.Add(p.Pph21CompanyBorne)
	t.LoanDeduction = t.LoanDeduction.Add(p.LoanDeduction)
	t.NetSalary = t.NetSalary.Add(p.NetSalary)
}

// Period - One payroll run of a company for a calendar month
type Period struct {
	ID          string
	CompanyID   string
	Month       int
	Year        int
	PeriodStart time.Time
	PeriodEnd   time.Time
	Status      PeriodStatus
	Totals      Totals
	FinalizedAt *time.Time
	FinalizedBy *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Bounds returns the first and last day of a payroll month.
func Bounds(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, -1)
}

// LoanDeductionStatus tells whether a loan's due installment was covered by the payslip.
type LoanDeductionStatus string

const (
	LoanFullyDeducted     LoanDeductionStatus = "fully_deducted"
	LoanPartiallyDeducted LoanDeductionStatus = "partially_deducted"
)

// LoanDeduction is one loan installment taken from a payslip. Shortfall is the part
// of Due left for a later period.
type LoanDeduction struct {
	LoanID      string              `json:"loan_id"`
	Installment int                 `json:"installment"`
	Due         decimal.Decimal     `json:"due"`
	Deducted    decimal.Decimal     `json:"deducted"`
	Shortfall   decimal.Decimal     `json:"shortfall"`
	Status      LoanDeductionStatus `json:"status"`
}

// ComponentLine is the evaluated amount of one pay component.
type ComponentLine struct {
	ComponentID string                `json:"component_id"`
	Name        string                `json:"name"`
	Strategy    compensation.Strategy `json:"strategy"`
	Amount      decimal.Decimal       `json:"amount"`
}

// Payslip - One employee's result within a period
type Payslip struct {
	ID           string
	PeriodID     string
	CompanyID    string
	EmployeeID   string
	EmployeeCode string
	EmployeeName string
	PeriodStart  time.Time
	PeriodEnd    time.Time

	BasicSalary     decimal.Decimal
	FixedAllowances decimal.Decimal
	DailyAllowances decimal.Decimal
	Components      []ComponentLine
	DaysPresent     int
	OvertimeHours   decimal.Decimal
	OvertimePay     decimal.Decimal

	ReimbursementTotal      decimal.Decimal
	ReimbursementsInPayroll bool

	TaxAllowance  decimal.Decimal
	GrossEarnings decimal.Decimal
	TaxableGross  decimal.Decimal

	BPJS         statutory.BPJSBreakdown
	EmployeeBPJS decimal.Decimal
	CompanyBPJS  decimal.Decimal

	PTKPCode          statutory.PTKPCode
	TERCategory       statutory.TERCategory
	PPh21             statutory.PPh21Breakdown
	Pph21             decimal.Decimal
	Pph21CompanyBorne decimal.Decimal
	Pph21Shortfall    decimal.Decimal
	Pph21Refund       bool

	LoanDeductions []LoanDeduction
	LoanDeduction  decimal.Decimal
	LoanShortfall  decimal.Decimal

	NetSalary decimal.Decimal

	BankName          string
	BankAccountHolder string
	BankAccountNumber string

	CreatedAt time.Time
}

// Reimbursement - Approved expense claim paid with payroll
type Reimbursement struct {
	ID          string
	CompanyID   string
	EmployeeID  string
	Amount      decimal.Decimal
	Description string
	ApprovedAt  time.Time
}

// SumReimbursements adds claim amounts, rounded to whole rupiah.
func SumReimbursements(items []Reimbursement) decimal.Decimal {
	total := decimal.Zero
	for _, r := range items {
		total = total.Add(r.Amount)
	}
	return money.Rupiah(total)
}

// RunInput is the snapshot a payroll run computes from. Maps are keyed by employee id.
type RunInput struct {
	CompanyID      string
	PeriodID       string
	Month          int
	Year           int
	Roster         []employee.PayProfile
	Attendance     map[string]attendance.Summary
	Loans          map[string][]loan.Account
	Reimbursements map[string][]Reimbursement
	YearToDate     map[string]statutory.YearToDate
	Settings       Settings
}

// RunResult holds payslips in roster order and their totals.
type RunResult struct {
	Payslips []Payslip
	Totals   Totals
}
