package payroll

import (
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/statutory"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== SETTINGS DTOs ==========

type SettingsResponse struct {
	CompanyID                  string `json:"company_id"`
	OvertimeEnabled            bool   `json:"overtime_enabled"`
	ReimbursementsInPayroll    bool   `json:"reimbursements_in_payroll"`
	ThrIncludesFixedAllowances bool   `json:"thr_includes_fixed_allowances"`
}

type UpdateSettingsRequest struct {
	OvertimeEnabled            *bool `json:"overtime_enabled,omitempty"`
	ReimbursementsInPayroll    *bool `json:"reimbursements_in_payroll,omitempty"`
	ThrIncludesFixedAllowances *bool `json:"thr_includes_fixed_allowances,omitempty"`
}

func (r *UpdateSettingsRequest) Validate() error {
	if r.OvertimeEnabled == nil && r.ReimbursementsInPayroll == nil && r.ThrIncludesFixedAllowances == nil {
		return validator.ValidationErrors{{Field: "body", Message: "at least one setting is required"}}
	}
	return nil
}

// ========== PERIOD DTOs ==========

type GeneratePayrollRequest struct {
	PeriodMonth int `json:"period_month"`
	PeriodYear  int `json:"period_year"`
}

func (r *GeneratePayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.PeriodMonth < 1 || r.PeriodMonth > 12 {
		errs = append(errs, validator.ValidationError{Field: "period_month", Message: "must be between 1 and 12"})
	}
	if r.PeriodYear < 2020 {
		errs = append(errs, validator.ValidationError{Field: "period_year", Message: "must be 2020 or later"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PeriodFilter struct {
	PeriodMonth *int    `json:"period_month,omitempty"`
	PeriodYear  *int    `json:"period_year,omitempty"`
	Status      *string `json:"status,omitempty"`
	Page        int     `json:"page"`
	Limit       int     `json:"limit"`
}

func (f *PeriodFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.PeriodMonth != nil && (*f.PeriodMonth < 1 || *f.PeriodMonth > 12) {
		errs = append(errs, validator.ValidationError{Field: "period_month", Message: "must be between 1 and 12"})
	}
	if f.Status != nil && !validator.IsInSlice(*f.Status, []string{string(PeriodStatusDraft), string(PeriodStatusPaid)}) {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "must be draft or paid"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type TotalsResponse struct {
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

type PeriodResponse struct {
	ID          string         `json:"id"`
	PeriodMonth int            `json:"period_month"`
	PeriodYear  int            `json:"period_year"`
	PeriodStart string         `json:"period_start"`
	PeriodEnd   string         `json:"period_end"`
	Status      string         `json:"status"`
	Totals      TotalsResponse `json:"totals"`
	FinalizedAt *string        `json:"finalized_at,omitempty"`
	FinalizedBy *string        `json:"finalized_by,omitempty"`
}

type ListPeriodResponse struct {
	Data       []PeriodResponse `json:"data"`
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
}

// ========== PAYSLIP DTOs ==========

type PayslipResponse struct {
	ID           string `json:"id"`
	PeriodID     string `json:"period_id"`
	EmployeeID   string `json:"employee_id"`
	EmployeeCode string `json:"employee_code"`
	EmployeeName string `json:"employee_name"`
	PeriodStart  string `json:"period_start"`
	PeriodEnd    string `json:"period_end"`

	BasicSalary     decimal.Decimal `json:"basic_salary"`
	FixedAllowances decimal.Decimal `json:"fixed_allowances"`
	DailyAllowances decimal.Decimal `json:"daily_allowances"`
	Components      []ComponentLine `json:"components"`
	DaysPresent     int             `json:"days_present"`
	OvertimeHours   decimal.Decimal `json:"overtime_hours"`
	OvertimePay     decimal.Decimal `json:"overtime_pay"`

	ReimbursementTotal      decimal.Decimal `json:"reimbursement_total"`
	ReimbursementsInPayroll bool            `json:"reimbursements_in_payroll"`

	TaxAllowance  decimal.Decimal `json:"tax_allowance"`
	GrossEarnings decimal.Decimal `json:"gross_earnings"`
	TaxableGross  decimal.Decimal `json:"taxable_gross"`

	BPJS         statutory.BPJSBreakdown `json:"bpjs"`
	EmployeeBPJS decimal.Decimal         `json:"employee_bpjs"`
	CompanyBPJS  decimal.Decimal         `json:"company_bpjs"`

	PTKPCode          string                   `json:"ptkp_code"`
	TERCategory       string                   `json:"ter_category,omitempty"`
	PPh21Detail       statutory.PPh21Breakdown `json:"pph21_detail"`
	Pph21             decimal.Decimal          `json:"pph21"`
	Pph21CompanyBorne decimal.Decimal          `json:"pph21_company_borne"`
	Pph21Shortfall    decimal.Decimal          `json:"pph21_shortfall"`
	Pph21Refund       bool                     `json:"pph21_refund"`

	LoanDeductions []LoanDeduction `json:"loan_deductions"`
	LoanDeduction  decimal.Decimal `json:"loan_deduction"`
	LoanShortfall  decimal.Decimal `json:"loan_shortfall"`

	NetSalary decimal.Decimal `json:"net_salary"`

	BankName          string `json:"bank_name"`
	BankAccountHolder string `json:"bank_account_holder"`
	BankAccountNumber string `json:"bank_account_number"`
}

// ========== EXPORT DTOs ==========

type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

func (f ExportFormat) Valid() bool {
	return f == ExportCSV || f == ExportXLSX
}

// Export is a rendered period. Empty marks a finalized period without payslips;
// Body is nil then.
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
	Empty       bool
}
