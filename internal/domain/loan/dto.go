package loan

import (
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== REQUEST DTOs ==========

type CreateLoanRequest struct {
	EmployeeID   string          `json:"employee_id" validate:"required,uuid7"`
	Principal    decimal.Decimal `json:"principal" validate:"dpos"`
	AnnualRate   decimal.Decimal `json:"annual_rate" validate:"dnonneg"`
	InterestType string          `json:"interest_type" validate:"oneof=flat reducing"`
	TermMonths   int             `json:"term_months" validate:"min=1,max=120"`
	Purpose      *string         `json:"purpose,omitempty"`
}

func (r *CreateLoanRequest) Validate() error {
	return validator.Struct(r)
}

type RejectLoanRequest struct {
	ID     string `json:"-"`
	Reason string `json:"reason" validate:"required"`
}

func (r *RejectLoanRequest) Validate() error {
	return validator.Struct(r)
}

type DisburseLoanRequest struct {
	ID        string `json:"-"`
	StartDate string `json:"start_date" validate:"required,date"`
}

func (r *DisburseLoanRequest) Validate() error {
	return validator.Struct(r)
}

type RecordPaymentRequest struct {
	LoanID string          `json:"-"`
	Amount decimal.Decimal `json:"amount" validate:"dpos"`
	PaidAt string          `json:"paid_at,omitempty" validate:"omitempty,date"`
}

func (r *RecordPaymentRequest) Validate() error {
	return validator.Struct(r)
}

type LoanFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Status     *string `json:"status,omitempty"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
}

// ========== RESPONSE DTOs ==========

type LoanResponse struct {
	ID               string          `json:"id"`
	EmployeeID       string          `json:"employee_id"`
	EmployeeName     string          `json:"employee_name,omitempty"`
	Principal        decimal.Decimal `json:"principal"`
	AnnualRate       decimal.Decimal `json:"annual_rate"`
	InterestType     string          `json:"interest_type"`
	TermMonths       int             `json:"term_months"`
	StartDate        *string         `json:"start_date,omitempty"`
	InstallmentsPaid int             `json:"installments_paid"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	Status           string          `json:"status"`
	Purpose          *string         `json:"purpose,omitempty"`
	RejectionReason  *string         `json:"rejection_reason,omitempty"`
	ApprovedAt       *string         `json:"approved_at,omitempty"`
}

type ListLoanResponse struct {
	Data       []LoanResponse `json:"data"`
	TotalCount int64          `json:"total_count"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
}

type ScheduleResponse struct {
	Loan           LoanResponse    `json:"loan"`
	Entries        []ScheduleEntry `json:"entries"`
	TotalPrincipal decimal.Decimal `json:"total_principal"`
	TotalInterest  decimal.Decimal `json:"total_interest"`
	TotalPayable   decimal.Decimal `json:"total_payable"`
}

type PaymentResponse struct {
	ID                string          `json:"id"`
	LoanID            string          `json:"loan_id"`
	InstallmentNumber int             `json:"installment_number"`
	Amount            decimal.Decimal `json:"amount"`
	PrincipalPortion  decimal.Decimal `json:"principal_portion"`
	InterestPortion   decimal.Decimal `json:"interest_portion"`
	Source            string          `json:"source"`
	PayrollPeriodID   *string         `json:"payroll_period_id,omitempty"`
	PaidAt            string          `json:"paid_at"`
	Clamped           bool            `json:"clamped,omitempty"`
	Excess            decimal.Decimal `json:"excess,omitzero"`
	RemainingBalance  decimal.Decimal `json:"remaining_balance"`
	LoanStatus        string          `json:"loan_status"`
}
