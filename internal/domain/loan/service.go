package loan

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type LoanService interface {
	CreateLoan(ctx context.Context, req CreateLoanRequest) (LoanResponse, error)
	GetLoan(ctx context.Context, id string) (LoanResponse, error)
	ListLoans(ctx context.Context, filter LoanFilter) (ListLoanResponse, error)

	Approve(ctx context.Context, id string) (LoanResponse, error)
	Reject(ctx context.Context, req RejectLoanRequest) (LoanResponse, error)
	Cancel(ctx context.Context, id string) (LoanResponse, error)
	Disburse(ctx context.Context, req DisburseLoanRequest) (LoanResponse, error)

	GetSchedule(ctx context.Context, id string) (ScheduleResponse, error)
	RecordPayment(ctx context.Context, req RecordPaymentRequest) (PaymentResponse, error)
	ListPayments(ctx context.Context, id string) ([]PaymentResponse, error)

	// ApplyPayrollDeduction books installment as deducted by a finalized payroll period.
	// It fails with ErrInstallmentMismatch when installment is no longer the next one due.
	// Amounts above what is owed are clamped.
	ApplyPayrollDeduction(ctx context.Context, companyID, loanID string, installment int, amount decimal.Decimal, periodID string, paidAt time.Time) (Payment, error)
}
