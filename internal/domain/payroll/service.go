package payroll

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/loan"
	"github.com/shopspring/decimal"
)

type PayrollService interface {
	// Settings
	GetSettings(ctx context.Context) (SettingsResponse, error)
	UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (SettingsResponse, error)

	// Runs
	RunPayroll(ctx context.Context, req GeneratePayrollRequest) (PeriodResponse, error)
	RegenerateDraft(ctx context.Context, periodID string) (PeriodResponse, error)
	FinalizePeriod(ctx context.Context, periodID string) (PeriodResponse, error)

	// Periods & payslips
	GetPeriod(ctx context.Context, periodID string) (PeriodResponse, error)
	ListPeriods(ctx context.Context, filter PeriodFilter) (ListPeriodResponse, error)
	ListPayslips(ctx context.Context, periodID string) ([]PayslipResponse, error)
	GetPayslip(ctx context.Context, payslipID string) (PayslipResponse, error)

	ExportPeriod(ctx context.Context, periodID string, format ExportFormat) (Export, error)
}

// LoanDeductionRecorder books the loan installments a finalized period deducted.
type LoanDeductionRecorder interface {
	ApplyPayrollDeduction(ctx context.Context, companyID, loanID string, installment int, amount decimal.Decimal, periodID string, paidAt time.Time) (loan.Payment, error)
}
