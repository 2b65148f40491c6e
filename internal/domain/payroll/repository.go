package payroll

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/statutory"
)

// PayrollRepository defines data access methods for payroll.
// All methods include companyID parameter to prevent cross-company data access attacks.
type PayrollRepository interface {
	// Settings
	GetSettings(ctx context.Context, companyID string) (Settings, error)
	UpsertSettings(ctx context.Context, settings Settings) (Settings, error)

	// Periods
	PeriodExists(ctx context.Context, companyID string, month, year int) (bool, error)
	// CreatePeriod inserts the period unless one exists for the same company and month,
	// in which case it returns ErrDuplicatePeriod.
	CreatePeriod(ctx context.Context, period Period) (Period, error)
	GetPeriodByID(ctx context.Context, id string, companyID string) (Period, error)
	GetPeriodByIDForUpdate(ctx context.Context, id string, companyID string) (Period, error)
	ListPeriods(ctx context.Context, companyID string, filter PeriodFilter) ([]Period, int64, error)
	UpdatePeriod(ctx context.Context, period Period) error

	// Payslips
	CreatePayslips(ctx context.Context, payslips []Payslip) error
	DeletePayslips(ctx context.Context, periodID string, companyID string) error
	ListPayslips(ctx context.Context, periodID string, companyID string) ([]Payslip, error)
	GetPayslipByID(ctx context.Context, id string, companyID string) (Payslip, error)

	// Aggregations
	// YearToDate sums the payslips of earlier months in year, keyed by employee id.
	YearToDate(ctx context.Context, companyID string, year, beforeMonth int, employeeIDs []string) (map[string]statutory.YearToDate, error)
}

// ReimbursementRepository reads approved reimbursements.
type ReimbursementRepository interface {
	ListApproved(ctx context.Context, companyID string, start, end time.Time, employeeIDs []string) ([]Reimbursement, error)
}
