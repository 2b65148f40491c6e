package loan

import "context"

// LoanRepository defines data access methods for loans and their payments.
// All methods include companyID parameter to prevent cross-company data access attacks.
type LoanRepository interface {
	Create(ctx context.Context, account Account) (Account, error)
	GetByID(ctx context.Context, id string, companyID string) (Account, error)

	// GetByIDForUpdate locks the loan row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string, companyID string) (Account, error)

	List(ctx context.Context, companyID string, filter LoanFilter) ([]Account, int64, error)

	// ListActiveByEmployees returns active loans ordered oldest first.
	ListActiveByEmployees(ctx context.Context, companyID string, employeeIDs []string) ([]Account, error)

	Update(ctx context.Context, account Account) error

	CreatePayment(ctx context.Context, payment Payment) (Payment, error)
	ListPayments(ctx context.Context, loanID string, companyID string) ([]Payment, error)
}
