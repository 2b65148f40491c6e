package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/loan"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type loanRepository struct {
	db *database.DB
}

func NewLoanRepository(db *database.DB) loan.LoanRepository {
	return &loanRepository{db: db}
}

const loanColumns = `l.id, l.company_id, l.employee_id, l.principal, l.annual_rate, l.interest_type,
	l.term_months, l.start_date, l.installments_paid, l.remaining_balance, l.status, l.purpose,
	l.approved_by, l.approved_at, l.rejection_reason, l.created_at, l.updated_at, e.full_name`

func scanLoan(row pgx.Row) (loan.Account, error) {
	var a loan.Account
	err := row.Scan(
		&a.ID, &a.CompanyID, &a.EmployeeID, &a.Principal, &a.AnnualRate, &a.InterestType,
		&a.TermMonths, &a.StartDate, &a.InstallmentsPaid, &a.RemainingBalance, &a.Status, &a.Purpose,
		&a.ApprovedBy, &a.ApprovedAt, &a.RejectionReason, &a.CreatedAt, &a.UpdatedAt, &a.EmployeeName,
	)
	return a, err
}

func (r *loanRepository) Create(ctx context.Context, account loan.Account) (loan.Account, error) {
	q := GetQuerier(ctx, r.db)

	if account.ID == "" {
		account.ID = uuid.Must(uuid.NewV7()).String()
	}

	query := `
		INSERT INTO loans (
			id, company_id, employee_id, principal, annual_rate, interest_type,
			term_months, start_date, installments_paid, remaining_balance, status, purpose
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		account.ID, account.CompanyID, account.EmployeeID, account.Principal, account.AnnualRate, account.InterestType,
		account.TermMonths, account.StartDate, account.InstallmentsPaid, account.RemainingBalance, account.Status, account.Purpose,
	).Scan(&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return loan.Account{}, fmt.Errorf("failed to create loan: %w", err)
	}

	return account, nil
}

func (r *loanRepository) GetByID(ctx context.Context, id string, companyID string) (loan.Account, error) {
	return r.get(ctx, id, companyID, "")
}

// GetByIDForUpdate only locks the loan row; the employee row stays unlocked.
func (r *loanRepository) GetByIDForUpdate(ctx context.Context, id string, companyID string) (loan.Account, error) {
	return r.get(ctx, id, companyID, " FOR UPDATE OF l")
}

func (r *loanRepository) get(ctx context.Context, id, companyID, lock string) (loan.Account, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + loanColumns + `
		FROM loans l
		JOIN employees e ON e.id = l.employee_id
		WHERE l.id = $1 AND l.company_id = $2` + lock

	a, err := scanLoan(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return loan.Account{}, loan.ErrLoanNotFound
		}
		return loan.Account{}, fmt.Errorf("failed to get loan: %w", err)
	}
	return a, nil
}

func (r *loanRepository) List(ctx context.Context, companyID string, filter loan.LoanFilter) ([]loan.Account, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := " FROM loans l JOIN employees e ON e.id = l.employee_id WHERE l.company_id = $1"
	args := []interface{}{companyID}
	argIdx := 2

	if filter.EmployeeID != nil {
		baseQuery += fmt.Sprintf(" AND l.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Status != nil {
		baseQuery += fmt.Sprintf(" AND l.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	var totalCount int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*)"+baseQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count loans: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s%s
		ORDER BY l.created_at DESC
		LIMIT $%d OFFSET $%d`, loanColumns, baseQuery, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	accounts, err := r.query(ctx, q, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return accounts, totalCount, nil
}

func (r *loanRepository) ListActiveByEmployees(ctx context.Context, companyID string, employeeIDs []string) ([]loan.Account, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + loanColumns + `
		FROM loans l
		JOIN employees e ON e.id = l.employee_id
		WHERE l.company_id = $1 AND l.status = $2 AND l.employee_id = ANY($3)
		ORDER BY l.start_date, l.created_at, l.id
	`

	return r.query(ctx, q, query, companyID, loan.StatusActive, employeeIDs)
}

func (r *loanRepository) query(ctx context.Context, q database.Querier, query string, args ...interface{}) ([]loan.Account, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()

	var accounts []loan.Account
	for rows.Next() {
		a, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *loanRepository) Update(ctx context.Context, account loan.Account) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE loans
		SET start_date = $3, installments_paid = $4, remaining_balance = $5, status = $6,
			approved_by = $7, approved_at = $8, rejection_reason = $9, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
	`

	tag, err := q.Exec(ctx, query,
		account.ID, account.CompanyID, account.StartDate, account.InstallmentsPaid, account.RemainingBalance,
		account.Status, account.ApprovedBy, account.ApprovedAt, account.RejectionReason,
	)
	if err != nil {
		return fmt.Errorf("failed to update loan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return loan.ErrLoanNotFound
	}
	return nil
}

// ========== PAYMENTS ==========

func (r *loanRepository) CreatePayment(ctx context.Context, payment loan.Payment) (loan.Payment, error) {
	q := GetQuerier(ctx, r.db)

	if payment.ID == "" {
		payment.ID = uuid.Must(uuid.NewV7()).String()
	}

	query := `
		INSERT INTO loan_payments (
			id, loan_id, company_id, installment_number, amount, principal_portion,
			interest_portion, source, payroll_period_id, paid_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`

	err := q.QueryRow(ctx, query,
		payment.ID, payment.LoanID, payment.CompanyID, payment.InstallmentNumber, payment.Amount, payment.PrincipalPortion,
		payment.InterestPortion, payment.Source, payment.PayrollPeriodID, payment.PaidAt,
	).Scan(&payment.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "uk_loan_payment_installment" {
			return loan.Payment{}, loan.ErrInstallmentExists
		}
		return loan.Payment{}, fmt.Errorf("failed to create loan payment: %w", err)
	}

	return payment, nil
}

func (r *loanRepository) ListPayments(ctx context.Context, loanID string, companyID string) ([]loan.Payment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, loan_id, company_id, installment_number, amount, principal_portion,
			   interest_portion, source, payroll_period_id, paid_at, created_at
		FROM loan_payments
		WHERE loan_id = $1 AND company_id = $2
		ORDER BY installment_number
	`

	rows, err := q.Query(ctx, query, loanID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list loan payments: %w", err)
	}
	defer rows.Close()

	var payments []loan.Payment
	for rows.Next() {
		var p loan.Payment
		if err := rows.Scan(
			&p.ID, &p.LoanID, &p.CompanyID, &p.InstallmentNumber, &p.Amount, &p.PrincipalPortion,
			&p.InterestPortion, &p.Source, &p.PayrollPeriodID, &p.PaidAt, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan loan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return payments, nil
}
