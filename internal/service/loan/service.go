package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/loan"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/money"
	"github.com/shopspring/decimal"
)

type LoanServiceImpl struct {
	tx           database.Transactor
	loanRepo     loan.LoanRepository
	employeeRepo employee.EmployeeRepository
	policy       loan.OverpaymentPolicy
	logger       *slog.Logger
	now          func() time.Time
}

func NewLoanService(
	tx database.Transactor,
	loanRepo loan.LoanRepository,
	employeeRepo employee.EmployeeRepository,
	policy loan.OverpaymentPolicy,
	logger *slog.Logger,
) *LoanServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoanServiceImpl{
		tx:           tx,
		loanRepo:     loanRepo,
		employeeRepo: employeeRepo,
		policy:       policy,
		logger:       logger,
		now:          time.Now,
	}
}

var _ loan.LoanService = (*LoanServiceImpl)(nil)

// ========== LIFECYCLE ==========

func (s *LoanServiceImpl) CreateLoan(ctx context.Context, req loan.CreateLoanRequest) (loan.LoanResponse, error) {
	if err := req.Validate(); err != nil {
		return loan.LoanResponse{}, err
	}

	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return loan.LoanResponse{}, err
	}

	emp, err := s.employeeRepo.GetPayProfile(ctx, req.EmployeeID, claims.CompanyID)
	if err != nil {
		return loan.LoanResponse{}, err
	}
	if !emp.Active() {
		return loan.LoanResponse{}, employee.ErrEmployeeNotActive
	}

	principal := money.Rupiah(req.Principal)
	account := loan.Account{
		CompanyID:        claims.CompanyID,
		EmployeeID:       emp.ID,
		Principal:        principal,
		AnnualRate:       req.AnnualRate,
		InterestType:     loan.InterestType(req.InterestType),
		TermMonths:       req.TermMonths,
		RemainingBalance: principal,
		Status:           loan.StatusPending,
		Purpose:          req.Purpose,
	}
	if err := validateTerms(account); err != nil {
		return loan.LoanResponse{}, err
	}

	created, err := s.loanRepo.Create(ctx, account)
	if err != nil {
		return loan.LoanResponse{}, err
	}
	name := emp.FullName
	created.EmployeeName = &name

	return mapToLoanResponse(created), nil
}

func (s *LoanServiceImpl) GetLoan(ctx context.Context, id string) (loan.LoanResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return loan.LoanResponse{}, err
	}

	account, err := s.loanRepo.GetByID(ctx, id, claims.CompanyID)
	if err != nil {
		return loan.LoanResponse{}, err
	}
	return mapToLoanResponse(account), nil
}

func (s *LoanServiceImpl) ListLoans(ctx context.Context, filter loan.LoanFilter) (loan.ListLoanResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return loan.ListLoanResponse{}, err
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	accounts, total, err := s.loanRepo.List(ctx, claims.CompanyID, filter)
	if err != nil {
		return loan.ListLoanResponse{}, err
	}

	data := make([]loan.LoanResponse, 0, len(accounts))
	for _, a := range accounts {
		data = append(data, mapToLoanResponse(a))
	}
	return loan.ListLoanResponse{Data: data, TotalCount: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *LoanServiceImpl) Approve(ctx context.Context, id string) (loan.LoanResponse, error) {
	return s.transition(ctx, id, loan.StatusApproved, func(a *loan.Account, claims jwt.Claims) error {
		now := s.now()
		a.ApprovedBy = &claims.UserID
		a.ApprovedAt = &now
		return nil
	})
}

func (s *LoanServiceImpl) Reject(ctx context.Context, req loan.RejectLoanRequest) (loan.LoanResponse, error) {
	if err := req.Validate(); err != nil {
		return loan.LoanResponse{}, err
	}
	return s.transition(ctx, req.ID, loan.StatusRejected, func(a *loan.Account, _ jwt.Claims) error {
		a.RejectionReason = &req.Reason
		return nil
	})
}

func (s *LoanServiceImpl) Cancel(ctx context.Context, id string) (loan.LoanResponse, error) {
	return s.transition(ctx, id, loan.StatusCancelled, nil)
}

// Disburse activates an approved loan; installments fall due monthly from the start date.
func (s *LoanServiceImpl) Disburse(ctx context.Context, req loan.DisburseLoanRequest) (loan.LoanResponse, error) {
	if err := req.Validate(); err != nil {
		return loan.LoanResponse{}, err
	}
	start, _ := time.Parse("2006-01-02", req.StartDate)

	return s.transition(ctx, req.ID, loan.StatusActive, func(a *loan.Account, _ jwt.Claims) error {
		a.StartDate = &start
		a.RemainingBalance = a.Principal
		a.InstallmentsPaid = 0
		return nil
	})
}

// transition locks the loan, checks the status move and persists it in one transaction.
func (s *LoanServiceImpl) transition(ctx context.Context, id string, next loan.Status, mutate func(a *loan.Account, claims jwt.Claims) error) (loan.LoanResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return loan.LoanResponse{}, err
	}

	var updated loan.Account
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		account, err := s.loanRepo.GetByIDForUpdate(ctx, id, claims.CompanyID)
		if err != nil {
			return err
		}
		if !account.Status.CanTransition(next) {
			return fmt.Errorf("%w: %s -> %s", loan.ErrInvalidStatusTransition, account.Status, next)
		}
		account.Status = next
		if mutate != nil {
			if err := mutate(&account, claims); err != nil {
				return err
			}
		}
		if err := s.loanRepo.Update(ctx, account); err != nil {
			return err
		}
		updated = account
		return nil
	})
	if err != nil {
		return loan.LoanResponse{}, err
	}

	s.logger.InfoContext(ctx, "loan status changed",
		slog.String("company_id", claims.CompanyID),
		slog.String("loan_id", id),
		slog.String("status", string(next)),
	)
	return mapToLoanResponse(updated), nil
}

// ========== SCHEDULE & PAYMENTS ==========

func (s *LoanServiceImpl) GetSchedule(ctx context.Context, id string) (loan.ScheduleResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return loan.ScheduleResponse{}, err
	}

	account, err := s.loanRepo.GetByID(ctx, id, claims.CompanyID)
	if err != nil {
		return loan.ScheduleResponse{}, err
	}
	payments, err := s.loanRepo.ListPayments(ctx, id, claims.CompanyID)
	if err != nil {
		return loan.ScheduleResponse{}, err
	}

	entries, err := Schedule(account, payments)
	if err != nil {
		return loan.ScheduleResponse{}, err
	}

	resp := loan.ScheduleResponse{
		Loan:           mapToLoanResponse(account),
		Entries:        entries,
		TotalPrincipal: decimal.Zero,
		TotalInterest:  decimal.Zero,
		TotalPayable:   decimal.Zero,
	}
	for _, e := range entries {
		resp.TotalPrincipal = resp.TotalPrincipal.Add(e.Principal)
		resp.TotalInterest = resp.TotalInterest.Add(e.Interest)
		resp.TotalPayable = resp.TotalPayable.Add(e.Total)
	}
	return resp, nil
}

func (s *LoanServiceImpl) RecordPayment(ctx context.Context, req loan.RecordPaymentRequest) (loan.PaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return loan.PaymentResponse{}, err
	}

	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return loan.PaymentResponse{}, err
	}

	paidAt := s.now()
	if req.PaidAt != "" {
		paidAt, _ = time.Parse("2006-01-02", req.PaidAt)
	}

	result, err := s.applyLocked(ctx, claims.CompanyID, req.LoanID, 0, req.Amount, paidAt, s.policy, loan.PaymentSourceManual, nil)
	if err != nil {
		return loan.PaymentResponse{}, err
	}
	return mapToPaymentResponse(result), nil
}

// ApplyPayrollDeduction records a payroll-deducted installment. It joins the caller's
// transaction when there is one.
func (s *LoanServiceImpl) ApplyPayrollDeduction(ctx context.Context, companyID, loanID string, installment int, amount decimal.Decimal, periodID string, paidAt time.Time) (loan.Payment, error) {
	result, err := s.applyLocked(ctx, companyID, loanID, installment, amount, paidAt, loan.OverpaymentClamp, loan.PaymentSourcePayroll, &periodID)
	if err != nil {
		return loan.Payment{}, err
	}
	return result.Payment, nil
}

// applyLocked serializes payments per loan: the row stays locked until the ledger step
// and the payment insert commit together. A positive installment must be the next one
// due; zero books whatever is next.
func (s *LoanServiceImpl) applyLocked(
	ctx context.Context,
	companyID, loanID string,
	installment int,
	amount decimal.Decimal,
	paidAt time.Time,
	policy loan.OverpaymentPolicy,
	source loan.PaymentSource,
	periodID *string,
) (loan.PaymentResult, error) {
	var result loan.PaymentResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		account, err := s.loanRepo.GetByIDForUpdate(ctx, loanID, companyID)
		if err != nil {
			return err
		}
		if installment > 0 && account.InstallmentsPaid+1 != installment {
			return fmt.Errorf("%w: loan %s expected installment %d, got %d",
				loan.ErrInstallmentMismatch, loanID, account.InstallmentsPaid+1, installment)
		}

		result, err = ApplyPayment(account, amount, paidAt, policy)
		if err != nil {
			return err
		}
		result.Payment.Source = source
		result.Payment.PayrollPeriodID = periodID

		if err := s.loanRepo.Update(ctx, result.Account); err != nil {
			return err
		}
		created, err := s.loanRepo.CreatePayment(ctx, result.Payment)
		if err != nil {
			return err
		}
		result.Payment = created
		return nil
	})
	if err != nil {
		var over *loan.OverpaymentError
		if errors.As(err, &over) {
			s.logger.WarnContext(ctx, "loan overpayment rejected",
				slog.String("company_id", companyID),
				slog.String("loan_id", loanID),
				slog.String("amount", over.Amount.String()),
				slog.String("owed", over.Owed.String()),
			)
		}
		return loan.PaymentResult{}, err
	}

	s.logger.InfoContext(ctx, "loan payment recorded",
		slog.String("company_id", companyID),
		slog.String("loan_id", loanID),
		slog.String("source", string(source)),
		slog.Int("installment", result.Payment.InstallmentNumber),
		slog.String("amount", result.Payment.Amount.String()),
		slog.Bool("clamped", result.Clamped),
	)
	return result, nil
}

func (s *LoanServiceImpl) ListPayments(ctx context.Context, id string) ([]loan.PaymentResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	account, err := s.loanRepo.GetByID(ctx, id, claims.CompanyID)
	if err != nil {
		return nil, err
	}
	payments, err := s.loanRepo.ListPayments(ctx, id, claims.CompanyID)
	if err != nil {
		return nil, err
	}

	result := make([]loan.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		result = append(result, mapToPaymentResponse(loan.PaymentResult{Account: account, Payment: p, Excess: decimal.Zero}))
	}
	return result, nil
}

// ========== HELPERS ==========

func mapToLoanResponse(a loan.Account) loan.LoanResponse {
	var startDate, approvedAt *string
	if a.StartDate != nil {
		str := a.StartDate.Format("2006-01-02")
		startDate = &str
	}
	if a.ApprovedAt != nil {
		str := a.ApprovedAt.Format(time.RFC3339)
		approvedAt = &str
	}
	name := ""
	if a.EmployeeName != nil {
		name = *a.EmployeeName
	}

	return loan.LoanResponse{
		ID:               a.ID,
		EmployeeID:       a.EmployeeID,
		EmployeeName:     name,
		Principal:        a.Principal,
		AnnualRate:       a.AnnualRate,
		InterestType:     string(a.InterestType),
		TermMonths:       a.TermMonths,
		StartDate:        startDate,
		InstallmentsPaid: a.InstallmentsPaid,
		RemainingBalance: a.RemainingBalance,
		Status:           string(a.Status),
		Purpose:          a.Purpose,
		RejectionReason:  a.RejectionReason,
		ApprovedAt:       approvedAt,
	}
}

func mapToPaymentResponse(r loan.PaymentResult) loan.PaymentResponse {
	return loan.PaymentResponse{
		ID:                r.Payment.ID,
		LoanID:            r.Payment.LoanID,
		InstallmentNumber: r.Payment.InstallmentNumber,
		Amount:            r.Payment.Amount,
		PrincipalPortion:  r.Payment.PrincipalPortion,
		InterestPortion:   r.Payment.InterestPortion,
		Source:            string(r.Payment.Source),
		PayrollPeriodID:   r.Payment.PayrollPeriodID,
		PaidAt:            r.Payment.PaidAt.Format("2006-01-02"),
		Clamped:           r.Clamped,
		Excess:            r.Excess,
		RemainingBalance:  r.Account.RemainingBalance,
		LoanStatus:        string(r.Account.Status),
	}
}
