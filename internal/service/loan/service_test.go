package loan

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/loan"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt/jwttest"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	budiID            = "0190a3b4-5c6d-7e8f-9a0b-1c2d3e4f5a6b"
	sitiID            = "0190a3b4-5c6d-7e8f-9a0b-1c2d3e4f5a6c"
	unknownEmployeeID = "0190a3b4-5c6d-7e8f-9a0b-1c2d3e4f5a6d"
)

type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (passthroughTx) WithinSerializableTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeLoanRepo struct {
	loans    map[string]loan.Account
	payments []loan.Payment
}

func newFakeLoanRepo() *fakeLoanRepo {
	return &fakeLoanRepo{loans: make(map[string]loan.Account)}
}

func (r *fakeLoanRepo) Create(_ context.Context, a loan.Account) (loan.Account, error) {
	a.ID = uuid.NewString()
	a.CreatedAt = time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	r.loans[a.ID] = a
	return a, nil
}

func (r *fakeLoanRepo) GetByID(_ context.Context, id, companyID string) (loan.Account, error) {
	a, ok := r.loans[id]
	if !ok || a.CompanyID != companyID {
		return loan.Account{}, loan.ErrLoanNotFound
	}
	return a, nil
}

func (r *fakeLoanRepo) GetByIDForUpdate(ctx context.Context, id, companyID string) (loan.Account, error) {
	return r.GetByID(ctx, id, companyID)
}

func (r *fakeLoanRepo) List(_ context.Context, companyID string, _ loan.LoanFilter) ([]loan.Account, int64, error) {
	var out []loan.Account
	for _, a := range r.loans {
		if a.CompanyID == companyID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeLoanRepo) ListActiveByEmployees(_ context.Context, companyID string, employeeIDs []string) ([]loan.Account, error) {
	var out []loan.Account
	for _, a := range r.loans {
		if a.CompanyID != companyID || a.Status != loan.StatusActive {
			continue
		}
		for _, id := range employeeIDs {
			if a.EmployeeID == id {
				out = append(out, a)
			}
		}
	}
	return out, nil
}

func (r *fakeLoanRepo) Update(_ context.Context, a loan.Account) error {
	if _, ok := r.loans[a.ID]; !ok {
		return loan.ErrLoanNotFound
	}
	r.loans[a.ID] = a
	return nil
}

func (r *fakeLoanRepo) CreatePayment(_ context.Context, p loan.Payment) (loan.Payment, error) {
	for _, existing := range r.payments {
		if existing.LoanID == p.LoanID && existing.InstallmentNumber == p.InstallmentNumber {
			return loan.Payment{}, loan.ErrInstallmentExists
		}
	}
	p.ID = uuid.NewString()
	r.payments = append(r.payments, p)
	return p, nil
}

func (r *fakeLoanRepo) ListPayments(_ context.Context, loanID, _ string) ([]loan.Payment, error) {
	var out []loan.Payment
	for _, p := range r.payments {
		if p.LoanID == loanID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeEmployeeRepo struct {
	profiles map[string]employee.PayProfile
}

func (r *fakeEmployeeRepo) ListActivePayProfiles(_ context.Context, companyID string) ([]employee.PayProfile, error) {
	var out []employee.PayProfile
	for _, p := range r.profiles {
		if p.CompanyID == companyID && p.Active() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeEmployeeRepo) GetPayProfile(_ context.Context, id, companyID string) (employee.PayProfile, error) {
	p, ok := r.profiles[id]
	if !ok || p.CompanyID != companyID {
		return employee.PayProfile{}, employee.ErrEmployeeNotFound
	}
	return p, nil
}

func setupService(t *testing.T, policy loan.OverpaymentPolicy) (*LoanServiceImpl, *fakeLoanRepo, context.Context) {
	t.Helper()

	employees := &fakeEmployeeRepo{profiles: map[string]employee.PayProfile{
		budiID: {ID: budiID, CompanyID: "company-1", FullName: "Budi Santoso", EmploymentStatus: employee.EmploymentStatusActive},
		sitiID: {ID: sitiID, CompanyID: "company-1", FullName: "Siti Rahma", EmploymentStatus: employee.EmploymentStatusResigned},
	}}
	repo := newFakeLoanRepo()
	svc := NewLoanService(passthroughTx{}, repo, employees, policy, nil)
	svc.now = func() time.Time { return time.Date(2024, time.January, 12, 9, 0, 0, 0, time.UTC) }

	ctx := jwttest.Context(t, jwt.NewAuth("test-secret"), jwt.Claims{
		UserID:    "user-admin",
		CompanyID: "company-1",
		Role:      "admin",
	})

	return svc, repo, ctx
}

func createActiveLoan(t *testing.T, svc *LoanServiceImpl, ctx context.Context) loan.LoanResponse {
	t.Helper()

	created, err := svc.CreateLoan(ctx, loan.CreateLoanRequest{
		EmployeeID:   budiID,
		Principal:    d("12000000"),
		AnnualRate:   d("0"),
		InterestType: "flat",
		TermMonths:   12,
	})
	require.NoError(t, err)

	_, err = svc.Approve(ctx, created.ID)
	require.NoError(t, err)

	active, err := svc.Disburse(ctx, loan.DisburseLoanRequest{ID: created.ID, StartDate: "2024-01-25"})
	require.NoError(t, err)
	return active
}

func TestLoanService_Lifecycle(t *testing.T) {
	svc, repo, ctx := setupService(t, loan.OverpaymentReject)

	created, err := svc.CreateLoan(ctx, loan.CreateLoanRequest{
		EmployeeID:   budiID,
		Principal:    d("12000000.40"),
		AnnualRate:   d("0"),
		InterestType: "flat",
		TermMonths:   12,
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, "12000000", created.Principal.String())
	assert.Equal(t, "Budi Santoso", created.EmployeeName)

	_, err = svc.RecordPayment(ctx, loan.RecordPaymentRequest{LoanID: created.ID, Amount: d("1000000")})
	assert.ErrorIs(t, err, loan.ErrLoanNotActive)

	approved, err := svc.Approve(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "approved", approved.Status)
	require.NotNil(t, approved.ApprovedAt)
	assert.Equal(t, "user-admin", *repo.loans[created.ID].ApprovedBy)

	active, err := svc.Disburse(ctx, loan.DisburseLoanRequest{ID: created.ID, StartDate: "2024-01-25"})
	require.NoError(t, err)
	assert.Equal(t, "active", active.Status)
	require.NotNil(t, active.StartDate)
	assert.Equal(t, "2024-01-25", *active.StartDate)

	_, err = svc.Cancel(ctx, created.ID)
	assert.ErrorIs(t, err, loan.ErrInvalidStatusTransition)
}

func TestLoanService_Reject(t *testing.T) {
	svc, _, ctx := setupService(t, loan.OverpaymentReject)

	created, err := svc.CreateLoan(ctx, loan.CreateLoanRequest{
		EmployeeID:   budiID,
		Principal:    d("5000000"),
		AnnualRate:   d("6"),
		InterestType: "reducing",
		TermMonths:   6,
	})
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, loan.RejectLoanRequest{ID: created.ID, Reason: "exceeds policy"})
	require.NoError(t, err)
	assert.Equal(t, "rejected", rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "exceeds policy", *rejected.RejectionReason)

	_, err = svc.Approve(ctx, created.ID)
	assert.ErrorIs(t, err, loan.ErrInvalidStatusTransition)
}

func TestLoanService_CreateLoan_Errors(t *testing.T) {
	svc, _, ctx := setupService(t, loan.OverpaymentReject)

	_, err := svc.CreateLoan(ctx, loan.CreateLoanRequest{EmployeeID: budiID, Principal: d("0"), InterestType: "flat", TermMonths: 12})
	assert.Error(t, err)

	_, err = svc.CreateLoan(ctx, loan.CreateLoanRequest{EmployeeID: sitiID, Principal: d("100000"), InterestType: "flat", TermMonths: 1})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotActive)

	_, err = svc.CreateLoan(ctx, loan.CreateLoanRequest{EmployeeID: unknownEmployeeID, Principal: d("100000"), InterestType: "flat", TermMonths: 1})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	_, err = svc.CreateLoan(context.Background(), loan.CreateLoanRequest{EmployeeID: budiID, Principal: d("100000"), InterestType: "flat", TermMonths: 1})
	assert.Error(t, err)

	_, err = svc.CreateLoan(ctx, loan.CreateLoanRequest{EmployeeID: "emp-1", Principal: d("100000"), InterestType: "flat", TermMonths: 1})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "must be a valid UUID", verrs.ToMap()["employee_id"])
}

func TestLoanService_RecordPayment(t *testing.T) {
	svc, repo, ctx := setupService(t, loan.OverpaymentReject)
	active := createActiveLoan(t, svc, ctx)

	resp, err := svc.RecordPayment(ctx, loan.RecordPaymentRequest{LoanID: active.ID, Amount: d("1000000"), PaidAt: "2024-02-25"})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.InstallmentNumber)
	assert.Equal(t, "11000000", resp.RemainingBalance.String())
	assert.Equal(t, "manual", resp.Source)
	assert.Equal(t, "2024-02-25", resp.PaidAt)
	assert.Len(t, repo.payments, 1)

	schedule, err := svc.GetSchedule(ctx, active.ID)
	require.NoError(t, err)
	require.Len(t, schedule.Entries, 12)
	assert.True(t, schedule.Entries[0].IsPaid)
	assert.False(t, schedule.Entries[1].IsPaid)
	assert.Equal(t, "12000000", schedule.TotalPrincipal.String())
	assert.True(t, schedule.TotalInterest.IsZero())

	_, err = svc.RecordPayment(ctx, loan.RecordPaymentRequest{LoanID: active.ID, Amount: d("11000001")})
	var over *loan.OverpaymentError
	assert.ErrorAs(t, err, &over)
	assert.Len(t, repo.payments, 1)

	payments, err := svc.ListPayments(ctx, active.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, "1000000", payments[0].Amount.String())
}

func TestLoanService_ApplyPayrollDeduction(t *testing.T) {
	svc, repo, ctx := setupService(t, loan.OverpaymentReject)
	active := createActiveLoan(t, svc, ctx)

	payment, err := svc.ApplyPayrollDeduction(context.Background(), "company-1", active.ID, 1, d("12500000"), "period-1", time.Date(2024, time.February, 25, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, loan.PaymentSourcePayroll, payment.Source)
	require.NotNil(t, payment.PayrollPeriodID)
	assert.Equal(t, "period-1", *payment.PayrollPeriodID)
	assert.Equal(t, "12000000", payment.Amount.String())

	stored := repo.loans[active.ID]
	assert.Equal(t, loan.StatusCompleted, stored.Status)
	assert.True(t, stored.RemainingBalance.IsZero())

	_, err = svc.ApplyPayrollDeduction(context.Background(), "company-2", active.ID, 2, d("1"), "period-1", time.Now())
	assert.ErrorIs(t, err, loan.ErrLoanNotFound)
}

func TestLoanService_ApplyPayrollDeduction_InstallmentAlreadyBooked(t *testing.T) {
	svc, repo, ctx := setupService(t, loan.OverpaymentReject)
	active := createActiveLoan(t, svc, ctx)
	paidAt := time.Date(2024, time.February, 25, 0, 0, 0, 0, time.UTC)

	// Two drafts computed from the same loan snapshot both carry installment 1.
	_, err := svc.ApplyPayrollDeduction(context.Background(), "company-1", active.ID, 1, d("1000000"), "period-june", paidAt)
	require.NoError(t, err)

	_, err = svc.ApplyPayrollDeduction(context.Background(), "company-1", active.ID, 1, d("1000000"), "period-july", paidAt.AddDate(0, 1, 0))
	assert.ErrorIs(t, err, loan.ErrInstallmentMismatch)
	assert.Len(t, repo.payments, 1)
	assert.Equal(t, 1, repo.loans[active.ID].InstallmentsPaid)
	assert.Equal(t, "11000000", repo.loans[active.ID].RemainingBalance.String())

	payment, err := svc.ApplyPayrollDeduction(context.Background(), "company-1", active.ID, 2, d("1000000"), "period-july", paidAt.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, 2, payment.InstallmentNumber)
}

func TestLoanService_ListLoans(t *testing.T) {
	svc, _, ctx := setupService(t, loan.OverpaymentReject)
	createActiveLoan(t, svc, ctx)
	createActiveLoan(t, svc, ctx)

	list, err := svc.ListLoans(ctx, loan.LoanFilter{Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.TotalCount)
	assert.Len(t, list.Data, 2)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, 20, list.Limit)
}
