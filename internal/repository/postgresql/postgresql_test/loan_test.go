package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/loan"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoanRepository_Lifecycle(t *testing.T) {
	db := newTestDB(t)
	repo := postgresql.NewLoanRepository(db)
	tx := postgresql.NewTxManager(db)
	ctx := context.Background()
	companyID := newID()
	employeeID := createTestEmployee(t, db, companyID, "EMP-001", 12000000)

	created, err := repo.Create(ctx, loan.Account{
		CompanyID:        companyID,
		EmployeeID:       employeeID,
		Principal:        decimal.NewFromInt(12000000),
		AnnualRate:       decimal.Zero,
		InterestType:     loan.InterestFlat,
		TermMonths:       12,
		RemainingBalance: decimal.NewFromInt(12000000),
		Status:           loan.StatusPending,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	start := time.Date(2024, time.January, 25, 0, 0, 0, 0, time.UTC)
	err = tx.WithinTx(ctx, func(ctx context.Context) error {
		a, err := repo.GetByIDForUpdate(ctx, created.ID, companyID)
		if err != nil {
			return err
		}
		a.Status = loan.StatusActive
		a.StartDate = &start
		return repo.Update(ctx, a)
	})
	require.NoError(t, err)

	active, err := repo.ListActiveByEmployees(ctx, companyID, []string{employeeID})
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.NotNil(t, active[0].EmployeeName)
	assert.Equal(t, "Employee EMP-001", *active[0].EmployeeName)

	payment := loan.Payment{
		LoanID:            created.ID,
		CompanyID:         companyID,
		InstallmentNumber: 1,
		Amount:            decimal.NewFromInt(1000000),
		PrincipalPortion:  decimal.NewFromInt(1000000),
		InterestPortion:   decimal.Zero,
		Source:            loan.PaymentSourceManual,
		PaidAt:            start.AddDate(0, 1, 0),
	}
	_, err = repo.CreatePayment(ctx, payment)
	require.NoError(t, err)

	_, err = repo.CreatePayment(ctx, payment)
	assert.ErrorIs(t, err, loan.ErrInstallmentExists)

	payments, err := repo.ListPayments(ctx, created.ID, companyID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.True(t, decimal.NewFromInt(1000000).Equal(payments[0].Amount))

	_, err = repo.GetByID(ctx, created.ID, newID())
	assert.ErrorIs(t, err, loan.ErrLoanNotFound)
}
