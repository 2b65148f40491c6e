package thr

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/compensation"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/thr"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt/jwttest"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dewiID = "0190a3b4-5c6d-7e8f-9a0b-1c2d3e4f5a6b"

type fakeEmployeeRepo struct {
	profile employee.PayProfile
	calls   int
}

func (r *fakeEmployeeRepo) ListActivePayProfiles(context.Context, string) ([]employee.PayProfile, error) {
	return []employee.PayProfile{r.profile}, nil
}

func (r *fakeEmployeeRepo) GetPayProfile(_ context.Context, id, companyID string) (employee.PayProfile, error) {
	r.calls++
	if id != r.profile.ID || companyID != r.profile.CompanyID {
		return employee.PayProfile{}, employee.ErrEmployeeNotFound
	}
	return r.profile, nil
}

type fakeSettings struct {
	settings *payroll.Settings
}

func (f fakeSettings) GetSettings(context.Context, string) (payroll.Settings, error) {
	if f.settings == nil {
		return payroll.Settings{}, payroll.ErrSettingsNotFound
	}
	return *f.settings, nil
}

func claimsContext(t *testing.T) context.Context {
	t.Helper()
	ctx := jwttest.Context(t, jwt.NewAuth("test-secret"), jwt.Claims{
		UserID:    "user-1",
		CompanyID: "company-1",
		Role:      "admin",
	})
	return ctx
}

func profile() employee.PayProfile {
	return employee.PayProfile{
		ID:               dewiID,
		CompanyID:        "company-1",
		FullName:         "Dewi Lestari",
		HireDate:         date(2024, 6, 1),
		EmploymentStatus: employee.EmploymentStatusActive,
		BaseSalary:       decimal.NewFromInt(10000000),
		Components: []compensation.PayComponent{
			{ID: "c1", Name: "Tunjangan Jabatan", Strategy: compensation.StrategyFixed, Amount: decimal.NewFromInt(2000000), IsFixedAllowance: true},
			{ID: "c2", Name: "Uang Makan", Strategy: compensation.StrategyPerDiem, Amount: decimal.NewFromInt(50000), IsFixedAllowance: true},
			{ID: "c3", Name: "Bonus", Strategy: compensation.StrategyFixed, Amount: decimal.NewFromInt(500000)},
		},
	}
}

func TestComputeForEmployee_IncludesFixedAllowancesByDefault(t *testing.T) {
	svc := NewThrService(&fakeEmployeeRepo{profile: profile()}, fakeSettings{})

	resp, err := svc.ComputeForEmployee(claimsContext(t), thr.ComputeThrRequest{EmployeeID: dewiID, ReferenceDate: "2025-01-01"})
	require.NoError(t, err)

	assert.Equal(t, "12000000", resp.SalaryBase.String())
	assert.Equal(t, 7, resp.MonthsOfService)
	assert.Equal(t, "7000000", resp.Amount.String())
	assert.Equal(t, "Dewi Lestari", resp.EmployeeName)
}

func TestComputeForEmployee_BaseSalaryOnly(t *testing.T) {
	settings := payroll.DefaultSettings("company-1")
	settings.ThrIncludesFixedAllowances = false
	svc := NewThrService(&fakeEmployeeRepo{profile: profile()}, fakeSettings{settings: &settings})

	resp, err := svc.ComputeForEmployee(claimsContext(t), thr.ComputeThrRequest{EmployeeID: dewiID, ReferenceDate: "2025-06-01"})
	require.NoError(t, err)

	assert.Equal(t, "10000000", resp.SalaryBase.String())
	assert.Equal(t, "10000000", resp.Amount.String())
}

func TestComputeForEmployee_CachesResult(t *testing.T) {
	repo := &fakeEmployeeRepo{profile: profile()}
	svc := NewThrService(repo, fakeSettings{})
	ctx := claimsContext(t)
	req := thr.ComputeThrRequest{EmployeeID: dewiID, ReferenceDate: "2025-01-01"}

	first, err := svc.ComputeForEmployee(ctx, req)
	require.NoError(t, err)
	second, err := svc.ComputeForEmployee(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, svc.cache, 1)
}

func TestComputeForEmployee_Errors(t *testing.T) {
	svc := NewThrService(&fakeEmployeeRepo{profile: profile()}, fakeSettings{})
	ctx := claimsContext(t)

	_, err := svc.ComputeForEmployee(ctx, thr.ComputeThrRequest{EmployeeID: dewiID, ReferenceDate: "01-01-2025"})
	assert.Error(t, err)

	_, err = svc.ComputeForEmployee(ctx, thr.ComputeThrRequest{EmployeeID: dewiID, ReferenceDate: "2024-01-01"})
	assert.ErrorIs(t, err, thr.ErrInvalidReferenceDate)

	_, err = svc.ComputeForEmployee(ctx, thr.ComputeThrRequest{EmployeeID: "0190a3b4-5c6d-7e8f-9a0b-1c2d3e4f5a00", ReferenceDate: "2025-01-01"})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestComputeForEmployee_MalformedEmployeeID(t *testing.T) {
	repo := &fakeEmployeeRepo{profile: profile()}
	svc := NewThrService(repo, fakeSettings{})

	_, err := svc.ComputeForEmployee(claimsContext(t), thr.ComputeThrRequest{EmployeeID: "abc", ReferenceDate: "2025-01-01"})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "must be a valid UUID", verrs.ToMap()["employee_id"])
	assert.Zero(t, repo.calls)
}
