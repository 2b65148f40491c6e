package thr

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/compensation"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/thr"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/shopspring/decimal"
)

const maxCachedResults = 4096

// SettingsReader is the part of the payroll repository THR needs.
type SettingsReader interface {
	GetSettings(ctx context.Context, companyID string) (payroll.Settings, error)
}

type cacheKey struct {
	companyID     string
	employeeID    string
	referenceDate string
	salaryBase    string
}

type ThrServiceImpl struct {
	employeeRepo employee.EmployeeRepository
	settings     SettingsReader

	mu    sync.RWMutex
	cache map[cacheKey]thr.Result
}

func NewThrService(employeeRepo employee.EmployeeRepository, settings SettingsReader) *ThrServiceImpl {
	return &ThrServiceImpl{
		employeeRepo: employeeRepo,
		settings:     settings,
		cache:        make(map[cacheKey]thr.Result),
	}
}

var _ thr.ThrService = (*ThrServiceImpl)(nil)

func (s *ThrServiceImpl) ComputeForEmployee(ctx context.Context, req thr.ComputeThrRequest) (thr.ThrResponse, error) {
	if err := req.Validate(); err != nil {
		return thr.ThrResponse{}, err
	}
	referenceDate, _ := time.Parse("2006-01-02", req.ReferenceDate)

	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return thr.ThrResponse{}, err
	}

	emp, err := s.employeeRepo.GetPayProfile(ctx, req.EmployeeID, claims.CompanyID)
	if err != nil {
		return thr.ThrResponse{}, err
	}

	base, err := s.salaryBase(ctx, claims.CompanyID, emp)
	if err != nil {
		return thr.ThrResponse{}, err
	}

	key := cacheKey{
		companyID:     claims.CompanyID,
		employeeID:    emp.ID,
		referenceDate: req.ReferenceDate,
		salaryBase:    base.String(),
	}
	result, ok := s.cached(key, emp.HireDate)
	if !ok {
		result, err = Calculate(emp.HireDate, referenceDate, base)
		if err != nil {
			return thr.ThrResponse{}, err
		}
		result.EmployeeID = emp.ID
		s.store(key, result)
	}

	return thr.ThrResponse{
		EmployeeID:      emp.ID,
		EmployeeName:    emp.FullName,
		HireDate:        result.HireDate.Format("2006-01-02"),
		ReferenceDate:   result.ReferenceDate.Format("2006-01-02"),
		MonthsOfService: result.MonthsOfService,
		Eligible:        result.Eligible,
		SalaryBase:      result.SalaryBase,
		Percentage:      result.Percentage,
		Amount:          result.Amount,
		Reason:          result.Reason,
	}, nil
}

// salaryBase is the base salary plus, when the company counts them, fixed allowances.
func (s *ThrServiceImpl) salaryBase(ctx context.Context, companyID string, emp employee.PayProfile) (decimal.Decimal, error) {
	settings, err := s.settings.GetSettings(ctx, companyID)
	if errors.Is(err, payroll.ErrSettingsNotFound) {
		settings = payroll.DefaultSettings(companyID)
	} else if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get payroll settings: %w", err)
	}

	if !settings.ThrIncludesFixedAllowances {
		return emp.BaseSalary, nil
	}

	allowances, err := compensation.FixedAllowances(emp.Components, emp.BaseSalary)
	if err != nil {
		return decimal.Zero, err
	}
	return emp.BaseSalary.Add(allowances), nil
}

// cached returns a stored result. A changed hire date invalidates the entry.
func (s *ThrServiceImpl) cached(key cacheKey, hireDate time.Time) (thr.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, ok := s.cache[key]
	if !ok || !result.HireDate.Equal(hireDate) {
		return thr.Result{}, false
	}
	return result, true
}

func (s *ThrServiceImpl) store(key cacheKey, result thr.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.cache) >= maxCachedResults {
		s.cache = make(map[cacheKey]thr.Result)
	}
	s.cache[key] = result
}
