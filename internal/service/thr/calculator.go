// Package thr computes the pro-rated religious holiday allowance (THR).
package thr

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/thr"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/money"
	"github.com/shopspring/decimal"
)

var (
	fullYear = decimal.NewFromInt(12)
	hundred  = decimal.NewFromInt(100)
)

// TenureMonths counts whole months of service. A month counts once the hire
// day-of-month is reached.
func TenureMonths(hireDate, referenceDate time.Time) int {
	years := referenceDate.Year() - hireDate.Year()
	months := int(referenceDate.Month()) - int(hireDate.Month())

	totalMonths := years*12 + months

	// Adjust if day hasn't passed yet
	if referenceDate.Day() < hireDate.Day() {
		totalMonths--
	}

	if totalMonths < 0 {
		totalMonths = 0
	}

	return totalMonths
}

// Calculate returns the THR owed at referenceDate for the given monthly salary base.
func Calculate(hireDate, referenceDate time.Time, salaryBase decimal.Decimal) (thr.Result, error) {
	if salaryBase.IsNegative() {
		return thr.Result{}, thr.ErrInvalidSalaryBase
	}
	if referenceDate.Before(hireDate) {
		return thr.Result{}, thr.ErrInvalidReferenceDate
	}

	months := TenureMonths(hireDate, referenceDate)
	result := thr.Result{
		HireDate:        hireDate,
		ReferenceDate:   referenceDate,
		MonthsOfService: months,
		SalaryBase:      salaryBase,
	}

	switch {
	case months < 1:
		result.Percentage = decimal.Zero
		result.Amount = decimal.Zero
		result.Reason = "less than one month of service, not eligible"
	case months < 12:
		fraction := decimal.NewFromInt(int64(months)).Div(fullYear)
		result.Eligible = true
		result.Percentage = fraction.Mul(hundred).Round(2)
		result.Amount = money.Rupiah(salaryBase.Mul(decimal.NewFromInt(int64(months))).Div(fullYear))
		result.Reason = fmt.Sprintf("%d of 12 months of service, pro-rated", months)
	default:
		result.Eligible = true
		result.Percentage = hundred
		result.Amount = money.Rupiah(salaryBase)
		result.Reason = "12 or more months of service, full salary"
	}

	return result, nil
}
