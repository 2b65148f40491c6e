package compensation

import (
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/money"
	"github.com/shopspring/decimal"
)

// Strategy is how a pay component turns into a monthly amount.
type Strategy string

const (
	// StrategyFixed pays Amount every month.
	StrategyFixed Strategy = "fixed"
	// StrategyPercentageOfBase pays Rate percent of the base salary.
	StrategyPercentageOfBase Strategy = "percentage_of_base"
	// StrategyPerDiem pays Amount for every day attended.
	StrategyPerDiem Strategy = "per_diem"
)

func (s Strategy) Valid() bool {
	return s == StrategyFixed || s == StrategyPercentageOfBase || s == StrategyPerDiem
}

// PayComponent is an earning line assigned to an employee.
type PayComponent struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Strategy Strategy        `json:"strategy"`
	Amount   decimal.Decimal `json:"amount"`
	Rate     decimal.Decimal `json:"rate"`
	// IsFixedAllowance marks components that count toward the THR salary base.
	IsFixedAllowance bool `json:"is_fixed_allowance"`
}

func (c PayComponent) Validate() error {
	if !c.Strategy.Valid() {
		return fmt.Errorf("%w: %s has strategy %q", ErrUnknownStrategy, c.Name, c.Strategy)
	}
	if c.Amount.IsNegative() || c.Rate.IsNegative() {
		return fmt.Errorf("%w: %s has a negative amount or rate", ErrInvalidComponent, c.Name)
	}
	return nil
}

// Daily reports whether the component depends on attendance.
func (c PayComponent) Daily() bool {
	return c.Strategy == StrategyPerDiem
}

// MonthlyAmount evaluates the component for one month, rounded to whole rupiah.
func (c PayComponent) MonthlyAmount(baseSalary decimal.Decimal, daysPresent int) (decimal.Decimal, error) {
	if err := c.Validate(); err != nil {
		return decimal.Zero, err
	}
	switch c.Strategy {
	case StrategyPercentageOfBase:
		return money.Rupiah(baseSalary.Mul(money.Percent(c.Rate))), nil
	case StrategyPerDiem:
		return money.Rupiah(c.Amount.Mul(decimal.NewFromInt(int64(daysPresent)))), nil
	default:
		return money.Rupiah(c.Amount), nil
	}
}

// FixedAllowances sums the monthly value of the components marked as fixed allowances.
// Per-diem components never count.
func FixedAllowances(components []PayComponent, baseSalary decimal.Decimal) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, c := range components {
		if !c.IsFixedAllowance || c.Daily() {
			continue
		}
		amount, err := c.MonthlyAmount(baseSalary, 0)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(amount)
	}
	return total, nil
}
