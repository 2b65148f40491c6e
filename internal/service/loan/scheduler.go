// Package loan computes installment schedules and applies repayments to employee loans.
package loan

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/loan"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/money"
	"github.com/shopspring/decimal"
)

var monthsPerYear = decimal.NewFromInt(12)

func validateTerms(a loan.Account) error {
	if !a.Principal.IsPositive() {
		return fmt.Errorf("%w: principal must be greater than zero", loan.ErrInvalidLoanTerms)
	}
	if a.TermMonths < 1 {
		return fmt.Errorf("%w: term must be at least one month", loan.ErrInvalidLoanTerms)
	}
	if a.AnnualRate.IsNegative() {
		return fmt.Errorf("%w: interest rate must be non-negative", loan.ErrInvalidLoanTerms)
	}
	if !a.InterestType.Valid() {
		return fmt.Errorf("%w: unknown interest type %q", loan.ErrInvalidLoanTerms, a.InterestType)
	}
	return nil
}

// cumulativePrincipal is the principal allocated to installments 1..i.
// Rounding the running total instead of each share keeps the sum equal to the principal.
func cumulativePrincipal(a loan.Account, i int) decimal.Decimal {
	if i >= a.TermMonths {
		return money.Rupiah(a.Principal)
	}
	return money.Rupiah(a.Principal.Mul(decimal.NewFromInt(int64(i))).Div(decimal.NewFromInt(int64(a.TermMonths))))
}

func scheduledPrincipal(a loan.Account, i int) decimal.Decimal {
	return cumulativePrincipal(a, i).Sub(cumulativePrincipal(a, i-1))
}

func flatInterest(a loan.Account) decimal.Decimal {
	return money.Rupiah(a.Principal.Mul(money.Percent(a.AnnualRate)).Div(decimal.NewFromInt(int64(a.TermMonths))))
}

func reducingInterest(balance, annualRate decimal.Decimal) decimal.Decimal {
	return money.Rupiah(balance.Mul(money.Percent(annualRate)).Div(monthsPerYear))
}

// addMonths moves t forward n calendar months, clamping to the last day of a shorter month.
func addMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	lastDay := first.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, t.Location())
}

// Schedule lists every installment of the loan. It depends only on the loan terms and the
// recorded payments, so calling it twice yields the same rows.
func Schedule(a loan.Account, payments []loan.Payment) ([]loan.ScheduleEntry, error) {
	if err := validateTerms(a); err != nil {
		return nil, err
	}

	paid := make(map[int]decimal.Decimal)
	for _, p := range payments {
		paid[p.InstallmentNumber] = paid[p.InstallmentNumber].Add(p.Amount)
	}

	start := a.ScheduleStart()
	balance := money.Rupiah(a.Principal)
	entries := make([]loan.ScheduleEntry, 0, a.TermMonths)

	for i := 1; i <= a.TermMonths; i++ {
		principal := scheduledPrincipal(a, i)

		interest := flatInterest(a)
		if a.InterestType == loan.InterestReducing {
			interest = reducingInterest(balance, a.AnnualRate)
		}

		balance = balance.Sub(principal)
		total := principal.Add(interest)
		paidAmount, recorded := paid[i]
		if !recorded {
			paidAmount = decimal.Zero
		}

		entries = append(entries, loan.ScheduleEntry{
			Installment:      i,
			DueDate:          addMonths(start, i),
			Principal:        principal,
			Interest:         interest,
			Total:            total,
			RemainingBalance: balance,
			PaidAmount:       paidAmount,
			IsPaid:           recorded && paidAmount.GreaterThanOrEqual(total),
		})
	}

	return entries, nil
}

// NextDue is the installment payroll should deduct next. Past the term, the whole
// outstanding balance is due with no further interest.
func NextDue(a loan.Account) (loan.Due, error) {
	if a.Status != loan.StatusActive {
		return loan.Due{}, loan.ErrLoanNotActive
	}
	if err := validateTerms(a); err != nil {
		return loan.Due{}, err
	}
	return nextDue(a), nil
}

func nextDue(a loan.Account) loan.Due {
	n := a.InstallmentsPaid + 1
	due := loan.Due{Installment: n, Principal: decimal.Zero, Interest: decimal.Zero, Total: decimal.Zero}
	if !a.RemainingBalance.IsPositive() {
		return due
	}

	if n >= a.TermMonths {
		due.Principal = a.RemainingBalance
	} else {
		due.Principal = decimal.Min(scheduledPrincipal(a, n), a.RemainingBalance)
	}

	if n <= a.TermMonths {
		if a.InterestType == loan.InterestReducing {
			due.Interest = reducingInterest(a.RemainingBalance, a.AnnualRate)
		} else {
			due.Interest = flatInterest(a)
		}
	}

	due.Total = due.Principal.Add(due.Interest)
	return due
}
