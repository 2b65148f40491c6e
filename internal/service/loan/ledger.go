package loan

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/loan"
	"github.com/shopspring/decimal"
)

// ApplyPayment books amount against the loan's next installment. Interest due on that
// installment is settled first and the rest reduces the outstanding principal.
// A payment above what the loan still owes is rejected or clamped per policy.
func ApplyPayment(a loan.Account, amount decimal.Decimal, paidAt time.Time, policy loan.OverpaymentPolicy) (loan.PaymentResult, error) {
	if a.Status != loan.StatusActive {
		return loan.PaymentResult{}, loan.ErrLoanNotActive
	}
	if !amount.IsPositive() {
		return loan.PaymentResult{}, loan.ErrInvalidPaymentAmount
	}
	if err := validateTerms(a); err != nil {
		return loan.PaymentResult{}, err
	}

	due := nextDue(a)
	owed := a.RemainingBalance.Add(due.Interest)

	result := loan.PaymentResult{Excess: decimal.Zero}
	if amount.GreaterThan(owed) {
		if policy != loan.OverpaymentClamp {
			return loan.PaymentResult{}, &loan.OverpaymentError{LoanID: a.ID, Amount: amount, Owed: owed}
		}
		result.Clamped = true
		result.Excess = amount.Sub(owed)
		amount = owed
	}

	interest := decimal.Min(amount, due.Interest)
	principal := amount.Sub(interest)

	a.RemainingBalance = a.RemainingBalance.Sub(principal)
	a.InstallmentsPaid = due.Installment
	if !a.RemainingBalance.IsPositive() {
		a.RemainingBalance = decimal.Zero
		a.Status = loan.StatusCompleted
	}

	result.Account = a
	result.Payment = loan.Payment{
		LoanID:            a.ID,
		CompanyID:         a.CompanyID,
		InstallmentNumber: due.Installment,
		Amount:            amount,
		PrincipalPortion:  principal,
		InterestPortion:   interest,
		Source:            loan.PaymentSourceManual,
		PaidAt:            paidAt,
	}
	return result, nil
}
