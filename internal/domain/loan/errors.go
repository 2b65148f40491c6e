package loan

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrLoanNotFound            = errors.New("loan not found")
	ErrLoanNotActive           = errors.New("loan is not active")
	ErrInvalidLoanTerms        = errors.New("invalid loan terms")
	ErrInvalidPaymentAmount    = errors.New("payment amount must be greater than zero")
	ErrInvalidStatusTransition = errors.New("loan status does not allow this action")
	ErrInstallmentExists       = errors.New("installment already recorded for this loan")
	ErrInstallmentMismatch     = errors.New("installment is not the next one due on this loan")
)

// OverpaymentError is returned when a payment exceeds what the loan still owes.
type OverpaymentError struct {
	LoanID string
	Amount decimal.Decimal
	Owed   decimal.Decimal
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("payment %s exceeds %s owed on loan %s", e.Amount.String(), e.Owed.String(), e.LoanID)
}
