package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

type InterestType string

const (
	InterestFlat     InterestType = "flat"
	InterestReducing InterestType = "reducing"
)

func (t InterestType) Valid() bool {
	return t == InterestFlat || t == InterestReducing
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusRejected  Status = "rejected"
)

var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved: {StatusActive, StatusCancelled},
	StatusActive:   {StatusCompleted},
}

// CanTransition reports whether a loan in status s may move to next.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Account is an employee loan. RemainingBalance is the outstanding principal:
// principal minus the principal portion of every recorded payment.
type Account struct {
	ID               string
	CompanyID        string
	EmployeeID       string
	Principal        decimal.Decimal
	AnnualRate       decimal.Decimal // percent per year
	InterestType     InterestType
	TermMonths       int
	StartDate        *time.Time
	InstallmentsPaid int
	RemainingBalance decimal.Decimal
	Status           Status
	Purpose          *string
	ApprovedBy       *string
	ApprovedAt       *time.Time
	RejectionReason  *string
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Joined fields
	EmployeeName *string
}

// ScheduleStart is the date installments are counted from: disbursement, or creation
// for a loan not yet disbursed.
func (a Account) ScheduleStart() time.Time {
	if a.StartDate != nil {
		return *a.StartDate
	}
	return a.CreatedAt
}

type PaymentSource string

const (
	PaymentSourceManual  PaymentSource = "manual"
	PaymentSourcePayroll PaymentSource = "payroll"
)

// Payment is a recorded repayment of one installment.
type Payment struct {
	ID                string
	LoanID            string
	CompanyID         string
	InstallmentNumber int
	Amount            decimal.Decimal
	PrincipalPortion  decimal.Decimal
	InterestPortion   decimal.Decimal
	Source            PaymentSource
	PayrollPeriodID   *string
	PaidAt            time.Time
	CreatedAt         time.Time
}

// ScheduleEntry is one computed installment row. It is never stored.
type ScheduleEntry struct {
	Installment      int             `json:"installment"`
	DueDate          time.Time       `json:"due_date"`
	Principal        decimal.Decimal `json:"principal"`
	Interest         decimal.Decimal `json:"interest"`
	Total            decimal.Decimal `json:"total"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	PaidAmount       decimal.Decimal `json:"paid_amount"`
	IsPaid           bool            `json:"is_paid"`
}

// Due is what the next installment asks for.
type Due struct {
	Installment int
	Principal   decimal.Decimal
	Interest    decimal.Decimal
	Total       decimal.Decimal
}

// OverpaymentPolicy decides what happens to a payment above what is owed.
type OverpaymentPolicy string

const (
	OverpaymentReject OverpaymentPolicy = "reject"
	OverpaymentClamp  OverpaymentPolicy = "clamp"
)

func (p OverpaymentPolicy) Valid() bool {
	return p == OverpaymentReject || p == OverpaymentClamp
}

// PaymentResult is the loan after a ledger step together with the payment that caused it.
// Excess is the part of a clamped payment that was not applied.
type PaymentResult struct {
	Account Account
	Payment Payment
	Clamped bool
	Excess  decimal.Decimal
}
