package thr

import (
	"time"

	"github.com/shopspring/decimal"
)

// Result is the religious holiday allowance owed to one employee.
// Percentage is rounded for display; Amount is computed from the exact fraction.
type Result struct {
	EmployeeID      string
	HireDate        time.Time
	ReferenceDate   time.Time
	MonthsOfService int
	Eligible        bool
	SalaryBase      decimal.Decimal
	Percentage      decimal.Decimal
	Amount          decimal.Decimal
	Reason          string
}
