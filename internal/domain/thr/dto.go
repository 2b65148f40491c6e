package thr

import (
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type ComputeThrRequest struct {
	EmployeeID    string `json:"employee_id" validate:"required,uuid7"`
	ReferenceDate string `json:"reference_date" validate:"required,date"`
}

func (r *ComputeThrRequest) Validate() error {
	return validator.Struct(r)
}

type ThrResponse struct {
	EmployeeID      string          `json:"employee_id"`
	EmployeeName    string          `json:"employee_name"`
	HireDate        string          `json:"hire_date"`
	ReferenceDate   string          `json:"reference_date"`
	MonthsOfService int             `json:"months_of_service"`
	Eligible        bool            `json:"eligible"`
	SalaryBase      decimal.Decimal `json:"salary_base"`
	Percentage      decimal.Decimal `json:"percentage"`
	Amount          decimal.Decimal `json:"amount"`
	Reason          string          `json:"reason"`
}
