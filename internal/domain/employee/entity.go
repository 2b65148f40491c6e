package employee

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/compensation"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/statutory"
	"github.com/shopspring/decimal"
)

// PayProfile is the snapshot of an employee that payroll reads. It is never written by payroll.
type PayProfile struct {
	ID                    string
	CompanyID             string
	EmployeeCode          string
	FullName              string
	HireDate              time.Time
	EmploymentType        EmploymentType
	EmploymentStatus      EmploymentStatus
	BaseSalary            decimal.Decimal
	Tax                   statutory.TaxProfile
	BankName              string
	BankAccountHolderName string
	BankAccountNumber     string
	Components            []compensation.PayComponent
}

func (p PayProfile) Active() bool {
	return p.EmploymentStatus == EmploymentStatusActive
}

type EmploymentType string

const (
	EmploymentTypePermanent  EmploymentType = "permanent"
	EmploymentTypeProbation  EmploymentType = "probation"
	EmploymentTypeContract   EmploymentType = "contract"
	EmploymentTypeInternship EmploymentType = "internship"
	EmploymentTypeFreelance  EmploymentType = "freelance"
)

// TaxStatus maps the contract type to its PPh21 withholding scheme.
func (t EmploymentType) TaxStatus() statutory.EmploymentTaxStatus {
	switch t {
	case EmploymentTypePermanent, EmploymentTypeProbation:
		return statutory.EmploymentPermanent
	case EmploymentTypeFreelance:
		return statutory.EmploymentNonEmployee
	default:
		return statutory.EmploymentNonPermanent
	}
}

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)
