package statutory

import (
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// CalculateRequest asks for the deductions of one employee-month without running payroll.
type CalculateRequest struct {
	GrossIncome      decimal.Decimal `json:"gross_income" validate:"dnonneg"`
	PTKPCode         string          `json:"ptkp_code" validate:"required"`
	TaxConfig        string          `json:"tax_config" validate:"oneof=gross gross_up nett"`
	EmploymentStatus string          `json:"employment_status" validate:"oneof=permanent non_permanent non_employee"`
	BPJS             BPJSEnrollment  `json:"bpjs"`
	Month            int             `json:"month" validate:"min=1,max=12"`
	Year             int             `json:"year" validate:"min=2020"`
	YearToDate       *YearToDate     `json:"year_to_date,omitempty"`
}

func (r *CalculateRequest) Validate() error {
	return validator.Struct(r)
}

// Input converts the request into calculator input.
func (r CalculateRequest) Input() Input {
	in := Input{
		GrossIncome: r.GrossIncome,
		Profile: TaxProfile{
			PTKP:             PTKPCode(r.PTKPCode),
			TaxConfig:        TaxConfig(r.TaxConfig),
			EmploymentStatus: EmploymentTaxStatus(r.EmploymentStatus),
			BPJS:             r.BPJS,
		},
		Month: r.Month,
		Year:  r.Year,
	}
	if r.YearToDate != nil {
		in.YearToDate = *r.YearToDate
	}
	return in
}
