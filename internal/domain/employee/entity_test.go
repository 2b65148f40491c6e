package employee

import (
	"testing"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/statutory"
	"github.com/stretchr/testify/assert"
)

func TestEmploymentTypeTaxStatus(t *testing.T) {
	cases := map[EmploymentType]statutory.EmploymentTaxStatus{
		EmploymentTypePermanent:  statutory.EmploymentPermanent,
		EmploymentTypeProbation:  statutory.EmploymentPermanent,
		EmploymentTypeContract:   statutory.EmploymentNonPermanent,
		EmploymentTypeInternship: statutory.EmploymentNonPermanent,
		EmploymentTypeFreelance:  statutory.EmploymentNonEmployee,
	}
	for in, want := range cases {
		assert.Equal(t, want, in.TaxStatus(), in)
	}
}
