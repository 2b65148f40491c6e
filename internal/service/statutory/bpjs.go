package statutory

import (
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/statutory"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/money"
	"github.com/shopspring/decimal"
)

// BPJS splits the contributions of every enrolled program between company and employee.
// The base of a program is gross capped at the program's monthly cap.
func BPJS(rs statutory.Ruleset, gross decimal.Decimal, enrollment statutory.BPJSEnrollment) statutory.BPJSBreakdown {
	out := statutory.BPJSBreakdown{
		Lines:         make([]statutory.ProgramShare, 0, len(statutory.Programs)),
		EmployeeTotal: decimal.Zero,
		CompanyTotal:  decimal.Zero,
	}

	for _, p := range statutory.Programs {
		share := statutory.ProgramShare{
			Program:        p,
			Base:           decimal.Zero,
			CompanyAmount:  decimal.Zero,
			EmployeeAmount: decimal.Zero,
		}
		if enrollment.Enrolled(p) {
			rule := rs.BPJS[p]
			base := gross
			if rule.Cap.IsPositive() && base.GreaterThan(rule.Cap) {
				base = rule.Cap
			}
			share.Base = base
			share.CompanyAmount = money.Rupiah(base.Mul(money.Percent(rule.CompanyRate)))
			share.EmployeeAmount = money.Rupiah(base.Mul(money.Percent(rule.EmployeeRate)))
		}
		out.Lines = append(out.Lines, share)
		out.EmployeeTotal = out.EmployeeTotal.Add(share.EmployeeAmount)
		out.CompanyTotal = out.CompanyTotal.Add(share.CompanyAmount)
	}

	return out
}
