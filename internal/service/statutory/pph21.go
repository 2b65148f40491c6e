package statutory

import (
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/statutory"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/money"
	"github.com/shopspring/decimal"
)

// maxGrossUpIterations bounds the tax allowance fixed-point search.
const maxGrossUpIterations = 100

// PPh21Input is the income tax part of a statutory calculation.
// Gross excludes any tax allowance; EmployeeBPJS is the month's employee contribution.
type PPh21Input struct {
	Gross        decimal.Decimal
	EmployeeBPJS decimal.Decimal
	Profile      statutory.TaxProfile
	Month        int
	YearToDate   statutory.YearToDate
}

// PPh21 computes the month's income tax and settles who bears it according to the
// profile's tax configuration.
func PPh21(rs statutory.Ruleset, in PPh21Input) (statutory.PPh21Breakdown, error) {
	if err := validateProfile(rs, in.Profile); err != nil {
		return statutory.PPh21Breakdown{}, err
	}
	if in.Gross.IsNegative() {
		return statutory.PPh21Breakdown{}, fmt.Errorf("%w: gross income must be non-negative", statutory.ErrInvalidInput)
	}
	if in.Month < 1 || in.Month > 12 {
		return statutory.PPh21Breakdown{}, fmt.Errorf("%w: month must be between 1 and 12", statutory.ErrInvalidInput)
	}

	switch in.Profile.TaxConfig {
	case statutory.TaxConfigGrossUp:
		return grossUp(rs, in)
	case statutory.TaxConfigNett:
		b := liability(rs, in, decimal.Zero)
		b.Withheld = decimal.Zero
		b.CompanyBorne = b.Tax
		return b, nil
	default:
		b := liability(rs, in, decimal.Zero)
		b.Withheld = b.Tax
		return b, nil
	}
}

// grossUp searches the allowance T that equals the tax due on gross + T.
// The tax function is non-decreasing in T, so the sequence T, tax(T), ... climbs to the
// smallest fixed point; when the bound is hit the largest candidate seen is kept.
func grossUp(rs statutory.Ruleset, in PPh21Input) (statutory.PPh21Breakdown, error) {
	allowance := decimal.Zero
	b := liability(rs, in, allowance)
	for i := 0; i < maxGrossUpIterations; i++ {
		next := money.NonNegative(b.Tax)
		if !next.GreaterThan(allowance) {
			break
		}
		allowance = next
		b = liability(rs, in, allowance)
	}

	if !b.Tax.IsPositive() {
		allowance = decimal.Zero
		b = liability(rs, in, allowance)
	}
	b.TaxAllowance = allowance
	b.Withheld = b.Tax
	return b, nil
}

// liability computes the tax owed for the month with allowance added to taxable income.
func liability(rs statutory.Ruleset, in PPh21Input, allowance decimal.Decimal) statutory.PPh21Breakdown {
	taxable := in.Gross.Add(allowance)
	category := rs.PTKPCategory[in.Profile.PTKP]

	b := statutory.PPh21Breakdown{
		PTKP:         in.Profile.PTKP,
		Category:     category,
		Rate:         decimal.Zero,
		TaxBase:      decimal.Zero,
		Tax:          decimal.Zero,
		Withheld:     decimal.Zero,
		CompanyBorne: decimal.Zero,
		TaxAllowance: decimal.Zero,
	}

	switch {
	case in.Profile.EmploymentStatus == statutory.EmploymentNonEmployee:
		base := money.Rupiah(taxable.Mul(rs.NonEmployeeTaxableFraction))
		tax, rate := progressive(rs.Pasal17, base)
		b.Method = statutory.TaxMethodPasal17NonEmployee
		b.Category = ""
		b.TaxBase = base
		b.Rate = rate
		b.Tax = money.Rupiah(tax)

	case in.Profile.EmploymentStatus == statutory.EmploymentPermanent && in.Month == 12:
		annualGross := in.YearToDate.Gross.Add(taxable)
		annualBPJS := in.YearToDate.EmployeeBPJS.Add(in.EmployeeBPJS)
		occupational := money.Rupiah(annualGross.Mul(money.Percent(rs.OccupationalCostRate)))
		if rs.OccupationalCostAnnualCap.IsPositive() && occupational.GreaterThan(rs.OccupationalCostAnnualCap) {
			occupational = rs.OccupationalCostAnnualCap
		}
		ptkp := rs.PTKPAnnual[in.Profile.PTKP]
		pkp := money.FloorThousand(money.NonNegative(annualGross.Sub(annualBPJS).Sub(occupational).Sub(ptkp)))
		annualTax, rate := progressive(rs.Pasal17, pkp)
		annualTax = money.Rupiah(annualTax)

		b.Method = statutory.TaxMethodPasal17Annual
		b.TaxBase = pkp
		b.Rate = rate
		b.AnnualGross = annualGross
		b.AnnualPKP = pkp
		b.AnnualTax = annualTax
		b.PriorWithheld = in.YearToDate.Pph21Withheld
		b.OccupationalCost = occupational
		b.PTKPAnnual = ptkp
		b.Tax = annualTax.Sub(in.YearToDate.Pph21Withheld)
		b.Refund = b.Tax.IsNegative()

	default:
		base := money.NonNegative(taxable.Sub(in.EmployeeBPJS))
		rate := terRate(rs.TER[category], base)
		b.Method = statutory.TaxMethodTER
		b.TaxBase = base
		b.Rate = rate
		b.Tax = money.Rupiah(base.Mul(money.Percent(rate)))
	}

	return b
}

// terRate returns the rate of the first band whose upper bound holds base.
func terRate(brackets []statutory.Bracket, base decimal.Decimal) decimal.Decimal {
	for _, b := range brackets {
		if b.UpTo == nil || base.LessThanOrEqual(*b.UpTo) {
			return b.Rate
		}
	}
	return decimal.Zero
}

// progressive walks the bands, taxing each slice of amount at its own rate.
// It returns the unrounded tax and the marginal rate reached.
func progressive(brackets []statutory.Bracket, amount decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	tax := decimal.Zero
	lower := decimal.Zero
	rate := decimal.Zero
	if !amount.IsPositive() {
		return tax, rate
	}
	for _, b := range brackets {
		rate = b.Rate
		if b.UpTo == nil || amount.LessThanOrEqual(*b.UpTo) {
			tax = tax.Add(amount.Sub(lower).Mul(money.Percent(b.Rate)))
			break
		}
		tax = tax.Add(b.UpTo.Sub(lower).Mul(money.Percent(b.Rate)))
		lower = *b.UpTo
	}
	return tax, rate
}

func validateProfile(rs statutory.Ruleset, p statutory.TaxProfile) error {
	if _, err := rs.Category(p.PTKP); err != nil {
		return fmt.Errorf("%w: unknown ptkp code %q", statutory.ErrInvalidTaxProfile, p.PTKP)
	}
	if !p.TaxConfig.Valid() {
		return fmt.Errorf("%w: unknown tax config %q", statutory.ErrInvalidTaxProfile, p.TaxConfig)
	}
	if !p.EmploymentStatus.Valid() {
		return fmt.Errorf("%w: unknown employment status %q", statutory.ErrInvalidTaxProfile, p.EmploymentStatus)
	}
	return nil
}
