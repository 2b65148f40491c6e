// Package money holds the rupiah rounding rules shared by the payroll calculators.
package money

import "github.com/shopspring/decimal"

var (
	hundred  = decimal.NewFromInt(100)
	thousand = decimal.NewFromInt(1000)
)

// Rupiah rounds an amount to whole rupiah, half away from zero.
func Rupiah(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}

// FloorThousand truncates a taxable income to the nearest lower thousand rupiah.
func FloorThousand(d decimal.Decimal) decimal.Decimal {
	return d.Div(thousand).Floor().Mul(thousand)
}

// Percent converts a percentage figure (e.g. 2.5) into a rate (0.025).
func Percent(p decimal.Decimal) decimal.Decimal {
	return p.Div(hundred)
}

// NonNegative clamps d at zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Sum adds all amounts.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
