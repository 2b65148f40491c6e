// Package statutory computes Indonesian BPJS contributions and PPh21 income tax
// from an injected, effective-dated ruleset.
package statutory

import (
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/statutory"
	"github.com/shopspring/decimal"
)

type Calculator struct {
	book *statutory.RulesetBook
}

func NewCalculator(book *statutory.RulesetBook) *Calculator {
	return &Calculator{book: book}
}

// Ruleset returns the ruleset in force for a payroll month.
func (c *Calculator) Ruleset(year, month int) (statutory.Ruleset, error) {
	if month < 1 || month > 12 {
		return statutory.Ruleset{}, fmt.Errorf("%w: month must be between 1 and 12", statutory.ErrInvalidInput)
	}
	rs, err := c.book.For(year, month)
	if err != nil {
		return statutory.Ruleset{}, fmt.Errorf("%w: %04d-%02d", err, year, month)
	}
	return rs, nil
}

// Calculate returns the BPJS and PPh21 breakdown of one employee-month.
// GrossIncome is the BPJS base; a gross-up tax allowance is reported in the PPh21 part.
func (c *Calculator) Calculate(in statutory.Input) (statutory.Breakdown, error) {
	if in.GrossIncome.IsNegative() {
		return statutory.Breakdown{}, fmt.Errorf("%w: gross income must be non-negative", statutory.ErrInvalidInput)
	}

	rs, err := c.Ruleset(in.Year, in.Month)
	if err != nil {
		return statutory.Breakdown{}, err
	}
	if err := validateProfile(rs, in.Profile); err != nil {
		return statutory.Breakdown{}, err
	}

	bpjs := BPJS(rs, in.GrossIncome, in.Profile.BPJS)
	pph21, err := PPh21(rs, PPh21Input{
		Gross:        in.GrossIncome,
		EmployeeBPJS: bpjs.EmployeeTotal,
		Profile:      in.Profile,
		Month:        in.Month,
		YearToDate:   in.YearToDate,
	})
	if err != nil {
		return statutory.Breakdown{}, err
	}

	return statutory.Breakdown{
		GrossIncome: in.GrossIncome,
		Month:       in.Month,
		Year:        in.Year,
		Ruleset:     rs.Name,
		BPJS:        bpjs,
		PPh21:       pph21,
	}, nil
}

// CalculateBPJS is BPJS against the ruleset in force for the month.
func (c *Calculator) CalculateBPJS(year, month int, gross decimal.Decimal, enrollment statutory.BPJSEnrollment) (statutory.BPJSBreakdown, error) {
	if gross.IsNegative() {
		return statutory.BPJSBreakdown{}, fmt.Errorf("%w: gross income must be non-negative", statutory.ErrInvalidInput)
	}
	rs, err := c.Ruleset(year, month)
	if err != nil {
		return statutory.BPJSBreakdown{}, err
	}
	return BPJS(rs, gross, enrollment), nil
}

// CalculatePPh21 is PPh21 against the ruleset in force for the month.
func (c *Calculator) CalculatePPh21(year int, in PPh21Input) (statutory.PPh21Breakdown, error) {
	rs, err := c.Ruleset(year, in.Month)
	if err != nil {
		return statutory.PPh21Breakdown{}, err
	}
	return PPh21(rs, in)
}
