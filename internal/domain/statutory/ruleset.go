package statutory

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Validate checks that a ruleset is complete enough to drive every calculation.
func (r Ruleset) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRuleset)
	}
	if r.EffectiveFrom.IsZero() {
		return fmt.Errorf("%w: %s: effective_from is required", ErrInvalidRuleset, r.Name)
	}

	for _, p := range Programs {
		rule, ok := r.BPJS[p]
		if !ok {
			return fmt.Errorf("%w: %s: missing bpjs program %s", ErrInvalidRuleset, r.Name, p)
		}
		if rule.CompanyRate.IsNegative() || rule.EmployeeRate.IsNegative() || rule.Cap.IsNegative() {
			return fmt.Errorf("%w: %s: bpjs program %s has a negative rate or cap", ErrInvalidRuleset, r.Name, p)
		}
	}

	for _, cat := range []TERCategory{TERCategoryA, TERCategoryB, TERCategoryC} {
		if err := validateBrackets(r.TER[cat]); err != nil {
			return fmt.Errorf("%w: %s: ter %s: %v", ErrInvalidRuleset, r.Name, cat, err)
		}
	}
	if err := validateBrackets(r.Pasal17); err != nil {
		return fmt.Errorf("%w: %s: pasal 17: %v", ErrInvalidRuleset, r.Name, err)
	}

	for _, code := range AllPTKPCodes {
		cat, ok := r.PTKPCategory[code]
		if !ok {
			return fmt.Errorf("%w: %s: ptkp %s has no ter category", ErrInvalidRuleset, r.Name, code)
		}
		if _, ok := r.TER[cat]; !ok {
			return fmt.Errorf("%w: %s: ptkp %s maps to unknown category %s", ErrInvalidRuleset, r.Name, code, cat)
		}
		amount, ok := r.PTKPAnnual[code]
		if !ok || amount.IsNegative() {
			return fmt.Errorf("%w: %s: ptkp %s has no annual amount", ErrInvalidRuleset, r.Name, code)
		}
	}

	if r.OccupationalCostRate.IsNegative() || r.OccupationalCostAnnualCap.IsNegative() {
		return fmt.Errorf("%w: %s: occupational cost must be non-negative", ErrInvalidRuleset, r.Name)
	}
	if r.NonEmployeeTaxableFraction.IsNegative() || r.NonEmployeeTaxableFraction.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: %s: non-employee taxable fraction must be within 0..1", ErrInvalidRuleset, r.Name)
	}

	if !r.Overtime.HourlyDivisor.IsPositive() {
		return fmt.Errorf("%w: %s: overtime hourly divisor must be positive", ErrInvalidRuleset, r.Name)
	}
	if err := validateTiers(r.Overtime.WeekdayTiers); err != nil {
		return fmt.Errorf("%w: %s: weekday overtime: %v", ErrInvalidRuleset, r.Name, err)
	}
	if err := validateTiers(r.Overtime.RestDayTiers); err != nil {
		return fmt.Errorf("%w: %s: rest day overtime: %v", ErrInvalidRuleset, r.Name, err)
	}

	return nil
}

// validateBrackets requires ascending bounds, non-negative rates and an open last band.
func validateBrackets(brackets []Bracket) error {
	if len(brackets) == 0 {
		return fmt.Errorf("no brackets")
	}
	prev := decimal.Zero
	for i, b := range brackets {
		if b.Rate.IsNegative() {
			return fmt.Errorf("bracket %d has a negative rate", i+1)
		}
		last := i == len(brackets)-1
		if b.UpTo == nil {
			if !last {
				return fmt.Errorf("bracket %d is open but not last", i+1)
			}
			continue
		}
		if last {
			return fmt.Errorf("last bracket must be open")
		}
		if i > 0 && !b.UpTo.GreaterThan(prev) {
			return fmt.Errorf("bracket %d bound is not ascending", i+1)
		}
		prev = *b.UpTo
	}
	return nil
}

func validateTiers(tiers []OvertimeTier) error {
	if len(tiers) == 0 {
		return fmt.Errorf("no tiers")
	}
	for i, t := range tiers {
		if t.Hours.IsNegative() || !t.Multiplier.IsPositive() {
			return fmt.Errorf("tier %d is malformed", i+1)
		}
		if t.Hours.IsZero() && i != len(tiers)-1 {
			return fmt.Errorf("tier %d is open but not last", i+1)
		}
	}
	if !tiers[len(tiers)-1].Hours.IsZero() {
		return fmt.Errorf("last tier must be open")
	}
	return nil
}
