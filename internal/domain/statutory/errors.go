package statutory

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid statutory calculation input")
	ErrInvalidTaxProfile  = errors.New("invalid tax profile")
	ErrNoRulesetEffective = errors.New("no statutory ruleset effective for period")
	ErrInvalidRuleset     = errors.New("invalid statutory ruleset")
)
