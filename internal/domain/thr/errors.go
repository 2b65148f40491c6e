package thr

import "errors"

var (
	ErrInvalidReferenceDate = errors.New("reference date is before the hire date")
	ErrInvalidSalaryBase    = errors.New("salary base must be non-negative")
)
