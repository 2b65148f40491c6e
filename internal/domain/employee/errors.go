package employee

import "errors"

var (
	ErrEmployeeNotFound  = errors.New("employee not found")
	ErrEmployeeNotActive = errors.New("employee is not active")
	ErrInvalidBaseSalary = errors.New("base salary must be non-negative")
	ErrMissingPayProfile = errors.New("employee has no pay profile configured")
)
