package attendance

import "errors"

var (
	ErrInvalidOvertimeHours = errors.New("overtime hours must be non-negative")
	ErrInvalidDateRange     = errors.New("period end must not be before period start")
	ErrInvalidHourlyDivisor = errors.New("hourly divisor must be positive")
)
