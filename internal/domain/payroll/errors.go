package payroll

import (
	"errors"
	"fmt"
)

var (
	ErrSettingsNotFound       = errors.New("payroll settings not found")
	ErrPeriodNotFound         = errors.New("payroll period not found")
	ErrPayslipNotFound        = errors.New("payslip not found")
	ErrDuplicatePeriod        = errors.New("payroll period already exists for this month")
	ErrPeriodAlreadyFinalized = errors.New("payroll period already finalized, cannot modify")
	ErrPeriodNotFinalized     = errors.New("payroll period is not finalized")
	ErrInvalidPeriod          = errors.New("invalid payroll period")
	ErrInvalidExportFormat    = errors.New("export format must be csv or xlsx")
	ErrPeriodStale            = errors.New("payroll draft is out of date, regenerate it before finalizing")
)

// EmployeeCalculationError aborts a run when one employee's payslip cannot be computed.
type EmployeeCalculationError struct {
	EmployeeID string
	Err        error
}

func (e *EmployeeCalculationError) Error() string {
	return fmt.Sprintf("payroll calculation failed for employee %s: %v", e.EmployeeID, e.Err)
}

func (e *EmployeeCalculationError) Unwrap() error {
	return e.Err
}
