package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/compensation"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/loan"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/statutory"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/thr"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// A failed run names the employee before the underlying cause
	var calcErr *payroll.EmployeeCalculationError
	if errors.As(err, &calcErr) {
		writeJSON(w, http.StatusUnprocessableEntity, Response{
			Success: false,
			Error: &ErrorDetail{
				Code:    "PAYROLL_CALCULATION_FAILED",
				Message: calcErr.Error(),
				Details: map[string]string{"employee_id": calcErr.EmployeeID},
			},
		})
		return
	}

	var overpayment *loan.OverpaymentError
	if errors.As(err, &overpayment) {
		writeJSON(w, http.StatusConflict, Response{
			Success: false,
			Error: &ErrorDetail{
				Code:    "LOAN_OVERPAYMENT",
				Message: overpayment.Error(),
				Details: map[string]string{
					"amount": overpayment.Amount.String(),
					"owed":   overpayment.Owed.String(),
				},
			},
		})
		return
	}

	switch {
	// Auth errors
	case errors.Is(err, user.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, user.ErrCompanyIDRequired), errors.Is(err, jwt.ErrMissingCompanyClaim):
		Forbidden(w, "Company membership is required")
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, "Insufficient permissions")

	// Statutory errors
	case errors.Is(err, statutory.ErrInvalidInput),
		errors.Is(err, statutory.ErrInvalidTaxProfile),
		errors.Is(err, statutory.ErrNoRulesetEffective):
		ValidationError(w, map[string]string{"statutory": err.Error()})

	// Payroll domain errors
	case errors.Is(err, payroll.ErrPeriodNotFound):
		NotFound(w, "Payroll period not found")
	case errors.Is(err, payroll.ErrPayslipNotFound):
		NotFound(w, "Payslip not found")
	case errors.Is(err, payroll.ErrDuplicatePeriod):
		Conflict(w, "Payroll already generated for this period")
	case errors.Is(err, payroll.ErrPeriodAlreadyFinalized):
		Conflict(w, "Payroll period already finalized")
	case errors.Is(err, payroll.ErrPeriodStale):
		Conflict(w, "Payroll draft is out of date, regenerate it before finalizing")
	case errors.Is(err, payroll.ErrPeriodNotFinalized):
		Conflict(w, "Payroll period must be finalized before export")
	case errors.Is(err, payroll.ErrInvalidPeriod):
		ValidationError(w, map[string]string{"period_month": err.Error()})
	case errors.Is(err, payroll.ErrInvalidExportFormat):
		BadRequest(w, err.Error(), nil)

	// Loan domain errors
	case errors.Is(err, loan.ErrLoanNotFound):
		NotFound(w, "Loan not found")
	case errors.Is(err, loan.ErrLoanNotActive):
		Conflict(w, "Loan is not active")
	case errors.Is(err, loan.ErrInvalidStatusTransition):
		Conflict(w, "Loan status does not allow this action")
	case errors.Is(err, loan.ErrInstallmentExists):
		Conflict(w, "Installment already recorded")
	case errors.Is(err, loan.ErrInstallmentMismatch):
		Conflict(w, "Installment is not the next one due")
	case errors.Is(err, loan.ErrInvalidLoanTerms):
		ValidationError(w, map[string]string{"loan": err.Error()})
	case errors.Is(err, loan.ErrInvalidPaymentAmount):
		ValidationError(w, map[string]string{"amount": err.Error()})

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeNotActive):
		Conflict(w, "Employee is not active")
	case errors.Is(err, employee.ErrMissingPayProfile), errors.Is(err, employee.ErrInvalidBaseSalary):
		ValidationError(w, map[string]string{"employee": err.Error()})

	// THR, compensation and attendance errors
	case errors.Is(err, thr.ErrInvalidReferenceDate):
		ValidationError(w, map[string]string{"reference_date": err.Error()})
	case errors.Is(err, thr.ErrInvalidSalaryBase):
		ValidationError(w, map[string]string{"salary_base": err.Error()})
	case errors.Is(err, compensation.ErrUnknownStrategy), errors.Is(err, compensation.ErrInvalidComponent):
		ValidationError(w, map[string]string{"components": err.Error()})
	case errors.Is(err, attendance.ErrInvalidOvertimeHours), errors.Is(err, attendance.ErrInvalidDateRange):
		ValidationError(w, map[string]string{"attendance": err.Error()})

	case errors.Is(err, database.ErrTxConflict):
		Conflict(w, "Request conflicted with a concurrent update, retry it")

	// Default
	default:
		slog.Error("unhandled error", slog.Any("error", err))
		InternalServerError(w, "An unexpected error occurred")
	}
}
