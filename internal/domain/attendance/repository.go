package attendance

import (
	"context"
	"time"
)

// AttendanceRepository reads the clock-in and overtime records payroll aggregates.
// All methods include companyID parameter to prevent cross-company data access attacks.
type AttendanceRepository interface {
	// ListRecords returns attendance rows of the given employees dated within [start, end].
	ListRecords(ctx context.Context, companyID string, employeeIDs []string, start, end time.Time) ([]Record, error)

	// ListApprovedOvertime returns approved overtime of the given employees dated within [start, end].
	ListApprovedOvertime(ctx context.Context, companyID string, employeeIDs []string, start, end time.Time) ([]Overtime, error)
}
