package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (a *attendanceRepository) ListRecords(ctx context.Context, companyID string, employeeIDs []string, start, end time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT id, employee_id, company_id, date, clock_in, clock_out, status
		FROM attendances
		WHERE company_id = $1 AND employee_id = ANY($2) AND date BETWEEN $3 AND $4
		ORDER BY employee_id, date
	`

	rows, err := q.Query(ctx, query, companyID, employeeIDs, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		var r attendance.Record
		if err := rows.Scan(&r.ID, &r.EmployeeID, &r.CompanyID, &r.Date, &r.ClockIn, &r.ClockOut, &r.Status); err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func (a *attendanceRepository) ListApprovedOvertime(ctx context.Context, companyID string, employeeIDs []string, start, end time.Time) ([]attendance.Overtime, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT id, employee_id, company_id, date, hours, rest_day
		FROM overtime_requests
		WHERE company_id = $1 AND employee_id = ANY($2) AND date BETWEEN $3 AND $4
			AND status = 'approved'
		ORDER BY employee_id, date
	`

	rows, err := q.Query(ctx, query, companyID, employeeIDs, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list overtime requests: %w", err)
	}
	defer rows.Close()

	var overtime []attendance.Overtime
	for rows.Next() {
		var o attendance.Overtime
		if err := rows.Scan(&o.ID, &o.EmployeeID, &o.CompanyID, &o.Date, &o.Hours, &o.RestDay); err != nil {
			return nil, fmt.Errorf("failed to scan overtime request: %w", err)
		}
		overtime = append(overtime, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return overtime, nil
}
