package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
)

// SummaryService loads attendance snapshots for a pay period.
type SummaryService struct {
	repo attendance.AttendanceRepository
}

func NewSummaryService(repo attendance.AttendanceRepository) *SummaryService {
	return &SummaryService{repo: repo}
}

// Summaries returns one summary per employee id, present or not in the records.
func (s *SummaryService) Summaries(ctx context.Context, companyID string, employeeIDs []string, start, end time.Time) (map[string]attendance.Summary, error) {
	records, err := s.repo.ListRecords(ctx, companyID, employeeIDs, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	overtime, err := s.repo.ListApprovedOvertime(ctx, companyID, employeeIDs, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved overtime: %w", err)
	}

	recordsBy := make(map[string][]attendance.Record)
	for _, r := range records {
		recordsBy[r.EmployeeID] = append(recordsBy[r.EmployeeID], r)
	}
	overtimeBy := make(map[string][]attendance.Overtime)
	for _, o := range overtime {
		overtimeBy[o.EmployeeID] = append(overtimeBy[o.EmployeeID], o)
	}

	out := make(map[string]attendance.Summary, len(employeeIDs))
	for _, id := range employeeIDs {
		summary, err := Aggregate(id, start, end, recordsBy[id], overtimeBy[id])
		if err != nil {
			return nil, fmt.Errorf("employee %s: %w", id, err)
		}
		out[id] = summary
	}
	return out, nil
}
