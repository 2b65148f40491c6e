package attendance

import (
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/shopspring/decimal"
)

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func inRange(d, start, end time.Time) bool {
	return !d.Before(start) && !d.After(end)
}

// Aggregate summarizes one employee's records inside [start, end].
// Each date counts once toward DaysPresent; overtime entries on the same date are merged
// and the day is a rest day when any entry says so.
func Aggregate(employeeID string, start, end time.Time, records []attendance.Record, overtime []attendance.Overtime) (attendance.Summary, error) {
	start, end = dateOnly(start), dateOnly(end)
	if end.Before(start) {
		return attendance.Summary{}, attendance.ErrInvalidDateRange
	}

	present := make(map[time.Time]struct{})
	for _, r := range records {
		if r.EmployeeID != employeeID || !r.Present() {
			continue
		}
		d := dateOnly(r.Date)
		if inRange(d, start, end) {
			present[d] = struct{}{}
		}
	}

	byDate := make(map[time.Time]*attendance.OvertimeDay)
	for _, o := range overtime {
		if o.EmployeeID != employeeID {
			continue
		}
		if o.Hours.IsNegative() {
			return attendance.Summary{}, attendance.ErrInvalidOvertimeHours
		}
		d := dateOnly(o.Date)
		if !inRange(d, start, end) {
			continue
		}
		day, ok := byDate[d]
		if !ok {
			day = &attendance.OvertimeDay{Date: d, Hours: decimal.Zero}
			byDate[d] = day
		}
		day.Hours = day.Hours.Add(o.Hours)
		day.RestDay = day.RestDay || o.RestDay
	}

	summary := attendance.Summary{
		EmployeeID:    employeeID,
		DaysPresent:   len(present),
		OvertimeDays:  make([]attendance.OvertimeDay, 0, len(byDate)),
		OvertimeHours: decimal.Zero,
	}
	for _, day := range byDate {
		summary.OvertimeDays = append(summary.OvertimeDays, *day)
		summary.OvertimeHours = summary.OvertimeHours.Add(day.Hours)
	}
	sort.Slice(summary.OvertimeDays, func(i, j int) bool {
		return summary.OvertimeDays[i].Date.Before(summary.OvertimeDays[j].Date)
	})

	return summary, nil
}
