package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

// Attendance statuses that count as a day worked.
const (
	StatusOnTime     = "on_time"
	StatusLate       = "late"
	StatusEarlyLeave = "early_leave"
)

// Record is one clock-in day as stored by the attendance module.
type Record struct {
	ID         string
	EmployeeID string
	CompanyID  string
	Date       time.Time
	ClockIn    *time.Time
	ClockOut   *time.Time
	Status     string
}

// Present reports whether the record counts toward days attended.
// Absent, rejected, pending and leave records do not.
func (r Record) Present() bool {
	if r.ClockIn == nil {
		return false
	}
	switch r.Status {
	case StatusOnTime, StatusLate, StatusEarlyLeave:
		return true
	}
	return false
}

// Overtime is an approved overtime request for a single day.
type Overtime struct {
	ID         string
	EmployeeID string
	CompanyID  string
	Date       time.Time
	Hours      decimal.Decimal
	RestDay    bool
}

// OvertimeDay is the overtime worked on one date after merging requests.
type OvertimeDay struct {
	Date    time.Time       `json:"date"`
	Hours   decimal.Decimal `json:"hours"`
	RestDay bool            `json:"rest_day"`
}

// Summary is the attendance picture of one employee over a pay period.
type Summary struct {
	EmployeeID    string          `json:"employee_id"`
	DaysPresent   int             `json:"days_present"`
	OvertimeDays  []OvertimeDay   `json:"overtime_days"`
	OvertimeHours decimal.Decimal `json:"overtime_hours"`
}

// TierPay is the pay earned inside one overtime tier.
type TierPay struct {
	Hours      decimal.Decimal `json:"hours"`
	Multiplier decimal.Decimal `json:"multiplier"`
	Amount     decimal.Decimal `json:"amount"`
}

type OvertimeBreakdown struct {
	Tiers []TierPay       `json:"tiers"`
	Total decimal.Decimal `json:"total"`
}
