package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/fixtures"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestHourlyRate(t *testing.T) {
	rate, err := HourlyRate(d("17300000"), d("173"))
	require.NoError(t, err)
	assert.True(t, d("100000").Equal(rate))

	_, err = HourlyRate(d("17300000"), decimal.Zero)
	assert.ErrorIs(t, err, attendance.ErrInvalidHourlyDivisor)
}

func TestOvertimePay_Tiers(t *testing.T) {
	rules := fixtures.DefaultRuleset().Overtime
	rate := d("100000")

	tests := []struct {
		name    string
		hours   string
		restDay bool
		want    string
		tiers   int
	}{
		{"weekday first hour", "1", false, "150000", 1},
		{"weekday three hours", "3", false, "550000", 2},
		{"weekday half hour", "0.5", false, "75000", 1},
		{"rest day eight hours", "8", true, "1600000", 1},
		{"rest day eight and a half", "8.5", true, "1750000", 2},
		{"rest day ten hours", "10", true, "2300000", 3},
		{"no overtime", "0", false, "0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := OvertimePay(d(tt.hours), tt.restDay, rate, rules)
			require.NoError(t, err)
			assert.True(t, d(tt.want).Equal(got.Total), "got %s", got.Total)
			assert.Len(t, got.Tiers, tt.tiers)
		})
	}
}

func TestOvertimePay_NegativeHours(t *testing.T) {
	_, err := OvertimePay(d("-1"), false, d("100000"), fixtures.DefaultRuleset().Overtime)
	assert.ErrorIs(t, err, attendance.ErrInvalidOvertimeHours)
}

func TestPeriodOvertimePay(t *testing.T) {
	summary := attendance.Summary{
		OvertimeDays: []attendance.OvertimeDay{
			{Date: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), Hours: d("3")},
			{Date: time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC), Hours: d("10"), RestDay: true},
		},
	}

	got, err := PeriodOvertimePay(summary, d("17300000"), fixtures.DefaultRuleset().Overtime)
	require.NoError(t, err)
	assert.True(t, d("2850000").Equal(got), "got %s", got)
}
