package thr

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/thr"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTenureMonths(t *testing.T) {
	tests := []struct {
		name      string
		hire      time.Time
		reference time.Time
		want      int
	}{
		{"same day", date(2024, 6, 1), date(2024, 6, 1), 0},
		{"day before first month", date(2024, 6, 15), date(2024, 7, 14), 0},
		{"first month reached", date(2024, 6, 15), date(2024, 7, 15), 1},
		{"across year", date(2024, 6, 1), date(2025, 1, 1), 7},
		{"exactly one year", date(2023, 3, 10), date(2024, 3, 10), 12},
		{"reference before hire", date(2024, 6, 1), date(2024, 5, 1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TenureMonths(tt.hire, tt.reference))
		})
	}
}

func TestCalculate_ProRated(t *testing.T) {
	result, err := Calculate(date(2024, 6, 1), date(2025, 1, 1), decimal.NewFromInt(12000000))
	require.NoError(t, err)

	assert.Equal(t, 7, result.MonthsOfService)
	assert.True(t, result.Eligible)
	assert.Equal(t, "58.33", result.Percentage.String())
	assert.Equal(t, "7000000", result.Amount.String())
}

func TestCalculate_AmountUsesExactFraction(t *testing.T) {
	result, err := Calculate(date(2024, 6, 1), date(2025, 1, 1), decimal.NewFromInt(10000000))
	require.NoError(t, err)

	// 10,000,000 × 7/12 = 5,833,333.33
	assert.Equal(t, "5833333", result.Amount.String())
}

func TestCalculate_FullYear(t *testing.T) {
	for _, reference := range []time.Time{date(2025, 6, 1), date(2027, 2, 14)} {
		result, err := Calculate(date(2024, 6, 1), reference, decimal.NewFromInt(8500000))
		require.NoError(t, err)

		assert.True(t, result.Eligible)
		assert.Equal(t, "100", result.Percentage.String())
		assert.Equal(t, "8500000", result.Amount.String())
	}
}

func TestCalculate_NotEligible(t *testing.T) {
	result, err := Calculate(date(2024, 6, 10), date(2024, 7, 1), decimal.NewFromInt(8500000))
	require.NoError(t, err)

	assert.Equal(t, 0, result.MonthsOfService)
	assert.False(t, result.Eligible)
	assert.True(t, result.Amount.IsZero())
	assert.NotEmpty(t, result.Reason)
}

func TestCalculate_Errors(t *testing.T) {
	_, err := Calculate(date(2024, 6, 1), date(2024, 5, 31), decimal.NewFromInt(1))
	assert.ErrorIs(t, err, thr.ErrInvalidReferenceDate)

	_, err = Calculate(date(2024, 6, 1), date(2025, 6, 1), decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, thr.ErrInvalidSalaryBase)
}
