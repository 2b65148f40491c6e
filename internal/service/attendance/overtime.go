package attendance

import (
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/statutory"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/money"
	"github.com/shopspring/decimal"
)

// HourlyRate is the overtime hourly wage: monthly base divided by the statutory divisor.
func HourlyRate(monthlyBase, divisor decimal.Decimal) (decimal.Decimal, error) {
	if !divisor.IsPositive() {
		return decimal.Zero, attendance.ErrInvalidHourlyDivisor
	}
	return monthlyBase.Div(divisor), nil
}

// OvertimePay prices one day of overtime tier by tier.
// Each tier takes up to its Hours of what is left; a zero-hour tier takes the rest.
func OvertimePay(hours decimal.Decimal, restDay bool, hourlyRate decimal.Decimal, rules statutory.OvertimeRules) (attendance.OvertimeBreakdown, error) {
	if hours.IsNegative() {
		return attendance.OvertimeBreakdown{}, attendance.ErrInvalidOvertimeHours
	}

	tiers := rules.WeekdayTiers
	if restDay {
		tiers = rules.RestDayTiers
	}

	out := attendance.OvertimeBreakdown{Total: decimal.Zero}
	left := hours
	for _, tier := range tiers {
		if !left.IsPositive() {
			break
		}
		take := left
		if tier.Hours.IsPositive() && take.GreaterThan(tier.Hours) {
			take = tier.Hours
		}
		amount := take.Mul(tier.Multiplier).Mul(hourlyRate)
		out.Tiers = append(out.Tiers, attendance.TierPay{Hours: take, Multiplier: tier.Multiplier, Amount: money.Rupiah(amount)})
		out.Total = out.Total.Add(amount)
		left = left.Sub(take)
	}
	out.Total = money.Rupiah(out.Total)

	return out, nil
}

// PeriodOvertimePay prices every overtime day of a summary and returns the total.
func PeriodOvertimePay(summary attendance.Summary, monthlyBase decimal.Decimal, rules statutory.OvertimeRules) (decimal.Decimal, error) {
	rate, err := HourlyRate(monthlyBase, rules.HourlyDivisor)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, day := range summary.OvertimeDays {
		b, err := OvertimePay(day.Hours, day.RestDay, rate, rules)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(b.Total)
	}
	return total, nil
}
