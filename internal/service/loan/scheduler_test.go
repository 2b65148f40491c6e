package loan

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/loan"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newAccount(principal string, term int, rate string, kind loan.InterestType) loan.Account {
	start := time.Date(2024, time.January, 25, 0, 0, 0, 0, time.UTC)
	return loan.Account{
		ID:               "loan-1",
		CompanyID:        "company-1",
		EmployeeID:       "emp-1",
		Principal:        d(principal),
		AnnualRate:       d(rate),
		InterestType:     kind,
		TermMonths:       term,
		StartDate:        &start,
		RemainingBalance: d(principal),
		Status:           loan.StatusActive,
	}
}

func TestSchedule_PrincipalSumsToLoan(t *testing.T) {
	entries, err := Schedule(newAccount("1000000", 3, "0", loan.InterestFlat), nil)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "333333", entries[0].Principal.String())
	assert.Equal(t, "333334", entries[1].Principal.String())
	assert.Equal(t, "333333", entries[2].Principal.String())
	assert.True(t, entries[2].RemainingBalance.IsZero())

	for _, tc := range []struct {
		principal string
		term      int
	}{
		{"1000000", 7},
		{"2500001", 11},
		{"999", 12},
		{"15000000", 24},
	} {
		entries, err := Schedule(newAccount(tc.principal, tc.term, "10", loan.InterestReducing), nil)
		require.NoError(t, err)
		sum := decimal.Zero
		for _, e := range entries {
			sum = sum.Add(e.Principal)
		}
		assert.True(t, d(tc.principal).Equal(sum), "principal %s over %d months", tc.principal, tc.term)
	}
}

func TestSchedule_ZeroInterest(t *testing.T) {
	entries, err := Schedule(newAccount("12000000", 12, "0", loan.InterestFlat), nil)
	require.NoError(t, err)

	for i, e := range entries {
		assert.Equal(t, i+1, e.Installment)
		assert.Equal(t, "1000000", e.Principal.String())
		assert.True(t, e.Interest.IsZero())
		assert.Equal(t, decimal.NewFromInt(int64(11-i)*1000000).String(), e.RemainingBalance.String())
		assert.False(t, e.IsPaid)
	}
}

func TestSchedule_Flat(t *testing.T) {
	entries, err := Schedule(newAccount("10000000", 10, "12", loan.InterestFlat), nil)
	require.NoError(t, err)

	for _, e := range entries {
		assert.Equal(t, "120000", e.Interest.String())
		assert.Equal(t, "1120000", e.Total.String())
	}
}

func TestSchedule_Reducing(t *testing.T) {
	entries, err := Schedule(newAccount("12000000", 12, "12", loan.InterestReducing), nil)
	require.NoError(t, err)

	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Interest)
	}
	assert.Equal(t, "120000", entries[0].Interest.String())
	assert.Equal(t, "10000", entries[11].Interest.String())
	assert.Equal(t, "780000", total.String())
}

func TestSchedule_IsIdempotent(t *testing.T) {
	a := newAccount("5000000", 6, "9", loan.InterestReducing)
	payments := []loan.Payment{{InstallmentNumber: 1, Amount: d("900000")}}

	first, err := Schedule(a, payments)
	require.NoError(t, err)
	second, err := Schedule(a, payments)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSchedule_PaidFlags(t *testing.T) {
	a := newAccount("12000000", 12, "0", loan.InterestFlat)
	payments := []loan.Payment{
		{InstallmentNumber: 1, Amount: d("1000000")},
		{InstallmentNumber: 2, Amount: d("400000")},
	}

	entries, err := Schedule(a, payments)
	require.NoError(t, err)

	assert.True(t, entries[0].IsPaid)
	assert.False(t, entries[1].IsPaid)
	assert.Equal(t, "400000", entries[1].PaidAmount.String())
	assert.False(t, entries[2].IsPaid)
}

func TestSchedule_DueDates(t *testing.T) {
	a := newAccount("3000000", 3, "0", loan.InterestFlat)
	start := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)
	a.StartDate = &start

	entries, err := Schedule(a, nil)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), entries[0].DueDate)
	assert.Equal(t, time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC), entries[1].DueDate)
	assert.Equal(t, time.Date(2024, time.April, 30, 0, 0, 0, 0, time.UTC), entries[2].DueDate)
}

func TestSchedule_InvalidTerms(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(a *loan.Account)
	}{
		{"zero principal", func(a *loan.Account) { a.Principal = decimal.Zero }},
		{"zero term", func(a *loan.Account) { a.TermMonths = 0 }},
		{"negative rate", func(a *loan.Account) { a.AnnualRate = d("-1") }},
		{"unknown interest type", func(a *loan.Account) { a.InterestType = "balloon" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newAccount("1000000", 10, "5", loan.InterestFlat)
			tt.mutate(&a)
			_, err := Schedule(a, nil)
			assert.ErrorIs(t, err, loan.ErrInvalidLoanTerms)
		})
	}
}

func TestNextDue(t *testing.T) {
	a := newAccount("12000000", 12, "12", loan.InterestReducing)
	a.InstallmentsPaid = 3
	a.RemainingBalance = d("9000000")

	due, err := NextDue(a)
	require.NoError(t, err)
	assert.Equal(t, 4, due.Installment)
	assert.Equal(t, "1000000", due.Principal.String())
	assert.Equal(t, "90000", due.Interest.String())
	assert.Equal(t, "1090000", due.Total.String())
}

func TestNextDue_ArrearsAfterTerm(t *testing.T) {
	a := newAccount("12000000", 12, "12", loan.InterestFlat)
	a.InstallmentsPaid = 12
	a.RemainingBalance = d("500000")

	due, err := NextDue(a)
	require.NoError(t, err)
	assert.Equal(t, 13, due.Installment)
	assert.Equal(t, "500000", due.Principal.String())
	assert.True(t, due.Interest.IsZero())
}

func TestNextDue_NotActive(t *testing.T) {
	a := newAccount("12000000", 12, "0", loan.InterestFlat)
	a.Status = loan.StatusApproved

	_, err := NextDue(a)
	assert.ErrorIs(t, err, loan.ErrLoanNotActive)
}
