package statutory_test

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/statutory"
	"github.com/cmlabs-hris/hris-payroll-go/internal/fixtures"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRulesetIsValid(t *testing.T) {
	require.NoError(t, fixtures.DefaultRuleset().Validate())
}

func TestRulesetValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(rs *statutory.Ruleset)
	}{
		{"missing program", func(rs *statutory.Ruleset) { delete(rs.BPJS, statutory.ProgramJP) }},
		{"negative cap", func(rs *statutory.Ruleset) {
			rule := rs.BPJS[statutory.ProgramHealth]
			rule.Cap = decimal.NewFromInt(-1)
			rs.BPJS[statutory.ProgramHealth] = rule
		}},
		{"closed top bracket", func(rs *statutory.Ruleset) { rs.Pasal17 = rs.Pasal17[:len(rs.Pasal17)-1] }},
		{"missing ptkp category", func(rs *statutory.Ruleset) { delete(rs.PTKPCategory, statutory.PTKPK3) }},
		{"zero divisor", func(rs *statutory.Ruleset) { rs.Overtime.HourlyDivisor = decimal.Zero }},
		{"fraction above one", func(rs *statutory.Ruleset) { rs.NonEmployeeTaxableFraction = decimal.NewFromInt(2) }},
		{"no name", func(rs *statutory.Ruleset) { rs.Name = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := fixtures.DefaultRuleset()
			tt.mutate(&rs)
			assert.ErrorIs(t, rs.Validate(), statutory.ErrInvalidRuleset)
		})
	}
}

func TestRulesetBook_For(t *testing.T) {
	base := fixtures.DefaultRuleset()
	next := fixtures.DefaultRuleset()
	next.Name = "ID-2025"
	next.EffectiveFrom = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	book, err := statutory.NewRulesetBook(next, base)
	require.NoError(t, err)

	rs, err := book.For(2024, 12)
	require.NoError(t, err)
	assert.Equal(t, "ID-2024", rs.Name)

	rs, err = book.For(2025, 3)
	require.NoError(t, err)
	assert.Equal(t, "ID-2025", rs.Name)

	_, err = book.For(2023, 12)
	assert.ErrorIs(t, err, statutory.ErrNoRulesetEffective)
}

func TestRulesetCategory(t *testing.T) {
	rs := fixtures.DefaultRuleset()

	cases := map[statutory.PTKPCode]statutory.TERCategory{
		statutory.PTKPTK0: statutory.TERCategoryA,
		statutory.PTKPK0:  statutory.TERCategoryA,
		statutory.PTKPTK2: statutory.TERCategoryB,
		statutory.PTKPK2:  statutory.TERCategoryB,
		statutory.PTKPK3:  statutory.TERCategoryC,
	}
	for code, want := range cases {
		got, err := rs.Category(code)
		require.NoError(t, err)
		assert.Equal(t, want, got, code)
	}

	_, err := rs.Category("K/9")
	assert.ErrorIs(t, err, statutory.ErrInvalidTaxProfile)
}
