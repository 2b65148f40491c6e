package fixtures

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/statutory"
	"github.com/shopspring/decimal"
)

// ==========================================
// HELPER FUNCTIONS
// ==========================================

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// brackets builds a rate table from {upper bound, rate%} rows plus the rate of the open top band.
func brackets(rows [][2]string, topRate string) []statutory.Bracket {
	out := make([]statutory.Bracket, 0, len(rows)+1)
	for _, r := range rows {
		out = append(out, statutory.Bracket{UpTo: decPtr(r[0]), Rate: dec(r[1])})
	}
	return append(out, statutory.Bracket{Rate: dec(topRate)})
}

// ==========================================
// DEFAULT STATUTORY RULESET (2024)
// ==========================================

// DefaultRuleset returns the BPJS, PPh21 and overtime rules in force from January 2024.
// Rates are percentages; caps and bounds are monthly rupiah unless noted.
func DefaultRuleset() statutory.Ruleset {
	return statutory.Ruleset{
		Name:          "ID-2024",
		EffectiveFrom: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		BPJS: map[statutory.Program]statutory.ProgramRule{
			statutory.ProgramHealth: {CompanyRate: dec("4"), EmployeeRate: dec("1"), Cap: dec("12000000")},
			statutory.ProgramJHT:    {CompanyRate: dec("3.7"), EmployeeRate: dec("2")},
			statutory.ProgramJKK:    {CompanyRate: dec("0.24")},
			statutory.ProgramJKM:    {CompanyRate: dec("0.3")},
			statutory.ProgramJP:     {CompanyRate: dec("2"), EmployeeRate: dec("1"), Cap: dec("10042300")},
		},
		TER: map[statutory.TERCategory][]statutory.Bracket{
			statutory.TERCategoryA: brackets(terA, "34"),
			statutory.TERCategoryB: brackets(terB, "34"),
			statutory.TERCategoryC: brackets(terC, "34"),
		},
		PTKPCategory: map[statutory.PTKPCode]statutory.TERCategory{
			statutory.PTKPTK0: statutory.TERCategoryA,
			statutory.PTKPTK1: statutory.TERCategoryA,
			statutory.PTKPK0:  statutory.TERCategoryA,
			statutory.PTKPTK2: statutory.TERCategoryB,
			statutory.PTKPTK3: statutory.TERCategoryB,
			statutory.PTKPK1:  statutory.TERCategoryB,
			statutory.PTKPK2:  statutory.TERCategoryB,
			statutory.PTKPK3:  statutory.TERCategoryC,
		},
		// Annual: 54,000,000 for the taxpayer, 4,500,000 per dependant and for a spouse.
		PTKPAnnual: map[statutory.PTKPCode]decimal.Decimal{
			statutory.PTKPTK0: dec("54000000"),
			statutory.PTKPTK1: dec("58500000"),
			statutory.PTKPTK2: dec("63000000"),
			statutory.PTKPTK3: dec("67500000"),
			statutory.PTKPK0:  dec("58500000"),
			statutory.PTKPK1:  dec("63000000"),
			statutory.PTKPK2:  dec("67500000"),
			statutory.PTKPK3:  dec("72000000"),
		},
		// Annual bounds.
		Pasal17: brackets([][2]string{
			{"60000000", "5"},
			{"250000000", "15"},
			{"500000000", "25"},
			{"5000000000", "30"},
		}, "35"),
		OccupationalCostRate:       decimal.Zero,
		OccupationalCostAnnualCap:  decimal.Zero,
		NonEmployeeTaxableFraction: dec("0.5"),
		Overtime: statutory.OvertimeRules{
			WeekdayTiers: []statutory.OvertimeTier{
				{Hours: dec("1"), Multiplier: dec("1.5")},
				{Hours: decimal.Zero, Multiplier: dec("2")},
			},
			RestDayTiers: []statutory.OvertimeTier{
				{Hours: dec("8"), Multiplier: dec("2")},
				{Hours: dec("1"), Multiplier: dec("3")},
				{Hours: decimal.Zero, Multiplier: dec("4")},
			},
			HourlyDivisor: dec("173"),
		},
	}
}

// ==========================================
// TER TABLES (PP 58/2023, upper bound inclusive)
// ==========================================

var terA = [][2]string{
	{"5400000", "0"},
	{"5650000", "0.25"},
	{"5950000", "0.5"},
	{"6300000", "0.75"},
	{"6750000", "1"},
	{"7500000", "1.25"},
	{"8550000", "1.5"},
	{"9650000", "1.75"},
	{"10050000", "2"},
	{"10350000", "2.25"},
	{"10700000", "2.5"},
	{"11050000", "3"},
	{"11600000", "3.5"},
	{"12500000", "4"},
	{"13750000", "5"},
	{"15100000", "6"},
	{"16950000", "7"},
	{"19750000", "8"},
	{"24150000", "9"},
	{"26450000", "10"},
	{"28000000", "11"},
	{"30050000", "12"},
	{"32400000", "13"},
	{"35400000", "14"},
	{"39100000", "15"},
	{"43850000", "16"},
	{"47800000", "17"},
	{"51400000", "18"},
	{"56300000", "19"},
	{"62200000", "20"},
	{"68600000", "21"},
	{"77500000", "22"},
	{"89000000", "23"},
	{"103000000", "24"},
	{"125000000", "25"},
	{"157000000", "26"},
	{"206000000", "27"},
	{"337000000", "28"},
	{"454000000", "29"},
	{"550000000", "30"},
	{"695000000", "31"},
	{"910000000", "32"},
	{"1400000000", "33"},
}

var terB = [][2]string{
	{"6200000", "0"},
	{"6500000", "0.25"},
	{"6850000", "0.5"},
	{"7300000", "0.75"},
	{"9200000", "1"},
	{"10750000", "1.5"},
	{"11250000", "2"},
	{"11600000", "2.5"},
	{"12600000", "3"},
	{"13600000", "4"},
	{"14950000", "5"},
	{"16400000", "6"},
	{"18450000", "7"},
	{"21850000", "8"},
	{"26000000", "9"},
	{"27700000", "10"},
	{"29350000", "11"},
	{"31450000", "12"},
	{"33950000", "13"},
	{"37100000", "14"},
	{"41100000", "15"},
	{"45800000", "16"},
	{"49500000", "17"},
	{"53800000", "18"},
	{"58500000", "19"},
	{"64000000", "20"},
	{"71000000", "21"},
	{"80000000", "22"},
	{"93000000", "23"},
	{"109000000", "24"},
	{"129000000", "25"},
	{"163000000", "26"},
	{"211000000", "27"},
	{"374000000", "28"},
	{"459000000", "29"},
	{"555000000", "30"},
	{"704000000", "31"},
	{"957000000", "32"},
	{"1405000000", "33"},
}

var terC = [][2]string{
	{"6600000", "0"},
	{"6950000", "0.25"},
	{"7350000", "0.5"},
	{"7800000", "0.75"},
	{"8850000", "1"},
	{"9800000", "1.25"},
	{"10950000", "1.5"},
	{"11200000", "1.75"},
	{"12050000", "2"},
	{"12950000", "3"},
	{"14150000", "4"},
	{"15550000", "5"},
	{"17050000", "6"},
	{"19500000", "7"},
	{"22700000", "8"},
	{"26600000", "9"},
	{"28100000", "10"},
	{"30100000", "11"},
	{"32600000", "12"},
	{"35400000", "13"},
	{"38900000", "14"},
	{"43000000", "15"},
	{"47400000", "16"},
	{"51200000", "17"},
	{"55800000", "18"},
	{"60400000", "19"},
	{"66700000", "20"},
	{"74500000", "21"},
	{"83200000", "22"},
	{"95600000", "23"},
	{"110000000", "24"},
	{"134000000", "25"},
	{"169000000", "26"},
	{"221000000", "27"},
	{"390000000", "28"},
	{"463000000", "29"},
	{"561000000", "30"},
	{"709000000", "31"},
	{"965000000", "32"},
	{"1419000000", "33"},
}
