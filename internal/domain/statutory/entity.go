package statutory

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// PTKPCode encodes marital and dependant status for the non-taxable threshold.
type PTKPCode string

const (
	PTKPTK0 PTKPCode = "TK/0"
	PTKPTK1 PTKPCode = "TK/1"
	PTKPTK2 PTKPCode = "TK/2"
	PTKPTK3 PTKPCode = "TK/3"
	PTKPK0  PTKPCode = "K/0"
	PTKPK1  PTKPCode = "K/1"
	PTKPK2  PTKPCode = "K/2"
	PTKPK3  PTKPCode = "K/3"
)

// AllPTKPCodes lists the codes in display order.
var AllPTKPCodes = []PTKPCode{PTKPTK0, PTKPTK1, PTKPTK2, PTKPTK3, PTKPK0, PTKPK1, PTKPK2, PTKPK3}

func (c PTKPCode) Valid() bool {
	for _, code := range AllPTKPCodes {
		if c == code {
			return true
		}
	}
	return false
}

// TERCategory is the monthly effective-rate table an employee falls under.
type TERCategory string

const (
	TERCategoryA TERCategory = "A"
	TERCategoryB TERCategory = "B"
	TERCategoryC TERCategory = "C"
)

// TaxConfig decides who bears PPh21.
type TaxConfig string

const (
	TaxConfigGross   TaxConfig = "gross"
	TaxConfigGrossUp TaxConfig = "gross_up"
	TaxConfigNett    TaxConfig = "nett"
)

func (t TaxConfig) Valid() bool {
	return t == TaxConfigGross || t == TaxConfigGrossUp || t == TaxConfigNett
}

// EmploymentTaxStatus selects the PPh21 withholding scheme.
type EmploymentTaxStatus string

const (
	EmploymentPermanent    EmploymentTaxStatus = "permanent"
	EmploymentNonPermanent EmploymentTaxStatus = "non_permanent"
	EmploymentNonEmployee  EmploymentTaxStatus = "non_employee"
)

func (s EmploymentTaxStatus) Valid() bool {
	return s == EmploymentPermanent || s == EmploymentNonPermanent || s == EmploymentNonEmployee
}

// Program is a BPJS sub-program.
type Program string

const (
	ProgramHealth Program = "health"
	ProgramJHT    Program = "jht"
	ProgramJKK    Program = "jkk"
	ProgramJKM    Program = "jkm"
	ProgramJP     Program = "jp"
)

// Programs lists the BPJS programs in payslip order.
var Programs = []Program{ProgramHealth, ProgramJHT, ProgramJKK, ProgramJKM, ProgramJP}

// BPJSEnrollment holds the employee's opt-in flags per program.
type BPJSEnrollment struct {
	Health bool `json:"health"`
	JHT    bool `json:"jht"`
	JKK    bool `json:"jkk"`
	JKM    bool `json:"jkm"`
	JP     bool `json:"jp"`
}

// FullEnrollment enrolls an employee in every program.
func FullEnrollment() BPJSEnrollment {
	return BPJSEnrollment{Health: true, JHT: true, JKK: true, JKM: true, JP: true}
}

func (e BPJSEnrollment) Enrolled(p Program) bool {
	switch p {
	case ProgramHealth:
		return e.Health
	case ProgramJHT:
		return e.JHT
	case ProgramJKK:
		return e.JKK
	case ProgramJKM:
		return e.JKM
	case ProgramJP:
		return e.JP
	}
	return false
}

// TaxProfile is the part of an employee record the calculator needs.
type TaxProfile struct {
	PTKP             PTKPCode            `json:"ptkp_code"`
	TaxConfig        TaxConfig           `json:"tax_config"`
	EmploymentStatus EmploymentTaxStatus `json:"employment_status"`
	BPJS             BPJSEnrollment      `json:"bpjs"`
}

// YearToDate carries the figures already booked January..November; only December uses it.
type YearToDate struct {
	Gross         decimal.Decimal `json:"gross"`
	EmployeeBPJS  decimal.Decimal `json:"employee_bpjs"`
	Pph21Withheld decimal.Decimal `json:"pph21_withheld"`
}

// ProgramRule is the contribution rule of one BPJS program. A zero Cap means uncapped.
type ProgramRule struct {
	CompanyRate  decimal.Decimal `json:"company_rate"`
	EmployeeRate decimal.Decimal `json:"employee_rate"`
	Cap          decimal.Decimal `json:"cap"`
}

// Bracket is one band of a rate table. A nil UpTo marks the open top band.
type Bracket struct {
	UpTo *decimal.Decimal `json:"up_to"`
	Rate decimal.Decimal  `json:"rate"`
}

// OvertimeTier applies Multiplier to the next Hours hours of a day. Zero Hours takes the rest.
type OvertimeTier struct {
	Hours      decimal.Decimal `json:"hours"`
	Multiplier decimal.Decimal `json:"multiplier"`
}

type OvertimeRules struct {
	WeekdayTiers  []OvertimeTier  `json:"weekday_tiers"`
	RestDayTiers  []OvertimeTier  `json:"rest_day_tiers"`
	HourlyDivisor decimal.Decimal `json:"hourly_divisor"`
}

// Ruleset is every regulated rate, cap and bracket in force from EffectiveFrom.
type Ruleset struct {
	Name                       string                       `json:"name"`
	EffectiveFrom              time.Time                    `json:"effective_from"`
	BPJS                       map[Program]ProgramRule      `json:"bpjs"`
	TER                        map[TERCategory][]Bracket    `json:"ter"`
	PTKPCategory               map[PTKPCode]TERCategory     `json:"ptkp_category"`
	PTKPAnnual                 map[PTKPCode]decimal.Decimal `json:"ptkp_annual"`
	Pasal17                    []Bracket                    `json:"pasal17"`
	OccupationalCostRate       decimal.Decimal              `json:"occupational_cost_rate"`
	OccupationalCostAnnualCap  decimal.Decimal              `json:"occupational_cost_annual_cap"`
	NonEmployeeTaxableFraction decimal.Decimal              `json:"non_employee_taxable_fraction"`
	Overtime                   OvertimeRules                `json:"overtime"`
}

// Category returns the TER category of a PTKP code.
func (r Ruleset) Category(code PTKPCode) (TERCategory, error) {
	if !code.Valid() {
		return "", ErrInvalidTaxProfile
	}
	cat, ok := r.PTKPCategory[code]
	if !ok {
		return "", ErrInvalidTaxProfile
	}
	return cat, nil
}

// RulesetBook selects the ruleset in force for a payroll month.
type RulesetBook struct {
	rulesets []Ruleset
}

func NewRulesetBook(rulesets ...Ruleset) (*RulesetBook, error) {
	if len(rulesets) == 0 {
		return nil, ErrNoRulesetEffective
	}
	for _, r := range rulesets {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}
	sorted := make([]Ruleset, len(rulesets))
	copy(sorted, rulesets)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].EffectiveFrom.Before(sorted[j].EffectiveFrom)
	})
	return &RulesetBook{rulesets: sorted}, nil
}

// For returns the latest ruleset effective on the first day of the given month.
func (b *RulesetBook) For(year, month int) (Ruleset, error) {
	day := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	for i := len(b.rulesets) - 1; i >= 0; i-- {
		if !b.rulesets[i].EffectiveFrom.After(day) {
			return b.rulesets[i], nil
		}
	}
	return Ruleset{}, ErrNoRulesetEffective
}

// ProgramShare is one BPJS program's contribution on a payslip.
type ProgramShare struct {
	Program        Program         `json:"program"`
	Base           decimal.Decimal `json:"base"`
	CompanyAmount  decimal.Decimal `json:"company_amount"`
	EmployeeAmount decimal.Decimal `json:"employee_amount"`
}

type BPJSBreakdown struct {
	Lines         []ProgramShare  `json:"lines"`
	EmployeeTotal decimal.Decimal `json:"employee_total"`
	CompanyTotal  decimal.Decimal `json:"company_total"`
}

// Line returns the share of one program, zero when the program is absent.
func (b BPJSBreakdown) Line(p Program) ProgramShare {
	for _, l := range b.Lines {
		if l.Program == p {
			return l
		}
	}
	return ProgramShare{Program: p}
}

type TaxMethod string

const (
	TaxMethodTER                TaxMethod = "ter"
	TaxMethodPasal17Annual      TaxMethod = "pasal17_annual"
	TaxMethodPasal17NonEmployee TaxMethod = "pasal17_non_employee"
)

// PPh21Breakdown explains how the month's income tax was reached.
// Tax is the month's liability and may be negative in December (a refund).
// Withheld is the part deducted from the employee's pay.
type PPh21Breakdown struct {
	Method       TaxMethod       `json:"method"`
	PTKP         PTKPCode        `json:"ptkp_code"`
	Category     TERCategory     `json:"ter_category,omitempty"`
	Rate         decimal.Decimal `json:"rate"`
	TaxBase      decimal.Decimal `json:"tax_base"`
	Tax          decimal.Decimal `json:"tax"`
	Withheld     decimal.Decimal `json:"withheld"`
	CompanyBorne decimal.Decimal `json:"company_borne"`
	TaxAllowance decimal.Decimal `json:"tax_allowance"`
	Refund       bool            `json:"refund"`

	AnnualGross      decimal.Decimal `json:"annual_gross,omitzero"`
	AnnualPKP        decimal.Decimal `json:"annual_pkp,omitzero"`
	AnnualTax        decimal.Decimal `json:"annual_tax,omitzero"`
	PriorWithheld    decimal.Decimal `json:"prior_withheld,omitzero"`
	OccupationalCost decimal.Decimal `json:"occupational_cost,omitzero"`
	PTKPAnnual       decimal.Decimal `json:"ptkp_annual,omitzero"`
}

// Breakdown is the full statutory result for one employee-month.
type Breakdown struct {
	GrossIncome decimal.Decimal `json:"gross_income"`
	Month       int             `json:"month"`
	Year        int             `json:"year"`
	Ruleset     string          `json:"ruleset"`
	BPJS        BPJSBreakdown   `json:"bpjs"`
	PPh21       PPh21Breakdown  `json:"pph21"`
}

// Input is everything Calculator.Calculate needs.
type Input struct {
	GrossIncome decimal.Decimal
	Profile     TaxProfile
	Month       int
	Year        int
	YearToDate  YearToDate
}
