package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/statutory"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

// ========== SETTINGS ==========

func (r *payrollRepository) GetSettings(ctx context.Context, companyID string) (payroll.Settings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, overtime_enabled, reimbursements_in_payroll,
			   thr_includes_fixed_allowances, created_at, updated_at
		FROM payroll_settings
		WHERE company_id = $1
	`

	var s payroll.Settings
	err := q.QueryRow(ctx, query, companyID).Scan(
		&s.ID, &s.CompanyID, &s.OvertimeEnabled, &s.ReimbursementsInPayroll,
		&s.ThrIncludesFixedAllowances, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Settings{}, payroll.ErrSettingsNotFound
		}
		return payroll.Settings{}, fmt.Errorf("failed to get payroll settings: %w", err)
	}

	return s, nil
}

func (r *payrollRepository) UpsertSettings(ctx context.Context, settings payroll.Settings) (payroll.Settings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_settings (
			company_id, overtime_enabled, reimbursements_in_payroll, thr_includes_fixed_allowances
		) VALUES ($1, $2, $3, $4)
		ON CONFLICT (company_id) DO UPDATE SET
			overtime_enabled = EXCLUDED.overtime_enabled,
			reimbursements_in_payroll = EXCLUDED.reimbursements_in_payroll,
			thr_includes_fixed_allowances = EXCLUDED.thr_includes_fixed_allowances,
			updated_at = NOW()
		RETURNING id, company_id, overtime_enabled, reimbursements_in_payroll,
			thr_includes_fixed_allowances, created_at, updated_at
	`

	var s payroll.Settings
	err := q.QueryRow(ctx, query,
		settings.CompanyID, settings.OvertimeEnabled, settings.ReimbursementsInPayroll, settings.ThrIncludesFixedAllowances,
	).Scan(
		&s.ID, &s.CompanyID, &s.OvertimeEnabled, &s.ReimbursementsInPayroll,
		&s.ThrIncludesFixedAllowances, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return payroll.Settings{}, fmt.Errorf("failed to upsert payroll settings: %w", err)
	}

	return s, nil
}

// ========== PERIODS ==========

const periodColumns = `id, company_id, period_month, period_year, period_start, period_end,
	status, totals, finalized_at, finalized_by, created_at, updated_at`

func scanPeriod(row pgx.Row) (payroll.Period, error) {
	var p payroll.Period
	var totals []byte
	err := row.Scan(
		&p.ID, &p.CompanyID, &p.Month, &p.Year, &p.PeriodStart, &p.PeriodEnd,
		&p.Status, &totals, &p.FinalizedAt, &p.FinalizedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return payroll.Period{}, err
	}
	if err := json.Unmarshal(totals, &p.Totals); err != nil {
		return payroll.Period{}, fmt.Errorf("failed to decode period totals: %w", err)
	}
	return p, nil
}

func (r *payrollRepository) PeriodExists(ctx context.Context, companyID string, month, year int) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM payroll_periods
			WHERE company_id = $1 AND period_month = $2 AND period_year = $3
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, companyID, month, year).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check payroll period: %w", err)
	}
	return exists, nil
}

// CreatePeriod relies on uk_payroll_period (company_id, period_start, period_end):
// a conflicting insert returns no row instead of failing.
func (r *payrollRepository) CreatePeriod(ctx context.Context, period payroll.Period) (payroll.Period, error) {
	q := GetQuerier(ctx, r.db)

	totals, err := json.Marshal(period.Totals)
	if err != nil {
		return payroll.Period{}, fmt.Errorf("failed to encode period totals: %w", err)
	}

	query := `
		INSERT INTO payroll_periods (
			id, company_id, period_month, period_year, period_start, period_end, status, totals
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (company_id, period_start, period_end) DO NOTHING
		RETURNING ` + periodColumns

	created, err := scanPeriod(q.QueryRow(ctx, query,
		period.ID, period.CompanyID, period.Month, period.Year,
		period.PeriodStart, period.PeriodEnd, period.Status, totals,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isConflict(err) {
			return payroll.Period{}, payroll.ErrDuplicatePeriod
		}
		return payroll.Period{}, fmt.Errorf("failed to create payroll period: %w", err)
	}

	return created, nil
}

func (r *payrollRepository) GetPeriodByID(ctx context.Context, id string, companyID string) (payroll.Period, error) {
	return r.getPeriod(ctx, id, companyID, "")
}

func (r *payrollRepository) GetPeriodByIDForUpdate(ctx context.Context, id string, companyID string) (payroll.Period, error) {
	return r.getPeriod(ctx, id, companyID, " FOR UPDATE")
}

func (r *payrollRepository) getPeriod(ctx context.Context, id, companyID, lock string) (payroll.Period, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + periodColumns + `
		FROM payroll_periods
		WHERE id = $1 AND company_id = $2` + lock

	p, err := scanPeriod(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Period{}, payroll.ErrPeriodNotFound
		}
		return payroll.Period{}, fmt.Errorf("failed to get payroll period: %w", err)
	}
	return p, nil
}

func (r *payrollRepository) ListPeriods(ctx context.Context, companyID string, filter payroll.PeriodFilter) ([]payroll.Period, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := " FROM payroll_periods WHERE company_id = $1"
	args := []interface{}{companyID}
	argIdx := 2

	if filter.PeriodMonth != nil {
		baseQuery += fmt.Sprintf(" AND period_month = $%d", argIdx)
		args = append(args, *filter.PeriodMonth)
		argIdx++
	}
	if filter.PeriodYear != nil {
		baseQuery += fmt.Sprintf(" AND period_year = $%d", argIdx)
		args = append(args, *filter.PeriodYear)
		argIdx++
	}
	if filter.Status != nil {
		baseQuery += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	var totalCount int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*)"+baseQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll periods: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s%s
		ORDER BY period_year DESC, period_month DESC
		LIMIT $%d OFFSET $%d`, periodColumns, baseQuery, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll periods: %w", err)
	}
	defer rows.Close()

	var periods []payroll.Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll period: %w", err)
		}
		periods = append(periods, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return periods, totalCount, nil
}

func (r *payrollRepository) UpdatePeriod(ctx context.Context, period payroll.Period) error {
	q := GetQuerier(ctx, r.db)

	totals, err := json.Marshal(period.Totals)
	if err != nil {
		return fmt.Errorf("failed to encode period totals: %w", err)
	}

	query := `
		UPDATE payroll_periods
		SET status = $3, totals = $4, finalized_at = $5, finalized_by = $6, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
	`

	tag, err := q.Exec(ctx, query, period.ID, period.CompanyID, period.Status, totals, period.FinalizedAt, period.FinalizedBy)
	if err != nil {
		return fmt.Errorf("failed to update payroll period: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPeriodNotFound
	}
	return nil
}

// ========== PAYSLIPS ==========

// payslipDetail is the part of a payslip kept as JSONB.
type payslipDetail struct {
	EmployeeCode            string                   `json:"employee_code"`
	EmployeeName            string                   `json:"employee_name"`
	Components              []payroll.ComponentLine  `json:"components"`
	DaysPresent             int                      `json:"days_present"`
	OvertimeHours           decimal.Decimal          `json:"overtime_hours"`
	ReimbursementsInPayroll bool                     `json:"reimbursements_in_payroll"`
	BPJS                    statutory.BPJSBreakdown  `json:"bpjs"`
	PPh21                   statutory.PPh21Breakdown `json:"pph21"`
	LoanDeductions          []payroll.LoanDeduction  `json:"loan_deductions"`
	BankName                string                   `json:"bank_name"`
	BankAccountHolder       string                   `json:"bank_account_holder"`
	BankAccountNumber       string                   `json:"bank_account_number"`
}

const payslipColumns = `id, period_id, company_id, employee_id, period_start, period_end,
	basic_salary, fixed_allowances, daily_allowances, overtime_pay, reimbursement_total,
	tax_allowance, gross_earnings, taxable_gross, employee_bpjs, company_bpjs,
	ptkp_code, ter_category, pph21, pph21_company_borne, pph21_shortfall, pph21_refund,
	loan_deduction, loan_shortfall, net_salary, detail, created_at`

func scanPayslip(row pgx.Row) (payroll.Payslip, error) {
	var p payroll.Payslip
	var raw []byte
	err := row.Scan(
		&p.ID, &p.PeriodID, &p.CompanyID, &p.EmployeeID, &p.PeriodStart, &p.PeriodEnd,
		&p.BasicSalary, &p.FixedAllowances, &p.DailyAllowances, &p.OvertimePay, &p.ReimbursementTotal,
		&p.TaxAllowance, &p.GrossEarnings, &p.TaxableGross, &p.EmployeeBPJS, &p.CompanyBPJS,
		&p.PTKPCode, &p.TERCategory, &p.Pph21, &p.Pph21CompanyBorne, &p.Pph21Shortfall, &p.Pph21Refund,
		&p.LoanDeduction, &p.LoanShortfall, &p.NetSalary, &raw, &p.CreatedAt,
	)
	if err != nil {
		return payroll.Payslip{}, err
	}

	var d payslipDetail
	if err := json.Unmarshal(raw, &d); err != nil {
		return payroll.Payslip{}, fmt.Errorf("failed to decode payslip detail: %w", err)
	}
	p.EmployeeCode = d.EmployeeCode
	p.EmployeeName = d.EmployeeName
	p.Components = d.Components
	p.DaysPresent = d.DaysPresent
	p.OvertimeHours = d.OvertimeHours
	p.ReimbursementsInPayroll = d.ReimbursementsInPayroll
	p.BPJS = d.BPJS
	p.PPh21 = d.PPh21
	p.LoanDeductions = d.LoanDeductions
	p.BankName = d.BankName
	p.BankAccountHolder = d.BankAccountHolder
	p.BankAccountNumber = d.BankAccountNumber
	return p, nil
}

// CreatePayslips inserts the payslips in one batch round trip.
func (r *payrollRepository) CreatePayslips(ctx context.Context, payslips []payroll.Payslip) error {
	if len(payslips) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payslips (
			id, period_id, company_id, employee_id, period_start, period_end,
			basic_salary, fixed_allowances, daily_allowances, overtime_pay, reimbursement_total,
			tax_allowance, gross_earnings, taxable_gross, employee_bpjs, company_bpjs,
			ptkp_code, ter_category, pph21, pph21_company_borne, pph21_shortfall, pph21_refund,
			loan_deduction, loan_shortfall, net_salary, detail
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22,
			$23, $24, $25, $26
		)
	`

	batch := &pgx.Batch{}
	for _, p := range payslips {
		detail, err := json.Marshal(payslipDetail{
			EmployeeCode:            p.EmployeeCode,
			EmployeeName:            p.EmployeeName,
			Components:              p.Components,
			DaysPresent:             p.DaysPresent,
			OvertimeHours:           p.OvertimeHours,
			ReimbursementsInPayroll: p.ReimbursementsInPayroll,
			BPJS:                    p.BPJS,
			PPh21:                   p.PPh21,
			LoanDeductions:          p.LoanDeductions,
			BankName:                p.BankName,
			BankAccountHolder:       p.BankAccountHolder,
			BankAccountNumber:       p.BankAccountNumber,
		})
		if err != nil {
			return fmt.Errorf("failed to encode payslip detail for employee %s: %w", p.EmployeeID, err)
		}
		batch.Queue(query,
			p.ID, p.PeriodID, p.CompanyID, p.EmployeeID, p.PeriodStart, p.PeriodEnd,
			p.BasicSalary, p.FixedAllowances, p.DailyAllowances, p.OvertimePay, p.ReimbursementTotal,
			p.TaxAllowance, p.GrossEarnings, p.TaxableGross, p.EmployeeBPJS, p.CompanyBPJS,
			p.PTKPCode, p.TERCategory, p.Pph21, p.Pph21CompanyBorne, p.Pph21Shortfall, p.Pph21Refund,
			p.LoanDeduction, p.LoanShortfall, p.NetSalary, detail,
		)
	}

	results := q.SendBatch(ctx, batch)
	defer results.Close()

	for _, p := range payslips {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to create payslip for employee %s: %w", p.EmployeeID, err)
		}
	}
	return results.Close()
}

func (r *payrollRepository) DeletePayslips(ctx context.Context, periodID string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM payslips WHERE period_id = $1 AND company_id = $2`, periodID, companyID); err != nil {
		return fmt.Errorf("failed to delete payslips: %w", err)
	}
	return nil
}

func (r *payrollRepository) ListPayslips(ctx context.Context, periodID string, companyID string) ([]payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payslipColumns + `
		FROM payslips
		WHERE period_id = $1 AND company_id = $2
		ORDER BY detail->>'employee_code', employee_id
	`

	rows, err := q.Query(ctx, query, periodID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslips: %w", err)
	}
	defer rows.Close()

	var payslips []payroll.Payslip
	for rows.Next() {
		p, err := scanPayslip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payslip: %w", err)
		}
		payslips = append(payslips, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return payslips, nil
}

func (r *payrollRepository) GetPayslipByID(ctx context.Context, id string, companyID string) (payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payslipColumns + `
		FROM payslips
		WHERE id = $1 AND company_id = $2
	`

	p, err := scanPayslip(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Payslip{}, payroll.ErrPayslipNotFound
		}
		return payroll.Payslip{}, fmt.Errorf("failed to get payslip: %w", err)
	}
	return p, nil
}

// ========== AGGREGATIONS ==========

// YearToDate sums every earlier period of the year, draft or paid. Company-borne
// tax counts as withheld: it was paid to the tax office on the employee's behalf.
func (r *payrollRepository) YearToDate(ctx context.Context, companyID string, year, beforeMonth int, employeeIDs []string) (map[string]statutory.YearToDate, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ps.employee_id,
			   COALESCE(SUM(ps.taxable_gross), 0),
			   COALESCE(SUM(ps.employee_bpjs), 0),
			   COALESCE(SUM(ps.pph21 + ps.pph21_company_borne), 0)
		FROM payslips ps
		JOIN payroll_periods pp ON pp.id = ps.period_id
		WHERE ps.company_id = $1
			AND pp.period_year = $2
			AND pp.period_month < $3
			AND ps.employee_id = ANY($4)
		GROUP BY ps.employee_id
	`

	rows, err := q.Query(ctx, query, companyID, year, beforeMonth, employeeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to sum year-to-date payslips: %w", err)
	}
	defer rows.Close()

	result := make(map[string]statutory.YearToDate)
	for rows.Next() {
		var employeeID string
		var ytd statutory.YearToDate
		if err := rows.Scan(&employeeID, &ytd.Gross, &ytd.EmployeeBPJS, &ytd.Pph21Withheld); err != nil {
			return nil, fmt.Errorf("failed to scan year-to-date row: %w", err)
		}
		result[employeeID] = ytd
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// isConflict reports a unique violation, or a serialization failure raised when a
// concurrent transaction committed the same key first.
func isConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" || pgErr.Code == "40001"
}
