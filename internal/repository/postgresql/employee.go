package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/compensation"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const payProfileColumns = `id, company_id, employee_code, full_name, hire_date, employment_type, employment_status,
	base_salary, ptkp_code, tax_config, bpjs_health, bpjs_jht, bpjs_jkk, bpjs_jkm, bpjs_jp,
	COALESCE(bank_name, ''), COALESCE(bank_account_holder_name, ''), COALESCE(bank_account_number, '')`

func scanPayProfile(row pgx.Row) (employee.PayProfile, error) {
	var p employee.PayProfile
	err := row.Scan(
		&p.ID, &p.CompanyID, &p.EmployeeCode, &p.FullName, &p.HireDate, &p.EmploymentType, &p.EmploymentStatus,
		&p.BaseSalary, &p.Tax.PTKP, &p.Tax.TaxConfig,
		&p.Tax.BPJS.Health, &p.Tax.BPJS.JHT, &p.Tax.BPJS.JKK, &p.Tax.BPJS.JKM, &p.Tax.BPJS.JP,
		&p.BankName, &p.BankAccountHolderName, &p.BankAccountNumber,
	)
	if err != nil {
		return employee.PayProfile{}, err
	}
	p.Tax.EmploymentStatus = p.EmploymentType.TaxStatus()
	return p, nil
}

// ListActivePayProfiles implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ListActivePayProfiles(ctx context.Context, companyID string) ([]employee.PayProfile, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + payProfileColumns + `
		FROM employees
		WHERE company_id = $1 AND employment_status = $2 AND deleted_at IS NULL
		ORDER BY employee_code, id
	`

	rows, err := q.Query(ctx, query, companyID, employee.EmploymentStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	defer rows.Close()

	var profiles []employee.PayProfile
	for rows.Next() {
		p, err := scanPayProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return profiles, nil
	}

	ids := make([]string, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.ID)
	}
	components, err := e.components(ctx, q, companyID, ids)
	if err != nil {
		return nil, err
	}
	for i := range profiles {
		profiles[i].Components = components[profiles[i].ID]
	}

	return profiles, nil
}

// GetPayProfile implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetPayProfile(ctx context.Context, id string, companyID string) (employee.PayProfile, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + payProfileColumns + `
		FROM employees
		WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL
	`

	p, err := scanPayProfile(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.PayProfile{}, employee.ErrEmployeeNotFound
		}
		return employee.PayProfile{}, fmt.Errorf("failed to get employee with id %s: %w", id, err)
	}

	components, err := e.components(ctx, q, companyID, []string{id})
	if err != nil {
		return employee.PayProfile{}, err
	}
	p.Components = components[id]

	return p, nil
}

// components loads the active pay components of the given employees, keyed by employee id.
func (e *employeeRepositoryImpl) components(ctx context.Context, q database.Querier, companyID string, employeeIDs []string) (map[string][]compensation.PayComponent, error) {
	query := `
		SELECT employee_id, id, name, strategy, amount, rate, is_fixed_allowance
		FROM employee_pay_components
		WHERE company_id = $1 AND employee_id = ANY($2) AND is_active = true
		ORDER BY employee_id, name, id
	`

	rows, err := q.Query(ctx, query, companyID, employeeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list pay components: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]compensation.PayComponent)
	for rows.Next() {
		var employeeID string
		var c compensation.PayComponent
		if err := rows.Scan(&employeeID, &c.ID, &c.Name, &c.Strategy, &c.Amount, &c.Rate, &c.IsFixedAllowance); err != nil {
			return nil, fmt.Errorf("failed to scan pay component: %w", err)
		}
		result[employeeID] = append(result[employeeID], c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
