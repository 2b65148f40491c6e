package postgresql_test

import (
	"context"
	_ "embed"
	"os"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

//go:embed schema.sql
var schema string

var tables = []string{
	"loan_payments",
	"loans",
	"payslips",
	"payroll_periods",
	"payroll_settings",
	"reimbursements",
	"overtime_requests",
	"attendances",
	"employee_pay_components",
	"employees",
}

// newTestDB connects to TEST_DATABASE_URL, applies the schema and empties every table.
// Tests are skipped when the variable is unset.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	db, err := database.NewPostgreSQLDB(dsn, database.PoolConfig{MaxConns: 10, MinConns: 1})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	ctx := context.Background()
	_, err = db.Exec(ctx, schema)
	require.NoError(t, err)

	for _, table := range tables {
		_, err := db.Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE")
		require.NoError(t, err, table)
	}
	return db
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// createTestEmployee inserts an active permanent TK/0 employee.
func createTestEmployee(t *testing.T, db *database.DB, companyID, code string, baseSalary int64) string {
	t.Helper()

	id := newID()
	_, err := db.Exec(context.Background(), `
		INSERT INTO employees (
			id, company_id, employee_code, full_name, hire_date, employment_type,
			employment_status, base_salary, bank_name, bank_account_holder_name, bank_account_number
		) VALUES ($1, $2, $3, $4, $5, 'permanent', 'active', $6, 'BCA', $4, '1234567890')
	`, id, companyID, code, "Employee "+code, time.Date(2022, time.March, 1, 0, 0, 0, 0, time.UTC), baseSalary)
	require.NoError(t, err)
	return id
}
