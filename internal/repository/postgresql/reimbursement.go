package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
)

type reimbursementRepository struct {
	db *database.DB
}

func NewReimbursementRepository(db *database.DB) payroll.ReimbursementRepository {
	return &reimbursementRepository{db: db}
}

// ListApproved returns the claims approved within [start, end].
func (r *reimbursementRepository) ListApproved(ctx context.Context, companyID string, start, end time.Time, employeeIDs []string) ([]payroll.Reimbursement, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, employee_id, amount, COALESCE(description, ''), approved_at
		FROM reimbursements
		WHERE company_id = $1 AND employee_id = ANY($2) AND status = 'approved'
			AND approved_at::date BETWEEN $3 AND $4
		ORDER BY employee_id, approved_at, id
	`

	rows, err := q.Query(ctx, query, companyID, employeeIDs, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list reimbursements: %w", err)
	}
	defer rows.Close()

	var items []payroll.Reimbursement
	for rows.Next() {
		var item payroll.Reimbursement
		if err := rows.Scan(&item.ID, &item.CompanyID, &item.EmployeeID, &item.Amount, &item.Description, &item.ApprovedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reimbursement: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}
