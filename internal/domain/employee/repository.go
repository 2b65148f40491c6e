package employee

import "context"

// EmployeeRepository reads pay profiles.
// All methods include companyID parameter to prevent cross-company data access attacks.
type EmployeeRepository interface {
	// ListActivePayProfiles returns every active employee ordered by employee code.
	ListActivePayProfiles(ctx context.Context, companyID string) ([]PayProfile, error)

	GetPayProfile(ctx context.Context, id string, companyID string) (PayProfile, error)
}
