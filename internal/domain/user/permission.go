package user

type Permission string

const (
	// Payroll
	PermissionPayrollView     Permission = "payroll.view"
	PermissionPayrollRun      Permission = "payroll.run"
	PermissionPayrollFinalize Permission = "payroll.finalize"
	PermissionPayrollSettings Permission = "payroll.settings"

	// Loans
	PermissionLoanViewAll Permission = "loan.view_all"
	PermissionLoanCreate  Permission = "loan.create"
	PermissionLoanApprove Permission = "loan.approve"
	PermissionLoanPayment Permission = "loan.payment"

	// THR
	PermissionThrView Permission = "thr.view"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleOwner: {
		PermissionPayrollView,
		PermissionPayrollRun,
		PermissionPayrollFinalize,
		PermissionPayrollSettings,
		PermissionLoanViewAll,
		PermissionLoanCreate,
		PermissionLoanApprove,
		PermissionLoanPayment,
		PermissionThrView,
	},
	RoleManager: {
		PermissionPayrollView,
		PermissionPayrollRun,
		PermissionLoanViewAll,
		PermissionLoanCreate,
		PermissionLoanApprove,
		PermissionLoanPayment,
		PermissionThrView,
	},
	RoleEmployee: {
		PermissionLoanCreate,
	},
	RolePending: {},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	for _, p := range RolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}
