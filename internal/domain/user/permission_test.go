package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission(t *testing.T) {
	assert.True(t, HasPermission(RoleOwner, PermissionPayrollFinalize))
	assert.True(t, HasPermission(RoleManager, PermissionPayrollRun))
	assert.False(t, HasPermission(RoleManager, PermissionPayrollFinalize))
	assert.False(t, HasPermission(RoleEmployee, PermissionPayrollView))
	assert.False(t, HasPermission(RolePending, PermissionLoanCreate))
	assert.False(t, HasPermission(Role("auditor"), PermissionPayrollView))
}
