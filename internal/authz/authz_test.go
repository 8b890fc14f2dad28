package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adblockpro/backend/internal/models"
)

func TestCanAccessAdmin(t *testing.T) {
	assert.False(t, CanAccessAdmin(models.RoleUser))
	assert.True(t, CanAccessAdmin(models.RoleAdmin))
	assert.True(t, CanAccessAdmin(models.RoleSuperAdmin))
	assert.False(t, CanAccessAdmin(""))
	assert.False(t, CanAccessAdmin("Admin"))
}

func TestCanAssignRole(t *testing.T) {
	// demoting to user is any admin's call
	assert.True(t, CanAssignRole(models.RoleAdmin, models.RoleUser))
	assert.True(t, CanAssignRole(models.RoleSuperAdmin, models.RoleUser))
	assert.False(t, CanAssignRole(models.RoleUser, models.RoleUser))

	// only superadmins mint admins
	assert.False(t, CanAssignRole(models.RoleAdmin, models.RoleAdmin))
	assert.True(t, CanAssignRole(models.RoleSuperAdmin, models.RoleAdmin))
	assert.True(t, CanAssignRole(models.RoleSuperAdmin, models.RoleSuperAdmin))
}
