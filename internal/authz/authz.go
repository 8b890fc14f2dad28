// Package authz centralizes role-based access decisions so handlers and
// middleware share one policy.
package authz

import "github.com/adblockpro/backend/internal/models"

// CanAccessAdmin reports whether the role may use the admin surface.
func CanAccessAdmin(role string) bool {
	return role == models.RoleAdmin || role == models.RoleSuperAdmin
}

// CanAssignRole reports whether actorRole may set target accounts to newRole.
// Only superadmins may mint other admins.
func CanAssignRole(actorRole, newRole string) bool {
	if newRole == models.RoleUser {
		return CanAccessAdmin(actorRole)
	}
	return actorRole == models.RoleSuperAdmin
}
