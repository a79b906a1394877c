// Package permissions holds the static role and permission tables. The
// tables are built once at init time and never mutated afterwards.
package permissions

import (
	"slices"

	"github.com/shoply-dev/shoply/internal/types"
)

// PermissionAll is the sentinel that grants every permission.
const PermissionAll = "all"

// AllPermissions is the closed set of recognized permission strings, shaped
// as resource:action or resource:action:scope with scope "own" or "any".
var AllPermissions = []string{
	"auth:register",
	"auth:login",
	"auth:logout",
	"auth:forgot-password",
	"auth:change-password",
	"auth:verify-email",

	"profile:read",
	"profile:update:own",
	"profile:update:any",
	"profile:delete",

	"users:read",
	"users:create",
	"users:update",
	"users:delete",
	"users:disable",
	"users:manage-roles",

	"products:read",
	"products:create",
	"products:update:own",
	"products:update:any",
	"products:delete:own",
	"products:delete:any",
	"products:manage:own",
	"products:manage:any",

	"categories:read",
	"categories:create",
	"categories:update",
	"categories:delete",

	"reviews:read",
	"reviews:create",
	"reviews:update:own",
	"reviews:update:any",
	"reviews:delete:own",
	"reviews:delete:any",

	"orders:create",
	"orders:read:own",
	"orders:read:any",
	"orders:update:own",
	"orders:update:any",
	"orders:delete",

	"cart:manage",

	"dashboard:customer",
	"dashboard:seller",
	"dashboard:moderator",
	"dashboard:admin",

	"system:settings:read",
	"system:settings:update",
	"system:logs:read",
	"system:backup",

	PermissionAll,
}

// roleHierarchy maps each role to the set of roles it includes, itself first.
var roleHierarchy = map[types.Role][]types.Role{
	types.RoleAdmin:     {types.RoleAdmin, types.RoleModerator, types.RoleSeller, types.RoleCustomer, types.RoleGuest},
	types.RoleModerator: {types.RoleModerator, types.RoleSeller, types.RoleCustomer, types.RoleGuest},
	types.RoleSeller:    {types.RoleSeller, types.RoleCustomer, types.RoleGuest},
	types.RoleCustomer:  {types.RoleCustomer, types.RoleGuest},
	types.RoleGuest:     {types.RoleGuest},
}

var guestPermissions = []string{
	"products:read",
	"categories:read",
	"reviews:read",
	"auth:register",
	"auth:login",
	"auth:forgot-password",
}

var customerPermissions = []string{
	"products:read",
	"categories:read",
	"reviews:read",
	"reviews:create",
	"reviews:update:own",
	"reviews:delete:own",
	"orders:create",
	"orders:read:own",
	"orders:update:own",
	"cart:manage",
	"profile:read",
	"profile:update:own",
	"auth:register",
	"auth:login",
	"auth:logout",
	"auth:forgot-password",
	"auth:change-password",
}

var sellerPermissions = append(slices.Clone(customerPermissions), []string{
	"products:create",
	"products:update:own",
	"products:delete:own",
	"products:manage:own",
	"dashboard:seller",
}...)

var moderatorPermissions = append(slices.Clone(sellerPermissions), []string{
	"products:update:any",
	"products:delete:any",
	"products:manage:any",
	"categories:create",
	"categories:update",
	"categories:delete",
	"reviews:delete:any",
	"users:read",
	"users:update",
	"users:disable",
	"orders:read:any",
	"orders:update:any",
	"dashboard:moderator",
}...)

// defaultPermissions is additive up the hierarchy; admin resolves to the
// "all" sentinel rather than an enumerated list.
var defaultPermissions = map[types.Role][]string{
	types.RoleGuest:     guestPermissions,
	types.RoleCustomer:  customerPermissions,
	types.RoleSeller:    sellerPermissions,
	types.RoleModerator: moderatorPermissions,
	types.RoleAdmin:     {PermissionAll},
}

// HasPermission reports whether the role's default permission set grants the
// given permission. Admin and any set containing "all" grant everything.
func HasPermission(role types.Role, permission string) bool {
	if role == types.RoleAdmin {
		return true
	}

	perms := defaultPermissions[role]

	if slices.Contains(perms, PermissionAll) {
		return true
	}

	return slices.Contains(perms, permission)
}

// RolePermissions returns a copy of the role's default permission list.
// Unrecognized roles fall back to the guest list.
func RolePermissions(role types.Role) []string {
	perms, ok := defaultPermissions[role]

	if !ok {
		perms = defaultPermissions[types.RoleGuest]
	}

	return slices.Clone(perms)
}

// RoleIncludes reports whether role contains other in the role hierarchy.
func RoleIncludes(role, other types.Role) bool {
	return slices.Contains(roleHierarchy[role], other)
}

// Roles returns every recognized role, lowest to highest.
func Roles() []types.Role {
	return []types.Role{types.RoleGuest, types.RoleCustomer, types.RoleSeller, types.RoleModerator, types.RoleAdmin}
}

// DefaultPermissions returns a copy of the full role → permission table.
func DefaultPermissions() map[types.Role][]string {
	out := make(map[types.Role][]string, len(defaultPermissions))

	for role, perms := range defaultPermissions {
		out[role] = slices.Clone(perms)
	}

	return out
}
