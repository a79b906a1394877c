package permissions

import (
	"slices"
	"testing"

	"github.com/shoply-dev/shoply/internal/types"
)

func TestHasPermission(t *testing.T) {
	tests := []struct {
		name       string
		role       types.Role
		permission string
		want       bool
	}{
		{"admin holds anything", types.RoleAdmin, "system:backup", true},
		{"admin holds made-up permission", types.RoleAdmin, "nonexistent:verb", true},
		{"customer can create orders", types.RoleCustomer, "orders:create", true},
		{"customer cannot delete categories", types.RoleCustomer, "categories:delete", false},
		{"customer cannot create products", types.RoleCustomer, "products:create", false},
		{"seller can create products", types.RoleSeller, "products:create", true},
		{"seller inherits customer permissions", types.RoleSeller, "orders:create", true},
		{"seller cannot update any product", types.RoleSeller, "products:update:any", false},
		{"moderator can manage categories", types.RoleModerator, "categories:delete", true},
		{"moderator cannot delete orders", types.RoleModerator, "orders:delete", false},
		{"guest can read products", types.RoleGuest, "products:read", true},
		{"guest cannot create reviews", types.RoleGuest, "reviews:create", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasPermission(tt.role, tt.permission); got != tt.want {
				t.Errorf("HasPermission(%q, %q) = %v, want %v", tt.role, tt.permission, got, tt.want)
			}
		})
	}
}

func TestHasPermissionUnknownRoleFallsBackToGuest(t *testing.T) {
	if !HasPermission("intern", "products:read") {
		t.Error("unknown role should inherit guest read access")
	}

	if HasPermission("intern", "orders:create") {
		t.Error("unknown role should not exceed guest permissions")
	}
}

func TestRolePermissions(t *testing.T) {
	customer := RolePermissions(types.RoleCustomer)

	if !slices.Contains(customer, "orders:read:own") {
		t.Error("customer defaults should include orders:read:own")
	}

	admin := RolePermissions(types.RoleAdmin)

	if !slices.Contains(admin, PermissionAll) {
		t.Error("admin defaults should resolve to the all sentinel")
	}

	unknown := RolePermissions("intern")
	guest := RolePermissions(types.RoleGuest)

	if !slices.Equal(unknown, guest) {
		t.Errorf("unknown role permissions = %v, want guest set %v", unknown, guest)
	}
}

func TestRolePermissionsReturnsCopy(t *testing.T) {
	perms := RolePermissions(types.RoleCustomer)
	perms[0] = "mutated"

	if RolePermissions(types.RoleCustomer)[0] == "mutated" {
		t.Error("RolePermissions must not expose the internal table")
	}
}

func TestRoleIncludes(t *testing.T) {
	tests := []struct {
		role  types.Role
		other types.Role
		want  bool
	}{
		{types.RoleAdmin, types.RoleGuest, true},
		{types.RoleAdmin, types.RoleAdmin, true},
		{types.RoleModerator, types.RoleSeller, true},
		{types.RoleSeller, types.RoleModerator, false},
		{types.RoleCustomer, types.RoleSeller, false},
		{types.RoleGuest, types.RoleCustomer, false},
	}

	for _, tt := range tests {
		if got := RoleIncludes(tt.role, tt.other); got != tt.want {
			t.Errorf("RoleIncludes(%q, %q) = %v, want %v", tt.role, tt.other, got, tt.want)
		}
	}
}

func TestSellerSupersetOfCustomer(t *testing.T) {
	seller := RolePermissions(types.RoleSeller)

	for _, p := range RolePermissions(types.RoleCustomer) {
		if !slices.Contains(seller, p) {
			t.Errorf("seller set is missing customer permission %q", p)
		}
	}
}

func TestDefaultPermissionsCoveredByCatalog(t *testing.T) {
	for role, perms := range DefaultPermissions() {
		for _, p := range perms {
			if !slices.Contains(AllPermissions, p) {
				t.Errorf("role %q grants %q which is not in the catalog", role, p)
			}
		}
	}
}
