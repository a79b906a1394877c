package handlers

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/shoply-dev/shoply/internal/httpx"
	"github.com/shoply-dev/shoply/internal/middleware"
	"github.com/shoply-dev/shoply/internal/permissions"
	"github.com/shoply-dev/shoply/internal/types"
)

type CheckPermissionRequest struct {
	Permission string `json:"permission" binding:"required"`
}

// MyPermissions reports the caller's effective permission set.
func MyPermissions(ctx *gin.Context) {
	user, err := middleware.CurrentUser(ctx)

	if err != nil {
		httpx.Error(ctx, http.StatusUnauthorized, "Unauthorized")
		return
	}

	httpx.OK(ctx, gin.H{
		"role":        user.Role,
		"permissions": user.Permissions,
	})
}

// AllRolePermissions dumps the whole permission catalog: every role with
// its default set, plus the full permission list.
func AllRolePermissions(ctx *gin.Context) {
	defaults := permissions.DefaultPermissions()

	roles := make(gin.H, len(defaults))

	for role, perms := range defaults {
		roles[string(role)] = perms
	}

	httpx.OK(ctx, gin.H{
		"roles":          roles,
		"allPermissions": permissions.AllPermissions,
	})
}

// CheckPermission answers whether the caller holds a single permission.
func CheckPermission(ctx *gin.Context) {
	user, err := middleware.CurrentUser(ctx)

	if err != nil {
		httpx.Error(ctx, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CheckPermissionRequest

	if err := ctx.BindJSON(&req); err != nil {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid request body")
		return
	}

	granted := user.Role == types.RoleAdmin ||
		slices.Contains(user.Permissions, permissions.PermissionAll) ||
		slices.Contains(user.Permissions, req.Permission)

	httpx.OK(ctx, gin.H{
		"permission": req.Permission,
		"granted":    granted,
	})
}
