package middleware

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shoply-dev/shoply/db"
	"github.com/shoply-dev/shoply/internal/auth"
	"github.com/shoply-dev/shoply/internal/httpx"
	"github.com/shoply-dev/shoply/internal/models"
	"github.com/shoply-dev/shoply/internal/permissions"
	"github.com/shoply-dev/shoply/internal/types"
	"gorm.io/gorm"
)

// AuthenticatedUser is the identity attached to the request context after a
// successful bearer-token check.
type AuthenticatedUser struct {
	ID          uint       `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Role        types.Role `json:"role"`
	Permissions []string   `json:"permissions"`
}

// Authenticate verifies the bearer token, resolves the user and attaches the
// identity to the context. A missing credential or unknown/inactive user is
// 401; an invalid or expired token is 403. On success the user's last-login
// timestamp is updated.
func Authenticate() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")

		if authHeader == "" {
			httpx.AbortError(ctx, http.StatusUnauthorized, "Authorization token is required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)

		if len(parts) != 2 || parts[0] != "Bearer" {
			httpx.AbortError(ctx, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}

		claims, err := auth.VerifyJWT(parts[1])

		if err != nil {
			httpx.AbortError(ctx, http.StatusForbidden, "Invalid or expired token")
			return
		}

		var user models.User

		if err := db.DB.First(&user, claims.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				httpx.AbortError(ctx, http.StatusUnauthorized, "User not found")
			} else {
				log.Printf("Failed to load user for token: %v", err)
				httpx.AbortError(ctx, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		if !user.IsActive {
			httpx.AbortError(ctx, http.StatusUnauthorized, "Account is disabled")
			return
		}

		perms := user.PermissionList()

		if len(perms) == 0 {
			perms = permissions.RolePermissions(user.Role)
		}

		ctx.Set(types.ContextUserKey, AuthenticatedUser{
			ID:          user.ID,
			Username:    user.Username,
			Email:       user.Email,
			Role:        user.Role,
			Permissions: perms,
		})

		now := time.Now()

		if err := db.DB.Model(&user).UpdateColumn("last_login", now).Error; err != nil {
			log.Printf("Failed to update last login for user %d: %v", user.ID, err)
		}

		ctx.Next()
	}
}

// RequireRole passes only users whose role is in the allowed set.
func RequireRole(roles ...types.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := currentUser(ctx)

		if !ok {
			httpx.AbortError(ctx, http.StatusUnauthorized, "Authentication required")
			return
		}

		if !slices.Contains(roles, user.Role) {
			httpx.AbortError(ctx, http.StatusForbidden, fmt.Sprintf("Insufficient rights. Required roles: %s", joinRoles(roles)))
			return
		}

		ctx.Next()
	}
}

// RequirePermission passes admins unconditionally; everyone else must hold
// every listed permission.
func RequirePermission(perms ...string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := currentUser(ctx)

		if !ok {
			httpx.AbortError(ctx, http.StatusUnauthorized, "Authentication required")
			return
		}

		if user.Role == types.RoleAdmin {
			ctx.Next()
			return
		}

		for _, perm := range perms {
			if !slices.Contains(user.Permissions, perm) && !slices.Contains(user.Permissions, permissions.PermissionAll) {
				httpx.AbortError(ctx, http.StatusForbidden, fmt.Sprintf("Insufficient rights. Required permission: %s", perm))
				return
			}
		}

		ctx.Next()
	}
}

// OwnerResolver returns the owning user id of the resource addressed by the
// request.
type OwnerResolver func(ctx *gin.Context) (uint, error)

// RequireOwnerOrRole passes users holding one of the roles, or the owner of
// the addressed resource. A resource that cannot be resolved is 404.
func RequireOwnerOrRole(resolve OwnerResolver, roles ...types.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := currentUser(ctx)

		if !ok {
			httpx.AbortError(ctx, http.StatusUnauthorized, "Authentication required")
			return
		}

		if slices.Contains(roles, user.Role) {
			ctx.Next()
			return
		}

		ownerID, err := resolve(ctx)

		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				httpx.AbortError(ctx, http.StatusNotFound, "Resource not found")
			} else {
				log.Printf("Failed to resolve resource owner: %v", err)
				httpx.AbortError(ctx, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		if ownerID != 0 && ownerID == user.ID {
			ctx.Next()
			return
		}

		httpx.AbortError(ctx, http.StatusForbidden, "Insufficient rights. You are not the owner of this resource.")
	}
}

// CurrentUser returns the identity attached by Authenticate. Handlers behind
// the guard use it to read the caller's id, role and permissions.
func CurrentUser(ctx *gin.Context) (AuthenticatedUser, error) {
	user, ok := currentUser(ctx)

	if !ok {
		return AuthenticatedUser{}, errors.New("no authenticated user in context")
	}

	return user, nil
}

func currentUser(ctx *gin.Context) (AuthenticatedUser, bool) {
	value, exists := ctx.Get(types.ContextUserKey)

	if !exists {
		return AuthenticatedUser{}, false
	}

	user, ok := value.(AuthenticatedUser)

	return user, ok
}

func joinRoles(roles []types.Role) string {
	names := make([]string, len(roles))

	for i, role := range roles {
		names[i] = string(role)
	}

	return strings.Join(names, ", ")
}
