package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shoply-dev/shoply/db"
	"github.com/shoply-dev/shoply/internal/httpx"
	"github.com/shoply-dev/shoply/internal/models"
	"github.com/shoply-dev/shoply/internal/permissions"
	"github.com/shoply-dev/shoply/internal/types"
	"gorm.io/gorm"
)

type UpdateUserRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	IsActive  *bool   `json:"isActive"`
}

type UpdateUserRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func ListUsers(ctx *gin.Context) {
	page, limit, offset := pagination(ctx)

	query := db.DB.Model(&models.User{})

	if role := ctx.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	if search := ctx.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}

	var total int64

	if err := query.Count(&total).Error; err != nil {
		log.Printf("Failed to count users: %v", err)
		httpx.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	var users []models.User

	if err := query.Order("id").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		log.Printf("Failed to list users: %v", err)
		httpx.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	responses := make([]UserResponse, 0, len(users))

	for i := range users {
		responses = append(responses, NewUserResponse(&users[i]))
	}

	httpx.List(ctx, gin.H{"users": responses}, httpx.Paginate(page, limit, total))
}

func GetUser(ctx *gin.Context) {
	id, ok := pathID(ctx)

	if !ok {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var user models.User

	if err := db.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(ctx, http.StatusNotFound, "User not found")
			return
		}

		log.Printf("Failed to load user: %v", err)
		httpx.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.OK(ctx, gin.H{"user": NewUserResponse(&user)})
}

func UpdateUser(ctx *gin.Context) {
	id, ok := pathID(ctx)

	if !ok {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req UpdateUserRequest

	if err := ctx.BindJSON(&req); err != nil {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid request body")
		return
	}

	var user models.User

	if err := db.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(ctx, http.StatusNotFound, "User not found")
			return
		}

		log.Printf("Failed to load user: %v", err)
		httpx.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	updates := map[string]any{}

	if req.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*req.FirstName)
	}

	if req.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*req.LastName)
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))

		var other models.User

		err := db.DB.Where("email = ? AND id <> ?", email, user.ID).First(&other).Error

		if err == nil {
			httpx.Error(ctx, http.StatusBadRequest, "Email already in use")
			return
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Failed to check email: %v", err)
			httpx.Error(ctx, http.StatusInternalServerError, "Internal server error")
			return
		}

		updates["email"] = email
	}

	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
			log.Printf("Failed to update user: %v", err)
			httpx.Error(ctx, http.StatusInternalServerError, "Internal server error")
			return
		}
	}

	if err := db.DB.First(&user, user.ID).Error; err != nil {
		log.Printf("Failed to reload user: %v", err)
		httpx.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.OKMessage(ctx, "User updated", gin.H{"user": NewUserResponse(&user)})
}

// DeactivateUser disables the account instead of deleting the row, so
// orders and reviews keep their author.
func DeactivateUser(ctx *gin.Context) {
	id, ok := pathID(ctx)

	if !ok {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var user models.User

	if err := db.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(ctx, http.StatusNotFound, "User not found")
			return
		}

		log.Printf("Failed to load user: %v", err)
		httpx.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := db.DB.Model(&user).UpdateColumn("is_active", false).Error; err != nil {
		log.Printf("Failed to deactivate user: %v", err)
		httpx.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.OKMessage(ctx, "User deactivated", nil)
}

func UpdateUserRole(ctx *gin.Context) {
	id, ok := pathID(ctx)

	if !ok {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req UpdateUserRoleRequest

	if err := ctx.BindJSON(&req); err != nil {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid request body")
		return
	}

	role := types.Role(req.Role)

	if !types.ValidRole(role) {
		httpx.Error(ctx, http.StatusBadRequest, fmt.Sprintf("Unknown role: %s", req.Role))
		return
	}

	var user models.User

	if err := db.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(ctx, http.StatusNotFound, "User not found")
			return
		}

		log.Printf("Failed to load user: %v", err)
		httpx.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	// Changing the role also drops any explicit permission override so the
	// new role's defaults take effect.
	updates := map[string]any{"role": role, "permissions": nil}

	if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
		log.Printf("Failed to update role: %v", err)
		httpx.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := db.DB.First(&user, user.ID).Error; err != nil {
		log.Printf("Failed to reload user: %v", err)
		httpx.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.OKMessage(ctx, "Role updated", gin.H{"user": NewUserResponse(&user)})
}

// GetUserPermissions reports the effective permission set: the stored
// override when present, otherwise the role defaults.
func GetUserPermissions(ctx *gin.Context) {
	id, ok := pathID(ctx)

	if !ok {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var user models.User

	if err := db.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(ctx, http.StatusNotFound, "User not found")
			return
		}

		log.Printf("Failed to load user: %v", err)
		httpx.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	perms := user.PermissionList()

	if len(perms) == 0 {
		perms = permissions.RolePermissions(user.Role)
	}

	httpx.OK(ctx, gin.H{
		"userId":      user.ID,
		"role":        user.Role,
		"permissions": perms,
	})
}
