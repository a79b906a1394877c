package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shoply-dev/shoply/db"
	"github.com/shoply-dev/shoply/internal/auth"
	"github.com/shoply-dev/shoply/internal/httpx"
	"github.com/shoply-dev/shoply/internal/middleware"
	"github.com/shoply-dev/shoply/internal/models"
	"github.com/shoply-dev/shoply/internal/services"
	"github.com/shoply-dev/shoply/internal/storage"
	"github.com/shoply-dev/shoply/internal/types"
	"github.com/shoply-dev/shoply/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const resetTokenTTL = time.Hour

type RegisterRequest struct {
	Username        string `json:"username" binding:"required"`
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

func Register(ctx *gin.Context) {
	var req RegisterRequest

	if err := ctx.BindJSON(&req); err != nil {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if errs := utils.ValidateRegistration(req.Username, req.Email, req.Password, req.ConfirmPassword); len(errs) > 0 {
		httpx.ValidationErrors(ctx, "Validation failed", errs)
		return
	}

	var conflicts []string

	var existing models.User

	if err := db.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		conflicts = append(conflicts, "Email already in use")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Failed to check existing email: %v", err)
		httpx.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := db.DB.Where("username = ?", req.Username).First(&existing).Error; err == nil {
		conflicts = append(conflicts, "Username already in use")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Failed to check existing username: %v", err)
		httpx.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	if len(conflicts) > 0 {
		httpx.ValidationErrors(ctx, "Validation failed", conflicts)
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)

	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		httpx.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	activationToken, err := auth.GenerateToken()

	if err != nil {
		log.Printf("Failed to generate activation token: %v", err)
		httpx.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	user := models.User{
		Username:        req.Username,
		Email:           req.Email,
		PasswordHash:    string(passwordHash),
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Role:            types.RoleCustomer,
		IsActive:        true,
		ActivationToken: activationToken,
	}

	if err := db.DB.Create(&user).Error; err != nil {
		log.Printf("Failed to create user: %v", err)
		httpx.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	services.SendActivationEmail(user.Email, user.FirstName, activationToken)

	token, err := auth.GenerateJWT(user.ID, user.Email)

	if err != nil {
		log.Printf("Failed to generate JWT: %v", err)
		httpx.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.Created(ctx, "Registration successful", gin.H{
		"token": token,
		"user":  NewUserResponse(&user),
	})
}

func Login(ctx *gin.Context) {
	var req LoginRequest

	if err := ctx.BindJSON(&req); err != nil {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" && req.Username == "" {
		httpx.Error(ctx, http.StatusBadRequest, "Email or username is required")
		return
	}

	var user models.User

	query := db.DB
	if req.Email != "" {
		query = query.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email)))
	} else {
		query = query.Where("username = ?", strings.TrimSpace(req.Username))
	}

	if err := query.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(ctx, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		log.Printf("Failed to look up user: %v", err)
		httpx.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		httpx.Error(ctx, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if !user.IsActive {
		httpx.Error(ctx, http.StatusForbidden, "Account is disabled")
		return
	}

	token, err := auth.GenerateJWT(user.ID, user.Email)

	if err != nil {
		log.Printf("Failed to generate JWT: %v", err)
		httpx.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	now := time.Now()
	user.LastLogin = &now

	if err := db.DB.Model(&user).UpdateColumn("last_login", now).Error; err != nil {
		log.Printf("Failed to update last login: %v", err)
	}

	httpx.OK(ctx, gin.H{
		"token": token,
		"user":  NewUserResponse(&user),
	})
}

func Me(ctx *gin.Context) {
	current, err := middleware.CurrentUser(ctx)

	if err != nil {
		httpx.Error(ctx, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var user models.User

	if err := db.DB.First(&user, current.ID).Error; err != nil {
		httpx.Error(ctx, http.StatusNotFound, "User not found")
		return
	}

	httpx.OK(ctx, gin.H{"user": NewUserResponse(&user)})
}

// UpdateProfile accepts multipart form data so the avatar can ride along
// with the profile fields.
func UpdateProfile(ctx *gin.Context) {
	current, err := middleware.CurrentUser(ctx)

	if err != nil {
		httpx.Error(ctx, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var user models.User

	if err := db.DB.First(&user, current.ID).Error; err != nil {
		httpx.Error(ctx, http.StatusNotFound, "User not found")
		return
	}

	updates := map[string]any{}

	if v, ok := ctx.GetPostForm("firstName"); ok {
		updates["first_name"] = strings.TrimSpace(v)
	}

	if v, ok := ctx.GetPostForm("lastName"); ok {
		updates["last_name"] = strings.TrimSpace(v)
	}

	if file, err := ctx.FormFile("avatar"); err == nil {
		name, saveErr := storage.SaveUpload(file, storage.FolderAvatars)

		if saveErr != nil {
			httpx.Error(ctx, http.StatusBadRequest, saveErr.Error())
			return
		}

		if user.Avatar != "" {
			if err := storage.Remove(user.Avatar, storage.FolderAvatars); err != nil {
				log.Printf("Failed to remove old avatar: %v", err)
			}
		}

		updates["avatar"] = name
	}

	if len(updates) > 0 {
		if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
			log.Printf("Failed to update profile: %v", err)
			httpx.Error(ctx, http.StatusInternalServerError, "Internal server error")
			return
		}
	}

	if err := db.DB.First(&user, user.ID).Error; err != nil {
		log.Printf("Failed to reload user: %v", err)
		httpx.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.OKMessage(ctx, "Profile updated", gin.H{"user": NewUserResponse(&user)})
}

func ChangePassword(ctx *gin.Context) {
	current, err := middleware.CurrentUser(ctx)

	if err != nil {
		httpx.Error(ctx, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req ChangePasswordRequest

	if err := ctx.BindJSON(&req); err != nil {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !utils.ValidPassword(req.NewPassword) {
		httpx.Error(ctx, http.StatusBadRequest, "Password must be at least 6 characters and contain a letter and a digit")
		return
	}

	var user models.User

	if err := db.DB.First(&user, current.ID).Error; err != nil {
		httpx.Error(ctx, http.StatusNotFound, "User not found")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		httpx.Error(ctx, http.StatusUnauthorized, "Current password is incorrect")
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)

	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		httpx.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := db.DB.Model(&user).UpdateColumn("password_hash", string(passwordHash)).Error; err != nil {
		log.Printf("Failed to update password: %v", err)
		httpx.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.OKMessage(ctx, "Password changed", nil)
}

func DeleteAvatar(ctx *gin.Context) {
	current, err := middleware.CurrentUser(ctx)

	if err != nil {
		httpx.Error(ctx, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var user models.User

	if err := db.DB.First(&user, current.ID).Error; err != nil {
		httpx.Error(ctx, http.StatusNotFound, "User not found")
		return
	}

	if user.Avatar == "" {
		httpx.Error(ctx, http.StatusNotFound, "No avatar to delete")
		return
	}

	if err := storage.Remove(user.Avatar, storage.FolderAvatars); err != nil {
		log.Printf("Failed to remove avatar file: %v", err)
	}

	if err := db.DB.Model(&user).UpdateColumn("avatar", "").Error; err != nil {
		log.Printf("Failed to clear avatar: %v", err)
		httpx.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.OKMessage(ctx, "Avatar deleted", nil)
}

// ForgotPassword always answers 200 so the endpoint cannot be used to
// enumerate registered emails.
func ForgotPassword(ctx *gin.Context) {
	var req ForgotPasswordRequest

	if err := ctx.BindJSON(&req); err != nil {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid request body")
		return
	}

	const reply = "If that email is registered, a reset link has been sent"

	var user models.User

	err := db.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error

	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Failed to look up user for reset: %v", err)
		}

		httpx.OKMessage(ctx, reply, nil)
		return
	}

	token, expiresAt, err := auth.GenerateTokenWithExpiry(resetTokenTTL)

	if err != nil {
		log.Printf("Failed to generate reset token: %v", err)
		httpx.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	reset := models.PasswordReset{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: expiresAt,
	}

	if err := db.DB.Create(&reset).Error; err != nil {
		log.Printf("Failed to store reset token: %v", err)
		httpx.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	services.SendPasswordResetEmail(user.Email, user.FirstName, token)

	httpx.OKMessage(ctx, reply, nil)
}

func ValidateResetToken(ctx *gin.Context) {
	token := ctx.Param("token")

	if !auth.ValidTokenFormat(token) {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid token")
		return
	}

	var reset models.PasswordReset

	if err := db.DB.Where("token = ? AND used = ?", token, false).First(&reset).Error; err != nil {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid or expired token")
		return
	}

	if reset.IsExpired() {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid or expired token")
		return
	}

	httpx.OKMessage(ctx, "Token is valid", nil)
}

func ResetPassword(ctx *gin.Context) {
	var req ResetPasswordRequest

	if err := ctx.BindJSON(&req); err != nil {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !auth.ValidTokenFormat(req.Token) {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid token")
		return
	}

	if !utils.ValidPassword(req.NewPassword) {
		httpx.Error(ctx, http.StatusBadRequest, "Password must be at least 6 characters and contain a letter and a digit")
		return
	}

	var reset models.PasswordReset

	if err := db.DB.Where("token = ? AND used = ?", req.Token, false).First(&reset).Error; err != nil {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid or expired token")
		return
	}

	if reset.IsExpired() {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid or expired token")
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)

	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		httpx.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", reset.UserID).
			UpdateColumn("password_hash", string(passwordHash)).Error; err != nil {
			return err
		}

		return tx.Model(&reset).UpdateColumn("used", true).Error
	})

	if err != nil {
		log.Printf("Failed to reset password: %v", err)
		httpx.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.OKMessage(ctx, "Password has been reset", nil)
}

func ActivateAccount(ctx *gin.Context) {
	token := ctx.Param("token")

	if !auth.ValidTokenFormat(token) {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid activation token")
		return
	}

	var user models.User

	if err := db.DB.Where("activation_token = ?", token).First(&user).Error; err != nil {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid activation token")
		return
	}

	if user.Activated {
		httpx.OKMessage(ctx, "Account already activated", nil)
		return
	}

	updates := map[string]any{"activated": true, "activation_token": ""}

	if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
		log.Printf("Failed to activate account: %v", err)
		httpx.Error(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.OKMessage(ctx, "Account activated", nil)
}
