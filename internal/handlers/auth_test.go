package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/shoply-dev/shoply/db"
	"github.com/shoply-dev/shoply/internal/models"
	"github.com/shoply-dev/shoply/internal/types"
)

func registerPayload(username string) map[string]any {
	return map[string]any{
		"username":        username,
		"email":           username + "@example.com",
		"password":        "secret1",
		"confirmPassword": "secret1",
		"firstName":       "Test",
		"lastName":        "User",
	}
}

func TestRegister(t *testing.T) {
	setupDB(t)
	r := newRouter()

	rec := doJSON(t, r, http.MethodPost, "/api/auth/register", "", registerPayload("alice"))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
	}

	body := parseBody(t, rec)
	data := body["data"].(map[string]any)

	if data["token"] == "" {
		t.Error("registration should return a token")
	}

	user := data["user"].(map[string]any)

	if got := user["role"]; got != "customer" {
		t.Errorf("role = %v, want customer", got)
	}

	for _, forbidden := range []string{"passwordHash", "password_hash", "activationToken"} {
		if _, ok := user[forbidden]; ok {
			t.Errorf("response exposes %q", forbidden)
		}
	}

	var stored models.User

	if err := db.DB.Where("username = ?", "alice").First(&stored).Error; err != nil {
		t.Fatalf("registered user not persisted: %v", err)
	}

	if stored.PasswordHash == "secret1" {
		t.Error("password must be stored hashed")
	}

	if stored.ActivationToken == "" {
		t.Error("registration should issue an activation token")
	}
}

func TestRegisterValidation(t *testing.T) {
	setupDB(t)
	r := newRouter()

	tests := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"short username", func(p map[string]any) { p["username"] = "ab" }},
		{"username with spaces", func(p map[string]any) { p["username"] = "a b c" }},
		{"bad email", func(p map[string]any) { p["email"] = "not-an-email" }},
		{"password without digits", func(p map[string]any) { p["password"] = "abcdefg"; p["confirmPassword"] = "abcdefg" }},
		{"password too short", func(p map[string]any) { p["password"] = "a1"; p["confirmPassword"] = "a1" }},
		{"password mismatch", func(p map[string]any) { p["confirmPassword"] = "different1" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := registerPayload("alice")
			tt.mutate(payload)

			rec := doJSON(t, r, http.MethodPost, "/api/auth/register", "", payload)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
			}

			if errs := parseBody(t, rec)["errors"].([]any); len(errs) == 0 {
				t.Error("response should list validation errors")
			}
		})
	}
}

func TestRegisterDuplicates(t *testing.T) {
	setupDB(t)
	r := newRouter()

	createUser(t, "alice", types.RoleCustomer)

	rec := doJSON(t, r, http.MethodPost, "/api/auth/register", "", registerPayload("alice"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	// Same email under a different username.
	payload := registerPayload("alice2")
	payload["email"] = "alice@example.com"

	rec = doJSON(t, r, http.MethodPost, "/api/auth/register", "", payload)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate email status = %d, want 400", rec.Code)
	}
}

func TestLogin(t *testing.T) {
	setupDB(t)
	r := newRouter()

	user := createUser(t, "alice", types.RoleCustomer)

	disabled := createUser(t, "mallory", types.RoleCustomer)

	if err := db.DB.Model(&disabled).UpdateColumn("is_active", false).Error; err != nil {
		t.Fatalf("failed to disable user: %v", err)
	}

	tests := []struct {
		name    string
		payload map[string]any
		want    int
	}{
		{"by email", map[string]any{"email": "alice@example.com", "password": testPassword}, http.StatusOK},
		{"by username", map[string]any{"username": "alice", "password": testPassword}, http.StatusOK},
		{"wrong password", map[string]any{"email": "alice@example.com", "password": "wrong1"}, http.StatusUnauthorized},
		{"unknown email", map[string]any{"email": "ghost@example.com", "password": testPassword}, http.StatusUnauthorized},
		{"no identifier", map[string]any{"password": testPassword}, http.StatusBadRequest},
		{"disabled account", map[string]any{"email": "mallory@example.com", "password": testPassword}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, r, http.MethodPost, "/api/auth/login", "", tt.payload)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}

	var reloaded models.User

	if err := db.DB.First(&reloaded, user.ID).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}

	if reloaded.LastLogin == nil {
		t.Error("successful login should set the last-login timestamp")
	}
}

func TestMe(t *testing.T) {
	setupDB(t)
	r := newRouter()

	user := createUser(t, "alice", types.RoleCustomer)

	rec := doJSON(t, r, http.MethodGet, "/api/auth/me", tokenFor(t, user), nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
	}

	data := parseBody(t, rec)["data"].(map[string]any)

	if got := data["user"].(map[string]any)["username"]; got != "alice" {
		t.Errorf("username = %v, want alice", got)
	}

	if rec := doJSON(t, r, http.MethodGet, "/api/auth/me", "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want 401", rec.Code)
	}
}

func TestChangePassword(t *testing.T) {
	setupDB(t)
	r := newRouter()

	user := createUser(t, "alice", types.RoleCustomer)
	token := tokenFor(t, user)

	// Wrong current password.
	rec := doJSON(t, r, http.MethodPut, "/api/auth/change-password", token,
		map[string]any{"currentPassword": "wrong1", "newPassword": "fresh42"})

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong current password status = %d, want 401", rec.Code)
	}

	// Weak replacement.
	rec = doJSON(t, r, http.MethodPut, "/api/auth/change-password", token,
		map[string]any{"currentPassword": testPassword, "newPassword": "short"})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("weak password status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, r, http.MethodPut, "/api/auth/change-password", token,
		map[string]any{"currentPassword": testPassword, "newPassword": "fresh42"})

	if rec.Code != http.StatusOK {
		t.Fatalf("change status = %d (body %s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, r, http.MethodPost, "/api/auth/login", "",
		map[string]any{"email": user.Email, "password": "fresh42"})

	if rec.Code != http.StatusOK {
		t.Errorf("login with new password status = %d, want 200", rec.Code)
	}

	rec = doJSON(t, r, http.MethodPost, "/api/auth/login", "",
		map[string]any{"email": user.Email, "password": testPassword})

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("login with old password status = %d, want 401", rec.Code)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	setupDB(t)
	r := newRouter()

	user := createUser(t, "alice", types.RoleCustomer)

	// The endpoint answers 200 for unknown emails too.
	rec := doJSON(t, r, http.MethodPost, "/api/auth/forgot-password", "",
		map[string]any{"email": "ghost@example.com"})

	if rec.Code != http.StatusOK {
		t.Errorf("unknown email status = %d, want 200", rec.Code)
	}

	rec = doJSON(t, r, http.MethodPost, "/api/auth/forgot-password", "",
		map[string]any{"email": user.Email})

	if rec.Code != http.StatusOK {
		t.Fatalf("forgot-password status = %d", rec.Code)
	}

	var reset models.PasswordReset

	if err := db.DB.Where("user_id = ?", user.ID).First(&reset).Error; err != nil {
		t.Fatalf("no reset token stored: %v", err)
	}

	if time.Until(reset.ExpiresAt) > time.Hour {
		t.Errorf("token expiry %v is further than an hour away", reset.ExpiresAt)
	}

	rec = doJSON(t, r, http.MethodGet, "/api/auth/reset-password/"+reset.Token, "", nil)

	if rec.Code != http.StatusOK {
		t.Errorf("validate token status = %d, want 200", rec.Code)
	}

	rec = doJSON(t, r, http.MethodPost, "/api/auth/reset-password", "",
		map[string]any{"token": reset.Token, "newPassword": "newer99"})

	if rec.Code != http.StatusOK {
		t.Fatalf("reset status = %d (body %s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, r, http.MethodPost, "/api/auth/login", "",
		map[string]any{"email": user.Email, "password": "newer99"})

	if rec.Code != http.StatusOK {
		t.Errorf("login with reset password status = %d, want 200", rec.Code)
	}

	// The token is single use.
	rec = doJSON(t, r, http.MethodPost, "/api/auth/reset-password", "",
		map[string]any{"token": reset.Token, "newPassword": "again77"})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("reused token status = %d, want 400", rec.Code)
	}
}

func TestPasswordResetExpiredToken(t *testing.T) {
	setupDB(t)
	r := newRouter()

	user := createUser(t, "alice", types.RoleCustomer)

	rec := doJSON(t, r, http.MethodPost, "/api/auth/forgot-password", "",
		map[string]any{"email": user.Email})

	if rec.Code != http.StatusOK {
		t.Fatalf("forgot-password status = %d", rec.Code)
	}

	var reset models.PasswordReset

	if err := db.DB.Where("user_id = ?", user.ID).First(&reset).Error; err != nil {
		t.Fatalf("no reset token stored: %v", err)
	}

	expired := time.Now().Add(-time.Minute)

	if err := db.DB.Model(&reset).UpdateColumn("expires_at", expired).Error; err != nil {
		t.Fatalf("failed to expire token: %v", err)
	}

	rec = doJSON(t, r, http.MethodGet, "/api/auth/reset-password/"+reset.Token, "", nil)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("validate expired token status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, r, http.MethodPost, "/api/auth/reset-password", "",
		map[string]any{"token": reset.Token, "newPassword": "newer99"})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("reset with expired token status = %d, want 400", rec.Code)
	}
}

func TestActivateAccount(t *testing.T) {
	setupDB(t)
	r := newRouter()

	rec := doJSON(t, r, http.MethodPost, "/api/auth/register", "", registerPayload("alice"))

	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d", rec.Code)
	}

	var user models.User

	if err := db.DB.Where("username = ?", "alice").First(&user).Error; err != nil {
		t.Fatalf("failed to load user: %v", err)
	}

	rec = doJSON(t, r, http.MethodGet, "/api/auth/activate/"+user.ActivationToken, "", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("activate status = %d (body %s)", rec.Code, rec.Body.String())
	}

	var activated models.User

	if err := db.DB.First(&activated, user.ID).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}

	if !activated.Activated {
		t.Error("account should be activated")
	}

	if activated.ActivationToken != "" {
		t.Error("activation token should be cleared")
	}

	// The consumed token no longer resolves.
	rec = doJSON(t, r, http.MethodGet, "/api/auth/activate/"+user.ActivationToken, "", nil)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("reused activation token status = %d, want 400", rec.Code)
	}
}
