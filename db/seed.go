package db

import (
	"encoding/json"
	"log"

	"github.com/shopspring/decimal"
	"github.com/shoply-dev/shoply/internal/models"
	"github.com/shoply-dev/shoply/internal/permissions"
	"github.com/shoply-dev/shoply/internal/types"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

// SeedDatabase inserts one account per role plus a small demo catalog. It is
// a no-op when users already exist.
func SeedDatabase() error {
	var count int64

	if err := DB.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	seedUsers := []struct {
		username string
		email    string
		password string
		first    string
		last     string
		role     types.Role
	}{
		{"admin", "admin@example.com", "admin123", "Admin", "Root", types.RoleAdmin},
		{"moderator", "moderator@example.com", "moderator123", "Mod", "Erator", types.RoleModerator},
		{"seller", "seller@example.com", "seller123", "Sally", "Seller", types.RoleSeller},
		{"customer", "customer@example.com", "customer123", "Carl", "Customer", types.RoleCustomer},
	}

	for _, s := range seedUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(s.password), bcrypt.DefaultCost)

		if err != nil {
			return err
		}

		perms, err := json.Marshal(permissions.RolePermissions(s.role))

		if err != nil {
			return err
		}

		user := models.User{
			Username:     s.username,
			Email:        s.email,
			PasswordHash: string(hash),
			FirstName:    s.first,
			LastName:     s.last,
			Role:         s.role,
			IsActive:     true,
			Activated:    true,
			Permissions:  datatypes.JSON(perms),
		}

		if err := DB.Create(&user).Error; err != nil {
			return err
		}
	}

	category := models.Category{
		Name:        "Electronics",
		Description: "Gadgets and accessories",
	}

	if err := DB.Create(&category).Error; err != nil {
		return err
	}

	products := []models.Product{
		{Name: "Wireless Mouse", Description: "2.4GHz optical mouse", Price: decimal.NewFromFloat(24.90), StockQuantity: 50, CategoryID: category.ID},
		{Name: "Mechanical Keyboard", Description: "Tenkeyless, brown switches", Price: decimal.NewFromFloat(89.00), StockQuantity: 20, CategoryID: category.ID},
		{Name: "USB-C Hub", Description: "7-in-1 hub with HDMI", Price: decimal.NewFromFloat(39.50), StockQuantity: 35, CategoryID: category.ID},
	}

	for i := range products {
		if err := DB.Create(&products[i]).Error; err != nil {
			return err
		}
	}

	log.Println("Seeded database with default users and demo catalog")

	return nil
}
