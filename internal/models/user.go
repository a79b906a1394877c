package models

import (
	"encoding/json"
	"time"

	"github.com/shoply-dev/shoply/internal/types"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model

	Username     string `gorm:"uniqueIndex;not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	FirstName    string
	LastName     string
	Avatar       string
	Role         types.Role `gorm:"type:varchar(16);not null;default:customer;index"`
	IsActive     bool       `gorm:"not null;default:true"`
	Activated    bool       `gorm:"not null;default:false"`
	// ActivationToken is cleared once the account is activated.
	ActivationToken string
	LastLogin       *time.Time
	// Permissions is an explicit override of the role's default permission
	// set, stored as a JSON array of strings. Empty means "use role defaults".
	Permissions datatypes.JSON

	// Relationships
	Reviews        []Review        `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Orders         []Order         `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Products       []Product       `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	PasswordResets []PasswordReset `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

// PermissionList decodes the explicit permission override. A nil or invalid
// column yields an empty slice.
func (u *User) PermissionList() []string {
	if len(u.Permissions) == 0 {
		return nil
	}

	var perms []string

	if err := json.Unmarshal(u.Permissions, &perms); err != nil {
		return nil
	}

	return perms
}

func (u *User) IsAdmin() bool {
	return u.Role == types.RoleAdmin
}
