package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Product struct {
	gorm.Model

	Name        string `gorm:"not null;index"`
	Description string
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	// StockQuantity never goes negative; every mutation happens through a
	// conditional update in the inventory package.
	StockQuantity int  `gorm:"not null;default:0"`
	CategoryID    uint `gorm:"not null;index"`
	// OwnerID is the seller who created the product. Nil for catalog entries
	// created by moderators or seeds.
	OwnerID *uint `gorm:"index"`
	Image   string
	// Images holds additional image paths as a JSON array of strings.
	Images datatypes.JSON

	// Relationships
	Category   Category    `gorm:"foreignKey:CategoryID;constraint:OnUpdate:Cascade,OnDelete:RESTRICT"`
	Owner      *User       `gorm:"foreignKey:OwnerID"`
	Reviews    []Review    `gorm:"foreignKey:ProductID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	OrderItems []OrderItem `gorm:"foreignKey:ProductID;constraint:OnUpdate:Cascade,OnDelete:RESTRICT"`
}
