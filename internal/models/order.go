package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/shoply-dev/shoply/internal/types"
	"gorm.io/gorm"
)

type Order struct {
	gorm.Model

	UserID uint      `gorm:"not null;index"`
	Date   time.Time `gorm:"not null;index"`
	// Amount always equals the sum of PriceAtTime * Quantity over Items.
	Amount          decimal.Decimal     `gorm:"type:decimal(10,2);not null"`
	Status          types.OrderStatus   `gorm:"type:varchar(16);not null;default:pending;index"`
	ShippingAddress string              `gorm:"type:text;not null"`
	PaymentMethod   types.PaymentMethod `gorm:"type:varchar(16);not null;default:card"`
	PaymentStatus   types.PaymentStatus `gorm:"type:varchar(16);not null;default:pending"`

	// Relationships
	User  User        `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
