package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderItem struct {
	gorm.Model

	OrderID   uint `gorm:"not null;index"`
	ProductID uint `gorm:"not null;index"`
	Quantity  int  `gorm:"not null"`
	// PriceAtTime is captured from the product at order creation and never
	// recomputed from the current product price.
	PriceAtTime decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	// Relationships
	Order   Order   `gorm:"foreignKey:OrderID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Product Product `gorm:"foreignKey:ProductID;constraint:OnUpdate:Cascade,OnDelete:RESTRICT"`
}

// LineTotal is the item's contribution to the order amount.
func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.PriceAtTime.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
