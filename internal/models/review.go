package models

import "gorm.io/gorm"

type Review struct {
	gorm.Model

	ProductID uint   `gorm:"not null;index;uniqueIndex:idx_reviews_product_user"`
	UserID    uint   `gorm:"not null;index;uniqueIndex:idx_reviews_product_user"`
	Text      string `gorm:"type:text;not null"`
	Rating    int    `gorm:"not null;default:5"`

	// Relationships
	Product Product `gorm:"foreignKey:ProductID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	User    User    `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
