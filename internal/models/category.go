package models

import "gorm.io/gorm"

type Category struct {
	gorm.Model

	Name        string `gorm:"uniqueIndex;not null"`
	Description string
	Image       string

	// Relationships
	Products []Product `gorm:"foreignKey:CategoryID"`
}
