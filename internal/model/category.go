package model

import "time"

// DefaultDisplayOrder is used when a category is created without an explicit position.
const DefaultDisplayOrder = 99

// UncategorizedName labels products whose category is missing or was deleted.
const UncategorizedName = "Uncategorized"

// Category groups products on the storefront
type Category struct {
	ID           uint      `json:"id" gorm:"primarykey"`
	Name         string    `json:"name" gorm:"type:varchar(100);not null"`
	DisplayOrder int       `json:"display_order" gorm:"not null;index"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
