package model

import "time"

// DefaultReorderLevel is the low-stock threshold used when a product has none.
const DefaultReorderLevel = 5

// Product represents a catalog entry and carries its stock ledger balance.
// Inactive products are hidden from the storefront but never removed, so
// historical orders keep resolving.
type Product struct {
	ID            uint      `json:"id" gorm:"primarykey"`
	Name          string    `json:"name" gorm:"type:varchar(255);not null"`
	Description   string    `json:"description" gorm:"type:text"`
	SKU           string    `json:"sku" gorm:"type:varchar(100);index"`
	PriceCents    int64     `json:"price_cents" gorm:"not null"`
	CategoryID    *uint     `json:"category_id" gorm:"index"`
	ImageURL      string    `json:"image_url" gorm:"type:text"`
	IsActive      bool      `json:"is_active" gorm:"not null;index"`
	StockQuantity int       `json:"stock_quantity" gorm:"not null;check:stock_quantity >= 0"`
	ReorderLevel  int       `json:"reorder_level" gorm:"not null;default:5"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Filled by listing queries that join categories; never persisted.
	CategoryName string `json:"category_name,omitempty" gorm:"->;-:migration"`
}

// EffectiveReorderLevel falls back to DefaultReorderLevel for unset thresholds.
func (p Product) EffectiveReorderLevel() int {
	if p.ReorderLevel <= 0 {
		return DefaultReorderLevel
	}
	return p.ReorderLevel
}

// StockStatus returns the admin inventory label for the current balance.
func (p Product) StockStatus() string {
	switch {
	case p.StockQuantity <= 0:
		return "Out of Stock"
	case p.StockQuantity <= p.EffectiveReorderLevel():
		return "Low Stock"
	default:
		return "In Stock"
	}
}
