package repository

import (
	"context"
	"time"

	"pink-basket/internal/apperror"
	"pink-basket/internal/model"
	"pink-basket/prometheus"

	"gorm.io/gorm"
)

// InventoryLedger owns the per-product stock balance.
//
// Every decrement is a single conditional UPDATE so that concurrent
// placements can never drive a balance below zero: the row only changes when
// the product is active and holds at least the requested quantity.
type InventoryLedger struct {
	db *gorm.DB
}

func NewInventoryLedger(db *gorm.DB) *InventoryLedger {
	return &InventoryLedger{db: db}
}

// WithTx returns a ledger bound to tx.
func (l *InventoryLedger) WithTx(tx *gorm.DB) *InventoryLedger {
	return &InventoryLedger{db: tx}
}

// TryDecrement claims quantity units of productID. ok is false when the
// product is missing, inactive or short on stock; in that case nothing changed.
func (l *InventoryLedger) TryDecrement(ctx context.Context, productID uint, quantity int) (remaining int, ok bool, err error) {
	defer prometheus.TrackDBOperation("decrement_stock")(time.Now())

	if quantity <= 0 {
		return 0, false, apperror.Validation("quantity", "quantity must be positive")
	}

	result := l.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ? AND is_active = ? AND stock_quantity >= ?", productID, true, quantity).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	if result.Error != nil {
		return 0, false, apperror.Storage("decrement stock", result.Error)
	}
	if result.RowsAffected == 0 {
		prometheus.RecordStockDecrement(false)
		return 0, false, nil
	}
	prometheus.RecordStockDecrement(true)

	remaining, err = l.Balance(ctx, productID)
	if err != nil {
		return 0, false, err
	}
	return remaining, true, nil
}

// Balance reads the current stock of productID.
func (l *InventoryLedger) Balance(ctx context.Context, productID uint) (int, error) {
	var balances []int
	err := l.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", productID).
		Pluck("stock_quantity", &balances).Error
	if err != nil {
		return 0, apperror.Storage("read stock", err)
	}
	if len(balances) == 0 {
		return 0, apperror.NotFound("product", productID)
	}
	return balances[0], nil
}

// Set overwrites the balance of productID. Admin restocks and corrections go
// through here.
func (l *InventoryLedger) Set(ctx context.Context, productID uint, quantity int) error {
	defer prometheus.TrackDBOperation("set_stock")(time.Now())

	if quantity < 0 {
		return apperror.Validation("stock_quantity", "stock_quantity must not be negative")
	}
	result := l.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", productID).
		Update("stock_quantity", quantity)
	if result.Error != nil {
		return apperror.Storage("set stock", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("product", productID)
	}
	prometheus.UpdateProductInventory(productID, quantity)
	return nil
}
