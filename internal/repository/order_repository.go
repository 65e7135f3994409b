package repository

import (
	"context"
	"errors"
	"time"

	"pink-basket/internal/apperror"
	"pink-basket/internal/model"
	"pink-basket/prometheus"

	"gorm.io/gorm"
)

// OrderRepository persists the order ledger. Orders are never deleted and
// only their status changes after creation.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *OrderRepository) WithTx(tx *gorm.DB) *OrderRepository {
	return &OrderRepository{db: tx}
}

func (r *OrderRepository) Create(ctx context.Context, order *model.Order) error {
	defer prometheus.TrackDBOperation("create_order")(time.Now())

	return apperror.Storage("create order", r.db.WithContext(ctx).Create(order).Error)
}

func (r *OrderRepository) Get(ctx context.Context, id uint) (*model.Order, error) {
	defer prometheus.TrackDBOperation("get_order")(time.Now())

	var order model.Order
	err := r.db.WithContext(ctx).First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("order", id)
	}
	if err != nil {
		return nil, apperror.Storage("get order", err)
	}
	return &order, nil
}

// List returns all orders, newest first.
func (r *OrderRepository) List(ctx context.Context) ([]model.Order, error) {
	defer prometheus.TrackDBOperation("list_orders")(time.Now())

	orders := make([]model.Order, 0)
	err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&orders).Error
	return orders, apperror.Storage("list orders", err)
}

// CompareAndSetStatus moves an order from one status to another. It returns
// false when the order no longer holds the from status.
func (r *OrderRepository) CompareAndSetStatus(ctx context.Context, id uint, from, to model.OrderStatus) (bool, error) {
	defer prometheus.TrackDBOperation("update_order_status")(time.Now())

	result := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, apperror.Storage("update order status", result.Error)
	}
	return result.RowsAffected > 0, nil
}
