package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"pink-basket/internal/apperror"
	"pink-basket/internal/model"
	"pink-basket/internal/repository"
	"pink-basket/pkg/cache"
	"pink-basket/prometheus"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notifier hands a placed order to the confirmation mailer without blocking.
type Notifier interface {
	Notify(orderID uint, recipientHint string)
}

// LineInput is one cart line as submitted by the shop. Name and price are
// informational; the stored snapshot is taken from the product row.
type LineInput struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Quantity   int    `json:"quantity"`
}

type PlaceOrderInput struct {
	CustomerName  string
	Phone         string
	Address       string
	Email         string
	Items         []LineInput
	TotalCents    int64
	PaymentMethod string
	TransactionID string
}

type OrderService struct {
	db       *gorm.DB
	products *repository.ProductRepository
	ledger   *repository.InventoryLedger
	orders   *repository.OrderRepository
	notifier Notifier
	cache    cache.Store
	log      *zap.Logger
}

func NewOrderService(
	db *gorm.DB,
	products *repository.ProductRepository,
	ledger *repository.InventoryLedger,
	orders *repository.OrderRepository,
	notifier Notifier,
	store cache.Store,
	log *zap.Logger,
) *OrderService {
	return &OrderService{
		db:       db,
		products: products,
		ledger:   ledger,
		orders:   orders,
		notifier: notifier,
		cache:    store,
		log:      log,
	}
}

// PlaceOrder claims stock for every line and records the order in one
// storage transaction. Any shortfall rolls back every earlier decrement and
// no order is written. The confirmation email is dispatched after commit and
// its outcome never affects the result.
func (s *OrderService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*model.Order, error) {
	order, lines, err := s.draft(in)
	if err != nil {
		prometheus.RecordOrderFailure("validation")
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ledger := s.ledger.WithTx(tx)
		products := s.products.WithTx(tx)

		snapshot := make([]model.LineItem, 0, len(lines))
		var total int64
		for _, line := range lines {
			_, ok, err := ledger.TryDecrement(ctx, line.ID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return s.shortfall(ctx, products, line)
			}

			product, err := products.Get(ctx, line.ID)
			if err != nil {
				return err
			}
			item := model.LineItem{
				ID:         product.ID,
				Name:       product.Name,
				PriceCents: product.PriceCents,
				Quantity:   line.Quantity,
			}
			snapshot = append(snapshot, item)
			total += item.SubtotalCents()
		}

		if in.TotalCents != 0 && in.TotalCents != total {
			return apperror.Validation("total_cents", "total_cents %d does not match the cart total %d", in.TotalCents, total)
		}
		order.TotalCents = total
		order.Items = datatypes.NewJSONType(snapshot)

		return s.orders.WithTx(tx).Create(ctx, order)
	})
	if err != nil {
		prometheus.RecordOrderFailure(failureReason(err))
		return nil, err
	}

	prometheus.RecordOrderPlaced(order.TotalCents)
	s.log.Info("Order placed",
		zap.Uint("order_id", order.ID),
		zap.Int64("total_cents", order.TotalCents),
		zap.Int("items", order.ItemCount()))

	if err := s.cache.DeletePrefix(ctx, listingPrefix); err != nil {
		s.log.Warn("Product listing cache invalidation failed", zap.Error(err))
	}
	s.notifier.Notify(order.ID, order.Email)
	return order, nil
}

// draft validates the request and merges repeated product lines. It touches
// no storage.
func (s *OrderService) draft(in PlaceOrderInput) (*model.Order, []LineInput, error) {
	order := &model.Order{
		CustomerName:  strings.TrimSpace(in.CustomerName),
		Phone:         strings.TrimSpace(in.Phone),
		Address:       strings.TrimSpace(in.Address),
		Email:         strings.TrimSpace(in.Email),
		PaymentMethod: strings.TrimSpace(in.PaymentMethod),
		TransactionID: strings.TrimSpace(in.TransactionID),
		Status:        model.StatusPending,
	}

	switch {
	case order.CustomerName == "":
		return nil, nil, apperror.Validation("customer_name", "customer_name is required")
	case order.Phone == "":
		return nil, nil, apperror.Validation("phone", "phone is required")
	case order.Address == "":
		return nil, nil, apperror.Validation("address", "address is required")
	case len(in.Items) == 0:
		return nil, nil, apperror.Validation("items", "items must not be empty")
	}

	if order.PaymentMethod == "" {
		order.PaymentMethod = model.PaymentCashOnDelivery
	}
	if !model.KnownPaymentMethod(order.PaymentMethod) {
		return nil, nil, apperror.Validation("payment_method", "unknown payment_method %q", order.PaymentMethod)
	}
	if model.PaymentMethodNeedsReference(order.PaymentMethod) && order.TransactionID == "" {
		return nil, nil, apperror.Validation("transaction_id", "transaction_id is required for %s", order.PaymentMethod)
	}

	lines := make([]LineInput, 0, len(in.Items))
	index := make(map[uint]int, len(in.Items))
	for _, item := range in.Items {
		if item.ID == 0 {
			return nil, nil, apperror.Validation("items", "every item needs a product id")
		}
		if item.Quantity <= 0 {
			return nil, nil, apperror.Validation("quantity", "quantity for %s must be positive", lineLabel(item))
		}
		if i, seen := index[item.ID]; seen {
			lines[i].Quantity += item.Quantity
			continue
		}
		index[item.ID] = len(lines)
		lines = append(lines, item)
	}
	return order, lines, nil
}

// shortfall names the line that could not be claimed, preferring the
// catalog name over the one the client sent.
func (s *OrderService) shortfall(ctx context.Context, products *repository.ProductRepository, line LineInput) error {
	name := line.Name
	if product, err := products.Get(ctx, line.ID); err == nil {
		name = product.Name
	}
	return &apperror.InsufficientStockError{ProductID: line.ID, ProductName: name, Requested: line.Quantity}
}

func (s *OrderService) ListOrders(ctx context.Context) ([]model.Order, error) {
	return s.orders.List(ctx)
}

func (s *OrderService) GetOrder(ctx context.Context, id uint) (*model.Order, error) {
	return s.orders.Get(ctx, id)
}

// UpdateStatus moves order id to status if the transition is allowed.
func (s *OrderService) UpdateStatus(ctx context.Context, id uint, status string) (*model.Order, error) {
	next, ok := model.ParseOrderStatus(strings.TrimSpace(status))
	if !ok {
		return nil, apperror.Validation("status", "unknown status %q", status)
	}

	order, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, apperror.Validation("status", "cannot move order %d from %s to %s", id, order.Status, next)
	}
	if order.Status == next {
		return order, nil
	}

	changed, err := s.orders.CompareAndSetStatus(ctx, id, order.Status, next)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, apperror.Validation("status", "order %d was updated concurrently, reload and retry", id)
	}

	s.log.Info("Order status updated",
		zap.Uint("order_id", id),
		zap.String("from", string(order.Status)),
		zap.String("to", string(next)))
	return s.orders.Get(ctx, id)
}

func lineLabel(item LineInput) string {
	if item.Name != "" {
		return item.Name
	}
	return "product " + strconv.FormatUint(uint64(item.ID), 10)
}

func failureReason(err error) string {
	var (
		validation *apperror.ValidationError
		stock      *apperror.InsufficientStockError
	)
	switch {
	case errors.As(err, &stock):
		return "insufficient_stock"
	case errors.As(err, &validation):
		return "validation"
	}
	return "storage"
}
