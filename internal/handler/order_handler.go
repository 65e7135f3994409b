package handler

import (
	"net/http"

	"pink-basket/internal/service"
	"pink-basket/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// PlaceOrderRequest is the checkout body sent by the shop
type PlaceOrderRequest struct {
	CustomerName  string              `json:"customer_name" validate:"required"`
	Phone         string              `json:"phone" validate:"required"`
	Address       string              `json:"address" validate:"required"`
	Email         string              `json:"email" validate:"omitempty,email"`
	Items         []service.LineInput `json:"items" validate:"required,min=1"`
	TotalCents    int64               `json:"total_cents"`
	PaymentMethod string              `json:"payment_method"`
	TransactionID string              `json:"transaction_id"`
}

type UpdateOrderStatusRequest struct {
	ID     uint   `json:"id" validate:"required"`
	Status string `json:"status" validate:"required"`
}

type OrderHandler struct {
	orders *service.OrderService
}

func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// ListOrders returns every order, newest first
func (h *OrderHandler) ListOrders(c echo.Context) error {
	orders, err := h.orders.ListOrders(c.Request().Context())
	if err != nil {
		return respondError(c, err, "Failed to fetch orders")
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": orders})
}

// PlaceOrder runs checkout. Stock shortfalls come back as 400 with the
// product name so the buyer can adjust the cart.
func (h *OrderHandler) PlaceOrder(c echo.Context) error {
	log := logger.FromContext(c)

	var req PlaceOrderRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err, "Invalid order")
	}

	order, err := h.orders.PlaceOrder(c.Request().Context(), service.PlaceOrderInput{
		CustomerName:  req.CustomerName,
		Phone:         req.Phone,
		Address:       req.Address,
		Email:         req.Email,
		Items:         req.Items,
		TotalCents:    req.TotalCents,
		PaymentMethod: req.PaymentMethod,
		TransactionID: req.TransactionID,
	})
	if err != nil {
		return respondError(c, err, "Failed to place order")
	}

	log.Info("Checkout completed",
		zap.Uint("order_id", order.ID),
		zap.String("payment_method", order.PaymentMethod))
	return c.JSON(http.StatusCreated, echo.Map{
		"success":     true,
		"order_id":    order.ID,
		"total_cents": order.TotalCents,
	})
}

// UpdateOrderStatus moves an order along pending → paid → delivered
func (h *OrderHandler) UpdateOrderStatus(c echo.Context) error {
	var req UpdateOrderStatusRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err, "Invalid status update")
	}

	order, err := h.orders.UpdateStatus(c.Request().Context(), req.ID, req.Status)
	if err != nil {
		return respondError(c, err, "Failed to update order")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "order": order})
}
