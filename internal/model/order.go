package model

import (
	"time"

	"gorm.io/datatypes"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPaid      OrderStatus = "paid"
	StatusDelivered OrderStatus = "delivered"
)

// ParseOrderStatus accepts only the known statuses.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case StatusPending, StatusPaid, StatusDelivered:
		return OrderStatus(s), true
	}
	return "", false
}

// CanTransitionTo reports whether an admin may move an order from s to next.
// Setting the current status again is allowed and changes nothing.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case StatusPending:
		return next == StatusPaid || next == StatusDelivered
	case StatusPaid:
		return next == StatusDelivered
	}
	return false
}

// Payment method labels. None of them is verified automatically.
const (
	PaymentCashOnDelivery = "Cash on Delivery"
	PaymentMPesa          = "M-Pesa"
	PaymentEcoCash        = "EcoCash"
)

// PaymentMethodNeedsReference reports whether the label requires a transaction id.
func PaymentMethodNeedsReference(method string) bool {
	return method == PaymentMPesa || method == PaymentEcoCash
}

// KnownPaymentMethod reports whether method is one of the accepted labels.
func KnownPaymentMethod(method string) bool {
	switch method {
	case PaymentCashOnDelivery, PaymentMPesa, PaymentEcoCash:
		return true
	}
	return false
}

// LineItem is a frozen copy of a product line taken when the order is placed.
type LineItem struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Quantity   int    `json:"quantity"`
}

// SubtotalCents is price times quantity for the line.
func (l LineItem) SubtotalCents() int64 {
	return l.PriceCents * int64(l.Quantity)
}

// Order is an append-on-create record; only Status changes afterwards.
type Order struct {
	ID            uint                           `json:"id" gorm:"primarykey"`
	CustomerName  string                         `json:"customer_name" gorm:"type:varchar(255);not null"`
	Phone         string                         `json:"phone" gorm:"type:varchar(50);not null"`
	Address       string                         `json:"address" gorm:"type:text;not null"`
	Email         string                         `json:"email,omitempty" gorm:"type:varchar(255)"`
	TotalCents    int64                          `json:"total_cents" gorm:"not null"`
	Items         datatypes.JSONType[[]LineItem] `json:"items"`
	PaymentMethod string                         `json:"payment_method" gorm:"type:varchar(50)"`
	TransactionID string                         `json:"transaction_id,omitempty" gorm:"type:varchar(100)"`
	Status        OrderStatus                    `json:"status" gorm:"type:varchar(20);not null;index"`
	CreatedAt     time.Time                      `json:"created_at" gorm:"index"`
	UpdatedAt     time.Time                      `json:"updated_at"`
}

// Lines returns the snapshot items.
func (o Order) Lines() []LineItem {
	return o.Items.Data()
}

// ItemCount is the number of units across all lines.
func (o Order) ItemCount() int {
	n := 0
	for _, l := range o.Lines() {
		n += l.Quantity
	}
	return n
}
