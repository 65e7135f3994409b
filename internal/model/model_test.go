package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestOrderStatus_Transitions(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{StatusPending, StatusPaid, true},
		{StatusPending, StatusDelivered, true},
		{StatusPaid, StatusDelivered, true},
		{StatusPaid, StatusPaid, true},
		{StatusPaid, StatusPending, false},
		{StatusDelivered, StatusPaid, false},
		{StatusDelivered, StatusPending, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ok, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}

	_, ok := ParseOrderStatus("shipped")
	assert.False(t, ok)
	s, ok := ParseOrderStatus("paid")
	assert.True(t, ok)
	assert.Equal(t, StatusPaid, s)
}

func TestPaymentMethods(t *testing.T) {
	assert.True(t, KnownPaymentMethod(PaymentCashOnDelivery))
	assert.False(t, KnownPaymentMethod("Visa"))
	assert.True(t, PaymentMethodNeedsReference(PaymentMPesa))
	assert.True(t, PaymentMethodNeedsReference(PaymentEcoCash))
	assert.False(t, PaymentMethodNeedsReference(PaymentCashOnDelivery))
}

func TestProduct_StockStatus(t *testing.T) {
	assert.Equal(t, "Out of Stock", Product{StockQuantity: 0}.StockStatus())
	assert.Equal(t, "Low Stock", Product{StockQuantity: 5}.StockStatus())
	assert.Equal(t, "In Stock", Product{StockQuantity: 6}.StockStatus())
	assert.Equal(t, "Low Stock", Product{StockQuantity: 8, ReorderLevel: 10}.StockStatus())
}

func TestOrder_ItemCount(t *testing.T) {
	o := Order{Items: datatypes.NewJSONType([]LineItem{
		{ID: 1, PriceCents: 100, Quantity: 2},
		{ID: 2, PriceCents: 50, Quantity: 3},
	})}
	assert.Equal(t, 5, o.ItemCount())
	assert.Equal(t, int64(150), o.Lines()[1].SubtotalCents())
}
