// internal/models/order_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanCancel(t *testing.T) {
	cases := []struct {
		status OrderStatus
		want   bool
	}{
		{OrderStatusPending, true},
		{OrderStatusConfirmed, true},
		{OrderStatusProcessing, false},
		{OrderStatusShipped, false},
		{OrderStatusDelivered, false},
		{OrderStatusCancelled, false},
		{OrderStatusReturned, false},
	}

	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			order := Order{Status: tc.status}
			assert.Equal(t, tc.want, order.CanCancel())
		})
	}
}

func TestValidOrderStatus(t *testing.T) {
	for _, s := range []OrderStatus{
		OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled,
		OrderStatusReturned,
	} {
		assert.True(t, ValidOrderStatus(s), string(s))
	}

	assert.False(t, ValidOrderStatus(OrderStatus("UNKNOWN")))
	assert.False(t, ValidOrderStatus(OrderStatus("")))
	assert.False(t, ValidOrderStatus(OrderStatus("pending")), "enum is case sensitive")
}

func TestValidProductStatus(t *testing.T) {
	assert.True(t, ValidProductStatus(ProductStatusDraft))
	assert.True(t, ValidProductStatus(ProductStatusActive))
	assert.True(t, ValidProductStatus(ProductStatusArchived))
	assert.False(t, ValidProductStatus(ProductStatus("DELETED")))
}
