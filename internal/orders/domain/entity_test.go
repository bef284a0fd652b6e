package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstore/pkg/errors"
)

func TestCheckTransition(t *testing.T) {
	tests := []struct {
		name     string
		from, to OrderStatus
		wantCode string
	}{
		{"pending to processing", OrderStatusPending, OrderStatusProcessing, ""},
		{"pending to shipped", OrderStatusPending, OrderStatusShipped, ""},
		{"processing to delivered", OrderStatusProcessing, OrderStatusDelivered, ""},
		{"shipped to delivered", OrderStatusShipped, OrderStatusDelivered, ""},
		{"pending to cancelled", OrderStatusPending, OrderStatusCancelled, ""},
		{"delivered to cancelled", OrderStatusDelivered, OrderStatusCancelled, ""},
		{"same status", OrderStatusProcessing, OrderStatusProcessing, ""},
		{"shipped to processing", OrderStatusShipped, OrderStatusProcessing, errors.CodeInvalidTransition},
		{"shipped to pending", OrderStatusShipped, OrderStatusPending, errors.CodeInvalidTransition},
		{"delivered to shipped", OrderStatusDelivered, OrderStatusShipped, errors.CodeInvalidTransition},
		{"processing to pending", OrderStatusProcessing, OrderStatusPending, errors.CodeInvalidTransition},
		{"cancelled to pending", OrderStatusCancelled, OrderStatusPending, errors.CodeTerminalState},
		{"cancelled to cancelled", OrderStatusCancelled, OrderStatusCancelled, errors.CodeTerminalState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckTransition(tt.from, tt.to)
			if tt.wantCode == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantCode))
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, OrderStatusCancelled.IsTerminal())
	for _, s := range []OrderStatus{OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered} {
		assert.False(t, s.IsTerminal(), string(s))
	}
}

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus("shipped")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusShipped, status)

	_, err = ParseStatus("RETURNED")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeValidation))
}

func TestNewOrderNumber_Format(t *testing.T) {
	now := time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC)
	number := NewOrderNumber(now)
	assert.Regexp(t, `^ORD-20240309-[0-9A-F]{8}$`, number)

	// suffixes are random
	assert.NotEqual(t, number, NewOrderNumber(now))
}

func TestOrderItemSubtotal(t *testing.T) {
	item := OrderItem{Quantity: 2, PriceAtPurchase: 20, DiscountAtPurchase: 10}
	assert.InDelta(t, 36.0, item.Subtotal(), 1e-9)

	full := OrderItem{Quantity: 3, PriceAtPurchase: 15}
	assert.InDelta(t, 45.0, full.Subtotal(), 1e-9)
}
