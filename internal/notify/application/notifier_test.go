package application

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstore/internal/notify/ports"
	"bookstore/pkg/events"
	"bookstore/pkg/logger"
)

// MockSender records sent messages
type MockSender struct {
	sent []ports.Message
}

func (m *MockSender) Send(_ context.Context, msg ports.Message) error {
	m.sent = append(m.sent, msg)
	return nil
}

func newNotifier() (*Notifier, *MockSender) {
	sender := &MockSender{}
	log := logger.New("test", "error")
	return NewNotifier(sender, log), sender
}

func marshal(t *testing.T, v interface{}) []byte {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	return body
}

func TestHandleMessage_OrderCreated(t *testing.T) {
	notifier, sender := newNotifier()

	event := events.NewOrderCreatedEvent(events.OrderCreatedPayload{
		OrderID:     1,
		OrderNumber: "ORD-20240309-0A1B2C3D",
		UserID:      7,
		Subtotal:    55,
		Discount:    4,
		Total:       51,
		Lines: []events.OrderLine{
			{BookID: 1, Title: "The Go Programming Language", Quantity: 2, PriceAtPurchase: 20},
			{BookID: 2, Title: "Designing Data-Intensive Applications", Quantity: 1, PriceAtPurchase: 15},
		},
	}, "trace-1")

	err := notifier.HandleMessage(context.Background(), events.RoutingKeyOrderCreated, marshal(t, event))
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, uint(7), msg.UserID)
	assert.Equal(t, "Order confirmation ORD-20240309-0A1B2C3D", msg.Subject)
	assert.Contains(t, msg.Body, "2 x The Go Programming Language")
	assert.Contains(t, msg.Body, "Total:    51.00")
}

func TestHandleMessage_StatusChanged(t *testing.T) {
	notifier, sender := newNotifier()

	event := events.NewOrderStatusChangedEvent(events.OrderStatusChangedPayload{
		OrderID:     1,
		OrderNumber: "ORD-20240309-0A1B2C3D",
		UserID:      7,
		OldStatus:   "PROCESSING",
		NewStatus:   "SHIPPED",
	}, "trace-2")

	err := notifier.HandleMessage(context.Background(), events.RoutingKeyOrderStatusChanged, marshal(t, event))
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Body, "now SHIPPED (was PROCESSING)")
}

func TestHandleMessage_Cancelled(t *testing.T) {
	notifier, sender := newNotifier()

	event := events.NewOrderStatusChangedEvent(events.OrderStatusChangedPayload{
		OrderID:     1,
		OrderNumber: "ORD-20240309-0A1B2C3D",
		UserID:      7,
		OldStatus:   "PENDING",
		NewStatus:   "CANCELLED",
	}, "trace-3")

	err := notifier.HandleMessage(context.Background(), events.RoutingKeyOrderCancelled, marshal(t, event))
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Order ORD-20240309-0A1B2C3D cancelled", sender.sent[0].Subject)
	assert.Contains(t, sender.sent[0].Body, "returned to stock")
}

func TestHandleMessage_StockLowDoesNotNotifyUsers(t *testing.T) {
	notifier, sender := newNotifier()

	event := events.NewStockLowEvent(events.StockLowPayload{
		BookID: 1, Title: "The Go Programming Language", Stock: 3, Threshold: 10,
	}, "trace-4")

	err := notifier.HandleMessage(context.Background(), events.RoutingKeyStockLow, marshal(t, event))
	require.NoError(t, err)
	assert.Empty(t, sender.sent)
}

func TestHandleMessage_UnknownKeyDropped(t *testing.T) {
	notifier, sender := newNotifier()

	err := notifier.HandleMessage(context.Background(), "order.refunded", []byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, sender.sent)
}

func TestHandleMessage_MalformedBody(t *testing.T) {
	notifier, _ := newNotifier()

	err := notifier.HandleMessage(context.Background(), events.RoutingKeyOrderCreated, []byte(`not json`))
	assert.Error(t, err)
}
