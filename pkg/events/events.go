package events

import "time"

// Exchange names
const (
	ExchangeOrders  = "orders.events"
	ExchangeCatalog = "catalog.events"
)

// Routing keys
const (
	RoutingKeyOrderCreated       = "order.created"
	RoutingKeyOrderStatusChanged = "order.status_changed"
	RoutingKeyOrderCancelled     = "order.cancelled"
	RoutingKeyStockLow           = "stock.low"
)

// OrderLine is an order item snapshot carried in order events
type OrderLine struct {
	BookID             uint    `json:"book_id"`
	Title              string  `json:"title"`
	Quantity           int     `json:"quantity"`
	PriceAtPurchase    float64 `json:"price_at_purchase"`
	DiscountAtPurchase float64 `json:"discount_at_purchase"`
}

// OrderCreatedEvent is published when an order is created
type OrderCreatedEvent struct {
	Version   string              `json:"version"`
	EventType string              `json:"event_type"`
	Timestamp time.Time           `json:"timestamp"`
	TraceID   string              `json:"trace_id"`
	Payload   OrderCreatedPayload `json:"payload"`
}

// OrderCreatedPayload contains order data
type OrderCreatedPayload struct {
	OrderID     uint        `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	UserID      uint        `json:"user_id"`
	Subtotal    float64     `json:"subtotal"`
	Discount    float64     `json:"discount_amount"`
	Total       float64     `json:"total"`
	Lines       []OrderLine `json:"lines"`
	CreatedAt   time.Time   `json:"created_at"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(payload OrderCreatedPayload, traceID string) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		Version:   "1.0",
		EventType: RoutingKeyOrderCreated,
		Timestamp: time.Now(),
		TraceID:   traceID,
		Payload:   payload,
	}
}

// OrderStatusChangedEvent is published on every order status transition,
// including cancellations (which also go out under the order.cancelled key)
type OrderStatusChangedEvent struct {
	Version   string                    `json:"version"`
	EventType string                    `json:"event_type"`
	Timestamp time.Time                 `json:"timestamp"`
	TraceID   string                    `json:"trace_id"`
	Payload   OrderStatusChangedPayload `json:"payload"`
}

// OrderStatusChangedPayload contains the transition data
type OrderStatusChangedPayload struct {
	OrderID     uint   `json:"order_id"`
	OrderNumber string `json:"order_number"`
	UserID      uint   `json:"user_id"`
	OldStatus   string `json:"old_status"`
	NewStatus   string `json:"new_status"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(payload OrderStatusChangedPayload, traceID string) *OrderStatusChangedEvent {
	eventType := RoutingKeyOrderStatusChanged
	if payload.NewStatus == "CANCELLED" {
		eventType = RoutingKeyOrderCancelled
	}
	return &OrderStatusChangedEvent{
		Version:   "1.0",
		EventType: eventType,
		Timestamp: time.Now(),
		TraceID:   traceID,
		Payload:   payload,
	}
}

// StockLowEvent is published when a stock mutation leaves a book at or
// below its alert threshold
type StockLowEvent struct {
	Version   string          `json:"version"`
	EventType string          `json:"event_type"`
	Timestamp time.Time       `json:"timestamp"`
	TraceID   string          `json:"trace_id"`
	Payload   StockLowPayload `json:"payload"`
}

// StockLowPayload contains the book and its remaining stock
type StockLowPayload struct {
	BookID    uint   `json:"book_id"`
	Title     string `json:"title"`
	Stock     int    `json:"stock"`
	Threshold int    `json:"threshold"`
}

// NewStockLowEvent creates a new StockLowEvent
func NewStockLowEvent(payload StockLowPayload, traceID string) *StockLowEvent {
	return &StockLowEvent{
		Version:   "1.0",
		EventType: RoutingKeyStockLow,
		Timestamp: time.Now(),
		TraceID:   traceID,
		Payload:   payload,
	}
}
