package adapters

import (
	"context"

	"bookstore/internal/orders/domain"
	"bookstore/pkg/events"
	"bookstore/pkg/logger"
	"bookstore/pkg/rabbitmq"
)

// RabbitMQPublisher implements EventPublisher using RabbitMQ
type RabbitMQPublisher struct {
	publisher *rabbitmq.Publisher
	log       *logger.Logger
}

// NewRabbitMQPublisher creates a new RabbitMQ event publisher
func NewRabbitMQPublisher(publisher *rabbitmq.Publisher, log *logger.Logger) *RabbitMQPublisher {
	return &RabbitMQPublisher{
		publisher: publisher,
		log:       log,
	}
}

// PublishOrderCreated publishes an order created event
func (p *RabbitMQPublisher) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	lines := make([]events.OrderLine, len(order.Items))
	for i, item := range order.Items {
		lines[i] = events.OrderLine{
			BookID:             item.BookID,
			Title:              item.Title,
			Quantity:           item.Quantity,
			PriceAtPurchase:    item.PriceAtPurchase,
			DiscountAtPurchase: item.DiscountAtPurchase,
		}
	}

	event := events.NewOrderCreatedEvent(events.OrderCreatedPayload{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Subtotal:    order.Subtotal,
		Discount:    order.DiscountAmount,
		Total:       order.Total,
		Lines:       lines,
		CreatedAt:   order.OrderDate,
	}, logger.GetTraceID(ctx))

	return p.publisher.Publish(ctx, events.RoutingKeyOrderCreated, event)
}

// PublishStatusChanged publishes a status transition event. Cancellations
// go out under their own routing key so interested consumers can bind to
// them directly.
func (p *RabbitMQPublisher) PublishStatusChanged(ctx context.Context, order *domain.Order, from, to domain.OrderStatus) error {
	event := events.NewOrderStatusChangedEvent(events.OrderStatusChangedPayload{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		OldStatus:   string(from),
		NewStatus:   string(to),
	}, logger.GetTraceID(ctx))

	routingKey := events.RoutingKeyOrderStatusChanged
	if to == domain.OrderStatusCancelled {
		routingKey = events.RoutingKeyOrderCancelled
	}

	return p.publisher.Publish(ctx, routingKey, event)
}
