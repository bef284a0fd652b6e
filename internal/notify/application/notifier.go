package application

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"text/template"

	"go.uber.org/zap"

	"bookstore/internal/notify/ports"
	"bookstore/pkg/events"
	"bookstore/pkg/logger"
)

var orderCreatedTmpl = template.Must(template.New("order_created").Parse(
	`Thank you for your order {{.OrderNumber}}.

Items:
{{range .Lines}}  {{.Quantity}} x {{.Title}}
{{end}}
Subtotal: {{printf "%.2f" .Subtotal}}
Discount: {{printf "%.2f" .Discount}}
Total:    {{printf "%.2f" .Total}}

We will let you know as soon as it ships.
`))

var statusChangedTmpl = template.Must(template.New("status_changed").Parse(
	`Your order {{.OrderNumber}} is now {{.NewStatus}} (was {{.OldStatus}}).
`))

var orderCancelledTmpl = template.Must(template.New("order_cancelled").Parse(
	`Your order {{.OrderNumber}} has been cancelled. Reserved items were
returned to stock and nothing will be charged.
`))

// Notifier turns order and stock events into user notifications. It is
// the handler behind the notifier queue consumer.
type Notifier struct {
	sender ports.Sender
	log    *logger.Logger
}

// NewNotifier creates a new notifier
func NewNotifier(sender ports.Sender, log *logger.Logger) *Notifier {
	return &Notifier{sender: sender, log: log}
}

// HandleMessage dispatches a consumed event by routing key. Unknown keys
// are acknowledged and dropped so stray bindings cannot poison the queue.
func (n *Notifier) HandleMessage(ctx context.Context, routingKey string, body []byte) error {
	switch routingKey {
	case events.RoutingKeyOrderCreated:
		return n.handleOrderCreated(ctx, body)
	case events.RoutingKeyOrderStatusChanged:
		return n.handleStatusChanged(ctx, body)
	case events.RoutingKeyOrderCancelled:
		return n.handleCancelled(ctx, body)
	case events.RoutingKeyStockLow:
		return n.handleStockLow(ctx, body)
	default:
		n.log.WithContext(ctx).Warn("unknown routing key, dropping message",
			zap.String("routing_key", routingKey),
		)
		return nil
	}
}

func (n *Notifier) handleOrderCreated(ctx context.Context, body []byte) error {
	var event events.OrderCreatedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("failed to decode order created event: %w", err)
	}

	text, err := render(orderCreatedTmpl, event.Payload)
	if err != nil {
		return err
	}

	return n.sender.Send(ctx, ports.Message{
		UserID:  event.Payload.UserID,
		Subject: fmt.Sprintf("Order confirmation %s", event.Payload.OrderNumber),
		Body:    text,
	})
}

func (n *Notifier) handleStatusChanged(ctx context.Context, body []byte) error {
	var event events.OrderStatusChangedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("failed to decode status changed event: %w", err)
	}

	text, err := render(statusChangedTmpl, event.Payload)
	if err != nil {
		return err
	}

	return n.sender.Send(ctx, ports.Message{
		UserID:  event.Payload.UserID,
		Subject: fmt.Sprintf("Order %s update", event.Payload.OrderNumber),
		Body:    text,
	})
}

func (n *Notifier) handleCancelled(ctx context.Context, body []byte) error {
	var event events.OrderStatusChangedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("failed to decode cancelled event: %w", err)
	}

	text, err := render(orderCancelledTmpl, event.Payload)
	if err != nil {
		return err
	}

	return n.sender.Send(ctx, ports.Message{
		UserID:  event.Payload.UserID,
		Subject: fmt.Sprintf("Order %s cancelled", event.Payload.OrderNumber),
		Body:    text,
	})
}

// handleStockLow only logs. Restock alerts are an operational signal, not
// a customer notification.
func (n *Notifier) handleStockLow(ctx context.Context, body []byte) error {
	var event events.StockLowEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("failed to decode stock low event: %w", err)
	}

	n.log.WithContext(ctx).Warn("book low on stock",
		zap.Uint("book_id", event.Payload.BookID),
		zap.String("title", event.Payload.Title),
		zap.Int("stock", event.Payload.Stock),
		zap.Int("threshold", event.Payload.Threshold),
	)
	return nil
}

func render(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
