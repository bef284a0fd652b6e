package adapters

import (
	"context"

	"bookstore/internal/catalog/domain"
	"bookstore/pkg/events"
	"bookstore/pkg/logger"
	"bookstore/pkg/rabbitmq"
)

// RabbitMQAlertPublisher implements AlertPublisher using RabbitMQ
type RabbitMQAlertPublisher struct {
	publisher *rabbitmq.Publisher
	log       *logger.Logger
}

// NewRabbitMQAlertPublisher creates a new RabbitMQ alert publisher
func NewRabbitMQAlertPublisher(publisher *rabbitmq.Publisher, log *logger.Logger) *RabbitMQAlertPublisher {
	return &RabbitMQAlertPublisher{
		publisher: publisher,
		log:       log,
	}
}

// PublishStockLow publishes a low-stock alert for the book
func (p *RabbitMQAlertPublisher) PublishStockLow(ctx context.Context, book *domain.Book) error {
	event := events.NewStockLowEvent(events.StockLowPayload{
		BookID:    book.ID,
		Title:     book.Title,
		Stock:     book.Stock,
		Threshold: book.StockAlertThreshold,
	}, logger.GetTraceID(ctx))

	return p.publisher.Publish(ctx, events.RoutingKeyStockLow, event)
}
