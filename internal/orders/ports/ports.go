package ports

import (
	"context"
	"time"

	"bookstore/internal/orders/domain"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// Create persists the order and its items as one unit. A duplicate
	// order number is reported as a conflict error.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order with its items
	GetByID(ctx context.Context, id uint) (*domain.Order, error)

	// GetByOrderNumber retrieves an order with its items by order number
	GetByOrderNumber(ctx context.Context, number string) (*domain.Order, error)

	// ListByUser retrieves a user's orders, newest first
	ListByUser(ctx context.Context, userID uint) ([]*domain.Order, error)

	// ListByStatus retrieves orders in the given status
	ListByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error)

	// ListAll retrieves a page of orders, newest first
	ListAll(ctx context.Context, page, size int) ([]*domain.Order, error)

	// UpdateStatusGuarded commits the transition from -> to only if the
	// stored status still equals from. It returns a conflict error when a
	// concurrent transition won.
	UpdateStatusGuarded(ctx context.Context, orderID uint, from, to domain.OrderStatus) error

	// CountByStatus returns the number of orders in the given status
	CountByStatus(ctx context.Context, status domain.OrderStatus) (int64, error)

	// TotalRevenue sums the total of delivered orders
	TotalRevenue(ctx context.Context) (float64, error)

	// RevenueBetween sums the total of delivered orders in the date range
	RevenueBetween(ctx context.Context, start, end time.Time) (float64, error)
}

// StockLedger is the single gateway for stock mutations, implemented by
// the catalog module. Both operations are atomic per book.
type StockLedger interface {
	// ReduceStock reserves quantity units of the book
	ReduceStock(ctx context.Context, bookID uint, quantity int) error

	// RestoreStock returns quantity units of the book
	RestoreStock(ctx context.Context, bookID uint, quantity int) error
}

// AuditRecorder defines the interface for recording admin actions.
// Recording never fails the recorded operation.
type AuditRecorder interface {
	// Record records a successful action
	Record(ctx context.Context, action, entityType string, entityID uint, details string)

	// RecordFailed records a rejected action
	RecordFailed(ctx context.Context, action, entityType string, entityID uint, details string)
}

// EventPublisher defines the interface for publishing order events.
// Publishing is fire-and-forget: failures are logged by the caller and
// never fail the order operation.
type EventPublisher interface {
	// PublishOrderCreated publishes an order created event
	PublishOrderCreated(ctx context.Context, order *domain.Order) error

	// PublishStatusChanged publishes a status transition event
	PublishStatusChanged(ctx context.Context, order *domain.Order, from, to domain.OrderStatus) error
}
