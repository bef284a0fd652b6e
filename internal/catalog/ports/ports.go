package ports

import (
	"context"

	"bookstore/internal/catalog/domain"
)

// BookRepository defines the interface for book persistence
type BookRepository interface {
	// Create creates a new book
	Create(ctx context.Context, book *domain.Book) error

	// GetByID retrieves a book by ID
	GetByID(ctx context.Context, id uint) (*domain.Book, error)

	// Update updates an existing book
	Update(ctx context.Context, book *domain.Book) error

	// Delete deletes a book by ID
	Delete(ctx context.Context, id uint) error

	// List retrieves a page of books ordered by title
	List(ctx context.Context, page, size int) ([]*domain.Book, error)

	// Search retrieves books whose title or author matches the keyword
	Search(ctx context.Context, keyword string) ([]*domain.Book, error)

	// ListFeatured retrieves books flagged as featured
	ListFeatured(ctx context.Context) ([]*domain.Book, error)

	// ListLowStock retrieves enabled books with stock at or below threshold
	ListLowStock(ctx context.Context, threshold int) ([]*domain.Book, error)

	// MutateStock loads the book identified by id, applies fn to it and
	// persists the result as one atomic unit. Concurrent mutations of the
	// same book are serialized; an error from fn aborts without persisting.
	MutateStock(ctx context.Context, id uint, fn func(*domain.Book) error) (*domain.Book, error)

	// HasOrderReferences reports whether any order item references the book
	HasOrderReferences(ctx context.Context, id uint) (bool, error)

	// RecordPriceChange appends a price history entry
	RecordPriceChange(ctx context.Context, entry *domain.PriceHistory) error

	// PriceHistory retrieves a book's price changes, newest first
	PriceHistory(ctx context.Context, bookID uint) ([]*domain.PriceHistory, error)
}

// AlertPublisher defines the interface for publishing stock alerts
type AlertPublisher interface {
	// PublishStockLow publishes a low-stock alert for the book
	PublishStockLow(ctx context.Context, book *domain.Book) error
}

// AuditRecorder defines the interface for recording admin actions.
// Recording never fails the recorded operation.
type AuditRecorder interface {
	// Record records a successful action
	Record(ctx context.Context, action, entityType string, entityID uint, details string)

	// RecordFailed records a rejected action
	RecordFailed(ctx context.Context, action, entityType string, entityID uint, details string)
}
