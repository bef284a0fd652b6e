package ports

import (
	"context"

	"bookstore/internal/cart/domain"
	catalogdomain "bookstore/internal/catalog/domain"
)

// CartRepository defines the interface for cart persistence. Lines are
// unique per (user, book).
type CartRepository interface {
	// Upsert inserts the line or replaces the quantity of an existing one
	Upsert(ctx context.Context, line *domain.CartLine) error

	// Get retrieves the line for (user, book), nil when absent
	Get(ctx context.Context, userID, bookID uint) (*domain.CartLine, error)

	// ListByUser retrieves a user's lines, newest first
	ListByUser(ctx context.Context, userID uint) ([]*domain.CartLine, error)

	// Delete removes the line for (user, book)
	Delete(ctx context.Context, userID, bookID uint) error

	// DeleteAllByUser removes every line of the user
	DeleteAllByUser(ctx context.Context, userID uint) error

	// Count returns the number of lines in the user's cart
	Count(ctx context.Context, userID uint) (int64, error)
}

// BookSource provides read access to the catalog for stock and price
// checks. Implemented by the catalog use case.
type BookSource interface {
	GetBook(ctx context.Context, id uint) (*catalogdomain.Book, error)
}
