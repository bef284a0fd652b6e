package ports

import (
	"context"

	catalogdomain "bookstore/internal/catalog/domain"
	"bookstore/internal/wishlist/domain"
)

// WishlistRepository defines the interface for wishlist persistence
type WishlistRepository interface {
	// Add inserts the entry; inserting an existing (user, book) pair is
	// a no-op
	Add(ctx context.Context, entry *domain.WishlistEntry) error

	// Remove deletes the entry for (user, book)
	Remove(ctx context.Context, userID, bookID uint) error

	// ListByUser retrieves a user's entries, newest first
	ListByUser(ctx context.Context, userID uint) ([]*domain.WishlistEntry, error)

	// Contains reports whether the user has wishlisted the book
	Contains(ctx context.Context, userID, bookID uint) (bool, error)

	// Count returns the number of entries in the user's wishlist
	Count(ctx context.Context, userID uint) (int64, error)
}

// BookSource provides read access to the catalog. Implemented by the
// catalog use case.
type BookSource interface {
	GetBook(ctx context.Context, id uint) (*catalogdomain.Book, error)
}
