package application

import (
	"context"

	"go.uber.org/zap"

	catalogdomain "bookstore/internal/catalog/domain"
	"bookstore/internal/wishlist/domain"
	"bookstore/internal/wishlist/ports"
	"bookstore/pkg/errors"
	"bookstore/pkg/logger"
)

// WishlistUseCase handles the per-user wishlist
type WishlistUseCase struct {
	repo  ports.WishlistRepository
	books ports.BookSource
	log   *logger.Logger
}

// NewWishlistUseCase creates a new wishlist use case
func NewWishlistUseCase(repo ports.WishlistRepository, books ports.BookSource, log *logger.Logger) *WishlistUseCase {
	return &WishlistUseCase{
		repo:  repo,
		books: books,
		log:   log,
	}
}

// WishlistItem pairs an entry with its book for display
type WishlistItem struct {
	Entry *domain.WishlistEntry
	Book  *catalogdomain.Book
}

// Add puts the book on the user's wishlist. Adding a book that is
// already listed succeeds without effect.
func (uc *WishlistUseCase) Add(ctx context.Context, userID, bookID uint) error {
	if _, err := uc.books.GetBook(ctx, bookID); err != nil {
		return err
	}

	entry, err := domain.NewWishlistEntry(userID, bookID)
	if err != nil {
		return err
	}

	if err := uc.repo.Add(ctx, entry); err != nil {
		return errors.NewInternal("failed to add wishlist entry", err)
	}

	uc.log.WithContext(ctx).Info("wishlist entry added",
		zap.Uint("user_id", userID),
		zap.Uint("book_id", bookID),
	)

	return nil
}

// Remove takes the book off the user's wishlist
func (uc *WishlistUseCase) Remove(ctx context.Context, userID, bookID uint) error {
	listed, err := uc.repo.Contains(ctx, userID, bookID)
	if err != nil {
		return err
	}
	if !listed {
		return domain.NewEntryNotFound(bookID)
	}
	return uc.repo.Remove(ctx, userID, bookID)
}

// Items retrieves the user's wishlist with books, newest first. Books
// removed from the catalog drop out of the listing.
func (uc *WishlistUseCase) Items(ctx context.Context, userID uint) ([]WishlistItem, error) {
	entries, err := uc.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]WishlistItem, 0, len(entries))
	for _, entry := range entries {
		book, err := uc.books.GetBook(ctx, entry.BookID)
		if err != nil {
			if errors.Is(err, errors.CodeNotFound) {
				continue
			}
			return nil, err
		}
		items = append(items, WishlistItem{Entry: entry, Book: book})
	}
	return items, nil
}

// Contains reports whether the user has wishlisted the book
func (uc *WishlistUseCase) Contains(ctx context.Context, userID, bookID uint) (bool, error) {
	return uc.repo.Contains(ctx, userID, bookID)
}

// Count returns the number of entries in the user's wishlist
func (uc *WishlistUseCase) Count(ctx context.Context, userID uint) (int64, error) {
	return uc.repo.Count(ctx, userID)
}
