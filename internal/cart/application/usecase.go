package application

import (
	"context"

	"go.uber.org/zap"

	"bookstore/internal/cart/domain"
	"bookstore/internal/cart/ports"
	catalogdomain "bookstore/internal/catalog/domain"
	"bookstore/pkg/errors"
	"bookstore/pkg/logger"
)

// CartUseCase handles a user's pending selections. Quantities are checked
// against current stock at mutation time; the authoritative check happens
// again when the order reserves stock.
type CartUseCase struct {
	repo  ports.CartRepository
	books ports.BookSource
	log   *logger.Logger
}

// NewCartUseCase creates a new cart use case
func NewCartUseCase(repo ports.CartRepository, books ports.BookSource, log *logger.Logger) *CartUseCase {
	return &CartUseCase{
		repo:  repo,
		books: books,
		log:   log,
	}
}

// CartItem pairs a cart line with its book for display and checkout
type CartItem struct {
	Line     *domain.CartLine
	Book     *catalogdomain.Book
	Subtotal float64
}

// AddItem adds quantity units of the book to the user's cart. An existing
// line accumulates; the combined quantity must not exceed current stock.
func (uc *CartUseCase) AddItem(ctx context.Context, userID, bookID uint, quantity int) error {
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}

	book, err := uc.books.GetBook(ctx, bookID)
	if err != nil {
		return err
	}
	if !book.Enabled {
		return domain.NewBookUnavailable(bookID)
	}
	if quantity > book.Stock {
		return domain.NewStockExceeded(bookID, quantity, book.Stock)
	}

	existing, err := uc.repo.Get(ctx, userID, bookID)
	if err != nil {
		return err
	}

	if existing != nil {
		newQuantity := existing.Quantity + quantity
		if newQuantity > book.Stock {
			return domain.NewStockExceeded(bookID, newQuantity, book.Stock)
		}
		existing.Quantity = newQuantity
		if err := uc.repo.Upsert(ctx, existing); err != nil {
			return errors.NewInternal("failed to update cart line", err)
		}
	} else {
		line, err := domain.NewCartLine(userID, bookID, quantity)
		if err != nil {
			return err
		}
		if err := uc.repo.Upsert(ctx, line); err != nil {
			return errors.NewInternal("failed to add cart line", err)
		}
	}

	uc.log.WithContext(ctx).Info("cart item added",
		zap.Uint("user_id", userID),
		zap.Uint("book_id", bookID),
		zap.Int("quantity", quantity),
	)

	return nil
}

// UpdateQuantity sets the quantity of an existing line. Zero or negative
// removes the line; more than current stock is rejected.
func (uc *CartUseCase) UpdateQuantity(ctx context.Context, userID, bookID uint, quantity int) error {
	line, err := uc.repo.Get(ctx, userID, bookID)
	if err != nil {
		return err
	}
	if line == nil {
		return domain.NewCartLineNotFound(bookID)
	}

	if quantity <= 0 {
		return uc.repo.Delete(ctx, userID, bookID)
	}

	book, err := uc.books.GetBook(ctx, bookID)
	if err != nil {
		return err
	}
	if quantity > book.Stock {
		return domain.NewStockExceeded(bookID, quantity, book.Stock)
	}

	line.Quantity = quantity
	if err := uc.repo.Upsert(ctx, line); err != nil {
		return errors.NewInternal("failed to update cart line", err)
	}
	return nil
}

// RemoveItem removes the book from the user's cart
func (uc *CartUseCase) RemoveItem(ctx context.Context, userID, bookID uint) error {
	return uc.repo.Delete(ctx, userID, bookID)
}

// Clear removes every line of the user's cart
func (uc *CartUseCase) Clear(ctx context.Context, userID uint) error {
	return uc.repo.DeleteAllByUser(ctx, userID)
}

// Items retrieves the user's cart with books and read-time subtotals,
// newest first
func (uc *CartUseCase) Items(ctx context.Context, userID uint) ([]CartItem, error) {
	lines, err := uc.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]CartItem, 0, len(lines))
	for _, line := range lines {
		book, err := uc.books.GetBook(ctx, line.BookID)
		if err != nil {
			return nil, err
		}
		items = append(items, CartItem{
			Line:     line,
			Book:     book,
			Subtotal: domain.Subtotal(book.Price, book.Discount, line.Quantity),
		})
	}
	return items, nil
}

// TotalPrice computes the cart total from current prices
func (uc *CartUseCase) TotalPrice(ctx context.Context, userID uint) (float64, error) {
	items, err := uc.Items(ctx, userID)
	if err != nil {
		return 0, err
	}

	total := 0.0
	for _, item := range items {
		total += item.Subtotal
	}
	return total, nil
}

// TotalQuantity computes the summed quantity across lines
func (uc *CartUseCase) TotalQuantity(ctx context.Context, userID uint) (int, error) {
	lines, err := uc.repo.ListByUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, line := range lines {
		total += line.Quantity
	}
	return total, nil
}

// Count returns the number of distinct lines in the cart
func (uc *CartUseCase) Count(ctx context.Context, userID uint) (int64, error) {
	return uc.repo.Count(ctx, userID)
}
