package domain

import "bookstore/pkg/errors"

// Domain-specific errors
var (
	ErrInvalidQuantity = errors.NewValidation("quantity must be greater than 0", nil)
)

// NewCartLineNotFound creates a not found error for a missing cart line
func NewCartLineNotFound(bookID uint) error {
	return errors.NewNotFound("cart item", bookID)
}

// NewStockExceeded creates the rejection returned when a cart mutation
// would put more units in the cart than the book has in stock
func NewStockExceeded(bookID uint, requested, available int) error {
	return errors.NewInsufficientStock(bookID, requested, available)
}

// NewBookUnavailable creates the rejection for adding a disabled book
func NewBookUnavailable(bookID uint) error {
	return errors.NewConflict("book is not available for purchase")
}
