package domain

import "bookstore/pkg/errors"

// Domain-specific errors
var (
	ErrTitleRequired   = errors.NewValidation("title is required", nil)
	ErrInvalidPrice    = errors.NewValidation("price must be greater than 0", nil)
	ErrInvalidDiscount = errors.NewValidation("discount must be between 0 and 100", nil)
	ErrInvalidStock    = errors.NewValidation("stock cannot be negative", nil)
	ErrInvalidQuantity = errors.NewValidation("quantity must be greater than 0", nil)
)

// NewBookNotFound creates a not found error with the book ID
func NewBookNotFound(id uint) error {
	return errors.NewNotFound("book", id)
}

// NewInsufficientStock creates a stock rejection for the book
func NewInsufficientStock(bookID uint, requested, available int) error {
	return errors.NewInsufficientStock(bookID, requested, available)
}

// NewBookHasOrders creates the rejection returned when deleting a book
// that order items still reference
func NewBookHasOrders(id uint) error {
	return errors.NewConflict("cannot delete a book with existing orders, disable it instead")
}
