package domain

import "bookstore/pkg/errors"

// Domain-specific errors
var (
	ErrEmptyCart               = errors.NewValidation("cannot create an order from an empty cart", nil)
	ErrShippingAddressRequired = errors.NewValidation("shipping address is required", nil)
)

// NewOrderNotFound creates a not found error with the order ID
func NewOrderNotFound(id interface{}) error {
	return errors.NewNotFound("order", id)
}

// NewUnknownStatus creates a validation error for an unrecognized status
func NewUnknownStatus(s string) error {
	return errors.NewValidation("unknown order status", map[string]interface{}{
		"status": s,
	})
}

// NewInvalidTransition creates a downgrade rejection
func NewInvalidTransition(from, to OrderStatus) error {
	return errors.NewInvalidTransition(string(from), string(to))
}

// NewTerminalState creates a terminal-status rejection
func NewTerminalState(status OrderStatus) error {
	return errors.NewTerminalState(string(status))
}

// NewNotOrderOwner creates the rejection for the self-service cancel path
// when the order belongs to another user
func NewNotOrderOwner(orderID uint) error {
	return errors.NewForbidden("you can only cancel your own orders")
}

// NewTransitionConflict signals that a concurrent request changed the
// order status first
func NewTransitionConflict(orderID uint) error {
	return errors.NewConflict("order status was changed by a concurrent request")
}
