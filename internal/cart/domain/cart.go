package domain

import (
	"time"
)

// CartLine is one (user, book) entry in a cart. A user has at most one
// line per book; repeated adds accumulate the quantity.
type CartLine struct {
	ID       uint
	UserID   uint
	BookID   uint
	Quantity int
	AddedAt  time.Time
}

// NewCartLine creates a new cart line
func NewCartLine(userID, bookID uint, quantity int) (*CartLine, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	return &CartLine{
		UserID:   userID,
		BookID:   bookID,
		Quantity: quantity,
		AddedAt:  time.Now(),
	}, nil
}

// Subtotal computes the line total against the book's current price and
// discount. Totals are derived at read time, so a catalog price change is
// reflected in a cart that already holds the book.
func Subtotal(price, discount float64, quantity int) float64 {
	return price * (1 - discount/100) * float64(quantity)
}
