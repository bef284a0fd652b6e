package domain

import (
	"time"
)

// DefaultStockAlertThreshold is applied to books created without an
// explicit threshold.
const DefaultStockAlertThreshold = 10

// Book represents a catalog entry and its available stock. Stock is
// mutated only through the stock methods below, always under the
// repository's per-book lock.
//
// Enabled tracks stock automatically: any mutation that leaves stock at
// zero disables the book, and any mutation that leaves stock positive
// re-enables it. An explicit admin disable therefore only holds until
// the next stock-increasing mutation.
type Book struct {
	ID                  uint
	Title               string
	Author              string
	Price               float64
	ImageURL            string
	Description         string
	Publisher           string
	PublicationYear     int
	Stock               int
	Discount            float64
	Featured            bool
	Enabled             bool
	StockAlertThreshold int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Validate validates the book entity
func (b *Book) Validate() error {
	if b.Title == "" {
		return ErrTitleRequired
	}
	if b.Price <= 0 {
		return ErrInvalidPrice
	}
	if b.Discount < 0 || b.Discount > 100 {
		return ErrInvalidDiscount
	}
	if b.Stock < 0 {
		return ErrInvalidStock
	}
	return nil
}

// NewBook creates a new book with validation
func NewBook(title, author string, price float64, stock int, discount float64) (*Book, error) {
	book := &Book{
		Title:               title,
		Author:              author,
		Price:               price,
		Stock:               stock,
		Discount:            discount,
		Enabled:             stock > 0,
		StockAlertThreshold: DefaultStockAlertThreshold,
		CreatedAt:           time.Now(),
		UpdatedAt:           time.Now(),
	}

	if err := book.Validate(); err != nil {
		return nil, err
	}

	return book, nil
}

// ReduceStock reserves quantity units. It fails when the request exceeds
// the available stock and disables the book when stock reaches zero.
func (b *Book) ReduceStock(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if quantity > b.Stock {
		return NewInsufficientStock(b.ID, quantity, b.Stock)
	}

	b.Stock -= quantity
	if b.Stock == 0 {
		b.Enabled = false
	}
	b.UpdatedAt = time.Now()
	return nil
}

// RestoreStock returns quantity units, re-enabling the book when the
// resulting stock is positive.
func (b *Book) RestoreStock(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	b.Stock += quantity
	if b.Stock > 0 && !b.Enabled {
		b.Enabled = true
	}
	b.UpdatedAt = time.Now()
	return nil
}

// SetStock is the admin override. The enable flag follows the new level:
// disabled at or below zero, enabled above zero.
func (b *Book) SetStock(stock int) error {
	if stock < 0 {
		return ErrInvalidStock
	}

	b.Stock = stock
	if stock <= 0 {
		b.Enabled = false
	} else if !b.Enabled {
		b.Enabled = true
	}
	b.UpdatedAt = time.Now()
	return nil
}

// DiscountedPrice returns the unit price after discount
func (b *Book) DiscountedPrice() float64 {
	return b.Price * (1 - b.Discount/100)
}

// LowOnStock reports whether the book sits at or below its alert threshold
func (b *Book) LowOnStock() bool {
	return b.Stock <= b.StockAlertThreshold
}

// PriceHistory records a price change made through catalog management
type PriceHistory struct {
	ID         uint
	BookID     uint
	OldPrice   float64
	NewPrice   float64
	ChangedBy  uint
	ChangeDate time.Time
}
