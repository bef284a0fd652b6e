package domain

import (
	"time"

	"bookstore/pkg/errors"
)

// WishlistEntry marks a book a user wants to be reminded of. Entries are
// unique per (user, book); adding an existing pair is a no-op.
type WishlistEntry struct {
	ID      uint
	UserID  uint
	BookID  uint
	AddedAt time.Time
}

// NewWishlistEntry creates a validated wishlist entry
func NewWishlistEntry(userID, bookID uint) (*WishlistEntry, error) {
	if userID == 0 {
		return nil, errors.NewValidation("user id is required", nil)
	}
	if bookID == 0 {
		return nil, errors.NewValidation("book id is required", nil)
	}
	return &WishlistEntry{
		UserID:  userID,
		BookID:  bookID,
		AddedAt: time.Now(),
	}, nil
}

// NewEntryNotFound returns a not found error for a wishlist entry
func NewEntryNotFound(bookID uint) *errors.AppError {
	return errors.NewNotFound("wishlist entry", bookID)
}
