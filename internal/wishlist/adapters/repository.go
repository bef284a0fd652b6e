package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bookstore/internal/wishlist/domain"
	apperrors "bookstore/pkg/errors"
)

// WishlistEntryModel is the GORM model for wishlist entries
type WishlistEntryModel struct {
	ID      uint      `gorm:"primaryKey"`
	UserID  uint      `gorm:"not null;uniqueIndex:idx_wishlist_user_book"`
	BookID  uint      `gorm:"not null;uniqueIndex:idx_wishlist_user_book"`
	AddedAt time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (WishlistEntryModel) TableName() string {
	return "wishlist_entries"
}

// PostgresWishlistRepository implements WishlistRepository using PostgreSQL
type PostgresWishlistRepository struct {
	db *gorm.DB
}

// NewPostgresWishlistRepository creates a new PostgreSQL wishlist repository
func NewPostgresWishlistRepository(db *gorm.DB) *PostgresWishlistRepository {
	return &PostgresWishlistRepository{db: db}
}

// Migrate runs auto-migration for the wishlist model
func (r *PostgresWishlistRepository) Migrate() error {
	return r.db.AutoMigrate(&WishlistEntryModel{})
}

// Add inserts the entry; duplicates on (user, book) are ignored
func (r *PostgresWishlistRepository) Add(ctx context.Context, entry *domain.WishlistEntry) error {
	model := WishlistEntryModel{
		UserID:  entry.UserID,
		BookID:  entry.BookID,
		AddedAt: entry.AddedAt,
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "book_id"}},
			DoNothing: true,
		}).
		Create(&model)
	if result.Error != nil {
		return apperrors.NewInternal("failed to add wishlist entry", result.Error)
	}

	entry.ID = model.ID
	return nil
}

// Remove deletes the entry for (user, book)
func (r *PostgresWishlistRepository) Remove(ctx context.Context, userID, bookID uint) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Delete(&WishlistEntryModel{})
	if result.Error != nil {
		return apperrors.NewInternal("failed to remove wishlist entry", result.Error)
	}
	return nil
}

// ListByUser retrieves a user's entries, newest first
func (r *PostgresWishlistRepository) ListByUser(ctx context.Context, userID uint) ([]*domain.WishlistEntry, error) {
	var models []WishlistEntryModel

	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("added_at DESC").
		Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to list wishlist entries", result.Error)
	}

	entries := make([]*domain.WishlistEntry, len(models))
	for i, model := range models {
		entries[i] = &domain.WishlistEntry{
			ID:      model.ID,
			UserID:  model.UserID,
			BookID:  model.BookID,
			AddedAt: model.AddedAt,
		}
	}
	return entries, nil
}

// Contains reports whether the user has wishlisted the book
func (r *PostgresWishlistRepository) Contains(ctx context.Context, userID, bookID uint) (bool, error) {
	var count int64

	result := r.db.WithContext(ctx).
		Model(&WishlistEntryModel{}).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Count(&count)
	if result.Error != nil {
		return false, apperrors.NewInternal("failed to check wishlist entry", result.Error)
	}
	return count > 0, nil
}

// Count returns the number of entries in the user's wishlist
func (r *PostgresWishlistRepository) Count(ctx context.Context, userID uint) (int64, error) {
	var count int64

	result := r.db.WithContext(ctx).
		Model(&WishlistEntryModel{}).
		Where("user_id = ?", userID).
		Count(&count)
	if result.Error != nil {
		return 0, apperrors.NewInternal("failed to count wishlist entries", result.Error)
	}
	return count, nil
}
