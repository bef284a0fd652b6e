package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bookstore/internal/cart/domain"
	apperrors "bookstore/pkg/errors"
)

// CartLineModel is the GORM model for cart lines (persistence layer)
type CartLineModel struct {
	ID       uint      `gorm:"primaryKey"`
	UserID   uint      `gorm:"uniqueIndex:idx_cart_user_book;not null"`
	BookID   uint      `gorm:"uniqueIndex:idx_cart_user_book;not null"`
	Quantity int       `gorm:"not null"`
	AddedAt  time.Time `gorm:"autoCreateTime"`
}

// TableName returns the table name for GORM
func (CartLineModel) TableName() string {
	return "cart_items"
}

// PostgresCartRepository implements CartRepository using PostgreSQL
type PostgresCartRepository struct {
	db *gorm.DB
}

// NewPostgresCartRepository creates a new PostgreSQL cart repository
func NewPostgresCartRepository(db *gorm.DB) *PostgresCartRepository {
	return &PostgresCartRepository{db: db}
}

// Migrate runs auto-migration for the cart model
func (r *PostgresCartRepository) Migrate() error {
	return r.db.AutoMigrate(&CartLineModel{})
}

// Upsert inserts the line or replaces the quantity of an existing one.
// The unique (user_id, book_id) index keeps accumulation from ever
// producing duplicate rows.
func (r *PostgresCartRepository) Upsert(ctx context.Context, line *domain.CartLine) error {
	model := &CartLineModel{
		ID:       line.ID,
		UserID:   line.UserID,
		BookID:   line.BookID,
		Quantity: line.Quantity,
		AddedAt:  line.AddedAt,
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "book_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity"}),
	}).Create(model)
	if result.Error != nil {
		return apperrors.NewInternal("failed to upsert cart line", result.Error)
	}

	line.ID = model.ID
	line.AddedAt = model.AddedAt
	return nil
}

// Get retrieves the line for (user, book), nil when absent
func (r *PostgresCartRepository) Get(ctx context.Context, userID, bookID uint) (*domain.CartLine, error) {
	var model CartLineModel

	result := r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.NewInternal("failed to get cart line", result.Error)
	}

	return toDomain(&model), nil
}

// ListByUser retrieves a user's lines, newest first
func (r *PostgresCartRepository) ListByUser(ctx context.Context, userID uint) ([]*domain.CartLine, error) {
	var models []CartLineModel

	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("added_at DESC").
		Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to list cart lines", result.Error)
	}

	lines := make([]*domain.CartLine, len(models))
	for i := range models {
		lines[i] = toDomain(&models[i])
	}
	return lines, nil
}

// Delete removes the line for (user, book)
func (r *PostgresCartRepository) Delete(ctx context.Context, userID, bookID uint) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Delete(&CartLineModel{})
	if result.Error != nil {
		return apperrors.NewInternal("failed to delete cart line", result.Error)
	}
	return nil
}

// DeleteAllByUser removes every line of the user
func (r *PostgresCartRepository) DeleteAllByUser(ctx context.Context, userID uint) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&CartLineModel{})
	if result.Error != nil {
		return apperrors.NewInternal("failed to clear cart", result.Error)
	}
	return nil
}

// Count returns the number of lines in the user's cart
func (r *PostgresCartRepository) Count(ctx context.Context, userID uint) (int64, error) {
	var count int64

	result := r.db.WithContext(ctx).
		Model(&CartLineModel{}).
		Where("user_id = ?", userID).
		Count(&count)
	if result.Error != nil {
		return 0, apperrors.NewInternal("failed to count cart lines", result.Error)
	}
	return count, nil
}

// toDomain converts a GORM model to a domain entity
func toDomain(model *CartLineModel) *domain.CartLine {
	return &domain.CartLine{
		ID:       model.ID,
		UserID:   model.UserID,
		BookID:   model.BookID,
		Quantity: model.Quantity,
		AddedAt:  model.AddedAt,
	}
}
