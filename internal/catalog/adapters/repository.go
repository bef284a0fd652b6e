package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bookstore/internal/catalog/domain"
	apperrors "bookstore/pkg/errors"
)

// BookModel is the GORM model for books (persistence layer)
type BookModel struct {
	ID                  uint    `gorm:"primaryKey"`
	Title               string  `gorm:"size:255;not null;index"`
	Author              string  `gorm:"size:255;index"`
	Price               float64 `gorm:"not null"`
	ImageURL            string  `gorm:"size:512"`
	Description         string  `gorm:"type:text"`
	Publisher           string  `gorm:"size:255"`
	PublicationYear     int
	Stock               int       `gorm:"not null;default:0"`
	Discount            float64   `gorm:"not null;default:0"`
	Featured            bool      `gorm:"not null;default:false"`
	Enabled             bool      `gorm:"not null;default:true"`
	StockAlertThreshold int       `gorm:"not null;default:10"`
	CreatedAt           time.Time `gorm:"autoCreateTime"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for GORM
func (BookModel) TableName() string {
	return "books"
}

// PriceHistoryModel is the GORM model for price changes
type PriceHistoryModel struct {
	ID         uint    `gorm:"primaryKey"`
	BookID     uint    `gorm:"index;not null"`
	OldPrice   float64 `gorm:"not null"`
	NewPrice   float64 `gorm:"not null"`
	ChangedBy  uint
	ChangeDate time.Time `gorm:"autoCreateTime;index"`
}

// TableName returns the table name for GORM
func (PriceHistoryModel) TableName() string {
	return "price_history"
}

// PostgresBookRepository implements BookRepository using PostgreSQL
type PostgresBookRepository struct {
	db *gorm.DB
}

// NewPostgresBookRepository creates a new PostgreSQL book repository
func NewPostgresBookRepository(db *gorm.DB) *PostgresBookRepository {
	return &PostgresBookRepository{db: db}
}

// Migrate runs auto-migration for the catalog models
func (r *PostgresBookRepository) Migrate() error {
	return r.db.AutoMigrate(&BookModel{}, &PriceHistoryModel{})
}

// Create creates a new book
func (r *PostgresBookRepository) Create(ctx context.Context, book *domain.Book) error {
	model := toModel(book)

	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		return result.Error
	}

	book.ID = model.ID
	book.CreatedAt = model.CreatedAt
	book.UpdatedAt = model.UpdatedAt

	return nil
}

// GetByID retrieves a book by ID
func (r *PostgresBookRepository) GetByID(ctx context.Context, id uint) (*domain.Book, error) {
	var model BookModel

	result := r.db.WithContext(ctx).First(&model, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.NewBookNotFound(id)
		}
		return nil, apperrors.NewInternal("failed to get book", result.Error)
	}

	return toDomain(&model), nil
}

// Update updates an existing book
func (r *PostgresBookRepository) Update(ctx context.Context, book *domain.Book) error {
	model := toModel(book)

	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return apperrors.NewInternal("failed to update book", result.Error)
	}

	book.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete deletes a book by ID
func (r *PostgresBookRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&BookModel{}, id)
	if result.Error != nil {
		return apperrors.NewInternal("failed to delete book", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewBookNotFound(id)
	}
	return nil
}

// List retrieves a page of books ordered by title
func (r *PostgresBookRepository) List(ctx context.Context, page, size int) ([]*domain.Book, error) {
	var models []BookModel

	result := r.db.WithContext(ctx).
		Order("title").
		Offset(page * size).
		Limit(size).
		Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to list books", result.Error)
	}

	return toDomainSlice(models), nil
}

// Search retrieves books whose title or author matches the keyword
func (r *PostgresBookRepository) Search(ctx context.Context, keyword string) ([]*domain.Book, error) {
	var models []BookModel

	pattern := "%" + keyword + "%"
	result := r.db.WithContext(ctx).
		Where("title ILIKE ? OR author ILIKE ?", pattern, pattern).
		Order("title").
		Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to search books", result.Error)
	}

	return toDomainSlice(models), nil
}

// ListFeatured retrieves books flagged as featured
func (r *PostgresBookRepository) ListFeatured(ctx context.Context) ([]*domain.Book, error) {
	var models []BookModel

	result := r.db.WithContext(ctx).
		Where("featured = ? AND enabled = ?", true, true).
		Order("title").
		Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to list featured books", result.Error)
	}

	return toDomainSlice(models), nil
}

// ListLowStock retrieves enabled books with stock at or below threshold
func (r *PostgresBookRepository) ListLowStock(ctx context.Context, threshold int) ([]*domain.Book, error) {
	var models []BookModel

	result := r.db.WithContext(ctx).
		Where("stock <= ?", threshold).
		Order("stock").
		Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to list low stock books", result.Error)
	}

	return toDomainSlice(models), nil
}

// MutateStock applies fn to the book under a row lock. The SELECT ... FOR
// UPDATE serializes concurrent mutations of the same book, so the
// check-and-decrement in fn is atomic.
func (r *PostgresBookRepository) MutateStock(ctx context.Context, id uint, fn func(*domain.Book) error) (*domain.Book, error) {
	var book *domain.Book

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model BookModel

		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return domain.NewBookNotFound(id)
			}
			return apperrors.NewInternal("failed to lock book row", result.Error)
		}

		book = toDomain(&model)
		if err := fn(book); err != nil {
			return err
		}

		result = tx.Model(&BookModel{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"stock":      book.Stock,
				"enabled":    book.Enabled,
				"updated_at": book.UpdatedAt,
			})
		if result.Error != nil {
			return apperrors.NewInternal("failed to update stock", result.Error)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return book, nil
}

// HasOrderReferences reports whether any order item references the book
func (r *PostgresBookRepository) HasOrderReferences(ctx context.Context, id uint) (bool, error) {
	var count int64

	result := r.db.WithContext(ctx).
		Table("order_items").
		Where("book_id = ?", id).
		Count(&count)
	if result.Error != nil {
		return false, apperrors.NewInternal("failed to count order references", result.Error)
	}

	return count > 0, nil
}

// RecordPriceChange appends a price history entry
func (r *PostgresBookRepository) RecordPriceChange(ctx context.Context, entry *domain.PriceHistory) error {
	model := &PriceHistoryModel{
		BookID:    entry.BookID,
		OldPrice:  entry.OldPrice,
		NewPrice:  entry.NewPrice,
		ChangedBy: entry.ChangedBy,
	}

	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		return apperrors.NewInternal("failed to record price change", result.Error)
	}

	entry.ID = model.ID
	entry.ChangeDate = model.ChangeDate
	return nil
}

// PriceHistory retrieves a book's price changes, newest first
func (r *PostgresBookRepository) PriceHistory(ctx context.Context, bookID uint) ([]*domain.PriceHistory, error) {
	var models []PriceHistoryModel

	result := r.db.WithContext(ctx).
		Where("book_id = ?", bookID).
		Order("change_date DESC").
		Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to get price history", result.Error)
	}

	entries := make([]*domain.PriceHistory, len(models))
	for i, model := range models {
		entries[i] = &domain.PriceHistory{
			ID:         model.ID,
			BookID:     model.BookID,
			OldPrice:   model.OldPrice,
			NewPrice:   model.NewPrice,
			ChangedBy:  model.ChangedBy,
			ChangeDate: model.ChangeDate,
		}
	}
	return entries, nil
}

// toModel converts a domain entity to a GORM model
func toModel(book *domain.Book) *BookModel {
	return &BookModel{
		ID:                  book.ID,
		Title:               book.Title,
		Author:              book.Author,
		Price:               book.Price,
		ImageURL:            book.ImageURL,
		Description:         book.Description,
		Publisher:           book.Publisher,
		PublicationYear:     book.PublicationYear,
		Stock:               book.Stock,
		Discount:            book.Discount,
		Featured:            book.Featured,
		Enabled:             book.Enabled,
		StockAlertThreshold: book.StockAlertThreshold,
		CreatedAt:           book.CreatedAt,
		UpdatedAt:           book.UpdatedAt,
	}
}

// toDomain converts a GORM model to a domain entity
func toDomain(model *BookModel) *domain.Book {
	return &domain.Book{
		ID:                  model.ID,
		Title:               model.Title,
		Author:              model.Author,
		Price:               model.Price,
		ImageURL:            model.ImageURL,
		Description:         model.Description,
		Publisher:           model.Publisher,
		PublicationYear:     model.PublicationYear,
		Stock:               model.Stock,
		Discount:            model.Discount,
		Featured:            model.Featured,
		Enabled:             model.Enabled,
		StockAlertThreshold: model.StockAlertThreshold,
		CreatedAt:           model.CreatedAt,
		UpdatedAt:           model.UpdatedAt,
	}
}

func toDomainSlice(models []BookModel) []*domain.Book {
	books := make([]*domain.Book, len(models))
	for i := range models {
		books[i] = toDomain(&models[i])
	}
	return books
}
