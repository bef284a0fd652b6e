package application

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	auditdomain "bookstore/internal/audit/domain"
	"bookstore/internal/catalog/domain"
	"bookstore/internal/catalog/ports"
	"bookstore/pkg/errors"
	"bookstore/pkg/logger"
)

// BookUseCase handles catalog management and owns every stock mutation.
// All stock changes funnel through the repository's MutateStock so the
// check-and-decrement is atomic per book.
type BookUseCase struct {
	repo   ports.BookRepository
	alerts ports.AlertPublisher
	audit  ports.AuditRecorder
	log    *logger.Logger
}

// NewBookUseCase creates a new book use case
func NewBookUseCase(repo ports.BookRepository, alerts ports.AlertPublisher, audit ports.AuditRecorder, log *logger.Logger) *BookUseCase {
	return &BookUseCase{
		repo:   repo,
		alerts: alerts,
		audit:  audit,
		log:    log,
	}
}

// CreateBookInput represents the input for creating a book
type CreateBookInput struct {
	Title           string
	Author          string
	Price           float64
	ImageURL        string
	Description     string
	Publisher       string
	PublicationYear int
	Stock           int
	Discount        float64
	Featured        bool
}

// CreateBook creates a new catalog entry
func (uc *BookUseCase) CreateBook(ctx context.Context, input CreateBookInput) (*domain.Book, error) {
	book, err := domain.NewBook(input.Title, input.Author, input.Price, input.Stock, input.Discount)
	if err != nil {
		return nil, err
	}
	book.ImageURL = input.ImageURL
	book.Description = input.Description
	book.Publisher = input.Publisher
	book.PublicationYear = input.PublicationYear
	book.Featured = input.Featured

	if err := uc.repo.Create(ctx, book); err != nil {
		return nil, errors.NewInternal("failed to create book", err)
	}

	uc.log.WithContext(ctx).Info("book created",
		zap.Uint("book_id", book.ID),
		zap.String("title", book.Title),
		zap.Int("stock", book.Stock),
	)

	if uc.audit != nil {
		uc.audit.Record(ctx, auditdomain.ActionBookCreated, auditdomain.EntityBook, book.ID, book.Title)
	}

	return book, nil
}

// GetBook retrieves a book by ID
func (uc *BookUseCase) GetBook(ctx context.Context, id uint) (*domain.Book, error) {
	return uc.repo.GetByID(ctx, id)
}

// UpdateBookInput represents the input for updating a book
type UpdateBookInput struct {
	ID              uint
	Title           string
	Author          string
	Price           float64
	ImageURL        string
	Description     string
	Publisher       string
	PublicationYear int
	Stock           int
	Discount        float64
	Featured        bool
	ChangedBy       uint
}

// UpdateBook updates a catalog entry. A price change is recorded in the
// price history before the update is persisted.
func (uc *BookUseCase) UpdateBook(ctx context.Context, input UpdateBookInput) (*domain.Book, error) {
	book, err := uc.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	priceChanged := input.Price != book.Price
	oldPrice := book.Price
	if priceChanged {
		entry := &domain.PriceHistory{
			BookID:    book.ID,
			OldPrice:  book.Price,
			NewPrice:  input.Price,
			ChangedBy: input.ChangedBy,
		}
		if err := uc.repo.RecordPriceChange(ctx, entry); err != nil {
			return nil, errors.NewInternal("failed to record price change", err)
		}
	}

	book.Title = input.Title
	book.Author = input.Author
	book.Price = input.Price
	book.ImageURL = input.ImageURL
	book.Description = input.Description
	book.Publisher = input.Publisher
	book.PublicationYear = input.PublicationYear
	book.Discount = input.Discount
	book.Featured = input.Featured
	if err := book.SetStock(input.Stock); err != nil {
		return nil, err
	}

	if err := book.Validate(); err != nil {
		return nil, err
	}

	if err := uc.repo.Update(ctx, book); err != nil {
		return nil, errors.NewInternal("failed to update book", err)
	}

	if uc.audit != nil {
		uc.audit.Record(ctx, auditdomain.ActionBookUpdated, auditdomain.EntityBook, book.ID, book.Title)
		if priceChanged {
			uc.audit.Record(ctx, auditdomain.ActionPriceChanged, auditdomain.EntityBook, book.ID,
				fmt.Sprintf("%.2f -> %.2f", oldPrice, input.Price))
		}
	}

	return book, nil
}

// DeleteBook deletes a book that no order references. Books with order
// history must be disabled instead so the order items keep a valid target.
func (uc *BookUseCase) DeleteBook(ctx context.Context, id uint) error {
	referenced, err := uc.repo.HasOrderReferences(ctx, id)
	if err != nil {
		return errors.NewInternal("failed to check order references", err)
	}
	if referenced {
		if uc.audit != nil {
			uc.audit.RecordFailed(ctx, auditdomain.ActionBookDeleteBlocked, auditdomain.EntityBook, id, "book has order references")
		}
		return domain.NewBookHasOrders(id)
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}

	if uc.audit != nil {
		uc.audit.Record(ctx, auditdomain.ActionBookDeleted, auditdomain.EntityBook, id, "")
	}

	return nil
}

// SetEnabled sets the enabled flag directly. The flag is still owned by
// the stock rules: the next stock mutation may flip it back.
func (uc *BookUseCase) SetEnabled(ctx context.Context, id uint, enabled bool) (*domain.Book, error) {
	book, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	book.Enabled = enabled
	if err := uc.repo.Update(ctx, book); err != nil {
		return nil, errors.NewInternal("failed to update book", err)
	}

	uc.log.WithContext(ctx).Info("book enabled flag changed",
		zap.Uint("book_id", id),
		zap.Bool("enabled", enabled),
	)

	if uc.audit != nil {
		action := auditdomain.ActionBookEnabled
		if !enabled {
			action = auditdomain.ActionBookDisabled
		}
		uc.audit.Record(ctx, action, auditdomain.EntityBook, id, "")
	}

	return book, nil
}

// SetFeatured sets the featured flag
func (uc *BookUseCase) SetFeatured(ctx context.Context, id uint, featured bool) (*domain.Book, error) {
	book, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	book.Featured = featured
	if err := uc.repo.Update(ctx, book); err != nil {
		return nil, errors.NewInternal("failed to update book", err)
	}

	return book, nil
}

// ListBooks retrieves a page of books
func (uc *BookUseCase) ListBooks(ctx context.Context, page, size int) ([]*domain.Book, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return uc.repo.List(ctx, page, size)
}

// SearchBooks retrieves books matching the keyword
func (uc *BookUseCase) SearchBooks(ctx context.Context, keyword string) ([]*domain.Book, error) {
	return uc.repo.Search(ctx, keyword)
}

// FeaturedBooks retrieves books flagged as featured
func (uc *BookUseCase) FeaturedBooks(ctx context.Context) ([]*domain.Book, error) {
	return uc.repo.ListFeatured(ctx)
}

// PriceHistory retrieves a book's recorded price changes
func (uc *BookUseCase) PriceHistory(ctx context.Context, bookID uint) ([]*domain.PriceHistory, error) {
	if _, err := uc.repo.GetByID(ctx, bookID); err != nil {
		return nil, err
	}
	return uc.repo.PriceHistory(ctx, bookID)
}

// LowStockBooks retrieves enabled books at or below the threshold
func (uc *BookUseCase) LowStockBooks(ctx context.Context, threshold int) ([]*domain.Book, error) {
	return uc.repo.ListLowStock(ctx, threshold)
}

// ReduceStock atomically reserves quantity units of the book
func (uc *BookUseCase) ReduceStock(ctx context.Context, bookID uint, quantity int) error {
	book, err := uc.repo.MutateStock(ctx, bookID, func(b *domain.Book) error {
		return b.ReduceStock(quantity)
	})
	if err != nil {
		return err
	}

	uc.log.WithContext(ctx).Info("stock reduced",
		zap.Uint("book_id", bookID),
		zap.Int("quantity", quantity),
		zap.Int("remaining", book.Stock),
	)

	uc.alertIfLow(ctx, book)
	return nil
}

// RestoreStock atomically returns quantity units of the book
func (uc *BookUseCase) RestoreStock(ctx context.Context, bookID uint, quantity int) error {
	book, err := uc.repo.MutateStock(ctx, bookID, func(b *domain.Book) error {
		return b.RestoreStock(quantity)
	})
	if err != nil {
		return err
	}

	uc.log.WithContext(ctx).Info("stock restored",
		zap.Uint("book_id", bookID),
		zap.Int("quantity", quantity),
		zap.Int("remaining", book.Stock),
	)

	return nil
}

// SetStock atomically overrides the stock level
func (uc *BookUseCase) SetStock(ctx context.Context, bookID uint, stock int) error {
	book, err := uc.repo.MutateStock(ctx, bookID, func(b *domain.Book) error {
		return b.SetStock(stock)
	})
	if err != nil {
		return err
	}

	uc.log.WithContext(ctx).Info("stock set",
		zap.Uint("book_id", bookID),
		zap.Int("stock", stock),
	)

	if uc.audit != nil {
		uc.audit.Record(ctx, auditdomain.ActionStockUpdated, auditdomain.EntityBook, bookID,
			fmt.Sprintf("stock set to %d", stock))
	}

	uc.alertIfLow(ctx, book)
	return nil
}

// alertIfLow publishes a low-stock alert (fire-and-forget)
func (uc *BookUseCase) alertIfLow(ctx context.Context, book *domain.Book) {
	if uc.alerts == nil || !book.LowOnStock() {
		return
	}
	if err := uc.alerts.PublishStockLow(ctx, book); err != nil {
		uc.log.WithContext(ctx).Error("failed to publish low stock alert",
			zap.Error(err),
			zap.Uint("book_id", book.ID),
		)
	}
}
