package ports

import (
	"context"

	"bookstore/internal/audit/domain"
)

// AuditRepository defines the interface for audit trail persistence.
// The trail is append-only; entries are never updated or deleted.
type AuditRepository interface {
	// Append persists the entry
	Append(ctx context.Context, entry *domain.Entry) error

	// ListRecent retrieves the latest entries, newest first
	ListRecent(ctx context.Context, limit int) ([]*domain.Entry, error)

	// ListAll retrieves a page of entries, newest first
	ListAll(ctx context.Context, page, size int) ([]*domain.Entry, error)

	// ListByEntity retrieves the entries for one entity, newest first
	ListByEntity(ctx context.Context, entityType string, entityID uint) ([]*domain.Entry, error)

	// ListByAction retrieves the entries for one action, newest first
	ListByAction(ctx context.Context, action string) ([]*domain.Entry, error)
}
