package application

import (
	"context"

	"go.uber.org/zap"

	"bookstore/internal/audit/domain"
	"bookstore/internal/audit/ports"
	"bookstore/pkg/identity"
	"bookstore/pkg/logger"
)

// AuditUseCase appends to and reads the audit trail. Recording is
// best-effort from the caller's point of view: a persistence failure is
// logged here and never fails the audited operation.
type AuditUseCase struct {
	repo ports.AuditRepository
	log  *logger.Logger
}

// NewAuditUseCase creates a new audit use case
func NewAuditUseCase(repo ports.AuditRepository, log *logger.Logger) *AuditUseCase {
	return &AuditUseCase{repo: repo, log: log}
}

// Record appends a successful action to the trail. The actor is taken
// from the request context; zero means no authenticated actor.
func (uc *AuditUseCase) Record(ctx context.Context, action, entityType string, entityID uint, details string) {
	uc.append(ctx, action, entityType, entityID, details, true)
}

// RecordFailed appends a rejected action to the trail
func (uc *AuditUseCase) RecordFailed(ctx context.Context, action, entityType string, entityID uint, details string) {
	uc.append(ctx, action, entityType, entityID, details, false)
}

func (uc *AuditUseCase) append(ctx context.Context, action, entityType string, entityID uint, details string, success bool) {
	entry := &domain.Entry{
		PerformedBy: identity.UserID(ctx),
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Details:     details,
		Success:     success,
	}

	if err := uc.repo.Append(ctx, entry); err != nil {
		uc.log.WithContext(ctx).Error("failed to append audit entry",
			zap.Error(err),
			zap.String("action", action),
			zap.String("entity_type", entityType),
			zap.Uint("entity_id", entityID),
		)
		return
	}

	uc.log.WithContext(ctx).Info("audit",
		zap.String("action", action),
		zap.String("entity_type", entityType),
		zap.Uint("entity_id", entityID),
		zap.Uint("performed_by", entry.PerformedBy),
		zap.Bool("success", success),
		zap.String("details", details),
	)
}

// RecentEntries retrieves the latest entries, newest first
func (uc *AuditUseCase) RecentEntries(ctx context.Context, limit int) ([]*domain.Entry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return uc.repo.ListRecent(ctx, limit)
}

// ListEntries retrieves a page of entries, newest first
func (uc *AuditUseCase) ListEntries(ctx context.Context, page, size int) ([]*domain.Entry, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return uc.repo.ListAll(ctx, page, size)
}

// EntriesByEntity retrieves the trail of one entity, newest first
func (uc *AuditUseCase) EntriesByEntity(ctx context.Context, entityType string, entityID uint) ([]*domain.Entry, error) {
	return uc.repo.ListByEntity(ctx, entityType, entityID)
}

// EntriesByAction retrieves the entries for one action, newest first
func (uc *AuditUseCase) EntriesByAction(ctx context.Context, action string) ([]*domain.Entry, error) {
	return uc.repo.ListByAction(ctx, action)
}
