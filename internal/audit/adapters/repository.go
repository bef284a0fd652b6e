package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"

	"bookstore/internal/audit/domain"
	apperrors "bookstore/pkg/errors"
)

// AuditEntryModel is the GORM model for audit entries
type AuditEntryModel struct {
	ID          uint      `gorm:"primaryKey"`
	PerformedBy uint      `gorm:"index"`
	Action      string    `gorm:"size:100;not null;index"`
	EntityType  string    `gorm:"size:50;index:idx_audit_entity"`
	EntityID    uint      `gorm:"index:idx_audit_entity"`
	Details     string    `gorm:"type:text"`
	Success     bool      `gorm:"not null;default:true"`
	Timestamp   time.Time `gorm:"autoCreateTime;index"`
}

// TableName returns the table name for GORM
func (AuditEntryModel) TableName() string {
	return "audit_log"
}

// PostgresAuditRepository implements AuditRepository using PostgreSQL
type PostgresAuditRepository struct {
	db *gorm.DB
}

// NewPostgresAuditRepository creates a new PostgreSQL audit repository
func NewPostgresAuditRepository(db *gorm.DB) *PostgresAuditRepository {
	return &PostgresAuditRepository{db: db}
}

// Migrate runs auto-migration for the audit model
func (r *PostgresAuditRepository) Migrate() error {
	return r.db.AutoMigrate(&AuditEntryModel{})
}

// Append persists the entry
func (r *PostgresAuditRepository) Append(ctx context.Context, entry *domain.Entry) error {
	model := &AuditEntryModel{
		PerformedBy: entry.PerformedBy,
		Action:      entry.Action,
		EntityType:  entry.EntityType,
		EntityID:    entry.EntityID,
		Details:     entry.Details,
		Success:     entry.Success,
	}

	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		return apperrors.NewInternal("failed to append audit entry", result.Error)
	}

	entry.ID = model.ID
	entry.Timestamp = model.Timestamp
	return nil
}

// ListRecent retrieves the latest entries, newest first
func (r *PostgresAuditRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Entry, error) {
	var models []AuditEntryModel

	result := r.db.WithContext(ctx).
		Order("timestamp DESC").
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to list audit entries", result.Error)
	}

	return toDomainSlice(models), nil
}

// ListAll retrieves a page of entries, newest first
func (r *PostgresAuditRepository) ListAll(ctx context.Context, page, size int) ([]*domain.Entry, error) {
	var models []AuditEntryModel

	result := r.db.WithContext(ctx).
		Order("timestamp DESC").
		Offset(page * size).
		Limit(size).
		Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to list audit entries", result.Error)
	}

	return toDomainSlice(models), nil
}

// ListByEntity retrieves the entries for one entity, newest first
func (r *PostgresAuditRepository) ListByEntity(ctx context.Context, entityType string, entityID uint) ([]*domain.Entry, error) {
	var models []AuditEntryModel

	result := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("timestamp DESC").
		Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to list audit entries", result.Error)
	}

	return toDomainSlice(models), nil
}

// ListByAction retrieves the entries for one action, newest first
func (r *PostgresAuditRepository) ListByAction(ctx context.Context, action string) ([]*domain.Entry, error) {
	var models []AuditEntryModel

	result := r.db.WithContext(ctx).
		Where("action = ?", action).
		Order("timestamp DESC").
		Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to list audit entries", result.Error)
	}

	return toDomainSlice(models), nil
}

// toDomain converts a GORM model to a domain entity
func toDomain(model *AuditEntryModel) *domain.Entry {
	return &domain.Entry{
		ID:          model.ID,
		PerformedBy: model.PerformedBy,
		Action:      model.Action,
		EntityType:  model.EntityType,
		EntityID:    model.EntityID,
		Details:     model.Details,
		Success:     model.Success,
		Timestamp:   model.Timestamp,
	}
}

func toDomainSlice(models []AuditEntryModel) []*domain.Entry {
	entries := make([]*domain.Entry, len(models))
	for i := range models {
		entries[i] = toDomain(&models[i])
	}
	return entries
}
