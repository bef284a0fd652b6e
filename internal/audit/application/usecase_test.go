package application

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstore/internal/audit/domain"
	"bookstore/pkg/errors"
	"bookstore/pkg/identity"
	"bookstore/pkg/logger"
)

// MockAuditRepository is an in-memory implementation of AuditRepository
type MockAuditRepository struct {
	mu      sync.Mutex
	entries []*domain.Entry

	failAppends int // fail the next n Append calls
}

func (m *MockAuditRepository) Append(ctx context.Context, entry *domain.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAppends > 0 {
		m.failAppends--
		return errors.NewInternal("database unavailable", nil)
	}
	entry.ID = uint(len(m.entries) + 1)
	copied := *entry
	m.entries = append(m.entries, &copied)
	return nil
}

func (m *MockAuditRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Entry
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		copied := *m.entries[i]
		out = append(out, &copied)
	}
	return out, nil
}

func (m *MockAuditRepository) ListAll(ctx context.Context, page, size int) ([]*domain.Entry, error) {
	return m.ListRecent(ctx, size)
}

func (m *MockAuditRepository) ListByEntity(ctx context.Context, entityType string, entityID uint) ([]*domain.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Entry
	for i := len(m.entries) - 1; i >= 0; i-- {
		e := m.entries[i]
		if e.EntityType == entityType && e.EntityID == entityID {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *MockAuditRepository) ListByAction(ctx context.Context, action string) ([]*domain.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Entry
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].Action == action {
			copied := *m.entries[i]
			out = append(out, &copied)
		}
	}
	return out, nil
}

func newTestAudit(t *testing.T) (*AuditUseCase, *MockAuditRepository) {
	t.Helper()
	repo := &MockAuditRepository{}
	log := logger.New("test", "error")
	return NewAuditUseCase(repo, log), repo
}

func TestRecord_TakesActorFromContext(t *testing.T) {
	uc, repo := newTestAudit(t)
	ctx := identity.WithUserID(context.Background(), 42)

	uc.Record(ctx, domain.ActionBookCreated, domain.EntityBook, 3, "Clean Code")

	require.Len(t, repo.entries, 1)
	entry := repo.entries[0]
	assert.Equal(t, uint(42), entry.PerformedBy)
	assert.Equal(t, domain.ActionBookCreated, entry.Action)
	assert.Equal(t, domain.EntityBook, entry.EntityType)
	assert.Equal(t, uint(3), entry.EntityID)
	assert.True(t, entry.Success)
}

func TestRecord_NoActorIsZero(t *testing.T) {
	uc, repo := newTestAudit(t)

	uc.Record(context.Background(), domain.ActionStockUpdated, domain.EntityBook, 1, "stock set to 9")

	require.Len(t, repo.entries, 1)
	assert.Zero(t, repo.entries[0].PerformedBy)
}

func TestRecordFailed_MarksEntryUnsuccessful(t *testing.T) {
	uc, repo := newTestAudit(t)

	uc.RecordFailed(context.Background(), domain.ActionBookDeleteBlocked, domain.EntityBook, 5, "book has order references")

	require.Len(t, repo.entries, 1)
	assert.False(t, repo.entries[0].Success)
}

func TestRecord_AppendFailureIsSwallowed(t *testing.T) {
	uc, repo := newTestAudit(t)
	repo.failAppends = 1

	// a persistence failure must not reach the audited operation
	uc.Record(context.Background(), domain.ActionBookCreated, domain.EntityBook, 1, "")

	assert.Empty(t, repo.entries)

	uc.Record(context.Background(), domain.ActionBookCreated, domain.EntityBook, 2, "")
	assert.Len(t, repo.entries, 1)
}

func TestRecentEntries_ClampsLimit(t *testing.T) {
	uc, repo := newTestAudit(t)
	for i := 0; i < 60; i++ {
		uc.Record(context.Background(), domain.ActionBookUpdated, domain.EntityBook, uint(i+1), "")
	}
	require.Len(t, repo.entries, 60)

	entries, err := uc.RecentEntries(context.Background(), -1)
	require.NoError(t, err)
	assert.Len(t, entries, 50)

	entries, err = uc.RecentEntries(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, entries, 10)
}

func TestListEntries_ClampsPageAndSize(t *testing.T) {
	uc, _ := newTestAudit(t)
	for i := 0; i < 30; i++ {
		uc.Record(context.Background(), domain.ActionBookUpdated, domain.EntityBook, uint(i+1), "")
	}

	entries, err := uc.ListEntries(context.Background(), -3, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 20)
}

func TestEntriesByEntity_FiltersTrail(t *testing.T) {
	uc, _ := newTestAudit(t)
	uc.Record(context.Background(), domain.ActionBookCreated, domain.EntityBook, 1, "")
	uc.Record(context.Background(), domain.ActionBookUpdated, domain.EntityBook, 1, "")
	uc.Record(context.Background(), domain.ActionOrderCancelled, domain.EntityOrder, 1, "")

	entries, err := uc.EntriesByEntity(context.Background(), domain.EntityBook, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, err = uc.EntriesByAction(context.Background(), domain.ActionOrderCancelled)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.EntityOrder, entries[0].EntityType)
}
