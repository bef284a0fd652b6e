package application

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogdomain "bookstore/internal/catalog/domain"
	"bookstore/internal/wishlist/domain"
	"bookstore/pkg/errors"
	"bookstore/pkg/logger"
)

type pair struct {
	userID, bookID uint
}

// MockWishlistRepository is an in-memory WishlistRepository
type MockWishlistRepository struct {
	mu      sync.Mutex
	entries map[pair]*domain.WishlistEntry
	nextID  uint
}

func NewMockWishlistRepository() *MockWishlistRepository {
	return &MockWishlistRepository{entries: make(map[pair]*domain.WishlistEntry), nextID: 1}
}

func (m *MockWishlistRepository) Add(_ context.Context, entry *domain.WishlistEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pair{entry.UserID, entry.BookID}
	if _, ok := m.entries[key]; ok {
		return nil
	}
	entry.ID = m.nextID
	m.nextID++
	copied := *entry
	m.entries[key] = &copied
	return nil
}

func (m *MockWishlistRepository) Remove(_ context.Context, userID, bookID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, pair{userID, bookID})
	return nil
}

func (m *MockWishlistRepository) ListByUser(_ context.Context, userID uint) ([]*domain.WishlistEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.WishlistEntry
	for key, entry := range m.entries {
		if key.userID == userID {
			copied := *entry
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AddedAt.After(out[j].AddedAt) })
	return out, nil
}

func (m *MockWishlistRepository) Contains(_ context.Context, userID, bookID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[pair{userID, bookID}]
	return ok, nil
}

func (m *MockWishlistRepository) Count(_ context.Context, userID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for key := range m.entries {
		if key.userID == userID {
			count++
		}
	}
	return count, nil
}

// MockBookSource serves books from a fixed map
type MockBookSource struct {
	books map[uint]*catalogdomain.Book
}

func (m *MockBookSource) GetBook(_ context.Context, id uint) (*catalogdomain.Book, error) {
	book, ok := m.books[id]
	if !ok {
		return nil, errors.NewNotFound("book", id)
	}
	copied := *book
	return &copied, nil
}

func newWishlistUseCase(books map[uint]*catalogdomain.Book) (*WishlistUseCase, *MockWishlistRepository) {
	repo := NewMockWishlistRepository()
	log := logger.New("test", "error")
	return NewWishlistUseCase(repo, &MockBookSource{books: books}, log), repo
}

func testBooks() map[uint]*catalogdomain.Book {
	return map[uint]*catalogdomain.Book{
		1: {ID: 1, Title: "The Go Programming Language", Author: "Donovan", Price: 40, Stock: 5, Enabled: true},
		2: {ID: 2, Title: "Designing Data-Intensive Applications", Author: "Kleppmann", Price: 50, Stock: 0},
	}
}

func TestAdd_IsIdempotent(t *testing.T) {
	uc, repo := newWishlistUseCase(testBooks())
	ctx := context.Background()

	require.NoError(t, uc.Add(ctx, 7, 1))
	require.NoError(t, uc.Add(ctx, 7, 1))

	count, err := repo.Count(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestAdd_UnknownBook(t *testing.T) {
	uc, _ := newWishlistUseCase(testBooks())

	err := uc.Add(context.Background(), 7, 99)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestAdd_OutOfStockBookAllowed(t *testing.T) {
	uc, _ := newWishlistUseCase(testBooks())
	ctx := context.Background()

	require.NoError(t, uc.Add(ctx, 7, 2))

	items, err := uc.Items(ctx, 7)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 0, items[0].Book.Stock)
}

func TestRemove(t *testing.T) {
	uc, _ := newWishlistUseCase(testBooks())
	ctx := context.Background()

	require.NoError(t, uc.Add(ctx, 7, 1))
	require.NoError(t, uc.Remove(ctx, 7, 1))

	listed, err := uc.Contains(ctx, 7, 1)
	require.NoError(t, err)
	assert.False(t, listed)

	err = uc.Remove(ctx, 7, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestItems_NewestFirstAndScopedToUser(t *testing.T) {
	uc, repo := newWishlistUseCase(testBooks())
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, &domain.WishlistEntry{UserID: 7, BookID: 1, AddedAt: time.Now().Add(-time.Hour)}))
	require.NoError(t, repo.Add(ctx, &domain.WishlistEntry{UserID: 7, BookID: 2, AddedAt: time.Now()}))
	require.NoError(t, repo.Add(ctx, &domain.WishlistEntry{UserID: 8, BookID: 1, AddedAt: time.Now()}))

	items, err := uc.Items(ctx, 7)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, uint(2), items[0].Book.ID)
	assert.Equal(t, uint(1), items[1].Book.ID)
}

func TestItems_SkipsDeletedBooks(t *testing.T) {
	books := testBooks()
	uc, _ := newWishlistUseCase(books)
	ctx := context.Background()

	require.NoError(t, uc.Add(ctx, 7, 1))
	require.NoError(t, uc.Add(ctx, 7, 2))

	delete(books, 2)

	items, err := uc.Items(ctx, 7)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, uint(1), items[0].Book.ID)
}
