package application

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstore/internal/cart/domain"
	catalogdomain "bookstore/internal/catalog/domain"
	"bookstore/pkg/errors"
	"bookstore/pkg/logger"
)

// MockCartRepository is an in-memory implementation of CartRepository
type MockCartRepository struct {
	lines  map[[2]uint]*domain.CartLine
	nextID uint
}

func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{
		lines:  make(map[[2]uint]*domain.CartLine),
		nextID: 1,
	}
}

func (m *MockCartRepository) key(userID, bookID uint) [2]uint {
	return [2]uint{userID, bookID}
}

func (m *MockCartRepository) Upsert(ctx context.Context, line *domain.CartLine) error {
	k := m.key(line.UserID, line.BookID)
	if existing, ok := m.lines[k]; ok {
		existing.Quantity = line.Quantity
		line.ID = existing.ID
		return nil
	}
	line.ID = m.nextID
	m.nextID++
	copied := *line
	m.lines[k] = &copied
	return nil
}

func (m *MockCartRepository) Get(ctx context.Context, userID, bookID uint) (*domain.CartLine, error) {
	line, ok := m.lines[m.key(userID, bookID)]
	if !ok {
		return nil, nil
	}
	copied := *line
	return &copied, nil
}

func (m *MockCartRepository) ListByUser(ctx context.Context, userID uint) ([]*domain.CartLine, error) {
	var out []*domain.CartLine
	for _, line := range m.lines {
		if line.UserID == userID {
			copied := *line
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AddedAt.After(out[j].AddedAt) })
	return out, nil
}

func (m *MockCartRepository) Delete(ctx context.Context, userID, bookID uint) error {
	delete(m.lines, m.key(userID, bookID))
	return nil
}

func (m *MockCartRepository) DeleteAllByUser(ctx context.Context, userID uint) error {
	for k, line := range m.lines {
		if line.UserID == userID {
			delete(m.lines, k)
		}
	}
	return nil
}

func (m *MockCartRepository) Count(ctx context.Context, userID uint) (int64, error) {
	var count int64
	for _, line := range m.lines {
		if line.UserID == userID {
			count++
		}
	}
	return count, nil
}

// MockBookSource serves books from a map
type MockBookSource struct {
	books map[uint]*catalogdomain.Book
}

func (m *MockBookSource) GetBook(ctx context.Context, id uint) (*catalogdomain.Book, error) {
	book, ok := m.books[id]
	if !ok {
		return nil, catalogdomain.NewBookNotFound(id)
	}
	copied := *book
	return &copied, nil
}

func newTestCart(t *testing.T) (*CartUseCase, *MockBookSource) {
	t.Helper()
	books := &MockBookSource{books: map[uint]*catalogdomain.Book{
		1: {ID: 1, Title: "Clean Architecture", Price: 20, Discount: 10, Stock: 10, Enabled: true},
		2: {ID: 2, Title: "Designing Data-Intensive Applications", Price: 15, Stock: 2, Enabled: true},
		3: {ID: 3, Title: "Out of Print", Price: 30, Stock: 5, Enabled: false},
	}}
	log := logger.New("test", "error")
	return NewCartUseCase(NewMockCartRepository(), books, log), books
}

func TestAddItem_AccumulatesSingleLine(t *testing.T) {
	uc, _ := newTestCart(t)
	ctx := context.Background()

	require.NoError(t, uc.AddItem(ctx, 7, 1, 2))
	require.NoError(t, uc.AddItem(ctx, 7, 1, 3))

	items, err := uc.Items(ctx, 7)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Line.Quantity)

	// pushing the accumulated total past stock is rejected and the
	// quantity stays where it was
	err = uc.AddItem(ctx, 7, 1, 6)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeInsufficientStock))

	items, _ = uc.Items(ctx, 7)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Line.Quantity)
}

func TestAddItem_RejectsOverStock(t *testing.T) {
	uc, _ := newTestCart(t)

	err := uc.AddItem(context.Background(), 7, 2, 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeInsufficientStock))
}

func TestAddItem_RejectsDisabledBook(t *testing.T) {
	uc, _ := newTestCart(t)

	err := uc.AddItem(context.Background(), 7, 3, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeConflict))
}

func TestAddItem_BookNotFound(t *testing.T) {
	uc, _ := newTestCart(t)

	err := uc.AddItem(context.Background(), 7, 99, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestUpdateQuantity_ZeroRemovesLine(t *testing.T) {
	uc, _ := newTestCart(t)
	ctx := context.Background()

	require.NoError(t, uc.AddItem(ctx, 7, 1, 2))
	require.NoError(t, uc.UpdateQuantity(ctx, 7, 1, 0))

	count, err := uc.Count(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUpdateQuantity_RejectsOverStock(t *testing.T) {
	uc, _ := newTestCart(t)
	ctx := context.Background()

	require.NoError(t, uc.AddItem(ctx, 7, 2, 1))

	err := uc.UpdateQuantity(ctx, 7, 2, 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeInsufficientStock))
}

func TestUpdateQuantity_MissingLine(t *testing.T) {
	uc, _ := newTestCart(t)

	err := uc.UpdateQuantity(context.Background(), 7, 1, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestTotals_DerivedAtReadTime(t *testing.T) {
	uc, books := newTestCart(t)
	ctx := context.Background()

	require.NoError(t, uc.AddItem(ctx, 7, 1, 2)) // 20 * 0.9 * 2 = 36
	time.Sleep(time.Millisecond)
	require.NoError(t, uc.AddItem(ctx, 7, 2, 1)) // 15 * 1

	total, err := uc.TotalPrice(ctx, 7)
	require.NoError(t, err)
	assert.InDelta(t, 51.0, total, 1e-9)

	quantity, err := uc.TotalQuantity(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 3, quantity)

	// a catalog price change shows up in the sitting cart
	books.books[1].Price = 30

	total, err = uc.TotalPrice(ctx, 7)
	require.NoError(t, err)
	assert.InDelta(t, 69.0, total, 1e-9)
}

func TestClear(t *testing.T) {
	uc, _ := newTestCart(t)
	ctx := context.Background()

	require.NoError(t, uc.AddItem(ctx, 7, 1, 1))
	require.NoError(t, uc.AddItem(ctx, 7, 2, 1))
	require.NoError(t, uc.Clear(ctx, 7))

	items, err := uc.Items(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, items)
}
