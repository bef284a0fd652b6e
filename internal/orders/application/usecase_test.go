package application

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditdomain "bookstore/internal/audit/domain"
	"bookstore/internal/orders/domain"
	"bookstore/pkg/errors"
	"bookstore/pkg/logger"
)

// MockOrderRepository is an in-memory implementation of OrderRepository
type MockOrderRepository struct {
	mu      sync.Mutex
	orders  map[uint]*domain.Order
	numbers map[string]bool
	nextID  uint

	failCreates int // fail the next n Create calls with a conflict
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders:  make(map[uint]*domain.Order),
		numbers: make(map[string]bool),
		nextID:  1,
	}
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreates > 0 {
		m.failCreates--
		return errors.NewConflict("order number already exists")
	}
	if m.numbers[order.OrderNumber] {
		return errors.NewConflict("order number already exists")
	}
	order.ID = m.nextID
	m.nextID++
	m.numbers[order.OrderNumber] = true
	copied := *order
	copied.Items = append([]domain.OrderItem(nil), order.Items...)
	m.orders[order.ID] = &copied
	return nil
}

func (m *MockOrderRepository) get(id uint) (*domain.Order, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, domain.NewOrderNotFound(id)
	}
	copied := *order
	copied.Items = append([]domain.OrderItem(nil), order.Items...)
	return &copied, nil
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uint) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(id)
}

func (m *MockOrderRepository) GetByOrderNumber(ctx context.Context, number string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, order := range m.orders {
		if order.OrderNumber == number {
			return m.get(order.ID)
		}
	}
	return nil, domain.NewOrderNotFound(number)
}

func (m *MockOrderRepository) ListByUser(ctx context.Context, userID uint) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Order
	for _, order := range m.orders {
		if order.UserID == userID {
			copied, _ := m.get(order.ID)
			out = append(out, copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderDate.After(out[j].OrderDate) })
	return out, nil
}

func (m *MockOrderRepository) ListByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Order
	for _, order := range m.orders {
		if order.Status == status {
			copied, _ := m.get(order.ID)
			out = append(out, copied)
		}
	}
	return out, nil
}

func (m *MockOrderRepository) ListAll(ctx context.Context, page, size int) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Order
	for _, order := range m.orders {
		copied, _ := m.get(order.ID)
		out = append(out, copied)
	}
	return out, nil
}

func (m *MockOrderRepository) UpdateStatusGuarded(ctx context.Context, orderID uint, from, to domain.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[orderID]
	if !ok {
		return domain.NewOrderNotFound(orderID)
	}
	if order.Status != from {
		return domain.NewTransitionConflict(orderID)
	}
	order.Status = to
	return nil
}

func (m *MockOrderRepository) CountByStatus(ctx context.Context, status domain.OrderStatus) (int64, error) {
	orders, _ := m.ListByStatus(ctx, status)
	return int64(len(orders)), nil
}

func (m *MockOrderRepository) TotalRevenue(ctx context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0.0
	for _, order := range m.orders {
		if order.Status == domain.OrderStatusDelivered {
			total += order.Total
		}
	}
	return total, nil
}

func (m *MockOrderRepository) RevenueBetween(ctx context.Context, start, end time.Time) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0.0
	for _, order := range m.orders {
		if order.Status == domain.OrderStatusDelivered &&
			!order.OrderDate.Before(start) && !order.OrderDate.After(end) {
			total += order.Total
		}
	}
	return total, nil
}

// MockStockLedger tracks per-book stock behind a mutex, matching the
// atomicity guarantee of the catalog's MutateStock.
type MockStockLedger struct {
	mu    sync.Mutex
	stock map[uint]int

	failRestores int // fail the next n RestoreStock calls
}

func NewMockStockLedger(stock map[uint]int) *MockStockLedger {
	return &MockStockLedger{stock: stock}
}

func (m *MockStockLedger) ReduceStock(ctx context.Context, bookID uint, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	available, ok := m.stock[bookID]
	if !ok {
		return errors.NewNotFound("book", bookID)
	}
	if quantity > available {
		return errors.NewInsufficientStock(bookID, quantity, available)
	}
	m.stock[bookID] = available - quantity
	return nil
}

func (m *MockStockLedger) RestoreStock(ctx context.Context, bookID uint, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRestores > 0 {
		m.failRestores--
		return errors.NewInternal("database unavailable", nil)
	}
	if _, ok := m.stock[bookID]; !ok {
		return errors.NewNotFound("book", bookID)
	}
	m.stock[bookID] += quantity
	return nil
}

func (m *MockStockLedger) Stock(bookID uint) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stock[bookID]
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu      sync.Mutex
	created []*domain.Order
	changes []string
}

func (m *MockEventPublisher) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, order)
	return nil
}

func (m *MockEventPublisher) PublishStatusChanged(ctx context.Context, order *domain.Order, from, to domain.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changes = append(m.changes, string(from)+"->"+string(to))
	return nil
}

// MockAuditRecorder records audit calls
type MockAuditRecorder struct {
	mu      sync.Mutex
	actions []string
	details []string
}

func (m *MockAuditRecorder) Record(ctx context.Context, action, entityType string, entityID uint, details string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions = append(m.actions, action)
	m.details = append(m.details, details)
}

func (m *MockAuditRecorder) RecordFailed(ctx context.Context, action, entityType string, entityID uint, details string) {
	m.Record(ctx, action, entityType, entityID, details)
}

func newTestOrders(t *testing.T, stock map[uint]int) (*OrderUseCase, *MockOrderRepository, *MockStockLedger, *MockEventPublisher, *MockAuditRecorder) {
	t.Helper()
	repo := NewMockOrderRepository()
	ledger := NewMockStockLedger(stock)
	publisher := &MockEventPublisher{}
	audit := &MockAuditRecorder{}
	log := logger.New("test", "error")
	return NewOrderUseCase(repo, ledger, publisher, audit, log), repo, ledger, publisher, audit
}

var testShipping = domain.ShippingInfo{
	Address:    "12 Baker Street",
	City:       "London",
	PostalCode: "NW1",
	Country:    "UK",
}

func TestCreateOrder_TotalsAndReservation(t *testing.T) {
	uc, _, ledger, publisher, _ := newTestOrders(t, map[uint]int{1: 5, 2: 2})

	order, err := uc.CreateOrder(context.Background(), CreateOrderInput{
		UserID: 7,
		Lines: []CheckoutLine{
			{BookID: 1, Title: "A", Quantity: 2, Price: 20, Discount: 10},
			{BookID: 2, Title: "B", Quantity: 1, Price: 15, Discount: 0},
		},
		Shipping: testShipping,
	})
	require.NoError(t, err)

	assert.InDelta(t, 55.0, order.Subtotal, 1e-9)
	assert.InDelta(t, 4.0, order.DiscountAmount, 1e-9)
	assert.InDelta(t, 51.0, order.Total, 1e-9)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Regexp(t, `^ORD-\d{8}-[0-9A-F]{8}$`, order.OrderNumber)
	require.Len(t, order.Items, 2)
	assert.InDelta(t, 36.0, order.Items[0].Subtotal(), 1e-9)

	// stock reserved per line
	assert.Equal(t, 3, ledger.Stock(1))
	assert.Equal(t, 1, ledger.Stock(2))

	require.Len(t, publisher.created, 1)
}

func TestCreateOrder_EmptyCart(t *testing.T) {
	uc, _, _, _, _ := newTestOrders(t, map[uint]int{})

	_, err := uc.CreateOrder(context.Background(), CreateOrderInput{
		UserID:   7,
		Shipping: testShipping,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeValidation))
}

func TestCreateOrder_CompensatesOnPartialFailure(t *testing.T) {
	uc, _, ledger, _, _ := newTestOrders(t, map[uint]int{1: 5, 2: 0})

	_, err := uc.CreateOrder(context.Background(), CreateOrderInput{
		UserID: 7,
		Lines: []CheckoutLine{
			{BookID: 1, Title: "A", Quantity: 3, Price: 20},
			{BookID: 2, Title: "B", Quantity: 1, Price: 15},
		},
		Shipping: testShipping,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeInsufficientStock))

	// the reservation for book 1 was rolled back
	assert.Equal(t, 5, ledger.Stock(1))
	assert.Equal(t, 0, ledger.Stock(2))
}

func TestCreateOrder_RetriesNumberCollisionOnce(t *testing.T) {
	uc, repo, ledger, _, _ := newTestOrders(t, map[uint]int{1: 5})
	repo.failCreates = 1

	order, err := uc.CreateOrder(context.Background(), CreateOrderInput{
		UserID:   7,
		Lines:    []CheckoutLine{{BookID: 1, Title: "A", Quantity: 1, Price: 10}},
		Shipping: testShipping,
	})
	require.NoError(t, err)
	assert.NotZero(t, order.ID)
	assert.Equal(t, 4, ledger.Stock(1))
}

func TestCreateOrder_GivesUpAfterSecondCollision(t *testing.T) {
	uc, repo, ledger, _, _ := newTestOrders(t, map[uint]int{1: 5})
	repo.failCreates = 2

	_, err := uc.CreateOrder(context.Background(), CreateOrderInput{
		UserID:   7,
		Lines:    []CheckoutLine{{BookID: 1, Title: "A", Quantity: 1, Price: 10}},
		Shipping: testShipping,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeConflict))

	// reservations rolled back when persistence ultimately failed
	assert.Equal(t, 5, ledger.Stock(1))
}

func createTestOrder(t *testing.T, uc *OrderUseCase, ledger *MockStockLedger) *domain.Order {
	t.Helper()
	order, err := uc.CreateOrder(context.Background(), CreateOrderInput{
		UserID: 7,
		Lines: []CheckoutLine{
			{BookID: 1, Title: "A", Quantity: 3, Price: 20, Discount: 10},
			{BookID: 2, Title: "B", Quantity: 1, Price: 15},
		},
		Shipping: testShipping,
	})
	require.NoError(t, err)
	return order
}

func TestCancel_RestoresStockOnceAndBecomesTerminal(t *testing.T) {
	uc, _, ledger, _, _ := newTestOrders(t, map[uint]int{1: 8, 2: 3})
	order := createTestOrder(t, uc, ledger)

	// after reservation: 5 and 2
	require.Equal(t, 5, ledger.Stock(1))
	require.Equal(t, 2, ledger.Stock(2))

	cancelled, err := uc.UpdateStatus(context.Background(), order.ID, domain.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, 8, ledger.Stock(1))
	assert.Equal(t, 3, ledger.Stock(2))

	// a second cancellation is rejected as terminal and changes no stock
	_, err = uc.UpdateStatus(context.Background(), order.ID, domain.OrderStatusCancelled)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeTerminalState))
	assert.Equal(t, 8, ledger.Stock(1))
	assert.Equal(t, 3, ledger.Stock(2))
}

func TestUpdateStatus_NoDowngrade(t *testing.T) {
	uc, _, ledger, _, _ := newTestOrders(t, map[uint]int{1: 8, 2: 3})
	order := createTestOrder(t, uc, ledger)

	_, err := uc.UpdateStatus(context.Background(), order.ID, domain.OrderStatusShipped)
	require.NoError(t, err)

	for _, downgrade := range []domain.OrderStatus{domain.OrderStatusProcessing, domain.OrderStatusPending} {
		_, err = uc.UpdateStatus(context.Background(), order.ID, downgrade)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.CodeInvalidTransition))
	}
}

func TestUpdateStatus_ForwardProgression(t *testing.T) {
	uc, _, ledger, publisher, _ := newTestOrders(t, map[uint]int{1: 8, 2: 3})
	order := createTestOrder(t, uc, ledger)

	for _, next := range []domain.OrderStatus{
		domain.OrderStatusProcessing,
		domain.OrderStatusShipped,
		domain.OrderStatusDelivered,
	} {
		updated, err := uc.UpdateStatus(context.Background(), order.ID, next)
		require.NoError(t, err)
		assert.Equal(t, next, updated.Status)
	}

	assert.Len(t, publisher.changes, 3)
}

func TestUpdateStatus_AdminCancelsProcessingOrder(t *testing.T) {
	uc, _, ledger, _, _ := newTestOrders(t, map[uint]int{1: 8, 2: 3})
	order := createTestOrder(t, uc, ledger)

	_, err := uc.UpdateStatus(context.Background(), order.ID, domain.OrderStatusProcessing)
	require.NoError(t, err)

	// the back-office path may cancel any non-terminal order
	cancelled, err := uc.UpdateStatus(context.Background(), order.ID, domain.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, 8, ledger.Stock(1))
}

func TestCancelOwnOrder_PendingOnly(t *testing.T) {
	uc, _, ledger, _, _ := newTestOrders(t, map[uint]int{1: 8, 2: 3})
	order := createTestOrder(t, uc, ledger)

	_, err := uc.UpdateStatus(context.Background(), order.ID, domain.OrderStatusProcessing)
	require.NoError(t, err)

	_, err = uc.CancelOwnOrder(context.Background(), order.ID, 7)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeInvalidTransition))
	assert.Equal(t, 5, ledger.Stock(1))
}

func TestCancelOwnOrder_PendingSucceeds(t *testing.T) {
	uc, _, ledger, _, _ := newTestOrders(t, map[uint]int{1: 8, 2: 3})
	order := createTestOrder(t, uc, ledger)

	cancelled, err := uc.CancelOwnOrder(context.Background(), order.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, 8, ledger.Stock(1))
	assert.Equal(t, 3, ledger.Stock(2))
}

func TestCancelOwnOrder_WrongUser(t *testing.T) {
	uc, _, ledger, _, _ := newTestOrders(t, map[uint]int{1: 8, 2: 3})
	order := createTestOrder(t, uc, ledger)

	_, err := uc.CancelOwnOrder(context.Background(), order.ID, 99)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeForbidden))
	assert.Equal(t, 5, ledger.Stock(1))
}

func TestConcurrentCancel_RestoresStockExactlyOnce(t *testing.T) {
	uc, _, ledger, _, _ := newTestOrders(t, map[uint]int{1: 8, 2: 3})
	order := createTestOrder(t, uc, ledger)

	const attempts = 10
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.UpdateStatus(context.Background(), order.ID, domain.OrderStatusCancelled)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)

	// exactly one winner restored the stock
	assert.Equal(t, 8, ledger.Stock(1))
	assert.Equal(t, 3, ledger.Stock(2))
}

func TestCancel_RetriesFailedRestore(t *testing.T) {
	uc, _, ledger, _, _ := newTestOrders(t, map[uint]int{1: 8, 2: 3})
	order := createTestOrder(t, uc, ledger)

	// the first restore attempt fails transiently, the retry lands
	ledger.failRestores = 1

	cancelled, err := uc.UpdateStatus(context.Background(), order.ID, domain.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)

	assert.Equal(t, 8, ledger.Stock(1))
	assert.Equal(t, 3, ledger.Stock(2))
}

func TestCancel_RecordsAuditEntry(t *testing.T) {
	uc, _, ledger, _, audit := newTestOrders(t, map[uint]int{1: 8, 2: 3})
	order := createTestOrder(t, uc, ledger)

	_, err := uc.UpdateStatus(context.Background(), order.ID, domain.OrderStatusCancelled)
	require.NoError(t, err)

	require.Len(t, audit.actions, 1)
	assert.Equal(t, auditdomain.ActionOrderCancelled, audit.actions[0])
	assert.Equal(t, "PENDING -> CANCELLED", audit.details[0])
}

func TestUpdateStatus_RecordsAuditEntry(t *testing.T) {
	uc, _, ledger, _, audit := newTestOrders(t, map[uint]int{1: 8, 2: 3})
	order := createTestOrder(t, uc, ledger)

	_, err := uc.UpdateStatus(context.Background(), order.ID, domain.OrderStatusShipped)
	require.NoError(t, err)

	require.Len(t, audit.actions, 1)
	assert.Equal(t, auditdomain.ActionOrderStatusChanged, audit.actions[0])
	assert.Equal(t, "PENDING -> SHIPPED", audit.details[0])
}

func TestGetOrder_NotFound(t *testing.T) {
	uc, _, _, _, _ := newTestOrders(t, map[uint]int{})

	_, err := uc.GetOrder(context.Background(), 999)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}
