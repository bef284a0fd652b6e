package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	auditdomain "bookstore/internal/audit/domain"
	"bookstore/internal/orders/domain"
	"bookstore/internal/orders/ports"
	"bookstore/pkg/errors"
	"bookstore/pkg/logger"
)

// OrderUseCase converts cart snapshots into orders and drives the order
// status state machine. Stock moves only through the StockLedger port,
// which guarantees per-book atomicity; multi-line all-or-nothing is this
// layer's job, done with compensating restores.
type OrderUseCase struct {
	repo      ports.OrderRepository
	stock     ports.StockLedger
	publisher ports.EventPublisher
	audit     ports.AuditRecorder
	log       *logger.Logger
}

// NewOrderUseCase creates a new order use case
func NewOrderUseCase(
	repo ports.OrderRepository,
	stock ports.StockLedger,
	publisher ports.EventPublisher,
	audit ports.AuditRecorder,
	log *logger.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		repo:      repo,
		stock:     stock,
		publisher: publisher,
		audit:     audit,
		log:       log,
	}
}

// CheckoutLine is one cart line at checkout, carrying the price snapshot
// that gets frozen into the order item
type CheckoutLine struct {
	BookID   uint
	Title    string
	Quantity int
	Price    float64
	Discount float64
}

// CreateOrderInput represents the input for creating an order
type CreateOrderInput struct {
	UserID   uint
	Lines    []CheckoutLine
	Shipping domain.ShippingInfo
}

// CreateOrder reserves stock for every line and persists the order as one
// unit. Any reservation failure rolls back the lines already reserved in
// this call before the error is returned.
func (uc *OrderUseCase) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	if len(input.Lines) == 0 {
		return nil, domain.ErrEmptyCart
	}
	if err := input.Shipping.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	order := &domain.Order{
		OrderNumber:        domain.NewOrderNumber(now),
		UserID:             input.UserID,
		OrderDate:          now,
		Status:             domain.OrderStatusPending,
		ShippingAddress:    input.Shipping.Address,
		ShippingCity:       input.Shipping.City,
		ShippingPostalCode: input.Shipping.PostalCode,
		ShippingCountry:    input.Shipping.Country,
		PaymentMethod:      "Simulated Payment",
		Notes:              input.Shipping.Notes,
	}

	// Reserve stock line by line, remembering what to undo on failure.
	reserved := make([]CheckoutLine, 0, len(input.Lines))
	rollback := func() {
		for i := len(reserved) - 1; i >= 0; i-- {
			line := reserved[i]
			if err := uc.stock.RestoreStock(ctx, line.BookID, line.Quantity); err != nil {
				uc.log.WithContext(ctx).Error("failed to roll back stock reservation",
					zap.Error(err),
					zap.Uint("book_id", line.BookID),
					zap.Int("quantity", line.Quantity),
				)
			}
		}
	}

	subtotal := 0.0
	discountAmount := 0.0
	for _, line := range input.Lines {
		if line.Quantity <= 0 {
			rollback()
			return nil, errors.NewValidation("line quantity must be greater than 0", map[string]interface{}{
				"book_id": line.BookID,
			})
		}

		if err := uc.stock.ReduceStock(ctx, line.BookID, line.Quantity); err != nil {
			rollback()
			return nil, err
		}
		reserved = append(reserved, line)

		order.Items = append(order.Items, domain.OrderItem{
			BookID:             line.BookID,
			Title:              line.Title,
			Quantity:           line.Quantity,
			PriceAtPurchase:    line.Price,
			DiscountAtPurchase: line.Discount,
		})
		subtotal += line.Price * float64(line.Quantity)
		discountAmount += line.Price * line.Discount / 100 * float64(line.Quantity)
	}

	order.Subtotal = subtotal
	order.DiscountAmount = discountAmount
	order.Total = subtotal - discountAmount

	// An order-number collision is the one retryable persistence failure:
	// regenerate and try once more.
	err := uc.repo.Create(ctx, order)
	if errors.Is(err, errors.CodeConflict) {
		order.OrderNumber = domain.NewOrderNumber(now)
		err = uc.repo.Create(ctx, order)
	}
	if err != nil {
		rollback()
		return nil, err
	}

	if uc.publisher != nil {
		if perr := uc.publisher.PublishOrderCreated(ctx, order); perr != nil {
			uc.log.WithContext(ctx).Error("failed to publish order created event",
				zap.Error(perr),
				zap.Uint("order_id", order.ID),
			)
		}
	}

	uc.log.WithContext(ctx).Info("order created",
		zap.Uint("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.Uint("user_id", order.UserID),
		zap.Float64("total", order.Total),
		zap.Int("lines", len(order.Items)),
	)

	return order, nil
}

// UpdateStatus is the back-office transition path: any non-terminal order
// may move forward or be cancelled. The transition is committed with a
// guard on the current status, so of two concurrent cancellations only
// one restores stock.
func (uc *OrderUseCase) UpdateStatus(ctx context.Context, orderID uint, newStatus domain.OrderStatus) (*domain.Order, error) {
	order, err := uc.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := domain.CheckTransition(order.Status, newStatus); err != nil {
		return nil, err
	}
	if order.Status == newStatus {
		return order, nil
	}

	return uc.commitTransition(ctx, order, newStatus)
}

// CancelOwnOrder is the self-service path: the requesting user must own
// the order and it must still be PENDING. Back-office cancellation of
// later statuses goes through UpdateStatus.
func (uc *OrderUseCase) CancelOwnOrder(ctx context.Context, orderID, userID uint) (*domain.Order, error) {
	order, err := uc.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.UserID != userID {
		return nil, domain.NewNotOrderOwner(orderID)
	}
	if order.Status != domain.OrderStatusPending {
		if order.Status.IsTerminal() {
			return nil, domain.NewTerminalState(order.Status)
		}
		return nil, errors.NewInvalidTransition(string(order.Status), string(domain.OrderStatusCancelled))
	}

	return uc.commitTransition(ctx, order, domain.OrderStatusCancelled)
}

// commitTransition performs the guarded status change and, for
// cancellations, restores stock afterwards. Restoring after the commit
// keeps the restore at-most-once: only the request that won the guard
// reaches it. The flip side is that a restore failure after the commit
// leaks the reserved stock, so each line is retried once and a leak is
// logged at error level for manual reconciliation; retrying before the
// commit would risk double restores instead, which corrupt the ledger.
func (uc *OrderUseCase) commitTransition(ctx context.Context, order *domain.Order, newStatus domain.OrderStatus) (*domain.Order, error) {
	oldStatus := order.Status

	if err := uc.repo.UpdateStatusGuarded(ctx, order.ID, oldStatus, newStatus); err != nil {
		return nil, err
	}
	order.Status = newStatus

	if newStatus == domain.OrderStatusCancelled {
		for _, item := range order.Items {
			err := uc.stock.RestoreStock(ctx, item.BookID, item.Quantity)
			if err != nil {
				err = uc.stock.RestoreStock(ctx, item.BookID, item.Quantity)
			}
			if err != nil {
				uc.log.WithContext(ctx).Error("stock leak: failed to restore stock for cancelled order",
					zap.Error(err),
					zap.Uint("order_id", order.ID),
					zap.Uint("book_id", item.BookID),
					zap.Int("quantity", item.Quantity),
				)
			}
		}
	}

	if uc.publisher != nil {
		if perr := uc.publisher.PublishStatusChanged(ctx, order, oldStatus, newStatus); perr != nil {
			uc.log.WithContext(ctx).Error("failed to publish status change event",
				zap.Error(perr),
				zap.Uint("order_id", order.ID),
			)
		}
	}

	uc.log.WithContext(ctx).Info("order status changed",
		zap.Uint("order_id", order.ID),
		zap.String("from", string(oldStatus)),
		zap.String("to", string(newStatus)),
	)

	if uc.audit != nil {
		action := auditdomain.ActionOrderStatusChanged
		if newStatus == domain.OrderStatusCancelled {
			action = auditdomain.ActionOrderCancelled
		}
		uc.audit.Record(ctx, action, auditdomain.EntityOrder, order.ID,
			fmt.Sprintf("%s -> %s", oldStatus, newStatus))
	}

	return order, nil
}

// GetOrder retrieves an order by ID
func (uc *OrderUseCase) GetOrder(ctx context.Context, id uint) (*domain.Order, error) {
	return uc.repo.GetByID(ctx, id)
}

// GetByOrderNumber retrieves an order by its order number
func (uc *OrderUseCase) GetByOrderNumber(ctx context.Context, number string) (*domain.Order, error) {
	return uc.repo.GetByOrderNumber(ctx, number)
}

// ListUserOrders retrieves a user's orders, newest first
func (uc *OrderUseCase) ListUserOrders(ctx context.Context, userID uint) ([]*domain.Order, error) {
	return uc.repo.ListByUser(ctx, userID)
}

// ListByStatus retrieves orders in the given status
func (uc *OrderUseCase) ListByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	return uc.repo.ListByStatus(ctx, status)
}

// ListOrders retrieves a page of orders, newest first
func (uc *OrderUseCase) ListOrders(ctx context.Context, page, size int) ([]*domain.Order, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return uc.repo.ListAll(ctx, page, size)
}

// CountByStatus returns the number of orders in the given status
func (uc *OrderUseCase) CountByStatus(ctx context.Context, status domain.OrderStatus) (int64, error) {
	return uc.repo.CountByStatus(ctx, status)
}

// TotalRevenue sums the total of delivered orders
func (uc *OrderUseCase) TotalRevenue(ctx context.Context) (float64, error) {
	return uc.repo.TotalRevenue(ctx)
}

// RevenueBetween sums the total of delivered orders in the date range
func (uc *OrderUseCase) RevenueBetween(ctx context.Context, start, end time.Time) (float64, error) {
	return uc.repo.RevenueBetween(ctx, start, end)
}
