package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"bookstore/internal/orders/domain"
	apperrors "bookstore/pkg/errors"
)

// OrderModel is the GORM model for orders (persistence layer)
type OrderModel struct {
	ID                 uint               `gorm:"primaryKey"`
	OrderNumber        string             `gorm:"size:32;uniqueIndex;not null"`
	UserID             uint               `gorm:"index;not null"`
	OrderDate          time.Time          `gorm:"index;not null"`
	Status             domain.OrderStatus `gorm:"size:20;not null;default:'PENDING';index"`
	Subtotal           float64            `gorm:"not null"`
	DiscountAmount     float64            `gorm:"not null;default:0"`
	Total              float64            `gorm:"not null"`
	ShippingAddress    string             `gorm:"size:255"`
	ShippingCity       string             `gorm:"size:100"`
	ShippingPostalCode string             `gorm:"size:20"`
	ShippingCountry    string             `gorm:"size:100"`
	PaymentMethod      string             `gorm:"size:50"`
	Notes              string             `gorm:"type:text"`
	Items              []OrderItemModel   `gorm:"foreignKey:OrderID"`
	CreatedAt          time.Time          `gorm:"autoCreateTime"`
	UpdatedAt          time.Time          `gorm:"autoUpdateTime"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel is the GORM model for order items
type OrderItemModel struct {
	ID                 uint    `gorm:"primaryKey"`
	OrderID            uint    `gorm:"index;not null"`
	BookID             uint    `gorm:"index;not null"`
	Title              string  `gorm:"size:255"`
	Quantity           int     `gorm:"not null"`
	PriceAtPurchase    float64 `gorm:"not null"`
	DiscountAtPurchase float64 `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// PostgresOrderRepository implements OrderRepository using PostgreSQL
type PostgresOrderRepository struct {
	db *gorm.DB
}

// NewPostgresOrderRepository creates a new PostgreSQL order repository
func NewPostgresOrderRepository(db *gorm.DB) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db}
}

// Migrate runs auto-migration for the order models
func (r *PostgresOrderRepository) Migrate() error {
	return r.db.AutoMigrate(&OrderModel{}, &OrderItemModel{})
}

// Create persists the order and its items as one unit
func (r *PostgresOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	model := toModel(order)

	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return apperrors.NewConflict("order number already exists")
		}
		return apperrors.NewInternal("failed to create order", result.Error)
	}

	order.ID = model.ID
	for i := range model.Items {
		order.Items[i].ID = model.Items[i].ID
		order.Items[i].OrderID = model.ID
	}

	return nil
}

// GetByID retrieves an order with its items
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id uint) (*domain.Order, error) {
	var model OrderModel

	result := r.db.WithContext(ctx).Preload("Items").First(&model, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.NewOrderNotFound(id)
		}
		return nil, apperrors.NewInternal("failed to get order", result.Error)
	}

	return toDomain(&model), nil
}

// GetByOrderNumber retrieves an order with its items by order number
func (r *PostgresOrderRepository) GetByOrderNumber(ctx context.Context, number string) (*domain.Order, error) {
	var model OrderModel

	result := r.db.WithContext(ctx).Preload("Items").Where("order_number = ?", number).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.NewOrderNotFound(number)
		}
		return nil, apperrors.NewInternal("failed to get order", result.Error)
	}

	return toDomain(&model), nil
}

// ListByUser retrieves a user's orders, newest first
func (r *PostgresOrderRepository) ListByUser(ctx context.Context, userID uint) ([]*domain.Order, error) {
	var models []OrderModel

	result := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("order_date DESC").
		Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to list orders by user", result.Error)
	}

	return toDomainSlice(models), nil
}

// ListByStatus retrieves orders in the given status
func (r *PostgresOrderRepository) ListByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	var models []OrderModel

	result := r.db.WithContext(ctx).
		Preload("Items").
		Where("status = ?", status).
		Order("order_date DESC").
		Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to list orders by status", result.Error)
	}

	return toDomainSlice(models), nil
}

// ListAll retrieves a page of orders, newest first
func (r *PostgresOrderRepository) ListAll(ctx context.Context, page, size int) ([]*domain.Order, error) {
	var models []OrderModel

	result := r.db.WithContext(ctx).
		Preload("Items").
		Order("order_date DESC").
		Offset(page * size).
		Limit(size).
		Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to list orders", result.Error)
	}

	return toDomainSlice(models), nil
}

// UpdateStatusGuarded commits the transition only if the stored status
// still equals from. Zero rows affected means a concurrent transition won.
func (r *PostgresOrderRepository) UpdateStatusGuarded(ctx context.Context, orderID uint, from, to domain.OrderStatus) error {
	result := r.db.WithContext(ctx).
		Model(&OrderModel{}).
		Where("id = ? AND status = ?", orderID, from).
		Update("status", to)
	if result.Error != nil {
		return apperrors.NewInternal("failed to update order status", result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		r.db.WithContext(ctx).Model(&OrderModel{}).Where("id = ?", orderID).Count(&count)
		if count == 0 {
			return domain.NewOrderNotFound(orderID)
		}
		return domain.NewTransitionConflict(orderID)
	}
	return nil
}

// CountByStatus returns the number of orders in the given status
func (r *PostgresOrderRepository) CountByStatus(ctx context.Context, status domain.OrderStatus) (int64, error) {
	var count int64

	result := r.db.WithContext(ctx).
		Model(&OrderModel{}).
		Where("status = ?", status).
		Count(&count)
	if result.Error != nil {
		return 0, apperrors.NewInternal("failed to count orders", result.Error)
	}
	return count, nil
}

// TotalRevenue sums the total of delivered orders
func (r *PostgresOrderRepository) TotalRevenue(ctx context.Context) (float64, error) {
	var revenue *float64

	result := r.db.WithContext(ctx).
		Model(&OrderModel{}).
		Select("SUM(total)").
		Where("status = ?", domain.OrderStatusDelivered).
		Scan(&revenue)
	if result.Error != nil {
		return 0, apperrors.NewInternal("failed to sum revenue", result.Error)
	}
	if revenue == nil {
		return 0, nil
	}
	return *revenue, nil
}

// RevenueBetween sums the total of delivered orders in the date range
func (r *PostgresOrderRepository) RevenueBetween(ctx context.Context, start, end time.Time) (float64, error) {
	var revenue *float64

	result := r.db.WithContext(ctx).
		Model(&OrderModel{}).
		Select("SUM(total)").
		Where("status = ? AND order_date BETWEEN ? AND ?", domain.OrderStatusDelivered, start, end).
		Scan(&revenue)
	if result.Error != nil {
		return 0, apperrors.NewInternal("failed to sum revenue", result.Error)
	}
	if revenue == nil {
		return 0, nil
	}
	return *revenue, nil
}

// toModel converts a domain entity to a GORM model
func toModel(order *domain.Order) *OrderModel {
	model := &OrderModel{
		ID:                 order.ID,
		OrderNumber:        order.OrderNumber,
		UserID:             order.UserID,
		OrderDate:          order.OrderDate,
		Status:             order.Status,
		Subtotal:           order.Subtotal,
		DiscountAmount:     order.DiscountAmount,
		Total:              order.Total,
		ShippingAddress:    order.ShippingAddress,
		ShippingCity:       order.ShippingCity,
		ShippingPostalCode: order.ShippingPostalCode,
		ShippingCountry:    order.ShippingCountry,
		PaymentMethod:      order.PaymentMethod,
		Notes:              order.Notes,
	}
	for _, item := range order.Items {
		model.Items = append(model.Items, OrderItemModel{
			ID:                 item.ID,
			OrderID:            item.OrderID,
			BookID:             item.BookID,
			Title:              item.Title,
			Quantity:           item.Quantity,
			PriceAtPurchase:    item.PriceAtPurchase,
			DiscountAtPurchase: item.DiscountAtPurchase,
		})
	}
	return model
}

// toDomain converts a GORM model to a domain entity
func toDomain(model *OrderModel) *domain.Order {
	order := &domain.Order{
		ID:                 model.ID,
		OrderNumber:        model.OrderNumber,
		UserID:             model.UserID,
		OrderDate:          model.OrderDate,
		Status:             model.Status,
		Subtotal:           model.Subtotal,
		DiscountAmount:     model.DiscountAmount,
		Total:              model.Total,
		ShippingAddress:    model.ShippingAddress,
		ShippingCity:       model.ShippingCity,
		ShippingPostalCode: model.ShippingPostalCode,
		ShippingCountry:    model.ShippingCountry,
		PaymentMethod:      model.PaymentMethod,
		Notes:              model.Notes,
	}
	for _, item := range model.Items {
		order.Items = append(order.Items, domain.OrderItem{
			ID:                 item.ID,
			OrderID:            item.OrderID,
			BookID:             item.BookID,
			Title:              item.Title,
			Quantity:           item.Quantity,
			PriceAtPurchase:    item.PriceAtPurchase,
			DiscountAtPurchase: item.DiscountAtPurchase,
		})
	}
	return order
}

func toDomainSlice(models []OrderModel) []*domain.Order {
	orders := make([]*domain.Order, len(models))
	for i := range models {
		orders[i] = toDomain(&models[i])
	}
	return orders
}
