package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// allowedNext is the order status transition table. CANCELLED is terminal
// (no outgoing transitions) and reachable from every other status; the
// remaining statuses only move forward.
var allowedNext = map[OrderStatus]map[OrderStatus]bool{
	OrderStatusPending: {
		OrderStatusProcessing: true,
		OrderStatusShipped:    true,
		OrderStatusDelivered:  true,
		OrderStatusCancelled:  true,
	},
	OrderStatusProcessing: {
		OrderStatusShipped:   true,
		OrderStatusDelivered: true,
		OrderStatusCancelled: true,
	},
	OrderStatusShipped: {
		OrderStatusDelivered: true,
		OrderStatusCancelled: true,
	},
	OrderStatusDelivered: {
		OrderStatusCancelled: true,
	},
	OrderStatusCancelled: {},
}

// ParseStatus converts a string to an OrderStatus
func ParseStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToUpper(s))
	if _, ok := allowedNext[status]; !ok {
		return "", NewUnknownStatus(s)
	}
	return status, nil
}

// IsTerminal reports whether no transition out of the status is permitted
func (s OrderStatus) IsTerminal() bool {
	return len(allowedNext[s]) == 0
}

// CheckTransition validates a transition against the table. Re-asserting
// the current status is allowed for idempotent callers.
func CheckTransition(from, to OrderStatus) error {
	if from.IsTerminal() {
		return NewTerminalState(from)
	}
	if from == to {
		return nil
	}
	if !allowedNext[from][to] {
		return NewInvalidTransition(from, to)
	}
	return nil
}

// Order is an immutable record of a purchase. Item prices and discounts
// are frozen at creation time; only Status changes afterwards, and only
// through the transition table.
type Order struct {
	ID                 uint
	OrderNumber        string
	UserID             uint
	OrderDate          time.Time
	Status             OrderStatus
	Subtotal           float64
	DiscountAmount     float64
	Total              float64
	ShippingAddress    string
	ShippingCity       string
	ShippingPostalCode string
	ShippingCountry    string
	PaymentMethod      string
	Notes              string
	Items              []OrderItem
}

// OrderItem is one line of an order with the price snapshot taken at
// purchase time
type OrderItem struct {
	ID                 uint
	OrderID            uint
	BookID             uint
	Title              string
	Quantity           int
	PriceAtPurchase    float64
	DiscountAtPurchase float64
}

// Subtotal returns the line total at the frozen price
func (i *OrderItem) Subtotal() float64 {
	return i.PriceAtPurchase * (1 - i.DiscountAtPurchase/100) * float64(i.Quantity)
}

// NewOrderNumber generates an order number in the externally visible
// format ORD-YYYYMMDD-XXXXXXXX (8 uppercase hex chars). Uniqueness is
// enforced by the store; a collision is retried with a fresh number.
func NewOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix)
}

// ShippingInfo carries the checkout form fields
type ShippingInfo struct {
	Address    string
	City       string
	PostalCode string
	Country    string
	Notes      string
}

// Validate validates the shipping fields required at checkout
func (s ShippingInfo) Validate() error {
	if s.Address == "" {
		return ErrShippingAddressRequired
	}
	return nil
}
