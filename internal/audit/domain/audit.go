package domain

import "time"

// Audited actions. The set mirrors the admin surface: catalog management
// and order status changes.
const (
	ActionBookCreated        = "BOOK_CREATED"
	ActionBookUpdated        = "BOOK_UPDATED"
	ActionBookDeleted        = "BOOK_DELETED"
	ActionBookDeleteBlocked  = "BOOK_DELETE_BLOCKED"
	ActionBookEnabled        = "BOOK_ENABLED"
	ActionBookDisabled       = "BOOK_DISABLED"
	ActionStockUpdated       = "STOCK_UPDATED"
	ActionPriceChanged       = "PRICE_CHANGED"
	ActionOrderStatusChanged = "ORDER_STATUS_CHANGED"
	ActionOrderCancelled     = "ORDER_CANCELLED"
)

// Entity types referenced by audit entries
const (
	EntityBook  = "book"
	EntityOrder = "order"
)

// Entry is one audit trail record. PerformedBy is zero for actions
// without an authenticated actor.
type Entry struct {
	ID          uint
	PerformedBy uint
	Action      string
	EntityType  string
	EntityID    uint
	Details     string
	Success     bool
	Timestamp   time.Time
}
