package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeOrderPlaced        = "ORDER_PLACED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderPlacedEvent published when a customer order is placed
type OrderPlacedEvent struct {
	BaseEvent
	StoreID           int64           `json:"store_id"`
	OrderID           int64           `json:"order_id"`
	Total             decimal.Decimal `json:"total"`
	FulfillmentMethod string          `json:"fulfillment_method"`
	Lines             []OrderLine     `json:"lines"`
}

// OrderStatusChangedEvent published when the store owner moves an order
// to a new status
type OrderStatusChangedEvent struct {
	BaseEvent
	StoreID   int64  `json:"store_id"`
	OrderID   int64  `json:"order_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}
