package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is one catalog entry for a store. Quantity is stock on hand
// and never goes negative.
type Product struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// OrderLine is one line of a placed order. Immutable once the order exists.
type OrderLine struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// Order is a confirmed, stock-committed purchase awaiting fulfillment.
type Order struct {
	ID                int64           `json:"id"`
	Lines             []OrderLine     `json:"lines"`
	Total             decimal.Decimal `json:"total"`
	FulfillmentMethod string          `json:"fulfillment_method"`
	Status            string          `json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
}

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusAccepted  = "accepted"
	OrderStatusReady     = "ready"
	OrderStatusCompleted = "completed"
)

// Fulfillment methods
const (
	FulfillmentDelivery = "delivery"
	FulfillmentPickup   = "pickup"
)

// ValidOrderStatus reports whether s is one of the allowed order statuses.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusAccepted, OrderStatusReady, OrderStatusCompleted:
		return true
	}
	return false
}

// ValidFulfillmentMethod reports whether m is delivery or pickup.
func ValidFulfillmentMethod(m string) bool {
	return m == FulfillmentDelivery || m == FulfillmentPickup
}
