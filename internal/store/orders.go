package store

import (
	"fmt"
	"time"

	"grocery-service/internal/models"

	"github.com/shopspring/decimal"
)

// nextOrderID allocates one more than the current maximum order id, or 1
// when the ledger is empty. Caller must hold s.mu.
func (s *Store) nextOrderID() int64 {
	var max int64
	for _, o := range s.orders {
		if o.ID > max {
			max = o.ID
		}
	}
	return max + 1
}

// PlaceOrder validates every line against current stock, decrements stock,
// and appends a pending order to the ledger. Validation runs to completion
// before any stock is touched, so a rejected order leaves the catalog and
// the ledger completely unchanged. The total is the exact sum of
// price x quantity over all lines, rounded once to currency precision.
func (s *Store) PlaceOrder(lines []models.OrderLine, fulfillmentMethod string) (models.Order, error) {
	if len(lines) == 0 {
		return models.Order{}, fmt.Errorf("%w: order has no lines", ErrInvalidInput)
	}
	if !models.ValidFulfillmentMethod(fulfillmentMethod) {
		return models.Order{}, fmt.Errorf("%w: unknown fulfillment method %q", ErrInvalidInput, fulfillmentMethod)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// First pass: validate all lines and accumulate the total. Required
	// quantities are aggregated per product, so several lines for the
	// same product are checked against stock as a whole.
	total := decimal.Zero
	need := make(map[int64]int, len(lines))
	for _, line := range lines {
		p, ok := s.products[line.ProductID]
		if !ok {
			return models.Order{}, fmt.Errorf("%w: %d", ErrProductNotFound, line.ProductID)
		}
		if line.Quantity <= 0 {
			return models.Order{}, fmt.Errorf("%w: %d for %q", ErrInvalidQuantity, line.Quantity, p.Name)
		}
		need[line.ProductID] += line.Quantity
		if need[line.ProductID] > p.Quantity {
			return models.Order{}, fmt.Errorf("%w: not enough stock for %q", ErrInsufficientStock, p.Name)
		}
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	// Second pass: apply the stock decrement.
	for productID, qty := range need {
		p := s.products[productID]
		p.Quantity -= qty
		s.products[productID] = p
	}

	order := models.Order{
		ID:                s.nextOrderID(),
		Lines:             append([]models.OrderLine(nil), lines...),
		Total:             total.Round(2),
		FulfillmentMethod: fulfillmentMethod,
		Status:            models.OrderStatusPending,
		CreatedAt:         time.Now(),
	}
	s.orders = append(s.orders, order)
	return cloneOrder(order), nil
}

// GetOrder retrieves an order by id.
func (s *Store) GetOrder(id int64) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.orders {
		if o.ID == id {
			return cloneOrder(o), nil
		}
	}
	return models.Order{}, fmt.Errorf("%w: %d", ErrOrderNotFound, id)
}

// Orders returns the ledger in placement order.
func (s *Store) Orders() []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, cloneOrder(o))
	}
	return out
}

// UpdateOrderStatus sets an order's status and returns the previous one.
// Any of the allowed statuses may follow any other; there is no
// terminal-state protection.
func (s *Store) UpdateOrderStatus(id int64, status string) (string, error) {
	if !models.ValidOrderStatus(status) {
		return "", fmt.Errorf("%w: unknown order status %q", ErrInvalidInput, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.orders {
		if s.orders[i].ID == id {
			old := s.orders[i].Status
			s.orders[i].Status = status
			return old, nil
		}
	}
	return "", fmt.Errorf("%w: %d", ErrOrderNotFound, id)
}

func cloneOrder(o models.Order) models.Order {
	o.Lines = append([]models.OrderLine(nil), o.Lines...)
	return o
}
