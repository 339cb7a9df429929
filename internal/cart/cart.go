package cart

import (
	"context"
	"fmt"
	"sync"
)

// Carts is the session-backed cart collaborator. A cart is the per-session,
// per-store mapping of product id to requested quantity; it holds no
// product data beyond the (id, quantity) pairs and is validated against the
// catalog only at add and checkout time.
type Carts interface {
	// Get returns the cart contents, empty map when no cart exists.
	Get(ctx context.Context, sessionID string, storeID int64) (map[int64]int, error)
	// Add accumulates qty onto the product's entry and returns the new
	// accumulated quantity.
	Add(ctx context.Context, sessionID string, storeID int64, productID int64, qty int) (int, error)
	// SetQuantity overwrites the product's entry.
	SetQuantity(ctx context.Context, sessionID string, storeID int64, productID int64, qty int) error
	// Clear drops the cart.
	Clear(ctx context.Context, sessionID string, storeID int64) error
}

// Memory is an in-process Carts implementation used in tests and when no
// session store is configured.
type Memory struct {
	mu    sync.Mutex
	carts map[string]map[int64]int
}

// NewMemory creates an empty in-memory cart holder.
func NewMemory() *Memory {
	return &Memory{carts: make(map[string]map[int64]int)}
}

func memoryKey(sessionID string, storeID int64) string {
	return fmt.Sprintf("%s:%d", sessionID, storeID)
}

// Get returns a copy of the cart contents.
func (m *Memory) Get(_ context.Context, sessionID string, storeID int64) (map[int64]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[int64]int)
	for id, qty := range m.carts[memoryKey(sessionID, storeID)] {
		out[id] = qty
	}
	return out, nil
}

// Add accumulates qty onto the product's entry.
func (m *Memory) Add(_ context.Context, sessionID string, storeID int64, productID int64, qty int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := memoryKey(sessionID, storeID)
	if m.carts[key] == nil {
		m.carts[key] = make(map[int64]int)
	}
	m.carts[key][productID] += qty
	return m.carts[key][productID], nil
}

// SetQuantity overwrites the product's entry.
func (m *Memory) SetQuantity(_ context.Context, sessionID string, storeID int64, productID int64, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := memoryKey(sessionID, storeID)
	if m.carts[key] == nil {
		m.carts[key] = make(map[int64]int)
	}
	m.carts[key][productID] = qty
	return nil
}

// Clear drops the cart.
func (m *Memory) Clear(_ context.Context, sessionID string, storeID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.carts, memoryKey(sessionID, storeID))
	return nil
}
