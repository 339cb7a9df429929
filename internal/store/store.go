package store

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"grocery-service/internal/models"

	"github.com/shopspring/decimal"
)

// Store holds one retail location's catalog and order ledger in process
// memory. State resets on restart. A single mutex serializes every
// mutation, so concurrent order placements against the same store cannot
// double-spend stock.
type Store struct {
	id   int64
	name string

	mu       sync.Mutex
	products map[int64]models.Product
	orders   []models.Order
}

// New creates an empty store for one retail location.
func New(id int64, name string) *Store {
	return &Store{
		id:       id,
		name:     name,
		products: make(map[int64]models.Product),
	}
}

// ID returns the store identifier.
func (s *Store) ID() int64 {
	return s.id
}

// Name returns the store display name.
func (s *Store) Name() string {
	return s.name
}

// nextProductID allocates one more than the current maximum, or 1 when the
// catalog is empty. Caller must hold s.mu.
func (s *Store) nextProductID() int64 {
	var max int64
	for id := range s.products {
		if id > max {
			max = id
		}
	}
	return max + 1
}

func validateProductInput(name string, price decimal.Decimal, quantity int) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: product name is required", ErrInvalidInput)
	}
	if price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	if quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", ErrInvalidInput)
	}
	return nil
}

// AddProduct inserts a new product under the next free identifier and
// returns it. Blank names and negative prices or quantities are rejected.
func (s *Store) AddProduct(name string, price decimal.Decimal, quantity int) (models.Product, error) {
	if err := validateProductInput(name, price, quantity); err != nil {
		return models.Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := models.Product{
		ID:       s.nextProductID(),
		Name:     strings.TrimSpace(name),
		Price:    price,
		Quantity: quantity,
	}
	s.products[p.ID] = p
	return p, nil
}

// UpdateProduct replaces the name, price and quantity of an existing
// product and reports whether the id matched. An absent id is a silent
// no-op.
func (s *Store) UpdateProduct(id int64, name string, price decimal.Decimal, quantity int) (bool, error) {
	if err := validateProductInput(name, price, quantity); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return false, nil
	}
	p.Name = strings.TrimSpace(name)
	p.Price = price
	p.Quantity = quantity
	s.products[id] = p
	return true, nil
}

// DeleteProduct removes a product if present, no-op otherwise.
func (s *Store) DeleteProduct(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.products, id)
}

// GetProduct retrieves a product by id.
func (s *Store) GetProduct(id int64) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return models.Product{}, fmt.Errorf("%w: %d", ErrProductNotFound, id)
	}
	return p, nil
}

// Products returns the catalog ordered by product id.
func (s *Store) Products() []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Registry holds every store in the process, keyed by store id. It is
// populated once at startup and read-only afterwards.
type Registry struct {
	stores map[int64]*Store
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{stores: make(map[int64]*Store)}
}

// Add registers a store under its id.
func (r *Registry) Add(s *Store) {
	r.stores[s.ID()] = s
}

// Get retrieves a store by id.
func (r *Registry) Get(id int64) (*Store, error) {
	s, ok := r.stores[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrStoreNotFound, id)
	}
	return s, nil
}

// Stores returns all registered stores ordered by id.
func (r *Registry) Stores() []*Store {
	out := make([]*Store, 0, len(r.stores))
	for _, s := range r.stores {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}
