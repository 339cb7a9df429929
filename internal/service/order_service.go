package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"grocery-service/internal/cart"
	"grocery-service/internal/models"
	"grocery-service/internal/store"
	"grocery-service/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Events publishes domain events for downstream consumers. Publish failures
// never fail the customer request; callers log and move on.
type Events interface {
	PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
}

// OrderService handles the customer cart/checkout flow and the store-owner
// order flow.
type OrderService struct {
	stores *store.Registry
	carts  cart.Carts
	events Events
	logger *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(stores *store.Registry, carts cart.Carts, events Events) *OrderService {
	return &OrderService{
		stores: stores,
		carts:  carts,
		events: events,
		logger: util.GetLogger(),
	}
}

// CartItem is one cart entry joined against the catalog.
type CartItem struct {
	Product  models.Product  `json:"product"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CartView is the customer-facing cart with the running total.
type CartView struct {
	Items []CartItem      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// AddToCart validates the product and quantity against the catalog, then
// accumulates onto the session's cart. The accumulated quantity is capped
// at current stock, so a cart can never ask for more than the shelf holds
// at the time of the add.
func (s *OrderService) AddToCart(ctx context.Context, sessionID string, storeID, productID int64, qty int) (int, error) {
	st, err := s.stores.Get(storeID)
	if err != nil {
		return 0, err
	}

	product, err := st.GetProduct(productID)
	if err != nil {
		return 0, err
	}
	if qty <= 0 {
		return 0, store.ErrInvalidQuantity
	}
	if qty > product.Quantity {
		return 0, store.ErrInsufficientStock
	}

	accumulated, err := s.carts.Add(ctx, sessionID, storeID, productID, qty)
	if err != nil {
		return 0, err
	}
	if accumulated > product.Quantity {
		accumulated = product.Quantity
		if err := s.carts.SetQuantity(ctx, sessionID, storeID, productID, accumulated); err != nil {
			return 0, err
		}
	}

	util.CartAddsTotal.Inc()
	s.logger.Info("Added to cart",
		zap.Int64("store_id", storeID),
		zap.Int64("product_id", productID),
		zap.Int("quantity", accumulated))
	return accumulated, nil
}

// ViewCart joins the cart against the catalog. Entries whose product has
// since been deleted, and non-positive quantities, are skipped.
func (s *OrderService) ViewCart(ctx context.Context, sessionID string, storeID int64) (CartView, error) {
	st, err := s.stores.Get(storeID)
	if err != nil {
		return CartView{}, err
	}

	contents, err := s.carts.Get(ctx, sessionID, storeID)
	if err != nil {
		return CartView{}, err
	}

	view := CartView{Items: []CartItem{}, Total: decimal.Zero}
	for _, productID := range sortedKeys(contents) {
		qty := contents[productID]
		if qty <= 0 {
			continue
		}
		product, err := st.GetProduct(productID)
		if err != nil {
			continue
		}
		subtotal := product.Price.Mul(decimal.NewFromInt(int64(qty))).Round(2)
		view.Items = append(view.Items, CartItem{
			Product:  product,
			Quantity: qty,
			Subtotal: subtotal,
		})
		view.Total = view.Total.Add(product.Price.Mul(decimal.NewFromInt(int64(qty))))
	}
	view.Total = view.Total.Round(2)
	return view, nil
}

// ClearCart drops the session's cart for one store.
func (s *OrderService) ClearCart(ctx context.Context, sessionID string, storeID int64) error {
	if _, err := s.stores.Get(storeID); err != nil {
		return err
	}
	if err := s.carts.Clear(ctx, sessionID, storeID); err != nil {
		return err
	}
	util.CartClearsTotal.Inc()
	return nil
}

// Checkout turns the session's cart into a placed order and clears the
// cart on success. Lines are built in product-id order so the stock effect
// is deterministic.
func (s *OrderService) Checkout(ctx context.Context, sessionID string, storeID int64, fulfillmentMethod string) (models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Checkout")
	defer span.End()

	start := time.Now()
	defer func() {
		util.OrderPlacementLatency.Observe(time.Since(start).Seconds())
	}()

	st, err := s.stores.Get(storeID)
	if err != nil {
		return models.Order{}, err
	}

	contents, err := s.carts.Get(ctx, sessionID, storeID)
	if err != nil {
		return models.Order{}, err
	}

	lines := make([]models.OrderLine, 0, len(contents))
	for _, productID := range sortedKeys(contents) {
		if qty := contents[productID]; qty > 0 {
			lines = append(lines, models.OrderLine{ProductID: productID, Quantity: qty})
		}
	}

	order, err := st.PlaceOrder(lines, fulfillmentMethod)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues(failureReason(err)).Inc()
		return models.Order{}, err
	}

	if err := s.carts.Clear(ctx, sessionID, storeID); err != nil {
		s.logger.Error("Failed to clear cart after checkout",
			zap.Int64("store_id", storeID),
			zap.Int64("order_id", order.ID),
			zap.Error(err))
	}

	util.OrdersPlacedTotal.Inc()
	s.logger.Info("Order placed",
		zap.Int64("store_id", storeID),
		zap.Int64("order_id", order.ID),
		zap.String("total", order.Total.String()),
		zap.String("fulfillment_method", order.FulfillmentMethod))

	event := &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderPlaced,
			Timestamp: time.Now(),
		},
		StoreID:           storeID,
		OrderID:           order.ID,
		Total:             order.Total,
		FulfillmentMethod: order.FulfillmentMethod,
		Lines:             order.Lines,
	}
	if err := s.events.PublishOrderPlaced(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderPlaced event", zap.Error(err))
	}

	return order, nil
}

// GetOrder retrieves one order for the confirmation page.
func (s *OrderService) GetOrder(storeID, orderID int64) (models.Order, error) {
	st, err := s.stores.Get(storeID)
	if err != nil {
		return models.Order{}, err
	}
	return st.GetOrder(orderID)
}

// Orders returns a store's ledger in placement order.
func (s *OrderService) Orders(storeID int64) ([]models.Order, error) {
	st, err := s.stores.Get(storeID)
	if err != nil {
		return nil, err
	}
	return st.Orders(), nil
}

// UpdateOrderStatus moves an order to a new status and publishes the
// change.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, storeID, orderID int64, status string) (models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateOrderStatus")
	defer span.End()

	st, err := s.stores.Get(storeID)
	if err != nil {
		return models.Order{}, err
	}

	oldStatus, err := st.UpdateOrderStatus(orderID, status)
	if err != nil {
		return models.Order{}, err
	}

	util.OrderStatusUpdatesTotal.WithLabelValues(status).Inc()
	s.logger.Info("Order status updated",
		zap.Int64("store_id", storeID),
		zap.Int64("order_id", orderID),
		zap.String("old_status", oldStatus),
		zap.String("new_status", status))

	event := &models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderStatusChanged,
			Timestamp: time.Now(),
		},
		StoreID:   storeID,
		OrderID:   orderID,
		OldStatus: oldStatus,
		NewStatus: status,
	}
	if err := s.events.PublishOrderStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
	}

	return st.GetOrder(orderID)
}

func sortedKeys(m map[int64]int) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, store.ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, store.ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, store.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, store.ErrInvalidInput):
		return "invalid_input"
	}
	return "internal"
}
