package service

import (
	"context"
	"testing"

	"grocery-service/internal/cart"
	"grocery-service/internal/models"
	"grocery-service/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingEvents captures published events instead of writing to kafka.
type recordingEvents struct {
	placed        []*models.OrderPlacedEvent
	statusChanged []*models.OrderStatusChangedEvent
}

func (r *recordingEvents) PublishOrderPlaced(_ context.Context, e *models.OrderPlacedEvent) error {
	r.placed = append(r.placed, e)
	return nil
}

func (r *recordingEvents) PublishOrderStatusChanged(_ context.Context, e *models.OrderStatusChangedEvent) error {
	r.statusChanged = append(r.statusChanged, e)
	return nil
}

func newTestOrderService(t *testing.T) (*OrderService, *store.Registry, *recordingEvents) {
	t.Helper()
	registry := store.NewRegistry()
	st := store.New(1, "Test Mart")
	_, err := st.AddProduct("Bananas", decimal.RequireFromString("0.69"), 100)
	require.NoError(t, err)
	_, err = st.AddProduct("Milk (1 gal)", decimal.RequireFromString("4.49"), 30)
	require.NoError(t, err)
	registry.Add(st)

	events := &recordingEvents{}
	return NewOrderService(registry, cart.NewMemory(), events), registry, events
}

func TestAddToCartAccumulates(t *testing.T) {
	svc, _, _ := newTestOrderService(t)
	ctx := context.Background()

	qty, err := svc.AddToCart(ctx, "sess-1", 1, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, qty)

	qty, err = svc.AddToCart(ctx, "sess-1", 1, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, qty)
}

func TestAddToCartValidation(t *testing.T) {
	svc, _, _ := newTestOrderService(t)
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, "sess-1", 1, 42, 1)
	assert.ErrorIs(t, err, store.ErrProductNotFound)

	_, err = svc.AddToCart(ctx, "sess-1", 1, 1, 0)
	assert.ErrorIs(t, err, store.ErrInvalidQuantity)

	_, err = svc.AddToCart(ctx, "sess-1", 1, 1, 101)
	assert.ErrorIs(t, err, store.ErrInsufficientStock)

	_, err = svc.AddToCart(ctx, "sess-1", 99, 1, 1)
	assert.ErrorIs(t, err, store.ErrStoreNotFound)
}

func TestAddToCartCapsAtStock(t *testing.T) {
	svc, _, _ := newTestOrderService(t)
	ctx := context.Background()

	// Each add is within stock, but the accumulated quantity crosses it
	// and gets capped.
	qty, err := svc.AddToCart(ctx, "sess-1", 1, 1, 60)
	require.NoError(t, err)
	assert.Equal(t, 60, qty)

	qty, err = svc.AddToCart(ctx, "sess-1", 1, 1, 60)
	require.NoError(t, err)
	assert.Equal(t, 100, qty)
}

func TestViewCart(t *testing.T) {
	svc, _, _ := newTestOrderService(t)
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, "sess-1", 1, 1, 5)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, "sess-1", 1, 2, 1)
	require.NoError(t, err)

	view, err := svc.ViewCart(ctx, "sess-1", 1)
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	assert.Equal(t, int64(1), view.Items[0].Product.ID)
	assert.True(t, view.Items[0].Subtotal.Equal(decimal.RequireFromString("3.45")))
	assert.True(t, view.Total.Equal(decimal.RequireFromString("7.94")), "total was %s", view.Total)
}

func TestViewCartSkipsDeletedProducts(t *testing.T) {
	svc, registry, _ := newTestOrderService(t)
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, "sess-1", 1, 1, 5)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, "sess-1", 1, 2, 1)
	require.NoError(t, err)

	st, err := registry.Get(1)
	require.NoError(t, err)
	st.DeleteProduct(2)

	view, err := svc.ViewCart(ctx, "sess-1", 1)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, int64(1), view.Items[0].Product.ID)
	assert.True(t, view.Total.Equal(decimal.RequireFromString("3.45")))
}

func TestCheckout(t *testing.T) {
	svc, registry, events := newTestOrderService(t)
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, "sess-1", 1, 1, 5)
	require.NoError(t, err)

	order, err := svc.Checkout(ctx, "sess-1", 1, models.FulfillmentPickup)
	require.NoError(t, err)

	assert.True(t, order.Total.Equal(decimal.RequireFromString("3.45")))
	assert.Equal(t, models.OrderStatusPending, order.Status)

	st, err := registry.Get(1)
	require.NoError(t, err)
	bananas, err := st.GetProduct(1)
	require.NoError(t, err)
	assert.Equal(t, 95, bananas.Quantity)

	// Cart is drained on success.
	view, err := svc.ViewCart(ctx, "sess-1", 1)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	require.Len(t, events.placed, 1)
	assert.Equal(t, order.ID, events.placed[0].OrderID)
	assert.Equal(t, models.EventTypeOrderPlaced, events.placed[0].EventType)
}

func TestCheckoutEmptyCart(t *testing.T) {
	svc, _, events := newTestOrderService(t)

	_, err := svc.Checkout(context.Background(), "sess-1", 1, models.FulfillmentPickup)
	assert.ErrorIs(t, err, store.ErrInvalidInput)
	assert.Empty(t, events.placed)
}

func TestCheckoutInsufficientStockKeepsCart(t *testing.T) {
	svc, registry, events := newTestOrderService(t)
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, "sess-1", 1, 1, 80)
	require.NoError(t, err)

	// Stock drops between the add and the checkout.
	st, err := registry.Get(1)
	require.NoError(t, err)
	_, err = st.PlaceOrder([]models.OrderLine{{ProductID: 1, Quantity: 50}}, models.FulfillmentPickup)
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, "sess-1", 1, models.FulfillmentDelivery)
	assert.ErrorIs(t, err, store.ErrInsufficientStock)

	// Cart survives so the customer can adjust it.
	view, err := svc.ViewCart(ctx, "sess-1", 1)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 80, view.Items[0].Quantity)
	assert.Empty(t, events.placed)
}

func TestUpdateOrderStatusPublishesEvent(t *testing.T) {
	svc, _, events := newTestOrderService(t)
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, "sess-1", 1, 1, 1)
	require.NoError(t, err)
	order, err := svc.Checkout(ctx, "sess-1", 1, models.FulfillmentPickup)
	require.NoError(t, err)

	updated, err := svc.UpdateOrderStatus(ctx, 1, order.ID, models.OrderStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusAccepted, updated.Status)

	require.Len(t, events.statusChanged, 1)
	assert.Equal(t, models.OrderStatusPending, events.statusChanged[0].OldStatus)
	assert.Equal(t, models.OrderStatusAccepted, events.statusChanged[0].NewStatus)

	_, err = svc.UpdateOrderStatus(ctx, 1, order.ID, "shipped")
	assert.ErrorIs(t, err, store.ErrInvalidInput)
}
