package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"grocery-service/internal/cart"
	"grocery-service/internal/models"
	"grocery-service/internal/service"
	"grocery-service/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopEvents struct{}

func (noopEvents) PublishOrderPlaced(context.Context, *models.OrderPlacedEvent) error { return nil }
func (noopEvents) PublishOrderStatusChanged(context.Context, *models.OrderStatusChangedEvent) error {
	return nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry := store.Seed()
	catalog := service.NewCatalogService(registry)
	orders := service.NewOrderService(registry, cart.NewMemory(), noopEvents{})

	router := gin.New()
	NewHandler(catalog, orders).SetupRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestListStores(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/stores", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Stores []service.StoreSummary `json:"stores"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Stores, 3)
	assert.Equal(t, "Sunnyvale Fresh Mart", resp.Stores[0].Name)
}

func TestAddProduct(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/stores/1/products",
		map[string]interface{}{"name": "Oranges (lb)", "price": "1.79", "quantity": 25}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var p models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, int64(4), p.ID)
	assert.Equal(t, "Oranges (lb)", p.Name)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/stores/1/products",
		map[string]interface{}{"name": "Bad", "price": "not-a-price"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/stores/1/products",
		map[string]interface{}{"name": "Bad", "price": "-1.00"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/stores/99/products",
		map[string]interface{}{"name": "Nowhere", "price": "1.00"}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateProductMissingIDIsNoOp(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPut, "/api/v1/stores/1/products/999",
		map[string]interface{}{"name": "Ghost", "price": "1.00", "quantity": 1}, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCartCheckoutFlow(t *testing.T) {
	router := newTestRouter(t)
	session := map[string]string{"X-Session-ID": "test-session"}

	rec := doJSON(t, router, http.MethodPost, "/api/v1/stores/1/cart/items",
		map[string]interface{}{"product_id": 1, "quantity": 5}, session)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/stores/1/cart", nil, session)
	require.Equal(t, http.StatusOK, rec.Code)
	var view service.CartView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Len(t, view.Items, 1)
	assert.Equal(t, "3.45", view.Total.StringFixed(2))

	rec = doJSON(t, router, http.MethodPost, "/api/v1/stores/1/checkout",
		map[string]interface{}{"fulfillment_method": "pickup"}, session)
	require.Equal(t, http.StatusCreated, rec.Code)

	var order models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, int64(1), order.ID)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, "3.45", order.Total.StringFixed(2))

	// Checking out again hits the now-empty cart.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/stores/1/checkout", nil, session)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddToCartInsufficientStock(t *testing.T) {
	router := newTestRouter(t)
	session := map[string]string{"X-Session-ID": "test-session"}

	rec := doJSON(t, router, http.MethodPost, "/api/v1/stores/1/cart/items",
		map[string]interface{}{"product_id": 1, "quantity": 200}, session)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSessionMintedWhenHeaderMissing(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/stores/1/cart", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Session-ID"))
}

func TestOrderStatusUpdate(t *testing.T) {
	router := newTestRouter(t)
	session := map[string]string{"X-Session-ID": "test-session"}

	rec := doJSON(t, router, http.MethodPost, "/api/v1/stores/1/cart/items",
		map[string]interface{}{"product_id": 1, "quantity": 1}, session)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, router, http.MethodPost, "/api/v1/stores/1/checkout", nil, session)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPut, "/api/v1/stores/1/orders/1/status",
		map[string]interface{}{"status": "accepted"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var order models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, models.OrderStatusAccepted, order.Status)

	rec = doJSON(t, router, http.MethodPut, "/api/v1/stores/1/orders/1/status",
		map[string]interface{}{"status": "shipped"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPut, "/api/v1/stores/1/orders/42/status",
		map[string]interface{}{"status": "ready"}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
