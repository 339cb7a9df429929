package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"grocery-service/internal/models"
	"grocery-service/internal/service"
	"grocery-service/internal/store"
	"grocery-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

const sessionHeader = "X-Session-ID"

// Handler contains HTTP handlers
type Handler struct {
	catalog *service.CatalogService
	orders  *service.OrderService
}

// NewHandler creates a new HTTP handler
func NewHandler(catalog *service.CatalogService, orders *service.OrderService) *Handler {
	return &Handler{
		catalog: catalog,
		orders:  orders,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/stores", h.listStores)
		v1.GET("/stores/:id", h.getStore)

		v1.GET("/stores/:id/products", h.listProducts)
		v1.POST("/stores/:id/products", h.addProduct)
		v1.PUT("/stores/:id/products/:productID", h.updateProduct)
		v1.DELETE("/stores/:id/products/:productID", h.deleteProduct)

		v1.GET("/stores/:id/cart", h.viewCart)
		v1.POST("/stores/:id/cart/items", h.addToCart)
		v1.DELETE("/stores/:id/cart", h.clearCart)
		v1.POST("/stores/:id/checkout", h.checkout)

		v1.GET("/stores/:id/orders", h.listOrders)
		v1.GET("/stores/:id/orders/:orderID", h.getOrder)
		v1.PUT("/stores/:id/orders/:orderID/status", h.updateOrderStatus)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) listStores(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"stores": h.catalog.Stores()})
}

func (h *Handler) getStore(c *gin.Context) {
	storeID, ok := pathID(c, "id")
	if !ok {
		return
	}

	summary, err := h.catalog.GetStore(storeID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) listProducts(c *gin.Context) {
	storeID, ok := pathID(c, "id")
	if !ok {
		return
	}

	products, err := h.catalog.Products(storeID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

type productRequest struct {
	Name     string `json:"name" binding:"required"`
	Price    string `json:"price" binding:"required"`
	Quantity int    `json:"quantity"`
}

func (h *Handler) addProduct(c *gin.Context) {
	storeID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price"})
		return
	}

	product, err := h.catalog.AddProduct(c.Request.Context(), storeID, req.Name, price, req.Quantity)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *Handler) updateProduct(c *gin.Context) {
	storeID, ok := pathID(c, "id")
	if !ok {
		return
	}
	productID, ok := pathID(c, "productID")
	if !ok {
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price"})
		return
	}

	if err := h.catalog.UpdateProduct(c.Request.Context(), storeID, productID, req.Name, price, req.Quantity); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) deleteProduct(c *gin.Context) {
	storeID, ok := pathID(c, "id")
	if !ok {
		return
	}
	productID, ok := pathID(c, "productID")
	if !ok {
		return
	}

	if err := h.catalog.DeleteProduct(c.Request.Context(), storeID, productID); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) viewCart(c *gin.Context) {
	storeID, ok := pathID(c, "id")
	if !ok {
		return
	}
	sessionID := sessionFromRequest(c)

	view, err := h.orders.ViewCart(c.Request.Context(), sessionID, storeID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type addToCartRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity"`
}

func (h *Handler) addToCart(c *gin.Context) {
	storeID, ok := pathID(c, "id")
	if !ok {
		return
	}
	sessionID := sessionFromRequest(c)

	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	qty, err := h.orders.AddToCart(c.Request.Context(), sessionID, storeID, req.ProductID, req.Quantity)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"product_id": req.ProductID,
		"quantity":   qty,
	})
}

func (h *Handler) clearCart(c *gin.Context) {
	storeID, ok := pathID(c, "id")
	if !ok {
		return
	}
	sessionID := sessionFromRequest(c)

	if err := h.orders.ClearCart(c.Request.Context(), sessionID, storeID); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type checkoutRequest struct {
	FulfillmentMethod string `json:"fulfillment_method"`
}

func (h *Handler) checkout(c *gin.Context) {
	storeID, ok := pathID(c, "id")
	if !ok {
		return
	}
	sessionID := sessionFromRequest(c)

	// An empty body is allowed; the fulfillment method then defaults to
	// pickup.
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}
	if req.FulfillmentMethod == "" {
		req.FulfillmentMethod = models.FulfillmentPickup
	}

	order, err := h.orders.Checkout(c.Request.Context(), sessionID, storeID, req.FulfillmentMethod)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) listOrders(c *gin.Context) {
	storeID, ok := pathID(c, "id")
	if !ok {
		return
	}

	orders, err := h.orders.Orders(storeID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *Handler) getOrder(c *gin.Context) {
	storeID, ok := pathID(c, "id")
	if !ok {
		return
	}
	orderID, ok := pathID(c, "orderID")
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(storeID, orderID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) updateOrderStatus(c *gin.Context) {
	storeID, ok := pathID(c, "id")
	if !ok {
		return
	}
	orderID, ok := pathID(c, "orderID")
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	order, err := h.orders.UpdateOrderStatus(c.Request.Context(), storeID, orderID, req.Status)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// sessionID reads the customer session from the request header, minting a
// fresh one when absent. The id is echoed back so clients can stick to it.
func sessionFromRequest(c *gin.Context) string {
	id := c.GetHeader(sessionHeader)
	if id == "" {
		id = uuid.New().String()
	}
	c.Header(sessionHeader, id)
	return id
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

// abortWithError maps domain errors onto HTTP statuses.
func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrStoreNotFound),
		errors.Is(err, store.ErrProductNotFound),
		errors.Is(err, store.ErrOrderNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrInsufficientStock):
		status = http.StatusConflict
	case errors.Is(err, store.ErrInvalidQuantity),
		errors.Is(err, store.ErrInvalidInput):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
