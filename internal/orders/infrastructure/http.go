package infrastructure

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	cartapp "bookstore/internal/cart/application"
	"bookstore/internal/orders/application"
	"bookstore/internal/orders/domain"
	"bookstore/pkg/errors"
	"bookstore/pkg/middleware"
)

// HTTPHandler handles HTTP requests for orders
type HTTPHandler struct {
	useCase *application.OrderUseCase
	cart    *cartapp.CartUseCase
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(useCase *application.OrderUseCase, cart *cartapp.CartUseCase) *HTTPHandler {
	return &HTTPHandler{useCase: useCase, cart: cart}
}

// RegisterRoutes registers the order routes
func (h *HTTPHandler) RegisterRoutes(user, admin *gin.RouterGroup) {
	orders := user.Group("/orders")
	{
		orders.POST("", h.Checkout)
		orders.GET("", h.ListOwnOrders)
		orders.GET("/:id", h.GetOwnOrder)
		orders.POST("/:id/cancel", h.CancelOwnOrder)
	}

	adminOrders := admin.Group("/orders")
	{
		adminOrders.GET("", h.ListOrders)
		adminOrders.GET("/number/:number", h.GetByNumber)
		adminOrders.GET("/status/:status", h.ListByStatus)
		adminOrders.PATCH("/:id/status", h.UpdateStatus)
		adminOrders.GET("/stats", h.Stats)
	}
}

// CheckoutRequest is the request body for creating an order from the cart
type CheckoutRequest struct {
	ShippingAddress    string `json:"shipping_address" binding:"required"`
	ShippingCity       string `json:"shipping_city"`
	ShippingPostalCode string `json:"shipping_postal_code"`
	ShippingCountry    string `json:"shipping_country"`
	Notes              string `json:"notes"`
}

// OrderItemResponse is one line of an order response
type OrderItemResponse struct {
	BookID             uint    `json:"book_id"`
	Title              string  `json:"title"`
	Quantity           int     `json:"quantity"`
	PriceAtPurchase    float64 `json:"price_at_purchase"`
	DiscountAtPurchase float64 `json:"discount_at_purchase"`
	Subtotal           float64 `json:"subtotal"`
}

// OrderResponse is the response body for order operations
type OrderResponse struct {
	ID              uint                `json:"id"`
	OrderNumber     string              `json:"order_number"`
	UserID          uint                `json:"user_id"`
	OrderDate       string              `json:"order_date"`
	Status          string              `json:"status"`
	Subtotal        float64             `json:"subtotal"`
	DiscountAmount  float64             `json:"discount_amount"`
	Total           float64             `json:"total"`
	ShippingAddress string              `json:"shipping_address"`
	PaymentMethod   string              `json:"payment_method"`
	Items           []OrderItemResponse `json:"items"`
}

func toOrderResponse(o *domain.Order) OrderResponse {
	resp := OrderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		UserID:          o.UserID,
		OrderDate:       o.OrderDate.Format("2006-01-02T15:04:05Z07:00"),
		Status:          string(o.Status),
		Subtotal:        o.Subtotal,
		DiscountAmount:  o.DiscountAmount,
		Total:           o.Total,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			BookID:             item.BookID,
			Title:              item.Title,
			Quantity:           item.Quantity,
			PriceAtPurchase:    item.PriceAtPurchase,
			DiscountAtPurchase: item.DiscountAtPurchase,
			Subtotal:           item.Subtotal(),
		})
	}
	return resp
}

func toOrderResponses(orders []*domain.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = toOrderResponse(o)
	}
	return out
}

// Checkout handles POST /orders: it snapshots the user's cart, creates
// the order, and clears the cart once the order is persisted.
func (h *HTTPHandler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	userID := middleware.UserID(c)
	ctx := c.Request.Context()

	items, err := h.cart.Items(ctx, userID)
	if err != nil {
		c.Error(err)
		return
	}
	if len(items) == 0 {
		c.Error(errors.NewValidation("cart is empty", nil))
		return
	}

	lines := make([]application.CheckoutLine, len(items))
	for i, item := range items {
		lines[i] = application.CheckoutLine{
			BookID:   item.Book.ID,
			Title:    item.Book.Title,
			Quantity: item.Line.Quantity,
			Price:    item.Book.Price,
			Discount: item.Book.Discount,
		}
	}

	order, err := h.useCase.CreateOrder(ctx, application.CreateOrderInput{
		UserID: userID,
		Lines:  lines,
		Shipping: domain.ShippingInfo{
			Address:    req.ShippingAddress,
			City:       req.ShippingCity,
			PostalCode: req.ShippingPostalCode,
			Country:    req.ShippingCountry,
			Notes:      req.Notes,
		},
	})
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.cart.Clear(ctx, userID); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": toOrderResponse(order)})
}

// ListOwnOrders handles GET /orders
func (h *HTTPHandler) ListOwnOrders(c *gin.Context) {
	userID := middleware.UserID(c)

	orders, err := h.useCase.ListUserOrders(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toOrderResponses(orders)})
}

// GetOwnOrder handles GET /orders/:id
func (h *HTTPHandler) GetOwnOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	order, err := h.useCase.GetOrder(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	if order.UserID != middleware.UserID(c) {
		c.Error(errors.NewForbidden("order belongs to another user"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toOrderResponse(order)})
}

// CancelOwnOrder handles POST /orders/:id/cancel
func (h *HTTPHandler) CancelOwnOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	order, err := h.useCase.CancelOwnOrder(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toOrderResponse(order)})
}

// ListOrders handles GET /admin/orders
func (h *HTTPHandler) ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	orders, err := h.useCase.ListOrders(c.Request.Context(), page, size)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toOrderResponses(orders)})
}

// GetByNumber handles GET /admin/orders/number/:number
func (h *HTTPHandler) GetByNumber(c *gin.Context) {
	order, err := h.useCase.GetByOrderNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toOrderResponse(order)})
}

// ListByStatus handles GET /admin/orders/status/:status
func (h *HTTPHandler) ListByStatus(c *gin.Context) {
	status, err := domain.ParseStatus(c.Param("status"))
	if err != nil {
		c.Error(err)
		return
	}

	orders, uerr := h.useCase.ListByStatus(c.Request.Context(), status)
	if uerr != nil {
		c.Error(uerr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toOrderResponses(orders)})
}

// UpdateStatusRequest is the request body for the back-office transition
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus handles PATCH /admin/orders/:id/status
func (h *HTTPHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		c.Error(err)
		return
	}

	order, uerr := h.useCase.UpdateStatus(c.Request.Context(), id, status)
	if uerr != nil {
		c.Error(uerr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toOrderResponse(order)})
}

// StatsResponse is the back-office dashboard summary
type StatsResponse struct {
	Pending      int64   `json:"pending"`
	Processing   int64   `json:"processing"`
	Shipped      int64   `json:"shipped"`
	Delivered    int64   `json:"delivered"`
	Cancelled    int64   `json:"cancelled"`
	TotalRevenue float64 `json:"total_revenue"`
}

// Stats handles GET /admin/orders/stats. An optional from/to pair
// (RFC 3339 dates) narrows the revenue figure.
func (h *HTTPHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()
	var resp StatsResponse
	var err error

	counts := []struct {
		status domain.OrderStatus
		dst    *int64
	}{
		{domain.OrderStatusPending, &resp.Pending},
		{domain.OrderStatusProcessing, &resp.Processing},
		{domain.OrderStatusShipped, &resp.Shipped},
		{domain.OrderStatusDelivered, &resp.Delivered},
		{domain.OrderStatusCancelled, &resp.Cancelled},
	}
	for _, entry := range counts {
		*entry.dst, err = h.useCase.CountByStatus(ctx, entry.status)
		if err != nil {
			c.Error(err)
			return
		}
	}

	fromParam, toParam := c.Query("from"), c.Query("to")
	if fromParam != "" && toParam != "" {
		from, ferr := time.Parse("2006-01-02", fromParam)
		to, terr := time.Parse("2006-01-02", toParam)
		if ferr != nil || terr != nil {
			c.Error(errors.NewValidation("from/to must be YYYY-MM-DD dates", nil))
			return
		}
		resp.TotalRevenue, err = h.useCase.RevenueBetween(ctx, from, to.Add(24*time.Hour))
	} else {
		resp.TotalRevenue, err = h.useCase.TotalRevenue(ctx)
	}
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.Error(errors.NewValidation("invalid id", nil))
		return 0, false
	}
	return uint(id), true
}
