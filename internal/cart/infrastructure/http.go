package infrastructure

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bookstore/internal/cart/application"
	"bookstore/pkg/errors"
	"bookstore/pkg/middleware"
)

// HTTPHandler handles HTTP requests for the cart
type HTTPHandler struct {
	useCase *application.CartUseCase
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(useCase *application.CartUseCase) *HTTPHandler {
	return &HTTPHandler{useCase: useCase}
}

// RegisterRoutes registers the cart routes
func (h *HTTPHandler) RegisterRoutes(r *gin.RouterGroup) {
	cart := r.Group("/cart")
	{
		cart.GET("", h.GetCart)
		cart.POST("/items", h.AddItem)
		cart.PUT("/items/:bookId", h.UpdateQuantity)
		cart.DELETE("/items/:bookId", h.RemoveItem)
		cart.DELETE("", h.Clear)
	}
}

// AddItemRequest is the request body for adding a book to the cart
type AddItemRequest struct {
	BookID   uint `json:"book_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required,gt=0"`
}

// UpdateQuantityRequest is the request body for changing a line's quantity
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// CartItemResponse is one line of the cart response
type CartItemResponse struct {
	BookID   uint    `json:"book_id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Discount float64 `json:"discount"`
	Quantity int     `json:"quantity"`
	Subtotal float64 `json:"subtotal"`
	AddedAt  string  `json:"added_at"`
}

// CartResponse is the response body for the full cart
type CartResponse struct {
	Items         []CartItemResponse `json:"items"`
	TotalQuantity int                `json:"total_quantity"`
	TotalPrice    float64            `json:"total_price"`
}

// GetCart handles GET /cart
func (h *HTTPHandler) GetCart(c *gin.Context) {
	userID := middleware.UserID(c)

	items, err := h.useCase.Items(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	resp := CartResponse{Items: make([]CartItemResponse, len(items))}
	for i, item := range items {
		resp.Items[i] = CartItemResponse{
			BookID:   item.Book.ID,
			Title:    item.Book.Title,
			Price:    item.Book.Price,
			Discount: item.Book.Discount,
			Quantity: item.Line.Quantity,
			Subtotal: item.Subtotal,
			AddedAt:  item.Line.AddedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		resp.TotalQuantity += item.Line.Quantity
		resp.TotalPrice += item.Subtotal
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// AddItem handles POST /cart/items
func (h *HTTPHandler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	userID := middleware.UserID(c)
	if err := h.useCase.AddItem(c.Request.Context(), userID, req.BookID, req.Quantity); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UpdateQuantity handles PUT /cart/items/:bookId
func (h *HTTPHandler) UpdateQuantity(c *gin.Context) {
	bookID, ok := pathBookID(c)
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	userID := middleware.UserID(c)
	if err := h.useCase.UpdateQuantity(c.Request.Context(), userID, bookID, *req.Quantity); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RemoveItem handles DELETE /cart/items/:bookId
func (h *HTTPHandler) RemoveItem(c *gin.Context) {
	bookID, ok := pathBookID(c)
	if !ok {
		return
	}

	userID := middleware.UserID(c)
	if err := h.useCase.RemoveItem(c.Request.Context(), userID, bookID); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Clear handles DELETE /cart
func (h *HTTPHandler) Clear(c *gin.Context) {
	userID := middleware.UserID(c)
	if err := h.useCase.Clear(c.Request.Context(), userID); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func pathBookID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("bookId"), 10, 32)
	if err != nil {
		c.Error(errors.NewValidation("invalid book id", nil))
		return 0, false
	}
	return uint(id), true
}
