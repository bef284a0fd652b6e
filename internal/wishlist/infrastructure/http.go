package infrastructure

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bookstore/internal/wishlist/application"
	"bookstore/pkg/errors"
	"bookstore/pkg/middleware"
)

// HTTPHandler handles HTTP requests for the wishlist
type HTTPHandler struct {
	useCase *application.WishlistUseCase
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(useCase *application.WishlistUseCase) *HTTPHandler {
	return &HTTPHandler{useCase: useCase}
}

// RegisterRoutes registers the wishlist routes
func (h *HTTPHandler) RegisterRoutes(r *gin.RouterGroup) {
	wishlist := r.Group("/wishlist")
	{
		wishlist.GET("", h.GetWishlist)
		wishlist.POST("/:bookId", h.Add)
		wishlist.DELETE("/:bookId", h.Remove)
		wishlist.GET("/:bookId", h.Contains)
	}
}

// WishlistItemResponse is one entry of the wishlist response
type WishlistItemResponse struct {
	BookID   uint    `json:"book_id"`
	Title    string  `json:"title"`
	Author   string  `json:"author"`
	Price    float64 `json:"price"`
	Discount float64 `json:"discount"`
	InStock  bool    `json:"in_stock"`
	AddedAt  string  `json:"added_at"`
}

// GetWishlist handles GET /wishlist
func (h *HTTPHandler) GetWishlist(c *gin.Context) {
	userID := middleware.UserID(c)

	items, err := h.useCase.Items(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	resp := make([]WishlistItemResponse, len(items))
	for i, item := range items {
		resp[i] = WishlistItemResponse{
			BookID:   item.Book.ID,
			Title:    item.Book.Title,
			Author:   item.Book.Author,
			Price:    item.Book.Price,
			Discount: item.Book.Discount,
			InStock:  item.Book.Stock > 0,
			AddedAt:  item.Entry.AddedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// Add handles POST /wishlist/:bookId
func (h *HTTPHandler) Add(c *gin.Context) {
	bookID, ok := pathBookID(c)
	if !ok {
		return
	}

	userID := middleware.UserID(c)
	if err := h.useCase.Add(c.Request.Context(), userID, bookID); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Remove handles DELETE /wishlist/:bookId
func (h *HTTPHandler) Remove(c *gin.Context) {
	bookID, ok := pathBookID(c)
	if !ok {
		return
	}

	userID := middleware.UserID(c)
	if err := h.useCase.Remove(c.Request.Context(), userID, bookID); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Contains handles GET /wishlist/:bookId
func (h *HTTPHandler) Contains(c *gin.Context) {
	bookID, ok := pathBookID(c)
	if !ok {
		return
	}

	userID := middleware.UserID(c)
	listed, err := h.useCase.Contains(c.Request.Context(), userID, bookID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"listed": listed}})
}

func pathBookID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("bookId"), 10, 32)
	if err != nil {
		c.Error(errors.NewValidation("invalid book id", nil))
		return 0, false
	}
	return uint(id), true
}
