package infrastructure

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bookstore/internal/catalog/application"
	"bookstore/internal/catalog/domain"
	"bookstore/pkg/errors"
	"bookstore/pkg/middleware"
)

// HTTPHandler handles HTTP requests for the catalog
type HTTPHandler struct {
	useCase           *application.BookUseCase
	lowStockThreshold int
}

// NewHTTPHandler creates a new HTTP handler. lowStockThreshold is the
// default for the low-stock report when the request carries none.
func NewHTTPHandler(useCase *application.BookUseCase, lowStockThreshold int) *HTTPHandler {
	return &HTTPHandler{useCase: useCase, lowStockThreshold: lowStockThreshold}
}

// RegisterRoutes registers the catalog routes
func (h *HTTPHandler) RegisterRoutes(public, admin *gin.RouterGroup) {
	books := public.Group("/books")
	{
		books.GET("", h.ListBooks)
		books.GET("/search", h.SearchBooks)
		books.GET("/featured", h.FeaturedBooks)
		books.GET("/:id", h.GetBook)
	}

	adminBooks := admin.Group("/books")
	{
		adminBooks.POST("", h.CreateBook)
		adminBooks.PUT("/:id", h.UpdateBook)
		adminBooks.DELETE("/:id", h.DeleteBook)
		adminBooks.PATCH("/:id/enabled", h.SetEnabled)
		adminBooks.PATCH("/:id/featured", h.SetFeatured)
		adminBooks.PUT("/:id/stock", h.SetStock)
		adminBooks.GET("/:id/price-history", h.PriceHistory)
		adminBooks.GET("/low-stock", h.LowStockBooks)
	}
}

// BookRequest is the request body for creating or updating a book
type BookRequest struct {
	Title           string  `json:"title" binding:"required"`
	Author          string  `json:"author"`
	Price           float64 `json:"price" binding:"required,gt=0"`
	ImageURL        string  `json:"image_url"`
	Description     string  `json:"description"`
	Publisher       string  `json:"publisher"`
	PublicationYear int     `json:"publication_year"`
	Stock           int     `json:"stock" binding:"gte=0"`
	Discount        float64 `json:"discount" binding:"gte=0,lte=100"`
	Featured        bool    `json:"featured"`
}

// BookResponse is the response body for book operations
type BookResponse struct {
	ID              uint    `json:"id"`
	Title           string  `json:"title"`
	Author          string  `json:"author"`
	Price           float64 `json:"price"`
	DiscountedPrice float64 `json:"discounted_price"`
	ImageURL        string  `json:"image_url,omitempty"`
	Description     string  `json:"description,omitempty"`
	Publisher       string  `json:"publisher,omitempty"`
	PublicationYear int     `json:"publication_year,omitempty"`
	Stock           int     `json:"stock"`
	Discount        float64 `json:"discount"`
	Featured        bool    `json:"featured"`
	Enabled         bool    `json:"enabled"`
}

func toBookResponse(b *domain.Book) BookResponse {
	return BookResponse{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		Price:           b.Price,
		DiscountedPrice: b.DiscountedPrice(),
		ImageURL:        b.ImageURL,
		Description:     b.Description,
		Publisher:       b.Publisher,
		PublicationYear: b.PublicationYear,
		Stock:           b.Stock,
		Discount:        b.Discount,
		Featured:        b.Featured,
		Enabled:         b.Enabled,
	}
}

func toBookResponses(books []*domain.Book) []BookResponse {
	out := make([]BookResponse, len(books))
	for i, b := range books {
		out[i] = toBookResponse(b)
	}
	return out
}

// CreateBook handles POST /admin/books
func (h *HTTPHandler) CreateBook(c *gin.Context) {
	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	book, err := h.useCase.CreateBook(c.Request.Context(), application.CreateBookInput{
		Title:           req.Title,
		Author:          req.Author,
		Price:           req.Price,
		ImageURL:        req.ImageURL,
		Description:     req.Description,
		Publisher:       req.Publisher,
		PublicationYear: req.PublicationYear,
		Stock:           req.Stock,
		Discount:        req.Discount,
		Featured:        req.Featured,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": toBookResponse(book)})
}

// GetBook handles GET /books/:id
func (h *HTTPHandler) GetBook(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	book, err := h.useCase.GetBook(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toBookResponse(book)})
}

// UpdateBook handles PUT /admin/books/:id
func (h *HTTPHandler) UpdateBook(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	book, err := h.useCase.UpdateBook(c.Request.Context(), application.UpdateBookInput{
		ID:              id,
		Title:           req.Title,
		Author:          req.Author,
		Price:           req.Price,
		ImageURL:        req.ImageURL,
		Description:     req.Description,
		Publisher:       req.Publisher,
		PublicationYear: req.PublicationYear,
		Stock:           req.Stock,
		Discount:        req.Discount,
		Featured:        req.Featured,
		ChangedBy:       middleware.UserID(c),
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toBookResponse(book)})
}

// DeleteBook handles DELETE /admin/books/:id
func (h *HTTPHandler) DeleteBook(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.useCase.DeleteBook(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// FlagRequest is the request body for boolean flag updates
type FlagRequest struct {
	Value *bool `json:"value" binding:"required"`
}

// SetEnabled handles PATCH /admin/books/:id/enabled
func (h *HTTPHandler) SetEnabled(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req FlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	book, err := h.useCase.SetEnabled(c.Request.Context(), id, *req.Value)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toBookResponse(book)})
}

// SetFeatured handles PATCH /admin/books/:id/featured
func (h *HTTPHandler) SetFeatured(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req FlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	book, err := h.useCase.SetFeatured(c.Request.Context(), id, *req.Value)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toBookResponse(book)})
}

// StockRequest is the request body for the admin stock override
type StockRequest struct {
	Stock *int `json:"stock" binding:"required,gte=0"`
}

// SetStock handles PUT /admin/books/:id/stock
func (h *HTTPHandler) SetStock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req StockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	if err := h.useCase.SetStock(c.Request.Context(), id, *req.Stock); err != nil {
		c.Error(err)
		return
	}

	book, err := h.useCase.GetBook(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toBookResponse(book)})
}

// ListBooks handles GET /books
func (h *HTTPHandler) ListBooks(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	books, err := h.useCase.ListBooks(c.Request.Context(), page, size)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toBookResponses(books)})
}

// SearchBooks handles GET /books/search
func (h *HTTPHandler) SearchBooks(c *gin.Context) {
	keyword := c.Query("q")
	if keyword == "" {
		c.Error(errors.NewValidation("query parameter 'q' is required", nil))
		return
	}

	books, err := h.useCase.SearchBooks(c.Request.Context(), keyword)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toBookResponses(books)})
}

// FeaturedBooks handles GET /books/featured
func (h *HTTPHandler) FeaturedBooks(c *gin.Context) {
	books, err := h.useCase.FeaturedBooks(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toBookResponses(books)})
}

// PriceHistoryResponse is one price change entry
type PriceHistoryResponse struct {
	OldPrice   float64 `json:"old_price"`
	NewPrice   float64 `json:"new_price"`
	ChangedBy  uint    `json:"changed_by,omitempty"`
	ChangeDate string  `json:"change_date"`
}

// PriceHistory handles GET /admin/books/:id/price-history
func (h *HTTPHandler) PriceHistory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	entries, err := h.useCase.PriceHistory(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	out := make([]PriceHistoryResponse, len(entries))
	for i, e := range entries {
		out[i] = PriceHistoryResponse{
			OldPrice:   e.OldPrice,
			NewPrice:   e.NewPrice,
			ChangedBy:  e.ChangedBy,
			ChangeDate: e.ChangeDate.Format("2006-01-02T15:04:05Z07:00"),
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": out})
}

// LowStockBooks handles GET /admin/books/low-stock
func (h *HTTPHandler) LowStockBooks(c *gin.Context) {
	threshold, err := strconv.Atoi(c.DefaultQuery("threshold", strconv.Itoa(h.lowStockThreshold)))
	if err != nil || threshold < 0 {
		c.Error(errors.NewValidation("invalid threshold", nil))
		return
	}

	books, uerr := h.useCase.LowStockBooks(c.Request.Context(), threshold)
	if uerr != nil {
		c.Error(uerr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toBookResponses(books)})
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.Error(errors.NewValidation("invalid id", nil))
		return 0, false
	}
	return uint(id), true
}
