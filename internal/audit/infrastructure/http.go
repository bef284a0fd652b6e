package infrastructure

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bookstore/internal/audit/application"
	"bookstore/internal/audit/domain"
	"bookstore/pkg/errors"
)

// HTTPHandler handles HTTP requests for the audit trail
type HTTPHandler struct {
	useCase *application.AuditUseCase
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(useCase *application.AuditUseCase) *HTTPHandler {
	return &HTTPHandler{useCase: useCase}
}

// RegisterRoutes registers the audit routes
func (h *HTTPHandler) RegisterRoutes(admin *gin.RouterGroup) {
	audit := admin.Group("/audit")
	{
		audit.GET("", h.ListEntries)
		audit.GET("/recent", h.RecentEntries)
	}
}

// EntryResponse is one audit entry in responses
type EntryResponse struct {
	ID          uint   `json:"id"`
	PerformedBy uint   `json:"performed_by,omitempty"`
	Action      string `json:"action"`
	EntityType  string `json:"entity_type,omitempty"`
	EntityID    uint   `json:"entity_id,omitempty"`
	Details     string `json:"details,omitempty"`
	Success     bool   `json:"success"`
	Timestamp   string `json:"timestamp"`
}

func toEntryResponses(entries []*domain.Entry) []EntryResponse {
	out := make([]EntryResponse, len(entries))
	for i, e := range entries {
		out[i] = EntryResponse{
			ID:          e.ID,
			PerformedBy: e.PerformedBy,
			Action:      e.Action,
			EntityType:  e.EntityType,
			EntityID:    e.EntityID,
			Details:     e.Details,
			Success:     e.Success,
			Timestamp:   e.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		}
	}
	return out
}

// ListEntries handles GET /admin/audit. Optional filters: action, or
// entity_type together with entity_id; otherwise a page of the trail.
func (h *HTTPHandler) ListEntries(c *gin.Context) {
	ctx := c.Request.Context()

	if action := c.Query("action"); action != "" {
		entries, err := h.useCase.EntriesByAction(ctx, action)
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": toEntryResponses(entries)})
		return
	}

	if entityType := c.Query("entity_type"); entityType != "" {
		entityID, err := strconv.ParseUint(c.Query("entity_id"), 10, 32)
		if err != nil {
			c.Error(errors.NewValidation("entity_id is required with entity_type", nil))
			return
		}
		entries, uerr := h.useCase.EntriesByEntity(ctx, entityType, uint(entityID))
		if uerr != nil {
			c.Error(uerr)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": toEntryResponses(entries)})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	entries, err := h.useCase.ListEntries(ctx, page, size)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toEntryResponses(entries)})
}

// RecentEntries handles GET /admin/audit/recent
func (h *HTTPHandler) RecentEntries(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	entries, err := h.useCase.RecentEntries(c.Request.Context(), limit)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toEntryResponses(entries)})
}
