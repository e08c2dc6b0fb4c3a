package handler

import (
	"github.com/gin-gonic/gin"
	inventoryapp "github.com/mizan-erp/backend/internal/application/inventory"
)

// CountHandler handles stock count API endpoints
type CountHandler struct {
	BaseHandler
	countService *inventoryapp.CountService
}

// NewCountHandler creates a new CountHandler
func NewCountHandler(countService *inventoryapp.CountService) *CountHandler {
	return &CountHandler{countService: countService}
}

// Create handles POST /counts
func (h *CountHandler) Create(c *gin.Context) {
	var req inventoryapp.CreateCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	count, err := h.countService.CreateCount(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, count)
}

// RecordCounts handles POST /counts/:id/records
func (h *CountHandler) RecordCounts(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid count ID format")
		return
	}

	var req inventoryapp.RecordCountsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	count, err := h.countService.RecordCounts(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, count)
}

// Differences handles GET /counts/:id/differences
func (h *CountHandler) Differences(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid count ID format")
		return
	}

	summary, err := h.countService.CalculateDifferences(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// Complete handles POST /counts/:id/complete
func (h *CountHandler) Complete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid count ID format")
		return
	}

	var req inventoryapp.CompleteCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	report, err := h.countService.CompleteCount(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}

// Cancel handles POST /counts/:id/cancel
func (h *CountHandler) Cancel(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid count ID format")
		return
	}

	var req inventoryapp.CancelCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	count, err := h.countService.CancelCount(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, count)
}

// GetByID handles GET /counts/:id
func (h *CountHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid count ID format")
		return
	}

	count, err := h.countService.GetCount(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, count)
}

// GetByNumber handles GET /counts/number/:number
func (h *CountHandler) GetByNumber(c *gin.Context) {
	number := c.Param("number")
	if number == "" {
		h.BadRequest(c, "Count number is required")
		return
	}

	count, err := h.countService.GetCountByNumber(c.Request.Context(), number)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, count)
}

// Report handles GET /counts/:id/report
func (h *CountHandler) Report(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid count ID format")
		return
	}

	report, err := h.countService.GetCountReport(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}

// List handles GET /counts
func (h *CountHandler) List(c *gin.Context) {
	var filter inventoryapp.CountListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	counts, total, err := h.countService.ListCounts(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, counts, total, filter.Page, filter.PageSize)
}
