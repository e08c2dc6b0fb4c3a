package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	inventoryapp "github.com/mizan-erp/backend/internal/application/inventory"
)

// ReportHandler handles inventory report API endpoints
type ReportHandler struct {
	BaseHandler
	reportService *inventoryapp.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *inventoryapp.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// MovementSummary handles GET /reports/movement-summary
func (h *ReportHandler) MovementSummary(c *gin.Context) {
	var filter inventoryapp.MovementSummaryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	summary, err := h.reportService.MovementSummary(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// LowStock handles GET /reports/low-stock
func (h *ReportHandler) LowStock(c *gin.Context) {
	warehouseID, ok := parseUUIDQuery(c, "warehouse_id")
	if !ok {
		h.BadRequest(c, "Invalid warehouse ID format")
		return
	}

	items, err := h.reportService.LowStock(c.Request.Context(), warehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, items)
}

// InactiveItems handles GET /reports/inactive-items
func (h *ReportHandler) InactiveItems(c *gin.Context) {
	warehouseID, ok := parseUUIDQuery(c, "warehouse_id")
	if !ok {
		h.BadRequest(c, "Invalid warehouse ID format")
		return
	}

	days := 0
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.BadRequest(c, "days must be a non-negative integer")
			return
		}
		days = parsed
	}

	items, err := h.reportService.InactiveItems(c.Request.Context(), warehouseID, days)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, items)
}

// Valuation handles GET /reports/valuation
func (h *ReportHandler) Valuation(c *gin.Context) {
	warehouseID, ok := parseUUIDQuery(c, "warehouse_id")
	if !ok {
		h.BadRequest(c, "Invalid warehouse ID format")
		return
	}

	valuation, err := h.reportService.Valuation(c.Request.Context(), warehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, valuation)
}

// GetBalance handles GET /balances/lookup
func (h *ReportHandler) GetBalance(c *gin.Context) {
	warehouseID, err := uuid.Parse(c.Query("warehouse_id"))
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID format")
		return
	}

	itemID, err := uuid.Parse(c.Query("item_id"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID format")
		return
	}

	balance, err := h.reportService.GetBalance(c.Request.Context(), warehouseID, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, balance)
}

// ListBalances handles GET /balances
func (h *ReportHandler) ListBalances(c *gin.Context) {
	var filter inventoryapp.BalanceListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	balances, total, err := h.reportService.ListBalances(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, balances, total, filter.Page, filter.PageSize)
}
