package handler

import (
	"github.com/gin-gonic/gin"
	inventoryapp "github.com/mizan-erp/backend/internal/application/inventory"
)

// MovementHandler handles stock movement API endpoints
type MovementHandler struct {
	BaseHandler
	movementService *inventoryapp.MovementService
}

// NewMovementHandler creates a new MovementHandler
func NewMovementHandler(movementService *inventoryapp.MovementService) *MovementHandler {
	return &MovementHandler{movementService: movementService}
}

// CreateInbound handles POST /movements/inbound
func (h *MovementHandler) CreateInbound(c *gin.Context) {
	var req inventoryapp.CreateInboundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	movement, err := h.movementService.CreateInbound(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, movement)
}

// CreateOutbound handles POST /movements/outbound
func (h *MovementHandler) CreateOutbound(c *gin.Context) {
	var req inventoryapp.CreateOutboundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	movement, err := h.movementService.CreateOutbound(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, movement)
}

// CreateAdjustment handles POST /movements/adjustments
func (h *MovementHandler) CreateAdjustment(c *gin.Context) {
	var req inventoryapp.CreateAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	movement, err := h.movementService.CreateAdjustment(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, movement)
}

// CreateTransfer handles POST /movements/transfers
func (h *MovementHandler) CreateTransfer(c *gin.Context) {
	var req inventoryapp.CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	transfer, err := h.movementService.CreateTransfer(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, transfer)
}

// Cancel handles POST /movements/:id/cancel
func (h *MovementHandler) Cancel(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid movement ID format")
		return
	}

	var req inventoryapp.CancelMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.movementService.CancelMovement(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Reserve handles POST /movements/reservations
func (h *MovementHandler) Reserve(c *gin.Context) {
	var req inventoryapp.ReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.movementService.Reserve(c.Request.Context(), req); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ReleaseReservation handles POST /movements/reservations/release
func (h *MovementHandler) ReleaseReservation(c *gin.Context) {
	var req inventoryapp.ReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.movementService.ReleaseReservation(c.Request.Context(), req); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// GetByID handles GET /movements/:id
func (h *MovementHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid movement ID format")
		return
	}

	movement, err := h.movementService.GetMovement(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, movement)
}

// GetByNumber handles GET /movements/number/:number
func (h *MovementHandler) GetByNumber(c *gin.Context) {
	number := c.Param("number")
	if number == "" {
		h.BadRequest(c, "Movement number is required")
		return
	}

	movement, err := h.movementService.GetMovementByNumber(c.Request.Context(), number)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, movement)
}

// List handles GET /movements
func (h *MovementHandler) List(c *gin.Context) {
	var filter inventoryapp.MovementListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	movements, total, err := h.movementService.ListMovements(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, movements, total, filter.Page, filter.PageSize)
}
