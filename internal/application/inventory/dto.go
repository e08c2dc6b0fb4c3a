package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/mizan-erp/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// CreateInboundRequest represents a request to receive stock
type CreateInboundRequest struct {
	WarehouseID   uuid.UUID       `json:"warehouse_id" binding:"required"`
	ItemID        uuid.UUID       `json:"item_id" binding:"required"`
	Quantity      decimal.Decimal `json:"quantity" binding:"required"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	ReferenceType string          `json:"reference_type" binding:"required,oneof=PURCHASE PRODUCTION RETURN"`
	ReferenceID   *uuid.UUID      `json:"reference_id"`
	MovementDate  *time.Time      `json:"movement_date"`
	Notes         string          `json:"notes"`
	CreatedBy     string          `json:"created_by"`
}

// CreateOutboundRequest represents a request to issue stock
type CreateOutboundRequest struct {
	WarehouseID     uuid.UUID       `json:"warehouse_id" binding:"required"`
	ItemID          uuid.UUID       `json:"item_id" binding:"required"`
	Quantity        decimal.Decimal `json:"quantity" binding:"required"`
	ReferenceType   string          `json:"reference_type" binding:"required,oneof=SALE PRODUCTION RETURN"`
	ReferenceID     *uuid.UUID      `json:"reference_id"`
	MovementDate    *time.Time      `json:"movement_date"`
	ReleaseReserved bool            `json:"release_reserved"` // issue consumes an existing reservation
	Notes           string          `json:"notes"`
	CreatedBy       string          `json:"created_by"`
}

// CreateAdjustmentRequest represents a request to correct the ledger to a
// physically observed quantity
type CreateAdjustmentRequest struct {
	WarehouseID uuid.UUID       `json:"warehouse_id" binding:"required"`
	ItemID      uuid.UUID       `json:"item_id" binding:"required"`
	NewQuantity decimal.Decimal `json:"new_quantity"`
	Reason      string          `json:"reason" binding:"required,oneof=DAMAGE LOSS FOUND COUNT"`
	ReferenceID *uuid.UUID      `json:"reference_id"`
	Notes       string          `json:"notes"`
	CreatedBy   string          `json:"created_by"`
}

// CreateTransferRequest represents a request to move stock between warehouses
type CreateTransferRequest struct {
	FromWarehouseID uuid.UUID       `json:"from_warehouse_id" binding:"required"`
	ToWarehouseID   uuid.UUID       `json:"to_warehouse_id" binding:"required"`
	ItemID          uuid.UUID       `json:"item_id" binding:"required"`
	Quantity        decimal.Decimal `json:"quantity" binding:"required"`
	MovementDate    *time.Time      `json:"movement_date"`
	Notes           string          `json:"notes"`
	CreatedBy       string          `json:"created_by"`
}

// CancelMovementRequest represents a request to void a movement
type CancelMovementRequest struct {
	Reason      string `json:"reason" binding:"required"`
	CancelledBy string `json:"cancelled_by"`
}

// ReservationRequest represents a request to reserve or release stock
type ReservationRequest struct {
	WarehouseID uuid.UUID       `json:"warehouse_id" binding:"required"`
	ItemID      uuid.UUID       `json:"item_id" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
}

// MovementResponse represents a stock movement in API responses
type MovementResponse struct {
	ID             uuid.UUID       `json:"id"`
	MovementNumber string          `json:"movement_number"`
	MovementType   string          `json:"movement_type"`
	WarehouseID    uuid.UUID       `json:"warehouse_id"`
	ItemID         uuid.UUID       `json:"item_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	BalanceBefore  decimal.Decimal `json:"balance_before"`
	BalanceAfter   decimal.Decimal `json:"balance_after"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	ReferenceType  string          `json:"reference_type,omitempty"`
	ReferenceID    *uuid.UUID      `json:"reference_id,omitempty"`
	Status         string          `json:"status"`
	ReversalOfID   *uuid.UUID      `json:"reversal_of_id,omitempty"`
	MovementDate   time.Time       `json:"movement_date"`
	Notes          string          `json:"notes,omitempty"`
	CreatedBy      string          `json:"created_by,omitempty"`
	VoidedBy       string          `json:"voided_by,omitempty"`
	VoidedAt       *time.Time      `json:"voided_at,omitempty"`
	VoidReason     string          `json:"void_reason,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ToMovementResponse converts a domain movement to its response form
func ToMovementResponse(m *inventory.StockMovement) MovementResponse {
	return MovementResponse{
		ID:             m.ID,
		MovementNumber: m.MovementNumber,
		MovementType:   string(m.MovementType),
		WarehouseID:    m.WarehouseID,
		ItemID:         m.ItemID,
		Quantity:       m.Quantity,
		BalanceBefore:  m.BalanceBefore,
		BalanceAfter:   m.BalanceAfter,
		UnitCost:       m.UnitCost,
		ReferenceType:  string(m.ReferenceType),
		ReferenceID:    m.ReferenceID,
		Status:         string(m.Status),
		ReversalOfID:   m.ReversalOfID,
		MovementDate:   m.MovementDate,
		Notes:          m.Notes,
		CreatedBy:      m.CreatedBy,
		VoidedBy:       m.VoidedBy,
		VoidedAt:       m.VoidedAt,
		VoidReason:     m.VoidReason,
		CreatedAt:      m.CreatedAt,
	}
}

// TransferResponse pairs the two movements of a warehouse transfer
type TransferResponse struct {
	TransferID uuid.UUID        `json:"transfer_id"`
	Outbound   MovementResponse `json:"outbound"`
	Inbound    MovementResponse `json:"inbound"`
}

// CancelMovementResponse returns the voided original and its compensation
type CancelMovementResponse struct {
	Original MovementResponse `json:"original"`
	Reversal MovementResponse `json:"reversal"`
}

// MovementListFilter represents filter options for the movement list
type MovementListFilter struct {
	WarehouseID   *uuid.UUID `form:"warehouse_id"`
	ItemID        *uuid.UUID `form:"item_id"`
	MovementType  string     `form:"movement_type" binding:"omitempty,oneof=IN OUT TRANSFER ADJUSTMENT"`
	ReferenceType string     `form:"reference_type"`
	Status        string     `form:"status" binding:"omitempty,oneof=ACTIVE VOIDED"`
	StartDate     *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate       *time.Time `form:"end_date" time_format:"2006-01-02"`
	Page          int        `form:"page" binding:"omitempty,min=1"`
	PageSize      int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy       string     `form:"order_by"`
	OrderDir      string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// BalanceResponse represents a ledger row in API responses
type BalanceResponse struct {
	ID             uuid.UUID       `json:"id"`
	WarehouseID    uuid.UUID       `json:"warehouse_id"`
	ItemID         uuid.UUID       `json:"item_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	ReservedQty    decimal.Decimal `json:"reserved_qty"`
	AvailableQty   decimal.Decimal `json:"available_qty"`
	Status         string          `json:"status"` // NORMAL, LOW, CRITICAL, OVERSTOCK
	LastMovementAt *time.Time      `json:"last_movement_at,omitempty"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// CreateCountRequest represents a request to open a stock count
type CreateCountRequest struct {
	WarehouseID uuid.UUID   `json:"warehouse_id" binding:"required"`
	CountDate   *time.Time  `json:"count_date"`
	CountedBy   string      `json:"counted_by" binding:"required"`
	ItemIDs     []uuid.UUID `json:"item_ids"` // empty counts every ledger row of the warehouse
	Notes       string      `json:"notes"`
}

// CountRecordInput is one counted line in a RecordCountsRequest
type CountRecordInput struct {
	ItemID     uuid.UUID       `json:"item_id" binding:"required"`
	CountedQty decimal.Decimal `json:"counted_qty"`
	Notes      string          `json:"notes"`
}

// RecordCountsRequest represents a batch of counted quantities
type RecordCountsRequest struct {
	Records []CountRecordInput `json:"records" binding:"required,min=1,dive"`
}

// CompleteCountRequest represents a request to finish a stock count
type CompleteCountRequest struct {
	ApprovedBy        string `json:"approved_by" binding:"required"`
	CreateAdjustments bool   `json:"create_adjustments"`
}

// CancelCountRequest represents a request to abandon a stock count
type CancelCountRequest struct {
	Reason string `json:"reason"`
}

// CountRecordResponse represents one count line in API responses
type CountRecordResponse struct {
	ID         uuid.UUID        `json:"id"`
	ItemID     uuid.UUID        `json:"item_id"`
	SystemQty  decimal.Decimal  `json:"system_qty"`
	CountedQty *decimal.Decimal `json:"counted_qty,omitempty"`
	Difference decimal.Decimal  `json:"difference"`
	CountedAt  *time.Time       `json:"counted_at,omitempty"`
	Notes      string           `json:"notes,omitempty"`
}

// CountResponse represents a stock count in API responses
type CountResponse struct {
	ID          uuid.UUID             `json:"id"`
	CountNumber string                `json:"count_number"`
	WarehouseID uuid.UUID             `json:"warehouse_id"`
	Status      string                `json:"status"`
	CountDate   time.Time             `json:"count_date"`
	CountedBy   string                `json:"counted_by,omitempty"`
	ApprovedBy  string                `json:"approved_by,omitempty"`
	CompletedAt *time.Time            `json:"completed_at,omitempty"`
	Notes       string                `json:"notes,omitempty"`
	Records     []CountRecordResponse `json:"records,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// ToCountRecordResponse converts a domain count record to its response form
func ToCountRecordResponse(r *inventory.StockCountRecord) CountRecordResponse {
	resp := CountRecordResponse{
		ID:         r.ID,
		ItemID:     r.ItemID,
		SystemQty:  r.SystemQty,
		Difference: r.Difference,
		CountedAt:  r.CountedAt,
		Notes:      r.Notes,
	}
	if r.CountedQty.Valid {
		counted := r.CountedQty.Decimal
		resp.CountedQty = &counted
	}
	return resp
}

// ToCountResponse converts a domain stock count to its response form
func ToCountResponse(c *inventory.StockCount) CountResponse {
	records := make([]CountRecordResponse, 0, len(c.Records))
	for i := range c.Records {
		records = append(records, ToCountRecordResponse(&c.Records[i]))
	}
	return CountResponse{
		ID:          c.ID,
		CountNumber: c.CountNumber,
		WarehouseID: c.WarehouseID,
		Status:      string(c.Status),
		CountDate:   c.CountDate,
		CountedBy:   c.CountedBy,
		ApprovedBy:  c.ApprovedBy,
		CompletedAt: c.CompletedAt,
		Notes:       c.Notes,
		Records:     records,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// CountListFilter represents filter options for the stock count list
type CountListFilter struct {
	WarehouseID *uuid.UUID `form:"warehouse_id"`
	Status      string     `form:"status" binding:"omitempty,oneof=DRAFT IN_PROGRESS COMPLETED CANCELLED"`
	StartDate   *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate     *time.Time `form:"end_date" time_format:"2006-01-02"`
	Page        int        `form:"page" binding:"omitempty,min=1"`
	PageSize    int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy     string     `form:"order_by"`
	OrderDir    string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// DifferencesSummary aggregates the outcome of a stock count
type DifferencesSummary struct {
	TotalRecords  int             `json:"total_records"`
	Counted       int             `json:"counted"`
	Uncounted     int             `json:"uncounted"`
	Matched       int             `json:"matched"`
	Surplus       int             `json:"surplus"`
	Shortage      int             `json:"shortage"`
	SurplusQty    decimal.Decimal `json:"surplus_qty"`
	ShortageQty   decimal.Decimal `json:"shortage_qty"` // absolute value
	NetDifference decimal.Decimal `json:"net_difference"`
}

// CountReportResponse is the full report for one stock count
type CountReportResponse struct {
	Count       CountResponse      `json:"count"`
	Summary     DifferencesSummary `json:"summary"`
	Adjustments []MovementResponse `json:"adjustments,omitempty"`
}

// BalanceListFilter represents filter options for the ledger list
type BalanceListFilter struct {
	WarehouseID *uuid.UUID `form:"warehouse_id"`
	ItemID      *uuid.UUID `form:"item_id"`
	NonZeroOnly bool       `form:"non_zero_only"`
	Page        int        `form:"page" binding:"omitempty,min=1"`
	PageSize    int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy     string     `form:"order_by"`
	OrderDir    string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// MovementSummaryFilter selects the period and scope of the movement summary
type MovementSummaryFilter struct {
	WarehouseID *uuid.UUID `form:"warehouse_id"`
	ItemID      *uuid.UUID `form:"item_id"`
	StartDate   *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate     *time.Time `form:"end_date" time_format:"2006-01-02"`
}

// MovementSummaryResponse aggregates movements over a period
type MovementSummaryResponse struct {
	From        time.Time                      `json:"from"`
	To          time.Time                      `json:"to"`
	Rows        []inventory.MovementSummaryRow `json:"rows"`
	TotalIn     decimal.Decimal                `json:"total_in"`
	TotalOut    decimal.Decimal                `json:"total_out"`
	NetMovement decimal.Decimal                `json:"net_movement"`
}

// Low stock severity levels
const (
	LowStockSeverityCritical  = "CRITICAL"   // at or below minimum stock
	LowStockSeverityAtReorder = "AT_REORDER" // at or below the reorder point
)

// LowStockItemResponse is one line of the low stock report
type LowStockItemResponse struct {
	WarehouseID       uuid.UUID       `json:"warehouse_id"`
	ItemID            uuid.UUID       `json:"item_id"`
	SKU               string          `json:"sku"`
	ItemName          string          `json:"item_name"`
	ItemNameAr        string          `json:"item_name_ar,omitempty"`
	Quantity          decimal.Decimal `json:"quantity"`
	MinStock          decimal.Decimal `json:"min_stock"`
	ReorderPoint      decimal.Decimal `json:"reorder_point"`
	Severity          string          `json:"severity"`
	SuggestedOrderQty decimal.Decimal `json:"suggested_order_qty"`
}

// InactiveItemResponse is one line of the inactive items report
type InactiveItemResponse struct {
	WarehouseID    uuid.UUID       `json:"warehouse_id"`
	ItemID         uuid.UUID       `json:"item_id"`
	SKU            string          `json:"sku"`
	ItemName       string          `json:"item_name"`
	Quantity       decimal.Decimal `json:"quantity"`
	LastMovementAt *time.Time      `json:"last_movement_at,omitempty"`
	DaysInactive   int             `json:"days_inactive"`
}

// ValuationResponse is the stock valuation report
type ValuationResponse struct {
	Rows       []inventory.ValuationRow `json:"rows"`
	TotalValue decimal.Decimal          `json:"total_value"`
	AsOf       time.Time                `json:"as_of"`
}
