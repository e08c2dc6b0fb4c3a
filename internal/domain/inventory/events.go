package inventory

import (
	"github.com/google/uuid"
	"github.com/mizan-erp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeStockBalance  = "StockBalance"
	AggregateTypeStockMovement = "StockMovement"
	AggregateTypeStockCount    = "StockCount"
)

// Event type constants
const (
	EventTypeStockMovementRecorded  = "StockMovementRecorded"
	EventTypeStockMovementVoided    = "StockMovementVoided"
	EventTypeStockBelowReorderPoint = "StockBelowReorderPoint"
	EventTypeStockCountCreated      = "StockCountCreated"
	EventTypeStockCountCompleted    = "StockCountCompleted"
	EventTypeStockCountCancelled    = "StockCountCancelled"
)

// StockMovementRecordedEvent is raised when a movement is written to the ledger
type StockMovementRecordedEvent struct {
	shared.BaseDomainEvent
	MovementID     uuid.UUID       `json:"movement_id"`
	MovementNumber string          `json:"movement_number"`
	MovementType   MovementType    `json:"movement_type"`
	WarehouseID    uuid.UUID       `json:"warehouse_id"`
	ItemID         uuid.UUID       `json:"item_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	BalanceAfter   decimal.Decimal `json:"balance_after"`
	ReferenceType  ReferenceType   `json:"reference_type,omitempty"`
}

// NewStockMovementRecordedEvent creates a new StockMovementRecordedEvent
func NewStockMovementRecordedEvent(m *StockMovement) *StockMovementRecordedEvent {
	return &StockMovementRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockMovementRecorded, AggregateTypeStockMovement, m.ID),
		MovementID:      m.ID,
		MovementNumber:  m.MovementNumber,
		MovementType:    m.MovementType,
		WarehouseID:     m.WarehouseID,
		ItemID:          m.ItemID,
		Quantity:        m.Quantity,
		BalanceAfter:    m.BalanceAfter,
		ReferenceType:   m.ReferenceType,
	}
}

// StockMovementVoidedEvent is raised when a movement is cancelled and
// compensated
type StockMovementVoidedEvent struct {
	shared.BaseDomainEvent
	MovementID     uuid.UUID `json:"movement_id"`
	MovementNumber string    `json:"movement_number"`
	ReversalID     uuid.UUID `json:"reversal_id"`
	ReversalNumber string    `json:"reversal_number"`
	WarehouseID    uuid.UUID `json:"warehouse_id"`
	ItemID         uuid.UUID `json:"item_id"`
	Reason         string    `json:"reason,omitempty"`
}

// NewStockMovementVoidedEvent creates a new StockMovementVoidedEvent
func NewStockMovementVoidedEvent(original, reversal *StockMovement, reason string) *StockMovementVoidedEvent {
	return &StockMovementVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockMovementVoided, AggregateTypeStockMovement, original.ID),
		MovementID:      original.ID,
		MovementNumber:  original.MovementNumber,
		ReversalID:      reversal.ID,
		ReversalNumber:  reversal.MovementNumber,
		WarehouseID:     original.WarehouseID,
		ItemID:          original.ItemID,
		Reason:          reason,
	}
}

// StockBelowReorderPointEvent is raised when a balance decrease leaves the
// quantity at or below the item's reorder point
type StockBelowReorderPointEvent struct {
	shared.BaseDomainEvent
	WarehouseID  uuid.UUID       `json:"warehouse_id"`
	ItemID       uuid.UUID       `json:"item_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	ReorderPoint decimal.Decimal `json:"reorder_point"`
	MinStock     decimal.Decimal `json:"min_stock"`
}

// NewStockBelowReorderPointEvent creates a new StockBelowReorderPointEvent
func NewStockBelowReorderPointEvent(balance *StockBalance, reorderPoint, minStock decimal.Decimal) *StockBelowReorderPointEvent {
	return &StockBelowReorderPointEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowReorderPoint, AggregateTypeStockBalance, balance.ID),
		WarehouseID:     balance.WarehouseID,
		ItemID:          balance.ItemID,
		Quantity:        balance.Quantity,
		ReorderPoint:    reorderPoint,
		MinStock:        minStock,
	}
}

// StockCountCreatedEvent is raised when a stock count is created
type StockCountCreatedEvent struct {
	shared.BaseDomainEvent
	StockCountID uuid.UUID `json:"stock_count_id"`
	CountNumber  string    `json:"count_number"`
	WarehouseID  uuid.UUID `json:"warehouse_id"`
}

// NewStockCountCreatedEvent creates a new StockCountCreatedEvent
func NewStockCountCreatedEvent(c *StockCount) *StockCountCreatedEvent {
	return &StockCountCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockCountCreated, AggregateTypeStockCount, c.ID),
		StockCountID:    c.ID,
		CountNumber:     c.CountNumber,
		WarehouseID:     c.WarehouseID,
	}
}

// StockCountCompletedEvent is raised when a stock count is completed
type StockCountCompletedEvent struct {
	shared.BaseDomainEvent
	StockCountID uuid.UUID `json:"stock_count_id"`
	CountNumber  string    `json:"count_number"`
	WarehouseID  uuid.UUID `json:"warehouse_id"`
	Records      int       `json:"records"`
	Differences  int       `json:"differences"`
	ApprovedBy   string    `json:"approved_by,omitempty"`
}

// NewStockCountCompletedEvent creates a new StockCountCompletedEvent
func NewStockCountCompletedEvent(c *StockCount) *StockCountCompletedEvent {
	return &StockCountCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockCountCompleted, AggregateTypeStockCount, c.ID),
		StockCountID:    c.ID,
		CountNumber:     c.CountNumber,
		WarehouseID:     c.WarehouseID,
		Records:         len(c.Records),
		Differences:     len(c.DifferenceRecords()),
		ApprovedBy:      c.ApprovedBy,
	}
}

// StockCountCancelledEvent is raised when a stock count is cancelled
type StockCountCancelledEvent struct {
	shared.BaseDomainEvent
	StockCountID uuid.UUID `json:"stock_count_id"`
	CountNumber  string    `json:"count_number"`
	WarehouseID  uuid.UUID `json:"warehouse_id"`
	Reason       string    `json:"reason,omitempty"`
}

// NewStockCountCancelledEvent creates a new StockCountCancelledEvent
func NewStockCountCancelledEvent(c *StockCount, reason string) *StockCountCancelledEvent {
	return &StockCountCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockCountCancelled, AggregateTypeStockCount, c.ID),
		StockCountID:    c.ID,
		CountNumber:     c.CountNumber,
		WarehouseID:     c.WarehouseID,
		Reason:          reason,
	}
}
