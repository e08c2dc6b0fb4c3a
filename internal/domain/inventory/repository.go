package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mizan-erp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// StockBalanceRepository defines the interface for stock ledger persistence
type StockBalanceRepository interface {
	// FindByID finds a balance row by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockBalance, error)

	// FindByWarehouseAndItem finds the ledger row for a warehouse/item pair
	FindByWarehouseAndItem(ctx context.Context, warehouseID, itemID uuid.UUID) (*StockBalance, error)

	// FindByWarehouse finds all ledger rows in a warehouse
	FindByWarehouse(ctx context.Context, warehouseID uuid.UUID, filter shared.Filter) ([]StockBalance, error)

	// FindAll finds all ledger rows matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]StockBalance, error)

	// GetOrCreate returns the ledger row for a warehouse/item pair, creating
	// an empty one when none exists. Concurrent creation of the same pair
	// resolves to the single existing row.
	GetOrCreate(ctx context.Context, warehouseID, itemID uuid.UUID) (*StockBalance, error)

	// Save creates or updates a balance row
	Save(ctx context.Context, balance *StockBalance) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, balance *StockBalance) error

	// Count counts ledger rows matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// SumQuantityByItem sums the on-hand quantity for an item across warehouses
	SumQuantityByItem(ctx context.Context, itemID uuid.UUID) (decimal.Decimal, error)
}

// StockMovementRepository defines the interface for movement persistence.
// Movements are append-only; the only permitted update is voiding.
type StockMovementRepository interface {
	// FindByID finds a movement by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockMovement, error)

	// FindByNumber finds a movement by its document number
	FindByNumber(ctx context.Context, number string) (*StockMovement, error)

	// FindAll finds all movements matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]StockMovement, error)

	// FindByReference finds movements attached to a business document
	FindByReference(ctx context.Context, refType ReferenceType, refID uuid.UUID) ([]StockMovement, error)

	// Create inserts a new movement. Returns a CONFLICT domain error when
	// the document number is already taken.
	Create(ctx context.Context, movement *StockMovement) error

	// Update persists void status changes on an existing movement
	Update(ctx context.Context, movement *StockMovement) error

	// Count counts movements matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// NextNumber generates the next document number for the month of the
	// given date. Uniqueness is only guaranteed by the unique index on the
	// number column; callers retry on CONFLICT.
	NextNumber(ctx context.Context, date time.Time) (string, error)
}

// StockCountRepository defines the interface for stock count persistence
type StockCountRepository interface {
	// FindByID finds a stock count with its records
	FindByID(ctx context.Context, id uuid.UUID) (*StockCount, error)

	// FindByNumber finds a stock count by its document number
	FindByNumber(ctx context.Context, number string) (*StockCount, error)

	// FindAll finds all stock counts matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]StockCount, error)

	// Save creates or updates a stock count header
	Save(ctx context.Context, count *StockCount) error

	// SaveWithRecords creates or updates a stock count with its records
	SaveWithRecords(ctx context.Context, count *StockCount) error

	// Count counts stock counts matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// NextNumber generates the next count number for the month of the given
	// date. Same uniqueness contract as movement numbers.
	NextNumber(ctx context.Context, date time.Time) (string, error)
}

// MovementSummaryRow is one aggregation bucket of the movement summary report
type MovementSummaryRow struct {
	MovementType  MovementType    `json:"movement_type"`
	ReferenceType ReferenceType   `json:"reference_type"`
	Movements     int64           `json:"movements"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
}

// LowStockRow is one line of the low stock report
type LowStockRow struct {
	WarehouseID  uuid.UUID           `json:"warehouse_id"`
	ItemID       uuid.UUID           `json:"item_id"`
	SKU          string              `json:"sku"`
	ItemName     string              `json:"item_name"`
	ItemNameAr   string              `json:"item_name_ar,omitempty"`
	Quantity     decimal.Decimal     `json:"quantity"`
	MinStock     decimal.Decimal     `json:"min_stock"`
	ReorderPoint decimal.Decimal     `json:"reorder_point"`
	MaxStock     decimal.NullDecimal `json:"max_stock"`
}

// InactiveItemRow is one line of the inactive items report
type InactiveItemRow struct {
	WarehouseID    uuid.UUID       `json:"warehouse_id"`
	ItemID         uuid.UUID       `json:"item_id"`
	SKU            string          `json:"sku"`
	ItemName       string          `json:"item_name"`
	Quantity       decimal.Decimal `json:"quantity"`
	LastMovementAt *time.Time      `json:"last_movement_at"`
}

// ValuationRow is one line of the stock valuation report
type ValuationRow struct {
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	ItemID      uuid.UUID       `json:"item_id"`
	SKU         string          `json:"sku"`
	ItemName    string          `json:"item_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	TotalValue  decimal.Decimal `json:"total_value"`
}

// ReportRepository defines read-only aggregation queries over the ledger,
// movements and catalog. Voided movements and their compensations are
// excluded from summaries.
type ReportRepository interface {
	// MovementSummary aggregates movements per type and reference type
	MovementSummary(ctx context.Context, warehouseID, itemID *uuid.UUID, from, to time.Time) ([]MovementSummaryRow, error)

	// LowStock lists ledger rows at or below the item's reorder point
	LowStock(ctx context.Context, warehouseID *uuid.UUID) ([]LowStockRow, error)

	// InactiveItems lists rows holding stock with no movement since the cutoff
	InactiveItems(ctx context.Context, warehouseID *uuid.UUID, since time.Time) ([]InactiveItemRow, error)

	// Valuation lists per-row stock value based on the item cost price
	Valuation(ctx context.Context, warehouseID *uuid.UUID) ([]ValuationRow, error)
}
