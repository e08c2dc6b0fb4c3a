package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/mizan-erp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// StockBalance is the ledger row for one item in one warehouse.
// There is at most one row per (warehouse, item) pair, enforced by a unique
// index. AvailableQty is always derived from Quantity - ReservedQty and both
// Quantity and ReservedQty stay non-negative.
type StockBalance struct {
	shared.BaseAggregateRoot
	WarehouseID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_balance_warehouse_item,priority:1"`
	ItemID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_balance_warehouse_item,priority:2"`
	Quantity       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReservedQty    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AvailableQty   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LastMovementAt *time.Time      `gorm:"index"`
}

// TableName returns the table name for GORM
func (StockBalance) TableName() string {
	return "stock_balances"
}

// NewStockBalance creates an empty ledger row for a warehouse/item pair
func NewStockBalance(warehouseID, itemID uuid.UUID) *StockBalance {
	return &StockBalance{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		WarehouseID:       warehouseID,
		ItemID:            itemID,
		Quantity:          decimal.Zero,
		ReservedQty:       decimal.Zero,
		AvailableQty:      decimal.Zero,
	}
}

// Add increases the on-hand quantity
func (b *StockBalance) Add(quantity decimal.Decimal, at time.Time) error {
	if !quantity.IsPositive() {
		return shared.NewDomainError("VALIDATION_ERROR", "Quantity must be positive")
	}

	b.Quantity = b.Quantity.Add(quantity)
	b.LastMovementAt = &at
	b.recalculate()

	return nil
}

// Subtract decreases the on-hand quantity. The caller must have checked
// availability; this guards the hard invariant only.
func (b *StockBalance) Subtract(quantity decimal.Decimal, at time.Time) error {
	if !quantity.IsPositive() {
		return shared.NewDomainError("VALIDATION_ERROR", "Quantity must be positive")
	}
	if b.Quantity.LessThan(quantity) {
		return shared.NewDomainErrorf("INSUFFICIENT_STOCK",
			"Insufficient stock: on hand %s, requested %s", b.Quantity.String(), quantity.String())
	}

	b.Quantity = b.Quantity.Sub(quantity)
	b.LastMovementAt = &at
	b.recalculate()

	return nil
}

// Reserve sets aside available stock without moving it
func (b *StockBalance) Reserve(quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return shared.NewDomainError("VALIDATION_ERROR", "Quantity must be positive")
	}
	if b.AvailableQty.LessThan(quantity) {
		return shared.NewDomainErrorf("INSUFFICIENT_STOCK",
			"Insufficient stock to reserve: available %s, requested %s", b.AvailableQty.String(), quantity.String())
	}

	b.ReservedQty = b.ReservedQty.Add(quantity)
	b.recalculate()

	return nil
}

// Release returns reserved stock to the available pool
func (b *StockBalance) Release(quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return shared.NewDomainError("VALIDATION_ERROR", "Quantity must be positive")
	}
	if b.ReservedQty.LessThan(quantity) {
		return shared.NewDomainErrorf("INVALID_STATE",
			"Cannot release %s: only %s reserved", quantity.String(), b.ReservedQty.String())
	}

	b.ReservedQty = b.ReservedQty.Sub(quantity)
	b.recalculate()

	return nil
}

// HasAvailable reports whether the available quantity covers the request
func (b *StockBalance) HasAvailable(quantity decimal.Decimal) bool {
	return b.AvailableQty.GreaterThanOrEqual(quantity)
}

// IsEmpty reports whether the row holds no stock at all
func (b *StockBalance) IsEmpty() bool {
	return b.Quantity.IsZero() && b.ReservedQty.IsZero()
}

func (b *StockBalance) recalculate() {
	b.AvailableQty = b.Quantity.Sub(b.ReservedQty)
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
}
