package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mizan-erp/backend/internal/domain/inventory"
	"gorm.io/gorm"
)

// GormReportRepository implements ReportRepository using GORM.
// All queries are read-only aggregations; voided movements and their
// compensating reversals are excluded from summaries.
type GormReportRepository struct {
	db *gorm.DB
}

// NewGormReportRepository creates a new GormReportRepository
func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

// MovementSummary aggregates movements per type and reference type
func (r *GormReportRepository) MovementSummary(ctx context.Context, warehouseID, itemID *uuid.UUID, from, to time.Time) ([]inventory.MovementSummaryRow, error) {
	var rows []inventory.MovementSummaryRow

	query := r.db.WithContext(ctx).Table("stock_movements m").
		Select(`
			m.movement_type,
			m.reference_type,
			COUNT(*) as movements,
			COALESCE(SUM(m.quantity), 0) as total_quantity
		`).
		Where("m.status = ?", inventory.MovementStatusActive).
		Where("m.reversal_of_id IS NULL").
		Where("m.movement_date BETWEEN ? AND ?", from, to)

	if warehouseID != nil {
		query = query.Where("m.warehouse_id = ?", *warehouseID)
	}
	if itemID != nil {
		query = query.Where("m.item_id = ?", *itemID)
	}

	if err := query.
		Group("m.movement_type, m.reference_type").
		Order("m.movement_type, m.reference_type").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// LowStock lists ledger rows at or below the item's reorder point
func (r *GormReportRepository) LowStock(ctx context.Context, warehouseID *uuid.UUID) ([]inventory.LowStockRow, error) {
	var rows []inventory.LowStockRow

	query := r.db.WithContext(ctx).Table("stock_balances b").
		Select(`
			b.warehouse_id,
			b.item_id,
			i.sku,
			i.name as item_name,
			i.name_ar as item_name_ar,
			b.quantity,
			i.min_stock,
			i.reorder_point,
			i.max_stock
		`).
		Joins("JOIN items i ON i.id = b.item_id").
		Where("i.status = ?", "active").
		Where("i.reorder_point > 0 AND b.quantity <= i.reorder_point")

	if warehouseID != nil {
		query = query.Where("b.warehouse_id = ?", *warehouseID)
	}

	if err := query.Order("b.quantity ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// InactiveItems lists rows holding stock with no movement since the cutoff
func (r *GormReportRepository) InactiveItems(ctx context.Context, warehouseID *uuid.UUID, since time.Time) ([]inventory.InactiveItemRow, error) {
	var rows []inventory.InactiveItemRow

	query := r.db.WithContext(ctx).Table("stock_balances b").
		Select(`
			b.warehouse_id,
			b.item_id,
			i.sku,
			i.name as item_name,
			b.quantity,
			b.last_movement_at
		`).
		Joins("JOIN items i ON i.id = b.item_id").
		Where("b.quantity > 0").
		Where("b.last_movement_at IS NULL OR b.last_movement_at < ?", since)

	if warehouseID != nil {
		query = query.Where("b.warehouse_id = ?", *warehouseID)
	}

	if err := query.Order("b.last_movement_at ASC NULLS FIRST").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Valuation lists per-row stock value based on the item cost price
func (r *GormReportRepository) Valuation(ctx context.Context, warehouseID *uuid.UUID) ([]inventory.ValuationRow, error) {
	var rows []inventory.ValuationRow

	query := r.db.WithContext(ctx).Table("stock_balances b").
		Select(`
			b.warehouse_id,
			b.item_id,
			i.sku,
			i.name as item_name,
			b.quantity,
			i.cost_price as unit_cost,
			(b.quantity * i.cost_price) as total_value
		`).
		Joins("JOIN items i ON i.id = b.item_id").
		Where("b.quantity <> 0")

	if warehouseID != nil {
		query = query.Where("b.warehouse_id = ?", *warehouseID)
	}

	if err := query.Order("total_value DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Ensure GormReportRepository implements ReportRepository
var _ inventory.ReportRepository = (*GormReportRepository)(nil)
