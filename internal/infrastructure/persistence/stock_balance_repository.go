package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mizan-erp/backend/internal/domain/inventory"
	"github.com/mizan-erp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockBalanceRepository implements StockBalanceRepository using GORM
type GormStockBalanceRepository struct {
	db *gorm.DB
}

// NewGormStockBalanceRepository creates a new GormStockBalanceRepository
func NewGormStockBalanceRepository(db *gorm.DB) *GormStockBalanceRepository {
	return &GormStockBalanceRepository{db: db}
}

// FindByID finds a balance row by its ID
func (r *GormStockBalanceRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockBalance, error) {
	var balance inventory.StockBalance
	if err := r.db.WithContext(ctx).First(&balance, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &balance, nil
}

// FindByWarehouseAndItem finds the ledger row for a warehouse/item pair
func (r *GormStockBalanceRepository) FindByWarehouseAndItem(ctx context.Context, warehouseID, itemID uuid.UUID) (*inventory.StockBalance, error) {
	var balance inventory.StockBalance
	if err := r.db.WithContext(ctx).
		Where("warehouse_id = ? AND item_id = ?", warehouseID, itemID).
		First(&balance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &balance, nil
}

// FindByWarehouse finds all ledger rows in a warehouse
func (r *GormStockBalanceRepository) FindByWarehouse(ctx context.Context, warehouseID uuid.UUID, filter shared.Filter) ([]inventory.StockBalance, error) {
	var balances []inventory.StockBalance
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.StockBalance{}).
			Where("warehouse_id = ?", warehouseID),
		filter,
	)
	if err := query.Find(&balances).Error; err != nil {
		return nil, err
	}
	return balances, nil
}

// FindAll finds all ledger rows matching the filter
func (r *GormStockBalanceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.StockBalance, error) {
	var balances []inventory.StockBalance
	query := r.applyFilter(r.db.WithContext(ctx).Model(&inventory.StockBalance{}), filter)
	if err := query.Find(&balances).Error; err != nil {
		return nil, err
	}
	return balances, nil
}

// GetOrCreate returns the ledger row for a warehouse/item pair, creating an
// empty one when none exists
func (r *GormStockBalanceRepository) GetOrCreate(ctx context.Context, warehouseID, itemID uuid.UUID) (*inventory.StockBalance, error) {
	balance, err := r.FindByWarehouseAndItem(ctx, warehouseID, itemID)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	// Use ON CONFLICT to handle concurrent creation of the same pair
	balance = inventory.NewStockBalance(warehouseID, itemID)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "warehouse_id"}, {Name: "item_id"}},
			DoNothing: true,
		}).
		Create(balance)
	if result.Error != nil {
		return nil, result.Error
	}

	// If the row wasn't created (conflict), fetch the existing one
	if result.RowsAffected == 0 {
		return r.FindByWarehouseAndItem(ctx, warehouseID, itemID)
	}

	return balance, nil
}

// Save creates or updates a balance row
func (r *GormStockBalanceRepository) Save(ctx context.Context, balance *inventory.StockBalance) error {
	return r.db.WithContext(ctx).Save(balance).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormStockBalanceRepository) SaveWithLock(ctx context.Context, balance *inventory.StockBalance) error {
	result := r.db.WithContext(ctx).
		Model(balance).
		Where("id = ? AND version = ?", balance.ID, balance.Version-1).
		Updates(map[string]interface{}{
			"quantity":         balance.Quantity,
			"reserved_qty":     balance.ReservedQty,
			"available_qty":    balance.AvailableQty,
			"last_movement_at": balance.LastMovementAt,
			"version":          balance.Version,
			"updated_at":       balance.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_FAILED", "Stock balance was modified by another transaction")
	}
	return nil
}

// Count counts ledger rows matching the filter
func (r *GormStockBalanceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&inventory.StockBalance{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumQuantityByItem sums the on-hand quantity for an item across warehouses
func (r *GormStockBalanceRepository) SumQuantityByItem(ctx context.Context, itemID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&inventory.StockBalance{}).
		Select("COALESCE(SUM(quantity), 0) as total").
		Where("item_id = ?", itemID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// applyFilter applies filter options including pagination and ordering.
// A non-positive page size disables pagination so callers can snapshot a
// whole warehouse.
func (r *GormStockBalanceRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, BalanceSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormStockBalanceRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "warehouse_id":
			query = query.Where("warehouse_id = ?", value)
		case "item_id":
			query = query.Where("item_id = ?", value)
		case "non_zero_only":
			if value == true {
				query = query.Where("quantity <> 0 OR reserved_qty <> 0")
			}
		}
	}

	return query
}

// Ensure GormStockBalanceRepository implements StockBalanceRepository
var _ inventory.StockBalanceRepository = (*GormStockBalanceRepository)(nil)
