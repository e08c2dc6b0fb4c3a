package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mizan-erp/backend/internal/domain/inventory"
	"github.com/mizan-erp/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormStockMovementRepository implements StockMovementRepository using GORM
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// FindByID finds a movement by its ID
func (r *GormStockMovementRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockMovement, error) {
	var movement inventory.StockMovement
	if err := r.db.WithContext(ctx).First(&movement, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &movement, nil
}

// FindByNumber finds a movement by its document number
func (r *GormStockMovementRepository) FindByNumber(ctx context.Context, number string) (*inventory.StockMovement, error) {
	var movement inventory.StockMovement
	if err := r.db.WithContext(ctx).
		Where("movement_number = ?", number).
		First(&movement).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &movement, nil
}

// FindAll finds all movements matching the filter
func (r *GormStockMovementRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	query := r.applyFilter(r.db.WithContext(ctx).Model(&inventory.StockMovement{}), filter)
	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindByReference finds movements attached to a business document
func (r *GormStockMovementRepository) FindByReference(ctx context.Context, refType inventory.ReferenceType, refID uuid.UUID) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	if err := r.db.WithContext(ctx).
		Where("reference_type = ? AND reference_id = ?", refType, refID).
		Order("created_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// Create inserts a new movement. A unique violation on the document number
// surfaces as DuplicateNumberError so the caller can regenerate and retry.
func (r *GormStockMovementRepository) Create(ctx context.Context, movement *inventory.StockMovement) error {
	if err := r.db.WithContext(ctx).Create(movement).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &inventory.DuplicateNumberError{Number: movement.MovementNumber}
		}
		return err
	}
	return nil
}

// Update persists void status changes on an existing movement. Ledger fields
// are immutable after insert.
func (r *GormStockMovementRepository) Update(ctx context.Context, movement *inventory.StockMovement) error {
	result := r.db.WithContext(ctx).
		Model(movement).
		Where("id = ?", movement.ID).
		Updates(map[string]interface{}{
			"status":      movement.Status,
			"voided_by":   movement.VoidedBy,
			"voided_at":   movement.VoidedAt,
			"void_reason": movement.VoidReason,
			"notes":       movement.Notes,
			"updated_at":  movement.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts movements matching the filter
func (r *GormStockMovementRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&inventory.StockMovement{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// NextNumber generates the next document number for the month of the given
// date. The number is only reserved by the unique index at insert time, so
// two concurrent writers can draw the same value; Create reports that as a
// DuplicateNumberError and the service retries.
func (r *GormStockMovementRepository) NextNumber(ctx context.Context, date time.Time) (string, error) {
	prefix := inventory.DocumentNumberPrefix(inventory.MovementNumberPrefix, date)

	var last string
	err := r.db.WithContext(ctx).
		Model(&inventory.StockMovement{}).
		Select("movement_number").
		Where("movement_number LIKE ?", prefix+"%").
		Order("movement_number DESC").
		Limit(1).
		Scan(&last).Error
	if err != nil {
		return "", err
	}

	sequence := inventory.ParseDocumentSequence(prefix, last) + 1
	return inventory.FormatDocumentNumber(prefix, sequence), nil
}

// applyFilter applies filter options including pagination and ordering
func (r *GormStockMovementRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, MovementSortFields, "movement_date")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormStockMovementRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "warehouse_id":
			query = query.Where("warehouse_id = ?", value)
		case "item_id":
			query = query.Where("item_id = ?", value)
		case "movement_type":
			query = query.Where("movement_type = ?", value)
		case "reference_type":
			query = query.Where("reference_type = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "start_date":
			query = query.Where("movement_date >= ?", value)
		case "end_date":
			query = query.Where("movement_date <= ?", value)
		}
	}

	return query
}

// Ensure GormStockMovementRepository implements StockMovementRepository
var _ inventory.StockMovementRepository = (*GormStockMovementRepository)(nil)
