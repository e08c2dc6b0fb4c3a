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

// GormStockCountRepository implements StockCountRepository using GORM
type GormStockCountRepository struct {
	db *gorm.DB
}

// NewGormStockCountRepository creates a new GormStockCountRepository
func NewGormStockCountRepository(db *gorm.DB) *GormStockCountRepository {
	return &GormStockCountRepository{db: db}
}

// FindByID finds a stock count with its records
func (r *GormStockCountRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockCount, error) {
	var count inventory.StockCount
	if err := r.db.WithContext(ctx).
		Preload("Records").
		First(&count, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &count, nil
}

// FindByNumber finds a stock count by its document number
func (r *GormStockCountRepository) FindByNumber(ctx context.Context, number string) (*inventory.StockCount, error) {
	var count inventory.StockCount
	if err := r.db.WithContext(ctx).
		Preload("Records").
		Where("count_number = ?", number).
		First(&count).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &count, nil
}

// FindAll finds all stock counts matching the filter. Records are not
// preloaded on list queries.
func (r *GormStockCountRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.StockCount, error) {
	var counts []inventory.StockCount
	query := r.applyFilter(r.db.WithContext(ctx).Model(&inventory.StockCount{}), filter)
	if err := query.Find(&counts).Error; err != nil {
		return nil, err
	}
	return counts, nil
}

// Save creates or updates a stock count header
func (r *GormStockCountRepository) Save(ctx context.Context, count *inventory.StockCount) error {
	if err := r.db.WithContext(ctx).Omit("Records").Save(count).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &inventory.DuplicateNumberError{Number: count.CountNumber}
		}
		return err
	}
	return nil
}

// SaveWithRecords creates or updates a stock count with its records
func (r *GormStockCountRepository) SaveWithRecords(ctx context.Context, count *inventory.StockCount) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Records").Save(count).Error; err != nil {
			return err
		}
		for i := range count.Records {
			if err := tx.Save(&count.Records[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &inventory.DuplicateNumberError{Number: count.CountNumber}
		}
		return err
	}
	return nil
}

// Count counts stock counts matching the filter
func (r *GormStockCountRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var total int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&inventory.StockCount{}), filter)
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// NextNumber generates the next count number for the month of the given
// date. Same collision contract as movement numbers: the unique index is
// the only guarantee and callers retry on conflict.
func (r *GormStockCountRepository) NextNumber(ctx context.Context, date time.Time) (string, error) {
	prefix := inventory.DocumentNumberPrefix(inventory.CountNumberPrefix, date)

	var last string
	err := r.db.WithContext(ctx).
		Model(&inventory.StockCount{}).
		Select("count_number").
		Where("count_number LIKE ?", prefix+"%").
		Order("count_number DESC").
		Limit(1).
		Scan(&last).Error
	if err != nil {
		return "", err
	}

	sequence := inventory.ParseDocumentSequence(prefix, last) + 1
	return inventory.FormatDocumentNumber(prefix, sequence), nil
}

// applyFilter applies filter options including pagination and ordering
func (r *GormStockCountRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, CountSortFields, "count_date")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormStockCountRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "warehouse_id":
			query = query.Where("warehouse_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "start_date":
			query = query.Where("count_date >= ?", value)
		case "end_date":
			query = query.Where("count_date <= ?", value)
		}
	}

	return query
}

// Ensure GormStockCountRepository implements StockCountRepository
var _ inventory.StockCountRepository = (*GormStockCountRepository)(nil)
