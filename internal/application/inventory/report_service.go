package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mizan-erp/backend/internal/domain/catalog"
	"github.com/mizan-erp/backend/internal/domain/inventory"
	"github.com/mizan-erp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Balance status levels derived from the item's replenishment thresholds
const (
	BalanceStatusNormal    = "NORMAL"
	BalanceStatusLow       = "LOW"       // at or below the reorder point
	BalanceStatusCritical  = "CRITICAL"  // at or below minimum stock
	BalanceStatusOverstock = "OVERSTOCK" // above maximum stock
)

// ReportCache caches serialized report payloads. A nil cache disables
// caching.
type ReportCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

// Cache keys for the report payloads a ledger write invalidates
const (
	cacheKeyValuation   = "reports:valuation:"
	cacheKeyLowStock    = "reports:lowstock:"
	reportCachePattern  = "reports:*"
	defaultInactiveDays = 90
)

// ReportService answers read-only questions over the ledger and movement
// history. Valuation and low stock are cached; a ledger write invalidates
// the cache through the movement events.
type ReportService struct {
	reportRepo   inventory.ReportRepository
	balanceRepo  inventory.StockBalanceRepository
	itemRepo     catalog.ItemRepository
	cache        ReportCache
	cacheTTL     time.Duration
	inactiveDays int
	logger       *zap.Logger
}

// NewReportService creates a new ReportService. cache may be nil.
func NewReportService(
	reportRepo inventory.ReportRepository,
	balanceRepo inventory.StockBalanceRepository,
	itemRepo catalog.ItemRepository,
	cache ReportCache,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		reportRepo:   reportRepo,
		balanceRepo:  balanceRepo,
		itemRepo:     itemRepo,
		cache:        cache,
		cacheTTL:     cacheTTL,
		inactiveDays: defaultInactiveDays,
		logger:       logger,
	}
}

// SetInactiveDays overrides the default inactivity window used when a
// request does not specify one
func (s *ReportService) SetInactiveDays(days int) {
	if days > 0 {
		s.inactiveDays = days
	}
}

// MovementSummary aggregates movements per type and reference type over a
// period. Voided movements and their compensations are excluded.
func (s *ReportService) MovementSummary(ctx context.Context, filter MovementSummaryFilter) (*MovementSummaryResponse, error) {
	to := time.Now()
	if filter.EndDate != nil {
		to = endOfDay(*filter.EndDate)
	}
	from := to.AddDate(0, -1, 0)
	if filter.StartDate != nil {
		from = *filter.StartDate
	}
	if from.After(to) {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Start date is after end date")
	}

	rows, err := s.reportRepo.MovementSummary(ctx, filter.WarehouseID, filter.ItemID, from, to)
	if err != nil {
		return nil, err
	}

	resp := &MovementSummaryResponse{
		From:        from,
		To:          to,
		Rows:        rows,
		TotalIn:     decimal.Zero,
		TotalOut:    decimal.Zero,
		NetMovement: decimal.Zero,
	}
	for i := range rows {
		switch rows[i].MovementType {
		case inventory.MovementTypeIn:
			resp.TotalIn = resp.TotalIn.Add(rows[i].TotalQuantity)
		case inventory.MovementTypeOut:
			resp.TotalOut = resp.TotalOut.Add(rows[i].TotalQuantity)
		}
	}
	resp.NetMovement = resp.TotalIn.Sub(resp.TotalOut)
	return resp, nil
}

// LowStock lists ledger rows at or below the item's reorder point, with a
// severity and a suggested order quantity per line
func (s *ReportService) LowStock(ctx context.Context, warehouseID *uuid.UUID) ([]LowStockItemResponse, error) {
	key := cacheKeyLowStock + scopeKey(warehouseID)
	var cached []LowStockItemResponse
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	rows, err := s.reportRepo.LowStock(ctx, warehouseID)
	if err != nil {
		return nil, err
	}

	responses := make([]LowStockItemResponse, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		severity := LowStockSeverityAtReorder
		if row.Quantity.LessThanOrEqual(row.MinStock) {
			severity = LowStockSeverityCritical
		}
		responses = append(responses, LowStockItemResponse{
			WarehouseID:       row.WarehouseID,
			ItemID:            row.ItemID,
			SKU:               row.SKU,
			ItemName:          row.ItemName,
			ItemNameAr:        row.ItemNameAr,
			Quantity:          row.Quantity,
			MinStock:          row.MinStock,
			ReorderPoint:      row.ReorderPoint,
			Severity:          severity,
			SuggestedOrderQty: suggestedOrderQty(row),
		})
	}

	s.cacheSet(ctx, key, responses)
	return responses, nil
}

// InactiveItems lists rows holding stock with no movement for the given
// number of days
func (s *ReportService) InactiveItems(ctx context.Context, warehouseID *uuid.UUID, days int) ([]InactiveItemResponse, error) {
	if days <= 0 {
		days = s.inactiveDays
	}
	now := time.Now()
	since := now.AddDate(0, 0, -days)

	rows, err := s.reportRepo.InactiveItems(ctx, warehouseID, since)
	if err != nil {
		return nil, err
	}

	responses := make([]InactiveItemResponse, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		inactive := days
		if row.LastMovementAt != nil {
			inactive = int(now.Sub(*row.LastMovementAt).Hours() / 24)
		}
		responses = append(responses, InactiveItemResponse{
			WarehouseID:    row.WarehouseID,
			ItemID:         row.ItemID,
			SKU:            row.SKU,
			ItemName:       row.ItemName,
			Quantity:       row.Quantity,
			LastMovementAt: row.LastMovementAt,
			DaysInactive:   inactive,
		})
	}
	return responses, nil
}

// Valuation values the on-hand stock at the item cost price
func (s *ReportService) Valuation(ctx context.Context, warehouseID *uuid.UUID) (*ValuationResponse, error) {
	key := cacheKeyValuation + scopeKey(warehouseID)
	var cached ValuationResponse
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	rows, err := s.reportRepo.Valuation(ctx, warehouseID)
	if err != nil {
		return nil, err
	}

	resp := &ValuationResponse{
		Rows:       rows,
		TotalValue: decimal.Zero,
		AsOf:       time.Now(),
	}
	for i := range rows {
		resp.TotalValue = resp.TotalValue.Add(rows[i].TotalValue)
	}

	s.cacheSet(ctx, key, resp)
	return resp, nil
}

// GetBalance retrieves the ledger row for a warehouse/item pair
func (s *ReportService) GetBalance(ctx context.Context, warehouseID, itemID uuid.UUID) (*BalanceResponse, error) {
	balance, err := s.balanceRepo.FindByWarehouseAndItem(ctx, warehouseID, itemID)
	if err != nil {
		return nil, err
	}
	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	resp := toBalanceResponse(balance, item)
	return &resp, nil
}

// ListBalances retrieves a paginated ledger listing with a status per row
func (s *ReportService) ListBalances(ctx context.Context, filter BalanceListFilter) ([]BalanceResponse, int64, error) {
	domainFilter := balanceFilter(filter)

	total, err := s.balanceRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	balances, err := s.balanceRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	itemIDs := make([]uuid.UUID, 0, len(balances))
	for i := range balances {
		itemIDs = append(itemIDs, balances[i].ItemID)
	}
	items, err := s.itemRepo.FindByIDs(ctx, itemIDs)
	if err != nil {
		return nil, 0, err
	}
	itemsByID := make(map[uuid.UUID]*catalog.Item, len(items))
	for i := range items {
		itemsByID[items[i].ID] = &items[i]
	}

	responses := make([]BalanceResponse, 0, len(balances))
	for i := range balances {
		responses = append(responses, toBalanceResponse(&balances[i], itemsByID[balances[i].ItemID]))
	}
	return responses, total, nil
}

// InvalidateCache drops all cached report payloads. Called when a ledger
// write makes them stale.
func (s *ReportService) InvalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, reportCachePattern); err != nil {
		s.logger.Warn("failed to invalidate report cache", zap.Error(err))
	}
}

func (s *ReportService) cacheGet(ctx context.Context, key string, dest any) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("report cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return hit
}

func (s *ReportService) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// toBalanceResponse classifies a ledger row against the item thresholds.
// Rows without a matching item report NORMAL.
func toBalanceResponse(balance *inventory.StockBalance, item *catalog.Item) BalanceResponse {
	return BalanceResponse{
		ID:             balance.ID,
		WarehouseID:    balance.WarehouseID,
		ItemID:         balance.ItemID,
		Quantity:       balance.Quantity,
		ReservedQty:    balance.ReservedQty,
		AvailableQty:   balance.AvailableQty,
		Status:         balanceStatus(balance, item),
		LastMovementAt: balance.LastMovementAt,
		UpdatedAt:      balance.UpdatedAt,
	}
}

func balanceStatus(balance *inventory.StockBalance, item *catalog.Item) string {
	if item == nil {
		return BalanceStatusNormal
	}
	qty := balance.Quantity
	switch {
	case item.MinStock.IsPositive() && qty.LessThanOrEqual(item.MinStock):
		return BalanceStatusCritical
	case item.ReorderPoint.IsPositive() && qty.LessThanOrEqual(item.ReorderPoint):
		return BalanceStatusLow
	case item.MaxStock.Valid && qty.GreaterThan(item.MaxStock.Decimal):
		return BalanceStatusOverstock
	}
	return BalanceStatusNormal
}

// suggestedOrderQty proposes how much to order: up to the maximum stock when
// one is set, otherwise up to twice the reorder point
func suggestedOrderQty(row *inventory.LowStockRow) decimal.Decimal {
	target := row.ReorderPoint.Mul(decimal.NewFromInt(2))
	if row.MaxStock.Valid {
		target = row.MaxStock.Decimal
	}
	suggested := target.Sub(row.Quantity)
	if suggested.IsNegative() {
		return decimal.Zero
	}
	return suggested
}

// balanceFilter converts the API filter to the repository filter
func balanceFilter(f BalanceListFilter) shared.Filter {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.OrderBy != "" {
		filter.OrderBy = f.OrderBy
	}
	if f.OrderDir != "" {
		filter.OrderDir = f.OrderDir
	}
	if f.WarehouseID != nil {
		filter.Filters["warehouse_id"] = *f.WarehouseID
	}
	if f.ItemID != nil {
		filter.Filters["item_id"] = *f.ItemID
	}
	if f.NonZeroOnly {
		filter.Filters["non_zero_only"] = true
	}
	return filter
}

func scopeKey(warehouseID *uuid.UUID) string {
	if warehouseID == nil {
		return "all"
	}
	return warehouseID.String()
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
