package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mizan-erp/backend/internal/domain/catalog"
	"github.com/mizan-erp/backend/internal/domain/inventory"
	"github.com/mizan-erp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CountService provides application services for physical stock counts.
// Completion goes through the movement service so that count adjustments
// land on the ledger the same way manual adjustments do.
type CountService struct {
	scope          TransactionScope
	countRepo      inventory.StockCountRepository
	balanceRepo    inventory.StockBalanceRepository
	itemRepo       catalog.ItemRepository
	warehouseRepo  catalog.WarehouseRepository
	movements      *MovementService
	eventPublisher shared.EventPublisher
}

// NewCountService creates a new CountService
func NewCountService(
	scope TransactionScope,
	countRepo inventory.StockCountRepository,
	balanceRepo inventory.StockBalanceRepository,
	itemRepo catalog.ItemRepository,
	warehouseRepo catalog.WarehouseRepository,
	movements *MovementService,
) *CountService {
	return &CountService{
		scope:         scope,
		countRepo:     countRepo,
		balanceRepo:   balanceRepo,
		itemRepo:      itemRepo,
		warehouseRepo: warehouseRepo,
		movements:     movements,
	}
}

// SetEventPublisher sets the event publisher (optional)
func (s *CountService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateCount opens a draft count over a warehouse, freezing the system
// quantities of the selected items. An empty item list counts every ledger
// row of the warehouse.
func (s *CountService) CreateCount(ctx context.Context, req CreateCountRequest) (*CountResponse, error) {
	warehouse, err := s.warehouseRepo.FindByID(ctx, req.WarehouseID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Warehouse not found")
		}
		return nil, err
	}
	if !warehouse.IsActive() {
		return nil, shared.NewDomainError("INVALID_STATE", "Warehouse is not active")
	}

	date := movementDate(req.CountDate)

	var count *inventory.StockCount
	err = s.executeWithRetry(ctx, func(repos TransactionalRepositories) error {
		count = nil

		number, err := repos.CountRepo().NextNumber(ctx, date)
		if err != nil {
			return err
		}
		c := inventory.NewStockCount(number, req.WarehouseID, date, req.CountedBy)
		c.Notes = req.Notes

		if len(req.ItemIDs) > 0 {
			for _, itemID := range req.ItemIDs {
				item, err := s.itemRepo.FindByID(ctx, itemID)
				if err != nil {
					if errors.Is(err, shared.ErrNotFound) {
						return shared.NewDomainErrorf("NOT_FOUND", "Item %s not found", itemID)
					}
					return err
				}
				qty := decimal.Zero
				balance, err := repos.BalanceRepo().FindByWarehouseAndItem(ctx, req.WarehouseID, item.ID)
				if err == nil {
					qty = balance.Quantity
				} else if !errors.Is(err, shared.ErrNotFound) {
					return err
				}
				if err := c.AddRecord(item.ID, qty); err != nil {
					return err
				}
			}
		} else {
			filter := shared.DefaultFilter()
			filter.PageSize = 0 // snapshot the whole warehouse
			balances, err := repos.BalanceRepo().FindByWarehouse(ctx, req.WarehouseID, filter)
			if err != nil {
				return err
			}
			if len(balances) == 0 {
				return shared.NewDomainError("VALIDATION_ERROR", "Warehouse has no stock to count")
			}
			for i := range balances {
				if err := c.AddRecord(balances[i].ItemID, balances[i].Quantity); err != nil {
					return err
				}
			}
		}

		if err := repos.CountRepo().SaveWithRecords(ctx, c); err != nil {
			return err
		}
		count = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, count)

	resp := ToCountResponse(count)
	return &resp, nil
}

// RecordCounts stores a batch of physically counted quantities. The first
// recorded quantity moves a draft count to IN_PROGRESS.
func (s *CountService) RecordCounts(ctx context.Context, countID uuid.UUID, req RecordCountsRequest) (*CountResponse, error) {
	var count *inventory.StockCount
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		c, err := repos.CountRepo().FindByID(ctx, countID)
		if err != nil {
			return err
		}
		for _, rec := range req.Records {
			if err := c.RecordCount(rec.ItemID, rec.CountedQty, rec.Notes); err != nil {
				return err
			}
		}
		if err := repos.CountRepo().SaveWithRecords(ctx, c); err != nil {
			return err
		}
		count = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := ToCountResponse(count)
	return &resp, nil
}

// CalculateDifferences returns the current difference summary without
// touching the count
func (s *CountService) CalculateDifferences(ctx context.Context, countID uuid.UUID) (*DifferencesSummary, error) {
	count, err := s.countRepo.FindByID(ctx, countID)
	if err != nil {
		return nil, err
	}
	summary := summarizeDifferences(count)
	return &summary, nil
}

// CompleteCount finishes the count and, when requested, writes one COUNT
// adjustment movement per difference. The status change and every adjustment
// commit in a single transaction.
func (s *CountService) CompleteCount(ctx context.Context, countID uuid.UUID, req CompleteCountRequest) (*CountReportResponse, error) {
	var count *inventory.StockCount
	var adjustments []*inventory.StockMovement
	err := s.executeWithRetry(ctx, func(repos TransactionalRepositories) error {
		count, adjustments = nil, nil

		c, err := repos.CountRepo().FindByID(ctx, countID)
		if err != nil {
			return err
		}
		if err := c.Complete(req.ApprovedBy); err != nil {
			return err
		}

		if req.CreateAdjustments {
			diffs := c.DifferenceRecords()
			for i := range diffs {
				rec := &diffs[i]
				balance, err := repos.BalanceRepo().GetOrCreate(ctx, c.WarehouseID, rec.ItemID)
				if err != nil {
					return err
				}
				// Adjust to the counted quantity, not by the frozen
				// difference: movements since the snapshot stay intact.
				delta := rec.CountedQty.Decimal.Sub(balance.Quantity)
				if delta.IsZero() {
					continue
				}
				m, err := s.movements.applyAdjustment(ctx, repos, balance, delta,
					inventory.ReferenceTypeCount, &c.ID,
					"Stock count "+c.CountNumber, req.ApprovedBy, c.CountDate)
				if err != nil {
					return err
				}
				adjustments = append(adjustments, m)
			}
		}

		if err := repos.CountRepo().Save(ctx, c); err != nil {
			return err
		}
		count = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, count)
	for _, m := range adjustments {
		if s.eventPublisher != nil {
			_ = s.eventPublisher.Publish(ctx, inventory.NewStockMovementRecordedEvent(m))
		}
	}

	return s.buildReport(count, adjustments), nil
}

// CancelCount abandons a count that has not been completed
func (s *CountService) CancelCount(ctx context.Context, countID uuid.UUID, req CancelCountRequest) (*CountResponse, error) {
	var count *inventory.StockCount
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		c, err := repos.CountRepo().FindByID(ctx, countID)
		if err != nil {
			return err
		}
		if err := c.Cancel(req.Reason); err != nil {
			return err
		}
		if err := repos.CountRepo().Save(ctx, c); err != nil {
			return err
		}
		count = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, count)

	resp := ToCountResponse(count)
	return &resp, nil
}

// GetCount retrieves a stock count with its records
func (s *CountService) GetCount(ctx context.Context, id uuid.UUID) (*CountResponse, error) {
	count, err := s.countRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCountResponse(count)
	return &resp, nil
}

// GetCountByNumber retrieves a stock count by its document number
func (s *CountService) GetCountByNumber(ctx context.Context, number string) (*CountResponse, error) {
	count, err := s.countRepo.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	resp := ToCountResponse(count)
	return &resp, nil
}

// GetCountReport returns the count with its difference summary and, for a
// completed count, the adjustment movements it produced
func (s *CountService) GetCountReport(ctx context.Context, id uuid.UUID) (*CountReportResponse, error) {
	count, err := s.countRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var adjustments []*inventory.StockMovement
	if count.Status == inventory.StockCountStatusCompleted {
		movements, err := s.movements.movementRepo.FindByReference(ctx, inventory.ReferenceTypeCount, count.ID)
		if err != nil {
			return nil, err
		}
		for i := range movements {
			adjustments = append(adjustments, &movements[i])
		}
	}

	return s.buildReport(count, adjustments), nil
}

// ListCounts retrieves a paginated list of stock counts
func (s *CountService) ListCounts(ctx context.Context, filter CountListFilter) ([]CountResponse, int64, error) {
	domainFilter := countFilter(filter)

	total, err := s.countRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	counts, err := s.countRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]CountResponse, 0, len(counts))
	for i := range counts {
		responses = append(responses, ToCountResponse(&counts[i]))
	}
	return responses, total, nil
}

func (s *CountService) buildReport(count *inventory.StockCount, adjustments []*inventory.StockMovement) *CountReportResponse {
	report := &CountReportResponse{
		Count:   ToCountResponse(count),
		Summary: summarizeDifferences(count),
	}
	for _, m := range adjustments {
		report.Adjustments = append(report.Adjustments, ToMovementResponse(m))
	}
	return report
}

func (s *CountService) executeWithRetry(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	var err error
	for attempt := 0; attempt < documentNumberRetries; attempt++ {
		err = s.scope.Execute(ctx, fn)
		var dup *inventory.DuplicateNumberError
		if err == nil || !errors.As(err, &dup) {
			return err
		}
	}
	return shared.NewDomainError("CONFLICT", "Could not allocate a unique document number, please retry")
}

// publish drains the count's domain events into the bus
func (s *CountService) publish(ctx context.Context, count *inventory.StockCount) {
	if s.eventPublisher == nil {
		return
	}
	events := count.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	count.ClearDomainEvents()
}

// summarizeDifferences aggregates the outcome of a count
func summarizeDifferences(count *inventory.StockCount) DifferencesSummary {
	summary := DifferencesSummary{
		TotalRecords:  len(count.Records),
		SurplusQty:    decimal.Zero,
		ShortageQty:   decimal.Zero,
		NetDifference: decimal.Zero,
	}
	for i := range count.Records {
		rec := &count.Records[i]
		if !rec.IsCounted() {
			summary.Uncounted++
			continue
		}
		summary.Counted++
		switch {
		case rec.Difference.IsZero():
			summary.Matched++
		case rec.Difference.IsPositive():
			summary.Surplus++
			summary.SurplusQty = summary.SurplusQty.Add(rec.Difference)
		default:
			summary.Shortage++
			summary.ShortageQty = summary.ShortageQty.Add(rec.Difference.Abs())
		}
		summary.NetDifference = summary.NetDifference.Add(rec.Difference)
	}
	return summary
}

// countFilter converts the API filter to the repository filter
func countFilter(f CountListFilter) shared.Filter {
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
	if f.Status != "" {
		filter.Filters["status"] = f.Status
	}
	if f.StartDate != nil {
		filter.Filters["start_date"] = *f.StartDate
	}
	if f.EndDate != nil {
		filter.Filters["end_date"] = *f.EndDate
	}
	return filter
}
