package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/mizan-erp/backend/internal/domain/catalog"
	"github.com/mizan-erp/backend/internal/domain/inventory"
	"github.com/mizan-erp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ItemService handles item-related business operations
type ItemService struct {
	itemRepo       catalog.ItemRepository
	balanceRepo    inventory.StockBalanceRepository
	eventPublisher shared.EventPublisher
}

// NewItemService creates a new ItemService
func NewItemService(itemRepo catalog.ItemRepository, balanceRepo inventory.StockBalanceRepository) *ItemService {
	return &ItemService{
		itemRepo:    itemRepo,
		balanceRepo: balanceRepo,
	}
}

// SetEventPublisher sets the event publisher (optional)
func (s *ItemService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new item
func (s *ItemService) Create(ctx context.Context, req CreateItemRequest) (*ItemResponse, error) {
	exists, err := s.itemRepo.ExistsBySKU(ctx, req.SKU)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("CONFLICT", "Item with this SKU already exists")
	}

	item, err := catalog.NewItem(req.SKU, req.Name, req.NameAr, req.Unit)
	if err != nil {
		return nil, err
	}

	if req.Description != "" {
		item.Description = req.Description
	}
	if req.Barcode != "" {
		if err := item.SetBarcode(req.Barcode); err != nil {
			return nil, err
		}
	}

	costPrice, salePrice := decimal.Zero, decimal.Zero
	if req.CostPrice != nil {
		costPrice = *req.CostPrice
	}
	if req.SalePrice != nil {
		salePrice = *req.SalePrice
	}
	if !costPrice.IsZero() || !salePrice.IsZero() {
		if err := item.SetPrices(costPrice, salePrice); err != nil {
			return nil, err
		}
	}

	minStock, reorderPoint := decimal.Zero, decimal.Zero
	if req.MinStock != nil {
		minStock = *req.MinStock
	}
	if req.ReorderPoint != nil {
		reorderPoint = *req.ReorderPoint
	}
	if !minStock.IsZero() || !reorderPoint.IsZero() || req.MaxStock != nil {
		if err := item.SetStockLevels(minStock, reorderPoint, req.MaxStock); err != nil {
			return nil, err
		}
	}

	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, item)

	response := ToItemResponse(item)
	return &response, nil
}

// GetByID retrieves an item by ID
func (s *ItemService) GetByID(ctx context.Context, id uuid.UUID) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := ToItemResponse(item)
	return &response, nil
}

// GetBySKU retrieves an item by SKU
func (s *ItemService) GetBySKU(ctx context.Context, sku string) (*ItemResponse, error) {
	item, err := s.itemRepo.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}

	response := ToItemResponse(item)
	return &response, nil
}

// List retrieves a paginated list of items
func (s *ItemService) List(ctx context.Context, filter ItemListFilter) ([]ItemResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = filter.Search
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	total, err := s.itemRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	items, err := s.itemRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ItemResponse, 0, len(items))
	for i := range items {
		responses = append(responses, ToItemResponse(&items[i]))
	}
	return responses, total, nil
}

// Update updates the item's basic information
func (s *ItemService) Update(ctx context.Context, id uuid.UUID, req UpdateItemRequest) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := item.Update(req.Name, req.NameAr, req.Description, req.Unit); err != nil {
		return nil, err
	}
	if err := item.SetBarcode(req.Barcode); err != nil {
		return nil, err
	}

	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, item)

	response := ToItemResponse(item)
	return &response, nil
}

// UpdatePrices changes the cost and sale prices
func (s *ItemService) UpdatePrices(ctx context.Context, id uuid.UUID, req UpdateItemPricesRequest) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := item.SetPrices(req.CostPrice, req.SalePrice); err != nil {
		return nil, err
	}
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}

	response := ToItemResponse(item)
	return &response, nil
}

// UpdateStockLevels changes the replenishment thresholds
func (s *ItemService) UpdateStockLevels(ctx context.Context, id uuid.UUID, req UpdateItemStockLevelsRequest) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := item.SetStockLevels(req.MinStock, req.ReorderPoint, req.MaxStock); err != nil {
		return nil, err
	}
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}

	response := ToItemResponse(item)
	return &response, nil
}

// Activate activates an item
func (s *ItemService) Activate(ctx context.Context, id uuid.UUID) (*ItemResponse, error) {
	return s.changeStatus(ctx, id, (*catalog.Item).Activate)
}

// Deactivate deactivates an item. Existing stock is untouched; the item just
// stops accepting new movements.
func (s *ItemService) Deactivate(ctx context.Context, id uuid.UUID) (*ItemResponse, error) {
	return s.changeStatus(ctx, id, (*catalog.Item).Deactivate)
}

// Delete removes an item that holds no stock anywhere. Items with movement
// history should be deactivated instead.
func (s *ItemService) Delete(ctx context.Context, id uuid.UUID) error {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	onHand, err := s.balanceRepo.SumQuantityByItem(ctx, item.ID)
	if err != nil {
		return err
	}
	if !onHand.IsZero() {
		return shared.NewDomainErrorf("CONFLICT",
			"Item still holds %s on hand and cannot be deleted", onHand.String())
	}

	return s.itemRepo.Delete(ctx, item.ID)
}

func (s *ItemService) changeStatus(ctx context.Context, id uuid.UUID, change func(*catalog.Item) error) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := change(item); err != nil {
		return nil, err
	}
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, item)

	response := ToItemResponse(item)
	return &response, nil
}

func (s *ItemService) publishDomainEvents(ctx context.Context, item *catalog.Item) {
	if s.eventPublisher == nil {
		return
	}
	events := item.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	item.ClearDomainEvents()
}
