package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/mizan-erp/backend/internal/domain/catalog"
	"github.com/mizan-erp/backend/internal/domain/inventory"
	"github.com/mizan-erp/backend/internal/domain/shared"
)

// WarehouseService handles warehouse-related business operations
type WarehouseService struct {
	warehouseRepo  catalog.WarehouseRepository
	balanceRepo    inventory.StockBalanceRepository
	eventPublisher shared.EventPublisher
}

// NewWarehouseService creates a new WarehouseService
func NewWarehouseService(warehouseRepo catalog.WarehouseRepository, balanceRepo inventory.StockBalanceRepository) *WarehouseService {
	return &WarehouseService{
		warehouseRepo: warehouseRepo,
		balanceRepo:   balanceRepo,
	}
}

// SetEventPublisher sets the event publisher (optional)
func (s *WarehouseService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new warehouse
func (s *WarehouseService) Create(ctx context.Context, req CreateWarehouseRequest) (*WarehouseResponse, error) {
	exists, err := s.warehouseRepo.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("CONFLICT", "Warehouse with this code already exists")
	}

	warehouse, err := catalog.NewWarehouse(req.Code, req.Name, req.NameAr, req.Address)
	if err != nil {
		return nil, err
	}

	if err := s.warehouseRepo.Save(ctx, warehouse); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, warehouse)

	response := ToWarehouseResponse(warehouse)
	return &response, nil
}

// GetByID retrieves a warehouse by ID
func (s *WarehouseService) GetByID(ctx context.Context, id uuid.UUID) (*WarehouseResponse, error) {
	warehouse, err := s.warehouseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := ToWarehouseResponse(warehouse)
	return &response, nil
}

// GetByCode retrieves a warehouse by its code
func (s *WarehouseService) GetByCode(ctx context.Context, code string) (*WarehouseResponse, error) {
	warehouse, err := s.warehouseRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	response := ToWarehouseResponse(warehouse)
	return &response, nil
}

// List retrieves a paginated list of warehouses
func (s *WarehouseService) List(ctx context.Context, filter WarehouseListFilter) ([]WarehouseResponse, int64, error) {
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

	total, err := s.warehouseRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	warehouses, err := s.warehouseRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]WarehouseResponse, 0, len(warehouses))
	for i := range warehouses {
		responses = append(responses, ToWarehouseResponse(&warehouses[i]))
	}
	return responses, total, nil
}

// Update updates the warehouse's basic information
func (s *WarehouseService) Update(ctx context.Context, id uuid.UUID, req UpdateWarehouseRequest) (*WarehouseResponse, error) {
	warehouse, err := s.warehouseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := warehouse.Update(req.Name, req.NameAr, req.Address); err != nil {
		return nil, err
	}
	if err := s.warehouseRepo.Save(ctx, warehouse); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, warehouse)

	response := ToWarehouseResponse(warehouse)
	return &response, nil
}

// Activate activates a warehouse
func (s *WarehouseService) Activate(ctx context.Context, id uuid.UUID) (*WarehouseResponse, error) {
	return s.changeStatus(ctx, id, (*catalog.Warehouse).Activate)
}

// Deactivate deactivates a warehouse. Stock stays on the ledger; the
// warehouse just stops accepting new movements.
func (s *WarehouseService) Deactivate(ctx context.Context, id uuid.UUID) (*WarehouseResponse, error) {
	return s.changeStatus(ctx, id, (*catalog.Warehouse).Deactivate)
}

// Delete removes a warehouse with no remaining stock
func (s *WarehouseService) Delete(ctx context.Context, id uuid.UUID) error {
	warehouse, err := s.warehouseRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	filter := shared.DefaultFilter()
	filter.Filters["warehouse_id"] = warehouse.ID
	filter.Filters["non_zero_only"] = true
	stocked, err := s.balanceRepo.Count(ctx, filter)
	if err != nil {
		return err
	}
	if stocked > 0 {
		return shared.NewDomainErrorf("CONFLICT",
			"Warehouse still holds stock in %d items and cannot be deleted", stocked)
	}

	return s.warehouseRepo.Delete(ctx, warehouse.ID)
}

func (s *WarehouseService) changeStatus(ctx context.Context, id uuid.UUID, change func(*catalog.Warehouse) error) (*WarehouseResponse, error) {
	warehouse, err := s.warehouseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := change(warehouse); err != nil {
		return nil, err
	}
	if err := s.warehouseRepo.Save(ctx, warehouse); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, warehouse)

	response := ToWarehouseResponse(warehouse)
	return &response, nil
}

func (s *WarehouseService) publishDomainEvents(ctx context.Context, warehouse *catalog.Warehouse) {
	if s.eventPublisher == nil {
		return
	}
	events := warehouse.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	warehouse.ClearDomainEvents()
}
