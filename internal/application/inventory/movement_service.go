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
)

// documentNumberRetries bounds how often an operation is replayed when its
// generated document number loses the insert race.
const documentNumberRetries = 3

// MovementService provides application services for stock movements. Every
// mutation runs inside a TransactionScope: the ledger update and the
// movement record commit or roll back together.
type MovementService struct {
	scope          TransactionScope
	movementRepo   inventory.StockMovementRepository
	balanceRepo    inventory.StockBalanceRepository
	itemRepo       catalog.ItemRepository
	warehouseRepo  catalog.WarehouseRepository
	eventPublisher shared.EventPublisher
}

// NewMovementService creates a new MovementService
func NewMovementService(
	scope TransactionScope,
	movementRepo inventory.StockMovementRepository,
	balanceRepo inventory.StockBalanceRepository,
	itemRepo catalog.ItemRepository,
	warehouseRepo catalog.WarehouseRepository,
) *MovementService {
	return &MovementService{
		scope:         scope,
		movementRepo:  movementRepo,
		balanceRepo:   balanceRepo,
		itemRepo:      itemRepo,
		warehouseRepo: warehouseRepo,
	}
}

// SetEventPublisher sets the event publisher (optional)
func (s *MovementService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateInbound receives stock into a warehouse
func (s *MovementService) CreateInbound(ctx context.Context, req CreateInboundRequest) (*MovementResponse, error) {
	refType := inventory.ReferenceType(req.ReferenceType)
	if !refType.IsValid() {
		return nil, shared.NewDomainErrorf("VALIDATION_ERROR", "Invalid reference type: %s", req.ReferenceType)
	}
	if !req.Quantity.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Quantity must be positive")
	}
	if req.UnitCost.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Unit cost cannot be negative")
	}
	if _, err := s.validateTarget(ctx, req.WarehouseID, req.ItemID); err != nil {
		return nil, err
	}

	date := movementDate(req.MovementDate)

	var movement *inventory.StockMovement
	err := s.executeWithRetry(ctx, func(repos TransactionalRepositories) error {
		movement = nil

		balance, err := repos.BalanceRepo().GetOrCreate(ctx, req.WarehouseID, req.ItemID)
		if err != nil {
			return err
		}
		before := balance.Quantity
		if err := balance.Add(req.Quantity, date); err != nil {
			return err
		}
		if err := repos.BalanceRepo().SaveWithLock(ctx, balance); err != nil {
			return err
		}

		number, err := repos.MovementRepo().NextNumber(ctx, date)
		if err != nil {
			return err
		}
		m, err := inventory.NewStockMovement(number, inventory.MovementTypeIn,
			req.WarehouseID, req.ItemID, req.Quantity, before, balance.Quantity, date)
		if err != nil {
			return err
		}
		m.WithReference(refType, req.ReferenceID).
			WithUnitCost(req.UnitCost).
			WithNotes(req.Notes).
			WithCreatedBy(req.CreatedBy)

		if err := repos.MovementRepo().Create(ctx, m); err != nil {
			return err
		}
		movement = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, inventory.NewStockMovementRecordedEvent(movement))

	resp := ToMovementResponse(movement)
	return &resp, nil
}

// CreateOutbound issues stock from a warehouse. The available quantity must
// cover the request; with ReleaseReserved the issue consumes an existing
// reservation of the same size.
func (s *MovementService) CreateOutbound(ctx context.Context, req CreateOutboundRequest) (*MovementResponse, error) {
	refType := inventory.ReferenceType(req.ReferenceType)
	if !refType.IsValid() {
		return nil, shared.NewDomainErrorf("VALIDATION_ERROR", "Invalid reference type: %s", req.ReferenceType)
	}
	if !req.Quantity.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Quantity must be positive")
	}
	item, err := s.validateTarget(ctx, req.WarehouseID, req.ItemID)
	if err != nil {
		return nil, err
	}

	date := movementDate(req.MovementDate)

	var movement *inventory.StockMovement
	var lowStock shared.DomainEvent
	err = s.executeWithRetry(ctx, func(repos TransactionalRepositories) error {
		movement, lowStock = nil, nil

		balance, err := repos.BalanceRepo().GetOrCreate(ctx, req.WarehouseID, req.ItemID)
		if err != nil {
			return err
		}
		if req.ReleaseReserved {
			if err := balance.Release(req.Quantity); err != nil {
				return err
			}
		}
		if !balance.HasAvailable(req.Quantity) {
			return shared.NewDomainErrorf("INSUFFICIENT_STOCK",
				"Insufficient stock: available %s, requested %s",
				balance.AvailableQty.String(), req.Quantity.String())
		}
		before := balance.Quantity
		if err := balance.Subtract(req.Quantity, date); err != nil {
			return err
		}
		if err := repos.BalanceRepo().SaveWithLock(ctx, balance); err != nil {
			return err
		}

		number, err := repos.MovementRepo().NextNumber(ctx, date)
		if err != nil {
			return err
		}
		m, err := inventory.NewStockMovement(number, inventory.MovementTypeOut,
			req.WarehouseID, req.ItemID, req.Quantity, before, balance.Quantity, date)
		if err != nil {
			return err
		}
		m.WithReference(refType, req.ReferenceID).
			WithUnitCost(item.CostPrice).
			WithNotes(req.Notes).
			WithCreatedBy(req.CreatedBy)

		if err := repos.MovementRepo().Create(ctx, m); err != nil {
			return err
		}
		movement = m
		lowStock = lowStockEvent(balance, item)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, inventory.NewStockMovementRecordedEvent(movement))
	if lowStock != nil {
		s.publish(ctx, lowStock)
	}

	resp := ToMovementResponse(movement)
	return &resp, nil
}

// CreateAdjustment corrects the ledger to a physically observed quantity.
// The movement stores the magnitude of the correction; the direction is
// recoverable from the balances around it.
func (s *MovementService) CreateAdjustment(ctx context.Context, req CreateAdjustmentRequest) (*MovementResponse, error) {
	reason := inventory.ReferenceType(req.Reason)
	if !reason.IsAdjustmentReason() {
		return nil, shared.NewDomainErrorf("VALIDATION_ERROR", "Invalid adjustment reason: %s", req.Reason)
	}
	if req.NewQuantity.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "New quantity cannot be negative")
	}
	item, err := s.validateTarget(ctx, req.WarehouseID, req.ItemID)
	if err != nil {
		return nil, err
	}

	date := time.Now()

	var movement *inventory.StockMovement
	var lowStock shared.DomainEvent
	err = s.executeWithRetry(ctx, func(repos TransactionalRepositories) error {
		movement, lowStock = nil, nil

		balance, err := repos.BalanceRepo().GetOrCreate(ctx, req.WarehouseID, req.ItemID)
		if err != nil {
			return err
		}
		delta := req.NewQuantity.Sub(balance.Quantity)
		if delta.IsZero() {
			return shared.NewDomainErrorf("VALIDATION_ERROR",
				"Stock is already at %s, nothing to adjust", balance.Quantity.String())
		}

		m, err := s.applyAdjustment(ctx, repos, balance, delta, reason, req.ReferenceID, req.Notes, req.CreatedBy, date)
		if err != nil {
			return err
		}
		m.WithUnitCost(item.CostPrice)

		movement = m
		if delta.IsNegative() {
			lowStock = lowStockEvent(balance, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, inventory.NewStockMovementRecordedEvent(movement))
	if lowStock != nil {
		s.publish(ctx, lowStock)
	}

	resp := ToMovementResponse(movement)
	return &resp, nil
}

// applyAdjustment mutates the balance by delta and writes the ADJUSTMENT
// movement, all against the transactional repositories. Shared between the
// public adjustment operation and stock count completion.
func (s *MovementService) applyAdjustment(
	ctx context.Context,
	repos TransactionalRepositories,
	balance *inventory.StockBalance,
	delta decimal.Decimal,
	reason inventory.ReferenceType,
	refID *uuid.UUID,
	notes, createdBy string,
	date time.Time,
) (*inventory.StockMovement, error) {
	before := balance.Quantity
	if delta.IsPositive() {
		if err := balance.Add(delta, date); err != nil {
			return nil, err
		}
	} else {
		if err := balance.Subtract(delta.Abs(), date); err != nil {
			return nil, err
		}
	}
	if err := repos.BalanceRepo().SaveWithLock(ctx, balance); err != nil {
		return nil, err
	}

	number, err := repos.MovementRepo().NextNumber(ctx, date)
	if err != nil {
		return nil, err
	}
	m, err := inventory.NewStockMovement(number, inventory.MovementTypeAdjustment,
		balance.WarehouseID, balance.ItemID, delta.Abs(), before, balance.Quantity, date)
	if err != nil {
		return nil, err
	}
	m.WithReference(reason, refID).
		WithNotes(notes).
		WithCreatedBy(createdBy)

	if err := repos.MovementRepo().Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// CreateTransfer moves stock between two warehouses in one transaction. The
// two TRANSFER movements share a generated reference ID.
func (s *MovementService) CreateTransfer(ctx context.Context, req CreateTransferRequest) (*TransferResponse, error) {
	if req.FromWarehouseID == req.ToWarehouseID {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Cannot transfer within the same warehouse")
	}
	if !req.Quantity.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Quantity must be positive")
	}
	item, err := s.validateTarget(ctx, req.FromWarehouseID, req.ItemID)
	if err != nil {
		return nil, err
	}
	if _, err := s.findActiveWarehouse(ctx, req.ToWarehouseID); err != nil {
		return nil, err
	}

	date := movementDate(req.MovementDate)
	transferID := uuid.New()

	var outbound, inbound *inventory.StockMovement
	var lowStock shared.DomainEvent
	err = s.executeWithRetry(ctx, func(repos TransactionalRepositories) error {
		outbound, inbound, lowStock = nil, nil, nil

		source, err := repos.BalanceRepo().GetOrCreate(ctx, req.FromWarehouseID, req.ItemID)
		if err != nil {
			return err
		}
		if !source.HasAvailable(req.Quantity) {
			return shared.NewDomainErrorf("INSUFFICIENT_STOCK",
				"Insufficient stock to transfer: available %s, requested %s",
				source.AvailableQty.String(), req.Quantity.String())
		}
		sourceBefore := source.Quantity
		if err := source.Subtract(req.Quantity, date); err != nil {
			return err
		}
		if err := repos.BalanceRepo().SaveWithLock(ctx, source); err != nil {
			return err
		}

		dest, err := repos.BalanceRepo().GetOrCreate(ctx, req.ToWarehouseID, req.ItemID)
		if err != nil {
			return err
		}
		destBefore := dest.Quantity
		if err := dest.Add(req.Quantity, date); err != nil {
			return err
		}
		if err := repos.BalanceRepo().SaveWithLock(ctx, dest); err != nil {
			return err
		}

		outNumber, err := repos.MovementRepo().NextNumber(ctx, date)
		if err != nil {
			return err
		}
		out, err := inventory.NewStockMovement(outNumber, inventory.MovementTypeTransfer,
			req.FromWarehouseID, req.ItemID, req.Quantity, sourceBefore, source.Quantity, date)
		if err != nil {
			return err
		}
		out.WithReference(inventory.ReferenceTypeTransfer, &transferID).
			WithUnitCost(item.CostPrice).
			WithNotes(req.Notes).
			WithCreatedBy(req.CreatedBy)
		if err := repos.MovementRepo().Create(ctx, out); err != nil {
			return err
		}

		inNumber, err := repos.MovementRepo().NextNumber(ctx, date)
		if err != nil {
			return err
		}
		in, err := inventory.NewStockMovement(inNumber, inventory.MovementTypeTransfer,
			req.ToWarehouseID, req.ItemID, req.Quantity, destBefore, dest.Quantity, date)
		if err != nil {
			return err
		}
		in.WithReference(inventory.ReferenceTypeTransfer, &transferID).
			WithUnitCost(item.CostPrice).
			WithNotes(req.Notes).
			WithCreatedBy(req.CreatedBy)
		if err := repos.MovementRepo().Create(ctx, in); err != nil {
			return err
		}

		outbound, inbound = out, in
		lowStock = lowStockEvent(source, item)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, inventory.NewStockMovementRecordedEvent(outbound))
	s.publish(ctx, inventory.NewStockMovementRecordedEvent(inbound))
	if lowStock != nil {
		s.publish(ctx, lowStock)
	}

	return &TransferResponse{
		TransferID: transferID,
		Outbound:   ToMovementResponse(outbound),
		Inbound:    ToMovementResponse(inbound),
	}, nil
}

// CancelMovement voids a movement and restores the ledger through a
// compensating movement. The original record survives for audit. Cancelling
// one leg of a transfer voids both legs.
func (s *MovementService) CancelMovement(ctx context.Context, movementID uuid.UUID, req CancelMovementRequest) (*CancelMovementResponse, error) {
	original, err := s.movementRepo.FindByID(ctx, movementID)
	if err != nil {
		return nil, err
	}
	if original.MovementType == inventory.MovementTypeTransfer {
		return s.cancelTransfer(ctx, original, req)
	}

	var reversal *inventory.StockMovement
	err = s.executeWithRetry(ctx, func(repos TransactionalRepositories) error {
		reversal = nil

		m, err := repos.MovementRepo().FindByID(ctx, movementID)
		if err != nil {
			return err
		}
		if err := m.Void(req.CancelledBy, req.Reason); err != nil {
			return err
		}

		r, err := s.reverseOnLedger(ctx, repos, m, req.CancelledBy)
		if err != nil {
			return err
		}
		if err := repos.MovementRepo().Update(ctx, m); err != nil {
			return err
		}

		original = m
		reversal = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, inventory.NewStockMovementVoidedEvent(original, reversal, req.Reason))

	return &CancelMovementResponse{
		Original: ToMovementResponse(original),
		Reversal: ToMovementResponse(reversal),
	}, nil
}

// cancelTransfer voids both legs of a transfer and restores both ledgers
func (s *MovementService) cancelTransfer(ctx context.Context, leg *inventory.StockMovement, req CancelMovementRequest) (*CancelMovementResponse, error) {
	if leg.ReferenceID == nil {
		return nil, shared.NewDomainError("INVALID_STATE", "Transfer movement has no transfer reference")
	}

	var originals, reversals []*inventory.StockMovement
	err := s.executeWithRetry(ctx, func(repos TransactionalRepositories) error {
		originals, reversals = nil, nil

		legs, err := repos.MovementRepo().FindByReference(ctx, inventory.ReferenceTypeTransfer, *leg.ReferenceID)
		if err != nil {
			return err
		}
		for i := range legs {
			m := &legs[i]
			if m.IsReversal() {
				return shared.NewDomainError("CONFLICT", "Transfer is already cancelled")
			}
			if err := m.Void(req.CancelledBy, req.Reason); err != nil {
				return err
			}
			r, err := s.reverseOnLedger(ctx, repos, m, req.CancelledBy)
			if err != nil {
				return err
			}
			if err := repos.MovementRepo().Update(ctx, m); err != nil {
				return err
			}
			originals = append(originals, m)
			reversals = append(reversals, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range originals {
		s.publish(ctx, inventory.NewStockMovementVoidedEvent(originals[i], reversals[i], req.Reason))
	}

	// Report the leg that was asked about
	resp := &CancelMovementResponse{}
	for i := range originals {
		if originals[i].ID == leg.ID {
			resp.Original = ToMovementResponse(originals[i])
			resp.Reversal = ToMovementResponse(reversals[i])
		}
	}
	return resp, nil
}

// reverseOnLedger applies the opposite of a movement to its balance row and
// writes the compensating movement record
func (s *MovementService) reverseOnLedger(
	ctx context.Context,
	repos TransactionalRepositories,
	m *inventory.StockMovement,
	cancelledBy string,
) (*inventory.StockMovement, error) {
	balance, err := repos.BalanceRepo().GetOrCreate(ctx, m.WarehouseID, m.ItemID)
	if err != nil {
		return nil, err
	}
	before := balance.Quantity
	now := time.Now()
	if m.IsIncrease() {
		if err := balance.Subtract(m.Quantity, now); err != nil {
			return nil, err
		}
	} else {
		if err := balance.Add(m.Quantity, now); err != nil {
			return nil, err
		}
	}
	if err := repos.BalanceRepo().SaveWithLock(ctx, balance); err != nil {
		return nil, err
	}

	number, err := repos.MovementRepo().NextNumber(ctx, now)
	if err != nil {
		return nil, err
	}
	reversal, err := m.NewReversal(number, before, balance.Quantity, cancelledBy)
	if err != nil {
		return nil, err
	}
	if err := repos.MovementRepo().Create(ctx, reversal); err != nil {
		return nil, err
	}
	return reversal, nil
}

// Reserve sets aside available stock for a pending order
func (s *MovementService) Reserve(ctx context.Context, req ReservationRequest) error {
	if !req.Quantity.IsPositive() {
		return shared.NewDomainError("VALIDATION_ERROR", "Quantity must be positive")
	}
	if _, err := s.validateTarget(ctx, req.WarehouseID, req.ItemID); err != nil {
		return err
	}

	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		balance, err := repos.BalanceRepo().GetOrCreate(ctx, req.WarehouseID, req.ItemID)
		if err != nil {
			return err
		}
		if err := balance.Reserve(req.Quantity); err != nil {
			return err
		}
		return repos.BalanceRepo().SaveWithLock(ctx, balance)
	})
}

// ReleaseReservation returns reserved stock to the available pool
func (s *MovementService) ReleaseReservation(ctx context.Context, req ReservationRequest) error {
	if !req.Quantity.IsPositive() {
		return shared.NewDomainError("VALIDATION_ERROR", "Quantity must be positive")
	}

	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		balance, err := repos.BalanceRepo().FindByWarehouseAndItem(ctx, req.WarehouseID, req.ItemID)
		if err != nil {
			return err
		}
		if err := balance.Release(req.Quantity); err != nil {
			return err
		}
		return repos.BalanceRepo().SaveWithLock(ctx, balance)
	})
}

// GetMovement retrieves a movement by ID
func (s *MovementService) GetMovement(ctx context.Context, id uuid.UUID) (*MovementResponse, error) {
	m, err := s.movementRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToMovementResponse(m)
	return &resp, nil
}

// GetMovementByNumber retrieves a movement by its document number
func (s *MovementService) GetMovementByNumber(ctx context.Context, number string) (*MovementResponse, error) {
	m, err := s.movementRepo.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	resp := ToMovementResponse(m)
	return &resp, nil
}

// ListMovements retrieves a paginated list of movements
func (s *MovementService) ListMovements(ctx context.Context, filter MovementListFilter) ([]MovementResponse, int64, error) {
	domainFilter := movementFilter(filter)

	total, err := s.movementRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	movements, err := s.movementRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]MovementResponse, 0, len(movements))
	for i := range movements {
		responses = append(responses, ToMovementResponse(&movements[i]))
	}
	return responses, total, nil
}

// executeWithRetry replays the whole transaction when the generated document
// number loses the insert race. Any other error, including optimistic lock
// conflicts, surfaces immediately.
func (s *MovementService) executeWithRetry(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
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

// validateTarget checks that the warehouse and item exist and are active,
// returning the item for threshold and cost lookups
func (s *MovementService) validateTarget(ctx context.Context, warehouseID, itemID uuid.UUID) (*catalog.Item, error) {
	if _, err := s.findActiveWarehouse(ctx, warehouseID); err != nil {
		return nil, err
	}
	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Item not found")
		}
		return nil, err
	}
	if !item.IsActive() {
		return nil, shared.NewDomainError("INVALID_STATE", "Item is not active")
	}
	return item, nil
}

func (s *MovementService) findActiveWarehouse(ctx context.Context, warehouseID uuid.UUID) (*catalog.Warehouse, error) {
	warehouse, err := s.warehouseRepo.FindByID(ctx, warehouseID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Warehouse not found")
		}
		return nil, err
	}
	if !warehouse.IsActive() {
		return nil, shared.NewDomainError("INVALID_STATE", "Warehouse is not active")
	}
	return warehouse, nil
}

// publish sends events to the bus if one is configured. Errors are handled
// by the bus, not propagated into the business operation.
func (s *MovementService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}

// lowStockEvent returns a StockBelowReorderPoint event when the balance sits
// at or below the item's reorder point, nil otherwise
func lowStockEvent(balance *inventory.StockBalance, item *catalog.Item) shared.DomainEvent {
	if !item.ReorderPoint.IsPositive() {
		return nil
	}
	if balance.Quantity.GreaterThan(item.ReorderPoint) {
		return nil
	}
	return inventory.NewStockBelowReorderPointEvent(balance, item.ReorderPoint, item.MinStock)
}

// movementDate defaults the movement date to now
func movementDate(t *time.Time) time.Time {
	if t != nil {
		return *t
	}
	return time.Now()
}

// movementFilter converts the API filter to the repository filter
func movementFilter(f MovementListFilter) shared.Filter {
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
	if f.MovementType != "" {
		filter.Filters["movement_type"] = f.MovementType
	}
	if f.ReferenceType != "" {
		filter.Filters["reference_type"] = f.ReferenceType
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
