package inventory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mizan-erp/backend/internal/domain/catalog"
	"github.com/mizan-erp/backend/internal/domain/inventory"
	"github.com/mizan-erp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockEventPublisher collects published events for assertions
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{events: make([]shared.DomainEvent, 0)}
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) GetEvents() []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]shared.DomainEvent, len(m.events))
	copy(result, m.events)
	return result
}

func (m *MockEventPublisher) GetEventsByType(eventType string) []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]shared.DomainEvent, 0)
	for _, e := range m.events {
		if e.EventType() == eventType {
			result = append(result, e)
		}
	}
	return result
}

// MockStockBalanceRepository is a mock implementation of StockBalanceRepository
type MockStockBalanceRepository struct {
	mock.Mock
}

func (m *MockStockBalanceRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockBalance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockBalance), args.Error(1)
}

func (m *MockStockBalanceRepository) FindByWarehouseAndItem(ctx context.Context, warehouseID, itemID uuid.UUID) (*inventory.StockBalance, error) {
	args := m.Called(ctx, warehouseID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockBalance), args.Error(1)
}

func (m *MockStockBalanceRepository) FindByWarehouse(ctx context.Context, warehouseID uuid.UUID, filter shared.Filter) ([]inventory.StockBalance, error) {
	args := m.Called(ctx, warehouseID, filter)
	return args.Get(0).([]inventory.StockBalance), args.Error(1)
}

func (m *MockStockBalanceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.StockBalance, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]inventory.StockBalance), args.Error(1)
}

func (m *MockStockBalanceRepository) GetOrCreate(ctx context.Context, warehouseID, itemID uuid.UUID) (*inventory.StockBalance, error) {
	args := m.Called(ctx, warehouseID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockBalance), args.Error(1)
}

func (m *MockStockBalanceRepository) Save(ctx context.Context, balance *inventory.StockBalance) error {
	args := m.Called(ctx, balance)
	return args.Error(0)
}

func (m *MockStockBalanceRepository) SaveWithLock(ctx context.Context, balance *inventory.StockBalance) error {
	args := m.Called(ctx, balance)
	return args.Error(0)
}

func (m *MockStockBalanceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStockBalanceRepository) SumQuantityByItem(ctx context.Context, itemID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, itemID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockStockMovementRepository is a mock implementation of StockMovementRepository
type MockStockMovementRepository struct {
	mock.Mock
}

func (m *MockStockMovementRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockMovement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockMovement), args.Error(1)
}

func (m *MockStockMovementRepository) FindByNumber(ctx context.Context, number string) (*inventory.StockMovement, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockMovement), args.Error(1)
}

func (m *MockStockMovementRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.StockMovement, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]inventory.StockMovement), args.Error(1)
}

func (m *MockStockMovementRepository) FindByReference(ctx context.Context, refType inventory.ReferenceType, refID uuid.UUID) ([]inventory.StockMovement, error) {
	args := m.Called(ctx, refType, refID)
	return args.Get(0).([]inventory.StockMovement), args.Error(1)
}

func (m *MockStockMovementRepository) Create(ctx context.Context, movement *inventory.StockMovement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *MockStockMovementRepository) Update(ctx context.Context, movement *inventory.StockMovement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *MockStockMovementRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStockMovementRepository) NextNumber(ctx context.Context, date time.Time) (string, error) {
	args := m.Called(ctx, date)
	return args.String(0), args.Error(1)
}

// MockStockCountRepository is a mock implementation of StockCountRepository
type MockStockCountRepository struct {
	mock.Mock
}

func (m *MockStockCountRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockCount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockCount), args.Error(1)
}

func (m *MockStockCountRepository) FindByNumber(ctx context.Context, number string) (*inventory.StockCount, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockCount), args.Error(1)
}

func (m *MockStockCountRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.StockCount, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]inventory.StockCount), args.Error(1)
}

func (m *MockStockCountRepository) Save(ctx context.Context, count *inventory.StockCount) error {
	args := m.Called(ctx, count)
	return args.Error(0)
}

func (m *MockStockCountRepository) SaveWithRecords(ctx context.Context, count *inventory.StockCount) error {
	args := m.Called(ctx, count)
	return args.Error(0)
}

func (m *MockStockCountRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStockCountRepository) NextNumber(ctx context.Context, date time.Time) (string, error) {
	args := m.Called(ctx, date)
	return args.String(0), args.Error(1)
}

// MockItemRepository is a mock implementation of catalog.ItemRepository
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Item), args.Error(1)
}

func (m *MockItemRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Item, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Item), args.Error(1)
}

func (m *MockItemRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Item, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Item), args.Error(1)
}

func (m *MockItemRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Item, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Item), args.Error(1)
}

func (m *MockItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockItemRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockItemRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	args := m.Called(ctx, sku)
	return args.Bool(0), args.Error(1)
}

// MockWarehouseRepository is a mock implementation of catalog.WarehouseRepository
type MockWarehouseRepository struct {
	mock.Mock
}

func (m *MockWarehouseRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Warehouse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Warehouse), args.Error(1)
}

func (m *MockWarehouseRepository) FindByCode(ctx context.Context, code string) (*catalog.Warehouse, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Warehouse), args.Error(1)
}

func (m *MockWarehouseRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Warehouse, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Warehouse), args.Error(1)
}

func (m *MockWarehouseRepository) Save(ctx context.Context, warehouse *catalog.Warehouse) error {
	args := m.Called(ctx, warehouse)
	return args.Error(0)
}

func (m *MockWarehouseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockWarehouseRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWarehouseRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

// MockReportRepository is a mock implementation of ReportRepository
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) MovementSummary(ctx context.Context, warehouseID, itemID *uuid.UUID, from, to time.Time) ([]inventory.MovementSummaryRow, error) {
	args := m.Called(ctx, warehouseID, itemID, from, to)
	return args.Get(0).([]inventory.MovementSummaryRow), args.Error(1)
}

func (m *MockReportRepository) LowStock(ctx context.Context, warehouseID *uuid.UUID) ([]inventory.LowStockRow, error) {
	args := m.Called(ctx, warehouseID)
	return args.Get(0).([]inventory.LowStockRow), args.Error(1)
}

func (m *MockReportRepository) InactiveItems(ctx context.Context, warehouseID *uuid.UUID, since time.Time) ([]inventory.InactiveItemRow, error) {
	args := m.Called(ctx, warehouseID, since)
	return args.Get(0).([]inventory.InactiveItemRow), args.Error(1)
}

func (m *MockReportRepository) Valuation(ctx context.Context, warehouseID *uuid.UUID) ([]inventory.ValuationRow, error) {
	args := m.Called(ctx, warehouseID)
	return args.Get(0).([]inventory.ValuationRow), args.Error(1)
}

// testFixture wires mocks behind a NoOpTransactionScope for service tests
type testFixture struct {
	balanceRepo   *MockStockBalanceRepository
	movementRepo  *MockStockMovementRepository
	countRepo     *MockStockCountRepository
	itemRepo      *MockItemRepository
	warehouseRepo *MockWarehouseRepository
	scope         *NoOpTransactionScope
	publisher     *MockEventPublisher
}

func newTestFixture() *testFixture {
	f := &testFixture{
		balanceRepo:   new(MockStockBalanceRepository),
		movementRepo:  new(MockStockMovementRepository),
		countRepo:     new(MockStockCountRepository),
		itemRepo:      new(MockItemRepository),
		warehouseRepo: new(MockWarehouseRepository),
		publisher:     NewMockEventPublisher(),
	}
	f.scope = NewNoOpTransactionScope(f.balanceRepo, f.movementRepo, f.countRepo)
	return f
}

func (f *testFixture) movementService() *MovementService {
	s := NewMovementService(f.scope, f.movementRepo, f.balanceRepo, f.itemRepo, f.warehouseRepo)
	s.SetEventPublisher(f.publisher)
	return s
}

func (f *testFixture) countService() *CountService {
	s := NewCountService(f.scope, f.countRepo, f.balanceRepo, f.itemRepo, f.warehouseRepo, f.movementService())
	s.SetEventPublisher(f.publisher)
	return s
}
