package handler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mizan-erp/backend/internal/domain/catalog"
	"github.com/mizan-erp/backend/internal/domain/inventory"
	"github.com/mizan-erp/backend/internal/domain/shared"
)

// Map-backed repository fakes for wiring real application services into
// HTTP handler tests without a database.

type mockItemRepository struct {
	items     map[uuid.UUID]*catalog.Item
	returnErr error
}

func newMockItemRepository() *mockItemRepository {
	return &mockItemRepository{items: make(map[uuid.UUID]*catalog.Item)}
}

func (m *mockItemRepository) FindByID(_ context.Context, id uuid.UUID) (*catalog.Item, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	item, ok := m.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return item, nil
}

func (m *mockItemRepository) FindBySKU(_ context.Context, sku string) (*catalog.Item, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	for _, item := range m.items {
		if item.SKU == sku {
			return item, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockItemRepository) FindAll(_ context.Context, _ shared.Filter) ([]catalog.Item, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	result := make([]catalog.Item, 0, len(m.items))
	for _, item := range m.items {
		result = append(result, *item)
	}
	return result, nil
}

func (m *mockItemRepository) FindByIDs(_ context.Context, ids []uuid.UUID) ([]catalog.Item, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	var result []catalog.Item
	for _, id := range ids {
		if item, ok := m.items[id]; ok {
			result = append(result, *item)
		}
	}
	return result, nil
}

func (m *mockItemRepository) Save(_ context.Context, item *catalog.Item) error {
	if m.returnErr != nil {
		return m.returnErr
	}
	m.items[item.ID] = item
	return nil
}

func (m *mockItemRepository) Delete(_ context.Context, id uuid.UUID) error {
	if m.returnErr != nil {
		return m.returnErr
	}
	if _, ok := m.items[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *mockItemRepository) Count(_ context.Context, _ shared.Filter) (int64, error) {
	if m.returnErr != nil {
		return 0, m.returnErr
	}
	return int64(len(m.items)), nil
}

func (m *mockItemRepository) ExistsBySKU(_ context.Context, sku string) (bool, error) {
	if m.returnErr != nil {
		return false, m.returnErr
	}
	for _, item := range m.items {
		if item.SKU == sku {
			return true, nil
		}
	}
	return false, nil
}

type mockWarehouseRepository struct {
	warehouses map[uuid.UUID]*catalog.Warehouse
	returnErr  error
}

func newMockWarehouseRepository() *mockWarehouseRepository {
	return &mockWarehouseRepository{warehouses: make(map[uuid.UUID]*catalog.Warehouse)}
}

func (m *mockWarehouseRepository) FindByID(_ context.Context, id uuid.UUID) (*catalog.Warehouse, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	warehouse, ok := m.warehouses[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return warehouse, nil
}

func (m *mockWarehouseRepository) FindByCode(_ context.Context, code string) (*catalog.Warehouse, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	for _, warehouse := range m.warehouses {
		if warehouse.Code == code {
			return warehouse, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockWarehouseRepository) FindAll(_ context.Context, _ shared.Filter) ([]catalog.Warehouse, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	result := make([]catalog.Warehouse, 0, len(m.warehouses))
	for _, warehouse := range m.warehouses {
		result = append(result, *warehouse)
	}
	return result, nil
}

func (m *mockWarehouseRepository) Save(_ context.Context, warehouse *catalog.Warehouse) error {
	if m.returnErr != nil {
		return m.returnErr
	}
	m.warehouses[warehouse.ID] = warehouse
	return nil
}

func (m *mockWarehouseRepository) Delete(_ context.Context, id uuid.UUID) error {
	if m.returnErr != nil {
		return m.returnErr
	}
	if _, ok := m.warehouses[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.warehouses, id)
	return nil
}

func (m *mockWarehouseRepository) Count(_ context.Context, _ shared.Filter) (int64, error) {
	if m.returnErr != nil {
		return 0, m.returnErr
	}
	return int64(len(m.warehouses)), nil
}

func (m *mockWarehouseRepository) ExistsByCode(_ context.Context, code string) (bool, error) {
	if m.returnErr != nil {
		return false, m.returnErr
	}
	for _, warehouse := range m.warehouses {
		if warehouse.Code == code {
			return true, nil
		}
	}
	return false, nil
}

type mockStockBalanceRepository struct {
	balances  map[uuid.UUID]*inventory.StockBalance
	returnErr error
}

func newMockStockBalanceRepository() *mockStockBalanceRepository {
	return &mockStockBalanceRepository{balances: make(map[uuid.UUID]*inventory.StockBalance)}
}

func (m *mockStockBalanceRepository) FindByID(_ context.Context, id uuid.UUID) (*inventory.StockBalance, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	balance, ok := m.balances[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return balance, nil
}

func (m *mockStockBalanceRepository) FindByWarehouseAndItem(_ context.Context, warehouseID, itemID uuid.UUID) (*inventory.StockBalance, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	for _, balance := range m.balances {
		if balance.WarehouseID == warehouseID && balance.ItemID == itemID {
			return balance, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockStockBalanceRepository) FindByWarehouse(_ context.Context, warehouseID uuid.UUID, _ shared.Filter) ([]inventory.StockBalance, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	var result []inventory.StockBalance
	for _, balance := range m.balances {
		if balance.WarehouseID == warehouseID {
			result = append(result, *balance)
		}
	}
	return result, nil
}

func (m *mockStockBalanceRepository) FindAll(_ context.Context, _ shared.Filter) ([]inventory.StockBalance, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	result := make([]inventory.StockBalance, 0, len(m.balances))
	for _, balance := range m.balances {
		result = append(result, *balance)
	}
	return result, nil
}

func (m *mockStockBalanceRepository) GetOrCreate(_ context.Context, warehouseID, itemID uuid.UUID) (*inventory.StockBalance, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	for _, balance := range m.balances {
		if balance.WarehouseID == warehouseID && balance.ItemID == itemID {
			return balance, nil
		}
	}
	balance := inventory.NewStockBalance(warehouseID, itemID)
	m.balances[balance.ID] = balance
	return balance, nil
}

func (m *mockStockBalanceRepository) Save(_ context.Context, balance *inventory.StockBalance) error {
	if m.returnErr != nil {
		return m.returnErr
	}
	m.balances[balance.ID] = balance
	return nil
}

func (m *mockStockBalanceRepository) SaveWithLock(_ context.Context, balance *inventory.StockBalance) error {
	if m.returnErr != nil {
		return m.returnErr
	}
	m.balances[balance.ID] = balance
	return nil
}

func (m *mockStockBalanceRepository) Count(_ context.Context, _ shared.Filter) (int64, error) {
	if m.returnErr != nil {
		return 0, m.returnErr
	}
	return int64(len(m.balances)), nil
}

func (m *mockStockBalanceRepository) SumQuantityByItem(_ context.Context, itemID uuid.UUID) (decimal.Decimal, error) {
	if m.returnErr != nil {
		return decimal.Zero, m.returnErr
	}
	total := decimal.Zero
	for _, balance := range m.balances {
		if balance.ItemID == itemID {
			total = total.Add(balance.Quantity)
		}
	}
	return total, nil
}

type mockStockMovementRepository struct {
	movements map[uuid.UUID]*inventory.StockMovement
	sequence  int
	returnErr error
}

func newMockStockMovementRepository() *mockStockMovementRepository {
	return &mockStockMovementRepository{movements: make(map[uuid.UUID]*inventory.StockMovement)}
}

func (m *mockStockMovementRepository) FindByID(_ context.Context, id uuid.UUID) (*inventory.StockMovement, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	movement, ok := m.movements[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return movement, nil
}

func (m *mockStockMovementRepository) FindByNumber(_ context.Context, number string) (*inventory.StockMovement, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	for _, movement := range m.movements {
		if movement.MovementNumber == number {
			return movement, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockStockMovementRepository) FindAll(_ context.Context, _ shared.Filter) ([]inventory.StockMovement, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	result := make([]inventory.StockMovement, 0, len(m.movements))
	for _, movement := range m.movements {
		result = append(result, *movement)
	}
	return result, nil
}

func (m *mockStockMovementRepository) FindByReference(_ context.Context, refType inventory.ReferenceType, refID uuid.UUID) ([]inventory.StockMovement, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	var result []inventory.StockMovement
	for _, movement := range m.movements {
		if movement.ReferenceType == refType && movement.ReferenceID != nil && *movement.ReferenceID == refID {
			result = append(result, *movement)
		}
	}
	return result, nil
}

func (m *mockStockMovementRepository) Create(_ context.Context, movement *inventory.StockMovement) error {
	if m.returnErr != nil {
		return m.returnErr
	}
	for _, existing := range m.movements {
		if existing.MovementNumber == movement.MovementNumber {
			return shared.ErrAlreadyExists
		}
	}
	m.movements[movement.ID] = movement
	return nil
}

func (m *mockStockMovementRepository) Update(_ context.Context, movement *inventory.StockMovement) error {
	if m.returnErr != nil {
		return m.returnErr
	}
	if _, ok := m.movements[movement.ID]; !ok {
		return shared.ErrNotFound
	}
	m.movements[movement.ID] = movement
	return nil
}

func (m *mockStockMovementRepository) Count(_ context.Context, _ shared.Filter) (int64, error) {
	if m.returnErr != nil {
		return 0, m.returnErr
	}
	return int64(len(m.movements)), nil
}

func (m *mockStockMovementRepository) NextNumber(_ context.Context, date time.Time) (string, error) {
	if m.returnErr != nil {
		return "", m.returnErr
	}
	m.sequence++
	prefix := inventory.DocumentNumberPrefix(inventory.MovementNumberPrefix, date)
	return inventory.FormatDocumentNumber(prefix, m.sequence), nil
}

type mockStockCountRepository struct {
	counts    map[uuid.UUID]*inventory.StockCount
	sequence  int
	returnErr error
}

func newMockStockCountRepository() *mockStockCountRepository {
	return &mockStockCountRepository{counts: make(map[uuid.UUID]*inventory.StockCount)}
}

func (m *mockStockCountRepository) FindByID(_ context.Context, id uuid.UUID) (*inventory.StockCount, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	count, ok := m.counts[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return count, nil
}

func (m *mockStockCountRepository) FindByNumber(_ context.Context, number string) (*inventory.StockCount, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	for _, count := range m.counts {
		if count.CountNumber == number {
			return count, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockStockCountRepository) FindAll(_ context.Context, _ shared.Filter) ([]inventory.StockCount, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	result := make([]inventory.StockCount, 0, len(m.counts))
	for _, count := range m.counts {
		result = append(result, *count)
	}
	return result, nil
}

func (m *mockStockCountRepository) Save(_ context.Context, count *inventory.StockCount) error {
	if m.returnErr != nil {
		return m.returnErr
	}
	m.counts[count.ID] = count
	return nil
}

func (m *mockStockCountRepository) SaveWithRecords(_ context.Context, count *inventory.StockCount) error {
	if m.returnErr != nil {
		return m.returnErr
	}
	m.counts[count.ID] = count
	return nil
}

func (m *mockStockCountRepository) Count(_ context.Context, _ shared.Filter) (int64, error) {
	if m.returnErr != nil {
		return 0, m.returnErr
	}
	return int64(len(m.counts)), nil
}

func (m *mockStockCountRepository) NextNumber(_ context.Context, date time.Time) (string, error) {
	if m.returnErr != nil {
		return "", m.returnErr
	}
	m.sequence++
	prefix := inventory.DocumentNumberPrefix(inventory.CountNumberPrefix, date)
	return inventory.FormatDocumentNumber(prefix, m.sequence), nil
}
