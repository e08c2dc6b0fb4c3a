package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mizan-erp/backend/internal/domain/catalog"
	"github.com/mizan-erp/backend/internal/domain/inventory"
	"github.com/mizan-erp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func createTestWarehouse() *catalog.Warehouse {
	w, _ := catalog.NewWarehouse("WH-MAIN", "Main Warehouse", "المستودع الرئيسي", "Riyadh")
	return w
}

func createTestItem() *catalog.Item {
	item, _ := catalog.NewItem("SKU-001", "Steel Bolt", "مسمار فولاذي", "pcs")
	_ = item.SetPrices(decimal.NewFromInt(5), decimal.NewFromInt(8))
	_ = item.SetStockLevels(decimal.NewFromInt(10), decimal.NewFromInt(25), nil)
	return item
}

func createTestBalance(warehouseID, itemID uuid.UUID, qty int64) *inventory.StockBalance {
	b := inventory.NewStockBalance(warehouseID, itemID)
	if qty > 0 {
		_ = b.Add(decimal.NewFromInt(qty), time.Now().Add(-time.Hour))
	}
	return b
}

func TestMovementService_CreateInbound(t *testing.T) {
	ctx := context.Background()
	warehouse := createTestWarehouse()
	item := createTestItem()

	t.Run("success", func(t *testing.T) {
		f := newTestFixture()
		service := f.movementService()

		balance := createTestBalance(warehouse.ID, item.ID, 0)
		f.warehouseRepo.On("FindByID", ctx, warehouse.ID).Return(warehouse, nil).Once()
		f.itemRepo.On("FindByID", ctx, item.ID).Return(item, nil).Once()
		f.balanceRepo.On("GetOrCreate", ctx, warehouse.ID, item.ID).Return(balance, nil).Once()
		f.balanceRepo.On("SaveWithLock", ctx, balance).Return(nil).Once()
		f.movementRepo.On("NextNumber", ctx, mock.Anything).Return("MOV-202608-000001", nil).Once()
		f.movementRepo.On("Create", ctx, mock.Anything).Return(nil).Once()

		resp, err := service.CreateInbound(ctx, CreateInboundRequest{
			WarehouseID:   warehouse.ID,
			ItemID:        item.ID,
			Quantity:      decimal.NewFromInt(100),
			UnitCost:      decimal.NewFromInt(5),
			ReferenceType: "PURCHASE",
			CreatedBy:     "ahmed",
		})

		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, "MOV-202608-000001", resp.MovementNumber)
		assert.Equal(t, "IN", resp.MovementType)
		assert.True(t, resp.BalanceBefore.IsZero())
		assert.True(t, resp.BalanceAfter.Equal(decimal.NewFromInt(100)))
		assert.True(t, balance.Quantity.Equal(decimal.NewFromInt(100)))

		events := f.publisher.GetEventsByType(inventory.EventTypeStockMovementRecorded)
		require.Len(t, events, 1)
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		f := newTestFixture()
		service := f.movementService()

		resp, err := service.CreateInbound(ctx, CreateInboundRequest{
			WarehouseID:   warehouse.ID,
			ItemID:        item.ID,
			Quantity:      decimal.Zero,
			ReferenceType: "PURCHASE",
		})

		assert.Nil(t, resp)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("rejects invalid reference type", func(t *testing.T) {
		f := newTestFixture()
		service := f.movementService()

		_, err := service.CreateInbound(ctx, CreateInboundRequest{
			WarehouseID:   warehouse.ID,
			ItemID:        item.ID,
			Quantity:      decimal.NewFromInt(10),
			ReferenceType: "SOMETHING",
		})

		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("warehouse not found", func(t *testing.T) {
		f := newTestFixture()
		service := f.movementService()

		f.warehouseRepo.On("FindByID", ctx, warehouse.ID).Return(nil, shared.ErrNotFound).Once()

		_, err := service.CreateInbound(ctx, CreateInboundRequest{
			WarehouseID:   warehouse.ID,
			ItemID:        item.ID,
			Quantity:      decimal.NewFromInt(10),
			ReferenceType: "PURCHASE",
		})

		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("inactive item", func(t *testing.T) {
		f := newTestFixture()
		service := f.movementService()

		inactive := createTestItem()
		require.NoError(t, inactive.Deactivate())

		f.warehouseRepo.On("FindByID", ctx, warehouse.ID).Return(warehouse, nil).Once()
		f.itemRepo.On("FindByID", ctx, inactive.ID).Return(inactive, nil).Once()

		_, err := service.CreateInbound(ctx, CreateInboundRequest{
			WarehouseID:   warehouse.ID,
			ItemID:        inactive.ID,
			Quantity:      decimal.NewFromInt(10),
			ReferenceType: "PURCHASE",
		})

		assert.True(t, errors.Is(err, shared.ErrInvalidState))
	})

	t.Run("retries on duplicate number", func(t *testing.T) {
		f := newTestFixture()
		service := f.movementService()

		f.warehouseRepo.On("FindByID", ctx, warehouse.ID).Return(warehouse, nil).Once()
		f.itemRepo.On("FindByID", ctx, item.ID).Return(item, nil).Once()
		f.balanceRepo.On("GetOrCreate", ctx, warehouse.ID, item.ID).
			Return(createTestBalance(warehouse.ID, item.ID, 0), nil).Once()
		f.balanceRepo.On("GetOrCreate", ctx, warehouse.ID, item.ID).
			Return(createTestBalance(warehouse.ID, item.ID, 0), nil).Once()
		f.balanceRepo.On("SaveWithLock", ctx, mock.Anything).Return(nil).Twice()
		f.movementRepo.On("NextNumber", ctx, mock.Anything).Return("MOV-202608-000007", nil).Once()
		f.movementRepo.On("NextNumber", ctx, mock.Anything).Return("MOV-202608-000008", nil).Once()
		f.movementRepo.On("Create", ctx, mock.Anything).
			Return(&inventory.DuplicateNumberError{Number: "MOV-202608-000007"}).Once()
		f.movementRepo.On("Create", ctx, mock.Anything).Return(nil).Once()

		resp, err := service.CreateInbound(ctx, CreateInboundRequest{
			WarehouseID:   warehouse.ID,
			ItemID:        item.ID,
			Quantity:      decimal.NewFromInt(10),
			ReferenceType: "PURCHASE",
		})

		require.NoError(t, err)
		assert.Equal(t, "MOV-202608-000008", resp.MovementNumber)
		f.movementRepo.AssertNumberOfCalls(t, "Create", 2)
	})

	t.Run("gives up after exhausting number retries", func(t *testing.T) {
		f := newTestFixture()
		service := f.movementService()

		f.warehouseRepo.On("FindByID", ctx, warehouse.ID).Return(warehouse, nil).Once()
		f.itemRepo.On("FindByID", ctx, item.ID).Return(item, nil).Once()
		f.balanceRepo.On("GetOrCreate", ctx, warehouse.ID, item.ID).
			Return(createTestBalance(warehouse.ID, item.ID, 0), nil).Times(3)
		f.balanceRepo.On("SaveWithLock", ctx, mock.Anything).Return(nil).Times(3)
		f.movementRepo.On("NextNumber", ctx, mock.Anything).Return("MOV-202608-000007", nil).Times(3)
		f.movementRepo.On("Create", ctx, mock.Anything).
			Return(&inventory.DuplicateNumberError{Number: "MOV-202608-000007"}).Times(3)

		_, err := service.CreateInbound(ctx, CreateInboundRequest{
			WarehouseID:   warehouse.ID,
			ItemID:        item.ID,
			Quantity:      decimal.NewFromInt(10),
			ReferenceType: "PURCHASE",
		})

		assert.True(t, errors.Is(err, shared.ErrConflict))
	})
}

func TestMovementService_CreateOutbound(t *testing.T) {
	ctx := context.Background()
	warehouse := createTestWarehouse()
	item := createTestItem()

	t.Run("success", func(t *testing.T) {
		f := newTestFixture()
		service := f.movementService()

		balance := createTestBalance(warehouse.ID, item.ID, 100)
		f.warehouseRepo.On("FindByID", ctx, warehouse.ID).Return(warehouse, nil).Once()
		f.itemRepo.On("FindByID", ctx, item.ID).Return(item, nil).Once()
		f.balanceRepo.On("GetOrCreate", ctx, warehouse.ID, item.ID).Return(balance, nil).Once()
		f.balanceRepo.On("SaveWithLock", ctx, balance).Return(nil).Once()
		f.movementRepo.On("NextNumber", ctx, mock.Anything).Return("MOV-202608-000002", nil).Once()
		f.movementRepo.On("Create", ctx, mock.Anything).Return(nil).Once()

		resp, err := service.CreateOutbound(ctx, CreateOutboundRequest{
			WarehouseID:   warehouse.ID,
			ItemID:        item.ID,
			Quantity:      decimal.NewFromInt(30),
			ReferenceType: "SALE",
		})

		require.NoError(t, err)
		assert.Equal(t, "OUT", resp.MovementType)
		assert.True(t, resp.BalanceAfter.Equal(decimal.NewFromInt(70)))
		// outbound is valued at the item cost
		assert.True(t, resp.UnitCost.Equal(item.CostPrice))
	})

	t.Run("insufficient stock", func(t *testing.T) {
		f := newTestFixture()
		service := f.movementService()

		balance := createTestBalance(warehouse.ID, item.ID, 100)
		require.NoError(t, balance.Reserve(decimal.NewFromInt(80)))

		f.warehouseRepo.On("FindByID", ctx, warehouse.ID).Return(warehouse, nil).Once()
		f.itemRepo.On("FindByID", ctx, item.ID).Return(item, nil).Once()
		f.balanceRepo.On("GetOrCreate", ctx, warehouse.ID, item.ID).Return(balance, nil).Once()

		_, err := service.CreateOutbound(ctx, CreateOutboundRequest{
			WarehouseID:   warehouse.ID,
			ItemID:        item.ID,
			Quantity:      decimal.NewFromInt(30),
			ReferenceType: "SALE",
		})

		assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
		f.movementRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("release reserved consumes the reservation", func(t *testing.T) {
		f := newTestFixture()
		service := f.movementService()

		balance := createTestBalance(warehouse.ID, item.ID, 100)
		require.NoError(t, balance.Reserve(decimal.NewFromInt(80)))

		f.warehouseRepo.On("FindByID", ctx, warehouse.ID).Return(warehouse, nil).Once()
		f.itemRepo.On("FindByID", ctx, item.ID).Return(item, nil).Once()
		f.balanceRepo.On("GetOrCreate", ctx, warehouse.ID, item.ID).Return(balance, nil).Once()
		f.balanceRepo.On("SaveWithLock", ctx, balance).Return(nil).Once()
		f.movementRepo.On("NextNumber", ctx, mock.Anything).Return("MOV-202608-000003", nil).Once()
		f.movementRepo.On("Create", ctx, mock.Anything).Return(nil).Once()

		resp, err := service.CreateOutbound(ctx, CreateOutboundRequest{
			WarehouseID:     warehouse.ID,
			ItemID:          item.ID,
			Quantity:        decimal.NewFromInt(30),
			ReferenceType:   "SALE",
			ReleaseReserved: true,
		})

		require.NoError(t, err)
		assert.True(t, resp.BalanceAfter.Equal(decimal.NewFromInt(70)))
		assert.True(t, balance.ReservedQty.Equal(decimal.NewFromInt(50)))
	})

	t.Run("publishes low stock event at reorder point", func(t *testing.T) {
		f := newTestFixture()
		service := f.movementService()

		// reorder point is 25, issue down to 20
		balance := createTestBalance(warehouse.ID, item.ID, 50)
		f.warehouseRepo.On("FindByID", ctx, warehouse.ID).Return(warehouse, nil).Once()
		f.itemRepo.On("FindByID", ctx, item.ID).Return(item, nil).Once()
		f.balanceRepo.On("GetOrCreate", ctx, warehouse.ID, item.ID).Return(balance, nil).Once()
		f.balanceRepo.On("SaveWithLock", ctx, balance).Return(nil).Once()
		f.movementRepo.On("NextNumber", ctx, mock.Anything).Return("MOV-202608-000004", nil).Once()
		f.movementRepo.On("Create", ctx, mock.Anything).Return(nil).Once()

		_, err := service.CreateOutbound(ctx, CreateOutboundRequest{
			WarehouseID:   warehouse.ID,
			ItemID:        item.ID,
			Quantity:      decimal.NewFromInt(30),
			ReferenceType: "SALE",
		})

		require.NoError(t, err)
		events := f.publisher.GetEventsByType(inventory.EventTypeStockBelowReorderPoint)
		require.Len(t, events, 1)
		e := events[0].(*inventory.StockBelowReorderPointEvent)
		assert.True(t, e.Quantity.Equal(decimal.NewFromInt(20)))
		assert.True(t, e.ReorderPoint.Equal(decimal.NewFromInt(25)))
	})
}

func TestMovementService_CreateAdjustment(t *testing.T) {
	ctx := context.Background()
	warehouse := createTestWarehouse()
	item := createTestItem()

	setup := func(f *testFixture, balance *inventory.StockBalance) {
		f.warehouseRepo.On("FindByID", ctx, warehouse.ID).Return(warehouse, nil).Once()
		f.itemRepo.On("FindByID", ctx, item.ID).Return(item, nil).Once()
		f.balanceRepo.On("GetOrCreate", ctx, warehouse.ID, item.ID).Return(balance, nil).Once()
	}

	t.Run("adjust down records magnitude with direction in balances", func(t *testing.T) {
		f := newTestFixture()
		service := f.movementService()

		balance := createTestBalance(warehouse.ID, item.ID, 100)
		setup(f, balance)
		f.balanceRepo.On("SaveWithLock", ctx, balance).Return(nil).Once()
		f.movementRepo.On("NextNumber", ctx, mock.Anything).Return("MOV-202608-000005", nil).Once()
		f.movementRepo.On("Create", ctx, mock.Anything).Return(nil).Once()

		resp, err := service.CreateAdjustment(ctx, CreateAdjustmentRequest{
			WarehouseID: warehouse.ID,
			ItemID:      item.ID,
			NewQuantity: decimal.NewFromInt(95),
			Reason:      "DAMAGE",
		})

		require.NoError(t, err)
		assert.Equal(t, "ADJUSTMENT", resp.MovementType)
		assert.True(t, resp.Quantity.Equal(decimal.NewFromInt(5)))
		assert.True(t, resp.BalanceBefore.Equal(decimal.NewFromInt(100)))
		assert.True(t, resp.BalanceAfter.Equal(decimal.NewFromInt(95)))
	})

	t.Run("adjust up", func(t *testing.T) {
		f := newTestFixture()
		service := f.movementService()

		balance := createTestBalance(warehouse.ID, item.ID, 100)
		setup(f, balance)
		f.balanceRepo.On("SaveWithLock", ctx, balance).Return(nil).Once()
		f.movementRepo.On("NextNumber", ctx, mock.Anything).Return("MOV-202608-000006", nil).Once()
		f.movementRepo.On("Create", ctx, mock.Anything).Return(nil).Once()

		resp, err := service.CreateAdjustment(ctx, CreateAdjustmentRequest{
			WarehouseID: warehouse.ID,
			ItemID:      item.ID,
			NewQuantity: decimal.NewFromInt(110),
			Reason:      "FOUND",
		})

		require.NoError(t, err)
		assert.True(t, resp.Quantity.Equal(decimal.NewFromInt(10)))
		assert.True(t, resp.BalanceAfter.Equal(decimal.NewFromInt(110)))
	})

	t.Run("zero delta rejected", func(t *testing.T) {
		f := newTestFixture()
		service := f.movementService()

		balance := createTestBalance(warehouse.ID, item.ID, 100)
		setup(f, balance)

		_, err := service.CreateAdjustment(ctx, CreateAdjustmentRequest{
			WarehouseID: warehouse.ID,
			ItemID:      item.ID,
			NewQuantity: decimal.NewFromInt(100),
			Reason:      "DAMAGE",
		})

		assert.True(t, errors.Is(err, shared.ErrValidation))
		f.movementRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("invalid reason rejected", func(t *testing.T) {
		f := newTestFixture()
		service := f.movementService()

		_, err := service.CreateAdjustment(ctx, CreateAdjustmentRequest{
			WarehouseID: warehouse.ID,
			ItemID:      item.ID,
			NewQuantity: decimal.NewFromInt(50),
			Reason:      "SALE",
		})

		assert.True(t, errors.Is(err, shared.ErrValidation))
	})
}

func TestMovementService_CreateTransfer(t *testing.T) {
	ctx := context.Background()
	source := createTestWarehouse()
	dest, _ := catalog.NewWarehouse("WH-BRANCH", "Branch Warehouse", "مستودع الفرع", "Jeddah")
	item := createTestItem()

	t.Run("success", func(t *testing.T) {
		f := newTestFixture()
		service := f.movementService()

		sourceBalance := createTestBalance(source.ID, item.ID, 100)
		destBalance := createTestBalance(dest.ID, item.ID, 0)

		f.warehouseRepo.On("FindByID", ctx, source.ID).Return(source, nil).Once()
		f.warehouseRepo.On("FindByID", ctx, dest.ID).Return(dest, nil).Once()
		f.itemRepo.On("FindByID", ctx, item.ID).Return(item, nil).Once()
		f.balanceRepo.On("GetOrCreate", ctx, source.ID, item.ID).Return(sourceBalance, nil).Once()
		f.balanceRepo.On("GetOrCreate", ctx, dest.ID, item.ID).Return(destBalance, nil).Once()
		f.balanceRepo.On("SaveWithLock", ctx, mock.Anything).Return(nil).Twice()
		f.movementRepo.On("NextNumber", ctx, mock.Anything).Return("MOV-202608-000010", nil).Once()
		f.movementRepo.On("NextNumber", ctx, mock.Anything).Return("MOV-202608-000011", nil).Once()
		f.movementRepo.On("Create", ctx, mock.Anything).Return(nil).Twice()

		resp, err := service.CreateTransfer(ctx, CreateTransferRequest{
			FromWarehouseID: source.ID,
			ToWarehouseID:   dest.ID,
			ItemID:          item.ID,
			Quantity:        decimal.NewFromInt(40),
		})

		require.NoError(t, err)
		assert.Equal(t, resp.Outbound.ReferenceID, resp.Inbound.ReferenceID)
		assert.Equal(t, &resp.TransferID, resp.Outbound.ReferenceID)
		assert.True(t, resp.Outbound.BalanceAfter.Equal(decimal.NewFromInt(60)))
		assert.True(t, resp.Inbound.BalanceAfter.Equal(decimal.NewFromInt(40)))
		assert.True(t, sourceBalance.Quantity.Equal(decimal.NewFromInt(60)))
		assert.True(t, destBalance.Quantity.Equal(decimal.NewFromInt(40)))
	})

	t.Run("same warehouse rejected", func(t *testing.T) {
		f := newTestFixture()
		service := f.movementService()

		_, err := service.CreateTransfer(ctx, CreateTransferRequest{
			FromWarehouseID: source.ID,
			ToWarehouseID:   source.ID,
			ItemID:          item.ID,
			Quantity:        decimal.NewFromInt(40),
		})

		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("insufficient source stock", func(t *testing.T) {
		f := newTestFixture()
		service := f.movementService()

		sourceBalance := createTestBalance(source.ID, item.ID, 10)
		f.warehouseRepo.On("FindByID", ctx, source.ID).Return(source, nil).Once()
		f.warehouseRepo.On("FindByID", ctx, dest.ID).Return(dest, nil).Once()
		f.itemRepo.On("FindByID", ctx, item.ID).Return(item, nil).Once()
		f.balanceRepo.On("GetOrCreate", ctx, source.ID, item.ID).Return(sourceBalance, nil).Once()

		_, err := service.CreateTransfer(ctx, CreateTransferRequest{
			FromWarehouseID: source.ID,
			ToWarehouseID:   dest.ID,
			ItemID:          item.ID,
			Quantity:        decimal.NewFromInt(40),
		})

		assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
	})
}

func TestMovementService_CancelMovement(t *testing.T) {
	ctx := context.Background()
	warehouse := createTestWarehouse()
	item := createTestItem()

	newInbound := func() *inventory.StockMovement {
		m, err := inventory.NewStockMovement("MOV-202608-000020", inventory.MovementTypeIn,
			warehouse.ID, item.ID, decimal.NewFromInt(50), decimal.Zero, decimal.NewFromInt(50), time.Now())
		if err != nil {
			t.Fatal(err)
		}
		m.WithReference(inventory.ReferenceTypePurchase, nil)
		return m
	}

	t.Run("voids and compensates an inbound", func(t *testing.T) {
		f := newTestFixture()
		service := f.movementService()

		original := newInbound()
		balance := createTestBalance(warehouse.ID, item.ID, 50)

		f.movementRepo.On("FindByID", ctx, original.ID).Return(original, nil).Twice()
		f.balanceRepo.On("GetOrCreate", ctx, warehouse.ID, item.ID).Return(balance, nil).Once()
		f.balanceRepo.On("SaveWithLock", ctx, balance).Return(nil).Once()
		f.movementRepo.On("NextNumber", ctx, mock.Anything).Return("MOV-202608-000021", nil).Once()
		f.movementRepo.On("Create", ctx, mock.Anything).Return(nil).Once()
		f.movementRepo.On("Update", ctx, original).Return(nil).Once()

		resp, err := service.CancelMovement(ctx, original.ID, CancelMovementRequest{
			Reason:      "wrong quantity entered",
			CancelledBy: "fatima",
		})

		require.NoError(t, err)
		assert.Equal(t, "VOIDED", resp.Original.Status)
		assert.Equal(t, "wrong quantity entered", resp.Original.VoidReason)
		assert.Equal(t, &original.ID, resp.Reversal.ReversalOfID)
		assert.True(t, resp.Reversal.BalanceAfter.IsZero())
		assert.True(t, balance.Quantity.IsZero())

		events := f.publisher.GetEventsByType(inventory.EventTypeStockMovementVoided)
		require.Len(t, events, 1)
	})

	t.Run("cancelling an inbound without remaining stock fails", func(t *testing.T) {
		f := newTestFixture()
		service := f.movementService()

		original := newInbound()
		// stock already issued elsewhere
		balance := createTestBalance(warehouse.ID, item.ID, 10)

		f.movementRepo.On("FindByID", ctx, original.ID).Return(original, nil).Twice()
		f.balanceRepo.On("GetOrCreate", ctx, warehouse.ID, item.ID).Return(balance, nil).Once()

		_, err := service.CancelMovement(ctx, original.ID, CancelMovementRequest{Reason: "dup"})

		assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
	})

	t.Run("already voided", func(t *testing.T) {
		f := newTestFixture()
		service := f.movementService()

		original := newInbound()
		require.NoError(t, original.Void("x", "first cancel"))

		f.movementRepo.On("FindByID", ctx, original.ID).Return(original, nil).Twice()

		_, err := service.CancelMovement(ctx, original.ID, CancelMovementRequest{Reason: "again"})

		assert.True(t, errors.Is(err, shared.ErrConflict))
	})

	t.Run("cancelling a transfer voids both legs", func(t *testing.T) {
		f := newTestFixture()
		service := f.movementService()

		dest, _ := catalog.NewWarehouse("WH-B", "B", "", "")
		transferID := uuid.New()
		out, _ := inventory.NewStockMovement("MOV-202608-000030", inventory.MovementTypeTransfer,
			warehouse.ID, item.ID, decimal.NewFromInt(40), decimal.NewFromInt(100), decimal.NewFromInt(60), time.Now())
		out.WithReference(inventory.ReferenceTypeTransfer, &transferID)
		in, _ := inventory.NewStockMovement("MOV-202608-000031", inventory.MovementTypeTransfer,
			dest.ID, item.ID, decimal.NewFromInt(40), decimal.Zero, decimal.NewFromInt(40), time.Now())
		in.WithReference(inventory.ReferenceTypeTransfer, &transferID)

		sourceBalance := createTestBalance(warehouse.ID, item.ID, 60)
		destBalance := createTestBalance(dest.ID, item.ID, 40)

		f.movementRepo.On("FindByID", ctx, out.ID).Return(out, nil).Once()
		f.movementRepo.On("FindByReference", ctx, inventory.ReferenceTypeTransfer, transferID).
			Return([]inventory.StockMovement{*out, *in}, nil).Once()
		f.balanceRepo.On("GetOrCreate", ctx, warehouse.ID, item.ID).Return(sourceBalance, nil).Once()
		f.balanceRepo.On("GetOrCreate", ctx, dest.ID, item.ID).Return(destBalance, nil).Once()
		f.balanceRepo.On("SaveWithLock", ctx, mock.Anything).Return(nil).Twice()
		f.movementRepo.On("NextNumber", ctx, mock.Anything).Return("MOV-202608-000032", nil).Once()
		f.movementRepo.On("NextNumber", ctx, mock.Anything).Return("MOV-202608-000033", nil).Once()
		f.movementRepo.On("Create", ctx, mock.Anything).Return(nil).Twice()
		f.movementRepo.On("Update", ctx, mock.Anything).Return(nil).Twice()

		resp, err := service.CancelMovement(ctx, out.ID, CancelMovementRequest{Reason: "sent to wrong branch"})

		require.NoError(t, err)
		assert.Equal(t, "VOIDED", resp.Original.Status)
		// transfer out restored, transfer in removed
		assert.True(t, sourceBalance.Quantity.Equal(decimal.NewFromInt(100)))
		assert.True(t, destBalance.Quantity.IsZero())

		events := f.publisher.GetEventsByType(inventory.EventTypeStockMovementVoided)
		require.Len(t, events, 2)
	})
}

func TestMovementService_Reservations(t *testing.T) {
	ctx := context.Background()
	warehouse := createTestWarehouse()
	item := createTestItem()

	t.Run("reserve", func(t *testing.T) {
		f := newTestFixture()
		service := f.movementService()

		balance := createTestBalance(warehouse.ID, item.ID, 100)
		lastMovement := *balance.LastMovementAt

		f.warehouseRepo.On("FindByID", ctx, warehouse.ID).Return(warehouse, nil).Once()
		f.itemRepo.On("FindByID", ctx, item.ID).Return(item, nil).Once()
		f.balanceRepo.On("GetOrCreate", ctx, warehouse.ID, item.ID).Return(balance, nil).Once()
		f.balanceRepo.On("SaveWithLock", ctx, balance).Return(nil).Once()

		err := service.Reserve(ctx, ReservationRequest{
			WarehouseID: warehouse.ID,
			ItemID:      item.ID,
			Quantity:    decimal.NewFromInt(25),
		})

		require.NoError(t, err)
		assert.True(t, balance.ReservedQty.Equal(decimal.NewFromInt(25)))
		assert.True(t, balance.AvailableQty.Equal(decimal.NewFromInt(75)))
		// reservations do not count as movement activity
		assert.Equal(t, lastMovement, *balance.LastMovementAt)
	})

	t.Run("reserve more than available", func(t *testing.T) {
		f := newTestFixture()
		service := f.movementService()

		balance := createTestBalance(warehouse.ID, item.ID, 10)
		f.warehouseRepo.On("FindByID", ctx, warehouse.ID).Return(warehouse, nil).Once()
		f.itemRepo.On("FindByID", ctx, item.ID).Return(item, nil).Once()
		f.balanceRepo.On("GetOrCreate", ctx, warehouse.ID, item.ID).Return(balance, nil).Once()

		err := service.Reserve(ctx, ReservationRequest{
			WarehouseID: warehouse.ID,
			ItemID:      item.ID,
			Quantity:    decimal.NewFromInt(25),
		})

		assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
	})

	t.Run("release without reservation", func(t *testing.T) {
		f := newTestFixture()
		service := f.movementService()

		balance := createTestBalance(warehouse.ID, item.ID, 10)
		f.balanceRepo.On("FindByWarehouseAndItem", ctx, warehouse.ID, item.ID).Return(balance, nil).Once()

		err := service.ReleaseReservation(ctx, ReservationRequest{
			WarehouseID: warehouse.ID,
			ItemID:      item.ID,
			Quantity:    decimal.NewFromInt(5),
		})

		assert.True(t, errors.Is(err, shared.ErrInvalidState))
	})
}

func TestMovementService_ListMovements(t *testing.T) {
	ctx := context.Background()
	warehouse := createTestWarehouse()
	item := createTestItem()

	f := newTestFixture()
	service := f.movementService()

	m, _ := inventory.NewStockMovement("MOV-202608-000040", inventory.MovementTypeIn,
		warehouse.ID, item.ID, decimal.NewFromInt(5), decimal.Zero, decimal.NewFromInt(5), time.Now())

	f.movementRepo.On("Count", ctx, mock.Anything).Return(int64(1), nil).Once()
	f.movementRepo.On("FindAll", ctx, mock.MatchedBy(func(filter shared.Filter) bool {
		return filter.Filters["movement_type"] == "IN" && filter.Page == 2
	})).Return([]inventory.StockMovement{*m}, nil).Once()

	responses, total, err := service.ListMovements(ctx, MovementListFilter{
		MovementType: "IN",
		Page:         2,
		PageSize:     10,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, responses, 1)
	assert.Equal(t, "MOV-202608-000040", responses[0].MovementNumber)
}
