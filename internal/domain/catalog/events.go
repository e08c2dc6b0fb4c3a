package catalog

import (
	"github.com/google/uuid"
	"github.com/mizan-erp/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeItem      = "Item"
	AggregateTypeWarehouse = "Warehouse"
)

// Event type constants
const (
	EventTypeItemCreated            = "ItemCreated"
	EventTypeItemUpdated            = "ItemUpdated"
	EventTypeItemStatusChanged      = "ItemStatusChanged"
	EventTypeWarehouseCreated       = "WarehouseCreated"
	EventTypeWarehouseUpdated       = "WarehouseUpdated"
	EventTypeWarehouseStatusChanged = "WarehouseStatusChanged"
)

// ItemCreatedEvent is published when a new item is created
type ItemCreatedEvent struct {
	shared.BaseDomainEvent
	ItemID uuid.UUID `json:"item_id"`
	SKU    string    `json:"sku"`
	Name   string    `json:"name"`
	NameAr string    `json:"name_ar,omitempty"`
	Unit   string    `json:"unit"`
}

// NewItemCreatedEvent creates a new ItemCreatedEvent
func NewItemCreatedEvent(item *Item) *ItemCreatedEvent {
	return &ItemCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemCreated, AggregateTypeItem, item.ID),
		ItemID:          item.ID,
		SKU:             item.SKU,
		Name:            item.Name,
		NameAr:          item.NameAr,
		Unit:            item.Unit,
	}
}

// ItemUpdatedEvent is published when an item is updated
type ItemUpdatedEvent struct {
	shared.BaseDomainEvent
	ItemID uuid.UUID `json:"item_id"`
	SKU    string    `json:"sku"`
	Name   string    `json:"name"`
}

// NewItemUpdatedEvent creates a new ItemUpdatedEvent
func NewItemUpdatedEvent(item *Item) *ItemUpdatedEvent {
	return &ItemUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemUpdated, AggregateTypeItem, item.ID),
		ItemID:          item.ID,
		SKU:             item.SKU,
		Name:            item.Name,
	}
}

// ItemStatusChangedEvent is published when an item is activated or deactivated
type ItemStatusChangedEvent struct {
	shared.BaseDomainEvent
	ItemID uuid.UUID  `json:"item_id"`
	SKU    string     `json:"sku"`
	Status ItemStatus `json:"status"`
}

// NewItemStatusChangedEvent creates a new ItemStatusChangedEvent
func NewItemStatusChangedEvent(item *Item) *ItemStatusChangedEvent {
	return &ItemStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemStatusChanged, AggregateTypeItem, item.ID),
		ItemID:          item.ID,
		SKU:             item.SKU,
		Status:          item.Status,
	}
}

// WarehouseCreatedEvent is published when a new warehouse is created
type WarehouseCreatedEvent struct {
	shared.BaseDomainEvent
	WarehouseID uuid.UUID `json:"warehouse_id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	NameAr      string    `json:"name_ar,omitempty"`
}

// NewWarehouseCreatedEvent creates a new WarehouseCreatedEvent
func NewWarehouseCreatedEvent(warehouse *Warehouse) *WarehouseCreatedEvent {
	return &WarehouseCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWarehouseCreated, AggregateTypeWarehouse, warehouse.ID),
		WarehouseID:     warehouse.ID,
		Code:            warehouse.Code,
		Name:            warehouse.Name,
		NameAr:          warehouse.NameAr,
	}
}

// WarehouseUpdatedEvent is published when a warehouse is updated
type WarehouseUpdatedEvent struct {
	shared.BaseDomainEvent
	WarehouseID uuid.UUID `json:"warehouse_id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
}

// NewWarehouseUpdatedEvent creates a new WarehouseUpdatedEvent
func NewWarehouseUpdatedEvent(warehouse *Warehouse) *WarehouseUpdatedEvent {
	return &WarehouseUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWarehouseUpdated, AggregateTypeWarehouse, warehouse.ID),
		WarehouseID:     warehouse.ID,
		Code:            warehouse.Code,
		Name:            warehouse.Name,
	}
}

// WarehouseStatusChangedEvent is published when a warehouse is activated or deactivated
type WarehouseStatusChangedEvent struct {
	shared.BaseDomainEvent
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	Code        string          `json:"code"`
	Status      WarehouseStatus `json:"status"`
}

// NewWarehouseStatusChangedEvent creates a new WarehouseStatusChangedEvent
func NewWarehouseStatusChangedEvent(warehouse *Warehouse) *WarehouseStatusChangedEvent {
	return &WarehouseStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWarehouseStatusChanged, AggregateTypeWarehouse, warehouse.ID),
		WarehouseID:     warehouse.ID,
		Code:            warehouse.Code,
		Status:          warehouse.Status,
	}
}
