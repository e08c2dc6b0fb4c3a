package catalog

import (
	"strings"
	"time"

	"github.com/mizan-erp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ItemStatus represents the status of an item
type ItemStatus string

const (
	ItemStatusActive   ItemStatus = "active"
	ItemStatusInactive ItemStatus = "inactive"
)

// Item represents a stockable item/SKU in the catalog.
// It is the aggregate root for item-related operations. Names are kept in
// both English and Arabic for the bilingual UI.
type Item struct {
	shared.BaseAggregateRoot
	SKU          string              `gorm:"type:varchar(50);not null;uniqueIndex"`
	Barcode      string              `gorm:"type:varchar(50);index"`
	Name         string              `gorm:"type:varchar(200);not null"`
	NameAr       string              `gorm:"type:varchar(200)"`
	Description  string              `gorm:"type:text"`
	Unit         string              `gorm:"type:varchar(20);not null"` // base unit ("pcs", "kg", "box")
	CostPrice    decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	SalePrice    decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	MinStock     decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	ReorderPoint decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	MaxStock     decimal.NullDecimal `gorm:"type:decimal(18,4)"`
	Status       ItemStatus          `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "items"
}

// NewItem creates a new item
func NewItem(sku, name, nameAr, unit string) (*Item, error) {
	if err := validateItemSKU(sku); err != nil {
		return nil, err
	}
	if err := validateItemName(name); err != nil {
		return nil, err
	}
	if err := validateUnit(unit); err != nil {
		return nil, err
	}

	item := &Item{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               strings.ToUpper(sku),
		Name:              name,
		NameAr:            nameAr,
		Unit:              unit,
		CostPrice:         decimal.Zero,
		SalePrice:         decimal.Zero,
		MinStock:          decimal.Zero,
		ReorderPoint:      decimal.Zero,
		Status:            ItemStatusActive,
	}

	item.AddDomainEvent(NewItemCreatedEvent(item))

	return item, nil
}

// Update updates the item's basic information
func (i *Item) Update(name, nameAr, description, unit string) error {
	if err := validateItemName(name); err != nil {
		return err
	}
	if err := validateUnit(unit); err != nil {
		return err
	}

	i.Name = name
	i.NameAr = nameAr
	i.Description = description
	i.Unit = unit
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	i.AddDomainEvent(NewItemUpdatedEvent(i))

	return nil
}

// SetBarcode sets the item barcode
func (i *Item) SetBarcode(barcode string) error {
	if barcode != "" && len(barcode) > 50 {
		return shared.NewDomainError("VALIDATION_ERROR", "Barcode cannot exceed 50 characters")
	}

	i.Barcode = barcode
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	return nil
}

// SetPrices sets the cost and sale prices
func (i *Item) SetPrices(costPrice, salePrice decimal.Decimal) error {
	if costPrice.IsNegative() {
		return shared.NewDomainError("VALIDATION_ERROR", "Cost price cannot be negative")
	}
	if salePrice.IsNegative() {
		return shared.NewDomainError("VALIDATION_ERROR", "Sale price cannot be negative")
	}

	i.CostPrice = costPrice
	i.SalePrice = salePrice
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	return nil
}

// SetStockLevels sets the replenishment thresholds. The reorder point must
// sit between the minimum and maximum when a maximum is configured.
func (i *Item) SetStockLevels(minStock, reorderPoint decimal.Decimal, maxStock *decimal.Decimal) error {
	if minStock.IsNegative() || reorderPoint.IsNegative() {
		return shared.NewDomainError("VALIDATION_ERROR", "Stock levels cannot be negative")
	}
	if reorderPoint.LessThan(minStock) {
		return shared.NewDomainError("VALIDATION_ERROR", "Reorder point cannot be below minimum stock")
	}
	if maxStock != nil {
		if maxStock.IsNegative() {
			return shared.NewDomainError("VALIDATION_ERROR", "Maximum stock cannot be negative")
		}
		if maxStock.LessThan(reorderPoint) {
			return shared.NewDomainError("VALIDATION_ERROR", "Maximum stock cannot be below the reorder point")
		}
	}

	i.MinStock = minStock
	i.ReorderPoint = reorderPoint
	if maxStock != nil {
		i.MaxStock = decimal.NullDecimal{Decimal: *maxStock, Valid: true}
	} else {
		i.MaxStock = decimal.NullDecimal{}
	}
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	return nil
}

// Activate activates the item
func (i *Item) Activate() error {
	if i.Status == ItemStatusActive {
		return shared.NewDomainError("CONFLICT", "Item is already active")
	}

	i.Status = ItemStatusActive
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	i.AddDomainEvent(NewItemStatusChangedEvent(i))

	return nil
}

// Deactivate deactivates the item
func (i *Item) Deactivate() error {
	if i.Status == ItemStatusInactive {
		return shared.NewDomainError("CONFLICT", "Item is already inactive")
	}

	i.Status = ItemStatusInactive
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	i.AddDomainEvent(NewItemStatusChangedEvent(i))

	return nil
}

// IsActive returns true if the item is active
func (i *Item) IsActive() bool {
	return i.Status == ItemStatusActive
}

func validateItemSKU(sku string) error {
	if sku == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Item SKU cannot be empty")
	}
	if len(sku) > 50 {
		return shared.NewDomainError("VALIDATION_ERROR", "Item SKU cannot exceed 50 characters")
	}
	for _, r := range sku {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("VALIDATION_ERROR", "Item SKU can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateItemName(name string) error {
	if name == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Item name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("VALIDATION_ERROR", "Item name cannot exceed 200 characters")
	}
	return nil
}

func validateUnit(unit string) error {
	if unit == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Unit cannot be empty")
	}
	if len(unit) > 20 {
		return shared.NewDomainError("VALIDATION_ERROR", "Unit cannot exceed 20 characters")
	}
	return nil
}
