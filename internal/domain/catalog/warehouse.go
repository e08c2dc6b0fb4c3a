package catalog

import (
	"strings"
	"time"

	"github.com/mizan-erp/backend/internal/domain/shared"
)

// WarehouseStatus represents the status of a warehouse
type WarehouseStatus string

const (
	WarehouseStatusActive   WarehouseStatus = "active"
	WarehouseStatusInactive WarehouseStatus = "inactive"
)

// Warehouse represents a physical storage location.
// It is the aggregate root for warehouse-related operations.
type Warehouse struct {
	shared.BaseAggregateRoot
	Code    string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name    string          `gorm:"type:varchar(200);not null"`
	NameAr  string          `gorm:"type:varchar(200)"`
	Address string          `gorm:"type:text"`
	Status  WarehouseStatus `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Warehouse) TableName() string {
	return "warehouses"
}

// NewWarehouse creates a new warehouse
func NewWarehouse(code, name, nameAr, address string) (*Warehouse, error) {
	if err := validateWarehouseCode(code); err != nil {
		return nil, err
	}
	if err := validateWarehouseName(name); err != nil {
		return nil, err
	}

	warehouse := &Warehouse{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		NameAr:            nameAr,
		Address:           address,
		Status:            WarehouseStatusActive,
	}

	warehouse.AddDomainEvent(NewWarehouseCreatedEvent(warehouse))

	return warehouse, nil
}

// Update updates the warehouse's basic information
func (w *Warehouse) Update(name, nameAr, address string) error {
	if err := validateWarehouseName(name); err != nil {
		return err
	}

	w.Name = name
	w.NameAr = nameAr
	w.Address = address
	w.UpdatedAt = time.Now()
	w.IncrementVersion()

	w.AddDomainEvent(NewWarehouseUpdatedEvent(w))

	return nil
}

// Activate activates the warehouse
func (w *Warehouse) Activate() error {
	if w.Status == WarehouseStatusActive {
		return shared.NewDomainError("CONFLICT", "Warehouse is already active")
	}

	w.Status = WarehouseStatusActive
	w.UpdatedAt = time.Now()
	w.IncrementVersion()

	w.AddDomainEvent(NewWarehouseStatusChangedEvent(w))

	return nil
}

// Deactivate deactivates the warehouse
func (w *Warehouse) Deactivate() error {
	if w.Status == WarehouseStatusInactive {
		return shared.NewDomainError("CONFLICT", "Warehouse is already inactive")
	}

	w.Status = WarehouseStatusInactive
	w.UpdatedAt = time.Now()
	w.IncrementVersion()

	w.AddDomainEvent(NewWarehouseStatusChangedEvent(w))

	return nil
}

// IsActive returns true if the warehouse is active
func (w *Warehouse) IsActive() bool {
	return w.Status == WarehouseStatusActive
}

func validateWarehouseCode(code string) error {
	if code == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Warehouse code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("VALIDATION_ERROR", "Warehouse code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("VALIDATION_ERROR", "Warehouse code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateWarehouseName(name string) error {
	if name == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Warehouse name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("VALIDATION_ERROR", "Warehouse name cannot exceed 200 characters")
	}
	return nil
}
