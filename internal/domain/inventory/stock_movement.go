package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/mizan-erp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MovementType classifies a stock movement
type MovementType string

const (
	MovementTypeIn         MovementType = "IN"
	MovementTypeOut        MovementType = "OUT"
	MovementTypeTransfer   MovementType = "TRANSFER"
	MovementTypeAdjustment MovementType = "ADJUSTMENT"
)

// IsValid checks if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeIn, MovementTypeOut, MovementTypeTransfer, MovementTypeAdjustment:
		return true
	}
	return false
}

// ReferenceType identifies the business document or reason behind a movement
type ReferenceType string

const (
	ReferenceTypePurchase   ReferenceType = "PURCHASE"
	ReferenceTypeSale       ReferenceType = "SALE"
	ReferenceTypeProduction ReferenceType = "PRODUCTION"
	ReferenceTypeReturn     ReferenceType = "RETURN"
	ReferenceTypeDamage     ReferenceType = "DAMAGE"
	ReferenceTypeLoss       ReferenceType = "LOSS"
	ReferenceTypeFound      ReferenceType = "FOUND"
	ReferenceTypeTransfer   ReferenceType = "TRANSFER"
	ReferenceTypeCount      ReferenceType = "COUNT"
)

// IsValid checks if the reference type is valid
func (t ReferenceType) IsValid() bool {
	switch t {
	case ReferenceTypePurchase, ReferenceTypeSale, ReferenceTypeProduction,
		ReferenceTypeReturn, ReferenceTypeDamage, ReferenceTypeLoss,
		ReferenceTypeFound, ReferenceTypeTransfer, ReferenceTypeCount:
		return true
	}
	return false
}

// IsAdjustmentReason checks if the reference type is a valid adjustment reason
func (t ReferenceType) IsAdjustmentReason() bool {
	switch t {
	case ReferenceTypeDamage, ReferenceTypeLoss, ReferenceTypeFound, ReferenceTypeCount:
		return true
	}
	return false
}

// MovementStatus represents the lifecycle of a movement record
type MovementStatus string

const (
	MovementStatusActive MovementStatus = "ACTIVE"
	MovementStatusVoided MovementStatus = "VOIDED"
)

// StockMovement is the immutable audit record of one ledger change.
// Quantity always holds the magnitude; the direction is recoverable from
// BalanceBefore and BalanceAfter. Cancellations never delete a movement:
// the original is marked VOIDED and a compensating movement referencing it
// through ReversalOfID restores the ledger.
type StockMovement struct {
	shared.BaseEntity
	MovementNumber string          `gorm:"type:varchar(20);not null;uniqueIndex"`
	MovementType   MovementType    `gorm:"type:varchar(20);not null;index"`
	WarehouseID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_warehouse_item"`
	ItemID         uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_warehouse_item"`
	Quantity       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	BalanceBefore  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	BalanceAfter   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReferenceType  ReferenceType   `gorm:"type:varchar(20);index"`
	ReferenceID    *uuid.UUID      `gorm:"type:uuid;index"`
	Status         MovementStatus  `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	ReversalOfID   *uuid.UUID      `gorm:"type:uuid;index"`
	MovementDate   time.Time       `gorm:"not null;index"`
	Notes          string          `gorm:"type:text"`
	CreatedBy      string          `gorm:"type:varchar(100)"`
	VoidedBy       string          `gorm:"type:varchar(100)"`
	VoidedAt       *time.Time
	VoidReason     string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement creates a movement record. The quantity must be positive;
// balanceBefore/balanceAfter carry the direction.
func NewStockMovement(
	number string,
	movementType MovementType,
	warehouseID, itemID uuid.UUID,
	quantity, balanceBefore, balanceAfter decimal.Decimal,
	movementDate time.Time,
) (*StockMovement, error) {
	if !movementType.IsValid() {
		return nil, shared.NewDomainErrorf("VALIDATION_ERROR", "Invalid movement type: %s", movementType)
	}
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Movement quantity must be positive")
	}
	if !balanceAfter.Sub(balanceBefore).Abs().Equal(quantity) {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Movement quantity does not match the balance change")
	}

	return &StockMovement{
		BaseEntity:     shared.NewBaseEntity(),
		MovementNumber: number,
		MovementType:   movementType,
		WarehouseID:    warehouseID,
		ItemID:         itemID,
		Quantity:       quantity,
		BalanceBefore:  balanceBefore,
		BalanceAfter:   balanceAfter,
		UnitCost:       decimal.Zero,
		Status:         MovementStatusActive,
		MovementDate:   movementDate,
	}, nil
}

// WithReference sets the business reference
func (m *StockMovement) WithReference(refType ReferenceType, refID *uuid.UUID) *StockMovement {
	m.ReferenceType = refType
	m.ReferenceID = refID
	return m
}

// WithUnitCost sets the unit cost used for valuation
func (m *StockMovement) WithUnitCost(cost decimal.Decimal) *StockMovement {
	m.UnitCost = cost
	return m
}

// WithNotes sets free-form notes
func (m *StockMovement) WithNotes(notes string) *StockMovement {
	m.Notes = notes
	return m
}

// WithCreatedBy records who created the movement
func (m *StockMovement) WithCreatedBy(createdBy string) *StockMovement {
	m.CreatedBy = createdBy
	return m
}

// IsIncrease reports whether the movement added stock
func (m *StockMovement) IsIncrease() bool {
	return m.BalanceAfter.GreaterThan(m.BalanceBefore)
}

// IsVoided reports whether the movement has been cancelled
func (m *StockMovement) IsVoided() bool {
	return m.Status == MovementStatusVoided
}

// IsReversal reports whether the movement compensates another movement
func (m *StockMovement) IsReversal() bool {
	return m.ReversalOfID != nil
}

// SignedQuantity returns the quantity with its direction applied
func (m *StockMovement) SignedQuantity() decimal.Decimal {
	if m.IsIncrease() {
		return m.Quantity
	}
	return m.Quantity.Neg()
}

// Void marks the movement as cancelled. The ledger is restored by a separate
// compensating movement created in the same transaction.
func (m *StockMovement) Void(voidedBy, reason string) error {
	if m.IsVoided() {
		return shared.NewDomainError("CONFLICT", "Movement is already voided")
	}
	if m.IsReversal() {
		return shared.NewDomainError("CONFLICT", "Cannot void a compensating movement")
	}

	now := time.Now()
	m.Status = MovementStatusVoided
	m.VoidedBy = voidedBy
	m.VoidedAt = &now
	m.VoidReason = reason
	m.UpdatedAt = now

	return nil
}

// NewReversal builds the compensating movement for a voided original. The
// caller supplies the new document number and the ledger balances around the
// reversal.
func (m *StockMovement) NewReversal(number string, balanceBefore, balanceAfter decimal.Decimal, createdBy string) (*StockMovement, error) {
	reversal, err := NewStockMovement(
		number,
		m.MovementType,
		m.WarehouseID,
		m.ItemID,
		m.Quantity,
		balanceBefore,
		balanceAfter,
		time.Now(),
	)
	if err != nil {
		return nil, err
	}

	reversal.ReferenceType = m.ReferenceType
	reversal.ReferenceID = m.ReferenceID
	reversal.UnitCost = m.UnitCost
	reversal.ReversalOfID = &m.ID
	reversal.CreatedBy = createdBy
	reversal.Notes = "Reversal of " + m.MovementNumber

	return reversal, nil
}
