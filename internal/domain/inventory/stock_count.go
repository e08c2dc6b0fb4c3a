package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/mizan-erp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// StockCountStatus represents the state of a stock count
type StockCountStatus string

const (
	StockCountStatusDraft      StockCountStatus = "DRAFT"
	StockCountStatusInProgress StockCountStatus = "IN_PROGRESS"
	StockCountStatusCompleted  StockCountStatus = "COMPLETED"
	StockCountStatusCancelled  StockCountStatus = "CANCELLED"
)

// CanTransitionTo checks if a status transition is allowed
func (s StockCountStatus) CanTransitionTo(target StockCountStatus) bool {
	switch s {
	case StockCountStatusDraft:
		return target == StockCountStatusInProgress || target == StockCountStatusCancelled
	case StockCountStatusInProgress:
		return target == StockCountStatusCompleted || target == StockCountStatusCancelled
	default:
		return false
	}
}

// IsTerminal reports whether the status admits no further transitions
func (s StockCountStatus) IsTerminal() bool {
	return s == StockCountStatusCompleted || s == StockCountStatusCancelled
}

// StockCountRecord is one line of a stock count: the system quantity frozen
// when the count was created, and the physically counted quantity once
// recorded. Difference is CountedQty - SystemQty.
type StockCountRecord struct {
	shared.BaseEntity
	StockCountID uuid.UUID           `gorm:"type:uuid;not null;index"`
	ItemID       uuid.UUID           `gorm:"type:uuid;not null;index"`
	SystemQty    decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	CountedQty   decimal.NullDecimal `gorm:"type:decimal(18,4)"`
	Difference   decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	CountedAt    *time.Time
	Notes        string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (StockCountRecord) TableName() string {
	return "stock_count_records"
}

// IsCounted reports whether a physical quantity has been recorded
func (r *StockCountRecord) IsCounted() bool {
	return r.CountedQty.Valid
}

// HasDifference reports whether the counted quantity deviates from the system
func (r *StockCountRecord) HasDifference() bool {
	return r.IsCounted() && !r.Difference.IsZero()
}

func (r *StockCountRecord) record(countedQty decimal.Decimal, notes string) error {
	if countedQty.IsNegative() {
		return shared.NewDomainError("VALIDATION_ERROR", "Counted quantity cannot be negative")
	}

	now := time.Now()
	r.CountedQty = decimal.NullDecimal{Decimal: countedQty, Valid: true}
	r.Difference = countedQty.Sub(r.SystemQty)
	r.CountedAt = &now
	r.Notes = notes
	r.UpdatedAt = now

	return nil
}

// StockCount is a physical inventory count over one warehouse. It moves
// through DRAFT -> IN_PROGRESS -> COMPLETED, or is cancelled before
// completion.
type StockCount struct {
	shared.BaseAggregateRoot
	CountNumber string             `gorm:"type:varchar(20);not null;uniqueIndex"`
	WarehouseID uuid.UUID          `gorm:"type:uuid;not null;index"`
	Status      StockCountStatus   `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	CountDate   time.Time          `gorm:"not null"`
	CountedBy   string             `gorm:"type:varchar(100)"`
	ApprovedBy  string             `gorm:"type:varchar(100)"`
	CompletedAt *time.Time
	Notes       string             `gorm:"type:text"`
	Records     []StockCountRecord `gorm:"foreignKey:StockCountID"`
}

// TableName returns the table name for GORM
func (StockCount) TableName() string {
	return "stock_counts"
}

// NewStockCount creates a draft stock count
func NewStockCount(number string, warehouseID uuid.UUID, countDate time.Time, countedBy string) *StockCount {
	count := &StockCount{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CountNumber:       number,
		WarehouseID:       warehouseID,
		Status:            StockCountStatusDraft,
		CountDate:         countDate,
		CountedBy:         countedBy,
	}

	count.AddDomainEvent(NewStockCountCreatedEvent(count))

	return count
}

// AddRecord snapshots the system quantity for one item. Only allowed while
// the count is still a draft; each item appears at most once.
func (c *StockCount) AddRecord(itemID uuid.UUID, systemQty decimal.Decimal) error {
	if c.Status != StockCountStatusDraft {
		return shared.NewDomainError("CONFLICT", "Records can only be added to a draft count")
	}
	for i := range c.Records {
		if c.Records[i].ItemID == itemID {
			return shared.NewDomainError("CONFLICT", "Item already included in this count")
		}
	}

	c.Records = append(c.Records, StockCountRecord{
		BaseEntity:   shared.NewBaseEntity(),
		StockCountID: c.ID,
		ItemID:       itemID,
		SystemQty:    systemQty,
		Difference:   decimal.Zero,
	})
	c.UpdatedAt = time.Now()

	return nil
}

// RecordCount stores the physically counted quantity for one item. The first
// recorded quantity moves a draft count to IN_PROGRESS.
func (c *StockCount) RecordCount(itemID uuid.UUID, countedQty decimal.Decimal, notes string) error {
	if c.Status.IsTerminal() {
		return shared.NewDomainErrorf("CONFLICT", "Cannot record counts on a %s count", c.Status)
	}

	var rec *StockCountRecord
	for i := range c.Records {
		if c.Records[i].ItemID == itemID {
			rec = &c.Records[i]
			break
		}
	}
	if rec == nil {
		return shared.NewDomainError("NOT_FOUND", "Item is not part of this count")
	}

	if err := rec.record(countedQty, notes); err != nil {
		return err
	}

	if c.Status == StockCountStatusDraft {
		c.Status = StockCountStatusInProgress
	}
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// CountedRecords returns how many records have a counted quantity
func (c *StockCount) CountedRecords() int {
	counted := 0
	for i := range c.Records {
		if c.Records[i].IsCounted() {
			counted++
		}
	}
	return counted
}

// UncountedRecords returns how many records still await counting
func (c *StockCount) UncountedRecords() int {
	return len(c.Records) - c.CountedRecords()
}

// Complete finishes the count. Every record must have a counted quantity.
func (c *StockCount) Complete(approvedBy string) error {
	if !c.Status.CanTransitionTo(StockCountStatusCompleted) {
		return shared.NewDomainErrorf("CONFLICT", "Cannot complete a %s count", c.Status)
	}
	if uncounted := c.UncountedRecords(); uncounted > 0 {
		return shared.NewDomainErrorf("INVALID_STATE",
			"%d of %d items not counted", uncounted, len(c.Records))
	}

	now := time.Now()
	c.Status = StockCountStatusCompleted
	c.ApprovedBy = approvedBy
	c.CompletedAt = &now
	c.UpdatedAt = now
	c.IncrementVersion()

	c.AddDomainEvent(NewStockCountCompletedEvent(c))

	return nil
}

// Cancel abandons the count before completion
func (c *StockCount) Cancel(reason string) error {
	if !c.Status.CanTransitionTo(StockCountStatusCancelled) {
		return shared.NewDomainErrorf("CONFLICT", "Cannot cancel a %s count", c.Status)
	}

	c.Status = StockCountStatusCancelled
	if reason != "" {
		if c.Notes != "" {
			c.Notes += "\n"
		}
		c.Notes += "Cancelled: " + reason
	}
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewStockCountCancelledEvent(c, reason))

	return nil
}

// DifferenceRecords returns the records whose counted quantity deviates from
// the system quantity
func (c *StockCount) DifferenceRecords() []StockCountRecord {
	var diffs []StockCountRecord
	for i := range c.Records {
		if c.Records[i].HasDifference() {
			diffs = append(diffs, c.Records[i])
		}
	}
	return diffs
}
