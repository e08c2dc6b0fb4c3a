package inventory

import (
	"context"
	"fmt"

	"github.com/mizan-erp/backend/internal/domain/inventory"
	"github.com/mizan-erp/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Stock alert types, ordered by urgency
const (
	AlertTypeAtReorder  = "at_reorder"
	AlertTypeCritical   = "critical"
	AlertTypeOutOfStock = "out_of_stock"
)

// StockAlert represents a replenishment alert for one warehouse/item pair
type StockAlert struct {
	WarehouseID  string `json:"warehouse_id"`
	ItemID       string `json:"item_id"`
	Quantity     string `json:"quantity"`
	ReorderPoint string `json:"reorder_point"`
	MinStock     string `json:"min_stock"`
	AlertType    string `json:"alert_type"`
}

// StockAlertNotifier is the interface for delivering stock alerts.
// Implementations can support different channels (in-app, email, SMS).
type StockAlertNotifier interface {
	// SendAlert sends a stock alert notification
	SendAlert(ctx context.Context, alert StockAlert) error
}

// LowStockAlertHandler turns StockBelowReorderPoint events into
// replenishment alerts
type LowStockAlertHandler struct {
	logger   *zap.Logger
	notifier StockAlertNotifier
}

// NewLowStockAlertHandler creates a new LowStockAlertHandler
func NewLowStockAlertHandler(logger *zap.Logger) *LowStockAlertHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LowStockAlertHandler{logger: logger}
}

// WithNotifier sets the notifier for sending alerts
func (h *LowStockAlertHandler) WithNotifier(notifier StockAlertNotifier) *LowStockAlertHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *LowStockAlertHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockBelowReorderPoint}
}

// Handle processes a StockBelowReorderPointEvent
func (h *LowStockAlertHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*inventory.StockBelowReorderPointEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", inventory.EventTypeStockBelowReorderPoint),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			inventory.EventTypeStockBelowReorderPoint, event.EventType())
	}

	alertType := AlertTypeAtReorder
	switch {
	case e.Quantity.IsZero() || e.Quantity.IsNegative():
		alertType = AlertTypeOutOfStock
	case e.Quantity.LessThanOrEqual(e.MinStock):
		alertType = AlertTypeCritical
	}

	h.logger.Warn("stock below reorder point",
		zap.String("warehouse_id", e.WarehouseID.String()),
		zap.String("item_id", e.ItemID.String()),
		zap.String("quantity", e.Quantity.String()),
		zap.String("reorder_point", e.ReorderPoint.String()),
		zap.String("min_stock", e.MinStock.String()),
		zap.String("alert_type", alertType),
	)

	if h.notifier == nil {
		return nil
	}

	alert := StockAlert{
		WarehouseID:  e.WarehouseID.String(),
		ItemID:       e.ItemID.String(),
		Quantity:     e.Quantity.String(),
		ReorderPoint: e.ReorderPoint.String(),
		MinStock:     e.MinStock.String(),
		AlertType:    alertType,
	}
	if err := h.notifier.SendAlert(ctx, alert); err != nil {
		// a failed notification must not fail the ledger operation
		h.logger.Error("failed to send stock alert",
			zap.String("item_id", alert.ItemID),
			zap.Error(err),
		)
	}
	return nil
}

var _ shared.EventHandler = (*LowStockAlertHandler)(nil)

// LoggingStockAlertNotifier logs alerts instead of delivering them. Useful
// for development and as the default channel.
type LoggingStockAlertNotifier struct {
	logger *zap.Logger
}

// NewLoggingStockAlertNotifier creates a new logging notifier
func NewLoggingStockAlertNotifier(logger *zap.Logger) *LoggingStockAlertNotifier {
	return &LoggingStockAlertNotifier{logger: logger}
}

// SendAlert logs the stock alert
func (n *LoggingStockAlertNotifier) SendAlert(ctx context.Context, alert StockAlert) error {
	n.logger.Warn("STOCK ALERT",
		zap.String("type", alert.AlertType),
		zap.String("item_id", alert.ItemID),
		zap.String("warehouse_id", alert.WarehouseID),
		zap.String("quantity", alert.Quantity),
		zap.String("reorder_point", alert.ReorderPoint),
	)
	return nil
}

var _ StockAlertNotifier = (*LoggingStockAlertNotifier)(nil)

// ReportCacheInvalidator drops cached report payloads whenever the ledger
// changes
type ReportCacheInvalidator struct {
	reports *ReportService
}

// NewReportCacheInvalidator creates a new ReportCacheInvalidator
func NewReportCacheInvalidator(reports *ReportService) *ReportCacheInvalidator {
	return &ReportCacheInvalidator{reports: reports}
}

// EventTypes returns the event types this handler is interested in
func (h *ReportCacheInvalidator) EventTypes() []string {
	return []string{
		inventory.EventTypeStockMovementRecorded,
		inventory.EventTypeStockMovementVoided,
	}
}

// Handle invalidates the report cache
func (h *ReportCacheInvalidator) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.reports.InvalidateCache(ctx)
	return nil
}

var _ shared.EventHandler = (*ReportCacheInvalidator)(nil)
