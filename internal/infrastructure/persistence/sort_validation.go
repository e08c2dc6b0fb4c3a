package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ItemSortFields contains allowed sort fields for catalog items
var ItemSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"sku":           true,
	"barcode":       true,
	"name":          true,
	"name_ar":       true,
	"unit":          true,
	"cost_price":    true,
	"sale_price":    true,
	"min_stock":     true,
	"reorder_point": true,
	"max_stock":     true,
	"status":        true,
}

// WarehouseSortFields contains allowed sort fields for warehouses
var WarehouseSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
	"name_ar":    true,
	"status":     true,
}

// BalanceSortFields contains allowed sort fields for stock balances
var BalanceSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"warehouse_id":     true,
	"item_id":          true,
	"quantity":         true,
	"reserved_qty":     true,
	"available_qty":    true,
	"last_movement_at": true,
}

// MovementSortFields contains allowed sort fields for stock movements
var MovementSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"movement_number": true,
	"movement_type":   true,
	"warehouse_id":    true,
	"item_id":         true,
	"quantity":        true,
	"reference_type":  true,
	"status":          true,
	"movement_date":   true,
}

// CountSortFields contains allowed sort fields for stock counts
var CountSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"count_number": true,
	"warehouse_id": true,
	"status":       true,
	"count_date":   true,
	"completed_at": true,
}
