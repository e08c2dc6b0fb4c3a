package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string returns DESC", "", "DESC"},
		{"ASC uppercase returns ASC", "ASC", "ASC"},
		{"asc lowercase returns ASC", "asc", "ASC"},
		{"DESC uppercase returns DESC", "DESC", "DESC"},
		{"invalid value returns DESC", "INVALID", "DESC"},
		{"sql injection attempt returns DESC", "ASC; DROP TABLE items;--", "DESC"},
		{"whitespace around ASC returns ASC", "  asc  ", "ASC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortOrder(tt.input))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		defaultField string
		expected     string
	}{
		{"empty string returns default", "", "created_at", "created_at"},
		{"valid field returns field", "sku", "created_at", "sku"},
		{"invalid field returns default", "password", "created_at", "created_at"},
		{"sql injection attempt returns default", "sku; DROP TABLE items;--", "created_at", "created_at"},
		{"case sensitive - uppercase rejected", "SKU", "created_at", "created_at"},
		{"whitespace around valid field returns field", "  sku  ", "created_at", "sku"},
		{"empty default with invalid field", "invalid", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortField(tt.input, ItemSortFields, tt.defaultField))
		})
	}
}

func TestSortFieldWhitelists(t *testing.T) {
	whitelists := map[string]map[string]bool{
		"ItemSortFields":      ItemSortFields,
		"WarehouseSortFields": WarehouseSortFields,
		"BalanceSortFields":   BalanceSortFields,
		"MovementSortFields":  MovementSortFields,
		"CountSortFields":     CountSortFields,
	}

	for name, whitelist := range whitelists {
		t.Run(name, func(t *testing.T) {
			for _, field := range []string{"id", "created_at", "updated_at"} {
				assert.True(t, whitelist[field], "%s should allow '%s'", name, field)
			}
			assert.Greater(t, len(whitelist), 3, "%s should cover entity-specific columns", name)
		})
	}

	t.Run("entity specific fields", func(t *testing.T) {
		assert.True(t, ItemSortFields["sku"])
		assert.True(t, WarehouseSortFields["code"])
		assert.True(t, BalanceSortFields["available_qty"])
		assert.True(t, MovementSortFields["movement_number"])
		assert.True(t, CountSortFields["count_number"])
	})
}

func TestSortValidation_RejectsInjectionPayloads(t *testing.T) {
	payloads := []string{
		"id; DROP TABLE stock_movements;--",
		"id' OR '1'='1",
		"id UNION SELECT * FROM items",
		"id, (SELECT cost_price FROM items)",
		"id/**/;DROP TABLE stock_balances",
		"id\n; DROP TABLE stock_counts",
	}

	for _, payload := range payloads {
		assert.Equal(t, "created_at", ValidateSortField(payload, MovementSortFields, "created_at"),
			"payload should fall back to default: %s", payload)
		assert.Equal(t, "DESC", ValidateSortOrder(payload),
			"payload should fall back to DESC: %s", payload)
	}
}
