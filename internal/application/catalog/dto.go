package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/mizan-erp/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CreateItemRequest represents a request to create an item
type CreateItemRequest struct {
	SKU          string           `json:"sku" binding:"required,max=50"`
	Barcode      string           `json:"barcode" binding:"omitempty,max=50"`
	Name         string           `json:"name" binding:"required,max=200"`
	NameAr       string           `json:"name_ar" binding:"omitempty,max=200"`
	Description  string           `json:"description"`
	Unit         string           `json:"unit" binding:"required,max=20"`
	CostPrice    *decimal.Decimal `json:"cost_price"`
	SalePrice    *decimal.Decimal `json:"sale_price"`
	MinStock     *decimal.Decimal `json:"min_stock"`
	ReorderPoint *decimal.Decimal `json:"reorder_point"`
	MaxStock     *decimal.Decimal `json:"max_stock"`
}

// UpdateItemRequest represents a request to update an item
type UpdateItemRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	NameAr      string `json:"name_ar" binding:"omitempty,max=200"`
	Description string `json:"description"`
	Unit        string `json:"unit" binding:"required,max=20"`
	Barcode     string `json:"barcode" binding:"omitempty,max=50"`
}

// UpdateItemPricesRequest represents a request to change item prices
type UpdateItemPricesRequest struct {
	CostPrice decimal.Decimal `json:"cost_price"`
	SalePrice decimal.Decimal `json:"sale_price"`
}

// UpdateItemStockLevelsRequest represents a request to change the
// replenishment thresholds
type UpdateItemStockLevelsRequest struct {
	MinStock     decimal.Decimal  `json:"min_stock"`
	ReorderPoint decimal.Decimal  `json:"reorder_point"`
	MaxStock     *decimal.Decimal `json:"max_stock"`
}

// ItemResponse represents an item in API responses
type ItemResponse struct {
	ID           uuid.UUID        `json:"id"`
	SKU          string           `json:"sku"`
	Barcode      string           `json:"barcode,omitempty"`
	Name         string           `json:"name"`
	NameAr       string           `json:"name_ar,omitempty"`
	Description  string           `json:"description,omitempty"`
	Unit         string           `json:"unit"`
	CostPrice    decimal.Decimal  `json:"cost_price"`
	SalePrice    decimal.Decimal  `json:"sale_price"`
	MinStock     decimal.Decimal  `json:"min_stock"`
	ReorderPoint decimal.Decimal  `json:"reorder_point"`
	MaxStock     *decimal.Decimal `json:"max_stock,omitempty"`
	Status       string           `json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// ToItemResponse converts a domain item to its response form
func ToItemResponse(item *catalog.Item) ItemResponse {
	resp := ItemResponse{
		ID:           item.ID,
		SKU:          item.SKU,
		Barcode:      item.Barcode,
		Name:         item.Name,
		NameAr:       item.NameAr,
		Description:  item.Description,
		Unit:         item.Unit,
		CostPrice:    item.CostPrice,
		SalePrice:    item.SalePrice,
		MinStock:     item.MinStock,
		ReorderPoint: item.ReorderPoint,
		Status:       string(item.Status),
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
	}
	if item.MaxStock.Valid {
		max := item.MaxStock.Decimal
		resp.MaxStock = &max
	}
	return resp
}

// ItemListFilter represents filter options for the item list
type ItemListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CreateWarehouseRequest represents a request to create a warehouse
type CreateWarehouseRequest struct {
	Code    string `json:"code" binding:"required,max=20"`
	Name    string `json:"name" binding:"required,max=100"`
	NameAr  string `json:"name_ar" binding:"omitempty,max=100"`
	Address string `json:"address"`
}

// UpdateWarehouseRequest represents a request to update a warehouse
type UpdateWarehouseRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	NameAr  string `json:"name_ar" binding:"omitempty,max=100"`
	Address string `json:"address"`
}

// WarehouseResponse represents a warehouse in API responses
type WarehouseResponse struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	NameAr    string    `json:"name_ar,omitempty"`
	Address   string    `json:"address,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToWarehouseResponse converts a domain warehouse to its response form
func ToWarehouseResponse(w *catalog.Warehouse) WarehouseResponse {
	return WarehouseResponse{
		ID:        w.ID,
		Code:      w.Code,
		Name:      w.Name,
		NameAr:    w.NameAr,
		Address:   w.Address,
		IsActive:  w.IsActive(),
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

// WarehouseListFilter represents filter options for the warehouse list
type WarehouseListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}
