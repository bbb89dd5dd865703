package request

import (
	"time"

	"github.com/google/uuid"
)

// PriceTierRequest represents one named alternate price for a product
type PriceTierRequest struct {
	Code  string  `json:"code" binding:"required,min=1,max=50"`
	Label string  `json:"label" binding:"omitempty,max=100"`
	Price float64 `json:"price" binding:"min=0"`
}

// CreateProductRequest represents a product creation request
type CreateProductRequest struct {
	CategoryID   *uuid.UUID         `json:"category_id"`
	Name         string             `json:"name" binding:"required,min=2,max=255"`
	Code         string             `json:"code" binding:"omitempty,max=100"`
	Unit         string             `json:"unit" binding:"omitempty,max=50"`
	Stock        float64            `json:"stock" binding:"min=0"`
	TrackStock   *bool              `json:"track_stock"`
	ReorderLevel float64            `json:"reorder_level" binding:"min=0"`
	SellingPrice float64            `json:"selling_price" binding:"min=0"`
	HSNCode      string             `json:"hsn_code" binding:"omitempty,max=20"`
	ExpiryDate   *time.Time         `json:"expiry_date"`
	Tiers        []PriceTierRequest `json:"tiers" binding:"omitempty,dive"`
	Notes        *string            `json:"notes"`
}

// UpdateProductRequest represents a product update request
type UpdateProductRequest struct {
	CategoryID   *uuid.UUID          `json:"category_id"`
	Name         *string             `json:"name" binding:"omitempty,min=2,max=255"`
	Code         *string             `json:"code" binding:"omitempty,min=1,max=100"`
	Unit         *string             `json:"unit" binding:"omitempty,max=50"`
	TrackStock   *bool               `json:"track_stock"`
	ReorderLevel *float64            `json:"reorder_level" binding:"omitempty,min=0"`
	SellingPrice *float64            `json:"selling_price" binding:"omitempty,min=0"`
	HSNCode      *string             `json:"hsn_code" binding:"omitempty,max=20"`
	ExpiryDate   *time.Time          `json:"expiry_date"`
	Tiers        *[]PriceTierRequest `json:"tiers" binding:"omitempty,dive"`
	Notes        *string             `json:"notes"`
}

// ProductFilterRequest represents product filter parameters
type ProductFilterRequest struct {
	Search       string `form:"search"`
	CategoryID   string `form:"category_id"`
	LowStock     bool   `form:"low_stock"`
	ExpiringSoon bool   `form:"expiring_soon"`
	SortBy       string `form:"sort_by"`
	SortOrder    string `form:"sort_order"`
	Page         int    `form:"page"`
	PerPage      int    `form:"per_page"`
}
