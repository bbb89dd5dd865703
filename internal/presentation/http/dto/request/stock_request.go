package request

import (
	"time"

	"github.com/google/uuid"
)

// RecordStockEntryRequest represents a stock movement request
type RecordStockEntryRequest struct {
	ProductID uuid.UUID  `json:"product_id" binding:"required"`
	Type      string     `json:"type" binding:"required,oneof=production writeoff adjustment"`
	Quantity  float64    `json:"quantity" binding:"required"`
	Reason    *string    `json:"reason" binding:"omitempty,max=100"`
	Notes     *string    `json:"notes" binding:"omitempty,max=500"`
	EntryDate *time.Time `json:"entry_date"`
}

// StockEntryFilterRequest represents stock entry filter parameters
type StockEntryFilterRequest struct {
	ProductID string `form:"product_id"`
	Type      *int   `form:"type"`
	DateFrom  string `form:"date_from"`
	DateTo    string `form:"date_to"`
	Page      int    `form:"page"`
	PerPage   int    `form:"per_page"`
}
