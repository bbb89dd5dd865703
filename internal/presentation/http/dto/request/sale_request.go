package request

import (
	"time"

	"github.com/google/uuid"
)

// SaleItemRequest represents one product line in a sale request.
// Prices are resolved server-side; the client sends only quantity,
// tier and any line discount.
type SaleItemRequest struct {
	ProductID     uuid.UUID `json:"product_id" binding:"required"`
	Quantity      float64   `json:"quantity" binding:"required,gt=0"`
	Tier          string    `json:"tier" binding:"omitempty,max=50"`
	DiscountType  string    `json:"discount_type" binding:"omitempty,oneof=none percentage fixed"`
	DiscountValue float64   `json:"discount_value" binding:"min=0"`
}

// CommitSaleRequest represents a sale commit request
type CommitSaleRequest struct {
	CustomerID    *uuid.UUID        `json:"customer_id"`
	CustomerName  string            `json:"customer_name" binding:"omitempty,max=255"`
	CustomerPhone *string           `json:"customer_phone" binding:"omitempty,max=50"`
	CustomerType  string            `json:"customer_type" binding:"omitempty,oneof=individual business"`
	CustomerGSTIN *string           `json:"customer_gstin" binding:"omitempty,max=20"`
	Items         []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
	DiscountType  string            `json:"discount_type" binding:"omitempty,oneof=none percentage fixed"`
	DiscountValue float64           `json:"discount_value" binding:"min=0"`
	AmountPaid    float64           `json:"amount_paid" binding:"min=0"` // rupees
	PaymentType   string            `json:"payment_type" binding:"omitempty,max=50"`
	SaleDate      *time.Time        `json:"sale_date"`
}

// PreviewSaleRequest mirrors CommitSaleRequest minus payment fields
type PreviewSaleRequest struct {
	CustomerID    *uuid.UUID        `json:"customer_id"`
	CustomerType  string            `json:"customer_type" binding:"omitempty,oneof=individual business"`
	CustomerGSTIN *string           `json:"customer_gstin" binding:"omitempty,max=20"`
	Items         []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
	DiscountType  string            `json:"discount_type" binding:"omitempty,oneof=none percentage fixed"`
	DiscountValue float64           `json:"discount_value" binding:"min=0"`
}

// AddSaleItemsRequest adds lines to a committed sale, optionally with a
// payment collected alongside the amendment
type AddSaleItemsRequest struct {
	Items          []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
	AmountReceived float64           `json:"amount_received" binding:"min=0"` // rupees
	PaymentMethod  string            `json:"payment_method" binding:"omitempty,max=50"`
}

// RecordPaymentRequest appends one payment to a sale's ledger
type RecordPaymentRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"` // rupees
	Method string  `json:"method" binding:"omitempty,max=50"`
}

// CancelSaleRequest voids a sale
type CancelSaleRequest struct {
	Reason       string  `json:"reason" binding:"omitempty,max=500"`
	RefundAmount float64 `json:"refund_amount" binding:"min=0"` // rupees
	RefundMethod *string `json:"refund_method" binding:"omitempty,max=50"`
	RefundNotes  *string `json:"refund_notes" binding:"omitempty,max=500"`
}

// SaleFilterRequest represents sale filter parameters
type SaleFilterRequest struct {
	Search        string `form:"search"`
	CustomerID    string `form:"customer_id"`
	Status        *int   `form:"status"`
	PaymentStatus *int   `form:"payment_status"`
	DateFrom      string `form:"date_from"`
	DateTo        string `form:"date_to"`
	SortBy        string `form:"sort_by"`
	SortOrder     string `form:"sort_order"`
	Page          int    `form:"page"`
	PerPage       int    `form:"per_page"`
}
