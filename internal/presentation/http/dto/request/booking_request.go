package request

import (
	"time"

	"github.com/google/uuid"
)

// BookingItemRequest represents one product line in a booking request
type BookingItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  float64   `json:"quantity" binding:"required,gt=0"`
	Tier      string    `json:"tier" binding:"omitempty,max=50"`
}

// CreateBookingRequest represents a booking creation request
type CreateBookingRequest struct {
	CustomerID    *uuid.UUID           `json:"customer_id"`
	CustomerName  string               `json:"customer_name" binding:"omitempty,max=255"`
	CustomerPhone *string              `json:"customer_phone" binding:"omitempty,max=50"`
	DeliveryDate  time.Time            `json:"delivery_date" binding:"required"`
	Items         []BookingItemRequest `json:"items" binding:"required,min=1,dive"`
	AdvancePaid   float64              `json:"advance_paid" binding:"min=0"` // rupees
	Notes         *string              `json:"notes" binding:"omitempty,max=500"`
}

// FulfilBookingRequest converts a booking into a sale
type FulfilBookingRequest struct {
	AmountPaid  float64 `json:"amount_paid" binding:"min=0"` // rupees, on top of the advance
	PaymentType string  `json:"payment_type" binding:"omitempty,max=50"`
}

// BookingFilterRequest represents booking filter parameters
type BookingFilterRequest struct {
	Search       string `form:"search"`
	CustomerID   string `form:"customer_id"`
	Status       *int   `form:"status"`
	DeliveryFrom string `form:"delivery_from"`
	DeliveryTo   string `form:"delivery_to"`
	Page         int    `form:"page"`
	PerPage      int    `form:"per_page"`
}
