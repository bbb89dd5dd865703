package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bakehouse-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Booking represents an advance order (custom cakes, bulk bread orders)
// taken ahead of a delivery date. Fulfilling a booking converts it into
// a regular sale through the normal commit pipeline.
type Booking struct {
	ID            uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	TenantID      uuid.UUID          `gorm:"type:uuid;not null;index" json:"tenant_id"`
	UserID        uuid.UUID          `gorm:"type:uuid;not null;index" json:"user_id"`
	CustomerID    *uuid.UUID         `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	Reference     string             `gorm:"size:100;unique;not null" json:"reference"`
	CustomerName  string             `gorm:"size:255" json:"customer_name"`
	CustomerPhone *string            `gorm:"size:50" json:"customer_phone,omitempty"`
	DeliveryDate  time.Time          `gorm:"not null" json:"delivery_date"`
	Status        enum.BookingStatus `gorm:"default:0" json:"status"`
	AdvancePaid   int64              `gorm:"default:0" json:"-"` // Stored in paise
	Notes         *string            `gorm:"type:text" json:"notes,omitempty"`
	// SaleID links to the sale created at fulfilment
	SaleID    *uuid.UUID     `gorm:"type:uuid;index" json:"sale_id,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Tenant   Tenant        `gorm:"foreignKey:TenantID" json:"-"`
	User     User          `gorm:"foreignKey:UserID" json:"-"`
	Customer *Customer     `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items    []BookingItem `gorm:"foreignKey:BookingID" json:"items,omitempty"`
}

// MarshalJSON custom marshaler to convert paise to decimal for API responses
func (b Booking) MarshalJSON() ([]byte, error) {
	type Alias Booking
	return json.Marshal(&struct {
		Alias
		AdvancePaid float64 `json:"advance_paid"`
	}{
		Alias:       Alias(b),
		AdvancePaid: float64(b.AdvancePaid) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new booking
func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Booking model
func (Booking) TableName() string {
	return "bookings"
}

// IsTerminal reports whether the booking can still change state
func (b *Booking) IsTerminal() bool {
	return b.Status == enum.BookingStatusFulfilled || b.Status == enum.BookingStatusCancelled
}

// BookingItem represents a product line within a booking
type BookingItem struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	BookingID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"booking_id"`
	ProductID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName string         `gorm:"size:255" json:"product_name"`
	Quantity    float64        `gorm:"not null" json:"quantity"`
	Tier        string         `gorm:"size:50" json:"tier,omitempty"`
	UnitPrice   int64          `gorm:"not null" json:"-"` // Stored in paise
	SubTotal    int64          `gorm:"not null" json:"-"` // Stored in paise
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Booking Booking `gorm:"foreignKey:BookingID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// MarshalJSON custom marshaler to convert paise to decimal for API responses
func (bi BookingItem) MarshalJSON() ([]byte, error) {
	type Alias BookingItem
	return json.Marshal(&struct {
		Alias
		UnitPrice float64 `json:"unit_price"`
		SubTotal  float64 `json:"sub_total"`
	}{
		Alias:     Alias(bi),
		UnitPrice: float64(bi.UnitPrice) / 100,
		SubTotal:  float64(bi.SubTotal) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new booking item
func (bi *BookingItem) BeforeCreate(tx *gorm.DB) error {
	if bi.ID == uuid.Nil {
		bi.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the BookingItem model
func (BookingItem) TableName() string {
	return "booking_items"
}
