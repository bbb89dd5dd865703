package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bakehouse-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Customer represents a regular or business customer of the bakery
type Customer struct {
	ID        uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	TenantID  uuid.UUID         `gorm:"type:uuid;not null;index" json:"tenant_id"`
	UserID    uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	Name      string            `gorm:"size:255;not null" json:"name"`
	Phone     *string           `gorm:"size:50" json:"phone,omitempty"`
	Email     *string           `gorm:"size:255" json:"email,omitempty"`
	Address   *string           `gorm:"type:text" json:"address,omitempty"`
	Type      enum.CustomerType `gorm:"default:0" json:"type"`
	GSTIN     *string           `gorm:"size:20" json:"gstin,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	DeletedAt gorm.DeletedAt    `gorm:"index" json:"-"`

	// Relationships
	Tenant   Tenant    `gorm:"foreignKey:TenantID" json:"-"`
	User     User      `gorm:"foreignKey:UserID" json:"-"`
	Sales    []Sale    `gorm:"foreignKey:CustomerID" json:"-"`
	Bookings []Booking `gorm:"foreignKey:CustomerID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new customer
func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}
