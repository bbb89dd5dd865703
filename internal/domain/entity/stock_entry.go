package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bakehouse-api/internal/domain/enum"
	"gorm.io/gorm"
)

// StockEntry records a stock movement outside the sales flow:
// production batches going in, damaged/expired goods written off,
// or corrections after a physical recount.
type StockEntry struct {
	ID        uuid.UUID           `gorm:"type:uuid;primary_key" json:"id"`
	TenantID  uuid.UUID           `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ProductID uuid.UUID           `gorm:"type:uuid;not null;index" json:"product_id"`
	UserID    uuid.UUID           `gorm:"type:uuid;not null;index" json:"user_id"`
	Type      enum.StockEntryType `gorm:"default:0" json:"type"`
	Quantity  float64             `gorm:"not null" json:"quantity"`
	Reason    *string             `gorm:"size:100" json:"reason,omitempty"` // damaged, expired, recount
	Notes     *string             `gorm:"type:text" json:"notes,omitempty"`
	EntryDate time.Time           `gorm:"not null" json:"entry_date"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
	DeletedAt gorm.DeletedAt      `gorm:"index" json:"-"`

	// Relationships
	Tenant  Tenant  `gorm:"foreignKey:TenantID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	User    User    `gorm:"foreignKey:UserID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new stock entry
func (e *StockEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the StockEntry model
func (StockEntry) TableName() string {
	return "stock_entries"
}
