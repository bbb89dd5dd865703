package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExpiryWarningDays is how far ahead a product counts as "expiring soon".
const ExpiryWarningDays = 30

// Product represents a bakery item in the inventory
type Product struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	TenantID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"tenant_id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"` // staff member who added it
	CategoryID   *uuid.UUID `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Name         string     `gorm:"size:255;not null" json:"name"`
	Slug         string     `gorm:"size:255;unique;not null" json:"slug"`
	Code         string     `gorm:"size:100;unique;not null" json:"code"`
	Unit         string     `gorm:"size:50;default:'piece'" json:"unit"` // piece, kg, dozen
	Stock        float64    `gorm:"default:0" json:"stock"`
	// TrackStock is false for made-to-order items; their stock is never
	// touched. No default tag: gorm drops zero-valued fields that carry one,
	// which would persist untracked products as tracked.
	TrackStock   bool       `gorm:"not null" json:"track_stock"`
	ReorderLevel float64    `gorm:"default:0" json:"reorder_level"`
	SellingPrice int64      `gorm:"default:0" json:"-"` // Stored in paise
	HSNCode      string     `gorm:"size:20" json:"hsn_code"`
	ExpiryDate   *time.Time `gorm:"type:date" json:"expiry_date,omitempty"`
	// ExpiringSoon is derived from ExpiryDate; recomputed in BeforeSave
	ExpiringSoon bool           `gorm:"default:false" json:"expiring_soon"`
	Notes        *string        `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Tenant   Tenant      `gorm:"foreignKey:TenantID" json:"-"`
	User     User        `gorm:"foreignKey:UserID" json:"-"`
	Category *Category   `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Tiers    []PriceTier `gorm:"foreignKey:ProductID" json:"tiers,omitempty"`
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// BeforeSave refreshes the derived expiry flag on every write
func (p *Product) BeforeSave(tx *gorm.DB) error {
	p.ExpiringSoon = p.IsExpiringSoon(time.Now())
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// IsExpiringSoon reports whether the product expires within the warning window.
// Already-expired products are not "expiring soon".
func (p *Product) IsExpiringSoon(now time.Time) bool {
	if p.ExpiryDate == nil {
		return false
	}
	days := int(p.ExpiryDate.Sub(now).Hours() / 24)
	return days >= 0 && days <= ExpiryWarningDays
}

// TierPrice looks up the price for an enumerated tier code (e.g. "half", "full").
// An empty code resolves to the base selling price.
func (p *Product) TierPrice(code string) (int64, bool) {
	if code == "" {
		return p.SellingPrice, true
	}
	for _, t := range p.Tiers {
		if t.Code == code {
			return t.Price, true
		}
	}
	return 0, false
}

// GetSellingPriceDecimal returns the selling price in rupees (for display)
func (p *Product) GetSellingPriceDecimal() float64 {
	return float64(p.SellingPrice) / 100
}

// SetSellingPriceFromDecimal sets the selling price from a rupee value
func (p *Product) SetSellingPriceFromDecimal(price float64) {
	p.SellingPrice = int64(price*100 + 0.5)
}

// MarshalJSON converts Product to JSON with decimal prices
func (p Product) MarshalJSON() ([]byte, error) {
	type Alias Product
	return json.Marshal(&struct {
		Alias
		SellingPrice float64 `json:"selling_price"`
	}{
		Alias:        Alias(p),
		SellingPrice: p.GetSellingPriceDecimal(),
	})
}

// PriceTier is a precomputed alternate unit price selectable only by its code.
// Example tiers for a cake: "half" (500g), "full" (1kg), "piece" (per slice).
type PriceTier struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_price_tiers_product_code" json:"product_id"`
	Code      string    `gorm:"size:50;not null;uniqueIndex:idx_price_tiers_product_code" json:"code"`
	Label     string    `gorm:"size:100" json:"label"`
	Price     int64     `gorm:"not null" json:"-"` // Stored in paise
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Product Product `gorm:"foreignKey:ProductID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new price tier
func (t *PriceTier) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the PriceTier model
func (PriceTier) TableName() string {
	return "price_tiers"
}

// MarshalJSON converts PriceTier to JSON with a decimal price
func (t PriceTier) MarshalJSON() ([]byte, error) {
	type Alias PriceTier
	return json.Marshal(&struct {
		Alias
		Price float64 `json:"price"`
	}{
		Alias: Alias(t),
		Price: float64(t.Price) / 100,
	})
}

// Category represents a product category (breads, cakes, snacks...)
type Category struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	TenantID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"tenant_id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Slug      string         `gorm:"size:255;unique;not null" json:"slug"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Tenant   Tenant    `gorm:"foreignKey:TenantID" json:"-"`
	User     User      `gorm:"foreignKey:UserID" json:"-"`
	Products []Product `gorm:"foreignKey:CategoryID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new category
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Category model
func (Category) TableName() string {
	return "categories"
}
