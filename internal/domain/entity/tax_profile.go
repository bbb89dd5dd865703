package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Default GST rates for bakery goods (HSN 1905)
const (
	DefaultCGSTRate = 2.5
	DefaultSGSTRate = 2.5
	DefaultIGSTRate = 5.0
	DefaultHSNCode  = "1905"
)

// TaxProfile holds a merchant's GST configuration, one row per tenant.
// Read on every sale commit and preview; updated through the settings endpoints.
type TaxProfile struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"tenant_id"`
	GSTIN    string    `gorm:"size:20" json:"gstin"`
	// StateCode is the jurisdiction, always the first two GSTIN characters
	StateCode        string         `gorm:"size:2" json:"state_code"`
	EnableGST        bool           `gorm:"default:true" json:"enable_gst"`
	PriceIncludesGST bool           `gorm:"default:false" json:"price_includes_gst"`
	CGSTRate         float64        `gorm:"type:decimal(5,2);default:2.5" json:"cgst_rate"`
	SGSTRate         float64        `gorm:"type:decimal(5,2);default:2.5" json:"sgst_rate"`
	IGSTRate         float64        `gorm:"type:decimal(5,2);default:5" json:"igst_rate"`
	DefaultHSNCode   string         `gorm:"size:20;default:'1905'" json:"default_hsn_code"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Tenant Tenant `gorm:"foreignKey:TenantID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new tax profile
func (t *TaxProfile) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// BeforeSave keeps the state code in sync with the GSTIN
func (t *TaxProfile) BeforeSave(tx *gorm.DB) error {
	if len(t.GSTIN) >= 2 {
		t.StateCode = t.GSTIN[:2]
	}
	return nil
}

// TableName returns the table name for the TaxProfile model
func (TaxProfile) TableName() string {
	return "tax_profiles"
}

// DefaultTaxProfile returns the fallback configuration used when a tenant
// has no stored profile or the read fails.
func DefaultTaxProfile(tenantID uuid.UUID) *TaxProfile {
	return &TaxProfile{
		TenantID:       tenantID,
		EnableGST:      true,
		CGSTRate:       DefaultCGSTRate,
		SGSTRate:       DefaultSGSTRate,
		IGSTRate:       DefaultIGSTRate,
		DefaultHSNCode: DefaultHSNCode,
	}
}
