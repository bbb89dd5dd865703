package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bakehouse-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Sale represents a committed point-of-sale bill
type Sale struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	TenantID   uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_sales_tenant_bill" json:"tenant_id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"` // cashier
	CustomerID *uuid.UUID `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	// BillNo is sequential per tenant, allocated from bill_sequences at commit
	BillNo   int64           `gorm:"not null;uniqueIndex:idx_sales_tenant_bill" json:"bill_no"`
	SaleDate time.Time       `gorm:"not null" json:"sale_date"`
	Status   enum.SaleStatus `gorm:"default:0" json:"status"`

	// Customer snapshot; prices and identity are copied at sale time, never live-linked
	CustomerName    string            `gorm:"size:255" json:"customer_name"`
	CustomerPhone   *string           `gorm:"size:50" json:"customer_phone,omitempty"`
	CustomerAddress *string           `gorm:"type:text" json:"customer_address,omitempty"`
	CustomerType    enum.CustomerType `gorm:"default:0" json:"customer_type"`
	CustomerGSTIN   *string           `gorm:"size:20" json:"customer_gstin,omitempty"`
	Interstate      bool              `gorm:"default:false" json:"interstate"`

	SubTotal       int64             `gorm:"default:0" json:"-"` // Stored in paise, after line discounts
	DiscountType   enum.DiscountType `gorm:"default:0" json:"discount_type"`
	DiscountValue  float64           `gorm:"default:0" json:"discount_value"`
	DiscountAmount int64             `gorm:"default:0" json:"-"` // Stored in paise
	TaxableAmount  int64             `gorm:"default:0" json:"-"` // Stored in paise
	CGST           int64             `gorm:"default:0" json:"-"` // Stored in paise
	SGST           int64             `gorm:"default:0" json:"-"` // Stored in paise
	IGST           int64             `gorm:"default:0" json:"-"` // Stored in paise
	GSTAmount      int64             `gorm:"default:0" json:"-"` // Stored in paise
	Total          int64             `gorm:"default:0" json:"-"` // Stored in paise
	Paid           int64             `gorm:"default:0" json:"-"` // Stored in paise, derived from Payments
	Due            int64             `gorm:"default:0" json:"-"` // Stored in paise, derived
	PaymentStatus  enum.PaymentStatus `gorm:"default:0" json:"payment_status"`
	PaymentType    string            `gorm:"size:50" json:"payment_type"`

	// Cancellation metadata
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancelledByID      *uuid.UUID `gorm:"type:uuid;column:cancelled_by" json:"cancelled_by,omitempty"`
	CancellationReason *string    `gorm:"type:text" json:"cancellation_reason,omitempty"`
	RefundAmount       int64      `gorm:"default:0" json:"-"` // Stored in paise
	RefundMethod       *string    `gorm:"size:50" json:"refund_method,omitempty"`
	RefundNotes        *string    `gorm:"type:text" json:"refund_notes,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Tenant   Tenant         `gorm:"foreignKey:TenantID" json:"-"`
	User     User           `gorm:"foreignKey:UserID" json:"-"`
	Customer *Customer      `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items    []SaleItem     `gorm:"foreignKey:SaleID" json:"items,omitempty"`
	Payments []PaymentEntry `gorm:"foreignKey:SaleID" json:"payments,omitempty"`
}

// MarshalJSON custom marshaler to convert paise to decimal for API responses
func (s Sale) MarshalJSON() ([]byte, error) {
	type Alias Sale
	return json.Marshal(&struct {
		Alias
		SubTotal       float64 `json:"sub_total"`
		DiscountAmount float64 `json:"discount_amount"`
		TaxableAmount  float64 `json:"taxable_amount"`
		CGST           float64 `json:"cgst"`
		SGST           float64 `json:"sgst"`
		IGST           float64 `json:"igst"`
		GSTAmount      float64 `json:"gst_amount"`
		Total          float64 `json:"total"`
		Paid           float64 `json:"paid"`
		Due            float64 `json:"due"`
		RefundAmount   float64 `json:"refund_amount"`
	}{
		Alias:          Alias(s),
		SubTotal:       float64(s.SubTotal) / 100,
		DiscountAmount: float64(s.DiscountAmount) / 100,
		TaxableAmount:  float64(s.TaxableAmount) / 100,
		CGST:           float64(s.CGST) / 100,
		SGST:           float64(s.SGST) / 100,
		IGST:           float64(s.IGST) / 100,
		GSTAmount:      float64(s.GSTAmount) / 100,
		Total:          float64(s.Total) / 100,
		Paid:           float64(s.Paid) / 100,
		Due:            float64(s.Due) / 100,
		RefundAmount:   float64(s.RefundAmount) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new sale
func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Sale model
func (Sale) TableName() string {
	return "sales"
}

// IsCancelled reports whether the sale has been cancelled
func (s *Sale) IsCancelled() bool {
	return s.Status == enum.SaleStatusCancelled
}

// ApplyPayments recomputes Paid, Due and PaymentStatus from the payment ledger.
// The ledger is the source of truth; the three fields are cached derivations.
func (s *Sale) ApplyPayments() {
	var paid int64
	for _, p := range s.Payments {
		paid += p.Amount
	}
	s.Paid = paid
	s.Due = s.Total - paid
	if s.Due < 0 {
		s.Due = 0
	}
	s.PaymentStatus = enum.DerivePaymentStatus(s.Paid, s.Due)
}

// GetTotalDecimal returns the total in rupees
func (s *Sale) GetTotalDecimal() float64 {
	return float64(s.Total) / 100
}

// SaleItem represents one product line within a sale
type SaleItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	SaleID      uuid.UUID `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName string    `gorm:"size:255" json:"product_name"`
	Quantity    float64   `gorm:"not null" json:"quantity"`
	Tier        string    `gorm:"size:50" json:"tier,omitempty"`
	// TrackStock is copied from the product at sale time so cancellation
	// can see what commit saw. No column default, same as Product.TrackStock.
	TrackStock     bool              `gorm:"not null" json:"track_stock"`
	UnitPrice      int64             `gorm:"not null" json:"-"` // Stored in paise
	BaseAmount     int64             `gorm:"not null" json:"-"` // Stored in paise, price x qty
	DiscountType   enum.DiscountType `gorm:"default:0" json:"discount_type"`
	DiscountValue  float64           `gorm:"default:0" json:"discount_value"`
	DiscountAmount int64             `gorm:"default:0" json:"-"` // Stored in paise
	Amount         int64             `gorm:"not null" json:"-"`  // Stored in paise, taxable line amount
	CGST           int64             `gorm:"default:0" json:"-"` // Stored in paise
	SGST           int64             `gorm:"default:0" json:"-"` // Stored in paise
	IGST           int64             `gorm:"default:0" json:"-"` // Stored in paise
	Total          int64             `gorm:"not null" json:"-"`  // Stored in paise
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	DeletedAt      gorm.DeletedAt    `gorm:"index" json:"-"`

	// Relationships
	Sale    Sale    `gorm:"foreignKey:SaleID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// MarshalJSON custom marshaler to convert paise to decimal for API responses
func (si SaleItem) MarshalJSON() ([]byte, error) {
	type Alias SaleItem
	return json.Marshal(&struct {
		Alias
		UnitPrice      float64 `json:"unit_price"`
		BaseAmount     float64 `json:"base_amount"`
		DiscountAmount float64 `json:"discount_amount"`
		Amount         float64 `json:"amount"`
		CGST           float64 `json:"cgst"`
		SGST           float64 `json:"sgst"`
		IGST           float64 `json:"igst"`
		Total          float64 `json:"total"`
	}{
		Alias:          Alias(si),
		UnitPrice:      float64(si.UnitPrice) / 100,
		BaseAmount:     float64(si.BaseAmount) / 100,
		DiscountAmount: float64(si.DiscountAmount) / 100,
		Amount:         float64(si.Amount) / 100,
		CGST:           float64(si.CGST) / 100,
		SGST:           float64(si.SGST) / 100,
		IGST:           float64(si.IGST) / 100,
		Total:          float64(si.Total) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new sale item
func (si *SaleItem) BeforeCreate(tx *gorm.DB) error {
	if si.ID == uuid.Nil {
		si.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the SaleItem model
func (SaleItem) TableName() string {
	return "sale_items"
}

// PaymentEntry is one append-only row in a sale's payment ledger.
// Entries are never reordered or mutated after insert.
type PaymentEntry struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	SaleID       uuid.UUID `gorm:"type:uuid;not null;index" json:"sale_id"`
	Amount       int64     `gorm:"not null" json:"-"` // Stored in paise
	Method       string    `gorm:"size:50" json:"method"`
	ReceivedByID uuid.UUID `gorm:"type:uuid;column:received_by" json:"received_by"`
	ReceivedBy   string    `gorm:"size:255;column:received_by_name" json:"received_by_name"`
	CreatedAt    time.Time `json:"created_at"`

	// Relationships
	Sale Sale `gorm:"foreignKey:SaleID" json:"-"`
}

// MarshalJSON custom marshaler to convert paise to decimal for API responses
func (p PaymentEntry) MarshalJSON() ([]byte, error) {
	type Alias PaymentEntry
	return json.Marshal(&struct {
		Alias
		Amount float64 `json:"amount"`
	}{
		Alias:  Alias(p),
		Amount: float64(p.Amount) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new payment entry
func (p *PaymentEntry) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the PaymentEntry model
func (PaymentEntry) TableName() string {
	return "payment_entries"
}

// BillSequence holds the per-tenant bill number counter.
// Incremented inside the sale commit transaction.
type BillSequence struct {
	TenantID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"tenant_id"`
	LastNo    int64     `gorm:"default:0" json:"last_no"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for the BillSequence model
func (BillSequence) TableName() string {
	return "bill_sequences"
}
