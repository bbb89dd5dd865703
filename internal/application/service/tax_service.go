package service

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"time"

	"github.com/sangkips/bakehouse-api/internal/config"
	"github.com/sangkips/bakehouse-api/internal/domain/entity"
	"github.com/sangkips/bakehouse-api/internal/domain/enum"
	"github.com/sangkips/bakehouse-api/internal/domain/repository"
	"github.com/sangkips/bakehouse-api/internal/infrastructure/cache"
	infraRepo "github.com/sangkips/bakehouse-api/internal/infrastructure/repository"
	"github.com/sangkips/bakehouse-api/pkg/apperror"
)

const taxProfileCacheTTL = 10 * time.Minute

// TaxService resolves per-tenant GST configuration and computes tax
// amounts. All money moves through here in paise.
type TaxService struct {
	profileRepo repository.TaxProfileRepository
	cache       cache.Cache
	defaults    config.GSTConfig
}

// NewTaxService creates a new tax service
func NewTaxService(profileRepo repository.TaxProfileRepository, c cache.Cache, defaults config.GSTConfig) *TaxService {
	return &TaxService{
		profileRepo: profileRepo,
		cache:       c,
		defaults:    defaults,
	}
}

// Resolve returns the tenant's tax profile. A missing profile or a failed
// read falls back to the configured defaults so billing never stalls on
// tax configuration.
func (s *TaxService) Resolve(ctx context.Context) *entity.TaxProfile {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return s.fallback()
	}

	cacheKey := "tax_profile:" + tenantID.String()
	var cached entity.TaxProfile
	if hit, err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
		return &cached
	}

	profile, err := s.profileRepo.GetByTenant(ctx, tenantID)
	if err != nil {
		log.Printf("tax profile read failed for tenant %s, using defaults: %v", tenantID, err)
		return s.fallback()
	}
	if profile == nil {
		fb := s.fallback()
		fb.TenantID = tenantID
		return fb
	}

	if err := s.cache.SetJSON(ctx, cacheKey, profile, taxProfileCacheTTL); err != nil {
		log.Printf("tax profile cache write failed: %v", err)
	}
	return profile
}

func (s *TaxService) fallback() *entity.TaxProfile {
	return &entity.TaxProfile{
		EnableGST:      true,
		CGSTRate:       s.defaults.CGSTRate,
		SGSTRate:       s.defaults.SGSTRate,
		IGSTRate:       s.defaults.IGSTRate,
		DefaultHSNCode: s.defaults.DefaultHSNCode,
	}
}

// UpdateProfile stores the tenant's tax profile and drops the cached copy.
func (s *TaxService) UpdateProfile(ctx context.Context, profile *entity.TaxProfile) (*entity.TaxProfile, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}
	profile.TenantID = tenantID

	if profile.CGSTRate < 0 || profile.SGSTRate < 0 || profile.IGSTRate < 0 {
		return nil, apperror.NewBadRequestError("Tax rates cannot be negative")
	}

	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, err
	}

	if err := s.cache.Delete(ctx, "tax_profile:"+tenantID.String()); err != nil {
		log.Printf("tax profile cache invalidation failed: %v", err)
	}
	return profile, nil
}

// Applies reports whether GST is charged on this sale. Only registered
// businesses are invoiced with GST; retail counter sales carry none.
func (s *TaxService) Applies(profile *entity.TaxProfile, customerType enum.CustomerType) bool {
	return profile.EnableGST && customerType == enum.CustomerTypeBusiness
}

// Interstate reports whether the supply crosses state lines. The state is
// the first two GSTIN characters; if either party's GSTIN is absent the
// sale is treated as intra-state.
func (s *TaxService) Interstate(profile *entity.TaxProfile, customerGSTIN string) bool {
	if len(profile.GSTIN) < 2 || len(customerGSTIN) < 2 {
		return false
	}
	return profile.GSTIN[:2] != customerGSTIN[:2]
}

// TaxBreakdown holds per-line or aggregate GST amounts in paise.
// Exactly one of CGST+SGST / IGST is nonzero, never both.
type TaxBreakdown struct {
	CGST int64
	SGST int64
	IGST int64
}

// Total returns the combined GST amount
func (b TaxBreakdown) Total() int64 {
	return b.CGST + b.SGST + b.IGST
}

// CalculateLine computes GST on a single taxable amount, rounding to the
// paisa. Callers sum line breakdowns into bill aggregates; the drift from
// per-line rounding is accepted.
func (s *TaxService) CalculateLine(profile *entity.TaxProfile, amount int64, interstate bool) TaxBreakdown {
	if interstate {
		return TaxBreakdown{IGST: taxOn(amount, profile.IGSTRate, profile.PriceIncludesGST)}
	}
	return TaxBreakdown{
		CGST: taxOn(amount, profile.CGSTRate, profile.PriceIncludesGST),
		SGST: taxOn(amount, profile.SGSTRate, profile.PriceIncludesGST),
	}
}

// taxOn computes tax in paise at rate percent. For inclusive pricing the
// tax is extracted from the amount instead of added on top.
func taxOn(amount int64, rate float64, inclusive bool) int64 {
	if inclusive {
		return int64(math.Round(float64(amount) * rate / (100 + rate)))
	}
	return int64(math.Round(float64(amount) * rate / 100))
}

// TaxPreview is the response of the pure calculate-total operation.
// Money is held in paise and marshalled as rupee decimals, same as Sale.
type TaxPreview struct {
	SubTotal       int64 `json:"-"`
	DiscountAmount int64 `json:"-"`
	TaxableAmount  int64 `json:"-"`
	CGST           int64 `json:"-"`
	SGST           int64 `json:"-"`
	IGST           int64 `json:"-"`
	GSTAmount      int64 `json:"-"`
	Total          int64 `json:"-"`
	HasGST         bool  `json:"has_gst"`
	Interstate     bool  `json:"interstate"`
}

// MarshalJSON custom marshaler to convert paise to decimal for API responses
func (p TaxPreview) MarshalJSON() ([]byte, error) {
	type Alias TaxPreview
	return json.Marshal(&struct {
		Alias
		SubTotal       float64 `json:"subtotal"`
		DiscountAmount float64 `json:"discount_amount"`
		TaxableAmount  float64 `json:"taxable_amount"`
		CGST           float64 `json:"cgst"`
		SGST           float64 `json:"sgst"`
		IGST           float64 `json:"igst"`
		GSTAmount      float64 `json:"gst_amount"`
		Total          float64 `json:"total"`
	}{
		Alias:          Alias(p),
		SubTotal:       float64(p.SubTotal) / 100,
		DiscountAmount: float64(p.DiscountAmount) / 100,
		TaxableAmount:  float64(p.TaxableAmount) / 100,
		CGST:           float64(p.CGST) / 100,
		SGST:           float64(p.SGST) / 100,
		IGST:           float64(p.IGST) / 100,
		GSTAmount:      float64(p.GSTAmount) / 100,
		Total:          float64(p.Total) / 100,
	})
}

// Preview computes a bill total without touching any sale. Same bounds
// rules as commit; calling it twice with the same input gives the same
// output.
func (s *TaxService) Preview(ctx context.Context, subTotal int64, discountType enum.DiscountType, discountValue float64, customerType enum.CustomerType, customerGSTIN string) (*TaxPreview, error) {
	if subTotal < 0 {
		return nil, apperror.NewBadRequestError("Subtotal cannot be negative")
	}

	discountAmount, err := discountOn(subTotal, discountType, discountValue)
	if err != nil {
		return nil, err
	}

	profile := s.Resolve(ctx)
	taxable := subTotal - discountAmount

	preview := &TaxPreview{
		SubTotal:       subTotal,
		DiscountAmount: discountAmount,
		TaxableAmount:  taxable,
		Total:          taxable,
	}

	if !s.Applies(profile, customerType) {
		return preview, nil
	}

	interstate := s.Interstate(profile, customerGSTIN)
	breakdown := s.CalculateLine(profile, taxable, interstate)

	preview.CGST = breakdown.CGST
	preview.SGST = breakdown.SGST
	preview.IGST = breakdown.IGST
	preview.GSTAmount = breakdown.Total()
	preview.HasGST = true
	preview.Interstate = interstate
	if !profile.PriceIncludesGST {
		preview.Total = taxable + preview.GSTAmount
	}
	return preview, nil
}

// discountOn validates discount bounds and returns the amount in paise.
// Percentage must be within [0,100]; fixed within [0, base].
func discountOn(base int64, discountType enum.DiscountType, value float64) (int64, error) {
	switch discountType {
	case enum.DiscountTypeNone:
		return 0, nil
	case enum.DiscountTypePercentage:
		if value < 0 || value > 100 {
			return 0, apperror.NewBadRequestError("Percentage discount must be between 0 and 100")
		}
		return int64(math.Round(float64(base) * value / 100)), nil
	case enum.DiscountTypeFixed:
		paise := int64(math.Round(value * 100))
		if paise < 0 || paise > base {
			return 0, apperror.NewBadRequestError("Fixed discount cannot exceed the amount")
		}
		return paise, nil
	default:
		return 0, apperror.NewBadRequestError("Unknown discount type")
	}
}
