package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/bakehouse-api/internal/config"
	"github.com/sangkips/bakehouse-api/internal/domain/entity"
	"github.com/sangkips/bakehouse-api/internal/domain/enum"
	"github.com/sangkips/bakehouse-api/internal/infrastructure/cache"
	infraRepo "github.com/sangkips/bakehouse-api/internal/infrastructure/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTaxService(t *testing.T) (*TaxService, context.Context) {
	t.Helper()

	db := newTestDB(t)
	svc := NewTaxService(
		infraRepo.NewTaxProfileRepository(db),
		cache.NewNoopCache(),
		config.GSTConfig{CGSTRate: 2.5, SGSTRate: 2.5, IGSTRate: 5, DefaultHSNCode: "1905"},
	)
	ctx := infraRepo.WithTenant(context.Background(), uuid.New())
	return svc, ctx
}

func TestResolve_FallsBackToDefaults(t *testing.T) {
	svc, ctx := newTaxService(t)

	profile := svc.Resolve(ctx)
	assert.True(t, profile.EnableGST)
	assert.Equal(t, 2.5, profile.CGSTRate)
	assert.Equal(t, 2.5, profile.SGSTRate)
	assert.Equal(t, 5.0, profile.IGSTRate)
	assert.Equal(t, "1905", profile.DefaultHSNCode)

	// No tenant in context still yields a usable profile
	profile = svc.Resolve(context.Background())
	assert.True(t, profile.EnableGST)
}

func TestUpdateProfile_RoundTrip(t *testing.T) {
	svc, ctx := newTaxService(t)

	stored, err := svc.UpdateProfile(ctx, &entity.TaxProfile{
		GSTIN:            "29AAACB1234F1Z5",
		EnableGST:        true,
		PriceIncludesGST: true,
		CGSTRate:         9,
		SGSTRate:         9,
		IGSTRate:         18,
		DefaultHSNCode:   "2105",
	})
	require.NoError(t, err)
	assert.Equal(t, "29", stored.StateCode)

	resolved := svc.Resolve(ctx)
	assert.Equal(t, "29AAACB1234F1Z5", resolved.GSTIN)
	assert.True(t, resolved.PriceIncludesGST)
	assert.Equal(t, 9.0, resolved.CGSTRate)
	assert.Equal(t, 18.0, resolved.IGSTRate)
	assert.Equal(t, "2105", resolved.DefaultHSNCode)
}

func TestUpdateProfile_RejectsNegativeRates(t *testing.T) {
	svc, ctx := newTaxService(t)

	_, err := svc.UpdateProfile(ctx, &entity.TaxProfile{CGSTRate: -1})
	assertAppError(t, err, http.StatusBadRequest, "Tax rates cannot be negative")
}

func TestApplies(t *testing.T) {
	svc, _ := newTaxService(t)
	enabled := &entity.TaxProfile{EnableGST: true}
	disabled := &entity.TaxProfile{EnableGST: false}

	assert.True(t, svc.Applies(enabled, enum.CustomerTypeBusiness))
	assert.False(t, svc.Applies(enabled, enum.CustomerTypeIndividual))
	assert.False(t, svc.Applies(disabled, enum.CustomerTypeBusiness))
}

func TestInterstate(t *testing.T) {
	svc, _ := newTaxService(t)
	profile := &entity.TaxProfile{GSTIN: "29AAACB1234F1Z5"}

	assert.False(t, svc.Interstate(profile, "29ZZACB9876F1Z2"))
	assert.True(t, svc.Interstate(profile, "27AAACB1234F1Z5"))
	assert.False(t, svc.Interstate(profile, ""))
	assert.False(t, svc.Interstate(&entity.TaxProfile{}, "27AAACB1234F1Z5"))
}

func TestCalculateLine(t *testing.T) {
	svc, _ := newTaxService(t)
	profile := &entity.TaxProfile{CGSTRate: 2.5, SGSTRate: 2.5, IGSTRate: 5}

	intra := svc.CalculateLine(profile, 20000, false)
	assert.Equal(t, TaxBreakdown{CGST: 500, SGST: 500}, intra)
	assert.Equal(t, int64(1000), intra.Total())

	inter := svc.CalculateLine(profile, 20000, true)
	assert.Equal(t, TaxBreakdown{IGST: 1000}, inter)

	// Sub-paisa amounts round half away from zero
	odd := svc.CalculateLine(profile, 4500, false)
	assert.Equal(t, TaxBreakdown{CGST: 113, SGST: 113}, odd)
}

func TestCalculateLine_InclusivePricingExtractsTax(t *testing.T) {
	svc, _ := newTaxService(t)
	profile := &entity.TaxProfile{IGSTRate: 5, PriceIncludesGST: true}

	// 10500 inclusive of 5% carries 500 of tax
	breakdown := svc.CalculateLine(profile, 10500, true)
	assert.Equal(t, int64(500), breakdown.IGST)
}

func TestPreview_BusinessExclusive(t *testing.T) {
	svc, ctx := newTaxService(t)

	preview, err := svc.Preview(ctx, 10000, enum.DiscountTypeNone, 0, enum.CustomerTypeBusiness, "")
	require.NoError(t, err)
	assert.True(t, preview.HasGST)
	assert.False(t, preview.Interstate)
	assert.Equal(t, int64(250), preview.CGST)
	assert.Equal(t, int64(250), preview.SGST)
	assert.Equal(t, int64(10500), preview.Total)

	again, err := svc.Preview(ctx, 10000, enum.DiscountTypeNone, 0, enum.CustomerTypeBusiness, "")
	require.NoError(t, err)
	assert.Equal(t, preview, again)
}

func TestPreview_IndividualCarriesNoGST(t *testing.T) {
	svc, ctx := newTaxService(t)

	preview, err := svc.Preview(ctx, 10000, enum.DiscountTypeNone, 0, enum.CustomerTypeIndividual, "")
	require.NoError(t, err)
	assert.False(t, preview.HasGST)
	assert.Equal(t, int64(0), preview.GSTAmount)
	assert.Equal(t, int64(10000), preview.Total)
}

func TestPreview_DiscountBounds(t *testing.T) {
	svc, ctx := newTaxService(t)

	_, err := svc.Preview(ctx, 10000, enum.DiscountTypePercentage, 150, enum.CustomerTypeIndividual, "")
	assertAppError(t, err, http.StatusBadRequest, "Percentage discount must be between 0 and 100")

	_, err = svc.Preview(ctx, 10000, enum.DiscountTypeFixed, 150, enum.CustomerTypeIndividual, "")
	assertAppError(t, err, http.StatusBadRequest, "Fixed discount cannot exceed the amount")

	_, err = svc.Preview(ctx, -1, enum.DiscountTypeNone, 0, enum.CustomerTypeIndividual, "")
	assertAppError(t, err, http.StatusBadRequest, "Subtotal cannot be negative")
}

func TestDiscountOn(t *testing.T) {
	tests := []struct {
		name         string
		base         int64
		discountType enum.DiscountType
		value        float64
		want         int64
		wantErr      bool
	}{
		{"none", 18000, enum.DiscountTypeNone, 50, 0, false},
		{"percentage", 18000, enum.DiscountTypePercentage, 10, 1800, false},
		{"percentage rounds", 9999, enum.DiscountTypePercentage, 5, 500, false},
		{"percentage over 100", 18000, enum.DiscountTypePercentage, 101, 0, true},
		{"percentage negative", 18000, enum.DiscountTypePercentage, -1, 0, true},
		{"fixed in rupees", 18000, enum.DiscountTypeFixed, 20, 2000, false},
		{"fixed exceeds base", 18000, enum.DiscountTypeFixed, 190, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := discountOn(tt.base, tt.discountType, tt.value)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
