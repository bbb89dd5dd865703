package service

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/bakehouse-api/internal/domain/entity"
	"github.com/sangkips/bakehouse-api/internal/domain/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProduct(name string, price int64, trackStock bool, tiers ...entity.PriceTier) *entity.Product {
	return &entity.Product{
		ID:           uuid.New(),
		Name:         name,
		SellingPrice: price,
		TrackStock:   trackStock,
		Tiers:        tiers,
	}
}

func TestPriceLine_BasePrice(t *testing.T) {
	bread := testProduct("Sourdough", 9000, true)

	item, err := priceLine(bread, SaleLineInput{ProductID: bread.ID, Quantity: 2})
	require.NoError(t, err)

	assert.Equal(t, int64(9000), item.UnitPrice)
	assert.Equal(t, int64(18000), item.BaseAmount)
	assert.Equal(t, int64(18000), item.Amount)
	assert.Equal(t, "Sourdough", item.ProductName)
	assert.True(t, item.TrackStock)
}

func TestPriceLine_FractionalQuantityRounds(t *testing.T) {
	loose := testProduct("Loose Biscuits", 3333, true)

	item, err := priceLine(loose, SaleLineInput{ProductID: loose.ID, Quantity: 0.5})
	require.NoError(t, err)
	assert.Equal(t, int64(1667), item.BaseAmount)
}

func TestPriceLine_TierLookup(t *testing.T) {
	cake := testProduct("Plum Cake", 50000, true,
		entity.PriceTier{Code: "half", Price: 30000},
		entity.PriceTier{Code: "slice", Price: 8000},
	)

	item, err := priceLine(cake, SaleLineInput{ProductID: cake.ID, Quantity: 1, Tier: "slice"})
	require.NoError(t, err)
	assert.Equal(t, int64(8000), item.UnitPrice)
	assert.Equal(t, "slice", item.Tier)

	// Empty tier resolves to the base selling price
	item, err = priceLine(cake, SaleLineInput{ProductID: cake.ID, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(50000), item.UnitPrice)

	_, err = priceLine(cake, SaleLineInput{ProductID: cake.ID, Quantity: 1, Tier: "mini"})
	assertAppError(t, err, http.StatusBadRequest, `Unknown price tier "mini" for Plum Cake`)
}

func TestPriceLine_RejectsNonPositiveQuantity(t *testing.T) {
	bread := testProduct("Sourdough", 9000, true)

	_, err := priceLine(bread, SaleLineInput{ProductID: bread.ID, Quantity: 0})
	assertAppError(t, err, http.StatusBadRequest, "Quantity for Sourdough must be greater than zero")

	_, err = priceLine(bread, SaleLineInput{ProductID: bread.ID, Quantity: -1})
	assertAppError(t, err, http.StatusBadRequest, "Quantity for Sourdough must be greater than zero")
}

func TestPriceLine_LineDiscounts(t *testing.T) {
	bread := testProduct("Sourdough", 9000, true)

	item, err := priceLine(bread, SaleLineInput{
		ProductID:     bread.ID,
		Quantity:      2,
		DiscountType:  enum.DiscountTypePercentage,
		DiscountValue: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1800), item.DiscountAmount)
	assert.Equal(t, int64(16200), item.Amount)

	item, err = priceLine(bread, SaleLineInput{
		ProductID:     bread.ID,
		Quantity:      2,
		DiscountType:  enum.DiscountTypeFixed,
		DiscountValue: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3000), item.DiscountAmount)
	assert.Equal(t, int64(15000), item.Amount)

	_, err = priceLine(bread, SaleLineInput{
		ProductID:     bread.ID,
		Quantity:      1,
		DiscountType:  enum.DiscountTypeFixed,
		DiscountValue: 100,
	})
	assertAppError(t, err, http.StatusBadRequest, "Fixed discount cannot exceed the amount")
}

func TestPriceLines_DecrementsOnlyTrackedStock(t *testing.T) {
	bread := testProduct("Sourdough", 9000, true)
	custom := testProduct("Custom Cake", 150000, false)
	products := map[uuid.UUID]*entity.Product{bread.ID: bread, custom.ID: custom}

	items, decrements, err := priceLines(products, []SaleLineInput{
		{ProductID: bread.ID, Quantity: 2},
		{ProductID: custom.ID, Quantity: 1},
		{ProductID: bread.ID, Quantity: 1},
	})
	require.NoError(t, err)

	assert.Len(t, items, 3)
	// Duplicate lines for the same product accumulate one decrement
	assert.Equal(t, map[uuid.UUID]float64{bread.ID: 3}, decrements)
}

func TestPriceLines_EmptyInput(t *testing.T) {
	_, _, err := priceLines(map[uuid.UUID]*entity.Product{}, nil)
	assertAppError(t, err, http.StatusBadRequest, "Sale must have at least one item")
}

func TestPriceLines_UnknownProduct(t *testing.T) {
	missing := uuid.New()
	_, _, err := priceLines(map[uuid.UUID]*entity.Product{}, []SaleLineInput{
		{ProductID: missing, Quantity: 1},
	})
	assertAppError(t, err, http.StatusNotFound, "not found")
}
