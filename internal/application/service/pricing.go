package service

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/sangkips/bakehouse-api/internal/domain/entity"
	"github.com/sangkips/bakehouse-api/internal/domain/enum"
	"github.com/sangkips/bakehouse-api/pkg/apperror"
)

// SaleLineInput is one requested product line. Prices are never taken
// from the client; they are resolved server-side from the product and
// its tier table.
type SaleLineInput struct {
	ProductID     uuid.UUID         `json:"product_id"`
	Quantity      float64           `json:"quantity"`
	Tier          string            `json:"tier"`
	DiscountType  enum.DiscountType `json:"discount_type"`
	DiscountValue float64           `json:"discount_value"`
}

// priceLine resolves the unit price and line discount for one input
// against its product. Returns the priced item with tax fields unset.
func priceLine(product *entity.Product, in SaleLineInput) (*entity.SaleItem, error) {
	if in.Quantity <= 0 {
		return nil, apperror.NewBadRequestError(fmt.Sprintf("Quantity for %s must be greater than zero", product.Name))
	}

	unitPrice, ok := product.TierPrice(in.Tier)
	if !ok {
		return nil, apperror.NewBadRequestError(fmt.Sprintf("Unknown price tier %q for %s", in.Tier, product.Name))
	}

	base := int64(math.Round(float64(unitPrice) * in.Quantity))

	discountAmount, err := discountOn(base, in.DiscountType, in.DiscountValue)
	if err != nil {
		return nil, err
	}

	return &entity.SaleItem{
		ProductID:      product.ID,
		ProductName:    product.Name,
		Quantity:       in.Quantity,
		Tier:           in.Tier,
		TrackStock:     product.TrackStock,
		UnitPrice:      unitPrice,
		BaseAmount:     base,
		DiscountType:   in.DiscountType,
		DiscountValue:  in.DiscountValue,
		DiscountAmount: discountAmount,
		Amount:         base - discountAmount,
	}, nil
}

// priceLines validates and prices every input line before anything is
// written. Returns the priced items and the stock decrements for lines
// whose product tracks stock.
func priceLines(products map[uuid.UUID]*entity.Product, inputs []SaleLineInput) ([]entity.SaleItem, map[uuid.UUID]float64, error) {
	if len(inputs) == 0 {
		return nil, nil, apperror.NewBadRequestError("Sale must have at least one item")
	}

	items := make([]entity.SaleItem, 0, len(inputs))
	decrements := make(map[uuid.UUID]float64)

	for _, in := range inputs {
		product, ok := products[in.ProductID]
		if !ok {
			return nil, nil, apperror.NewNotFoundError(fmt.Sprintf("Product %s", in.ProductID))
		}

		item, err := priceLine(product, in)
		if err != nil {
			return nil, nil, err
		}
		items = append(items, *item)

		if product.TrackStock {
			decrements[product.ID] += in.Quantity
		}
	}

	return items, decrements, nil
}
