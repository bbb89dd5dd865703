package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bakehouse-api/internal/domain/entity"
	"github.com/sangkips/bakehouse-api/internal/domain/repository"
	infraRepo "github.com/sangkips/bakehouse-api/internal/infrastructure/repository"
	"github.com/sangkips/bakehouse-api/pkg/apperror"
	"github.com/sangkips/bakehouse-api/pkg/pagination"
	"github.com/sangkips/bakehouse-api/pkg/utils"
)

// ProductService handles catalog operations
type ProductService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewProductService creates a new product service
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

// PriceTierInput is one named alternate price for a product
type PriceTierInput struct {
	Code  string  `json:"code"`
	Label string  `json:"label"`
	Price float64 `json:"price"` // rupees
}

// CreateProductInput represents the create product input
type CreateProductInput struct {
	UserID       uuid.UUID
	CategoryID   *uuid.UUID
	Name         string
	Code         string
	Unit         string
	Stock        float64
	TrackStock   *bool
	ReorderLevel float64
	SellingPrice float64 // rupees
	HSNCode      string
	ExpiryDate   *time.Time
	Tiers        []PriceTierInput
	Notes        *string
}

// CreateProduct creates a new product
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*entity.Product, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}

	code := input.Code
	if code == "" {
		code = utils.GenerateProductCode()
	}

	existingProduct, err := s.productRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if existingProduct != nil {
		return nil, apperror.NewConflictError("Product code already exists")
	}

	if err := validateTiers(input.Tiers); err != nil {
		return nil, err
	}

	product := &entity.Product{
		TenantID:     tenantID,
		UserID:       input.UserID,
		CategoryID:   input.CategoryID,
		Name:         input.Name,
		Slug:         utils.Slugify(input.Name),
		Code:         code,
		Unit:         input.Unit,
		Stock:        input.Stock,
		TrackStock:   true,
		ReorderLevel: input.ReorderLevel,
		HSNCode:      input.HSNCode,
		ExpiryDate:   input.ExpiryDate,
		Notes:        input.Notes,
	}
	if input.TrackStock != nil {
		product.TrackStock = *input.TrackStock
	}
	product.SetSellingPriceFromDecimal(input.SellingPrice)
	product.Tiers = tierEntities(input.Tiers)

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return s.productRepo.GetByID(ctx, product.ID)
}

// GetProduct retrieves a product by slug
func (s *ProductService) GetProduct(ctx context.Context, slug string) (*entity.Product, error) {
	product, err := s.productRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// GetProductByID retrieves a product by ID
func (s *ProductService) GetProductByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// ListProducts lists products with filtering
func (s *ProductService) ListProducts(ctx context.Context, userID uuid.UUID, params *repository.ProductFilterParams) (*pagination.PaginatedResult[entity.Product], error) {
	products, total, err := s.productRepo.List(ctx, userID, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(products, pag), nil
}

// UpdateProductInput represents the update product input
type UpdateProductInput struct {
	UserID        uuid.UUID
	ProductSlug   string
	SkipUserCheck bool // If true (super-admin), skip ownership check
	CategoryID    *uuid.UUID
	Name          *string
	Code          *string
	Unit          *string
	TrackStock    *bool
	ReorderLevel  *float64
	SellingPrice  *float64 // rupees
	HSNCode       *string
	ExpiryDate    *time.Time
	Tiers         *[]PriceTierInput
	Notes         *string
}

// UpdateProduct updates a product. Stock itself is never edited here;
// it moves only through sales and stock entries.
func (s *ProductService) UpdateProduct(ctx context.Context, input *UpdateProductInput) (*entity.Product, error) {
	product, err := s.productRepo.GetBySlug(ctx, input.ProductSlug)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}

	if !input.SkipUserCheck && product.UserID != input.UserID {
		return nil, apperror.ErrForbidden
	}

	if input.Code != nil && *input.Code != product.Code {
		existingProduct, err := s.productRepo.GetByCode(ctx, *input.Code)
		if err != nil {
			return nil, err
		}
		if existingProduct != nil && existingProduct.ID != product.ID {
			return nil, apperror.NewConflictError("Product code already exists")
		}
		product.Code = *input.Code
	}

	if input.CategoryID != nil {
		product.CategoryID = input.CategoryID
	}
	if input.Name != nil {
		product.Name = *input.Name
		product.Slug = utils.Slugify(*input.Name)
	}
	if input.Unit != nil {
		product.Unit = *input.Unit
	}
	if input.TrackStock != nil {
		product.TrackStock = *input.TrackStock
	}
	if input.ReorderLevel != nil {
		product.ReorderLevel = *input.ReorderLevel
	}
	if input.SellingPrice != nil {
		product.SetSellingPriceFromDecimal(*input.SellingPrice)
	}
	if input.HSNCode != nil {
		product.HSNCode = *input.HSNCode
	}
	if input.ExpiryDate != nil {
		product.ExpiryDate = input.ExpiryDate
	}
	if input.Tiers != nil {
		if err := validateTiers(*input.Tiers); err != nil {
			return nil, err
		}
		if err := s.productRepo.ReplaceTiers(ctx, product.ID, tierEntities(*input.Tiers)); err != nil {
			return nil, err
		}
		product.Tiers = nil
	}
	if input.Notes != nil {
		product.Notes = input.Notes
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return s.productRepo.GetByID(ctx, product.ID)
}

// DeleteProduct deletes a product
// If skipOwnerCheck is true (e.g., for super-admins), ownership check is bypassed
func (s *ProductService) DeleteProduct(ctx context.Context, userID uuid.UUID, slug string, skipOwnerCheck bool) error {
	product, err := s.productRepo.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if product == nil {
		return apperror.NewNotFoundError("Product")
	}

	if !skipOwnerCheck && product.UserID != userID {
		return apperror.ErrForbidden
	}

	return s.productRepo.Delete(ctx, product.ID)
}

// GetLowStockProducts returns tracked products at or below their reorder level
func (s *ProductService) GetLowStockProducts(ctx context.Context, userID uuid.UUID) ([]entity.Product, error) {
	return s.productRepo.GetLowStock(ctx, userID)
}

// GetExpiringProducts returns products inside the expiry warning window
func (s *ProductService) GetExpiringProducts(ctx context.Context, userID uuid.UUID) ([]entity.Product, error) {
	return s.productRepo.GetExpiringSoon(ctx, userID)
}

func validateTiers(tiers []PriceTierInput) error {
	seen := make(map[string]bool)
	for _, t := range tiers {
		code := strings.TrimSpace(t.Code)
		if code == "" {
			return apperror.NewBadRequestError("Price tier code is required")
		}
		if seen[code] {
			return apperror.NewBadRequestError(fmt.Sprintf("Duplicate price tier code %q", code))
		}
		seen[code] = true
		if t.Price < 0 {
			return apperror.NewBadRequestError("Price tier price cannot be negative")
		}
	}
	return nil
}

func tierEntities(tiers []PriceTierInput) []entity.PriceTier {
	out := make([]entity.PriceTier, 0, len(tiers))
	for _, t := range tiers {
		out = append(out, entity.PriceTier{
			Code:  strings.TrimSpace(t.Code),
			Label: t.Label,
			Price: int64(math.Round(t.Price * 100)),
		})
	}
	return out
}

// ImportProductRow represents a single row from the import file
type ImportProductRow struct {
	Name         string
	Code         string
	Unit         string
	Stock        float64
	ReorderLevel float64
	SellingPrice float64 // rupees
	HSNCode      string
	Notes        string
	CategoryName string
}

// ImportResult contains the result of a product import operation
type ImportResult struct {
	TotalRows  int              `json:"total_rows"`
	Successful int              `json:"successful"`
	Failed     int              `json:"failed"`
	Errors     []ImportRowError `json:"errors,omitempty"`
}

// ImportRowError describes an error for a specific row during import
type ImportRowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ImportProducts validates and bulk-creates products from parsed import rows
func (s *ProductService) ImportProducts(ctx context.Context, userID uuid.UUID, rows []ImportProductRow) (*ImportResult, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}

	result := &ImportResult{TotalRows: len(rows)}
	var rowErrors []ImportRowError

	// Load categories for name-based matching
	categoryMap := make(map[string]*uuid.UUID)
	categories, _, _ := s.categoryRepo.List(ctx, uuid.Nil, &pagination.PaginationParams{Page: 1, PerPage: 1000}, "", true)
	for i := range categories {
		categoryMap[strings.ToLower(categories[i].Name)] = &categories[i].ID
	}

	// Track codes seen in this import batch to detect duplicates within the file
	seenCodes := make(map[string]int) // code -> row number (1-indexed)

	var validProducts []entity.Product

	for i, row := range rows {
		rowNum := i + 2 // +2 because row 1 is the header, data starts at row 2

		if strings.TrimSpace(row.Name) == "" {
			rowErrors = append(rowErrors, ImportRowError{Row: rowNum, Field: "name", Message: "Name is required"})
			continue
		}

		code := strings.TrimSpace(row.Code)
		if code == "" {
			code = utils.GenerateProductCode()
		}

		if prevRow, exists := seenCodes[code]; exists {
			rowErrors = append(rowErrors, ImportRowError{
				Row:     rowNum,
				Field:   "code",
				Message: fmt.Sprintf("Duplicate code '%s' (same as row %d)", code, prevRow),
			})
			continue
		}

		existingProduct, err := s.productRepo.GetByCode(ctx, code)
		if err != nil {
			rowErrors = append(rowErrors, ImportRowError{Row: rowNum, Field: "code", Message: "Error checking code: " + err.Error()})
			continue
		}
		if existingProduct != nil {
			rowErrors = append(rowErrors, ImportRowError{
				Row:     rowNum,
				Field:   "code",
				Message: fmt.Sprintf("Product code '%s' already exists", code),
			})
			continue
		}

		seenCodes[code] = rowNum

		// Slug gets a uniqueness suffix since import names often repeat
		slug := utils.Slugify(row.Name) + "-" + strings.ToLower(uuid.New().String()[:8])

		var categoryID *uuid.UUID
		if row.CategoryName != "" {
			if id, ok := categoryMap[strings.ToLower(strings.TrimSpace(row.CategoryName))]; ok {
				categoryID = id
			}
		}

		unit := strings.TrimSpace(row.Unit)
		if unit == "" {
			unit = "piece"
		}

		product := entity.Product{
			TenantID:     tenantID,
			UserID:       userID,
			CategoryID:   categoryID,
			Name:         strings.TrimSpace(row.Name),
			Slug:         slug,
			Code:         code,
			Unit:         unit,
			Stock:        row.Stock,
			TrackStock:   true,
			ReorderLevel: row.ReorderLevel,
			HSNCode:      strings.TrimSpace(row.HSNCode),
		}
		product.SetSellingPriceFromDecimal(row.SellingPrice)

		if row.Notes != "" {
			notes := row.Notes
			product.Notes = &notes
		}

		validProducts = append(validProducts, product)
	}

	if len(validProducts) > 0 {
		if err := s.productRepo.CreateBatch(ctx, validProducts); err != nil {
			return nil, apperror.NewAppError(500, "Failed to import products: "+err.Error())
		}
	}

	result.Successful = len(validProducts)
	result.Failed = len(rowErrors)
	result.Errors = rowErrors

	return result, nil
}
