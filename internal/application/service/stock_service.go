package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bakehouse-api/internal/domain/entity"
	"github.com/sangkips/bakehouse-api/internal/domain/enum"
	"github.com/sangkips/bakehouse-api/internal/domain/repository"
	infraRepo "github.com/sangkips/bakehouse-api/internal/infrastructure/repository"
	"github.com/sangkips/bakehouse-api/pkg/apperror"
	"github.com/sangkips/bakehouse-api/pkg/pagination"
)

// StockService records stock movements outside the sales flow.
type StockService struct {
	stockRepo   repository.StockEntryRepository
	productRepo repository.ProductRepository
}

// NewStockService creates a new stock service
func NewStockService(stockRepo repository.StockEntryRepository, productRepo repository.ProductRepository) *StockService {
	return &StockService{
		stockRepo:   stockRepo,
		productRepo: productRepo,
	}
}

// RecordEntryInput represents a stock movement request
type RecordEntryInput struct {
	UserID    uuid.UUID
	ProductID uuid.UUID
	Type      enum.StockEntryType
	Quantity  float64
	Reason    *string
	Notes     *string
	EntryDate *time.Time
}

// RecordEntry inserts the movement and applies its delta to the product
// in one transaction. Production adds, write-offs subtract, adjustments
// carry their own sign. Stock is floored at zero either way.
func (s *StockService) RecordEntry(ctx context.Context, input *RecordEntryInput) (*entity.StockEntry, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}

	product, err := s.productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}

	var delta float64
	switch input.Type {
	case enum.StockEntryProduction:
		if input.Quantity <= 0 {
			return nil, apperror.NewBadRequestError("Production quantity must be greater than zero")
		}
		delta = input.Quantity
	case enum.StockEntryWriteoff:
		if input.Quantity <= 0 {
			return nil, apperror.NewBadRequestError("Write-off quantity must be greater than zero")
		}
		delta = -input.Quantity
	case enum.StockEntryAdjustment:
		if input.Quantity == 0 {
			return nil, apperror.NewBadRequestError("Adjustment quantity cannot be zero")
		}
		delta = input.Quantity
	default:
		return nil, apperror.NewBadRequestError("Unknown stock entry type")
	}

	entry := &entity.StockEntry{
		TenantID:  tenantID,
		ProductID: input.ProductID,
		UserID:    input.UserID,
		Type:      input.Type,
		Quantity:  input.Quantity,
		Reason:    input.Reason,
		Notes:     input.Notes,
		EntryDate: time.Now(),
	}
	if input.EntryDate != nil {
		entry.EntryDate = *input.EntryDate
	}

	if err := s.stockRepo.Create(ctx, entry, delta); err != nil {
		return nil, err
	}

	return s.stockRepo.GetByID(ctx, entry.ID)
}

// GetEntry retrieves a stock entry by ID
func (s *StockService) GetEntry(ctx context.Context, id uuid.UUID) (*entity.StockEntry, error) {
	entry, err := s.stockRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, apperror.NewNotFoundError("Stock entry")
	}
	return entry, nil
}

// ListEntries lists stock entries with filtering
func (s *StockService) ListEntries(ctx context.Context, params *repository.StockEntryFilterParams) (*pagination.PaginatedResult[entity.StockEntry], error) {
	entries, total, err := s.stockRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(entries, pag), nil
}
