package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/bakehouse-api/internal/domain/entity"
	domainRepo "github.com/sangkips/bakehouse-api/internal/domain/repository"
	"gorm.io/gorm"
)

type stockEntryRepository struct {
	db *gorm.DB
}

// NewStockEntryRepository creates a new stock entry repository
func NewStockEntryRepository(db *gorm.DB) domainRepo.StockEntryRepository {
	return &stockEntryRepository{db: db}
}

// Create inserts the entry and applies its stock delta in one transaction.
// Stock never goes below zero; oversized write-offs clamp at zero.
func (r *stockEntryRepository) Create(ctx context.Context, entry *entity.StockEntry, delta float64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		return tx.Model(&entity.Product{}).
			Where("id = ?", entry.ProductID).
			Update("stock", gorm.Expr("GREATEST(stock + ?, 0)", delta)).Error
	})
}

func (r *stockEntryRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.StockEntry, error) {
	var entry entity.StockEntry
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(ctx)).
		Preload("Product").
		First(&entry, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &entry, err
}

func (r *stockEntryRepository) List(ctx context.Context, params *domainRepo.StockEntryFilterParams) ([]entity.StockEntry, int64, error) {
	var entries []entity.StockEntry
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.StockEntry{}).Scopes(TenantScope(ctx))

	if params.ProductID != nil {
		query = query.Where("product_id = ?", *params.ProductID)
	}

	if params.Type != nil {
		query = query.Where("type = ?", *params.Type)
	}

	if params.DateFrom != nil {
		query = query.Where("entry_date >= ?", *params.DateFrom)
	}

	if params.DateTo != nil {
		query = query.Where("entry_date <= ?", *params.DateTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Product").
		Order("entry_date DESC").
		Find(&entries).Error

	return entries, total, err
}
