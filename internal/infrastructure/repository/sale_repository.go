package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/bakehouse-api/internal/domain/entity"
	domainRepo "github.com/sangkips/bakehouse-api/internal/domain/repository"
	"github.com/sangkips/bakehouse-api/pkg/pagination"
	"gorm.io/gorm"
)

type saleRepository struct {
	db *gorm.DB
}

// saleSortColumns maps client sort keys to sortable columns.
var saleSortColumns = map[string]string{
	"created_at":    "created_at",
	"sale_date":     "sale_date",
	"bill_no":       "bill_no",
	"total":         "total",
	"due":           "due",
	"customer_name": "customer_name",
}

// NewSaleRepository creates a new sale repository
func NewSaleRepository(db *gorm.DB) domainRepo.SaleRepository {
	return &saleRepository{db: db}
}

// nextBillNo increments and returns the tenant's bill counter inside tx.
// The counter row is updated first so concurrent commits serialize on it.
func nextBillNo(tx *gorm.DB, tenantID uuid.UUID) (int64, error) {
	result := tx.Model(&entity.BillSequence{}).
		Where("tenant_id = ?", tenantID).
		Update("last_no", gorm.Expr("last_no + 1"))
	if result.Error != nil {
		return 0, result.Error
	}

	if result.RowsAffected == 0 {
		seq := entity.BillSequence{TenantID: tenantID, LastNo: 1}
		if err := tx.Create(&seq).Error; err != nil {
			return 0, err
		}
		return 1, nil
	}

	var seq entity.BillSequence
	if err := tx.First(&seq, "tenant_id = ?", tenantID).Error; err != nil {
		return 0, err
	}
	return seq.LastNo, nil
}

// CreateCommitted persists a fully assembled sale in one transaction.
// Bill number allocation, stock decrements and all inserts either land
// together or not at all.
func (r *saleRepository) CreateCommitted(ctx context.Context, sale *entity.Sale, decrements map[uuid.UUID]float64) ([]uuid.UUID, error) {
	var failedIDs []uuid.UUID

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		billNo, err := nextBillNo(tx, sale.TenantID)
		if err != nil {
			return err
		}
		sale.BillNo = billNo

		for id, amount := range decrements {
			result := tx.Model(&entity.Product{}).
				Where("id = ? AND stock >= ?", id, amount).
				Update("stock", gorm.Expr("stock - ?", amount))

			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				failedIDs = append(failedIDs, id)
			}
		}

		if len(failedIDs) > 0 {
			return gorm.ErrInvalidTransaction
		}

		// Items and payment entries are inserted through the association
		return tx.Create(sale).Error
	})

	if errors.Is(err, gorm.ErrInvalidTransaction) && len(failedIDs) > 0 {
		return failedIDs, nil
	}
	return failedIDs, err
}

func (r *saleRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	var sale entity.Sale
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(ctx)).
		Preload("Items").
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("payment_entries.created_at ASC")
		}).
		Preload("Customer").
		First(&sale, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &sale, err
}

func (r *saleRepository) GetByBillNo(ctx context.Context, billNo int64) (*entity.Sale, error) {
	var sale entity.Sale
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(ctx)).
		Preload("Items").
		Preload("Payments").
		First(&sale, "bill_no = ?", billNo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &sale, err
}

func (r *saleRepository) Update(ctx context.Context, sale *entity.Sale) error {
	return r.db.WithContext(ctx).Save(sale).Error
}

func (r *saleRepository) List(ctx context.Context, params *domainRepo.SaleFilterParams) ([]entity.Sale, int64, error) {
	var sales []entity.Sale
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Sale{}).Scopes(TenantScope(ctx))

	if params.Search != "" {
		query = query.Where("customer_name ILIKE ?", "%"+params.Search+"%")
	}

	if params.CustomerID != nil {
		query = query.Where("customer_id = ?", *params.CustomerID)
	}

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if params.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *params.PaymentStatus)
	}

	if params.DateFrom != nil {
		query = query.Where("sale_date >= ?", *params.DateFrom)
	}

	if params.DateTo != nil {
		query = query.Where("sale_date <= ?", *params.DateTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Sorting; sort_by comes from the query string, so only known
	// columns make it into the ORDER BY
	sortBy := "created_at"
	if column, ok := saleSortColumns[params.SortBy]; ok {
		sortBy = column
	}
	sortOrder := "DESC"
	if params.SortOrder == "ASC" || params.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Items").
		Preload("Customer").
		Order(sortBy + " " + sortOrder).
		Find(&sales).Error

	return sales, total, err
}

// AppendItems adds new lines to a sale, decrements stock and inserts the
// amendment payment, if any, in one transaction.
func (r *saleRepository) AppendItems(ctx context.Context, sale *entity.Sale, items []entity.SaleItem, payment *entity.PaymentEntry, decrements map[uuid.UUID]float64) ([]uuid.UUID, error) {
	var failedIDs []uuid.UUID

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id, amount := range decrements {
			result := tx.Model(&entity.Product{}).
				Where("id = ? AND stock >= ?", id, amount).
				Update("stock", gorm.Expr("stock - ?", amount))

			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				failedIDs = append(failedIDs, id)
			}
		}

		if len(failedIDs) > 0 {
			return gorm.ErrInvalidTransaction
		}

		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}

		if payment != nil {
			if err := tx.Create(payment).Error; err != nil {
				return err
			}
		}

		return tx.Omit("Items", "Payments").Save(sale).Error
	})

	if errors.Is(err, gorm.ErrInvalidTransaction) && len(failedIDs) > 0 {
		return failedIDs, nil
	}
	return failedIDs, err
}

// AddPayment appends a ledger entry and saves the sale's cached fields together.
func (r *saleRepository) AddPayment(ctx context.Context, sale *entity.Sale, payment *entity.PaymentEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(payment).Error; err != nil {
			return err
		}
		return tx.Omit("Items", "Payments").Save(sale).Error
	})
}

// Cancel marks the sale cancelled and restores stock in one transaction.
func (r *saleRepository) Cancel(ctx context.Context, sale *entity.Sale, increments map[uuid.UUID]float64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id, amount := range increments {
			if err := tx.Model(&entity.Product{}).
				Where("id = ?", id).
				Update("stock", gorm.Expr("stock + ?", amount)).Error; err != nil {
				return err
			}
		}
		return tx.Omit("Items", "Payments").Save(sale).Error
	})
}

func (r *saleRepository) GetDueSales(ctx context.Context, params *pagination.PaginationParams) ([]entity.Sale, int64, error) {
	var sales []entity.Sale
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Sale{}).Scopes(TenantScope(ctx)).
		Where("due > 0 AND status = ?", 0)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Preload("Customer").
		Order("created_at DESC").
		Find(&sales).Error

	return sales, total, err
}
