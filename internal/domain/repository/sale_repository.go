package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bakehouse-api/internal/domain/entity"
	"github.com/sangkips/bakehouse-api/pkg/pagination"
)

// SaleRepository defines the interface for sale data operations.
// Mutations that must be atomic with stock movement (commit, amend,
// cancel) run their stock updates inside the same transaction.
type SaleRepository interface {
	// CreateCommitted persists a fully assembled sale in one transaction:
	// allocates the next bill number, decrements stock for tracked lines,
	// and inserts the sale, its items and any opening payment entry.
	// Returns product IDs that had insufficient stock; if any, nothing is written.
	CreateCommitted(ctx context.Context, sale *entity.Sale, decrements map[uuid.UUID]float64) (failedIDs []uuid.UUID, err error)

	GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error)
	GetByBillNo(ctx context.Context, billNo int64) (*entity.Sale, error)
	Update(ctx context.Context, sale *entity.Sale) error
	List(ctx context.Context, params *SaleFilterParams) ([]entity.Sale, int64, error)

	// AppendItems adds new lines to an existing sale, decrements stock and
	// inserts the optional amendment payment in the same transaction.
	// Returns product IDs with insufficient stock.
	AppendItems(ctx context.Context, sale *entity.Sale, items []entity.SaleItem, payment *entity.PaymentEntry, decrements map[uuid.UUID]float64) (failedIDs []uuid.UUID, err error)

	// AddPayment appends a ledger entry and saves the sale's cached
	// paid/due/status fields in one transaction.
	AddPayment(ctx context.Context, sale *entity.Sale, payment *entity.PaymentEntry) error

	// Cancel marks the sale cancelled and restores stock in one transaction.
	Cancel(ctx context.Context, sale *entity.Sale, increments map[uuid.UUID]float64) error

	// GetDueSales returns sales with an outstanding balance
	GetDueSales(ctx context.Context, params *pagination.PaginationParams) ([]entity.Sale, int64, error)
}

// SaleFilterParams contains filtering parameters for sale queries
type SaleFilterParams struct {
	Pagination    *pagination.PaginationParams
	Search        string
	CustomerID    *uuid.UUID
	Status        *int
	PaymentStatus *int
	DateFrom      *time.Time
	DateTo        *time.Time
	SortBy        string
	SortOrder     string
}
