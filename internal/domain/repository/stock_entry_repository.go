package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bakehouse-api/internal/domain/entity"
	"github.com/sangkips/bakehouse-api/pkg/pagination"
)

// StockEntryRepository defines the interface for stock entry data operations
type StockEntryRepository interface {
	// Create inserts the entry and applies its stock delta in one transaction
	Create(ctx context.Context, entry *entity.StockEntry, delta float64) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.StockEntry, error)
	List(ctx context.Context, params *StockEntryFilterParams) ([]entity.StockEntry, int64, error)
}

// StockEntryFilterParams contains filtering parameters for stock entry queries
type StockEntryFilterParams struct {
	Pagination *pagination.PaginationParams
	ProductID  *uuid.UUID
	Type       *int
	DateFrom   *time.Time
	DateTo     *time.Time
}
