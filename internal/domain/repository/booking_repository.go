package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bakehouse-api/internal/domain/entity"
	"github.com/sangkips/bakehouse-api/pkg/pagination"
)

// BookingRepository defines the interface for booking data operations
type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	GetByReference(ctx context.Context, reference string) (*entity.Booking, error)
	Update(ctx context.Context, booking *entity.Booking) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *BookingFilterParams) ([]entity.Booking, int64, error)
	// GetUpcoming returns open/confirmed bookings with delivery dates in the next N days
	GetUpcoming(ctx context.Context, days int) ([]entity.Booking, error)
}

// BookingFilterParams contains filtering parameters for booking queries
type BookingFilterParams struct {
	Pagination   *pagination.PaginationParams
	Search       string
	CustomerID   *uuid.UUID
	Status       *int
	DeliveryFrom *time.Time
	DeliveryTo   *time.Time
}
