package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bakehouse-api/internal/domain/entity"
	domainRepo "github.com/sangkips/bakehouse-api/internal/domain/repository"
	"gorm.io/gorm"
)

type bookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db *gorm.DB) domainRepo.BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *bookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	var booking entity.Booking
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(ctx)).
		Preload("Items").
		Preload("Customer").
		First(&booking, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &booking, err
}

func (r *bookingRepository) GetByReference(ctx context.Context, reference string) (*entity.Booking, error) {
	var booking entity.Booking
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(ctx)).
		Preload("Items").
		First(&booking, "reference = ?", reference).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &booking, err
}

func (r *bookingRepository) Update(ctx context.Context, booking *entity.Booking) error {
	return r.db.WithContext(ctx).Omit("Items").Save(booking).Error
}

func (r *bookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Booking{}, "id = ?", id).Error
}

func (r *bookingRepository) List(ctx context.Context, params *domainRepo.BookingFilterParams) ([]entity.Booking, int64, error) {
	var bookings []entity.Booking
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Booking{}).Scopes(TenantScope(ctx))

	if params.Search != "" {
		query = query.Where("reference ILIKE ? OR customer_name ILIKE ?",
			"%"+params.Search+"%", "%"+params.Search+"%")
	}

	if params.CustomerID != nil {
		query = query.Where("customer_id = ?", *params.CustomerID)
	}

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if params.DeliveryFrom != nil {
		query = query.Where("delivery_date >= ?", *params.DeliveryFrom)
	}

	if params.DeliveryTo != nil {
		query = query.Where("delivery_date <= ?", *params.DeliveryTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Items").
		Preload("Customer").
		Order("delivery_date ASC").
		Find(&bookings).Error

	return bookings, total, err
}

func (r *bookingRepository) GetUpcoming(ctx context.Context, days int) ([]entity.Booking, error) {
	var bookings []entity.Booking
	now := time.Now()
	cutoff := now.AddDate(0, 0, days)

	err := r.db.WithContext(ctx).
		Scopes(TenantScope(ctx)).
		Where("status IN ? AND delivery_date >= ? AND delivery_date <= ?",
			[]int{0, 1}, now, cutoff).
		Preload("Items").
		Order("delivery_date ASC").
		Find(&bookings).Error
	return bookings, err
}
