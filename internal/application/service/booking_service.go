package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bakehouse-api/internal/domain/entity"
	"github.com/sangkips/bakehouse-api/internal/domain/enum"
	"github.com/sangkips/bakehouse-api/internal/domain/repository"
	infraRepo "github.com/sangkips/bakehouse-api/internal/infrastructure/repository"
	"github.com/sangkips/bakehouse-api/pkg/apperror"
	"github.com/sangkips/bakehouse-api/pkg/pagination"
	"github.com/sangkips/bakehouse-api/pkg/utils"
)

// BookingService handles advance orders. A booking reserves nothing;
// stock moves only when the booking is fulfilled through the sale
// commit pipeline.
type BookingService struct {
	bookingRepo  repository.BookingRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	saleService  *SaleService
}

// NewBookingService creates a new booking service
func NewBookingService(
	bookingRepo repository.BookingRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	saleService *SaleService,
) *BookingService {
	return &BookingService{
		bookingRepo:  bookingRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		saleService:  saleService,
	}
}

// BookingLineInput is one requested product line in a booking
type BookingLineInput struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  float64   `json:"quantity"`
	Tier      string    `json:"tier"`
}

// CreateBookingInput represents the create booking input
type CreateBookingInput struct {
	UserID        uuid.UUID
	CustomerID    *uuid.UUID
	CustomerName  string
	CustomerPhone *string
	DeliveryDate  time.Time
	Items         []BookingLineInput
	AdvancePaid   float64 // rupees
	Notes         *string
}

// CreateBooking records an advance order with server-side prices.
func (s *BookingService) CreateBooking(ctx context.Context, input *CreateBookingInput) (*entity.Booking, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}
	if len(input.Items) == 0 {
		return nil, apperror.NewBadRequestError("Booking must have at least one item")
	}
	if input.DeliveryDate.Before(time.Now()) {
		return nil, apperror.NewBadRequestError("Delivery date must be in the future")
	}
	if input.AdvancePaid < 0 {
		return nil, apperror.NewBadRequestError("Advance paid cannot be negative")
	}

	booking := &entity.Booking{
		TenantID:      tenantID,
		UserID:        input.UserID,
		Reference:     utils.GenerateReferenceNo("BKG-"),
		CustomerName:  input.CustomerName,
		CustomerPhone: input.CustomerPhone,
		DeliveryDate:  input.DeliveryDate,
		Status:        enum.BookingStatusOpen,
		AdvancePaid:   int64(math.Round(input.AdvancePaid * 100)),
		Notes:         input.Notes,
	}

	if input.CustomerID != nil {
		customer, err := s.customerRepo.GetByID(ctx, *input.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, apperror.NewNotFoundError("Customer")
		}
		booking.CustomerID = &customer.ID
		booking.CustomerName = customer.Name
		booking.CustomerPhone = customer.Phone
	}

	items, err := s.priceBookingItems(ctx, input.Items)
	if err != nil {
		return nil, err
	}
	booking.Items = items

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}

	return s.bookingRepo.GetByID(ctx, booking.ID)
}

// GetBooking retrieves a booking by ID
func (s *BookingService) GetBooking(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, apperror.NewNotFoundError("Booking")
	}
	return booking, nil
}

// GetBookingByReference retrieves a booking by its reference number
func (s *BookingService) GetBookingByReference(ctx context.Context, reference string) (*entity.Booking, error) {
	booking, err := s.bookingRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, apperror.NewNotFoundError("Booking")
	}
	return booking, nil
}

// ListBookings lists bookings with filtering
func (s *BookingService) ListBookings(ctx context.Context, params *repository.BookingFilterParams) (*pagination.PaginatedResult[entity.Booking], error) {
	bookings, total, err := s.bookingRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(bookings, pag), nil
}

// GetUpcomingBookings returns open or confirmed bookings due in the next N days
func (s *BookingService) GetUpcomingBookings(ctx context.Context, days int) ([]entity.Booking, error) {
	if days <= 0 {
		days = 7
	}
	return s.bookingRepo.GetUpcoming(ctx, days)
}

// ConfirmBooking moves an open booking to confirmed
func (s *BookingService) ConfirmBooking(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	booking, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status != enum.BookingStatusOpen {
		return nil, apperror.NewConflictError(fmt.Sprintf("Cannot confirm a %s booking", booking.Status))
	}

	booking.Status = enum.BookingStatusConfirmed
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// CancelBooking cancels an open or confirmed booking. Any advance
// refund is handled at the counter; the booking just records the state.
func (s *BookingService) CancelBooking(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	booking, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.IsTerminal() {
		return nil, apperror.NewConflictError(fmt.Sprintf("Cannot cancel a %s booking", booking.Status))
	}

	booking.Status = enum.BookingStatusCancelled
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// FulfilBookingInput represents the fulfilment request
type FulfilBookingInput struct {
	// AmountPaid is the balance collected at delivery, in rupees.
	// The booking's advance is added on top automatically.
	AmountPaid  float64
	PaymentType string
}

// FulfilBooking converts the booking into a committed sale. Prices are
// re-resolved at fulfilment time; the booking's quantities and tiers
// carry over.
func (s *BookingService) FulfilBooking(ctx context.Context, id, userID uuid.UUID, userName string, input FulfilBookingInput) (*entity.Booking, *entity.Sale, error) {
	booking, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if booking.IsTerminal() {
		return nil, nil, apperror.NewConflictError(fmt.Sprintf("Cannot fulfil a %s booking", booking.Status))
	}
	if input.AmountPaid < 0 {
		return nil, nil, apperror.NewBadRequestError("Amount paid cannot be negative")
	}

	lines := make([]SaleLineInput, 0, len(booking.Items))
	for _, item := range booking.Items {
		lines = append(lines, SaleLineInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Tier:      item.Tier,
		})
	}

	amountPaid := booking.AdvancePaid + int64(math.Round(input.AmountPaid*100))
	sale, err := s.saleService.Commit(ctx, userID, userName, CommitSaleInput{
		CustomerID:    booking.CustomerID,
		CustomerName:  booking.CustomerName,
		CustomerPhone: booking.CustomerPhone,
		Items:         lines,
		AmountPaid:    amountPaid,
		PaymentType:   input.PaymentType,
	})
	if err != nil {
		return nil, nil, err
	}

	booking.Status = enum.BookingStatusFulfilled
	booking.SaleID = &sale.ID
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, nil, err
	}

	return booking, sale, nil
}

func (s *BookingService) priceBookingItems(ctx context.Context, inputs []BookingLineInput) ([]entity.BookingItem, error) {
	ids := make([]uuid.UUID, 0, len(inputs))
	seen := make(map[uuid.UUID]bool)
	for _, in := range inputs {
		if !seen[in.ProductID] {
			seen[in.ProductID] = true
			ids = append(ids, in.ProductID)
		}
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	productMap := make(map[uuid.UUID]*entity.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}

	items := make([]entity.BookingItem, 0, len(inputs))
	for _, in := range inputs {
		product, ok := productMap[in.ProductID]
		if !ok {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("Product %s", in.ProductID))
		}
		if in.Quantity <= 0 {
			return nil, apperror.NewBadRequestError(fmt.Sprintf("Quantity for %s must be greater than zero", product.Name))
		}
		unitPrice, ok := product.TierPrice(in.Tier)
		if !ok {
			return nil, apperror.NewBadRequestError(fmt.Sprintf("Unknown price tier %q for %s", in.Tier, product.Name))
		}

		items = append(items, entity.BookingItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    in.Quantity,
			Tier:        in.Tier,
			UnitPrice:   unitPrice,
			SubTotal:    int64(math.Round(float64(unitPrice) * in.Quantity)),
		})
	}
	return items, nil
}
