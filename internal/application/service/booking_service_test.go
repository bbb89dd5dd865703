package service

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/sangkips/bakehouse-api/internal/domain/entity"
	"github.com/sangkips/bakehouse-api/internal/domain/enum"
	infraRepo "github.com/sangkips/bakehouse-api/internal/infrastructure/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBookingService(env *saleTestEnv) *BookingService {
	return NewBookingService(
		infraRepo.NewBookingRepository(env.db),
		infraRepo.NewProductRepository(env.db),
		infraRepo.NewCustomerRepository(env.db),
		env.svc,
	)
}

func TestCreateBooking_ReservesNothing(t *testing.T) {
	env := newSaleTestEnv(t)
	svc := newBookingService(env)
	cake := env.seedProduct(t, "Plum Cake", 50000, 4, true,
		entity.PriceTier{Code: "half", Label: "500g", Price: 30000},
	)

	booking, err := svc.CreateBooking(env.ctx, &CreateBookingInput{
		UserID:       env.userID,
		CustomerName: "Leela",
		DeliveryDate: time.Now().AddDate(0, 0, 3),
		Items:        []BookingLineInput{{ProductID: cake.ID, Quantity: 2, Tier: "half"}},
		AdvancePaid:  100,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(booking.Reference, "BKG-"))
	assert.Equal(t, enum.BookingStatusOpen, booking.Status)
	assert.Equal(t, int64(10000), booking.AdvancePaid)
	require.Len(t, booking.Items, 1)
	assert.Equal(t, int64(30000), booking.Items[0].UnitPrice)
	assert.Equal(t, int64(60000), booking.Items[0].SubTotal)

	// A booking holds no stock until fulfilment
	assert.Equal(t, float64(4), env.productStock(t, cake.ID))
}

func TestCreateBooking_Validation(t *testing.T) {
	env := newSaleTestEnv(t)
	svc := newBookingService(env)
	cake := env.seedProduct(t, "Plum Cake", 50000, 4, true)
	line := []BookingLineInput{{ProductID: cake.ID, Quantity: 1}}

	_, err := svc.CreateBooking(env.ctx, &CreateBookingInput{
		UserID:       env.userID,
		DeliveryDate: time.Now().AddDate(0, 0, 3),
	})
	assertAppError(t, err, http.StatusBadRequest, "Booking must have at least one item")

	_, err = svc.CreateBooking(env.ctx, &CreateBookingInput{
		UserID:       env.userID,
		DeliveryDate: time.Now().AddDate(0, 0, -1),
		Items:        line,
	})
	assertAppError(t, err, http.StatusBadRequest, "Delivery date must be in the future")

	_, err = svc.CreateBooking(env.ctx, &CreateBookingInput{
		UserID:       env.userID,
		DeliveryDate: time.Now().AddDate(0, 0, 3),
		Items:        line,
		AdvancePaid:  -10,
	})
	assertAppError(t, err, http.StatusBadRequest, "Advance paid cannot be negative")
}

func TestConfirmBooking_Transitions(t *testing.T) {
	env := newSaleTestEnv(t)
	svc := newBookingService(env)
	cake := env.seedProduct(t, "Plum Cake", 50000, 4, true)

	booking, err := svc.CreateBooking(env.ctx, &CreateBookingInput{
		UserID:       env.userID,
		DeliveryDate: time.Now().AddDate(0, 0, 3),
		Items:        []BookingLineInput{{ProductID: cake.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	booking, err = svc.ConfirmBooking(env.ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.BookingStatusConfirmed, booking.Status)

	_, err = svc.ConfirmBooking(env.ctx, booking.ID)
	assertAppError(t, err, http.StatusConflict, "Cannot confirm a confirmed booking")

	booking, err = svc.CancelBooking(env.ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.BookingStatusCancelled, booking.Status)

	_, err = svc.CancelBooking(env.ctx, booking.ID)
	assertAppError(t, err, http.StatusConflict, "Cannot cancel a cancelled booking")
}

func TestFulfilBooking_CommitsSale(t *testing.T) {
	env := newSaleTestEnv(t)
	svc := newBookingService(env)
	cake := env.seedProduct(t, "Plum Cake", 30000, 4, true)

	booking, err := svc.CreateBooking(env.ctx, &CreateBookingInput{
		UserID:       env.userID,
		CustomerName: "Leela",
		DeliveryDate: time.Now().AddDate(0, 0, 3),
		Items:        []BookingLineInput{{ProductID: cake.ID, Quantity: 1}},
		AdvancePaid:  50,
	})
	require.NoError(t, err)

	booking, sale, err := svc.FulfilBooking(env.ctx, booking.ID, env.userID, "Asha", FulfilBookingInput{
		AmountPaid:  250,
		PaymentType: "cash",
	})
	require.NoError(t, err)

	assert.Equal(t, enum.BookingStatusFulfilled, booking.Status)
	require.NotNil(t, booking.SaleID)
	assert.Equal(t, sale.ID, *booking.SaleID)

	// Advance plus the balance settles the bill in full
	assert.Equal(t, int64(30000), sale.Total)
	assert.Equal(t, int64(30000), sale.Paid)
	assert.Equal(t, enum.PaymentStatusPaid, sale.PaymentStatus)
	assert.Equal(t, "Leela", sale.CustomerName)
	assert.Equal(t, float64(3), env.productStock(t, cake.ID))

	_, _, err = svc.FulfilBooking(env.ctx, booking.ID, env.userID, "Asha", FulfilBookingInput{PaymentType: "cash"})
	assertAppError(t, err, http.StatusConflict, "Cannot fulfil a fulfilled booking")
}

func TestFulfilBooking_OverpaymentRejected(t *testing.T) {
	env := newSaleTestEnv(t)
	svc := newBookingService(env)
	cake := env.seedProduct(t, "Plum Cake", 30000, 4, true)

	booking, err := svc.CreateBooking(env.ctx, &CreateBookingInput{
		UserID:       env.userID,
		DeliveryDate: time.Now().AddDate(0, 0, 3),
		Items:        []BookingLineInput{{ProductID: cake.ID, Quantity: 1}},
		AdvancePaid:  50,
	})
	require.NoError(t, err)

	_, _, err = svc.FulfilBooking(env.ctx, booking.ID, env.userID, "Asha", FulfilBookingInput{
		AmountPaid:  300,
		PaymentType: "cash",
	})
	assertAppError(t, err, http.StatusBadRequest, "Amount paid cannot exceed the bill total")

	// The failed fulfilment leaves the booking open
	booking, err = svc.GetBooking(env.ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.BookingStatusOpen, booking.Status)
}

func TestGetUpcomingBookings(t *testing.T) {
	env := newSaleTestEnv(t)
	svc := newBookingService(env)
	cake := env.seedProduct(t, "Plum Cake", 30000, 10, true)

	near, err := svc.CreateBooking(env.ctx, &CreateBookingInput{
		UserID:       env.userID,
		DeliveryDate: time.Now().AddDate(0, 0, 2),
		Items:        []BookingLineInput{{ProductID: cake.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = svc.CreateBooking(env.ctx, &CreateBookingInput{
		UserID:       env.userID,
		DeliveryDate: time.Now().AddDate(0, 0, 30),
		Items:        []BookingLineInput{{ProductID: cake.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	upcoming, err := svc.GetUpcomingBookings(env.ctx, 7)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, near.ID, upcoming[0].ID)
}
