package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/bakehouse-api/internal/application/service"
	"github.com/sangkips/bakehouse-api/internal/domain/repository"
	"github.com/sangkips/bakehouse-api/internal/presentation/http/dto/request"
	"github.com/sangkips/bakehouse-api/internal/presentation/http/dto/response"
	"github.com/sangkips/bakehouse-api/pkg/pagination"
)

// BookingHandler handles advance order HTTP requests
type BookingHandler struct {
	bookingService *service.BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookingService *service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// Create handles creating a booking
func (h *BookingHandler) Create(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	items := make([]service.BookingLineInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.BookingLineInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Tier:      item.Tier,
		})
	}

	booking, err := h.bookingService.CreateBooking(c.Request.Context(), &service.CreateBookingInput{
		UserID:        *userID,
		CustomerID:    req.CustomerID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		DeliveryDate:  req.DeliveryDate,
		Items:         items,
		AdvancePaid:   req.AdvancePaid,
		Notes:         req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Booking created successfully", booking)
}

// Get handles getting a single booking
func (h *BookingHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid booking ID")
		return
	}

	booking, err := h.bookingService.GetBooking(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Booking retrieved successfully", booking)
}

// List handles listing bookings with filters
func (h *BookingHandler) List(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.BookingFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid filter parameters")
		return
	}

	params := &repository.BookingFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    req.Page,
			PerPage: req.PerPage,
		},
		Search:       req.Search,
		Status:       req.Status,
		DeliveryFrom: parseDateQuery(req.DeliveryFrom),
		DeliveryTo:   parseDateQuery(req.DeliveryTo),
	}
	if req.CustomerID != "" {
		if customerID, err := uuid.Parse(req.CustomerID); err == nil {
			params.CustomerID = &customerID
		}
	}

	result, err := h.bookingService.ListBookings(ScopedContext(c), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Bookings retrieved successfully", result)
}

// GetUpcoming handles listing bookings due in the next few days
func (h *BookingHandler) GetUpcoming(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))

	bookings, err := h.bookingService.GetUpcomingBookings(ScopedContext(c), days)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Upcoming bookings retrieved successfully", bookings)
}

// Confirm handles confirming an open booking
func (h *BookingHandler) Confirm(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid booking ID")
		return
	}

	booking, err := h.bookingService.ConfirmBooking(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Booking confirmed successfully", booking)
}

// Cancel handles cancelling a booking
func (h *BookingHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid booking ID")
		return
	}

	booking, err := h.bookingService.CancelBooking(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Booking cancelled successfully", booking)
}

// Fulfil converts a booking into a committed sale at delivery
func (h *BookingHandler) Fulfil(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid booking ID")
		return
	}

	var req request.FulfilBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	booking, sale, err := h.bookingService.FulfilBooking(c.Request.Context(), id, *userID, GetUserEmail(c), service.FulfilBookingInput{
		AmountPaid:  req.AmountPaid,
		PaymentType: req.PaymentType,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Booking fulfilled successfully", gin.H{
		"booking": booking,
		"sale":    sale,
	})
}
