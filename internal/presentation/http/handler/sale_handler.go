package handler

import (
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/bakehouse-api/internal/application/service"
	"github.com/sangkips/bakehouse-api/internal/domain/enum"
	"github.com/sangkips/bakehouse-api/internal/domain/repository"
	"github.com/sangkips/bakehouse-api/internal/presentation/http/dto/request"
	"github.com/sangkips/bakehouse-api/internal/presentation/http/dto/response"
	"github.com/sangkips/bakehouse-api/pkg/pagination"
)

// SaleHandler handles sale-related HTTP requests
type SaleHandler struct {
	saleService *service.SaleService
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(saleService *service.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// Commit handles committing a new sale
func (h *SaleHandler) Commit(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.CommitSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	sale, err := h.saleService.Commit(c.Request.Context(), *userID, GetUserEmail(c), service.CommitSaleInput{
		CustomerID:    req.CustomerID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerType:  enum.ParseCustomerType(req.CustomerType),
		CustomerGSTIN: req.CustomerGSTIN,
		Items:         saleLineInputs(req.Items),
		DiscountType:  enum.ParseDiscountType(req.DiscountType),
		DiscountValue: req.DiscountValue,
		AmountPaid:    toPaise(req.AmountPaid),
		PaymentType:   req.PaymentType,
		SaleDate:      req.SaleDate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Sale committed successfully", sale)
}

// Preview handles computing a bill without persisting anything
func (h *SaleHandler) Preview(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.PreviewSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	preview, err := h.saleService.PreviewSale(c.Request.Context(), service.CommitSaleInput{
		CustomerID:    req.CustomerID,
		CustomerType:  enum.ParseCustomerType(req.CustomerType),
		CustomerGSTIN: req.CustomerGSTIN,
		Items:         saleLineInputs(req.Items),
		DiscountType:  enum.ParseDiscountType(req.DiscountType),
		DiscountValue: req.DiscountValue,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sale preview computed", preview)
}

// Get handles getting a single sale
func (h *SaleHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid sale ID")
		return
	}

	sale, err := h.saleService.GetSale(ScopedContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sale retrieved successfully", sale)
}

// GetByBillNo handles looking up a sale by its bill number
func (h *SaleHandler) GetByBillNo(c *gin.Context) {
	billNo, err := strconv.ParseInt(c.Param("bill_no"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid bill number")
		return
	}

	sale, err := h.saleService.GetSaleByBillNo(c.Request.Context(), billNo)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sale retrieved successfully", sale)
}

// List handles listing sales with filters
func (h *SaleHandler) List(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.SaleFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid filter parameters")
		return
	}

	params := &repository.SaleFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    req.Page,
			PerPage: req.PerPage,
		},
		Search:        req.Search,
		Status:        req.Status,
		PaymentStatus: req.PaymentStatus,
		DateFrom:      parseDateQuery(req.DateFrom),
		DateTo:        parseDateQuery(req.DateTo),
		SortBy:        req.SortBy,
		SortOrder:     req.SortOrder,
	}
	if req.CustomerID != "" {
		if customerID, err := uuid.Parse(req.CustomerID); err == nil {
			params.CustomerID = &customerID
		}
	}
	params.Pagination.Validate()

	sales, total, err := h.saleService.ListSales(ScopedContext(c), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	result := pagination.NewPaginatedResult(sales,
		pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total))
	response.SuccessWithPagination(c, 200, "Sales retrieved successfully", result)
}

// GetDue handles listing sales with an outstanding balance
func (h *SaleHandler) GetDue(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	params := &pagination.PaginationParams{Page: page, PerPage: perPage}
	params.Validate()

	sales, total, err := h.saleService.GetDueSales(ScopedContext(c), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	result := pagination.NewPaginatedResult(sales,
		pagination.NewPagination(params.Page, params.PerPage, total))
	response.SuccessWithPagination(c, 200, "Due sales retrieved successfully", result)
}

// AddItems handles appending lines to a committed sale
func (h *SaleHandler) AddItems(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid sale ID")
		return
	}

	var req request.AddSaleItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	sale, err := h.saleService.AddItems(c.Request.Context(), id, *userID, GetUserEmail(c),
		saleLineInputs(req.Items), toPaise(req.AmountReceived), req.PaymentMethod)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Items added to sale successfully", sale)
}

// RecordPayment handles appending a payment to a sale's ledger
func (h *SaleHandler) RecordPayment(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid sale ID")
		return
	}

	var req request.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	sale, err := h.saleService.RecordPayment(c.Request.Context(), id, *userID, GetUserEmail(c), toPaise(req.Amount), req.Method)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment recorded successfully", sale)
}

// Cancel handles voiding a sale
func (h *SaleHandler) Cancel(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid sale ID")
		return
	}

	var req request.CancelSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	sale, err := h.saleService.CancelSale(c.Request.Context(), id, *userID, service.CancelSaleInput{
		Reason:       req.Reason,
		RefundAmount: toPaise(req.RefundAmount),
		RefundMethod: req.RefundMethod,
		RefundNotes:  req.RefundNotes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sale cancelled successfully", sale)
}

func saleLineInputs(items []request.SaleItemRequest) []service.SaleLineInput {
	inputs := make([]service.SaleLineInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, service.SaleLineInput{
			ProductID:     item.ProductID,
			Quantity:      item.Quantity,
			Tier:          item.Tier,
			DiscountType:  enum.ParseDiscountType(item.DiscountType),
			DiscountValue: item.DiscountValue,
		})
	}
	return inputs
}

// toPaise converts a rupee amount from the wire into integer paise.
func toPaise(rupees float64) int64 {
	return int64(math.Round(rupees * 100))
}

// parseDateQuery parses a YYYY-MM-DD query value, nil when absent or invalid.
func parseDateQuery(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}
