package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/bakehouse-api/internal/application/service"
	"github.com/sangkips/bakehouse-api/internal/domain/enum"
	"github.com/sangkips/bakehouse-api/internal/domain/repository"
	"github.com/sangkips/bakehouse-api/internal/presentation/http/dto/request"
	"github.com/sangkips/bakehouse-api/internal/presentation/http/dto/response"
	"github.com/sangkips/bakehouse-api/pkg/pagination"
)

// StockHandler handles stock entry HTTP requests
type StockHandler struct {
	stockService *service.StockService
}

// NewStockHandler creates a new stock handler
func NewStockHandler(stockService *service.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

// RecordEntry handles recording a stock movement
func (h *StockHandler) RecordEntry(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.RecordStockEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	entry, err := h.stockService.RecordEntry(c.Request.Context(), &service.RecordEntryInput{
		UserID:    *userID,
		ProductID: req.ProductID,
		Type:      enum.ParseStockEntryType(req.Type),
		Quantity:  req.Quantity,
		Reason:    req.Reason,
		Notes:     req.Notes,
		EntryDate: req.EntryDate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Stock entry recorded successfully", entry)
}

// Get handles getting a single stock entry
func (h *StockHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid stock entry ID")
		return
	}

	entry, err := h.stockService.GetEntry(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Stock entry retrieved successfully", entry)
}

// List handles listing stock entries with filters
func (h *StockHandler) List(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.StockEntryFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid filter parameters")
		return
	}

	params := &repository.StockEntryFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    req.Page,
			PerPage: req.PerPage,
		},
		Type:     req.Type,
		DateFrom: parseDateQuery(req.DateFrom),
		DateTo:   parseDateQuery(req.DateTo),
	}
	if req.ProductID != "" {
		if productID, err := uuid.Parse(req.ProductID); err == nil {
			params.ProductID = &productID
		}
	}

	result, err := h.stockService.ListEntries(ScopedContext(c), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Stock entries retrieved successfully", result)
}
