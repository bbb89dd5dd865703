package handler

import (
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/bakehouse-api/internal/application/service"
	"github.com/sangkips/bakehouse-api/internal/domain/repository"
	"github.com/sangkips/bakehouse-api/internal/presentation/http/dto/request"
	"github.com/sangkips/bakehouse-api/internal/presentation/http/dto/response"
	"github.com/sangkips/bakehouse-api/pkg/pagination"
)

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	productService *service.ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// List handles listing products with filters
func (h *ProductHandler) List(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.ProductFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid filter parameters")
		return
	}

	params := &repository.ProductFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    req.Page,
			PerPage: req.PerPage,
		},
		Search:         req.Search,
		LowStock:       req.LowStock,
		ExpiringSoon:   req.ExpiringSoon,
		SortBy:         req.SortBy,
		SortOrder:      req.SortOrder,
		SkipUserFilter: IsSuperAdmin(c),
	}
	if req.CategoryID != "" {
		if categoryID, err := uuid.Parse(req.CategoryID); err == nil {
			params.CategoryID = &categoryID
		}
	}

	result, err := h.productService.ListProducts(ScopedContext(c), *userID, params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Products retrieved successfully", result)
}

// Create handles creating a product
func (h *ProductHandler) Create(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), &service.CreateProductInput{
		UserID:       *userID,
		CategoryID:   req.CategoryID,
		Name:         req.Name,
		Code:         req.Code,
		Unit:         req.Unit,
		Stock:        req.Stock,
		TrackStock:   req.TrackStock,
		ReorderLevel: req.ReorderLevel,
		SellingPrice: req.SellingPrice,
		HSNCode:      req.HSNCode,
		ExpiryDate:   req.ExpiryDate,
		Tiers:        tierInputs(req.Tiers),
		Notes:        req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Product created successfully", product)
}

// Get handles getting a single product by slug
func (h *ProductHandler) Get(c *gin.Context) {
	product, err := h.productService.GetProduct(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product retrieved successfully", product)
}

// Update handles updating a product
func (h *ProductHandler) Update(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	input := &service.UpdateProductInput{
		UserID:        *userID,
		ProductSlug:   c.Param("slug"),
		SkipUserCheck: IsSuperAdmin(c),
		CategoryID:    req.CategoryID,
		Name:          req.Name,
		Code:          req.Code,
		Unit:          req.Unit,
		TrackStock:    req.TrackStock,
		ReorderLevel:  req.ReorderLevel,
		SellingPrice:  req.SellingPrice,
		HSNCode:       req.HSNCode,
		ExpiryDate:    req.ExpiryDate,
		Notes:         req.Notes,
	}
	if req.Tiers != nil {
		tiers := tierInputs(*req.Tiers)
		input.Tiers = &tiers
	}

	product, err := h.productService.UpdateProduct(ScopedContext(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product updated successfully", product)
}

// Delete handles deleting a product
func (h *ProductHandler) Delete(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	err := h.productService.DeleteProduct(ScopedContext(c), *userID, c.Param("slug"), IsSuperAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// GetLowStock handles listing products at or below their reorder level
func (h *ProductHandler) GetLowStock(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	products, err := h.productService.GetLowStockProducts(ScopedContext(c), *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Low stock products retrieved successfully", products)
}

// GetExpiring handles listing products expiring within the next few days
func (h *ProductHandler) GetExpiring(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	products, err := h.productService.GetExpiringProducts(ScopedContext(c), *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Expiring products retrieved successfully", products)
}

// Import handles bulk product creation from an uploaded CSV file.
// Expected columns: name, code, unit, stock, reorder_level, selling_price,
// hsn_code, category, notes. The first row is treated as a header.
func (h *ProductHandler) Import(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "CSV file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "Unable to read uploaded file")
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		response.BadRequest(c, "Invalid CSV file: "+err.Error())
		return
	}
	if len(records) < 2 {
		response.BadRequest(c, "CSV file has no data rows")
		return
	}

	rows := make([]service.ImportProductRow, 0, len(records)-1)
	for _, record := range records[1:] {
		rows = append(rows, importRow(record))
	}

	result, err := h.productService.ImportProducts(c.Request.Context(), *userID, rows)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product import completed", result)
}

func importRow(record []string) service.ImportProductRow {
	field := func(i int) string {
		if i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}
	number := func(i int) float64 {
		v, _ := strconv.ParseFloat(field(i), 64)
		return v
	}

	return service.ImportProductRow{
		Name:         field(0),
		Code:         field(1),
		Unit:         field(2),
		Stock:        number(3),
		ReorderLevel: number(4),
		SellingPrice: number(5),
		HSNCode:      field(6),
		CategoryName: field(7),
		Notes:        field(8),
	}
}

func tierInputs(tiers []request.PriceTierRequest) []service.PriceTierInput {
	inputs := make([]service.PriceTierInput, 0, len(tiers))
	for _, t := range tiers {
		inputs = append(inputs, service.PriceTierInput{
			Code:  t.Code,
			Label: t.Label,
			Price: t.Price,
		})
	}
	return inputs
}

// CategoryHandler handles category-related HTTP requests
type CategoryHandler struct {
	categoryService *service.CategoryService
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// List handles listing categories
func (h *CategoryHandler) List(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))
	search := c.Query("search")

	params := &pagination.PaginationParams{
		Page:    page,
		PerPage: perPage,
	}

	result, err := h.categoryService.ListCategories(ScopedContext(c), *userID, params, search, IsSuperAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Categories retrieved successfully", result)
}

// Create handles creating a category
func (h *CategoryHandler) Create(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	category, err := h.categoryService.CreateCategory(c.Request.Context(), *userID, req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Category created successfully", category)
}

// Get handles getting a single category by slug
func (h *CategoryHandler) Get(c *gin.Context) {
	category, err := h.categoryService.GetCategory(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Category retrieved successfully", category)
}

// Update handles updating a category
func (h *CategoryHandler) Update(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	category, err := h.categoryService.UpdateCategory(ScopedContext(c), *userID, c.Param("slug"), req.Name, IsSuperAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Category updated successfully", category)
}

// Delete handles deleting a category
func (h *CategoryHandler) Delete(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	if err := h.categoryService.DeleteCategory(ScopedContext(c), *userID, c.Param("slug"), IsSuperAdmin(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
