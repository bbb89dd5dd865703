package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/bakehouse-api/internal/application/service"
	"github.com/sangkips/bakehouse-api/internal/presentation/http/dto/response"
)

// DashboardHandler handles dashboard and report HTTP requests
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetStats handles getting dashboard statistics
func (h *DashboardHandler) GetStats(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	stats, err := h.dashboardService.GetDashboardStats(ScopedContext(c), *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Dashboard stats retrieved successfully", stats)
}

// GetGSTReport handles the tax summary for a filing period. Defaults to
// the current calendar month when no range is given.
func (h *DashboardHandler) GetGSTReport(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 1, 0)

	if v := parseDateQuery(c.Query("date_from")); v != nil {
		from = *v
	}
	if v := parseDateQuery(c.Query("date_to")); v != nil {
		// Inclusive end date
		to = v.AddDate(0, 0, 1)
	}

	report, err := h.dashboardService.GetGSTReport(ScopedContext(c), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "GST report retrieved successfully", report)
}

// GetTopCustomers handles listing the highest spending customers
func (h *DashboardHandler) GetTopCustomers(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	customers, err := h.dashboardService.GetTopCustomers(ScopedContext(c), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Top customers retrieved successfully", customers)
}
