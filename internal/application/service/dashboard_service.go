package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bakehouse-api/internal/domain/repository"
	"github.com/sangkips/bakehouse-api/internal/infrastructure/cache"
	infraRepo "github.com/sangkips/bakehouse-api/internal/infrastructure/repository"
	"github.com/sangkips/bakehouse-api/pkg/pagination"
)

const dashboardCacheTTL = 2 * time.Minute

// DashboardService aggregates counter statistics for the storefront
// dashboard. Results are cached per tenant since the dashboard polls.
type DashboardService struct {
	analyticsRepo repository.AnalyticsRepository
	productRepo   repository.ProductRepository
	customerRepo  repository.CustomerRepository
	bookingRepo   repository.BookingRepository
	cache         cache.Cache
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	analyticsRepo repository.AnalyticsRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	bookingRepo repository.BookingRepository,
	c cache.Cache,
) *DashboardService {
	return &DashboardService{
		analyticsRepo: analyticsRepo,
		productRepo:   productRepo,
		customerRepo:  customerRepo,
		bookingRepo:   bookingRepo,
		cache:         c,
	}
}

// DashboardStats represents dashboard statistics
type DashboardStats struct {
	TotalCustomers   int64                `json:"total_customers"`
	TotalProducts    int64                `json:"total_products"`
	TotalRevenue     float64              `json:"total_revenue"`
	MonthlyRevenue   float64              `json:"monthly_revenue"`
	TotalDue         float64              `json:"total_due"`
	LowStockCount    int64                `json:"low_stock_count"`
	ExpiringCount    int64                `json:"expiring_count"`
	UpcomingBookings int64                `json:"upcoming_bookings"`
	DailySalesData   []DailySalesPoint    `json:"daily_sales_data"`
	CategorySales    []CategorySalesPoint `json:"category_sales_data"`
	TopProducts      []TopProductPoint    `json:"top_products"`
}

// DailySalesPoint represents a daily sales data point
type DailySalesPoint struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	GST     float64 `json:"gst"`
}

// CategorySalesPoint represents sales by category
type CategorySalesPoint struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// TopProductPoint represents one best-selling product
type TopProductPoint struct {
	Name         string  `json:"name"`
	Code         string  `json:"code"`
	QuantitySold float64 `json:"quantity_sold"`
	Revenue      float64 `json:"revenue"`
}

// GetDashboardStats returns dashboard statistics
func (s *DashboardService) GetDashboardStats(ctx context.Context, userID uuid.UUID) (*DashboardStats, error) {
	cacheKey := dashboardCacheKey(ctx)
	var cached DashboardStats
	if hit, err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	stats := &DashboardStats{}

	paginationParams := pagination.DefaultPagination()
	paginationParams.PerPage = 1 // We only need the count

	_, customerCount, err := s.customerRepo.List(ctx, userID, paginationParams, "", true)
	if err != nil {
		return nil, err
	}
	stats.TotalCustomers = customerCount

	productParams := &repository.ProductFilterParams{
		Pagination:     paginationParams,
		SkipUserFilter: true,
	}
	_, productCount, err := s.productRepo.List(ctx, userID, productParams)
	if err != nil {
		return nil, err
	}
	stats.TotalProducts = productCount

	lowStock, err := s.productRepo.GetLowStock(ctx, uuid.Nil)
	if err != nil {
		return nil, err
	}
	stats.LowStockCount = int64(len(lowStock))

	expiring, err := s.productRepo.GetExpiringSoon(ctx, uuid.Nil)
	if err != nil {
		return nil, err
	}
	stats.ExpiringCount = int64(len(expiring))

	upcoming, err := s.bookingRepo.GetUpcoming(ctx, 7)
	if err != nil {
		return nil, err
	}
	stats.UpcomingBookings = int64(len(upcoming))

	totalRevenue, err := s.analyticsRepo.GetTotalRevenue(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalRevenue = float64(totalRevenue) / 100

	monthlyRevenue, err := s.analyticsRepo.GetMonthlyRevenue(ctx)
	if err != nil {
		return nil, err
	}
	stats.MonthlyRevenue = float64(monthlyRevenue) / 100

	totalDue, err := s.analyticsRepo.GetTotalDue(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalDue = float64(totalDue) / 100

	daily, err := s.analyticsRepo.GetDailySales(ctx, 7)
	if err != nil {
		return nil, err
	}
	stats.DailySalesData = make([]DailySalesPoint, 0, len(daily))
	for _, d := range daily {
		stats.DailySalesData = append(stats.DailySalesData, DailySalesPoint{
			Date:    d.Date.Format("Jan 02"),
			Revenue: float64(d.Revenue) / 100,
			GST:     float64(d.GST) / 100,
		})
	}

	byCategory, err := s.analyticsRepo.GetSalesByCategory(ctx)
	if err != nil {
		return nil, err
	}
	stats.CategorySales = make([]CategorySalesPoint, 0, len(byCategory))
	for _, c := range byCategory {
		stats.CategorySales = append(stats.CategorySales, CategorySalesPoint{
			Category:   c.CategoryName,
			Amount:     float64(c.TotalSales) / 100,
			Percentage: c.Percentage,
		})
	}

	topProducts, err := s.analyticsRepo.GetTopProducts(ctx, 5)
	if err != nil {
		return nil, err
	}
	stats.TopProducts = make([]TopProductPoint, 0, len(topProducts))
	for _, p := range topProducts {
		stats.TopProducts = append(stats.TopProducts, TopProductPoint{
			Name:         p.ProductName,
			Code:         p.ProductCode,
			QuantitySold: p.QuantitySold,
			Revenue:      float64(p.Revenue) / 100,
		})
	}

	if err := s.cache.SetJSON(ctx, cacheKey, stats, dashboardCacheTTL); err != nil {
		log.Printf("dashboard cache write failed: %v", err)
	}

	return stats, nil
}

// GSTReport summarises GST collected over a date range
type GSTReport struct {
	From  string  `json:"from"`
	To    string  `json:"to"`
	CGST  float64 `json:"cgst"`
	SGST  float64 `json:"sgst"`
	IGST  float64 `json:"igst"`
	Total float64 `json:"total"`
}

// GetGSTReport returns GST collected between two dates
func (s *DashboardService) GetGSTReport(ctx context.Context, from, to time.Time) (*GSTReport, error) {
	cgst, sgst, igst, err := s.analyticsRepo.GetGSTCollected(ctx, from, to)
	if err != nil {
		return nil, err
	}

	return &GSTReport{
		From:  from.Format("2006-01-02"),
		To:    to.Format("2006-01-02"),
		CGST:  float64(cgst) / 100,
		SGST:  float64(sgst) / 100,
		IGST:  float64(igst) / 100,
		Total: float64(cgst+sgst+igst) / 100,
	}, nil
}

// GetTopCustomers returns the highest-spending customers
func (s *DashboardService) GetTopCustomers(ctx context.Context, limit int) ([]repository.TopCustomerResult, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.analyticsRepo.GetTopCustomers(ctx, limit)
}

func dashboardCacheKey(ctx context.Context) string {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return "dashboard:stats:global"
	}
	return "dashboard:stats:" + tenantID.String()
}
