package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TopProductResult represents a product's sales performance
type TopProductResult struct {
	ProductID    uuid.UUID
	ProductName  string
	ProductCode  string
	QuantitySold float64
	Revenue      int64 // paise
}

// CategorySalesResult represents sales aggregated by category
type CategorySalesResult struct {
	CategoryID   uuid.UUID
	CategoryName string
	TotalSales   int64 // paise
	SaleCount    int
	Percentage   float64
}

// TopCustomerResult represents a customer's spending data
type TopCustomerResult struct {
	CustomerID   uuid.UUID
	CustomerName string
	TotalSpent   int64 // paise
	SaleCount    int
}

// DailySalesResult represents sales data for a single day
type DailySalesResult struct {
	Date    time.Time
	Revenue int64 // paise
	GST     int64 // paise
}

// AnalyticsRepository defines interface for analytics/aggregation queries
type AnalyticsRepository interface {
	// GetTopProducts returns top selling products by revenue
	GetTopProducts(ctx context.Context, limit int) ([]TopProductResult, error)

	// GetSalesByCategory returns sales aggregated by category with percentages
	GetSalesByCategory(ctx context.Context) ([]CategorySalesResult, error)

	// GetTopCustomers returns top customers by total spending
	GetTopCustomers(ctx context.Context, limit int) ([]TopCustomerResult, error)

	// GetDailySales returns daily sales data for the last N days
	GetDailySales(ctx context.Context, days int) ([]DailySalesResult, error)

	// GetTotalRevenue returns total revenue from completed sales in paise
	GetTotalRevenue(ctx context.Context) (int64, error)

	// GetMonthlyRevenue returns revenue for the current month in paise
	GetMonthlyRevenue(ctx context.Context) (int64, error)

	// GetTotalDue returns the outstanding balance across completed sales in paise
	GetTotalDue(ctx context.Context) (int64, error)

	// GetGSTCollected returns CGST/SGST/IGST collected between two dates in paise
	GetGSTCollected(ctx context.Context, from, to time.Time) (cgst, sgst, igst int64, err error)
}
