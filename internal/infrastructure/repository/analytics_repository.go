package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	domainRepo "github.com/sangkips/bakehouse-api/internal/domain/repository"
	"gorm.io/gorm"
)

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *gorm.DB) domainRepo.AnalyticsRepository {
	return &analyticsRepository{db: db}
}

// tenantOrNil returns the tenant ID from context, or uuid.Nil when missing.
// Raw aggregate queries match nothing for uuid.Nil, mirroring TenantScope's
// fail-safe behavior.
func tenantOrNil(ctx context.Context) uuid.UUID {
	tenantID, ok := GetTenantID(ctx)
	if !ok {
		return uuid.Nil
	}
	return tenantID
}

func (r *analyticsRepository) GetTopProducts(ctx context.Context, limit int) ([]domainRepo.TopProductResult, error) {
	var results []domainRepo.TopProductResult

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			p.id as product_id,
			p.name as product_name,
			p.code as product_code,
			COALESCE(SUM(si.quantity), 0) as quantity_sold,
			COALESCE(SUM(si.total), 0) as revenue
		FROM sale_items si
		JOIN products p ON p.id = si.product_id
		JOIN sales s ON s.id = si.sale_id
		WHERE s.status = 0 AND s.tenant_id = ?
		GROUP BY p.id, p.name, p.code
		ORDER BY revenue DESC
		LIMIT ?
	`, tenantOrNil(ctx), limit).Scan(&results).Error

	if err != nil {
		return nil, err
	}

	return results, nil
}

func (r *analyticsRepository) GetSalesByCategory(ctx context.Context) ([]domainRepo.CategorySalesResult, error) {
	var results []domainRepo.CategorySalesResult
	tenantID := tenantOrNil(ctx)

	// Total first, for percentage calculation
	var totalSales int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(si.total), 0)
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		WHERE s.status = 0 AND s.tenant_id = ?
	`, tenantID).Scan(&totalSales).Error
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).Raw(`
		SELECT
			COALESCE(c.id, '00000000-0000-0000-0000-000000000000') as category_id,
			COALESCE(c.name, 'Uncategorized') as category_name,
			COALESCE(SUM(si.total), 0) as total_sales,
			COUNT(DISTINCT s.id) as sale_count
		FROM sale_items si
		JOIN products p ON p.id = si.product_id
		LEFT JOIN categories c ON c.id = p.category_id
		JOIN sales s ON s.id = si.sale_id
		WHERE s.status = 0 AND s.tenant_id = ?
		GROUP BY c.id, c.name
		ORDER BY total_sales DESC
	`, tenantID).Scan(&results).Error

	if err != nil {
		return nil, err
	}

	for i := range results {
		if totalSales > 0 {
			results[i].Percentage = (float64(results[i].TotalSales) / float64(totalSales)) * 100
		}
	}

	return results, nil
}

func (r *analyticsRepository) GetTopCustomers(ctx context.Context, limit int) ([]domainRepo.TopCustomerResult, error) {
	var results []domainRepo.TopCustomerResult

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			c.id as customer_id,
			c.name as customer_name,
			COALESCE(SUM(s.total), 0) as total_spent,
			COUNT(s.id) as sale_count
		FROM sales s
		JOIN customers c ON c.id = s.customer_id
		WHERE s.status = 0 AND s.customer_id IS NOT NULL AND s.tenant_id = ?
		GROUP BY c.id, c.name
		ORDER BY total_spent DESC
		LIMIT ?
	`, tenantOrNil(ctx), limit).Scan(&results).Error

	if err != nil {
		return nil, err
	}

	return results, nil
}

func (r *analyticsRepository) GetDailySales(ctx context.Context, days int) ([]domainRepo.DailySalesResult, error) {
	results := make([]domainRepo.DailySalesResult, 0, days)
	now := time.Now()
	tenantID := tenantOrNil(ctx)

	for i := days - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i)
		startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
		endOfDay := startOfDay.Add(24 * time.Hour)

		var row struct {
			Revenue sql.NullInt64
			GST     sql.NullInt64
		}
		err := r.db.WithContext(ctx).Raw(`
			SELECT COALESCE(SUM(total), 0) as revenue, COALESCE(SUM(gst_amount), 0) as gst
			FROM sales
			WHERE status = 0 AND tenant_id = ?
			AND sale_date >= ? AND sale_date < ?
		`, tenantID, startOfDay, endOfDay).Scan(&row).Error

		if err != nil {
			return nil, err
		}

		results = append(results, domainRepo.DailySalesResult{
			Date:    startOfDay,
			Revenue: row.Revenue.Int64,
			GST:     row.GST.Int64,
		})
	}

	return results, nil
}

func (r *analyticsRepository) GetTotalRevenue(ctx context.Context) (int64, error) {
	var revenue int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(total), 0)
		FROM sales
		WHERE status = 0 AND tenant_id = ?
	`, tenantOrNil(ctx)).Scan(&revenue).Error

	return revenue, err
}

func (r *analyticsRepository) GetMonthlyRevenue(ctx context.Context) (int64, error) {
	now := time.Now()
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var revenue int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(total), 0)
		FROM sales
		WHERE status = 0 AND tenant_id = ? AND sale_date >= ?
	`, tenantOrNil(ctx), startOfMonth).Scan(&revenue).Error

	return revenue, err
}

func (r *analyticsRepository) GetTotalDue(ctx context.Context) (int64, error) {
	var due int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(due), 0)
		FROM sales
		WHERE status = 0 AND tenant_id = ?
	`, tenantOrNil(ctx)).Scan(&due).Error

	return due, err
}

func (r *analyticsRepository) GetGSTCollected(ctx context.Context, from, to time.Time) (int64, int64, int64, error) {
	var row struct {
		CGST sql.NullInt64
		SGST sql.NullInt64
		IGST sql.NullInt64
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(cgst), 0) as cgst,
		       COALESCE(SUM(sgst), 0) as sgst,
		       COALESCE(SUM(igst), 0) as igst
		FROM sales
		WHERE status = 0 AND tenant_id = ?
		AND sale_date >= ? AND sale_date <= ?
	`, tenantOrNil(ctx), from, to).Scan(&row).Error

	return row.CGST.Int64, row.SGST.Int64, row.IGST.Int64, err
}
