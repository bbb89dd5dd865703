package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/sangkips/bakehouse-api/internal/application/service"
	"github.com/sangkips/bakehouse-api/internal/config"
	"github.com/sangkips/bakehouse-api/internal/domain/entity"
	"github.com/sangkips/bakehouse-api/internal/infrastructure/cache"
	infraRepo "github.com/sangkips/bakehouse-api/internal/infrastructure/repository"
	"github.com/sangkips/bakehouse-api/pkg/sms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type saleHandlerFixture struct {
	router   *gin.Engine
	db       *gorm.DB
	tenantID uuid.UUID
	userID   uuid.UUID
}

func newSaleHandlerFixture(t *testing.T) *saleHandlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entity.Category{}, &entity.Product{}, &entity.PriceTier{}, &entity.Customer{},
		&entity.Sale{}, &entity.SaleItem{}, &entity.PaymentEntry{},
		&entity.BillSequence{}, &entity.TaxProfile{},
	))

	taxService := service.NewTaxService(
		infraRepo.NewTaxProfileRepository(db),
		cache.NewNoopCache(),
		config.GSTConfig{CGSTRate: 2.5, SGSTRate: 2.5, IGSTRate: 5, DefaultHSNCode: "1905"},
	)
	saleService := service.NewSaleService(
		infraRepo.NewSaleRepository(db),
		infraRepo.NewProductRepository(db),
		infraRepo.NewCustomerRepository(db),
		taxService,
		sms.NewNullNotifier(),
	)
	h := NewSaleHandler(saleService)

	f := &saleHandlerFixture{
		db:       db,
		tenantID: uuid.New(),
		userID:   uuid.New(),
	}

	router := gin.New()
	// Stands in for the auth and tenant middleware chain
	router.Use(func(c *gin.Context) {
		c.Set("user_id", f.userID)
		c.Set("user_email", "asha@bakehouse.test")
		ctx := infraRepo.WithTenant(c.Request.Context(), f.tenantID)
		c.Request = c.Request.WithContext(ctx)
	})
	router.POST("/sales", h.Commit)
	router.POST("/sales/preview", h.Preview)
	f.router = router

	return f
}

func (f *saleHandlerFixture) seedProduct(t *testing.T, name string, price int64, stock float64) *entity.Product {
	t.Helper()

	suffix := uuid.New().String()[:8]
	product := &entity.Product{
		TenantID:     f.tenantID,
		UserID:       f.userID,
		Name:         name,
		Slug:         fmt.Sprintf("%s-%s", name, suffix),
		Code:         fmt.Sprintf("P-%s", suffix),
		Unit:         "piece",
		Stock:        stock,
		TrackStock:   true,
		SellingPrice: price,
	}
	require.NoError(t, f.db.Create(product).Error)
	return product
}

func (f *saleHandlerFixture) postJSON(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestSaleHandler_CommitConvertsRupees(t *testing.T) {
	f := newSaleHandlerFixture(t)
	bread := f.seedProduct(t, "Sourdough", 9000, 10)

	rec := f.postJSON(t, "/sales", gin.H{
		"items":        []gin.H{{"product_id": bread.ID, "quantity": 2}},
		"amount_paid":  180,
		"payment_type": "cash",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var envelope struct {
		Success bool `json:"success"`
		Data    struct {
			BillNo       int64   `json:"bill_no"`
			CustomerName string  `json:"customer_name"`
			Total        float64 `json:"total"`
			Paid         float64 `json:"paid"`
			Due          float64 `json:"due"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))

	assert.True(t, envelope.Success)
	assert.Equal(t, int64(1), envelope.Data.BillNo)
	assert.Equal(t, "Walk-in", envelope.Data.CustomerName)
	assert.Equal(t, 180.0, envelope.Data.Total)
	assert.Equal(t, 180.0, envelope.Data.Paid)
	assert.Equal(t, 0.0, envelope.Data.Due)
}

func TestSaleHandler_CommitRejectsEmptyItems(t *testing.T) {
	f := newSaleHandlerFixture(t)

	rec := f.postJSON(t, "/sales", gin.H{"payment_type": "cash"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSaleHandler_PreviewComputesTotals(t *testing.T) {
	f := newSaleHandlerFixture(t)
	bread := f.seedProduct(t, "Sourdough", 9000, 10)

	rec := f.postJSON(t, "/sales/preview", gin.H{
		"items":          []gin.H{{"product_id": bread.ID, "quantity": 3}},
		"discount_type":  "percentage",
		"discount_value": 10,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Preview money goes over the wire as rupee decimals, like every
	// other endpoint
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, 270.0, envelope.Data["subtotal"])
	assert.Equal(t, 27.0, envelope.Data["discount_amount"])
	assert.Equal(t, 243.0, envelope.Data["taxable_amount"])
	assert.Equal(t, 243.0, envelope.Data["total"])
	assert.Equal(t, 0.0, envelope.Data["gst_amount"])
	assert.Equal(t, false, envelope.Data["has_gst"])
	assert.NotContains(t, envelope.Data, "SubTotal")

	// Nothing persisted
	var count int64
	require.NoError(t, f.db.Model(&entity.Sale{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSaleHandler_RequiresAuthenticatedUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewSaleHandler(nil)

	router := gin.New()
	router.POST("/sales/preview", h.Preview)

	req := httptest.NewRequest(http.MethodPost, "/sales/preview", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
