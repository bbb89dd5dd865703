package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/bakehouse-api/internal/domain/entity"
	"github.com/sangkips/bakehouse-api/internal/domain/enum"
	"github.com/sangkips/bakehouse-api/internal/domain/repository"
	infraRepo "github.com/sangkips/bakehouse-api/internal/infrastructure/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// stockRepoMock stands in for the stock entry repository; the real one
// leans on Postgres expressions the test database does not support.
type stockRepoMock struct {
	mock.Mock
}

func (m *stockRepoMock) Create(ctx context.Context, entry *entity.StockEntry, delta float64) error {
	args := m.Called(ctx, entry, delta)
	return args.Error(0)
}

func (m *stockRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*entity.StockEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.StockEntry), args.Error(1)
}

func (m *stockRepoMock) List(ctx context.Context, params *repository.StockEntryFilterParams) ([]entity.StockEntry, int64, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]entity.StockEntry), args.Get(1).(int64), args.Error(2)
}

func newStockTestEnv(t *testing.T) (*StockService, *stockRepoMock, *saleTestEnv) {
	t.Helper()

	env := newSaleTestEnv(t)
	repo := &stockRepoMock{}
	svc := NewStockService(repo, infraRepo.NewProductRepository(env.db))
	return svc, repo, env
}

func TestRecordEntry_ProductionAddsStock(t *testing.T) {
	svc, repo, env := newStockTestEnv(t)
	bread := env.seedProduct(t, "Sourdough", 9000, 10, true)

	repo.On("Create", mock.Anything, mock.AnythingOfType("*entity.StockEntry"), float64(12)).
		Run(func(args mock.Arguments) {
			entry := args.Get(1).(*entity.StockEntry)
			entry.ID = uuid.New()
			repo.On("GetByID", mock.Anything, entry.ID).Return(entry, nil)
		}).
		Return(nil)

	entry, err := svc.RecordEntry(env.ctx, &RecordEntryInput{
		UserID:    env.userID,
		ProductID: bread.ID,
		Type:      enum.StockEntryProduction,
		Quantity:  12,
	})
	require.NoError(t, err)

	assert.Equal(t, enum.StockEntryProduction, entry.Type)
	assert.Equal(t, env.tenantID, entry.TenantID)
	repo.AssertExpectations(t)
}

func TestRecordEntry_WriteoffSubtracts(t *testing.T) {
	svc, repo, env := newStockTestEnv(t)
	bread := env.seedProduct(t, "Sourdough", 9000, 10, true)

	repo.On("Create", mock.Anything, mock.AnythingOfType("*entity.StockEntry"), float64(-3)).
		Run(func(args mock.Arguments) {
			entry := args.Get(1).(*entity.StockEntry)
			entry.ID = uuid.New()
			repo.On("GetByID", mock.Anything, entry.ID).Return(entry, nil)
		}).
		Return(nil)

	reason := "expired"
	_, err := svc.RecordEntry(env.ctx, &RecordEntryInput{
		UserID:    env.userID,
		ProductID: bread.ID,
		Type:      enum.StockEntryWriteoff,
		Quantity:  3,
		Reason:    &reason,
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestRecordEntry_AdjustmentKeepsSign(t *testing.T) {
	svc, repo, env := newStockTestEnv(t)
	bread := env.seedProduct(t, "Sourdough", 9000, 10, true)

	repo.On("Create", mock.Anything, mock.AnythingOfType("*entity.StockEntry"), float64(-2.5)).
		Run(func(args mock.Arguments) {
			entry := args.Get(1).(*entity.StockEntry)
			entry.ID = uuid.New()
			repo.On("GetByID", mock.Anything, entry.ID).Return(entry, nil)
		}).
		Return(nil)

	_, err := svc.RecordEntry(env.ctx, &RecordEntryInput{
		UserID:    env.userID,
		ProductID: bread.ID,
		Type:      enum.StockEntryAdjustment,
		Quantity:  -2.5,
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestRecordEntry_QuantityValidation(t *testing.T) {
	svc, _, env := newStockTestEnv(t)
	bread := env.seedProduct(t, "Sourdough", 9000, 10, true)

	_, err := svc.RecordEntry(env.ctx, &RecordEntryInput{
		UserID: env.userID, ProductID: bread.ID, Type: enum.StockEntryProduction, Quantity: 0,
	})
	assertAppError(t, err, http.StatusBadRequest, "Production quantity must be greater than zero")

	_, err = svc.RecordEntry(env.ctx, &RecordEntryInput{
		UserID: env.userID, ProductID: bread.ID, Type: enum.StockEntryWriteoff, Quantity: -1,
	})
	assertAppError(t, err, http.StatusBadRequest, "Write-off quantity must be greater than zero")

	_, err = svc.RecordEntry(env.ctx, &RecordEntryInput{
		UserID: env.userID, ProductID: bread.ID, Type: enum.StockEntryAdjustment, Quantity: 0,
	})
	assertAppError(t, err, http.StatusBadRequest, "Adjustment quantity cannot be zero")
}

func TestRecordEntry_UnknownProduct(t *testing.T) {
	svc, _, env := newStockTestEnv(t)

	_, err := svc.RecordEntry(env.ctx, &RecordEntryInput{
		UserID: env.userID, ProductID: uuid.New(), Type: enum.StockEntryProduction, Quantity: 5,
	})
	assertAppError(t, err, http.StatusNotFound, "Product not found")
}
