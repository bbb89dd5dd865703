package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/bakehouse-api/internal/domain/entity"
	domainRepo "github.com/sangkips/bakehouse-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type taxProfileRepository struct {
	db *gorm.DB
}

// NewTaxProfileRepository creates a new tax profile repository
func NewTaxProfileRepository(db *gorm.DB) domainRepo.TaxProfileRepository {
	return &taxProfileRepository{db: db}
}

func (r *taxProfileRepository) GetByTenant(ctx context.Context, tenantID uuid.UUID) (*entity.TaxProfile, error) {
	var profile entity.TaxProfile
	err := r.db.WithContext(ctx).First(&profile, "tenant_id = ?", tenantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &profile, err
}

func (r *taxProfileRepository) Upsert(ctx context.Context, profile *entity.TaxProfile) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"gstin", "state_code", "enable_gst", "price_includes_gst",
			"cgst_rate", "sgst_rate", "igst_rate", "default_hsn_code", "updated_at",
		}),
	}).Create(profile).Error
}
