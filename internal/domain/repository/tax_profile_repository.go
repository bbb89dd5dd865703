package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/bakehouse-api/internal/domain/entity"
)

// TaxProfileRepository defines the interface for tax profile data operations
type TaxProfileRepository interface {
	// GetByTenant retrieves the tenant's tax profile, or nil when none exists
	GetByTenant(ctx context.Context, tenantID uuid.UUID) (*entity.TaxProfile, error)
	// Upsert creates or replaces the tenant's tax profile
	Upsert(ctx context.Context, profile *entity.TaxProfile) error
}
