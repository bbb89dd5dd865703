package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/bakehouse-api/internal/domain/entity"
	"github.com/sangkips/bakehouse-api/internal/domain/repository"
	"github.com/sangkips/bakehouse-api/pkg/apperror"
	"github.com/sangkips/bakehouse-api/pkg/pagination"
	"github.com/sangkips/bakehouse-api/pkg/utils"
)

// TenantService handles bakery/store management operations
type TenantService struct {
	tenantRepo repository.TenantRepository
	userRepo   repository.UserRepository
}

// NewTenantService creates a new tenant service
func NewTenantService(tenantRepo repository.TenantRepository, userRepo repository.UserRepository) *TenantService {
	return &TenantService{
		tenantRepo: tenantRepo,
		userRepo:   userRepo,
	}
}

// CreateTenantInput represents the create tenant input
type CreateTenantInput struct {
	Name    string
	OwnerID uuid.UUID
}

// CreateTenant creates a new store with default settings and makes the
// creator its owner.
func (s *TenantService) CreateTenant(ctx context.Context, input *CreateTenantInput) (*entity.Tenant, error) {
	slug := utils.Slugify(input.Name)

	exists, err := s.tenantRepo.SlugExists(ctx, slug)
	if err != nil {
		return nil, err
	}
	if exists {
		// Keep the slug unique without forcing the caller to rename
		slug = fmt.Sprintf("%s-%s", slug, uuid.New().String()[:8])
	}

	tenant := &entity.Tenant{
		Name:     input.Name,
		Slug:     slug,
		OwnerID:  input.OwnerID,
		Settings: entity.DefaultTenantSettings(),
	}

	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		return nil, err
	}

	membership := &entity.TenantMembership{
		TenantID: tenant.ID,
		UserID:   input.OwnerID,
		Role:     "owner",
	}
	if err := s.tenantRepo.AddMember(ctx, membership); err != nil {
		return nil, err
	}

	return tenant, nil
}

// GetTenant retrieves a tenant by ID
func (s *TenantService) GetTenant(ctx context.Context, id uuid.UUID) (*entity.Tenant, error) {
	tenant, err := s.tenantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, apperror.NewNotFoundError("Store")
	}
	return tenant, nil
}

// GetTenantBySlug retrieves a tenant by slug
func (s *TenantService) GetTenantBySlug(ctx context.Context, slug string) (*entity.Tenant, error) {
	tenant, err := s.tenantRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, apperror.NewNotFoundError("Store")
	}
	return tenant, nil
}

// GetUserTenants retrieves all stores a user belongs to
func (s *TenantService) GetUserTenants(ctx context.Context, userID uuid.UUID, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Tenant], error) {
	tenants, total, err := s.tenantRepo.GetUserTenants(ctx, userID, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(tenants, pag), nil
}

// ListAllTenants retrieves all stores (super admin)
func (s *TenantService) ListAllTenants(ctx context.Context, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Tenant], error) {
	tenants, total, err := s.tenantRepo.ListAll(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(tenants, pag), nil
}

// UpdateTenantInput represents the update tenant input
type UpdateTenantInput struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	Name     *string
	Settings *entity.TenantSettings
}

// UpdateTenant updates a store's name or settings. Only the owner or a
// tenant admin may change these.
func (s *TenantService) UpdateTenant(ctx context.Context, input *UpdateTenantInput) (*entity.Tenant, error) {
	tenant, err := s.GetTenant(ctx, input.TenantID)
	if err != nil {
		return nil, err
	}

	if err := s.requireAdmin(ctx, tenant, input.UserID); err != nil {
		return nil, err
	}

	if input.Name != nil && *input.Name != "" {
		tenant.Name = *input.Name
	}
	if input.Settings != nil {
		tenant.Settings = *input.Settings
	}

	if err := s.tenantRepo.Update(ctx, tenant); err != nil {
		return nil, err
	}

	return tenant, nil
}

// AddMemberInput represents the add member input
type AddMemberInput struct {
	TenantID    uuid.UUID
	RequesterID uuid.UUID
	Email       string
	Role        string
}

// AddMember invites a user to a store by email
func (s *TenantService) AddMember(ctx context.Context, input *AddMemberInput) (*entity.TenantMembership, error) {
	tenant, err := s.GetTenant(ctx, input.TenantID)
	if err != nil {
		return nil, err
	}

	if err := s.requireAdmin(ctx, tenant, input.RequesterID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}

	isMember, err := s.tenantRepo.IsMember(ctx, input.TenantID, user.ID)
	if err != nil {
		return nil, err
	}
	if isMember {
		return nil, apperror.NewConflictError("User is already a member of this store")
	}

	role := input.Role
	if role == "" {
		role = "member"
	}

	membership := &entity.TenantMembership{
		TenantID: input.TenantID,
		UserID:   user.ID,
		Role:     role,
	}
	if err := s.tenantRepo.AddMember(ctx, membership); err != nil {
		return nil, err
	}

	return s.tenantRepo.GetMembership(ctx, input.TenantID, user.ID)
}

// RemoveMember removes a user from a store. The owner cannot be removed.
func (s *TenantService) RemoveMember(ctx context.Context, tenantID, requesterID, userID uuid.UUID) error {
	tenant, err := s.GetTenant(ctx, tenantID)
	if err != nil {
		return err
	}

	if err := s.requireAdmin(ctx, tenant, requesterID); err != nil {
		return err
	}

	if tenant.OwnerID == userID {
		return apperror.NewBadRequestError("The store owner cannot be removed")
	}

	return s.tenantRepo.RemoveMember(ctx, tenantID, userID)
}

// GetMembers retrieves all members of a store
func (s *TenantService) GetMembers(ctx context.Context, tenantID, requesterID uuid.UUID) ([]entity.TenantMembership, error) {
	isMember, err := s.tenantRepo.IsMember(ctx, tenantID, requesterID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, apperror.ErrForbidden
	}

	members, err := s.tenantRepo.GetMembers(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	for i := range members {
		members[i].PopulateUserDetails()
	}
	return members, nil
}

// UpdateMemberRole changes a member's role within a store
func (s *TenantService) UpdateMemberRole(ctx context.Context, tenantID, requesterID, userID uuid.UUID, role string) error {
	tenant, err := s.GetTenant(ctx, tenantID)
	if err != nil {
		return err
	}

	if err := s.requireAdmin(ctx, tenant, requesterID); err != nil {
		return err
	}

	if tenant.OwnerID == userID {
		return apperror.NewBadRequestError("The store owner's role cannot be changed")
	}

	return s.tenantRepo.UpdateMemberRole(ctx, tenantID, userID, role)
}

// DeleteTenant soft-deletes a store. Only the owner may do this.
func (s *TenantService) DeleteTenant(ctx context.Context, tenantID, requesterID uuid.UUID) error {
	tenant, err := s.GetTenant(ctx, tenantID)
	if err != nil {
		return err
	}

	if tenant.OwnerID != requesterID {
		return apperror.ErrForbidden
	}

	return s.tenantRepo.Delete(ctx, tenantID)
}

func (s *TenantService) requireAdmin(ctx context.Context, tenant *entity.Tenant, userID uuid.UUID) error {
	if tenant.OwnerID == userID {
		return nil
	}
	membership, err := s.tenantRepo.GetMembership(ctx, tenant.ID, userID)
	if err != nil {
		return err
	}
	if membership == nil || membership.Role != "admin" {
		return apperror.ErrForbidden
	}
	return nil
}
