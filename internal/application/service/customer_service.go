package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/bakehouse-api/internal/domain/entity"
	"github.com/sangkips/bakehouse-api/internal/domain/enum"
	"github.com/sangkips/bakehouse-api/internal/domain/repository"
	infraRepo "github.com/sangkips/bakehouse-api/internal/infrastructure/repository"
	"github.com/sangkips/bakehouse-api/pkg/apperror"
	"github.com/sangkips/bakehouse-api/pkg/pagination"
)

// CustomerService handles customer-related operations
type CustomerService struct {
	customerRepo repository.CustomerRepository
}

// NewCustomerService creates a new customer service
func NewCustomerService(customerRepo repository.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// CreateCustomerInput represents the create customer input
type CreateCustomerInput struct {
	UserID  uuid.UUID
	Name    string
	Phone   *string
	Email   *string
	Address *string
	Type    enum.CustomerType
	GSTIN   *string
}

// CreateCustomer creates a new customer. Business customers must carry a
// GSTIN so tax splitting has a state to compare against.
func (s *CustomerService) CreateCustomer(ctx context.Context, input *CreateCustomerInput) (*entity.Customer, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}

	if input.Type == enum.CustomerTypeBusiness {
		if input.GSTIN == nil || len(strings.TrimSpace(*input.GSTIN)) < 2 {
			return nil, apperror.NewBadRequestError("Business customers require a GSTIN")
		}
	}

	if input.Phone != nil && *input.Phone != "" {
		existing, err := s.customerRepo.GetByPhone(ctx, *input.Phone)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, apperror.NewConflictError("A customer with this phone number already exists")
		}
	}

	customer := &entity.Customer{
		TenantID: tenantID,
		UserID:   input.UserID,
		Name:     input.Name,
		Phone:    input.Phone,
		Email:    input.Email,
		Address:  input.Address,
		Type:     input.Type,
		GSTIN:    input.GSTIN,
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}

	return customer, nil
}

// GetCustomer retrieves a customer by ID
func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	return customer, nil
}

// ListCustomers lists customers with pagination and search
func (s *CustomerService) ListCustomers(ctx context.Context, userID uuid.UUID, params *pagination.PaginationParams, search string, skipUserFilter bool) (*pagination.PaginatedResult[entity.Customer], error) {
	customers, total, err := s.customerRepo.List(ctx, userID, params, search, skipUserFilter)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(customers, pag), nil
}

// UpdateCustomerInput represents the update customer input
type UpdateCustomerInput struct {
	CustomerID uuid.UUID
	Name       *string
	Phone      *string
	Email      *string
	Address    *string
	Type       *enum.CustomerType
	GSTIN      *string
}

// UpdateCustomer updates a customer. Committed sales keep their snapshot
// of the old identity.
func (s *CustomerService) UpdateCustomer(ctx context.Context, input *UpdateCustomerInput) (*entity.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}

	if input.Phone != nil && (customer.Phone == nil || *input.Phone != *customer.Phone) {
		existing, err := s.customerRepo.GetByPhone(ctx, *input.Phone)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != customer.ID {
			return nil, apperror.NewConflictError("A customer with this phone number already exists")
		}
		customer.Phone = input.Phone
	}

	if input.Name != nil {
		customer.Name = *input.Name
	}
	if input.Email != nil {
		customer.Email = input.Email
	}
	if input.Address != nil {
		customer.Address = input.Address
	}
	if input.Type != nil {
		customer.Type = *input.Type
	}
	if input.GSTIN != nil {
		customer.GSTIN = input.GSTIN
	}

	if customer.Type == enum.CustomerTypeBusiness {
		if customer.GSTIN == nil || len(strings.TrimSpace(*customer.GSTIN)) < 2 {
			return nil, apperror.NewBadRequestError("Business customers require a GSTIN")
		}
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}

	return customer, nil
}

// DeleteCustomer deletes a customer
func (s *CustomerService) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if customer == nil {
		return apperror.NewNotFoundError("Customer")
	}

	return s.customerRepo.Delete(ctx, customer.ID)
}
