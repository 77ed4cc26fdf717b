package billing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/BadRix90/e-invoice-saas/internal/application/dto"
	"github.com/BadRix90/e-invoice-saas/internal/domain"
	"github.com/BadRix90/e-invoice-saas/internal/domain/entity"
	"github.com/BadRix90/e-invoice-saas/internal/domain/repository"
)

// CustomerUseCase manages a tenant's customer master data.
type CustomerUseCase struct {
	repo repository.CustomerRepository
}

// NewCustomerUseCase builds the use case.
func NewCustomerUseCase(repo repository.CustomerRepository) *CustomerUseCase {
	return &CustomerUseCase{repo: repo}
}

// Create creates a new customer. Business customers need a company name,
// private ones a first or last name.
func (uc *CustomerUseCase) Create(ctx context.Context, tenantID string, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	if in.CustomerNumber == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.IsBusiness && in.CompanyName == "" {
		return nil, domain.ErrInvalidInput
	}
	if !in.IsBusiness && in.FirstName == "" && in.LastName == "" {
		return nil, domain.ErrInvalidInput
	}

	country := in.Country
	if country == "" {
		country = "DE"
	}
	paymentTerms := in.PaymentTermsDays
	if paymentTerms <= 0 {
		paymentTerms = 14
	}

	now := time.Now()
	customer := &entity.Customer{
		ID:               uuid.New().String(),
		TenantID:         tenantID,
		CustomerNumber:   in.CustomerNumber,
		IsBusiness:       in.IsBusiness,
		CompanyName:      in.CompanyName,
		FirstName:        in.FirstName,
		LastName:         in.LastName,
		Street:           in.Street,
		ZipCode:          in.ZipCode,
		City:             in.City,
		Country:          country,
		Email:            in.Email,
		Phone:            in.Phone,
		VatID:            in.VatID,
		LeitwegID:        in.LeitwegID,
		PaymentTermsDays: paymentTerms,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.repo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return toCustomerResponse(customer), nil
}

// GetByID loads a customer, tenant-scoped.
func (uc *CustomerUseCase) GetByID(ctx context.Context, tenantID, customerID string) (*dto.CustomerResponse, error) {
	customer, err := uc.tenantCustomer(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	return toCustomerResponse(customer), nil
}

// List returns a tenant's customers ordered by customer number.
func (uc *CustomerUseCase) List(ctx context.Context, tenantID string, page dto.PageRequest) ([]*dto.CustomerResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.ListByTenant(ctx, tenantID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toCustomerResponse(c))
	}
	return out, nil
}

// Update replaces the editable fields of a customer.
func (uc *CustomerUseCase) Update(ctx context.Context, tenantID, customerID string, in dto.UpdateCustomerRequest) (*dto.CustomerResponse, error) {
	customer, err := uc.tenantCustomer(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	if in.IsBusiness && in.CompanyName == "" {
		return nil, domain.ErrInvalidInput
	}

	customer.IsBusiness = in.IsBusiness
	customer.CompanyName = in.CompanyName
	customer.FirstName = in.FirstName
	customer.LastName = in.LastName
	customer.Street = in.Street
	customer.ZipCode = in.ZipCode
	customer.City = in.City
	if in.Country != "" {
		customer.Country = in.Country
	}
	customer.Email = in.Email
	customer.Phone = in.Phone
	customer.VatID = in.VatID
	customer.LeitwegID = in.LeitwegID
	if in.PaymentTermsDays > 0 {
		customer.PaymentTermsDays = in.PaymentTermsDays
	}
	customer.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, customer); err != nil {
		return nil, err
	}
	return toCustomerResponse(customer), nil
}

// Delete removes a customer.
func (uc *CustomerUseCase) Delete(ctx context.Context, tenantID, customerID string) error {
	customer, err := uc.tenantCustomer(ctx, tenantID, customerID)
	if err != nil {
		return err
	}
	return uc.repo.Delete(ctx, customer.ID)
}

func (uc *CustomerUseCase) tenantCustomer(ctx context.Context, tenantID, customerID string) (*entity.Customer, error) {
	customer, err := uc.repo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil || customer.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	return customer, nil
}

func toCustomerResponse(c *entity.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:               c.ID,
		TenantID:         c.TenantID,
		CustomerNumber:   c.CustomerNumber,
		IsBusiness:       c.IsBusiness,
		DisplayName:      c.DisplayName(),
		CompanyName:      c.CompanyName,
		FirstName:        c.FirstName,
		LastName:         c.LastName,
		Street:           c.Street,
		ZipCode:          c.ZipCode,
		City:             c.City,
		Country:          c.Country,
		Email:            c.Email,
		Phone:            c.Phone,
		VatID:            c.VatID,
		LeitwegID:        c.LeitwegID,
		PaymentTermsDays: c.PaymentTermsDays,
	}
}
