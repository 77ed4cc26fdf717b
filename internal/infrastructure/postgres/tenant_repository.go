package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/BadRix90/e-invoice-saas/internal/domain"
	"github.com/BadRix90/e-invoice-saas/internal/domain/entity"
	"github.com/BadRix90/e-invoice-saas/internal/domain/repository"
)

var _ repository.TenantRepository = (*TenantRepo)(nil)

// TenantRepo implements TenantRepository (usable with pool or tx).
type TenantRepo struct {
	q Querier
}

// NewTenantRepository builds the adapter. Pass a pool or tx (Querier).
func NewTenantRepository(q Querier) *TenantRepo {
	return &TenantRepo{q: q}
}

func (r *TenantRepo) Create(ctx context.Context, tenant *entity.Tenant) error {
	if tenant.ID == "" {
		tenant.ID = uuid.New().String()
	}
	query := `
		INSERT INTO tenants (id, name, company_name, street, zip_code, city, country, tax_id, vat_id, email, phone, bank_name, iban, bic, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		tenant.ID, tenant.Name, nullIfEmpty(tenant.CompanyName),
		nullIfEmpty(tenant.Street), nullIfEmpty(tenant.ZipCode), nullIfEmpty(tenant.City), tenant.Country,
		nullIfEmpty(tenant.TaxID), nullIfEmpty(tenant.VatID),
		nullIfEmpty(tenant.Email), nullIfEmpty(tenant.Phone),
		nullIfEmpty(tenant.BankName), nullIfEmpty(tenant.IBAN), nullIfEmpty(tenant.BIC),
		tenant.IsActive, tenant.CreatedAt, tenant.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("tenant already exists: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("insert tenant: %w", err)
	}
	return nil
}

func (r *TenantRepo) GetByID(ctx context.Context, id string) (*entity.Tenant, error) {
	query := `
		SELECT id, name, COALESCE(company_name, ''), COALESCE(street, ''), COALESCE(zip_code, ''),
		       COALESCE(city, ''), country, COALESCE(tax_id, ''), COALESCE(vat_id, ''),
		       COALESCE(email, ''), COALESCE(phone, ''),
		       COALESCE(bank_name, ''), COALESCE(iban, ''), COALESCE(bic, ''),
		       is_active, created_at, updated_at
		FROM tenants WHERE id = $1`
	var t entity.Tenant
	err := r.q.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.CompanyName, &t.Street, &t.ZipCode,
		&t.City, &t.Country, &t.TaxID, &t.VatID,
		&t.Email, &t.Phone,
		&t.BankName, &t.IBAN, &t.BIC,
		&t.IsActive, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	return &t, nil
}

func (r *TenantRepo) Update(ctx context.Context, tenant *entity.Tenant) error {
	query := `
		UPDATE tenants
		SET name = $2, company_name = $3, street = $4, zip_code = $5, city = $6, country = $7,
		    tax_id = $8, vat_id = $9, email = $10, phone = $11,
		    bank_name = $12, iban = $13, bic = $14, is_active = $15, updated_at = $16
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		tenant.ID, tenant.Name, nullIfEmpty(tenant.CompanyName),
		nullIfEmpty(tenant.Street), nullIfEmpty(tenant.ZipCode), nullIfEmpty(tenant.City), tenant.Country,
		nullIfEmpty(tenant.TaxID), nullIfEmpty(tenant.VatID),
		nullIfEmpty(tenant.Email), nullIfEmpty(tenant.Phone),
		nullIfEmpty(tenant.BankName), nullIfEmpty(tenant.IBAN), nullIfEmpty(tenant.BIC),
		tenant.IsActive, tenant.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update tenant: %w", err)
	}
	return nil
}
