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

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implements CustomerRepository (usable with pool or tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository builds the adapter. Pass a pool or tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

const customerColumns = `
	id, tenant_id, customer_number, is_business,
	COALESCE(company_name, ''), COALESCE(first_name, ''), COALESCE(last_name, ''),
	COALESCE(street, ''), COALESCE(zip_code, ''), COALESCE(city, ''), country,
	COALESCE(email, ''), COALESCE(phone, ''), COALESCE(vat_id, ''), COALESCE(leitweg_id, ''),
	payment_terms_days, created_at, updated_at`

func (r *CustomerRepo) Create(ctx context.Context, customer *entity.Customer) error {
	if customer.ID == "" {
		customer.ID = uuid.New().String()
	}
	query := `
		INSERT INTO customers (id, tenant_id, customer_number, is_business, company_name, first_name, last_name,
		                       street, zip_code, city, country, email, phone, vat_id, leitweg_id,
		                       payment_terms_days, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		customer.ID, customer.TenantID, customer.CustomerNumber, customer.IsBusiness,
		nullIfEmpty(customer.CompanyName), nullIfEmpty(customer.FirstName), nullIfEmpty(customer.LastName),
		nullIfEmpty(customer.Street), nullIfEmpty(customer.ZipCode), nullIfEmpty(customer.City), customer.Country,
		nullIfEmpty(customer.Email), nullIfEmpty(customer.Phone), nullIfEmpty(customer.VatID), nullIfEmpty(customer.LeitwegID),
		customer.PaymentTermsDays, customer.CreatedAt, customer.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("customer number already exists: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	row := r.q.QueryRow(ctx, query, id)
	c, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

func (r *CustomerRepo) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Customer, error) {
	query := `SELECT ` + customerColumns + `
		FROM customers WHERE tenant_id = $1
		ORDER BY customer_number
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (r *CustomerRepo) Update(ctx context.Context, customer *entity.Customer) error {
	query := `
		UPDATE customers
		SET customer_number = $2, is_business = $3, company_name = $4, first_name = $5, last_name = $6,
		    street = $7, zip_code = $8, city = $9, country = $10,
		    email = $11, phone = $12, vat_id = $13, leitweg_id = $14,
		    payment_terms_days = $15, updated_at = $16
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		customer.ID, customer.CustomerNumber, customer.IsBusiness,
		nullIfEmpty(customer.CompanyName), nullIfEmpty(customer.FirstName), nullIfEmpty(customer.LastName),
		nullIfEmpty(customer.Street), nullIfEmpty(customer.ZipCode), nullIfEmpty(customer.City), customer.Country,
		nullIfEmpty(customer.Email), nullIfEmpty(customer.Phone), nullIfEmpty(customer.VatID), nullIfEmpty(customer.LeitwegID),
		customer.PaymentTermsDays, customer.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("customer number already exists: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("update customer: %w", err)
	}
	return nil
}

func (r *CustomerRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	return nil
}

func scanCustomer(row pgx.Row) (*entity.Customer, error) {
	var c entity.Customer
	err := row.Scan(
		&c.ID, &c.TenantID, &c.CustomerNumber, &c.IsBusiness,
		&c.CompanyName, &c.FirstName, &c.LastName,
		&c.Street, &c.ZipCode, &c.City, &c.Country,
		&c.Email, &c.Phone, &c.VatID, &c.LeitwegID,
		&c.PaymentTermsDays, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
