package repository

import (
	"context"

	"github.com/BadRix90/e-invoice-saas/internal/domain/entity"
)

// CustomerRepository is the persistence port for customers.
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Customer, error)
	Update(ctx context.Context, customer *entity.Customer) error
	Delete(ctx context.Context, id string) error
}
