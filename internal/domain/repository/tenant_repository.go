package repository

import (
	"context"

	"github.com/BadRix90/e-invoice-saas/internal/domain/entity"
)

// TenantRepository is the persistence port for tenants.
type TenantRepository interface {
	Create(ctx context.Context, tenant *entity.Tenant) error
	GetByID(ctx context.Context, id string) (*entity.Tenant, error)
	Update(ctx context.Context, tenant *entity.Tenant) error
}
