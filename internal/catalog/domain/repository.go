package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	EnabledOnly bool
	SupplierID  snowflake.ID
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry ManagedService) error
	GetByID(ctx context.Context, tenantID, id snowflake.ID) (*ManagedService, error)
	List(ctx context.Context, tenantID snowflake.ID, filter ListFilter) ([]ManagedService, error)
	Update(ctx context.Context, entry ManagedService) error
	FindBySupplierService(ctx context.Context, tenantID, supplierID snowflake.ID, supplierServiceID string) (*ManagedService, error)
}
