package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, supplier Supplier) error
	GetByID(ctx context.Context, tenantID, id snowflake.ID) (*Supplier, error)
	ListByTenant(ctx context.Context, tenantID snowflake.ID) ([]Supplier, error)
	Update(ctx context.Context, supplier Supplier) error
	Delete(ctx context.Context, tenantID, id snowflake.ID) error

	// CountCatalogReferences reports how many catalog entries still point
	// at the supplier. Deletion is blocked while this is non-zero.
	CountCatalogReferences(ctx context.Context, id snowflake.ID) (int64, error)
}
