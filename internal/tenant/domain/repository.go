package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, tenant Tenant) error
	GetByID(ctx context.Context, id snowflake.ID) (*Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*Tenant, error)
	List(ctx context.Context) ([]Tenant, error)
	Update(ctx context.Context, tenant Tenant) error

	// DebitSMSBalance atomically subtracts amount from the tenant's SMS
	// balance, failing with ErrInsufficientSMSBalance when the balance
	// would go negative. A ledger entry is written on success.
	DebitSMSBalance(ctx context.Context, id snowflake.ID, amount int64, reference string) error
	CreditSMSBalance(ctx context.Context, id snowflake.ID, amount int64, reference string) error
}
