package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	CustomerID snowflake.ID
	Status     string
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, tenantID, id snowflake.ID) (*Order, error)
	List(ctx context.Context, tenantID snowflake.ID, filter ListFilter, limit int) ([]*Order, error)
	Update(ctx context.Context, order *Order) error

	// ListPendingSubmitted returns pending orders across all tenants
	// that were submitted to a supplier before the cutoff. Used by the
	// status poller.
	ListPendingSubmitted(ctx context.Context, before time.Time, limit int) ([]*Order, error)

	// MarkNotified claims the single notification slot for an order.
	// Returns false when another call already claimed it.
	MarkNotified(ctx context.Context, id snowflake.ID, at time.Time) (bool, error)

	// Cancel claims the pending-to-cancelled transition. Returns false
	// when the order is no longer pending.
	Cancel(ctx context.Context, id snowflake.ID, at time.Time) (bool, error)
}
