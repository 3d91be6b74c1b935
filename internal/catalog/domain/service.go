package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	List(ctx context.Context, req ListRequest) ([]ManagedService, error)
	GetByID(ctx context.Context, id snowflake.ID) (*ManagedService, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateRequest) (*UpdateResult, error)

	// SyncFromSupplier pulls the upstream service list and upserts it
	// into the tenant catalog. New entries get a default markup and are
	// created disabled until an admin reviews them.
	SyncFromSupplier(ctx context.Context, supplierID snowflake.ID) (*SyncResult, error)
}

type ListRequest struct {
	EnabledOnly bool `form:"enabled_only"`
}

type UpdateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ResalePrice *int64 `json:"resale_price"`
	Enabled     *bool  `json:"enabled"`
	MinQuantity *int   `json:"min_quantity"`
	MaxQuantity *int   `json:"max_quantity"`
}

// UpdateResult carries advisory warnings alongside the saved entry.
// A resale price at or below cost is legal but flagged.
type UpdateResult struct {
	Entry    *ManagedService `json:"entry"`
	Warnings []string        `json:"warnings,omitempty"`
}

type SyncResult struct {
	Created int              `json:"created"`
	Updated int              `json:"updated"`
	Entries []ManagedService `json:"entries"`
}

var (
	ErrInvalidTenant   = errors.New("invalid_tenant")
	ErrServiceNotFound = errors.New("service_not_found")
	ErrInvalidQuantity = errors.New("invalid_quantity_range")
	ErrInvalidPrice    = errors.New("invalid_price")
)
