package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"

	"github.com/halopax/unlockd/internal/supplier/gateway"
)

type Service interface {
	Create(ctx context.Context, req CreateSupplierRequest) (*SupplierResponse, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Supplier, error)
	List(ctx context.Context) ([]SupplierResponse, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateSupplierRequest) error
	Delete(ctx context.Context, id snowflake.ID) error

	// ChooseForTenant resolves the supplier the next order should use.
	ChooseForTenant(ctx context.Context, tenantID snowflake.ID) (*Supplier, error)

	// Balance queries the upstream account balance of one supplier.
	Balance(ctx context.Context, id snowflake.ID) (*BalanceResponse, error)

	// Credentials unseals the supplier's API key for an outbound call.
	Credentials(supplier *Supplier) (gateway.Credentials, error)
}

type CreateSupplierRequest struct {
	Name     string `json:"name" binding:"required"`
	BaseURL  string `json:"base_url" binding:"required"`
	Username string `json:"username" binding:"required"`
	APIKey   string `json:"api_key" binding:"required"`
	Priority int    `json:"priority"`
}

type UpdateSupplierRequest struct {
	Name     string `json:"name"`
	BaseURL  string `json:"base_url"`
	Username string `json:"username"`
	APIKey   string `json:"api_key"`
	Active   *bool  `json:"active"`
	Priority *int   `json:"priority"`
}

type SupplierResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	BaseURL  string `json:"base_url"`
	Username string `json:"username"`
	Active   bool   `json:"active"`
	Priority int    `json:"priority"`
}

type BalanceResponse struct {
	Balance  string `json:"balance"`
	Currency string `json:"currency"`
}

var (
	ErrInvalidTenant      = errors.New("invalid_tenant")
	ErrInvalidSupplier    = errors.New("invalid_supplier")
	ErrSupplierNotFound   = errors.New("supplier_not_found")
	ErrNoActiveSupplier   = errors.New("no_active_supplier")
	ErrSupplierReferenced = errors.New("supplier_still_referenced")
)
