package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// PlaceOrder runs the full fulfillment sequence: validate, price,
	// debit, submit upstream, reconcile. A supplier-side failure after
	// the debit is not an error return, the result carries the
	// cancelled order and the refund confirmation instead.
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResult, error)

	// CheckStatus re-queries the supplier for an order that already has
	// an upstream correlation id and persists the re-derived state.
	CheckStatus(ctx context.Context, id snowflake.ID) (*StatusResult, error)

	GetByID(ctx context.Context, id snowflake.ID) (*Order, error)
	List(ctx context.Context, req ListRequest) ([]*Order, error)
}

type PlaceOrderRequest struct {
	CustomerID snowflake.ID `json:"customer_id" binding:"required"`
	ServiceID  snowflake.ID `json:"service_id" binding:"required"`
	Quantity   int          `json:"quantity"`
	IMEI       string       `json:"imei"`
	FileName   string       `json:"file_name"`
	FileData   string       `json:"file_data"`
}

type ListRequest struct {
	CustomerID snowflake.ID `form:"customer_id"`
	Status     string       `form:"status"`
	PageSize   int          `form:"page_size"`
}

// PlaceOrderResult is returned for every order that reached the
// database, including ones the supplier subsequently rejected.
type PlaceOrderResult struct {
	Order    *Order   `json:"order"`
	Refunded bool     `json:"refunded,omitempty"`
	Message  string   `json:"message,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

type StatusResult struct {
	Order    *Order   `json:"order"`
	Changed  bool     `json:"changed"`
	Refunded bool     `json:"refunded,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

var (
	ErrInvalidTenant      = errors.New("invalid_tenant")
	ErrOrderNotFound      = errors.New("order_not_found")
	ErrServiceUnavailable = errors.New("service_not_available")
	ErrInvalidQuantity    = errors.New("invalid_quantity")
	ErrInvalidIMEI        = errors.New("invalid_imei")
	ErrFileRequired       = errors.New("file_required")
	ErrNotSubmitted       = errors.New("order_not_submitted")
)
