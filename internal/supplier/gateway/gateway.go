// Package gateway normalizes calls against upstream unlocking APIs.
// The upstream protocol is loosely specified: field names vary between
// deployments, so every response goes through synonym-tolerant
// extraction and callers only ever see the typed Result.
package gateway

import (
	"context"
	"encoding/json"
	"strings"
)

// Credentials identify one supplier account. The API key arrives here
// already decrypted.
type Credentials struct {
	BaseURL  string
	Username string
	APIKey   string
}

// OrderInput carries the parameters for placing one upstream order.
// IMEI and file are mutually exclusive, either may be empty for
// generic services.
type OrderInput struct {
	ServiceID string
	IMEI      string
	FileName  string
	FileData  string
	Reference string
}

// Result is the normalized shape of an upstream order response.
type Result struct {
	Success         bool            `json:"success"`
	SupplierOrderID string          `json:"supplier_order_id,omitempty"`
	Status          string          `json:"status,omitempty"`
	Code            string          `json:"code,omitempty"`
	ErrorCode       string          `json:"error_code,omitempty"`
	ErrorMessage    string          `json:"error_message,omitempty"`
	Raw             json.RawMessage `json:"raw,omitempty"`
}

// Completed reports a terminal successful fulfillment.
func (r Result) Completed() bool {
	return strings.EqualFold(r.Status, "completed")
}

// Rejected reports a terminal upstream failure.
func (r Result) Rejected() bool {
	return strings.EqualFold(r.Status, "rejected")
}

// Balance is the upstream account balance. The amount is passed through
// as reported, upstream deployments disagree on its numeric format.
type Balance struct {
	Balance  string `json:"balance"`
	Currency string `json:"currency"`
}

// RemoteService is one entry of the upstream service list. Price is in
// minor currency units.
type RemoteService struct {
	ServiceID    string `json:"service_id"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	Kind         string `json:"kind"`
	Price        int64  `json:"price"`
	DeliveryTime string `json:"delivery_time"`
}

// Client is the outbound supplier API. Implementations return an error
// only for transport-level failures; upstream-reported failures come
// back as a Result with Success=false.
type Client interface {
	PlaceOrder(ctx context.Context, creds Credentials, input OrderInput) (*Result, error)
	CheckStatus(ctx context.Context, creds Credentials, supplierOrderID string) (*Result, error)
	Balance(ctx context.Context, creds Credentials) (*Balance, error)
	ListServices(ctx context.Context, creds Credentials) ([]RemoteService, error)
}
