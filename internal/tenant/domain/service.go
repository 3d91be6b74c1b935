package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, req CreateTenantRequest) (*TenantResponse, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Tenant, error)
	List(ctx context.Context) ([]TenantResponse, error)
	UpdateSMSSettings(ctx context.Context, id snowflake.ID, req SMSSettingsRequest) error
	CreditSMSBalance(ctx context.Context, id snowflake.ID, amount int64, reference string) error

	// SMSCredentials returns the tenant's sender id and the decrypted
	// provider key. Fails when SMS is not fully configured.
	SMSCredentials(ctx context.Context, tenant *Tenant) (senderID, apiKey string, err error)
}

type CreateTenantRequest struct {
	Name            string `json:"name" binding:"required"`
	CompanyName     string `json:"company_name"`
	SMSSegmentPrice int64  `json:"sms_segment_price"`
}

type SMSSettingsRequest struct {
	Enabled      bool   `json:"enabled"`
	SenderID     string `json:"sender_id"`
	APIKey       string `json:"api_key"`
	SegmentPrice int64  `json:"segment_price"`
}

type TenantResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Slug            string `json:"slug"`
	CompanyName     string `json:"company_name"`
	Status          string `json:"status"`
	SMSEnabled      bool   `json:"sms_enabled"`
	SMSBalance      int64  `json:"sms_balance"`
	SMSSegmentPrice int64  `json:"sms_segment_price"`
}

var (
	ErrTenantNotFound           = errors.New("tenant_not_found")
	ErrTenantSuspended          = errors.New("tenant_suspended")
	ErrInvalidName              = errors.New("invalid_name")
	ErrInvalidSegmentPrice      = errors.New("invalid_segment_price")
	ErrInvalidAmount            = errors.New("invalid_amount")
	ErrInsufficientSMSBalance   = errors.New("insufficient_sms_balance")
	ErrSMSCredentialsIncomplete = errors.New("sms_credentials_incomplete")
)
