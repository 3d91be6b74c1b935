// Package domain contains persistence models for the tenant service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

// Tenant is one reseller workspace. Every customer, order and managed
// service hangs off a tenant, and all balances are tracked per tenant.
type Tenant struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name        string            `gorm:"type:text;not null" json:"name"`
	Slug        string            `gorm:"type:text;not null;uniqueIndex:ux_tenants_slug" json:"slug"`
	CompanyName string            `gorm:"type:text;column:company_name" json:"company_name"`
	Status      string            `gorm:"type:text;not null;default:active" json:"status"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata"`

	// SMS notification settings. The provider key is stored sealed and
	// only ever decrypted at send time.
	SMSEnabled      bool   `gorm:"column:sms_enabled;not null;default:false" json:"sms_enabled"`
	SMSSenderID     string `gorm:"type:text;column:sms_sender_id" json:"sms_sender_id"`
	SMSAPIKey       string `gorm:"type:text;column:sms_api_key" json:"-"`
	SMSBalance      int64  `gorm:"column:sms_balance;not null;default:0" json:"sms_balance"`
	SMSSegmentPrice int64  `gorm:"column:sms_segment_price;not null;default:0" json:"sms_segment_price"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Tenant) TableName() string { return "tenants" }

// SMSLedgerEntry records every movement on a tenant's SMS balance.
type SMSLedgerEntry struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID  snowflake.ID `gorm:"not null;index" json:"tenant_id"`
	Amount    int64        `gorm:"not null" json:"amount"`
	Balance   int64        `gorm:"not null" json:"balance"`
	Kind      string       `gorm:"type:text;not null" json:"kind"`
	Reference string       `gorm:"type:text" json:"reference"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (SMSLedgerEntry) TableName() string { return "tenant_sms_ledger" }

const (
	LedgerKindDebit  = "debit"
	LedgerKindCredit = "credit"
)
