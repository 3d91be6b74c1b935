// Package domain contains persistence models for upstream supplier
// connections.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Supplier is one tenant's connection to an upstream unlocking API.
// The access key is stored sealed and decrypted only when a call is
// about to be made.
type Supplier struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID snowflake.ID `gorm:"not null;index" json:"tenant_id"`
	Name     string       `gorm:"type:text;not null" json:"name"`
	BaseURL  string       `gorm:"type:text;not null;column:base_url" json:"base_url"`
	Username string       `gorm:"type:text;not null" json:"username"`
	APIKey   string       `gorm:"type:text;not null;column:api_key" json:"-"`
	Active   bool         `gorm:"not null;default:true" json:"active"`
	Priority int          `gorm:"not null;default:0" json:"priority"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Supplier) TableName() string { return "suppliers" }
