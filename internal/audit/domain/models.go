package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	ActorAdmin  = "admin"
	ActorSystem = "system"
)

type AuditLog struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID  snowflake.ID `gorm:"not null;index" json:"tenant_id"`
	ActorType string       `gorm:"type:text;not null;column:actor_type" json:"actor_type"`
	ActorID   string       `gorm:"type:text;column:actor_id" json:"actor_id,omitempty"`

	Action     string `gorm:"type:text;not null" json:"action"`
	TargetType string `gorm:"type:text;not null;column:target_type" json:"target_type"`
	TargetID   string `gorm:"type:text;column:target_id" json:"target_id,omitempty"`

	Metadata  datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	IPAddress string            `gorm:"type:text;column:ip_address" json:"ip_address,omitempty"`
	UserAgent string            `gorm:"type:text;column:user_agent" json:"user_agent,omitempty"`
	CreatedAt time.Time         `gorm:"not null" json:"created_at"`
}

// TableName sets the database table name.
func (AuditLog) TableName() string { return "audit_logs" }
