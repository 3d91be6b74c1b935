// Package domain contains persistence models for the tenant catalog.
package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Service kinds determine which order input a catalog entry requires.
const (
	KindIMEI    = "imei"
	KindFile    = "file"
	KindGeneric = "generic"
)

// ManagedService is a tenant's resale listing of one upstream supplier
// service. Prices are minor currency units. Orders snapshot these
// fields at placement time, later edits never affect placed orders.
type ManagedService struct {
	ID                snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID          snowflake.ID `gorm:"not null;index;uniqueIndex:ux_managed_services_supplier_service,priority:1" json:"tenant_id"`
	SupplierID        snowflake.ID `gorm:"not null;index;uniqueIndex:ux_managed_services_supplier_service,priority:2" json:"supplier_id"`
	SupplierServiceID string       `gorm:"type:text;not null;column:supplier_service_id;uniqueIndex:ux_managed_services_supplier_service,priority:3" json:"supplier_service_id"`

	Name         string `gorm:"type:text;not null" json:"name"`
	Description  string `gorm:"type:text" json:"description"`
	Category     string `gorm:"type:text" json:"category"`
	Kind         string `gorm:"type:text;not null;default:imei" json:"kind"`
	CostPrice    int64  `gorm:"not null;column:cost_price" json:"cost_price"`
	ResalePrice  int64  `gorm:"not null;column:resale_price" json:"resale_price"`
	Enabled      bool   `gorm:"not null;default:false" json:"enabled"`
	MinQuantity  int    `gorm:"not null;default:1;column:min_quantity" json:"min_quantity"`
	MaxQuantity  int    `gorm:"not null;default:1;column:max_quantity" json:"max_quantity"`
	DeliveryTime string `gorm:"type:text;column:delivery_time" json:"delivery_time"`

	Metadata  datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (ManagedService) TableName() string { return "managed_services" }

// KindFromRemote maps an upstream service type onto the local kind.
func KindFromRemote(remoteKind string) string {
	k := strings.ToLower(remoteKind)
	switch {
	case strings.Contains(k, "file"):
		return KindFile
	case strings.Contains(k, "imei"):
		return KindIMEI
	default:
		return KindGeneric
	}
}
