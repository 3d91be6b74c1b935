package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Item is the point-in-time snapshot of the catalog entry an order was
// placed against. Later catalog edits never reach back into it.
type Item struct {
	ServiceID   snowflake.ID `json:"service_id"`
	ServiceName string       `json:"service_name"`
	Kind        string       `json:"kind"`
	Quantity    int          `json:"quantity"`
	UnitPrice   int64        `json:"unit_price"`
	CostPrice   int64        `json:"cost_price"`
	IMEI        string       `json:"imei,omitempty"`
	FileName    string       `json:"file_name,omitempty"`
	FileData    string       `json:"file_data,omitempty"`
}

type Order struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID    snowflake.ID `gorm:"not null;index" json:"tenant_id"`
	CustomerID  snowflake.ID `gorm:"not null;index;column:customer_id" json:"customer_id"`
	OrderNumber string       `gorm:"type:text;not null;uniqueIndex:ux_orders_number;column:order_number" json:"order_number"`

	Total    int64  `gorm:"not null" json:"total"`
	Currency string `gorm:"type:text;not null;default:USD" json:"currency"`
	Status   string `gorm:"type:text;not null;default:pending" json:"status"`
	Item     Item   `gorm:"serializer:json;not null" json:"item"`

	SupplierID       snowflake.ID   `gorm:"column:supplier_id" json:"supplier_id"`
	SupplierOrderID  string         `gorm:"type:text;column:supplier_order_id" json:"supplier_order_id,omitempty"`
	SupplierStatus   string         `gorm:"type:text;column:supplier_status" json:"supplier_status,omitempty"`
	SupplierResponse datatypes.JSON `gorm:"column:supplier_response" json:"-"`

	Code         string `gorm:"type:text" json:"code,omitempty"`
	ErrorMessage string `gorm:"type:text;column:error_message" json:"error_message,omitempty"`

	NotifiedAt *time.Time `gorm:"column:notified_at" json:"notified_at,omitempty"`
	CreatedAt  time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Order) TableName() string { return "orders" }

// Terminal reports whether the order can still change state.
func (o *Order) Terminal() bool {
	return o.Status == StatusCompleted || o.Status == StatusCancelled
}
