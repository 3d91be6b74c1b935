package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListCustomerFilter struct {
	Email string
	Phone string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, customer *Customer) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*Customer, error)
	List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter ListCustomerFilter, limit int) ([]*Customer, error)
	Update(ctx context.Context, db *gorm.DB, customer *Customer) error

	// Debit atomically subtracts amount from the customer's balance.
	// Returns ErrInsufficientBalance when the balance would go negative.
	// Callers pass their transaction handle as db to make the debit part
	// of a larger atomic step.
	Debit(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID, amount int64) error
	Credit(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID, amount int64) error
}
