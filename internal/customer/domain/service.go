package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, req CreateCustomerRequest) (Customer, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Customer, error)
	List(ctx context.Context, req ListCustomerRequest) ([]*Customer, error)
	Credit(ctx context.Context, id snowflake.ID, amount int64) (*Customer, error)
}

type CreateCustomerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Phone    string `json:"phone"`
	SMSOptIn *bool  `json:"sms_opt_in"`
}

type ListCustomerRequest struct {
	Email    string `form:"email"`
	Phone    string `form:"phone"`
	PageSize int    `form:"page_size"`
}

var (
	ErrInvalidTenant       = errors.New("invalid_tenant")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidEmail        = errors.New("invalid_email")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrCustomerNotFound    = errors.New("customer_not_found")
	ErrInsufficientBalance = errors.New("insufficient_balance")
)
