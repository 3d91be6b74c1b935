package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	auditdomain "github.com/halopax/unlockd/internal/audit/domain"
	catalogdomain "github.com/halopax/unlockd/internal/catalog/domain"
	customerdomain "github.com/halopax/unlockd/internal/customer/domain"
	"github.com/halopax/unlockd/internal/notification"
	orderdomain "github.com/halopax/unlockd/internal/order/domain"
	supplierdomain "github.com/halopax/unlockd/internal/supplier/domain"
	tenantdomain "github.com/halopax/unlockd/internal/tenant/domain"
	"github.com/halopax/unlockd/internal/vault"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrInternal       = errors.New("internal_error")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	switch {
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	case isBusinessRejection(err):
		// Insufficient funds and unavailable services are deliberate
		// 400-class rejections, not conflicts.
		return http.StatusBadRequest, errorPayload{
			Type:    "rejected",
			Message: err.Error(),
		}
	case errors.Is(err, supplierdomain.ErrSupplierReferenced):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, orderdomain.ErrInvalidQuantity),
		errors.Is(err, orderdomain.ErrInvalidIMEI),
		errors.Is(err, orderdomain.ErrFileRequired),
		errors.Is(err, orderdomain.ErrNotSubmitted),
		errors.Is(err, customerdomain.ErrInvalidName),
		errors.Is(err, customerdomain.ErrInvalidEmail),
		errors.Is(err, customerdomain.ErrInvalidAmount),
		errors.Is(err, catalogdomain.ErrInvalidQuantity),
		errors.Is(err, catalogdomain.ErrInvalidPrice),
		errors.Is(err, tenantdomain.ErrInvalidName),
		errors.Is(err, tenantdomain.ErrInvalidSegmentPrice),
		errors.Is(err, tenantdomain.ErrInvalidAmount),
		errors.Is(err, supplierdomain.ErrInvalidSupplier),
		errors.Is(err, auditdomain.ErrInvalidAction),
		errors.Is(err, auditdomain.ErrInvalidPageToken),
		errors.Is(err, auditdomain.ErrInvalidTimeRange),
		errors.Is(err, vault.ErrMalformedPayload):
		return true
	case isInvalidTenantError(err):
		return true
	default:
		return false
	}
}

func isBusinessRejection(err error) bool {
	return errors.Is(err, customerdomain.ErrInsufficientBalance) ||
		errors.Is(err, tenantdomain.ErrInsufficientSMSBalance) ||
		errors.Is(err, supplierdomain.ErrNoActiveSupplier) ||
		errors.Is(err, orderdomain.ErrServiceUnavailable) ||
		errors.Is(err, tenantdomain.ErrTenantSuspended) ||
		errors.Is(err, tenantdomain.ErrSMSCredentialsIncomplete)
}

func isInvalidTenantError(err error) bool {
	return errors.Is(err, orderdomain.ErrInvalidTenant) ||
		errors.Is(err, customerdomain.ErrInvalidTenant) ||
		errors.Is(err, catalogdomain.ErrInvalidTenant) ||
		errors.Is(err, supplierdomain.ErrInvalidTenant) ||
		errors.Is(err, auditdomain.ErrInvalidTenant) ||
		errors.Is(err, notification.ErrInvalidTenant)
}

func isNotFoundError(err error) bool {
	return errors.Is(err, orderdomain.ErrOrderNotFound) ||
		errors.Is(err, customerdomain.ErrCustomerNotFound) ||
		errors.Is(err, catalogdomain.ErrServiceNotFound) ||
		errors.Is(err, supplierdomain.ErrSupplierNotFound) ||
		errors.Is(err, tenantdomain.ErrTenantNotFound) ||
		errors.Is(err, gorm.ErrRecordNotFound)
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

// classifyErrorForLog buckets an error for the request log.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case status >= 500:
		return "server_error", payload.Type
	case status >= 400:
		return "client_error", payload.Type
	default:
		return "", payload.Type
	}
}
