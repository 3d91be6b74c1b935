// Package notification dispatches SMS messages to customers against
// the owning tenant's prepaid ledger. Dispatch is best-effort from the
// caller's point of view: every expected failure mode comes back as a
// structured result, never as an error.
package notification

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"

	"github.com/halopax/unlockd/internal/smsenc"
)

// Skip reasons surfaced when a policy gate stops a dispatch.
const (
	ReasonCustomerOptedOut = "customer has sms notifications disabled"
	ReasonNoPhoneNumber    = "customer has no phone number on file"
	ReasonTenantDisabled   = "sms notifications are disabled for this tenant"
)

// SendResult reports one dispatch attempt. Exactly one of the three
// shapes holds: Success, Skipped with Reason, or failure with Error.
type SendResult struct {
	Success   bool     `json:"success"`
	Skipped   bool     `json:"skipped,omitempty"`
	Reason    string   `json:"reason,omitempty"`
	Error     string   `json:"error,omitempty"`
	MessageID string   `json:"message_id,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`

	Cost *smsenc.Breakdown `json:"cost,omitempty"`

	// Shortfall details, set when the ledger cannot cover the message.
	RequiredBalance int64 `json:"required_balance,omitempty"`
	CurrentBalance  int64 `json:"current_balance,omitempty"`
}

// Estimate prices a message against the tenant's ledger without
// sending it.
type Estimate struct {
	smsenc.Breakdown
	CanAfford bool  `json:"can_afford"`
	Balance   int64 `json:"balance"`
}

type Dispatcher interface {
	// Send runs the policy gates, prices the message, sends it and
	// debits the tenant ledger. reference ties the ledger entry back to
	// the triggering order.
	Send(ctx context.Context, customerID snowflake.ID, text, reference string) (*SendResult, error)

	Estimate(ctx context.Context, text string) (*Estimate, error)
}

// FormatUnlockCodeMessage renders the delivery message for a fulfilled
// order.
func FormatUnlockCodeMessage(orderNumber, serviceName, code, companyName string) string {
	return fmt.Sprintf("%s\n\nOrder: %s\nService: %s\n\nYour unlock code:\n%s\n\nThank you for your business!",
		companyName, orderNumber, serviceName, code)
}

// FormatOrderStatusMessage renders a plain status update.
func FormatOrderStatusMessage(orderNumber, status, companyName string) string {
	return fmt.Sprintf("%s\n\nOrder %s\nStatus: %s\n\nCheck your account for details.",
		companyName, orderNumber, status)
}
