package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/halopax/unlockd/internal/config"
	customerdomain "github.com/halopax/unlockd/internal/customer/domain"
	"github.com/halopax/unlockd/internal/observability/metrics"
	"github.com/halopax/unlockd/internal/providers/sms"
	"github.com/halopax/unlockd/internal/smsenc"
	tenantdomain "github.com/halopax/unlockd/internal/tenant/domain"
	"github.com/halopax/unlockd/internal/tenantctx"
)

var (
	ErrInvalidTenant    = errors.New("invalid_tenant")
	ErrCustomerNotFound = errors.New("customer_not_found")
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Cfg          config.Config
	Metrics      *metrics.Metrics `optional:"true"`
	TenantRepo   tenantdomain.Repository
	TenantSvc    tenantdomain.Service
	CustomerRepo customerdomain.Repository
	Provider     sms.Provider
}

type dispatcher struct {
	db           *gorm.DB
	log          *zap.Logger
	cfg          config.Config
	metrics      *metrics.Metrics
	tenantRepo   tenantdomain.Repository
	tenantSvc    tenantdomain.Service
	customerRepo customerdomain.Repository
	provider     sms.Provider
}

func New(p Params) Dispatcher {
	return &dispatcher{
		db:           p.DB,
		log:          p.Log.Named("notification.dispatcher"),
		cfg:          p.Cfg,
		metrics:      p.Metrics,
		tenantRepo:   p.TenantRepo,
		tenantSvc:    p.TenantSvc,
		customerRepo: p.CustomerRepo,
		provider:     p.Provider,
	}
}

func (d *dispatcher) Send(ctx context.Context, customerID snowflake.ID, text, reference string) (*SendResult, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, ErrInvalidTenant
	}

	customer, err := d.customerRepo.FindByID(ctx, d.db, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}

	if !customer.SMSOptIn {
		return skipped(ReasonCustomerOptedOut), nil
	}
	if strings.TrimSpace(customer.Phone) == "" {
		return skipped(ReasonNoPhoneNumber), nil
	}

	tenant, err := d.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !tenant.SMSEnabled {
		return skipped(ReasonTenantDisabled), nil
	}

	// Missing or undecryptable credentials are a configuration error,
	// not a policy skip.
	senderID, apiKey, err := d.tenantSvc.SMSCredentials(ctx, tenant)
	if err != nil {
		d.log.Error("sms credentials unavailable",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
		d.metrics.SMSDenied(tenantID.String(), "credentials")
		return &SendResult{Error: "sms credentials not configured"}, nil
	}

	breakdown := smsenc.Calculate(text, d.segmentPrice(tenant))
	warnings := unicodeWarnings(breakdown)
	result := &SendResult{Cost: &breakdown, Warnings: warnings}

	if tenant.SMSBalance < breakdown.TotalCost {
		d.metrics.SMSDenied(tenantID.String(), "insufficient_balance")
		result.Error = "insufficient sms balance"
		result.RequiredBalance = breakdown.TotalCost
		result.CurrentBalance = tenant.SMSBalance
		return result, nil
	}

	messageID, err := d.provider.Send(ctx, sms.Credentials{
		APIKey:   apiKey,
		SenderID: senderID,
	}, customer.Phone, text)
	if err != nil {
		// No charge for undelivered messages.
		d.log.Warn("sms transport failed",
			zap.String("tenant_id", tenantID.String()),
			zap.String("customer_id", customerID.String()),
			zap.Error(err),
		)
		d.metrics.SMSDenied(tenantID.String(), "transport")
		result.Error = err.Error()
		return result, nil
	}

	if err := d.tenantRepo.DebitSMSBalance(ctx, tenantID, breakdown.TotalCost, reference); err != nil {
		// The message is already out; a racing debit only costs the
		// tenant accounting accuracy, never a second send.
		d.log.Error("sms ledger debit failed after send",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
		result.Warnings = append(result.Warnings, "ledger debit failed, message was sent")
	}

	d.metrics.SMSSent(tenantID.String(), breakdown.Encoding)
	d.log.Info("sms dispatched",
		zap.String("tenant_id", tenantID.String()),
		zap.String("customer_id", customerID.String()),
		zap.String("encoding", breakdown.Encoding),
		zap.Int("segments", breakdown.Segments),
		zap.Int64("cost", breakdown.TotalCost),
	)

	result.Success = true
	result.MessageID = messageID
	return result, nil
}

func (d *dispatcher) Estimate(ctx context.Context, text string) (*Estimate, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, ErrInvalidTenant
	}

	tenant, err := d.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	breakdown := smsenc.Calculate(text, d.segmentPrice(tenant))
	return &Estimate{
		Breakdown: breakdown,
		CanAfford: tenant.SMSBalance >= breakdown.TotalCost,
		Balance:   tenant.SMSBalance,
	}, nil
}

func (d *dispatcher) segmentPrice(tenant *tenantdomain.Tenant) int64 {
	if tenant.SMSSegmentPrice > 0 {
		return tenant.SMSSegmentPrice
	}
	return d.cfg.DefaultSMSSegmentPrice
}

func skipped(reason string) *SendResult {
	return &SendResult{Skipped: true, Reason: reason}
}

func unicodeWarnings(b smsenc.Breakdown) []string {
	if !b.IsUnicode() {
		return nil
	}
	return []string{
		fmt.Sprintf("message contains non-standard characters: %s", strings.Join(b.NonGSMChars, ", ")),
		fmt.Sprintf("unicode messages are more expensive (%d segments)", b.Segments),
	}
}
