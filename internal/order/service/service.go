package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/jaevor/go-nanoid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	catalogdomain "github.com/halopax/unlockd/internal/catalog/domain"
	customerdomain "github.com/halopax/unlockd/internal/customer/domain"
	"github.com/halopax/unlockd/internal/notification"
	"github.com/halopax/unlockd/internal/observability/metrics"
	"github.com/halopax/unlockd/internal/order/domain"
	supplierdomain "github.com/halopax/unlockd/internal/supplier/domain"
	"github.com/halopax/unlockd/internal/supplier/gateway"
	tenantdomain "github.com/halopax/unlockd/internal/tenant/domain"
	"github.com/halopax/unlockd/internal/tenantctx"
)

const orderNumberAlphabet = "0123456789ABCDEFGHJKLMNPQRSTUVWXYZ"

var imeiPattern = regexp.MustCompile(`^[0-9]{15}$`)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Metrics  *metrics.Metrics `optional:"true"`
	Repo     domain.Repository
	Catalog  catalogdomain.Service
	Customer customerdomain.Repository
	Supplier supplierdomain.Service
	Tenant   tenantdomain.Repository
	Gateway  gateway.Client
	Notifier notification.Dispatcher
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	metrics   *metrics.Metrics
	repo      domain.Repository
	catalog   catalogdomain.Service
	customers customerdomain.Repository
	suppliers supplierdomain.Service
	tenants   tenantdomain.Repository
	gateway   gateway.Client
	notifier  notification.Dispatcher
	numberGen func() string
}

func New(p Params) (domain.Service, error) {
	gen, err := nanoid.CustomASCII(orderNumberAlphabet, 10)
	if err != nil {
		return nil, err
	}
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("order.service"),
		metrics:   p.Metrics,
		repo:      p.Repo,
		catalog:   p.Catalog,
		customers: p.Customer,
		suppliers: p.Supplier,
		tenants:   p.Tenant,
		gateway:   p.Gateway,
		notifier:  p.Notifier,
		numberGen: gen,
	}, nil
}

func (s *Service) PlaceOrder(ctx context.Context, req domain.PlaceOrderRequest) (*domain.PlaceOrderResult, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}

	if req.Quantity == 0 {
		req.Quantity = 1
	}

	entry, err := s.catalog.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogdomain.ErrServiceNotFound) {
			return nil, domain.ErrServiceUnavailable
		}
		return nil, err
	}
	if !entry.Enabled {
		return nil, domain.ErrServiceUnavailable
	}
	if req.Quantity < entry.MinQuantity || req.Quantity > entry.MaxQuantity {
		return nil, domain.ErrInvalidQuantity
	}

	switch entry.Kind {
	case catalogdomain.KindIMEI:
		if !imeiPattern.MatchString(req.IMEI) {
			return nil, domain.ErrInvalidIMEI
		}
	case catalogdomain.KindFile:
		if req.FileName == "" || req.FileData == "" {
			return nil, domain.ErrFileRequired
		}
	}

	customer, err := s.customers.FindByID(ctx, s.db, tenantID, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, customerdomain.ErrCustomerNotFound
	}

	supplier, err := s.suppliers.ChooseForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	creds, err := s.suppliers.Credentials(supplier)
	if err != nil {
		return nil, err
	}

	// The snapshot freezes the catalog entry at this instant. Later
	// price or name edits never touch a placed order.
	price := entry.ResalePrice * int64(req.Quantity)
	order := &domain.Order{
		TenantID:    tenantID,
		CustomerID:  customer.ID,
		OrderNumber: "ORD-" + s.numberGen(),
		Total:       price,
		Currency:    "USD",
		Status:      domain.StatusPending,
		SupplierID:  supplier.ID,
		Item: domain.Item{
			ServiceID:   entry.ID,
			ServiceName: entry.Name,
			Kind:        entry.Kind,
			Quantity:    req.Quantity,
			UnitPrice:   entry.ResalePrice,
			CostPrice:   entry.CostPrice,
			IMEI:        req.IMEI,
			FileName:    req.FileName,
			FileData:    req.FileData,
		},
	}

	// The debit and the order row commit together. A crash after this
	// transaction leaves a debited pending order that reconciliation
	// can settle later, never a charge without a record.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.customers.Debit(ctx, tx, tenantID, customer.ID, price); err != nil {
			return err
		}
		return s.repo.WithTx(tx).Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.OrderPlaced(tenantID.String())

	res, err := s.gateway.PlaceOrder(ctx, creds, gateway.OrderInput{
		ServiceID: entry.SupplierServiceID,
		IMEI:      req.IMEI,
		FileName:  req.FileName,
		FileData:  req.FileData,
		Reference: order.OrderNumber,
	})
	if err != nil || !res.Success {
		reason := "supplier rejected the order"
		if err != nil {
			reason = err.Error()
		} else if res.ErrorMessage != "" {
			reason = res.ErrorMessage
		}
		if _, rerr := s.cancelAndRefund(ctx, order, reason); rerr != nil {
			return nil, rerr
		}
		s.log.Warn("order refunded after supplier failure",
			zap.String("order_number", order.OrderNumber),
			zap.String("reason", reason),
		)
		return &domain.PlaceOrderResult{
			Order:    order,
			Refunded: true,
			Message:  "order failed, balance restored",
		}, nil
	}

	order.SupplierOrderID = res.SupplierOrderID
	order.SupplierStatus = res.Status
	order.Code = res.Code
	order.SupplierResponse = datatypes.JSON(res.Raw)
	if res.Completed() && res.Code != "" {
		order.Status = domain.StatusCompleted
	}
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, err
	}

	result := &domain.PlaceOrderResult{Order: order}
	if order.Status == domain.StatusCompleted {
		s.metrics.OrderCompleted(tenantID.String())
		result.Warnings = s.dispatchCode(ctx, order)
	}
	s.log.Info("order placed",
		zap.String("order_number", order.OrderNumber),
		zap.String("status", order.Status),
		zap.Int64("total", order.Total),
	)
	return result, nil
}

func (s *Service) CheckStatus(ctx context.Context, id snowflake.ID) (*domain.StatusResult, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}

	order, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if order.Status == domain.StatusCancelled {
		return &domain.StatusResult{Order: order}, nil
	}
	if order.SupplierOrderID == "" {
		return nil, domain.ErrNotSubmitted
	}

	supplier, err := s.suppliers.GetByID(ctx, order.SupplierID)
	if err != nil {
		return nil, err
	}
	creds, err := s.suppliers.Credentials(supplier)
	if err != nil {
		return nil, err
	}

	res, err := s.gateway.CheckStatus(ctx, creds, order.SupplierOrderID)
	if err != nil {
		return nil, err
	}

	wasCompleted := order.Status == domain.StatusCompleted
	prevStatus, prevCode := order.Status, order.Code

	order.SupplierStatus = res.Status
	order.SupplierResponse = datatypes.JSON(res.Raw)
	if res.Code != "" {
		order.Code = res.Code
	}

	result := &domain.StatusResult{Order: order}
	switch {
	case res.Completed() && order.Code != "":
		order.Status = domain.StatusCompleted
		if err := s.repo.Update(ctx, order); err != nil {
			return nil, err
		}
	case res.Rejected() && !wasCompleted:
		// A late rejection still owes the customer their money back.
		reason := res.ErrorMessage
		if reason == "" {
			reason = "supplier rejected the order"
		}
		claimed, err := s.cancelAndRefund(ctx, order, reason)
		if err != nil {
			return nil, err
		}
		if claimed {
			result.Refunded = true
			result.Warnings = s.dispatchStatus(ctx, order)
		} else if fresh, err := s.repo.GetByID(ctx, tenantID, order.ID); err == nil {
			// Lost the race: a concurrent check already cancelled,
			// credited, and notified. Report the stored state.
			*order = *fresh
		}
	default:
		if err := s.repo.Update(ctx, order); err != nil {
			return nil, err
		}
	}

	result.Changed = order.Status != prevStatus || order.Code != prevCode
	if order.Status == domain.StatusCompleted && !wasCompleted && order.Code != "" {
		s.metrics.OrderCompleted(tenantID.String())
		result.Warnings = s.dispatchCode(ctx, order)
	}
	return result, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*domain.Order, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}
	return s.repo.GetByID(ctx, tenantID, id)
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]*domain.Order, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}

	limit := req.PageSize
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.List(ctx, tenantID, domain.ListFilter{
		CustomerID: req.CustomerID,
		Status:     req.Status,
	}, limit)
}

// cancelAndRefund claims the pending-to-cancelled transition and, only
// when the claim wins, credits the full price back in the same
// transaction. The claim is the guard: a caller racing a concurrent
// status check sees claimed=false and must not touch the balance.
func (s *Service) cancelAndRefund(ctx context.Context, order *domain.Order, reason string) (bool, error) {
	var claimed bool
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ok, err := repo.Cancel(ctx, order.ID, time.Now())
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		claimed = true
		order.Status = domain.StatusCancelled
		order.ErrorMessage = reason
		if err := repo.Update(ctx, order); err != nil {
			return err
		}
		return s.customers.Credit(ctx, tx, order.TenantID, order.CustomerID, order.Total)
	})
	if err != nil {
		return false, err
	}
	if claimed {
		s.metrics.OrderRefunded(order.TenantID.String())
	}
	return claimed, nil
}

// dispatchCode sends the unlock code over SMS. Delivery is best-effort
// once the order itself succeeded, every failure mode degrades to a
// warning on the result.
func (s *Service) dispatchCode(ctx context.Context, order *domain.Order) []string {
	claimed, err := s.repo.MarkNotified(ctx, order.ID, time.Now())
	if err != nil {
		s.log.Warn("notification claim failed",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err),
		)
		return []string{"notification skipped: " + err.Error()}
	}
	if !claimed {
		return nil
	}

	text := notification.FormatUnlockCodeMessage(order.OrderNumber, order.Item.ServiceName, order.Code, s.companyName(ctx, order.TenantID))
	return s.sendNotification(ctx, order, text)
}

// dispatchStatus tells the customer about a terminal status change
// discovered on re-query, such as a late rejection.
func (s *Service) dispatchStatus(ctx context.Context, order *domain.Order) []string {
	text := notification.FormatOrderStatusMessage(order.OrderNumber, order.Status, s.companyName(ctx, order.TenantID))
	return s.sendNotification(ctx, order, text)
}

func (s *Service) companyName(ctx context.Context, tenantID snowflake.ID) string {
	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return ""
	}
	return tenant.CompanyName
}

func (s *Service) sendNotification(ctx context.Context, order *domain.Order, text string) []string {
	sent, err := s.notifier.Send(ctx, order.CustomerID, text, order.OrderNumber)
	if err != nil {
		s.log.Warn("order notification failed",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err),
		)
		return []string{"notification failed: " + err.Error()}
	}
	if sent.Skipped {
		return nil
	}
	if !sent.Success {
		return []string{fmt.Sprintf("notification failed: %s", sent.Error)}
	}
	return sent.Warnings
}
