package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	catalogdomain "github.com/halopax/unlockd/internal/catalog/domain"
	catalogrepo "github.com/halopax/unlockd/internal/catalog/repository"
	catalogservice "github.com/halopax/unlockd/internal/catalog/service"
	"github.com/halopax/unlockd/internal/config"
	customerdomain "github.com/halopax/unlockd/internal/customer/domain"
	customerrepo "github.com/halopax/unlockd/internal/customer/repository"
	customerservice "github.com/halopax/unlockd/internal/customer/service"
	"github.com/halopax/unlockd/internal/notification"
	orderdomain "github.com/halopax/unlockd/internal/order/domain"
	orderrepo "github.com/halopax/unlockd/internal/order/repository"
	orderservice "github.com/halopax/unlockd/internal/order/service"
	"github.com/halopax/unlockd/internal/providers/sms"
	supplierdomain "github.com/halopax/unlockd/internal/supplier/domain"
	"github.com/halopax/unlockd/internal/supplier/gateway"
	supplierrepo "github.com/halopax/unlockd/internal/supplier/repository"
	supplierservice "github.com/halopax/unlockd/internal/supplier/service"
	tenantdomain "github.com/halopax/unlockd/internal/tenant/domain"
	tenantrepo "github.com/halopax/unlockd/internal/tenant/repository"
	tenantservice "github.com/halopax/unlockd/internal/tenant/service"
	"github.com/halopax/unlockd/internal/tenantctx"
	"github.com/halopax/unlockd/internal/vault"
)

const testIMEI = "356938035643809"

type fakeProvider struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeProvider) Send(ctx context.Context, creds sms.Credentials, msisdn, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return fmt.Sprintf("msg-%d", len(f.sent)), nil
}

func (f *fakeProvider) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

// supplierStub plays the upstream unlocking API. Responses are swapped
// per test through the exported fields.
type supplierStub struct {
	mu           sync.Mutex
	down         bool
	placeResp    map[string]any
	checkResp    map[string]any
	placeCalls   int
	checkCalls   int
	checkBarrier *sync.WaitGroup
}

func (s *supplierStub) handler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	if s.down {
		s.mu.Unlock()
		w.WriteHeader(http.StatusBadGateway)
		return
	}

	var resp map[string]any
	var barrier *sync.WaitGroup
	switch r.PostFormValue("action") {
	case "placeimeiorder":
		s.placeCalls++
		resp = s.placeResp
	case "checkimeiorder":
		s.checkCalls++
		resp = s.checkResp
		barrier = s.checkBarrier
	default:
		resp = map[string]any{"status": "ERROR", "errorMessage": "unknown action"}
	}
	s.mu.Unlock()

	// The barrier parks every status check until all expected requests
	// are in flight, then releases them together.
	if barrier != nil {
		barrier.Done()
		barrier.Wait()
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *supplierStub) set(place, check map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.placeResp = place
	s.checkResp = check
}

func (s *supplierStub) holdChecks(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkBarrier = &sync.WaitGroup{}
	s.checkBarrier.Add(n)
}

func (s *supplierStub) setDown(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.down = down
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	schema := []string{
		`CREATE TABLE tenants (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			slug TEXT NOT NULL,
			company_name TEXT,
			status TEXT NOT NULL DEFAULT 'active',
			metadata TEXT NOT NULL DEFAULT '{}',
			sms_enabled BOOLEAN NOT NULL DEFAULT FALSE,
			sms_sender_id TEXT,
			sms_api_key TEXT,
			sms_balance BIGINT NOT NULL DEFAULT 0,
			sms_segment_price BIGINT NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE tenant_sms_ledger (
			id BIGINT PRIMARY KEY,
			tenant_id BIGINT NOT NULL,
			amount BIGINT NOT NULL,
			balance BIGINT NOT NULL,
			kind TEXT NOT NULL,
			reference TEXT,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE customers (
			id BIGINT PRIMARY KEY,
			tenant_id BIGINT NOT NULL,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			phone TEXT,
			sms_opt_in BOOLEAN NOT NULL DEFAULT TRUE,
			balance BIGINT NOT NULL DEFAULT 0,
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE suppliers (
			id BIGINT PRIMARY KEY,
			tenant_id BIGINT NOT NULL,
			name TEXT NOT NULL,
			base_url TEXT NOT NULL,
			username TEXT NOT NULL,
			api_key TEXT NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			priority INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE managed_services (
			id BIGINT PRIMARY KEY,
			tenant_id BIGINT NOT NULL,
			supplier_id BIGINT NOT NULL,
			supplier_service_id TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT,
			category TEXT,
			kind TEXT NOT NULL DEFAULT 'imei',
			cost_price BIGINT NOT NULL,
			resale_price BIGINT NOT NULL,
			enabled BOOLEAN NOT NULL DEFAULT FALSE,
			min_quantity INTEGER NOT NULL DEFAULT 1,
			max_quantity INTEGER NOT NULL DEFAULT 1,
			delivery_time TEXT,
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE orders (
			id BIGINT PRIMARY KEY,
			tenant_id BIGINT NOT NULL,
			customer_id BIGINT NOT NULL,
			order_number TEXT NOT NULL UNIQUE,
			total BIGINT NOT NULL,
			currency TEXT NOT NULL DEFAULT 'USD',
			status TEXT NOT NULL DEFAULT 'pending',
			item TEXT NOT NULL,
			supplier_id BIGINT,
			supplier_order_id TEXT,
			supplier_status TEXT,
			supplier_response BLOB,
			code TEXT,
			error_message TEXT,
			notified_at DATETIME,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
	}

	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("schema exec failed: %v", err)
		}
	}

	return db
}

type fixture struct {
	db         *gorm.DB
	ctx        context.Context
	stub       *supplierStub
	provider   *fakeProvider
	orders     orderdomain.Service
	orderRepo  orderdomain.Repository
	customers  customerdomain.Service
	tenantID   snowflake.ID
	customerID snowflake.ID
	supplierID snowflake.ID
	serviceID  snowflake.ID
}

type fixtureOptions struct {
	customerBalance int64
	supplierActive  bool
	serviceEnabled  bool
	serviceKind     string
}

func defaultOptions() fixtureOptions {
	return fixtureOptions{
		customerBalance: 2000,
		supplierActive:  true,
		serviceEnabled:  true,
		serviceKind:     catalogdomain.KindIMEI,
	}
}

func newFixture(t *testing.T, opts fixtureOptions) *fixture {
	t.Helper()

	db := setupTestDB(t)
	stub := &supplierStub{}
	server := httptest.NewServer(http.HandlerFunc(stub.handler))
	t.Cleanup(server.Close)

	node, err := snowflake.NewNode(21)
	require.NoError(t, err)

	log := zap.NewNop()
	cfg := config.Config{
		Environment:            "test",
		MasterEncryptionKey:    "order-test-key",
		DefaultSMSSegmentPrice: 5,
		SupplierTimeout:        5 * time.Second,
	}

	v, err := vault.New(cfg, log)
	require.NoError(t, err)

	gw := gateway.NewClient(cfg, log)

	tRepo := tenantrepo.NewRepository(db, node)
	tSvc := tenantservice.NewService(tRepo, v, node, log)
	created, err := tSvc.Create(context.Background(), tenantdomain.CreateTenantRequest{
		Name:        "Vertex Mobile",
		CompanyName: "Vertex Mobile",
	})
	require.NoError(t, err)
	tenantID, err := snowflake.ParseString(created.ID)
	require.NoError(t, err)

	require.NoError(t, tSvc.UpdateSMSSettings(context.Background(), tenantID, tenantdomain.SMSSettingsRequest{
		Enabled:      true,
		SenderID:     "VERTEX",
		APIKey:       "webex-key",
		SegmentPrice: 5,
	}))
	require.NoError(t, tSvc.CreditSMSBalance(context.Background(), tenantID, 1000, "topup"))

	ctx := tenantctx.WithTenantID(context.Background(), tenantID)

	cSvc := customerservice.New(customerservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Repo:  customerrepo.Provide(),
	})
	customer, err := cSvc.Create(ctx, customerdomain.CreateCustomerRequest{
		Name:  "Ana Flores",
		Email: "ana@example.com",
		Phone: "+14155550101",
	})
	require.NoError(t, err)
	if opts.customerBalance > 0 {
		_, err = cSvc.Credit(ctx, customer.ID, opts.customerBalance)
		require.NoError(t, err)
	}

	sSvc := supplierservice.New(supplierservice.Params{
		Log:     log,
		GenID:   node,
		Repo:    supplierrepo.NewRepository(db),
		Vault:   v,
		Gateway: gw,
	})
	supplierResp, err := sSvc.Create(ctx, supplierdomain.CreateSupplierRequest{
		Name:     "Upstream GSM",
		BaseURL:  server.URL,
		Username: "reseller",
		APIKey:   "supplier-key",
		Priority: 10,
	})
	require.NoError(t, err)
	supplierID, err := snowflake.ParseString(supplierResp.ID)
	require.NoError(t, err)
	if !opts.supplierActive {
		inactive := false
		require.NoError(t, sSvc.Update(ctx, supplierID, supplierdomain.UpdateSupplierRequest{Active: &inactive}))
	}

	catRepo := catalogrepo.NewRepository(db)
	serviceID := node.Generate()
	now := time.Now()
	require.NoError(t, catRepo.Create(ctx, catalogdomain.ManagedService{
		ID:                serviceID,
		TenantID:          tenantID,
		SupplierID:        supplierID,
		SupplierServiceID: "101",
		Name:              "iPhone Unlock",
		Kind:              opts.serviceKind,
		CostPrice:         300,
		ResalePrice:       500,
		Enabled:           opts.serviceEnabled,
		MinQuantity:       1,
		MaxQuantity:       5,
		Metadata:          datatypes.JSONMap{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}))
	catSvc := catalogservice.New(catalogservice.Params{
		Log:         log,
		GenID:       node,
		Repo:        catRepo,
		SupplierSvc: sSvc,
		Gateway:     gw,
	})

	provider := &fakeProvider{}
	notifier := notification.New(notification.Params{
		DB:           db,
		Log:          log,
		Cfg:          cfg,
		TenantRepo:   tRepo,
		TenantSvc:    tSvc,
		CustomerRepo: customerrepo.Provide(),
		Provider:     provider,
	})

	oRepo := orderrepo.NewRepository(db, node)
	oSvc, err := orderservice.New(orderservice.Params{
		DB:       db,
		Log:      log,
		Repo:     oRepo,
		Catalog:  catSvc,
		Customer: customerrepo.Provide(),
		Supplier: sSvc,
		Tenant:   tRepo,
		Gateway:  gw,
		Notifier: notifier,
	})
	require.NoError(t, err)

	return &fixture{
		db:         db,
		ctx:        ctx,
		stub:       stub,
		provider:   provider,
		orders:     oSvc,
		orderRepo:  oRepo,
		customers:  cSvc,
		tenantID:   tenantID,
		customerID: customer.ID,
		supplierID: supplierID,
		serviceID:  serviceID,
	}
}

func (f *fixture) customerBalance(t *testing.T) int64 {
	t.Helper()

	customer, err := f.customers.GetByID(f.ctx, f.customerID)
	require.NoError(t, err)
	return customer.Balance
}

func (f *fixture) placeRequest() orderdomain.PlaceOrderRequest {
	return orderdomain.PlaceOrderRequest{
		CustomerID: f.customerID,
		ServiceID:  f.serviceID,
		Quantity:   2,
		IMEI:       testIMEI,
	}
}

func TestPlaceOrderCompletesAndNotifies(t *testing.T) {
	// Balance 2000, price 500, quantity 2: total 1000.
	f := newFixture(t, defaultOptions())
	f.stub.set(map[string]any{
		"status":      "SUCCESS",
		"orderId":     "D-777",
		"orderStatus": "Completed",
		"code":        "ABC123",
	}, nil)

	result, err := f.orders.PlaceOrder(f.ctx, f.placeRequest())
	require.NoError(t, err)

	order := result.Order
	assert.Equal(t, orderdomain.StatusCompleted, order.Status)
	assert.Equal(t, "ABC123", order.Code)
	assert.Equal(t, "D-777", order.SupplierOrderID)
	assert.Equal(t, int64(1000), order.Total)
	assert.True(t, strings.HasPrefix(order.OrderNumber, "ORD-"))
	assert.False(t, result.Refunded)

	assert.Equal(t, int64(1000), f.customerBalance(t))

	messages := f.provider.messages()
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], "ABC123")
	assert.Contains(t, messages[0], order.OrderNumber)
	assert.Contains(t, messages[0], "iPhone Unlock")

	stored, err := f.orderRepo.GetByID(f.ctx, f.tenantID, order.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.NotifiedAt)
	assert.Equal(t, testIMEI, stored.Item.IMEI)
	assert.Equal(t, int64(500), stored.Item.UnitPrice)
}

func TestPlaceOrderStaysPendingWithoutCode(t *testing.T) {
	f := newFixture(t, defaultOptions())
	f.stub.set(map[string]any{
		"status":      "SUCCESS",
		"orderId":     "D-778",
		"orderStatus": "Pending",
	}, nil)

	result, err := f.orders.PlaceOrder(f.ctx, f.placeRequest())
	require.NoError(t, err)

	assert.Equal(t, orderdomain.StatusPending, result.Order.Status)
	assert.Empty(t, result.Order.Code)
	assert.Equal(t, int64(1000), f.customerBalance(t))
	assert.Empty(t, f.provider.messages())
}

func TestPlaceOrderSupplierErrorRefunds(t *testing.T) {
	f := newFixture(t, defaultOptions())
	f.stub.set(map[string]any{
		"status":       "ERROR",
		"errorMessage": "IMEI not supported",
	}, nil)

	result, err := f.orders.PlaceOrder(f.ctx, f.placeRequest())
	require.NoError(t, err)

	assert.True(t, result.Refunded)
	assert.Equal(t, "order failed, balance restored", result.Message)
	assert.Equal(t, orderdomain.StatusCancelled, result.Order.Status)
	assert.Equal(t, "IMEI not supported", result.Order.ErrorMessage)

	assert.Equal(t, int64(2000), f.customerBalance(t))
	assert.Empty(t, f.provider.messages())
}

func TestPlaceOrderTransportFailureRefunds(t *testing.T) {
	f := newFixture(t, defaultOptions())
	f.stub.setDown(true)

	result, err := f.orders.PlaceOrder(f.ctx, f.placeRequest())
	require.NoError(t, err)

	assert.True(t, result.Refunded)
	assert.Equal(t, orderdomain.StatusCancelled, result.Order.Status)
	assert.Equal(t, int64(2000), f.customerBalance(t))
	assert.Empty(t, f.provider.messages())
}

func TestPlaceOrderInsufficientBalanceLeavesNoTrace(t *testing.T) {
	f := newFixture(t, defaultOptions())
	f.stub.set(map[string]any{"status": "SUCCESS", "orderId": "D-1"}, nil)

	req := f.placeRequest()
	req.Quantity = 5 // 2500 against a balance of 2000

	_, err := f.orders.PlaceOrder(f.ctx, req)
	assert.ErrorIs(t, err, customerdomain.ErrInsufficientBalance)

	assert.Equal(t, int64(2000), f.customerBalance(t))
	orders, err := f.orders.List(f.ctx, orderdomain.ListRequest{})
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Equal(t, 0, f.stub.placeCalls)
}

func TestPlaceOrderValidation(t *testing.T) {
	f := newFixture(t, defaultOptions())

	req := f.placeRequest()
	req.Quantity = 6
	_, err := f.orders.PlaceOrder(f.ctx, req)
	assert.ErrorIs(t, err, orderdomain.ErrInvalidQuantity)

	req = f.placeRequest()
	req.IMEI = "12345"
	_, err = f.orders.PlaceOrder(f.ctx, req)
	assert.ErrorIs(t, err, orderdomain.ErrInvalidIMEI)

	req = f.placeRequest()
	req.ServiceID = snowflake.ID(424242)
	_, err = f.orders.PlaceOrder(f.ctx, req)
	assert.ErrorIs(t, err, orderdomain.ErrServiceUnavailable)

	assert.Equal(t, int64(2000), f.customerBalance(t))
}

func TestPlaceOrderDisabledService(t *testing.T) {
	opts := defaultOptions()
	opts.serviceEnabled = false
	f := newFixture(t, opts)

	_, err := f.orders.PlaceOrder(f.ctx, f.placeRequest())
	assert.ErrorIs(t, err, orderdomain.ErrServiceUnavailable)
}

func TestPlaceOrderFileServiceRequiresFile(t *testing.T) {
	opts := defaultOptions()
	opts.serviceKind = catalogdomain.KindFile
	f := newFixture(t, opts)

	req := f.placeRequest()
	req.IMEI = ""
	_, err := f.orders.PlaceOrder(f.ctx, req)
	assert.ErrorIs(t, err, orderdomain.ErrFileRequired)
}

func TestPlaceOrderNoActiveSupplier(t *testing.T) {
	opts := defaultOptions()
	opts.supplierActive = false
	f := newFixture(t, opts)

	_, err := f.orders.PlaceOrder(f.ctx, f.placeRequest())
	assert.ErrorIs(t, err, supplierdomain.ErrNoActiveSupplier)

	assert.Equal(t, int64(2000), f.customerBalance(t))
	orders, err := f.orders.List(f.ctx, orderdomain.ListRequest{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestSequentialPlacementsDrainExactly(t *testing.T) {
	f := newFixture(t, defaultOptions())
	f.stub.set(map[string]any{
		"status":      "SUCCESS",
		"orderId":     "D-900",
		"orderStatus": "Pending",
	}, nil)

	req := f.placeRequest()
	req.Quantity = 1 // 500 each against a balance of 2000

	for i := 0; i < 4; i++ {
		_, err := f.orders.PlaceOrder(f.ctx, req)
		require.NoError(t, err)
	}
	_, err := f.orders.PlaceOrder(f.ctx, req)
	assert.ErrorIs(t, err, customerdomain.ErrInsufficientBalance)

	assert.Equal(t, int64(0), f.customerBalance(t))
}

func TestCheckStatusTransitionNotifiesOnce(t *testing.T) {
	f := newFixture(t, defaultOptions())
	f.stub.set(map[string]any{
		"status":      "SUCCESS",
		"orderId":     "D-778",
		"orderStatus": "Pending",
	}, map[string]any{
		"status":      "SUCCESS",
		"orderid":     "D-778",
		"orderStatus": "Completed",
		"code":        "XYZ789",
	})

	placed, err := f.orders.PlaceOrder(f.ctx, f.placeRequest())
	require.NoError(t, err)
	require.Equal(t, orderdomain.StatusPending, placed.Order.Status)
	require.Empty(t, f.provider.messages())

	result, err := f.orders.CheckStatus(f.ctx, placed.Order.ID)
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, orderdomain.StatusCompleted, result.Order.Status)
	assert.Equal(t, "XYZ789", result.Order.Code)
	assert.Len(t, f.provider.messages(), 1)

	// Repeated polling must not re-send the code.
	result, err = f.orders.CheckStatus(f.ctx, placed.Order.ID)
	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.Len(t, f.provider.messages(), 1)
}

func TestCheckStatusRejectionRefunds(t *testing.T) {
	f := newFixture(t, defaultOptions())
	f.stub.set(map[string]any{
		"status":      "SUCCESS",
		"orderId":     "D-779",
		"orderStatus": "Pending",
	}, map[string]any{
		"status":       "SUCCESS",
		"orderid":      "D-779",
		"orderStatus":  "Rejected",
		"errorMessage": "cannot unlock this device",
	})

	placed, err := f.orders.PlaceOrder(f.ctx, f.placeRequest())
	require.NoError(t, err)
	require.Equal(t, int64(1000), f.customerBalance(t))

	result, err := f.orders.CheckStatus(f.ctx, placed.Order.ID)
	require.NoError(t, err)
	assert.True(t, result.Refunded)
	assert.Equal(t, orderdomain.StatusCancelled, result.Order.Status)
	assert.Equal(t, "cannot unlock this device", result.Order.ErrorMessage)

	assert.Equal(t, int64(2000), f.customerBalance(t))

	// The customer is told about the cancellation, not handed a code.
	messages := f.provider.messages()
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], "cancelled")
	assert.Contains(t, messages[0], result.Order.OrderNumber)
}

func TestConcurrentRejectionRefundsOnce(t *testing.T) {
	f := newFixture(t, defaultOptions())
	f.stub.set(map[string]any{
		"status":      "SUCCESS",
		"orderId":     "D-780",
		"orderStatus": "Pending",
	}, map[string]any{
		"status":       "SUCCESS",
		"orderid":      "D-780",
		"orderStatus":  "Rejected",
		"errorMessage": "cannot unlock this device",
	})

	placed, err := f.orders.PlaceOrder(f.ctx, f.placeRequest())
	require.NoError(t, err)
	require.Equal(t, int64(1000), f.customerBalance(t))

	// Both pollers see the rejection at the same moment. Only the one
	// that wins the cancellation claim may credit the balance back.
	f.stub.holdChecks(2)

	var refunds int32
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := f.orders.CheckStatus(f.ctx, placed.Order.ID)
			if err == nil && result.Refunded {
				atomic.AddInt32(&refunds, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&refunds))
	assert.Equal(t, int64(2000), f.customerBalance(t))
	assert.Len(t, f.provider.messages(), 1)

	order, err := f.orderRepo.GetByID(f.ctx, f.tenantID, placed.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, orderdomain.StatusCancelled, order.Status)
}

func TestConcurrentPlacementsNeverOverdraw(t *testing.T) {
	opts := defaultOptions()
	opts.customerBalance = 500
	f := newFixture(t, opts)
	f.stub.set(map[string]any{
		"status":      "SUCCESS",
		"orderId":     "D-781",
		"orderStatus": "Pending",
	}, nil)

	req := f.placeRequest()
	req.Quantity = 1 // 500 against a balance of exactly 500

	var placedCount int32
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.orders.PlaceOrder(f.ctx, req); err == nil {
				atomic.AddInt32(&placedCount, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&placedCount))
	assert.Equal(t, int64(0), f.customerBalance(t))

	orders, err := f.orders.List(f.ctx, orderdomain.ListRequest{})
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestCheckStatusWithoutSupplierOrder(t *testing.T) {
	f := newFixture(t, defaultOptions())
	f.stub.set(map[string]any{"status": "ERROR", "errorMessage": "down"}, nil)

	placed, err := f.orders.PlaceOrder(f.ctx, f.placeRequest())
	require.NoError(t, err)
	require.True(t, placed.Refunded)

	// Cancelled orders are terminal, the supplier is not re-queried.
	result, err := f.orders.CheckStatus(f.ctx, placed.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, orderdomain.StatusCancelled, result.Order.Status)
	assert.Equal(t, 0, f.stub.checkCalls)
}
