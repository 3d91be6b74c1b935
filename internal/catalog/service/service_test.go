package service_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	catalogdomain "github.com/halopax/unlockd/internal/catalog/domain"
	catalogrepo "github.com/halopax/unlockd/internal/catalog/repository"
	catalogservice "github.com/halopax/unlockd/internal/catalog/service"
	"github.com/halopax/unlockd/internal/config"
	supplierdomain "github.com/halopax/unlockd/internal/supplier/domain"
	"github.com/halopax/unlockd/internal/supplier/gateway"
	supplierrepo "github.com/halopax/unlockd/internal/supplier/repository"
	supplierservice "github.com/halopax/unlockd/internal/supplier/service"
	"github.com/halopax/unlockd/internal/tenantctx"
	"github.com/halopax/unlockd/internal/vault"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	schema := []string{
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
		`CREATE UNIQUE INDEX ux_managed_services_supplier_service
			ON managed_services(tenant_id, supplier_id, supplier_service_id)`,
	}

	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("schema exec failed: %v", err)
		}
	}

	return db
}

type fixture struct {
	catalogSvc  catalogdomain.Service
	supplierSvc supplierdomain.Service
	ctx         context.Context
}

func newFixture(t *testing.T, db *gorm.DB, upstreamURL string) fixture {
	t.Helper()

	node, err := snowflake.NewNode(12)
	require.NoError(t, err)

	v, err := vault.New(config.Config{
		Environment:         "test",
		MasterEncryptionKey: "catalog-test-key",
	}, zap.NewNop())
	require.NoError(t, err)

	client := gateway.NewClient(config.Config{SupplierTimeout: 5 * time.Second}, zap.NewNop())

	supplierSvc := supplierservice.New(supplierservice.Params{
		Log:     zap.NewNop(),
		GenID:   node,
		Repo:    supplierrepo.NewRepository(db),
		Vault:   v,
		Gateway: client,
	})

	catalogSvc := catalogservice.New(catalogservice.Params{
		Log:         zap.NewNop(),
		GenID:       node,
		Repo:        catalogrepo.NewRepository(db),
		SupplierSvc: supplierSvc,
		Gateway:     client,
	})

	ctx := tenantctx.WithTenantID(context.Background(), 100)

	_, err = supplierSvc.Create(ctx, supplierdomain.CreateSupplierRequest{
		Name:     "Upstream One",
		BaseURL:  upstreamURL,
		Username: "reseller@example.com",
		APIKey:   "secret-key",
		Priority: 10,
	})
	require.NoError(t, err)

	return fixture{catalogSvc: catalogSvc, supplierSvc: supplierSvc, ctx: ctx}
}

func supplierID(t *testing.T, fx fixture) snowflake.ID {
	t.Helper()

	list, err := fx.supplierSvc.List(fx.ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	id, err := snowflake.ParseString(list[0].ID)
	require.NoError(t, err)
	return id
}

func TestSyncFromSupplierCreatesDisabledEntriesWithMarkup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "imeiservicelist", r.PostForm.Get("action"))
		w.Write([]byte(`{"status":"SUCCESS","services":[
			{"serviceid":"1001","servicename":"IMEI Check","credit":"0.50","servicetype":"imei","deliverytime":"Instant"},
			{"serviceid":"2001","servicename":"File Unlock","credit":"10.00","servicetype":"file server"}
		]}`))
	}))
	defer srv.Close()

	db := setupTestDB(t)
	fx := newFixture(t, db, srv.URL)

	result, err := fx.catalogSvc.SyncFromSupplier(fx.ctx, supplierID(t, fx))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Updated)

	entries, err := fx.catalogSvc.List(fx.ctx, catalogdomain.ListRequest{})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byService := map[string]catalogdomain.ManagedService{}
	for _, e := range entries {
		byService[e.SupplierServiceID] = e
	}

	imeiEntry := byService["1001"]
	assert.Equal(t, int64(50), imeiEntry.CostPrice)
	assert.Equal(t, int64(65), imeiEntry.ResalePrice)
	assert.False(t, imeiEntry.Enabled)
	assert.Equal(t, catalogdomain.KindIMEI, imeiEntry.Kind)

	fileEntry := byService["2001"]
	assert.Equal(t, int64(1000), fileEntry.CostPrice)
	assert.Equal(t, int64(1300), fileEntry.ResalePrice)
	assert.Equal(t, catalogdomain.KindFile, fileEntry.Kind)
}

func TestSyncFromSupplierUpdatesExistingWithoutTouchingResale(t *testing.T) {
	price := `"0.50"`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"status":"SUCCESS","services":[
			{"serviceid":"1001","servicename":"IMEI Check","credit":%s,"servicetype":"imei"}
		]}`, price)
	}))
	defer srv.Close()

	db := setupTestDB(t)
	fx := newFixture(t, db, srv.URL)
	supID := supplierID(t, fx)

	first, err := fx.catalogSvc.SyncFromSupplier(fx.ctx, supID)
	require.NoError(t, err)
	require.Equal(t, 1, first.Created)

	entryID := first.Entries[0].ID
	enabled := true
	resale := int64(200)
	_, err = fx.catalogSvc.Update(fx.ctx, entryID, catalogdomain.UpdateRequest{
		Enabled:     &enabled,
		ResalePrice: &resale,
	})
	require.NoError(t, err)

	// Upstream cost changed; re-sync refreshes cost but leaves the
	// admin's resale price and enabled flag alone.
	price = `"0.80"`
	second, err := fx.catalogSvc.SyncFromSupplier(fx.ctx, supID)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 1, second.Updated)

	entry, err := fx.catalogSvc.GetByID(fx.ctx, entryID)
	require.NoError(t, err)
	assert.Equal(t, int64(80), entry.CostPrice)
	assert.Equal(t, int64(200), entry.ResalePrice)
	assert.True(t, entry.Enabled)
}

func TestUpdateWarnsWhenResaleBelowCost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"SUCCESS","services":[
			{"serviceid":"1001","servicename":"IMEI Check","credit":"1.00","servicetype":"imei"}
		]}`))
	}))
	defer srv.Close()

	db := setupTestDB(t)
	fx := newFixture(t, db, srv.URL)

	result, err := fx.catalogSvc.SyncFromSupplier(fx.ctx, supplierID(t, fx))
	require.NoError(t, err)

	resale := int64(50)
	updated, err := fx.catalogSvc.Update(fx.ctx, result.Entries[0].ID, catalogdomain.UpdateRequest{
		ResalePrice: &resale,
	})
	require.NoError(t, err)
	require.Len(t, updated.Warnings, 1)
	assert.Contains(t, updated.Warnings[0], "resale price")
}

func TestSupplierDeleteBlockedWhileReferenced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"SUCCESS","services":[
			{"serviceid":"1001","servicename":"IMEI Check","credit":"1.00","servicetype":"imei"}
		]}`))
	}))
	defer srv.Close()

	db := setupTestDB(t)
	fx := newFixture(t, db, srv.URL)
	supID := supplierID(t, fx)

	_, err := fx.catalogSvc.SyncFromSupplier(fx.ctx, supID)
	require.NoError(t, err)

	err = fx.supplierSvc.Delete(fx.ctx, supID)
	assert.ErrorIs(t, err, supplierdomain.ErrSupplierReferenced)
}

func TestUpdateQuantityRangeValidation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"SUCCESS","services":[
			{"serviceid":"1001","servicename":"IMEI Check","credit":"1.00","servicetype":"imei"}
		]}`))
	}))
	defer srv.Close()

	db := setupTestDB(t)
	fx := newFixture(t, db, srv.URL)

	result, err := fx.catalogSvc.SyncFromSupplier(fx.ctx, supplierID(t, fx))
	require.NoError(t, err)

	min, max := 5, 2
	_, err = fx.catalogSvc.Update(fx.ctx, result.Entries[0].ID, catalogdomain.UpdateRequest{
		MinQuantity: &min,
		MaxQuantity: &max,
	})
	assert.ErrorIs(t, err, catalogdomain.ErrInvalidQuantity)
}
