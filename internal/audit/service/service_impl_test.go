package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/halopax/unlockd/internal/audit/domain"
	"github.com/halopax/unlockd/internal/audit/repository"
	"github.com/halopax/unlockd/internal/audit/service"
	"github.com/halopax/unlockd/internal/tenantctx"
	"github.com/halopax/unlockd/pkg/db/pagination"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	schema := []string{
		`CREATE TABLE audit_logs (
			id BIGINT PRIMARY KEY,
			tenant_id BIGINT NOT NULL,
			actor_type TEXT NOT NULL,
			actor_id TEXT,
			action TEXT NOT NULL,
			target_type TEXT NOT NULL,
			target_id TEXT,
			metadata TEXT,
			ip_address TEXT,
			user_agent TEXT,
			created_at DATETIME NOT NULL
		)`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("schema exec failed: %v", err)
		}
	}
	return db
}

func newService(t *testing.T) (domain.Service, context.Context) {
	t.Helper()

	db := setupTestDB(t)
	node, err := snowflake.NewNode(17)
	require.NoError(t, err)

	svc := service.NewService(service.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	ctx := tenantctx.WithTenantID(context.Background(), node.Generate())
	return svc, ctx
}

func TestRecordMasksSensitiveMetadata(t *testing.T) {
	svc, ctx := newService(t)

	err := svc.Record(ctx, domain.RecordRequest{
		ActorType:  domain.ActorAdmin,
		ActorID:    "ops@example.com",
		Action:     "supplier.update",
		TargetType: "supplier",
		TargetID:   "42",
		Metadata: map[string]any{
			"api_key":      "super-secret-value",
			"order_number": "ORD-7KQ2M9",
		},
		IPAddress: "203.0.113.7",
		UserAgent: "curl/8.0",
	})
	require.NoError(t, err)

	resp, err := svc.List(ctx, domain.ListRequest{})
	require.NoError(t, err)
	require.Len(t, resp.AuditLogs, 1)

	entry := resp.AuditLogs[0]
	assert.Equal(t, "supplier.update", entry.Action)
	assert.Equal(t, "****alue", entry.Metadata["api_key"])
	assert.Equal(t, "ORD-7KQ2M9", entry.Metadata["order_number"])
	assert.Equal(t, "203.0.113.7", entry.IPAddress)
}

func TestRecordRejectsEmptyAction(t *testing.T) {
	svc, ctx := newService(t)

	err := svc.Record(ctx, domain.RecordRequest{ActorType: domain.ActorAdmin})
	assert.ErrorIs(t, err, domain.ErrInvalidAction)

	err = svc.Record(context.Background(), domain.RecordRequest{Action: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidTenant)
}

func TestListPagesWithCursor(t *testing.T) {
	svc, ctx := newService(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.Record(ctx, domain.RecordRequest{
			ActorType:  domain.ActorAdmin,
			Action:     fmt.Sprintf("catalog.update.%d", i),
			TargetType: "managed_service",
		}))
		time.Sleep(2 * time.Millisecond)
	}

	req := domain.ListRequest{}
	req.PageSize = 2

	resp, err := svc.List(ctx, req)
	require.NoError(t, err)
	assert.Len(t, resp.AuditLogs, 2)
	assert.True(t, resp.HasMore)
	// Newest first.
	assert.Equal(t, "catalog.update.4", resp.AuditLogs[0].Action)

	req.PageToken = resp.NextPageToken
	resp, err = svc.List(ctx, req)
	require.NoError(t, err)
	assert.Len(t, resp.AuditLogs, 2)
	assert.Equal(t, "catalog.update.2", resp.AuditLogs[0].Action)
	assert.True(t, resp.HasMore)

	req.PageToken = resp.NextPageToken
	resp, err = svc.List(ctx, req)
	require.NoError(t, err)
	assert.Len(t, resp.AuditLogs, 1)
	assert.False(t, resp.HasMore)
}

func TestListRejectsBadToken(t *testing.T) {
	svc, ctx := newService(t)

	req := domain.ListRequest{Pagination: pagination.Pagination{PageToken: "not-base64!"}}
	_, err := svc.List(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidPageToken)
}

func TestListRejectsInvertedRange(t *testing.T) {
	svc, ctx := newService(t)

	start := time.Now()
	end := start.Add(-time.Hour)
	_, err := svc.List(ctx, domain.ListRequest{StartAt: &start, EndAt: &end})
	assert.ErrorIs(t, err, domain.ErrInvalidTimeRange)
}
