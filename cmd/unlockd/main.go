package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/halopax/unlockd/internal/audit"
	"github.com/halopax/unlockd/internal/catalog"
	"github.com/halopax/unlockd/internal/clock"
	"github.com/halopax/unlockd/internal/config"
	"github.com/halopax/unlockd/internal/customer"
	"github.com/halopax/unlockd/internal/migration"
	"github.com/halopax/unlockd/internal/notification"
	"github.com/halopax/unlockd/internal/observability"
	"github.com/halopax/unlockd/internal/order"
	"github.com/halopax/unlockd/internal/providers"
	"github.com/halopax/unlockd/internal/ratelimit"
	"github.com/halopax/unlockd/internal/scheduler"
	"github.com/halopax/unlockd/internal/server"
	"github.com/halopax/unlockd/internal/supplier"
	"github.com/halopax/unlockd/internal/tenant"
	"github.com/halopax/unlockd/internal/vault"
	"github.com/halopax/unlockd/pkg/db"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		vault.Module,
		migration.Module,

		// Functional domains
		tenant.Module,
		customer.Module,
		supplier.Module,
		catalog.Module,
		providers.Module,
		notification.Module,
		order.Module,
		audit.Module,
		ratelimit.Module,
		scheduler.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
