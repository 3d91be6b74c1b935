package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"

	auditdomain "github.com/halopax/unlockd/internal/audit/domain"
	catalogdomain "github.com/halopax/unlockd/internal/catalog/domain"
	"github.com/halopax/unlockd/internal/config"
	customerdomain "github.com/halopax/unlockd/internal/customer/domain"
	"github.com/halopax/unlockd/internal/notification"
	"github.com/halopax/unlockd/internal/observability"
	obslogger "github.com/halopax/unlockd/internal/observability/logger"
	obsmetrics "github.com/halopax/unlockd/internal/observability/metrics"
	obstracing "github.com/halopax/unlockd/internal/observability/tracing"
	orderdomain "github.com/halopax/unlockd/internal/order/domain"
	"github.com/halopax/unlockd/internal/ratelimit"
	supplierdomain "github.com/halopax/unlockd/internal/supplier/domain"
	tenantdomain "github.com/halopax/unlockd/internal/tenant/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	db     *gorm.DB
	genID  *snowflake.Node

	orderSvc    orderdomain.Service
	catalogSvc  catalogdomain.Service
	customerSvc customerdomain.Service
	supplierSvc supplierdomain.Service
	tenantSvc   tenantdomain.Service
	auditSvc    auditdomain.Service
	notifier    notification.Dispatcher
	limiter     ratelimit.Limiter
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	DB          *gorm.DB
	GenID       *snowflake.Node
	OrderSvc    orderdomain.Service
	CatalogSvc  catalogdomain.Service
	CustomerSvc customerdomain.Service
	SupplierSvc supplierdomain.Service
	TenantSvc   tenantdomain.Service
	AuditSvc    auditdomain.Service
	Notifier    notification.Dispatcher
	Limiter     ratelimit.Limiter
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		db:          p.DB,
		genID:       p.GenID,
		orderSvc:    p.OrderSvc,
		catalogSvc:  p.CatalogSvc,
		customerSvc: p.CustomerSvc,
		supplierSvc: p.SupplierSvc,
		tenantSvc:   p.TenantSvc,
		auditSvc:    p.AuditSvc,
		notifier:    p.Notifier,
		limiter:     p.Limiter,
	}

	s.registerTenantRoutes()
	s.registerAPIRoutes()
	s.registerAdminRoutes()

	return s
}

func (s *Server) registerTenantRoutes() {
	tenants := s.engine.Group("/api/tenants")
	tenants.POST("", s.CreateTenant)
	tenants.GET("/:id", s.GetTenant)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.TenantContext())

	api.POST("/orders", s.OrderRateLimit(), s.PlaceOrder)
	api.GET("/orders", s.ListOrders)
	api.GET("/orders/:id", s.GetOrder)
	api.GET("/orders/:id/status", s.CheckOrderStatus)

	api.GET("/services", s.ListServices)

	api.POST("/customers", s.CreateCustomer)
	api.GET("/customers", s.ListCustomers)
	api.GET("/customers/:id", s.GetCustomer)
	api.POST("/customers/:id/credit", s.CreditCustomer)

	api.POST("/notifications/estimate", s.EstimateNotification)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/api/admin", s.TenantContext())

	admin.GET("/services", s.ListAllServices)
	admin.PATCH("/services/:id", s.UpdateService)
	admin.POST("/services/sync", s.SyncServices)

	admin.POST("/suppliers", s.CreateSupplier)
	admin.GET("/suppliers", s.ListSuppliers)
	admin.PATCH("/suppliers/:id", s.UpdateSupplier)
	admin.DELETE("/suppliers/:id", s.DeleteSupplier)
	admin.GET("/suppliers/:id/balance", s.SupplierBalance)

	admin.PATCH("/sms-settings", s.UpdateSMSSettings)
	admin.POST("/sms-credits", s.CreditSMSBalance)

	admin.GET("/audit-logs", s.ListAuditLogs)
}
