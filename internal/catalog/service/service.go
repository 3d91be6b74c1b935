package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/halopax/unlockd/internal/catalog/domain"
	supplierdomain "github.com/halopax/unlockd/internal/supplier/domain"
	"github.com/halopax/unlockd/internal/supplier/gateway"
	"github.com/halopax/unlockd/internal/tenantctx"
)

// defaultMarkupPercent is applied to the supplier cost when a sync
// creates a brand new catalog entry.
const defaultMarkupPercent = 30

type Params struct {
	fx.In

	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        domain.Repository
	SupplierSvc supplierdomain.Service
	Gateway     gateway.Client
}

type Service struct {
	log         *zap.Logger
	genID       *snowflake.Node
	repo        domain.Repository
	supplierSvc supplierdomain.Service
	gateway     gateway.Client
}

func New(p Params) domain.Service {
	return &Service{
		log:         p.Log.Named("catalog.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		supplierSvc: p.SupplierSvc,
		gateway:     p.Gateway,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.ManagedService, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}

	return s.repo.List(ctx, tenantID, domain.ListFilter{EnabledOnly: req.EnabledOnly})
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*domain.ManagedService, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}

	return s.repo.GetByID(ctx, tenantID, id)
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateRequest) (*domain.UpdateResult, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}

	entry, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		entry.Name = name
	}
	if req.Description != "" {
		entry.Description = req.Description
	}
	if req.ResalePrice != nil {
		if *req.ResalePrice < 0 {
			return nil, domain.ErrInvalidPrice
		}
		entry.ResalePrice = *req.ResalePrice
	}
	if req.Enabled != nil {
		entry.Enabled = *req.Enabled
	}
	if req.MinQuantity != nil {
		entry.MinQuantity = *req.MinQuantity
	}
	if req.MaxQuantity != nil {
		entry.MaxQuantity = *req.MaxQuantity
	}
	if entry.MinQuantity < 1 || entry.MaxQuantity < entry.MinQuantity {
		return nil, domain.ErrInvalidQuantity
	}

	if err := s.repo.Update(ctx, *entry); err != nil {
		return nil, err
	}

	result := &domain.UpdateResult{Entry: entry}
	if entry.ResalePrice <= entry.CostPrice {
		result.Warnings = append(result.Warnings, "resale price does not exceed supplier cost")
	}
	return result, nil
}

func (s *Service) SyncFromSupplier(ctx context.Context, supplierID snowflake.ID) (*domain.SyncResult, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}

	supplier, err := s.supplierSvc.GetByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	if !supplier.Active {
		return nil, supplierdomain.ErrNoActiveSupplier
	}

	creds, err := s.supplierSvc.Credentials(supplier)
	if err != nil {
		return nil, err
	}

	remote, err := s.gateway.ListServices(ctx, creds)
	if err != nil {
		return nil, err
	}

	result := &domain.SyncResult{}
	now := time.Now().UTC()

	for _, svc := range remote {
		existing, err := s.repo.FindBySupplierService(ctx, tenantID, supplier.ID, svc.ServiceID)
		if err != nil {
			return nil, err
		}

		if existing != nil {
			existing.Name = svc.Name
			existing.Category = svc.Category
			existing.CostPrice = svc.Price
			existing.DeliveryTime = svc.DeliveryTime
			if err := s.repo.Update(ctx, *existing); err != nil {
				return nil, err
			}
			result.Updated++
			result.Entries = append(result.Entries, *existing)
			continue
		}

		entry := domain.ManagedService{
			ID:                s.genID.Generate(),
			TenantID:          tenantID,
			SupplierID:        supplier.ID,
			SupplierServiceID: svc.ServiceID,
			Name:              svc.Name,
			Category:          svc.Category,
			Kind:              domain.KindFromRemote(svc.Kind),
			CostPrice:         svc.Price,
			ResalePrice:       svc.Price + svc.Price*defaultMarkupPercent/100,
			Enabled:           false,
			MinQuantity:       1,
			MaxQuantity:       1,
			DeliveryTime:      svc.DeliveryTime,
			Metadata:          datatypes.JSONMap{},
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := s.repo.Create(ctx, entry); err != nil {
			return nil, err
		}
		result.Created++
		result.Entries = append(result.Entries, entry)
	}

	s.log.Info("catalog synced from supplier",
		zap.String("tenant_id", tenantID.String()),
		zap.String("supplier_id", supplier.ID.String()),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
	)

	return result, nil
}
