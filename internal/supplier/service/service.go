package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/halopax/unlockd/internal/supplier/domain"
	"github.com/halopax/unlockd/internal/supplier/gateway"
	"github.com/halopax/unlockd/internal/tenantctx"
	"github.com/halopax/unlockd/internal/vault"
)

type Params struct {
	fx.In

	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	Vault   *vault.Vault
	Gateway gateway.Client
}

type Service struct {
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	vault   *vault.Vault
	gateway gateway.Client
}

func New(p Params) domain.Service {
	return &Service{
		log:     p.Log.Named("supplier.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		vault:   p.Vault,
		gateway: p.Gateway,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateSupplierRequest) (*domain.SupplierResponse, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}

	name := strings.TrimSpace(req.Name)
	baseURL := strings.TrimSpace(req.BaseURL)
	username := strings.TrimSpace(req.Username)
	if name == "" || baseURL == "" || username == "" || req.APIKey == "" {
		return nil, domain.ErrInvalidSupplier
	}

	sealed, err := s.vault.Encrypt(req.APIKey)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	supplier := domain.Supplier{
		ID:        s.genID.Generate(),
		TenantID:  tenantID,
		Name:      name,
		BaseURL:   baseURL,
		Username:  username,
		APIKey:    sealed,
		Active:    true,
		Priority:  req.Priority,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, supplier); err != nil {
		return nil, err
	}

	s.log.Info("supplier created",
		zap.String("supplier_id", supplier.ID.String()),
		zap.String("tenant_id", tenantID.String()),
	)

	return toResponse(supplier), nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*domain.Supplier, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}

	return s.repo.GetByID(ctx, tenantID, id)
}

func (s *Service) List(ctx context.Context) ([]domain.SupplierResponse, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}

	suppliers, err := s.repo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.SupplierResponse, 0, len(suppliers))
	for _, sup := range suppliers {
		resp = append(resp, *toResponse(sup))
	}
	return resp, nil
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateSupplierRequest) error {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.ErrInvalidTenant
	}

	supplier, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		supplier.Name = name
	}
	if baseURL := strings.TrimSpace(req.BaseURL); baseURL != "" {
		supplier.BaseURL = baseURL
	}
	if username := strings.TrimSpace(req.Username); username != "" {
		supplier.Username = username
	}
	if req.APIKey != "" {
		sealed, err := s.vault.Encrypt(req.APIKey)
		if err != nil {
			return err
		}
		supplier.APIKey = sealed
	}
	if req.Active != nil {
		supplier.Active = *req.Active
	}
	if req.Priority != nil {
		supplier.Priority = *req.Priority
	}

	return s.repo.Update(ctx, *supplier)
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.ErrInvalidTenant
	}

	if _, err := s.repo.GetByID(ctx, tenantID, id); err != nil {
		return err
	}

	refs, err := s.repo.CountCatalogReferences(ctx, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return domain.ErrSupplierReferenced
	}

	return s.repo.Delete(ctx, tenantID, id)
}

func (s *Service) ChooseForTenant(ctx context.Context, tenantID snowflake.ID) (*domain.Supplier, error) {
	suppliers, err := s.repo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	chosen := domain.Choose(suppliers)
	if chosen == nil {
		return nil, domain.ErrNoActiveSupplier
	}
	return chosen, nil
}

func (s *Service) Balance(ctx context.Context, id snowflake.ID) (*domain.BalanceResponse, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}

	supplier, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	creds, err := s.Credentials(supplier)
	if err != nil {
		return nil, err
	}

	balance, err := s.gateway.Balance(ctx, creds)
	if err != nil {
		return nil, err
	}

	return &domain.BalanceResponse{
		Balance:  balance.Balance,
		Currency: balance.Currency,
	}, nil
}

// Credentials unseals the supplier's API key for an outbound call.
func (s *Service) Credentials(supplier *domain.Supplier) (gateway.Credentials, error) {
	apiKey, err := s.vault.Decrypt(supplier.APIKey)
	if err != nil {
		return gateway.Credentials{}, err
	}

	return gateway.Credentials{
		BaseURL:  supplier.BaseURL,
		Username: supplier.Username,
		APIKey:   apiKey,
	}, nil
}

func toResponse(s domain.Supplier) *domain.SupplierResponse {
	return &domain.SupplierResponse{
		ID:       s.ID.String(),
		Name:     s.Name,
		BaseURL:  s.BaseURL,
		Username: s.Username,
		Active:   s.Active,
		Priority: s.Priority,
	}
}
