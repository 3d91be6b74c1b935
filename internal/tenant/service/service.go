package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"github.com/halopax/unlockd/internal/tenant/domain"
	"github.com/halopax/unlockd/internal/vault"
)

type service struct {
	repo  domain.Repository
	vault *vault.Vault
	genID *snowflake.Node
	log   *zap.Logger
}

func NewService(repo domain.Repository, v *vault.Vault, genID *snowflake.Node, log *zap.Logger) domain.Service {
	return &service{
		repo:  repo,
		vault: v,
		genID: genID,
		log:   log.Named("tenant.service"),
	}
}

func (s *service) Create(ctx context.Context, req domain.CreateTenantRequest) (*domain.TenantResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if req.SMSSegmentPrice < 0 {
		return nil, domain.ErrInvalidSegmentPrice
	}

	now := time.Now().UTC()
	tenant := domain.Tenant{
		ID:              s.genID.Generate(),
		Name:            name,
		Slug:            slug.Make(name),
		CompanyName:     strings.TrimSpace(req.CompanyName),
		Status:          domain.StatusActive,
		SMSSegmentPrice: req.SMSSegmentPrice,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if tenant.CompanyName == "" {
		tenant.CompanyName = name
	}

	if err := s.repo.Create(ctx, tenant); err != nil {
		return nil, err
	}

	s.log.Info("tenant created",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("slug", tenant.Slug),
	)

	return toResponse(tenant), nil
}

func (s *service) GetByID(ctx context.Context, id snowflake.ID) (*domain.Tenant, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]domain.TenantResponse, error) {
	tenants, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.TenantResponse, 0, len(tenants))
	for _, t := range tenants {
		resp = append(resp, *toResponse(t))
	}
	return resp, nil
}

func (s *service) UpdateSMSSettings(ctx context.Context, id snowflake.ID, req domain.SMSSettingsRequest) error {
	tenant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if req.SegmentPrice < 0 {
		return domain.ErrInvalidSegmentPrice
	}

	tenant.SMSEnabled = req.Enabled
	tenant.SMSSenderID = strings.TrimSpace(req.SenderID)
	if req.SegmentPrice > 0 {
		tenant.SMSSegmentPrice = req.SegmentPrice
	}

	// An empty key keeps the stored credential untouched so settings can
	// be toggled without re-entering it.
	if req.APIKey != "" {
		sealed, err := s.vault.Encrypt(req.APIKey)
		if err != nil {
			return err
		}
		tenant.SMSAPIKey = sealed
	}

	return s.repo.Update(ctx, *tenant)
}

func (s *service) CreditSMSBalance(ctx context.Context, id snowflake.ID, amount int64, reference string) error {
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}
	return s.repo.CreditSMSBalance(ctx, id, amount, reference)
}

func (s *service) SMSCredentials(ctx context.Context, tenant *domain.Tenant) (string, string, error) {
	if tenant.SMSSenderID == "" || tenant.SMSAPIKey == "" {
		return "", "", domain.ErrSMSCredentialsIncomplete
	}

	apiKey, err := s.vault.Decrypt(tenant.SMSAPIKey)
	if err != nil {
		return "", "", err
	}
	return tenant.SMSSenderID, apiKey, nil
}

func toResponse(t domain.Tenant) *domain.TenantResponse {
	return &domain.TenantResponse{
		ID:              t.ID.String(),
		Name:            t.Name,
		Slug:            t.Slug,
		CompanyName:     t.CompanyName,
		Status:          t.Status,
		SMSEnabled:      t.SMSEnabled,
		SMSBalance:      t.SMSBalance,
		SMSSegmentPrice: t.SMSSegmentPrice,
	}
}
