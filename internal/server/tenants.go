package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	auditdomain "github.com/halopax/unlockd/internal/audit/domain"
	tenantdomain "github.com/halopax/unlockd/internal/tenant/domain"
	"github.com/halopax/unlockd/internal/tenantctx"
)

func (s *Server) CreateTenant(c *gin.Context) {
	var req tenantdomain.CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.tenantSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetTenant(c *gin.Context) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_tenant_id", "invalid tenant id"))
		return
	}

	resp, err := s.tenantSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateSMSSettings(c *gin.Context) {
	tenantID, ok := tenantctx.TenantIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, tenantdomain.ErrTenantNotFound)
		return
	}

	var req tenantdomain.SMSSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.tenantSvc.UpdateSMSSettings(c.Request.Context(), tenantID, req); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, auditdomain.RecordRequest{
		Action:     "tenant.sms_settings.update",
		TargetType: "tenant",
		TargetID:   tenantID.String(),
		Metadata: map[string]any{
			"enabled":   req.Enabled,
			"sender_id": req.SenderID,
			"api_key":   req.APIKey,
		},
	})

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": tenantID.String()}})
}

type creditSMSRequest struct {
	Amount    int64  `json:"amount"`
	Reference string `json:"reference"`
}

func (s *Server) CreditSMSBalance(c *gin.Context) {
	tenantID, ok := tenantctx.TenantIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, tenantdomain.ErrTenantNotFound)
		return
	}

	var req creditSMSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.tenantSvc.CreditSMSBalance(c.Request.Context(), tenantID, req.Amount, strings.TrimSpace(req.Reference)); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, auditdomain.RecordRequest{
		Action:     "tenant.sms_credits.add",
		TargetType: "tenant",
		TargetID:   tenantID.String(),
		Metadata: map[string]any{
			"amount":    req.Amount,
			"reference": req.Reference,
		},
	})

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": tenantID.String()}})
}
