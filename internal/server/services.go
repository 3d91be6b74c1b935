package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	auditdomain "github.com/halopax/unlockd/internal/audit/domain"
	catalogdomain "github.com/halopax/unlockd/internal/catalog/domain"
)

// ListServices is the customer-facing catalog: enabled entries only.
func (s *Server) ListServices(c *gin.Context) {
	entries, err := s.catalogSvc.List(c.Request.Context(), catalogdomain.ListRequest{EnabledOnly: true})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}

func (s *Server) ListAllServices(c *gin.Context) {
	entries, err := s.catalogSvc.List(c.Request.Context(), catalogdomain.ListRequest{})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}

func (s *Server) UpdateService(c *gin.Context) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_service_id", "invalid service id"))
		return
	}

	var req catalogdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.catalogSvc.Update(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, auditdomain.RecordRequest{
		Action:     "catalog.update",
		TargetType: "managed_service",
		TargetID:   id.String(),
		Metadata: map[string]any{
			"resale_price": result.Entry.ResalePrice,
			"enabled":      result.Entry.Enabled,
		},
	})

	c.JSON(http.StatusOK, gin.H{"data": result})
}

type syncServicesRequest struct {
	SupplierID string `json:"supplier_id"`
}

func (s *Server) SyncServices(c *gin.Context) {
	var req syncServicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	supplierID, err := snowflake.ParseString(strings.TrimSpace(req.SupplierID))
	if err != nil {
		AbortWithError(c, newValidationError("supplier_id", "invalid_supplier_id", "invalid supplier id"))
		return
	}

	result, err := s.catalogSvc.SyncFromSupplier(c.Request.Context(), supplierID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, auditdomain.RecordRequest{
		Action:     "catalog.sync",
		TargetType: "supplier",
		TargetID:   supplierID.String(),
		Metadata: map[string]any{
			"created": result.Created,
			"updated": result.Updated,
		},
	})

	c.JSON(http.StatusOK, gin.H{"data": result})
}
