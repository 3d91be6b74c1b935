package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	auditdomain "github.com/halopax/unlockd/internal/audit/domain"
	supplierdomain "github.com/halopax/unlockd/internal/supplier/domain"
)

func (s *Server) CreateSupplier(c *gin.Context) {
	var req supplierdomain.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.supplierSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, auditdomain.RecordRequest{
		Action:     "supplier.create",
		TargetType: "supplier",
		TargetID:   resp.ID,
		Metadata: map[string]any{
			"name":     resp.Name,
			"base_url": resp.BaseURL,
			"api_key":  req.APIKey,
		},
	})

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListSuppliers(c *gin.Context) {
	suppliers, err := s.supplierSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": suppliers})
}

func (s *Server) UpdateSupplier(c *gin.Context) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_supplier_id", "invalid supplier id"))
		return
	}

	var req supplierdomain.UpdateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.supplierSvc.Update(c.Request.Context(), id, req); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, auditdomain.RecordRequest{
		Action:     "supplier.update",
		TargetType: "supplier",
		TargetID:   id.String(),
		Metadata: map[string]any{
			"api_key": req.APIKey,
		},
	})

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": id.String()}})
}

func (s *Server) DeleteSupplier(c *gin.Context) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_supplier_id", "invalid supplier id"))
		return
	}

	if err := s.supplierSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, auditdomain.RecordRequest{
		Action:     "supplier.delete",
		TargetType: "supplier",
		TargetID:   id.String(),
	})

	c.Status(http.StatusNoContent)
}

func (s *Server) SupplierBalance(c *gin.Context) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_supplier_id", "invalid supplier id"))
		return
	}

	balance, err := s.supplierSvc.Balance(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": balance})
}
