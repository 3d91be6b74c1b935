package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	auditdomain "github.com/halopax/unlockd/internal/audit/domain"
)

func (s *Server) ListAuditLogs(c *gin.Context) {
	var req auditdomain.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.auditSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// recordAudit writes the trail entry for an admin mutation. Audit
// failures are swallowed, the mutation itself already happened.
func (s *Server) recordAudit(c *gin.Context, req auditdomain.RecordRequest) {
	if s.auditSvc == nil {
		return
	}
	req.ActorType = auditdomain.ActorAdmin
	req.IPAddress = c.ClientIP()
	req.UserAgent = c.Request.UserAgent()
	_ = s.auditSvc.Record(c.Request.Context(), req)
}
