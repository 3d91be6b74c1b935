package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type estimateRequest struct {
	Text string `json:"text" binding:"required"`
}

// EstimateNotification prices a message without sending it: encoding,
// segment count, total cost and whether the tenant ledger covers it.
func (s *Server) EstimateNotification(c *gin.Context) {
	var req estimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	estimate, err := s.notifier.Estimate(c.Request.Context(), req.Text)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": estimate})
}
