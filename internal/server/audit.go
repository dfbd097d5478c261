package server

import (
	"net/http"

	auditdomain "github.com/davidlhotte/surfaced/internal/audit/domain"
	"github.com/davidlhotte/surfaced/internal/tenantcontext"
	"github.com/gin-gonic/gin"
)

func (s *Server) RunAudit(c *gin.Context) {
	tenantID, ok := tenantcontext.TenantIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	summary, err := s.auditSvc.Run(c.Request.Context(), auditdomain.RunRequest{TenantID: tenantID})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}

func (s *Server) ListAuditResults(c *gin.Context) {
	var req auditdomain.ListResultsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.auditSvc.ListResults(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
